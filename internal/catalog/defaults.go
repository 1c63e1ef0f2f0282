package catalog

import (
	"github.com/devops-autopost/internal/models"
)

// Business-value topics. These carry no prompt of their own and are
// written through the business prompt templates.
var businessTopics = []string{
	"DevOps ROI", "Cloud Cost Optimization", "Startup Infrastructure", "Deployment Automation",
	"Monitoring Solutions", "Security Automation", "Scalable Architecture", "CI/CD Pipeline",
	"Container Orchestration", "Infrastructure as Code", "Performance Optimization",
	"Disaster Recovery", "Cloud Migration", "DevSecOps", "Microservices Architecture",
	"Database Optimization", "Load Balancing", "Auto-scaling", "Cost Management",
	"Technical Debt Reduction", "Platform Engineering", "SRE Practices",
}

// Topics with dedicated instructions
var focusedTopics = []models.Topic{
	{
		Title:    "Kubernetes Cost Optimization",
		Prompt:   "Write a LinkedIn post about Kubernetes cost optimization techniques. Include specific kubectl commands for resource analysis. Provide 3-4 concrete tips with potential savings percentages. Make it visually engaging with emojis and formatting. Include relevant hashtags.",
		Keywords: models.StringSlice{"kubernetes", "cost"},
	},
	{
		Title:    "Container Security Best Practices",
		Prompt:   "Write a LinkedIn post about container security best practices. Compare Docker, containerd, and cri-o security features. Include specific scanning and hardening tips with commands. Make it visually appealing with emojis and good formatting. Include relevant hashtags.",
		Keywords: models.StringSlice{"security"},
	},
	{
		Title:    "IaC Tools Comparison",
		Prompt:   "Write a LinkedIn post comparing Terraform, Pulumi, and CloudFormation. Include code examples, learning curve comparisons, and specific strengths. Make it visually engaging with emojis and formatting. Include relevant hashtags.",
		Keywords: models.StringSlice{"automation"},
	},
	{
		Title:    "Monitoring and Observability",
		Prompt:   "Write a LinkedIn post comparing Prometheus+Grafana, Datadog, and New Relic for monitoring. Include pros/cons, cost considerations, and integration efforts. Mention AI for anomaly detection. Include relevant hashtags.",
		Keywords: models.StringSlice{"monitoring"},
	},
	{
		Title:    "Serverless vs Kubernetes",
		Prompt:   "Write an engaging LinkedIn post comparing Serverless and Kubernetes approaches. Highlight operations overhead, scalability, cost, and developer experience. Include real-world scenarios where each approach excels and cost comparisons. Include hashtags.",
		Keywords: models.StringSlice{"kubernetes", "scale"},
	},
	{
		Title:    "Testing Infrastructure as Code",
		Prompt:   "Write a LinkedIn post about testing Infrastructure as Code. Compare Terratest, Open Policy Agent, and Checkov. Mention how IaC testing prevents outages and security incidents in CI/CD pipelines. Include hashtags.",
		Keywords: models.StringSlice{"automation", "security"},
	},
	{
		Title:    "AI for Incident Response",
		Prompt:   "Write a LinkedIn post about using AI for incident response. Include examples of how LLMs diagnose issues, suggest remediations, and automate runbooks. Mention MTTR reduction metrics. Include hashtags.",
		Keywords: models.StringSlice{"monitoring", "automation"},
	},
	{
		Title: "Docker Mistakes in Production",
		Body: `HARSH TRUTH: Most companies running Docker in production are doing it wrong.

Top 5 mistakes we see constantly:
1. Running as root. That is a security nightmare.
2. No resource limits. One memory leak takes the whole host down.
3. The latest tag in production.
4. Bloated images. We saw a 9.2GB image last week.
5. No health checks, so failures go unnoticed.

The result is outages, security incidents, and infrastructure bills 4x higher than necessary.

We have helped 20+ teams reduce container vulnerabilities by 87% on average. Fixing these five items is the fastest way to improve reliability and cut cost.

What do you think is the most common mistake? Drop a comment below!`,
		Keywords: models.StringSlice{"security", "cost"},
	},
}

func defaultTopics() []models.Topic {
	topics := make([]models.Topic, 0, len(businessTopics)+len(focusedTopics))
	for _, title := range businessTopics {
		topics = append(topics, models.Topic{Title: title})
	}
	return append(topics, focusedTopics...)
}
