package content

// TopicTags maps a keyword found in a topic to extra hashtags
type TopicTags struct {
	Keyword string
	Tags    []string
}

// Pools holds the decoration pools used by the enhancer and the fallback
// template. Treat it as read-only once built.
type Pools struct {
	Metrics       []string
	CTAs          []string
	Urgency       []string
	BaseHashtags  []string
	TopicHashtags []TopicTags
}

// DefaultPools returns the built-in pools
func DefaultPools() Pools {
	return Pools{
		Metrics: []string{
			"40-60% cost reduction in first 3 months",
			"3x faster deployment cycles",
			"80% reduction in production bugs",
			"99.9% uptime achievement",
			"50% less time spent on maintenance",
			"70% faster time-to-market",
			"90% reduction in manual tasks",
			"60% improvement in developer productivity",
			"75% fewer security incidents",
			"45% reduction in server costs",
		},
		CTAs: []string{
			"💰 Want to cut your AWS bill by 40%? DM 'OPTIMIZE' for a free audit!",
			"🚀 Ready to deploy 10x faster? Comment 'SPEED' below!",
			"🔒 Tired of security vulnerabilities? DM 'SECURE' for a free assessment!",
			"📈 Want to scale without breaking the bank? Comment 'SCALE' below!",
			"⚡ Need 99.9% uptime on a startup budget? DM 'UPTIME'!",
			"🛠️ Struggling with manual deployments? Comment 'AUTOMATE' below!",
			"💡 Want enterprise-level infrastructure at startup cost? DM 'ENTERPRISE'!",
			"🎯 Ready to eliminate technical debt? Comment 'CLEANUP' below!",
			"🔥 Need help choosing the right DevOps stack? DM 'STACK'!",
			"⭐ Want a free infrastructure review? Comment 'REVIEW' below!",
		},
		Urgency: []string{
			"🔥 Limited slots: Only 5 free consultations available this month!",
			"⏰ Act fast: Free infrastructure audit ends Friday!",
			"🎯 This week only: Complimentary DevOps assessment for startups!",
			"⚡ Quick wins available: 30-minute call to identify cost savings!",
			"💡 Special offer: Free architecture review for the first 10 comments!",
			"⭐ Limited availability: Book your free consultation today!",
		},
		BaseHashtags: []string{"#DevOps", "#StartupTech", "#CloudComputing", "#TechLeadership"},
		TopicHashtags: []TopicTags{
			{Keyword: "cost", Tags: []string{"#CostOptimization", "#AWSCosts", "#CloudSavings"}},
			{Keyword: "security", Tags: []string{"#DevSecOps", "#Cybersecurity", "#SecureCloud"}},
			{Keyword: "scal", Tags: []string{"#Scalability", "#GrowthHacking", "#TechScaling"}},
			{Keyword: "automation", Tags: []string{"#Automation", "#CICD", "#NoOps"}},
			{Keyword: "startup", Tags: []string{"#StartupLife", "#TechFounder", "#ScaleUp"}},
			{Keyword: "kubernetes", Tags: []string{"#Kubernetes", "#ContainerOrchestration", "#CloudNative"}},
			{Keyword: "monitoring", Tags: []string{"#Observability", "#SRE", "#PerformanceMonitoring"}},
			{Keyword: "infrastructure as code", Tags: []string{"#InfrastructureAsCode", "#Terraform"}},
		},
	}
}
