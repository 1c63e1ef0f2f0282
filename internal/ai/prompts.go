package ai

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/devops-autopost/internal/models"
)

// SystemPrompt frames every generation request
const SystemPrompt = `You are an expert LinkedIn content creator for a DevOps consultancy that helps startups.

Guidelines:
- Keep posts under 2800 characters
- Start with a hook that grabs attention
- Use short paragraphs, bullet points and emojis for readability
- Back claims with specific, realistic metrics
- End with a question or call-to-action that invites comments
- Return only the post text, no preamble or markdown fences`

// BusinessPrompts are the topic templates; %s is the topic title
var BusinessPrompts = []string{
	`Generate a LinkedIn post about how %s can help startups save 40-60%% on infrastructure costs.
Include specific examples of cost savings, efficiency improvements, and how small teams can achieve enterprise-level results.

MUST include these business benefits:
- Specific cost savings percentages
- Time-to-market improvements
- Reduced manual effort/errors
- Scalability without complexity

End with engagement CTAs like:
- "Comment 'SAVE' if you want to cut your infrastructure costs by 50%%"
- "DM 'OPTIMIZE' for a free cost analysis of your current setup"

Include hashtags and make it 15-20 lines with emojis.`,

	`Create a LinkedIn post explaining how %s eliminates common startup pain points and reduces technical debt by 70%%.
Focus on real problems startups face and specific solutions.

MUST address these pain points:
- Scaling challenges as the team grows
- Security vulnerabilities in rapid development
- Manual processes eating up developer time
- Unreliable deployments causing downtime

Include engagement hooks:
- "Struggling with [specific problem]? Comment below!"
- "DM 'SOLVE' for a free consultation on fixing these issues"

Use emojis, bullet points, and relevant hashtags.`,

	`Write a LinkedIn post about how proper %s implementation can increase development velocity by 3x while reducing bugs by 80%%.
Include case study elements and specific metrics.

MUST include:
- Before/after scenarios
- Specific productivity metrics
- Quality improvements
- Team satisfaction benefits

End with service-oriented CTAs:
- "Ready to 3x your development speed? DM 'ACCELERATE'"
- "Comment 'VELOCITY' for a free development process audit"

Format with emojis and professional tone.`,

	`Generate a post about how %s helps startups achieve 99.9%% uptime while reducing operational overhead by 60%%.
Focus on reliability, customer trust, and business continuity.

MUST cover:
- Uptime improvements and customer impact
- Reduced operational burden
- Automated incident response
- Cost-effective monitoring solutions

Include engaging CTAs:
- "Tired of 3 AM outage calls? Comment 'SLEEP' below"
- "DM 'UPTIME' for a free reliability assessment"

Use professional language with startup-friendly tone.`,

	`Create a post about how %s enables startups to scale from 1K to 1M users without hiring additional DevOps engineers.
Emphasize automation and cost-effective scaling.

MUST highlight:
- Scaling without team growth
- Automated resource management
- Predictable cost scaling
- Performance under load

End with growth-focused CTAs:
- "Planning for rapid growth? Comment 'SCALE' below!"
- "DM 'GROWTH' for a free scalability consultation"

Include relevant hashtags and emojis.`,
}

const requirements = `

CRITICAL REQUIREMENTS:
1. Include specific, realistic metrics and percentages
2. Focus on startup pain points and cost-effective solutions
3. Add compelling CTAs that drive engagement and leads
4. Make it authentic and avoid generic DevOps buzzwords
5. Include social proof elements or case study hints
6. Ensure content is logically consistent and makes business sense
7. Target startup founders and CTOs specifically
8. Emphasize ROI and cost savings throughout`

// BuildPrompt renders the generation prompt for a topic. Topics with their
// own prompt use it verbatim; the rest get a business template picked by
// rng (the first one when rng is nil). A seed line keeps repeated requests
// for the same topic from returning cached text.
func BuildPrompt(topic models.Topic, rng *rand.Rand, now time.Time) string {
	var b strings.Builder

	if topic.Prompt != "" {
		b.WriteString(topic.Prompt)
	} else {
		tmpl := BusinessPrompts[0]
		if rng != nil {
			tmpl = BusinessPrompts[rng.Intn(len(BusinessPrompts))]
		}
		b.WriteString(fmt.Sprintf(tmpl, topic.Title))
	}

	if topic.URL != "" {
		fmt.Fprintf(&b, "\n\nBase the post on this recent article: %s", topic.URL)
	}

	b.WriteString(requirements)

	if rng != nil {
		fmt.Fprintf(&b, "\n\nUnique seed: %d\nTimestamp: %s", 1000+rng.Intn(9000), now.Format("200601021504"))
	}
	return b.String()
}
