package content

import (
	"fmt"
	"strings"

	"github.com/devops-autopost/internal/models"
)

// Fallback builds the deterministic template post for a topic. It uses the
// first metric and the first CTA so the same topic always yields the same
// text.
func Fallback(topic models.Topic, pools Pools) string {
	metric := "measurable cost savings in the first quarter"
	if len(pools.Metrics) > 0 {
		metric = pools.Metrics[0]
	}
	cta := ""
	if len(pools.CTAs) > 0 {
		cta = pools.CTAs[0]
	}

	title := strings.TrimSpace(topic.Title)
	lower := strings.ToLower(title)

	var b strings.Builder
	fmt.Fprintf(&b, "🚀 %s: The Game-Changer for Growing Startups\n\n", title)
	b.WriteString("Are you tired of watching your infrastructure costs spiral out of control as you scale?\n\n")
	fmt.Fprintf(&b, "Here's what proper %s implementation can do for your startup:\n\n", lower)
	fmt.Fprintf(&b, "✅ %s\n", metric)
	b.WriteString("✅ Eliminate manual deployment headaches\n")
	b.WriteString("✅ Scale automatically without hiring more engineers\n")
	b.WriteString("✅ Sleep better knowing your systems are resilient\n")
	b.WriteString("✅ Focus on building features, not fighting infrastructure\n\n")
	fmt.Fprintf(&b, "The difference between startups that scale smoothly and those that struggle? They invested early in the right %s strategy.\n\n", lower)
	b.WriteString("💡 Pro tip: Most startups wait until it's too late. The best time to optimize your infrastructure was yesterday. The second best time is now.\n\n")
	if cta != "" {
		b.WriteString(cta + "\n\n")
	}
	b.WriteString("🤔 What's your biggest infrastructure challenge right now? Drop a comment below!")

	return b.String()
}
