package content

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/devops-autopost/internal/models"
)

// Quality thresholds
const (
	DefaultMinQuality   = 70 // regenerate below this
	DefaultMinToPublish = 60 // never publish below this
)

var (
	businessKeywords = []string{
		"cost", "save", "roi", "revenue", "profit", "efficiency", "productivity",
		"scale", "growth", "uptime", "performance", "automation", "reduce",
		"eliminate", "optimize", "improve", "faster", "better", "cheaper",
	}
	ctaKeywords = []string{"dm", "comment", "connect", "message", "consultation", "audit", "review"}

	metricPattern      = regexp.MustCompile(`\d+%|\d+x|\$\d+|\d+k|\d+m`)
	sentencePattern    = regexp.MustCompile(`[.!?]+`)
	engagementPatterns = []*regexp.Regexp{
		regexp.MustCompile(`comment.*below`),
		regexp.MustCompile(`dm.*me`),
		regexp.MustCompile(`tag.*someone`),
		regexp.MustCompile(`share.*your`),
		regexp.MustCompile(`drop.*comment`),
		regexp.MustCompile(`let.*me.*know`),
		regexp.MustCompile(`what.*do.*you.*think`),
	}
)

// Scorer rates post text against a fixed rubric starting from 100
type Scorer struct {
	MinLength int
	MaxLength int
}

// DefaultScorer returns the LinkedIn-tuned rubric
func DefaultScorer() Scorer {
	return Scorer{MinLength: 500, MaxLength: 3000}
}

// Score is a pure function of text
func (s Scorer) Score(text string) models.QualityReport {
	r := models.QualityReport{Score: 100, Issues: []string{}}
	lower := strings.ToLower(text)

	business := countSubstrings(lower, businessKeywords)
	r.HasBusinessValue = business >= 3
	if !r.HasBusinessValue {
		r.Issues = append(r.Issues, "Content lacks sufficient business value keywords")
		r.Score -= 20
	}

	r.HasMetrics = metricPattern.MatchString(text)
	if !r.HasMetrics {
		r.Issues = append(r.Issues, "Content lacks specific metrics or quantifiable benefits")
		r.Score -= 15
	}

	for _, p := range engagementPatterns {
		if p.MatchString(lower) {
			r.HasEngagement = true
			break
		}
	}
	if !r.HasEngagement {
		r.Issues = append(r.Issues, "Content lacks engagement elements")
		r.Score -= 10
	}

	r.HasCTA = countSubstrings(lower, ctaKeywords) >= 2
	if !r.HasCTA {
		r.Issues = append(r.Issues, "Content lacks strong call-to-action elements")
		r.Score -= 15
	}

	switch n := utf8.RuneCountInString(text); {
	case n < s.MinLength:
		r.Issues = append(r.Issues, "Content might be too short for good engagement")
		r.Score -= 10
	case s.MaxLength > 0 && n > s.MaxLength:
		r.Issues = append(r.Issues, "Content might be too long for LinkedIn")
		r.Score -= 10
	}

	if len(sentencePattern.Split(text, -1)) < 5 {
		r.Issues = append(r.Issues, "Content might lack sufficient detail or examples")
		r.Score -= 10
	}

	if strings.Count(text, "🔥") > 3 || strings.Count(text, "💰") > 2 {
		r.Issues = append(r.Issues, "Content might be too emoji-heavy")
		r.Score -= 5
	}

	return r
}

func countSubstrings(text string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(text, k) {
			n++
		}
	}
	return n
}
