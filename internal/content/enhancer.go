package content

import (
	"math/rand"
	"regexp"
	"strings"

	"github.com/devops-autopost/internal/models"
)

var percentPattern = regexp.MustCompile(`\d+%`)

// Enhancer defaults
const (
	DefaultMaxHashtags   = 10
	DefaultMaxCTAs       = 1
	DefaultUrgencyChance = 0.5
)

// Enhancer appends a metric line, a call-to-action, an optional urgency
// line and hashtags to generated text. With a nil Rand it always takes the
// first pool entry and never adds urgency, which makes its output
// deterministic.
type Enhancer struct {
	Pools         Pools
	Rand          *rand.Rand
	MaxHashtags   int
	MaxCTAs       int
	UrgencyChance float64
}

// NewEnhancer creates an enhancer with default caps
func NewEnhancer(pools Pools, rng *rand.Rand) *Enhancer {
	return &Enhancer{
		Pools:         pools,
		Rand:          rng,
		MaxHashtags:   DefaultMaxHashtags,
		MaxCTAs:       DefaultMaxCTAs,
		UrgencyChance: DefaultUrgencyChance,
	}
}

// Deterministic returns a copy of the enhancer without randomness
func (e *Enhancer) Deterministic() *Enhancer {
	c := *e
	c.Rand = nil
	return &c
}

// Enhance decorates text for the given topic
func (e *Enhancer) Enhance(text string, topic models.Topic) string {
	enhanced := strings.TrimSpace(text)

	if !percentPattern.MatchString(enhanced) && len(e.Pools.Metrics) > 0 {
		enhanced += "\n\n📊 Real impact: " + e.pick(e.Pools.Metrics)
	}

	if present := countPresent(enhanced, e.Pools.CTAs); present < e.MaxCTAs {
		if cta, ok := e.pickAbsent(enhanced, e.Pools.CTAs); ok {
			enhanced += "\n\n" + cta
		}
	}

	if e.Rand != nil && e.Rand.Float64() < e.UrgencyChance && countPresent(enhanced, e.Pools.Urgency) == 0 {
		enhanced += "\n\n" + e.pick(e.Pools.Urgency)
	}

	if tags := e.newHashtags(enhanced, topic); len(tags) > 0 {
		enhanced += "\n\n" + strings.Join(tags, " ")
	}

	return CapHashtags(enhanced, e.MaxHashtags)
}

// newHashtags returns topic hashtags not already in text, shuffled when
// randomness is available.
func (e *Enhancer) newHashtags(text string, topic models.Topic) []string {
	existing := make(map[string]bool)
	for _, tag := range ExtractHashtags(text) {
		existing[strings.ToLower(tag)] = true
	}

	var tags []string
	for _, tag := range TopicHashtags(e.Pools, topic) {
		if !existing[strings.ToLower(tag)] {
			tags = append(tags, tag)
		}
	}

	if e.Rand != nil {
		e.Rand.Shuffle(len(tags), func(i, j int) { tags[i], tags[j] = tags[j], tags[i] })
	}
	return tags
}

func (e *Enhancer) pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	if e.Rand == nil {
		return pool[0]
	}
	return pool[e.Rand.Intn(len(pool))]
}

// pickAbsent picks a pool entry that does not already appear in text
func (e *Enhancer) pickAbsent(text string, pool []string) (string, bool) {
	var absent []string
	for _, p := range pool {
		if !strings.Contains(text, p) {
			absent = append(absent, p)
		}
	}
	if len(absent) == 0 {
		return "", false
	}
	return e.pick(absent), true
}

func countPresent(text string, pool []string) int {
	n := 0
	for _, p := range pool {
		if strings.Contains(text, p) {
			n++
		}
	}
	return n
}
