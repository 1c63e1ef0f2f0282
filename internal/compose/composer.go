// Package compose builds the post candidate for one publishing cycle. It
// retries generation until a candidate is neither a repeat of recent
// history nor below the quality gate, and falls back to a deterministic
// template once the attempt budget is spent.
package compose

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/devops-autopost/internal/ai"
	"github.com/devops-autopost/internal/catalog"
	"github.com/devops-autopost/internal/content"
	"github.com/devops-autopost/internal/dedup"
	"github.com/devops-autopost/internal/models"
	"github.com/devops-autopost/internal/similarity"
	"github.com/devops-autopost/pkg/logger"
)

// Defaults for the retry loop
const (
	DefaultMaxAttempts     = 7
	DefaultDiversityWindow = 7 * 24 * time.Hour
)

// Rejection reasons
const (
	ReasonDuplicate   = "duplicate"
	ReasonSimilar     = "similar"
	ReasonLowQuality  = "low_quality"
	ReasonEmptyOutput = "empty"
)

// TopicHistory reports which topic keys were used since a point in time
type TopicHistory interface {
	RecentTopics(since time.Time) map[string]bool
}

// Options tunes the composer. Zero values fall back to the defaults.
type Options struct {
	MaxAttempts     int
	DiversityWindow time.Duration
	MinQuality      int // 0 disables the quality gate
	Scorer          *content.Scorer
	Seen            dedup.Index
	Topics          TopicHistory
	Rand            *rand.Rand
}

// Rejection records why an attempt was discarded
type Rejection struct {
	Attempt int
	Topic   string
	Reason  string
	Score   int
}

// Result is the accepted candidate of a cycle
type Result struct {
	Candidate  models.Candidate
	Topic      models.Topic
	Hash       string
	Quality    models.QualityReport
	Fallback   bool
	Rejections []Rejection
}

// Constructions returns how many candidates were built, accepted one included
func (r *Result) Constructions() int {
	return len(r.Rejections) + 1
}

// Composer runs the generate, enhance and filter loop
type Composer struct {
	catalog   *catalog.Catalog
	generator ai.Generator
	enhancer  *content.Enhancer
	filter    *similarity.Filter
	scorer    content.Scorer
	seen      dedup.Index
	topics    TopicHistory
	rng       *rand.Rand

	maxAttempts int
	window      time.Duration
	minQuality  int
	log         *logger.Logger

	// now is replaced in tests
	now func() time.Time
}

// New creates a composer. A nil generator selects template mode, where the
// topic's static body (or the fallback text) is used instead of a model.
func New(
	cat *catalog.Catalog,
	generator ai.Generator,
	enhancer *content.Enhancer,
	filter *similarity.Filter,
	opts Options,
	log *logger.Logger,
) *Composer {
	c := &Composer{
		catalog:     cat,
		generator:   generator,
		enhancer:    enhancer,
		filter:      filter,
		scorer:      content.DefaultScorer(),
		seen:        opts.Seen,
		topics:      opts.Topics,
		rng:         opts.Rand,
		maxAttempts: opts.MaxAttempts,
		window:      opts.DiversityWindow,
		minQuality:  opts.MinQuality,
		log:         log.WithComponent("compose"),
		now:         time.Now,
	}

	if opts.Scorer != nil {
		c.scorer = *opts.Scorer
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = DefaultMaxAttempts
	}
	if c.window <= 0 {
		c.window = DefaultDiversityWindow
	}
	return c
}

// Mode returns the generator name or "template"
func (c *Composer) Mode() string {
	if c.generator == nil {
		return "template"
	}
	return c.generator.Name()
}

// Compose returns an accepted candidate. priors are the bodies of recent
// posts, oldest first. It makes at most MaxAttempts generation attempts and
// one fallback construction.
func (c *Composer) Compose(ctx context.Context, priors []string) (*Result, error) {
	now := c.now()

	var recent map[string]bool
	if c.topics != nil {
		recent = c.topics.RecentTopics(now.Add(-c.window))
	}

	c.log.Info().
		Str("mode", c.Mode()).
		Int("priors", len(priors)).
		Int("recent_topics", len(recent)).
		Int("budget", c.maxAttempts).
		Msg("Composing post")

	var rejections []Rejection

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		topic := c.catalog.PickRandom(c.rng, recent)
		log := c.log.WithAttempt(attempt, c.maxAttempts).WithTopic(topic.Title)

		text, err := c.draft(ctx, topic, now)
		if err != nil {
			return nil, fmt.Errorf("failed to generate content: %w", err)
		}

		body := c.enhancer.Enhance(text, topic)
		hash := dedup.Hash(body)
		report := c.scorer.Score(body)

		reason := c.reject(ctx, body, hash, &report, priors)
		if reason == "" {
			log.Info().Int("score", report.Score).Msg("Accepted candidate")
			return &Result{
				Candidate: models.Candidate{
					Title:   topic.Title,
					Body:    body,
					Attempt: attempt,
				},
				Topic:      topic,
				Hash:       hash,
				Quality:    report,
				Rejections: rejections,
			}, nil
		}

		log.Info().
			Str("reason", reason).
			Int("score", report.Score).
			Msg("Rejected candidate")
		rejections = append(rejections, Rejection{
			Attempt: attempt,
			Topic:   topic.Title,
			Reason:  reason,
			Score:   report.Score,
		})
	}

	return c.fallback(now, rejections), nil
}

// draft produces the raw text for a topic. Generation errors are recovered
// with the topic's fallback text; anything else aborts the cycle.
func (c *Composer) draft(ctx context.Context, topic models.Topic, now time.Time) (string, error) {
	if c.generator == nil {
		if topic.HasBody() {
			return topic.Body, nil
		}
		return content.Fallback(topic, c.enhancer.Pools), nil
	}

	text, err := c.generator.Generate(ctx, ai.BuildPrompt(topic, c.rng, now))
	if err != nil {
		var genErr *ai.GenerationError
		if !errors.As(err, &genErr) {
			return "", err
		}
		c.log.Warn().
			Err(err).
			Str("topic", topic.Title).
			Msg("Generation failed, using fallback text")
		return content.Fallback(topic, c.enhancer.Pools), nil
	}
	return text, nil
}

// reject returns the rejection reason or "" when the candidate passes
func (c *Composer) reject(ctx context.Context, body, hash string, report *models.QualityReport, priors []string) string {
	switch {
	case body == "":
		return ReasonEmptyOutput
	case c.seen != nil && c.seen.Seen(ctx, hash):
		return ReasonDuplicate
	case c.filter.TooSimilar(body, priors):
		return ReasonSimilar
	case !report.Passes(c.minQuality):
		return ReasonLowQuality
	}
	return ""
}

// fallback builds the deterministic candidate. It skips every check.
func (c *Composer) fallback(now time.Time, rejections []Rejection) *Result {
	topic := c.catalog.PickByDate(now)
	body := c.enhancer.Deterministic().Enhance(content.Fallback(topic, c.enhancer.Pools), topic)
	report := c.scorer.Score(body)

	c.log.Warn().
		Str("topic", topic.Title).
		Int("rejections", len(rejections)).
		Int("score", report.Score).
		Msg("Attempt budget spent, using fallback post")

	return &Result{
		Candidate: models.Candidate{
			Title:    topic.Title,
			Body:     body,
			Attempt:  c.maxAttempts + 1,
			Fallback: true,
		},
		Topic:      topic,
		Hash:       dedup.Hash(body),
		Quality:    report,
		Fallback:   true,
		Rejections: rejections,
	}
}
