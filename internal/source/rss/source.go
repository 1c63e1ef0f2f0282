package rss

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/devops-autopost/internal/config"
	"github.com/devops-autopost/internal/models"
	"github.com/devops-autopost/internal/source"
	"github.com/devops-autopost/pkg/logger"
	"github.com/devops-autopost/pkg/ratelimit"
)

// DefaultMaxAge skips feed items older than a week
const DefaultMaxAge = 7 * 24 * time.Hour

// Source implements TopicSource for one RSS or Atom feed
type Source struct {
	name     string
	url      string
	maxAge   time.Duration
	maxItems int
	parser   *gofeed.Parser
	limiter  *ratelimit.MultiLimiter
	log      *logger.Logger

	// now is replaced in tests
	now func() time.Time
}

// New creates a new RSS source for a single feed
func New(feed config.RSSFeed, cfg config.RSSConfig, limiter *ratelimit.MultiLimiter, log *logger.Logger) *Source {
	maxAge := time.Duration(cfg.MaxAgeDays) * 24 * time.Hour
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	return &Source{
		name:     feed.Name,
		url:      feed.URL,
		maxAge:   maxAge,
		maxItems: cfg.MaxItems,
		parser:   gofeed.NewParser(),
		limiter:  limiter,
		log:      log.WithSource("rss", feed.Name),
		now:      time.Now,
	}
}

// NewMultiple creates one source per configured feed
func NewMultiple(cfg config.RSSConfig, limiter *ratelimit.MultiLimiter, log *logger.Logger) []*Source {
	sources := make([]*Source, 0, len(cfg.Feeds))
	for _, feed := range cfg.Feeds {
		sources = append(sources, New(feed, cfg, limiter, log))
	}
	return sources
}

// Name returns the source name
func (s *Source) Name() string {
	return s.name
}

// Type returns "rss"
func (s *Source) Type() string {
	return models.TopicSourceRSS
}

// Fetch turns recent feed items into topics
func (s *Source) Fetch(ctx context.Context) ([]models.Topic, error) {
	if err := s.limiter.Wait(ctx, ratelimit.LimiterRSS); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	s.log.Debug().Str("url", s.url).Msg("Fetching RSS feed")

	feed, err := s.parser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed %s: %w", s.name, err)
	}

	now := s.now()
	topics := make([]models.Topic, 0, len(feed.Items))

	for _, item := range feed.Items {
		if s.maxItems > 0 && len(topics) >= s.maxItems {
			break
		}

		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}
		if published != nil && now.Sub(*published) > s.maxAge {
			continue
		}

		title := cleanText(item.Title)
		if title == "" {
			continue
		}

		topics = append(topics, models.Topic{
			Title:    title,
			Keywords: extractKeywords(item),
			Source:   models.TopicSourceRSS,
			URL:      item.Link,
		})
	}

	s.log.Info().
		Int("count", len(topics)).
		Str("feed", s.name).
		Msg("Fetched RSS topics")

	return topics, nil
}

// cleanText removes HTML tags and extra whitespace
func cleanText(text string) string {
	var result strings.Builder
	inTag := false
	for _, r := range text {
		switch {
		case r == '<':
			inTag = true
			result.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			result.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(result.String()), " ")
}

// extractKeywords uses the item categories as lower-cased keywords
func extractKeywords(item *gofeed.Item) models.StringSlice {
	keywords := make(models.StringSlice, 0, len(item.Categories))
	for _, c := range item.Categories {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			keywords = append(keywords, c)
		}
	}
	return keywords
}

// Ensure Source implements source.TopicSource
var _ source.TopicSource = (*Source)(nil)
