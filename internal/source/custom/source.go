package custom

import (
	"context"
	"strings"

	"github.com/devops-autopost/internal/config"
	"github.com/devops-autopost/internal/models"
	"github.com/devops-autopost/internal/source"
	"github.com/devops-autopost/pkg/logger"
)

// Source turns configured keywords into catalog topics
type Source struct {
	keywords []string
	log      *logger.Logger
}

// New creates a new custom source
func New(cfg config.CustomConfig, log *logger.Logger) *Source {
	return &Source{
		keywords: cfg.Keywords,
		log:      log.WithSource("custom", "keywords"),
	}
}

// Name returns the source name
func (s *Source) Name() string {
	return "custom-keywords"
}

// Type returns "custom"
func (s *Source) Type() string {
	return models.TopicSourceCustom
}

// Fetch returns one topic per non-blank keyword. The keyword doubles as
// the hashtag hint so the enhancer can match it.
func (s *Source) Fetch(ctx context.Context) ([]models.Topic, error) {
	topics := make([]models.Topic, 0, len(s.keywords))

	for _, keyword := range s.keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		topics = append(topics, models.Topic{
			Title:    keyword,
			Keywords: models.StringSlice{strings.ToLower(keyword)},
			Source:   models.TopicSourceCustom,
		})
	}

	s.log.Debug().
		Int("count", len(topics)).
		Msg("Returned custom keyword topics")

	return topics, nil
}

// Ensure Source implements source.TopicSource
var _ source.TopicSource = (*Source)(nil)
