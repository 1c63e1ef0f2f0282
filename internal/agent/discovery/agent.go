package discovery

import (
	"context"
	"time"

	"github.com/devops-autopost/internal/catalog"
	"github.com/devops-autopost/internal/models"
	"github.com/devops-autopost/internal/source"
	"github.com/devops-autopost/pkg/logger"
)

// Agent extends the topic catalog with topics from external sources
type Agent struct {
	sourceManager *source.Manager
	log           *logger.Logger
}

// NewAgent creates a new discovery agent
func NewAgent(sourceManager *source.Manager, log *logger.Logger) *Agent {
	return &Agent{
		sourceManager: sourceManager,
		log:           log.WithComponent("discovery"),
	}
}

// DiscoveryResult contains the results of a discovery run
type DiscoveryResult struct {
	Catalog       *catalog.Catalog
	TopicsFound   int
	TopicsAdded   int
	TopicsSkipped int
	Errors        []error
	Duration      time.Duration
}

// Run fetches every source and returns base extended with the new topics.
// Source failures are collected, never fatal: the base catalog always
// survives.
func (a *Agent) Run(ctx context.Context, base *catalog.Catalog) *DiscoveryResult {
	startTime := time.Now()
	result := &DiscoveryResult{Catalog: base}

	if a.sourceManager == nil || a.sourceManager.Len() == 0 {
		return result
	}

	a.log.Info().Int("sources", a.sourceManager.Len()).Msg("Starting topic discovery")

	rawTopics, fetchErrors := a.sourceManager.FetchAll(ctx)
	result.Errors = fetchErrors
	result.TopicsFound = len(rawTopics)

	for _, err := range fetchErrors {
		a.log.Warn().Err(err).Msg("Topic source failed")
	}

	unique := a.deduplicateTopics(base, rawTopics)
	result.TopicsSkipped = len(rawTopics) - len(unique)
	result.TopicsAdded = len(unique)
	result.Catalog = base.Extend(unique)
	result.Duration = time.Since(startTime)

	a.log.Info().
		Int("topics_found", result.TopicsFound).
		Int("topics_added", result.TopicsAdded).
		Int("topics_skipped", result.TopicsSkipped).
		Int("fetch_errors", len(fetchErrors)).
		Dur("duration", result.Duration).
		Msg("Discovery completed")

	return result
}

// deduplicateTopics drops topics already in the catalog or earlier in the batch
func (a *Agent) deduplicateTopics(base *catalog.Catalog, topics []models.Topic) []models.Topic {
	seen := make(map[string]bool, base.Len()+len(topics))
	for _, t := range base.Topics() {
		seen[t.Key()] = true
	}

	unique := make([]models.Topic, 0, len(topics))
	for _, topic := range topics {
		key := topic.Key()
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, topic)
	}
	return unique
}
