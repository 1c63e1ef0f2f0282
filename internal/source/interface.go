package source

import (
	"context"

	"github.com/devops-autopost/internal/models"
)

// TopicSource supplies extra topics for the catalog
type TopicSource interface {
	// Name returns the unique name of this source
	Name() string

	// Type returns the source type (rss, custom)
	Type() string

	// Fetch retrieves topics from the source
	Fetch(ctx context.Context) ([]models.Topic, error)
}

// Manager manages multiple topic sources
type Manager struct {
	sources []TopicSource
}

// NewManager creates a new source manager
func NewManager() *Manager {
	return &Manager{
		sources: make([]TopicSource, 0),
	}
}

// Register adds a source to the manager
func (m *Manager) Register(source TopicSource) {
	m.sources = append(m.sources, source)
}

// Len returns the number of registered sources
func (m *Manager) Len() int {
	return len(m.sources)
}

// FetchAll fetches topics from all sources concurrently. Topics keep the
// registration order of their sources; failed sources are reported in errs.
func (m *Manager) FetchAll(ctx context.Context) ([]models.Topic, []error) {
	type result struct {
		topics []models.Topic
		err    error
	}

	results := make([]result, len(m.sources))
	done := make(chan struct{}, len(m.sources))

	for i, source := range m.sources {
		go func(i int, s TopicSource) {
			topics, err := s.Fetch(ctx)
			results[i] = result{topics: topics, err: err}
			done <- struct{}{}
		}(i, source)
	}
	for range m.sources {
		<-done
	}

	var allTopics []models.Topic
	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		allTopics = append(allTopics, r.topics...)
	}

	return allTopics, errs
}
