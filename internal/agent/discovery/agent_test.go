package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devops-autopost/internal/catalog"
	"github.com/devops-autopost/internal/models"
	"github.com/devops-autopost/internal/source"
	"github.com/devops-autopost/pkg/logger"
)

type stubSource struct {
	topics []models.Topic
	err    error
}

func (s stubSource) Name() string { return "stub" }
func (s stubSource) Type() string { return models.TopicSourceRSS }
func (s stubSource) Fetch(context.Context) ([]models.Topic, error) {
	return s.topics, s.err
}

func TestRun_ExtendsCatalog(t *testing.T) {
	base, err := catalog.New([]models.Topic{{Title: "Terraform Modules"}})
	require.NoError(t, err)

	m := source.NewManager()
	m.Register(stubSource{topics: []models.Topic{
		{Title: "terraform modules", Source: models.TopicSourceRSS},
		{Title: "eBPF Observability", Source: models.TopicSourceRSS},
		{Title: "eBPF observability ", Source: models.TopicSourceRSS},
		{Title: "  "},
	}})
	m.Register(stubSource{err: errors.New("feed down")})

	result := NewAgent(m, logger.Nop()).Run(context.Background(), base)

	assert.Equal(t, 4, result.TopicsFound)
	assert.Equal(t, 1, result.TopicsAdded)
	assert.Equal(t, 3, result.TopicsSkipped)
	assert.Len(t, result.Errors, 1)

	require.Equal(t, 2, result.Catalog.Len())
	added := result.Catalog.Topics()[1]
	assert.Equal(t, "eBPF Observability", added.Title)
	assert.Equal(t, models.TopicSourceRSS, added.Source)

	assert.Equal(t, 1, base.Len())
}

func TestRun_NoSources(t *testing.T) {
	base := catalog.Default()
	result := NewAgent(source.NewManager(), logger.Nop()).Run(context.Background(), base)
	assert.Same(t, base, result.Catalog)
	assert.Zero(t, result.TopicsFound)
}
