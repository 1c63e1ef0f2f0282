package source_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devops-autopost/internal/config"
	"github.com/devops-autopost/internal/models"
	"github.com/devops-autopost/internal/source"
	"github.com/devops-autopost/internal/source/custom"
	"github.com/devops-autopost/pkg/logger"
)

type staticSource struct {
	name   string
	topics []models.Topic
	err    error
}

func (s staticSource) Name() string { return s.name }
func (s staticSource) Type() string { return "static" }
func (s staticSource) Fetch(context.Context) ([]models.Topic, error) {
	return s.topics, s.err
}

func TestManager_FetchAll(t *testing.T) {
	m := source.NewManager()
	m.Register(custom.New(config.CustomConfig{Keywords: []string{"Platform Engineering", "  ", "FinOps"}}, logger.Nop()))
	m.Register(staticSource{name: "broken", err: errors.New("timeout")})
	m.Register(staticSource{name: "static", topics: []models.Topic{{Title: "Chaos Engineering"}}})

	topics, errs := m.FetchAll(context.Background())
	assert.Equal(t, 3, m.Len())
	assert.Len(t, errs, 1)

	titles := make([]string, len(topics))
	for i, topic := range topics {
		titles[i] = topic.Title
	}
	assert.Equal(t, []string{"Platform Engineering", "FinOps", "Chaos Engineering"}, titles)
	assert.Equal(t, models.StringSlice{"platform engineering"}, topics[0].Keywords)
	assert.Equal(t, models.TopicSourceCustom, topics[0].Source)
}

func TestManager_Empty(t *testing.T) {
	topics, errs := source.NewManager().FetchAll(context.Background())
	assert.Empty(t, topics)
	assert.Empty(t, errs)
}
