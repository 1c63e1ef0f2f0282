package publisher

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devops-autopost/internal/catalog"
	"github.com/devops-autopost/internal/compose"
	"github.com/devops-autopost/internal/config"
	"github.com/devops-autopost/internal/content"
	"github.com/devops-autopost/internal/diversity"
	"github.com/devops-autopost/internal/history"
	"github.com/devops-autopost/internal/linkedin"
	"github.com/devops-autopost/internal/models"
	"github.com/devops-autopost/internal/similarity"
	"github.com/devops-autopost/pkg/logger"
)

const costBody = `Last spring a seed-stage fintech asked us why their AWS invoice doubled while traffic stayed flat.
We found forgotten staging clusters, unattached volumes and oversized RDS instances nobody had touched since launch.
Rightsizing, scheduled shutdowns for non-production and a handful of savings plans brought the bill back under budget within six weeks.
The engineers barely noticed the change, which is exactly how cost work should feel.
Does your team review cloud spend every sprint or only when finance starts asking questions?`

const incidentBody = `At 3 AM the pager went off for a payments outage and the on-call engineer spent forty minutes finding the right dashboard.
Afterwards we wrote runbooks next to every alert, wired alerts to owners instead of channels and rehearsed a game day each month.
The next incident was resolved before most customers noticed anything at all.
Good incident response is boring, practiced and written down long before anyone needs it.
How does your startup make sure the person holding the pager knows where to look first?`

type fakePoster struct {
	calls int
	text  string
	err   error
}

func (p *fakePoster) Publish(_ context.Context, text string) (*linkedin.PublishResult, error) {
	p.calls++
	p.text = text
	if p.err != nil {
		return nil, p.err
	}
	return &linkedin.PublishResult{URN: "urn:li:share:42", Mode: linkedin.ModeOrganization}, nil
}

type brokenStore struct {
	appends int
}

func (s *brokenStore) Append(context.Context, models.HistoryEntry) error {
	s.appends++
	return &history.IOError{Op: "write", Backend: "test", Err: errors.New("disk full")}
}

func (s *brokenStore) ReadRecent(context.Context, int) ([]models.HistoryEntry, error) {
	return nil, &history.IOError{Op: "read", Backend: "test", Err: errors.New("permission denied")}
}

func (s *brokenStore) Close() error { return nil }

type fixture struct {
	store   history.Store
	tracker *diversity.Tracker
	poster  *fakePoster
}

func newAgent(t *testing.T, store history.Store, cfg config.PublishingConfig) (*Agent, *fixture) {
	t.Helper()
	dir := t.TempDir()
	if store == nil {
		store = history.NewFileStore(filepath.Join(dir, "history.jsonl"), logger.Nop())
	}
	tracker := diversity.Open(filepath.Join(dir, "diversity.json"), 0, logger.Nop())

	cat, err := catalog.New([]models.Topic{
		{Title: "Cloud Cost Optimization", Body: costBody},
		{Title: "Incident Response", Body: incidentBody},
	})
	require.NoError(t, err)

	composer := compose.New(
		cat,
		nil,
		content.NewEnhancer(content.DefaultPools(), rand.New(rand.NewSource(3))),
		similarity.NewFilter(0.6, 50, similarity.Combined),
		compose.Options{MaxAttempts: 2, Seen: tracker, Topics: tracker, Rand: rand.New(rand.NewSource(5))},
		logger.Nop(),
	)

	f := &fixture{store: store, tracker: tracker, poster: &fakePoster{}}
	recorder := &compose.Recorder{History: store, Diversity: tracker, Log: logger.Nop()}

	return NewAgent(composer, store, recorder, f.poster, cfg, 50, logger.Nop()), f
}

func TestRun_PublishesAndRecords(t *testing.T) {
	a, f := newAgent(t, nil, config.PublishingConfig{MinPublishScore: 1})

	result, err := a.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.True(t, result.Published)
	assert.Equal(t, "urn:li:share:42", result.PostURN)
	assert.Equal(t, linkedin.ModeOrganization, result.Mode)
	assert.Equal(t, 1, f.poster.calls)
	assert.Equal(t, result.Compose.Candidate.Body, f.poster.text)

	entries, err := f.store.ReadRecent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, result.Compose.Candidate.Title, entries[0].Title)
	assert.Equal(t, result.Compose.Hash, entries[0].Hash)
	assert.True(t, f.tracker.Seen(context.Background(), result.Compose.Hash))
}

func TestRun_SecondCycleAvoidsRepeat(t *testing.T) {
	a, _ := newAgent(t, nil, config.PublishingConfig{MinPublishScore: 1})

	first, err := a.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	second, err := a.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.NotEqual(t, first.Compose.Topic.Title, second.Compose.Topic.Title)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	a, f := newAgent(t, nil, config.PublishingConfig{})

	result, err := a.Run(context.Background(), RunOptions{DryRun: true})
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.False(t, result.Published)
	assert.NotEmpty(t, result.Compose.Candidate.Body)
	assert.Zero(t, f.poster.calls)

	entries, err := f.store.ReadRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, f.tracker.State().RecentTopics)
}

func TestRun_ConfigDryRun(t *testing.T) {
	a, f := newAgent(t, nil, config.PublishingConfig{DryRun: true})

	result, err := a.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Zero(t, f.poster.calls)
}

func TestRun_AbortsBelowPublishScore(t *testing.T) {
	a, f := newAgent(t, nil, config.PublishingConfig{MinPublishScore: 101})

	result, err := a.Run(context.Background(), RunOptions{})
	require.Error(t, err)

	var qErr *QualityError
	require.True(t, errors.As(err, &qErr))
	assert.Equal(t, 101, qErr.Min)
	assert.Equal(t, result.Compose.Quality.Score, qErr.Score)
	assert.Zero(t, f.poster.calls)
}

func TestRun_PublishFailurePropagates(t *testing.T) {
	a, f := newAgent(t, nil, config.PublishingConfig{MinPublishScore: 1})
	pubErr := &linkedin.PublishError{Mode: linkedin.ModePerson, StatusCode: 401, Body: "expired"}
	f.poster.err = pubErr

	result, err := a.Run(context.Background(), RunOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, pubErr)
	assert.False(t, result.Published)

	entries, err := f.store.ReadRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_BrokenHistoryIsNotFatal(t *testing.T) {
	store := &brokenStore{}
	a, f := newAgent(t, store, config.PublishingConfig{MinPublishScore: 1})

	result, err := a.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.True(t, result.Published)
	assert.Equal(t, 1, f.poster.calls)
	assert.Equal(t, 1, store.appends)
}

func TestNewAgent_DefaultPublishScore(t *testing.T) {
	a := NewAgent(nil, nil, nil, nil, config.PublishingConfig{}, 0, logger.Nop())
	assert.Equal(t, content.DefaultMinToPublish, a.config.MinPublishScore)
}
