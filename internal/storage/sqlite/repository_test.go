package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devops-autopost/internal/history"
	"github.com/devops-autopost/internal/models"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "data", "history.db"))
	require.NoError(t, err)
	require.NoError(t, repo.Migrate())
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		require.NoError(t, repo.Append(ctx, models.HistoryEntry{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Title:     "Topic",
			Body:      string(rune('a' + i)),
			Score:     models.IntPtr(70 + i),
			Hash:      "hash-" + string(rune('a'+i)),
		}))
	}

	entries, err := repo.ReadRecent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, history.Bodies(entries))
	assert.Equal(t, 73, entries[1].ScoreValue())

	all, err := repo.ReadRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	found, err := repo.FindByHash(ctx, "hash-b")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "b", found.Body)

	missing, err := repo.FindByHash(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_SeenIndex(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.Append(ctx, models.HistoryEntry{
		Timestamp: time.Now().UTC(),
		Title:     "Terraform Testing",
		Body:      "Plan, test, apply.",
		Hash:      "hash-tf",
	}))
	require.NoError(t, repo.Mark(ctx, "hash-other"))

	assert.True(t, repo.Seen(ctx, "hash-tf"))
	assert.False(t, repo.Seen(ctx, "hash-other"))
	assert.False(t, repo.Seen(ctx, ""))
}

func TestRepository_EmptyReadsAsEmpty(t *testing.T) {
	entries, err := newRepo(t).ReadRecent(context.Background(), 50)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
