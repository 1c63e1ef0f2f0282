package dedup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devops-autopost/pkg/logger"
)

func newTracker(t *testing.T, ttl time.Duration) (*RedisTracker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisTracker(client, ttl, logger.Nop()), mr
}

func TestHash_NormalizesText(t *testing.T) {
	assert.Equal(t, Hash("cut cloud costs now"), Hash("Cut Cloud Costs Now!!"))
	assert.NotEqual(t, Hash("cut cloud costs now"), Hash("cut cloud costs later"))
	assert.Len(t, Hash(""), 64)
}

func TestRedisTracker_MarkAndSeen(t *testing.T) {
	ctx := context.Background()
	tr, mr := newTracker(t, 7*24*time.Hour)

	assert.False(t, tr.Seen(ctx, "abc"))
	require.NoError(t, tr.Mark(ctx, "abc"))
	assert.True(t, tr.Seen(ctx, "abc"))
	assert.True(t, mr.Exists("posted:content:abc"))

	mr.FastForward(8 * 24 * time.Hour)
	assert.False(t, tr.Seen(ctx, "abc"), "key expires after the window")
}

func TestRedisTracker_Clear(t *testing.T) {
	ctx := context.Background()
	tr, mr := newTracker(t, 0)

	require.NoError(t, tr.Mark(ctx, "a"))
	require.NoError(t, tr.Mark(ctx, "b"))
	require.NoError(t, mr.Set("unrelated", "x"))

	n, err := tr.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, mr.Exists("unrelated"))
}

func TestRedisTracker_ServerDownIsNotSeen(t *testing.T) {
	tr, mr := newTracker(t, time.Hour)
	mr.Close()

	assert.False(t, tr.Seen(context.Background(), "abc"))
	assert.Error(t, tr.Mark(context.Background(), "abc"))
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisClient(context.Background(), addr, "", 0)
	assert.Error(t, err)
}

type memIndex struct {
	seen map[string]bool
	err  error
}

func (m *memIndex) Seen(_ context.Context, hash string) bool { return m.seen[hash] }

func (m *memIndex) Mark(_ context.Context, hash string) error {
	if m.err != nil {
		return m.err
	}
	m.seen[hash] = true
	return nil
}

func TestMulti(t *testing.T) {
	ctx := context.Background()
	a := &memIndex{seen: map[string]bool{"x": true}}
	b := &memIndex{seen: map[string]bool{}, err: errors.New("down")}
	m := Multi{a, nil, b}

	assert.True(t, m.Seen(ctx, "x"))
	assert.False(t, m.Seen(ctx, "y"))

	err := m.Mark(ctx, "y")
	assert.ErrorContains(t, err, "down")
	assert.True(t, a.seen["y"], "healthy indices are still marked")
}
