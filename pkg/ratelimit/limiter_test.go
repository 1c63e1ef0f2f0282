package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiLimiter_UnknownLimiter(t *testing.T) {
	m := NewMultiLimiter()

	err := m.Wait(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
	assert.False(t, m.Allow("missing"))
}

func TestMultiLimiter_NilNeverBlocks(t *testing.T) {
	var m *MultiLimiter
	assert.NoError(t, m.Wait(context.Background(), LimiterLinkedIn))
}

func TestNewLimiter_BurstAllowsRegeneration(t *testing.T) {
	m := NewLimiter(Limits{})

	for i := 0; i < 3; i++ {
		assert.True(t, m.Allow(LimiterAnthropic), "request %d should fit in burst", i)
	}
	assert.False(t, m.Allow(LimiterAnthropic))
	assert.True(t, m.Allow(LimiterOpenAI))
	assert.True(t, m.Allow(LimiterLinkedIn))
}
