package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// MultiLimiter manages multiple rate limiters for different services
type MultiLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
}

// NewMultiLimiter creates a new multi-limiter
func NewMultiLimiter() *MultiLimiter {
	return &MultiLimiter{
		limiters: make(map[string]*rate.Limiter),
	}
}

// AddLimiter adds a new rate limiter for a service
// requestsPerSecond: the rate limit (e.g., 10 means 10 requests per second)
// burst: maximum burst size
func (m *MultiLimiter) AddLimiter(name string, requestsPerSecond float64, burst int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limiters[name] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// Wait blocks until the limiter allows an event. A nil MultiLimiter never blocks.
func (m *MultiLimiter) Wait(ctx context.Context, name string) error {
	if m == nil {
		return nil
	}

	m.mu.RLock()
	limiter, ok := m.limiters[name]
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("limiter %s not found", name)
	}

	return limiter.Wait(ctx)
}

// Allow reports whether an event may happen now
func (m *MultiLimiter) Allow(name string) bool {
	m.mu.RLock()
	limiter, ok := m.limiters[name]
	m.mu.RUnlock()

	if !ok {
		return false
	}

	return limiter.Allow()
}

// Default rate limiter names
const (
	LimiterLinkedIn  = "linkedin"
	LimiterAnthropic = "anthropic"
	LimiterOpenAI    = "openai"
	LimiterRSS       = "rss"
)

// Limits configures NewLimiter. Zero values fall back to defaults.
type Limits struct {
	LinkedInRequestsPerDay     int
	GeneratorRequestsPerMinute int
}

// NewDefaultLimiter creates a limiter with default rate limits
func NewDefaultLimiter() *MultiLimiter {
	return NewLimiter(Limits{})
}

// NewLimiter creates a limiter for the publishing pipeline
func NewLimiter(l Limits) *MultiLimiter {
	if l.LinkedInRequestsPerDay <= 0 {
		l.LinkedInRequestsPerDay = 100
	}
	if l.GeneratorRequestsPerMinute <= 0 {
		l.GeneratorRequestsPerMinute = 10
	}

	m := NewMultiLimiter()

	// LinkedIn: per-day budget, burst 5 so a publish and its fallback never wait
	m.AddLimiter(LimiterLinkedIn, float64(l.LinkedInRequestsPerDay)/(24*60*60), 5)

	// Generators share the per-minute budget; burst covers a few regeneration attempts
	perSecond := float64(l.GeneratorRequestsPerMinute) / 60
	m.AddLimiter(LimiterAnthropic, perSecond, 3)
	m.AddLimiter(LimiterOpenAI, perSecond, 3)

	// RSS: No strict limit, but be polite - 1 per second, burst 10
	m.AddLimiter(LimiterRSS, 1, 10)

	return m
}
