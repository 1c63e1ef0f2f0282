package history

import (
	"context"
	"fmt"

	"github.com/devops-autopost/internal/models"
	"github.com/devops-autopost/pkg/logger"
)

// Store is the append-only record of published posts.
// A missing store reads as empty.
type Store interface {
	// Append records a published post
	Append(ctx context.Context, entry models.HistoryEntry) error

	// ReadRecent returns up to n entries, oldest first. n <= 0 returns all.
	ReadRecent(ctx context.Context, n int) ([]models.HistoryEntry, error)

	// Close releases the backend
	Close() error
}

// IOError wraps a failure to read or write history
type IOError struct {
	Op      string // read or write
	Backend string
	Err     error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("history %s failed (%s): %v", e.Op, e.Backend, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Bodies returns the body text of each entry in order
func Bodies(entries []models.HistoryEntry) []string {
	bodies := make([]string, len(entries))
	for i := range entries {
		bodies[i] = entries[i].Body
	}
	return bodies
}

// tail keeps the last n entries
func tail(entries []models.HistoryEntry, n int) []models.HistoryEntry {
	if n > 0 && len(entries) > n {
		return entries[len(entries)-n:]
	}
	return entries
}

// Multi reads from the primary store and writes to every store. Mirror
// failures are logged and do not fail the append.
type Multi struct {
	primary Store
	mirrors []Store
	log     *logger.Logger
}

// NewMulti creates a fan-out store
func NewMulti(primary Store, log *logger.Logger, mirrors ...Store) *Multi {
	return &Multi{
		primary: primary,
		mirrors: mirrors,
		log:     log.WithComponent("history"),
	}
}

// Primary unwraps a fan-out store to its primary; any other store is
// returned as is.
func Primary(s Store) Store {
	if m, ok := s.(*Multi); ok {
		return m.primary
	}
	return s
}

// Append writes to the primary, then every mirror
func (m *Multi) Append(ctx context.Context, entry models.HistoryEntry) error {
	if err := m.primary.Append(ctx, entry); err != nil {
		return err
	}

	for _, mirror := range m.mirrors {
		if err := mirror.Append(ctx, entry); err != nil {
			m.log.Warn().Err(err).Msg("Failed to mirror history entry")
		}
	}

	return nil
}

// ReadRecent reads from the primary only
func (m *Multi) ReadRecent(ctx context.Context, n int) ([]models.HistoryEntry, error) {
	return m.primary.ReadRecent(ctx, n)
}

// Close closes every store and returns the first error
func (m *Multi) Close() error {
	first := m.primary.Close()
	for _, mirror := range m.mirrors {
		if err := mirror.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

var _ Store = (*Multi)(nil)
