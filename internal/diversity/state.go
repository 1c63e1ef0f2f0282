// Package diversity keeps the rolling window of recently used topics and
// content hashes between runs.
package diversity

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/devops-autopost/internal/models"
	"github.com/devops-autopost/pkg/logger"
)

// DefaultMaxEntries caps each list in the persisted state
const DefaultMaxEntries = 50

// Tracker holds the diversity state in memory and persists it as JSON
type Tracker struct {
	path       string
	maxEntries int
	log        *logger.Logger

	mu    sync.Mutex
	state models.DiversityState
}

// Open loads the state at path. A missing, unreadable or corrupt file
// starts an empty state; the next Save overwrites it.
func Open(path string, maxEntries int, log *logger.Logger) *Tracker {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	t := &Tracker{
		path:       path,
		maxEntries: maxEntries,
		log:        log.WithComponent("diversity"),
	}

	state, err := Load(path)
	if err != nil {
		t.log.Warn().Err(err).Str("path", path).Msg("Diversity state unusable, starting empty")
		return t
	}
	t.state = *state
	return t
}

// Load reads a state file. A missing file is an empty state.
func Load(path string) (*models.DiversityState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &models.DiversityState{}, nil
		}
		return nil, fmt.Errorf("failed to read diversity state: %w", err)
	}

	var state models.DiversityState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse diversity state: %w", err)
	}
	return &state, nil
}

// RecentTopics returns the lower-cased titles used at or after since
func (t *Tracker) RecentTopics(since time.Time) map[string]bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	recent := make(map[string]bool)
	for _, use := range t.state.RecentTopics {
		if !use.Timestamp.Before(since) {
			recent[topicKey(use.Topic)] = true
		}
	}
	return recent
}

// Seen reports whether hash is in the retained window
func (t *Tracker) Seen(_ context.Context, hash string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, use := range t.state.RecentHashes {
		if use.Hash == hash {
			return true
		}
	}
	return false
}

// Mark records a hash without a topic. State is saved on the next Save.
func (t *Tracker) Mark(_ context.Context, hash string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.addHash(hash, time.Now())
	return nil
}

// Record adds a published topic and its hash, trimming both lists
func (t *Tracker) Record(topic, hash string, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if topic != "" {
		t.state.RecentTopics = append(t.state.RecentTopics, models.TopicUse{Topic: topic, Timestamp: at})
		if over := len(t.state.RecentTopics) - t.maxEntries; over > 0 {
			t.state.RecentTopics = t.state.RecentTopics[over:]
		}
	}
	if hash != "" {
		t.addHash(hash, at)
	}
}

func (t *Tracker) addHash(hash string, at time.Time) {
	t.state.RecentHashes = append(t.state.RecentHashes, models.HashUse{Hash: hash, Timestamp: at})
	if over := len(t.state.RecentHashes) - t.maxEntries; over > 0 {
		t.state.RecentHashes = t.state.RecentHashes[over:]
	}
}

// State returns a copy of the current state
func (t *Tracker) State() models.DiversityState {
	t.mu.Lock()
	defer t.mu.Unlock()

	return models.DiversityState{
		RecentTopics: append([]models.TopicUse(nil), t.state.RecentTopics...),
		RecentHashes: append([]models.HashUse(nil), t.state.RecentHashes...),
	}
}

// Save overwrites the state file through a temp file and rename
func (t *Tracker) Save() error {
	state := t.State()
	if state.RecentTopics == nil {
		state.RecentTopics = []models.TopicUse{}
	}
	if state.RecentHashes == nil {
		state.RecentHashes = []models.HashUse{}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode diversity state: %w", err)
	}

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".diversity-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write diversity state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write diversity state: %w", err)
	}
	if err := os.Rename(tmpName, t.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace diversity state: %w", err)
	}

	t.log.Debug().
		Int("topics", len(state.RecentTopics)).
		Int("hashes", len(state.RecentHashes)).
		Msg("Diversity state saved")
	return nil
}

func topicKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
