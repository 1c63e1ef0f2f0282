package history

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/devops-autopost/internal/models"
	"github.com/devops-autopost/pkg/logger"
)

const maxLineSize = 1 << 20

// FileStore keeps history as JSON Lines, one entry per line, appended with
// O_APPEND so earlier lines are never rewritten.
type FileStore struct {
	path string
	log  *logger.Logger
}

// NewFileStore creates a JSON Lines store. The file is created on first append.
func NewFileStore(path string, log *logger.Logger) *FileStore {
	return &FileStore{
		path: path,
		log:  log.WithComponent("history").WithStore("file"),
	}
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

// Append writes one line
func (s *FileStore) Append(ctx context.Context, entry models.HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return &IOError{Op: "write", Backend: "file", Err: fmt.Errorf("failed to encode entry: %w", err)}
	}

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &IOError{Op: "write", Backend: "file", Err: err}
		}
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return &IOError{Op: "write", Backend: "file", Err: err}
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return &IOError{Op: "write", Backend: "file", Err: err}
	}

	s.log.Debug().Str("title", entry.Title).Str("path", s.path).Msg("History entry appended")
	return nil
}

// ReadRecent returns the last n entries. Unparseable lines are skipped.
func (s *FileStore) ReadRecent(ctx context.Context, n int) ([]models.HistoryEntry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &IOError{Op: "read", Backend: "file", Err: err}
	}
	defer f.Close()

	var entries []models.HistoryEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var entry models.HistoryEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			s.log.Warn().Err(err).Int("line", lineNo).Msg("Skipping malformed history line")
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, &IOError{Op: "read", Backend: "file", Err: err}
	}

	return tail(entries, n), nil
}

// Close is a no-op; the file is opened per call
func (s *FileStore) Close() error {
	return nil
}

var _ Store = (*FileStore)(nil)
