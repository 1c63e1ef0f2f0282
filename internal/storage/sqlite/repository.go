package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/devops-autopost/internal/history"
	"github.com/devops-autopost/internal/models"
)

// Repository implements history.Store using SQLite
type Repository struct {
	db *gorm.DB
}

// New creates a new SQLite repository
func New(dsn string) (*Repository, error) {
	// Ensure directory exists
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" && dsn != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Repository{db: db}, nil
}

// Migrate runs database migrations
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&models.HistoryEntry{})
}

// Close closes the database connection
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Append inserts a history row
func (r *Repository) Append(ctx context.Context, entry models.HistoryEntry) error {
	entry.ID = 0
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return &history.IOError{Op: "write", Backend: "sqlite", Err: err}
	}
	return nil
}

// ReadRecent returns the newest n rows, oldest first
func (r *Repository) ReadRecent(ctx context.Context, n int) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	query := r.db.WithContext(ctx).Model(&models.HistoryEntry{}).Order("timestamp DESC, id DESC")
	if n > 0 {
		query = query.Limit(n)
	}

	if err := query.Find(&entries).Error; err != nil {
		return nil, &history.IOError{Op: "read", Backend: "sqlite", Err: err}
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// FindByHash returns the entry with the given content hash, or nil
func (r *Repository) FindByHash(ctx context.Context, hash string) (*models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	if err := r.db.WithContext(ctx).Where("hash = ?", hash).Limit(1).Find(&entries).Error; err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// Seen reports whether a post with this content hash is already stored.
// Lookup failures count as unseen.
func (r *Repository) Seen(ctx context.Context, hash string) bool {
	if hash == "" {
		return false
	}
	entry, err := r.FindByHash(ctx, hash)
	return err == nil && entry != nil
}

// Mark is a no-op; the hash is stored with the history row on Append
func (r *Repository) Mark(context.Context, string) error {
	return nil
}

var _ history.Store = (*Repository)(nil)
