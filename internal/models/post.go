package models

import (
	"time"
)

// Candidate is a generated post proposed for publication
type Candidate struct {
	Title    string
	Body     string
	Attempt  int  // 1-based generation attempt that produced the candidate
	Fallback bool // Built from the deterministic fallback template
}

// HistoryEntry is one published post. Entries are appended, never mutated.
type HistoryEntry struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	Title     string    `gorm:"not null" json:"title"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Score     *int      `json:"score,omitempty"`
	Hash      string    `gorm:"index" json:"hash,omitempty"`
	PostURN   string    `json:"post_urn,omitempty"`
}

// TableName pins the sqlite table name
func (HistoryEntry) TableName() string {
	return "history_entries"
}

// ScoreValue returns the score or -1 when absent
func (e *HistoryEntry) ScoreValue() int {
	if e.Score == nil {
		return -1
	}
	return *e.Score
}

// IntPtr is a helper for optional scores
func IntPtr(v int) *int {
	return &v
}
