package models

import (
	"time"
)

// TopicUse records when a topic was last published
type TopicUse struct {
	Topic     string    `json:"topic"`
	Timestamp time.Time `json:"timestamp"`
}

// HashUse records a published content hash
type HashUse struct {
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timestamp"`
}

// DiversityState is the recent-window state persisted between runs
type DiversityState struct {
	RecentTopics []TopicUse `json:"recent_topics"`
	RecentHashes []HashUse  `json:"recent_hashes"`
}
