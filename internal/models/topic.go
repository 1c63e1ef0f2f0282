package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringSlice is a custom type for storing string arrays in JSON
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported StringSlice source %T", value)
	}
}

// Topic sources
const (
	TopicSourceCatalog = "catalog"
	TopicSourceRSS     = "rss"
	TopicSourceCustom  = "custom"
)

// Topic is one entry of the topic catalog
type Topic struct {
	Title    string      `json:"title" yaml:"title"`
	Prompt   string      `json:"prompt,omitempty" yaml:"prompt"`     // Instructions for the text generator
	Body     string      `json:"body,omitempty" yaml:"body"`         // Static post text for template mode
	Keywords StringSlice `json:"keywords,omitempty" yaml:"keywords"` // Drives topic hashtags
	Source   string      `json:"source,omitempty" yaml:"source"`
	URL      string      `json:"url,omitempty" yaml:"url"`
}

// Key returns the identity used by the diversity window
func (t *Topic) Key() string {
	return strings.ToLower(strings.TrimSpace(t.Title))
}

// HasBody reports whether the topic carries static template text
func (t *Topic) HasBody() bool {
	return strings.TrimSpace(t.Body) != ""
}
