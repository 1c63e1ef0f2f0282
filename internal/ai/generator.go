package ai

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxGeneratedLength is the longest generated text kept as is
	MaxGeneratedLength = 2800
	// truncatedLength is where overlong text is cut before the closing question
	truncatedLength = 2700
	closingQuestion = "\n\n💬 What's your biggest challenge with this? Let's discuss!"
)

// Generator turns a prompt into post text
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// GenerationError reports a failed or unusable generator response
type GenerationError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s generation failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Finalize trims generated text and cuts overlong output, ending it with
// a discussion question so the post still closes cleanly.
func Finalize(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= MaxGeneratedLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:truncatedLength]) + closingQuestion
}
