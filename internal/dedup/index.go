// Package dedup tracks content hashes of published posts so exact repeats
// are rejected before the similarity check runs.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/devops-autopost/internal/similarity"
)

// Index answers whether a content hash was published recently
type Index interface {
	Seen(ctx context.Context, hash string) bool
	Mark(ctx context.Context, hash string) error
}

// Hash returns the hex sha256 of the normalized text, so case and
// punctuation variants of the same post share a hash.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(similarity.Normalize(text)))
	return hex.EncodeToString(sum[:])
}

// Multi reports a hash as seen if any index has it and marks all of them
type Multi []Index

// Seen checks each index in order
func (m Multi) Seen(ctx context.Context, hash string) bool {
	for _, idx := range m {
		if idx != nil && idx.Seen(ctx, hash) {
			return true
		}
	}
	return false
}

// Mark marks every index and joins the failures
func (m Multi) Mark(ctx context.Context, hash string) error {
	var errs []error
	for _, idx := range m {
		if idx == nil {
			continue
		}
		if err := idx.Mark(ctx, hash); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
