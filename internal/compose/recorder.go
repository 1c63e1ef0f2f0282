package compose

import (
	"context"
	"time"

	"github.com/devops-autopost/internal/dedup"
	"github.com/devops-autopost/internal/diversity"
	"github.com/devops-autopost/internal/history"
	"github.com/devops-autopost/internal/models"
	"github.com/devops-autopost/pkg/logger"
)

// Recorder persists a published candidate. Every write is best effort:
// failures are logged and the cycle still counts as published.
type Recorder struct {
	History   history.Store
	Diversity *diversity.Tracker
	Hashes    dedup.Index // extra hash indices, e.g. redis
	Log       *logger.Logger
}

// Record writes the history entry, the diversity state and the hash marks
func (r *Recorder) Record(ctx context.Context, result *Result, postURN string, at time.Time) {
	log := r.Log
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("recorder").WithTopic(result.Candidate.Title)

	if r.History != nil {
		entry := models.HistoryEntry{
			Timestamp: at,
			Title:     result.Candidate.Title,
			Body:      result.Candidate.Body,
			Score:     models.IntPtr(result.Quality.Score),
			Hash:      result.Hash,
			PostURN:   postURN,
		}
		if err := r.History.Append(ctx, entry); err != nil {
			log.Warn().Err(err).Msg("Failed to append history entry")
		}
	}

	if r.Diversity != nil {
		r.Diversity.Record(result.Topic.Title, result.Hash, at)
		if err := r.Diversity.Save(); err != nil {
			log.Warn().Err(err).Msg("Failed to save diversity state")
		}
	}

	if r.Hashes != nil {
		if err := r.Hashes.Mark(ctx, result.Hash); err != nil {
			log.Warn().Err(err).Msg("Failed to mark content hash")
		}
	}

	log.Info().
		Str("post_urn", postURN).
		Int("score", result.Quality.Score).
		Msg("Recorded published post")
}
