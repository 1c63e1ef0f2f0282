package publisher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devops-autopost/internal/compose"
	"github.com/devops-autopost/internal/config"
	"github.com/devops-autopost/internal/content"
	"github.com/devops-autopost/internal/history"
	"github.com/devops-autopost/internal/linkedin"
	"github.com/devops-autopost/pkg/logger"
)

// Poster publishes post text. *linkedin.Publisher satisfies it.
type Poster interface {
	Publish(ctx context.Context, text string) (*linkedin.PublishResult, error)
}

// QualityError aborts a cycle whose candidate scores below the publish floor
type QualityError struct {
	Score int
	Min   int
}

func (e *QualityError) Error() string {
	return fmt.Sprintf("quality score %d is below the publish minimum %d", e.Score, e.Min)
}

// Agent runs one compose and publish cycle
type Agent struct {
	composer      *compose.Composer
	history       history.Store
	recorder      *compose.Recorder
	poster        Poster
	config        config.PublishingConfig
	historyWindow int
	log           *logger.Logger
	now           func() time.Time
}

// NewAgent creates a new publisher agent. historyWindow is how many recent
// posts feed the similarity check; poster may be nil for dry runs.
func NewAgent(
	composer *compose.Composer,
	store history.Store,
	recorder *compose.Recorder,
	poster Poster,
	publishConfig config.PublishingConfig,
	historyWindow int,
	log *logger.Logger,
) *Agent {
	if publishConfig.MinPublishScore <= 0 {
		publishConfig.MinPublishScore = content.DefaultMinToPublish
	}
	return &Agent{
		composer:      composer,
		history:       store,
		recorder:      recorder,
		poster:        poster,
		config:        publishConfig,
		historyWindow: historyWindow,
		log:           log.WithComponent("publisher"),
		now:           time.Now,
	}
}

// RunOptions controls a single cycle
type RunOptions struct {
	DryRun bool
}

// RunResult contains the outcome of a cycle
type RunResult struct {
	Compose   *compose.Result
	DryRun    bool
	Published bool
	PostURN   string
	Mode      string
	Duration  time.Duration
}

// Run reads history, composes a candidate and publishes it. In dry-run mode
// it stops after composing and writes nothing.
func (a *Agent) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	startTime := time.Now()
	dryRun := opts.DryRun || a.config.DryRun
	result := &RunResult{DryRun: dryRun}

	a.log.Info().Bool("dry_run", dryRun).Msg("Starting publishing cycle")

	priors, err := a.readPriors(ctx)
	if err != nil {
		return nil, err
	}

	composed, err := a.composer.Compose(ctx, priors)
	if err != nil {
		return nil, fmt.Errorf("failed to compose post: %w", err)
	}
	result.Compose = composed

	if dryRun {
		result.Duration = time.Since(startTime)
		a.log.Info().
			Str("topic", composed.Candidate.Title).
			Int("score", composed.Quality.Score).
			Msg("Dry run, skipping publish")
		return result, nil
	}

	if composed.Quality.Score < a.config.MinPublishScore {
		a.log.Error().
			Int("score", composed.Quality.Score).
			Int("min", a.config.MinPublishScore).
			Msg("Quality too low, aborting")
		return result, &QualityError{Score: composed.Quality.Score, Min: a.config.MinPublishScore}
	}

	if a.poster == nil {
		return result, errors.New("no publisher configured")
	}

	published, err := a.poster.Publish(ctx, composed.Candidate.Body)
	if err != nil {
		a.log.Error().Err(err).Msg("Failed to publish post")
		return result, fmt.Errorf("failed to publish post: %w", err)
	}

	result.Published = true
	result.PostURN = published.URN
	result.Mode = published.Mode

	if a.recorder != nil {
		a.recorder.Record(ctx, composed, published.URN, a.now())
	}

	result.Duration = time.Since(startTime)
	a.log.Info().
		Str("linkedin_urn", published.URN).
		Str("mode", published.Mode).
		Int("attempt", composed.Candidate.Attempt).
		Bool("fallback", composed.Fallback).
		Dur("duration", result.Duration).
		Msg("Post published successfully")

	return result, nil
}

// readPriors returns recent post bodies. An unreadable history is treated
// as empty so a broken store never blocks publishing.
func (a *Agent) readPriors(ctx context.Context) ([]string, error) {
	if a.history == nil {
		return nil, nil
	}

	entries, err := a.history.ReadRecent(ctx, a.historyWindow)
	if err != nil {
		var ioErr *history.IOError
		if !errors.As(err, &ioErr) {
			return nil, fmt.Errorf("failed to read history: %w", err)
		}
		a.log.Warn().Err(err).Msg("History unreadable, continuing with empty history")
		return nil, nil
	}
	return history.Bodies(entries), nil
}
