// Package app wires configuration into the publishing pipeline shared by
// the CLI and the scheduler daemon.
package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	openaiopt "github.com/openai/openai-go/option"

	"github.com/devops-autopost/internal/agent/discovery"
	"github.com/devops-autopost/internal/agent/publisher"
	"github.com/devops-autopost/internal/ai"
	"github.com/devops-autopost/internal/catalog"
	"github.com/devops-autopost/internal/compose"
	"github.com/devops-autopost/internal/config"
	"github.com/devops-autopost/internal/content"
	"github.com/devops-autopost/internal/dedup"
	"github.com/devops-autopost/internal/diversity"
	"github.com/devops-autopost/internal/history"
	"github.com/devops-autopost/internal/linkedin"
	"github.com/devops-autopost/internal/similarity"
	"github.com/devops-autopost/internal/source"
	"github.com/devops-autopost/internal/source/custom"
	"github.com/devops-autopost/internal/source/rss"
	"github.com/devops-autopost/internal/storage/sheets"
	"github.com/devops-autopost/internal/storage/sqlite"
	"github.com/devops-autopost/pkg/logger"
	"github.com/devops-autopost/pkg/ratelimit"
)

// History backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// App holds the wired pipeline for one process
type App struct {
	Config    *config.Config
	Log       *logger.Logger
	Limiter   *ratelimit.MultiLimiter
	History   history.Store
	Diversity *diversity.Tracker
	Redis     *dedup.RedisTracker
	Catalog   *catalog.Catalog
	Composer  *compose.Composer
	Recorder  *compose.Recorder
	Publisher *publisher.Agent

	closers []func() error
}

// Options controls what Build wires
type Options struct {
	// Publish wires the LinkedIn publisher; dry runs leave it out
	Publish bool
	// Discover extends the catalog from the configured topic sources
	Discover bool
}

// Build wires every component from configuration. The returned App must be
// closed by the caller.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger, opts Options) (*App, error) {
	a := &App{
		Config: cfg,
		Log:    log,
		Limiter: ratelimit.NewLimiter(ratelimit.Limits{
			LinkedInRequestsPerDay:     cfg.RateLimit.LinkedInRequestsPerDay,
			GeneratorRequestsPerMinute: cfg.RateLimit.GeneratorRequestsPerMinute,
		}),
	}

	store, err := OpenHistory(ctx, cfg.History, log)
	if err != nil {
		return nil, err
	}
	a.History = store
	a.closers = append(a.closers, store.Close)

	a.Diversity = diversity.Open(cfg.Diversity.Path, cfg.Diversity.MaxEntries, log)

	seen := dedup.Multi{a.Diversity}
	if idx, ok := history.Primary(store).(dedup.Index); ok {
		seen = append(seen, idx)
	}
	if cfg.Redis.Enabled {
		client, err := dedup.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, continuing without it")
		} else {
			a.Redis = dedup.NewRedisTracker(client, cfg.Diversity.Window(), log)
			a.closers = append(a.closers, client.Close)
			seen = append(seen, a.Redis)
		}
	}

	a.Catalog, err = LoadCatalog(cfg.Content)
	if err != nil {
		a.Close()
		return nil, err
	}
	if opts.Discover {
		result := discovery.NewAgent(NewSourceManager(cfg.Sources, a.Limiter, log), log).Run(ctx, a.Catalog)
		a.Catalog = result.Catalog
	}

	generator, err := NewGenerator(cfg, a.Limiter, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Composer, err = NewComposer(cfg, a.Catalog, generator, seen, a.Diversity, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Recorder = &compose.Recorder{History: store, Diversity: a.Diversity, Log: log}
	if a.Redis != nil {
		a.Recorder.Hashes = a.Redis
	}

	var poster publisher.Poster
	if opts.Publish {
		poster = NewLinkedInPublisher(cfg.LinkedIn, a.Limiter, log)
	}
	a.Publisher = publisher.NewAgent(a.Composer, store, a.Recorder, poster, cfg.Publishing, cfg.Similarity.Window, log)

	return a, nil
}

// Close releases every opened backend
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// OpenHistory opens the primary history store and the optional Sheets
// mirror. An unreachable mirror is logged and skipped, and a SQLite
// database that cannot be opened falls back to the file store.
func OpenHistory(ctx context.Context, cfg config.HistoryConfig, log *logger.Logger) (history.Store, error) {
	var primary history.Store

	switch cfg.Backend {
	case "", BackendFile:
		primary = history.NewFileStore(cfg.Path, log)
	case BackendSQLite:
		repo, err := openSQLite(cfg.DSN)
		if err != nil {
			log.Warn().Err(err).Str("dsn", cfg.DSN).Str("fallback", cfg.Path).Msg("SQLite history unavailable, using file history")
			primary = history.NewFileStore(cfg.Path, log)
			break
		}
		primary = repo
	default:
		return nil, fmt.Errorf("unknown history backend: %s", cfg.Backend)
	}

	log.Info().Str("backend", cfg.Backend).Msg("History store opened")

	if !cfg.Sheets.Enabled {
		return primary, nil
	}

	mirror, err := sheets.New(ctx, sheets.Config{
		SpreadsheetID:      cfg.Sheets.SpreadsheetID,
		SheetName:          cfg.Sheets.SheetName,
		CredentialsFile:    cfg.Sheets.CredentialsFile,
		ServiceAccountJSON: cfg.Sheets.ServiceAccountJSON,
	}, log)
	if err == nil {
		err = mirror.Initialize(ctx)
	}
	if err != nil {
		log.Warn().Err(err).Msg("Google Sheets mirror unavailable, continuing without it")
		return primary, nil
	}

	return history.NewMulti(primary, log, mirror), nil
}

func openSQLite(dsn string) (*sqlite.Repository, error) {
	repo, err := sqlite.New(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := repo.Migrate(); err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return repo, nil
}

// LoadCatalog returns the configured catalog file or the built-in catalog
func LoadCatalog(cfg config.ContentConfig) (*catalog.Catalog, error) {
	if cfg.CatalogFile == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(cfg.CatalogFile)
}

// NewSourceManager registers the enabled topic sources
func NewSourceManager(cfg config.SourcesConfig, limiter *ratelimit.MultiLimiter, log *logger.Logger) *source.Manager {
	m := source.NewManager()
	if cfg.RSS.Enabled {
		for _, src := range rss.NewMultiple(cfg.RSS, limiter, log) {
			m.Register(src)
		}
	}
	if cfg.Custom.Enabled {
		m.Register(custom.New(cfg.Custom, log))
	}
	return m
}

// NewGenerator returns the configured text generator, or nil in template mode
func NewGenerator(cfg *config.Config, limiter *ratelimit.MultiLimiter, log *logger.Logger) (ai.Generator, error) {
	timeout := cfg.Generator.Timeout

	switch cfg.Generator.Provider {
	case config.ProviderTemplate:
		return nil, nil
	case config.ProviderAnthropic:
		var opts []anthropicopt.RequestOption
		if timeout > 0 {
			opts = append(opts, anthropicopt.WithRequestTimeout(timeout))
		}
		return ai.NewAnthropicGenerator(cfg.Anthropic, limiter, log, opts...), nil
	case config.ProviderOpenAI, config.ProviderGemini:
		settings := cfg.OpenAI
		if cfg.Generator.Provider == config.ProviderGemini {
			settings = cfg.Gemini
		}
		var opts []openaiopt.RequestOption
		if timeout > 0 {
			opts = append(opts, openaiopt.WithRequestTimeout(timeout))
		}
		return ai.NewOpenAIGenerator(cfg.Generator.Provider, settings, limiter, log, opts...), nil
	default:
		return nil, fmt.Errorf("unknown generator provider: %s", cfg.Generator.Provider)
	}
}

// NewComposer builds the composer from the content and similarity settings
func NewComposer(
	cfg *config.Config,
	cat *catalog.Catalog,
	generator ai.Generator,
	seen dedup.Index,
	topics compose.TopicHistory,
	log *logger.Logger,
) (*compose.Composer, error) {
	blend, err := similarity.BlendByName(cfg.Similarity.Blend)
	if err != nil {
		return nil, err
	}

	seed := cfg.Content.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	enhancer := content.NewEnhancer(content.DefaultPools(), rng)
	if cfg.Content.MaxHashtags > 0 {
		enhancer.MaxHashtags = cfg.Content.MaxHashtags
	}
	if cfg.Content.MaxCTAs > 0 {
		enhancer.MaxCTAs = cfg.Content.MaxCTAs
	}
	enhancer.UrgencyChance = cfg.Content.UrgencyChance

	return compose.New(
		cat,
		generator,
		enhancer,
		similarity.NewFilter(cfg.Similarity.Threshold, cfg.Similarity.Window, blend),
		compose.Options{
			MaxAttempts:     cfg.Generator.MaxAttempts,
			DiversityWindow: cfg.Diversity.Window(),
			MinQuality:      cfg.Content.MinQuality,
			Seen:            seen,
			Topics:          topics,
			Rand:            rng,
		},
		log,
	), nil
}

// NewLinkedInPublisher wires the OAuth manager, API client and publisher
func NewLinkedInPublisher(cfg config.LinkedInConfig, limiter *ratelimit.MultiLimiter, log *logger.Logger) *linkedin.Publisher {
	oauth := linkedin.NewOAuthManager(cfg, log)
	client := linkedin.NewClient(cfg.BaseURL, oauth, limiter, log)
	return linkedin.NewPublisher(client, cfg.OrganizationID, cfg.PersonID)
}
