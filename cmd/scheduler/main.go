package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/devops-autopost/internal/agent/publisher"
	"github.com/devops-autopost/internal/app"
	"github.com/devops-autopost/internal/config"
	"github.com/devops-autopost/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *logger.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "devops-autopost-scheduler",
		Short: "Background scheduler for the DevOps post publisher",
		Long: `Runs the compose and publish cycle on the configured cron schedules.
This daemon should be run as a service for autonomous operation.`,
		RunE: runScheduler,
	}

	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file path")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScheduler(cmd *cobra.Command, args []string) error {
	var err error

	// Load config
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !cfg.Publishing.DryRun {
		if err := cfg.ValidateForPublish(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}

	// Initialize logger
	log = logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	log.Info().
		Str("provider", cfg.Generator.Provider).
		Bool("dry_run", cfg.Publishing.DryRun).
		Msg("Starting DevOps Autopost Scheduler")

	status := &runStatus{}
	c, err := newCron(cfg.Scheduler.PublishCrons, func() { runCycle(status) })
	if err != nil {
		return err
	}

	server := startHealthServer(cfg.Scheduler.Port, status)

	// Start scheduler
	c.Start()
	log.Info().Msg("Scheduler started")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutting down scheduler")
	<-c.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newCron registers one guarded job for every schedule, so cycles never
// overlap. Schedules are validated before anything starts listening.
func newCron(specs []string, cycle func()) (*cron.Cron, error) {
	if len(specs) == 0 {
		return nil, errors.New("no publish schedules configured")
	}

	c := cron.New(cron.WithLogger(cronLogger{log}))
	job := cron.NewChain(cron.SkipIfStillRunning(cronLogger{log})).Then(cron.FuncJob(cycle))

	for _, spec := range specs {
		if _, err := c.AddJob(spec, job); err != nil {
			return nil, fmt.Errorf("failed to schedule publish job %q: %w", spec, err)
		}
		log.Info().Str("cron", spec).Msg("Publish job scheduled")
	}
	return c, nil
}

// runCycle wires a fresh pipeline so every cycle sees the latest history,
// diversity state and feed topics.
func runCycle(status *runStatus) {
	ctx := context.Background()
	log.Info().Msg("Running scheduled publish")

	a, err := app.Build(ctx, cfg, log, app.Options{
		Publish:  !cfg.Publishing.DryRun,
		Discover: true,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize pipeline")
		status.record(nil, err)
		return
	}
	defer a.Close()

	result, err := a.Publisher.Run(ctx, publisher.RunOptions{})
	status.record(result, err)
	if err != nil {
		log.Error().Err(err).Msg("Scheduled publish failed")
		return
	}

	log.Info().
		Bool("published", result.Published).
		Str("linkedin_urn", result.PostURN).
		Int("score", result.Compose.Quality.Score).
		Msg("Scheduled publish completed")
}

// runStatus is the last cycle outcome reported by /health
type runStatus struct {
	mu        sync.Mutex
	lastRun   time.Time
	lastError string
	lastURN   string
	runs      int
}

func (s *runStatus) record(result *publisher.RunResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs++
	s.lastRun = time.Now()
	s.lastError = ""
	if err != nil {
		s.lastError = err.Error()
	}
	if result != nil && result.Published {
		s.lastURN = result.PostURN
	}
}

func (s *runStatus) MarshalJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[string]interface{}{
		"status": "ok",
		"runs":   s.runs,
	}
	if !s.lastRun.IsZero() {
		out["last_run"] = s.lastRun.Format(time.RFC3339)
	}
	if s.lastError != "" {
		out["last_error"] = s.lastError
	}
	if s.lastURN != "" {
		out["last_urn"] = s.lastURN
	}
	return json.Marshal(out)
}

// cronLogger adapts our logger for cron
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// startHealthServer serves /health for the hosting platform
func startHealthServer(port string, status *runStatus) *http.Server {
	if port == "" {
		port = "10000"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("DevOps Autopost Scheduler"))
	})

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", port).Msg("Health check server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Health server failed")
		}
	}()
	return server
}
