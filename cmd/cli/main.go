package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/devops-autopost/internal/agent/publisher"
	"github.com/devops-autopost/internal/app"
	"github.com/devops-autopost/internal/config"
	"github.com/devops-autopost/internal/content"
	"github.com/devops-autopost/internal/dedup"
	"github.com/devops-autopost/internal/history"
	"github.com/devops-autopost/internal/linkedin"
	"github.com/devops-autopost/internal/models"
	"github.com/devops-autopost/internal/similarity"
	"github.com/devops-autopost/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *logger.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "devops-autopost",
		Short: "DevOps LinkedIn post composer and publisher",
		Long: `Composes DevOps marketing posts from a topic catalog or a text generator,
rejects near-duplicates of recent posts and publishes the result to LinkedIn.`,
		PersistentPreRunE: initializeApp,
		SilenceUsage:      true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yaml)")

	// Add subcommands
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(scoreCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(topicsCmd())
	rootCmd.AddCommand(oauthCmd())
	rootCmd.AddCommand(dedupCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initializeApp(cmd *cobra.Command, args []string) error {
	var err error

	// Load config
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log = logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	return nil
}

// ============ RUN COMMAND ============

func runCmd() *cobra.Command {
	var dryRun bool
	var noDiscover bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compose a post and publish it to LinkedIn",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			dryRun = dryRun || cfg.Publishing.DryRun

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			if !dryRun {
				if err := cfg.ValidateForPublish(); err != nil {
					return fmt.Errorf("invalid config: %w", err)
				}
			}

			a, err := app.Build(ctx, cfg, log, app.Options{Publish: !dryRun, Discover: !noDiscover})
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Publisher.Run(ctx, publisher.RunOptions{DryRun: dryRun})
			if result != nil && result.Compose != nil {
				printRunResult(result)
				writeGitHubOutput(result)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compose and print the post without publishing")
	cmd.Flags().BoolVar(&noDiscover, "no-discover", false, "Skip RSS and keyword topic sources")
	return cmd
}

func printRunResult(result *publisher.RunResult) {
	composed := result.Compose

	if result.DryRun {
		fmt.Printf("\n=== Dry Run ===\n")
	} else {
		fmt.Printf("\n=== Publish Result ===\n")
	}
	fmt.Printf("Topic:    %s\n", composed.Candidate.Title)
	fmt.Printf("Score:    %d/100\n", composed.Quality.Score)
	fmt.Printf("Attempts: %d\n", composed.Candidate.Attempt)
	fmt.Printf("Fallback: %t\n", composed.Fallback)
	if result.Published {
		fmt.Printf("URN:      %s\n", result.PostURN)
		fmt.Printf("Author:   %s\n", result.Mode)
	}

	if len(composed.Rejections) > 0 {
		fmt.Printf("\nRejected attempts:\n")
		for _, r := range composed.Rejections {
			fmt.Printf("  %d. %-12s %s (score %d)\n", r.Attempt, r.Reason, r.Topic, r.Score)
		}
	}

	if result.DryRun {
		fmt.Printf("\n%s\n%s\n%s\n", strings.Repeat("=", 50), composed.Candidate.Body, strings.Repeat("=", 50))
		printQuality(composed.Quality)
	}
}

// writeGitHubOutput exposes the run outcome to later workflow steps
func writeGitHubOutput(result *publisher.RunResult) {
	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		return
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to open GITHUB_OUTPUT")
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "published=%t\n", result.Published)
	fmt.Fprintf(f, "post_urn=%s\n", result.PostURN)
	fmt.Fprintf(f, "topic=%s\n", result.Compose.Candidate.Title)
	fmt.Fprintf(f, "score=%d\n", result.Compose.Quality.Score)
	fmt.Fprintf(f, "fallback=%t\n", result.Compose.Fallback)
}

// ============ CHECK / SCORE COMMANDS ============

func checkCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "check [text]",
		Short: "Compare text against recent history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			text, err := inputText(args, file)
			if err != nil {
				return err
			}

			blend, err := similarity.BlendByName(cfg.Similarity.Blend)
			if err != nil {
				return err
			}
			filter := similarity.NewFilter(cfg.Similarity.Threshold, cfg.Similarity.Window, blend)

			store, err := app.OpenHistory(ctx, cfg.History, log)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.ReadRecent(ctx, filter.Window)
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}

			match := filter.Best(text, history.Bodies(entries))

			fmt.Printf("\n=== Similarity Check ===\n")
			fmt.Printf("Compared against: %d posts\n", len(entries))
			fmt.Printf("Content hash:     %s\n", dedup.Hash(text))
			if match.Index < 0 {
				fmt.Println("No history to compare against")
				return nil
			}

			closest := entries[match.Index]
			fmt.Printf("Closest post:     %s (%s)\n", closest.Title, closest.Timestamp.Format("2006-01-02"))
			fmt.Printf("Sequence:         %.3f\n", match.Scores.Sequence)
			fmt.Printf("Cosine:           %.3f\n", match.Scores.Cosine)
			fmt.Printf("Jaccard:          %.3f\n", match.Scores.Jaccard)
			fmt.Printf("Combined:         %.3f (threshold %.2f)\n", match.Scores.Combined, filter.Threshold)
			fmt.Printf("Too similar:      %t\n", filter.TooSimilar(text, history.Bodies(entries)))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Read the text from a file")
	return cmd
}

func scoreCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "score [text]",
		Short: "Score text against the quality rubric",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(args, file)
			if err != nil {
				return err
			}

			report := content.DefaultScorer().Score(text)
			fmt.Printf("\n=== Quality Score ===\n")
			fmt.Printf("Score:    %d/100\n", report.Score)
			fmt.Printf("Gate:     %s (min %d)\n", passFail(report.Passes(cfg.Content.MinQuality)), cfg.Content.MinQuality)
			fmt.Printf("Publish:  %s (min %d)\n", passFail(report.Passes(cfg.Publishing.MinPublishScore)), cfg.Publishing.MinPublishScore)
			fmt.Printf("Hashtags: %d\n", len(content.ExtractHashtags(text)))
			printQuality(report)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Read the text from a file")
	return cmd
}

func inputText(args []string, file string) (string, error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(data), nil
	case len(args) == 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("provide the text as an argument or with --file")
	}
}

func printQuality(report models.QualityReport) {
	fmt.Printf("\nValidation:\n")
	fmt.Printf("  %s Business value\n", mark(report.HasBusinessValue))
	fmt.Printf("  %s Metrics\n", mark(report.HasMetrics))
	fmt.Printf("  %s Engagement\n", mark(report.HasEngagement))
	fmt.Printf("  %s Call to action\n", mark(report.HasCTA))
	for _, issue := range report.Issues {
		fmt.Printf("  - %s\n", issue)
	}
}

func mark(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}

func passFail(ok bool) string {
	if ok {
		return "pass"
	}
	return "fail"
}

// ============ HISTORY COMMANDS ============

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Published post history",
	}

	cmd.AddCommand(historyListCmd())
	cmd.AddCommand(historyImportCmd())
	return cmd
}

func historyListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			store, err := app.OpenHistory(ctx, cfg.History, log)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.ReadRecent(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}

			fmt.Printf("\n=== History (%d) ===\n\n", len(entries))
			for i := len(entries) - 1; i >= 0; i-- {
				e := entries[i]
				score := "-"
				if e.Score != nil {
					score = strconv.Itoa(*e.Score)
				}
				fmt.Printf("%s  [%3s]  %s\n", e.Timestamp.Local().Format("2006-01-02 15:04"), score, truncateStr(e.Title, 60))
				if e.PostURN != "" {
					fmt.Printf("                           %s\n", e.PostURN)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of posts to show (0 for all)")
	return cmd
}

func historyImportCmd() *cobra.Command {
	var tz string

	cmd := &cobra.Command{
		Use:   "import <legacy-log>",
		Short: "Import posts from the legacy plain-text log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			loc, err := time.LoadLocation(tz)
			if err != nil {
				return fmt.Errorf("invalid timezone %q: %w", tz, err)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open legacy log: %w", err)
			}
			defer f.Close()

			entries, err := history.ParseLegacyLog(f, loc)
			if err != nil {
				return err
			}

			store, err := app.OpenHistory(ctx, cfg.History, log)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, entry := range entries {
				if entry.Hash == "" {
					entry.Hash = dedup.Hash(entry.Body)
				}
				if err := store.Append(ctx, entry); err != nil {
					return fmt.Errorf("failed to import %q: %w", entry.Title, err)
				}
			}

			fmt.Printf("Imported %d posts into %s history\n", len(entries), cfg.History.Backend)
			return nil
		},
	}

	cmd.Flags().StringVar(&tz, "tz", "Local", "Timezone of the legacy timestamps")
	return cmd
}

// ============ TOPICS COMMANDS ============

func topicsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Topic catalog commands",
	}

	cmd.AddCommand(topicsListCmd())
	return cmd
}

func topicsListCmd() *cobra.Command {
	var discover bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog topics and whether they are in the diversity window",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := app.Build(ctx, cfg, log, app.Options{Discover: discover})
			if err != nil {
				return err
			}
			defer a.Close()

			recent := a.Diversity.RecentTopics(time.Now().Add(-cfg.Diversity.Window()))
			today := a.Catalog.PickByDate(time.Now())

			topics := a.Catalog.Topics()
			fmt.Printf("\n=== Topics (%d) ===\n\n", len(topics))
			for _, t := range topics {
				flags := ""
				if recent[t.Key()] {
					flags += " [recent]"
				}
				if t.Key() == today.Key() {
					flags += " [fallback today]"
				}
				fmt.Printf("  %-8s %s%s\n", t.Source, truncateStr(t.Title, 70), flags)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&discover, "discover", false, "Include RSS and keyword topics")
	return cmd
}

// ============ OAUTH COMMANDS ============

func oauthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oauth",
		Short: "LinkedIn OAuth management",
	}

	cmd.AddCommand(oauthLoginCmd())
	cmd.AddCommand(oauthStatusCmd())
	return cmd
}

func oauthLoginCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start LinkedIn OAuth login flow",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			if cfg.LinkedIn.ClientID == "" || cfg.LinkedIn.ClientSecret == "" {
				return fmt.Errorf("linkedin client_id and client_secret are required for login")
			}

			oauthManager := linkedin.NewOAuthManager(cfg.LinkedIn, log)

			fmt.Printf("Starting OAuth server on %s...\n", addr)
			token, err := oauthManager.StartOAuthServer(ctx, addr, func(url string) {
				fmt.Printf("\nPlease open this URL in your browser:\n%s\n", url)
			})
			if err != nil {
				return fmt.Errorf("OAuth failed: %w", err)
			}

			fmt.Println("\nAuthentication successful!")
			fmt.Println("# LinkedIn OAuth Token - Copy these to your environment variables:")
			fmt.Printf("LINKEDIN_ACCESS_TOKEN=%s\n", token.AccessToken)
			if token.RefreshToken != "" {
				fmt.Printf("LINKEDIN_REFRESH_TOKEN=%s\n", token.RefreshToken)
			}
			fmt.Printf("LINKEDIN_TOKEN_EXPIRES_AT=%s\n", token.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "Address for the OAuth callback server")
	return cmd
}

func oauthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check OAuth token status",
		RunE: func(cmd *cobra.Command, args []string) error {
			oauthManager := linkedin.NewOAuthManager(cfg.LinkedIn, log)
			valid, expiresAt, err := oauthManager.GetTokenStatus()

			if err != nil {
				fmt.Println("Status: Not authenticated")
				fmt.Println("Set LINKEDIN_ACCESS_TOKEN or run 'devops-autopost oauth login'")
				return nil
			}

			fmt.Printf("Status:     %s\n", map[bool]string{true: "Valid", false: "Expired"}[valid])
			fmt.Printf("Expires at: %s (%s)\n", expiresAt.Format(time.RFC1123), formatDuration(time.Until(expiresAt)))

			if !valid {
				fmt.Println("\nToken expired. Run 'devops-autopost oauth login' to re-authenticate")
			}
			return nil
		},
	}
}

// ============ DEDUP COMMANDS ============

func dedupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dedup",
		Short: "Seen content hash commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every published hash from Redis",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := dedup.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				return err
			}
			defer client.Close()

			n, err := dedup.NewRedisTracker(client, cfg.Diversity.Window(), log).Clear(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Cleared %d hashes\n", n)
			return nil
		},
	})
	return cmd
}

// ============ HELPERS ============

func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		return "expired"
	}
	days := int(d.Hours()) / 24
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, int(d.Hours())%24)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
