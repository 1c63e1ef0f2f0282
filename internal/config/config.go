package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Generator providers
const (
	ProviderTemplate  = "template"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

// Config represents the application configuration
type Config struct {
	LinkedIn   LinkedInConfig   `mapstructure:"linkedin"`
	Generator  GeneratorConfig  `mapstructure:"generator"`
	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Gemini     OpenAIConfig     `mapstructure:"gemini"`
	Content    ContentConfig    `mapstructure:"content"`
	Similarity SimilarityConfig `mapstructure:"similarity"`
	History    HistoryConfig    `mapstructure:"history"`
	Diversity  DiversityConfig  `mapstructure:"diversity"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Sources    SourcesConfig    `mapstructure:"sources"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Publishing PublishingConfig `mapstructure:"publishing"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// LinkedInConfig holds LinkedIn API settings
type LinkedInConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	OrganizationID string `mapstructure:"organization_id"`
	// PersonID skips the profile lookup when set
	PersonID     string   `mapstructure:"person_id"`
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	RedirectURI  string   `mapstructure:"redirect_uri"`
	Scopes       []string `mapstructure:"scopes"`
	// Token injection from environment (for headless deployment)
	AccessToken    string `mapstructure:"access_token"`
	RefreshToken   string `mapstructure:"refresh_token"`
	TokenExpiresAt string `mapstructure:"token_expires_at"`
}

// GeneratorConfig selects the text generator
type GeneratorConfig struct {
	Provider    string        `mapstructure:"provider"` // template, anthropic, openai, gemini
	MaxAttempts int           `mapstructure:"max_attempts"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// AnthropicConfig holds Claude API settings
type AnthropicConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// OpenAIConfig holds settings for any OpenAI-compatible chat endpoint
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// ContentConfig holds topic and enhancement settings
type ContentConfig struct {
	CatalogFile   string  `mapstructure:"catalog_file"`
	MinQuality    int     `mapstructure:"min_quality"` // 0 disables the gate
	MaxHashtags   int     `mapstructure:"max_hashtags"`
	MaxCTAs       int     `mapstructure:"max_ctas"`
	UrgencyChance float64 `mapstructure:"urgency_chance"`
	Seed          int64   `mapstructure:"seed"` // 0 seeds from the clock
}

// SimilarityConfig holds near-duplicate filter settings
type SimilarityConfig struct {
	Threshold float64 `mapstructure:"threshold"`
	Window    int     `mapstructure:"window"`
	Blend     string  `mapstructure:"blend"` // combined or sequence
}

// HistoryConfig holds history store settings
type HistoryConfig struct {
	Backend string       `mapstructure:"backend"` // file or sqlite
	Path    string       `mapstructure:"path"`
	DSN     string       `mapstructure:"dsn"`
	Sheets  SheetsConfig `mapstructure:"sheets"`
}

// SheetsConfig holds the Google Sheets mirror settings
type SheetsConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	SpreadsheetID      string `mapstructure:"spreadsheet_id"`
	SheetName          string `mapstructure:"sheet_name"`
	CredentialsFile    string `mapstructure:"credentials_file"`
	ServiceAccountJSON string `mapstructure:"service_account_json"`
}

// DiversityConfig holds the recent topic/hash window settings
type DiversityConfig struct {
	Path       string `mapstructure:"path"`
	WindowDays int    `mapstructure:"window_days"`
	MaxEntries int    `mapstructure:"max_entries"`
}

// Window returns the diversity window as a duration
func (d DiversityConfig) Window() time.Duration {
	return time.Duration(d.WindowDays) * 24 * time.Hour
}

// RedisConfig holds the optional seen-hash index settings
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SourcesConfig holds extra topic source configurations
type SourcesConfig struct {
	RSS    RSSConfig    `mapstructure:"rss"`
	Custom CustomConfig `mapstructure:"custom"`
}

// RSSConfig holds RSS feed settings
type RSSConfig struct {
	Enabled    bool      `mapstructure:"enabled"`
	Feeds      []RSSFeed `mapstructure:"feeds"`
	MaxAgeDays int       `mapstructure:"max_age_days"`
	MaxItems   int       `mapstructure:"max_items"` // per feed
}

// RSSFeed represents a single RSS feed
type RSSFeed struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

// CustomConfig holds custom keyword settings
type CustomConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Keywords []string `mapstructure:"keywords"`
}

// SchedulerConfig holds scheduler settings
type SchedulerConfig struct {
	PublishCrons []string `mapstructure:"publish_crons"`
	Port         string   `mapstructure:"port"`
}

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	LinkedInRequestsPerDay     int `mapstructure:"linkedin_requests_per_day"`
	GeneratorRequestsPerMinute int `mapstructure:"generator_requests_per_minute"`
}

// PublishingConfig holds publishing settings
type PublishingConfig struct {
	MinPublishScore int  `mapstructure:"min_publish_score"`
	DryRun          bool `mapstructure:"dry_run"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
	Output string `mapstructure:"output"` // stdout or file path
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	// Load .env file if present (ignore errors if not found)
	_ = godotenv.Load()
	_ = godotenv.Load(".env.local")

	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".devops-autopost"))
		}
	}

	// AUTOPOST_SIMILARITY_THRESHOLD style overrides for every key
	v.SetEnvPrefix("AUTOPOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Secrets also accept the names the deployment secrets already use
	bindings := map[string][]string{
		"linkedin.access_token":     {"AUTOPOST_LINKEDIN_ACCESS_TOKEN", "LINKEDIN_ACCESS_TOKEN"},
		"linkedin.refresh_token":    {"AUTOPOST_LINKEDIN_REFRESH_TOKEN", "LINKEDIN_REFRESH_TOKEN"},
		"linkedin.token_expires_at": {"AUTOPOST_LINKEDIN_TOKEN_EXPIRES_AT", "LINKEDIN_TOKEN_EXPIRES_AT"},
		"linkedin.organization_id":  {"AUTOPOST_LINKEDIN_ORGANIZATION_ID", "LINKEDIN_ORGANIZATION_ID"},
		"linkedin.client_id":        {"AUTOPOST_LINKEDIN_CLIENT_ID", "LINKEDIN_CLIENT_ID"},
		"linkedin.client_secret":    {"AUTOPOST_LINKEDIN_CLIENT_SECRET", "LINKEDIN_CLIENT_SECRET"},
		"anthropic.api_key":         {"AUTOPOST_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"},
		"openai.api_key":            {"AUTOPOST_OPENAI_API_KEY", "OPENAI_API_KEY"},
		"gemini.api_key":            {"AUTOPOST_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"publishing.dry_run":        {"AUTOPOST_PUBLISHING_DRY_RUN", "DEBUG_MODE"},
		"scheduler.port":            {"AUTOPOST_SCHEDULER_PORT", "PORT"},
		"redis.addr":                {"AUTOPOST_REDIS_ADDR", "REDIS_ADDR"},
		"redis.password":            {"AUTOPOST_REDIS_PASSWORD", "REDIS_PASSWORD"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// LinkedIn defaults
	v.SetDefault("linkedin.base_url", "https://api.linkedin.com")
	v.SetDefault("linkedin.redirect_uri", "http://localhost:8080/callback")
	v.SetDefault("linkedin.scopes", []string{"w_member_social", "w_organization_social", "openid", "profile"})

	// Generator defaults
	v.SetDefault("generator.provider", ProviderGemini)
	v.SetDefault("generator.max_attempts", 7)
	v.SetDefault("generator.timeout", 30*time.Second)

	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.max_tokens", 1200)
	v.SetDefault("anthropic.temperature", 0.8)

	v.SetDefault("openai.base_url", "https://api.openai.com/v1/")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 1200)
	v.SetDefault("openai.temperature", 0.8)

	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta/openai/")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.max_tokens", 1200)
	v.SetDefault("gemini.temperature", 0.8)

	// Content defaults
	v.SetDefault("content.min_quality", 70)
	v.SetDefault("content.max_hashtags", 10)
	v.SetDefault("content.max_ctas", 1)
	v.SetDefault("content.urgency_chance", 0.5)

	// Similarity defaults
	v.SetDefault("similarity.threshold", 0.6)
	v.SetDefault("similarity.window", 50)
	v.SetDefault("similarity.blend", "combined")

	// History defaults
	v.SetDefault("history.backend", "file")
	v.SetDefault("history.path", "post-history/history.jsonl")
	v.SetDefault("history.dsn", "./data/history.db")
	v.SetDefault("history.sheets.enabled", false)
	v.SetDefault("history.sheets.sheet_name", "History")

	// Diversity defaults
	v.SetDefault("diversity.path", "post-history/diversity.json")
	v.SetDefault("diversity.window_days", 7)
	v.SetDefault("diversity.max_entries", 50)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")

	// Sources defaults
	v.SetDefault("sources.rss.enabled", false)
	v.SetDefault("sources.rss.max_age_days", 7)
	v.SetDefault("sources.rss.max_items", 10)
	v.SetDefault("sources.custom.enabled", false)

	// Scheduler defaults
	v.SetDefault("scheduler.publish_crons", []string{"0 9 * * *"})
	v.SetDefault("scheduler.port", "10000")

	// Rate limit defaults
	v.SetDefault("rate_limit.linkedin_requests_per_day", 100)
	v.SetDefault("rate_limit.generator_requests_per_minute", 10)

	// Publishing defaults
	v.SetDefault("publishing.min_publish_score", 60)
	v.SetDefault("publishing.dry_run", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stdout")
}

// Validate validates the settings needed to compose a post
func (c *Config) Validate() error {
	switch c.Generator.Provider {
	case ProviderTemplate:
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("anthropic.api_key is required for the anthropic generator")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("openai.api_key is required for the openai generator")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("gemini.api_key is required for the gemini generator")
		}
	default:
		return fmt.Errorf("unknown generator.provider %q", c.Generator.Provider)
	}

	if c.Generator.MaxAttempts < 1 {
		return fmt.Errorf("generator.max_attempts must be at least 1")
	}
	if c.Similarity.Threshold <= 0 || c.Similarity.Threshold > 1 {
		return fmt.Errorf("similarity.threshold must be in (0, 1]")
	}
	if c.Similarity.Window < 1 {
		return fmt.Errorf("similarity.window must be at least 1")
	}
	switch c.History.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unknown history.backend %q", c.History.Backend)
	}
	if c.History.Sheets.Enabled && c.History.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("history.sheets.spreadsheet_id is required when the sheets mirror is enabled")
	}
	return nil
}

// ValidateForPublish additionally checks the LinkedIn credentials
func (c *Config) ValidateForPublish() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.LinkedIn.AccessToken == "" {
		return fmt.Errorf("linkedin.access_token is required (set LINKEDIN_ACCESS_TOKEN)")
	}
	return nil
}
