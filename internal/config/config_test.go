package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "logging:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, ProviderGemini, cfg.Generator.Provider)
	assert.Equal(t, 7, cfg.Generator.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Generator.Timeout)
	assert.Equal(t, 0.6, cfg.Similarity.Threshold)
	assert.Equal(t, 50, cfg.Similarity.Window)
	assert.Equal(t, 70, cfg.Content.MinQuality)
	assert.Equal(t, 60, cfg.Publishing.MinPublishScore)
	assert.Equal(t, 7*24*time.Hour, cfg.Diversity.Window())
	assert.Equal(t, "file", cfg.History.Backend)
	assert.Equal(t, []string{"0 9 * * *"}, cfg.Scheduler.PublishCrons)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
generator:
  provider: template
similarity:
  threshold: 0.75
  blend: sequence
sources:
  rss:
    enabled: true
    feeds:
      - name: CNCF
        url: https://www.cncf.io/feed/
`)
	t.Setenv("LINKEDIN_ACCESS_TOKEN", "token-from-secret")
	t.Setenv("LINKEDIN_ORGANIZATION_ID", "urn:li:organization:42")
	t.Setenv("AUTOPOST_SIMILARITY_WINDOW", "20")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderTemplate, cfg.Generator.Provider)
	assert.Equal(t, 0.75, cfg.Similarity.Threshold)
	assert.Equal(t, "sequence", cfg.Similarity.Blend)
	assert.Equal(t, 20, cfg.Similarity.Window)
	assert.Equal(t, "token-from-secret", cfg.LinkedIn.AccessToken)
	assert.Equal(t, "urn:li:organization:42", cfg.LinkedIn.OrganizationID)
	require.Len(t, cfg.Sources.RSS.Feeds, 1)
	assert.Equal(t, "CNCF", cfg.Sources.RSS.Feeds[0].Name)
}

func TestLoad_BadFile(t *testing.T) {
	_, err := Load(writeConfig(t, "similarity: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load(writeConfig(t, "generator:\n  provider: template\n"))
		require.NoError(t, err)
		return cfg
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.Generator.Provider = "bard" }},
		{"missing anthropic key", func(c *Config) { c.Generator.Provider = ProviderAnthropic; c.Anthropic.APIKey = "" }},
		{"missing gemini key", func(c *Config) { c.Generator.Provider = ProviderGemini; c.Gemini.APIKey = "" }},
		{"zero attempts", func(c *Config) { c.Generator.MaxAttempts = 0 }},
		{"threshold above one", func(c *Config) { c.Similarity.Threshold = 1.5 }},
		{"zero threshold", func(c *Config) { c.Similarity.Threshold = 0 }},
		{"negative threshold", func(c *Config) { c.Similarity.Threshold = -0.2 }},
		{"zero window", func(c *Config) { c.Similarity.Window = 0 }},
		{"unknown backend", func(c *Config) { c.History.Backend = "postgres" }},
		{"sheets without id", func(c *Config) { c.History.Sheets.Enabled = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateForPublish(t *testing.T) {
	cfg, err := Load(writeConfig(t, "generator:\n  provider: template\n"))
	require.NoError(t, err)

	cfg.LinkedIn.AccessToken = ""
	assert.Error(t, cfg.ValidateForPublish())

	cfg.LinkedIn.AccessToken = "abc"
	assert.NoError(t, cfg.ValidateForPublish())
}
