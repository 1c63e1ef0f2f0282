package ai

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devops-autopost/internal/config"
	"github.com/devops-autopost/internal/models"
	"github.com/devops-autopost/pkg/logger"
)

func TestFinalize(t *testing.T) {
	assert.Equal(t, "hello", Finalize("  hello \n"))

	short := strings.Repeat("a", MaxGeneratedLength)
	assert.Equal(t, short, Finalize(short))

	long := strings.Repeat("é", MaxGeneratedLength+1)
	got := Finalize(long)
	assert.True(t, strings.HasSuffix(got, closingQuestion))
	assert.Equal(t, truncatedLength+utf8.RuneCountInString(closingQuestion), utf8.RuneCountInString(got))
}

func TestBuildPrompt(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	custom := BuildPrompt(models.Topic{Title: "eBPF", Prompt: "Write about eBPF."}, nil, now)
	assert.True(t, strings.HasPrefix(custom, "Write about eBPF."))
	assert.Contains(t, custom, "CRITICAL REQUIREMENTS")
	assert.NotContains(t, custom, "Unique seed")

	templated := BuildPrompt(models.Topic{Title: "GitOps"}, nil, now)
	assert.Contains(t, templated, "how GitOps can help startups save 40-60% on infrastructure costs")

	a := BuildPrompt(models.Topic{Title: "GitOps"}, rand.New(rand.NewSource(3)), now)
	b := BuildPrompt(models.Topic{Title: "GitOps"}, rand.New(rand.NewSource(3)), now)
	assert.Equal(t, a, b)
	assert.Contains(t, a, "Timestamp: 202503010930")

	rss := BuildPrompt(models.Topic{Title: "News", URL: "https://example.com/a"}, nil, now)
	assert.Contains(t, rss, "https://example.com/a")
}

func TestGenerationError(t *testing.T) {
	inner := errors.New("boom")
	err := error(&GenerationError{Provider: "gemini", StatusCode: 503, Err: inner})

	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "503")
}

func TestAnthropicGenerator(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-test",
			"content": [{"type": "text", "text": "  Generated post  "}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 20}
		}`))
	}))
	defer srv.Close()

	gen := NewAnthropicGenerator(config.AnthropicConfig{
		APIKey: "test-key", Model: "claude-test", MaxTokens: 1200, Temperature: 0.8,
	}, nil, logger.Nop(), anthropicopt.WithBaseURL(srv.URL), anthropicopt.WithMaxRetries(0))

	text, err := gen.Generate(context.Background(), "Write about Kubernetes")
	require.NoError(t, err)
	assert.Equal(t, "Generated post", text)
	assert.Equal(t, "claude-test", gotBody["model"])
	assert.EqualValues(t, 1200, gotBody["max_tokens"])
	assert.Equal(t, config.ProviderAnthropic, gen.Name())
}

func TestAnthropicGenerator_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"bad key"}}`))
	}))
	defer srv.Close()

	gen := NewAnthropicGenerator(config.AnthropicConfig{APIKey: "bad", Model: "m", MaxTokens: 10},
		nil, logger.Nop(), anthropicopt.WithBaseURL(srv.URL), anthropicopt.WithMaxRetries(0))

	_, err := gen.Generate(context.Background(), "prompt")
	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, http.StatusUnauthorized, genErr.StatusCode)
}

func chatServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gem-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIGenerator(t *testing.T) {
	long := strings.Repeat("x", MaxGeneratedLength+50)
	srv := chatServer(t, http.StatusOK, `{
		"id": "c1", "object": "chat.completion", "created": 1, "model": "gemini-2.0-flash",
		"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "`+long+`"}}],
		"usage": {"prompt_tokens": 5, "completion_tokens": 7, "total_tokens": 12}
	}`)

	gen := NewOpenAIGenerator(config.ProviderGemini, config.OpenAIConfig{
		APIKey: "gem-key", BaseURL: srv.URL + "/", Model: "gemini-2.0-flash", MaxTokens: 1200, Temperature: 0.8,
	}, nil, logger.Nop(), openaiopt.WithMaxRetries(0))

	text, err := gen.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(text, closingQuestion), "overlong output is truncated")
	assert.Equal(t, config.ProviderGemini, gen.Name())
}

func TestOpenAIGenerator_Failures(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := chatServer(t, http.StatusServiceUnavailable, `{"error":{"message":"overloaded"}}`)
		gen := NewOpenAIGenerator(config.ProviderGemini, config.OpenAIConfig{APIKey: "gem-key", BaseURL: srv.URL + "/", Model: "m"},
			nil, logger.Nop(), openaiopt.WithMaxRetries(0))

		_, err := gen.Generate(context.Background(), "prompt")
		var genErr *GenerationError
		require.True(t, errors.As(err, &genErr))
		assert.Equal(t, http.StatusServiceUnavailable, genErr.StatusCode)
	})

	t.Run("no choices", func(t *testing.T) {
		srv := chatServer(t, http.StatusOK, `{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[]}`)
		gen := NewOpenAIGenerator(config.ProviderGemini, config.OpenAIConfig{APIKey: "gem-key", BaseURL: srv.URL + "/", Model: "m"},
			nil, logger.Nop(), openaiopt.WithMaxRetries(0))

		_, err := gen.Generate(context.Background(), "prompt")
		var genErr *GenerationError
		assert.True(t, errors.As(err, &genErr))
	})

	t.Run("blank content", func(t *testing.T) {
		srv := chatServer(t, http.StatusOK, `{"id":"c1","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"   "}}]}`)
		gen := NewOpenAIGenerator(config.ProviderGemini, config.OpenAIConfig{APIKey: "gem-key", BaseURL: srv.URL + "/", Model: "m"},
			nil, logger.Nop(), openaiopt.WithMaxRetries(0))

		_, err := gen.Generate(context.Background(), "prompt")
		var genErr *GenerationError
		assert.True(t, errors.As(err, &genErr))
	})
}
