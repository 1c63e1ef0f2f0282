package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/devops-autopost/internal/config"
	"github.com/devops-autopost/pkg/logger"
	"github.com/devops-autopost/pkg/ratelimit"
)

// OpenAIGenerator talks to any OpenAI-compatible chat completions endpoint.
// Gemini is served through its OpenAI compatibility layer.
type OpenAIGenerator struct {
	client      openai.Client
	provider    string
	model       string
	maxTokens   int
	temperature float64
	rateLimiter *ratelimit.MultiLimiter
	log         *logger.Logger
}

// NewOpenAIGenerator creates a generator for provider (openai or gemini)
func NewOpenAIGenerator(provider string, cfg config.OpenAIConfig, limiter *ratelimit.MultiLimiter, log *logger.Logger, opts ...option.RequestOption) *OpenAIGenerator {
	clientOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	clientOpts = append(clientOpts, opts...)

	return &OpenAIGenerator{
		client:      openai.NewClient(clientOpts...),
		provider:    provider,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		rateLimiter: limiter,
		log:         log.WithComponent("ai"),
	}
}

// Name returns the provider name
func (g *OpenAIGenerator) Name() string {
	return g.provider
}

// Generate sends the prompt as a single chat turn
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := g.rateLimiter.Wait(ctx, ratelimit.LimiterOpenAI); err != nil {
		return "", fmt.Errorf("rate limit error: %w", err)
	}

	g.log.Debug().
		Str("provider", g.provider).
		Str("model", g.model).
		Msg("Sending chat completion request")

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(g.temperature),
	}
	if g.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(g.maxTokens))
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		genErr := &GenerationError{Provider: g.provider, Err: err}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			genErr.StatusCode = apiErr.StatusCode
		}
		g.log.Error().Err(err).Str("provider", g.provider).Msg("Chat completion error")
		return "", genErr
	}
	if len(resp.Choices) == 0 {
		return "", &GenerationError{Provider: g.provider, Err: errors.New("empty choices")}
	}

	g.log.Debug().
		Int64("prompt_tokens", resp.Usage.PromptTokens).
		Int64("completion_tokens", resp.Usage.CompletionTokens).
		Msg("Received chat completion")

	text := Finalize(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &GenerationError{Provider: g.provider, Err: errors.New("empty response")}
	}
	return text, nil
}

var _ Generator = (*OpenAIGenerator)(nil)
