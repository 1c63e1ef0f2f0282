package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/devops-autopost/internal/config"
	"github.com/devops-autopost/pkg/logger"
	"github.com/devops-autopost/pkg/ratelimit"
)

// AnthropicGenerator wraps the Anthropic SDK client
type AnthropicGenerator struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float64
	rateLimiter *ratelimit.MultiLimiter
	log         *logger.Logger
}

// NewAnthropicGenerator creates a new Anthropic generator. Extra request
// options are applied after the API key.
func NewAnthropicGenerator(cfg config.AnthropicConfig, limiter *ratelimit.MultiLimiter, log *logger.Logger, opts ...option.RequestOption) *AnthropicGenerator {
	client := anthropic.NewClient(
		append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)...,
	)

	return &AnthropicGenerator{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		rateLimiter: limiter,
		log:         log.WithComponent("ai"),
	}
}

// Name returns the provider name
func (g *AnthropicGenerator) Name() string {
	return config.ProviderAnthropic
}

// Generate sends the prompt to Claude and returns the finalized text
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := g.rateLimiter.Wait(ctx, ratelimit.LimiterAnthropic); err != nil {
		return "", fmt.Errorf("rate limit error: %w", err)
	}

	g.log.Debug().
		Str("model", g.model).
		Int("max_tokens", g.maxTokens).
		Msg("Sending request to Claude")

	message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   int64(g.maxTokens),
		Temperature: anthropic.Float(g.temperature),
		System: []anthropic.TextBlockParam{
			{
				Type: "text",
				Text: SystemPrompt,
			},
		},
		Messages: []anthropic.MessageParam{
			{
				Role: anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{
					anthropic.NewTextBlock(prompt),
				},
			},
		},
	})
	if err != nil {
		genErr := &GenerationError{Provider: g.Name(), Err: err}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			genErr.StatusCode = apiErr.StatusCode
		}
		g.log.Error().Err(err).Msg("Claude API error")
		return "", genErr
	}

	var response string
	for _, block := range message.Content {
		textBlock := block.AsText()
		if textBlock.Text != "" {
			response += textBlock.Text
		}
	}

	g.log.Debug().
		Int("input_tokens", int(message.Usage.InputTokens)).
		Int("output_tokens", int(message.Usage.OutputTokens)).
		Msg("Received Claude response")

	text := Finalize(response)
	if text == "" {
		return "", &GenerationError{Provider: g.Name(), Err: errors.New("empty response")}
	}
	return text, nil
}

var _ Generator = (*AnthropicGenerator)(nil)
