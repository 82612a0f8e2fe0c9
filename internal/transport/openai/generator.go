package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/claimwise/claimsage/internal/domain"
	"github.com/claimwise/claimsage/internal/metrics"
)

// Generator is a completion provider using the OpenAI-compatible chat API.
type Generator struct {
	client   *openai.Client
	model    string
	provider string
	logger   *zap.Logger
}

// GeneratorConfig holds the completion provider settings.
type GeneratorConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Provider string
	Logger   *zap.Logger
}

// NewGenerator creates an OpenAI-compatible completion provider.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Generate implements the completion contract via a single-turn chat
// request. Errors are wrapped with domain.ErrGenerationProviderError.
func (g *Generator) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		MaxTokens:   opts.MaxTokens,
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		return "", parseAPIError(err, "completion", domain.ErrGenerationProviderError)
	}
	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrGenerationProviderError)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(g.provider, g.model).Observe(duration.Seconds())

	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
