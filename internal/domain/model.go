package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token usage through the
// decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Generator is the opaque text-completion capability.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// GenerateOptions bound the completion output. The pipeline favors
// determinism over creativity, so defaults keep randomness low.
type GenerateOptions struct {
	Temperature float32
	TopP        float32
	MaxTokens   int
}

// HealthChecker verifies model provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
