package ingest

import (
	"context"

	"github.com/claimwise/claimsage/internal/domain"
	"github.com/claimwise/claimsage/internal/repository/knowledge"
)

// Repository defines the index contract for ingestion.
type Repository interface {
	EnsureIndex(ctx context.Context, dim int) error
	Add(ctx context.Context, entries []knowledge.Entry) error
	Count(ctx context.Context) (int, error)
	Reset(ctx context.Context) error
}

// Embedder vectorizes passage text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
