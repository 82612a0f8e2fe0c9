package retrieval

import (
	"context"

	"github.com/claimwise/claimsage/internal/domain"
)

// Repository defines the vector index contract for retrieval.
type Repository interface {
	Query(ctx context.Context, vector []float32, k int) ([]domain.EvidenceDocument, error)
}

// Embedder vectorizes question text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
