package answer

import (
	"context"

	"github.com/claimwise/claimsage/internal/domain"
)

// Retriever produces ranked evidence for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]domain.RankedEvidence, error)
}

// Generator is the opaque completion capability.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error)
}
