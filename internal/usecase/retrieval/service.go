// Package retrieval finds knowledge-base passages relevant to a question:
// embed, nearest-neighbor search with over-fetch, similarity filtering, then
// hybrid re-ranking against configured key phrases.
package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/claimwise/claimsage/internal/config"
	"github.com/claimwise/claimsage/internal/domain"
	"github.com/claimwise/claimsage/internal/worker"
)

// overFetchRatio widens the KNN candidate set so similarity filtering still
// leaves enough results to fill topK.
const overFetchRatio = 2

// Service retrieves and ranks evidence documents.
type Service struct {
	embedder  Embedder
	repo      Repository
	pool      *worker.Pool
	topK      int
	threshold float64
	ranker    *Ranker
	logger    *zap.Logger
}

// New creates a retrieval service.
func New(
	embedder Embedder,
	repo Repository,
	pool *worker.Pool,
	cfg config.RetrievalConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		embedder:  embedder,
		repo:      repo,
		pool:      pool,
		topK:      cfg.TopK,
		threshold: cfg.SimilarityThreshold,
		ranker:    NewRanker(cfg.KeyPhrases),
		logger:    logger,
	}
}

// Retrieve returns up to topK passages whose similarity clears the
// threshold, ranked by similarity plus the weighted key-phrase bonus.
//
// An embedding failure or an empty vector yields an empty result, not an
// error: the answer chain treats missing evidence as a signal to fall
// through to its later stages. Index failures return
// domain.ErrRetrievalUnavailable wrapped with detail.
func (s *Service) Retrieve(ctx context.Context, question string) ([]domain.RankedEvidence, error) {
	emb, err := worker.Run(ctx, s.pool, func() (domain.EmbeddingResult, error) {
		return s.embedder.Embed(ctx, question)
	})
	if err != nil {
		s.logger.Warn("embedding failed, skipping retrieval", zap.Error(err))
		return nil, nil
	}
	if len(emb.Embedding) == 0 {
		s.logger.Warn("empty query embedding, skipping retrieval")
		return nil, nil
	}

	k := s.topK * overFetchRatio
	docs, err := worker.Run(ctx, s.pool, func() ([]domain.EvidenceDocument, error) {
		return s.repo.Query(ctx, emb.Embedding, k)
	})
	if err != nil {
		return nil, fmt.Errorf("knn search: %w: %w", domain.ErrRetrievalUnavailable, err)
	}

	kept := make([]domain.RankedEvidence, 0, s.topK)
	for _, doc := range docs {
		sim := similarity(doc.Distance)
		if sim < s.threshold {
			continue
		}
		kept = append(kept, domain.RankedEvidence{
			EvidenceDocument: doc,
			Similarity:       sim,
		})
		if len(kept) == s.topK {
			break
		}
	}

	s.ranker.Rank(question, kept)
	return kept, nil
}

// similarity converts raw cosine distance into a [0,1] similarity.
func similarity(distance float64) float64 {
	sim := 1 - distance
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
