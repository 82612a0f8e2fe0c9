// Package ingest populates the knowledge index from the reference datasets:
// each record is rendered into a text passage with provenance metadata,
// embedded, and written in batches.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/claimwise/claimsage/internal/config"
	"github.com/claimwise/claimsage/internal/repository/knowledge"
)

// batchSize bounds how many passages are embedded and written per round, so
// a large directory cannot hold a single huge pipeline in memory.
const batchSize = 100

// Service ingests reference datasets into the knowledge index.
type Service struct {
	repo     Repository
	embedder Embedder
	datasets config.DatasetsConfig
	dim      int
	logger   *zap.Logger
}

// New creates an ingest service. dim is the embedding dimensionality used
// when the index must be created.
func New(repo Repository, embedder Embedder, datasets config.DatasetsConfig, dim int, logger *zap.Logger) *Service {
	return &Service{repo: repo, embedder: embedder, datasets: datasets, dim: dim, logger: logger}
}

// Load ensures the index exists and ingests the datasets unless the index
// already holds documents. Returns the number of documents written (zero
// when ingestion was skipped).
func (s *Service) Load(ctx context.Context) (int, error) {
	if err := s.repo.EnsureIndex(ctx, s.dim); err != nil {
		return 0, fmt.Errorf("ensure index: %w", err)
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	if count > 0 {
		s.logger.Info("knowledge index already populated, skipping ingest",
			zap.Int("documents", count))
		return 0, nil
	}

	return s.ingest(ctx)
}

// Reload drops the index contents and ingests everything again. Returns the
// number of documents written.
func (s *Service) Reload(ctx context.Context) (int, error) {
	if err := s.repo.Reset(ctx); err != nil {
		return 0, fmt.Errorf("reset index: %w", err)
	}
	if err := s.repo.EnsureIndex(ctx, s.dim); err != nil {
		return 0, fmt.Errorf("ensure index: %w", err)
	}
	return s.ingest(ctx)
}

func (s *Service) ingest(ctx context.Context) (int, error) {
	entries := s.renderAll()
	if len(entries) == 0 {
		s.logger.Warn("no reference datasets could be loaded, index stays empty")
		return 0, nil
	}

	written := 0
	for start := 0; start < len(entries); start += batchSize {
		end := start + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[start:end]

		for i := range batch {
			emb, err := s.embedder.Embed(ctx, batch[i].Body)
			if err != nil {
				return written, fmt.Errorf("embed document %d: %w", start+i, err)
			}
			batch[i].Vector = emb.Embedding
		}

		if err := s.repo.Add(ctx, batch); err != nil {
			return written, fmt.Errorf("write batch at %d: %w", start, err)
		}
		written += len(batch)
		s.logger.Info("ingested batch",
			zap.Int("written", written),
			zap.Int("total", len(entries)))
	}

	return written, nil
}

// renderAll converts every loadable dataset into index entries. Datasets
// fail independently: one missing file only shrinks the corpus.
func (s *Service) renderAll() []knowledge.Entry {
	var entries []knowledge.Entry

	for _, load := range []struct {
		name string
		fn   func() ([]knowledge.Entry, error)
	}{
		{"disability standards", s.renderDisabilityStandards},
		{"occupational rules", s.renderOccupationalRules},
		{"medical benefits", s.renderMedicalBenefits},
		{"benefit standards", s.renderBenefitStandards},
		{"offices", s.renderOffices},
		{"facilities", s.renderFacilities},
	} {
		batch, err := load.fn()
		if err != nil {
			s.logger.Error("dataset skipped", zap.String("dataset", load.name), zap.Error(err))
			continue
		}
		entries = append(entries, batch...)
	}

	return entries
}
