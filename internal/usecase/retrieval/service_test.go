package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/claimwise/claimsage/internal/config"
	"github.com/claimwise/claimsage/internal/domain"
	"github.com/claimwise/claimsage/internal/worker"
)

// mockEmbedder implements Embedder for tests.
type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

// mockRepo implements Repository for tests.
type mockRepo struct {
	queryFn func(ctx context.Context, vector []float32, k int) ([]domain.EvidenceDocument, error)
}

func (m *mockRepo) Query(ctx context.Context, vector []float32, k int) ([]domain.EvidenceDocument, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, vector, k)
	}
	return nil, nil
}

func newTestService(t *testing.T, emb *mockEmbedder, repo *mockRepo) *Service {
	t.Helper()
	pool, err := worker.NewPool(2)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	t.Cleanup(func() { _ = pool.Drain(time.Second) })

	cfg := config.RetrievalConfig{
		TopK:                2,
		SimilarityThreshold: 0.6,
		KeyPhrases:          config.DefaultKeyPhrases(),
	}
	return New(emb, repo, pool, cfg, zap.NewNop())
}

func doc(body string, distance float64) domain.EvidenceDocument {
	return domain.EvidenceDocument{Body: body, Distance: distance}
}

func TestRetrieveFiltersAndTruncates(t *testing.T) {
	repo := &mockRepo{queryFn: func(ctx context.Context, vector []float32, k int) ([]domain.EvidenceDocument, error) {
		if k != 4 {
			t.Errorf("k = %d, want 2x over-fetch of topK 2", k)
		}
		return []domain.EvidenceDocument{
			doc("best", 0.1),     // similarity 0.9
			doc("good", 0.3),     // similarity 0.7
			doc("also good", 0.35),
			doc("too far", 0.5), // similarity 0.5, below threshold
		}, nil
	}}

	got, err := newTestService(t, &mockEmbedder{}, repo).Retrieve(context.Background(), "question")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d docs, want topK 2", len(got))
	}
	if got[0].Body != "best" || got[1].Body != "good" {
		t.Fatalf("unexpected order: %q, %q", got[0].Body, got[1].Body)
	}
	if got[0].Similarity != 0.9 {
		t.Errorf("similarity = %g, want 0.9", got[0].Similarity)
	}
}

func TestRetrieveEmbeddingFailureYieldsEmpty(t *testing.T) {
	emb := &mockEmbedder{embedFn: func(ctx context.Context, text string) (domain.EmbeddingResult, error) {
		return domain.EmbeddingResult{}, errors.New("provider down")
	}}
	repo := &mockRepo{queryFn: func(ctx context.Context, vector []float32, k int) ([]domain.EvidenceDocument, error) {
		t.Fatal("index must not be queried when embedding fails")
		return nil, nil
	}}

	got, err := newTestService(t, emb, repo).Retrieve(context.Background(), "question")
	if err != nil {
		t.Fatalf("embedding failure must not surface an error, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d docs, want 0", len(got))
	}
}

func TestRetrieveEmptyEmbeddingYieldsEmpty(t *testing.T) {
	emb := &mockEmbedder{embedFn: func(ctx context.Context, text string) (domain.EmbeddingResult, error) {
		return domain.EmbeddingResult{}, nil
	}}

	got, err := newTestService(t, emb, &mockRepo{}).Retrieve(context.Background(), "question")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d docs, want 0 for an empty query vector", len(got))
	}
}

func TestRetrieveIndexFailureIsRetrievalUnavailable(t *testing.T) {
	repo := &mockRepo{queryFn: func(ctx context.Context, vector []float32, k int) ([]domain.EvidenceDocument, error) {
		return nil, errors.New("index offline")
	}}

	_, err := newTestService(t, &mockEmbedder{}, repo).Retrieve(context.Background(), "question")
	if !errors.Is(err, domain.ErrRetrievalUnavailable) {
		t.Fatalf("error = %v, want ErrRetrievalUnavailable", err)
	}
}

func TestRetrieveNoCandidatesAboveThreshold(t *testing.T) {
	repo := &mockRepo{queryFn: func(ctx context.Context, vector []float32, k int) ([]domain.EvidenceDocument, error) {
		return []domain.EvidenceDocument{doc("weak", 0.8), doc("weaker", 0.95)}, nil
	}}

	got, err := newTestService(t, &mockEmbedder{}, repo).Retrieve(context.Background(), "question")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d docs, want 0 when nothing clears the threshold", len(got))
	}
}
