package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/claimwise/claimsage/internal/config"
	"github.com/claimwise/claimsage/internal/domain"
	"github.com/claimwise/claimsage/internal/repository/knowledge"
)

// mockRepo implements Repository for tests.
type mockRepo struct {
	count   int
	added   []knowledge.Entry
	batches int
	resets  int
	ensured bool
}

func (m *mockRepo) EnsureIndex(ctx context.Context, dim int) error {
	m.ensured = true
	return nil
}

func (m *mockRepo) Add(ctx context.Context, entries []knowledge.Entry) error {
	m.added = append(m.added, entries...)
	m.batches++
	return nil
}

func (m *mockRepo) Count(ctx context.Context) (int, error) { return m.count, nil }

func (m *mockRepo) Reset(ctx context.Context) error {
	m.resets++
	m.count = 0
	return nil
}

// mockEmbedder implements Embedder for tests.
type mockEmbedder struct{ calls int }

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

// writeDatasets lays out a dataset directory with a benefit table of n rows
// and returns the matching config. The other dataset files are absent on
// purpose: loaders must fail independently.
func writeDatasets(t *testing.T, n int) config.DatasetsConfig {
	t.Helper()
	dir := t.TempDir()

	var rows []string
	for i := 1; i <= n; i++ {
		rows = append(rows, `{"level": `+strconv.Itoa(i)+`, "ordinary_days": 100, "occupational_days": 150}`)
	}
	path := filepath.Join(dir, "benefit_standards.json")
	if err := os.WriteFile(path, []byte("["+strings.Join(rows, ",")+"]"), 0o600); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	cfg := config.DatasetsConfig{Dir: dir}
	cfg.FAQ = filepath.Join(dir, "faq.json")
	cfg.DisabilityStandards = filepath.Join(dir, "disability_standards.json")
	cfg.OccupationalRules = filepath.Join(dir, "occupational_rules.json")
	cfg.MedicalBenefits = filepath.Join(dir, "medical_benefits.json")
	cfg.BenefitStandards = path
	cfg.Offices = filepath.Join(dir, "offices.json")
	cfg.Facilities = filepath.Join(dir, "facilities.json")
	return cfg
}

func TestLoadIngestsWhenEmpty(t *testing.T) {
	repo := &mockRepo{}
	emb := &mockEmbedder{}
	s := New(repo, emb, writeDatasets(t, 3), 2, zap.NewNop())

	written, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !repo.ensured {
		t.Error("index was not ensured")
	}
	if written != 3 || len(repo.added) != 3 {
		t.Fatalf("written = %d, added = %d, want 3", written, len(repo.added))
	}
	if emb.calls != 3 {
		t.Errorf("embedder called %d times, want once per document", emb.calls)
	}
	for _, e := range repo.added {
		if len(e.Vector) == 0 {
			t.Fatal("entry written without a vector")
		}
		if e.Meta[domain.MetaSource] == "" {
			t.Fatal("entry written without a source label")
		}
	}
}

func TestLoadSkipsWhenPopulated(t *testing.T) {
	repo := &mockRepo{count: 42}
	emb := &mockEmbedder{}
	s := New(repo, emb, writeDatasets(t, 3), 2, zap.NewNop())

	written, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if written != 0 || len(repo.added) != 0 || emb.calls != 0 {
		t.Fatalf("populated index must skip ingest: written=%d added=%d embeds=%d",
			written, len(repo.added), emb.calls)
	}
}

func TestReloadResetsThenIngests(t *testing.T) {
	repo := &mockRepo{count: 42}
	s := New(repo, &mockEmbedder{}, writeDatasets(t, 2), 2, zap.NewNop())

	written, err := s.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if repo.resets != 1 {
		t.Error("Reset was not called")
	}
	if written != 2 {
		t.Fatalf("written = %d, want 2", written)
	}
}

func TestIngestMissingDatasetsShrinkCorpus(t *testing.T) {
	// Only the benefit table exists; all other loaders fail. Ingest still
	// proceeds with what it has.
	repo := &mockRepo{}
	s := New(repo, &mockEmbedder{}, writeDatasets(t, 1), 2, zap.NewNop())

	written, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if written != 1 {
		t.Fatalf("written = %d, want 1", written)
	}
}
