package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/claimwise/claimsage/internal/db"
	"github.com/claimwise/claimsage/internal/domain"
)

func TestEnsureIndexCreatesWhenMissing(t *testing.T) {
	repo, ms := newTestRepo(t)

	var created *db.IndexDefinition
	ms.indexExistsFn = func(ctx context.Context, name string) (bool, error) {
		return false, nil
	}
	ms.createIndexFn = func(ctx context.Context, def *db.IndexDefinition) error {
		created = def
		return nil
	}

	if err := repo.EnsureIndex(context.Background(), 768); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
	if created == nil {
		t.Fatal("CreateIndex was not called")
	}
	if created.Name != IndexName {
		t.Errorf("index name = %q, want %q", created.Name, IndexName)
	}
	var vec *db.IndexField
	for i := range created.Fields {
		if created.Fields[i].Type == db.IndexFieldVector {
			vec = &created.Fields[i]
		}
	}
	if vec == nil {
		t.Fatal("no vector field in index definition")
	}
	if vec.VectorDim != 768 {
		t.Errorf("vector dim = %d, want 768", vec.VectorDim)
	}
	if vec.VectorDistance != db.DistanceCosine {
		t.Errorf("vector distance = %q, want COSINE", vec.VectorDistance)
	}
}

func TestEnsureIndexSkipsWhenPresent(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.indexExistsFn = func(ctx context.Context, name string) (bool, error) {
		return true, nil
	}
	ms.createIndexFn = func(ctx context.Context, def *db.IndexDefinition) error {
		t.Fatal("CreateIndex must not be called when the index exists")
		return nil
	}

	if err := repo.EnsureIndex(context.Background(), 768); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
}

func TestEnsureIndexToleratesCreateRace(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.createIndexFn = func(ctx context.Context, def *db.IndexDefinition) error {
		return &db.Error{Op: db.OpCreateIndex, Err: db.ErrIndexExists}
	}

	if err := repo.EnsureIndex(context.Background(), 768); err != nil {
		t.Fatalf("EnsureIndex should absorb index-exists, got %v", err)
	}
}

func TestAddAssignsIDsAndEncodesVectors(t *testing.T) {
	repo, ms := newTestRepo(t)

	var got []db.HashSetItem
	ms.hsetMultiFn = func(ctx context.Context, items []db.HashSetItem) error {
		got = items
		return nil
	}

	entries := []Entry{
		{Body: "partial disability rules", Meta: map[string]string{
			domain.MetaSource: "FAQ database", domain.MetaCategory: "disability",
		}, Vector: testVector()},
		{ID: "fixed-id", Body: "benefit ceiling", Vector: testVector()},
	}
	if err := repo.Add(context.Background(), entries); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("stored %d items, want 2", len(got))
	}
	if got[1].Key != KeyPrefix+"fixed-id" {
		t.Errorf("key = %q, want %q", got[1].Key, KeyPrefix+"fixed-id")
	}
	if got[0].Key == KeyPrefix {
		t.Error("entry without ID did not get one assigned")
	}
	if got[0].Fields[fieldSource] != "FAQ database" {
		t.Errorf("source field = %q", got[0].Fields[fieldSource])
	}
	if len(got[0].Fields[fieldVector]) != 4*len(testVector()) {
		t.Errorf("vector blob length = %d, want %d", len(got[0].Fields[fieldVector]), 4*len(testVector()))
	}
}

func TestAddEmptyIsNoop(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hsetMultiFn = func(ctx context.Context, items []db.HashSetItem) error {
		t.Fatal("HSetMulti must not be called for an empty batch")
		return nil
	}
	if err := repo.Add(context.Background(), nil); err != nil {
		t.Fatalf("Add(nil): %v", err)
	}
}

func TestQueryMapsEntriesWithRawDistance(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.IndexName != IndexName {
			t.Errorf("index = %q, want %q", q.IndexName, IndexName)
		}
		if q.K != 10 {
			t.Errorf("k = %d, want 10", q.K)
		}
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{Key: KeyPrefix + "a", Distance: 0.12, Fields: map[string]string{
					fieldBody: "first passage", fieldSource: "preset knowledge base",
				}},
				{Key: KeyPrefix + "b", Distance: 0.55, Fields: map[string]string{
					fieldBody: "second passage", fieldCategory: "benefits", fieldLevel: "7",
				}},
			},
		}, nil
	}

	docs, err := repo.Query(context.Background(), testVector(), 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2", len(docs))
	}
	if docs[0].Distance != 0.12 {
		t.Errorf("distance = %g, want raw 0.12", docs[0].Distance)
	}
	if docs[0].Source() != "preset knowledge base" {
		t.Errorf("source = %q", docs[0].Source())
	}
	if docs[1].Meta[domain.MetaLevel] != "7" {
		t.Errorf("level meta = %q, want 7", docs[1].Meta[domain.MetaLevel])
	}
}

func TestQueryPropagatesStoreError(t *testing.T) {
	repo, ms := newTestRepo(t)

	wantErr := errors.New("index gone")
	ms.searchKNNFn = func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		return nil, wantErr
	}

	_, err := repo.Query(context.Background(), testVector(), 5)
	if !errors.Is(err, wantErr) {
		t.Fatalf("Query error = %v, want wrapped %v", err, wantErr)
	}
}

func TestResetDropsIndexAndDeletesKeys(t *testing.T) {
	repo, ms := newTestRepo(t)

	dropped := false
	ms.dropIndexFn = func(ctx context.Context, name string) error {
		dropped = true
		return nil
	}
	ms.scanFn = func(ctx context.Context, pattern string) ([]string, error) {
		if pattern != KeyPrefix+"*" {
			t.Errorf("scan pattern = %q", pattern)
		}
		return []string{KeyPrefix + "a", KeyPrefix + "b"}, nil
	}
	var deleted []string
	ms.delMultiFn = func(ctx context.Context, keys []string) error {
		deleted = keys
		return nil
	}

	if err := repo.Reset(context.Background()); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if !dropped {
		t.Error("index was not dropped")
	}
	if len(deleted) != 2 {
		t.Errorf("deleted %d keys, want 2", len(deleted))
	}
}

func TestResetToleratesMissingIndex(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.dropIndexFn = func(ctx context.Context, name string) error {
		return &db.Error{Op: db.OpDropIndex, Err: db.ErrIndexNotFound}
	}

	if err := repo.Reset(context.Background()); err != nil {
		t.Fatalf("Reset should tolerate a missing index, got %v", err)
	}
}
