// Package knowledge persists embedded knowledge-base passages in the vector
// index and answers nearest-neighbor queries over them.
package knowledge

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/claimwise/claimsage/internal/db"
	"github.com/claimwise/claimsage/internal/domain"
)

const (
	// IndexName is the FT index over knowledge documents.
	IndexName = "claimsage:knowledge"
	// KeyPrefix is the hash key prefix for knowledge documents.
	KeyPrefix = "claimsage:doc:"

	fieldBody     = "body"
	fieldSource   = "source"
	fieldCategory = "category"
	fieldLevel    = "level"
	fieldVector   = "vector"
)

// Entry is a knowledge passage with its embedding, ready to be indexed.
type Entry struct {
	ID     string
	Body   string
	Meta   map[string]string
	Vector []float32
}

// store is the consumer interface for the knowledge index (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	DelMulti(ctx context.Context, keys []string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements the retrieval and ingest repositories.
type Repo struct {
	store store
}

// New creates a knowledge repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the knowledge index if it does not exist. dim is the
// embedding dimensionality; all stored vectors must match it.
func (r *Repo) EnsureIndex(ctx context.Context, dim int) error {
	exists, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", IndexName, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     IndexName,
		Prefixes: []string{KeyPrefix},
		Fields: []db.IndexField{
			{Name: fieldBody, Type: db.IndexFieldText},
			{Name: fieldSource, Type: db.IndexFieldTag},
			{Name: fieldCategory, Type: db.IndexFieldTag},
			{Name: fieldVector, Type: db.IndexFieldVector,
				VectorAlgo: db.VectorHNSW, VectorDim: dim, VectorDistance: db.DistanceCosine},
		},
	}
	if err := def.Validate(); err != nil {
		return fmt.Errorf("index definition: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		// Concurrent creators may race past the existence check.
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", IndexName, err)
	}
	return nil
}

// Add writes a batch of entries to the index. Entries without an ID get one
// assigned. Vectors are stored as little-endian float32 blobs, matching the
// index field encoding.
func (r *Repo) Add(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		fields := map[string]string{
			fieldBody:   e.Body,
			fieldVector: string(encodeVector(e.Vector)),
		}
		if v := e.Meta[domain.MetaSource]; v != "" {
			fields[fieldSource] = v
		}
		if v := e.Meta[domain.MetaCategory]; v != "" {
			fields[fieldCategory] = v
		}
		if v := e.Meta[domain.MetaLevel]; v != "" {
			fields[fieldLevel] = v
		}
		items = append(items, db.HashSetItem{Key: KeyPrefix + e.ID, Fields: fields})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("add %d entries: %w", len(items), err)
	}
	return nil
}

// Query returns the k nearest documents to vector, with raw cosine distance.
// Similarity conversion and threshold filtering belong to the caller.
func (r *Repo) Query(ctx context.Context, vector []float32, k int) ([]domain.EvidenceDocument, error) {
	q := &db.KNNQuery{
		IndexName:    IndexName,
		Vector:       vector,
		K:            k,
		ReturnFields: []string{fieldBody, fieldSource, fieldCategory, fieldLevel},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("knn query: %w", err)
	}

	docs := make([]domain.EvidenceDocument, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		meta := map[string]string{}
		if v := entry.Fields[fieldSource]; v != "" {
			meta[domain.MetaSource] = v
		}
		if v := entry.Fields[fieldCategory]; v != "" {
			meta[domain.MetaCategory] = v
		}
		if v := entry.Fields[fieldLevel]; v != "" {
			meta[domain.MetaLevel] = v
		}
		docs = append(docs, domain.EvidenceDocument{
			Body:     entry.Fields[fieldBody],
			Meta:     meta,
			Distance: entry.Distance,
		})
	}
	return docs, nil
}

// Count returns the number of indexed documents.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, IndexName, "*")
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Reset drops the index and deletes every stored document, preparing a full
// re-ingest.
func (r *Repo) Reset(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, IndexName); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", IndexName, err)
	}

	keys, err := r.store.Scan(ctx, KeyPrefix+"*")
	if err != nil {
		return fmt.Errorf("scan %s: %w", KeyPrefix, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.store.DelMulti(ctx, keys); err != nil {
		return fmt.Errorf("delete %d keys: %w", len(keys), err)
	}
	return nil
}

// encodeVector serializes float32s as a little-endian byte blob, the layout
// FT.CREATE declares for FLOAT32 vector fields.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
