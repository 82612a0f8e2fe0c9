package db

// KNNQuery is the input for vector similarity search. The score reported for
// each entry is the raw distance from the index (cosine distance here), so
// callers own the distance-to-similarity conversion.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key      string
	Distance float64
	Fields   map[string]string
}
