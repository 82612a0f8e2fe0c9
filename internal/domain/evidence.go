package domain

// EvidenceDocument is a retrieved knowledge-base passage with provenance
// metadata and the raw cosine distance reported by the vector index.
// Produced transiently per query; never persisted.
type EvidenceDocument struct {
	Body     string
	Meta     map[string]string // source, category, domain-specific tags
	Distance float64
}

// Source returns the source label from metadata, or "unknown source".
func (d EvidenceDocument) Source() string {
	if s, ok := d.Meta[MetaSource]; ok && s != "" {
		return s
	}
	return "unknown source"
}

// RankedEvidence is an EvidenceDocument annotated with derived scores.
// Similarity is 1 - Distance clamped to [0,1]; TotalScore adds the weighted
// keyword bonus.
type RankedEvidence struct {
	EvidenceDocument
	Similarity float64
	TotalScore float64
}

// Metadata field names shared between the knowledge index and its consumers.
const (
	MetaSource   = "source"
	MetaCategory = "category"
	MetaLevel    = "level" // disability level, where applicable
)
