package domain

// Query is a single inbound question. Immutable once received; owned by one
// in-flight request.
type Query struct {
	Question  string
	SessionID string
	ClientKey string // originating client address, consumed by admission control only
}

// AnswerResult is the terminal artifact of the resolution pipeline.
type AnswerResult struct {
	Answer  string
	Sources []string // first-use order, duplicates suppressed
	Success bool
}

// SourceSet accumulates source labels preserving first-use order.
type SourceSet struct {
	labels []string
	seen   map[string]struct{}
}

// Add appends a label unless it was already recorded.
func (s *SourceSet) Add(label string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[label]; ok {
		return
	}
	s.seen[label] = struct{}{}
	s.labels = append(s.labels, label)
}

// Labels returns the accumulated labels in insertion order.
func (s *SourceSet) Labels() []string {
	return s.labels
}
