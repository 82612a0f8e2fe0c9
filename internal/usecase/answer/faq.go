package answer

import (
	"sort"
	"strings"

	"github.com/claimwise/claimsage/internal/repository/dataset"
)

// minKeywordLen filters function words out of token-overlap matching.
// Short tokens ("the", "how", "is") match almost any question and would make
// keyword lookup fire on everything.
const minKeywordLen = 4

// faqEntry is a stored question prepared for matching.
type faqEntry struct {
	question   string
	normalized string
	tokens     map[string]struct{}
	answer     string
}

// synonymGroup is a keyword with its expansion terms (keyword included).
type synonymGroup struct {
	terms []string
}

// FAQMatcher resolves questions against the curated FAQ database using
// three strategies in order: exact match on the normalized question, token
// overlap with a stored question, then synonym-group expansion. Entries and
// synonym groups are materialized in a stable order at construction so
// "first match wins" is deterministic across calls.
type FAQMatcher struct {
	questions []string
	entries   []faqEntry
	groups    []synonymGroup
}

// NewFAQMatcher creates a matcher. db may be nil when the FAQ dataset failed
// to load; Lookup then never matches.
func NewFAQMatcher(db *dataset.FAQDatabase) *FAQMatcher {
	m := &FAQMatcher{questions: db.Questions()}

	for _, e := range db.Entries() {
		norm := normalize(e.Question)
		m.entries = append(m.entries, faqEntry{
			question:   e.Question,
			normalized: norm,
			tokens:     tokenSet(norm),
			answer:     e.Answer,
		})
	}

	if db != nil {
		keywords := make([]string, 0, len(db.Keywords))
		for k := range db.Keywords {
			keywords = append(keywords, k)
		}
		sort.Strings(keywords)
		for _, k := range keywords {
			terms := make([]string, 0, len(db.Keywords[k])+1)
			terms = append(terms, k)
			terms = append(terms, db.Keywords[k]...)
			m.groups = append(m.groups, synonymGroup{terms: terms})
		}
	}

	return m
}

// Lookup returns the stored answer for question, or "" when nothing matches.
func (m *FAQMatcher) Lookup(question string) string {
	if len(m.entries) == 0 {
		return ""
	}
	clean := normalize(question)

	// 1. Exact match on the normalized question.
	for _, e := range m.entries {
		if e.normalized == clean {
			return e.answer
		}
	}

	// 2. Token overlap: a stored question matches when it shares a content
	// word with the asked question.
	askedTokens := tokenSet(clean)
	for _, e := range m.entries {
		if overlaps(askedTokens, e.tokens) {
			return e.answer
		}
	}

	// 3. Synonym expansion: if the question contains any synonym of a
	// keyword group, answer with the first stored question mentioning the
	// keyword or one of its synonyms.
	for _, g := range m.groups {
		if !containsAny(clean, g.terms) {
			continue
		}
		for _, e := range m.entries {
			if containsAny(e.normalized, g.terms) {
				return e.answer
			}
		}
	}

	return ""
}

// Questions lists every stored FAQ question.
func (m *FAQMatcher) Questions() []string {
	return m.questions
}

// normalize lowercases and strips the punctuation variants askers attach to
// otherwise identical questions.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	replacer := strings.NewReplacer("?", "", "？", "", ".", "", "。", "", "!", "", "！", "")
	return strings.TrimSpace(replacer.Replace(s))
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		if len(tok) >= minKeywordLen {
			set[tok] = struct{}{}
		}
	}
	return set
}

func overlaps(a, b map[string]struct{}) bool {
	for tok := range b {
		if _, ok := a[tok]; ok {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}
