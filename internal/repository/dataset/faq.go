package dataset

import "sort"

// FAQDatabase is the curated question/answer collection plus the synonym
// groups used for keyword lookup. Categories map a category name to its
// question→answer pairs; Keywords map a canonical keyword to synonyms that
// should resolve to the same answers.
type FAQDatabase struct {
	Categories map[string]map[string]string `json:"faq"`
	Keywords   map[string][]string          `json:"keywords"`
}

// FAQEntry is one question/answer pair with its category.
type FAQEntry struct {
	Category string
	Question string
	Answer   string
}

// Entries returns every FAQ pair in a stable order (categories sorted, then
// questions sorted within each). JSON objects carry no order, so sorting is
// what makes "first match wins" mean the same thing on every call.
func (f *FAQDatabase) Entries() []FAQEntry {
	if f == nil {
		return nil
	}
	categories := make([]string, 0, len(f.Categories))
	for c := range f.Categories {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var out []FAQEntry
	for _, c := range categories {
		qa := f.Categories[c]
		questions := make([]string, 0, len(qa))
		for q := range qa {
			questions = append(questions, q)
		}
		sort.Strings(questions)
		for _, q := range questions {
			out = append(out, FAQEntry{Category: c, Question: q, Answer: qa[q]})
		}
	}
	return out
}

// Questions returns every FAQ question across all categories, in the same
// stable order as Entries.
func (f *FAQDatabase) Questions() []string {
	entries := f.Entries()
	if len(entries) == 0 {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Question)
	}
	return out
}

// LoadFAQ loads the FAQ database.
func LoadFAQ(path string) (*FAQDatabase, error) {
	var db FAQDatabase
	if err := loadJSON(path, &db); err != nil {
		return nil, err
	}
	return &db, nil
}
