package retrieval

import (
	"sort"
	"strings"

	"github.com/claimwise/claimsage/internal/config"
	"github.com/claimwise/claimsage/internal/domain"
)

// bonusMultiplier scales the summed key-phrase weights before they are added
// to the similarity score. Tuned so phrase matches reorder near-ties without
// drowning out the vector signal.
const bonusMultiplier = 0.05

// Ranker reorders filtered evidence by similarity plus a key-phrase bonus.
// A phrase counts only when it appears verbatim in both the question and the
// document, case-insensitively: the bonus rewards documents that match the
// precise wording the asker used, which plain cosine similarity blurs.
type Ranker struct {
	phrases []config.KeyPhrase
}

// NewRanker creates a ranker over the configured phrase list.
func NewRanker(phrases []config.KeyPhrase) *Ranker {
	return &Ranker{phrases: phrases}
}

// Rank computes TotalScore for each document and sorts docs in place by
// TotalScore descending. The sort is stable, so equal scores keep their
// similarity order from retrieval.
func (r *Ranker) Rank(question string, docs []domain.RankedEvidence) {
	lowerQ := strings.ToLower(question)
	for i := range docs {
		docs[i].TotalScore = docs[i].Similarity + r.bonus(lowerQ, strings.ToLower(docs[i].Body))
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].TotalScore > docs[j].TotalScore
	})
}

func (r *Ranker) bonus(lowerQuestion, lowerBody string) float64 {
	var sum float64
	for _, kp := range r.phrases {
		p := strings.ToLower(kp.Phrase)
		if strings.Contains(lowerQuestion, p) && strings.Contains(lowerBody, p) {
			sum += kp.Weight
		}
	}
	return sum * bonusMultiplier
}
