// Package answer orchestrates the fallback chain that turns a question into
// an answer with source attribution: exact/keyword/synonym FAQ lookup,
// semantic retrieval with hybrid ranking, the built-in preset table, and
// finally generative completion over the gathered evidence.
package answer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/claimwise/claimsage/internal/domain"
	"github.com/claimwise/claimsage/internal/metrics"
)

// Source labels attached to answers, in the order stages produce them.
const (
	SourceFAQ    = "FAQ database"
	SourcePreset = "preset knowledge base"
	SourceModel  = "AI language model"
	SourceSystem = "system message"
)

// degradedAnswer is returned when the completion capability is down and no
// deterministic stage produced an answer.
const degradedAnswer = "The AI service is temporarily unavailable. Please try again later, " +
	"or contact the insurance bureau hotline directly: 0800-078-777."

// noEvidenceDisclaimer is appended to generative answers produced without
// any supporting knowledge-base material.
const noEvidenceDisclaimer = "\n\nNote: this topic may not be covered by our knowledge base. " +
	"For authoritative guidance, please contact the insurance bureau or a branch office directly."

// Service runs the answer resolution pipeline.
type Service struct {
	faq       *FAQMatcher
	retriever Retriever
	generator Generator
	genOpts   domain.GenerateOptions
	logger    *zap.Logger
}

// New creates the pipeline. faq may wrap a nil database.
func New(
	faq *FAQMatcher,
	retriever Retriever,
	generator Generator,
	genOpts domain.GenerateOptions,
	logger *zap.Logger,
) *Service {
	return &Service{
		faq:       faq,
		retriever: retriever,
		generator: generator,
		genOpts:   genOpts,
		logger:    logger,
	}
}

// Resolve answers a query. Each stage either produces a terminal
// AnswerResult or signals "nothing here, continue"; only validation and
// admission failures ever surface to the caller, and those are handled
// before this method runs.
func (s *Service) Resolve(ctx context.Context, q domain.Query) domain.AnswerResult {
	// Stage 1: FAQ lookup.
	if ans := s.faq.Lookup(q.Question); ans != "" {
		s.logger.Info("resolved from FAQ", zap.String("session_id", q.SessionID))
		metrics.QueryResolutionsTotal.WithLabelValues("faq").Inc()
		return domain.AnswerResult{Answer: ans, Sources: []string{SourceFAQ}, Success: true}
	}

	// Stage 2: semantic retrieval. A retrieval failure degrades to the
	// later stages instead of failing the request.
	evidence, err := s.retriever.Retrieve(ctx, q.Question)
	if err != nil {
		s.logger.Warn("retrieval failed, continuing without evidence", zap.Error(err))
		evidence = nil
	}

	// Stage 3: preset fallback, only when retrieval found nothing.
	if len(evidence) == 0 {
		if ans := lookupPreset(q.Question); ans != "" {
			s.logger.Info("resolved from preset table", zap.String("session_id", q.SessionID))
			metrics.QueryResolutionsTotal.WithLabelValues("preset").Inc()
			return domain.AnswerResult{Answer: ans, Sources: []string{SourcePreset}, Success: true}
		}
	}

	// Stage 4: generative completion over whatever evidence we have.
	var sources domain.SourceSet
	for _, ev := range evidence {
		sources.Add(ev.Source())
	}

	prompt := buildPrompt(q.Question, evidence)
	text, err := s.generator.Generate(ctx, prompt, s.genOpts)
	if err != nil {
		s.logger.Error("generation failed", zap.Error(err))
		metrics.QueryResolutionsTotal.WithLabelValues("degraded").Inc()
		return domain.AnswerResult{
			Answer:  degradedAnswer,
			Sources: []string{SourceSystem},
			Success: false,
		}
	}

	answer := strings.TrimSpace(text)
	if len(evidence) == 0 {
		answer += noEvidenceDisclaimer
		metrics.QueryResolutionsTotal.WithLabelValues("generative").Inc()
		return domain.AnswerResult{
			Answer:  answer,
			Sources: []string{SourceModel},
			Success: true,
		}
	}

	sources.Add(SourceModel)
	metrics.QueryResolutionsTotal.WithLabelValues("generative").Inc()
	return domain.AnswerResult{Answer: answer, Sources: sources.Labels(), Success: true}
}

// buildPrompt assembles the completion prompt: the question, each evidence
// passage annotated with its similarity, and instructions that force the
// model to discriminate between near-identical disability-classification
// wording.
func buildPrompt(question string, evidence []domain.RankedEvidence) string {
	var b strings.Builder
	b.WriteString("You are an insurance advisory assistant specializing in labor insurance " +
		"benefit questions. Answer using the reference material below.\n\n")
	fmt.Fprintf(&b, "Question: %s\n\nReference material:\n", question)

	for _, ev := range evidence {
		fmt.Fprintf(&b, "\nRelevant passage (similarity: %.3f):\n%s\n", ev.Similarity, ev.Body)
	}

	b.WriteString("\nInstructions:\n" +
		"1. Read every qualifier in the question carefully. Phrases such as " +
		"\"permanently unfit for any work\" and \"permanently fit only for light work\" " +
		"describe different conditions and map to different disability levels.\n" +
		"2. Answer only from passages that match the asker's described condition exactly.\n" +
		"3. When the material states a disability level, cite the level number explicitly.\n" +
		"4. Be accurate and professional. Keep the answer under 200 words.\n")
	return b.String()
}
