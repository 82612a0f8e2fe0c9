// Package benefit answers disability benefit questions from the statutory
// per-level day table: direct level lookups and a generative estimate for
// described injuries.
package benefit

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/claimwise/claimsage/internal/domain"
	"github.com/claimwise/claimsage/internal/repository/dataset"
)

// Injury type labels accepted by Lookup.
const (
	InjuryOrdinary     = "ordinary"
	InjuryOccupational = "occupational"
)

// Info is the outcome of a benefit lookup.
type Info struct {
	Level            int
	InjuryType       string
	BenefitType      string
	BenefitDays      int
	OrdinaryDays     int
	OccupationalDays int
	Explanation      string
}

// Generator is the opaque completion capability used for injury analysis.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error)
}

// analysisOpts trade a little more randomness for richer free-text injury
// assessments, with tight output bounds.
var analysisOpts = domain.GenerateOptions{Temperature: 0.7, TopP: 0.9, MaxTokens: 150}

// Service serves benefit lookups. standards may be nil when the dataset
// failed to load; lookups then return domain.ErrDataUnavailable.
type Service struct {
	byLevel   map[int]dataset.BenefitStandard
	generator Generator
	logger    *zap.Logger
}

// New creates a benefit service.
func New(standards []dataset.BenefitStandard, generator Generator, logger *zap.Logger) *Service {
	byLevel := make(map[int]dataset.BenefitStandard, len(standards))
	for _, s := range standards {
		byLevel[s.Level] = s
	}
	return &Service{byLevel: byLevel, generator: generator, logger: logger}
}

// Lookup returns the benefit details for a disability level. injuryType
// selects between the ordinary and occupational day counts; anything that
// is not recognizably occupational falls back to ordinary.
func (s *Service) Lookup(level int, injuryType string) (Info, error) {
	if len(s.byLevel) == 0 {
		return Info{}, fmt.Errorf("benefit standards: %w", domain.ErrDataUnavailable)
	}
	if level < 1 || level > 15 {
		return Info{}, fmt.Errorf("disability level must be 1-15, got %d: %w", level, domain.ErrValidationFailed)
	}
	std, ok := s.byLevel[level]
	if !ok {
		return Info{}, fmt.Errorf("no benefit standard for level %d: %w", level, domain.ErrDataUnavailable)
	}

	benefitType := InjuryOrdinary
	days := std.OrdinaryDays
	if isOccupational(injuryType) {
		benefitType = InjuryOccupational
		days = std.OccupationalDays
	}

	return Info{
		Level:            level,
		InjuryType:       injuryType,
		BenefitType:      benefitType,
		BenefitDays:      days,
		OrdinaryDays:     std.OrdinaryDays,
		OccupationalDays: std.OccupationalDays,
		Explanation:      explain(level, benefitType, days),
	}, nil
}

// AnalyzeInjury asks the completion capability to estimate a likely
// disability level for a described injury, grounding the prompt in the
// loaded day table. Provider failures surface as
// domain.ErrGenerationUnavailable for the caller to degrade on.
func (s *Service) AnalyzeInjury(ctx context.Context, bodyPart, description string) (string, error) {
	if s.generator == nil {
		return "", domain.ErrGenerationUnavailable
	}

	text, err := s.generator.Generate(ctx, s.analysisPrompt(bodyPart, description), analysisOpts)
	if err != nil {
		s.logger.Error("injury analysis generation failed", zap.Error(err))
		return "", fmt.Errorf("analyze injury: %w: %w", domain.ErrGenerationUnavailable, err)
	}
	return strings.TrimSpace(text), nil
}

func (s *Service) analysisPrompt(bodyPart, description string) string {
	var b strings.Builder
	b.WriteString("You are an expert on statutory disability benefit classification. " +
		"Estimate the likely disability level for the injury below.\n\n")
	fmt.Fprintf(&b, "Body part: %s\nInjury description: %s\n\n", bodyPart, description)

	if len(s.byLevel) > 0 {
		b.WriteString("Benefit days by disability level (ordinary / occupational):\n")
		for level := 1; level <= 15; level++ {
			if std, ok := s.byLevel[level]; ok {
				fmt.Fprintf(&b, "- level %d: %d / %d days\n", level, std.OrdinaryDays, std.OccupationalDays)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("Answer in this format:\n" +
		"- Likely disability level: N\n" +
		"- Reasoning: one or two sentences\n" +
		"- Benefit days: ordinary N days, occupational N days\n" +
		"Keep the whole answer under 100 words.\n")
	return b.String()
}

func isOccupational(injuryType string) bool {
	t := strings.ToLower(strings.TrimSpace(injuryType))
	return strings.Contains(t, "occupational") || strings.Contains(t, "work-related")
}

func explain(level int, benefitType string, days int) string {
	severity := "minor"
	switch {
	case level <= 5:
		severity = "severe"
	case level <= 10:
		severity = "moderate"
	}

	return fmt.Sprintf(
		"Disability level %d is a %s impairment. The %s injury benefit pays %d days of the "+
			"insured average daily salary. Occupational injury claims pay 1.5 times the ordinary "+
			"day count at the same level. A disability certificate from an accredited medical "+
			"facility is required, and the standards may change when regulations are amended.",
		level, severity, benefitType, days,
	)
}
