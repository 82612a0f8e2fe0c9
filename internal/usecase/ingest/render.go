package ingest

import (
	"fmt"
	"strings"

	"github.com/claimwise/claimsage/internal/domain"
	"github.com/claimwise/claimsage/internal/repository/dataset"
	"github.com/claimwise/claimsage/internal/repository/knowledge"
)

// Source labels attached to index entries at ingest time. These surface in
// answer attributions, so they are written for display.
const (
	sourceDisabilityTable = "disability classification table"
	sourceOccupational    = "occupational injury review rules"
	sourceMedical         = "medical benefit catalogue"
	sourceBenefitTable    = "benefit standard table"
	sourceOffices         = "branch office directory"
	sourceFacilities      = "accredited facility directory"
)

func (s *Service) renderDisabilityStandards() ([]knowledge.Entry, error) {
	rows, err := dataset.LoadDisabilityStandards(s.datasets.DisabilityStandards)
	if err != nil {
		return nil, err
	}
	entries := make([]knowledge.Entry, 0, len(rows))
	for _, r := range rows {
		body := joinLines(
			"Disability category: "+r.Category,
			"Disability item: "+r.Item,
			"Disability condition: "+r.Condition,
			"Disability level: "+r.Level,
			"Review basis: "+r.ReviewBasis,
			"Certifying facility tier: "+r.CertifyingTier,
		)
		entries = append(entries, knowledge.Entry{
			ID:   "disability_" + r.Number,
			Body: body,
			Meta: map[string]string{
				domain.MetaSource:   sourceDisabilityTable,
				domain.MetaCategory: "disability standard",
				domain.MetaLevel:    r.Level,
			},
		})
	}
	return entries, nil
}

func (s *Service) renderOccupationalRules() ([]knowledge.Entry, error) {
	rows, err := dataset.LoadOccupationalRules(s.datasets.OccupationalRules)
	if err != nil {
		return nil, err
	}
	entries := make([]knowledge.Entry, 0, len(rows))
	for _, r := range rows {
		body := joinLines(
			"Article: "+r.Article,
			"Content: "+r.Content,
			"Amended on: "+r.AmendedOn,
		)
		entries = append(entries, knowledge.Entry{
			ID:   "occupational_" + r.Seq,
			Body: body,
			Meta: map[string]string{
				domain.MetaSource:   sourceOccupational,
				domain.MetaCategory: "occupational injury review",
			},
		})
	}
	return entries, nil
}

func (s *Service) renderMedicalBenefits() ([]knowledge.Entry, error) {
	rows, err := dataset.LoadMedicalBenefits(s.datasets.MedicalBenefits)
	if err != nil {
		return nil, err
	}
	entries := make([]knowledge.Entry, 0, len(rows))
	for _, r := range rows {
		body := joinLines(
			"Benefit item: "+r.Item,
			"Description: "+r.Description,
			"Regulation: "+r.Regulation,
			"Effective from: "+r.EffectiveFrom,
		)
		entries = append(entries, knowledge.Entry{
			Body: body,
			Meta: map[string]string{
				domain.MetaSource:   sourceMedical,
				domain.MetaCategory: "medical benefit",
			},
		})
	}
	return entries, nil
}

func (s *Service) renderBenefitStandards() ([]knowledge.Entry, error) {
	rows, err := dataset.LoadBenefitStandards(s.datasets.BenefitStandards)
	if err != nil {
		return nil, err
	}
	entries := make([]knowledge.Entry, 0, len(rows))
	for _, r := range rows {
		body := joinLines(
			fmt.Sprintf("Disability level: %d", r.Level),
			fmt.Sprintf("Ordinary injury benefit: %d days", r.OrdinaryDays),
			fmt.Sprintf("Occupational injury benefit: %d days", r.OccupationalDays),
		)
		entries = append(entries, knowledge.Entry{
			ID:   fmt.Sprintf("benefit_%d", r.Level),
			Body: body,
			Meta: map[string]string{
				domain.MetaSource:   sourceBenefitTable,
				domain.MetaCategory: "benefit standard",
				domain.MetaLevel:    fmt.Sprintf("%d", r.Level),
			},
		})
	}
	return entries, nil
}

func (s *Service) renderOffices() ([]knowledge.Entry, error) {
	rows, err := dataset.LoadOffices(s.datasets.Offices)
	if err != nil {
		return nil, err
	}
	entries := make([]knowledge.Entry, 0, len(rows))
	for _, r := range rows {
		body := joinLines(
			"City: "+r.City,
			"Office address: "+r.Address,
			"Office phone: "+r.Phone,
			"Counter service hours: "+r.ServiceHours,
			"Phone service hours: "+r.PhoneHours,
		)
		entries = append(entries, knowledge.Entry{
			Body: body,
			Meta: map[string]string{
				domain.MetaSource:   sourceOffices,
				domain.MetaCategory: "office information",
			},
		})
	}
	return entries, nil
}

func (s *Service) renderFacilities() ([]knowledge.Entry, error) {
	rows, err := dataset.LoadFacilities(s.datasets.Facilities)
	if err != nil {
		return nil, err
	}
	entries := make([]knowledge.Entry, 0, len(rows))
	for _, r := range rows {
		body := joinLines(
			"Facility name: "+r.Name,
			"City: "+r.City,
			"Accreditation result: "+r.Rating,
			"Phone: "+r.Phone,
			"Address: "+r.Address,
		)
		entries = append(entries, knowledge.Entry{
			Body: body,
			Meta: map[string]string{
				domain.MetaSource:   sourceFacilities,
				domain.MetaCategory: "facility information",
			},
		})
	}
	return entries, nil
}

func joinLines(lines ...string) string {
	return strings.Join(lines, "\n")
}
