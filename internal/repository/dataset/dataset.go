// Package dataset loads the read-only reference datasets (FAQ database,
// statutory tables, office and facility directories) from JSON files on
// disk. Loaders fail independently: a missing or malformed file disables
// the features that depend on it, wrapped in domain.ErrDataUnavailable.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claimwise/claimsage/internal/domain"
)

// DisabilityStandard is one row of the statutory disability classification
// table. Rendered into the knowledge index at ingest time.
type DisabilityStandard struct {
	Number         string `json:"number"`
	Category       string `json:"category"`
	Item           string `json:"item"`
	Condition      string `json:"condition"`
	Level          string `json:"level"`
	ReviewBasis    string `json:"review_basis"`
	CertifyingTier string `json:"certifying_tier"`
}

// OccupationalRule is one article of the occupational injury review rules.
type OccupationalRule struct {
	Seq       string `json:"seq"`
	Article   string `json:"article"`
	Content   string `json:"content"`
	AmendedOn string `json:"amended_on"`
}

// MedicalBenefit is one entry of the medical benefit catalogue.
type MedicalBenefit struct {
	Item          string `json:"item"`
	Description   string `json:"description"`
	Regulation    string `json:"regulation"`
	EffectiveFrom string `json:"effective_from"`
}

// BenefitStandard maps a disability level to its payable day counts.
type BenefitStandard struct {
	Level            int `json:"level"`
	OrdinaryDays     int `json:"ordinary_days"`
	OccupationalDays int `json:"occupational_days"`
}

// loadJSON reads and decodes a JSON file into out, wrapping failures in
// domain.ErrDataUnavailable so callers can degrade instead of crashing.
func loadJSON(path string, out any) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read %s: %w: %w", path, domain.ErrDataUnavailable, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w: %w", path, domain.ErrDataUnavailable, err)
	}
	return nil
}

// LoadDisabilityStandards loads the disability classification table.
func LoadDisabilityStandards(path string) ([]DisabilityStandard, error) {
	var rows []DisabilityStandard
	if err := loadJSON(path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// LoadOccupationalRules loads the occupational injury review rules.
func LoadOccupationalRules(path string) ([]OccupationalRule, error) {
	var rows []OccupationalRule
	if err := loadJSON(path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// LoadMedicalBenefits loads the medical benefit catalogue.
func LoadMedicalBenefits(path string) ([]MedicalBenefit, error) {
	var rows []MedicalBenefit
	if err := loadJSON(path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// LoadBenefitStandards loads the per-level benefit day table.
func LoadBenefitStandards(path string) ([]BenefitStandard, error) {
	var rows []BenefitStandard
	if err := loadJSON(path, &rows); err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].Level < 1 {
			return nil, fmt.Errorf("benefit standard row %d has invalid level %d: %w",
				i, rows[i].Level, domain.ErrDataUnavailable)
		}
	}
	return rows, nil
}
