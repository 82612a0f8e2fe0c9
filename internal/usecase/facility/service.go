// Package facility answers location lookups over the read-only office and
// medical facility directories: nearest-by-distance search with tier
// bucketing, city listings, and city-scoped directory views.
package facility

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/claimwise/claimsage/internal/domain"
	"github.com/claimwise/claimsage/internal/domain/geo"
)

// Search categories.
const (
	CategoryFacility = "facility"
	CategoryOffice   = "office"
)

// Facility accreditation tiers, in precedence order. Bucketing matches the
// first tier whose name appears in the record's rating text; the order
// matters because rating text can mention more than one tier.
var tierOrder = []string{
	"medical center",
	"regional hospital",
	"district hospital",
}

// TierClinic is the default bucket for ratings matching no named tier.
const TierClinic = "clinic"

const (
	// perTierLimit caps each tier bucket so closer tiers cannot crowd the
	// rest out of the response.
	perTierLimit = 3
	// officeLimit caps the flat office listing.
	officeLimit = 20
)

// Result is the outcome of a nearest search: the selected matches, the
// total number of in-radius candidates before truncation, and a summary
// line for display.
type Result struct {
	Matches []domain.FacilityMatch
	Total   int
	Message string
}

// Service performs directory lookups. Directories are loaded once at
// startup; a nil directory disables the lookups that need it.
type Service struct {
	facilities []domain.FacilityRecord
	offices    []domain.FacilityRecord
	logger     *zap.Logger
}

// New creates a facility search service.
func New(facilities, offices []domain.FacilityRecord, logger *zap.Logger) *Service {
	return &Service{facilities: facilities, offices: offices, logger: logger}
}

// Nearest returns facilities or offices near the given point, within
// radiusKm. Facility results are bucketed by tier with a per-tier limit;
// office results are a flat distance-sorted list. Records without
// coordinates are skipped.
func (s *Service) Nearest(lat, lon float64, category string, radiusKm float64) (Result, error) {
	if !geo.ValidateCoordinates(lat, lon) {
		return Result{}, fmt.Errorf("coordinates out of range (%g, %g): %w", lat, lon, domain.ErrValidationFailed)
	}

	switch category {
	case CategoryFacility:
		return s.nearestFacilities(lat, lon, radiusKm)
	case CategoryOffice:
		return s.nearestOffices(lat, lon, radiusKm)
	default:
		return Result{}, fmt.Errorf("unknown category %q: %w", category, domain.ErrValidationFailed)
	}
}

func (s *Service) nearestFacilities(lat, lon, radiusKm float64) (Result, error) {
	if len(s.facilities) == 0 {
		return Result{}, fmt.Errorf("facility directory: %w", domain.ErrDataUnavailable)
	}

	buckets := make(map[string][]domain.FacilityMatch, len(tierOrder)+1)
	total := 0
	for _, rec := range s.facilities {
		if !rec.HasCoordinates() {
			continue
		}
		dist := geo.Haversine(lat, lon, *rec.Lat, *rec.Lon)
		if dist > radiusKm {
			continue
		}
		tier := classifyTier(rec.Rating)
		buckets[tier] = append(buckets[tier], domain.FacilityMatch{
			FacilityRecord: rec,
			Tier:           tier,
			DistanceKm:     dist,
		})
		total++
	}

	var matches []domain.FacilityMatch
	counts := make(map[string]int, len(tierOrder)+1)
	for _, tier := range append(append([]string{}, tierOrder...), TierClinic) {
		bucket := buckets[tier]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].DistanceKm < bucket[j].DistanceKm
		})
		if len(bucket) > perTierLimit {
			bucket = bucket[:perTierLimit]
		}
		counts[tier] = len(bucket)
		matches = append(matches, bucket...)
	}

	msg := fmt.Sprintf(
		"Found the nearest facilities: %d medical centers, %d regional hospitals, %d district hospitals, %d clinics",
		counts["medical center"], counts["regional hospital"], counts["district hospital"], counts[TierClinic],
	)
	return Result{Matches: matches, Total: total, Message: msg}, nil
}

func (s *Service) nearestOffices(lat, lon, radiusKm float64) (Result, error) {
	if len(s.offices) == 0 {
		return Result{}, fmt.Errorf("office directory: %w", domain.ErrDataUnavailable)
	}

	var matches []domain.FacilityMatch
	for _, rec := range s.offices {
		if !rec.HasCoordinates() {
			continue
		}
		dist := geo.Haversine(lat, lon, *rec.Lat, *rec.Lon)
		if dist > radiusKm {
			continue
		}
		matches = append(matches, domain.FacilityMatch{
			FacilityRecord: rec,
			DistanceKm:     dist,
		})
	}
	total := len(matches)

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].DistanceKm < matches[j].DistanceKm
	})
	if len(matches) > officeLimit {
		matches = matches[:officeLimit]
	}

	return Result{
		Matches: matches,
		Total:   total,
		Message: fmt.Sprintf("Found %d branch offices", len(matches)),
	}, nil
}

// Cities returns the sorted distinct city names across both directories.
func (s *Service) Cities() ([]string, error) {
	if len(s.offices) == 0 && len(s.facilities) == 0 {
		return nil, fmt.Errorf("directories: %w", domain.ErrDataUnavailable)
	}

	seen := make(map[string]struct{})
	for _, rec := range s.offices {
		if rec.City != "" {
			seen[rec.City] = struct{}{}
		}
	}
	for _, rec := range s.facilities {
		if rec.City != "" {
			seen[rec.City] = struct{}{}
		}
	}

	cities := make([]string, 0, len(seen))
	for c := range seen {
		cities = append(cities, c)
	}
	sort.Strings(cities)
	return cities, nil
}

// ByCity lists directory records whose city matches (substring,
// case-insensitive), so "Port" finds "Portside".
func (s *Service) ByCity(city, category string) ([]domain.FacilityMatch, error) {
	var records []domain.FacilityRecord
	switch category {
	case CategoryFacility:
		records = s.facilities
	case CategoryOffice:
		records = s.offices
	default:
		return nil, fmt.Errorf("unknown category %q: %w", category, domain.ErrValidationFailed)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s directory: %w", category, domain.ErrDataUnavailable)
	}

	needle := strings.ToLower(strings.TrimSpace(city))
	var out []domain.FacilityMatch
	for _, rec := range records {
		if !strings.Contains(strings.ToLower(rec.City), needle) {
			continue
		}
		match := domain.FacilityMatch{FacilityRecord: rec}
		if category == CategoryFacility {
			match.Tier = classifyTier(rec.Rating)
		}
		out = append(out, match)
	}
	return out, nil
}

// classifyTier maps accreditation text to a tier bucket. First matching
// tier name wins; unmatched ratings fall into the clinic bucket.
func classifyTier(rating string) string {
	lower := strings.ToLower(rating)
	for _, tier := range tierOrder {
		if strings.Contains(lower, tier) {
			return tier
		}
	}
	return TierClinic
}
