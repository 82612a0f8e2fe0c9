package facility

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/claimwise/claimsage/internal/domain"
)

// origin for the test fixtures; facilities are placed due north of it so
// distance in km is roughly 111 x degrees of latitude.
const (
	originLat = 24.0
	originLon = 121.0
)

func record(name, rating string, latOffsetDeg float64) domain.FacilityRecord {
	lat := originLat + latOffsetDeg
	lon := originLon
	return domain.FacilityRecord{
		Name:   name,
		City:   "Portside",
		Rating: rating,
		Lat:    &lat,
		Lon:    &lon,
	}
}

func noCoords(name, rating string) domain.FacilityRecord {
	return domain.FacilityRecord{Name: name, City: "Portside", Rating: rating}
}

func kmToDeg(km float64) float64 { return km / 111.0 }

func TestNearestSameTierKeepsThreeClosest(t *testing.T) {
	facilities := []domain.FacilityRecord{
		record("at 100km", "regional hospital", kmToDeg(100)),
		record("at 1km", "regional hospital", kmToDeg(1)),
		record("at 50km", "regional hospital", kmToDeg(50)),
		record("at 2km", "regional hospital", kmToDeg(2)),
	}
	s := New(facilities, nil, zap.NewNop())

	res, err := s.Nearest(originLat, originLon, CategoryFacility, 150)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if len(res.Matches) != 3 {
		t.Fatalf("got %d matches, want per-tier limit 3", len(res.Matches))
	}
	want := []string{"at 1km", "at 2km", "at 50km"}
	for i, w := range want {
		if res.Matches[i].Name != w {
			t.Fatalf("match %d = %q, want %q", i, res.Matches[i].Name, w)
		}
	}
	if res.Total != 4 {
		t.Errorf("total = %d, want 4 in-radius candidates", res.Total)
	}
}

func TestNearestTierQuotasAreIndependent(t *testing.T) {
	// Four equidistant regional hospitals plus one distant medical center:
	// the medical center must still appear because tiering partitions
	// before truncation.
	facilities := []domain.FacilityRecord{
		record("regional a", "regional hospital", kmToDeg(1)),
		record("regional b", "regional hospital", kmToDeg(1)),
		record("regional c", "regional hospital", kmToDeg(1)),
		record("regional d", "regional hospital", kmToDeg(1)),
		record("center far", "medical center", kmToDeg(40)),
	}
	s := New(facilities, nil, zap.NewNop())

	res, err := s.Nearest(originLat, originLon, CategoryFacility, 150)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if len(res.Matches) != 4 {
		t.Fatalf("got %d matches, want 3 regional + 1 center", len(res.Matches))
	}
	if res.Matches[0].Name != "center far" {
		t.Fatalf("first match = %q, want the medical center (higher tier listed first)", res.Matches[0].Name)
	}
	for _, m := range res.Matches[1:] {
		if m.Tier != "regional hospital" {
			t.Fatalf("unexpected tier %q", m.Tier)
		}
	}
}

func TestNearestSkipsRecordsWithoutCoordinates(t *testing.T) {
	facilities := []domain.FacilityRecord{
		record("has coords", "clinic", kmToDeg(5)),
		noCoords("no coords", "clinic"),
	}
	s := New(facilities, nil, zap.NewNop())

	res, err := s.Nearest(originLat, originLon, CategoryFacility, 150)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if len(res.Matches) != 1 || res.Matches[0].Name != "has coords" {
		t.Fatalf("matches = %v", res.Matches)
	}
}

func TestNearestRadiusFilters(t *testing.T) {
	facilities := []domain.FacilityRecord{
		record("near", "clinic", kmToDeg(5)),
		record("far", "clinic", kmToDeg(80)),
	}
	s := New(facilities, nil, zap.NewNop())

	res, err := s.Nearest(originLat, originLon, CategoryFacility, 50)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if len(res.Matches) != 1 || res.Matches[0].Name != "near" {
		t.Fatalf("radius filter failed: %v", res.Matches)
	}
}

func TestNearestOfficesFlatList(t *testing.T) {
	offices := make([]domain.FacilityRecord, 0, 25)
	for i := 0; i < 25; i++ {
		offices = append(offices, record("office", "", kmToDeg(float64(i+1))))
	}
	s := New(nil, offices, zap.NewNop())

	res, err := s.Nearest(originLat, originLon, CategoryOffice, 200)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if len(res.Matches) != officeLimit {
		t.Fatalf("got %d offices, want flat limit %d", len(res.Matches), officeLimit)
	}
	for i := 1; i < len(res.Matches); i++ {
		if res.Matches[i].DistanceKm < res.Matches[i-1].DistanceKm {
			t.Fatal("office list is not distance-sorted")
		}
	}
	if res.Total != 25 {
		t.Errorf("total = %d, want 25", res.Total)
	}
}

func TestNearestValidation(t *testing.T) {
	s := New([]domain.FacilityRecord{record("x", "clinic", 0)}, nil, zap.NewNop())

	if _, err := s.Nearest(91, 0, CategoryFacility, 50); !errors.Is(err, domain.ErrValidationFailed) {
		t.Errorf("latitude 91: err = %v, want ErrValidationFailed", err)
	}
	if _, err := s.Nearest(0, 0, "warehouse", 50); !errors.Is(err, domain.ErrValidationFailed) {
		t.Errorf("bad category: err = %v, want ErrValidationFailed", err)
	}
}

func TestNearestEmptyDirectoryIsDataUnavailable(t *testing.T) {
	s := New(nil, nil, zap.NewNop())

	if _, err := s.Nearest(originLat, originLon, CategoryFacility, 50); !errors.Is(err, domain.ErrDataUnavailable) {
		t.Fatalf("err = %v, want ErrDataUnavailable", err)
	}
}

func TestClassifyTierPrecedence(t *testing.T) {
	cases := []struct{ rating, want string }{
		{"accredited medical center", "medical center"},
		{"Regional Hospital (excellent)", "regional hospital"},
		{"district hospital", "district hospital"},
		{"outpatient clinic", TierClinic},
		{"", TierClinic},
		// Rating text naming two tiers resolves to the first in precedence order.
		{"medical center, formerly regional hospital", "medical center"},
	}
	for _, tc := range cases {
		if got := classifyTier(tc.rating); got != tc.want {
			t.Errorf("classifyTier(%q) = %q, want %q", tc.rating, got, tc.want)
		}
	}
}

func TestCitiesSortedDistinct(t *testing.T) {
	officeCity := func(city string) domain.FacilityRecord {
		return domain.FacilityRecord{Name: city, City: city}
	}
	s := New(
		[]domain.FacilityRecord{{Name: "f", City: "Portside"}},
		[]domain.FacilityRecord{officeCity("Westbrook"), officeCity("Portside")},
		zap.NewNop(),
	)

	cities, err := s.Cities()
	if err != nil {
		t.Fatalf("Cities: %v", err)
	}
	want := []string{"Portside", "Westbrook"}
	if len(cities) != len(want) {
		t.Fatalf("cities = %v, want %v", cities, want)
	}
	for i := range want {
		if cities[i] != want[i] {
			t.Fatalf("cities = %v, want %v", cities, want)
		}
	}
}

func TestByCitySubstringMatch(t *testing.T) {
	s := New([]domain.FacilityRecord{
		{Name: "Harbor General", City: "Portside", Rating: "medical center"},
		{Name: "Valley Clinic", City: "Westbrook", Rating: "clinic"},
	}, nil, zap.NewNop())

	got, err := s.ByCity("port", CategoryFacility)
	if err != nil {
		t.Fatalf("ByCity: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Harbor General" {
		t.Fatalf("got %v", got)
	}
	if got[0].Tier != "medical center" {
		t.Errorf("tier = %q", got[0].Tier)
	}
}
