package dataset

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/claimwise/claimsage/internal/domain"
)

// flexFloat decodes a JSON number or a numeric string. Directory files mix
// both representations for coordinates; anything else is a data error.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return fmt.Errorf("flexFloat: null is not a number")
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("flexFloat: parse %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}

// officeRecord mirrors the office directory file layout.
type officeRecord struct {
	City         string     `json:"city"`
	Address      string     `json:"address"`
	Phone        string     `json:"phone"`
	ServiceHours string     `json:"service_hours"`
	PhoneHours   string     `json:"phone_hours"`
	Lat          *flexFloat `json:"latitude"`
	Lon          *flexFloat `json:"longitude"`
}

// facilityRecord mirrors the medical facility directory file layout.
type facilityRecord struct {
	Name    string     `json:"name"`
	City    string     `json:"city"`
	Address string     `json:"address"`
	Phone   string     `json:"phone"`
	Rating  string     `json:"rating"`
	Lat     *flexFloat `json:"latitude"`
	Lon     *flexFloat `json:"longitude"`
}

// LoadOffices loads the branch office directory. Offices are named after
// their city; all of them are expected to carry coordinates.
func LoadOffices(path string) ([]domain.FacilityRecord, error) {
	var rows []officeRecord
	if err := loadJSON(path, &rows); err != nil {
		return nil, err
	}
	out := make([]domain.FacilityRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.FacilityRecord{
			Name:         r.City,
			City:         r.City,
			Address:      r.Address,
			Phone:        r.Phone,
			ServiceHours: r.ServiceHours,
			PhoneHours:   r.PhoneHours,
			Lat:          toFloatPtr(r.Lat),
			Lon:          toFloatPtr(r.Lon),
		})
	}
	return out, nil
}

// LoadFacilities loads the accredited medical facility directory. Records
// without coordinates are kept; the nearest search skips them, city listings
// still include them.
func LoadFacilities(path string) ([]domain.FacilityRecord, error) {
	var rows []facilityRecord
	if err := loadJSON(path, &rows); err != nil {
		return nil, err
	}
	out := make([]domain.FacilityRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.FacilityRecord{
			Name:    r.Name,
			City:    r.City,
			Address: r.Address,
			Phone:   r.Phone,
			Rating:  r.Rating,
			Lat:     toFloatPtr(r.Lat),
			Lon:     toFloatPtr(r.Lon),
		})
	}
	return out, nil
}

func toFloatPtr(f *flexFloat) *float64 {
	if f == nil {
		return nil
	}
	v := float64(*f)
	return &v
}

var _ json.Unmarshaler = (*flexFloat)(nil)
