package domain

// FacilityRecord is a named location from the read-only facility directory.
// Coordinates are nullable: directory entries without them are skipped by
// the nearest-facility search.
type FacilityRecord struct {
	Name         string
	City         string
	Address      string
	Phone        string
	Rating       string // accreditation text, drives tier bucketing
	ServiceHours string
	PhoneHours   string
	Lat          *float64
	Lon          *float64
}

// HasCoordinates reports whether the record carries both coordinates.
func (f FacilityRecord) HasCoordinates() bool {
	return f.Lat != nil && f.Lon != nil
}

// FacilityMatch is a FacilityRecord paired with its distance from the query
// point and the tier it was bucketed into.
type FacilityMatch struct {
	FacilityRecord
	Tier       string
	DistanceKm float64
}
