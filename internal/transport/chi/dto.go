package chi

import "github.com/claimwise/claimsage/internal/domain"

// Error codes returned to clients.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeRateLimited      = "rate_limited"
	codeDataUnavailable  = "data_unavailable"
	codeProviderError    = "provider_error"
	codeInternalError    = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type chatRequest struct {
	Question  string `json:"question" validate:"required,min=1,max=500"`
	SessionID string `json:"session_id" validate:"max=100"`
}

type chatResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
	Success bool     `json:"success"`
}

type presetQuestionsResponse struct {
	Questions []string `json:"questions"`
	Total     int      `json:"total"`
}

type nearbyRequest struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
	Category  string  `json:"category" validate:"omitempty,oneof=facility office"`
	RadiusKm  float64 `json:"radius" validate:"omitempty,min=1,max=200"`
}

type locationItem struct {
	Name         string   `json:"name"`
	Address      string   `json:"address,omitempty"`
	City         string   `json:"city"`
	Phone        string   `json:"phone,omitempty"`
	Rating       string   `json:"rating,omitempty"`
	Tier         string   `json:"tier,omitempty"`
	ServiceHours string   `json:"service_hours,omitempty"`
	PhoneHours   string   `json:"phone_hours,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	DistanceKm   *float64 `json:"distance_km,omitempty"`
}

type nearbyResponse struct {
	Locations []locationItem `json:"locations"`
	Total     int            `json:"total"`
	Message   string         `json:"message"`
	Success   bool           `json:"success"`
}

type citiesResponse struct {
	Cities  []string `json:"cities"`
	Success bool     `json:"success"`
}

type cityResponse struct {
	Locations []locationItem `json:"locations"`
	City      string         `json:"city"`
	Category  string         `json:"category"`
	Success   bool           `json:"success"`
}

type benefitRequest struct {
	Level      int    `json:"level" validate:"required,min=1,max=15"`
	InjuryType string `json:"injury_type" validate:"max=50"`
}

type benefitResponse struct {
	Level            int    `json:"level"`
	InjuryType       string `json:"injury_type"`
	BenefitType      string `json:"benefit_type"`
	BenefitDays      int    `json:"benefit_days"`
	OrdinaryDays     int    `json:"ordinary_days"`
	OccupationalDays int    `json:"occupational_days"`
	Explanation      string `json:"explanation"`
	Success          bool   `json:"success"`
}

type bodyPartRequest struct {
	BodyPart          string `json:"body_part" validate:"required,min=2,max=50"`
	InjuryDescription string `json:"injury_description" validate:"required,min=5,max=500"`
}

type bodyPartResponse struct {
	BodyPart          string `json:"body_part"`
	InjuryDescription string `json:"injury_description"`
	Analysis          string `json:"analysis,omitempty"`
	Error             string `json:"error,omitempty"`
	Success           bool   `json:"success"`
}

type knowledgeStatusResponse struct {
	Status         string `json:"status"`
	Documents      int    `json:"documents"`
	EmbeddingModel string `json:"embedding_model"`
	Success        bool   `json:"success"`
}

type knowledgeReloadResponse struct {
	Documents int    `json:"documents"`
	Message   string `json:"message"`
	Success   bool   `json:"success"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func locationFromMatch(m domain.FacilityMatch, withDistance bool) locationItem {
	item := locationItem{
		Name:         m.Name,
		Address:      m.Address,
		City:         m.City,
		Phone:        m.Phone,
		Rating:       m.Rating,
		Tier:         m.Tier,
		ServiceHours: m.ServiceHours,
		PhoneHours:   m.PhoneHours,
		Latitude:     m.Lat,
		Longitude:    m.Lon,
	}
	if withDistance {
		d := m.DistanceKm
		item.DistanceKm = &d
	}
	return item
}
