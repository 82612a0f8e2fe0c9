// Package chi exposes the HTTP API: question answering, facility search,
// disability benefit lookups, and knowledge base administration.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/claimwise/claimsage/internal/domain"
	"github.com/claimwise/claimsage/internal/usecase/benefit"
	"github.com/claimwise/claimsage/internal/usecase/facility"
	"github.com/claimwise/claimsage/internal/usecase/health"
)

// Defaults applied to nearby searches when the caller omits the fields.
const (
	defaultCategory = facility.CategoryFacility
	defaultRadiusKm = 50
)

// bodyPartDegradedMessage is returned when the injury analysis provider is
// down. The endpoint answers 200 with success=false so clients show the
// message instead of a generic failure page.
const bodyPartDegradedMessage = "The analysis service is temporarily unavailable. " +
	"Please try again later or contact the insurance bureau hotline directly: 0800-078-777."

// AnswerResolver resolves a question into an answer.
type AnswerResolver interface {
	Resolve(ctx context.Context, q domain.Query) domain.AnswerResult
}

// PresetLister lists the questions available for exact matching.
type PresetLister interface {
	Questions() []string
}

// FacilityFinder performs location lookups over the directories.
type FacilityFinder interface {
	Nearest(lat, lon float64, category string, radiusKm float64) (facility.Result, error)
	Cities() ([]string, error)
	ByCity(city, category string) ([]domain.FacilityMatch, error)
}

// BenefitAdvisor answers disability benefit questions.
type BenefitAdvisor interface {
	Lookup(level int, injuryType string) (benefit.Info, error)
	AnalyzeInjury(ctx context.Context, bodyPart, description string) (string, error)
}

// KnowledgeAdmin rebuilds the knowledge base index.
type KnowledgeAdmin interface {
	Reload(ctx context.Context) (int, error)
}

// DocumentCounter reports the number of indexed documents.
type DocumentCounter interface {
	Count(ctx context.Context) (int, error)
}

// HealthChecker aggregates component availability.
type HealthChecker interface {
	Check(ctx context.Context) health.Report
}

// errorHandler maps a domain sentinel to an HTTP response.
type errorHandler struct {
	sentinel error
	status   int
	code     string
}

// Server implements the HTTP handlers.
type Server struct {
	answers        AnswerResolver
	presets        PresetLister
	facilities     FacilityFinder
	benefits       BenefitAdvisor
	admin          KnowledgeAdmin
	documents      DocumentCounter
	health         HealthChecker
	embeddingModel string
	validate       *validator.Validate
	logger         *zap.Logger
	errorHandlers  []errorHandler
}

// ServerConfig carries the server's collaborators.
type ServerConfig struct {
	Answers        AnswerResolver
	Presets        PresetLister
	Facilities     FacilityFinder
	Benefits       BenefitAdvisor
	Admin          KnowledgeAdmin
	Documents      DocumentCounter
	Health         HealthChecker
	EmbeddingModel string
	Logger         *zap.Logger
}

// NewServer creates a Server.
func NewServer(cfg ServerConfig) *Server {
	return &Server{
		answers:        cfg.Answers,
		presets:        cfg.Presets,
		facilities:     cfg.Facilities,
		benefits:       cfg.Benefits,
		admin:          cfg.Admin,
		documents:      cfg.Documents,
		health:         cfg.Health,
		embeddingModel: cfg.EmbeddingModel,
		validate:       validator.New(),
		logger:         cfg.Logger,
		errorHandlers: []errorHandler{
			{domain.ErrValidationFailed, http.StatusBadRequest, codeValidationFailed},
			{domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited},
			{domain.ErrDataUnavailable, http.StatusServiceUnavailable, codeDataUnavailable},
			{domain.ErrRetrievalUnavailable, http.StatusServiceUnavailable, codeDataUnavailable},
			{domain.ErrGenerationUnavailable, http.StatusServiceUnavailable, codeProviderError},
			{domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeProviderError},
			{domain.ErrGenerationProviderError, http.StatusBadGateway, codeProviderError},
		},
	}
}

// RouterConfig carries the middleware the router mounts. RateLimit only
// wraps the /api subtree so health and metrics stay reachable for probes.
type RouterConfig struct {
	Base      []func(http.Handler) http.Handler
	Auth      func(http.Handler) http.Handler
	RateLimit func(http.Handler) http.Handler
}

// NewRouter assembles the route tree.
func NewRouter(s *Server, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	for _, mw := range cfg.Base {
		r.Use(mw)
	}
	if cfg.Auth != nil {
		r.Use(cfg.Auth)
	}

	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		if cfg.RateLimit != nil {
			api.Use(cfg.RateLimit)
		}
		api.Post("/chat", s.Chat)
		api.Get("/chat/preset-questions", s.PresetQuestions)
		api.Post("/facilities/nearby", s.FacilitiesNearby)
		api.Get("/facilities/cities", s.FacilityCities)
		api.Get("/facilities/city/{city}", s.FacilitiesByCity)
		api.Post("/disability/benefit", s.DisabilityBenefit)
		api.Post("/disability/body-part", s.BodyPartAnalysis)
		api.Get("/knowledge/status", s.KnowledgeStatus)
		api.Post("/knowledge/reload", s.KnowledgeReload)
	})

	return r
}

// Chat resolves a question through the answer pipeline.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	res := s.answers.Resolve(r.Context(), domain.Query{
		Question:  req.Question,
		SessionID: req.SessionID,
	})
	sources := res.Sources
	if sources == nil {
		sources = []string{}
	}
	writeJSON(w, http.StatusOK, chatResponse{
		Answer:  res.Answer,
		Sources: sources,
		Success: res.Success,
	})
}

// PresetQuestions lists the questions the FAQ stage matches exactly.
func (s *Server) PresetQuestions(w http.ResponseWriter, _ *http.Request) {
	questions := s.presets.Questions()
	if questions == nil {
		questions = []string{}
	}
	writeJSON(w, http.StatusOK, presetQuestionsResponse{
		Questions: questions,
		Total:     len(questions),
	})
}

// FacilitiesNearby returns facilities or offices close to a point.
func (s *Server) FacilitiesNearby(w http.ResponseWriter, r *http.Request) {
	var req nearbyRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	if req.Category == "" {
		req.Category = defaultCategory
	}
	if req.RadiusKm == 0 {
		req.RadiusKm = defaultRadiusKm
	}

	result, err := s.facilities.Nearest(req.Latitude, req.Longitude, req.Category, req.RadiusKm)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	locations := make([]locationItem, 0, len(result.Matches))
	for _, m := range result.Matches {
		locations = append(locations, locationFromMatch(m, true))
	}
	writeJSON(w, http.StatusOK, nearbyResponse{
		Locations: locations,
		Total:     result.Total,
		Message:   result.Message,
		Success:   true,
	})
}

// FacilityCities lists the cities covered by the directories.
func (s *Server) FacilityCities(w http.ResponseWriter, r *http.Request) {
	cities, err := s.facilities.Cities()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, citiesResponse{Cities: cities, Success: true})
}

// FacilitiesByCity lists directory entries for one city.
func (s *Server) FacilitiesByCity(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")
	if city == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "city is required")
		return
	}
	category := r.URL.Query().Get("category")
	if category == "" {
		category = defaultCategory
	}

	matches, err := s.facilities.ByCity(city, category)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	locations := make([]locationItem, 0, len(matches))
	for _, m := range matches {
		locations = append(locations, locationFromMatch(m, false))
	}
	writeJSON(w, http.StatusOK, cityResponse{
		Locations: locations,
		City:      city,
		Category:  category,
		Success:   true,
	})
}

// DisabilityBenefit looks up benefit days for a disability level.
func (s *Server) DisabilityBenefit(w http.ResponseWriter, r *http.Request) {
	var req benefitRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	info, err := s.benefits.Lookup(req.Level, req.InjuryType)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, benefitResponse{
		Level:            info.Level,
		InjuryType:       info.InjuryType,
		BenefitType:      info.BenefitType,
		BenefitDays:      info.BenefitDays,
		OrdinaryDays:     info.OrdinaryDays,
		OccupationalDays: info.OccupationalDays,
		Explanation:      info.Explanation,
		Success:          true,
	})
}

// BodyPartAnalysis runs the model-backed injury assessment. Provider
// outages degrade to a 200 with success=false so the client can surface
// the fallback message.
func (s *Server) BodyPartAnalysis(w http.ResponseWriter, r *http.Request) {
	var req bodyPartRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	analysis, err := s.benefits.AnalyzeInjury(r.Context(), req.BodyPart, req.InjuryDescription)
	if err != nil {
		if errors.Is(err, domain.ErrGenerationUnavailable) {
			s.logger.Warn("injury analysis degraded", zap.Error(err))
			writeJSON(w, http.StatusOK, bodyPartResponse{
				BodyPart:          req.BodyPart,
				InjuryDescription: req.InjuryDescription,
				Error:             bodyPartDegradedMessage,
				Success:           false,
			})
			return
		}
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bodyPartResponse{
		BodyPart:          req.BodyPart,
		InjuryDescription: req.InjuryDescription,
		Analysis:          analysis,
		Success:           true,
	})
}

// KnowledgeStatus reports the index document count.
func (s *Server) KnowledgeStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.documents.Count(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := "ready"
	if count == 0 {
		status = "empty"
	}
	writeJSON(w, http.StatusOK, knowledgeStatusResponse{
		Status:         status,
		Documents:      count,
		EmbeddingModel: s.embeddingModel,
		Success:        true,
	})
}

// KnowledgeReload drops and rebuilds the knowledge index.
func (s *Server) KnowledgeReload(w http.ResponseWriter, r *http.Request) {
	count, err := s.admin.Reload(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, knowledgeReloadResponse{
		Documents: count,
		Message:   fmt.Sprintf("knowledge base rebuilt with %d documents", count),
		Success:   true,
	})
}

// HealthCheck reports aggregated component health. Degraded reports map to
// 503 so load balancers stop routing to the instance.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != health.Healthy {
		status = http.StatusServiceUnavailable
	}
	checks := make(map[string]string, len(report.Checks))
	for name, result := range report.Checks {
		checks[name] = string(result)
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

// decodeAndValidate decodes the JSON body into dst and validates it,
// writing the error response itself. Returns false when the request was
// rejected.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.logger.Debug("request validation failed", zap.Error(err))
		writeError(w, http.StatusBadRequest, codeValidationFailed, "request validation failed")
		return false
	}
	return true
}

// handleDomainError maps domain sentinels to HTTP responses, defaulting to
// a 500 for anything unexpected.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if errors.Is(err, h.sentinel) {
			if h.status >= http.StatusInternalServerError {
				s.logger.Error("request failed", zap.Error(err))
			} else {
				s.logger.Debug("request rejected", zap.Error(err))
			}
			writeError(w, h.status, h.code, h.sentinel.Error())
			return
		}
	}
	s.logger.Error("unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
