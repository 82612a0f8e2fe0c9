package chi

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/claimwise/claimsage/internal/domain"
	"github.com/claimwise/claimsage/internal/usecase/benefit"
	"github.com/claimwise/claimsage/internal/usecase/facility"
	"github.com/claimwise/claimsage/internal/usecase/health"
)

var errBoom = errors.New("boom")

type mockAnswers struct {
	resolveFn func(ctx context.Context, q domain.Query) domain.AnswerResult
	lastQuery domain.Query
}

func (m *mockAnswers) Resolve(ctx context.Context, q domain.Query) domain.AnswerResult {
	m.lastQuery = q
	if m.resolveFn != nil {
		return m.resolveFn(ctx, q)
	}
	return domain.AnswerResult{Answer: "stub answer", Sources: []string{"FAQ database"}, Success: true}
}

type mockPresets struct {
	questions []string
}

func (m *mockPresets) Questions() []string { return m.questions }

type mockFacilities struct {
	nearestFn func(lat, lon float64, category string, radiusKm float64) (facility.Result, error)
	citiesFn  func() ([]string, error)
	byCityFn  func(city, category string) ([]domain.FacilityMatch, error)
}

func (m *mockFacilities) Nearest(lat, lon float64, category string, radiusKm float64) (facility.Result, error) {
	if m.nearestFn != nil {
		return m.nearestFn(lat, lon, category, radiusKm)
	}
	return facility.Result{}, nil
}

func (m *mockFacilities) Cities() ([]string, error) {
	if m.citiesFn != nil {
		return m.citiesFn()
	}
	return nil, nil
}

func (m *mockFacilities) ByCity(city, category string) ([]domain.FacilityMatch, error) {
	if m.byCityFn != nil {
		return m.byCityFn(city, category)
	}
	return nil, nil
}

type mockBenefits struct {
	lookupFn  func(level int, injuryType string) (benefit.Info, error)
	analyzeFn func(ctx context.Context, bodyPart, description string) (string, error)
}

func (m *mockBenefits) Lookup(level int, injuryType string) (benefit.Info, error) {
	if m.lookupFn != nil {
		return m.lookupFn(level, injuryType)
	}
	return benefit.Info{}, nil
}

func (m *mockBenefits) AnalyzeInjury(ctx context.Context, bodyPart, description string) (string, error) {
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, bodyPart, description)
	}
	return "", nil
}

type mockAdmin struct {
	reloadFn func(ctx context.Context) (int, error)
}

func (m *mockAdmin) Reload(ctx context.Context) (int, error) {
	if m.reloadFn != nil {
		return m.reloadFn(ctx)
	}
	return 0, nil
}

type mockDocuments struct {
	countFn func(ctx context.Context) (int, error)
}

func (m *mockDocuments) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockHealth struct {
	report health.Report
}

func (m *mockHealth) Check(ctx context.Context) health.Report { return m.report }

type serverMocks struct {
	answers    *mockAnswers
	presets    *mockPresets
	facilities *mockFacilities
	benefits   *mockBenefits
	admin      *mockAdmin
	documents  *mockDocuments
	health     *mockHealth
}

func newTestServer() (*Server, *serverMocks) {
	mocks := &serverMocks{
		answers:    &mockAnswers{},
		presets:    &mockPresets{},
		facilities: &mockFacilities{},
		benefits:   &mockBenefits{},
		admin:      &mockAdmin{},
		documents:  &mockDocuments{},
		health:     &mockHealth{report: health.Report{Status: health.Healthy, Checks: map[string]health.CheckResult{"database": health.CheckOK}}},
	}
	srv := NewServer(ServerConfig{
		Answers:        mocks.answers,
		Presets:        mocks.presets,
		Facilities:     mocks.facilities,
		Benefits:       mocks.benefits,
		Admin:          mocks.admin,
		Documents:      mocks.documents,
		Health:         mocks.health,
		EmbeddingModel: "test-embedding-model",
		Logger:         zap.NewNop(),
	})
	return srv, mocks
}

func floatPtr(v float64) *float64 { return &v }
