package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/wigwag/internal/catalog"
	"github.com/RMahshie/wigwag/internal/datafiles"
	"github.com/RMahshie/wigwag/internal/noise"
	"github.com/RMahshie/wigwag/internal/processing"
	"github.com/RMahshie/wigwag/internal/storage"
	"github.com/RMahshie/wigwag/pkg/models"
)

// MockSensitivityService implements processing.SensitivityService for testing
type MockSensitivityService struct {
	mock.Mock
}

func (m *MockSensitivityService) Compute(ctx context.Context, req processing.Request) (*models.SensitivityResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SensitivityResult), args.Error(1)
}

// MockWaterfallService implements WaterfallService for testing
type MockWaterfallService struct {
	mock.Mock
}

func (m *MockWaterfallService) Contour(ctx context.Context, key datafiles.Key) (*models.WaterfallContour, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WaterfallContour), args.Error(1)
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]models.SourceRecord{
		{Name: "AMCVn", Frequency: 1.944e-3, Amplitude: 2.8e-22},
		{Name: "HMCnc", Frequency: 6.22e-3, Amplitude: 6.38e-23},
	})
	require.NoError(t, err)
	return cat
}

func setup(t *testing.T) (humatest.TestAPI, *MockSensitivityService, *MockWaterfallService) {
	t.Helper()
	_, api := humatest.New(t)

	svc := new(MockSensitivityService)
	wf := new(MockWaterfallService)
	sections := []models.Section{
		{Name: "SO1", Description: "Sensitivity", Pages: []models.SectionPage{{Name: "Sensitivity", Path: "pages/sensitivity"}}},
	}
	h := NewSensitivityHandler(testCatalog(t), svc, wf, sections)

	huma.Get(api, "/api/configurations", h.ListConfigurations)
	huma.Get(api, "/api/sources", h.ListSources)
	huma.Post(api, "/api/sensitivity", h.ComputeSensitivity)
	huma.Get(api, "/api/waterfall", h.GetWaterfall)
	huma.Get(api, "/api/sections", h.ListSections)
	return api, svc, wf
}

func TestListConfigurations(t *testing.T) {
	api, _, _ := setup(t)

	resp := api.Get("/api/configurations")
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		NoiseBudgets []models.NoiseBudgetOption `json:"noise_budgets"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.NoiseBudgets, 2)
	assert.Equal(t, "redbook", body.NoiseBudgets[0].Name)
	assert.Equal(t, []float64{4.5}, body.NoiseBudgets[0].Durations)
	assert.Equal(t, []float64{4.5, 7.5}, body.NoiseBudgets[1].Durations)
}

func TestListSources(t *testing.T) {
	api, _, _ := setup(t)

	resp := api.Get("/api/sources")
	require.Equal(t, http.StatusOK, resp.Code)

	var body models.ListSourcesResponseBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, []string{catalog.SelectAll, "AMCVn", "HMCnc"}, body.Options)
	assert.Len(t, body.Sources, 2)
}

func TestComputeSensitivity(t *testing.T) {
	tests := []struct {
		name      string
		body      map[string]any
		mockSetup func(*MockSensitivityService)
		wantCode  int
	}{
		{
			name: "selected sources",
			body: map[string]any{"noise_budget": "scird", "duration": 7.5, "sources": []string{"AMCVn"}},
			mockSetup: func(m *MockSensitivityService) {
				m.On("Compute", mock.Anything, mock.MatchedBy(func(req processing.Request) bool {
					return req.Configuration.Budget == noise.SciRD &&
						req.Configuration.DurationYears == 7.5 &&
						!req.Selection.IsAll()
				})).Return(&models.SensitivityResult{
					Configuration: models.Configuration{NoiseBudget: "scird", DurationYears: 7.5},
					Sources:       []models.ComputedSourcePoint{{Name: "AMCVn", Frequency: 1.944e-3, Strain: 1e-40}},
				}, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name: "select all",
			body: map[string]any{"noise_budget": "redbook", "duration": 4.5, "sources": []string{catalog.SelectAll}},
			mockSetup: func(m *MockSensitivityService) {
				m.On("Compute", mock.Anything, mock.MatchedBy(func(req processing.Request) bool {
					return req.Selection.IsAll()
				})).Return(&models.SensitivityResult{Sources: []models.ComputedSourcePoint{}}, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name:      "inadmissible duration",
			body:      map[string]any{"noise_budget": "redbook", "duration": 7.5},
			mockSetup: func(m *MockSensitivityService) {},
			wantCode:  http.StatusUnprocessableEntity,
		},
		{
			name: "mixed-case budget",
			body: map[string]any{"noise_budget": " SciRD ", "duration": 4.5},
			mockSetup: func(m *MockSensitivityService) {
				m.On("Compute", mock.Anything, mock.MatchedBy(func(req processing.Request) bool {
					return req.Configuration.Budget == noise.SciRD && req.Selection.Empty()
				})).Return(&models.SensitivityResult{Sources: []models.ComputedSourcePoint{}}, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name:      "unknown budget",
			body:      map[string]any{"noise_budget": "lisa", "duration": 4.5},
			mockSetup: func(m *MockSensitivityService) {},
			wantCode:  http.StatusUnprocessableEntity,
		},
		{
			name: "computation failure",
			body: map[string]any{"noise_budget": "redbook", "duration": 4.5},
			mockSetup: func(m *MockSensitivityService) {
				m.On("Compute", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("orbits unavailable"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, svc, _ := setup(t)
			tt.mockSetup(svc)

			resp := api.Post("/api/sensitivity", tt.body)
			assert.Equal(t, tt.wantCode, resp.Code, resp.Body.String())

			if tt.wantCode == http.StatusOK {
				var body models.ComputeSensitivityResponseBody
				require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
				assert.NotEmpty(t, body.ComputationID)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestGetWaterfall(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		mockSetup func(*MockWaterfallService)
		wantCode  int
	}{
		{
			name:  "found",
			query: "noise_budget=redbook&duration=4.5",
			mockSetup: func(m *MockWaterfallService) {
				m.On("Contour", mock.Anything, datafiles.Key{Budget: noise.Redbook, Duration: 4.5}).
					Return(&models.WaterfallContour{TotalMass: []float64{1e5}, Redshift: []float64{1}, Log10SNR: [][]float64{{1}}}, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name:  "mixed-case budget",
			query: "noise_budget=RedBook&duration=4.5",
			mockSetup: func(m *MockWaterfallService) {
				m.On("Contour", mock.Anything, datafiles.Key{Budget: noise.Redbook, Duration: 4.5}).
					Return(&models.WaterfallContour{}, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name:      "unknown budget",
			query:     "noise_budget=lisa&duration=4.5",
			mockSetup: func(m *MockWaterfallService) {},
			wantCode:  http.StatusUnprocessableEntity,
		},
		{
			name:  "configuration missing",
			query: "noise_budget=scird&duration=7.5",
			mockSetup: func(m *MockWaterfallService) {
				m.On("Contour", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("lookup: %w", datafiles.ErrConfigurationNotFound))
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:  "file missing from store",
			query: "noise_budget=scird&duration=4.5",
			mockSetup: func(m *MockWaterfallService) {
				m.On("Contour", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("load: %w", storage.ErrNotFound))
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, _, wf := setup(t)
			tt.mockSetup(wf)

			resp := api.Get("/api/waterfall?" + tt.query)
			assert.Equal(t, tt.wantCode, resp.Code, resp.Body.String())
			wf.AssertExpectations(t)
		})
	}
}

func TestListSections(t *testing.T) {
	api, _, _ := setup(t)

	resp := api.Get("/api/sections")
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Sections []models.Section `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Sections, 1)
	assert.Equal(t, "pages/sensitivity", body.Sections[0].Pages[0].Path)
}

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("x: %w", noise.ErrInvalidConfiguration), want: http.StatusUnprocessableEntity},
		{err: datafiles.ErrConfigurationNotFound, want: http.StatusNotFound},
		{err: context.Canceled, want: http.StatusServiceUnavailable},
		{err: fmt.Errorf("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		var se huma.StatusError
		require.ErrorAs(t, toHTTPError(tt.err, "failed"), &se)
		assert.Equal(t, tt.want, se.GetStatus(), tt.err.Error())
	}
}
