package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/wigwag/internal/catalog"
	"github.com/RMahshie/wigwag/internal/datafiles"
	"github.com/RMahshie/wigwag/internal/metrics"
	"github.com/RMahshie/wigwag/internal/noise"
	"github.com/RMahshie/wigwag/internal/processing"
	"github.com/RMahshie/wigwag/internal/storage"
	"github.com/RMahshie/wigwag/internal/waterfall"
	"github.com/RMahshie/wigwag/pkg/models"
)

// WaterfallService resolves precomputed contour data
type WaterfallService interface {
	Contour(ctx context.Context, key datafiles.Key) (*models.WaterfallContour, error)
}

// SensitivityHandler handles the dashboard HTTP requests
type SensitivityHandler struct {
	catalog     *catalog.Catalog
	sensitivity processing.SensitivityService
	waterfall   WaterfallService
	sections    []models.Section
}

// NewSensitivityHandler creates a new sensitivity handler
func NewSensitivityHandler(cat *catalog.Catalog, svc processing.SensitivityService, wf WaterfallService, sections []models.Section) *SensitivityHandler {
	return &SensitivityHandler{
		catalog:     cat,
		sensitivity: svc,
		waterfall:   wf,
		sections:    sections,
	}
}

// ListConfigurations returns the noise budgets and their admissible durations
func (h *SensitivityHandler) ListConfigurations(ctx context.Context, _ *struct{}) (*models.ListConfigurationsResponse, error) {
	resp := &models.ListConfigurationsResponse{}
	for _, b := range noise.Budgets() {
		resp.Body.NoiseBudgets = append(resp.Body.NoiseBudgets, models.NoiseBudgetOption{
			Name:      string(b),
			Durations: b.Durations(),
		})
	}
	return resp, nil
}

// ListSources returns the selector options and the catalog records
func (h *SensitivityHandler) ListSources(ctx context.Context, _ *models.ListSourcesRequest) (*models.ListSourcesResponse, error) {
	return &models.ListSourcesResponse{
		Body: models.ListSourcesResponseBody{
			Options: h.catalog.Options(),
			Sources: h.catalog.Records(),
		},
	}, nil
}

// ComputeSensitivity computes noise curves and source points for a configuration
func (h *SensitivityHandler) ComputeSensitivity(ctx context.Context, req *models.ComputeSensitivityRequest) (*models.ComputeSensitivityResponse, error) {
	computationID := uuid.New().String()
	logger := log.With().Str("computationID", computationID).Logger()
	logger.Info().
		Str("noiseBudget", req.Body.NoiseBudget).
		Float64("duration", req.Body.Duration).
		Int("selected", len(req.Body.Sources)).
		Msg("Sensitivity request received")

	cfg, err := noise.NewConfiguration(req.Body.NoiseBudget, req.Body.Duration)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("Unsupported noise budget or duration", err)
	}

	result, err := h.sensitivity.Compute(ctx, processing.Request{
		Configuration: cfg,
		Selection:     catalog.NewSelection(req.Body.Sources...),
	})
	if err != nil {
		logger.Error().Err(err).Msg("Sensitivity computation failed")
		return nil, toHTTPError(err, "Failed to compute sensitivity")
	}

	return &models.ComputeSensitivityResponse{
		Body: models.ComputeSensitivityResponseBody{
			ComputationID:     computationID,
			SensitivityResult: *result,
		},
	}, nil
}

// GetWaterfall returns the SNR contour data for a configuration
func (h *SensitivityHandler) GetWaterfall(ctx context.Context, req *models.GetWaterfallRequest) (*models.GetWaterfallResponse, error) {
	budget, err := noise.ParseBudget(req.NoiseBudget)
	if err != nil {
		metrics.ObserveWaterfall(metrics.OutcomeError)
		return nil, huma.Error422UnprocessableEntity("Unknown noise budget", err)
	}

	contour, err := h.waterfall.Contour(ctx, datafiles.Key{Budget: budget, Duration: req.Duration})
	if err != nil {
		metrics.ObserveWaterfall(metrics.OutcomeError)
		log.Warn().Err(err).Str("noiseBudget", req.NoiseBudget).Float64("duration", req.Duration).Msg("Waterfall lookup failed")
		return nil, toHTTPError(err, "Failed to load waterfall data")
	}

	metrics.ObserveWaterfall(metrics.OutcomeSuccess)
	return &models.GetWaterfallResponse{Body: *contour}, nil
}

// ListSections returns the dashboard navigation sections
func (h *SensitivityHandler) ListSections(ctx context.Context, _ *struct{}) (*models.ListSectionsResponse, error) {
	resp := &models.ListSectionsResponse{}
	resp.Body.Sections = h.sections
	if resp.Body.Sections == nil {
		resp.Body.Sections = []models.Section{}
	}
	return resp, nil
}

// toHTTPError maps domain errors to status codes
func toHTTPError(err error, msg string) error {
	switch {
	case errors.Is(err, noise.ErrInvalidConfiguration):
		return huma.Error422UnprocessableEntity("Unsupported noise budget or duration", err)
	case errors.Is(err, datafiles.ErrConfigurationNotFound), errors.Is(err, storage.ErrNotFound):
		return huma.Error404NotFound("No data for this configuration", err)
	case errors.Is(err, waterfall.ErrInvalidMesh):
		return huma.Error500InternalServerError("Corrupt waterfall data", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return huma.Error503ServiceUnavailable("Request cancelled", err)
	default:
		return huma.Error500InternalServerError(msg, err)
	}
}
