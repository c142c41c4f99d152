package processing

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RMahshie/wigwag/internal/catalog"
	"github.com/RMahshie/wigwag/internal/grid"
	"github.com/RMahshie/wigwag/internal/metrics"
	"github.com/RMahshie/wigwag/internal/noise"
	"github.com/RMahshie/wigwag/internal/orbits"
	"github.com/RMahshie/wigwag/internal/response"
	"github.com/RMahshie/wigwag/internal/synth"
	"github.com/RMahshie/wigwag/pkg/models"
)

// combinedScale is the empirical sky and polarisation factor applied to the
// combined instrumental plus confusion curve.
// TODO: trace the derivation of 20/3 before relying on it for new budgets.
const combinedScale = 20.0 / 3.0

// Request selects the noise configuration and sources of one computation.
type Request struct {
	Configuration noise.Configuration
	Selection     catalog.Selection
}

type SensitivityService interface {
	Compute(ctx context.Context, req Request) (*models.SensitivityResult, error)
}

// Deps are the read-only inputs shared by every computation.
type Deps struct {
	Catalog   *catalog.Catalog
	Grid      *grid.Frequency
	Response  *response.Function
	Noise     *noise.Cache
	Orbits    orbits.Orbits
	SynthOpts synth.Options
}

type sensitivityService struct {
	catalog   *catalog.Catalog
	grid      *grid.Frequency
	response  *response.Function
	noise     *noise.Cache
	orbits    orbits.Orbits
	synthOpts synth.Options
}

func NewSensitivityService(d Deps) (SensitivityService, error) {
	if d.Catalog == nil || d.Grid == nil || d.Response == nil {
		return nil, fmt.Errorf("sensitivity service: catalog, grid and response are required")
	}
	if d.Noise == nil {
		d.Noise = noise.NewCache()
	}
	if d.Orbits == nil {
		d.Orbits = orbits.NewEqualArmlength()
	}
	return &sensitivityService{
		catalog:   d.Catalog,
		grid:      d.Grid,
		response:  d.Response,
		noise:     d.Noise,
		orbits:    d.Orbits,
		synthOpts: d.SynthOpts,
	}, nil
}

func (s *sensitivityService) Compute(ctx context.Context, req Request) (*models.SensitivityResult, error) {
	start := time.Now()
	cfg := req.Configuration
	logger := log.With().Str("noise_budget", string(cfg.Budget)).Float64("duration", cfg.DurationYears).Logger()

	result, err := s.compute(ctx, req)
	if err != nil {
		metrics.ObserveComputation(string(cfg.Budget), time.Since(start), metrics.OutcomeError)
		logger.Warn().Err(err).Msg("Sensitivity computation failed")
		return nil, err
	}

	metrics.ObserveComputation(string(cfg.Budget), time.Since(start), metrics.OutcomeSuccess)
	metrics.ObserveSources(len(result.Sources), len(result.Skipped))
	logger.Info().
		Int("sources", len(result.Sources)).
		Int("skipped", len(result.Skipped)).
		Dur("elapsed", time.Since(start)).
		Msg("Sensitivity computed")
	return result, nil
}

func (s *sensitivityService) compute(ctx context.Context, req Request) (*models.SensitivityResult, error) {
	cfg := req.Configuration

	// Step 1: Noise curves for the configuration
	pair, err := s.noise.Curves(cfg, s.grid)
	if err != nil {
		return nil, err
	}
	model, err := noise.New(cfg.Budget)
	if err != nil {
		return nil, err
	}

	result := &models.SensitivityResult{
		Configuration: models.Configuration{NoiseBudget: string(cfg.Budget), DurationYears: cfg.DurationYears},
		Sources:       []models.ComputedSourcePoint{},
		Noise:         pair,
		Curves:        s.curves(pair),
	}

	// Step 2: Resolve the selection in catalog order
	records := s.catalog.Resolve(req.Selection)
	if len(records) == 0 {
		return result, nil
	}

	// Step 3: Orbits and waveform generator for this observation time
	tobs := cfg.ObservationTime()
	eph, err := orbits.ForObservation(s.orbits, tobs)
	if err != nil {
		return nil, fmt.Errorf("sample orbits: %w", err)
	}
	gen, err := synth.New(eph, s.synthOpts)
	if err != nil {
		return nil, err
	}

	totalNoise := func(f float64) float64 {
		return model.Instrumental(f) + model.Confusion(f, cfg.DurationYears)
	}

	// Step 4: Per-source points; failures are isolated
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		spectrum, err := gen.Synthesize(rec, tobs)
		if err != nil {
			log.Warn().Err(err).Str("source", rec.Name).Msg("Skipping source")
			result.Skipped = append(result.Skipped, models.SkippedSource{Name: rec.Name, Reason: err.Error()})
			continue
		}

		h0 := synth.CharacteristicAmplitude(spectrum, s.response.At)
		sh := h0 * h0
		result.Sources = append(result.Sources, models.ComputedSourcePoint{
			Name:                 rec.Name,
			Frequency:            rec.Frequency,
			Strain:               sh,
			CharacteristicStrain: math.Sqrt(rec.Frequency * sh),
			SNR:                  synth.SNR(spectrum, totalNoise),
		})
	}
	return result, nil
}

// curves builds the characteristic-strain noise overlays.
func (s *sensitivityService) curves(pair models.NoiseCurvePair) models.SensitivityCurves {
	n := len(pair.Frequency)
	out := models.SensitivityCurves{
		Frequency:    append([]float64(nil), pair.Frequency...),
		Instrumental: make([]float64, n),
		Combined:     make([]float64, n),
	}
	for i, f := range pair.Frequency {
		instr := s.response.Sensitivity(f, pair.Instrumental[i])
		total := s.response.Sensitivity(f, pair.Instrumental[i]+pair.Confusion[i])
		out.Instrumental[i] = math.Sqrt(f) * math.Sqrt(instr)
		out.Combined[i] = math.Sqrt(f) * math.Sqrt(combinedScale) * math.Sqrt(total)
	}
	return out
}
