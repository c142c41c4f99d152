package processing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/wigwag/internal/catalog"
	"github.com/RMahshie/wigwag/internal/grid"
	"github.com/RMahshie/wigwag/internal/noise"
	"github.com/RMahshie/wigwag/internal/response"
	"github.com/RMahshie/wigwag/internal/synth"
	"github.com/RMahshie/wigwag/pkg/models"
)

func testRecords() []models.SourceRecord {
	return []models.SourceRecord{
		{Name: "AMCVn", Frequency: 1.944e-3, FrequencyDerivative: 6.0e-18, Amplitude: 2.8e-22, EclipticLatitude: 0.653, EclipticLongitude: 2.97, Polarization: 0.3, Inclination: 0.75, InitialPhase: 0.2},
		{Name: "Unit", Frequency: 1e-3, Amplitude: 1e-22, EclipticLatitude: 0.1, EclipticLongitude: 0.5, Polarization: 0.1, Inclination: 0.4, InitialPhase: 0},
		{Name: "HMCnc", Frequency: 6.22e-3, FrequencyDerivative: 3.57e-16, Amplitude: 6.38e-23, EclipticLatitude: -0.08, EclipticLongitude: 2.10, Polarization: 0.5, Inclination: 0.66, InitialPhase: 1.0},
	}
}

func newService(t *testing.T, records []models.SourceRecord) SensitivityService {
	t.Helper()

	cat, err := catalog.New(records)
	require.NoError(t, err)
	g, err := grid.NewLog(1e-4, 1e-1, 200)
	require.NoError(t, err)
	fn, err := response.New(response.DefaultOptions())
	require.NoError(t, err)

	svc, err := NewSensitivityService(Deps{
		Catalog:   cat,
		Grid:      g,
		Response:  fn,
		Noise:     noise.NewCache(),
		SynthOpts: synth.DefaultOptions(),
	})
	require.NoError(t, err)
	return svc
}

func request(t *testing.T, budget string, years float64, names ...string) Request {
	t.Helper()
	cfg, err := noise.NewConfiguration(budget, years)
	require.NoError(t, err)
	return Request{Configuration: cfg, Selection: catalog.NewSelection(names...)}
}

func TestCompute_SingleSourceScenario(t *testing.T) {
	svc := newService(t, testRecords())

	res, err := svc.Compute(context.Background(), request(t, "redbook", 4.5, "Unit"))
	require.NoError(t, err)
	require.Len(t, res.Sources, 1)

	p := res.Sources[0]
	assert.Equal(t, "Unit", p.Name)
	assert.Equal(t, 1e-3, p.Frequency)
	assert.False(t, math.IsNaN(p.Strain) || math.IsInf(p.Strain, 0))
	assert.Greater(t, p.Strain, 0.0)
	assert.InEpsilon(t, math.Sqrt(p.Frequency*p.Strain), p.CharacteristicStrain, 1e-12)
	assert.Greater(t, p.SNR, 0.0)
	assert.Equal(t, "redbook", res.Configuration.NoiseBudget)
}

func TestCompute_SelectAllFollowsCatalogOrder(t *testing.T) {
	svc := newService(t, testRecords())

	res, err := svc.Compute(context.Background(), request(t, "scird", 7.5, "HMCnc", catalog.SelectAll))
	require.NoError(t, err)

	var names []string
	for _, p := range res.Sources {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"AMCVn", "Unit", "HMCnc"}, names)
	assert.Empty(t, res.Skipped)
}

func TestCompute_Idempotent(t *testing.T) {
	svc := newService(t, testRecords())
	req := request(t, "scird", 4.5, catalog.SelectAll)

	first, err := svc.Compute(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Compute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, second.Sources, 3)
}

func TestCompute_EmptySelectionKeepsNoise(t *testing.T) {
	svc := newService(t, testRecords())

	empty, err := svc.Compute(context.Background(), request(t, "redbook", 4.5))
	require.NoError(t, err)
	full, err := svc.Compute(context.Background(), request(t, "redbook", 4.5, catalog.SelectAll))
	require.NoError(t, err)

	assert.Empty(t, empty.Sources)
	assert.Equal(t, full.Noise, empty.Noise)
	assert.Equal(t, full.Curves, empty.Curves)
}

func TestCompute_UnknownNamesIgnored(t *testing.T) {
	svc := newService(t, testRecords())

	res, err := svc.Compute(context.Background(), request(t, "redbook", 4.5, "nope", "AMCVn"))
	require.NoError(t, err)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "AMCVn", res.Sources[0].Name)
}

func TestCompute_SkipsFailingSources(t *testing.T) {
	records := append(testRecords(), models.SourceRecord{
		Name: "TooBroad", Frequency: 50, Amplitude: 1e-22,
	})
	svc := newService(t, records)

	res, err := svc.Compute(context.Background(), request(t, "scird", 4.5, catalog.SelectAll))
	require.NoError(t, err)

	assert.Len(t, res.Sources, 3)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "TooBroad", res.Skipped[0].Name)
	assert.Contains(t, res.Skipped[0].Reason, synth.ErrInvalidSource.Error())
}

func TestCompute_InvalidConfiguration(t *testing.T) {
	svc := newService(t, testRecords())

	_, err := svc.Compute(context.Background(), Request{
		Configuration: noise.Configuration{Budget: noise.Redbook, DurationYears: 7.5},
		Selection:     catalog.All(),
	})
	assert.ErrorIs(t, err, noise.ErrInvalidConfiguration)
}

func TestCompute_Cancelled(t *testing.T) {
	svc := newService(t, testRecords())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Compute(ctx, request(t, "redbook", 4.5, catalog.SelectAll))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompute_BudgetsDifferSourcesDoNot(t *testing.T) {
	svc := newService(t, testRecords())

	red, err := svc.Compute(context.Background(), request(t, "redbook", 4.5, catalog.SelectAll))
	require.NoError(t, err)
	sci, err := svc.Compute(context.Background(), request(t, "scird", 4.5, catalog.SelectAll))
	require.NoError(t, err)

	assert.NotEqual(t, red.Noise.Instrumental, sci.Noise.Instrumental)
	for i := range red.Sources {
		// h0 depends on the response only
		assert.Equal(t, red.Sources[i].Strain, sci.Sources[i].Strain)
		assert.NotEqual(t, red.Sources[i].SNR, sci.Sources[i].SNR)
	}
}

func TestCompute_Curves(t *testing.T) {
	svc := newService(t, testRecords())

	res, err := svc.Compute(context.Background(), request(t, "scird", 4.5))
	require.NoError(t, err)

	c := res.Curves
	require.Len(t, c.Instrumental, len(c.Frequency))
	require.Len(t, c.Combined, len(c.Frequency))
	for i := range c.Frequency {
		require.Greater(t, c.Instrumental[i], 0.0)
		require.False(t, math.IsInf(c.Combined[i], 0) || math.IsNaN(c.Combined[i]))
		assert.GreaterOrEqual(t, c.Combined[i], math.Sqrt(20.0/3.0)*c.Instrumental[i]*(1-1e-12))
	}
}

func TestNewSensitivityService_RequiresInputs(t *testing.T) {
	_, err := NewSensitivityService(Deps{})
	assert.Error(t, err)
}
