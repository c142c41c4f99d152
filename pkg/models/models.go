package models

import (
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// SourceRecord represents one galactic binary from the verification catalog
type SourceRecord struct {
	Name                string  `json:"name" doc:"Unique source name"`
	Frequency           float64 `json:"frequency" doc:"Gravitational-wave frequency in Hz"`
	FrequencyDerivative float64 `json:"frequency_derivative" doc:"Frequency derivative in Hz/s"`
	Amplitude           float64 `json:"amplitude" doc:"Dimensionless strain amplitude"`
	EclipticLatitude    float64 `json:"ecliptic_latitude" doc:"Ecliptic latitude in rad"`
	EclipticLongitude   float64 `json:"ecliptic_longitude" doc:"Ecliptic longitude in rad"`
	Polarization        float64 `json:"polarization" doc:"Polarization angle in rad"`
	Inclination         float64 `json:"inclination" doc:"Inclination in rad"`
	InitialPhase        float64 `json:"initial_phase" doc:"Initial phase in rad"`
}

// ComputedSourcePoint is the sensitivity-plot marker for one processed source
type ComputedSourcePoint struct {
	Name                 string  `json:"name" doc:"Source name"`
	Frequency            float64 `json:"frequency" doc:"Nominal source frequency in Hz"`
	Strain               float64 `json:"sh" doc:"Squared characteristic amplitude h0^2"`
	CharacteristicStrain float64 `json:"characteristic_strain" doc:"sqrt(f * sh)"`
	SNR                  float64 `json:"snr" doc:"Signal-to-noise ratio against instrumental plus confusion noise"`
}

// SkippedSource records a source that could not be synthesized
type SkippedSource struct {
	Name   string `json:"name" doc:"Source name"`
	Reason string `json:"reason" doc:"Why the source was skipped"`
}

// NoiseCurvePair holds noise-only PSDs aligned to the frequency grid
type NoiseCurvePair struct {
	Frequency    []float64 `json:"frequency" doc:"Frequency grid in Hz"`
	Instrumental []float64 `json:"instrumental" doc:"Instrumental-only PSD"`
	Confusion    []float64 `json:"confusion" doc:"Galactic confusion-only PSD"`
}

// Clone returns a deep copy so callers never share backing arrays
func (p NoiseCurvePair) Clone() NoiseCurvePair {
	return NoiseCurvePair{
		Frequency:    append([]float64(nil), p.Frequency...),
		Instrumental: append([]float64(nil), p.Instrumental...),
		Confusion:    append([]float64(nil), p.Confusion...),
	}
}

// SensitivityCurves holds the characteristic-strain noise overlays
type SensitivityCurves struct {
	Frequency    []float64 `json:"frequency" doc:"Frequency grid in Hz"`
	Instrumental []float64 `json:"instrumental" doc:"sqrt(f) * sqrt(instrumental / response)"`
	Combined     []float64 `json:"combined" doc:"sqrt(f) * sqrt(20/3) * sqrt((instrumental + confusion) / response)"`
}

// Configuration identifies the noise budget and mission duration of a computation
type Configuration struct {
	NoiseBudget   string  `json:"noise_budget" doc:"Noise budget name"`
	DurationYears float64 `json:"duration" doc:"Mission duration in years"`
}

// SensitivityResult is the full output of one sensitivity computation
type SensitivityResult struct {
	Configuration Configuration         `json:"configuration"`
	Sources       []ComputedSourcePoint `json:"sources" doc:"Per-source points in catalog order"`
	Skipped       []SkippedSource       `json:"skipped,omitempty" doc:"Sources dropped because synthesis failed"`
	Noise         NoiseCurvePair        `json:"noise" doc:"Noise-only PSD curves"`
	Curves        SensitivityCurves     `json:"curves" doc:"Sensitivity overlays"`
}

// WaterfallContour is the contour-plot data for the SNR waterfall panel
type WaterfallContour struct {
	Configuration Configuration `json:"configuration"`
	TotalMass     []float64     `json:"total_mass" doc:"Total mass axis (x, log scale)"`
	Redshift      []float64     `json:"redshift" doc:"Redshift axis (y)"`
	Log10SNR      [][]float64   `json:"log10_snr" doc:"log10 of the SNR clipped to [1, 4000], indexed [redshift][mass]"`
	TickValues    []float64     `json:"tick_values" doc:"Colorbar tick labels"`
	TickPositions []float64     `json:"tick_positions" doc:"log10 positions of the colorbar ticks"`
}
