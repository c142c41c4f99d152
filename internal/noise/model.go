// Package noise implements the analytic LISA noise budgets: the instrumental
// TDI-X noise and the unresolved galactic-binary confusion background.
//
// PSDs are reported strain-referred for a single X channel, that is the TDI-X
// fractional-frequency PSD divided by the low-frequency TDI transfer
// 16 sin²(x) x², with x = 2πfL/c. Dividing by the normalised detector response
// then yields the channel sensitivity sh(f).
package noise

import (
	"fmt"
	"math"

	"github.com/RMahshie/wigwag/internal/grid"
	"github.com/RMahshie/wigwag/internal/lisa"
	"github.com/RMahshie/wigwag/pkg/models"
)

// skyAverageFactor converts a sky-averaged strain PSD into the single channel
// convention used here. Its inverse is the 20/3 factor of the combined curve.
const skyAverageFactor = 3.0 / 20.0

// Model evaluates the PSDs of one budget. It holds no mutable state.
type Model struct {
	budget Budget
	params parameters
}

// New returns the model for budget b.
func New(b Budget) (*Model, error) {
	p, ok := budgets[b]
	if !ok {
		return nil, fmt.Errorf("%w: unknown noise budget %q", ErrInvalidConfiguration, b)
	}
	return &Model{budget: b, params: p}, nil
}

// Budget returns the budget evaluated by the model.
func (m *Model) Budget() Budget { return m.budget }

// ArmLength returns the budget arm length in m.
func (m *Model) ArmLength() float64 { return m.params.armLength }

// accelerationDisplacement is the test-mass noise expressed as displacement, m²/Hz.
func (m *Model) accelerationDisplacement(f float64) float64 {
	a := m.params.acceleration * m.params.acceleration
	a *= 1 + math.Pow(0.4e-3/f, 2)
	a *= 1 + math.Pow(f/8e-3, 4)
	return a / math.Pow(2*math.Pi*f, 4)
}

// opticalDisplacement is the optical metrology noise, m²/Hz.
func (m *Model) opticalDisplacement(f float64) float64 {
	o := m.params.opticalMetrology * m.params.opticalMetrology
	return o * (1 + math.Pow(2e-3/f, 4))
}

// TDIX returns the TDI-X PSD in fractional frequency, 1.5 or second generation.
func (m *Model) TDIX(f float64, tdi2 bool) float64 {
	if !(f > 0) {
		return math.NaN()
	}
	x := 2 * math.Pi * f * m.params.armLength / lisa.SpeedOfLight
	toNu := math.Pow(2*math.Pi*f/lisa.SpeedOfLight, 2)

	sOMS := m.opticalDisplacement(f) * toNu
	sAcc := m.accelerationDisplacement(f) * toNu
	s := 16 * math.Pow(math.Sin(x), 2) * (sOMS + (3+math.Cos(2*x))*sAcc)
	if tdi2 {
		s *= 4 * math.Pow(math.Sin(2*x), 2)
	}
	return s
}

// Instrumental returns the strain-referred instrumental PSD at f (1/Hz).
// Both TDI generations share it since the TDI factor cancels.
func (m *Model) Instrumental(f float64) float64 {
	if !(f > 0) {
		return math.NaN()
	}
	x := 2 * math.Pi * f * m.params.armLength / lisa.SpeedOfLight
	l2 := m.params.armLength * m.params.armLength
	return (m.opticalDisplacement(f) + (3+math.Cos(2*x))*m.accelerationDisplacement(f)) / l2
}

// Confusion returns the strain-referred galactic confusion PSD at f for a
// mission of the given length in years.
func (m *Model) Confusion(f, years float64) float64 {
	return skyAverageFactor * m.params.confusion.SkyAveraged(f, years)
}

// SkyAveraged evaluates the fit as a sky-averaged strain PSD.
func (c ConfusionFit) SkyAveraged(f, years float64) float64 {
	if !(f > 0) {
		return 0
	}
	if years < 0 {
		years = 0
	}
	logT := math.Log10(years)
	f1 := math.Pow(10, c.A1*logT+c.B1)
	fKnee := math.Pow(10, c.AK*logT+c.BK)

	s := c.Amplitude * math.Pow(f, -7.0/3.0)
	s *= math.Exp(-math.Pow(f/f1, c.Alpha))
	s *= 0.5 * (1 + math.Tanh((fKnee-f)/c.F2))
	return s
}

// Curves evaluates both PSDs over g.
func (m *Model) Curves(g *grid.Frequency, years float64) models.NoiseCurvePair {
	freq := g.Values()
	out := models.NoiseCurvePair{
		Frequency:    freq,
		Instrumental: make([]float64, len(freq)),
		Confusion:    make([]float64, len(freq)),
	}
	for i, f := range freq {
		out.Instrumental[i] = m.Instrumental(f)
		out.Confusion[i] = m.Confusion(f, years)
	}
	return out
}
