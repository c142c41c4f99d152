package noise

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/RMahshie/wigwag/internal/lisa"
)

// ErrInvalidConfiguration is returned for an unknown noise budget or an
// inadmissible mission duration.
var ErrInvalidConfiguration = errors.New("invalid noise configuration")

// Budget names a noise-budget preset.
type Budget string

const (
	Redbook Budget = "redbook"
	SciRD   Budget = "scird"
)

// ConfusionFit holds the coefficients of the galactic confusion fit
// S = A f^(-7/3) exp(-(f/f1)^alpha) 0.5 (1 + tanh((fknee - f)/f2)),
// with log10 f1 = A1 log10 T + B1 and log10 fknee = AK log10 T + BK (T in years).
type ConfusionFit struct {
	Amplitude float64
	Alpha     float64
	F2        float64
	A1, B1    float64
	AK, BK    float64
}

// parameters are the analytic constants of one noise budget.
type parameters struct {
	armLength        float64 // m
	acceleration     float64 // test-mass acceleration noise, m s^-2 Hz^-1/2
	opticalMetrology float64 // OMS displacement noise, m Hz^-1/2
	durations        []float64
	confusion        ConfusionFit
}

// karnesis2021 is the SNR>7 fit of Karnesis et al. (2021).
var karnesis2021 = ConfusionFit{
	Amplitude: 1.14e-44,
	Alpha:     1.8,
	F2:        0.31e-3,
	A1:        -0.25,
	B1:        -2.70,
	AK:        -0.27,
	BK:        -2.47,
}

var budgets = map[Budget]parameters{
	Redbook: {
		armLength:        lisa.ArmLength,
		acceleration:     2.4e-15,
		opticalMetrology: 7.9e-12,
		durations:        []float64{4.5},
		confusion:        karnesis2021,
	},
	SciRD: {
		armLength:        lisa.ArmLength,
		acceleration:     3e-15,
		opticalMetrology: 15e-12,
		durations:        []float64{4.5, 7.5},
		confusion:        karnesis2021,
	},
}

// budgetOrder is the presentation order of the selector.
var budgetOrder = []Budget{Redbook, SciRD}

// Budgets returns the known budgets in selector order.
func Budgets() []Budget {
	return append([]Budget(nil), budgetOrder...)
}

// ParseBudget resolves a budget name, ignoring case and surrounding spaces.
func ParseBudget(name string) (Budget, error) {
	b := Budget(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := budgets[b]; !ok {
		return "", fmt.Errorf("%w: unknown noise budget %q", ErrInvalidConfiguration, name)
	}
	return b, nil
}

// Durations returns the admissible mission durations in years.
func (b Budget) Durations() []float64 {
	p, ok := budgets[b]
	if !ok {
		return nil
	}
	return append([]float64(nil), p.durations...)
}

// Configuration is a noise budget together with a mission duration.
type Configuration struct {
	Budget        Budget
	DurationYears float64
}

// NewConfiguration parses and validates a (budget, duration) selection.
func NewConfiguration(budget string, years float64) (Configuration, error) {
	b, err := ParseBudget(budget)
	if err != nil {
		return Configuration{}, err
	}
	cfg := Configuration{Budget: b, DurationYears: years}
	if err := cfg.Validate(); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

// Validate checks that the budget is known and the duration admissible for it.
func (c Configuration) Validate() error {
	p, ok := budgets[c.Budget]
	if !ok {
		return fmt.Errorf("%w: unknown noise budget %q", ErrInvalidConfiguration, c.Budget)
	}
	for _, d := range p.durations {
		if math.Abs(d-c.DurationYears) < 1e-9 {
			return nil
		}
	}
	return fmt.Errorf("%w: duration %g years not available for %s (allowed %v)",
		ErrInvalidConfiguration, c.DurationYears, c.Budget, p.durations)
}

// ObservationTime returns the mission duration in seconds.
func (c Configuration) ObservationTime() float64 {
	return lisa.ObservationTime(c.DurationYears)
}

func (c Configuration) String() string {
	return fmt.Sprintf("%s/%g", c.Budget, c.DurationYears)
}
