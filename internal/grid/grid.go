package grid

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Default grid used by the sensitivity page.
const (
	DefaultMinFrequency = 1e-5
	DefaultMaxFrequency = 1.0
	DefaultPoints       = 9990
)

// ErrInvalidGrid is returned when grid bounds or size are unusable.
var ErrInvalidGrid = errors.New("invalid frequency grid")

// Frequency is an immutable, strictly increasing set of positive frequency samples.
type Frequency struct {
	values []float64
}

// NewLog builds a logarithmically spaced grid of n points spanning [min, max] Hz.
func NewLog(min, max float64, n int) (*Frequency, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidGrid, n)
	}
	if !(min > 0) || math.IsInf(max, 0) || !(max > min) {
		return nil, fmt.Errorf("%w: bounds [%g, %g]", ErrInvalidGrid, min, max)
	}

	values := floats.LogSpan(make([]float64, n), min, max)
	for i := 1; i < len(values); i++ {
		if !(values[i] > values[i-1]) {
			return nil, fmt.Errorf("%w: %d points do not resolve [%g, %g]", ErrInvalidGrid, n, min, max)
		}
	}
	return &Frequency{values: values}, nil
}

// Default returns the 9990 point grid between 1e-5 and 1 Hz.
func Default() *Frequency {
	g, err := NewLog(DefaultMinFrequency, DefaultMaxFrequency, DefaultPoints)
	if err != nil {
		panic(err)
	}
	return g
}

// Len returns the number of samples.
func (g *Frequency) Len() int { return len(g.values) }

// At returns the i-th frequency.
func (g *Frequency) At(i int) float64 { return g.values[i] }

// Min returns the lowest frequency.
func (g *Frequency) Min() float64 { return g.values[0] }

// Max returns the highest frequency.
func (g *Frequency) Max() float64 { return g.values[len(g.values)-1] }

// Values returns a copy of the samples.
func (g *Frequency) Values() []float64 {
	out := make([]float64, len(g.values))
	copy(out, g.values)
	return out
}

// Key identifies the grid for caching.
func (g *Frequency) Key() string {
	return fmt.Sprintf("%g:%g:%d", g.Min(), g.Max(), g.Len())
}
