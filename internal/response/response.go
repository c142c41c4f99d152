// Package response approximates the LISA detector response: the sky and
// polarisation averaged Michelson transfer function normalised to one at low
// frequency. It is computed analytically at a small set of anchor
// frequencies and interpolated with a monotone cubic in log-log space.
//
// Out-of-range policy: frequencies below the first anchor return the first
// anchor value and frequencies above the last anchor return the last anchor
// value. Results always lie in (MinResponse, 1].
package response

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"github.com/RMahshie/wigwag/internal/lisa"
)

// MinResponse is the floor applied to every response value.
const MinResponse = 1e-12

// ErrInvalidOptions is returned for unusable anchor settings.
var ErrInvalidOptions = errors.New("invalid response options")

// Options controls how the anchor table is built.
type Options struct {
	MinFrequency float64
	MaxFrequency float64
	Anchors      int
	ArmLength    float64
	// Sky integration resolution in cos(theta) and phi.
	MuSamples  int
	PhiSamples int
}

// DefaultOptions covers the default sensitivity grid.
func DefaultOptions() Options {
	return Options{
		MinFrequency: 1e-5,
		MaxFrequency: 1.0,
		Anchors:      64,
		ArmLength:    lisa.ArmLength,
		MuSamples:    32,
		PhiSamples:   64,
	}
}

// Function is the interpolated response. It is immutable after New and safe
// for concurrent use.
type Function struct {
	anchorF []float64
	anchorR []float64
	spline  interp.FritschButland
	logMin  float64
	logMax  float64
}

// New computes the anchor table and fits the spline.
func New(opts Options) (*Function, error) {
	if opts.Anchors < 3 || !(opts.MinFrequency > 0) || !(opts.MaxFrequency > opts.MinFrequency) ||
		!(opts.ArmLength > 0) || opts.MuSamples < 1 || opts.PhiSamples < 1 {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidOptions, opts)
	}

	fstar := lisa.TransferFrequency(opts.ArmLength)
	norm := SkyAveraged(0, opts.MuSamples, opts.PhiSamples)

	freqs := floats.LogSpan(make([]float64, opts.Anchors), opts.MinFrequency, opts.MaxFrequency)
	values := make([]float64, opts.Anchors)
	logF := make([]float64, opts.Anchors)
	logR := make([]float64, opts.Anchors)
	for i, f := range freqs {
		values[i] = clamp(SkyAveraged(f/fstar, opts.MuSamples, opts.PhiSamples) / norm)
		logF[i] = math.Log(f)
		logR[i] = math.Log(values[i])
	}

	fn := &Function{
		anchorF: freqs,
		anchorR: values,
		logMin:  logF[0],
		logMax:  logF[len(logF)-1],
	}
	if err := fn.spline.Fit(logF, logR); err != nil {
		return nil, fmt.Errorf("fit response spline: %w", err)
	}
	return fn, nil
}

// At returns the normalised response at f.
func (r *Function) At(f float64) float64 {
	if !(f > 0) {
		return r.anchorR[0]
	}
	x := math.Log(f)
	switch {
	case x <= r.logMin:
		return r.anchorR[0]
	case x >= r.logMax:
		return r.anchorR[len(r.anchorR)-1]
	}
	return clamp(math.Exp(r.spline.Predict(x)))
}

// Sensitivity converts a strain-referred PSD into sh = psd / R(f).
func (r *Function) Sensitivity(f, psd float64) float64 {
	return psd / r.At(f)
}

// Anchors returns copies of the anchor frequencies and values.
func (r *Function) Anchors() (freqs, values []float64) {
	return append([]float64(nil), r.anchorF...), append([]float64(nil), r.anchorR...)
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < MinResponse {
		return MinResponse
	}
	if v > 1 {
		return 1
	}
	return v
}

// SkyAveraged returns the unnormalised average of |F+|² + |F×|² for a
// 60-degree Michelson at reduced frequency u = f/f*. The sum of both
// polarisations does not depend on the polarisation angle.
func SkyAveraged(u float64, muSamples, phiSamples int) float64 {
	armU := [3]float64{1, 0, 0}
	armV := [3]float64{math.Cos(math.Pi / 3), math.Sin(math.Pi / 3), 0}

	var sum float64
	for i := 0; i < muSamples; i++ {
		mu := -1 + (float64(i)+0.5)*2/float64(muSamples)
		sinT := math.Sqrt(1 - mu*mu)
		for j := 0; j < phiSamples; j++ {
			phi := (float64(j) + 0.5) * 2 * math.Pi / float64(phiSamples)
			sinP, cosP := math.Sincos(phi)

			// source direction n, propagation k = -n, polarisation basis p, q
			k := [3]float64{-sinT * cosP, -sinT * sinP, -mu}
			p := [3]float64{mu * cosP, mu * sinP, -sinT}
			q := [3]float64{-sinP, cosP, 0}

			plusU, crossU := projections(armU, p, q)
			plusV, crossV := projections(armV, p, q)
			tu := armTransfer(u, dot(armU, k))
			tv := armTransfer(u, dot(armV, k))

			fPlus := 0.5 * (complex(plusU, 0)*tu - complex(plusV, 0)*tv)
			fCross := 0.5 * (complex(crossU, 0)*tu - complex(crossV, 0)*tv)
			sum += sq(cmplx.Abs(fPlus)) + sq(cmplx.Abs(fCross))
		}
	}
	return sum / float64(muSamples*phiSamples)
}

// armTransfer is the round-trip transfer of one arm with direction cosine
// c = a·k, equal to one at zero frequency.
func armTransfer(u, c float64) complex128 {
	h := u / 2
	out := complex(sinc(h*(1-c)), 0) * cmplx.Exp(complex(0, -h*(3+c)))
	back := complex(sinc(h*(1+c)), 0) * cmplx.Exp(complex(0, -h*(1+c)))
	return 0.5 * (out + back)
}

func projections(a, p, q [3]float64) (plus, cross float64) {
	ap, aq := dot(a, p), dot(a, q)
	return ap*ap - aq*aq, 2 * ap * aq
}

func dot(a, b [3]float64) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func sq(x float64) float64 { return x * x }

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-8 {
		return 1
	}
	return math.Sin(x) / x
}
