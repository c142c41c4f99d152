// Package synth computes frequency-domain TDI-X waveforms of quasi-monochromatic
// galactic binaries and integrates them against a response or noise curve.
//
// The waveform follows the fast slow-part approach: the single-link responses
// are sampled after removing the carrier at bin q = round(f0 T), transformed
// with an N-point FFT and recombined into the Michelson X observable in the
// frequency domain. The spectrum is supported on N bins around q with spacing
// 1/T; everything outside is zero. Bins at or below zero frequency are dropped,
// and an observation too short to place the carrier above zero frequency
// (q < 1) yields an empty spectrum.
package synth

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/RMahshie/wigwag/internal/lisa"
	"github.com/RMahshie/wigwag/internal/orbits"
	"github.com/RMahshie/wigwag/pkg/models"
)

// ErrInvalidSource is returned for source parameters that cannot be synthesized.
var ErrInvalidSource = errors.New("invalid source")

const (
	// DefaultSamples is the minimum FFT length.
	DefaultSamples = 1024
	// DefaultMaxSamples bounds the FFT length of very broad sources.
	DefaultMaxSamples = 1 << 20
	// bandwidthMargin is added to the estimated support, in bins.
	bandwidthMargin = 32
)

// Options tunes the synthesizer.
type Options struct {
	Samples    int
	MaxSamples int
}

// DefaultOptions returns the standard 1024-sample setup.
func DefaultOptions() Options {
	return Options{Samples: DefaultSamples, MaxSamples: DefaultMaxSamples}
}

// Spectrum is a narrow-band frequency series. Bins[i] is the strain-referred
// TDI-X amplitude at (KMin+i)·DF.
type Spectrum struct {
	KMin int
	DF   float64
	Bins []complex128
}

// Len returns the number of populated bins.
func (s Spectrum) Len() int { return len(s.Bins) }

// Frequency returns the frequency of bin i.
func (s Spectrum) Frequency(i int) float64 { return float64(s.KMin+i) * s.DF }

// Frequencies returns the frequency of every bin.
func (s Spectrum) Frequencies() []float64 {
	out := make([]float64, len(s.Bins))
	for i := range out {
		out[i] = s.Frequency(i)
	}
	return out
}

// Synthesizer produces spectra for one orbit ephemeris. It holds no mutable
// state and may be shared between goroutines.
type Synthesizer struct {
	eph  *orbits.Ephemeris
	opts Options
}

// New returns a synthesizer over eph.
func New(eph *orbits.Ephemeris, opts Options) (*Synthesizer, error) {
	if eph == nil {
		return nil, errors.New("synth: nil ephemeris")
	}
	if opts.Samples <= 0 {
		opts.Samples = DefaultSamples
	}
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = DefaultMaxSamples
	}
	if opts.MaxSamples < opts.Samples {
		return nil, fmt.Errorf("synth: max samples %d below samples %d", opts.MaxSamples, opts.Samples)
	}
	return &Synthesizer{eph: eph, opts: opts}, nil
}

// Samples returns the FFT length used for src over an observation of tobs s.
func (s *Synthesizer) Samples(src models.SourceRecord, tobs float64) int {
	doppler := 2 * src.Frequency * lisa.OrbitalSpeed / lisa.SpeedOfLight * tobs
	chirp := math.Abs(src.FrequencyDerivative) * tobs * tobs
	want := 2*(doppler+chirp) + bandwidthMargin
	if want < float64(s.opts.Samples) {
		want = float64(s.opts.Samples)
	}
	if want > float64(s.opts.MaxSamples) {
		return s.opts.MaxSamples + 1
	}
	return nextPow2(int(math.Ceil(want)))
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// links are the (emitter, receiver) pairs entering X, spacecraft 1 being index 0.
var links = [4][2]int{{0, 1}, {1, 0}, {0, 2}, {2, 0}}

// Synthesize returns the TDI-X spectrum of src observed for tobs seconds.
// A non-positive or non-finite tobs yields an empty spectrum.
func (s *Synthesizer) Synthesize(src models.SourceRecord, tobs float64) (Spectrum, error) {
	if err := validate(src); err != nil {
		return Spectrum{}, err
	}
	if !(tobs > 0) || math.IsInf(tobs, 0) {
		return Spectrum{}, nil
	}

	n := s.Samples(src, tobs)
	if n > s.opts.MaxSamples {
		return Spectrum{}, fmt.Errorf("%w: %s needs %d samples, limit %d", ErrInvalidSource, src.Name, n, s.opts.MaxSamples)
	}

	df := 1 / tobs
	q := int(math.Round(src.Frequency * tobs))
	if q < 1 {
		return Spectrum{DF: df}, nil
	}
	kmin := q - n/2
	geo := newGeometry(src)
	armLength := s.eph.ArmLength()

	// slow parts of the four links
	slow := make([][]complex128, len(links))
	for l := range slow {
		slow[l] = make([]complex128, n)
	}
	for j := 0; j < n; j++ {
		t := float64(j) * tobs / float64(n)
		var pos [3]orbits.Vec3
		for sc := range pos {
			pos[sc] = s.eph.Position(sc, t)
		}
		carrier := 2 * math.Pi * float64(q) * t / tobs

		for l, link := range links {
			emitter, receiver := link[0], link[1]
			r := pos[receiver].Sub(pos[emitter]).Unit()
			kr := geo.k.Dot(r)

			xi := t - geo.k.Dot(pos[emitter])/lisa.SpeedOfLight
			f := src.Frequency + src.FrequencyDerivative*xi
			x := math.Pi * f * armLength / lisa.SpeedOfLight // half the link phase

			phase := 2*math.Pi*src.Frequency*xi + math.Pi*src.FrequencyDerivative*xi*xi + src.InitialPhase
			transfer := complex(0, -x) * complex(sinc(x*(1-kr)), 0) * cmplx.Exp(complex(0, -x*(1+kr)))
			slow[l][j] = transfer * geo.project(r) * cmplx.Exp(complex(0, phase-carrier))
		}
	}

	fft := fourier.NewCmplxFFT(n)
	coeffs := make([][]complex128, len(links))
	for l := range slow {
		coeffs[l] = fft.Coefficients(nil, slow[l])
	}

	// one-sided spectrum of the real signal
	scale := complex(tobs/float64(2*n), 0)

	first := kmin
	if first < 1 {
		first = 1
	}
	bins := make([]complex128, 0, n)
	for i := first - kmin; i < n; i++ {
		k := kmin + i
		idx := (i - n/2 + n) % n
		fk := float64(k) * df
		delay := cmplx.Exp(complex(0, -2*math.Pi*fk*armLength/lisa.SpeedOfLight))

		y12, y21 := coeffs[0][idx]*scale, coeffs[1][idx]*scale
		y13, y31 := coeffs[2][idx]*scale, coeffs[3][idx]*scale
		m12 := y21 + delay*y12
		m13 := y31 + delay*y13

		xk := 2 * math.Pi * fk * armLength / lisa.SpeedOfLight
		bins = append(bins, (m13-m12)/complex(0, 2*xk))
	}
	if len(bins) == 0 {
		return Spectrum{DF: df}, nil
	}
	return Spectrum{KMin: first, DF: df, Bins: bins}, nil
}

// CharacteristicAmplitude returns h0 = √2 · sqrt(4 df Σ |X|² / R(f)) over the
// populated bins. An empty spectrum gives 0.
func CharacteristicAmplitude(s Spectrum, response func(f float64) float64) float64 {
	return math.Sqrt2 * math.Sqrt(weightedPower(s, response))
}

// SNR returns √2 · sqrt(4 df Σ |X|² / S(f)) against the strain-referred
// noise PSD S.
func SNR(s Spectrum, psd func(f float64) float64) float64 {
	return math.Sqrt2 * math.Sqrt(weightedPower(s, psd))
}

func weightedPower(s Spectrum, weight func(f float64) float64) float64 {
	var sum float64
	for i, b := range s.Bins {
		w := weight(s.Frequency(i))
		if !(w > 0) {
			continue
		}
		a := cmplx.Abs(b)
		sum += a * a / w
	}
	return 4 * s.DF * sum
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-8 {
		return 1
	}
	return math.Sin(x) / x
}
