// Package orbits models the LISA constellation with analytic equal-arm
// Keplerian orbits and samples them into an ephemeris table.
package orbits

import (
	"errors"
	"fmt"
	"math"

	"github.com/RMahshie/wigwag/internal/lisa"
)

// Sampling of the ephemeris table.
const (
	SampleInterval = 8640.0
	// SamplePadding is added to the observation time before sizing the table.
	// TODO: confirm with the mission team whether this guard band is intended.
	SamplePadding = 10000.0
)

// ErrInvalidEphemeris is returned when a table cannot be sampled.
var ErrInvalidEphemeris = errors.New("invalid ephemeris")

// Vec3 is a cartesian vector in the solar-system barycentric ecliptic frame.
type Vec3 [3]float64

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]} }

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]} }

// Scale returns s v.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{s * v[0], s * v[1], s * v[2]} }

// Dot returns the scalar product.
func (v Vec3) Dot(w Vec3) float64 { return v[0]*w[0] + v[1]*w[1] + v[2]*w[2] }

// Norm returns the euclidean length.
func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Unit returns v normalised; the zero vector is returned unchanged.
func (v Vec3) Unit() Vec3 {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

// Orbits gives spacecraft positions in m at time t in s.
type Orbits interface {
	Position(spacecraft int, t float64) Vec3
	ArmLength() float64
}

// EqualArmlength are the first-order-in-eccentricity cartwheel orbits that keep
// the three arms at a constant nominal length.
type EqualArmlength struct {
	L      float64 // arm length, m
	Kappa  float64 // initial orbital phase of the guiding centre, rad
	Lambda float64 // initial orientation of the triangle, rad
}

// NewEqualArmlength returns orbits for the nominal arm length.
func NewEqualArmlength() EqualArmlength {
	return EqualArmlength{L: lisa.ArmLength}
}

// ArmLength returns the nominal arm length.
func (o EqualArmlength) ArmLength() float64 { return o.L }

// Position returns the position of spacecraft 0, 1 or 2 at time t.
func (o EqualArmlength) Position(spacecraft int, t float64) Vec3 {
	r := lisa.AstronomicalUnit
	e := o.L / (2 * math.Sqrt(3) * r)
	alpha := 2*math.Pi*t/lisa.SiderealYear + o.Kappa
	beta := 2*math.Pi*float64(spacecraft)/3 + o.Lambda

	return Vec3{
		r*math.Cos(alpha) + 0.5*e*r*(math.Cos(2*alpha-beta)-3*math.Cos(beta)),
		r*math.Sin(alpha) + 0.5*e*r*(math.Sin(2*alpha-beta)-3*math.Sin(beta)),
		-math.Sqrt(3) * e * r * math.Cos(alpha-beta),
	}
}

// Ephemeris is a read-only table of spacecraft positions sampled every Interval
// seconds, interpolated linearly in between.
type Ephemeris struct {
	interval  float64
	armLength float64
	positions [3][]Vec3
}

// Sample tabulates o at size points spaced dt seconds apart starting at t = 0.
func Sample(o Orbits, dt float64, size int) (*Ephemeris, error) {
	if !(dt > 0) || size < 2 {
		return nil, fmt.Errorf("%w: dt=%g size=%d", ErrInvalidEphemeris, dt, size)
	}
	e := &Ephemeris{interval: dt, armLength: o.ArmLength()}
	for sc := 0; sc < 3; sc++ {
		e.positions[sc] = make([]Vec3, size)
		for i := 0; i < size; i++ {
			e.positions[sc][i] = o.Position(sc, float64(i)*dt)
		}
	}
	return e, nil
}

// ForObservation samples o for an observation of tobs seconds with the
// standard 8640 s interval and (tobs + 10000) // 8640 samples.
func ForObservation(o Orbits, tobs float64) (*Ephemeris, error) {
	size := int(math.Floor((tobs + SamplePadding) / SampleInterval))
	return Sample(o, SampleInterval, size)
}

// Len returns the number of samples.
func (e *Ephemeris) Len() int { return len(e.positions[0]) }

// Interval returns the sampling interval in s.
func (e *Ephemeris) Interval() float64 { return e.interval }

// Span returns the time of the last sample.
func (e *Ephemeris) Span() float64 { return float64(e.Len()-1) * e.interval }

// ArmLength returns the nominal arm length of the sampled orbits.
func (e *Ephemeris) ArmLength() float64 { return e.armLength }

// Position interpolates the table. Times outside the table extend the first or
// last segment linearly.
func (e *Ephemeris) Position(spacecraft int, t float64) Vec3 {
	p := e.positions[spacecraft]
	i := int(math.Floor(t / e.interval))
	if i < 0 {
		i = 0
	}
	if i > len(p)-2 {
		i = len(p) - 2
	}
	w := t/e.interval - float64(i)
	return p[i].Add(p[i+1].Sub(p[i]).Scale(w))
}
