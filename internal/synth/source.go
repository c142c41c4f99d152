package synth

import (
	"fmt"
	"math"

	"github.com/RMahshie/wigwag/internal/orbits"
	"github.com/RMahshie/wigwag/pkg/models"
)

// geometry is the time-independent projection data of one source.
type geometry struct {
	k      orbits.Vec3 // propagation direction
	u, v   orbits.Vec3 // polarisation basis
	ePlus  complex128  // coefficient of u⊗u - v⊗v in H
	eCross complex128  // coefficient of u⊗v + v⊗u in H
}

func validate(src models.SourceRecord) error {
	vals := []float64{
		src.Frequency, src.FrequencyDerivative, src.Amplitude, src.EclipticLatitude,
		src.EclipticLongitude, src.Polarization, src.Inclination, src.InitialPhase,
	}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s: non-finite parameter", ErrInvalidSource, src.Name)
		}
	}
	if !(src.Frequency > 0) {
		return fmt.Errorf("%w: %s: frequency %g", ErrInvalidSource, src.Name, src.Frequency)
	}
	if src.Amplitude < 0 {
		return fmt.Errorf("%w: %s: amplitude %g", ErrInvalidSource, src.Name, src.Amplitude)
	}
	if math.Abs(src.EclipticLatitude) > math.Pi/2 {
		return fmt.Errorf("%w: %s: ecliptic latitude %g out of range", ErrInvalidSource, src.Name, src.EclipticLatitude)
	}
	return nil
}

func newGeometry(src models.SourceRecord) geometry {
	sinB, cosB := math.Sincos(src.EclipticLatitude)
	sinL, cosL := math.Sincos(src.EclipticLongitude)

	n := orbits.Vec3{cosB * cosL, cosB * sinL, sinB}
	u := orbits.Vec3{sinB * cosL, sinB * sinL, -cosB}
	v := orbits.Vec3{sinL, -cosL, 0}

	cosI := math.Cos(src.Inclination)
	plus := complex(src.Amplitude*(1+cosI*cosI), 0)
	cross := complex(0, -2*src.Amplitude*cosI)

	// rotate by the polarisation angle
	s2, c2 := math.Sincos(2 * src.Polarization)
	return geometry{
		k:      n.Scale(-1),
		u:      u,
		v:      v,
		ePlus:  complex(c2, 0)*plus - complex(s2, 0)*cross,
		eCross: complex(s2, 0)*plus + complex(c2, 0)*cross,
	}
}

// project returns a·H·a for a unit link vector a.
func (g geometry) project(a orbits.Vec3) complex128 {
	au, av := a.Dot(g.u), a.Dot(g.v)
	return g.ePlus*complex(au*au-av*av, 0) + g.eCross*complex(2*au*av, 0)
}
