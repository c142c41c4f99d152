// Package lisa holds the physical constants and mission conventions shared by the
// noise, response, orbit and waveform packages.
package lisa

import "math"

const (
	// SpeedOfLight in m/s.
	SpeedOfLight = 299792458.0

	// AstronomicalUnit in m.
	AstronomicalUnit = 1.495978707e11

	// SiderealYearJ2000Day is the sidereal year expressed in J2000 days.
	SiderealYearJ2000Day = 365.256363004

	// Day in seconds.
	Day = 86400.0

	// SiderealYear in seconds.
	SiderealYear = SiderealYearJ2000Day * Day

	// ArmLength is the nominal constellation arm length in m.
	ArmLength = 2.5e9

	// OrbitalSpeed is the mean heliocentric speed of the constellation, used to
	// bound the Doppler spread of a source.
	OrbitalSpeed = 2 * math.Pi * AstronomicalUnit / SiderealYear
)

// TransferFrequency returns f* = c / (2 pi L) for the given arm length.
func TransferFrequency(armLength float64) float64 {
	return SpeedOfLight / (2 * math.Pi * armLength)
}

// ObservationTime converts a mission duration in years to seconds.
func ObservationTime(years float64) float64 {
	return years * SiderealYear
}
