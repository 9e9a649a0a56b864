// math/latlong.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
)

const MetersToFeet = 3.28084
const NauticalMilesToFeet = 6076.12
const FeetToNauticalMiles = 1 / NauticalMilesToFeet

// NMDistance returns the great-circle distance in nautical miles between
// two points given in degrees latitude and longitude.
func NMDistance(lat1, lon1, lat2, lon2 float64) float64 {
	// https://www.movable-type.co.uk/scripts/latlong.html
	const R = 6371000 // metres
	phi1, lam1 := Radians(lat1), Radians(lon1)
	phi2, lam2 := Radians(lat2), Radians(lon2)
	dphi, dlam := phi2-phi1, lam2-lam1

	sqr := func(v float64) float64 { return v * v }
	x := sqr(gomath.Sin(dphi/2)) + gomath.Cos(phi1)*gomath.Cos(phi2)*sqr(gomath.Sin(dlam/2))
	c := 2 * gomath.Atan2(gomath.Sqrt(x), gomath.Sqrt(1-x))
	dm := R * c // in metres

	return dm * 0.000539957
}

// Heading returns the initial true course in degrees from the first point
// to the second, in the range [0,360).
func Heading(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := Radians(lat1), Radians(lat2)
	dlam := Radians(lon2 - lon1)

	y := gomath.Sin(dlam) * gomath.Cos(phi2)
	x := gomath.Cos(phi1)*gomath.Sin(phi2) - gomath.Sin(phi1)*gomath.Cos(phi2)*gomath.Cos(dlam)
	return NormalizeHeading(Degrees(gomath.Atan2(y, x)))
}
