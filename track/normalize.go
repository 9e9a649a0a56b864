// track/normalize.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package track

import (
	"time"

	"github.com/fdr-tools/fdrconv/math"
)

// CanonicalPoint is one track sample after normalization: timestamp
// shifted to Zulu, attitude corrected by the tail-specific trim, heading
// wrapped to [0,360).
type CanonicalPoint struct {
	Time      time.Time // Zulu
	Latitude  float64
	Longitude float64
	AltMSL    float64 // feet
	Heading   float64 // [0,360)
	Pitch     float64
	Roll      float64
}

// Calibration is the per-flight correction applied during normalization:
// the timezone offset that takes the source file's native timestamps to
// Zulu, and the additive attitude trim for the tail being flown.
type Calibration struct {
	TimeOffset  time.Duration
	HeadingTrim float64
	PitchTrim   float64
	RollTrim    float64
}

// Normalize converts raw samples into canonical track points. The result
// has exactly one point per sample, in the same order; no smoothing or
// outlier rejection is performed. Pitch and roll are passed through with
// only the trim added; any clamping is left to downstream consumers.
func Normalize(samples []RawSample, cal Calibration) []CanonicalPoint {
	points := make([]CanonicalPoint, len(samples))
	for i, s := range samples {
		points[i] = CanonicalPoint{
			Time:      s.Timestamp.Add(cal.TimeOffset).UTC(),
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			AltMSL:    s.Altitude,
			Heading:   math.NormalizeHeading(s.Course + cal.HeadingTrim),
			Pitch:     s.Pitch + cal.PitchTrim,
			Roll:      s.Bank + cal.RollTrim,
		}
	}
	return points
}

// Placeholders returns the canonical placeholder name to value mapping
// for this point; TIME is Unix epoch seconds.
func (p *CanonicalPoint) Placeholders() map[string]any {
	return map[string]any{
		"TIME":    float64(p.Time.UnixMilli()) / 1000,
		"LAT":     p.Latitude,
		"LONG":    p.Longitude,
		"ALTMSL":  p.AltMSL,
		"HEADING": p.Heading,
		"PITCH":   p.Pitch,
		"ROLL":    p.Roll,
	}
}

// Placeholders returns the raw placeholder name to value mapping for this
// sample; Timestamp is Unix epoch seconds in the source file's native
// time convention.
func (s *RawSample) Placeholders() map[string]any {
	return map[string]any{
		"Timestamp": float64(s.Timestamp.UnixMilli()) / 1000,
		"Latitude":  s.Latitude,
		"Longitude": s.Longitude,
		"Altitude":  s.Altitude,
		"Course":    s.Course,
		"Pitch":     s.Pitch,
		"Bank":      s.Bank,
		"Speed":     s.Speed,
	}
}
