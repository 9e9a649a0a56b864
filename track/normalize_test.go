// track/normalize_test.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package track

import (
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	base := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	samples := []RawSample{
		{Timestamp: base, Latitude: 37.461, Longitude: -122.115, Altitude: 1210, Course: 20, Pitch: 2, Bank: -1},
		{Timestamp: base.Add(time.Second), Latitude: 37.462, Longitude: -122.116, Altitude: 1220, Course: 21, Pitch: 2.5, Bank: -0.5},
	}

	cal := Calibration{
		TimeOffset:  -5 * time.Hour,
		HeadingTrim: 350,
		PitchTrim:   1,
		RollTrim:    -2,
	}
	points := Normalize(samples, cal)

	if len(points) != len(samples) {
		t.Fatalf("got %d points for %d samples", len(points), len(samples))
	}
	for i := range points {
		if points[i].Latitude != samples[i].Latitude || points[i].Longitude != samples[i].Longitude {
			t.Errorf("point %d: position changed during normalization", i)
		}
	}

	if want := base.Add(-5 * time.Hour); !points[0].Time.Equal(want) {
		t.Errorf("time: got %v, want %v", points[0].Time, want)
	}

	// 20 + 350 wraps to 10, not 370.
	if points[0].Heading != 10 {
		t.Errorf("heading: got %v, want 10", points[0].Heading)
	}

	if points[0].Pitch != 3 {
		t.Errorf("pitch: got %v, want 3", points[0].Pitch)
	}
	if points[0].Roll != -3 {
		t.Errorf("roll: got %v, want -3", points[0].Roll)
	}
}

func TestNormalizePitchRollUnwrapped(t *testing.T) {
	// Attitude trim is additive with no wrapping; a large trim may push
	// pitch or roll outside [-180, 180].
	samples := []RawSample{{Pitch: 170, Bank: -170}}
	points := Normalize(samples, Calibration{PitchTrim: 20, RollTrim: -20})
	if points[0].Pitch != 190 {
		t.Errorf("pitch: got %v, want 190", points[0].Pitch)
	}
	if points[0].Roll != -190 {
		t.Errorf("roll: got %v, want -190", points[0].Roll)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	if points := Normalize(nil, Calibration{}); len(points) != 0 {
		t.Errorf("got %d points for empty input", len(points))
	}
}

func TestCanonicalPlaceholders(t *testing.T) {
	p := CanonicalPoint{
		Time:    time.Date(2023, 11, 14, 22, 13, 20, 500_000_000, time.UTC),
		AltMSL:  1234.5,
		Heading: 359.9,
	}
	ph := p.Placeholders()
	if got := ph["TIME"].(float64); got != 1700000000.5 {
		t.Errorf("TIME: got %v", got)
	}
	if got := ph["ALTMSL"].(float64); got != 1234.5 {
		t.Errorf("ALTMSL: got %v", got)
	}
	for _, name := range []string{"TIME", "LAT", "LONG", "HEADING", "PITCH", "ROLL"} {
		if _, ok := ph[name]; !ok {
			t.Errorf("placeholder %s missing", name)
		}
	}
}
