// track/gpx_test.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package track

import (
	"errors"
	gomath "math"
	"strings"
	"testing"
)

const testGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test">
  <trk>
    <name>N54321 Local Flight</name>
    <trkseg>
      <trkpt lat="37.461" lon="-122.115">
        <ele>369.0</ele>
        <time>2023-11-14T22:13:20Z</time>
      </trkpt>
      <trkpt lat="37.462" lon="-122.115">
        <ele>370.0</ele>
        <time>2023-11-14T22:13:21Z</time>
      </trkpt>
    </trkseg>
  </trk>
</gpx>
`

func TestParseGPX(t *testing.T) {
	samples, meta, err := gpxParser{}.Parse(strings.NewReader(testGPX), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(samples) != 2 {
		t.Fatalf("got %d samples, expected 2", len(samples))
	}
	if want := 369.0 * 3.28084; gomath.Abs(samples[0].Altitude-want) > 1e-6 {
		t.Errorf("altitude: got %v, want %v", samples[0].Altitude, want)
	}
	if samples[0].Speed == 0 {
		t.Error("speed was not derived")
	}
	if meta.TailNumber != "N54321" {
		t.Errorf("tail: got %q", meta.TailNumber)
	}
	if meta.ImportedFrom != "GPX" {
		t.Errorf("imported from: got %q", meta.ImportedFrom)
	}
}

func TestParseGPXCourseSpeedElements(t *testing.T) {
	// GPX 1.0 style course/speed elements are used directly; speed is
	// converted from m/s to knots.
	src := `<gpx><trk><trkseg>
	  <trkpt lat="37" lon="-122"><ele>100</ele><time>2023-11-14T22:13:20Z</time><course>123</course><speed>51.444</speed></trkpt>
	  <trkpt lat="37.01" lon="-122"><ele>100</ele><time>2023-11-14T22:13:30Z</time><course>124</course><speed>51.444</speed></trkpt>
	</trkseg></trk></gpx>`

	samples, _, err := gpxParser{}.Parse(strings.NewReader(src), nil)
	if err != nil {
		t.Fatal(err)
	}
	if samples[0].Course != 123 {
		t.Errorf("course: got %v", samples[0].Course)
	}
	if gomath.Abs(samples[0].Speed-100) > 0.1 {
		t.Errorf("speed: got %v, expected ~100 knots", samples[0].Speed)
	}
}

func TestParseGPXErrors(t *testing.T) {
	for _, c := range []struct {
		name string
		src  string
	}{
		{"no trk", "<gpx></gpx>"},
		{"no points", "<gpx><trk><trkseg></trkseg></trk></gpx>"},
		{"bad time", `<gpx><trk><trkseg><trkpt lat="1" lon="2"><time>yesterday</time></trkpt></trkseg></trk></gpx>`},
	} {
		_, _, err := gpxParser{}.Parse(strings.NewReader(c.src), nil)
		var format *FormatError
		if !errors.As(err, &format) {
			t.Errorf("%s: got %v, expected FormatError", c.name, err)
		}
	}
}
