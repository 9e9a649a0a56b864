// track/kml_test.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package track

import (
	"errors"
	gomath "math"
	"strings"
	"testing"
	"time"
)

const testKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2" xmlns:gx="http://www.google.com/kml/ext/2.2">
  <Document>
    <name>N12345 Track Log</name>
    <Placemark>
      <name>N12345 Flight Track</name>
      <gx:Track>
        <when>2023-11-14T22:13:20Z</when>
        <when>2023-11-14T22:13:21Z</when>
        <when>2023-11-14T22:13:22Z</when>
        <gx:coord>-122.115 37.461 369.0</gx:coord>
        <gx:coord>-122.115 37.462 370.0</gx:coord>
        <gx:coord>-122.115 37.463 371.0</gx:coord>
      </gx:Track>
    </Placemark>
  </Document>
</kml>
`

func TestParseKML(t *testing.T) {
	samples, meta, err := kmlParser{}.Parse(strings.NewReader(testKML), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(samples) != 3 {
		t.Fatalf("got %d samples, expected 3", len(samples))
	}

	s := samples[0]
	if want := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC); !s.Timestamp.Equal(want) {
		t.Errorf("timestamp: got %v, want %v", s.Timestamp, want)
	}
	if s.Latitude != 37.461 || s.Longitude != -122.115 {
		t.Errorf("position: got %v, %v", s.Latitude, s.Longitude)
	}
	// Altitude is converted from metres to feet.
	if want := 369.0 * 3.28084; gomath.Abs(s.Altitude-want) > 1e-6 {
		t.Errorf("altitude: got %v, want %v", s.Altitude, want)
	}

	// Course and speed are derived from successive positions: due north
	// at 0.001 degrees of latitude per second.
	if gomath.Abs(s.Course-0) > 1 && gomath.Abs(s.Course-360) > 1 {
		t.Errorf("derived course: got %v, expected ~0", s.Course)
	}
	wantSpeed := 0.06 * 3600 // 0.001 deg latitude = 0.06 nm, per second
	if gomath.Abs(s.Speed-wantSpeed)/wantSpeed > 0.05 {
		t.Errorf("derived speed: got %v, expected ~%v", s.Speed, wantSpeed)
	}

	if meta.TailNumber != "N12345" {
		t.Errorf("tail: got %q", meta.TailNumber)
	}
	if meta.TotalDuration != 2*time.Second {
		t.Errorf("duration: got %v", meta.TotalDuration)
	}
	if meta.ImportedFrom != "KML" {
		t.Errorf("imported from: got %q", meta.ImportedFrom)
	}
}

func TestParseKMLErrors(t *testing.T) {
	for _, c := range []struct {
		name string
		src  string
	}{
		{"not xml", "this is not xml"},
		{"no track", `<kml xmlns:gx="http://www.google.com/kml/ext/2.2"><Document><Placemark/></Document></kml>`},
		{"count mismatch", `<kml xmlns:gx="http://www.google.com/kml/ext/2.2"><Document><Placemark><gx:Track>
			<when>2023-11-14T22:13:20Z</when>
			<gx:coord>-122.1 37.4 100</gx:coord>
			<gx:coord>-122.1 37.5 100</gx:coord>
			</gx:Track></Placemark></Document></kml>`},
		{"bad coord", `<kml xmlns:gx="http://www.google.com/kml/ext/2.2"><Document><Placemark><gx:Track>
			<when>2023-11-14T22:13:20Z</when>
			<gx:coord>not a coord triple here</gx:coord>
			</gx:Track></Placemark></Document></kml>`},
	} {
		_, _, err := kmlParser{}.Parse(strings.NewReader(c.src), nil)
		var format *FormatError
		if !errors.As(err, &format) {
			t.Errorf("%s: got %v, expected FormatError", c.name, err)
		}
	}
}
