// track/gpx.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package track

import (
	"encoding/xml"
	"io"
	"strings"
	"time"

	"github.com/fdr-tools/fdrconv/log"
	"github.com/fdr-tools/fdrconv/math"
)

// gpxParser reads GPX track logs: trk/trkseg/trkpt elements with lat/lon
// attributes, elevation in metres, and RFC 3339 timestamps. GPX 1.0 course
// and speed elements are used when present; otherwise both are derived
// from successive positions.
type gpxParser struct{}

func (gpxParser) FileType() FileType { return GPXFile }

type gpxPoint struct {
	Lat    float64  `xml:"lat,attr"`
	Lon    float64  `xml:"lon,attr"`
	Ele    float64  `xml:"ele"`
	Time   string   `xml:"time"`
	Course *float64 `xml:"course"`
	Speed  *float64 `xml:"speed"` // m/s
}

type gpxRoot struct {
	Tracks []struct {
		Name     string `xml:"name"`
		Segments []struct {
			Points []gpxPoint `xml:"trkpt"`
		} `xml:"trkseg"`
	} `xml:"trk"`
}

const mpsToKnots = 1.943844

func (gpxParser) Parse(r io.Reader, lg *log.Logger) ([]RawSample, *FlightMeta, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}

	var root gpxRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, nil, formatErrorf("malformed GPX: %v", err)
	}
	if len(root.Tracks) == 0 {
		return nil, nil, formatErrorf("no trk element found")
	}
	trk := root.Tracks[0]

	var samples []RawSample
	haveMotion := true
	for _, seg := range trk.Segments {
		for _, pt := range seg.Points {
			ts, err := time.Parse(time.RFC3339, strings.TrimSpace(pt.Time))
			if err != nil {
				return nil, nil, formatErrorf("point %d: bad timestamp %q", len(samples), pt.Time)
			}

			s := RawSample{
				Timestamp: ts.UTC(),
				Latitude:  pt.Lat,
				Longitude: pt.Lon,
				Altitude:  pt.Ele * math.MetersToFeet,
			}
			if pt.Course != nil {
				s.Course = *pt.Course
			}
			if pt.Speed != nil {
				s.Speed = *pt.Speed * mpsToKnots
			}
			haveMotion = haveMotion && pt.Course != nil && pt.Speed != nil

			if n := len(samples); n > 0 && !samples[n-1].Timestamp.Before(s.Timestamp) {
				return nil, nil, formatErrorf("point %d: track points are not time-ascending", n)
			}
			samples = append(samples, s)
		}
	}
	if len(samples) == 0 {
		return nil, nil, formatErrorf("no track points found")
	}

	deriveMotion(samples, !haveMotion)

	meta := motionMeta(samples)
	meta.TailNumber = tailFromName(trk.Name)
	meta.ImportedFrom = "GPX"

	return samples, meta, nil
}
