// track/kml.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package track

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fdr-tools/fdrconv/log"
	"github.com/fdr-tools/fdrconv/math"
)

const gxNamespace = "http://www.google.com/kml/ext/2.2"

// kmlParser reads KML track logs carrying a gx:Track element: paired
// <when> timestamps (RFC 3339, UTC) and <gx:coord> longitude latitude
// altitude triples, with optional <gx:angles> heading pitch roll.
type kmlParser struct{}

func (kmlParser) FileType() FileType { return KMLFile }

type kmlPlacemark struct {
	Name  string    `xml:"name"`
	Track *kmlTrack `xml:"http://www.google.com/kml/ext/2.2 Track"`
}

type kmlFolder struct {
	Folders    []kmlFolder    `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlDocument struct {
	Name string `xml:"name"`
	kmlFolder
}

type kmlRoot struct {
	Document kmlDocument `xml:"Document"`
	kmlFolder
}

type kmlTrack struct {
	When   []string `xml:"when"`
	Coord  []string `xml:"http://www.google.com/kml/ext/2.2 coord"`
	Angles []string `xml:"http://www.google.com/kml/ext/2.2 angles"`
}

func (kmlParser) Parse(r io.Reader, lg *log.Logger) ([]RawSample, *FlightMeta, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}

	var root kmlRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, nil, formatErrorf("malformed KML: %v", err)
	}

	name, track := findTrack(&root)
	if track == nil {
		return nil, nil, formatErrorf("no gx:Track element found")
	}
	if len(track.When) != len(track.Coord) {
		return nil, nil, formatErrorf("gx:Track has %d timestamps but %d coordinates",
			len(track.When), len(track.Coord))
	}
	if len(track.When) == 0 {
		return nil, nil, formatErrorf("no track points found")
	}

	haveAngles := len(track.Angles) == len(track.Coord)
	samples := make([]RawSample, len(track.When))
	for i := range track.When {
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(track.When[i]))
		if err != nil {
			return nil, nil, formatErrorf("point %d: bad timestamp %q", i, track.When[i])
		}

		lon, lat, altMeters, err := parseTriple(track.Coord[i])
		if err != nil {
			return nil, nil, formatErrorf("point %d: bad gx:coord %q", i, track.Coord[i])
		}

		samples[i] = RawSample{
			Timestamp: ts.UTC(),
			Latitude:  lat,
			Longitude: lon,
			Altitude:  altMeters * math.MetersToFeet,
		}

		if haveAngles {
			heading, pitch, roll, err := parseTriple(track.Angles[i])
			if err != nil {
				return nil, nil, formatErrorf("point %d: bad gx:angles %q", i, track.Angles[i])
			}
			samples[i].Course, samples[i].Pitch, samples[i].Bank = heading, pitch, roll
		}

		if i > 0 && !samples[i-1].Timestamp.Before(samples[i].Timestamp) {
			return nil, nil, formatErrorf("point %d: track points are not time-ascending", i)
		}
	}

	deriveMotion(samples, !haveAngles)

	if name == "" {
		name = root.Document.Name
	}
	meta := motionMeta(samples)
	meta.TailNumber = tailFromName(name)
	meta.ImportedFrom = "KML"

	return samples, meta, nil
}

func findTrack(root *kmlRoot) (string, *kmlTrack) {
	var walk func(f *kmlFolder) (string, *kmlTrack)
	walk = func(f *kmlFolder) (string, *kmlTrack) {
		for _, p := range f.Placemarks {
			if p.Track != nil {
				return p.Name, p.Track
			}
		}
		for i := range f.Folders {
			if name, t := walk(&f.Folders[i]); t != nil {
				return name, t
			}
		}
		return "", nil
	}

	if name, t := walk(&root.Document.kmlFolder); t != nil {
		return name, t
	}
	return walk(&root.kmlFolder)
}

// parseTriple parses a whitespace-separated triple of floats, as used by
// both gx:coord (lon lat alt) and gx:angles (heading pitch roll).
func parseTriple(s string) (float64, float64, float64, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 || len(fields) > 3 {
		return 0, 0, 0, formatErrorf("expected 2 or 3 fields, found %d", len(fields))
	}

	var v [3]float64
	for i, f := range fields {
		var err error
		if v[i], err = strconv.ParseFloat(f, 64); err != nil {
			return 0, 0, 0, err
		}
	}
	return v[0], v[1], v[2], nil
}

// tailFromName extracts a tail number from a document or placemark name
// like "N12345 Track Log"; the first whitespace-separated token is taken.
func tailFromName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
