// track/csv.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package track

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/fdr-tools/fdrconv/log"
)

// csvParser reads ForeFlight-compatible CSV track logs. The layout is two
// header/value rows of flight metadata followed by a header row and then
// one row per track point.
type csvParser struct{}

func (csvParser) FileType() FileType { return CSVFile }

func (csvParser) Parse(r io.Reader, lg *log.Logger) ([]RawSample, *FlightMeta, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	metaCols, err := cr.Read()
	if err != nil {
		return nil, nil, formatErrorf("reading metadata header: %v", err)
	}
	metaVals, err := cr.Read()
	if err != nil {
		return nil, nil, formatErrorf("reading metadata values: %v", err)
	}

	// ForeFlight writes the "Battery State" header cell twice, so the
	// header row is one cell longer than the values row; drop the first
	// occurrence to line the columns back up.
	if n := countColumn(metaCols, "Battery State"); n > 1 {
		metaCols = removeFirst(metaCols, "Battery State")
	}

	meta, err := parseCSVMeta(metaCols, metaVals, lg)
	if err != nil {
		return nil, nil, err
	}

	trackCols, err := cr.Read()
	if err != nil {
		return nil, nil, formatErrorf("reading track header: %v", err)
	}
	colIndex := make(map[string]int)
	for i, name := range trackCols {
		colIndex[name] = i
	}
	for _, required := range []string{"Timestamp", "Latitude", "Longitude", "Altitude"} {
		if _, ok := colIndex[required]; !ok {
			return nil, nil, formatErrorf("track data has no %q column", required)
		}
	}

	var samples []RawSample
	for row := 4; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, formatErrorf("row %d: %v", row, err)
		}

		field := func(name string) (float64, error) {
			i, ok := colIndex[name]
			if !ok || i >= len(rec) || rec[i] == "" {
				return 0, nil
			}
			v, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				return 0, formatErrorf("row %d: bad %s value %q", row, name, rec[i])
			}
			return v, nil
		}

		var s RawSample
		var ts float64
		for _, c := range []struct {
			name string
			dst  *float64
		}{
			{"Timestamp", &ts},
			{"Latitude", &s.Latitude},
			{"Longitude", &s.Longitude},
			{"Altitude", &s.Altitude},
			{"Course", &s.Course},
			{"Pitch", &s.Pitch},
			{"Bank", &s.Bank},
			{"Speed", &s.Speed},
		} {
			if *c.dst, err = field(c.name); err != nil {
				return nil, nil, err
			}
		}
		s.Timestamp = time.UnixMilli(int64(ts * 1000)).UTC()

		if n := len(samples); n > 0 && !samples[n-1].Timestamp.Before(s.Timestamp) {
			return nil, nil, formatErrorf("row %d: track points are not time-ascending", row)
		}
		samples = append(samples, s)
	}

	if len(samples) == 0 {
		return nil, nil, formatErrorf("no track points found")
	}
	return samples, meta, nil
}

func countColumn(cols []string, name string) int {
	n := 0
	for _, c := range cols {
		if c == name {
			n++
		}
	}
	return n
}

func removeFirst(cols []string, name string) []string {
	out := make([]string, 0, len(cols))
	removed := false
	for _, c := range cols {
		if !removed && c == name {
			removed = true
			continue
		}
		out = append(out, c)
	}
	return out
}

func parseCSVMeta(cols, vals []string, lg *log.Logger) (*FlightMeta, error) {
	meta := &FlightMeta{}

	for i, name := range cols {
		if i >= len(vals) || vals[i] == "" {
			continue
		}
		value := vals[i]

		number := func(dst *float64) error {
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return formatErrorf("metadata %q: bad numeric value %q", name, value)
			}
			*dst = v
			return nil
		}
		// ForeFlight reports start/end times in epoch milliseconds.
		timestamp := func(dst *time.Time) error {
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return formatErrorf("metadata %q: bad timestamp %q", name, value)
			}
			*dst = time.UnixMilli(int64(v)).UTC()
			return nil
		}

		var err error
		switch name {
		case "Pilot":
			meta.Pilot = value
		case "Tail Number":
			meta.TailNumber = value
		case "Derived Origin":
			meta.DerivedOrigin = value
		case "Start Latitude":
			err = number(&meta.StartLatitude)
		case "Start Longitude":
			err = number(&meta.StartLongitude)
		case "Derived Destination":
			meta.DerivedDestination = value
		case "End Latitude":
			err = number(&meta.EndLatitude)
		case "End Longitude":
			err = number(&meta.EndLongitude)
		case "Start Time":
			err = timestamp(&meta.StartTime)
		case "End Time":
			err = timestamp(&meta.EndTime)
		case "Total Duration":
			var seconds float64
			if err = number(&seconds); err == nil {
				meta.TotalDuration = time.Duration(seconds * float64(time.Second))
			}
		case "Total Distance":
			err = number(&meta.TotalDistance)
		case "Initial Attitude Source":
			meta.InitialAttitudeSource = value
		case "Device Model":
			meta.DeviceModel = value
		case "Device Model Detailed":
			meta.DeviceModelDetailed = value
		case "iOS Version":
			meta.IOSVersion = value
		case "Battery Level":
			err = number(&meta.BatteryLevel)
		case "Battery State":
			meta.BatteryState = value
		case "GPS Source":
			meta.GPSSource = value
		case "Maximum Vertical Error":
			err = number(&meta.MaximumVerticalError)
		case "Minimum Vertical Error":
			err = number(&meta.MinimumVerticalError)
		case "Average Vertical Error":
			err = number(&meta.AverageVerticalError)
		case "Maximum Horizontal Error":
			err = number(&meta.MaximumHorizontalError)
		case "Minimum Horizontal Error":
			err = number(&meta.MinimumHorizontalError)
		case "Average Horizontal Error":
			err = number(&meta.AverageHorizontalError)
		case "Imported From":
			meta.ImportedFrom = value
		case "Route Waypoints":
			meta.RouteWaypoints = value
		default:
			lg.Debugf("%s: ignoring unknown metadata column", name)
		}
		if err != nil {
			return nil, err
		}
	}

	return meta, nil
}
