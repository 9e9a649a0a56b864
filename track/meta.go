// track/meta.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package track

import (
	"fmt"
	"strings"
	"time"
)

// FlightMeta is the flat set of whole-flight facts carried by a track
// file. Adapters fill in what their format provides and leave the rest
// zero; it is read-only after parsing.
type FlightMeta struct {
	Pilot                  string
	TailNumber             string
	DerivedOrigin          string
	StartLatitude          float64
	StartLongitude         float64
	DerivedDestination     string
	EndLatitude            float64
	EndLongitude           float64
	StartTime              time.Time
	EndTime                time.Time
	TotalDuration          time.Duration
	TotalDistance          float64 // nm
	InitialAttitudeSource  string
	DeviceModel            string
	DeviceModelDetailed    string
	IOSVersion             string
	BatteryLevel           float64
	BatteryState           string
	GPSSource              string
	MaximumVerticalError   float64
	MinimumVerticalError   float64
	AverageVerticalError   float64
	MaximumHorizontalError float64
	MinimumHorizontalError float64
	AverageHorizontalError float64
	ImportedFrom           string
	RouteWaypoints         string
}

// Placeholders returns the metadata placeholder name to value mapping
// exposed to DREF expressions. Times are Unix epoch seconds and the
// duration is in seconds so that they can participate in arithmetic.
func (m *FlightMeta) Placeholders() map[string]any {
	epoch := func(t time.Time) float64 {
		if t.IsZero() {
			return 0
		}
		return float64(t.UnixMilli()) / 1000
	}

	return map[string]any{
		"Pilot":                  m.Pilot,
		"TailNumber":             m.TailNumber,
		"DerivedOrigin":          m.DerivedOrigin,
		"StartLatitude":          m.StartLatitude,
		"StartLongitude":         m.StartLongitude,
		"DerivedDestination":     m.DerivedDestination,
		"EndLatitude":            m.EndLatitude,
		"EndLongitude":           m.EndLongitude,
		"StartTime":              epoch(m.StartTime),
		"EndTime":                epoch(m.EndTime),
		"TotalDuration":          m.TotalDuration.Seconds(),
		"TotalDistance":          m.TotalDistance,
		"InitialAttitudeSource":  m.InitialAttitudeSource,
		"DeviceModel":            m.DeviceModel,
		"DeviceModelDetailed":    m.DeviceModelDetailed,
		"iOSVersion":             m.IOSVersion,
		"BatteryLevel":           m.BatteryLevel,
		"BatteryState":           m.BatteryState,
		"GPSSource":              m.GPSSource,
		"MaximumVerticalError":   m.MaximumVerticalError,
		"MinimumVerticalError":   m.MinimumVerticalError,
		"AverageVerticalError":   m.AverageVerticalError,
		"MaximumHorizontalError": m.MaximumHorizontalError,
		"MinimumHorizontalError": m.MinimumHorizontalError,
		"AverageHorizontalError": m.AverageHorizontalError,
		"ImportedFrom":           m.ImportedFrom,
		"RouteWaypoints":         m.RouteWaypoints,
	}
}

// Summary returns a human-readable description of the flight for the
// output file's comment block.
func (m *FlightMeta) Summary() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s - %s %g miles", m.TailNumber, m.StartTime.Format("01/02/2006"), m.TotalDistance)
	if m.Pilot != "" {
		fmt.Fprintf(&sb, " by %s", m.Pilot)
	}
	hours := int(m.TotalDuration.Hours())
	minutes := int(m.TotalDuration.Minutes()) % 60
	fmt.Fprintf(&sb, " (%d hours and %d minutes)\n\n", hours, minutes)

	hms := func(t time.Time) string { return t.Format("15:04:05") }
	fmt.Fprintf(&sb, "    From: %s %s (%v, %v)\n", hms(m.StartTime), m.DerivedOrigin, m.StartLatitude, m.StartLongitude)
	fmt.Fprintf(&sb, "      To: %s %s (%v, %v)\n", hms(m.EndTime), m.DerivedDestination, m.EndLatitude, m.EndLongitude)
	fmt.Fprintf(&sb, " Planned: %s\n", m.RouteWaypoints)
	fmt.Fprintf(&sb, "GPS/AHRS: %s\n", m.GPSSource)
	fmt.Fprintf(&sb, "  Client: %s", m.DeviceModelDetailed)
	if m.IOSVersion != "" {
		fmt.Fprintf(&sb, " iOS v%s", m.IOSVersion)
	}

	return sb.String()
}
