// track/derive.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package track

import (
	"github.com/fdr-tools/fdrconv/math"
)

// deriveMotion fills in course and ground speed from successive positions
// for formats that don't record them. Each point takes the bearing and
// average speed over the leg to the next point; the final point repeats
// the previous leg's values.
func deriveMotion(samples []RawSample, fillCourse bool) {
	if len(samples) < 2 {
		return
	}

	for i := range samples[:len(samples)-1] {
		a, b := &samples[i], &samples[i+1]
		nm := math.NMDistance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
		hours := b.Timestamp.Sub(a.Timestamp).Hours()

		if a.Speed == 0 && hours > 0 {
			a.Speed = nm / hours
		}
		if fillCourse && nm > 0 {
			a.Course = math.Heading(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
		} else if fillCourse && i > 0 {
			a.Course = samples[i-1].Course
		}
	}

	last, prev := &samples[len(samples)-1], &samples[len(samples)-2]
	if last.Speed == 0 {
		last.Speed = prev.Speed
	}
	if fillCourse && last.Course == 0 {
		last.Course = prev.Course
	}
}

// motionMeta builds the flight metadata that can be computed from the
// samples alone: endpoints, duration, and total distance flown.
func motionMeta(samples []RawSample) *FlightMeta {
	meta := &FlightMeta{}
	if len(samples) == 0 {
		return meta
	}

	first, last := samples[0], samples[len(samples)-1]
	meta.StartTime = first.Timestamp
	meta.StartLatitude = first.Latitude
	meta.StartLongitude = first.Longitude
	meta.EndTime = last.Timestamp
	meta.EndLatitude = last.Latitude
	meta.EndLongitude = last.Longitude
	meta.TotalDuration = last.Timestamp.Sub(first.Timestamp)

	for i := range samples[:len(samples)-1] {
		a, b := samples[i], samples[i+1]
		meta.TotalDistance += math.NMDistance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
	}

	return meta
}
