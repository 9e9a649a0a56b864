// config/config.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package config parses fdrconv configuration files and resolves the
// cascading scopes (global defaults, aircraft model, tail number) into
// one effective settings value for a given flight.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brunoga/deep"
	"github.com/iancoleman/orderedmap"

	"github.com/fdr-tools/fdrconv/track"
)

// DefaultAircraft is used when neither the config nor the command line
// names an aircraft model.
const DefaultAircraft = "Aircraft/Laminar Research/Cessna 172 SP/Cessna_172SP_G1000.acf"

// FieldColumnWidth is the fixed width of output data columns; derived
// column names are truncated to it.
const FieldColumnWidth = 19

// FieldDefinition is one user-declared output column (DREF): the dataref
// path it writes to, the expression that computes its value, a scale
// factor multiplied into numeric results, and an optional display name.
type FieldDefinition struct {
	Path   string
	Expr   string
	Scale  float64
	Column string
}

// DisplayName returns the column header name: the explicit Column if one
// was given, otherwise the last segment of the dataref path, truncated to
// the output column width.
func (fd FieldDefinition) DisplayName() string {
	name := fd.Column
	if name == "" {
		name = fd.Path
		if i := strings.LastIndexByte(name, '/'); i != -1 {
			name = name[i+1:]
		}
	}
	if len(name) > FieldColumnWidth {
		name = name[:FieldColumnWidth]
	}
	return name
}

// Trim is the constant additive attitude correction for a tail number.
type Trim struct {
	Heading float64
	Pitch   float64
	Roll    float64
}

// Defaults is the [Defaults] scope.
type Defaults struct {
	Aircraft string
	OutPath  string
	// Timezone offsets to Zulu; the generic "timezone" key is stored
	// under track.UnknownFile, file-type-specific keys under their type.
	Timezones map[track.FileType]time.Duration
	Fields    []FieldDefinition
}

// AircraftScope is an [Aircraft/<model-path>] scope: a model path, the
// tail numbers it applies to, and its field definitions.
type AircraftScope struct {
	Model  string
	Line   int
	Tails  []string
	Fields []FieldDefinition
}

// TailScope is a [<TailNumber>] scope.
type TailScope struct {
	Tail   string
	Trim   Trim
	Fields []FieldDefinition
}

// File is one parsed configuration file.
type File struct {
	Path     string
	Defaults Defaults
	Aircraft []AircraftScope
	Tails    []TailScope
}

// Overrides carries the command-line settings that win over every
// config-derived value. Trim and field definitions are config-only and
// cannot be overridden here.
type Overrides struct {
	Aircraft string
	OutPath  string
	Timezone *time.Duration
}

// Effective is the resolved configuration for one (tail number,
// file type) pair; it is immutable once built.
type Effective struct {
	Aircraft string
	OutPath  string
	Timezone time.Duration
	Trim     Trim
	Fields   []FieldDefinition
}

// SyntaxError reports a malformed configuration file.
type SyntaxError struct {
	Path string
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

// ConflictError reports an ambiguous configuration, such as two output
// columns sharing a display name.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// builtinFields are always defined, ahead of any configured DREF.
var builtinFields = []FieldDefinition{
	{
		Path:   "sim/cockpit2/gauges/indicators/ground_speed_kt",
		Expr:   "{Speed}",
		Scale:  1,
		Column: "GndSpd",
	},
}

// Resolve merges the configuration scopes for the given tail number and
// file type, then applies the command-line overrides. It is a pure fold:
// each scope is overlaid onto a copy, so resolving twice with identical
// inputs yields identical results and the File is never mutated. The
// returned warnings report non-fatal conflicts (a tail claimed by more
// than one aircraft scope; the last one parsed wins).
//
// Resolve works on a nil *File, returning built-in defaults.
func (f *File) Resolve(tail string, ftype track.FileType, ov Overrides) (Effective, []string) {
	eff := Effective{
		Aircraft: DefaultAircraft,
		OutPath:  ".",
	}

	fields := orderedmap.New()
	overlayFields := func(defs []FieldDefinition) {
		// A redefinition of an existing path replaces the earlier value
		// but keeps its position; new paths accumulate in first-seen
		// order.
		for _, fd := range defs {
			fields.Set(fd.Path, fd)
		}
	}
	overlayFields(builtinFields)

	var warnings []string
	if f != nil {
		d := deep.MustCopy(f.Defaults)
		if d.Aircraft != "" {
			eff.Aircraft = d.Aircraft
		}
		if d.OutPath != "" {
			eff.OutPath = d.OutPath
		}
		if tz, ok := d.Timezones[track.UnknownFile]; ok {
			eff.Timezone = tz
		}
		if tz, ok := d.Timezones[ftype]; ok {
			eff.Timezone = tz
		}
		overlayFields(d.Fields)

		if ac, n := f.aircraftForTail(tail); ac != nil {
			if n > 1 {
				warnings = append(warnings,
					fmt.Sprintf("%s: tail is listed by %d aircraft scopes; using %s", tail, n, ac.Model))
			}
			sc := deep.MustCopy(*ac)
			eff.Aircraft = sc.Model
			overlayFields(sc.Fields)
		}

		if ts := f.tailScope(tail); ts != nil {
			sc := deep.MustCopy(*ts)
			eff.Trim = sc.Trim
			overlayFields(sc.Fields)
		}
	}

	if ov.Aircraft != "" {
		eff.Aircraft = ov.Aircraft
	}
	if ov.OutPath != "" {
		eff.OutPath = ov.OutPath
	}
	if ov.Timezone != nil {
		eff.Timezone = *ov.Timezone
	}

	for _, path := range fields.Keys() {
		fd, _ := fields.Get(path)
		eff.Fields = append(eff.Fields, fd.(FieldDefinition))
	}

	return eff, warnings
}

// aircraftForTail returns the aircraft scope whose Tails list contains
// the given tail (the last one parsed if several do) along with how many
// scopes claimed it.
func (f *File) aircraftForTail(tail string) (*AircraftScope, int) {
	if tail == "" {
		return nil, 0
	}

	var match *AircraftScope
	n := 0
	for i := range f.Aircraft {
		for _, t := range f.Aircraft[i].Tails {
			if strings.EqualFold(t, tail) {
				match = &f.Aircraft[i]
				n++
				break
			}
		}
	}
	return match, n
}

func (f *File) tailScope(tail string) *TailScope {
	if tail == "" {
		return nil
	}
	for i := range f.Tails {
		if strings.EqualFold(f.Tails[i].Tail, tail) {
			return &f.Tails[i]
		}
	}
	return nil
}

// ValidateColumns checks that the field definitions' display names are
// unique after defaulting; a collision would make the output column
// layout ambiguous.
func ValidateColumns(fields []FieldDefinition) error {
	seen := make(map[string]string) // display name -> path
	for _, fd := range fields {
		name := fd.DisplayName()
		if prev, ok := seen[name]; ok {
			return &ConflictError{Msg: fmt.Sprintf(
				"column name %q is used by both %s and %s", name, prev, fd.Path)}
		}
		seen[name] = fd.Path
	}
	return nil
}

func (e *Effective) ValidateColumns() error {
	return ValidateColumns(e.Fields)
}

// ParseTimezone parses a timezone offset: decimal hours ("5", "-3.5") or
// a colon-delimited "hh:mm" / "hh:mm:ss" form, either sign.
func ParseTimezone(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty timezone offset")
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	var d time.Duration
	if strings.ContainsRune(s, ':') {
		parts := strings.Split(s, ":")
		if len(parts) > 3 {
			return 0, fmt.Errorf("%s: invalid timezone offset", s)
		}
		for i, unit := range []time.Duration{time.Hour, time.Minute, time.Second}[:len(parts)] {
			v, err := strconv.Atoi(parts[i])
			if err != nil || v < 0 || (i > 0 && v > 59) {
				return 0, fmt.Errorf("%s: invalid timezone offset", s)
			}
			d += time.Duration(v) * unit
		}
	} else {
		hours, err := strconv.ParseFloat(s, 64)
		if err != nil || hours < 0 {
			return 0, fmt.Errorf("%s: invalid timezone offset", s)
		}
		d = time.Duration(hours * float64(time.Hour))
	}

	if negative {
		d = -d
	}
	return d, nil
}
