// config/parser.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package config

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fdr-tools/fdrconv/track"
)

// ConfigFileNames are searched for, in order, in the current directory
// and then next to the executable when no config path is given.
var ConfigFileNames = []string{"fdrconv.conf", "fdrconv.ini"}

// FindFile locates the configuration file to use: the explicit path if
// one was given, otherwise the first of ConfigFileNames found in the
// search directories. Returns "" if there is none.
func FindFile(explicit string) string {
	if explicit != "" {
		return explicit
	}

	dirs := []string{"."}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	for _, dir := range dirs {
		for _, name := range ConfigFileNames {
			path := filepath.Join(dir, name)
			if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
				return path
			}
		}
	}
	return ""
}

// ParseFile reads and parses the configuration file at path.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse parses a configuration file from r; path is used in error
// messages only.
func Parse(r io.Reader, path string) (*File, error) {
	f := &File{Path: path}

	// Which scope subsequent keys land in.
	const (
		inNone = iota
		inDefaults
		inAircraft
		inTail
	)
	section := inNone

	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}

		if line[0] == '[' {
			if !strings.HasSuffix(line, "]") {
				return nil, &SyntaxError{Path: path, Line: lineno, Msg: "unterminated section header"}
			}
			name := strings.TrimSpace(line[1 : len(line)-1])
			if name == "" {
				return nil, &SyntaxError{Path: path, Line: lineno, Msg: "empty section name"}
			}

			switch {
			case strings.EqualFold(name, "defaults"):
				section = inDefaults
			case strings.HasPrefix(strings.ToLower(name), "aircraft/"):
				f.Aircraft = append(f.Aircraft, AircraftScope{Model: name, Line: lineno})
				section = inAircraft
			default:
				f.Tails = append(f.Tails, TailScope{Tail: name})
				section = inTail
			}
			continue
		}

		if section == inNone {
			return nil, &SyntaxError{Path: path, Line: lineno, Msg: "key outside of any section"}
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, &SyntaxError{Path: path, Line: lineno, Msg: "expected key = value"}
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key == "" {
			return nil, &SyntaxError{Path: path, Line: lineno, Msg: "missing key"}
		}

		// DREF lines may appear in any section.
		if strings.EqualFold(key, "dref") {
			return nil, &SyntaxError{Path: path, Line: lineno, Msg: "DREF: missing dataref path"}
		}
		if rest, ok := cutPrefixFold(key, "dref "); ok {
			fd, err := parseFieldDefinition(rest, value, path, lineno)
			if err != nil {
				return nil, err
			}
			switch section {
			case inDefaults:
				f.Defaults.Fields = append(f.Defaults.Fields, fd)
			case inAircraft:
				ac := &f.Aircraft[len(f.Aircraft)-1]
				ac.Fields = append(ac.Fields, fd)
			case inTail:
				ts := &f.Tails[len(f.Tails)-1]
				ts.Fields = append(ts.Fields, fd)
			}
			continue
		}

		switch section {
		case inDefaults:
			if err := f.parseDefaultsKey(key, value, path, lineno); err != nil {
				return nil, err
			}

		case inAircraft:
			ac := &f.Aircraft[len(f.Aircraft)-1]
			if strings.EqualFold(key, "tails") {
				for _, tail := range strings.Split(value, ",") {
					if tail = strings.TrimSpace(tail); tail != "" {
						ac.Tails = append(ac.Tails, tail)
					}
				}
			}
			// Other keys in aircraft scopes are ignored.

		case inTail:
			ts := &f.Tails[len(f.Tails)-1]
			var dst *float64
			switch strings.ToLower(key) {
			case "headingtrim":
				dst = &ts.Trim.Heading
			case "pitchtrim":
				dst = &ts.Trim.Pitch
			case "rolltrim":
				dst = &ts.Trim.Roll
			default:
				continue // unknown tail keys are ignored
			}
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, &SyntaxError{Path: path, Line: lineno,
					Msg: key + ": bad numeric value " + strconv.Quote(value)}
			}
			*dst = v
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return f, nil
}

func (f *File) parseDefaultsKey(key, value, path string, lineno int) error {
	lower := strings.ToLower(key)

	tzType := track.FileType(-1)
	switch lower {
	case "aircraft":
		f.Defaults.Aircraft = value
		return nil
	case "outpath":
		f.Defaults.OutPath = value
		return nil
	case "timezone":
		tzType = track.UnknownFile
	case "timezonecsv":
		tzType = track.CSVFile
	case "timezonekml":
		tzType = track.KMLFile
	case "timezonegpx":
		tzType = track.GPXFile
	default:
		return nil // unknown defaults keys are ignored
	}

	tz, err := ParseTimezone(value)
	if err != nil {
		return &SyntaxError{Path: path, Line: lineno, Msg: key + ": " + err.Error()}
	}
	if f.Defaults.Timezones == nil {
		f.Defaults.Timezones = make(map[track.FileType]time.Duration)
	}
	f.Defaults.Timezones[tzType] = tz
	return nil
}

// parseFieldDefinition parses the value of a "DREF <path> = <expression>,
// <scale>[, <column>]" line. Commas inside parentheses, braces, and
// quotes belong to the expression and do not split fields.
func parseFieldDefinition(pathPart, value, file string, lineno int) (FieldDefinition, error) {
	fd := FieldDefinition{Path: strings.TrimSpace(pathPart), Scale: 1}
	if fd.Path == "" {
		return fd, &SyntaxError{Path: file, Line: lineno, Msg: "DREF: missing dataref path"}
	}

	parts := splitTopLevel(value)
	if len(parts) == 0 || strings.TrimSpace(parts[0]) == "" {
		return fd, &SyntaxError{Path: file, Line: lineno, Msg: "DREF " + fd.Path + ": missing expression"}
	}
	if len(parts) > 3 {
		return fd, &SyntaxError{Path: file, Line: lineno,
			Msg: "DREF " + fd.Path + ": expected <expression>, <scale>[, <column>]"}
	}

	fd.Expr = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		scale, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return fd, &SyntaxError{Path: file, Line: lineno,
				Msg: "DREF " + fd.Path + ": bad scale " + strconv.Quote(strings.TrimSpace(parts[1]))}
		}
		fd.Scale = scale
	}
	if len(parts) > 2 {
		fd.Column = strings.TrimSpace(parts[2])
	}

	return fd, nil
}

// splitTopLevel splits s on commas that are not nested inside
// parentheses, placeholder braces, or string quotes.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"':
			quote = ch
		case '(', '{':
			depth++
		case ')', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return "", false
}
