// track/track.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package track reads recorded flight-track files. Each supported input
// format has a Parser that produces the same shape of output: an ordered
// sequence of RawSamples plus one FlightMeta record describing the whole
// flight.
package track

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/fdr-tools/fdrconv/log"
)

type FileType int

const (
	UnknownFile FileType = iota
	CSVFile
	KMLFile
	GPXFile
)

func (t FileType) String() string {
	switch t {
	case CSVFile:
		return "CSV"
	case KMLFile:
		return "KML"
	case GPXFile:
		return "GPX"
	default:
		return "unknown"
	}
}

// RawSample is one recorded instant from an input file, in the source
// file's native units and time convention; it is immutable once read.
type RawSample struct {
	Timestamp time.Time
	Latitude  float64
	Longitude float64
	Altitude  float64 // feet MSL
	Course    float64 // degrees
	Pitch     float64 // degrees
	Bank      float64 // degrees
	Speed     float64 // knots
}

// FormatError reports an unparseable source file.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string { return e.Msg }

func formatErrorf(format string, args ...any) error {
	return &FormatError{Msg: fmt.Sprintf(format, args...)}
}

// Parser is implemented once per supported input container. Parse returns
// the time-ascending samples and flight metadata from the given reader.
type Parser interface {
	FileType() FileType
	Parse(r io.Reader, lg *log.Logger) ([]RawSample, *FlightMeta, error)
}

// ParserFor returns the Parser for the given file type.
func ParserFor(t FileType) (Parser, bool) {
	switch t {
	case CSVFile:
		return csvParser{}, true
	case KMLFile:
		return kmlParser{}, true
	case GPXFile:
		return gpxParser{}, true
	default:
		return nil, false
	}
}

// Open opens a track file for reading, transparently decompressing
// gzip-compressed files named with a .gz suffix.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(strings.ToLower(path), ".gz") {
		return f, nil
	}

	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, formatErrorf("%s: %v", path, err)
	}
	return &gzipReadCloser{zr: zr, f: f}, nil
}

type gzipReadCloser struct {
	zr *gzip.Reader
	f  *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.zr.Read(p) }

func (g *gzipReadCloser) Close() error {
	err := g.zr.Close()
	if err2 := g.f.Close(); err == nil {
		err = err2
	}
	return err
}

// Detect sniffs the file type from the first bytes of the stream. XML
// documents are examined for a kml or gpx root element; anything else is
// assumed to be CSV.
func Detect(r *bufio.Reader) (FileType, error) {
	head, err := r.Peek(1024)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return UnknownFile, err
	}
	if len(head) == 0 {
		return UnknownFile, formatErrorf("empty file")
	}

	trimmed := bytes.TrimLeft(head, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("<")) {
		return CSVFile, nil
	}
	if bytes.Contains(head, []byte("<kml")) {
		return KMLFile, nil
	}
	if bytes.Contains(head, []byte("<gpx")) {
		return GPXFile, nil
	}
	return UnknownFile, formatErrorf("unrecognized XML track file")
}
