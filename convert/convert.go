// convert/convert.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package convert runs the per-file conversion pipeline: parse the track
// file, resolve the effective configuration for its tail number and file
// type, normalize the samples, evaluate the user-defined output fields,
// and render the FDR file.
package convert

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fdr-tools/fdrconv/config"
	"github.com/fdr-tools/fdrconv/expr"
	"github.com/fdr-tools/fdrconv/fdr"
	"github.com/fdr-tools/fdrconv/log"
	"github.com/fdr-tools/fdrconv/track"
)

// Options carries the invocation-wide state shared by all files of one
// run. Config may be nil (built-in defaults only).
type Options struct {
	Config    *config.File
	Overrides config.Overrides
	Logger    *log.Logger
}

// FieldError reports a user-defined output field that could not be
// compiled or evaluated. Point is the track point index, or -1 if the
// failure is not tied to a specific point.
type FieldError struct {
	Field string
	Point int
	Err   error
}

func (e *FieldError) Error() string {
	if e.Point < 0 {
		return fmt.Sprintf("field %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("field %s: point %d: %v", e.Field, e.Point, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Convert converts one track file, returning the path of the FDR file it
// wrote. On error no output file is left behind; errors on one file
// never affect other files, since all per-flight state is local.
func Convert(path string, opts Options) (string, error) {
	lg := opts.Logger

	r, err := track.Open(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	br := bufio.NewReader(r)
	ftype, err := track.Detect(br)
	if err != nil {
		return "", err
	}
	parser, ok := track.ParserFor(ftype)
	if !ok {
		return "", &track.FormatError{Msg: "unsupported track file format"}
	}
	lg.Infof("%s: parsing as %s", path, ftype)

	samples, meta, err := parser.Parse(br, lg)
	if err != nil {
		return "", err
	}

	eff, warnings := opts.Config.Resolve(meta.TailNumber, ftype, opts.Overrides)
	for _, w := range warnings {
		lg.Warnf("%s: %s", path, w)
	}
	if err := eff.ValidateColumns(); err != nil {
		return "", err
	}

	// Compile every field expression once; they are evaluated per point.
	exprs := make([]*expr.Expr, len(eff.Fields))
	for i, fd := range eff.Fields {
		if exprs[i], err = expr.Parse(fd.Expr); err != nil {
			return "", &FieldError{Field: fd.Path, Point: -1, Err: err}
		}
	}

	points := track.Normalize(samples, track.Calibration{
		TimeOffset:  eff.Timezone,
		HeadingTrim: eff.Trim.Heading,
		PitchTrim:   eff.Trim.Pitch,
		RollTrim:    eff.Trim.Roll,
	})

	metaValues := meta.Placeholders()
	rows := make([]fdr.Row, len(points))
	for i := range points {
		rawValues := samples[i].Placeholders()
		pointValues := points[i].Placeholders()
		lookup := func(name string) (expr.Value, bool) {
			if v, ok := pointValues[name]; ok {
				return v, true
			}
			if v, ok := rawValues[name]; ok {
				return v, true
			}
			v, ok := metaValues[name]
			return v, ok
		}

		values := make([]expr.Value, len(exprs))
		for j, e := range exprs {
			v, err := e.Eval(lookup)
			if err != nil {
				return "", &FieldError{Field: eff.Fields[j].Path, Point: i, Err: err}
			}
			if f, ok := v.(float64); ok {
				v = f * eff.Fields[j].Scale
			}
			values[j] = v
		}
		rows[i] = fdr.Row{Point: points[i], Values: values}
	}

	date := meta.StartTime
	if date.IsZero() {
		date = points[0].Time
	}
	flight := &fdr.Flight{
		Aircraft: eff.Aircraft,
		Tail:     meta.TailNumber,
		Date:     date,
		Summary:  meta.Summary(),
		Fields:   eff.Fields,
		Rows:     rows,
	}

	outPath := OutputPath(eff.OutPath, path)
	if err := fdr.Write(outPath, flight); err != nil {
		return "", err
	}
	lg.Infof("%s: wrote %d track points", outPath, len(rows))

	return outPath, nil
}

// OutputPath returns the destination for a converted file: the input
// basename with the FDR extension, in the given output directory. A .gz
// suffix from compressed input is dropped first.
func OutputPath(outDir, inPath string) string {
	base := filepath.Base(inPath)
	if strings.HasSuffix(strings.ToLower(base), ".gz") {
		base = base[:len(base)-len(".gz")]
	}
	base = strings.TrimSuffix(base, filepath.Ext(base)) + fdr.Extension
	return filepath.Join(outDir, base)
}
