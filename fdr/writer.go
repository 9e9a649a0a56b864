// fdr/writer.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package fdr

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fdr-tools/fdrconv/config"
	"github.com/fdr-tools/fdrconv/util"
)

const columnWidth = config.FieldColumnWidth

// Extension is the output file extension, regardless of input format.
const Extension = ".fdr"

// WriteError reports an unwritable destination.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Write renders the flight to the given destination path. The file is
// written through a temporary and renamed only on success, so a failed
// conversion never leaves a partial FDR file behind. Column display
// names are validated before any output is produced.
func Write(path string, f *Flight) error {
	if err := config.ValidateColumns(f.Fields); err != nil {
		return err
	}

	if err := util.AtomicWriteFile(path, f.render); err != nil {
		if _, ok := err.(*WriteError); ok {
			return err
		}
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

func (f *Flight) render(w io.Writer) error {
	generated := time.Now().UTC().Format("2006/01/02 15:04:05Z")

	var sb strings.Builder
	sb.WriteString("A\n4\n\n")
	writeComment(&sb, "Generated on ["+generated+"]")
	writeComment(&sb, "This X-Plane compatible FDR file was converted from a recorded flight track by fdrconv")
	writeComment(&sb, "https://github.com/fdr-tools/fdrconv")
	sb.WriteString("\n")
	if f.Summary != "" {
		writeComment(&sb, f.Summary)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	writeComment(&sb, "Fields below define general data for this flight.")
	writeComment(&sb, "Track files only provide a few of the data points that X-Plane can accept.")
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "ACFT, %s\n", f.Aircraft)
	fmt.Fprintf(&sb, "TAIL, %s\n", f.Tail)
	fmt.Fprintf(&sb, "DATE, %s\n", f.Date.Format("01/02/2006"))

	sb.WriteString("\n\n")
	writeComment(&sb, "DREFs below define additional columns beyond the 7th (Roll)")
	writeComment(&sb, "in the flight track data that follows.")
	sb.WriteString("\n")
	for _, fd := range f.Fields {
		fmt.Fprintf(&sb, "DREF, %s\t%g\t\t// source: %s\n", fd.Path, fd.Scale, fd.Expr)
	}

	sb.WriteString("\n\n")
	writeComment(&sb, "The remainder of this file consists of GPS/AHRS track points.")
	writeComment(&sb, "The timestamps beginning each row are Zulu time.")
	sb.WriteString("\n")
	writeColumnNames(&sb, f.Fields)

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}

	for _, row := range f.Rows {
		p := row.Point
		line := fmt.Sprintf("%s, %*.6f, %*.6f, %*.6f, %*.6f, %*.6f, %*.6f",
			p.Time.Format("15:04:05.000000"),
			columnWidth, p.Longitude, columnWidth, p.Latitude, columnWidth, p.AltMSL,
			columnWidth, p.Heading, columnWidth, p.Pitch, columnWidth, p.Roll)

		for _, v := range row.Values {
			switch v := v.(type) {
			case float64:
				line += fmt.Sprintf(", %*.6f", columnWidth, v)
			default:
				line += fmt.Sprintf(", %*s", columnWidth, fmt.Sprint(v))
			}
		}

		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}

	return nil
}

// writeComment writes a COMM line per line of the given text.
func writeComment(sb *strings.Builder, text string) {
	for _, line := range strings.Split(text, "\n") {
		sb.WriteString("COMM, ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}

// writeColumnNames writes the two comment rows declaring the column
// layout: units for the built-in columns, then names for the built-in
// columns followed by each field's display name in definition order.
func writeColumnNames(sb *strings.Builder, fields []config.FieldDefinition) {
	// The first cell is wider to account for the time column that begins
	// each data row.
	const firstWidth = columnWidth + 11

	units := []string{"degrees", "degrees", "ft msl", "deg", "deg", "deg"}
	names := []string{"Longitude", "Latitude", "AltMSL", "Heading", "Pitch", "Roll"}

	row := func(cells []string) {
		sb.WriteString("COMM, ")
		for i, cell := range cells {
			if i == 0 {
				fmt.Fprintf(sb, "%*s", firstWidth, cell)
			} else {
				fmt.Fprintf(sb, ", %*s", columnWidth, cell)
			}
		}
		sb.WriteString("\n")
	}

	row(units)
	names = append(names, util.MapSlice(fields, config.FieldDefinition.DisplayName)...)
	row(names)
}
