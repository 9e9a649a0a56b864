// fdr/fdr.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package fdr renders converted flights to the X-Plane FDR v4 text
// format.
package fdr

import (
	"time"

	"github.com/fdr-tools/fdrconv/config"
	"github.com/fdr-tools/fdrconv/expr"
	"github.com/fdr-tools/fdrconv/track"
)

// Row is one output record: a canonical track point plus the evaluated
// extra-field values, in field-definition order.
type Row struct {
	Point  track.CanonicalPoint
	Values []expr.Value
}

// Flight is everything the serializer needs to render one FDR file.
type Flight struct {
	Aircraft string // X-Plane .acf path
	Tail     string
	Date     time.Time
	Summary  string // multi-line flight description for the header
	Fields   []config.FieldDefinition
	Rows     []Row
}
