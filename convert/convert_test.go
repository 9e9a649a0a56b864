// convert/convert_test.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package convert

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/fdr-tools/fdrconv/config"
	"github.com/fdr-tools/fdrconv/expr"
)

const testCSV = `Pilot,Tail Number,Start Time,End Time,Total Duration
Jane Doe,N12345,1700000000000,1700003600000,3600
Timestamp,Latitude,Longitude,Altitude,Course,Speed,Bank,Pitch
1700000000,37.461,-122.115,1210.5,213.4,95.2,1.1,0.4
1700000001,37.462,-122.116,1220.0,214.0,96.0,1.2,0.5
`

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConvertDefaults(t *testing.T) {
	in := writeInput(t, "flight.csv", testCSV)
	outDir := t.TempDir()

	out, err := Convert(in, Options{Overrides: config.Overrides{OutPath: outDir}})
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(outDir, "flight.fdr"); out != want {
		t.Errorf("output path: got %q, want %q", out, want)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)

	if !strings.Contains(text, "ACFT, "+config.DefaultAircraft) {
		t.Error("default aircraft missing from header")
	}
	if !strings.Contains(text, "TAIL, N12345") {
		t.Error("tail missing from header")
	}

	var dataRows int
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "22:13:") {
			dataRows++
		}
	}
	if dataRows != 2 {
		t.Errorf("got %d data rows, expected 2", dataRows)
	}
}

func TestConvertGzipInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "flight.csv.gz")
	f, err := os.Create(in)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(testCSV)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	out, err := Convert(in, Options{Overrides: config.Overrides{OutPath: dir}})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(out) != "flight.fdr" {
		t.Errorf("output name: got %q", filepath.Base(out))
	}
}

func TestConvertFieldExpression(t *testing.T) {
	cfg, err := config.Parse(strings.NewReader(
		"[defaults]\nDREF sim/test/alt_rounded = round({ALTMSL}, 0), 1.0, AltRnd\n"), "test.conf")
	if err != nil {
		t.Fatal(err)
	}

	in := writeInput(t, "flight.csv", testCSV)
	outDir := t.TempDir()
	out, err := Convert(in, Options{Config: cfg, Overrides: config.Overrides{OutPath: outDir}})
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, "AltRnd") {
		t.Error("field column name missing")
	}
	// round(1210.5, 0) rounds half away from zero.
	if !strings.Contains(text, "1211.000000") {
		t.Error("evaluated field value missing from data rows")
	}
}

func TestConvertUnknownPlaceholder(t *testing.T) {
	cfg, err := config.Parse(strings.NewReader(
		"[defaults]\nDREF sim/test/bogus = {NotAField}\n"), "test.conf")
	if err != nil {
		t.Fatal(err)
	}

	in := writeInput(t, "flight.csv", testCSV)
	outDir := t.TempDir()

	_, err = Convert(in, Options{Config: cfg, Overrides: config.Overrides{OutPath: outDir}})
	var field *FieldError
	if !errors.As(err, &field) {
		t.Fatalf("got %v, expected FieldError", err)
	}
	var unknown *expr.UnknownPlaceholderError
	if !errors.As(err, &unknown) || unknown.Name != "NotAField" {
		t.Fatalf("got %v, expected UnknownPlaceholderError for NotAField", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("output directory not empty after failed conversion: %v", entries)
	}
}

func TestConvertMalformedInput(t *testing.T) {
	in := writeInput(t, "flight.csv", "this is not a track log\n")
	_, err := Convert(in, Options{Overrides: config.Overrides{OutPath: t.TempDir()}})
	if err == nil {
		t.Fatal("expected an error for malformed input")
	}
}

func TestOutputPath(t *testing.T) {
	for _, c := range []struct {
		outDir, in, want string
	}{
		{"out", "flight.csv", filepath.Join("out", "flight.fdr")},
		{"out", "flight.kml", filepath.Join("out", "flight.fdr")},
		{"out", filepath.Join("some", "dir", "flight.csv.gz"), filepath.Join("out", "flight.fdr")},
		{".", "flight.CSV", "flight.fdr"},
	} {
		if got := OutputPath(c.outDir, c.in); got != c.want {
			t.Errorf("OutputPath(%q, %q) = %q, want %q", c.outDir, c.in, got, c.want)
		}
	}
}
