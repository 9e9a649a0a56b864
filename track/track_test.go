// track/track_test.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package track

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func TestDetect(t *testing.T) {
	for _, c := range []struct {
		src  string
		want FileType
	}{
		{"Pilot,Tail Number\nme,N12345\n", CSVFile},
		{`<?xml version="1.0" encoding="UTF-8"?>` + "\n<kml xmlns=\"http://www.opengis.net/kml/2.2\">", KMLFile},
		{`<?xml version="1.0"?>` + "\n<gpx version=\"1.1\">", GPXFile},
		{"  <kml>", KMLFile},
	} {
		got, err := Detect(bufio.NewReader(strings.NewReader(c.src)))
		if err != nil {
			t.Errorf("%q: unexpected error: %v", c.src, err)
		} else if got != c.want {
			t.Errorf("%q: got %v, want %v", c.src, got, c.want)
		}
	}

	for _, src := range []string{"", `<?xml version="1.0"?><unrelated/>`} {
		if _, err := Detect(bufio.NewReader(strings.NewReader(src))); err == nil {
			t.Errorf("%q: no error returned", src)
		}
	}
}

func TestOpenGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "track.csv.gz")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte("hello, gzip")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	var buf [64]byte
	n, _ := r.Read(buf[:])
	if got := string(buf[:n]); got != "hello, gzip" {
		t.Errorf("got %q", got)
	}

	// A .gz path that isn't actually gzip is a format error.
	bad := filepath.Join(dir, "bad.csv.gz")
	if err := os.WriteFile(bad, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = Open(bad)
	var format *FormatError
	if !errors.As(err, &format) {
		t.Errorf("got %v, expected FormatError", err)
	}
}

func TestParserFor(t *testing.T) {
	for _, ftype := range []FileType{CSVFile, KMLFile, GPXFile} {
		p, ok := ParserFor(ftype)
		if !ok {
			t.Errorf("%v: no parser", ftype)
		} else if p.FileType() != ftype {
			t.Errorf("%v: parser reports %v", ftype, p.FileType())
		}
	}
	if _, ok := ParserFor(UnknownFile); ok {
		t.Error("unexpected parser for unknown file type")
	}
}
