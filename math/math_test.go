// math/math_test.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
	"testing"
)

func TestNormalizeHeading(t *testing.T) {
	for _, c := range []struct{ h, want float64 }{
		{0, 0},
		{360, 0},
		{370, 10},
		{-10, 350},
		{-350, 10},
		{720, 0},
		{359.5, 359.5},
	} {
		if got := NormalizeHeading(c.h); gomath.Abs(got-c.want) > 1e-9 {
			t.Errorf("NormalizeHeading(%v) = %v, want %v", c.h, got, c.want)
		}
	}
}

func TestHeadingDifference(t *testing.T) {
	for _, c := range []struct{ a, b, want float64 }{
		{10, 350, 20},
		{350, 10, 20},
		{0, 180, 180},
		{90, 90, 0},
	} {
		if got := HeadingDifference(c.a, c.b); gomath.Abs(got-c.want) > 1e-9 {
			t.Errorf("HeadingDifference(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestNMDistance(t *testing.T) {
	// One degree of latitude is 60nm.
	d := NMDistance(40, -75, 41, -75)
	if gomath.Abs(d-60) > 0.5 {
		t.Errorf("one degree latitude: got %v nm, expected ~60", d)
	}

	if d := NMDistance(40, -75, 40, -75); d != 0 {
		t.Errorf("zero distance: got %v", d)
	}
}

func TestHeading(t *testing.T) {
	if h := Heading(40, -75, 41, -75); HeadingDifference(h, 0) > 0.1 {
		t.Errorf("due north: got %v", h)
	}
	if h := Heading(40, -75, 40, -74); HeadingDifference(h, 90) > 0.5 {
		t.Errorf("due east: got %v", h)
	}
	if h := Heading(40, -75, 39, -75); HeadingDifference(h, 180) > 0.1 {
		t.Errorf("due south: got %v", h)
	}
}
