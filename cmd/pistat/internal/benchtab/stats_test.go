// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchtab

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	check := func(t *testing.T, xs []float64, wantCenter, wantLo, wantHi float64, wantWarn bool) {
		t.Helper()
		s := summarize(xs, 0.95)
		if s.Center != wantCenter || s.Lo != wantLo || s.Hi != wantHi {
			t.Errorf("summarize(%v) = %v [%v, %v], want %v [%v, %v]", xs, s.Center, s.Lo, s.Hi, wantCenter, wantLo, wantHi)
		}
		if gotWarn := len(s.Warnings) > 0; gotWarn != wantWarn {
			t.Errorf("summarize(%v) warnings = %v, want warning %v", xs, s.Warnings, wantWarn)
		}
	}
	inf := math.Inf(1)

	t.Run("six", func(t *testing.T) {
		// Six samples are just enough for [min, max] at 95%.
		check(t, []float64{6, 1, 5, 2, 4, 3}, 3.5, 1, 6, false)
	})
	t.Run("small", func(t *testing.T) {
		check(t, []float64{1, 2, 3}, 2, -inf, inf, true)
	})
	t.Run("one", func(t *testing.T) {
		check(t, []float64{7}, 7, -inf, inf, true)
	})
	t.Run("large", func(t *testing.T) {
		// For n=20, the interval between the 6th and 15th order
		// statistics covers the median with probability 0.959.
		var xs []float64
		for i := 1; i <= 20; i++ {
			xs = append(xs, float64(i))
		}
		check(t, xs, 10.5, 6, 15, false)
	})
}

func TestMinSamples(t *testing.T) {
	for _, test := range []struct {
		level float64
		ci    int
		mwu   int
	}{
		{0.05, 6, 4},
		{0.5, 2, 2},
		{0.01, 8, 5},
	} {
		if got := minCISamples(1 - test.level); got != test.ci {
			t.Errorf("minCISamples(%v) = %d, want %d", 1-test.level, got, test.ci)
		}
		if got := minMWUSamples(test.level); got != test.mwu {
			t.Errorf("minMWUSamples(%v) = %d, want %d", test.level, got, test.mwu)
		}
	}
}

func TestPctRangeString(t *testing.T) {
	inf := math.Inf(1)
	for _, test := range []struct {
		s    Summary
		want string
	}{
		{Summary{Center: 100, Lo: 98, Hi: 103}, "3%"},
		{Summary{Center: 100, Lo: 90, Hi: 101}, "10%"},
		{Summary{Center: 5, Lo: 5, Hi: 5}, "0%"},
		{Summary{Center: 5, Lo: -inf, Hi: inf}, "∞"},
		{Summary{Center: 0, Lo: -1, Hi: 1}, "?"},
	} {
		if got := test.s.PctRangeString(); got != test.want {
			t.Errorf("%+v.PctRangeString() = %q, want %q", test.s, got, test.want)
		}
	}
}

func TestCompare(t *testing.T) {
	old := []float64{1, 2, 3, 4, 5, 6}
	new := []float64{11, 12, 13, 14, 15, 16}

	c := compare(old, new, 0.05)
	// Complete separation of two samples of 6 has exact two-sided
	// p = 2/C(12, 6).
	if want := 2.0 / 924; math.Abs(c.P-want) > 1e-9 {
		t.Errorf("p = %v, want %v", c.P, want)
	}
	if !c.Significant() || len(c.Warnings) != 0 {
		t.Errorf("want significant comparison without warnings, got %+v", c)
	}
	if got, want := c.String(), "p=0.002 n=6"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := c.FormatDelta(100, 110), "+10.00%"; got != want {
		t.Errorf("FormatDelta = %q, want %q", got, want)
	}
	if got, want := c.FormatDelta(0, 110), "?"; got != want {
		t.Errorf("FormatDelta from zero = %q, want %q", got, want)
	}

	// Identical samples never differ.
	same := []float64{5, 5, 5, 5}
	c = compare(same, same, 0.05)
	if c.P != 1 || c.Significant() || len(c.Warnings) != 0 {
		t.Errorf("equal samples: got %+v", c)
	}
	if got, want := c.FormatDelta(5, 5), "~"; got != want {
		t.Errorf("FormatDelta = %q, want %q", got, want)
	}

	// Three samples each can't reach p < 0.05.
	c = compare(old[:3], new[:2], 0.05)
	if c.Significant() || len(c.Warnings) != 1 {
		t.Errorf("small samples: want one warning, got %+v", c)
	}
	if got, want := c.String(), "p=0.200 n=3+2"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
