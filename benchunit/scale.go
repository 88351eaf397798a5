// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

import (
	"math"
	"strconv"
)

// A Class specifies what metric prefix system to use for a unit.
type Class int

const (
	// Decimal indicates values of a given unit should be scaled
	// by powers of 1000 and use the SI prefixes k, M, G, etc.
	Decimal Class = iota

	// Binary indicates values of a given unit should be scaled by
	// powers of 1024 and use the IEC prefixes Ki, Mi, Gi, etc.
	Binary
)

// ClassOf returns the Class of unit. Units whose (tidied) numerator
// is "B" are Binary; everything else is Decimal.
func ClassOf(unit string) Class {
	tidied, _ := Tidy(unit)
	p := newParser(tidied)
	for p.next() {
		if !p.denom && p.tok == "B" {
			return Binary
		}
	}
	return Decimal
}

type prefix struct {
	factor float64
	suffix string
}

var decimalPrefixes = []prefix{
	{1e18, "E"}, {1e15, "P"}, {1e12, "T"}, {1e9, "G"}, {1e6, "M"}, {1e3, "k"}, {1, ""},
	{1e-3, "m"}, {1e-6, "µ"}, {1e-9, "n"}, {1e-12, "p"},
}

var binaryPrefixes = []prefix{
	{1 << 60, "Ei"}, {1 << 50, "Pi"}, {1 << 40, "Ti"}, {1 << 30, "Gi"}, {1 << 20, "Mi"}, {1 << 10, "Ki"}, {1, ""},
}

// A Scaler formats numbers in a fixed scale.
type Scaler struct {
	Prec   int     // Digits after the decimal point
	Factor float64 // Unscaled value of 1 Suffix (e.g., 1k => 1000)
	Suffix string  // Unit prefix (e.g., "k", "Mi")
}

// Format formats val and appends the unit prefix according to the
// Scaler.
func (s Scaler) Format(val float64) string {
	buf := make([]byte, 0, 20)
	buf = strconv.AppendFloat(buf, val/s.Factor, 'f', s.Prec, 64)
	buf = append(buf, s.Suffix...)
	return string(buf)
}

// Scale formats val using the largest prefix that keeps it at least
// 1, with four significant digits.
func Scale(val float64, cls Class) string {
	return CommonScale([]float64{val}, cls).Format(val)
}

// CommonScale returns a common Scaler to apply to all values in nums.
// The scale is chosen so that the largest magnitude in nums is at
// least 1 (where a prefix exists), and the precision so that it shows
// four significant digits. Infinities and NaNs are ignored. If nums
// has no non-zero finite value, CommonScale returns a Scaler with no
// prefix and no fraction digits.
func CommonScale(nums []float64, cls Class) Scaler {
	max := 0.0
	for _, x := range nums {
		if math.IsInf(x, 0) || math.IsNaN(x) {
			continue
		}
		max = math.Max(max, math.Abs(x))
	}
	if max == 0 {
		return Scaler{Prec: 0, Factor: 1}
	}

	prefixes := decimalPrefixes
	if cls == Binary && max >= 1 {
		prefixes = binaryPrefixes
	}
	p := prefixes[len(prefixes)-1]
	for _, pre := range prefixes {
		if max >= pre.factor {
			p = pre
			break
		}
	}

	var prec int
	switch scaled := max / p.factor; {
	case scaled >= 100:
		prec = 1
	case scaled >= 10:
		prec = 2
	default:
		prec = 3
	}
	return Scaler{Prec: prec, Factor: p.factor, Suffix: p.suffix}
}
