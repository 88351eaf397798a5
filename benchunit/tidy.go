// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

import (
	"strings"
	"sync"
)

type tidyEntry struct {
	tidied string
	factor float64
}

var tidyCache sync.Map // unit string -> *tidyEntry

// tidyWords maps pre-scaled unit words to their base unit and the
// factor that converts a value in the word's unit to the base unit.
var tidyWords = map[string]tidyEntry{
	"ns":           {"sec", 1e-9},
	"us":           {"sec", 1e-6},
	"µs":           {"sec", 1e-6},
	"ms":           {"sec", 1e-3},
	"milliseconds": {"sec", 1e-3},
	"seconds":      {"sec", 1},
	"bytes":        {"B", 1},
	"KB":           {"B", 1e3},
	"MB":           {"B", 1e6},
	"GB":           {"B", 1e9},
}

// Tidy normalizes pre-scaled units like "milliseconds" to "sec" and
// "bytes" to "B". It returns the tidied version of unit and the
// multiplicative factor to convert a value in unit "unit" to a value
// in unit "tidied". For example, PiBench reports run time in
// "milliseconds", so Tidy("milliseconds") returns "sec" and 1e-3.
//
// Only words in the numerator are tidied, so "ops/s" is left alone.
func Tidy(unit string) (tidied string, factor float64) {
	// Fast path for the units PiBench reports.
	switch unit {
	case "milliseconds":
		return "sec", 1e-3
	case "ns":
		return "sec", 1e-9
	case "bytes":
		return "B", 1
	case "ops/s", "sec", "B", "misses":
		return unit, 1
	}

	if tc, ok := tidyCache.Load(unit); ok {
		tc := tc.(*tidyEntry)
		return tc.tidied, tc.factor
	}
	tidied, factor = tidy(unit)
	tidyCache.Store(unit, &tidyEntry{tidied, factor})
	return
}

func tidy(unit string) (tidied string, factor float64) {
	type edit struct {
		pos, len int
		replace  string
	}

	factor = 1
	p := newParser(unit)
	var edits []edit
	for p.next() {
		if p.denom {
			// Don't edit in the denominator.
			continue
		}
		if e, ok := tidyWords[p.tok]; ok {
			edits = append(edits, edit{p.pos, len(p.tok), e.tidied})
			factor *= e.factor
		}
	}
	if len(edits) == 0 {
		return unit, 1
	}
	var b strings.Builder
	last := 0
	for _, e := range edits {
		b.WriteString(unit[last:e.pos])
		b.WriteString(e.replace)
		last = e.pos + e.len
	}
	b.WriteString(unit[last:])
	return b.String(), factor
}
