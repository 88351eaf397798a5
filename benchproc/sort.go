// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Less reports whether c comes before o in the sort order implied by
// their schema. It panics if c and o have different schemas.
func (c Config) Less(o Config) bool {
	if c.c.schema != o.c.schema {
		panic("cannot compare Configs from different Schemas")
	}
	return less(c.c.schema.fields, c.c.vals, o.c.vals)
}

func less(fields []Field, a, b []string) bool {
	for _, f := range fields {
		aa, bb := a[f.idx], b[f.idx]
		if aa == bb {
			continue
		}
		if cmp := f.cmp(aa, bb); cmp != 0 {
			return cmp < 0
		}
		// Equal or unordered according to the field, but the
		// strings differ. Configs are == only if their strings
		// are, so fall back to a comparison with the same
		// property.
		return aa < bb
	}
	return false
}

// SortConfigs sorts a slice of Configs using Config.Less.
// All configs must have the same Schema.
func SortConfigs(configs []Config) {
	if len(configs) == 0 {
		return
	}
	fields := commonSchema(configs).fields
	sort.Slice(configs, func(i, j int) bool {
		return less(fields, configs[i].c.vals, configs[j].c.vals)
	})
}

// builtinOrders are the named sort orders.
var builtinOrders = map[string]func(a, b string) int{
	"alpha": strings.Compare,
	"num": func(a, b string) int {
		aa, erra := parseNum(a)
		bb, errb := parseNum(b)
		switch {
		case erra == nil && errb == nil:
			// Sort numerically, and put NaNs after other
			// values.
			if aa < bb || (!math.IsNaN(aa) && math.IsNaN(bb)) {
				return -1
			}
			if aa > bb || (math.IsNaN(aa) && !math.IsNaN(bb)) {
				return 1
			}
			return 0
		case erra != nil && errb != nil:
			return 0
		case erra == nil:
			// Numbers before non-numbers.
			return -1
		}
		return 1
	},
}

const numPrefixes = `KMGTPEZY`

var numRe = regexp.MustCompile(`^([0-9.]+)([k` + numPrefixes + `]i?)?[bB]?$`)

// parseNum parses x as a number, also accepting SI and IEC suffixes
// such as "16k" or "1Mi" that people use in labels.
func parseNum(x string) (float64, error) {
	if v, err := strconv.ParseFloat(x, 64); err == nil {
		return v, nil
	}

	subs := numRe.FindStringSubmatch(x)
	if subs == nil {
		return 0, strconv.ErrSyntax
	}
	v, err := strconv.ParseFloat(subs[1], 64)
	if err != nil {
		return 0, strconv.ErrSyntax
	}
	exp := 0
	if len(subs[2]) > 0 {
		exp = 1 + strings.IndexByte(numPrefixes, strings.ToUpper(subs[2][:1])[0])
	}
	base := 1000.0
	if strings.HasSuffix(subs[2], "i") {
		base = 1024
	}
	return v * math.Pow(base, float64(exp)), nil
}
