// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import (
	"fmt"
	"strconv"

	"github.com/pibench/perf/pibenchfmt"
)

// An extractor returns some component of a labeled report as a
// string.
type extractor func(*pibenchfmt.File) string

// keys lists every projectable key in the order they appear in a
// report. This is also the order of residue fields.
var keys = []string{
	".label",
	"target",
	"records", "operations", "threads",
	"sampling", "latency",
	"key-prefix", "key-size", "value-size", "random-seed",
	"distribution", "scan-size",
	"read", "insert", "update", "delete", "scan",
}

var extractors = map[string]extractor{
	".label": func(f *pibenchfmt.File) string { return f.Label },
	"target": options(func(o *pibenchfmt.BenchmarkOptions) string { return o.Target }),

	"records":    options(func(o *pibenchfmt.BenchmarkOptions) string { return fmtInt(o.Records) }),
	"operations": options(func(o *pibenchfmt.BenchmarkOptions) string { return fmtInt(o.Operations) }),
	"threads":    options(func(o *pibenchfmt.BenchmarkOptions) string { return fmtInt(o.Threads) }),
	"sampling":   options(func(o *pibenchfmt.BenchmarkOptions) string { return fmtInt(o.SamplingMS) }),
	"latency":    options(func(o *pibenchfmt.BenchmarkOptions) string { return fmtFloat(o.Latency) }),

	"key-prefix":  options(func(o *pibenchfmt.BenchmarkOptions) string { return o.KeyPrefix }),
	"key-size":    options(func(o *pibenchfmt.BenchmarkOptions) string { return fmtInt(o.KeySize) }),
	"value-size":  options(func(o *pibenchfmt.BenchmarkOptions) string { return fmtInt(o.ValueSize) }),
	"random-seed": options(func(o *pibenchfmt.BenchmarkOptions) string { return fmtInt(o.RandomSeed) }),

	"distribution": options(func(o *pibenchfmt.BenchmarkOptions) string { return o.Distribution.String() }),
	"scan-size": options(func(o *pibenchfmt.BenchmarkOptions) string {
		if o.ScanSize == nil {
			return ""
		}
		return fmtInt(*o.ScanSize)
	}),

	"read":   options(func(o *pibenchfmt.BenchmarkOptions) string { return fmtFloat(o.Read) }),
	"insert": options(func(o *pibenchfmt.BenchmarkOptions) string { return fmtFloat(o.Insert) }),
	"update": options(func(o *pibenchfmt.BenchmarkOptions) string { return fmtFloat(o.Update) }),
	"delete": options(func(o *pibenchfmt.BenchmarkOptions) string { return fmtFloat(o.Delete) }),
	"scan":   options(func(o *pibenchfmt.BenchmarkOptions) string { return fmtFloat(o.Scan) }),
}

// newExtractor returns a function that extracts the component of a
// report named by key. See the package documentation for the list of
// keys.
func newExtractor(key string) (extractor, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("key must not be empty")
	}
	ext, ok := extractors[key]
	if !ok {
		return nil, fmt.Errorf("unknown key %q", key)
	}
	return ext, nil
}

// options lifts an options accessor to an extractor. Files without a
// report project to "".
func options(get func(*pibenchfmt.BenchmarkOptions) string) extractor {
	return func(f *pibenchfmt.File) string {
		if f.Report == nil {
			return ""
		}
		return get(&f.Report.Options)
	}
}

func fmtInt(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
