// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchtab

import (
	"fmt"
	"strings"

	"github.com/pibench/perf/pibenchfmt"
)

// A Metric is one measurement extracted from each report. Each
// Metric becomes its own table.
type Metric struct {
	// Name is the name used to select the metric, such as
	// "throughput" or "p99.9".
	Name string

	// Unit is the unit of values returned by Value, as it appears
	// in the report. Tables tidy it with benchunit.Tidy.
	Unit string

	// HigherIsBetter is true if an increase is an improvement.
	HigherIsBetter bool

	// Value extracts the metric from r. It returns false if r
	// doesn't report this metric.
	Value func(r *pibenchfmt.ReportData) (float64, bool)
}

// Metrics lists every known metric in report order.
var Metrics = []*Metric{
	{"load-time", "milliseconds", false, func(r *pibenchfmt.ReportData) (float64, bool) {
		return r.Results.LoadTimeMS, true
	}},
	{"run-time", "milliseconds", false, func(r *pibenchfmt.ReportData) (float64, bool) {
		return r.Results.RunTimeMS, true
	}},
	{"throughput", "ops/s", true, func(r *pibenchfmt.ReportData) (float64, bool) {
		return r.Results.Throughput, true
	}},
	counter("l3-misses", "misses", func(r *pibenchfmt.BenchmarkResults) *uint64 { return r.L3Misses }),
	counter("dram-reads", "bytes", func(r *pibenchfmt.BenchmarkResults) *uint64 { return r.DRAMReads }),
	counter("dram-writes", "bytes", func(r *pibenchfmt.BenchmarkResults) *uint64 { return r.DRAMWrites }),
	counter("nvm-reads", "bytes", func(r *pibenchfmt.BenchmarkResults) *uint64 { return r.NVMReads }),
	counter("nvm-writes", "bytes", func(r *pibenchfmt.BenchmarkResults) *uint64 { return r.NVMWrites }),
	latency("min", 0),
	latency("p50", 1),
	latency("p90", 2),
	latency("p99", 3),
	latency("p99.9", 4),
	latency("p99.99", 5),
	latency("p99.999", 6),
	latency("max", 7),
}

func counter(name, unit string, get func(*pibenchfmt.BenchmarkResults) *uint64) *Metric {
	return &Metric{name, unit, false, func(r *pibenchfmt.ReportData) (float64, bool) {
		v := get(&r.Results)
		if v == nil {
			return 0, false
		}
		return float64(*v), true
	}}
}

func latency(name string, idx int) *Metric {
	return &Metric{name, "ns", false, func(r *pibenchfmt.ReportData) (float64, bool) {
		if r.Results.Latency == nil {
			return 0, false
		}
		_, vals := r.Results.Latency.Points()
		return float64(vals[idx]), true
	}}
}

// LookupMetric returns the Metric called name, or nil.
func LookupMetric(name string) *Metric {
	for _, m := range Metrics {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// ParseMetrics parses a comma-separated list of metric names.
// "all" selects every metric.
func ParseMetrics(list string) ([]*Metric, error) {
	var out []*Metric
	seen := make(map[*Metric]bool)
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if name == "all" {
			return Metrics, nil
		}
		m := LookupMetric(name)
		if m == nil {
			var names []string
			for _, m := range Metrics {
				names = append(names, m.Name)
			}
			return nil, fmt.Errorf("unknown metric %q (known metrics: %s)", name, strings.Join(names, ", "))
		}
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no metrics selected")
	}
	return out, nil
}
