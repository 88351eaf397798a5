// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pibenchfmt extracts typed records from the plain-text
// reports printed by the PiBench key-value store benchmark.
//
// A report has a configuration section ("Benchmark Options:") and a
// results section ("Overview:", an optional "PCM Metrics:" block and
// an optional "Latencies" block). OptionsParser, ResultsParser and
// LatencyParser each scan a complete report for their own section;
// Parser combines them into a ReportData.
//
// Parsers compile their patterns once when constructed and hold no
// mutable state afterwards, so a single Parser may be shared by any
// number of goroutines. Extraction either produces a fully populated
// record or returns one of the errors described in errors.go; it
// never produces a partially filled record.
//
// Writer renders a ReportData back into the report layout, which is
// useful for normalizing reports and for tests.
package pibenchfmt

import (
	"fmt"
	"strconv"
)

// A KeyDistribution is the pattern used to pick keys during a
// benchmark workload.
type KeyDistribution int

const (
	Uniform KeyDistribution = iota
	Zipfian
)

var distributionNames = [...]string{
	Uniform: "UNIFORM",
	Zipfian: "ZIPFIAN",
}

// ParseKeyDistribution maps the report spelling of a distribution to
// its KeyDistribution. Unknown names return a *DistributionError.
func ParseKeyDistribution(text string) (KeyDistribution, error) {
	for d, name := range distributionNames {
		if text == name {
			return KeyDistribution(d), nil
		}
	}
	return 0, &DistributionError{Text: text}
}

// String returns the report spelling of d, such as "UNIFORM".
func (d KeyDistribution) String() string {
	if d < 0 || int(d) >= len(distributionNames) {
		return "KeyDistribution(" + strconv.Itoa(int(d)) + ")"
	}
	return distributionNames[d]
}

func (d KeyDistribution) MarshalText() ([]byte, error) {
	if d < 0 || int(d) >= len(distributionNames) {
		return nil, fmt.Errorf("invalid key distribution %d", int(d))
	}
	return []byte(distributionNames[d]), nil
}

func (d *KeyDistribution) UnmarshalText(text []byte) error {
	v, err := ParseKeyDistribution(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// BenchmarkOptions is the configuration a benchmark was run with.
type BenchmarkOptions struct {
	// Target is the wrapper library under test. It is "" if the
	// report does not name one.
	Target string `json:"target,omitempty"`

	Records    int32 `json:"records"`
	Operations int32 `json:"operations"`
	Threads    int32 `json:"threads"`

	// SamplingMS is the throughput sampling interval in
	// milliseconds.
	SamplingMS int32 `json:"sampling_ms"`

	// Latency is the fraction of operations whose latency is
	// sampled.
	Latency float64 `json:"latency"`

	KeyPrefix    string          `json:"key_prefix,omitempty"`
	KeySize      int32           `json:"key_size"`
	ValueSize    int32           `json:"value_size"`
	RandomSeed   int32           `json:"random_seed"`
	Distribution KeyDistribution `json:"distribution"`

	// ScanSize is nil if the report has no "Scan size" line.
	ScanSize *int32 `json:"scan_size,omitempty"`

	// Workload mix. Each proportion is in [0, 1]. They are not
	// required to sum to 1, since reports round them.
	Read   float64 `json:"read"`
	Insert float64 `json:"insert"`
	Update float64 `json:"update"`
	Delete float64 `json:"delete"`
	Scan   float64 `json:"scan"`
}

// ProportionSum returns the sum of the five workload proportions.
func (o *BenchmarkOptions) ProportionSum() float64 {
	return o.Read + o.Insert + o.Update + o.Delete + o.Scan
}

// LatencyResults summarizes the sampled per-operation latency
// histogram. Values are in the report's unit.
type LatencyResults struct {
	Min     uint64 `json:"min"`
	P50     uint64 `json:"p50"`
	P90     uint64 `json:"p90"`
	P99     uint64 `json:"p99"`
	P99_9   uint64 `json:"p99_9"`
	P99_99  uint64 `json:"p99_99"`
	P99_999 uint64 `json:"p99_999"`
	Max     uint64 `json:"max"`
}

// Points returns the latency bounds in increasing percentile order,
// together with their report labels.
func (l *LatencyResults) Points() (labels []string, values []uint64) {
	return append([]string(nil), latencyLabels[:]...), []uint64{l.Min, l.P50, l.P90, l.P99, l.P99_9, l.P99_99, l.P99_999, l.Max}
}

// Validate reports whether the bounds are non-decreasing from Min to
// Max. It returns an *OrderError for the first pair out of order.
// Parsing does not call Validate.
func (l *LatencyResults) Validate() error {
	labels, values := l.Points()
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			return &OrderError{
				Lower: labels[i-1], LowerValue: values[i-1],
				Upper: labels[i], UpperValue: values[i],
			}
		}
	}
	return nil
}

// BenchmarkResults is the outcome of one benchmark run.
type BenchmarkResults struct {
	LoadTimeMS float64 `json:"load_time_ms"`
	RunTimeMS  float64 `json:"run_time_ms"`
	Throughput float64 `json:"throughput"` // ops/s

	// Hardware counters. A nil counter was not reported by the
	// platform, which is not the same as a zero count.
	L3Misses   *uint64 `json:"l3_misses,omitempty"`
	DRAMReads  *uint64 `json:"dram_reads,omitempty"`
	DRAMWrites *uint64 `json:"dram_writes,omitempty"`
	NVMReads   *uint64 `json:"nvm_reads,omitempty"`
	NVMWrites  *uint64 `json:"nvm_writes,omitempty"`

	// Latency is nil if latency sampling was not enabled.
	Latency *LatencyResults `json:"latency,omitempty"`
}

// Counters returns the hardware counters in report order, together
// with their report labels.
func (r *BenchmarkResults) Counters() (labels []string, values []*uint64) {
	return append([]string(nil), counterLabels[:]...), []*uint64{r.L3Misses, r.DRAMReads, r.DRAMWrites, r.NVMReads, r.NVMWrites}
}

// ReportData is one fully parsed PiBench report.
type ReportData struct {
	Options BenchmarkOptions `json:"options"`
	Results BenchmarkResults `json:"results"`
}

// Clone makes a copy of r that shares no state with r.
func (r *ReportData) Clone() *ReportData {
	r2 := *r
	if r.Options.ScanSize != nil {
		v := *r.Options.ScanSize
		r2.Options.ScanSize = &v
	}
	res := &r2.Results
	for _, p := range []**uint64{&res.L3Misses, &res.DRAMReads, &res.DRAMWrites, &res.NVMReads, &res.NVMWrites} {
		if *p != nil {
			v := **p
			*p = &v
		}
	}
	if res.Latency != nil {
		l := *res.Latency
		res.Latency = &l
	}
	return &r2
}
