// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pibenchfmt

import (
	"bytes"
	"math"
	"math/rand"
	"reflect"
	"sort"
	"strings"
	"testing"
)

func TestWriterRoundTrip(t *testing.T) {
	full := &ReportData{Options: wantOptions(), Results: wantResults()}
	full.Results.Latency = wantLatency()

	bare := &ReportData{
		Options: BenchmarkOptions{Records: 1, Operations: 2, Threads: 3, Distribution: Zipfian, Scan: 1},
		Results: BenchmarkResults{LoadTimeMS: 1e-7, RunTimeMS: 3e21, Throughput: 0.5},
	}

	for name, r := range map[string]*ReportData{"full": full, "bare": bare} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewWriter(&buf).Write(r); err != nil {
				t.Fatal(err)
			}
			got, err := Parse(buf.String())
			if err != nil {
				t.Fatalf("parsing written report: %v\n%s", err, buf.String())
			}
			if !reflect.DeepEqual(got, r) {
				t.Errorf("round trip mismatch\ngot  %+v\nwant %+v\n%s", got, r, buf.String())
			}
		})
	}
}

func TestWriterLayout(t *testing.T) {
	r := &ReportData{Options: wantOptions(), Results: wantResults()}
	var buf bytes.Buffer
	if err := NewWriter(&buf).Write(r); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Benchmark Options:\n    Target: /home/hao/coding/bztree/release/libbztree_pibench_wrapper.so\n",
		"    Sampling: 1000 ms\n",
		"    Key distribution: UNIFORM\n    Scan size: 100\n    Operations ratio:\n        Read: 0.2\n",
		"Overview:\n    Load time: 90801.3 milliseconds\n",
		"PCM Metrics:\n    L3 misses: 133342466\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Latencies") {
		t.Errorf("output has latency block but report has none:\n%s", out)
	}

	r.Results.L3Misses, r.Results.DRAMReads, r.Results.DRAMWrites, r.Results.NVMReads, r.Results.NVMWrites = nil, nil, nil, nil, nil
	buf.Reset()
	if err := NewWriter(&buf).Write(r); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "PCM Metrics") {
		t.Errorf("output has counter block but report has none:\n%s", buf.String())
	}
}

func TestWriterSeparator(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	r := &ReportData{Options: wantOptions(), Results: wantResults()}
	for i := 0; i < 2; i++ {
		if err := w.Write(r); err != nil {
			t.Fatal(err)
		}
	}
	if n := strings.Count(buf.String(), "\n\nBenchmark Options:"); n != 1 {
		t.Errorf("want 1 separator, got %d:\n%s", n, buf.String())
	}
}

func TestWriterUnwritable(t *testing.T) {
	for _, test := range []struct {
		name   string
		modify func(r *ReportData)
	}{
		{"+Inf throughput", func(r *ReportData) { r.Results.Throughput = math.Inf(1) }},
		{"-Inf load time", func(r *ReportData) { r.Results.LoadTimeMS = math.Inf(-1) }},
		{"NaN latency", func(r *ReportData) { r.Options.Latency = math.NaN() }},
		{"read above one", func(r *ReportData) { r.Options.Read = 1.5 }},
		{"negative scan", func(r *ReportData) { r.Options.Scan = -0.25 }},
		{"unknown distribution", func(r *ReportData) { r.Options.Distribution = 7 }},
		{"target with newline", func(r *ReportData) { r.Options.Target = "/opt/lib.so\n# Threads: 9" }},
		{"key prefix with CR", func(r *ReportData) { r.Options.KeyPrefix = "user\r" }},
		{"target with trailing space", func(r *ReportData) { r.Options.Target = "/opt/lib.so " }},
		{"key prefix with leading tab", func(r *ReportData) { r.Options.KeyPrefix = "\tuser" }},
	} {
		t.Run(test.name, func(t *testing.T) {
			r := &ReportData{Options: wantOptions(), Results: wantResults()}
			test.modify(r)
			var buf bytes.Buffer
			if err := NewWriter(&buf).Write(r); err == nil {
				t.Errorf("want error")
			}
			if buf.Len() != 0 {
				t.Errorf("wrote %q", buf.String())
			}
		})
	}
}

// randReport returns a random report that the writer can represent.
func randReport(r *rand.Rand) *ReportData {
	var d ReportData
	o := &d.Options
	switch r.Intn(3) {
	case 0:
		o.Target = "/opt/lib" + string(rune('a'+r.Intn(26))) + ".so"
	case 1:
		o.Target = "/opt/my libs/lib" + string(rune('a'+r.Intn(26))) + " v2.so"
	}
	o.Records, o.Operations, o.Threads = r.Int31(), r.Int31(), r.Int31n(256)
	o.SamplingMS = r.Int31n(10000)
	o.Latency = r.Float64()
	switch r.Intn(3) {
	case 0:
		o.KeyPrefix = "k" + string(rune('a'+r.Intn(26)))
	case 1:
		o.KeyPrefix = "user " + string(rune('a'+r.Intn(26))) + ":"
	}
	o.KeySize, o.ValueSize = r.Int31n(4096), r.Int31n(4096)
	o.RandomSeed = r.Int31() - r.Int31()
	o.Distribution = KeyDistribution(r.Intn(2))
	if r.Intn(2) == 0 {
		s := r.Int31n(1000)
		o.ScanSize = &s
	}
	o.Read, o.Insert, o.Update, o.Delete, o.Scan = r.Float64(), r.Float64(), r.Float64(), r.Float64(), r.Float64()

	res := &d.Results
	res.LoadTimeMS = r.ExpFloat64() * 1e5
	res.RunTimeMS = r.ExpFloat64() * 1e5
	res.Throughput = r.NormFloat64() * 1e6
	for _, p := range []**uint64{&res.L3Misses, &res.DRAMReads, &res.DRAMWrites, &res.NVMReads, &res.NVMWrites} {
		if r.Intn(3) != 0 {
			v := r.Uint64()
			*p = &v
		}
	}
	if r.Intn(2) == 0 {
		res.Latency = randLatency(r)
	}
	return &d
}

// randLatency derives latency bounds from a random sample of
// operation latencies, the way the benchmark computes them.
func randLatency(r *rand.Rand) *LatencyResults {
	sample := make([]uint64, 1+r.Intn(5000))
	for i := range sample {
		sample[i] = uint64(r.ExpFloat64() * 5000)
	}
	sort.Slice(sample, func(i, j int) bool { return sample[i] < sample[j] })
	pct := func(p float64) uint64 {
		return sample[int(p*float64(len(sample)-1))]
	}
	return &LatencyResults{
		Min:     sample[0],
		P50:     pct(0.5),
		P90:     pct(0.9),
		P99:     pct(0.99),
		P99_9:   pct(0.999),
		P99_99:  pct(0.9999),
		P99_999: pct(0.99999),
		Max:     sample[len(sample)-1],
	}
}

func TestWriterRandom(t *testing.T) {
	r := rand.New(rand.NewSource(1729))
	var buf bytes.Buffer
	for i := 0; i < 200; i++ {
		want := randReport(r)
		buf.Reset()
		if err := NewWriter(&buf).Write(want); err != nil {
			t.Fatal(err)
		}
		got, err := Parse(buf.String())
		if err != nil {
			t.Fatalf("report %d: %v\n%s", i, err, buf.String())
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("report %d: round trip mismatch\ngot  %+v\nwant %+v\n%s", i, got, want, buf.String())
		}
		if got.Results.Latency != nil {
			if err := got.Results.Latency.Validate(); err != nil {
				t.Fatalf("report %d: %v", i, err)
			}
		}
	}
}
