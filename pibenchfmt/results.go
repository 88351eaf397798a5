// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pibenchfmt

import "regexp"

// counterLabels are the labels of the hardware counter lines, in
// report order.
var counterLabels = [...]string{
	"L3 misses",
	"DRAM Reads (bytes)",
	"DRAM Writes (bytes)",
	"NVM Reads (bytes)",
	"NVM Writes (bytes)",
}

// A ResultsParser extracts the results section of a report:
//
//	Overview:
//	    Load time: 90801.3 milliseconds
//	    Run time: 79192.3672 milliseconds
//	    Throughput: 126274.7969 ops/s
//	PCM Metrics:
//	    L3 misses: 133342466
//	    DRAM Reads (bytes): 4197345472
//	    DRAM Writes (bytes): 3685394624
//	    NVM Reads (bytes): 60347831872
//	    NVM Writes (bytes): 11408209856
//
// The three overview lines are required. Each counter line is
// optional, since not every platform exposes the counters. The
// latency block, if any, is extracted with a LatencyParser.
type ResultsParser struct {
	overview *regexp.Regexp
	counters [len(counterLabels)]*regexp.Regexp
	latency  *LatencyParser
}

// NewResultsParser returns a ResultsParser with its patterns compiled.
func NewResultsParser() *ResultsParser {
	p := &ResultsParser{
		overview: regexp.MustCompile(
			field("Load time", "load_time") + hspace + `milliseconds\s+` +
				field("Run time", "run_time") + hspace + `milliseconds\s+` +
				field("Throughput", "throughput") + hspace + `ops/s`),
		latency: NewLatencyParser(),
	}
	for i, label := range counterLabels {
		p.counters[i] = regexp.MustCompile(`(?m)^` + hspace + field(label, "v"))
	}
	return p
}

// Parse extracts the results section of text.
//
// It returns a *PatternError if the load time, run time or throughput
// line is missing, and a *NumberError for a value that cannot be
// converted. Absent counters are left nil.
func (p *ResultsParser) Parse(text string) (BenchmarkResults, error) {
	m, ok := findSubmatch(p.overview, text)
	if !ok {
		return BenchmarkResults{}, &PatternError{Section: "results"}
	}
	d := decoder{m: m}
	r := BenchmarkResults{
		LoadTimeMS: d.float("load_time", "Load time"),
		RunTimeMS:  d.float("run_time", "Run time"),
		Throughput: d.float("throughput", "Throughput"),
	}
	if d.err != nil {
		return BenchmarkResults{}, d.err
	}

	// Counters follow the overview.
	rest := text[m.end():]
	dsts := []**uint64{&r.L3Misses, &r.DRAMReads, &r.DRAMWrites, &r.NVMReads, &r.NVMWrites}
	for i, re := range p.counters {
		cm, ok := findSubmatch(re, rest)
		if !ok {
			continue
		}
		s, _ := cm.group("v")
		v, err := parseUint64(counterLabels[i], s)
		if err != nil {
			return BenchmarkResults{}, err
		}
		*dsts[i] = &v
	}

	lat, err := p.latency.Parse(text)
	if err != nil {
		return BenchmarkResults{}, err
	}
	r.Latency = lat
	return r, nil
}
