// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pibenchfmt

import "regexp"

// An OptionsParser extracts the "Benchmark Options" section of a
// report.
//
// The section has one fixed layout:
//
//	Benchmark Options:
//	    Target: /path/to/libtree_pibench_wrapper.so
//	    # Records: 10000000
//	    # Operations: 10000000
//	    # Threads: 1
//	    Sampling: 1000 ms
//	    Latency: 0.1
//	    Key prefix:
//	    Key size: 8
//	    Value size: 8
//	    Random seed: 1729
//	    Key distribution: UNIFORM
//	    Scan size: 100
//	    Operations ratio:
//	        Read: 0.2
//	        Insert: 0.8
//	        Update: 0
//	        Delete: 0
//	        Scan: 0
//
// "Target", "Key prefix" and "Scan size" are optional, as are the "#"
// markers. The target and key prefix are the rest of their line and
// may contain spaces. Unrelated lines may appear after "Target", after
// "Latency", after "Key prefix" and before "Read"; everywhere else the
// labels must follow each other in this order.
type OptionsParser struct {
	re *regexp.Regexp
}

// NewOptionsParser returns an OptionsParser with its pattern
// compiled.
func NewOptionsParser() *OptionsParser {
	const count = `(?:#` + hspace + `)?`
	pat := `(?:` + lineField("Target", "target") + gap + `)?` +
		count + field("Records", "records") + `\s+` +
		count + field("Operations", "operations") + `\s+` +
		count + field("Threads", "threads") + `\s+` +
		`Sampling:` + hspace + `(?P<sampling>\S*?)` + hspace + `ms\s+` +
		field("Latency", "latency") +
		gap +
		`(?:` + lineField("Key prefix", "key_prefix") + gap + `)?` +
		field("Key size", "key_size") + `\s+` +
		field("Value size", "value_size") + `\s+` +
		field("Random seed", "random_seed") + `\s+` +
		field("Key distribution", "key_distribution") +
		`(?:\s+` + field("Scan size", "scan_size") + `)?` +
		gap +
		`\b` + field("Read", "read") + `\s+` +
		field("Insert", "insert") + `\s+` +
		field("Update", "update") + `\s+` +
		field("Delete", "delete") + `\s+` +
		field("Scan", "scan")
	return &OptionsParser{re: regexp.MustCompile(pat)}
}

// Parse extracts the options section of text.
//
// It returns a *PatternError if the section is missing or malformed, a
// *NumberError if a value cannot be converted or a proportion is
// outside [0, 1], and a *DistributionError for an unknown key
// distribution.
func (p *OptionsParser) Parse(text string) (BenchmarkOptions, error) {
	m, ok := findSubmatch(p.re, text)
	if !ok {
		return BenchmarkOptions{}, &PatternError{Section: "options"}
	}

	d := decoder{m: m}
	o := BenchmarkOptions{
		Target:     d.str("target"),
		Records:    d.int32("records", "Records"),
		Operations: d.int32("operations", "Operations"),
		Threads:    d.int32("threads", "Threads"),
		SamplingMS: d.int32("sampling", "Sampling"),
		Latency:    d.optionFloat("latency", "Latency"),
		KeyPrefix:  d.str("key_prefix"),
		KeySize:    d.int32("key_size", "Key size"),
		ValueSize:  d.int32("value_size", "Value size"),
		RandomSeed: d.int32("random_seed", "Random seed"),
	}
	if d.err != nil {
		return BenchmarkOptions{}, d.err
	}
	dist, err := ParseKeyDistribution(d.str("key_distribution"))
	if err != nil {
		return BenchmarkOptions{}, err
	}
	o.Distribution = dist
	o.ScanSize = d.optInt32("scan_size", "Scan size")
	o.Read = d.proportion("read", "Read")
	o.Insert = d.proportion("insert", "Insert")
	o.Update = d.proportion("update", "Update")
	o.Delete = d.proportion("delete", "Delete")
	o.Scan = d.proportion("scan", "Scan")
	if d.err != nil {
		return BenchmarkOptions{}, d.err
	}
	return o, nil
}
