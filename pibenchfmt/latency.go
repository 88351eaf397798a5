// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pibenchfmt

import "regexp"

// latencyLabels are the labels of the latency block, in order.
var latencyLabels = [...]string{"min", "50%", "90%", "99%", "99.9%", "99.99%", "99.999%", "max"}

// A LatencyParser extracts the optional sampled-latency block of a
// report:
//
//	Latencies (998141 operations observed):
//	    min: 882
//	    50%: 7481
//	    90%: 9121
//	    99%: 43233
//	    99.9%: 51150
//	    99.99%: 69460
//	    99.999%: 16985300
//	    max: 22247728
type LatencyParser struct {
	header *regexp.Regexp
	block  *regexp.Regexp
}

// NewLatencyParser returns a LatencyParser with its patterns compiled.
func NewLatencyParser() *LatencyParser {
	const header = `(?m)^` + hspace + `Latencies\b`
	pat := header + `[^\n]*`
	for i, label := range latencyLabels {
		pat += `\s+` + field(label, groupName(i))
	}
	return &LatencyParser{
		header: regexp.MustCompile(header),
		block:  regexp.MustCompile(pat),
	}
}

func groupName(i int) string {
	return "l" + string(rune('0'+i))
}

// Parse extracts the latency block of text.
//
// If no line of text starts with "Latencies", Parse returns nil and no
// error: latency sampling is optional. If the header is present but is not
// followed by the eight labeled bounds, Parse returns a *PatternError.
// A bound that is not a non-negative integer yields a *NumberError.
func (p *LatencyParser) Parse(text string) (*LatencyResults, error) {
	if !p.header.MatchString(text) {
		return nil, nil
	}
	m, ok := findSubmatch(p.block, text)
	if !ok {
		return nil, &PatternError{Section: "latency"}
	}

	d := decoder{m: m}
	var v [len(latencyLabels)]uint64
	for i, label := range latencyLabels {
		v[i] = d.uint64(groupName(i), label)
	}
	if d.err != nil {
		return nil, d.err
	}
	return &LatencyResults{
		Min:     v[0],
		P50:     v[1],
		P90:     v[2],
		P99:     v[3],
		P99_9:   v[4],
		P99_99:  v[5],
		P99_999: v[6],
		Max:     v[7],
	}, nil
}
