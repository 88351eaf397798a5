// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pibenchfmt

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// A Writer writes reports in the PiBench text layout.
type Writer struct {
	w   io.Writer
	buf bytes.Buffer
	n   int
}

// NewWriter returns a writer that writes reports to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes r to w. Optional parts of r that are absent (target,
// scan size, counters, latency) are omitted, so that parsing the
// output yields a ReportData equal to r. Reports after the first are
// separated by a blank line.
//
// Write fails without writing anything if r has no report
// representation that parses back to r: a floating-point field that is
// infinite or NaN, a proportion outside [0, 1], an unknown key
// distribution, or a target or key prefix that spans lines or has
// leading or trailing blanks.
func (w *Writer) Write(r *ReportData) error {
	if err := checkWritable(r); err != nil {
		return err
	}

	o, res := &r.Options, &r.Results
	if w.n > 0 {
		w.buf.WriteByte('\n')
	}
	w.writeOptions(o)
	w.writeResults(res)
	w.n++

	// Writes to the buffer can't fail, so only the flush can.
	_, err := w.w.Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}

func checkWritable(r *ReportData) error {
	o, res := &r.Options, &r.Results
	for _, v := range []float64{o.Latency, o.Read, o.Insert, o.Update, o.Delete, o.Scan, res.LoadTimeMS, res.RunTimeMS, res.Throughput} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return fmt.Errorf("cannot write non-finite value %v", v)
		}
	}
	for i, v := range []float64{o.Read, o.Insert, o.Update, o.Delete, o.Scan} {
		if !(0 <= v && v <= 1) {
			return fmt.Errorf("cannot write %s proportion %v outside [0, 1]", proportionLabels[i], v)
		}
	}
	if _, err := o.Distribution.MarshalText(); err != nil {
		return fmt.Errorf("cannot write %w", err)
	}
	for _, f := range []struct{ label, val string }{{"target", o.Target}, {"key prefix", o.KeyPrefix}} {
		if strings.ContainsAny(f.val, "\r\n") {
			return fmt.Errorf("cannot write %s %q: contains a line break", f.label, f.val)
		}
		if strings.Trim(f.val, " \t") != f.val {
			return fmt.Errorf("cannot write %s %q: leading or trailing blanks", f.label, f.val)
		}
	}
	return nil
}

var proportionLabels = [...]string{"Read", "Insert", "Update", "Delete", "Scan"}

func (w *Writer) writeOptions(o *BenchmarkOptions) {
	b := &w.buf
	b.WriteString("Benchmark Options:\n")
	if o.Target != "" {
		fmt.Fprintf(b, "    Target: %s\n", o.Target)
	}
	fmt.Fprintf(b, "    # Records: %d\n", o.Records)
	fmt.Fprintf(b, "    # Operations: %d\n", o.Operations)
	fmt.Fprintf(b, "    # Threads: %d\n", o.Threads)
	fmt.Fprintf(b, "    Sampling: %d ms\n", o.SamplingMS)
	fmt.Fprintf(b, "    Latency: %s\n", formatFloat(o.Latency))
	fmt.Fprintf(b, "    Key prefix: %s\n", o.KeyPrefix)
	fmt.Fprintf(b, "    Key size: %d\n", o.KeySize)
	fmt.Fprintf(b, "    Value size: %d\n", o.ValueSize)
	fmt.Fprintf(b, "    Random seed: %d\n", o.RandomSeed)
	fmt.Fprintf(b, "    Key distribution: %s\n", o.Distribution)
	if o.ScanSize != nil {
		fmt.Fprintf(b, "    Scan size: %d\n", *o.ScanSize)
	}
	b.WriteString("    Operations ratio:\n")
	fmt.Fprintf(b, "        Read: %s\n", formatFloat(o.Read))
	fmt.Fprintf(b, "        Insert: %s\n", formatFloat(o.Insert))
	fmt.Fprintf(b, "        Update: %s\n", formatFloat(o.Update))
	fmt.Fprintf(b, "        Delete: %s\n", formatFloat(o.Delete))
	fmt.Fprintf(b, "        Scan: %s\n", formatFloat(o.Scan))
}

func (w *Writer) writeResults(r *BenchmarkResults) {
	b := &w.buf
	b.WriteString("Overview:\n")
	fmt.Fprintf(b, "    Load time: %s milliseconds\n", formatFloat(r.LoadTimeMS))
	fmt.Fprintf(b, "    Run time: %s milliseconds\n", formatFloat(r.RunTimeMS))
	fmt.Fprintf(b, "    Throughput: %s ops/s\n", formatFloat(r.Throughput))

	labels, counters := r.Counters()
	header := false
	for i, c := range counters {
		if c == nil {
			continue
		}
		if !header {
			b.WriteString("PCM Metrics:\n")
			header = true
		}
		fmt.Fprintf(b, "    %s: %d\n", labels[i], *c)
	}

	if r.Latency != nil {
		b.WriteString("Latencies:\n")
		labels, values := r.Latency.Points()
		for i, v := range values {
			fmt.Fprintf(b, "    %s: %d\n", labels[i], v)
		}
	}
}

// formatFloat returns the shortest representation of v that parses
// back to v. The 'g' format always fits the report's float syntax.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
