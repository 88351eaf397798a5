// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Pistat computes statistical summaries and A/B comparisons of PiBench
// reports.
//
// Usage:
//
//	pistat [flags] inputs...
//
// Each input file holds the output of one PiBench run. Typically,
// there are several runs of each configuration before and after some
// change, given as labeled inputs so they group into columns:
//
//	pistat old=run1.txt old=run2.txt ... new=run1.txt new=run2.txt ...
//
// For each metric, pistat prints a table with a row for each thread
// count and a column for each label. Each cell shows the median of the
// metric over the runs in that cell and a 95% confidence interval for
// the median, written as a ± percentage. Every column after the first
// is compared against the first with a Mann-Whitney U-test. If the
// difference is statistically significant, pistat shows the percent
// change; otherwise it shows "~". The p-value and sample sizes follow
// in parentheses. When a table has several rows, a final "geomean"
// row summarizes each column.
//
// For example, with six runs of each of two builds of a tree index:
//
//	             old              new
//	throughput   ops/s            ops/s            vs base
//	1            102.5k ± 2%      112.5k ± 2%      +9.76% (p=0.002 n=6)
//
// Metrics are selected with -metric from: load-time, run-time,
// throughput, l3-misses, dram-reads, dram-writes, nvm-reads,
// nvm-writes, min, p50, p90, p99, p99.9, p99.99, p99.999, and max.
// Reports that lack a metric, such as reports without latency
// sampling, are left out of that metric's table.
//
// # Projections
//
// The -table, -row, and -col flags project reports onto keys and
// accept a comma-separated list of keys, each optionally followed by
// a sort order:
//
//	-row threads@num -col .label,distribution@(UNIFORM ZIPFIAN)
//
// The keys are .label (the input label) and the benchmark options:
// target, records, operations, threads, sampling, latency,
// key-prefix, key-size, value-size, random-seed, distribution,
// scan-size, read, insert, update, delete, and scan. A fixed order in
// parentheses also drops reports whose value is not listed.
//
// If the reports within one cell differ in a key that no projection
// and no -ignore list covers, pistat adds a footnote, since such
// reports probably should not be compared.
//
// # Output formats
//
// With -format csv, pistat writes comma-separated values and sends
// footnotes to standard error with spreadsheet cell references. With
// -format json, it writes one JSON object per table.
//
// # Reports that fail to parse
//
// An input that is not a complete report is skipped with a warning on
// standard error; the remaining inputs are still summarized. An input
// that cannot be read stops pistat.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pibench/perf/benchproc"
	"github.com/pibench/perf/cmd/pistat/internal/benchtab"
	"github.com/pibench/perf/pibenchfmt"
)

const defaultMetrics = "throughput,run-time,load-time,p50,p99,p99.9,max"

func usage(w io.Writer, flags *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(w, `Usage: pistat [flags] inputs...

pistat computes statistical summaries and A/B comparisons of PiBench
reports. It shows metric medians in a table with a row for each thread
count and a column for each input label. If there is more than one
label, it also shows A/B comparisons against the first. If a
difference is likely to be noise, it shows "~".

`)
		flags.PrintDefaults()
	}
}

func main() {
	if err := pistat(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "pistat: %s\n", err)
		os.Exit(1)
	}
}

func pistat(w, wErr io.Writer, args []string) error {
	flags := flag.NewFlagSet("pistat", flag.ContinueOnError)
	flags.SetOutput(wErr)
	flags.Usage = usage(wErr, flags)
	flagTable := flags.String("table", "", "split results into tables by distinct values of `projection`")
	flagRow := flags.String("row", "threads", "split results into rows by distinct values of `projection`")
	flagCol := flags.String("col", ".label", "split results into columns by distinct values of `projection`")
	flagIgnore := flags.String("ignore", "", "ignore variations in `keys`")
	flagMetric := flags.String("metric", defaultMetrics, "summarize the comma-separated `metrics`, or all")
	flagAlpha := flags.Float64("alpha", 0.05, "consider change significant if p < `α`")
	flagConfidence := flags.Float64("confidence", 0.95, "confidence `level` for ranges")
	flagFormat := flags.String("format", "text", "print results in `format`:\n  text - plain text\n  csv  - comma-separated values (warnings will be written to stderr)\n  json - JSON\n")
	flagVerbose := flags.Bool("v", false, "log each input as it is read")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if flags.NArg() == 0 {
		flags.Usage()
		return errors.New("no inputs")
	}

	level := slog.LevelInfo
	if *flagVerbose {
		level = slog.LevelDebug
	}
	logger := newLogger(wErr, level)

	var parser benchproc.ProjectionParser
	var parseErr error
	mustParse := func(name, val string) *benchproc.Schema {
		schema, err := parser.Parse(val)
		if err != nil && parseErr == nil {
			parseErr = fmt.Errorf("parsing %s: %w", name, err)
		}
		return schema
	}
	tableBy := mustParse("-table", *flagTable)
	rowBy := mustParse("-row", *flagRow)
	colBy := mustParse("-col", *flagCol)
	mustParse("-ignore", *flagIgnore)
	residue := parser.Residue()
	if parseErr != nil {
		return parseErr
	}

	metrics, err := benchtab.ParseMetrics(*flagMetric)
	if err != nil {
		return fmt.Errorf("parsing -metric: %w", err)
	}
	if *flagAlpha < 0 || *flagAlpha > 1 {
		return fmt.Errorf("-alpha must be in range [0, 1]")
	}
	if *flagConfidence <= 0 || *flagConfidence >= 1 {
		return fmt.Errorf("-confidence must be in range (0, 1)")
	}
	var format func(t *benchtab.Tables) error
	switch *flagFormat {
	default:
		return fmt.Errorf("-format must be text, csv, or json")
	case "text":
		format = func(t *benchtab.Tables) error { return t.ToText(w) }
	case "csv":
		format = func(t *benchtab.Tables) error { return t.ToCSV(w, wErr) }
	case "json":
		format = func(t *benchtab.Tables) error { return t.ToJSON(w) }
	}

	files := pibenchfmt.Files{Paths: flags.Args(), AllowStdin: true, AllowLabels: true}
	inputs, err := files.ReadAll(context.Background())
	if err != nil {
		return err
	}

	stat := benchtab.NewBuilder(tableBy, rowBy, colBy, residue, metrics)
	for _, f := range inputs {
		if f.Err != nil {
			// Non-fatal report parse error. Warn
			// but keep going.
			logger.Warn("skipping report", "file", f.Path, "err", f.Err)
			continue
		}
		if !stat.Add(f) {
			logger.Debug("report filtered out", "file", f.Path, "label", f.Label)
			continue
		}
		logger.Debug("read report", "file", f.Path, "label", f.Label)
	}

	tables := stat.ToTables(benchtab.TableOpts{
		Confidence: *flagConfidence,
		Alpha:      *flagAlpha,
	})
	return format(tables)
}

// newLogger returns a text logger on w. Timestamps are dropped so
// output is reproducible.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}))
}
