// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchtab presents PiBench reports as comparison tables.
package benchtab

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"strings"

	"github.com/aclements/go-moremath/stats"
	"golang.org/x/sync/errgroup"

	"github.com/pibench/perf/benchproc"
	"github.com/pibench/perf/benchunit"
	"github.com/pibench/perf/pibenchfmt"
)

// A Builder collects reports into a Tables set.
type Builder struct {
	tableBy, rowBy, colBy *benchproc.Schema
	residue               *benchproc.Schema
	metrics               []*Metric

	// tables maps from (tableBy, metric) to table.
	tables map[tableKey]*table
}

type tableKey struct {
	config benchproc.Config
	metric *Metric
}

type table struct {
	// Observed row and col configs within this group. Within the
	// group, we show only the row and col labels for the data in
	// the group, but we sort them according to the global
	// observation order for consistency across groups.
	rows map[benchproc.Config]struct{}
	cols map[benchproc.Config]struct{}

	// cells maps from (row, col) to each cell.
	cells map[TableKey]*cell
}

type cell struct {
	// values is the observed values in this cell, in the metric's
	// tidied unit.
	values []float64
	// configs is the set of residue configs mapped to this cell.
	// It is used to check for settings the projections ignore.
	configs map[benchproc.Config]struct{}
}

// NewBuilder creates a new Builder for collecting reports into
// tables. Each report contributes one value to a table for each
// metric it reports, and results are further split into tables by
// tableBy. Within each table, the values are mapped to cells by rowBy
// and colBy. Any reports within a single cell that vary by residue
// will be reported as warnings.
func NewBuilder(tableBy, rowBy, colBy, residue *benchproc.Schema, metrics []*Metric) *Builder {
	return &Builder{
		tableBy: tableBy, rowBy: rowBy, colBy: colBy, residue: residue,
		metrics: metrics,
		tables:  make(map[tableKey]*table),
	}
}

// Add adds the metrics of report f to the tables in the Builder. It
// returns false if f has no report or is excluded by a projection's
// fixed order.
func (b *Builder) Add(f *pibenchfmt.File) bool {
	if f.Report == nil {
		return false
	}

	// Project the report.
	tableCfg, ok1 := b.tableBy.Project(f)
	rowCfg, ok2 := b.rowBy.Project(f)
	colCfg, ok3 := b.colBy.Project(f)
	residueCfg, ok4 := b.residue.Project(f)
	if !(ok1 && ok2 && ok3 && ok4) {
		return false
	}
	cellCfg := TableKey{rowCfg, colCfg}

	for _, m := range b.metrics {
		val, ok := m.Value(f.Report)
		if !ok {
			continue
		}
		_, factor := benchunit.Tidy(m.Unit)

		// Map to a table.
		k := tableKey{tableCfg, m}
		t := b.tables[k]
		if t == nil {
			t = &table{
				rows:  make(map[benchproc.Config]struct{}),
				cols:  make(map[benchproc.Config]struct{}),
				cells: make(map[TableKey]*cell),
			}
			b.tables[k] = t
		}

		// Map to a cell.
		c := t.cells[cellCfg]
		if c == nil {
			c = &cell{configs: make(map[benchproc.Config]struct{})}
			t.cells[cellCfg] = c
			t.rows[rowCfg] = struct{}{}
			t.cols[colCfg] = struct{}{}
		}

		c.values = append(c.values, val*factor)
		c.configs[residueCfg] = struct{}{}
	}
	return true
}

// TableOpts provides options for constructing the final analysis
// tables from a Builder.
type TableOpts struct {
	// Confidence is the desired confidence level in summary
	// intervals; e.g., 0.95 for 95%.
	Confidence float64

	// Alpha is the significance level for A/B comparisons;
	// e.g., 0.05.
	Alpha float64
}

// Tables is a sequence of report statistic tables.
type Tables struct {
	// Tables is a slice of statistic tables, sorted by table
	// config and then by metric.
	Tables []*Table
	// Configs is a slice of table configs, corresponding 1:1 to
	// the Tables slice.
	Configs []benchproc.Config
}

// ToTables finalizes a Builder into a sequence of statistic tables.
func (b *Builder) ToTables(opts TableOpts) *Tables {
	// Sort tables by config, then by the order metrics were given.
	configSet := make(map[benchproc.Config]struct{})
	for k := range b.tables {
		configSet[k.config] = struct{}{}
	}
	tableCfgs := mapConfigs(configSet)

	// Statistics are CPU-bound, so bound the parallelism.
	var g errgroup.Group
	g.SetLimit(2 * runtime.GOMAXPROCS(-1))

	var tables []*Table
	var configs []benchproc.Config
	for _, tableCfg := range tableCfgs {
		for _, m := range b.metrics {
			cTable, ok := b.tables[tableKey{tableCfg, m}]
			if !ok {
				continue
			}
			unit, _ := benchunit.Tidy(m.Unit)

			// Sort the rows and columns.
			rowCfgs, colCfgs := mapConfigs(cTable.rows), mapConfigs(cTable.cols)
			t := &Table{
				Opts:   opts,
				Metric: m,
				Unit:   unit,
				Rows:   rowCfgs,
				Cols:   colCfgs,
				Cells:  make(map[TableKey]*TableCell),
			}
			tables = append(tables, t)
			configs = append(configs, tableCfg)

			// Create all TableCells first so the second pass
			// can look up baselines.
			for k, cCell := range cTable.cells {
				t.Cells[k] = &TableCell{Sample: cCell.values}
			}

			// Populate cells.
			baselineCfg := colCfgs[0]
			for k, cCell := range cTable.cells {
				cell := t.Cells[k]
				if k.Col != baselineCfg {
					if base, ok := t.Cells[TableKey{k.Row, baselineCfg}]; ok {
						cell.Baseline = base
					}
				}

				cCell := cCell
				g.Go(func() error {
					summarizeCell(cCell, cell, opts)
					return nil
				})
			}
		}
	}
	g.Wait()

	// Add summary rows to each table.
	for _, t := range tables {
		t.SummaryLabel = "geomean"
		t.Summary = make(map[benchproc.Config]*TableSummary)

		// Count the number of baseline rows so we can test if
		// later columns don't match.
		nBase := 0
		baseCol := t.Cols[0]
		for _, row := range t.Rows {
			if _, ok := t.Cells[TableKey{row, baseCol}]; ok {
				nBase++
			}
		}

		for i, col := range t.Cols {
			s := new(TableSummary)
			t.Summary[col] = s
			t, col, isBase := t, col, i == 0
			g.Go(func() error {
				summarizeCol(t, col, s, nBase, isBase)
				return nil
			})
		}
	}
	g.Wait()

	return &Tables{tables, configs}
}

func mapConfigs(m map[benchproc.Config]struct{}) []benchproc.Config {
	var cs []benchproc.Config
	for k := range m {
		cs = append(cs, k)
	}
	benchproc.SortConfigs(cs)
	return cs
}

func summarizeCell(cCell *cell, cell *TableCell, opts TableOpts) {
	cell.Summary = summarize(cell.Sample, opts.Confidence)

	// Baselines are created before any cell is summarized, so
	// their samples are complete.
	if cell.Baseline != nil {
		cell.Comparison = compare(cell.Baseline.Sample, cell.Sample, opts.Alpha)
	}

	// Warn for unprojected settings that vary within this cell.
	nsk := benchproc.NonSingularFields(mapConfigs(cCell.configs))
	if len(nsk) > 0 {
		var warn strings.Builder
		warn.WriteString("reports vary in ")
		for i, field := range nsk {
			if i > 0 {
				warn.WriteString(", ")
			}
			warn.WriteString(field.Name)
		}
		cell.Warnings = append(cell.Warnings, errors.New(warn.String()))
	}
}

func summarizeCol(t *Table, col benchproc.Config, s *TableSummary, nBase int, isBase bool) {
	// This computes the geomean of the per-row ratios rather than
	// the ratio of the column geomeans. They agree when every
	// column has the same rows.
	var summaries, ratios []float64
	badRatio := false
	for _, row := range t.Rows {
		cell, ok := t.Cells[TableKey{row, col}]
		if !ok {
			continue
		}
		summaries = append(summaries, cell.Summary.Center)
		if cell.Baseline != nil {
			var ratio float64
			a, b := cell.Summary.Center, cell.Baseline.Summary.Center
			if a == b {
				// Treat 0/0 as 1.
				ratio = 1
			} else if b == 0 {
				badRatio = true
				// Keep nBase check working.
				ratios = append(ratios, 0)
				continue
			} else {
				ratio = a / b
			}
			ratios = append(ratios, ratio)
		}
	}

	if !isBase && nBase != len(ratios) {
		s.Warnings = append(s.Warnings, fmt.Errorf("row set differs from baseline; geomeans may not be comparable"))
	}

	gm := stats.GeoMean(summaries)
	if math.IsNaN(gm) {
		s.Warnings = append(s.Warnings, fmt.Errorf("summaries must be >0 to compute geomean"))
	} else {
		s.HasSummary = true
		s.Summary = gm
	}

	if !isBase && !badRatio {
		gm := stats.GeoMean(ratios)
		if math.IsNaN(gm) {
			s.Warnings = append(s.Warnings, fmt.Errorf("ratios must be >0 to compute geomean"))
		} else {
			s.HasRatio = true
			s.Ratio = gm
		}
	}
}

// ToText renders t to a textual representation, assuming a
// fixed-width font.
func (t *Tables) ToText(w io.Writer) error {
	return t.printTables(func(hdr string) error {
		_, err := fmt.Fprintf(w, "%s\n", hdr)
		return err
	}, func(table *Table) error {
		return table.ToText(w)
	})
}

// ToCSV returns t to CSV (comma-separated values) format.
//
// Warnings are written to a separate stream so as not to interrupt
// the regular format of the CSV table.
func (t *Tables) ToCSV(w, warnings io.Writer) error {
	o := csv.NewWriter(w)
	row := 1

	err := t.printTables(func(hdr string) error {
		o.Write([]string{hdr})
		row++
		return nil
	}, func(table *Table) error {
		nRows := table.ToCSV(o, row, warnings)
		row += nRows
		return nil
	})
	if err != nil {
		return err
	}
	o.Flush()
	return o.Error()
}

func (t *Tables) printTables(hdr func(string) error, cb func(*Table) error) error {
	if len(t.Tables) == 0 {
		return nil
	}

	var prevConfig benchproc.Config
	fields := t.Configs[0].Schema().Fields()

	for i, table := range t.Tables {
		if i > 0 {
			// Blank line between tables.
			if err := hdr(""); err != nil {
				return err
			}
		}

		// Print table config changes.
		config := t.Configs[i]
		for _, f := range fields {
			val := config.Get(f)
			if prevConfig.IsZero() || val != prevConfig.Get(f) {
				if err := hdr(fmt.Sprintf("%s: %s", f.Name, val)); err != nil {
					return err
				}
			}
		}
		prevConfig = config

		if err := cb(table); err != nil {
			return err
		}
	}

	return nil
}

type jsonTable struct {
	Config         map[string]string `json:"config,omitempty"`
	Metric         string            `json:"metric"`
	Unit           string            `json:"unit"`
	HigherIsBetter bool              `json:"higher_is_better"`
	Rows           []jsonRow         `json:"rows"`
	Geomean        []jsonSummary     `json:"geomean,omitempty"`
}

type jsonRow struct {
	Row   string     `json:"row"`
	Cells []jsonCell `json:"cells"`
}

type jsonCell struct {
	Col    string  `json:"col"`
	N      int     `json:"n"`
	Center float64 `json:"center"`
	// Lo and Hi are omitted if there is no confidence interval.
	Lo       *float64 `json:"lo,omitempty"`
	Hi       *float64 `json:"hi,omitempty"`
	Range    string   `json:"range"`
	Delta    string   `json:"delta,omitempty"`
	P        *float64 `json:"p,omitempty"`
	Better   int      `json:"better,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type jsonSummary struct {
	Col      string   `json:"col"`
	Geomean  *float64 `json:"geomean,omitempty"`
	Delta    string   `json:"delta,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ToJSON writes t to w as a JSON array with one object per table.
func (t *Tables) ToJSON(w io.Writer) error {
	out := []jsonTable{}
	for i, table := range t.Tables {
		jt := jsonTable{
			Metric:         table.Metric.Name,
			Unit:           table.Unit,
			HigherIsBetter: table.Metric.HigherIsBetter,
			Rows:           []jsonRow{},
		}
		if cfg := t.Configs[i]; len(cfg.Schema().Fields()) > 0 {
			jt.Config = make(map[string]string)
			for _, f := range cfg.Schema().Fields() {
				jt.Config[f.Name] = cfg.Get(f)
			}
		}
		for _, row := range table.Rows {
			jr := jsonRow{Row: row.StringValues(), Cells: []jsonCell{}}
			for exp, col := range table.Cols {
				cell, ok := table.Cells[TableKey{row, col}]
				if !ok {
					continue
				}
				jc := jsonCell{
					Col:      col.StringValues(),
					N:        len(cell.Sample),
					Center:   cell.Summary.Center,
					Range:    cell.Summary.PctRangeString(),
					Warnings: errorStrings(cell.Warnings, cell.Summary.Warnings),
				}
				if !math.IsInf(cell.Summary.Lo, 0) && !math.IsInf(cell.Summary.Hi, 0) {
					lo, hi := cell.Summary.Lo, cell.Summary.Hi
					jc.Lo, jc.Hi = &lo, &hi
				}
				if exp > 0 && cell.Baseline != nil {
					p := cell.Comparison.P
					jc.P = &p
					jc.Delta = cell.Comparison.FormatDelta(cell.Baseline.Summary.Center, cell.Summary.Center)
					jc.Better = cell.Better(table.Metric)
					jc.Warnings = append(jc.Warnings, errorStrings(cell.Comparison.Warnings)...)
				}
				jr.Cells = append(jr.Cells, jc)
			}
			jt.Rows = append(jt.Rows, jr)
		}
		if len(table.Rows) > 1 {
			for exp, col := range table.Cols {
				tsum := table.Summary[col]
				js := jsonSummary{Col: col.StringValues(), Warnings: errorStrings(tsum.Warnings)}
				if tsum.HasSummary {
					v := tsum.Summary
					js.Geomean = &v
				}
				if exp > 0 {
					js.Delta = "?"
					if tsum.HasRatio {
						js.Delta = fmt.Sprintf("%+.2f%%", (tsum.Ratio-1)*100)
					}
				}
				jt.Geomean = append(jt.Geomean, js)
			}
		}
		out = append(out, jt)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return enc.Encode(out)
}

func errorStrings(errs ...[]error) []string {
	var out []string
	for _, errs1 := range errs {
		for _, err := range errs1 {
			out = append(out, err.Error())
		}
	}
	return out
}
