// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchtab

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pibench/perf/benchproc"
	"github.com/pibench/perf/benchunit"
)

// A Table summarizes and compares one metric in a 2D grid. Each cell
// summarizes a sample of values with identical row and column
// Configs. Comparisons are done within each row between the sample in
// the first column and the samples in any remaining columns.
type Table struct {
	// Opts is the configuration options for this table.
	Opts TableOpts

	// Metric is the metric summarized by this table.
	Metric *Metric

	// Unit is the tidied unit of all values in this Table.
	Unit string

	// Rows and Cols give the sequence of row and column Configs
	// in this table. All row Configs have the same schema and all
	// col Configs have the same schema.
	Rows, Cols []benchproc.Config

	// Cells is the cells in the body of this table. Each key in
	// this map is a pair of some Config from Rows and some Config
	// from Cols. However, not all Pairs may be present in the
	// map.
	Cells map[TableKey]*TableCell

	// Summary is the final row of this table, which gives summary
	// information across all rows in this table. It is keyed by
	// Cols.
	Summary map[benchproc.Config]*TableSummary

	// SummaryLabel is the label for the summary row.
	SummaryLabel string
}

// TableKey is a map key used to index a single cell in a Table.
type TableKey struct {
	Row, Col benchproc.Config
}

// TableCell is a single cell in a Table. It represents a sample of
// values with the same row and column Config.
type TableCell struct {
	// Sample is the set of values in this cell.
	Sample []float64

	// Warnings is a list of problems with Sample, such as reports
	// that differ in settings no projection covers.
	Warnings []error

	// Summary is the summary of Sample.
	Summary Summary

	// Baseline is the baseline cell used for comparisons with
	// this cell, or nil if there is no comparison. This is the
	// cell in the first column of this cell's row, if any.
	Baseline *TableCell

	// Comparison is the comparison with the Baseline cell. If
	// Baseline is nil, this value is meaningless.
	Comparison Comparison
}

// Better reports whether this cell is a significant improvement over
// its baseline (+1), a significant regression (-1), or neither (0).
func (c *TableCell) Better(m *Metric) int {
	if c.Baseline == nil || !c.Comparison.Significant() {
		return 0
	}
	d := c.Summary.Center - c.Baseline.Summary.Center
	if !m.HigherIsBetter {
		d = -d
	}
	switch {
	case d > 0:
		return 1
	case d < 0:
		return -1
	}
	return 0
}

// TableSummary summarizes a column of a Table.
type TableSummary struct {
	// HasSummary indicates that Summary is valid.
	HasSummary bool
	// Summary is the geomean of the TableCell.Summary centers in
	// this column.
	Summary float64

	// HasRatio indicates that Ratio is valid.
	HasRatio bool
	// Ratio is the geomean of the ratios between each cell in
	// this column and its baseline.
	Ratio float64

	// Warnings is a list of warnings for this summary cell.
	Warnings []error
}

// RowValues returns the summary values for every sample in row.
//
// This is useful when computing a common scale for a row using
// benchunit.CommonScale.
func (t *Table) RowValues(row benchproc.Config) []float64 {
	var out []float64
	for _, col := range t.Cols {
		cell, ok := t.Cells[TableKey{row, col}]
		if ok {
			out = append(out, cell.Summary.Center)
		}
	}
	return out
}

// footnotes numbers distinct warning messages in order of first use.
type footnotes struct {
	list []string
	set  map[string]int
}

func (f *footnotes) mark(msgs ...[]error) string {
	if f.set == nil {
		f.set = make(map[string]int)
	}
	var marks []string
	for _, msgs1 := range msgs {
		for _, msg := range msgs1 {
			s := msg.Error()
			i, ok := f.set[s]
			if !ok {
				i = len(f.list)
				f.set[s] = i
				f.list = append(f.list, s)
			}
			marks = append(marks, superscript(i+1))
		}
	}
	return strings.Join(marks, " ")
}

// ToText renders t to a textual representation, assuming a
// fixed-width font.
func (t *Table) ToText(w io.Writer) error {
	o := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	// Each logical column is one cell, plus a delta cell if
	// there's a baseline.
	var notes footnotes
	row := func(cells ...string) {
		fmt.Fprintln(o, strings.Join(cells, "\t"))
	}

	// Construct the header. Values of configs that span several
	// logical columns are written over the first.
	hdr := benchproc.NewConfigHeader(t.Cols)
	for _, hdrRow := range hdr {
		cells := make([]string, 2*len(t.Cols))
		for _, hdrCell := range hdrRow {
			cells[logicalCol(hdrCell.Start)] = hdrCell.Value
		}
		row(append([]string{""}, cells[:logicalCol(len(t.Cols))]...)...)
	}

	// Unit and comparison labels.
	cells := []string{t.Metric.Name}
	for i := range t.Cols {
		cells = append(cells, t.Unit)
		if i > 0 {
			cells = append(cells, "vs base")
		}
	}
	row(cells...)

	// Emit measurements.
	unitClass := benchunit.ClassOf(t.Unit)
	for _, rowCfg := range t.Rows {
		cells := []string{rowCfg.StringValues()}

		// Get a common scale across this row.
		scaler := benchunit.CommonScale(t.RowValues(rowCfg), unitClass)

		for exp, col := range t.Cols {
			cell, ok := t.Cells[TableKey{rowCfg, col}]
			if !ok {
				cells = append(cells, "")
				if exp > 0 {
					cells = append(cells, "")
				}
				continue
			}
			cells = append(cells, join(scaler.Format(cell.Summary.Center)+" ± "+cell.Summary.PctRangeString(), notes.mark(cell.Warnings, cell.Summary.Warnings)))
			if exp > 0 {
				if cell.Baseline == nil {
					cells = append(cells, "")
					continue
				}
				d := cell.Comparison.FormatDelta(cell.Baseline.Summary.Center, cell.Summary.Center)
				cells = append(cells, join(d+" ("+cell.Comparison.String()+")", notes.mark(cell.Comparison.Warnings)))
			}
		}
		row(cells...)
	}

	// Emit summary row.
	if len(t.Rows) > 1 {
		cells := []string{t.SummaryLabel}
		for exp, col := range t.Cols {
			tsum := t.Summary[col]
			var sum string
			if tsum.HasSummary {
				sum = benchunit.Scale(tsum.Summary, unitClass)
			}
			if exp == 0 {
				cells = append(cells, join(sum, notes.mark(tsum.Warnings)))
				continue
			}
			ratio := "?"
			if tsum.HasRatio {
				ratio = fmt.Sprintf("%+.2f%%", (tsum.Ratio-1)*100)
			}
			cells = append(cells, sum, join(ratio, notes.mark(tsum.Warnings)))
		}
		row(cells...)
	}

	// Emit table.
	if err := o.Flush(); err != nil {
		return err
	}

	// Emit warnings.
	for i, msg := range notes.list {
		if _, err := fmt.Fprintf(w, "%s %s\n", superscript(i+1), msg); err != nil {
			return err
		}
	}
	return nil
}

// logicalCol returns the index of the first text cell of logical
// column exp, not counting the label column.
func logicalCol(exp int) int {
	if exp == 0 {
		return 0
	}
	// The baseline has no delta cell.
	return 1 + (exp-1)*2
}

func join(s, note string) string {
	if note == "" {
		return s
	}
	return s + " " + note
}

var superDigits = []rune("⁰¹²³⁴⁵⁶⁷⁸⁹")

func superscript(i int) string {
	if i == 0 {
		return string(superDigits[0])
	}

	var buf [20]rune
	pos := len(buf)
	for i > 0 && pos > 0 {
		pos--
		buf[pos] = superDigits[i%10]
		i /= 10
	}
	return string(buf[pos:])
}

// ToCSV renders t to CSV format. Warnings are written in text format
// to the "warnings" Writer, and prefixed with spreadsheet-style cell
// references. These references assume the table begins on row
// "startRow".
func (t *Table) ToCSV(o *csv.Writer, startRow int, warnings io.Writer) (rowCount int) {
	const labelCols = 1
	const centerCols = 2 // <center> <CI>
	const deltaCols = 2  // <P%> <p=0.PPP n=N>
	startCol := func(exp int) int {
		if exp == 0 {
			// Baseline, so no delta.
			return labelCols
		}
		return labelCols + centerCols + (exp-1)*(centerCols+deltaCols)
	}
	row := make([]string, 0, startCol(len(t.Cols)))
	clearTo := func(col int) {
		for len(row) < col {
			row = append(row, "")
		}
	}
	emit := func() {
		o.Write(row)
		row = row[:0]
		rowCount++
	}
	warn := func(msgs []error) {
		ref := cellRef(len(row), startRow+rowCount)
		for _, msg := range msgs {
			fmt.Fprintf(warnings, "%s: %s\n", ref, msg)
		}
	}

	// Emit column configurations header.
	colSchema := t.Cols[0].Schema()
	for _, field := range colSchema.Fields() {
		for exp, cfg := range t.Cols {
			clearTo(startCol(exp))
			row = append(row, cfg.Get(field))
		}
		emit()
	}

	// Emit column headers.
	row = append(row, t.Metric.Name)
	for exp := range t.Cols {
		clearTo(startCol(exp))
		row = append(row, t.Unit, "CI")
		if exp > 0 {
			row = append(row, "vs base", "P")
		}
	}
	emit()

	// Emit table.
	for _, rowCfg := range t.Rows {
		row = append(row, rowCfg.StringValues())
		for exp, colCfg := range t.Cols {
			cell, ok := t.Cells[TableKey{rowCfg, colCfg}]
			if !ok {
				continue
			}

			clearTo(startCol(exp))
			warn(cell.Warnings)
			warn(cell.Summary.Warnings)
			row = append(row,
				fmt.Sprint(cell.Summary.Center),
				cell.Summary.PctRangeString(),
			)
			if exp > 0 && cell.Baseline != nil {
				warn(cell.Comparison.Warnings)
				row = append(row,
					cell.Comparison.FormatDelta(cell.Baseline.Summary.Center, cell.Summary.Center),
					cell.Comparison.String(),
				)
			}
		}
		emit()
	}

	// Emit summary row.
	row = append(row, t.SummaryLabel)
	for exp, cfg := range t.Cols {
		tsum, ok := t.Summary[cfg]
		if !ok {
			continue
		}

		clearTo(startCol(exp))
		warn(tsum.Warnings)
		if tsum.HasSummary {
			row = append(row, fmt.Sprint(tsum.Summary))
		}
		if exp > 0 {
			clearTo(startCol(exp) + centerCols)
			if tsum.HasRatio {
				row = append(row, fmt.Sprintf("%+.2f%%", (tsum.Ratio-1)*100))
			} else {
				row = append(row, "?")
			}
		}
	}
	emit()

	return
}

// cellRef returns the spreadsheet-style reference of the 0-based
// column col on the 1-based row row, such as "B3".
func cellRef(col, row int) string {
	var name []byte
	for col++; col > 0; col = (col - 1) / 26 {
		name = append([]byte{'A' + byte((col-1)%26)}, name...)
	}
	return fmt.Sprintf("%s%d", name, row)
}
