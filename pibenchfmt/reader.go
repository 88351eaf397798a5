// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pibenchfmt

import (
	"regexp"
	"strconv"
	"sync"
)

// A Parser parses complete PiBench reports.
//
// The zero value is not usable; construct Parsers with NewParser. A
// Parser is immutable and safe for concurrent use.
type Parser struct {
	options *OptionsParser
	results *ResultsParser
}

// NewParser returns a Parser with all of its patterns compiled.
func NewParser() *Parser {
	return &Parser{
		options: NewOptionsParser(),
		results: NewResultsParser(),
	}
}

// Parse extracts the options and results sections of text into a
// ReportData. If either section fails to parse, Parse returns that
// error and no report.
func (p *Parser) Parse(text string) (*ReportData, error) {
	opts, err := p.options.Parse(text)
	if err != nil {
		return nil, err
	}
	res, err := p.results.Parse(text)
	if err != nil {
		return nil, err
	}
	return &ReportData{Options: opts, Results: res}, nil
}

var defaultParser struct {
	once sync.Once
	p    *Parser
}

// Parse parses text using a shared Parser that is constructed on first
// use.
func Parse(text string) (*ReportData, error) {
	defaultParser.once.Do(func() { defaultParser.p = NewParser() })
	return defaultParser.p.Parse(text)
}

// Pattern fragments shared by the section parsers. A value is any run
// of non-space characters on the label's line; it is converted after
// matching so that a bad value is reported as a *NumberError rather
// than as a missing section.
const (
	hspace = `[ \t]*`
	gap    = `(?s:.*?)`
)

// field returns a pattern matching "label: value", capturing value in
// the group called name.
func field(label, name string) string {
	return regexp.QuoteMeta(label) + ":" + hspace + `(?P<` + name + `>\S*)`
}

// lineField is like field, but value is the rest of the line, which
// may contain spaces. Surrounding blanks are not part of value.
func lineField(label, name string) string {
	return regexp.QuoteMeta(label) + ":" + hspace + `(?P<` + name + `>[^\n]*?)` + hspace + `\n`
}

// A submatch is one match of a section pattern.
type submatch struct {
	re   *regexp.Regexp
	text string
	loc  []int
}

func findSubmatch(re *regexp.Regexp, text string) (submatch, bool) {
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return submatch{}, false
	}
	return submatch{re, text, loc}, true
}

// group returns the text of the named group and whether the group
// took part in the match.
func (m submatch) group(name string) (string, bool) {
	i := m.re.SubexpIndex(name)
	if i < 0 || m.loc[2*i] < 0 {
		return "", false
	}
	return m.text[m.loc[2*i]:m.loc[2*i+1]], true
}

// end returns the offset in the text just past the match.
func (m submatch) end() int {
	return m.loc[1]
}

// A decoder converts the groups of a submatch, remembering the first
// conversion error. After an error, its methods return zero values.
type decoder struct {
	m   submatch
	err error
}

func (d *decoder) str(name string) string {
	s, _ := d.m.group(name)
	return s
}

func (d *decoder) int32(name, label string) int32 {
	if d.err != nil {
		return 0
	}
	s, _ := d.m.group(name)
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		d.err = numErr(label, s, err)
		return 0
	}
	return int32(v)
}

// optInt32 is like int32, but returns nil for a group that did not
// take part in the match.
func (d *decoder) optInt32(name, label string) *int32 {
	if _, ok := d.m.group(name); !ok || d.err != nil {
		return nil
	}
	v := d.int32(name, label)
	if d.err != nil {
		return nil
	}
	return &v
}

func (d *decoder) uint64(name, label string) uint64 {
	if d.err != nil {
		return 0
	}
	s, _ := d.m.group(name)
	v, err := parseUint64(label, s)
	if err != nil {
		d.err = err
	}
	return v
}

func (d *decoder) float(name, label string) float64 {
	if d.err != nil {
		return 0
	}
	s, _ := d.m.group(name)
	v, err := parseFloat(label, s)
	if err != nil {
		d.err = err
	}
	return v
}

// optionFloat is like float, but also accepts a missing integer part,
// as in "Latency: .1".
func (d *decoder) optionFloat(name, label string) float64 {
	if d.err != nil {
		return 0
	}
	s, _ := d.m.group(name)
	v, err := parseFloat(label, withIntPart(s))
	if err != nil {
		// Report the text as written.
		if ne, ok := err.(*NumberError); ok {
			ne.Text = s
		}
		d.err = err
	}
	return v
}

// proportion is like optionFloat, but also requires the value to be in
// [0, 1].
func (d *decoder) proportion(name, label string) float64 {
	v := d.optionFloat(name, label)
	if d.err == nil && !(0 <= v && v <= 1) {
		s, _ := d.m.group(name)
		d.err = numErr(label, s, strconv.ErrRange)
		return 0
	}
	return v
}

// Numeric conversion helpers.

// parseUint64 parses a non-negative decimal integer.
func parseUint64(label, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, numErr(label, s, err)
	}
	return v, nil
}

// parseFloat parses s as a decimal floating-point number with an
// optional sign, fraction and exponent. Unlike strconv.ParseFloat, it
// rejects "inf", "nan", hexadecimal and underscore forms.
func parseFloat(label, s string) (float64, error) {
	if !isDecimalFloat(s) {
		return 0, numErr(label, s, strconv.ErrSyntax)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, numErr(label, s, err)
	}
	return v, nil
}

// withIntPart returns s with a "0" integer part inserted if s starts
// with a fraction, such as ".5" or "-.5".
func withIntPart(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if i+1 < len(s) && s[i] == '.' && isDigit(s[i+1]) {
		return s[:i] + "0" + s[i:]
	}
	return s
}

// isDecimalFloat reports whether x matches
// [+-]?(0|[1-9][0-9]*)(\.[0-9]*)?([eE][+-]?[0-9]+)?.
func isDecimalFloat(x string) bool {
	i := 0
	if i < len(x) && (x[i] == '+' || x[i] == '-') {
		i++
	}
	// Integer part.
	switch {
	case i < len(x) && x[i] == '0':
		i++
	case i < len(x) && '1' <= x[i] && x[i] <= '9':
		for i < len(x) && isDigit(x[i]) {
			i++
		}
	default:
		return false
	}
	// Fraction.
	if i < len(x) && x[i] == '.' {
		i++
		for i < len(x) && isDigit(x[i]) {
			i++
		}
	}
	// Exponent.
	if i < len(x) && (x[i] == 'e' || x[i] == 'E') {
		i++
		if i < len(x) && (x[i] == '+' || x[i] == '-') {
			i++
		}
		start := i
		for i < len(x) && isDigit(x[i]) {
			i++
		}
		if i == start {
			return false
		}
	}
	return i == len(x)
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }
