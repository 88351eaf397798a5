// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchunit manipulates the measurement units that appear in
// PiBench reports, such as "milliseconds", "ops/s" and "bytes".
package benchunit

// A parser splits a unit into its component words. Words are
// separated by '/' and '*'; every word after the first '/' is in the
// denominator.
type parser struct {
	unit  string
	off   int // offset of the next word
	pos   int // offset of tok in unit
	tok   string
	denom bool
}

func newParser(unit string) *parser {
	return &parser{unit: unit}
}

// next advances to the next word of the unit and reports whether
// there was one.
func (p *parser) next() bool {
	for p.off < len(p.unit) {
		switch p.unit[p.off] {
		case '/':
			p.denom = true
			p.off++
			continue
		case '*', ' ':
			p.off++
			continue
		}
		start := p.off
		for p.off < len(p.unit) && !isSep(p.unit[p.off]) {
			p.off++
		}
		p.pos, p.tok = start, p.unit[start:p.off]
		return true
	}
	p.tok = ""
	return false
}

func isSep(c byte) bool {
	return c == '/' || c == '*' || c == ' '
}
