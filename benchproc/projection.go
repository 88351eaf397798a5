// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import (
	"fmt"
	"strings"

	"github.com/pibench/perf/pibenchfmt"
)

// A SyntaxError is an error produced by parsing a malformed
// projection expression.
type SyntaxError struct {
	Query string // The original query string
	Off   int    // Byte offset of the error in Query
	Msg   string // Error message
}

func (e *SyntaxError) Error() string {
	// Show the original query string and the position of the
	// error.
	return fmt.Sprintf("syntax error: %s\n\t%s\n\t%*s^", e.Msg, e.Query, e.Off, "")
}

// A projection is one component of a projection expression.
type projection struct {
	key string

	// order is "first", "fixed", or a key of builtinOrders.
	order string
	// fixed is the value order for "fixed" orders.
	fixed []string

	keyOff, orderOff int
}

// parseProjection splits a projection expression into its
// components.
func parseProjection(q string) ([]projection, error) {
	var projs []projection
	s := scanner{q: q}
	for {
		s.skipSpace()
		if s.off < len(q) && q[s.off] == ',' && len(projs) > 0 {
			s.off++
			s.skipSpace()
		}
		if s.off == len(q) {
			break
		}

		var p projection
		p.keyOff = s.off
		p.key = s.word()
		if p.key == "" {
			return nil, s.errorf("expected key")
		}
		p.order, p.orderOff = "first", s.off
		if s.off < len(q) && q[s.off] == '@' {
			s.off++
			p.orderOff = s.off
			if s.off < len(q) && q[s.off] == '(' {
				s.off++
				p.order = "fixed"
				for {
					s.skipSpace()
					if s.off == len(q) {
						return nil, s.errorf("missing )")
					}
					if q[s.off] == ')' {
						if len(p.fixed) == 0 {
							return nil, s.errorf("nothing to match")
						}
						s.off++
						break
					}
					w := s.word()
					if w == "" {
						return nil, s.errorf("expected value")
					}
					p.fixed = append(p.fixed, w)
				}
			} else if p.order = s.word(); p.order == "" {
				return nil, s.errorf("expected named sort order or parenthesized list")
			}
		}
		projs = append(projs, p)
	}
	return projs, nil
}

type scanner struct {
	q   string
	off int
}

func (s *scanner) skipSpace() {
	for s.off < len(s.q) && (s.q[s.off] == ' ' || s.q[s.off] == '\t') {
		s.off++
	}
}

// word consumes a run of characters that are not spaces, commas,
// '@' or parentheses.
func (s *scanner) word() string {
	start := s.off
	for s.off < len(s.q) && !strings.ContainsRune(" \t,@()", rune(s.q[s.off])) {
		s.off++
	}
	return s.q[start:s.off]
}

func (s *scanner) errorf(format string, args ...interface{}) error {
	return &SyntaxError{s.q, s.off, fmt.Sprintf(format, args...)}
}

// A ProjectionParser parses projection expressions, which describe
// how to extract components of a labeled report into a Config and how
// to order the resulting Configs.
//
// Projections parsed by one ProjectionParser form a group: Residue
// returns a Schema over every key that none of them projected.
type ProjectionParser struct {
	projected map[string]bool
}

// Parse parses a single projection expression, such as
// "threads,distribution@alpha". See the package documentation for
// the syntax.
func (p *ProjectionParser) Parse(proj string) (*Schema, error) {
	if p.projected == nil {
		p.projected = make(map[string]bool)
	}
	parts, err := parseProjection(proj)
	if err != nil {
		return nil, err
	}
	s := newSchema()
	for _, part := range parts {
		if err := s.addProjection(proj, part); err != nil {
			return nil, err
		}
	}
	// Only mark keys once the whole projection is known to be
	// valid.
	for _, part := range parts {
		p.projected[part.key] = true
	}
	return s, nil
}

// Residue returns a Schema with one field for each key not projected
// by any expression passed to Parse. Its fields are in report order
// with first-observation ordering.
func (p *ProjectionParser) Residue() *Schema {
	s := newSchema()
	for _, key := range keys {
		if p.projected[key] {
			continue
		}
		s.addProjection("", projection{key: key, order: "first"})
	}
	return s
}

func (s *Schema) addProjection(q string, proj projection) error {
	ext, err := newExtractor(proj.key)
	if err != nil {
		return &SyntaxError{q, proj.keyOff, err.Error()}
	}

	field := s.addField(proj.key)
	var match func(string) bool
	switch proj.order {
	case "first":
		field.order = make(map[string]int)
		field.cmp = func(a, b string) int {
			return field.order[a] - field.order[b]
		}
	case "fixed":
		fixedMap := make(map[string]int, len(proj.fixed))
		for i, v := range proj.fixed {
			fixedMap[v] = i
		}
		field.cmp = func(a, b string) int {
			return fixedMap[a] - fixedMap[b]
		}
		match = func(v string) bool {
			_, ok := fixedMap[v]
			return ok
		}
	default:
		cmp, ok := builtinOrders[proj.order]
		if !ok {
			return &SyntaxError{q, proj.orderOff, fmt.Sprintf("unknown order %q", proj.order)}
		}
		field.cmp = cmp
	}

	s.project = append(s.project, func(f *pibenchfmt.File, row []string) bool {
		v := ext(f)
		row[field.idx] = v
		return match == nil || match(v)
	})
	return nil
}
