// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import (
	"hash/maphash"
	"strings"

	"github.com/pibench/perf/pibenchfmt"
)

// A Schema projects some subset of the components of a labeled report
// into a Config. All Configs produced by a Schema have the same
// structure. Configs produced by a Schema will be == if they have the
// same values (notably, this means Configs can be used as map keys).
// A Schema also implies a sort order, which is lexicographic based on
// the order of fields in the Schema, with the order of each
// individual field determined by the projection.
//
// A Schema is not safe for concurrent use.
type Schema struct {
	fields []Field

	// project fills in row from a report and reports whether the
	// report passes any fixed-order filters.
	project []func(f *pibenchfmt.File, row []string) bool

	// row is the buffer used to construct a projection.
	row []string

	// configs are the interned Configs of this Schema, by hash.
	configs map[uint64][]*configNode
}

func newSchema() *Schema {
	return &Schema{configs: make(map[uint64][]*configNode)}
}

func (s *Schema) addField(name string) Field {
	field := Field{name, &fieldInternal{schema: s, idx: len(s.fields)}}
	s.fields = append(s.fields, field)
	s.row = append(s.row, "")
	return field
}

// Fields returns the fields of s in the order determined by the
// Schema's projection expression.
//
// The caller must not modify the returned slice.
func (s *Schema) Fields() []Field {
	return s.fields
}

// A Field is a single dimension of a Schema.
type Field struct {
	Name string
	*fieldInternal
}

type fieldInternal struct {
	schema *Schema

	// idx gives the index of this field's values in a configNode.
	idx int

	// cmp is the comparison function for values of this field. It
	// returns <0 if a < b, >0 if a > b, or 0 if a == b or a and b
	// are unorderable.
	cmp func(a, b string) int

	// order, if non-nil, records the observation order of this
	// field.
	order map[string]int
}

// String returns the name of Field f.
func (f Field) String() string {
	return f.Name
}

var configSeed = maphash.MakeSeed()

// Project extracts components from report f according to Schema s and
// returns them as an immutable Config. It returns false if f has a
// value excluded by a fixed sort order, in which case the Config is
// zero.
func (s *Schema) Project(f *pibenchfmt.File) (Config, bool) {
	for i := range s.row {
		s.row[i] = ""
	}
	for _, proj := range s.project {
		if !proj(f, s.row) {
			return Config{}, false
		}
	}
	return s.internRow(), true
}

func (s *Schema) internRow() Config {
	var h maphash.Hash
	h.SetSeed(configSeed)
	for _, val := range s.row {
		h.WriteString(val)
		// Separate values so ("ab", "") and ("a", "b") differ.
		h.WriteByte(0)
	}
	hash := h.Sum64()

	for _, config := range s.configs[hash] {
		if config.equalRow(s.row) {
			return Config{config}
		}
	}

	// Update observation orders.
	for _, field := range s.fields {
		if field.order == nil {
			continue
		}
		val := s.row[field.idx]
		if _, ok := field.order[val]; !ok {
			field.order[val] = len(field.order)
		}
	}

	config := &configNode{s, append([]string(nil), s.row...)}
	s.configs[hash] = append(s.configs[hash], config)
	return Config{config}
}

// A Config is an immutable tuple mapping from Fields to strings whose
// structure is given by a Schema. Two Configs are == if they come
// from the same Schema and have identical values.
type Config struct {
	c *configNode
}

// IsZero reports whether c is a zeroed Config with no schema and no fields.
func (c Config) IsZero() bool {
	return c.c == nil
}

// Get returns the value of Field f in this Config.
//
// It panics if Field f does not come from the same Schema as the
// Config.
func (c Config) Get(f Field) string {
	if c.IsZero() {
		panic("zero Config has no fields")
	}
	if c.c.schema != f.schema {
		panic("Config and Field have different Schemas")
	}
	return c.c.vals[f.idx]
}

// Schema returns the Schema describing Config c.
func (c Config) Schema() *Schema {
	if c.IsZero() {
		return nil
	}
	return c.c.schema
}

// String returns Config as a space-separated sequence of key:value
// pairs in schema order. Empty values are omitted.
func (c Config) String() string {
	return c.string(true)
}

// StringValues returns Config as a space-separated sequence of
// values in schema order.
func (c Config) StringValues() string {
	return c.string(false)
}

func (c Config) string(keys bool) string {
	if c.IsZero() {
		return "<zero>"
	}
	buf := new(strings.Builder)
	for _, field := range c.c.schema.fields {
		val := c.c.vals[field.idx]
		if val == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		if keys {
			buf.WriteString(field.Name)
			buf.WriteByte(':')
		}
		buf.WriteString(val)
	}
	return buf.String()
}

// commonSchema returns the Schema that all configs have, or panics if
// any Config has a different Schema. It returns nil if len(configs)
// == 0.
func commonSchema(configs []Config) *Schema {
	if len(configs) == 0 {
		return nil
	}
	s := configs[0].Schema()
	for _, c := range configs[1:] {
		if c.Schema() != s {
			panic("Configs must all have the same Schema")
		}
	}
	return s
}

// configNode is the internal heap-allocated object backing a Config.
// This allows Config itself to be a value type whose equality is
// determined by the pointer equality of the underlying configNode.
type configNode struct {
	schema *Schema
	vals   []string // indexed by fieldInternal.idx
}

func (n *configNode) equalRow(row []string) bool {
	if len(n.vals) != len(row) {
		return false
	}
	for i, v := range n.vals {
		if row[i] != v {
			return false
		}
	}
	return true
}
