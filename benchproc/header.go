// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

// A ConfigHeader is a node in a Config header tree. It covers a run of
// adjacent Configs that agree on every field up to and including
// Field.
type ConfigHeader struct {
	// Field is the index of the Schema field represented by this
	// node.
	Field int

	// Start and Len give the run of Configs this node covers.
	// Visually, Len is also the cell span of this node.
	Start, Len int

	// Value is the value that all covered Configs have for Field.
	Value string
}

// NewConfigHeader combines a sequence of Configs by common prefixes,
// for presenting them compactly as a table header. For example, the
// column Configs
//
//	threads:1 distribution:UNIFORM
//	threads:1 distribution:ZIPFIAN
//	threads:8 distribution:ZIPFIAN
//
// form two levels:
//
//	         +-----------------------+-----------+
//	Level 0  |       threads:1       | threads:8 |
//	         +-----------+-----------+-----------+
//	Level 1  |  UNIFORM  |  ZIPFIAN  |  ZIPFIAN  |
//	         +-----------+-----------+-----------+
//
// All Configs must have the same Schema. levels[i] corresponds to
// field i of the Schema and partitions the whole configs slice; each
// level refines the one before it.
func NewConfigHeader(configs []Config) (levels [][]*ConfigHeader) {
	if len(configs) == 0 {
		return nil
	}
	fields := commonSchema(configs).fields
	levels = make([][]*ConfigHeader, len(fields))
	parents := []*ConfigHeader{{Field: -1, Start: 0, Len: len(configs)}}
	for i, field := range fields {
		for _, parent := range parents {
			var node *ConfigHeader
			for j := parent.Start; j < parent.Start+parent.Len; j++ {
				val := configs[j].Get(field)
				if node == nil || val != node.Value {
					node = &ConfigHeader{Field: i, Start: j, Len: 0, Value: val}
					levels[i] = append(levels[i], node)
				}
				node.Len++
			}
		}
		parents = levels[i]
	}
	return levels
}
