// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchproc provides tools for grouping and sorting PiBench
// reports by their configuration.
//
// A projection expression describes how to extract components of a
// labeled report into a Config, and how to order the resulting
// Configs. The package also reports configuration that varies within
// a group but was not part of any projection, which usually points
// at an accidental mix of benchmark settings.
//
// # Projection syntax
//
// A projection is a comma- or space-separated list of keys, each
// optionally followed by "@" and a sort order:
//
//	threads,distribution@alpha
//
// The keys are
//
//	.label           the input label (the file name, or "label" in "label=path")
//	target           the wrapper library under test
//	records          # Records
//	operations       # Operations
//	threads          # Threads
//	sampling         sampling interval in milliseconds
//	latency          latency sampling ratio
//	key-prefix       Key prefix
//	key-size         Key size
//	value-size       Value size
//	random-seed      Random seed
//	distribution     Key distribution (UNIFORM or ZIPFIAN)
//	scan-size        Scan size ("" if not reported)
//	read, insert, update, delete, scan
//	                 workload proportions
//
// The sort order is one of
//
//	first     order of first observation (the default)
//	alpha     lexicographic
//	num       numeric, with non-numbers after numbers
//	(a b c)   the listed values in that order; reports with any
//	          other value are excluded
//
// For example, "threads@num,distribution@(UNIFORM)" groups by thread
// count in numeric order and keeps only uniform workloads.
package benchproc
