// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

// NonSingularFields returns the subset of Schema fields for which at
// least two of configs have different values.
//
// Callers use this on residue Configs to warn that a group of reports
// mixes settings the user did not ask to group by, such as two key
// sizes under the same thread count.
func NonSingularFields(configs []Config) []Field {
	if len(configs) <= 1 {
		return nil
	}
	var out []Field
	for _, f := range commonSchema(configs).fields {
		base := configs[0].Get(f)
		for _, c := range configs[1:] {
			if c.Get(f) != base {
				out = append(out, f)
				break
			}
		}
	}
	return out
}
