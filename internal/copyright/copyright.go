// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package copyright checks that Go source files carry the project's
// license header.
package copyright

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var header = []byte(`// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
`)

// checkCopyright returns the .go files under dir that do not start
// with the license header. Directories starting with "_" or "." and
// testdata directories are skipped, as the go command skips them.
func checkCopyright(dir string) ([]string, error) {
	var missing []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if !bytes.HasPrefix(data, header) {
			missing = append(missing, path)
		}
		return nil
	})
	return missing, err
}
