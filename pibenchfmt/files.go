// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pibenchfmt

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// A Files reads and parses a sequence of report inputs. Each input
// holds exactly one report.
type Files struct {
	// Paths is the list of inputs to read.
	//
	// If AllowLabels is set, an input may have the form
	// "label=path", in which case the report's label is "label".
	// Otherwise, the label is the path itself.
	//
	// If AllowStdin is set, the path "-" reads standard input.
	Paths []string

	AllowStdin  bool
	AllowLabels bool

	// Limit is the maximum number of inputs read and parsed at
	// once. If Limit <= 0, it defaults to GOMAXPROCS.
	Limit int

	// Parser parses each input. If nil, a new Parser is used.
	Parser *Parser

	// Stdin is used for "-". If nil, it is os.Stdin.
	Stdin io.Reader
}

// A File is the outcome of reading one input.
type File struct {
	Label string
	Path  string

	// Report is the parsed report, or nil if Err is non-nil.
	Report *ReportData
	// Err is the parse error for this input. A parse error in one
	// input does not affect any other.
	Err error
}

// ReadAll reads and parses all of f.Paths concurrently. The result
// has one File per input, in input order.
//
// An I/O error on any input is fatal: ReadAll stops and returns it.
// Parse errors are recorded in the corresponding File.Err instead.
func (f *Files) ReadAll(ctx context.Context) ([]*File, error) {
	p := f.Parser
	if p == nil {
		p = NewParser()
	}
	limit := f.Limit
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(-1)
	}

	files := make([]*File, len(f.Paths))
	stdinUsed := false
	for i, arg := range f.Paths {
		label, path := arg, arg
		if f.AllowLabels {
			if l, rest, ok := strings.Cut(arg, "="); ok {
				label, path = l, rest
			}
		}
		if path == "-" && f.AllowStdin {
			if stdinUsed {
				return nil, fmt.Errorf("standard input named more than once")
			}
			stdinUsed = true
		}
		files[i] = &File{Label: label, Path: path}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := f.read(file.Path)
			if err != nil {
				return err
			}
			file.Report, file.Err = p.Parse(string(data))
			if file.Err != nil {
				file.Err = fmt.Errorf("%s: %w", file.Path, file.Err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func (f *Files) read(path string) ([]byte, error) {
	if path == "-" && f.AllowStdin {
		r := f.Stdin
		if r == nil {
			r = os.Stdin
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading standard input: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		// os.ReadFile errors already name the path.
		return nil, err
	}
	return data, nil
}
