// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Piload parses PiBench reports and stores them in a database.
//
// Usage:
//
//	piload [flags] inputs...
//
// Inputs are report files, "label=path" pairs, or "-" for standard
// input, as for pistat. Unlabeled reports are stored under their
// path. The database is named by -db as "driver:source", for example
//
//	piload -db sqlite3:reports.db old=run1.txt new=run2.txt
//	piload -db 'mysql:user:pass@tcp(db:3306)/pibench' *.txt
//	piload -db 'postgres:postgres://db/pibench?sslmode=disable' *.txt
//
// If -db is not given, the PIBENCH_DB environment variable is used.
// Tables are created if they don't exist. Reports that fail to parse
// are skipped with a warning; the ID of each stored report is printed
// on standard output, one per line.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cheggaaa/pb/v3"

	"github.com/pibench/perf/pibenchfmt"
	"github.com/pibench/perf/storage"
)

func main() {
	if err := piload(context.Background(), os.Stdout, os.Stderr, os.Args[1:], os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "piload: %s\n", err)
		os.Exit(1)
	}
}

func piload(ctx context.Context, w, wErr io.Writer, args []string, getenv func(string) string) error {
	flags := flag.NewFlagSet("piload", flag.ContinueOnError)
	flags.SetOutput(wErr)
	flags.Usage = func() {
		fmt.Fprintf(wErr, "Usage: piload [flags] inputs...\n\n")
		flags.PrintDefaults()
	}
	flagDB := flags.String("db", getenv("PIBENCH_DB"), "store reports in `driver:source` (default $PIBENCH_DB)")
	flagProgress := flags.Bool("progress", false, "show a progress bar while storing")
	flagVerbose := flags.Bool("v", false, "log each stored report")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return errors.New("no inputs")
	}
	if *flagDB == "" {
		return errors.New("no database: set -db or PIBENCH_DB")
	}

	level := slog.LevelInfo
	if *flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(wErr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}))

	db, err := storage.OpenDSN(*flagDB)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.CreateTables(ctx); err != nil {
		return err
	}

	files := pibenchfmt.Files{Paths: flags.Args(), AllowStdin: true, AllowLabels: true}
	inputs, err := files.ReadAll(ctx)
	if err != nil {
		return err
	}

	var bar *pb.ProgressBar
	if *flagProgress {
		bar = pb.New(len(inputs)).SetWriter(wErr).Start()
	}
	stored, skipped := 0, 0
	for _, f := range inputs {
		if bar != nil {
			bar.Increment()
		}
		if f.Err != nil {
			logger.Warn("skipping report", "file", f.Path, "err", f.Err)
			skipped++
			continue
		}
		rec, err := db.Insert(ctx, f.Label, f.Report)
		if err != nil {
			if bar != nil {
				bar.Finish()
			}
			return fmt.Errorf("storing %s: %w", f.Path, err)
		}
		logger.Debug("stored report", "file", f.Path, "label", f.Label, "id", rec.ID)
		fmt.Fprintln(w, rec.ID)
		stored++
	}
	if bar != nil {
		bar.Finish()
	}
	logger.Info("done", "stored", stored, "skipped", skipped)
	return nil
}
