// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package storage persists parsed PiBench reports in a SQL database.
//
// SQLite ("sqlite3" with cgo, "sqlite" without), MySQL ("mysql") and
// PostgreSQL ("postgres" or "pgx") are supported. Hardware counters and
// latency bounds are unsigned 64-bit values, which database/sql
// cannot pass as integers when the high bit is set, so they are
// stored as decimal text.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/pibench/perf/pibenchfmt"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// ErrNotFound is returned by Get and Delete for an unknown report ID.
var ErrNotFound = errors.New("report not found")

// Drivers lists the supported database drivers.
var Drivers = []string{"sqlite3", "sqlite", "mysql", "postgres", "pgx"}

// dialects maps drivers to the SQL dialect of their schema file.
var dialects = map[string]string{
	"sqlite3":  "sqlite3",
	"sqlite":   "sqlite3",
	"mysql":    "mysql",
	"postgres": "postgres",
	"pgx":      "postgres",
}

// A DB is a database of PiBench reports.
type DB struct {
	sql     *sql.DB
	dialect string

	// now returns the insertion time. Tests replace it.
	now func() time.Time
}

// Open opens a database using driverName, which must be one of
// Drivers, and a driver-specific data source name. It does not create
// tables; see CreateTables.
func Open(driverName, dataSourceName string) (*DB, error) {
	dialect, ok := dialects[driverName]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q (want one of %s)", driverName, strings.Join(Drivers, ", "))
	}
	if dialect == "mysql" {
		// Validate the DSN here so a typo is reported before
		// any connection attempt.
		cfg, err := mysql.ParseDSN(dataSourceName)
		if err != nil {
			return nil, fmt.Errorf("parsing mysql DSN: %w", err)
		}
		dataSourceName = cfg.FormatDSN()
	}

	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	if dialect == "sqlite3" {
		// Each SQLite connection to ":memory:" is a separate
		// database, and SQLite serializes writers anyway.
		db.SetMaxOpenConns(1)
	}
	return &DB{sql: db, dialect: dialect, now: time.Now}, nil
}

// OpenDSN is like Open, but takes a single "driver:source" string,
// such as "sqlite3:reports.db".
func OpenDSN(dsn string) (*DB, error) {
	driver, source, ok := strings.Cut(dsn, ":")
	if !ok {
		return nil, fmt.Errorf("database %q: want driver:source", dsn)
	}
	return Open(driver, source)
}

// Close closes the database.
func (db *DB) Close() error {
	return db.sql.Close()
}

// CreateTables creates the report tables if they don't already exist.
func (db *DB) CreateTables(ctx context.Context) error {
	schema, err := schemaFS.ReadFile("schema/" + db.dialect + ".sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	// Not every driver accepts several statements in one Exec.
	for _, stmt := range strings.Split(string(schema), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// A Record is a stored report.
type Record struct {
	ID      string
	Label   string
	Created time.Time
	Report  *pibenchfmt.ReportData
}

// Insert stores r under label and returns the new record. The record
// holds a copy of r.
func (db *DB) Insert(ctx context.Context, label string, r *pibenchfmt.ReportData) (*Record, error) {
	rec := &Record{
		ID:      uuid.New().String(),
		Label:   label,
		Created: db.now().UTC().Round(0),
		Report:  r.Clone(),
	}
	o, res := &rec.Report.Options, &rec.Report.Results

	var scanSize sql.NullInt32
	if o.ScanSize != nil {
		scanSize = sql.NullInt32{Int32: *o.ScanSize, Valid: true}
	}
	_, counters := res.Counters()
	var counterArgs []interface{}
	for _, c := range counters {
		counterArgs = append(counterArgs, formatCounter(c))
	}

	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	args := append([]interface{}{
		rec.ID, rec.Label, rec.Created.UnixNano(),
		o.Target, o.Records, o.Operations, o.Threads, o.SamplingMS, o.Latency,
		o.KeyPrefix, o.KeySize, o.ValueSize, o.RandomSeed, o.Distribution.String(), scanSize,
		o.Read, o.Insert, o.Update, o.Delete, o.Scan,
		res.LoadTimeMS, res.RunTimeMS, res.Throughput,
	}, counterArgs...)
	if _, err := tx.ExecContext(ctx, db.rebind(`INSERT INTO reports (`+reportColumns+`) VALUES (`+placeholders(len(args))+`)`), args...); err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}

	if res.Latency != nil {
		_, points := res.Latency.Points()
		args := []interface{}{rec.ID}
		for _, v := range points {
			args = append(args, strconv.FormatUint(v, 10))
		}
		if _, err := tx.ExecContext(ctx, db.rebind(`INSERT INTO latencies (`+latencyColumns+`) VALUES (`+placeholders(len(args))+`)`), args...); err != nil {
			return nil, fmt.Errorf("insert latency: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return rec, nil
}

// reportColumns are the columns of the reports table, in insertion
// order, excluding seq.
const reportColumns = `id, label, created_ns,
	target, records, operations, threads, sampling_ms, latency_ratio,
	key_prefix, key_size, value_size, random_seed, distribution, scan_size,
	read_ratio, insert_ratio, update_ratio, delete_ratio, scan_ratio,
	load_time_ms, run_time_ms, throughput,
	l3_misses, dram_reads, dram_writes, nvm_reads, nvm_writes`

const latencyColumns = `report_id, lat_min, lat_p50, lat_p90, lat_p99, lat_p99_9, lat_p99_99, lat_p99_999, lat_max`

// Get returns the record with the given ID.
func (db *DB) Get(ctx context.Context, id string) (*Record, error) {
	recs, err := db.query(ctx, "WHERE r.id = ?", []interface{}{id}, 0)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return recs[0], nil
}

// A Query selects stored reports. Zero-valued fields match
// everything.
type Query struct {
	Label        string
	Threads      int32
	Distribution string // "UNIFORM" or "ZIPFIAN"

	// Limit is the maximum number of records to return, or 0 for
	// no limit.
	Limit int
}

// List returns the records matching q in insertion order.
func (db *DB) List(ctx context.Context, q Query) ([]*Record, error) {
	var conds []string
	var args []interface{}
	if q.Label != "" {
		conds = append(conds, "r.label = ?")
		args = append(args, q.Label)
	}
	if q.Threads != 0 {
		conds = append(conds, "r.threads = ?")
		args = append(args, q.Threads)
	}
	if q.Distribution != "" {
		if _, err := pibenchfmt.ParseKeyDistribution(q.Distribution); err != nil {
			return nil, err
		}
		conds = append(conds, "r.distribution = ?")
		args = append(args, q.Distribution)
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	return db.query(ctx, where, args, q.Limit)
}

// Delete removes the record with the given ID.
func (db *DB) Delete(ctx context.Context, id string) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, db.rebind("DELETE FROM latencies WHERE report_id = ?"), id); err != nil {
		return fmt.Errorf("delete latency: %w", err)
	}
	res, err := tx.ExecContext(ctx, db.rebind("DELETE FROM reports WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (db *DB) query(ctx context.Context, where string, args []interface{}, limit int) ([]*Record, error) {
	q := `SELECT r.id, r.label, r.created_ns,
		r.target, r.records, r.operations, r.threads, r.sampling_ms, r.latency_ratio,
		r.key_prefix, r.key_size, r.value_size, r.random_seed, r.distribution, r.scan_size,
		r.read_ratio, r.insert_ratio, r.update_ratio, r.delete_ratio, r.scan_ratio,
		r.load_time_ms, r.run_time_ms, r.throughput,
		r.l3_misses, r.dram_reads, r.dram_writes, r.nvm_reads, r.nvm_writes,
		l.lat_min, l.lat_p50, l.lat_p90, l.lat_p99, l.lat_p99_9, l.lat_p99_99, l.lat_p99_999, l.lat_max
	FROM reports r LEFT JOIN latencies l ON l.report_id = r.id ` + where + ` ORDER BY r.seq`
	if limit > 0 {
		q += " LIMIT " + strconv.Itoa(limit)
	}
	rows, err := db.sql.QueryContext(ctx, db.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var recs []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	return recs, nil
}

func scanRecord(rows *sql.Rows) (*Record, error) {
	rec := &Record{Report: new(pibenchfmt.ReportData)}
	o, res := &rec.Report.Options, &rec.Report.Results
	var (
		created  int64
		dist     string
		scanSize sql.NullInt32
		counters [5]sql.NullString
		lat      [8]sql.NullString
	)
	dsts := []interface{}{
		&rec.ID, &rec.Label, &created,
		&o.Target, &o.Records, &o.Operations, &o.Threads, &o.SamplingMS, &o.Latency,
		&o.KeyPrefix, &o.KeySize, &o.ValueSize, &o.RandomSeed, &dist, &scanSize,
		&o.Read, &o.Insert, &o.Update, &o.Delete, &o.Scan,
		&res.LoadTimeMS, &res.RunTimeMS, &res.Throughput,
	}
	for i := range counters {
		dsts = append(dsts, &counters[i])
	}
	for i := range lat {
		dsts = append(dsts, &lat[i])
	}
	if err := rows.Scan(dsts...); err != nil {
		return nil, fmt.Errorf("scan report: %w", err)
	}

	rec.Created = time.Unix(0, created).UTC()
	d, err := pibenchfmt.ParseKeyDistribution(dist)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", rec.ID, err)
	}
	o.Distribution = d
	if scanSize.Valid {
		v := scanSize.Int32
		o.ScanSize = &v
	}

	labels, _ := res.Counters()
	for i, p := range []**uint64{&res.L3Misses, &res.DRAMReads, &res.DRAMWrites, &res.NVMReads, &res.NVMWrites} {
		if *p, err = parseCounter(labels[i], counters[i]); err != nil {
			return nil, fmt.Errorf("report %s: %w", rec.ID, err)
		}
	}

	if lat[0].Valid {
		var v [8]uint64
		for i, s := range lat {
			if !s.Valid {
				return nil, fmt.Errorf("report %s: missing latency column %d", rec.ID, i)
			}
			p, err := parseCounter("latency", s)
			if err != nil {
				return nil, fmt.Errorf("report %s: %w", rec.ID, err)
			}
			v[i] = *p
		}
		res.Latency = &pibenchfmt.LatencyResults{
			Min: v[0], P50: v[1], P90: v[2], P99: v[3],
			P99_9: v[4], P99_99: v[5], P99_999: v[6], Max: v[7],
		}
	}
	return rec, nil
}

func formatCounter(c *uint64) sql.NullString {
	if c == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: strconv.FormatUint(*c, 10), Valid: true}
}

func parseCounter(name string, s sql.NullString) (*uint64, error) {
	if !s.Valid {
		return nil, nil
	}
	v, err := strconv.ParseUint(s.String, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &v, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// rebind rewrites "?" placeholders into the dialect's syntax.
func (db *DB) rebind(q string) string {
	if db.dialect != "postgres" {
		return q
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}
