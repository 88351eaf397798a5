// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pibench/perf/pibenchfmt"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	return openDriver(t, "sqlite3")
}

func openDriver(t *testing.T, driver string) *DB {
	t.Helper()
	db, err := Open(driver, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.CreateTables(context.Background()))
	return db
}

func u64(v uint64) *uint64 { return &v }

func testReport(threads int32, dist pibenchfmt.KeyDistribution) *pibenchfmt.ReportData {
	scan := int32(100)
	return &pibenchfmt.ReportData{
		Options: pibenchfmt.BenchmarkOptions{
			Target:       "libtlx_btree_wrapper.so",
			Records:      1000000,
			Operations:   1000000,
			Threads:      threads,
			SamplingMS:   1000,
			Latency:      0.1,
			KeyPrefix:    "k",
			KeySize:      8,
			ValueSize:    8,
			RandomSeed:   1729,
			Distribution: dist,
			ScanSize:     &scan,
			Read:         0.5,
			Update:       0.5,
		},
		Results: pibenchfmt.BenchmarkResults{
			LoadTimeMS: 526.675,
			RunTimeMS:  7919.34,
			Throughput: 126274.7969,
			L3Misses:   u64(0),
			DRAMReads:  u64(math.MaxUint64),
			NVMWrites:  u64(42),
			Latency: &pibenchfmt.LatencyResults{
				Min: 100, P50: 400, P90: 900, P99: 1800,
				P99_9: 2500, P99_99: 6000, P99_999: 12000, Max: math.MaxUint64,
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTest(t)
	created := time.Date(2026, 3, 14, 15, 9, 26, 535897932, time.UTC)
	db.now = func() time.Time { return created }

	in := testReport(4, pibenchfmt.Zipfian)
	rec, err := db.Insert(ctx, "btree", in)
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	assert.Equal(t, in, rec.Report)
	assert.NotSame(t, in, rec.Report)

	got, err := db.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "btree", got.Label)
	assert.True(t, got.Created.Equal(created), "created %v, want %v", got.Created, created)
	assert.Equal(t, in, got.Report)
}

func TestPureGoSQLite(t *testing.T) {
	ctx := context.Background()
	db := openDriver(t, "sqlite")

	in := testReport(8, pibenchfmt.Uniform)
	rec, err := db.Insert(ctx, "modernc", in)
	require.NoError(t, err)
	got, err := db.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, in, got.Report)
}

func TestRoundTripBare(t *testing.T) {
	ctx := context.Background()
	db := openTest(t)

	// No scan size, counters or latency.
	in := &pibenchfmt.ReportData{}
	in.Options.Threads = 1
	in.Results.Throughput = 1.5e6
	rec, err := db.Insert(ctx, "", in)
	require.NoError(t, err)

	got, err := db.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, in, got.Report)
	assert.Nil(t, got.Report.Options.ScanSize)
	assert.Nil(t, got.Report.Results.L3Misses)
	assert.Nil(t, got.Report.Results.Latency)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	db := openTest(t)

	var ids []string
	for _, r := range []struct {
		label   string
		threads int32
		dist    pibenchfmt.KeyDistribution
	}{
		{"a", 1, pibenchfmt.Uniform},
		{"a", 4, pibenchfmt.Zipfian},
		{"b", 1, pibenchfmt.Zipfian},
		{"b", 4, pibenchfmt.Uniform},
		{"a", 1, pibenchfmt.Zipfian},
	} {
		rec, err := db.Insert(ctx, r.label, testReport(r.threads, r.dist))
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	check := func(q Query, want ...int) {
		t.Helper()
		recs, err := db.List(ctx, q)
		require.NoError(t, err)
		var got []string
		for _, rec := range recs {
			got = append(got, rec.ID)
		}
		var wantIDs []string
		for _, i := range want {
			wantIDs = append(wantIDs, ids[i])
		}
		assert.Equal(t, wantIDs, got, "query %+v", q)
	}
	check(Query{}, 0, 1, 2, 3, 4)
	check(Query{Label: "a"}, 0, 1, 4)
	check(Query{Threads: 1}, 0, 2, 4)
	check(Query{Distribution: "ZIPFIAN"}, 1, 2, 4)
	check(Query{Label: "a", Threads: 1, Distribution: "ZIPFIAN"}, 4)
	check(Query{Label: "c"})
	check(Query{Limit: 2}, 0, 1)

	_, err := db.List(ctx, Query{Distribution: "zipfian"})
	var de *pibenchfmt.DistributionError
	assert.ErrorAs(t, err, &de)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	db := openTest(t)

	keep, err := db.Insert(ctx, "keep", testReport(1, pibenchfmt.Uniform))
	require.NoError(t, err)
	gone, err := db.Insert(ctx, "gone", testReport(2, pibenchfmt.Uniform))
	require.NoError(t, err)

	require.NoError(t, db.Delete(ctx, gone.ID))
	_, err = db.Get(ctx, gone.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, db.Delete(ctx, gone.ID), ErrNotFound)

	recs, err := db.List(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, keep.ID, recs[0].ID)
}

func TestGetNotFound(t *testing.T) {
	db := openTest(t)
	_, err := db.Get(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTablesTwice(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reports.db")
	db, err := OpenDSN("sqlite3:" + path)
	require.NoError(t, err)
	require.NoError(t, db.CreateTables(ctx))
	rec, err := db.Insert(ctx, "x", testReport(1, pibenchfmt.Uniform))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening keeps existing rows.
	db, err = OpenDSN("sqlite3:" + path)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.CreateTables(ctx))
	_, err = db.Get(ctx, rec.ID)
	assert.NoError(t, err)
}

func TestOpenErrors(t *testing.T) {
	for _, dsn := range []string{
		"sqlite3",
		"oracle:scott/tiger",
		"mysql:no-slash",
	} {
		if db, err := OpenDSN(dsn); err == nil {
			db.Close()
			t.Errorf("OpenDSN(%q): want error", dsn)
		}
	}
}

func TestRebind(t *testing.T) {
	pg := &DB{dialect: "postgres"}
	assert.Equal(t, "a = $1 AND b = $2", pg.rebind("a = ? AND b = ?"))
	lite := &DB{dialect: "sqlite3"}
	assert.Equal(t, "a = ? AND b = ?", lite.rebind("a = ? AND b = ?"))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
