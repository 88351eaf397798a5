// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// runs returns labeled inputs for dir/run1.txt through dir/runN.txt.
func runs(label, dir string, n int) []string {
	var out []string
	for i := 1; i <= n; i++ {
		out = append(out, label+"="+dir+"/run"+string(rune('0'+i))+".txt")
	}
	return out
}

func args(flags []string, inputs ...[]string) []string {
	out := append([]string(nil), flags...)
	for _, in := range inputs {
		out = append(out, in...)
	}
	return out
}

func TestOldNew(t *testing.T) {
	golden(t, "oldNew", args([]string{"-metric", "throughput"}, runs("old", "old", 6), runs("new", "new", 6))...)
}

func TestSmallSample(t *testing.T) {
	// These reports don't have enough samples to compute a CI or
	// delta. The last report has no latency block, so the p50
	// table is missing a cell and its geomean gets a warning.
	golden(t, "smallSample", "-metric", "throughput,p50",
		"old=small/old-t1.txt", "old=small/old-t4.txt",
		"new=small/new-t1.txt", "new=small/new-t4.txt")
}

func TestVary(t *testing.T) {
	// Reports in one cell differ in key size.
	golden(t, "vary", "-metric", "throughput", "x=vary/a.txt", "x=vary/b.txt")

	// Ignoring key size silences the warning.
	out, _ := run(t, "-metric", "throughput", "-ignore", "key-size", "x=vary/a.txt", "x=vary/b.txt")
	if strings.Contains(out, "vary") {
		t.Errorf("-ignore key-size: want no variation warning, got:\n%s", out)
	}

	// So does projecting it.
	out, _ = run(t, "-metric", "throughput", "-col", ".label,key-size", "x=vary/a.txt", "x=vary/b.txt")
	if strings.Contains(out, "vary") {
		t.Errorf("-col .label,key-size: want no variation warning, got:\n%s", out)
	}
}

func TestBadReport(t *testing.T) {
	// A report that fails to parse is skipped with a warning.
	out, errOut := run(t, "-metric", "throughput", "old=old/run1.txt", "bad.txt")
	if !strings.Contains(errOut, `level=WARN msg="skipping report" file=bad.txt`) {
		t.Errorf("want skip warning for bad.txt, got stderr:\n%s", errOut)
	}
	if strings.Contains(errOut, "time=") {
		t.Errorf("want no timestamps in log output, got:\n%s", errOut)
	}
	if !strings.Contains(out, "100.0k") {
		t.Errorf("want remaining report summarized, got:\n%s", out)
	}
}

func TestVerbose(t *testing.T) {
	_, errOut := run(t, "-v", "-metric", "throughput", "old=old/run1.txt")
	if !strings.Contains(errOut, `level=DEBUG msg="read report" file=old/run1.txt label=old`) {
		t.Errorf("want debug log for each input, got:\n%s", errOut)
	}
}

func TestFixedOrderFilter(t *testing.T) {
	// A fixed order drops reports whose value isn't listed.
	out, _ := run(t, "-metric", "throughput", "-row", "threads@(4)",
		"old=small/old-t1.txt", "old=small/old-t4.txt")
	if strings.Contains(out, "100.0k") || !strings.Contains(out, "400.0k") {
		t.Errorf("want only the 4-thread report, got:\n%s", out)
	}
}

func TestTableBy(t *testing.T) {
	// -table splits each metric into one table per thread count.
	out, _ := run(t, "-metric", "throughput", "-table", "threads", "-row", "distribution",
		"old=small/old-t1.txt", "old=small/old-t4.txt")
	i1, i4 := strings.Index(out, "threads: 1\n"), strings.Index(out, "threads: 4\n")
	if i1 < 0 || i4 < i1 {
		t.Errorf("want threads: 1 table before threads: 4 table, got:\n%s", out)
	}
}

func TestCSV(t *testing.T) {
	out, _ := run(t, args([]string{"-format", "csv", "-metric", "throughput"}, runs("old", "old", 6), runs("new", "new", 6))...)
	for _, want := range []string{
		",old,,new\n",
		"throughput,ops/s,CI,ops/s,CI,vs base,P\n",
		"1,102500,2%,112500,2%,+9.76%,p=0.002 n=6\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("want line %q in CSV output:\n%s", want, out)
		}
	}

	// Warnings go to stderr with cell references.
	_, errOut := run(t, "-format", "csv", "-metric", "throughput", "x=vary/a.txt", "x=vary/b.txt")
	if !strings.Contains(errOut, "B3: reports vary in key-size\n") {
		t.Errorf("want cell-referenced warning, got stderr:\n%s", errOut)
	}
}

func TestJSON(t *testing.T) {
	out, _ := run(t, args([]string{"-format", "json", "-metric", "throughput"}, runs("old", "old", 6), runs("new", "new", 6))...)

	var tables []struct {
		Metric         string `json:"metric"`
		Unit           string `json:"unit"`
		HigherIsBetter bool   `json:"higher_is_better"`
		Rows           []struct {
			Row   string `json:"row"`
			Cells []struct {
				Col    string   `json:"col"`
				N      int      `json:"n"`
				Center float64  `json:"center"`
				Lo     *float64 `json:"lo"`
				Hi     *float64 `json:"hi"`
				Delta  string   `json:"delta"`
				P      *float64 `json:"p"`
				Better int      `json:"better"`
			} `json:"cells"`
		} `json:"rows"`
	}
	if err := json.Unmarshal([]byte(out), &tables); err != nil {
		t.Fatalf("bad JSON: %v\n%s", err, out)
	}
	if len(tables) != 1 {
		t.Fatalf("want 1 table, got %d", len(tables))
	}
	tab := tables[0]
	if tab.Metric != "throughput" || tab.Unit != "ops/s" || !tab.HigherIsBetter {
		t.Errorf("want throughput in ops/s, higher is better, got %+v", tab)
	}
	if len(tab.Rows) != 1 || len(tab.Rows[0].Cells) != 2 {
		t.Fatalf("want 1 row with 2 cells, got %+v", tab.Rows)
	}
	base, cmp := tab.Rows[0].Cells[0], tab.Rows[0].Cells[1]
	if base.Col != "old" || base.N != 6 || base.Center != 102500 {
		t.Errorf("bad baseline cell %+v", base)
	}
	if base.Lo == nil || *base.Lo != 100000 || base.Hi == nil || *base.Hi != 105000 {
		t.Errorf("want baseline CI [100000, 105000], got %v, %v", base.Lo, base.Hi)
	}
	if base.P != nil {
		t.Errorf("want no p-value for baseline, got %v", *base.P)
	}
	if cmp.Col != "new" || cmp.Delta != "+9.76%" || cmp.P == nil || *cmp.P >= 0.05 || cmp.Better != 1 {
		t.Errorf("bad comparison cell %+v", cmp)
	}
}

func TestErrors(t *testing.T) {
	for _, test := range []struct {
		name string
		args []string
		want string
	}{
		{"no inputs", nil, "no inputs"},
		{"format", []string{"-format", "xml", "x.txt"}, "-format must be"},
		{"metric", []string{"-metric", "latency", "x.txt"}, `unknown metric "latency"`},
		{"empty metric", []string{"-metric", ",", "x.txt"}, "no metrics selected"},
		{"alpha", []string{"-alpha", "2", "x.txt"}, "-alpha must be"},
		{"confidence", []string{"-confidence", "1", "x.txt"}, "-confidence must be"},
		{"row key", []string{"-row", "nokey", "x.txt"}, `parsing -row: `},
		{"col syntax", []string{"-col", "threads@(", "x.txt"}, `parsing -col: `},
		{"flag", []string{"-nosuchflag"}, "not defined"},
	} {
		t.Run(test.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			err := pistat(&out, &errOut, test.args)
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Errorf("want error containing %q, got %v", test.want, err)
			}
		})
	}

	defer chdir(t)()
	var out, errOut bytes.Buffer
	err := pistat(&out, &errOut, []string{"old=no-such-file.txt"})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing input: want ErrNotExist, got %v", err)
	}
}

// chdir changes to testdata and returns a function that changes back.
func chdir(t *testing.T) func() {
	t.Helper()
	// TODO: If pibenchfmt.Files supported fs.FS, we wouldn't need this.
	if err := os.Chdir("testdata"); err != nil {
		t.Fatal(err)
	}
	return func() { os.Chdir("..") }
}

func run(t *testing.T, args ...string) (stdout, stderr string) {
	t.Helper()
	defer chdir(t)()
	var got, gotErr bytes.Buffer
	if err := pistat(&got, &gotErr, args); err != nil {
		t.Fatalf("pistat %s: %s", strings.Join(args, " "), err)
	}
	return got.String(), gotErr.String()
}

func golden(t *testing.T, name string, args ...string) {
	t.Helper()
	t.Logf("pistat %s", strings.Join(args, " "))
	got, gotErr := run(t, args...)

	// Compare to the golden output.
	compare(t, name, "stdout", []byte(got))
	compare(t, name, "stderr", []byte(gotErr))
}

// normalize collapses runs of spaces, since column widths depend on
// tabwriter padding rather than on the results.
func normalize(data []byte) string {
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}

func compare(t *testing.T, name, sub string, got []byte) {
	t.Helper()

	wantPath := "testdata/" + name + "." + sub
	want, err := os.ReadFile(wantPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Treat a missing file as empty.
			want = nil
		} else {
			t.Fatal(err)
		}
	}

	if normalize(want) == normalize(got) {
		return
	}

	// Write a "got" file for reference.
	gotPath := "testdata/" + name + ".got-" + sub
	if err := os.WriteFile(gotPath, got, 0666); err != nil {
		t.Fatalf("error writing %s: %s", gotPath, err)
	}

	data, err := exec.Command("diff", "-Nu", wantPath, gotPath).CombinedOutput()
	if len(data) > 0 {
		t.Errorf("diff -Nu %s %s:\n%s", wantPath, gotPath, string(data))
		return
	}
	// Most likely, "diff not found" so print the bad output so there is something.
	t.Errorf("want:\n%sgot:\n%s", string(want), string(got))
}
