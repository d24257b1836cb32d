// Package filetest provides a golden-file comparison harness for
// internal/compile's full-pipeline tests, adapted from the teacher's
// internal/filetest: instead of nenuphar's `.nu`/`.want` pairs, it drives
// `.c` sources against `.rasm` (generated NASM source) and `.err` (fatal
// diagnostic text) golden files.
package filetest

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/kylelemons/godebug/diff"
)

var testUpdateAllTests = flag.Bool("test.update-all-tests", false, "If set, sets all test.update-*-tests.")

// SourceFiles returns the `.c` source files directly inside dir, sorted by
// os.ReadDir's own name order.
func SourceFiles(t *testing.T, dir string) []os.FileInfo {
	t.Helper()

	dents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	res := make([]os.FileInfo, 0, len(dents))
	for _, dent := range dents {
		if !dent.Type().IsRegular() || filepath.Ext(dent.Name()) != ".c" {
			continue
		}
		fi, err := dent.Info()
		if err != nil {
			t.Fatal(err)
		}
		res = append(res, fi)
	}
	return res
}

// DiffAsm validates that asm matches fi's golden `.rasm` file in dir.
func DiffAsm(t *testing.T, fi os.FileInfo, asm, dir string, update *bool) {
	t.Helper()
	diffCustom(t, fi, "assembly", ".rasm", asm, dir, update)
}

// DiffErr validates that errText matches fi's golden `.err` file in dir.
func DiffErr(t *testing.T, fi os.FileInfo, errText, dir string, update *bool) {
	t.Helper()
	diffCustom(t, fi, "error", ".err", errText, dir, update)
}

func diffCustom(t *testing.T, fi os.FileInfo, label, ext, output, dir string, update *bool) {
	t.Helper()

	goldFile := filepath.Join(dir, fi.Name()+ext)
	if *update || *testUpdateAllTests {
		if err := os.WriteFile(goldFile, []byte(output), 0o600); err != nil {
			t.Fatal(err)
		}
		return
	}

	wantb, err := os.ReadFile(goldFile)
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	want := string(wantb)
	if testing.Verbose() {
		t.Logf("got %s:\n%s\n", label, output)
	}
	if patch := diff.Diff(want, output); patch != "" {
		if testing.Verbose() {
			t.Logf("want %s:\n%s\n", label, want)
		}
		t.Errorf("diff %s:\n%s\n", label, patch)
	}
}
