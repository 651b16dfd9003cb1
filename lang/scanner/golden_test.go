package scanner_test

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mna/lumen/internal/filetest"
	"github.com/mna/lumen/lang/scanner"
	"github.com/mna/lumen/lang/token"
)

var testUpdateScannerTests = flag.Bool("test.update-scanner-tests", false,
	"If set, replace expected scanner golden files with actual results.")

func TestScanGolden(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".lum") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}

			var s scanner.Scanner
			s.Init(string(src))

			var out strings.Builder
			for {
				var tv token.Value
				tok := s.Scan(&tv)
				fmt.Fprintf(&out, "%s %q %d\n", tok, tv.Raw, tv.Pos)
				if tok == token.EOF {
					break
				}
			}

			filetest.DiffOutput(t, fi, out.String(), resultDir, testUpdateScannerTests)
		})
	}
}
