// sketch-verify is a diagnostic tool for inspecting and validating a
// serialized bloom.Filter file. It performs a streaming decode of the
// header, reporting structural problems (truncation, an oversize np, a
// seed count that implies more bytes than remain) before touching the
// bitset itself.
//
// Usage Examples
// ==============
//
// Basic validation (checks structure only):
//
//	sketch-verify -file filter.bin
//
// Verbose mode (prints parameters and popcount):
//
//	sketch-verify -file filter.bin -v
//
// Exit Codes
// ==========
//
// 0: The file decodes to a structurally valid filter.
// 1: The file is corrupted, truncated, or unreadable.
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"

	"flag"

	"go.sketchcore.dev/sketch/bloom"
)

// countReader wraps an io.Reader to track the cumulative byte offset, for
// pinpointing where in the file decoding failed.
type countReader struct {
	r     *bufio.Reader
	count int64
}

func (cr *countReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.count += int64(n)
	return n, err
}

func main() {
	filePath := flag.String("file", "filter.bin", "Path to a serialized bloom.Filter")
	verbose := flag.Bool("v", false, "Verbose mode (print parameters and popcount)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	f, err := os.Open(*filePath)
	if err != nil {
		logger.Error("cannot open file", "path", *filePath, "err", err)
		os.Exit(1)
	}
	defer func() { _ = f.Close() }()

	cr := &countReader{r: bufio.NewReader(f)}

	filter, err := bloom.Read(cr)
	if err != nil {
		logger.Error("decode failed", "offset", cr.count, "err", err)
		os.Exit(1)
	}

	fmt.Printf("OK: %s\n", *filePath)
	if *verbose {
		fmt.Printf("  m:        %d\n", filter.M())
		fmt.Printf("  nh:       %d\n", filter.NHashes())
		fmt.Printf("  seedseed: %d\n", filter.SeedSeed())
		fmt.Printf("  seeds:    %d\n", len(filter.Seeds()))
		fmt.Printf("  popcount: %d\n", filter.Popcount())
		n, fp := filter.CardinalityEstimate(), filter.FalsePositiveEstimate()
		fmt.Printf("  est. n:   %.1f\n", n)
		fmt.Printf("  est. fp:  %.4f\n", fp)
	}
}
