// sketch-bench drives a Bloom filter and an LSH index with synthetic data,
// reporting insertion throughput, observed false-positive rate against the
// estimator, and (optionally) the size of a zstd-compressed serialization
// of the resulting filter.
//
// Usage
// =====
//
//	sketch-bench -n 100000 -bits 20 -hashes 7
//	sketch-bench -n 100000 -compress
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"

	"go.sketchcore.dev/sketch/bloom"
	"go.sketchcore.dev/sketch/lsh"
)

type config struct {
	n         int
	l2sz      int
	nh        int
	seedseed  uint64
	compress  bool
	lshBands  bool
	sketchLen int
}

func main() {
	var cfg config
	flag.IntVar(&cfg.n, "n", 100_000, "number of items to insert")
	flag.IntVar(&cfg.l2sz, "bits", 22, "log2 of the filter's bit length")
	flag.IntVar(&cfg.nh, "hashes", 7, "number of logical hash bits per item")
	flag.Uint64Var(&cfg.seedseed, "seedseed", 1, "deterministic seed for the hash schedule")
	flag.BoolVar(&cfg.compress, "compress", false, "zstd-compress the serialized filter and report its size")
	flag.BoolVar(&cfg.lshBands, "lsh", false, "also build and query an LSH index over random sketches")
	flag.IntVar(&cfg.sketchLen, "sketch-len", 64, "register count for the LSH demo")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	f, err := bloom.New(uint8(cfg.l2sz), uint8(cfg.nh), cfg.seedseed)
	if err != nil {
		logger.Error("failed to construct filter", "err", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(42))
	start := time.Now()
	for i := 0; i < cfg.n; i++ {
		if err := f.Add(rng.Uint64()); err != nil {
			logger.Error("add failed", "err", err)
			os.Exit(1)
		}
	}
	insertElapsed := time.Since(start)

	falsePositives := 0
	const probes = 10_000
	probeRng := rand.New(rand.NewSource(1337))
	for i := 0; i < probes; i++ {
		if f.MayContain(probeRng.Uint64()) {
			falsePositives++
		}
	}

	fmt.Printf("inserted %d items in %v (%.0f/s)\n", cfg.n, insertElapsed, float64(cfg.n)/insertElapsed.Seconds())
	fmt.Printf("popcount:            %d / %d\n", f.Popcount(), f.M())
	fmt.Printf("cardinality est.:    %.1f\n", f.CardinalityEstimate())
	fmt.Printf("false positive est.: %.4f\n", f.FalsePositiveEstimate())
	fmt.Printf("observed fp rate:    %.4f (%d/%d random probes)\n", float64(falsePositives)/float64(probes), falsePositives, probes)

	if cfg.compress {
		var buf bytes.Buffer
		if err := f.Write(&buf); err != nil {
			logger.Error("serialize failed", "err", err)
			os.Exit(1)
		}
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			logger.Error("zstd writer failed", "err", err)
			os.Exit(1)
		}
		compressed := enc.EncodeAll(buf.Bytes(), nil)
		fmt.Printf("serialized size:     %d bytes\n", buf.Len())
		fmt.Printf("compressed size:     %d bytes (%.1f%%)\n", len(compressed), 100*float64(len(compressed))/float64(buf.Len()))
	}

	if cfg.lshBands {
		runLSHDemo(logger, cfg)
	}
}

func runLSHDemo(logger *slog.Logger, cfg config) {
	idx := lsh.NewPowerOfTwo[uint32](cfg.sketchLen)
	rng := rand.New(rand.NewSource(7))

	const nSketches = 1000
	sketches := make([]lsh.Sketch[uint32], nSketches)
	for i := range sketches {
		s := make(lsh.Sketch[uint32], cfg.sketchLen)
		for j := range s {
			s[j] = rng.Uint32()
		}
		sketches[i] = s
		if _, err := idx.Insert(s); err != nil {
			logger.Error("lsh insert failed", "err", err)
			os.Exit(1)
		}
	}

	ids, counts, err := idx.QueryCandidatesDefault(sketches[0], 10)
	if err != nil {
		logger.Error("lsh query failed", "err", err)
		os.Exit(1)
	}
	fmt.Printf("lsh: %d tables, %d sketches indexed\n", idx.NTables(), idx.Size())
	fmt.Printf("lsh: query for sketch 0 returned %d candidates across %d tables: %v\n", len(ids), len(counts), ids)
}
