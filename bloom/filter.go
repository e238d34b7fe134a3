// Package bloom implements a blocked Bloom filter parametrized by a
// pluggable 64-bit hash functor.
//
// A Bloom filter is a probabilistic data structure that answers set
// membership queries: it never reports a false negative, but may report a
// false positive at a rate controlled by its size and number of hash
// functions.
//
// The Algorithm
// =============
//
// Insertion hashes the item once per seed: digest = H(item ^ seed), where H
// is the pluggable HashFunctor and seed comes from a deterministic sequence
// derived from seedseed. Rather than drawing one fresh hash per bit (the
// textbook approach), each 64-bit digest is shift-stamped into up to
// floor(64/p) sub-hashes, where p is the number of bits needed to index the
// table (m = 2^p). This amortizes the cost of the strong hash across
// several cheap bit indices while remaining independent enough for the
// standard Bloom-filter false-positive analysis to hold.
//
// Data Layout
// ===========
//
// The filter's bitset is a flat array of 64-bit words (internal/bitset).
// There is no block/cache-line partitioning here — every one of the nh
// stamped bits may land anywhere in the table, the classical (non-blocked
// in the cache sense) scheme that the rest of this package's estimators and
// set-algebra assume. "Blocked" in this package's sense refers to the
// shift-stamping of many sub-hashes out of one digest, not to cache-line
// partitioning.
//
// Set-algebra operations (union/intersection/xor) and the Jaccard/
// cardinality estimators all require identical (np, nh, seedseed) on both
// operands — see Filter.SameParams.
package bloom

import (
	"fmt"
	"strconv"
	"strings"
	"unsafe"

	"go.sketchcore.dev/sketch/internal/bitset"
	"go.sketchcore.dev/sketch/internal/subhash"
)

// offset is log2(64): a filter's bit-length m is always a multiple of 64
// bits (whole words), so the smallest representable table is 2^offset = 64
// bits.
const offset = 6

// MaxNP is the largest legal value of np (m = 2^46 bits = 8TiB).
const MaxNP = 40

// Filter is a blocked Bloom filter. The zero value is not usable; construct
// with New or Read.
type Filter struct {
	np       uint8
	nh       uint8
	hf       HashFunctor
	core     bitset.Core
	seeds    []uint64
	seedseed uint64
	mask     uint64
}

// New constructs a Filter sized so that m = 2^p bits, where p = l2sz if
// l2sz > offset, else p = offset with no storage allocated (an "empty"
// filter). nh is the
// number of logical hash bits tested/set per item (1..255). seedseed
// deterministically derives the seed sequence.
func New(l2sz uint8, nh uint8, seedseed uint64) (*Filter, error) {
	if nh == 0 {
		nh = 1
	}
	var np uint8
	if l2sz > offset {
		np = l2sz - offset
	}
	if np > MaxNP {
		return nil, fmt.Errorf("%w: np=%d > %d", ErrOversize, np, MaxNP)
	}
	f := &Filter{
		nh:       nh,
		hf:       DefaultHashFunctor(),
		seedseed: seedseed,
	}
	if np > 0 {
		if err := f.Resize(uint64(1) << (np + offset)); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// WithHashFunctor overrides the filter's hash functor. It must be called
// before any items are added, since the functor's state is serialized
// alongside the filter's other parameters.
func (f *Filter) WithHashFunctor(hf HashFunctor) *Filter {
	f.hf = hf
	return f
}

// p is the number of bits needed to index the table: m = 2^p.
func (f *Filter) p() uint8 { return f.np + offset }

// M returns the table size in bits.
func (f *Filter) M() uint64 { return uint64(1) << f.p() }

// NHashes returns nh, the number of logical hash bits tested/set per item.
func (f *Filter) NHashes() uint8 { return f.nh }

// Mask returns m-1, used to reduce any sub-hash into range via AND.
func (f *Filter) Mask() uint64 { return f.mask }

// SeedSeed returns the RNG seed that deterministically produced Seeds().
func (f *Filter) SeedSeed() uint64 { return f.seedseed }

// Seeds returns the seed sequence used to expand items into sub-hashes.
func (f *Filter) Seeds() []uint64 { return f.seeds }

// IsEmpty reports whether the filter has no backing storage (np == 0).
func (f *Filter) IsEmpty() bool { return f.np == 0 }

// SameParams reports whether f and other share (np, nh, seedseed), the
// precondition for every set-algebra and cardinality-comparison operation.
func (f *Filter) SameParams(other *Filter) bool {
	return f.np == other.np && f.nh == other.nh && f.seedseed == other.seedseed
}

// Clone returns a filter with the same parameters as f, backed by its own
// freshly allocated, zeroed storage (no items inserted).
func (f *Filter) Clone() (*Filter, error) {
	return New(f.p(), f.nh, f.seedseed)
}

// String implements fmt.Stringer with a debug-friendly summary, including
// the comma-joined seed list.
func (f *Filter) String() string {
	seeds := make([]string, len(f.seeds))
	for i, s := range f.seeds {
		seeds[i] = strconv.FormatUint(s, 10)
	}
	return fmt.Sprintf("bloom.Filter{m=%d, nh=%d, seedseed=%d, seeds=%s, popcount=%d}",
		f.M(), f.nh, f.seedseed, strings.Join(seeds, ","), f.Popcount())
}

// EstMemoryUsage returns (struct size, backing-storage size) in bytes.
func (f *Filter) EstMemoryUsage() (structSize, dataSize int) {
	structSize = int(unsafe.Sizeof(Filter{}))
	dataSize = len(f.core)*8 + len(f.seeds)*8
	return
}

// Resize rounds newM up to the next power of two, clears, and re-seeds the
// filter to that size.
func (f *Filter) Resize(newM uint64) error {
	newM = roundUpPow2(newM)
	if newM < 1<<offset {
		// Degenerates to an empty filter: no storage, no seeds.
		f.np = 0
		f.core = nil
		f.mask = 0
		f.seeds = nil
		return nil
	}
	p := ilog2(newM) // newM is an exact power of two >= 2^offset here.
	np := p - offset
	if np > MaxNP {
		return fmt.Errorf("%w: np=%d > %d", ErrOversize, np, MaxNP)
	}
	f.np = np
	f.core = bitset.New(int(newM / 64))
	f.mask = newM - 1
	f.seeds = subhash.Seeds(f.seedseed, int(f.nh), f.p())
	return nil
}

// Halve OR-folds the upper half of the table onto the lower half, halves
// storage, and decrements np by one. Seeds are not regenerated: they are
// independent of m beyond the final masking step.
func (f *Filter) Halve() error {
	if f.np == 0 {
		return ErrEmptyFilter
	}
	f.core = f.core.FoldHalf()
	f.np--
	f.mask = f.M() - 1
	return nil
}

// Clear zeros the backing storage without changing parameters.
func (f *Filter) Clear() {
	f.core.Clear()
}

// Free releases the backing storage while keeping parameters (np, nh,
// seeds, seedseed, mask) intact.
func (f *Filter) Free() {
	f.core = nil
}

// roundUpPow2 rounds x up to the next power of two (x itself if already a
// power of two).
func roundUpPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	return uint64(1) << ilog2ceil(x)
}

// ilog2 returns floor(log2(x)) for x > 0.
func ilog2(x uint64) uint8 {
	var p uint8
	for x > 1 {
		x >>= 1
		p++
	}
	return p
}

// ilog2ceil returns ceil(log2(x)) for x > 0.
func ilog2ceil(x uint64) uint8 {
	p := ilog2(x)
	if uint64(1)<<p < x {
		p++
	}
	return p
}
