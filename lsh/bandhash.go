package lsh

import (
	"math/bits"

	"github.com/zeebo/xxh3"

	"go.sketchcore.dev/sketch/internal/divisor"
)

// bandHasher computes one sub-table key from a sketch given band
// coordinates (table index, row index).
type bandHasher[T Register] struct {
	m int
	d divisor.Fast
}

func newBandHasher[T Register](m int) bandHasher[T] {
	return bandHasher[T]{m: m, d: divisor.New(uint64(m))}
}

// key computes the band key for sketch v at (table i, row j), where r is
// that table's registers-per-key (regs_per_reg[i]).
//
// Contiguous mode (r >= 4 and the window fits within the sketch) hashes a
// single contiguous run of r registers with XXH3-64. Otherwise, sampled
// mode seeds a running XXH3-64 state with (i<<32)|j and feeds it r
// pseudo-randomly chosen registers, selected by repeatedly advancing a
// separate stateless 64-bit mixer (itself seeded from the same (i<<32)|j
// value) and reducing modulo m via a fast divisor.
func (bh bandHasher[T]) key(v Sketch[T], i, j, r int) uint64 {
	if r >= 4 && (j+1)*r <= bh.m {
		return xxh3.Hash(bytesOf(v, j*r, r))
	}

	seed := uint64(i)<<32 | uint64(j)
	h := xxh3.NewSeed(seed)
	for ri := 0; ri < r; ri++ {
		idx := bh.d.Mod(wyhash64Stateless(&seed))
		_, _ = h.Write(elemBytes(v, int(idx)))
	}
	return h.Sum64()
}

// wyhash64Stateless advances *seed and returns one pseudo-random 64-bit
// value: seed += 0x60bee2bee120fc15; return
// wymum(seed ^ 0xe7037ed1a0b428db, seed).
func wyhash64Stateless(seed *uint64) uint64 {
	*seed += 0x60bee2bee120fc15
	return wymum(*seed^0xe7037ed1a0b428db, *seed)
}

// wymum folds the full 128-bit product of x*y down to 64 bits by xoring
// its high and low halves.
func wymum(x, y uint64) uint64 {
	hi, lo := bits.Mul64(x, y)
	return hi ^ lo
}
