// Package subhash implements the Bloom filter's hash schedule: expanding a
// single 64-bit digest into many cheap sub-hashes by shift-stamping, and
// generating the deterministic seed sequence that feeds those digests.
package subhash

import "math/rand"

// NHashesPerWord returns floor(64/p), the number of sub-hashes that can be
// shift-stamped out of one 64-bit digest when bit indices need p bits.
func NHashesPerWord(p uint8) uint8 {
	return uint8(64 / p)
}

// Seeds deterministically generates a sequence of distinct 64-bit seeds,
// seeded by seedseed, long enough that len(seeds) * NHashesPerWord(p) >= nh.
// The final seed in the returned slice may contribute fewer than
// NHashesPerWord(p) sub-hashes; callers discard the excess.
func Seeds(seedseed uint64, nh int, p uint8) []uint64 {
	k := int(NHashesPerWord(p))
	rng := rand.New(rand.NewSource(int64(seedseed)))
	seen := make(map[uint64]struct{})
	var seeds []uint64
	for len(seeds)*k < nh {
		v := rng.Uint64()
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		seeds = append(seeds, v)
	}
	return seeds
}

// Stamp invokes fn with each of the first count sub-hashes shift-stamped
// out of digest: digest>>0, digest>>p, digest>>2p, ..., each masked with
// mask. The order is fixed so insertion and query agree.
func Stamp(digest uint64, p uint8, count int, mask uint64, fn func(uint64)) {
	shift := uint(p)
	for i := 0; i < count; i++ {
		fn((digest >> (shift * uint(i))) & mask)
	}
}

// StampUntil is Stamp with early exit: it stops as soon as fn returns
// false, and reports whether every sub-hash's fn call returned true. Used
// by MayContain to short-circuit on the first unset bit.
func StampUntil(digest uint64, p uint8, count int, mask uint64, fn func(uint64) bool) bool {
	shift := uint(p)
	for i := 0; i < count; i++ {
		if !fn((digest >> (shift * uint(i))) & mask) {
			return false
		}
	}
	return true
}
