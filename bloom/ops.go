package bloom

import "go.sketchcore.dev/sketch/internal/subhash"

// npw returns floor(64/p) for the filter's current p, the number of
// sub-hashes extractable from a single digest.
func (f *Filter) npw() int { return int(subhash.NHashesPerWord(f.p())) }

// forEachStampedBit walks the filter's nh logical hash bits for item,
// invoking fn with each stamped index. It never short-circuits: every bit
// is visited regardless of what fn returns for earlier ones.
func (f *Filter) forEachStampedBit(item uint64, fn func(idx uint64)) {
	npw := f.npw()
	p := f.p()
	nleft := int(f.nh)
	for _, seed := range f.seeds {
		if nleft <= 0 {
			break
		}
		count := npw
		if count > nleft {
			count = nleft
		}
		digest := f.hf.Digest(item ^ seed)
		subhash.Stamp(digest, p, count, f.mask, fn)
		nleft -= count
	}
}

// forEachStampedBitUntil is forEachStampedBit with early exit: it stops at
// the first fn call that returns false and reports whether every call
// returned true.
func (f *Filter) forEachStampedBitUntil(item uint64, fn func(idx uint64) bool) bool {
	npw := f.npw()
	p := f.p()
	nleft := int(f.nh)
	for _, seed := range f.seeds {
		if nleft <= 0 {
			break
		}
		count := npw
		if count > nleft {
			count = nleft
		}
		digest := f.hf.Digest(item ^ seed)
		if !subhash.StampUntil(digest, p, count, f.mask, fn) {
			return false
		}
		nleft -= count
	}
	return true
}

// Add stamps nh bits for item. It does not report whether the item was
// already present; use MayContainAndAdd for that.
func (f *Filter) Add(item uint64) error {
	if f.np == 0 {
		return ErrEmptyFilter
	}
	f.forEachStampedBit(item, func(idx uint64) { f.core.Set(idx) })
	return nil
}

// AddBytes hashes b with the implementation-default 64-bit digest and adds
// the result.
func (f *Filter) AddBytes(b []byte) error {
	return f.Add(digestBytes(b))
}

// MayContain reports whether item may be in the set. It short-circuits on
// the first unset bit. On an empty filter (no storage), it deterministically
// returns false.
func (f *Filter) MayContain(item uint64) bool {
	if f.np == 0 {
		return false
	}
	return f.forEachStampedBitUntil(item, func(idx uint64) bool { return f.core.Get(idx) })
}

// MayContainAndAdd returns MayContain's result as of entry, then
// unconditionally sets every one of the nh bits — including any bits past
// the first miss, to match Add's semantics exactly.
func (f *Filter) MayContainAndAdd(item uint64) (bool, error) {
	if f.np == 0 {
		return false, ErrEmptyFilter
	}
	present := true
	f.forEachStampedBit(item, func(idx uint64) {
		if !f.core.TestAndSet(idx) {
			present = false
		}
	})
	return present, nil
}

// BatchMayContain returns one bit per item packed 64-per-word: word i/64,
// bit i%64 is set iff MayContain(items[i]) would report true.
func (f *Filter) BatchMayContain(items []uint64) []uint64 {
	out := make([]uint64, (len(items)+63)/64)
	for i, item := range items {
		if f.MayContain(item) {
			out[i/64] |= uint64(1) << (i % 64)
		}
	}
	return out
}

// Popcount is the number of set bits. It is 0 on an empty filter.
func (f *Filter) Popcount() uint64 {
	if f.np == 0 {
		return 0
	}
	return f.core.Popcount()
}

// IterSetBits invokes fn for every set bit, in ascending order.
func (f *Filter) IterSetBits(fn func(idx uint64)) {
	if f.np == 0 {
		return
	}
	f.core.IterSetBits(fn)
}

// ToSparse collects every set bit position into a slice.
func (f *Filter) ToSparse() []uint32 {
	out := make([]uint32, 0, f.Popcount())
	f.IterSetBits(func(idx uint64) { out = append(out, uint32(idx)) })
	return out
}
