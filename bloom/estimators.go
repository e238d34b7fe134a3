package bloom

import (
	"math"

	"go.sketchcore.dev/sketch/internal/bitset"
)

// CardinalityEstimate returns n̂, the estimated number of distinct items
// added, derived purely from the observed popcount (no insertion counter is
// kept).
func (f *Filter) CardinalityEstimate() float64 {
	return cardinalityFromPopcount(f.Popcount(), f.M(), f.nh)
}

// cardinalityFromPopcount implements n̂ = log1p(-c/m) / (nh * log1p(-1/m)).
func cardinalityFromPopcount(c, m uint64, nh uint8) float64 {
	if m == 0 {
		return 0
	}
	num := math.Log1p(-float64(c) / float64(m))
	den := float64(nh) * math.Log1p(-1/float64(m))
	return num / den
}

// FalsePositiveEstimate returns (1 - c/m)^nh, the estimated false-positive
// rate given the current observed popcount c.
func (f *Filter) FalsePositiveEstimate() float64 {
	if f.np == 0 {
		return 1
	}
	c := f.Popcount()
	m := f.M()
	return math.Pow(1-float64(c)/float64(m), float64(f.nh))
}

// BitwiseJaccard computes (|A|+|B|-|A∪B|)/|A∪B| directly on set bits,
// without going through the cardinality estimator. Both filters must share
// (np, nh, seedseed).
func (f *Filter) BitwiseJaccard(other *Filter) (float64, error) {
	if !f.SameParams(other) {
		return 0, ErrParameterMismatch
	}
	sumA := f.Popcount()
	sumB := other.Popcount()
	sumUnion := bitset.UnionPopcount(f.core, other.core)
	if sumUnion == 0 {
		return 0, nil
	}
	return float64(sumA+sumB-sumUnion) / float64(sumUnion), nil
}

// JaccardIndex estimates |A|, |B|, and |A∪B| from their respective
// popcounts via the cardinality estimator, then returns
// (n̂A + n̂B - n̂union) / n̂union. Both filters must share
// (np, nh, seedseed).
func (f *Filter) JaccardIndex(other *Filter) (float64, error) {
	if !f.SameParams(other) {
		return 0, ErrParameterMismatch
	}
	m := f.M()
	sumA := f.Popcount()
	sumB := other.Popcount()
	sumUnion := bitset.UnionPopcount(f.core, other.core)
	nA := cardinalityFromPopcount(sumA, m, f.nh)
	nB := cardinalityFromPopcount(sumB, m, f.nh)
	nUnion := cardinalityFromPopcount(sumUnion, m, f.nh)
	if nUnion == 0 {
		return 0, nil
	}
	return (nA + nB - nUnion) / nUnion, nil
}
