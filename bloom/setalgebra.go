package bloom

import "go.sketchcore.dev/sketch/internal/bitset"

// UnionWith ORs other's bits into f. Both filters must share (np, nh,
// seedseed).
func (f *Filter) UnionWith(other *Filter) error {
	if !f.SameParams(other) {
		return ErrParameterMismatch
	}
	f.core.OrWith(other.core)
	return nil
}

// IntersectWith ANDs other's bits into f. Both filters must share
// (np, nh, seedseed).
func (f *Filter) IntersectWith(other *Filter) error {
	if !f.SameParams(other) {
		return ErrParameterMismatch
	}
	f.core.AndWith(other.core)
	return nil
}

// XorWith XORs other's bits into f. Both filters must share
// (np, nh, seedseed).
func (f *Filter) XorWith(other *Filter) error {
	if !f.SameParams(other) {
		return ErrParameterMismatch
	}
	f.core.XorWith(other.core)
	return nil
}

// Union returns a new filter holding f | other, without mutating either
// operand.
func (f *Filter) Union(other *Filter) (*Filter, error) {
	if !f.SameParams(other) {
		return nil, ErrParameterMismatch
	}
	clone := f.shallowCloneWithStorage()
	clone.core.OrWith(other.core)
	return clone, nil
}

// Intersect returns a new filter holding f & other, without mutating
// either operand.
func (f *Filter) Intersect(other *Filter) (*Filter, error) {
	if !f.SameParams(other) {
		return nil, ErrParameterMismatch
	}
	clone := f.shallowCloneWithStorage()
	clone.core.AndWith(other.core)
	return clone, nil
}

// Xor returns a new filter holding f ^ other, without mutating either
// operand.
func (f *Filter) Xor(other *Filter) (*Filter, error) {
	if !f.SameParams(other) {
		return nil, ErrParameterMismatch
	}
	clone := f.shallowCloneWithStorage()
	clone.core.XorWith(other.core)
	return clone, nil
}

// shallowCloneWithStorage copies f's bits (not just its parameters), used
// by the non-mutating set-algebra variants.
func (f *Filter) shallowCloneWithStorage() *Filter {
	return &Filter{
		np:       f.np,
		nh:       f.nh,
		hf:       f.hf,
		core:     f.core.Clone(),
		seeds:    f.seeds,
		seedseed: f.seedseed,
		mask:     f.mask,
	}
}

// IntersectionPopcount counts the set bits in f & other without allocating
// the intersection. Both filters must share (np, nh, seedseed).
func (f *Filter) IntersectionPopcount(other *Filter) (uint64, error) {
	if !f.SameParams(other) {
		return 0, ErrParameterMismatch
	}
	return bitset.IntersectionPopcount(f.core, other.core), nil
}
