// Package lsh implements a banded Locality-Sensitive-Hashing index over
// fixed-length integer sketches. It maintains several
// band-hash tables, each reducing a window of sketch positions to a single
// key; querying walks the tables from most-specific (largest window) to
// least-specific, surfacing high-precision candidates first.
package lsh

import "unsafe"

// Register is the set of integer widths a Sketch's elements may have.
type Register interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Sketch is a read-only, fixed-length sequence of fixed-size integer
// registers. It owns no storage: it is a thin view over a caller-provided
// slice, in the same flyweight spirit as internal/bitset.Core.
type Sketch[T Register] []T

// Len returns the number of registers in the sketch.
func (s Sketch[T]) Len() int { return len(s) }

// At returns the register at index i.
func (s Sketch[T]) At(i int) T { return s[i] }

// elemSize returns sizeof(T) in bytes.
func elemSize[T Register]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// bytesOf reinterprets the registers in [start, start+count) as a raw byte
// slice, with no copy.
func bytesOf[T Register](s Sketch[T], start, count int) []byte {
	if count == 0 {
		return nil
	}
	ptr := unsafe.Pointer(&s[start])
	return unsafe.Slice((*byte)(ptr), count*elemSize[T]())
}

// elemBytes reinterprets a single register as a raw byte slice.
func elemBytes[T Register](s Sketch[T], i int) []byte {
	ptr := unsafe.Pointer(&s[i])
	return unsafe.Slice((*byte)(ptr), elemSize[T]())
}
