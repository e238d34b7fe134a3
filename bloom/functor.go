package bloom

import (
	"encoding/binary"
	"io"

	"github.com/cespare/xxhash/v2"
)

// HashFunctor is the pluggable 64-bit hash used to turn item^seed into a
// digest from which sub-hashes are shift-stamped. Implementations may carry
// fixed-size state (precomputed keys, a secret, ...); the state is treated
// as immutable after construction and is serialized as part of the filter
// header.
type HashFunctor interface {
	// Digest returns H(x).
	Digest(x uint64) uint64
	// StateSize returns the fixed number of bytes WriteState writes and
	// ReadState expects to read.
	StateSize() int
	// WriteState serializes the functor's state.
	WriteState(w io.Writer) error
	// ReadState deserializes the functor's state.
	ReadState(r io.Reader) error
}

// xxhashFunctor is the default HashFunctor: it hashes the little-endian
// encoding of x with xxHash64. It carries no state.
type xxhashFunctor struct{}

// DefaultHashFunctor returns the library's default hash functor.
func DefaultHashFunctor() HashFunctor { return xxhashFunctor{} }

func (xxhashFunctor) Digest(x uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], x)
	return xxhash.Sum64(buf[:])
}

func (xxhashFunctor) StateSize() int             { return 0 }
func (xxhashFunctor) WriteState(io.Writer) error { return nil }
func (xxhashFunctor) ReadState(io.Reader) error  { return nil }

// digestBytes hashes a raw byte sequence with the implementation-default
// 64-bit digest, used by Filter.AddBytes. It intentionally does not go
// through the pluggable HashFunctor, which only ever sees a pre-hashed
// uint64.
func digestBytes(b []byte) uint64 {
	return xxhash.Sum64(b)
}
