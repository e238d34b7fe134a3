package bloom

import (
	"encoding/binary"
	"fmt"
	"io"

	"go.sketchcore.dev/sketch/internal/bitset"
)

// Write serializes f as: np, nh, seed_count, hash-functor state, seedseed,
// mask, seeds, then the backing words, all little-endian and byte-packed
// with no padding.
func (f *Filter) Write(w io.Writer) error {
	if len(f.seeds) > 255 {
		return ErrTooManySeeds
	}
	hdr := [3]byte{f.np, f.nh, byte(len(f.seeds))}
	if _, err := w.Write(hdr[:]); err != nil {
		return wrapIOErr(err)
	}
	if err := f.hf.WriteState(w); err != nil {
		return wrapIOErr(err)
	}
	if err := writeU64(w, f.seedseed); err != nil {
		return err
	}
	if err := writeU64(w, f.mask); err != nil {
		return err
	}
	for _, s := range f.seeds {
		if err := writeU64(w, s); err != nil {
			return err
		}
	}
	for _, word := range f.core {
		if err := writeU64(w, word); err != nil {
			return err
		}
	}
	return nil
}

// Read deserializes a Filter written by Write, using the default hash
// functor.
func Read(r io.Reader) (*Filter, error) {
	return ReadWithHashFunctor(r, DefaultHashFunctor())
}

// ReadWithHashFunctor deserializes a Filter written by Write, restoring hf's
// state from the stream. hf's concrete type must match the one the filter
// was written with.
func ReadWithHashFunctor(r io.Reader, hf HashFunctor) (*Filter, error) {
	var hdr [3]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, wrapIOCorrupt(err)
	}
	f := &Filter{np: hdr[0], nh: hdr[1], hf: hf}
	seedCount := int(hdr[2])
	if f.np > MaxNP {
		return nil, fmt.Errorf("%w: np=%d > %d", ErrCorrupt, f.np, MaxNP)
	}

	if err := hf.ReadState(r); err != nil {
		return nil, wrapIOErr(err)
	}

	var err error
	if f.seedseed, err = readU64(r); err != nil {
		return nil, err
	}
	if f.mask, err = readU64(r); err != nil {
		return nil, err
	}

	f.seeds = make([]uint64, seedCount)
	for i := range f.seeds {
		if f.seeds[i], err = readU64(r); err != nil {
			return nil, err
		}
	}

	nWords := 0
	if f.np > 0 {
		nWords = 1 << f.np
	}
	f.core = bitset.New(nWords)
	for i := range f.core {
		if f.core[i], err = readU64(r); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func writeU64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return wrapIOErr(err)
	}
	return nil
}

func readU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapIOCorrupt(err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func wrapIOErr(err error) error {
	return fmt.Errorf("bloom: io error: %w", err)
}

func wrapIOCorrupt(err error) error {
	return fmt.Errorf("%w: %v", ErrCorrupt, err)
}
