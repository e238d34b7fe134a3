package lsh

import "testing"

func TestBandHasherDeterministic(t *testing.T) {
	v := randomSketch(64, 5)
	bh := newBandHasher[uint32](64)
	k1 := bh.key(v, 0, 0, 4)
	k2 := bh.key(v, 0, 0, 4)
	if k1 != k2 {
		t.Fatalf("key() not deterministic: %d != %d", k1, k2)
	}
}

func TestBandHasherContiguousVsSampledModeDiffer(t *testing.T) {
	v := randomSketch(64, 6)
	bh := newBandHasher[uint32](64)
	// r=4 with a window that fits: contiguous mode.
	contiguous := bh.key(v, 0, 0, 4)
	// r=2: below the contiguous-mode threshold, always sampled.
	sampled := bh.key(v, 0, 0, 2)
	if contiguous == sampled {
		t.Fatalf("contiguous and sampled keys collided unexpectedly: %d", contiguous)
	}
}

func TestBandHasherRowsDiffer(t *testing.T) {
	v := randomSketch(64, 7)
	bh := newBandHasher[uint32](64)
	k0 := bh.key(v, 1, 0, 2)
	k1 := bh.key(v, 1, 1, 2)
	if k0 == k1 {
		t.Fatalf("distinct rows produced the same key: %d", k0)
	}
}

func TestWyhash64StatelessAdvancesAndVaries(t *testing.T) {
	seed := uint64(123)
	a := wyhash64Stateless(&seed)
	b := wyhash64Stateless(&seed)
	if a == b {
		t.Fatalf("successive draws collided: %d", a)
	}
}
