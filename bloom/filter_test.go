package bloom

import (
	"bytes"
	"testing"
)

func TestAddThenMayContain(t *testing.T) {
	f, err := New(10, 4, 137)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.Add(42); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !f.MayContain(42) {
		t.Fatal("expected MayContain(42) == true immediately after Add(42)")
	}
	pc := f.Popcount()
	if pc < 1 || pc > uint64(f.NHashes()) {
		t.Fatalf("popcount = %d, want in [1, %d]", pc, f.NHashes())
	}
}

func TestMayContainFollowsEveryAdd(t *testing.T) {
	f, err := New(12, 5, 7)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := uint64(0); i < 500; i++ {
		if err := f.Add(i); err != nil {
			t.Fatalf("Add(%d): %v", i, err)
		}
		if !f.MayContain(i) {
			t.Fatalf("MayContain(%d) == false immediately after Add", i)
		}
	}
}

func TestPopcountMatchesIterSetBits(t *testing.T) {
	f, err := New(10, 4, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := uint64(0); i < 200; i++ {
		_ = f.Add(i)
	}
	var count uint64
	f.IterSetBits(func(uint64) { count++ })
	if count != f.Popcount() {
		t.Fatalf("IterSetBits count = %d, Popcount = %d", count, f.Popcount())
	}
}

func TestToSparseStrictlyIncreasing(t *testing.T) {
	f, _ := New(10, 4, 2)
	for i := uint64(0); i < 100; i++ {
		_ = f.Add(i)
	}
	sparse := f.ToSparse()
	if uint64(len(sparse)) != f.Popcount() {
		t.Fatalf("len(sparse) = %d, popcount = %d", len(sparse), f.Popcount())
	}
	for i := 1; i < len(sparse); i++ {
		if sparse[i] <= sparse[i-1] {
			t.Fatalf("sparse not strictly increasing at %d: %d <= %d", i, sparse[i], sparse[i-1])
		}
	}
}

func TestSetAlgebraPopcountIdentities(t *testing.T) {
	a, _ := New(10, 4, 99)
	b, _ := New(10, 4, 99)
	for i := uint64(1); i <= 1000; i++ {
		_ = a.Add(i)
	}
	for i := uint64(500); i <= 1500; i++ {
		_ = b.Add(i)
	}

	union, err := a.Union(b)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	inter, err := a.Intersect(b)
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	xor, err := a.Xor(b)
	if err != nil {
		t.Fatalf("Xor: %v", err)
	}

	pa, pb := a.Popcount(), b.Popcount()
	if got, want := union.Popcount(), pa+pb-inter.Popcount(); got != want {
		t.Fatalf("popcount(A|B) = %d, want %d", got, want)
	}
	if got, want := xor.Popcount(), pa+pb-2*inter.Popcount(); got != want {
		t.Fatalf("popcount(A^B) = %d, want %d", got, want)
	}

	if inter.Popcount() > pa || inter.Popcount() > pb {
		t.Fatalf("intersection popcount %d exceeds min(%d, %d)", inter.Popcount(), pa, pb)
	}

	ji, err := a.BitwiseJaccard(b)
	if err != nil {
		t.Fatalf("BitwiseJaccard: %v", err)
	}
	if ji < 0 || ji > 1 {
		t.Fatalf("bitwise jaccard out of range: %v", ji)
	}
}

func TestIdempotence(t *testing.T) {
	a, _ := New(10, 4, 5)
	for i := uint64(0); i < 300; i++ {
		_ = a.Add(i)
	}
	selfUnion, _ := a.Union(a)
	if selfUnion.Popcount() != a.Popcount() {
		t.Fatalf("A|A != A: %d vs %d", selfUnion.Popcount(), a.Popcount())
	}
	selfInter, _ := a.Intersect(a)
	if selfInter.Popcount() != a.Popcount() {
		t.Fatalf("A&A != A: %d vs %d", selfInter.Popcount(), a.Popcount())
	}
	selfXor, _ := a.Xor(a)
	if selfXor.Popcount() != 0 {
		t.Fatalf("A^A != 0: %d", selfXor.Popcount())
	}
}

func TestHalveLaw(t *testing.T) {
	f, _ := New(8, 4, 3)
	for i := uint64(0); i < 20; i++ {
		_ = f.Add(i)
	}
	before := make(map[uint64]bool)
	f.IterSetBits(func(i uint64) { before[i] = true })
	halfM := f.M() / 2

	if err := f.Halve(); err != nil {
		t.Fatalf("Halve: %v", err)
	}

	pcAfter := f.Popcount()
	if pcAfter > uint64(len(before)) {
		t.Fatalf("popcount after halve (%d) exceeds popcount before (%d)", pcAfter, len(before))
	}
	f.IterSetBits(func(b uint64) {
		if !before[b] && !before[b+halfM] {
			t.Fatalf("bit %d set after halve but neither %d nor %d were set before", b, b, b+halfM)
		}
	})
}

func TestDifferentSizeMismatch(t *testing.T) {
	a, _ := New(8, 4, 1)
	b, _ := New(10, 4, 1)
	if _, err := a.Union(b); err != ErrParameterMismatch {
		t.Fatalf("expected ErrParameterMismatch, got %v", err)
	}
}

func TestSerializationRoundTrip(t *testing.T) {
	f, err := New(12, 7, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := uint64(0); i < 10000; i++ {
		_ = f.Add(i)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	for i := uint64(0); i < 10000; i++ {
		if f.MayContain(i) != got.MayContain(i) {
			t.Fatalf("MayContain(%d) mismatch after round-trip", i)
		}
	}
	if f.Popcount() != got.Popcount() {
		t.Fatalf("popcount mismatch: %d vs %d", f.Popcount(), got.Popcount())
	}
}

func TestEmptyFilterDeterministic(t *testing.T) {
	f, err := New(4, 4, 1) // l2sz <= offset => empty
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !f.IsEmpty() {
		t.Fatal("expected empty filter")
	}
	if f.MayContain(1) {
		t.Fatal("MayContain on empty filter must be false")
	}
	if f.Popcount() != 0 {
		t.Fatal("Popcount on empty filter must be 0")
	}
	if err := f.Add(1); err != ErrEmptyFilter {
		t.Fatalf("expected ErrEmptyFilter, got %v", err)
	}
}

func TestMayContainAndAddSetsAllBitsEvenAfterFirstMiss(t *testing.T) {
	f, _ := New(10, 4, 11)
	present, err := f.MayContainAndAdd(1)
	if err != nil {
		t.Fatalf("MayContainAndAdd: %v", err)
	}
	if present {
		t.Fatal("expected present == false for a fresh filter")
	}
	if !f.MayContain(1) {
		t.Fatal("expected MayContain(1) == true after MayContainAndAdd")
	}
}

func TestBatchMayContain(t *testing.T) {
	f, _ := New(10, 4, 21)
	items := []uint64{1, 2, 3, 4, 5}
	for _, it := range items[:3] {
		_ = f.Add(it)
	}
	packed := f.BatchMayContain(items)
	for i, it := range items {
		want := f.MayContain(it)
		got := packed[i/64]&(uint64(1)<<(i%64)) != 0
		if got != want {
			t.Fatalf("BatchMayContain mismatch for item %d", it)
		}
	}
}

func TestCardinalityEstimateMonotonicity(t *testing.T) {
	f, _ := New(16, 4, 55)
	prev := f.CardinalityEstimate()
	for i := uint64(0); i < 5000; i++ {
		_ = f.Add(i)
		if i%500 == 499 {
			cur := f.CardinalityEstimate()
			if cur < prev {
				t.Fatalf("cardinality estimate decreased: %f -> %f", prev, cur)
			}
			prev = cur
		}
	}
}

func TestCloneHasSameParamsNoStorageSharing(t *testing.T) {
	f, _ := New(10, 4, 3)
	_ = f.Add(1)
	clone, err := f.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if !f.SameParams(clone) {
		t.Fatal("clone should share params")
	}
	if clone.Popcount() != 0 {
		t.Fatal("clone should start with no bits set")
	}
}
