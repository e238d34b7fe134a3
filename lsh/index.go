// Index maintains an LSH index over a set of fixed-length sketches.
// Insertion is single-writer; concurrent readers of an index that is no
// longer being inserted into are safe.
package lsh

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrShapeMismatch is returned by Insert when a sketch's length does
	// not match the index's m, and by QueryCandidates for the same reason.
	ErrShapeMismatch = errors.New("lsh: sketch length does not match index m")

	// ErrStartingTableOutOfRange is returned by QueryCandidates when
	// startingTable is greater than NTables(). A negative startingTable is
	// not an error: it selects the default, NTables().
	ErrStartingTableOutOfRange = errors.New("lsh: starting table out of range")

	// ErrBandSpecMismatch is returned by NewWithBands when regsPerTable
	// and rowsPerTable have different lengths.
	ErrBandSpecMismatch = errors.New("lsh: regsPerTable and rowsPerTable must have the same length")

	// ErrRegsExceedsM is returned when a requested band width exceeds the
	// sketch length.
	ErrRegsExceedsM = errors.New("lsh: regs-per-key cannot exceed m")
)

// table is one band-hash table: r registers are reduced to a key per row,
// and each row owns its own key -> posting-list map.
type table[T Register] struct {
	r    int
	rows []map[uint64][]uint32
}

// Index is a collection of band-hash tables over sketches of a fixed
// length m. IDs are assigned 0, 1, 2, ... in insertion order.
type Index[T Register] struct {
	m        int
	bh       bandHasher[T]
	tables   []table[T]
	totalIDs uint32
}

// M returns the sketch length every inserted sketch must match.
func (idx *Index[T]) M() int { return idx.m }

// Size returns the number of sketches inserted so far.
func (idx *Index[T]) Size() int { return int(idx.totalIDs) }

// NTables returns the number of band-hash tables.
func (idx *Index[T]) NTables() int { return len(idx.tables) }

// newEmpty builds an Index with no tables; callers append via addTable.
func newEmpty[T Register](m int) *Index[T] {
	return &Index[T]{m: m, bh: newBandHasher[T](m)}
}

func (idx *Index[T]) addTable(r, rows int) {
	if rows <= 0 {
		rows = idx.m / r
	}
	idx.tables = append(idx.tables, table[T]{r: r, rows: make([]map[uint64][]uint32, rows)})
}

// NewPowerOfTwo builds an index in "power-of-two mode": regs-per-key
// r_i ranges over {1, 2, 4, ..., <= m}, one table per value, each with
// m/r_i rows.
func NewPowerOfTwo[T Register](m int) *Index[T] {
	idx := newEmpty[T](m)
	for r := 1; r <= m; r <<= 1 {
		idx.addTable(r, 0)
	}
	return idx
}

// NewDensified builds an index in "densified mode": regs-per-key r_i
// ranges over every integer {1, 2, 3, ..., m}.
func NewDensified[T Register](m int) *Index[T] {
	idx := newEmpty[T](m)
	for r := 1; r <= m; r++ {
		idx.addTable(r, 0)
	}
	return idx
}

// NewWithBands builds an index with an explicit regs-per-key schedule.
// rowsPerTable[i] <= 0 defaults to m/regsPerTable[i].
func NewWithBands[T Register](m int, regsPerTable, rowsPerTable []int) (*Index[T], error) {
	if rowsPerTable != nil && len(regsPerTable) != len(rowsPerTable) {
		return nil, ErrBandSpecMismatch
	}
	idx := newEmpty[T](m)
	for i, r := range regsPerTable {
		if r > m {
			return nil, fmt.Errorf("%w: got %d for m=%d", ErrRegsExceedsM, r, m)
		}
		rows := 0
		if rowsPerTable != nil {
			rows = rowsPerTable[i]
		}
		idx.addTable(r, rows)
	}
	return idx, nil
}

// Insert assigns the sketch the next id (0, 1, 2, ... in insertion order)
// and appends that id to every band's posting list. All band keys are
// computed before any mutation, so a failed Insert leaves the index
// unchanged.
func (idx *Index[T]) Insert(v Sketch[T]) (uint32, error) {
	if v.Len() != idx.m {
		return 0, ErrShapeMismatch
	}

	type hit struct {
		tableIdx, row int
		key           uint64
	}
	hits := make([]hit, 0, idx.bandCount())
	for i := range idx.tables {
		r := idx.tables[i].r
		for j := range idx.tables[i].rows {
			hits = append(hits, hit{i, j, idx.bh.key(v, i, j, r)})
		}
	}

	id := idx.totalIDs
	idx.totalIDs++
	for _, h := range hits {
		row := idx.tables[h.tableIdx].rows[h.row]
		if row == nil {
			row = make(map[uint64][]uint32)
			idx.tables[h.tableIdx].rows[h.row] = row
		}
		row[h.key] = append(row[h.key], id)
	}
	return id, nil
}

func (idx *Index[T]) bandCount() int {
	n := 0
	for _, t := range idx.tables {
		n += len(t.rows)
	}
	return n
}

// QueryCandidatesDefault is QueryCandidates with startingTable defaulted to
// NTables().
func (idx *Index[T]) QueryCandidatesDefault(v Sketch[T], maxCandidates int) ([]uint32, []int, error) {
	return idx.QueryCandidates(v, maxCandidates, idx.NTables())
}

// QueryCandidates returns ids matching v's sketch, searched from the most
// specific (largest regs-per-key) table down to the least specific,
// stopping once the running candidate set reaches maxCandidates or every
// table down to 0 has been visited. startingTable selects which table to
// start just below; pass NTables() (or a negative value) for the default
// of starting at the top.
//
// perTableCounts[k] is the number of *new* ids contributed by the k-th
// table visited; concatenating ids by those counts, in order, exactly
// partitions the returned ids.
func (idx *Index[T]) QueryCandidates(v Sketch[T], maxCandidates int, startingTable int) (ids []uint32, perTableCounts []int, err error) {
	if v.Len() != idx.m {
		return nil, nil, ErrShapeMismatch
	}
	if startingTable < 0 {
		startingTable = idx.NTables()
	}
	if startingTable > idx.NTables() {
		return nil, nil, ErrStartingTableOutOfRange
	}

	seen := make(map[uint32]int, maxCandidates)
	ids = make([]uint32, 0, maxCandidates)
	perTableCounts = make([]int, 0, startingTable)

	for i := startingTable - 1; i >= 0; i-- {
		before := len(ids)
		r := idx.tables[i].r
		for j, row := range idx.tables[i].rows {
			if row == nil {
				continue
			}
			key := idx.bh.key(v, i, j, r)
			for _, id := range row[key] {
				if _, ok := seen[id]; !ok {
					seen[id] = 1
					ids = append(ids, id)
				} else {
					seen[id]++
				}
			}
		}
		perTableCounts = append(perTableCounts, len(ids)-before)
		if len(seen) >= maxCandidates {
			break
		}
	}
	return ids, perTableCounts, nil
}
