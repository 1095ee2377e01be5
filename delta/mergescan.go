package delta

import (
	"github.com/qlever-io/qlever-core"
)

// mergeBlock interleaves base's rows with entries sorted by
// (rowIndexInBlock, triple, kind), suppressing deletes and inserting new
// rows immediately before the base row they precede.
// base may be nil for the phantom block (numBlocks), which only ever holds
// appended insertions.
func mergeBlock(base *BlockCursor, entries []LocatedTriple) *qlever.IdTable {
	baseRows := 0
	if base != nil {
		baseRows = base.NumRows()
	}
	out := qlever.NewIdTable(3)
	ei := 0
	for r := 0; r <= baseRows; r++ {
		start := ei
		for ei < len(entries) && entries[ei].RowIndexInBlock == r {
			ei++
		}
		sub := entries[start:ei]

		suppressed := false
		for _, e := range sub {
			if e.MutationKind == Delete {
				suppressed = true
			}
		}
		for _, e := range sub {
			if e.MutationKind == Insert {
				appendTriple(out, e.Triple)
			}
		}
		if r < baseRows && !suppressed {
			appendTriple(out, base.Row(r))
		}
	}
	return out
}

// appendTriple appends t's three components as one row, using a pooled
// scratch buffer instead of a fresh three-element slice literal per row —
// this runs once per base row and once per pending insert on every merged
// block.
func appendTriple(out *qlever.IdTable, t IdTriple) {
	row := qlever.GetIdRow(3)
	defer qlever.PutIdRow(row)
	row[0], row[1], row[2] = t.S, t.P, t.O
	out.AppendRow(row)
}

// MergeScan produces a Lazy Result streaming perm's base rows merged with
// overlay's pending inserts/deletes, one chunk per coalesceBlocks base
// blocks (coalesceBlocks<=1 means one chunk per block), including the
// phantom tail block holding appended insertions past the last base
// block. The merged stream is sorted by construction in perm's order; the
// Result's sortedBy lists the canonical (S=0, P=1, O=2) columns in that
// order, e.g. [1,0,2] for PSO.
func MergeScan(perm Permutation, overlay *LocatedTriplesPerBlock, coalesceBlocks int) (*qlever.Result, error) {
	if coalesceBlocks < 1 {
		coalesceBlocks = 1
	}
	numBlocks := perm.NumBlocks()
	next := 0 // next base block index to merge, [0, numBlocks] inclusive of the phantom block

	producer := qleverFunc(func() (*qlever.IdTable, error) {
		if next > numBlocks {
			return nil, nil
		}
		agg := qlever.NewIdTable(3)
		merged := 0
		for merged < coalesceBlocks && next <= numBlocks {
			var base *BlockCursor
			if next < numBlocks {
				var err error
				base, err = perm.Block(next)
				if err != nil {
					return nil, err
				}
			}
			chunk := mergeBlock(base, overlay.EntriesForBlock(next))
			agg.AppendRows(chunk, 0, chunk.NumRows())
			next++
			merged++
		}
		return agg, nil
	})

	var sortedBy []int
	switch perm.Kind() {
	case PSO:
		sortedBy = []int{1, 0, 2}
	case POS:
		sortedBy = []int{1, 2, 0}
	case SOP:
		sortedBy = []int{0, 2, 1}
	case OSP:
		sortedBy = []int{2, 0, 1}
	case OPS:
		sortedBy = []int{2, 1, 0}
	default:
		sortedBy = []int{0, 1, 2}
	}
	return qlever.NewLazyResult(3, producer, sortedBy, nil)
}

// qleverFunc adapts a plain function into a qlever.ChunkProducer without
// exporting a public adapter type from the root package for this one call
// site.
type qleverFunc func() (*qlever.IdTable, error)

func (f qleverFunc) Next() (*qlever.IdTable, error) { return f() }
