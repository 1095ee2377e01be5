package delta

import "github.com/qlever-io/qlever-core"

// Permutation is the read-only interface the delta overlay consumes from
// the base index for one of the six sort orders. Implementations only
// need to support sequential block access and a point lookup; nothing
// here mutates the base index.
type Permutation interface {
	Kind() Kind
	NumBlocks() int
	// Block returns the base rows of block i, sorted under Kind()'s order.
	// Columns are always canonical (subject, predicate, object); only the
	// row order encodes the permutation.
	Block(i int) (*BlockCursor, error)
	// PointLookup reports whether t is present in the base index and, if
	// so, its exact (blockIndex, rowIndex). If absent, found is false and
	// blockIndex/rowIndex are left at their zero values; callers use
	// DeltaTriples.locate's block-boundary walk to find the insertion point.
	PointLookup(t IdTriple) (blockIndex, rowIndex int, found bool, err error)
}

// BlockCursor is a materialized block of base triples in canonical
// (subject, predicate, object) column order, sorted in the owning
// permutation's row order.
type BlockCursor struct {
	table *qlever.IdTable
}

// NewBlockCursor wraps a canonical-column 3-column IdTable already sorted
// in the owning permutation's order.
func NewBlockCursor(table *qlever.IdTable) *BlockCursor {
	if table.NumColumns() != 3 {
		panic("delta: a permutation block must have exactly 3 columns")
	}
	return &BlockCursor{table: table}
}

func (b *BlockCursor) NumRows() int { return b.table.NumRows() }

func (b *BlockCursor) Row(i int) IdTriple {
	r := b.table.Row(i)
	return IdTriple{S: r[0], P: r[1], O: r[2]}
}

// Table exposes the underlying columns for callers building a merged
// output chunk.
func (b *BlockCursor) Table() *qlever.IdTable { return b.table }
