package groupby

import "github.com/qlever-io/qlever-core"

// maxUnrolledWidth is the largest group-by column count sameGroupKey
// unrolls into a fixed-arity comparison before falling back to the
// variable-width loop. Both paths are observably identical; the unrolled
// cases only avoid iterating groupCols for the common low-arity case.
const maxUnrolledWidth = 5

// sameGroupKey reports whether rows r1 and r2 of table share the same
// group-by key. This is the dispatch point a template-recursion-based
// engine would monomorphize per column count; here it is a plain switch
// over a small set of unrolled widths plus one variable-width fallback.
func sameGroupKey(table *qlever.IdTable, groupCols []int, r1, r2 int) bool {
	switch len(groupCols) {
	case 0:
		return true
	case 1:
		return table.At(r1, groupCols[0]) == table.At(r2, groupCols[0])
	case 2:
		return table.At(r1, groupCols[0]) == table.At(r2, groupCols[0]) &&
			table.At(r1, groupCols[1]) == table.At(r2, groupCols[1])
	case 3:
		return table.At(r1, groupCols[0]) == table.At(r2, groupCols[0]) &&
			table.At(r1, groupCols[1]) == table.At(r2, groupCols[1]) &&
			table.At(r1, groupCols[2]) == table.At(r2, groupCols[2])
	case 4:
		return table.At(r1, groupCols[0]) == table.At(r2, groupCols[0]) &&
			table.At(r1, groupCols[1]) == table.At(r2, groupCols[1]) &&
			table.At(r1, groupCols[2]) == table.At(r2, groupCols[2]) &&
			table.At(r1, groupCols[3]) == table.At(r2, groupCols[3])
	case 5:
		return table.At(r1, groupCols[0]) == table.At(r2, groupCols[0]) &&
			table.At(r1, groupCols[1]) == table.At(r2, groupCols[1]) &&
			table.At(r1, groupCols[2]) == table.At(r2, groupCols[2]) &&
			table.At(r1, groupCols[3]) == table.At(r2, groupCols[3]) &&
			table.At(r1, groupCols[4]) == table.At(r2, groupCols[4])
	default:
		for _, c := range groupCols {
			if table.At(r1, c) != table.At(r2, c) {
				return false
			}
		}
		return true
	}
}
