package qlever

import "fmt"

// IdTable is the row-major, fixed-column-count matrix every operator
// produces and consumes. It is clonable cheaply by sharing its column
// storage; mutating a cloned table requires an owned copy first, exactly
// as the source engine's IdTable does for its columns.
type IdTable struct {
	numCols int
	rows    [][]Id // each row has exactly numCols entries
}

// NewIdTable creates an empty table with the given column count.
func NewIdTable(numCols int) *IdTable {
	if numCols < 0 {
		panic("qlever: negative column count")
	}
	return &IdTable{numCols: numCols}
}

// NewIdTableFromRows wraps literal rows, panicking if any row's length
// disagrees with numCols. Every row must have exactly numCols entries;
// this is checked once here rather than at every reader.
func NewIdTableFromRows(numCols int, rows [][]Id) *IdTable {
	t := &IdTable{numCols: numCols, rows: rows}
	for i, row := range rows {
		if len(row) != numCols {
			panic(fmt.Sprintf("qlever: row %d has %d columns, table has %d", i, len(row), numCols))
		}
	}
	return t
}

func (t *IdTable) NumColumns() int { return t.numCols }
func (t *IdTable) NumRows() int    { return len(t.rows) }

// Row returns the row at index i. The caller must not retain and mutate it
// across a Clone() unless it also owns the clone exclusively.
func (t *IdTable) Row(i int) []Id { return t.rows[i] }

// At returns a single cell.
func (t *IdTable) At(row, col int) Id { return t.rows[row][col] }

// AppendRow appends a copy of row, which must have NumColumns() entries.
func (t *IdTable) AppendRow(row []Id) {
	if len(row) != t.numCols {
		panic(fmt.Sprintf("qlever: appended row has %d columns, table has %d", len(row), t.numCols))
	}
	cp := make([]Id, t.numCols)
	copy(cp, row)
	t.rows = append(t.rows, cp)
}

// AppendRows appends every row from other's slice range [from, to).
func (t *IdTable) AppendRows(other *IdTable, from, to int) {
	if other.numCols != t.numCols {
		panic("qlever: column count mismatch in AppendRows")
	}
	for i := from; i < to; i++ {
		t.AppendRow(other.rows[i])
	}
}

// Clone returns a table sharing this table's row slices. The clone must
// be treated as read-only until the caller knows it is the sole owner.
func (t *IdTable) Clone() *IdTable {
	rows := make([][]Id, len(t.rows))
	copy(rows, t.rows)
	return &IdTable{numCols: t.numCols, rows: rows}
}

// Slice returns a new table header over rows [from, to), sharing storage
// with t (used by applyLimitOffset on Materialized results).
func (t *IdTable) Slice(from, to int) *IdTable {
	if from < 0 || to > len(t.rows) || from > to {
		panic(fmt.Sprintf("qlever: invalid slice [%d,%d) of %d rows", from, to, len(t.rows)))
	}
	rows := make([][]Id, to-from)
	copy(rows, t.rows[from:to])
	return &IdTable{numCols: t.numCols, rows: rows}
}

// compareRowsBySortColumns implements the lexicographic comparator behind
// the SortOrderViolated diagnostic. It returns <0, 0, >0.
func compareRowsBySortColumns(a, b []Id, sortedBy []int) int {
	for _, col := range sortedBy {
		if c := a[col].Compare(b[col]); c != 0 {
			return c
		}
	}
	return 0
}

// isNonDescending reports whether t's rows are non-descending under
// sortedBy, returning the first offending row index if not.
func isNonDescending(t *IdTable, sortedBy []int) (violatingRow int, ok bool) {
	for i := 1; i < len(t.rows); i++ {
		if compareRowsBySortColumns(t.rows[i-1], t.rows[i], sortedBy) > 0 {
			return i, false
		}
	}
	return -1, true
}
