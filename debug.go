package qlever

import (
	"fmt"
	"strings"
)

// DumpFlags selects which sections Result.Dump renders, following the
// same bitmask-flag shape as Tx.Dump.
type DumpFlags uint64

const (
	DumpHeader = DumpFlags(1 << iota)
	DumpRows
	DumpStats
	DumpVocab

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)
)

var dumpSep = strings.Repeat("-", 60)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Dump renders r for debugging. It never consumes a Lazy result — a
// Lazy result reports its variant and sortedBy only, since draining it
// here would make it unusable to its real consumer afterwards.
func (r *Result) Dump(f DumpFlags) string {
	var w strings.Builder
	if f.Contains(DumpHeader) {
		kind := "Lazy"
		if r.IsFullyMaterialized() {
			kind = "Materialized"
		}
		fmt.Fprintf(&w, "Result(%s, cols=%d, sortedBy=%v)\n", kind, r.numCols, r.sortedBy)
	}
	if !r.IsFullyMaterialized() {
		return w.String()
	}
	if f.Contains(DumpStats) {
		stats := ComputeIdTableStats(r.table)
		fmt.Fprintf(&w, "stats: rows=%d cols=%d bytes=%d\n", stats.Rows, stats.Columns, stats.TotalSize())
	}
	if f.Contains(DumpRows) {
		fmt.Fprintln(&w, dumpSep)
		for i := 0; i < r.table.NumRows(); i++ {
			dumpRow(&w, i, r.table.Row(i), r.vocab)
		}
	}
	if f.Contains(DumpVocab) && r.vocab != nil {
		fmt.Fprintln(&w, dumpSep)
		for i, s := range r.vocab.Strings() {
			fmt.Fprintf(&w, "vocab[%d] = %q\n", i, s)
		}
	}
	return w.String()
}

func dumpRow(w *strings.Builder, pos int, row []Id, vocab *LocalVocab) {
	cells := make([]string, len(row))
	for i, id := range row {
		if id.Datatype() == DatatypeLocalVocabIndex && vocab != nil {
			cells[i] = fmt.Sprintf("%q", vocab.GetString(id.payload()))
			continue
		}
		cells[i] = id.String()
	}
	fmt.Fprintf(w, "%d: [%s]\n", pos, strings.Join(cells, ", "))
}
