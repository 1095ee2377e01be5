package groupby

import (
	"context"
	"log/slog"
	"sort"

	"github.com/qlever-io/qlever-core"
)

// GroupBy scans a child Result sorted on its group-by columns and emits
// one output row per contiguous run of equal group-by keys, evaluating
// every aggregate over each run's inclusive row range. Output columns are
// the group-by columns first (sorted by variable name, not in the order
// passed to New), then the aggregate outputs sorted by their output
// variable name.
type GroupBy struct {
	qlever.BaseOperator

	child      qlever.Operator
	groupVars  []qlever.Variable
	groupCols  []int // -1 for a group-by var missing from the child schema
	aggregates []Spec
	aggCols    []int // parallel to aggregates; -1 for a missing input var

	resolver VocabResolver
	outVocab *qlever.LocalVocab
	logger   *slog.Logger
}

// New builds a GroupBy over child, grouping by groupVars and evaluating
// aggregates (each naming its input variable via Spec). Both lists are
// reordered by New into a canonical output-column order — groupVars
// alphabetically, then aggregates alphabetically by OutputVar — so that
// two GROUP BY clauses differing only in the order their variables were
// written produce identical output layouts and cache keys.
// A group-by or aggregate variable absent from the child's schema is not
// a construction error — per the missing-variable failure mode, it is
// recorded and ComputeResult later returns an empty result of the
// declared shape with a logged warning instead of failing the query.
func New(child qlever.Operator, groupVars []qlever.Variable, aggregates []Spec, aggInputVars []qlever.Variable, resolver VocabResolver, logger *slog.Logger) *GroupBy {
	if logger == nil {
		logger = slog.Default()
	}
	childVars := child.GetVariableColumns()

	// Sorting the group-by variables (alongside the aggregate sort below)
	// makes the cache key independent of the order the caller listed them
	// in: two GROUP BY clauses over the same variable set produce the same
	// output column layout and the same cache entry.
	sortedGroupVars := append([]qlever.Variable(nil), groupVars...)
	sort.Slice(sortedGroupVars, func(i, j int) bool { return sortedGroupVars[i] < sortedGroupVars[j] })

	groupCols := make([]int, len(sortedGroupVars))
	for i, v := range sortedGroupVars {
		groupCols[i] = columnOrMissing(childVars, v)
	}

	sortedIdx := make([]int, len(aggregates))
	for i := range sortedIdx {
		sortedIdx[i] = i
	}
	sort.Slice(sortedIdx, func(i, j int) bool {
		return aggregates[sortedIdx[i]].OutputVar < aggregates[sortedIdx[j]].OutputVar
	})

	sortedAggs := make([]Spec, len(aggregates))
	aggCols := make([]int, len(aggregates))
	for out, idx := range sortedIdx {
		sortedAggs[out] = aggregates[idx]
		aggCols[out] = columnOrMissing(childVars, aggInputVars[idx])
	}

	gb := &GroupBy{
		child:      child,
		groupVars:  sortedGroupVars,
		groupCols:  groupCols,
		aggregates: sortedAggs,
		aggCols:    aggCols,
		resolver:   resolver,
		outVocab:   qlever.NewLocalVocab(),
		logger:     logger,
	}
	// GROUP BY can only shrink or preserve its child's row count, and
	// scanning it costs at least what producing the child did.
	gb.SetEstimates(child.GetSizeEstimate(), child.GetCostEstimate()+child.GetSizeEstimate())
	return gb
}

func columnOrMissing(vm qlever.VarMap, v qlever.Variable) int {
	if vc, ok := vm[v]; ok {
		return vc.Column
	}
	return -1
}

func (g *GroupBy) missingVariable() bool {
	for _, c := range g.groupCols {
		if c < 0 {
			return true
		}
	}
	for _, c := range g.aggCols {
		if c < 0 {
			return true
		}
	}
	return false
}

// GetResultWidth returns len(groupVars) + len(aggregates).
func (g *GroupBy) GetResultWidth() int { return len(g.groupVars) + len(g.aggregates) }

// ResultSortedOn reports that the output stays sorted on the leading
// group-by columns, since the child's sort order is preserved by scanning
// it in order and emitting groups in their scan order.
func (g *GroupBy) ResultSortedOn() []int {
	cols := make([]int, len(g.groupVars))
	for i := range cols {
		cols[i] = i
	}
	return cols
}

// GetVariableColumns maps every group-by variable and every aggregate's
// output variable to its output column.
func (g *GroupBy) GetVariableColumns() qlever.VarMap {
	vm := make(qlever.VarMap, len(g.groupVars)+len(g.aggregates))
	for i, v := range g.groupVars {
		vm[v] = qlever.VarColumn{Column: i, Definedness: qlever.AlwaysDefined}
	}
	for i, a := range g.aggregates {
		vm[a.OutputVar] = qlever.VarColumn{Column: len(g.groupVars) + i, Definedness: aggregateDefinedness(a.Kind)}
	}
	return vm
}

// aggregateDefinedness reports whether an aggregate's output can ever be
// UNDEFINED: COUNT/SUM/AVG always produce a value even for an empty
// group-by-less input, while MIN/MAX/SAMPLE/FIRST/LAST can yield UNDEFINED
// for an empty group and MIN/MAX also for incomparable mixed types.
func aggregateDefinedness(k Kind) qlever.Definedness {
	switch k {
	case Count, Sum, Avg:
		return qlever.AlwaysDefined
	default:
		return qlever.PossiblyUndefined
	}
}

// GetMultiplicity is 1 for every output column: GroupBy's whole purpose is
// to collapse a group's rows to a single output row, so no output column
// repeats within the result the way a join's foreign-key column might.
func (g *GroupBy) GetMultiplicity(col int) float64 { return 1 }

func (g *GroupBy) AsString(indent int) string {
	pad := indentString(indent)
	return pad + "GROUP_BY " + qlever.FormatVarMapForCacheKey(g.childGroupVarMap()) +
		" AGGREGATE " + aggregateSignature(g.aggregates) + "\n" + g.child.AsString(indent+2)
}

func (g *GroupBy) childGroupVarMap() qlever.VarMap {
	vm := make(qlever.VarMap, len(g.groupVars))
	for i, v := range g.groupVars {
		vm[v] = qlever.VarColumn{Column: i}
	}
	return vm
}

func aggregateSignature(aggs []Spec) string {
	s := ""
	for i, a := range aggs {
		if i > 0 {
			s += ","
		}
		s += a.Kind.String() + "(" + string(a.OutputVar) + ")"
	}
	return s
}

func indentString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// ComputeResult evaluates the child, then scans its rows in order,
// emitting one output row per contiguous run of equal group-by keys.
// With an empty group-by list, the entire (possibly empty) input is one
// group: on empty input this returns one row of aggregate identities, per
// SPARQL aggregation semantics. With a non-empty group-by list, empty
// input returns zero rows.
func (g *GroupBy) ComputeResult(cancel *qlever.CancelToken) (*qlever.Result, error) {
	if g.missingVariable() {
		g.logger.Warn("groupby: variable missing from child schema, returning empty result",
			slog.Any("groupVars", g.groupVars))
		return qlever.NewMaterializedResult(qlever.NewIdTable(g.GetResultWidth()), g.ResultSortedOn(), g.outVocab, false)
	}

	childResult, err := g.child.ComputeResult(cancel)
	if err != nil {
		return nil, err
	}
	table, err := materialize(childResult)
	if err != nil {
		return nil, err
	}

	out := qlever.NewIdTable(g.GetResultWidth())
	n := table.NumRows()

	if n == 0 {
		if len(g.groupCols) == 0 {
			g.emitGroup(out, qlever.NewIdTable(0), 0, 0)
		}
		return qlever.NewMaterializedResult(out, g.ResultSortedOn(), g.outVocab, false)
	}

	blockStart := 0
	for r := 1; r <= n; r++ {
		if r < n && sameGroupKey(table, g.groupCols, blockStart, r) {
			continue
		}
		if err := checkCancelled(cancel); err != nil {
			return nil, err
		}
		g.emitGroup(out, table, blockStart, r)
		blockStart = r
	}

	result, err := qlever.NewMaterializedResult(out, g.ResultSortedOn(), g.outVocab, false)
	if err != nil {
		return nil, err
	}
	if g.logger.Enabled(context.Background(), slog.LevelDebug) {
		g.logger.Debug("groupby: computed result", slog.String("dump", result.Dump(qlever.DumpHeader|qlever.DumpStats)))
	}
	return result, nil
}

// emitGroup builds one output row for the group occupying rows
// [from, to) of table, appending it to out and releasing its scratch
// buffer back to the pool.
func (g *GroupBy) emitGroup(out *qlever.IdTable, table *qlever.IdTable, from, to int) {
	row := qlever.GetIdRow(g.GetResultWidth())
	defer qlever.PutIdRow(row)

	for i, c := range g.groupCols {
		if to > from {
			row[i] = table.At(from, c)
		}
	}
	for i, a := range g.aggregates {
		spec := a
		spec.InputColumn = g.aggCols[i]
		row[len(g.groupCols)+i] = Evaluate(spec, table, from, to, g.resolver, g.outVocab)
	}
	out.AppendRow(row)
}

// materialize returns childResult's rows as one IdTable, draining a Lazy
// result fully. GroupBy needs to see a group's entire row range at once
// to evaluate its aggregates, so there is no benefit to preserving a Lazy
// child result any further downstream.
func materialize(r *qlever.Result) (*qlever.IdTable, error) {
	if r.IsFullyMaterialized() {
		return r.IdTable()
	}
	producer, err := r.IdTables()
	if err != nil {
		return nil, err
	}
	agg := qlever.NewIdTable(r.NumColumns())
	for {
		chunk, err := producer.Next()
		if err != nil {
			return nil, err
		}
		if chunk == nil {
			return agg, nil
		}
		agg.AppendRows(chunk, 0, chunk.NumRows())
	}
}

func checkCancelled(cancel *qlever.CancelToken) error {
	if cancel == nil {
		return nil
	}
	select {
	case <-cancel.Done():
		return cancel.Err()
	default:
		return nil
	}
}
