package qlever

import (
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Variable is a SPARQL query variable name, e.g. "?x" (without the '?').
type Variable string

// Definedness annotates whether a column may contain the UNDEFINED Id.
type Definedness int

const (
	PossiblyUndefined Definedness = iota
	AlwaysDefined
)

// VarColumn records where a Variable lives and whether it may be
// UNDEFINED, the payload of GetVariableColumns().
type VarColumn struct {
	Column      int
	Definedness Definedness
}

// VarMap is the variable-to-column map every Operator exposes.
type VarMap map[Variable]VarColumn

// SortedVariableNames returns the map's keys sorted alphabetically, used to
// build a cache key that is stable regardless of insertion order.
func (vm VarMap) SortedVariableNames() []string {
	names := make([]string, 0, len(vm))
	for v := range vm {
		names = append(names, string(v))
	}
	sort.Strings(names)
	return names
}

// Operator is the contract every query-tree node implements.
// Implementations compose by consuming child Results.
type Operator interface {
	// ComputeResult evaluates the operator, consuming any children.
	ComputeResult(cancel *CancelToken) (*Result, error)
	// GetResultWidth returns the number of columns ComputeResult's Result
	// will have.
	GetResultWidth() int
	// ResultSortedOn returns the columns the produced Result is
	// guaranteed sorted by.
	ResultSortedOn() []int
	// GetVariableColumns maps each output variable to its column and
	// definedness annotation.
	GetVariableColumns() VarMap
	// GetSizeEstimate estimates the number of output rows.
	GetSizeEstimate() int64
	// GetCostEstimate estimates the relative evaluation cost.
	GetCostEstimate() int64
	// GetMultiplicity estimates the average number of rows per distinct
	// value in the given column (0 if unknown).
	GetMultiplicity(col int) float64
	// AsString renders the operator subtree as text for cache keying and
	// debug output, indented by `indent` spaces at this node.
	AsString(indent int) string
}

// CacheKey hashes an operator subtree's textual form the same way the
// journal package checksums its records, with xxhash instead of
// a slower general-purpose hash. Equivalent query trees produce the same
// AsString output (variables are listed alphabetically by VarMap) and
// therefore the same key.
func CacheKey(op Operator) uint64 {
	return xxhash.Sum64String(op.AsString(0))
}

// FormatVarMapForCacheKey renders a VarMap's variables in the
// alphabetical, cache-stable order AsString implementations should use.
func FormatVarMapForCacheKey(vm VarMap) string {
	names := vm.SortedVariableNames()
	return strings.Join(names, ",")
}

// BaseOperator provides the size/cost estimate bookkeeping most concrete
// operators share, mirroring the embedding pattern schematable uses to
// share fields across Table/Index instead of duplicating fields in every
// Operator implementation. Embed it and call SetEstimates once the
// operator knows its child's estimates, instead of carrying separate
// sizeEstimate/costEstimate fields.
type BaseOperator struct {
	sizeEstimate int64
	costEstimate int64
}

func (b *BaseOperator) GetSizeEstimate() int64 { return b.sizeEstimate }
func (b *BaseOperator) GetCostEstimate() int64 { return b.costEstimate }

// SetEstimates records the size/cost estimates an operator computed for
// itself, typically once in its constructor from its child's own estimates.
func (b *BaseOperator) SetEstimates(size, cost int64) {
	b.sizeEstimate = size
	b.costEstimate = cost
}
