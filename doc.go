/*
Package qlever implements the query execution core of a SPARQL engine: the
streaming Result abstraction every operator produces and consumes, the
tagged 64-bit Id and the row-major IdTable that carries tuples of them, the
append-only LocalVocab, and the Operator contract that composes query
trees.

We implement:

 1. Id, a 64-bit tagged identifier (vocabulary index, local-vocab index,
    small integer, float, text-record index, or UNDEFINED).

 2. IdTable, the fixed-column-count row-major matrix every operator reads
    and writes.

 3. LocalVocab, the append-only query-scope string dictionary shared
    read-only by every Result that descends from the operator that created
    it.

 4. Result, a Materialized/Lazy sum type with sort-order and definedness
    invariants enforced on construction (Materialized) or per chunk
    (Lazy), plus the limit/offset and caching transforms operators apply
    to it.

 5. Operator, the eight-method contract (computeResult, getResultWidth,
    resultSortedOn, getVariableColumns, size and cost estimates,
    multiplicity, asString) every query-tree node implements.

The permutation storage layer, the RDF/SPARQL parsers, the planner, and the
HTTP surface are external collaborators; this package and its delta and
groupby subpackages only consume the interfaces they expose.

# Technical details

**Id tag layout.** The top bits of an Id select a Datatype tag; the
remaining bits hold the payload (a vocabulary offset, a local-vocab index,
a two's-complement integer, or the bits of a float64). Equality between two
Ids is bitwise — see id.go.

**Sort/definedness enforcement.** Materialized Results are checked once at
construction when verifySortOrder is set. Lazy Results are checked
chunk-by-chunk as they are consumed once WithSortOrderChecking or
CheckDefinedness has been applied, remembering the last row of the previous
chunk so order is checked across chunk boundaries too — see
result_stream.go.
*/
package qlever
