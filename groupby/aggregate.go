package groupby

import (
	"strings"

	"github.com/qlever-io/qlever-core"
)

// Kind names one of the nine aggregate functions GroupBy can evaluate.
type Kind int

const (
	Count Kind = iota
	Sum
	Avg
	Min
	Max
	GroupConcat
	Sample
	First
	Last
)

func (k Kind) String() string {
	switch k {
	case Count:
		return "COUNT"
	case Sum:
		return "SUM"
	case Avg:
		return "AVG"
	case Min:
		return "MIN"
	case Max:
		return "MAX"
	case GroupConcat:
		return "GROUP_CONCAT"
	case Sample:
		return "SAMPLE"
	case First:
		return "FIRST"
	case Last:
		return "LAST"
	default:
		return "UNKNOWN"
	}
}

// Spec describes one aggregate invocation in a GroupBy's aggregate list:
// which function, over which input column, with which options. This is
// the sum-type configuration record standing in for a per-aggregate
// "_userData" pointer — every aggregate-specific option (currently just
// GROUP_CONCAT's separator) lives here instead of a global mutable slot.
type Spec struct {
	Kind                 Kind
	InputColumn          int
	OutputVar            qlever.Variable
	Distinct             bool
	GroupConcatSeparator string // used only when Kind == GroupConcat; "" means " "
}

func (s Spec) separator() string {
	if s.GroupConcatSeparator == "" {
		return " "
	}
	return s.GroupConcatSeparator
}

// Evaluate computes s over rows[from:to) of table. resolver renders
// vocabulary-typed values for numeric coercion and GROUP_CONCAT; outVocab
// is where a GROUP_CONCAT result string is interned (unused by every
// other aggregate).
func Evaluate(s Spec, table *qlever.IdTable, from, to int, resolver VocabResolver, outVocab *qlever.LocalVocab) qlever.Id {
	switch s.Kind {
	case Count:
		return evalCount(s, table, from, to)
	case Sum:
		return evalSum(s, table, from, to, resolver)
	case Avg:
		return evalAvg(s, table, from, to, resolver)
	case Min:
		return evalMinMax(s, table, from, to, resolver, true)
	case Max:
		return evalMinMax(s, table, from, to, resolver, false)
	case GroupConcat:
		return evalGroupConcat(s, table, from, to, resolver, outVocab)
	case First:
		if to <= from {
			return qlever.Undefined
		}
		return table.At(from, s.InputColumn)
	case Sample, Last:
		// SAMPLE and LAST both pick the group's last row: with no inherent
		// order among non-grouping columns, "an arbitrary representative"
		// and "the last one" coincide.
		if to <= from {
			return qlever.Undefined
		}
		return table.At(to-1, s.InputColumn)
	default:
		return qlever.Undefined
	}
}

// distinctIds walks rows[from:to)'s InputColumn and returns the set of
// distinct Ids seen. A fresh set is built per aggregate invocation and
// discarded afterward, never shared across groups.
func distinctIds(table *qlever.IdTable, col, from, to int) map[qlever.Id]struct{} {
	set := make(map[qlever.Id]struct{}, to-from)
	for r := from; r < to; r++ {
		set[table.At(r, col)] = struct{}{}
	}
	return set
}

func evalCount(s Spec, table *qlever.IdTable, from, to int) qlever.Id {
	if !s.Distinct {
		return qlever.FromInt(int64(to - from))
	}
	return qlever.FromInt(int64(len(distinctIds(table, s.InputColumn, from, to))))
}

func evalSum(s Spec, table *qlever.IdTable, from, to int, resolver VocabResolver) qlever.Id {
	var sum float64
	if s.Distinct {
		for id := range distinctIds(table, s.InputColumn, from, to) {
			sum += ToFloat(id, resolver)
		}
	} else {
		for r := from; r < to; r++ {
			sum += ToFloat(table.At(r, s.InputColumn), resolver)
		}
	}
	return qlever.FromDouble(sum)
}

// evalAvg always divides by the group's row count, even under DISTINCT:
// DISTINCT narrows which values get summed, not what the mean is taken
// over.
func evalAvg(s Spec, table *qlever.IdTable, from, to int, resolver VocabResolver) qlever.Id {
	if to <= from {
		return qlever.FromDouble(0)
	}
	var sum float64
	if s.Distinct {
		for id := range distinctIds(table, s.InputColumn, from, to) {
			sum += ToFloat(id, resolver)
		}
	} else {
		for r := from; r < to; r++ {
			sum += ToFloat(table.At(r, s.InputColumn), resolver)
		}
	}
	return qlever.FromDouble(sum / float64(to-from))
}

func evalMinMax(s Spec, table *qlever.IdTable, from, to int, resolver VocabResolver, wantMin bool) qlever.Id {
	if to <= from {
		return qlever.Undefined
	}
	best := table.At(from, s.InputColumn)
	for r := from + 1; r < to; r++ {
		cand := table.At(r, s.InputColumn)
		less, comparable := numericLess(cand, best, resolver)
		if !comparable {
			return qlever.Undefined
		}
		if less == wantMin {
			best = cand
		}
	}
	return best
}

func evalGroupConcat(s Spec, table *qlever.IdTable, from, to int, resolver VocabResolver, outVocab *qlever.LocalVocab) qlever.Id {
	var parts []string
	if s.Distinct {
		seen := make(map[qlever.Id]struct{}, to-from)
		for r := from; r < to; r++ {
			id := table.At(r, s.InputColumn)
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			parts = append(parts, LexicalForm(id, resolver))
		}
	} else {
		for r := from; r < to; r++ {
			parts = append(parts, LexicalForm(table.At(r, s.InputColumn), resolver))
		}
	}
	joined := strings.Join(parts, s.separator())
	if outVocab == nil {
		return qlever.Undefined
	}
	return outVocab.GetOrIntern(joined)
}
