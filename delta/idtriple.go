// Package delta implements the DeltaTriples overlay: a per-permutation
// positional index of pending insertions and deletions merged into base
// permutation scans without rewriting the base index.
package delta

import (
	"fmt"

	"github.com/qlever-io/qlever-core"
)

// IdTriple is the (subject, predicate, object) triple identity delta
// mutations key on.
type IdTriple struct {
	S, P, O qlever.Id
}

func (t IdTriple) String() string {
	return fmt.Sprintf("(%s %s %s)", t.S, t.P, t.O)
}

// Kind is a permutation's sort order over IdTriple, one per PSO/POS/SPO/
// SOP/OSP/OPS.
type Kind int

const (
	PSO Kind = iota
	POS
	SPO
	SOP
	OSP
	OPS
)

var kindNames = [...]string{"PSO", "POS", "SPO", "SOP", "OSP", "OPS"}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// AllKinds enumerates the six permutations, in the fixed order every
// six-element array in this package is indexed by.
var AllKinds = [6]Kind{PSO, POS, SPO, SOP, OSP, OPS}

// components returns t's three Ids reordered into k's sort order.
func (t IdTriple) components(k Kind) [3]qlever.Id {
	switch k {
	case PSO:
		return [3]qlever.Id{t.P, t.S, t.O}
	case POS:
		return [3]qlever.Id{t.P, t.O, t.S}
	case SPO:
		return [3]qlever.Id{t.S, t.P, t.O}
	case SOP:
		return [3]qlever.Id{t.S, t.O, t.P}
	case OSP:
		return [3]qlever.Id{t.O, t.S, t.P}
	case OPS:
		return [3]qlever.Id{t.O, t.P, t.S}
	default:
		panic(fmt.Sprintf("delta: unknown permutation kind %d", int(k)))
	}
}

// Compare orders a and b under permutation k's sort order: <0, 0, >0.
func Compare(k Kind, a, b IdTriple) int {
	ca, cb := a.components(k), b.components(k)
	for i := 0; i < 3; i++ {
		if c := ca[i].Compare(cb[i]); c != 0 {
			return c
		}
	}
	return 0
}
