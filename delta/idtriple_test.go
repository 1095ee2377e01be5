package delta

import (
	"testing"

	"github.com/qlever-io/qlever-core"
)

func TestCompare_SPO(t *testing.T) {
	a := IdTriple{S: qlever.FromInt(1), P: qlever.FromInt(9), O: qlever.FromInt(9)}
	b := IdTriple{S: qlever.FromInt(2), P: qlever.FromInt(0), O: qlever.FromInt(0)}
	if Compare(SPO, a, b) >= 0 {
		t.Fatalf("SPO order should compare by subject first")
	}
}

func TestCompare_PSO_OrdersBySubjectSecond(t *testing.T) {
	// Same predicate, different subjects: PSO should order by subject next.
	a := IdTriple{S: qlever.FromInt(1), P: qlever.FromInt(5), O: qlever.FromInt(9)}
	b := IdTriple{S: qlever.FromInt(2), P: qlever.FromInt(5), O: qlever.FromInt(0)}
	if Compare(PSO, a, b) >= 0 {
		t.Fatalf("PSO order should compare subject as the tiebreaker after predicate")
	}
}

func TestKind_String(t *testing.T) {
	for _, k := range AllKinds {
		if k.String() == "" {
			t.Fatalf("Kind(%d).String() is empty", int(k))
		}
	}
}
