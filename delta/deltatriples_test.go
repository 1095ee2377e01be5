package delta

import (
	"errors"
	"testing"

	"github.com/qlever-io/qlever-core"
)

type mapVocab map[string]qlever.Id

func (m mapVocab) Lookup(term string) (qlever.Id, bool) {
	id, ok := m[term]
	return id, ok
}

func vocabOf(terms ...string) mapVocab {
	v := make(mapVocab, len(terms))
	for i, t := range terms {
		v[t] = qlever.FromInt(int64(i))
	}
	return v
}

func tt(s, p, o string) TurtleTriple { return TurtleTriple{S: s, P: p, O: o} }

func newTestOverlay(baseTriples ...IdTriple) (*DeltaTriples, mapVocab) {
	vocab := vocabOf("s0", "p0", "o0", "s1", "p1", "o1", "s2", "p2", "o2")
	var base [6]Permutation
	for _, k := range AllKinds {
		base[k] = NewMemPermutation(k, 2, baseTriples)
	}
	return New(base, vocab), vocab
}

func TestDeltaTriples_S6_InsertThenDeleteCancels(t *testing.T) {
	d, _ := newTestOverlay()
	triple := tt("s0", "p0", "o0")
	if err := d.InsertTriple(triple); err != nil {
		t.Fatal(err)
	}
	if err := d.DeleteTriple(triple); err != nil {
		t.Fatal(err)
	}
	if d.NumInserted() != 0 || d.NumDeleted() != 0 {
		t.Fatalf("insert-then-delete should cancel: numInserted=%d numDeleted=%d", d.NumInserted(), d.NumDeleted())
	}
	stats := d.Stats()
	for _, k := range AllKinds {
		if stats.NumLocatedPerPermutation[k] != 0 {
			t.Fatalf("permutation %v still has %d located entries", k, stats.NumLocatedPerPermutation[k])
		}
	}
}

func TestDeltaTriples_DeleteTriple_RejectsAbsentFromBase(t *testing.T) {
	d, _ := newTestOverlay()
	err := d.DeleteTriple(tt("s0", "p0", "o0"))
	var derr *DeltaError
	if !errors.As(err, &derr) || !errors.Is(err, ErrNotInBase) {
		t.Fatalf("expected NotInBase, got %v", err)
	}
}

func TestDeltaTriples_InsertTriple_DiscardsIfAlreadyInBase(t *testing.T) {
	vocab := vocabOf("s0", "p0", "o0")
	base := IdTriple{S: vocab["s0"], P: vocab["p0"], O: vocab["o0"]}
	d, _ := newTestOverlay(base)
	if err := d.InsertTriple(tt("s0", "p0", "o0")); err != nil {
		t.Fatal(err)
	}
	if d.NumInserted() != 0 {
		t.Fatalf("inserting a triple already in the base must be a no-op")
	}
}

func TestDeltaTriples_Property7_InsertedAndDeletedDisjoint(t *testing.T) {
	base := IdTriple{S: qlever.FromInt(0), P: qlever.FromInt(1), O: qlever.FromInt(2)}
	d, _ := newTestOverlay(base)

	if err := d.InsertTriple(tt("s1", "p1", "o1")); err != nil {
		t.Fatal(err)
	}
	if err := d.DeleteTriple(tt("s0", "p0", "o0")); err != nil {
		t.Fatal(err)
	}

	d.mu.RLock()
	for k := range d.inserted {
		if _, ok := d.deleted[k]; ok {
			t.Fatalf("triple %v is in both inserted and deleted sets", k)
		}
	}
	d.mu.RUnlock()

	if d.NumInserted() != 1 || d.NumDeleted() != 1 {
		t.Fatalf("expected 1 inserted and 1 deleted, got %d/%d", d.NumInserted(), d.NumDeleted())
	}
}

type fakeMutationLog struct {
	calls int
}

func (f *fakeMutationLog) RecordMutation(op LogOp, s, p, o uint64) error {
	f.calls++
	return nil
}

func TestDeltaTriples_ReplayMutation_DoesNotRecordAgain(t *testing.T) {
	d, _ := newTestOverlay()
	log := &fakeMutationLog{}
	d.SetMutationLog(log)

	s0, p0, o0 := qlever.FromInt(3), qlever.FromInt(4), qlever.FromInt(5)
	if err := d.ReplayMutation(LogInsert, s0.Raw(), p0.Raw(), o0.Raw()); err != nil {
		t.Fatalf("ReplayMutation: %v", err)
	}
	if log.calls != 0 {
		t.Fatalf("ReplayMutation must not append to the mutation log, got %d calls", log.calls)
	}
	if d.NumInserted() != 1 {
		t.Fatalf("expected the replayed insertion to land in the overlay, got NumInserted=%d", d.NumInserted())
	}

	if err := d.ReplayMutation(LogDelete, s0.Raw(), p0.Raw(), o0.Raw()); err != nil {
		t.Fatalf("ReplayMutation: %v", err)
	}
	if log.calls != 0 {
		t.Fatalf("ReplayMutation must not append to the mutation log, got %d calls", log.calls)
	}
	if d.NumInserted() != 0 {
		t.Fatalf("expected the replayed deletion to cancel the pending insertion, got NumInserted=%d", d.NumInserted())
	}

	if err := d.ReplayMutation(LogClear, 0, 0, 0); err != nil {
		t.Fatalf("ReplayMutation: %v", err)
	}
	if log.calls != 0 {
		t.Fatalf("ReplayMutation must not append to the mutation log, got %d calls", log.calls)
	}
}

func TestDeltaTriples_ReplayMutation_UnknownOp(t *testing.T) {
	d, _ := newTestOverlay()
	if err := d.ReplayMutation(LogOp(99), 0, 0, 0); err == nil {
		t.Fatalf("expected an error for an unrecognized mutation log op")
	}
}

func TestDeltaTriples_InsertTriple_RecordsToMutationLog(t *testing.T) {
	d, _ := newTestOverlay()
	log := &fakeMutationLog{}
	d.SetMutationLog(log)

	if err := d.InsertTriple(tt("s0", "p0", "o0")); err != nil {
		t.Fatal(err)
	}
	if log.calls != 1 {
		t.Fatalf("InsertTriple must record to the mutation log, got %d calls", log.calls)
	}
}

func TestDeltaTriples_Property8_MergeScanMatchesSpec(t *testing.T) {
	baseA := IdTriple{S: qlever.FromInt(0), P: qlever.FromInt(1), O: qlever.FromInt(2)}
	baseB := IdTriple{S: qlever.FromInt(6), P: qlever.FromInt(7), O: qlever.FromInt(8)}
	d, _ := newTestOverlay(baseA, baseB)

	// insert s1/p1/o1 (falls between baseA and baseB under SPO order) and
	// delete baseA.
	if err := d.InsertTriple(tt("s1", "p1", "o1")); err != nil {
		t.Fatal(err)
	}
	if err := d.DeleteTriple(tt("s0", "p0", "o0")); err != nil {
		t.Fatal(err)
	}

	overlay := d.LocatedTriplesForPermutation(SPO)

	result, err := MergeScan(d.base[SPO], overlay, 1)
	if err != nil {
		t.Fatal(err)
	}
	prod, err := result.IdTables()
	if err != nil {
		t.Fatal(err)
	}
	var got []IdTriple
	for {
		chunk, err := prod.Next()
		if err != nil {
			t.Fatal(err)
		}
		if chunk == nil {
			break
		}
		for i := 0; i < chunk.NumRows(); i++ {
			r := chunk.Row(i)
			got = append(got, IdTriple{S: r[0], P: r[1], O: r[2]})
		}
	}

	want := []IdTriple{{S: qlever.FromInt(3), P: qlever.FromInt(4), O: qlever.FromInt(5)}, baseB}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d: got %v, want %v", i, got[i], want[i])
		}
	}
}
