package groupby

import (
	"testing"

	"github.com/qlever-io/qlever-core"
)

func idRow(vals ...int64) []qlever.Id {
	row := make([]qlever.Id, len(vals))
	for i, v := range vals {
		row[i] = qlever.FromInt(v)
	}
	return row
}

func TestEvalCount(t *testing.T) {
	tbl := qlever.NewIdTableFromRows(1, [][]qlever.Id{idRow(1), idRow(2), idRow(2)})
	got := Evaluate(Spec{Kind: Count, InputColumn: 0}, tbl, 0, 3, nil, nil)
	if got != qlever.FromInt(3) {
		t.Fatalf("COUNT = %v, want 3", got)
	}
	gotDistinct := Evaluate(Spec{Kind: Count, InputColumn: 0, Distinct: true}, tbl, 0, 3, nil, nil)
	if gotDistinct != qlever.FromInt(2) {
		t.Fatalf("COUNT DISTINCT = %v, want 2", gotDistinct)
	}
}

func TestEvalSum(t *testing.T) {
	tbl := qlever.NewIdTableFromRows(1, [][]qlever.Id{idRow(1), idRow(2), idRow(3)})
	got := Evaluate(Spec{Kind: Sum, InputColumn: 0}, tbl, 0, 3, nil, nil)
	if got != qlever.FromDouble(6) {
		t.Fatalf("SUM = %v, want 6", got)
	}
}

func TestEvalAvg_DivisorPolicy(t *testing.T) {
	tbl := qlever.NewIdTableFromRows(1, [][]qlever.Id{idRow(2), idRow(2), idRow(4)})
	got := Evaluate(Spec{Kind: Avg, InputColumn: 0}, tbl, 0, 3, nil, nil)
	if got != qlever.FromDouble(8.0/3.0) {
		t.Fatalf("AVG = %v, want %v", got, qlever.FromDouble(8.0/3.0))
	}
	gotDistinct := Evaluate(Spec{Kind: Avg, InputColumn: 0, Distinct: true}, tbl, 0, 3, nil, nil)
	if gotDistinct != qlever.FromDouble(2) {
		t.Fatalf("AVG DISTINCT = %v, want 2 (sum of distinct {2,4}=6, divided by row count 3)", gotDistinct)
	}
}

func TestEvalAvg_EmptyGroupIsZero(t *testing.T) {
	tbl := qlever.NewIdTable(1)
	got := Evaluate(Spec{Kind: Avg, InputColumn: 0}, tbl, 0, 0, nil, nil)
	if got != qlever.FromDouble(0) {
		t.Fatalf("AVG over empty group = %v, want 0", got)
	}
}

func TestEvalMinMax(t *testing.T) {
	tbl := qlever.NewIdTableFromRows(1, [][]qlever.Id{idRow(3), idRow(1), idRow(2)})
	min := Evaluate(Spec{Kind: Min, InputColumn: 0}, tbl, 0, 3, nil, nil)
	if min != qlever.FromInt(1) {
		t.Fatalf("MIN = %v, want 1", min)
	}
	max := Evaluate(Spec{Kind: Max, InputColumn: 0}, tbl, 0, 3, nil, nil)
	if max != qlever.FromInt(3) {
		t.Fatalf("MAX = %v, want 3", max)
	}
}

func TestEvalMinMax_EmptyGroupIsUndefined(t *testing.T) {
	tbl := qlever.NewIdTable(1)
	got := Evaluate(Spec{Kind: Min, InputColumn: 0}, tbl, 0, 0, nil, nil)
	if got != qlever.Undefined {
		t.Fatalf("MIN over empty group = %v, want Undefined", got)
	}
}

func TestEvalMinMax_IncomparableYieldsUndefined(t *testing.T) {
	tbl := qlever.NewIdTableFromRows(1, [][]qlever.Id{
		{qlever.FromTextRecordIndex(1)},
		{qlever.FromLocalVocabIndex(1)},
	})
	resolver := fakeResolver{1: "not numeric"}
	got := Evaluate(Spec{Kind: Max, InputColumn: 0}, tbl, 0, 2, resolver, nil)
	if got != qlever.Undefined {
		t.Fatalf("MAX over incomparable types = %v, want Undefined", got)
	}
}

func TestEvalSampleFirstLast(t *testing.T) {
	tbl := qlever.NewIdTableFromRows(1, [][]qlever.Id{idRow(10), idRow(20), idRow(30)})
	if got := Evaluate(Spec{Kind: Sample, InputColumn: 0}, tbl, 0, 3, nil, nil); got != qlever.FromInt(30) {
		t.Fatalf("SAMPLE = %v, want 30", got)
	}
	if got := Evaluate(Spec{Kind: First, InputColumn: 0}, tbl, 0, 3, nil, nil); got != qlever.FromInt(10) {
		t.Fatalf("FIRST = %v, want 10", got)
	}
	if got := Evaluate(Spec{Kind: Last, InputColumn: 0}, tbl, 0, 3, nil, nil); got != qlever.FromInt(30) {
		t.Fatalf("LAST = %v, want 30", got)
	}
}

func TestEvalGroupConcat(t *testing.T) {
	tbl := qlever.NewIdTableFromRows(1, [][]qlever.Id{idRow(1), idRow(2)})
	vocab := qlever.NewLocalVocab()
	got := Evaluate(Spec{Kind: GroupConcat, InputColumn: 0}, tbl, 0, 2, nil, vocab)
	want := vocab.GetString(got.LocalVocabIndex())
	if want != "1 2" {
		t.Fatalf("GROUP_CONCAT default separator = %q, want %q", want, "1 2")
	}
}

func TestEvalGroupConcat_CustomSeparatorAndDistinct(t *testing.T) {
	tbl := qlever.NewIdTableFromRows(1, [][]qlever.Id{idRow(2), idRow(1), idRow(2)})
	vocab := qlever.NewLocalVocab()
	spec := Spec{Kind: GroupConcat, InputColumn: 0, Distinct: true, GroupConcatSeparator: ","}
	got := Evaluate(spec, tbl, 0, 3, nil, vocab)
	joined := vocab.GetString(got.LocalVocabIndex())
	if joined != "2,1" {
		t.Fatalf("GROUP_CONCAT DISTINCT = %q, want %q (first-occurrence order)", joined, "2,1")
	}
}

func TestEvalGroupConcat_NilVocabYieldsUndefined(t *testing.T) {
	tbl := qlever.NewIdTableFromRows(1, [][]qlever.Id{idRow(1)})
	got := Evaluate(Spec{Kind: GroupConcat, InputColumn: 0}, tbl, 0, 1, nil, nil)
	if got != qlever.Undefined {
		t.Fatalf("GROUP_CONCAT with nil outVocab = %v, want Undefined", got)
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		Count: "COUNT", Sum: "SUM", Avg: "AVG", Min: "MIN", Max: "MAX",
		GroupConcat: "GROUP_CONCAT", Sample: "SAMPLE", First: "FIRST", Last: "LAST",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
