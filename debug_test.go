package qlever

import (
	"strings"
	"testing"
)

func TestResult_Dump_Materialized(t *testing.T) {
	vocab := NewLocalVocab()
	s := vocab.GetOrIntern("hi")
	tbl := NewIdTableFromRows(2, [][]Id{{FromInt(1), s}})
	r, err := NewMaterializedResult(tbl, []int{0}, vocab, false)
	if err != nil {
		t.Fatal(err)
	}
	out := r.Dump(DumpAll)
	if out == "" {
		t.Fatal("expected non-empty dump")
	}
	if !strings.Contains(out, "Materialized") {
		t.Fatalf("dump should mention the variant: %q", out)
	}
	if !strings.Contains(out, `"hi"`) {
		t.Fatalf("dump should render vocab-interned cells lexically: %q", out)
	}
}

func TestResult_Dump_LazyOnlyReportsHeader(t *testing.T) {
	r, err := NewLazyResult(1, SliceProducer(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	out := r.Dump(DumpAll)
	if !strings.Contains(out, "Lazy") {
		t.Fatalf("dump should report Lazy variant without consuming it: %q", out)
	}
}

