package qlever

import "testing"

func TestLocalVocab_InternDeduplicates(t *testing.T) {
	lv := NewLocalVocab()
	a := lv.GetOrIntern("hello")
	b := lv.GetOrIntern("world")
	c := lv.GetOrIntern("hello")
	if a != c {
		t.Fatalf("interning the same string twice must return the same Id")
	}
	if a == b {
		t.Fatalf("interning different strings must return different Ids")
	}
	if lv.GetString(a.payload()) != "hello" {
		t.Fatalf("GetString mismatch")
	}
}

func TestLocalVocab_SealPreventsAppend(t *testing.T) {
	lv := NewLocalVocab()
	lv.GetOrIntern("x")
	shared := lv.Share()
	if !shared.IsSealed() {
		t.Fatalf("Share() should seal the vocab")
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic appending to a sealed vocab")
		}
	}()
	shared.GetOrIntern("y")
}

func TestLocalVocab_MarshalRoundTrip(t *testing.T) {
	lv := NewLocalVocab()
	lv.GetOrIntern("alpha")
	lv.GetOrIntern("beta")
	lv.Share()

	data, err := lv.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	lv2, err := UnmarshalLocalVocab(data)
	if err != nil {
		t.Fatalf("UnmarshalLocalVocab: %v", err)
	}
	if lv2.Size() != 2 || lv2.GetString(0) != "alpha" || lv2.GetString(1) != "beta" {
		t.Fatalf("round trip mismatch: %+v", lv2.Strings())
	}
	if !lv2.IsSealed() {
		t.Fatalf("unmarshaled vocab should be sealed")
	}
}
