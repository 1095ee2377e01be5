package qlever

import "testing"

func TestMust(t *testing.T) {
	if got := must(42, nil); got != 42 {
		t.Fatalf("must(42, nil) = %d, want 42", got)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("must should panic on a non-nil error")
		}
	}()
	must(0, errBoom)
}

func TestEnsure(t *testing.T) {
	ensure(nil) // must not panic

	defer func() {
		if recover() == nil {
			t.Fatal("ensure should panic on a non-nil error")
		}
	}()
	ensure(errBoom)
}

func TestInc(t *testing.T) {
	b := []byte{0x00, 0x00}
	if !inc(b) || b[0] != 0x00 || b[1] != 0x01 {
		t.Fatalf("inc = %x, wanted 0001", b)
	}
	if inc([]byte{0xFF}) {
		t.Fatalf("inc(FF) = true, wanted false (overflow)")
	}
	b2 := []byte{0x00, 0xFF}
	if !inc(b2) || b2[0] != 0x01 || b2[1] != 0x00 {
		t.Fatalf("inc(00 FF) = %x, wanted 0100", b2)
	}
}

var errBoom = &testError{}

type testError struct{}

func (*testError) Error() string { return "boom" }
