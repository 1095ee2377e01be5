package qlever

import (
	"errors"
	"strings"
	"testing"
)

func TestDataError_ErrorAndUnwrap(t *testing.T) {
	t.Run("small data", func(t *testing.T) {
		inner := errors.New("inner")
		err := dataErrf([]byte{0xAA, 0xBB}, 1, inner, "oops")
		var de *DataError
		if !errors.As(err, &de) {
			t.Fatalf("err = %T, wanted *DataError", err)
		}
		if !errors.Is(err, inner) {
			t.Fatalf("errors.Is(err, inner) = false, wanted true")
		}
		s := err.Error()
		if !strings.Contains(s, "oops") || !strings.Contains(s, "inner") || !strings.Contains(s, "(2)") {
			t.Fatalf("err.Error() = %q, wanted message with oops/inner/(2)", s)
		}
	})

	t.Run("large data includes prefix+suffix", func(t *testing.T) {
		data := make([]byte, 200)
		for i := range data {
			data[i] = byte(i)
		}
		err := dataErrf(data, 0, nil, "oops")
		s := err.Error()
		if !strings.Contains(s, "(200)") || !strings.Contains(s, "...") {
			t.Fatalf("err.Error() = %q, wanted message with (200) and ...", s)
		}
	})
}

func TestResultError_ErrorAndUnwrap(t *testing.T) {
	err := resultErrf(ErrSortOrderViolated, 3, -1, "row %d out of order", 3)
	if !errors.Is(err, ErrSortOrderViolated) {
		t.Fatalf("errors.Is should find the sentinel kind")
	}
	s := err.Error()
	if !strings.Contains(s, "row 3") || !strings.Contains(s, "out of order") {
		t.Fatalf("err.Error() = %q, wanted row/detail", s)
	}

	colErr := resultErrf(ErrDefinednessViolated, 1, 2, "boom")
	s = colErr.Error()
	if !strings.Contains(s, "row 1") || !strings.Contains(s, "col 2") {
		t.Fatalf("err.Error() = %q, wanted row and col", s)
	}
}

func TestProducerFailure(t *testing.T) {
	inner := errors.New("disk read failed")
	err := &ProducerFailure{Err: inner}
	if !errors.Is(err, inner) {
		t.Fatalf("ProducerFailure should unwrap to the underlying cause")
	}
}

func TestCancelledError(t *testing.T) {
	cause := errors.New("context canceled")
	err := &CancelledError{Cause: cause}
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("CancelledError should match ErrCancelled")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("CancelledError should also unwrap to its cause")
	}

	bare := &CancelledError{}
	if !errors.Is(bare, ErrCancelled) {
		t.Fatalf("a cause-less CancelledError should still match ErrCancelled")
	}
}
