package qlever

import (
	"errors"
	"fmt"
)

// Sentinel error kinds returned by this package. Compare with errors.Is;
// the concrete error values returned by this package wrap one of these.
var (
	ErrWrongVariant       = errors.New("result: wrong variant")
	ErrAlreadyConsumed    = errors.New("result: lazy result already consumed")
	ErrInvalidSortColumn  = errors.New("result: invalid sort column")
	ErrSortOrderViolated  = errors.New("result: sort order violated")
	ErrDefinednessViolated = errors.New("result: definedness violated")
	ErrLimitExceeded      = errors.New("result: limit exceeded")
	ErrCancelled          = errors.New("result: cancelled")
)

// ResultError decorates one of the sentinel Err* values above with the
// context needed to diagnose it, mirroring DataError's shape below (a
// typed error carrying the offending data plus an Unwrap-able cause).
type ResultError struct {
	Kind    error // one of the Err* sentinels
	Detail  string
	Row     int // -1 if not applicable
	Column  int // -1 if not applicable
}

func resultErrf(kind error, row, col int, format string, args ...any) *ResultError {
	return &ResultError{Kind: kind, Detail: fmt.Sprintf(format, args...), Row: row, Column: col}
}

func (e *ResultError) Unwrap() error { return e.Kind }

func (e *ResultError) Error() string {
	switch {
	case e.Row >= 0 && e.Column >= 0:
		return fmt.Sprintf("%s (row %d, col %d): %s", e.Kind, e.Row, e.Column, e.Detail)
	case e.Row >= 0:
		return fmt.Sprintf("%s (row %d): %s", e.Kind, e.Row, e.Detail)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
}

// ProducerFailure wraps whatever error a chunk producer raised so it can be
// forwarded exactly once to the consumer on the Next() call that would
// have produced the next chunk.
type ProducerFailure struct {
	Err error
}

func (e *ProducerFailure) Unwrap() error { return e.Err }
func (e *ProducerFailure) Error() string { return fmt.Sprintf("producer failed: %v", e.Err) }

// CancelledError reports that a cooperative cancellation token fired while
// a lazy Result was being consumed or produced.
type CancelledError struct {
	Cause error // ctx.Err(), if any
}

func (e *CancelledError) Unwrap() error {
	if e.Cause != nil {
		return errors.Join(ErrCancelled, e.Cause)
	}
	return ErrCancelled
}
func (e *CancelledError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cancelled: %v", e.Cause)
	}
	return "cancelled"
}

// DataError reports a malformed cache-entry byte buffer. It carries a
// bounded prefix/suffix of the offending buffer so logs stay readable for
// multi-megabyte payloads.
type DataError struct {
	Data []byte
	Off  int
	Err  error
	Msg  string
}

func dataErrf(data []byte, off int, err error, format string, args ...any) error {
	return &DataError{data, off, err, fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error { return e.Err }

func (e *DataError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x", e.Msg, e.Err, n, e.Data)
		}
		return fmt.Sprintf("%s: (%d) %x", e.Msg, n, e.Data)
	}
	p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: (%d) %x...%x", e.Msg, e.Err, n, p, s)
	}
	return fmt.Sprintf("%s: (%d) %x...%x", e.Msg, n, p, s)
}
