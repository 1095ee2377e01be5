package qlever

import "context"

// CancelToken is the cooperative cancellation handle threaded through
// Operator.ComputeResult. The lazy chunk producers and wrappers in
// result_stream.go do not check it; an operator that supports
// cancellation checks it itself (GroupBy does so once per group). It is
// a thin wrapper around a context.Context, following journal.Options's
// habit of accepting a context for cancellation rather than inventing a
// bespoke stop-channel type.
type CancelToken struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewCancelToken derives a cancellable token from parent. Passing a nil
// parent uses context.Background().
func NewCancelToken(parent context.Context) *CancelToken {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &CancelToken{ctx: ctx, cancel: cancel}
}

// Cancel fires the token. Safe to call more than once.
func (t *CancelToken) Cancel() { t.cancel() }

// Done returns a channel closed once Cancel has fired.
func (t *CancelToken) Done() <-chan struct{} { return t.ctx.Done() }

// Err returns nil until the token fires, then the context's cancellation
// cause (context.Canceled unless a deadline expired).
func (t *CancelToken) Err() error { return t.ctx.Err() }

// Context exposes the underlying context.Context for producers that need
// to pass cancellation further down (e.g. into an I/O call).
func (t *CancelToken) Context() context.Context { return t.ctx }

// checkCancelled returns a *CancelledError if t has fired, else nil. nil
// tokens never cancel, matching operators that were not asked to support
// cancellation.
func checkCancelled(t *CancelToken) error {
	if t == nil {
		return nil
	}
	if err := t.Err(); err != nil {
		return &CancelledError{Cause: err}
	}
	return nil
}
