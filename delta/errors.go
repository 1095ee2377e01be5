package delta

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for DeltaTriples mutations, mirroring the root
// package's ResultError shape.
var (
	ErrAlreadyInBase = errors.New("delta: triple already present in the base index")
	ErrNotInBase     = errors.New("delta: triple absent from the base index")
)

// DeltaError decorates one of the sentinels above with the offending
// triple.
type DeltaError struct {
	Kind   error
	Triple IdTriple
}

func (e *DeltaError) Unwrap() error { return e.Kind }
func (e *DeltaError) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Triple) }
