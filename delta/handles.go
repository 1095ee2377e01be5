package delta

// Handles bundles the six per-permutation Handle values recorded for one
// pending IdTriple mutation.
// Handles never own the LocatedTriplesPerBlock they point into — DeltaTriples
// owns all six containers and is the only thing that dereferences a Handle.
type Handles struct {
	perm [6]Handle
}

func (h Handles) forKind(k Kind) Handle { return h.perm[k] }

func newHandles() Handles { return Handles{} }

func (h *Handles) set(k Kind, handle Handle) { h.perm[k] = handle }
