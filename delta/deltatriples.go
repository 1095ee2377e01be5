package delta

import (
	"fmt"
	"sort"
	"sync"

	"github.com/qlever-io/qlever-core"
)

// TurtleTriple is the parsed-triple shape the RDF parser hands to the
// core. Only its three lexical forms matter here; quoting/escaping/prefix
// expansion already happened upstream.
type TurtleTriple struct {
	S, P, O string
}

// BaseVocab resolves a lexical term against the immutable base vocabulary.
// A term absent from the base is minted into DeltaTriples' LocalVocab
// instead.
type BaseVocab interface {
	Lookup(term string) (qlever.Id, bool)
}

// LogOp names the three mutations recorded in the optional mutation log —
// a separate enum from MutationKind because Clear has no per-block entry
// of its own.
type LogOp int

const (
	LogInsert LogOp = iota
	LogDelete
	LogClear
)

// MutationLog is the optional append-only trail SetMutationLog wires in,
// satisfied by the journal package's Log.
type MutationLog interface {
	RecordMutation(op LogOp, s, p, o uint64) error
}

// Stats is a lock-light snapshot of overlay size, mirroring the
// atomic-counter style DB stats used elsewhere in this codebase.
type Stats struct {
	NumInserted              int
	NumDeleted               int
	NumLocatedPerPermutation [6]int
}

// DeltaTriples is the six-permutation overlay of pending insertions and
// deletions merged into base index scans without rewriting them.
type DeltaTriples struct {
	mu sync.RWMutex

	base      [6]Permutation
	baseVocab BaseVocab
	localVocab *qlever.LocalVocab

	perms    [6]*LocatedTriplesPerBlock
	inserted map[IdTriple]Handles
	deleted  map[IdTriple]Handles

	log MutationLog
}

// New builds an empty overlay over base, indexed by AllKinds order (base[k]
// must implement permutation k).
func New(base [6]Permutation, baseVocab BaseVocab) *DeltaTriples {
	d := &DeltaTriples{
		base:       base,
		baseVocab:  baseVocab,
		localVocab: qlever.NewLocalVocab(),
		inserted:   make(map[IdTriple]Handles),
		deleted:    make(map[IdTriple]Handles),
	}
	for _, k := range AllKinds {
		d.perms[k] = NewLocatedTriplesPerBlock(k)
	}
	return d
}

// SetMutationLog wires an optional append-only mutation trail; every
// subsequent InsertTriple/DeleteTriple/Clear appends one record.
func (d *DeltaTriples) SetMutationLog(log MutationLog) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.log = log
}

func (d *DeltaTriples) resolve(term string) qlever.Id {
	if id, ok := d.baseVocab.Lookup(term); ok {
		return id
	}
	return d.localVocab.GetOrIntern(term)
}

func (d *DeltaTriples) translate(t TurtleTriple) IdTriple {
	return IdTriple{S: d.resolve(t.S), P: d.resolve(t.P), O: d.resolve(t.O)}
}

// LocatedTriplesForPermutation exposes one permutation's overlay for scans
// to merge. Safe to call concurrently with InsertTriple/DeleteTriple — the
// returned container guards its own entries with its own lock.
func (d *DeltaTriples) LocatedTriplesForPermutation(k Kind) *LocatedTriplesPerBlock {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.perms[k]
}

// NumInserted returns the number of currently-pending insertions.
func (d *DeltaTriples) NumInserted() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.inserted)
}

// NumDeleted returns the number of currently-pending deletions.
func (d *DeltaTriples) NumDeleted() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.deleted)
}

// Stats returns a snapshot of overlay size across all six permutations.
func (d *DeltaTriples) Stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s := Stats{NumInserted: len(d.inserted), NumDeleted: len(d.deleted)}
	for _, k := range AllKinds {
		s.NumLocatedPerPermutation[k] = d.perms[k].TotalCount()
	}
	return s
}

// InsertTriple records a pending insertion, canceling a matching pending
// deletion and discarding a no-op insertion of a triple already present
// in the base index.
func (d *DeltaTriples) InsertTriple(tt TurtleTriple) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.insertLocked(d.translate(tt), true)
}

// DeleteTriple records a pending deletion, canceling a matching pending
// insertion and rejecting a triple absent from both the overlay and the
// base index.
func (d *DeltaTriples) DeleteTriple(tt TurtleTriple) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deleteLocked(d.translate(tt), true)
}

// Clear drops all six overlay structures, both mappings, and resets the
// LocalVocab.
func (d *DeltaTriples) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clearLocked(true)
}

// ReplayMutation applies one previously-logged mutation straight from its
// already-resolved Id components, without re-appending it to the mutation
// log (it is already there) — this is what a journal.Log's on-disk replay
// path drives to recover the overlay across a restart, so it must not
// re-translate lexical forms or grow the log a second time for the same
// mutation.
func (d *DeltaTriples) ReplayMutation(op LogOp, s, p, o uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := IdTriple{S: qlever.FromRaw(s), P: qlever.FromRaw(p), O: qlever.FromRaw(o)}
	switch op {
	case LogInsert:
		return d.insertLocked(t, false)
	case LogDelete:
		return d.deleteLocked(t, false)
	case LogClear:
		return d.clearLocked(false)
	default:
		return fmt.Errorf("delta: unknown mutation log op %d", op)
	}
}

func (d *DeltaTriples) insertLocked(t IdTriple, record bool) error {
	if _, ok := d.inserted[t]; ok {
		return nil // already pending; idempotent
	}
	if h, ok := d.deleted[t]; ok {
		d.cancelHandles(h)
		delete(d.deleted, t)
		return d.recordMutation(LogInsert, t, record)
	}
	if _, _, found, err := d.base[SPO].PointLookup(t); err != nil {
		return err
	} else if found {
		return nil // already in the base index: nothing to overlay
	}
	handles, err := d.addLocatedForAll(t, Insert)
	if err != nil {
		return err
	}
	d.inserted[t] = handles
	return d.recordMutation(LogInsert, t, record)
}

func (d *DeltaTriples) deleteLocked(t IdTriple, record bool) error {
	if _, ok := d.deleted[t]; ok {
		return nil // already pending; idempotent
	}
	if h, ok := d.inserted[t]; ok {
		d.cancelHandles(h)
		delete(d.inserted, t)
		return d.recordMutation(LogDelete, t, record)
	}
	if _, _, found, err := d.base[SPO].PointLookup(t); err != nil {
		return err
	} else if !found {
		return &DeltaError{Kind: ErrNotInBase, Triple: t}
	}
	handles, err := d.addLocatedForAll(t, Delete)
	if err != nil {
		return err
	}
	d.deleted[t] = handles
	return d.recordMutation(LogDelete, t, record)
}

func (d *DeltaTriples) clearLocked(record bool) error {
	for _, k := range AllKinds {
		d.perms[k].Clear()
	}
	d.inserted = make(map[IdTriple]Handles)
	d.deleted = make(map[IdTriple]Handles)
	d.localVocab = qlever.NewLocalVocab()
	if record && d.log != nil {
		return d.log.RecordMutation(LogClear, 0, 0, 0)
	}
	return nil
}

func (d *DeltaTriples) recordMutation(op LogOp, t IdTriple, record bool) error {
	if !record || d.log == nil {
		return nil
	}
	return d.log.RecordMutation(op, t.S.Raw(), t.P.Raw(), t.O.Raw())
}

func (d *DeltaTriples) cancelHandles(h Handles) {
	for _, k := range AllKinds {
		d.perms[k].Erase(h.forKind(k))
	}
}

func (d *DeltaTriples) addLocatedForAll(t IdTriple, kind MutationKind) (Handles, error) {
	handles := newHandles()
	for _, k := range AllKinds {
		bi, ri, err := d.locate(k, d.base[k], t)
		if err != nil {
			return Handles{}, err
		}
		h := d.perms[k].Add(LocatedTriple{BlockIndex: bi, RowIndexInBlock: ri, Triple: t, MutationKind: kind})
		handles.set(k, h)
	}
	return handles, nil
}

// locate finds where t belongs within permutation k's block/row
// coordinate space: an exact match via PointLookup, a position strictly
// between two existing blocks, a position straddling one block, or the
// phantom block past the end of the index.
func (d *DeltaTriples) locate(k Kind, perm Permutation, t IdTriple) (blockIndex, rowIndex int, err error) {
	n := perm.NumBlocks()
	if n == 0 {
		return 0, 0, nil
	}
	if bi, ri, found, lerr := perm.PointLookup(t); lerr != nil {
		return 0, 0, lerr
	} else if found {
		return bi, ri, nil
	}

	idx := sort.Search(n, func(i int) bool {
		last, ok, lerr := d.lastTriple(perm, i)
		if lerr != nil || !ok {
			return true
		}
		return Compare(k, last, t) >= 0
	})
	if idx == n {
		return n, 0, nil // case 5: phantom block after the last one
	}
	first, _, ferr := d.firstTriple(perm, idx)
	if ferr != nil {
		return 0, 0, ferr
	}
	if Compare(k, t, first) < 0 {
		if idx == 0 {
			return 0, 0, nil // case 4: before the very first block
		}
		return idx, 0, nil // case 3: strictly between blocks idx-1 and idx
	}
	last, _, lerr := d.lastTriple(perm, idx)
	if lerr != nil {
		return 0, 0, lerr
	}
	if Compare(k, t, last) < 0 {
		// case 2: t straddles block idx; find the first row greater than t.
		cursor, cerr := perm.Block(idx)
		if cerr != nil {
			return 0, 0, cerr
		}
		row := sort.Search(cursor.NumRows(), func(r int) bool {
			return Compare(k, cursor.Row(r), t) > 0
		})
		return idx, row, nil
	}
	return idx + 1, 0, nil
}

func (d *DeltaTriples) firstTriple(perm Permutation, blockIndex int) (IdTriple, bool, error) {
	c, err := perm.Block(blockIndex)
	if err != nil || c.NumRows() == 0 {
		return IdTriple{}, false, err
	}
	return c.Row(0), true, nil
}

func (d *DeltaTriples) lastTriple(perm Permutation, blockIndex int) (IdTriple, bool, error) {
	c, err := perm.Block(blockIndex)
	if err != nil || c.NumRows() == 0 {
		return IdTriple{}, false, err
	}
	return c.Row(c.NumRows() - 1), true, nil
}
