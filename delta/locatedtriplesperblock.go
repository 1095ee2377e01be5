package delta

import (
	"container/list"
	"sync"
)

// LocatedTriplesPerBlock maintains, for a single permutation, the sorted
// positional image of all pending inserts and deletes, keyed by block.
// Each block's entries live in a container/list.List: Go's stdlib
// doubly-linked list is the natural fit for an intrusive sorted container
// with stable, never-owning iterators — add and erase never invalidate
// any other element's *list.Element handle, and no third-party
// ordered-container library covers this need.
// LocatedTriplesPerBlock guards its own map with a mutex rather than
// relying on DeltaTriples' write lock, so a scan reading one block's
// entries never blocks a mutation touching a different permutation's
// container. A scan does block a write to its own container for as long
// as the copy in EntriesForBlock takes, which grows with the number of
// entries in the block; it is not limited to a pointer swap.
type LocatedTriplesPerBlock struct {
	mu     sync.RWMutex
	kind   Kind
	blocks map[int]*list.List
	count  int
}

// NewLocatedTriplesPerBlock creates an empty overlay for one permutation.
func NewLocatedTriplesPerBlock(kind Kind) *LocatedTriplesPerBlock {
	return &LocatedTriplesPerBlock{kind: kind, blocks: make(map[int]*list.List)}
}

// Handle is a stable reference to one entry, returned by Add and consumed
// by Erase. It remains valid across unrelated Add/Erase calls on the same
// LocatedTriplesPerBlock.
type Handle struct {
	blockIndex int
	elem       *list.Element
}

// Add inserts lt in sorted position within its block and returns a stable
// handle to it.
func (p *LocatedTriplesPerBlock) Add(lt LocatedTriple) Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.blocks[lt.BlockIndex]
	if !ok {
		l = list.New()
		p.blocks[lt.BlockIndex] = l
	}
	var e *list.Element
	for e = l.Front(); e != nil; e = e.Next() {
		if less(p.kind, lt, e.Value.(LocatedTriple)) {
			e = l.InsertBefore(lt, e)
			p.count++
			return Handle{blockIndex: lt.BlockIndex, elem: e}
		}
	}
	e = l.PushBack(lt)
	p.count++
	return Handle{blockIndex: lt.BlockIndex, elem: e}
}

// Erase removes the entry h refers to.
func (p *LocatedTriplesPerBlock) Erase(h Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.blocks[h.blockIndex]
	if !ok {
		return
	}
	l.Remove(h.elem)
	p.count--
	if l.Len() == 0 {
		delete(p.blocks, h.blockIndex)
	}
}

// CountForBlock returns the number of pending entries in block i.
func (p *LocatedTriplesPerBlock) CountForBlock(i int) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	l, ok := p.blocks[i]
	if !ok {
		return 0
	}
	return l.Len()
}

// TotalCount returns the number of pending entries across every block, a
// cached running total rather than a sum-of-blocks walk.
func (p *LocatedTriplesPerBlock) TotalCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.count
}

// EntriesForBlock returns a snapshot slice of block i's entries in sorted
// order. The slice is a copy; mutating LocatedTriplesPerBlock afterward
// does not affect it.
func (p *LocatedTriplesPerBlock) EntriesForBlock(i int) []LocatedTriple {
	p.mu.RLock()
	defer p.mu.RUnlock()
	l, ok := p.blocks[i]
	if !ok {
		return nil
	}
	out := make([]LocatedTriple, 0, l.Len())
	for e := l.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(LocatedTriple))
	}
	return out
}

// Clear drops every entry from every block.
func (p *LocatedTriplesPerBlock) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blocks = make(map[int]*list.List)
	p.count = 0
}
