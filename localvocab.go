package qlever

import (
	"sync"
	"sync/atomic"

	"github.com/vmihailenco/msgpack/v5"
)

// LocalVocab is the append-only, query-scope string dictionary shared by
// every Result descending from the operator that created it.
// It is never mutated after being shared read-only; only the operator that
// still exclusively owns it may append. Sharing is modeled with an atomic
// reference count plus a "sealed" flag, following db.go's habit of using
// atomic.Int64 counters for cross-goroutine bookkeeping instead of a full
// mutex around every read.
type LocalVocab struct {
	mu      sync.RWMutex
	strings []string
	index   map[string]uint64 // interning table, exclusive-owner only
	sealed  atomic.Bool
	shares  atomic.Int32
}

// NewLocalVocab returns a fresh, exclusively-owned, empty LocalVocab.
func NewLocalVocab() *LocalVocab {
	return &LocalVocab{index: make(map[string]uint64)}
}

// Size returns the number of interned strings.
func (lv *LocalVocab) Size() int {
	lv.mu.RLock()
	defer lv.mu.RUnlock()
	return len(lv.strings)
}

// GetString returns the string for a DatatypeLocalVocabIndex Id's payload.
func (lv *LocalVocab) GetString(idx uint64) string {
	lv.mu.RLock()
	defer lv.mu.RUnlock()
	return lv.strings[idx]
}

// GetOrIntern returns the Id for s, minting a new local-vocab entry if s
// has not been seen before. Panics if the vocab has been Seal()ed, since
// only the still-exclusive owner may append.
func (lv *LocalVocab) GetOrIntern(s string) Id {
	lv.mu.Lock()
	defer lv.mu.Unlock()
	if lv.sealed.Load() {
		panic("qlever: attempt to append to a shared (sealed) LocalVocab")
	}
	if idx, ok := lv.index[s]; ok {
		return FromLocalVocabIndex(idx)
	}
	idx := uint64(len(lv.strings))
	lv.strings = append(lv.strings, s)
	lv.index[s] = idx
	return FromLocalVocabIndex(idx)
}

// Share seals the vocab (no further appends by anyone) and returns a
// shared handle other Results can hold read-only. Once at least one share
// exists, GetOrIntern always panics: sealing happens on first share, not
// on an explicit close.
func (lv *LocalVocab) Share() *LocalVocab {
	lv.sealed.Store(true)
	lv.shares.Add(1)
	return lv
}

// IsSealed reports whether appends are now forbidden.
func (lv *LocalVocab) IsSealed() bool { return lv.sealed.Load() }

// Strings returns a read-only snapshot of the interned strings, valid as
// long as the caller holds a share.
func (lv *LocalVocab) Strings() []string {
	lv.mu.RLock()
	defer lv.mu.RUnlock()
	out := make([]string, len(lv.strings))
	copy(out, lv.strings)
	return out
}

// localVocabWire is the msgpack-friendly shape of a LocalVocab, used to
// serialize a cache entry alongside its IdTable.
type localVocabWire struct {
	Strings []string `msgpack:"s"`
}

// MarshalBinary msgpack-encodes the vocab's current strings. Only sealed
// (shared) vocabs should be cached — the caller is responsible for calling
// Share() first if it intends to persist the result.
func (lv *LocalVocab) MarshalBinary() ([]byte, error) {
	lv.mu.RLock()
	defer lv.mu.RUnlock()
	return msgpack.Marshal(localVocabWire{Strings: lv.strings})
}

// UnmarshalLocalVocab decodes a LocalVocab previously produced by
// MarshalBinary. The result is already sealed, matching a cache entry's
// read-only nature.
func UnmarshalLocalVocab(data []byte) (*LocalVocab, error) {
	var wire localVocabWire
	if err := msgpack.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	lv := NewLocalVocab()
	for i, s := range wire.Strings {
		lv.strings = append(lv.strings, s)
		lv.index[s] = uint64(i)
	}
	lv.Share()
	return lv, nil
}
