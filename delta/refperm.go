package delta

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/qlever-io/qlever-core"
	"go.etcd.io/bbolt"
)

// RefPermutation is a bbolt-backed reference implementation of Permutation,
// grounded on boltCursor's SeekLast/inc trick (storage_bolt.go): keys are
// encoded so that bbolt's natural byte-order cursor traversal is
// exactly the permutation's own row order, letting PointLookup and block
// iteration both ride bbolt's B-tree instead of a bespoke index. It exists
// for conformance tests and for embedders who want a real column store
// stand-in without wiring up the full block-compressed engine.
type RefPermutation struct {
	kind      Kind
	db        *bbolt.DB
	bucket    []byte
	blockSize int
	count     int
}

const idTripleKeySize = 24 // three big-endian uint64 components

// NewRefPermutation opens (creating if absent) a bucket named name in bdb
// to hold one permutation's base triples.
func NewRefPermutation(bdb *bbolt.DB, kind Kind, name string, blockSize int) (*RefPermutation, error) {
	if blockSize <= 0 {
		blockSize = 1024
	}
	bucket := []byte(name)
	err := bdb.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &RefPermutation{kind: kind, db: bdb, bucket: bucket, blockSize: blockSize}, nil
}

func encodeKey(k Kind, t IdTriple) []byte {
	c := t.components(k)
	key := make([]byte, idTripleKeySize)
	binary.BigEndian.PutUint64(key[0:8], c[0].Raw())
	binary.BigEndian.PutUint64(key[8:16], c[1].Raw())
	binary.BigEndian.PutUint64(key[16:24], c[2].Raw())
	return key
}

func decodeKey(k Kind, key []byte) IdTriple {
	c := [3]qlever.Id{
		qlever.FromRaw(binary.BigEndian.Uint64(key[0:8])),
		qlever.FromRaw(binary.BigEndian.Uint64(key[8:16])),
		qlever.FromRaw(binary.BigEndian.Uint64(key[16:24])),
	}
	return fromComponents(k, c)
}

func fromComponents(k Kind, c [3]qlever.Id) IdTriple {
	switch k {
	case PSO:
		return IdTriple{P: c[0], S: c[1], O: c[2]}
	case POS:
		return IdTriple{P: c[0], O: c[1], S: c[2]}
	case SPO:
		return IdTriple{S: c[0], P: c[1], O: c[2]}
	case SOP:
		return IdTriple{S: c[0], O: c[1], P: c[2]}
	case OSP:
		return IdTriple{O: c[0], S: c[1], P: c[2]}
	case OPS:
		return IdTriple{O: c[0], P: c[1], S: c[2]}
	default:
		panic(fmt.Sprintf("delta: unknown permutation kind %d", int(k)))
	}
}

// Load replaces the bucket's contents with triples, bulk-sorted by bbolt's
// own key ordering (which encodeKey makes equal to Compare(kind, ...)).
func (r *RefPermutation) Load(triples []IdTriple) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(r.bucket); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		b, err := tx.CreateBucket(r.bucket)
		if err != nil {
			return err
		}
		for _, t := range triples {
			if err := b.Put(encodeKey(r.kind, t), nil); err != nil {
				return err
			}
		}
		// Bucket.Stats does not see keys put earlier in the same
		// transaction, so count them with a cursor.
		n := 0
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			n++
		}
		r.count = n
		return nil
	})
}

func (r *RefPermutation) Kind() Kind { return r.kind }

func (r *RefPermutation) NumBlocks() int {
	if r.count == 0 {
		return 0
	}
	return (r.count + r.blockSize - 1) / r.blockSize
}

// Block decodes block i by walking bbolt's cursor forward blockSize*i
// entries. This is a linear-time seek, adequate for a conformance-test
// fixture rather than the real block-compressed storage engine.
func (r *RefPermutation) Block(i int) (*BlockCursor, error) {
	if i < 0 || i >= r.NumBlocks() {
		return nil, fmt.Errorf("delta: block %d out of range [0,%d)", i, r.NumBlocks())
	}
	var rows [][]qlever.Id
	err := r.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(r.bucket).Cursor()
		k, _ := c.First()
		for skip := i * r.blockSize; skip > 0 && k != nil; skip-- {
			k, _ = c.Next()
		}
		for n := 0; n < r.blockSize && k != nil; n++ {
			t := decodeKey(r.kind, k)
			rows = append(rows, []qlever.Id{t.S, t.P, t.O})
			k, _ = c.Next()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewBlockCursor(qlever.NewIdTableFromRows(3, rows)), nil
}

// PointLookup seeks directly to t's key and, on a match, walks from the
// start of the bucket to compute its ordinal position. The forward walk is
// O(n) — acceptable for a reference fixture, not for production scans.
func (r *RefPermutation) PointLookup(t IdTriple) (blockIndex, rowIndex int, found bool, err error) {
	key := encodeKey(r.kind, t)
	err = r.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(r.bucket).Cursor()
		k, _ := c.Seek(key)
		if k == nil || !bytes.Equal(k, key) {
			return nil
		}
		found = true
		pos := 0
		for kk, _ := c.First(); kk != nil && !bytes.Equal(kk, key); kk, _ = c.Next() {
			pos++
		}
		blockIndex = pos / r.blockSize
		rowIndex = pos % r.blockSize
		return nil
	})
	return blockIndex, rowIndex, found, err
}
