package delta

import (
	"fmt"
	"sort"

	"github.com/qlever-io/qlever-core"
)

type blockPos struct {
	blockIndex, rowIndex int
}

// MemPermutation is an in-memory Permutation implementation used by tests
// and by embedders who don't need a real column store — the same role
// storage_mem.go plays as an in-memory stand-in for bbolt in unit tests.
type MemPermutation struct {
	kind      Kind
	blockSize int
	blocks    []*BlockCursor
	index     map[IdTriple]blockPos
}

// NewMemPermutation sorts triples under kind's order and slices them into
// fixed-size blocks.
func NewMemPermutation(kind Kind, blockSize int, triples []IdTriple) *MemPermutation {
	if blockSize <= 0 {
		blockSize = 1
	}
	sorted := append([]IdTriple(nil), triples...)
	sort.Slice(sorted, func(i, j int) bool { return Compare(kind, sorted[i], sorted[j]) < 0 })

	m := &MemPermutation{kind: kind, blockSize: blockSize, index: make(map[IdTriple]blockPos, len(sorted))}
	for start := 0; start < len(sorted); start += blockSize {
		end := start + blockSize
		if end > len(sorted) {
			end = len(sorted)
		}
		rows := make([][]qlever.Id, end-start)
		for i := start; i < end; i++ {
			t := sorted[i]
			rows[i-start] = []qlever.Id{t.S, t.P, t.O}
		}
		bi := len(m.blocks)
		m.blocks = append(m.blocks, NewBlockCursor(qlever.NewIdTableFromRows(3, rows)))
		for i := start; i < end; i++ {
			m.index[sorted[i]] = blockPos{blockIndex: bi, rowIndex: i - start}
		}
	}
	return m
}

func (m *MemPermutation) Kind() Kind      { return m.kind }
func (m *MemPermutation) NumBlocks() int { return len(m.blocks) }

func (m *MemPermutation) Block(i int) (*BlockCursor, error) {
	if i < 0 || i >= len(m.blocks) {
		return nil, fmt.Errorf("delta: block %d out of range [0,%d)", i, len(m.blocks))
	}
	return m.blocks[i], nil
}

func (m *MemPermutation) PointLookup(t IdTriple) (blockIndex, rowIndex int, found bool, err error) {
	pos, ok := m.index[t]
	if !ok {
		return 0, 0, false, nil
	}
	return pos.blockIndex, pos.rowIndex, true, nil
}
