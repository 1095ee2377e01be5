package qlever

import "encoding/binary"

// MarshalCacheEntry encodes r's materialized table and local vocabulary
// into the compact binary form a cache implementation would persist or
// send across a process boundary: a uvarint column count, uvarint row
// count and sortedBy list, one fixed 8-byte big-endian Id per cell in
// row-major order, and the vocabulary's own msgpack blob length-prefixed
// at the end. r must be fully materialized — a Lazy result has nothing to
// serialize until it is consumed.
func (r *Result) MarshalCacheEntry() ([]byte, error) {
	table, err := r.IdTable()
	if err != nil {
		return nil, err
	}

	var bb bytesBuilder
	bb.Buf = getByteBuffer()
	bb.AppendUvarint(uint64(table.NumColumns()))
	bb.AppendUvarint(uint64(table.NumRows()))
	bb.AppendUvarint(uint64(len(r.sortedBy)))
	for _, c := range r.sortedBy {
		bb.AppendUvarint(uint64(c))
	}
	for row := 0; row < table.NumRows(); row++ {
		for col := 0; col < table.NumColumns(); col++ {
			bb.AppendFixedUint64(uint64(table.At(row, col)))
		}
	}

	var vocabBytes []byte
	if r.vocab != nil {
		vocabBytes, err = r.vocab.MarshalBinary()
		if err != nil {
			return nil, err
		}
	}
	bb.AppendVarBytes(vocabBytes)
	return bb.Buf, nil
}

// UnmarshalCacheEntry decodes data produced by MarshalCacheEntry back into
// a Materialized Result. verifySortOrder is forwarded to
// NewMaterializedResult, matching the same expensive-check gating used
// when a result is first computed.
func UnmarshalCacheEntry(data []byte, verifySortOrder bool) (*Result, error) {
	d := makeByteDecoder(data)

	numCols, err := d.Uvarinti()
	if err != nil {
		return nil, err
	}
	numRows, err := d.Uvarinti()
	if err != nil {
		return nil, err
	}
	numSorted, err := d.Uvarinti()
	if err != nil {
		return nil, err
	}
	sortedBy := make([]int, numSorted)
	for i := range sortedBy {
		c, err := d.Uvarinti()
		if err != nil {
			return nil, err
		}
		sortedBy[i] = c
	}

	table := NewIdTable(numCols)
	row := make([]Id, numCols)
	for r := 0; r < numRows; r++ {
		for c := 0; c < numCols; c++ {
			raw, err := d.Raw(8)
			if err != nil {
				return nil, err
			}
			row[c] = Id(binary.BigEndian.Uint64(raw))
		}
		table.AppendRow(row)
	}

	vocabBytes, err := d.VarBytes()
	if err != nil {
		return nil, err
	}
	var vocab *LocalVocab
	if len(vocabBytes) > 0 {
		vocab, err = UnmarshalLocalVocab(vocabBytes)
		if err != nil {
			return nil, err
		}
	} else {
		vocab = NewLocalVocab()
	}

	return NewMaterializedResult(table, sortedBy, vocab, verifySortOrder)
}
