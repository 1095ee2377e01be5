package qlever

import "sync"

// idRowPool recycles the []Id row buffers callers build up one row at a
// time before handing them to IdTable.AppendRow, which copies the row into
// its own storage — so the same scratch buffer can go straight back into
// the pool afterward. GroupBy's emitGroup and delta's mergeBlock are the
// two hot paths that build a row per group/per base-row respectively.
var idRowPool = &sync.Pool{
	New: func() any {
		s := make([]Id, 0, 8)
		return &s
	},
}

// GetIdRow returns a scratch []Id of length width, initialized to the zero
// Id, either recycled from the pool or freshly allocated if the pool had
// nothing large enough. Callers must return it with PutIdRow once done —
// typically right after copying it into an IdTable via AppendRow.
func GetIdRow(width int) []Id {
	s := *(idRowPool.Get().(*[]Id))
	if cap(s) < width {
		s = make([]Id, width)
	} else {
		s = s[:width]
		clear(s)
	}
	return s
}

// PutIdRow returns row to the pool. row must not be used again afterward.
func PutIdRow(row []Id) {
	row = row[:0]
	idRowPool.Put(&row)
}

// byteBufferPool recycles the byte slices bytesBuilder wraps when encoding
// cache entries (byteutil.go), the same shape as the
// keyBytesPool/valueBytesPool encoding buffers.
var byteBufferPool = &sync.Pool{
	New: func() any {
		b := make([]byte, 0, 4096)
		return &b
	},
}

func getByteBuffer() []byte {
	return (*(byteBufferPool.Get().(*[]byte)))[:0]
}

func putByteBuffer(b []byte) {
	byteBufferPool.Put(&b)
}
