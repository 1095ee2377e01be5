package qlever

import (
	"errors"
	"time"
)

// ChunkProducer yields the chunks of a Lazy Result one at a time. Next
// returns (nil, nil) once exhausted. A producer that supports early
// abandonment (the consumer stops pulling before exhaustion) should also
// implement io.Closer-like cleanup via Close below; callers that discard a
// ChunkProducer without draining it should call Close if present.
type ChunkProducer interface {
	Next() (*IdTable, error)
}

// ClosableChunkProducer lets a consumer signal it is abandoning the stream
// early, so wrapping producers (e.g. RunOnNewChunkComputed's callback
// layer) can still fire their one-shot finish callback.
type ClosableChunkProducer interface {
	ChunkProducer
	Close()
}

// funcProducer adapts a plain function into a ChunkProducer, the same
// cursor-as-closure shape used elsewhere in this codebase.
type funcProducer func() (*IdTable, error)

func (f funcProducer) Next() (*IdTable, error) { return f() }

// SliceProducer replays a fixed list of chunks, useful for tests and for
// wrapping an already-materialized table as a one-chunk lazy sequence.
func SliceProducer(chunks ...*IdTable) ChunkProducer {
	i := 0
	return funcProducer(func() (*IdTable, error) {
		if i >= len(chunks) {
			return nil, nil
		}
		c := chunks[i]
		i++
		return c, nil
	})
}

// --- producer failure wrapping -----------------------------------------

// producerFailureProducer wraps the raw ChunkProducer a Lazy Result is
// constructed with, so that whatever error the producer itself raises
// reaches the consumer as a *ProducerFailure exactly once — distinct from
// the ResultError values the checking wrappers below raise for their own
// invariant violations, which are not producer failures and pass through
// unwrapped. It sits innermost, applied once in NewLazyResult, before any
// other wrapper is layered on.
type producerFailureProducer struct {
	inner ChunkProducer
}

func newProducerFailureProducer(inner ChunkProducer) ChunkProducer {
	return &producerFailureProducer{inner: inner}
}

func (p *producerFailureProducer) Next() (*IdTable, error) {
	chunk, err := p.inner.Next()
	if err == nil {
		return chunk, nil
	}
	var pf *ProducerFailure
	if errors.As(err, &pf) {
		return nil, err
	}
	return nil, &ProducerFailure{Err: err}
}

func (p *producerFailureProducer) Close() {
	if c, ok := p.inner.(ClosableChunkProducer); ok {
		c.Close()
	}
}

// --- sort order checking ---------------------------------------------

type sortOrderCheckingProducer struct {
	inner    ChunkProducer
	sortedBy []int
	haveLast bool
	last     []Id
	rowIdx   int
}

func newSortOrderCheckingProducer(inner ChunkProducer, sortedBy []int) ChunkProducer {
	if len(sortedBy) == 0 {
		return inner
	}
	return &sortOrderCheckingProducer{inner: inner, sortedBy: sortedBy}
}

func (p *sortOrderCheckingProducer) Next() (*IdTable, error) {
	chunk, err := p.inner.Next()
	if err != nil || chunk == nil {
		return chunk, err
	}
	for i := 0; i < chunk.NumRows(); i++ {
		row := chunk.Row(i)
		if p.haveLast && compareRowsBySortColumns(p.last, row, p.sortedBy) > 0 {
			return nil, resultErrf(ErrSortOrderViolated, p.rowIdx, -1, "row %d is out of order for sortedBy=%v", p.rowIdx, p.sortedBy)
		}
		p.last = row
		p.haveLast = true
		p.rowIdx++
	}
	return chunk, nil
}

// --- definedness checking ---------------------------------------------

type definednessCheckingProducer struct {
	inner  ChunkProducer
	vm     VarMap
	rowIdx int
}

func newDefinednessCheckingProducer(inner ChunkProducer, vm VarMap) ChunkProducer {
	return &definednessCheckingProducer{inner: inner, vm: vm}
}

func (p *definednessCheckingProducer) Next() (*IdTable, error) {
	chunk, err := p.inner.Next()
	if err != nil || chunk == nil {
		return chunk, err
	}
	for _, vc := range p.vm {
		if vc.Definedness != AlwaysDefined {
			continue
		}
		for i := 0; i < chunk.NumRows(); i++ {
			if chunk.At(i, vc.Column).IsUndefined() {
				return nil, resultErrf(ErrDefinednessViolated, p.rowIdx+i, vc.Column, "column %d must never be UNDEFINED", vc.Column)
			}
		}
	}
	p.rowIdx += chunk.NumRows()
	return chunk, nil
}

// --- metrics recording ---------------------------------------------------

type metricsRecordingProducer struct {
	inner   ChunkProducer
	metrics *ExecutionMetrics
}

func (p *metricsRecordingProducer) Next() (*IdTable, error) {
	chunk, err := p.inner.Next()
	if err != nil {
		return nil, err
	}
	if chunk != nil {
		p.metrics.RecordChunk(chunk.NumRows())
	}
	return chunk, nil
}

func (p *metricsRecordingProducer) Close() {
	if c, ok := p.inner.(ClosableChunkProducer); ok {
		c.Close()
	}
}

// WithMetrics wraps r (Lazy only) so that every chunk pulled off it is
// tallied into m via RecordChunk, giving a running chunk/row count for a
// query still streaming. For a Materialized result the whole table is
// already known, so it is recorded immediately as one chunk instead of via
// the producer chain.
func (r *Result) WithMetrics(m *ExecutionMetrics) *Result {
	if m == nil {
		return r
	}
	if r.kind == materializedResult {
		m.RecordChunk(r.table.NumRows())
		return r
	}
	r.producer = &metricsRecordingProducer{inner: r.producer, metrics: m}
	return r
}

// --- RunOnNewChunkComputed ----------------------------------------------

type callbackProducer struct {
	inner    ChunkProducer
	onChunk  func(chunk *IdTable, elapsed time.Duration)
	onFinish func(failed bool)
	fired    bool
	last     time.Time
	started  bool
}

func newCallbackProducer(inner ChunkProducer, onChunk func(*IdTable, time.Duration), onFinish func(bool)) *callbackProducer {
	return &callbackProducer{inner: inner, onChunk: onChunk, onFinish: onFinish}
}

func (p *callbackProducer) fireFinish(failed bool) {
	if p.fired {
		return
	}
	p.fired = true
	if p.onFinish != nil {
		p.onFinish(failed)
	}
}

func (p *callbackProducer) Next() (*IdTable, error) {
	if !p.started {
		p.started = true
		p.last = time.Now()
	}
	chunk, err := p.inner.Next()
	if err != nil {
		p.fireFinish(true)
		return nil, err
	}
	if chunk == nil {
		p.fireFinish(false)
		return nil, nil
	}
	now := time.Now()
	if p.onChunk != nil {
		p.onChunk(chunk, now.Sub(p.last))
	}
	p.last = now
	return chunk, nil
}

// Close lets a consumer abandon the stream early while still guaranteeing
// the finish callback fires exactly once.
func (p *callbackProducer) Close() { p.fireFinish(false) }

// RunOnNewChunkComputed registers onChunk to run after every chunk this
// Lazy result yields, and onFinish exactly once when the stream ends —
// with failed=true iff it ended in a producer error. A Materialized result
// is rejected with ErrWrongVariant and neither callback runs. Must be
// called before IdTables().
func (r *Result) RunOnNewChunkComputed(onChunk func(chunk *IdTable, elapsed time.Duration), onFinish func(failed bool)) error {
	if r.kind == materializedResult {
		return resultErrf(ErrWrongVariant, -1, -1, "RunOnNewChunkComputed requires a Lazy result")
	}
	r.producer = newCallbackProducer(r.producer, onChunk, onFinish)
	return nil
}

// --- applyLimitOffset -----------------------------------------------

type limitOffsetProducer struct {
	inner     ChunkProducer
	remaining int64 // rows still to skip (offset)
	limit     int64 // -1 means unlimited
	emitted   int64
	onChunk   func(chunk *IdTable, elapsed time.Duration)
	last      time.Time
	started   bool
}

func (p *limitOffsetProducer) Next() (*IdTable, error) {
	if p.limit >= 0 && p.emitted >= p.limit {
		return nil, nil
	}
	if !p.started {
		p.started = true
		p.last = time.Now()
	}
	for {
		chunk, err := p.inner.Next()
		if err != nil {
			return nil, err
		}
		if chunk == nil {
			return nil, nil
		}
		n := int64(chunk.NumRows())
		if p.remaining >= n {
			p.remaining -= n
			continue
		}
		from := int(p.remaining)
		p.remaining = 0
		to := chunk.NumRows()
		if p.limit >= 0 {
			maxRows := p.limit - p.emitted
			if int64(to-from) > maxRows {
				to = from + int(maxRows)
			}
		}
		out := chunk.Slice(from, to)
		p.emitted += int64(out.NumRows())
		now := time.Now()
		if p.onChunk != nil {
			p.onChunk(out, now.Sub(p.last))
		}
		p.last = now
		return out, nil
	}
}

// ApplyLimitOffset restricts r to at most limit rows after skipping the
// first offset rows. limit == -1 means unlimited; a limit below -1 or a
// negative offset is rejected with an error. For a
// Materialized result the slicing happens immediately; for a Lazy result
// the producer is wrapped to skip/truncate across chunk boundaries. Must
// be called before IdTables().
func (r *Result) ApplyLimitOffset(limit, offset int64, onChunk func(chunk *IdTable, elapsed time.Duration)) error {
	if offset < 0 || limit < -1 {
		return resultErrf(ErrLimitExceeded, -1, -1, "invalid limit=%d offset=%d", limit, offset)
	}
	if r.kind == materializedResult {
		n := int64(r.table.NumRows())
		from := offset
		if from > n {
			from = n
		}
		to := n
		if limit >= 0 && from+limit < to {
			to = from + limit
		}
		start := time.Now()
		r.table = r.table.Slice(int(from), int(to))
		if onChunk != nil {
			onChunk(r.table, time.Since(start))
		}
		return nil
	}
	r.producer = &limitOffsetProducer{inner: r.producer, remaining: offset, limit: limit, onChunk: onChunk}
	return nil
}

// --- assertThatLimitWasRespected --------------------------------------

type limitAssertingProducer struct {
	inner ChunkProducer
	limit int64
	total int64
}

func (p *limitAssertingProducer) Next() (*IdTable, error) {
	chunk, err := p.inner.Next()
	if err != nil || chunk == nil {
		return chunk, err
	}
	p.total += int64(chunk.NumRows())
	if p.total > p.limit {
		return nil, resultErrf(ErrLimitExceeded, -1, -1, "emitted %d rows, limit was %d", p.total, p.limit)
	}
	return chunk, nil
}

// AssertThatLimitWasRespected is a safety net verifying that the final
// emitted row count never exceeds limit. Call
// after ApplyLimitOffset, before IdTables(). For a Materialized result the
// check runs immediately.
func (r *Result) AssertThatLimitWasRespected(limit int64) error {
	if r.kind == materializedResult {
		if int64(r.table.NumRows()) > limit {
			return resultErrf(ErrLimitExceeded, -1, -1, "emitted %d rows, limit was %d", r.table.NumRows(), limit)
		}
		return nil
	}
	r.producer = &limitAssertingProducer{inner: r.producer, limit: limit}
	return nil
}

// --- cacheDuringConsumption --------------------------------------------

type cachingProducer struct {
	inner      ChunkProducer
	shouldCache func(aggregatorSoFar *IdTable, next *IdTable) bool
	onDone     func(*Result)
	aggregator *IdTable
	aborted    bool
	vocab      *LocalVocab
	sortedBy   []int
}

func (p *cachingProducer) Next() (*IdTable, error) {
	chunk, err := p.inner.Next()
	if err != nil {
		return nil, err
	}
	if chunk == nil {
		if !p.aborted && p.onDone != nil {
			cached, cerr := NewMaterializedResult(p.aggregator, p.sortedBy, p.vocab, false)
			if cerr == nil {
				p.onDone(cached)
			}
		}
		return nil, nil
	}
	if !p.aborted {
		if p.shouldCache(p.aggregator, chunk) {
			p.aggregator.AppendRows(chunk, 0, chunk.NumRows())
		} else {
			p.aborted = true
			p.aggregator = nil
		}
	}
	return chunk, nil
}

// CacheDuringConsumption transparently mirrors each chunk into an
// in-memory aggregator while it passes through to the real consumer,
// calling onDone with a Materialized Result once the whole stream has been
// consumed successfully — unless shouldCache ever returns false, in which
// case caching is abandoned for the remainder of the stream and onDone is
// never called. Lazy only; must be called before IdTables().
func (r *Result) CacheDuringConsumption(shouldCache func(aggregatorSoFar *IdTable, next *IdTable) bool, onDone func(*Result)) error {
	if r.kind != lazyResult {
		return resultErrf(ErrWrongVariant, -1, -1, "CacheDuringConsumption requires a Lazy result")
	}
	r.producer = &cachingProducer{
		inner:       r.producer,
		shouldCache: shouldCache,
		onDone:      onDone,
		aggregator:  NewIdTable(r.numCols),
		vocab:       r.vocab,
		sortedBy:    r.sortedBy,
	}
	return nil
}

// drainAll pulls every chunk from p, used by tests and by consumers that
// want a Lazy result fully materialized after the fact.
func drainAll(p ChunkProducer) (*IdTable, int, error) {
	var out *IdTable
	numCols := -1
	rows := 0
	for {
		chunk, err := p.Next()
		if err != nil {
			return nil, rows, err
		}
		if chunk == nil {
			return out, rows, nil
		}
		if out == nil {
			numCols = chunk.NumColumns()
			out = NewIdTable(numCols)
		}
		out.AppendRows(chunk, 0, chunk.NumRows())
		rows += chunk.NumRows()
	}
}
