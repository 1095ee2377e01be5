package journal

import (
	"encoding/binary"

	"github.com/qlever-io/qlever-core/delta"
)

// mutationRecordSize is the fixed on-disk size of one RecordMutation
// entry: a one-byte op tag followed by three uint64 triple components.
const mutationRecordSize = 1 + 8*3

// Log adapts a Journal into delta.MutationLog, encoding each mutation as
// a fixed-width record so Replay and ReplayFromDisk can read them back
// without a separate length prefix.
type Log struct {
	j *Journal
}

// NewLog wraps j for use as a DeltaTriples mutation trail. The caller is
// responsible for calling j.StartWriting() before the first mutation and
// j.FinishWriting() when done.
func NewLog(j *Journal) *Log {
	return &Log{j: j}
}

// RecordMutation appends one mutation record and commits it immediately,
// so a crash right after RecordMutation returns nil never loses the
// mutation it just reported succeeding.
func (l *Log) RecordMutation(op delta.LogOp, s, p, o uint64) error {
	var buf [mutationRecordSize]byte
	buf[0] = byte(op)
	binary.LittleEndian.PutUint64(buf[1:9], s)
	binary.LittleEndian.PutUint64(buf[9:17], p)
	binary.LittleEndian.PutUint64(buf[17:25], o)
	if err := l.j.WriteRecord(0, buf[:]); err != nil {
		return err
	}
	return l.j.Commit()
}

// ReplayFunc receives one decoded mutation record in on-disk order.
type ReplayFunc func(op delta.LogOp, s, p, o uint64) error

func decodeMutationRecord(data []byte) (op delta.LogOp, s, p, o uint64, err error) {
	if len(data) != mutationRecordSize {
		return 0, 0, 0, 0, errCorruptedFile
	}
	op = delta.LogOp(data[0])
	s = binary.LittleEndian.Uint64(data[1:9])
	p = binary.LittleEndian.Uint64(data[9:17])
	o = binary.LittleEndian.Uint64(data[17:25])
	return op, s, p, o, nil
}

// Replay decodes each element of records as one fixed-width mutation
// record payload and invokes fn for each, returning an error at the first
// payload that is not exactly mutationRecordSize bytes long.
func Replay(records [][]byte, fn ReplayFunc) error {
	for _, data := range records {
		op, s, p, o, err := decodeMutationRecord(data)
		if err != nil {
			return err
		}
		if err := fn(op, s, p, o); err != nil {
			return err
		}
	}
	return nil
}

// ReplayFromDisk reads every mutation record persisted in l's underlying
// journal directory, in the order they were originally written, decoding
// each with decodeMutationRecord before handing it to fn. Unlike Replay,
// which operates on an already-extracted slice of record payloads, this
// drives the journal's own segment-record iterator directly.
func (l *Log) ReplayFromDisk(fn ReplayFunc) error {
	return l.j.ReadRecords(func(data []byte) error {
		op, s, p, o, err := decodeMutationRecord(data)
		if err != nil {
			return err
		}
		return fn(op, s, p, o)
	})
}

// deltaReplayer is the subset of *delta.DeltaTriples LoadInto needs,
// avoiding an import of the delta package's full surface beyond LogOp.
type deltaReplayer interface {
	ReplayMutation(op delta.LogOp, s, p, o uint64) error
}

// LoadInto replays every mutation record in l's underlying journal
// directory straight into d, recovering an overlay across a restart. Call
// this once at startup before wiring l into d with
// delta.DeltaTriples.SetMutationLog — replaying after that point would
// re-append every mutation it just replayed.
func (l *Log) LoadInto(d deltaReplayer) error {
	return l.ReplayFromDisk(d.ReplayMutation)
}
