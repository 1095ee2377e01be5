package journal_test

import (
	"encoding/binary"
	"testing"

	"github.com/qlever-io/qlever-core/delta"
	"github.com/qlever-io/qlever-core/journal"
	"github.com/qlever-io/qlever-core/journal/journaltest"
)

func TestLog_RecordMutation(t *testing.T) {
	tj := journaltest.Writable(t, journal.Options{})
	log := journal.NewLog(tj.Journal)

	if err := log.RecordMutation(delta.LogInsert, 1, 2, 3); err != nil {
		t.Fatalf("RecordMutation: %v", err)
	}
	if err := log.RecordMutation(delta.LogClear, 0, 0, 0); err != nil {
		t.Fatalf("RecordMutation: %v", err)
	}
}

func encodeMutationRecord(op delta.LogOp, s, p, o uint64) []byte {
	buf := make([]byte, 25)
	buf[0] = byte(op)
	binary.LittleEndian.PutUint64(buf[1:9], s)
	binary.LittleEndian.PutUint64(buf[9:17], p)
	binary.LittleEndian.PutUint64(buf[17:25], o)
	return buf
}

func TestReplay_DecodesRecordsInOrder(t *testing.T) {
	records := [][]byte{
		encodeMutationRecord(delta.LogInsert, 1, 2, 3),
		encodeMutationRecord(delta.LogDelete, 4, 5, 6),
		encodeMutationRecord(delta.LogClear, 0, 0, 0),
	}

	var gotOps []delta.LogOp
	var gotTriples [][3]uint64
	err := journal.Replay(records, func(op delta.LogOp, s, p, o uint64) error {
		gotOps = append(gotOps, op)
		gotTriples = append(gotTriples, [3]uint64{s, p, o})
		return nil
	})
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}

	want := []delta.LogOp{delta.LogInsert, delta.LogDelete, delta.LogClear}
	for i, op := range want {
		if gotOps[i] != op {
			t.Errorf("op %d = %v, want %v", i, gotOps[i], op)
		}
	}
	if gotTriples[0] != [3]uint64{1, 2, 3} {
		t.Errorf("triple 0 = %v, want {1,2,3}", gotTriples[0])
	}
	if gotTriples[1] != [3]uint64{4, 5, 6} {
		t.Errorf("triple 1 = %v, want {4,5,6}", gotTriples[1])
	}
}

func TestReplay_RejectsShortRecord(t *testing.T) {
	err := journal.Replay([][]byte{{1, 2, 3}}, func(delta.LogOp, uint64, uint64, uint64) error {
		return nil
	})
	if err == nil {
		t.Fatalf("expected an error for a malformed record")
	}
}

func TestLog_ReplayFromDisk_RoundTrip(t *testing.T) {
	tj := journaltest.Writable(t, journal.Options{})
	log := journal.NewLog(tj.Journal)

	if err := log.RecordMutation(delta.LogInsert, 1, 2, 3); err != nil {
		t.Fatalf("RecordMutation: %v", err)
	}
	if err := log.RecordMutation(delta.LogDelete, 4, 5, 6); err != nil {
		t.Fatalf("RecordMutation: %v", err)
	}
	if err := log.RecordMutation(delta.LogClear, 0, 0, 0); err != nil {
		t.Fatalf("RecordMutation: %v", err)
	}
	tj.FinishWriting()

	reader := journal.NewLog(journal.New(tj.Dir, journal.Options{FileName: "j*.wal"}))

	var gotOps []delta.LogOp
	var gotTriples [][3]uint64
	err := reader.ReplayFromDisk(func(op delta.LogOp, s, p, o uint64) error {
		gotOps = append(gotOps, op)
		gotTriples = append(gotTriples, [3]uint64{s, p, o})
		return nil
	})
	if err != nil {
		t.Fatalf("ReplayFromDisk: %v", err)
	}

	want := []delta.LogOp{delta.LogInsert, delta.LogDelete, delta.LogClear}
	if len(gotOps) != len(want) {
		t.Fatalf("got %d records, want %d", len(gotOps), len(want))
	}
	for i, op := range want {
		if gotOps[i] != op {
			t.Errorf("op %d = %v, want %v", i, gotOps[i], op)
		}
	}
	if gotTriples[0] != [3]uint64{1, 2, 3} {
		t.Errorf("triple 0 = %v, want {1,2,3}", gotTriples[0])
	}
	if gotTriples[1] != [3]uint64{4, 5, 6} {
		t.Errorf("triple 1 = %v, want {4,5,6}", gotTriples[1])
	}
}

type fakeReplayTarget struct {
	calls []delta.LogOp
}

func (f *fakeReplayTarget) ReplayMutation(op delta.LogOp, s, p, o uint64) error {
	f.calls = append(f.calls, op)
	return nil
}

func TestLog_LoadInto_DrivesReplayMutation(t *testing.T) {
	tj := journaltest.Writable(t, journal.Options{})
	log := journal.NewLog(tj.Journal)
	if err := log.RecordMutation(delta.LogInsert, 1, 2, 3); err != nil {
		t.Fatalf("RecordMutation: %v", err)
	}
	if err := log.RecordMutation(delta.LogDelete, 4, 5, 6); err != nil {
		t.Fatalf("RecordMutation: %v", err)
	}
	tj.FinishWriting()

	reader := journal.NewLog(journal.New(tj.Dir, journal.Options{FileName: "j*.wal"}))
	target := &fakeReplayTarget{}
	if err := reader.LoadInto(target); err != nil {
		t.Fatalf("LoadInto: %v", err)
	}
	want := []delta.LogOp{delta.LogInsert, delta.LogDelete}
	if len(target.calls) != len(want) {
		t.Fatalf("got %d calls, want %d", len(target.calls), len(want))
	}
	for i, op := range want {
		if target.calls[i] != op {
			t.Errorf("call %d = %v, want %v", i, target.calls[i], op)
		}
	}
}
