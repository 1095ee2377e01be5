package journal

import (
	"testing"
)

func TestParseName(t *testing.T) {
	seq, ts, id, err := parseSegmentName("123-20230101T000000-11223344aabbccdd")
	if err != nil {
		t.Fatal(err)
	}
	if e := uint32(123); seq != e {
		t.Errorf("seq = %v, expected %v", seq, e)
	}
	if e := uint32(1672531200); ts != e {
		t.Errorf("ts = %v, expected %v", ts, e)
	}
	if e := uint64(0x11223344_aabbccdd); id != e {
		t.Errorf("id = %x, expected %x", id, e)
	}
}

func TestFormatName(t *testing.T) {
	name := formatSegmentName("x", "y", 123, 1672531200, 0x11223344_aabbccdd)
	exp := "x000000000123-20230101T000000-11223344aabbccddy"
	if name != exp {
		t.Errorf("name = %q, expected %q", name, exp)
	}
}

func TestJournal_ReadRecords_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	j := New(dir, Options{FileName: "j*.wal"})
	j.StartWriting()

	records := [][]byte{[]byte("alpha"), []byte("beta"), []byte("gamma")}
	for _, r := range records {
		if err := j.WriteRecord(0, r); err != nil {
			t.Fatal(err)
		}
		if err := j.Commit(); err != nil {
			t.Fatal(err)
		}
	}
	j.FinishWriting()

	reader := New(dir, Options{FileName: "j*.wal"})
	var got [][]byte
	if err := reader.ReadRecords(func(data []byte) error {
		got = append(got, append([]byte(nil), data...))
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(got) != len(records) {
		t.Fatalf("got %d records, want %d", len(got), len(records))
	}
	for i, r := range records {
		if string(got[i]) != string(r) {
			t.Errorf("record %d = %q, want %q", i, got[i], r)
		}
	}
}

func TestJournal_ReadRecords_EmptyDirYieldsNothing(t *testing.T) {
	reader := New(t.TempDir(), Options{FileName: "j*.wal"})
	called := false
	if err := reader.ReadRecords(func([]byte) error {
		called = true
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if called {
		t.Fatal("expected no records from an empty directory")
	}
}
