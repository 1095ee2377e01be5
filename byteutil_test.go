package qlever

import (
	"encoding/binary"
	"reflect"
	"testing"
)

func TestBytesBuilder_Basics(t *testing.T) {
	var bb bytesBuilder
	bb.EnsureExtra(128)
	if cap(bb.Buf) < 128 {
		t.Fatalf("cap(bb.Buf) = %d, wanted >= 128", cap(bb.Buf))
	}

	off := bb.Grow(3)
	copy(bb.Buf[off:], []byte{1, 2, 3})
	bb.AppendByte(4)
	bb.AppendFixedUint64(0x0102030405060708)
	bb.AppendUvarint(0x42)

	want := make([]byte, 0, 1+3+8+binary.MaxVarintLen64)
	want = append(want, 1, 2, 3, 4)
	var u64 [8]byte
	binary.BigEndian.PutUint64(u64[:], 0x0102030405060708)
	want = append(want, u64[:]...)
	want = appendUvarint(want, 0x42)

	if !reflect.DeepEqual(bb.Buf, want) {
		t.Fatalf("bb.Buf = %x, wanted %x", bb.Buf, want)
	}

	bb.Trim(2)
	if !reflect.DeepEqual(bb.Buf, []byte{1, 2}) {
		t.Fatalf("after Trim: bb.Buf = %x, wanted 0102", bb.Buf)
	}
}

func TestBytesBuilder_VarBytes(t *testing.T) {
	var bb bytesBuilder
	bb.AppendVarBytes([]byte("hello"))
	bb.AppendVarBytes(nil)
	bb.AppendVarBytes([]byte("world"))

	d := makeByteDecoder(bb.Buf)
	a, err := d.VarBytes()
	if err != nil || string(a) != "hello" {
		t.Fatalf("first VarBytes = %q, %v", a, err)
	}
	b, err := d.VarBytes()
	if err != nil || len(b) != 0 {
		t.Fatalf("second VarBytes = %q, %v", b, err)
	}
	c, err := d.VarBytes()
	if err != nil || string(c) != "world" {
		t.Fatalf("third VarBytes = %q, %v", c, err)
	}
}

func TestByteDecoder_ShortBuffer(t *testing.T) {
	d := makeByteDecoder([]byte{0x05, 1, 2})
	if _, err := d.VarBytes(); err == nil {
		t.Fatalf("expected error decoding truncated var bytes")
	}
}
