package si

import (
	"bytes"
	"errors"
	"testing"
)

func TestByteWriterReaderRoundTrip(t *testing.T) {
	w := NewByteWriter()
	w.WriteU8(0x42)
	w.WriteU16(0x1234)
	w.WriteU32(0xdeadbeef)
	w.WriteBytes([]byte{1, 2, 3})

	r := NewByteReader(w.Bytes())
	b, err := r.ReadU8()
	if err != nil || b != 0x42 {
		t.Fatalf("ReadU8() = %#x, %v, want 0x42, nil", b, err)
	}
	u16, err := r.ReadU16()
	if err != nil || u16 != 0x1234 {
		t.Fatalf("ReadU16() = %#x, %v, want 0x1234, nil", u16, err)
	}
	u32, err := r.ReadU32()
	if err != nil || u32 != 0xdeadbeef {
		t.Fatalf("ReadU32() = %#x, %v, want 0xdeadbeef, nil", u32, err)
	}
	raw, err := r.ReadBytes(3)
	if err != nil || !bytes.Equal(raw, []byte{1, 2, 3}) {
		t.Fatalf("ReadBytes(3) = %v, %v, want [1 2 3], nil", raw, err)
	}
	if !r.IsEOF() {
		t.Errorf("IsEOF() = false after consuming entire buffer")
	}
}

func TestByteReaderTruncated(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		read func(*ByteReader) error
	}{
		{"u8 on empty", nil, func(r *ByteReader) error { _, err := r.ReadU8(); return err }},
		{"u16 on one byte", []byte{1}, func(r *ByteReader) error { _, err := r.ReadU16(); return err }},
		{"u32 on two bytes", []byte{1, 2}, func(r *ByteReader) error { _, err := r.ReadU32(); return err }},
		{"bytes past end", []byte{1, 2}, func(r *ByteReader) error { _, err := r.ReadBytes(3); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewByteReader(tt.buf)
			err := tt.read(r)
			if !errors.Is(err, ErrTruncated) {
				t.Errorf("err = %v, want ErrTruncated", err)
			}
		})
	}
}

func TestByteReaderSeek(t *testing.T) {
	r := NewByteReader([]byte{0xaa, 0xbb, 0xcc})
	r.Seek(2)
	b, err := r.ReadU8()
	if err != nil || b != 0xcc {
		t.Fatalf("after Seek(2), ReadU8() = %#x, %v, want 0xcc, nil", b, err)
	}
	r.Seek(0)
	if r.Position() != 0 {
		t.Errorf("Position() = %d after Seek(0), want 0", r.Position())
	}
}
