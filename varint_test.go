package si

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func TestSmallishIntRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		v        uint32
		wantSize int
	}{
		{"zero", 0, 1},
		{"direct max", 0xfd, 1},
		{"u16 escape min", 0xfe, 3},
		{"u16 escape max", 0xfffe, 3},
		{"u32 escape min", 0xffff, 5},
		{"large u32", 0xffffffff, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewByteWriter()
			WriteSmallishInt(w, tt.v)
			if got := w.Length(); got != tt.wantSize {
				t.Errorf("encoded size = %d, want %d", got, tt.wantSize)
			}
			r := NewByteReader(w.Bytes())
			got, err := ReadSmallishInt(r)
			if err != nil {
				t.Fatalf("ReadSmallishInt() error = %v", err)
			}
			if got != tt.v {
				t.Errorf("decode(encode(%d)) = %d", tt.v, got)
			}
			if !r.IsEOF() {
				t.Errorf("reader has %d bytes left over, want exact consumption", r.Len()-r.Position())
			}
		})
	}
}

// TestSmallishIntProperty checks decode(encode(x)) == x over random
// values spanning the full uint32 range, including the region around
// the one-byte limit. Encoded sizes are checked by
// TestSmallishIntRoundTrip.
func TestSmallishIntProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 2000; i++ {
		var v uint32
		switch i % 4 {
		case 0:
			v = uint32(rng.IntN(0x100))
		case 1:
			v = uint32(rng.IntN(0x10000))
		case 2:
			v = rng.Uint32()
		case 3:
			v = uint32(smallishDirectMax) + uint32(rng.IntN(4)) - 1
		}

		w := NewByteWriter()
		WriteSmallishInt(w, v)
		r := NewByteReader(w.Bytes())
		got, err := ReadSmallishInt(r)
		if err != nil {
			t.Fatalf("v=%d: ReadSmallishInt() error = %v", v, err)
		}
		if got != v {
			t.Fatalf("v=%d: decode(encode(v)) = %d", v, got)
		}
	}
}

func TestReadSmallishIntTruncated(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"u16 escape, no payload", []byte{smallishU16Escape}},
		{"u16 escape, one byte payload", []byte{smallishU16Escape, 0x01}},
		{"u32 escape, no payload", []byte{smallishU32Escape}},
		{"u32 escape, partial payload", []byte{smallishU32Escape, 0x01, 0x02}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewByteReader(tt.buf)
			_, err := ReadSmallishInt(r)
			if !errors.Is(err, ErrTruncated) {
				t.Errorf("err = %v, want ErrTruncated", err)
			}
		})
	}
}
