package si

import "fmt"

// Smallish-int thresholds. Values 0..253 encode as a single byte; 254 is
// the escape for a following little-endian uint16; 255 is the escape for
// a following little-endian uint32. The encoder always picks the
// narrowest form that represents the value, so decode(encode(x)) == x and
// no value has two valid encodings.
const (
	smallishDirectMax = 0xfd
	smallishU16Escape = 0xfe
	smallishU32Escape = 0xff
	smallishU16Max    = 0xfffe // highest value representable in the u16 form
)

// WriteSmallishInt appends the variable-length encoding of v to w. v must
// fit in a uint32; callers pass table indices and lengths, both of which
// are bounded well under that by construction.
func WriteSmallishInt(w *ByteWriter, v uint32) {
	switch {
	case v <= smallishDirectMax:
		w.WriteU8(byte(v))
	case v <= smallishU16Max:
		w.WriteU8(smallishU16Escape)
		w.WriteU16(uint16(v))
	default:
		w.WriteU8(smallishU32Escape)
		w.WriteU32(v)
	}
}

// ReadSmallishInt decodes a variable-length unsigned integer, advancing
// r. Returns ErrTruncated if the escape byte's trailing field runs past
// the end of the buffer.
func ReadSmallishInt(r *ByteReader) (uint32, error) {
	b, err := r.ReadU8()
	if err != nil {
		return 0, fmt.Errorf("smallish-int: %w", err)
	}
	switch b {
	case smallishU16Escape:
		v, err := r.ReadU16()
		if err != nil {
			return 0, fmt.Errorf("smallish-int: %w", err)
		}
		return uint32(v), nil
	case smallishU32Escape:
		v, err := r.ReadU32()
		if err != nil {
			return 0, fmt.Errorf("smallish-int: %w", err)
		}
		return v, nil
	default:
		return uint32(b), nil
	}
}
