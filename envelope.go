package si

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Magic is the big-endian magic number every .si file begins with.
const Magic uint32 = 0xB0B01E07

// CurrentVersion is the only version this build writes and the highest
// version it will read.
const CurrentVersion uint16 = 1

const (
	envFlagHasWidth  = 1 << 0
	envFlagHasHeight = 1 << 1
	envFlagBigFloats = 1 << 2
	envFlagHasTint   = 1 << 3
)

// headerSize is the fixed-size portion of the envelope: magic(4) +
// padding(1) + version(2) + flags(1) + num_paths(4) + num_paints(4) +
// args_len(4) + transforms_len(4).
const headerSize = 24

// Encode serializes img as a complete .si file: envelope, float arrays,
// optional width/height/tint, tables, then the opcode stream.
func Encode(img *CompactImage) []byte {
	w := NewByteWriter()

	w.WriteU8(byte(Magic >> 24))
	w.WriteU8(byte(Magic >> 16))
	w.WriteU8(byte(Magic >> 8))
	w.WriteU8(byte(Magic))
	w.WriteU8(0x00)
	w.WriteU8(byte(CurrentVersion >> 8))
	w.WriteU8(byte(CurrentVersion))

	var flags byte
	if img.Width != nil {
		flags |= envFlagHasWidth
	}
	if img.Height != nil {
		flags |= envFlagHasHeight
	}
	if img.BigFloats {
		flags |= envFlagBigFloats
	}
	if img.TintColor != nil {
		flags |= envFlagHasTint
	}
	w.WriteU8(flags)

	w.WriteU32(img.NumPaths)
	w.WriteU32(img.NumPaints)

	argsLen := len(img.Args)
	transformsLen := len(img.Transforms)
	if !img.BigFloats {
		argsLen = len(img.ArgsFloat32)
		transformsLen = len(img.TransformsFloat32)
	}
	w.WriteU32(uint32(argsLen))
	w.WriteU32(uint32(transformsLen))

	writeFloats := func(vals64 []float64, vals32 []float32) {
		if img.BigFloats {
			for _, v := range vals64 {
				var buf [8]byte
				binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
				w.WriteBytes(buf[:])
			}
			return
		}
		for _, v := range vals32 {
			var buf [4]byte
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
			w.WriteBytes(buf[:])
		}
	}
	writeFloats(img.Args, img.ArgsFloat32)
	writeFloats(img.Transforms, img.TransformsFloat32)

	writeOneFloat := func(v float64) {
		if img.BigFloats {
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			w.WriteBytes(buf[:])
			return
		}
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(float32(v)))
		w.WriteBytes(buf[:])
	}
	if img.Width != nil {
		writeOneFloat(*img.Width)
	}
	if img.Height != nil {
		writeOneFloat(*img.Height)
	}
	if img.TintColor != nil {
		w.WriteU32(*img.TintColor)
		w.WriteU8(byte(img.TintMode))
	}

	WriteSmallishInt(w, uint32(len(img.Strings)))
	for _, s := range img.Strings {
		b := []byte(s)
		WriteSmallishInt(w, uint32(len(b)))
		w.WriteBytes(b)
	}

	WriteSmallishInt(w, uint32(len(img.FloatLists)))
	for _, fl := range img.FloatLists {
		WriteSmallishInt(w, uint32(len(fl)))
		for _, v := range fl {
			writeOneFloat(v)
		}
	}

	WriteSmallishInt(w, uint32(len(img.Images)))
	for _, im := range img.Images {
		writeOneFloat(im.X)
		writeOneFloat(im.Y)
		writeOneFloat(im.Width)
		writeOneFloat(im.Height)
		WriteSmallishInt(w, uint32(len(im.Encoded)))
		w.WriteBytes(im.Encoded)
	}

	w.WriteBytes(img.Children)
	return w.Bytes()
}

// Decode parses a complete .si file into a CompactImage.
func Decode(blob []byte) (*CompactImage, error) {
	r := NewByteReader(blob)

	m0, err := r.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	m1, _ := r.ReadU8()
	m2, _ := r.ReadU8()
	m3, _ := r.ReadU8()
	magic := uint32(m0)<<24 | uint32(m1)<<16 | uint32(m2)<<8 | uint32(m3)
	if magic != Magic {
		return nil, fmt.Errorf("%w: magic %#x", ErrMalformedHeader, magic)
	}
	if _, err := r.ReadU8(); err != nil { // padding
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	versionHi, err := r.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	versionLo, err := r.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	version := uint16(versionHi)<<8 | uint16(versionLo)
	if version > CurrentVersion {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, version)
	}

	flags, err := r.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	bigFloats := flags&envFlagBigFloats != 0

	numPaths, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	numPaints, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	argsLen, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	transformsLen, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}

	readFloat := func() (float64, error) {
		if bigFloats {
			b, err := r.ReadBytes(8)
			if err != nil {
				return 0, err
			}
			return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
		}
		b, err := r.ReadBytes(4)
		if err != nil {
			return 0, err
		}
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b))), nil
	}

	img := &CompactImage{
		BigFloats: bigFloats,
		NumPaths:  numPaths,
		NumPaints: numPaints,
	}

	if bigFloats {
		img.Args = make([]float64, argsLen)
		for i := range img.Args {
			v, err := readFloat()
			if err != nil {
				return nil, fmt.Errorf("%w: args[%d]: %v", ErrTruncated, i, err)
			}
			img.Args[i] = v
		}
		img.Transforms = make([]float64, transformsLen)
		for i := range img.Transforms {
			v, err := readFloat()
			if err != nil {
				return nil, fmt.Errorf("%w: transforms[%d]: %v", ErrTruncated, i, err)
			}
			img.Transforms[i] = v
		}
	} else {
		img.ArgsFloat32 = make([]float32, argsLen)
		for i := range img.ArgsFloat32 {
			v, err := readFloat()
			if err != nil {
				return nil, fmt.Errorf("%w: args[%d]: %v", ErrTruncated, i, err)
			}
			img.ArgsFloat32[i] = float32(v)
		}
		img.TransformsFloat32 = make([]float32, transformsLen)
		for i := range img.TransformsFloat32 {
			v, err := readFloat()
			if err != nil {
				return nil, fmt.Errorf("%w: transforms[%d]: %v", ErrTruncated, i, err)
			}
			img.TransformsFloat32[i] = float32(v)
		}
	}

	if flags&envFlagHasWidth != 0 {
		v, err := readFloat()
		if err != nil {
			return nil, fmt.Errorf("%w: width: %v", ErrTruncated, err)
		}
		img.Width = &v
	}
	if flags&envFlagHasHeight != 0 {
		v, err := readFloat()
		if err != nil {
			return nil, fmt.Errorf("%w: height: %v", ErrTruncated, err)
		}
		img.Height = &v
	}
	if flags&envFlagHasTint != 0 {
		argb, err := r.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("%w: tint: %v", ErrTruncated, err)
		}
		mode, err := r.ReadU8()
		if err != nil {
			return nil, fmt.Errorf("%w: tint mode: %v", ErrTruncated, err)
		}
		img.TintColor = &argb
		img.TintMode = TintMode(mode)
	}

	stringCount, err := ReadSmallishInt(r)
	if err != nil {
		return nil, fmt.Errorf("%w: string table: %v", ErrTruncated, err)
	}
	img.Strings = make([]string, stringCount)
	for i := range img.Strings {
		n, err := ReadSmallishInt(r)
		if err != nil {
			return nil, fmt.Errorf("%w: string[%d] length: %v", ErrTruncated, i, err)
		}
		b, err := r.ReadBytes(int(n))
		if err != nil {
			return nil, fmt.Errorf("%w: string[%d] bytes: %v", ErrTruncated, i, err)
		}
		img.Strings[i] = string(b)
	}

	floatListCount, err := ReadSmallishInt(r)
	if err != nil {
		return nil, fmt.Errorf("%w: float-list table: %v", ErrTruncated, err)
	}
	img.FloatLists = make([][]float64, floatListCount)
	for i := range img.FloatLists {
		n, err := ReadSmallishInt(r)
		if err != nil {
			return nil, fmt.Errorf("%w: float-list[%d] length: %v", ErrTruncated, i, err)
		}
		fl := make([]float64, n)
		for j := range fl {
			v, err := readFloat()
			if err != nil {
				return nil, fmt.Errorf("%w: float-list[%d][%d]: %v", ErrTruncated, i, j, err)
			}
			fl[j] = v
		}
		img.FloatLists[i] = fl
	}

	imageCount, err := ReadSmallishInt(r)
	if err != nil {
		return nil, fmt.Errorf("%w: image table: %v", ErrTruncated, err)
	}
	img.Images = make([]ImageData, imageCount)
	for i := range img.Images {
		x, err1 := readFloat()
		y, err2 := readFloat()
		w, err3 := readFloat()
		h, err4 := readFloat()
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil, fmt.Errorf("%w: image[%d] box", ErrTruncated, i)
		}
		n, err := ReadSmallishInt(r)
		if err != nil {
			return nil, fmt.Errorf("%w: image[%d] length: %v", ErrTruncated, i, err)
		}
		enc, err := r.ReadBytes(int(n))
		if err != nil {
			return nil, fmt.Errorf("%w: image[%d] bytes: %v", ErrTruncated, i, err)
		}
		img.Images[i] = ImageData{X: x, Y: y, Width: w, Height: h, Encoded: append([]byte(nil), enc...)}
	}

	img.Children = blob[r.Position():]
	return img, nil
}

// Validate performs the structural preflight check described in
// SPEC_FULL.md §12: magic, version, and declared lengths are
// consistent with the remaining bytes, without doing a full decode.
func Validate(blob []byte) error {
	if len(blob) < headerSize {
		return fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformedHeader, len(blob), headerSize)
	}
	magic := uint32(blob[0])<<24 | uint32(blob[1])<<16 | uint32(blob[2])<<8 | uint32(blob[3])
	if magic != Magic {
		return fmt.Errorf("%w: magic %#x", ErrMalformedHeader, magic)
	}
	version := uint16(blob[5])<<8 | uint16(blob[6])
	if version > CurrentVersion {
		return fmt.Errorf("%w: version %d", ErrUnsupportedVersion, version)
	}
	flags := blob[7]
	bigFloats := flags&envFlagBigFloats != 0
	argsLen := binary.LittleEndian.Uint32(blob[16:20])
	transformsLen := binary.LittleEndian.Uint32(blob[20:24])
	width := 4
	if bigFloats {
		width = 8
	}
	need := headerSize + int(argsLen)*width + int(transformsLen)*width
	if len(blob) < need {
		return fmt.Errorf("%w: declared %d float bytes, have %d bytes remaining", ErrTruncated, need-headerSize, len(blob)-headerSize)
	}
	return nil
}
