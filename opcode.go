package si

// Opcode categories, selected by the top bits of an opcode byte. The low
// bits of PATH/TEXT/GROUP/CLIPPATH opcodes carry flags; IMAGE and
// END_GROUP are single fixed values.
const (
	opPathMin      = 0
	opPathMax      = 63
	opTextMin      = 64
	opTextMax      = 127
	opGroupMin     = 128
	opGroupMax     = 135
	opClipPathMin  = 136
	opClipPathMax  = 137
	opImage        = 138
	opEndGroup     = 139

	// The mask bracket (masked/masked_child/end_masked) is listed in the
	// visitor interface but has no assigned range in the base opcode
	// table (PATH..END_GROUP fully packs bytes 0-139). It is assigned
	// the next free single-byte values rather than stealing a bit from
	// an already-saturated category (GROUP's 3 flag bits already fill
	// all 8 of its 128-135 slots).
	opMaskedMin   = 140 // 140-143: 2 flag bits (hasBounds, usesLuma)
	opMaskedMax   = 143
	opMaskedChild = 144
	opEndMasked   = 145
)

// OpCategory identifies which opcode range a byte falls in.
type OpCategory int

const (
	CatPath OpCategory = iota
	CatText
	CatGroup
	CatClipPath
	CatImage
	CatEndGroup
	CatMasked
	CatMaskedChild
	CatEndMasked
)

// classify maps an opcode byte to its category, or reports ok=false if
// the byte falls in no defined range.
func classify(b byte) (OpCategory, bool) {
	switch {
	case b <= opPathMax:
		return CatPath, true
	case b <= opTextMax:
		return CatText, true
	case b <= opGroupMax:
		return CatGroup, true
	case b <= opClipPathMax:
		return CatClipPath, true
	case b == opImage:
		return CatImage, true
	case b == opEndGroup:
		return CatEndGroup, true
	case b >= opMaskedMin && b <= opMaskedMax:
		return CatMasked, true
	case b == opMaskedChild:
		return CatMaskedChild, true
	case b == opEndMasked:
		return CatEndMasked, true
	default:
		return 0, false
	}
}

// maskedFlags packs the MASKED opcode's flag bits: b0=hasBounds,
// b1=usesLuma.
type maskedFlags struct {
	hasBounds bool
	usesLuma  bool
}

func encodeMaskedOpcode(f maskedFlags) byte {
	b := byte(opMaskedMin)
	if f.hasBounds {
		b |= 1 << 0
	}
	if f.usesLuma {
		b |= 1 << 1
	}
	return b
}

func decodeMaskedOpcode(b byte) maskedFlags {
	rel := b - opMaskedMin
	return maskedFlags{hasBounds: rel&(1<<0) != 0, usesLuma: rel&(1<<1) != 0}
}

// ColorType is the 2-bit color-type field embedded in PATH/TEXT opcodes
// and in gradient stop payloads.
type ColorType uint8

const (
	ColorExplicit     ColorType = 0
	ColorNone         ColorType = 1
	ColorCurrent      ColorType = 2
	ColorGradient     ColorType = 3
)

// pathFlags packs the PATH opcode's flag bits.
type pathFlags struct {
	hasPathNumber  bool
	hasPaintNumber bool
	fillColorType  ColorType
	strokeColorType ColorType
}

func encodePathOpcode(f pathFlags) byte {
	var b byte
	if f.hasPathNumber {
		b |= 1 << 0
	}
	if f.hasPaintNumber {
		b |= 1 << 1
	}
	b |= byte(f.fillColorType&0x3) << 2
	b |= byte(f.strokeColorType&0x3) << 4
	return b
}

func decodePathOpcode(b byte) pathFlags {
	return pathFlags{
		hasPathNumber:   b&(1<<0) != 0,
		hasPaintNumber:  b&(1<<1) != 0,
		fillColorType:   ColorType((b >> 2) & 0x3),
		strokeColorType: ColorType((b >> 4) & 0x3),
	}
}

// clipPathFlags packs the CLIPPATH opcode's single flag bit.
type clipPathFlags struct {
	hasPathNumber bool
}

func encodeClipPathOpcode(f clipPathFlags) byte {
	b := byte(opClipPathMin)
	if f.hasPathNumber {
		b |= 1 << 0
	}
	return b
}

func decodeClipPathOpcode(b byte) clipPathFlags {
	rel := b - opClipPathMin
	return clipPathFlags{hasPathNumber: rel&(1<<0) != 0}
}

// textFlags packs the TEXT opcode's flag bits.
type textFlags struct {
	hasPaintNumber  bool
	hasFontFamily   bool
	fillColorType   ColorType
	strokeColorType ColorType
}

func encodeTextOpcode(f textFlags) byte {
	b := byte(opTextMin)
	if f.hasPaintNumber {
		b |= 1 << 0
	}
	if f.hasFontFamily {
		b |= 1 << 1
	}
	b |= byte(f.fillColorType&0x3) << 2
	b |= byte(f.strokeColorType&0x3) << 4
	return b
}

func decodeTextOpcode(b byte) textFlags {
	rel := b - opTextMin
	return textFlags{
		hasPaintNumber:  rel&(1<<0) != 0,
		hasFontFamily:   rel&(1<<1) != 0,
		fillColorType:   ColorType((rel >> 2) & 0x3),
		strokeColorType: ColorType((rel >> 4) & 0x3),
	}
}

// groupFlags packs the GROUP opcode's flag bits.
type groupFlags struct {
	hasTransform       bool
	hasTransformNumber bool
	hasGroupAlpha      bool
}

func encodeGroupOpcode(f groupFlags) byte {
	b := byte(opGroupMin)
	if f.hasTransform {
		b |= 1 << 0
	}
	if f.hasTransformNumber {
		b |= 1 << 1
	}
	if f.hasGroupAlpha {
		b |= 1 << 2
	}
	return b
}

func decodeGroupOpcode(b byte) groupFlags {
	rel := b - opGroupMin
	return groupFlags{
		hasTransform:       rel&(1<<0) != 0,
		hasTransformNumber: rel&(1<<1) != 0,
		hasGroupAlpha:      rel&(1<<2) != 0,
	}
}
