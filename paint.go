package si

import "fmt"

// StrokeJoin selects the join style for stroked path corners.
type StrokeJoin uint8

const (
	JoinMiter StrokeJoin = iota
	JoinRound
	JoinBevel
)

// StrokeCap selects the cap style for stroked path ends.
type StrokeCap uint8

const (
	CapButt StrokeCap = iota
	CapRound
	CapSquare
)

// FillType selects the winding rule used to fill a path.
type FillType uint8

const (
	FillNonZero FillType = iota
	FillEvenOdd
)

// Default scalar values per the paint model (spec-defined defaults,
// applied by NewPaint and by the resolver when an attribute is absent).
const (
	DefaultStrokeWidth      = 1.0
	DefaultStrokeMiterLimit = 4.0
)

// Paint bundles the fill/stroke attributes attached to a path or
// text-run opcode. StrokeWidth and StrokeMiterLimit are pointers so
// "unset" (falls back to the default at render time) is distinguishable
// from "explicitly set to the default value."
type Paint struct {
	FillColor        SIColor
	StrokeColor      SIColor
	StrokeWidth      *float64
	StrokeMiterLimit *float64
	StrokeJoin       StrokeJoin
	StrokeCap        StrokeCap
	FillType         FillType
	StrokeDashArray  []float64
	StrokeDashOffset float64
}

// NewPaint returns a Paint with every field at its spec default: opaque
// black fill, no stroke, width 1, miter limit 4, miter join, butt cap,
// non-zero fill rule.
func NewPaint() Paint {
	return Paint{
		FillColor:   SolidColor(0xff, 0, 0, 0),
		StrokeColor: NoneColor(),
		StrokeJoin:  JoinMiter,
		StrokeCap:   CapButt,
		FillType:    FillNonZero,
	}
}

// paintHeader bit layout, byte 0:
//
//	b0    hasStrokeWidth
//	b1    hasStrokeMiterLimit
//	b2    hasDashArray
//	b3-4  strokeJoin
//	b5-6  strokeCap
//	b7    fillType
//
// There is no second header byte. When hasDashArray is set, the dash
// array's element count is written as a smallish-int after the fill and
// stroke colors (not packed into the header byte, since its range
// exceeds what any spare bits could hold).
const (
	paintFlagHasStrokeWidth      = 1 << 0
	paintFlagHasStrokeMiterLimit = 1 << 1
	paintFlagHasDashArray        = 1 << 2
	paintShiftJoin               = 3
	paintShiftCap                = 5
	paintFlagFillType            = 1 << 7
)

// WritePaint serializes p's header, fill/stroke colors, and optional
// stroke attributes. Colors recurse through WriteColor (so a paint may
// embed a gradient fill or stroke).
func WritePaint(bw *ByteWriter, fw *FloatWriter, p Paint) error {
	var header byte
	if p.StrokeWidth != nil {
		header |= paintFlagHasStrokeWidth
	}
	if p.StrokeMiterLimit != nil {
		header |= paintFlagHasStrokeMiterLimit
	}
	if len(p.StrokeDashArray) > 0 {
		header |= paintFlagHasDashArray
	}
	header |= (byte(p.StrokeJoin) & 0x3) << paintShiftJoin
	header |= (byte(p.StrokeCap) & 0x3) << paintShiftCap
	if p.FillType == FillEvenOdd {
		header |= paintFlagFillType
	}
	bw.WriteU8(header)

	if err := WriteColor(bw, fw, p.FillColor); err != nil {
		return err
	}
	if err := WriteColor(bw, fw, p.StrokeColor); err != nil {
		return err
	}
	if p.StrokeWidth != nil {
		fw.Put(*p.StrokeWidth)
	}
	if p.StrokeMiterLimit != nil {
		fw.Put(*p.StrokeMiterLimit)
	}
	if len(p.StrokeDashArray) > 0 {
		WriteSmallishInt(bw, uint32(len(p.StrokeDashArray)))
		for _, v := range p.StrokeDashArray {
			fw.Put(v)
		}
		fw.Put(p.StrokeDashOffset)
	}
	return nil
}

// ReadPaint is the exact dual of WritePaint. argPos tracks the caller's
// position into the shared float array and is advanced past every
// float consumed.
func ReadPaint(br *ByteReader, fr *FloatReader, argPos *int) (Paint, error) {
	header, err := br.ReadU8()
	if err != nil {
		return Paint{}, fmt.Errorf("si: read paint: %w", err)
	}
	p := Paint{
		StrokeJoin: StrokeJoin((header >> paintShiftJoin) & 0x3),
		StrokeCap:  StrokeCap((header >> paintShiftCap) & 0x3),
		FillType:   FillNonZero,
	}
	if header&paintFlagFillType != 0 {
		p.FillType = FillEvenOdd
	}

	fill, err := ReadColor(br, fr, argPos)
	if err != nil {
		return Paint{}, err
	}
	p.FillColor = fill
	stroke, err := ReadColor(br, fr, argPos)
	if err != nil {
		return Paint{}, err
	}
	p.StrokeColor = stroke

	if header&paintFlagHasStrokeWidth != 0 {
		v := fr.At(*argPos)
		*argPos++
		p.StrokeWidth = &v
	}
	if header&paintFlagHasStrokeMiterLimit != 0 {
		v := fr.At(*argPos)
		*argPos++
		p.StrokeMiterLimit = &v
	}
	if header&paintFlagHasDashArray != 0 {
		n, err := ReadSmallishInt(br)
		if err != nil {
			return Paint{}, fmt.Errorf("si: read paint: %w", err)
		}
		p.StrokeDashArray = make([]float64, n)
		for i := range p.StrokeDashArray {
			p.StrokeDashArray[i] = fr.At(*argPos)
			*argPos++
		}
		p.StrokeDashOffset = fr.At(*argPos)
		*argPos++
	}
	return p, nil
}

// Equal reports structural equality of two paints; gradient colors
// compare by pointer. The Builder's paint dedup table does not call it:
// it keys paints by their serialized form (paintKey).
func (p Paint) Equal(o Paint) bool {
	if p.FillColor != o.FillColor || p.StrokeColor != o.StrokeColor {
		return false
	}
	if !floatPtrEqual(p.StrokeWidth, o.StrokeWidth) {
		return false
	}
	if !floatPtrEqual(p.StrokeMiterLimit, o.StrokeMiterLimit) {
		return false
	}
	if p.StrokeJoin != o.StrokeJoin || p.StrokeCap != o.StrokeCap || p.FillType != o.FillType {
		return false
	}
	if p.StrokeDashOffset != o.StrokeDashOffset {
		return false
	}
	if len(p.StrokeDashArray) != len(o.StrokeDashArray) {
		return false
	}
	for i := range p.StrokeDashArray {
		if p.StrokeDashArray[i] != o.StrokeDashArray[i] {
			return false
		}
	}
	return true
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
