package si

import "fmt"

// SpreadMethod controls how a gradient extends beyond its defined stop
// range. Two bits in the gradient header support up to four values;
// three are defined.
type SpreadMethod uint8

const (
	SpreadPad     SpreadMethod = 0
	SpreadReflect SpreadMethod = 1
	SpreadRepeat  SpreadMethod = 2
)

// GradientKind selects the gradient geometry variant.
type GradientKind uint8

const (
	GradientLinear GradientKind = 0
	GradientRadial GradientKind = 1
	GradientSweep  GradientKind = 2
)

// GradientStop is one color stop. Color must not itself be a gradient;
// writeGradient/readGradient enforce this.
type GradientStop struct {
	Offset float64
	Color  SIColor
}

// Gradient is the inline gradient payload referenced by a ColorGradient
// SIColor. Geometry fields used depend on Kind:
//   - Linear: X1, Y1, X2, Y2
//   - Radial: CX, CY, R, FX, FY (focal point)
//   - Sweep:  CX, CY, StartAngle, EndAngle
type Gradient struct {
	Kind               GradientKind
	ObjectBoundingBox  bool
	Spread             SpreadMethod
	Transform          *AffineRef // nil if no transform
	Stops              []GradientStop
	X1, Y1, X2, Y2     float64
	CX, CY, R, FX, FY  float64
	StartAngle, EndAngle float64
}

// AffineRef is either an inline transform or a back-reference to a
// previously written transform number; exactly one of the two is valid
// depending on HasNumber.
type AffineRef struct {
	HasNumber bool
	Number    uint32   // valid if HasNumber
	Inline    [6]float64 // valid if !HasNumber
}

// SIColor is a decoded color value: explicit ARGB, none, the inherited
// "currentColor", or an inline gradient.
type SIColor struct {
	Kind     ColorType
	ARGB     uint32    // valid if Kind == ColorExplicit
	Gradient *Gradient // valid if Kind == ColorGradient
}

// SolidColor builds an explicit-color SIColor from 8-bit ARGB channels.
func SolidColor(a, r, g, b uint8) SIColor {
	argb := uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	return SIColor{Kind: ColorExplicit, ARGB: argb}
}

// NoneColor is the "paint nothing" color.
func NoneColor() SIColor { return SIColor{Kind: ColorNone} }

// CurrentColor is the "inherit from context" color.
func CurrentColor() SIColor { return SIColor{Kind: ColorCurrent} }

// WriteColor writes c's type byte and payload to bw/fw.
func WriteColor(bw *ByteWriter, fw *FloatWriter, c SIColor) error {
	bw.WriteU8(byte(c.Kind))
	switch c.Kind {
	case ColorExplicit:
		bw.WriteU32(c.ARGB)
	case ColorNone, ColorCurrent:
		// no payload
	case ColorGradient:
		return writeGradient(bw, fw, c.Gradient)
	default:
		return fmt.Errorf("si: write color: unknown color type %d", c.Kind)
	}
	return nil
}

// ReadColor reads a color type byte and its payload.
func ReadColor(br *ByteReader, fr *FloatReader, argPos *int) (SIColor, error) {
	t, err := br.ReadU8()
	if err != nil {
		return SIColor{}, fmt.Errorf("si: read color: %w", err)
	}
	kind := ColorType(t)
	switch kind {
	case ColorExplicit:
		argb, err := br.ReadU32()
		if err != nil {
			return SIColor{}, fmt.Errorf("si: read color: %w", err)
		}
		return SIColor{Kind: ColorExplicit, ARGB: argb}, nil
	case ColorNone:
		return SIColor{Kind: ColorNone}, nil
	case ColorCurrent:
		return SIColor{Kind: ColorCurrent}, nil
	case ColorGradient:
		g, err := readGradient(br, fr, argPos)
		if err != nil {
			return SIColor{}, err
		}
		return SIColor{Kind: ColorGradient, Gradient: g}, nil
	default:
		return SIColor{}, fmt.Errorf("si: read color: unknown color type %d", t)
	}
}

func writeGradient(bw *ByteWriter, fw *FloatWriter, g *Gradient) error {
	var header byte
	header |= byte(g.Kind) & 0x3
	if g.ObjectBoundingBox {
		header |= 1 << 2
	}
	header |= (byte(g.Spread) & 0x3) << 3
	hasTransform := g.Transform != nil
	hasTransformNumber := hasTransform && g.Transform.HasNumber
	if hasTransform {
		header |= 1 << 5
	}
	if hasTransformNumber {
		header |= 1 << 6
	}
	bw.WriteU8(header)

	if hasTransform {
		if hasTransformNumber {
			WriteSmallishInt(bw, g.Transform.Number)
		} else {
			for _, v := range g.Transform.Inline {
				fw.Put(v)
			}
		}
	}

	WriteSmallishInt(bw, uint32(len(g.Stops)))
	for _, s := range g.Stops {
		fw.Put(s.Offset)
	}
	for _, s := range g.Stops {
		if s.Color.Kind == ColorGradient {
			return ErrBadGradientStopColor
		}
		if err := WriteColor(bw, fw, s.Color); err != nil {
			return err
		}
	}

	switch g.Kind {
	case GradientLinear:
		fw.Put(g.X1)
		fw.Put(g.Y1)
		fw.Put(g.X2)
		fw.Put(g.Y2)
	case GradientRadial:
		fw.Put(g.CX)
		fw.Put(g.CY)
		fw.Put(g.R)
		fw.Put(g.FX)
		fw.Put(g.FY)
	case GradientSweep:
		fw.Put(g.CX)
		fw.Put(g.CY)
		fw.Put(g.StartAngle)
		fw.Put(g.EndAngle)
	}
	return nil
}

func readGradient(br *ByteReader, fr *FloatReader, argPos *int) (*Gradient, error) {
	header, err := br.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("si: read gradient: %w", err)
	}
	g := &Gradient{
		Kind:              GradientKind(header & 0x3),
		ObjectBoundingBox: header&(1<<2) != 0,
		Spread:            SpreadMethod((header >> 3) & 0x3),
	}
	hasTransform := header&(1<<5) != 0
	hasTransformNumber := header&(1<<6) != 0
	if hasTransform {
		ref := &AffineRef{HasNumber: hasTransformNumber}
		if hasTransformNumber {
			n, err := ReadSmallishInt(br)
			if err != nil {
				return nil, fmt.Errorf("si: read gradient: %w", err)
			}
			ref.Number = n
		} else {
			for i := range ref.Inline {
				ref.Inline[i] = fr.At(*argPos)
				*argPos++
			}
		}
		g.Transform = ref
	}

	count, err := ReadSmallishInt(br)
	if err != nil {
		return nil, fmt.Errorf("si: read gradient: %w", err)
	}
	g.Stops = make([]GradientStop, count)
	for i := range g.Stops {
		g.Stops[i].Offset = fr.At(*argPos)
		*argPos++
	}
	for i := range g.Stops {
		c, err := ReadColor(br, fr, argPos)
		if err != nil {
			return nil, err
		}
		if c.Kind == ColorGradient {
			return nil, ErrBadGradientStopColor
		}
		g.Stops[i].Color = c
	}

	next := func() float64 {
		v := fr.At(*argPos)
		*argPos++
		return v
	}
	switch g.Kind {
	case GradientLinear:
		g.X1, g.Y1, g.X2, g.Y2 = next(), next(), next(), next()
	case GradientRadial:
		g.CX, g.CY, g.R, g.FX, g.FY = next(), next(), next(), next(), next()
	case GradientSweep:
		g.CX, g.CY, g.StartAngle, g.EndAngle = next(), next(), next(), next()
	default:
		return nil, fmt.Errorf("si: read gradient: unknown gradient kind %d", g.Kind)
	}
	return g, nil
}
