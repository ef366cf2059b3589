package si

import "fmt"

// PathCmd identifies a single path-stream command. There are 18 defined
// commands (indices 0-17); the nybble encoding escapes any value ≥ 15
// with the escape nybble followed by (value - 14), so index 17 encodes
// as the two nybbles 0xf, 0x3.
//
// This resolves an off-by-one in the command count as commonly quoted
// ("17 commands, index 0..16"): circle and ellipse are separate
// fixed-arity commands, not a combined shorthand, which is the only
// reading under which the named command list (end, moveTo, lineTo,
// cubicTo, cubicToShorthand, quadraticBezierTo, quadraticBezierToShorthand,
// close, circle, ellipse, plus 8 arc-to-point variants) adds up without
// either command losing its own index.
type PathCmd uint8

const (
	CmdEnd PathCmd = iota
	CmdMoveTo
	CmdLineTo
	CmdCubicTo
	CmdCubicToShorthand
	CmdQuadTo
	CmdQuadToShorthand
	CmdClose
	CmdCircle  // left, top, diameter
	CmdEllipse // left, top, width, height
	CmdArcCircSmallCCW
	CmdArcCircSmallCW
	CmdArcCircLargeCCW
	CmdArcCircLargeCW
	CmdArcEllipseSmallCCW
	CmdArcEllipseSmallCW
	CmdArcEllipseLargeCCW
	CmdArcEllipseLargeCW
)

const nybbleEscape = 0xf // 15: "next nybble + 14"

// IsArc reports whether c is one of the 8 arc-to-point variants.
func (c PathCmd) IsArc() bool {
	return c >= CmdArcCircSmallCCW && c <= CmdArcEllipseLargeCW
}

// PathEncoder accumulates nybble-packed path commands into a ByteWriter
// and the args float array, per the nybble-stream algorithm: a pending
// byte holds the high nybble until a second command fills the low
// nybble, at which point the byte is flushed.
type PathEncoder struct {
	bw      *ByteWriter
	fw      *FloatWriter
	pending byte
	hasHigh bool
}

// NewPathEncoder creates an encoder writing nybbles to bw and float
// operands to fw.
func NewPathEncoder(bw *ByteWriter, fw *FloatWriter) *PathEncoder {
	return &PathEncoder{bw: bw, fw: fw}
}

func (e *PathEncoder) putNybble(n byte) {
	if !e.hasHigh {
		e.pending = n << 4
		e.hasHigh = true
		return
	}
	e.bw.WriteU8(e.pending | n)
	e.hasHigh = false
	e.pending = 0
}

func (e *PathEncoder) putCmd(c PathCmd) {
	if c < nybbleEscape {
		e.putNybble(byte(c))
		return
	}
	e.putNybble(nybbleEscape)
	e.putNybble(byte(c) - 14)
}

func (e *PathEncoder) putArgs(args ...float64) {
	for _, a := range args {
		e.fw.Put(a)
	}
}

func (e *PathEncoder) MoveTo(x, y float64) { e.putCmd(CmdMoveTo); e.putArgs(x, y) }
func (e *PathEncoder) LineTo(x, y float64) { e.putCmd(CmdLineTo); e.putArgs(x, y) }

func (e *PathEncoder) CubicTo(x1, y1, x2, y2, x, y float64) {
	e.putCmd(CmdCubicTo)
	e.putArgs(x1, y1, x2, y2, x, y)
}

func (e *PathEncoder) CubicToShorthand(x2, y2, x, y float64) {
	e.putCmd(CmdCubicToShorthand)
	e.putArgs(x2, y2, x, y)
}

func (e *PathEncoder) QuadTo(x1, y1, x, y float64) {
	e.putCmd(CmdQuadTo)
	e.putArgs(x1, y1, x, y)
}

func (e *PathEncoder) QuadToShorthand(x, y float64) {
	e.putCmd(CmdQuadToShorthand)
	e.putArgs(x, y)
}

func (e *PathEncoder) Close() { e.putCmd(CmdClose) }

// Circle emits the circle shorthand: left, top, diameter.
func (e *PathEncoder) Circle(left, top, diameter float64) {
	e.putCmd(CmdCircle)
	e.putArgs(left, top, diameter)
}

// Ellipse emits the bounding-box ellipse shorthand.
func (e *PathEncoder) Ellipse(left, top, width, height float64) {
	e.putCmd(CmdEllipse)
	e.putArgs(left, top, width, height)
}

// ArcToPoint emits one of the 8 arc-to-point variants. Pass rx == ry and
// xRotation == 0 for a circular arc; the encoder then writes only the
// circular variant's 3 floats (radius, endX, endY) instead of the
// elliptical variant's 5.
func (e *PathEncoder) ArcToPoint(rx, ry, xRotation, endX, endY float64, large, sweepCW bool) {
	circular := rx == ry && xRotation == 0
	var c PathCmd
	switch {
	case circular && !large && !sweepCW:
		c = CmdArcCircSmallCCW
	case circular && !large && sweepCW:
		c = CmdArcCircSmallCW
	case circular && large && !sweepCW:
		c = CmdArcCircLargeCCW
	case circular && large && sweepCW:
		c = CmdArcCircLargeCW
	case !large && !sweepCW:
		c = CmdArcEllipseSmallCCW
	case !large && sweepCW:
		c = CmdArcEllipseSmallCW
	case large && !sweepCW:
		c = CmdArcEllipseLargeCCW
	default:
		c = CmdArcEllipseLargeCW
	}
	e.putCmd(c)
	if circular {
		e.putArgs(rx, endX, endY)
	} else {
		e.putArgs(rx, ry, xRotation, endX, endY)
	}
}

// End terminates the path. Its nybble value is 0, so if only a high
// nybble is pending, flushing it naturally encodes End in the low
// nybble; if no nybble is pending, a fresh all-zero byte is written.
func (e *PathEncoder) End() {
	e.putCmd(CmdEnd)
	if e.hasHigh {
		e.bw.WriteU8(e.pending)
		e.hasHigh = false
		e.pending = 0
	}
}

// PathVisitor receives decoded path commands in stream order.
type PathVisitor interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	CubicTo(x1, y1, x2, y2, x, y float64)
	CubicToShorthand(x2, y2, x, y float64)
	QuadTo(x1, y1, x, y float64)
	QuadToShorthand(x, y float64)
	Close()
	Circle(left, top, diameter float64)
	Ellipse(left, top, width, height float64)
	ArcToPoint(rx, ry, xRotation, endX, endY float64, large, sweepCW bool)
	End()
}

// DecodePath reads a nybble-packed command stream from br (starting at
// its current position) and float operands from fr (starting at
// argOffset), dispatching each command to v. It stops at the End
// command. Returns the number of floats consumed from fr.
func DecodePath(br *ByteReader, fr *FloatReader, argOffset int, v PathVisitor) (argsConsumed int, err error) {
	pos := argOffset
	nextFloat := func() float64 {
		f := fr.At(pos)
		pos++
		return f
	}

	var pendingByte byte
	haveHigh := false
	nextNybble := func() (byte, error) {
		if haveHigh {
			haveHigh = false
			return pendingByte & 0xf, nil
		}
		b, err := br.ReadU8()
		if err != nil {
			return 0, err
		}
		pendingByte = b
		haveHigh = true
		return b >> 4, nil
	}

	for {
		n, err := nextNybble()
		if err != nil {
			return pos - argOffset, fmt.Errorf("path: %w", err)
		}
		var cmd PathCmd
		if n == nybbleEscape {
			n2, err := nextNybble()
			if err != nil {
				return pos - argOffset, fmt.Errorf("path: %w", err)
			}
			cmd = PathCmd(n2 + 14)
		} else {
			cmd = PathCmd(n)
		}

		switch cmd {
		case CmdEnd:
			v.End()
			return pos - argOffset, nil
		case CmdMoveTo:
			v.MoveTo(nextFloat(), nextFloat())
		case CmdLineTo:
			v.LineTo(nextFloat(), nextFloat())
		case CmdCubicTo:
			v.CubicTo(nextFloat(), nextFloat(), nextFloat(), nextFloat(), nextFloat(), nextFloat())
		case CmdCubicToShorthand:
			v.CubicToShorthand(nextFloat(), nextFloat(), nextFloat(), nextFloat())
		case CmdQuadTo:
			v.QuadTo(nextFloat(), nextFloat(), nextFloat(), nextFloat())
		case CmdQuadToShorthand:
			v.QuadToShorthand(nextFloat(), nextFloat())
		case CmdClose:
			v.Close()
		case CmdCircle:
			v.Circle(nextFloat(), nextFloat(), nextFloat())
		case CmdEllipse:
			v.Ellipse(nextFloat(), nextFloat(), nextFloat(), nextFloat())
		case CmdArcCircSmallCCW, CmdArcCircSmallCW, CmdArcCircLargeCCW, CmdArcCircLargeCW:
			rx, endX, endY := nextFloat(), nextFloat(), nextFloat()
			large := cmd == CmdArcCircLargeCCW || cmd == CmdArcCircLargeCW
			cw := cmd == CmdArcCircSmallCW || cmd == CmdArcCircLargeCW
			v.ArcToPoint(rx, rx, 0, endX, endY, large, cw)
		case CmdArcEllipseSmallCCW, CmdArcEllipseSmallCW, CmdArcEllipseLargeCCW, CmdArcEllipseLargeCW:
			rx, ry, rot, endX, endY := nextFloat(), nextFloat(), nextFloat(), nextFloat(), nextFloat()
			large := cmd == CmdArcEllipseLargeCCW || cmd == CmdArcEllipseLargeCW
			cw := cmd == CmdArcEllipseSmallCW || cmd == CmdArcEllipseLargeCW
			v.ArcToPoint(rx, ry, rot, endX, endY, large, cw)
		default:
			return pos - argOffset, fmt.Errorf("path: %w: unknown command %d", ErrBadOpcode, cmd)
		}
	}
}
