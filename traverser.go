package si

import (
	"fmt"

	"golang.org/x/image/math/f64"
)

// Traverser decodes a CompactImage's opcode stream and replays it as a
// sequence of Visitor calls, in document order. It maintains three
// seek tables (paths, paints, transforms) that grow as each is first
// written inline; a back-reference opcode resolves by index into
// whichever table its category uses. A Traverser is single-use: create
// a new one per Run.
type Traverser struct {
	img *CompactImage
	br  *ByteReader
	fr  *FloatReader
	tr  *FloatReader

	paths      []PathHandle
	paints     []Paint
	transforms []f64.Aff3

	argPos       int
	transformPos int

	groupDepth int
	maskDepth  int
}

// NewTraverser creates a Traverser over img, ready to call Run.
func NewTraverser(img *CompactImage) *Traverser {
	return &Traverser{
		img: img,
		br:  NewByteReader(img.Children),
		fr:  img.argsReader(),
		tr:  img.transformsReader(),
	}
}

// nullPathVisitor discards path events. The Traverser uses it to skip
// over an inline path's command stream during the main pass, since
// decoding into the caller's Visitor happens lazily through the
// PathHandle it hands back (see PathHandle.Walk).
type nullPathVisitor struct{}

func (nullPathVisitor) MoveTo(x, y float64)                                    {}
func (nullPathVisitor) LineTo(x, y float64)                                    {}
func (nullPathVisitor) CubicTo(x1, y1, x2, y2, x, y float64)                   {}
func (nullPathVisitor) CubicToShorthand(x2, y2, x, y float64)                  {}
func (nullPathVisitor) QuadTo(x1, y1, x, y float64)                            {}
func (nullPathVisitor) QuadToShorthand(x, y float64)                           {}
func (nullPathVisitor) Close()                                                {}
func (nullPathVisitor) Circle(left, top, diameter float64)                     {}
func (nullPathVisitor) Ellipse(left, top, width, height float64)               {}
func (nullPathVisitor) ArcToPoint(rx, ry, xRotation, endX, endY float64, large, sweepCW bool) {}
func (nullPathVisitor) End()                                                   {}

// Run drives v through the full event sequence: Init, Vector, the
// decoded opcode stream, then EndVector. It returns an error on a
// malformed stream, an out-of-range back-reference, or a termination
// invariant violation (unbalanced groups or masks, leftover
// unconsumed floats, a path/paint count that doesn't match the
// envelope's declared totals).
func (t *Traverser) Run(v Visitor) error {
	v.Init(t.img.Strings, t.img.FloatLists, t.img.Images)
	v.Vector(t.img.Width, t.img.Height, t.img.TintColor, t.img.TintMode)

	for !t.br.IsEOF() {
		op, err := t.br.ReadU8()
		if err != nil {
			return fmt.Errorf("traverse: %w", err)
		}
		cat, ok := classify(op)
		if !ok {
			return fmt.Errorf("traverse: %w: opcode %d", ErrBadOpcode, op)
		}
		switch cat {
		case CatGroup:
			if err := t.readGroup(v, op); err != nil {
				return err
			}
		case CatEndGroup:
			if t.groupDepth == 0 {
				return fmt.Errorf("traverse: %w: end_group at depth 0", ErrUnbalancedGroups)
			}
			t.groupDepth--
			v.EndGroup()
		case CatPath:
			if err := t.readPath(v, op); err != nil {
				return err
			}
		case CatClipPath:
			if err := t.readClipPath(v, op); err != nil {
				return err
			}
		case CatImage:
			n, err := ReadSmallishInt(t.br)
			if err != nil {
				return fmt.Errorf("traverse: image: %w", err)
			}
			v.Image(n)
		case CatText:
			if err := t.readText(v, op); err != nil {
				return err
			}
		case CatMasked:
			t.readMasked(v, op)
		case CatMaskedChild:
			if t.maskDepth == 0 {
				return fmt.Errorf("traverse: masked_child outside a masked bracket")
			}
			v.MaskedChild()
		case CatEndMasked:
			if t.maskDepth == 0 {
				return fmt.Errorf("traverse: end_masked outside a masked bracket")
			}
			t.maskDepth--
			v.EndMasked()
		default:
			return fmt.Errorf("traverse: %w: opcode %d", ErrBadOpcode, op)
		}
	}

	if t.groupDepth != 0 {
		return fmt.Errorf("traverse: %w: %d unclosed group(s)", ErrUnbalancedGroups, t.groupDepth)
	}
	if t.maskDepth != 0 {
		return fmt.Errorf("traverse: %w: %d unclosed masked bracket(s)", ErrUnbalancedGroups, t.maskDepth)
	}
	if t.argPos != t.fr.Len() {
		return fmt.Errorf("traverse: %w: %d of %d args consumed", ErrTraversalIncomplete, t.argPos, t.fr.Len())
	}
	if t.transformPos != t.tr.Len() {
		return fmt.Errorf("traverse: %w: %d of %d transform floats consumed", ErrTraversalIncomplete, t.transformPos, t.tr.Len())
	}
	if uint32(len(t.paths)) != t.img.NumPaths {
		return fmt.Errorf("traverse: %w: %d path(s) seen, expected %d", ErrTraversalIncomplete, len(t.paths), t.img.NumPaths)
	}
	if uint32(len(t.paints)) != t.img.NumPaints {
		return fmt.Errorf("traverse: %w: %d paint(s) seen, expected %d", ErrTraversalIncomplete, len(t.paints), t.img.NumPaints)
	}

	v.EndVector()
	return nil
}

func (t *Traverser) readGroup(v Visitor, op byte) error {
	flags := decodeGroupOpcode(op)

	var transform *f64.Aff3
	if flags.hasTransform {
		if flags.hasTransformNumber {
			idx, err := ReadSmallishInt(t.br)
			if err != nil {
				return fmt.Errorf("traverse: group transform ref: %w", err)
			}
			if int(idx) >= len(t.transforms) {
				return fmt.Errorf("traverse: group: transform ref %d not yet seen", idx)
			}
			m := t.transforms[idx]
			transform = &m
		} else {
			m := t.tr.GetAffineAt(t.transformPos)
			t.transformPos += 6
			t.transforms = append(t.transforms, m)
			transform = &m
		}
	}

	var groupAlpha *float64
	if flags.hasGroupAlpha {
		a := t.nextArg()
		groupAlpha = &a
	}

	blendByte, err := t.br.ReadU8()
	if err != nil {
		return fmt.Errorf("traverse: group blend: %w", err)
	}

	t.groupDepth++
	v.Group(transform, groupAlpha, BlendMode(blendByte))
	return nil
}

func (t *Traverser) nextArg() float64 {
	v := t.fr.At(t.argPos)
	t.argPos++
	return v
}

func (t *Traverser) readPath(v Visitor, op byte) error {
	flags := decodePathOpcode(op)

	paint, err := t.readPaintRef(flags.hasPaintNumber)
	if err != nil {
		return fmt.Errorf("traverse: path: %w", err)
	}
	path, err := t.readPathRef(flags.hasPathNumber)
	if err != nil {
		return fmt.Errorf("traverse: path: %w", err)
	}
	v.Path(path, paint)
	return nil
}

func (t *Traverser) readClipPath(v Visitor, op byte) error {
	flags := decodeClipPathOpcode(op)
	path, err := t.readPathRef(flags.hasPathNumber)
	if err != nil {
		return fmt.Errorf("traverse: clip path: %w", err)
	}
	v.ClipPath(path)
	return nil
}

func (t *Traverser) readPaintRef(hasPaintNumber bool) (Paint, error) {
	if hasPaintNumber {
		idx, err := ReadSmallishInt(t.br)
		if err != nil {
			return Paint{}, fmt.Errorf("paint ref: %w", err)
		}
		if int(idx) >= len(t.paints) {
			return Paint{}, fmt.Errorf("paint ref %d not yet seen", idx)
		}
		return t.paints[idx], nil
	}
	p, err := ReadPaint(t.br, t.fr, &t.argPos)
	if err != nil {
		return Paint{}, fmt.Errorf("paint: %w", err)
	}
	t.paints = append(t.paints, p)
	return p, nil
}

func (t *Traverser) readPathRef(hasPathNumber bool) (PathHandle, error) {
	if hasPathNumber {
		idx, err := ReadSmallishInt(t.br)
		if err != nil {
			return PathHandle{}, fmt.Errorf("path ref: %w", err)
		}
		if int(idx) >= len(t.paths) {
			return PathHandle{}, fmt.Errorf("path ref %d not yet seen", idx)
		}
		return t.paths[idx], nil
	}
	bytePos := t.br.Position()
	argOffset := t.argPos
	consumed, err := DecodePath(t.br, t.fr, t.argPos, nullPathVisitor{})
	if err != nil {
		return PathHandle{}, fmt.Errorf("path body: %w", err)
	}
	t.argPos += consumed
	handle := PathHandle{br: t.br, fr: t.fr, bytePos: bytePos, argOffset: argOffset}
	t.paths = append(t.paths, handle)
	return handle, nil
}

func (t *Traverser) readText(v Visitor, op byte) error {
	flags := decodeTextOpcode(op)

	paint, err := t.readPaintRef(flags.hasPaintNumber)
	if err != nil {
		return fmt.Errorf("traverse: text: %w", err)
	}

	var attrs TextAttrs
	if flags.hasFontFamily {
		idx, err := ReadSmallishInt(t.br)
		if err != nil {
			return fmt.Errorf("traverse: text font family: %w", err)
		}
		if int(idx) >= len(t.img.Strings) {
			return fmt.Errorf("traverse: text: string ref %d out of range", idx)
		}
		attrs.FontFamily = t.img.Strings[idx]
	}
	x := t.nextArg()
	y := t.nextArg()
	attrs.FontSize = t.nextArg()

	styleByte, err := t.br.ReadU8()
	if err != nil {
		return fmt.Errorf("traverse: text style: %w", err)
	}
	attrs.Bold = styleByte&1 != 0
	attrs.Italic = styleByte&2 != 0
	v.Text(x, y, attrs)

	for {
		tag, err := t.br.ReadU8()
		if err != nil {
			return fmt.Errorf("traverse: text span: %w", err)
		}
		switch tag {
		case textEntryEnd:
			v.TextEnd()
			return nil
		case textEntrySpan, textEntryMultiSpan:
			idx, err := ReadSmallishInt(t.br)
			if err != nil {
				return fmt.Errorf("traverse: text span index: %w", err)
			}
			if int(idx) >= len(t.img.Strings) {
				return fmt.Errorf("traverse: text span: string ref %d out of range", idx)
			}
			content := t.img.Strings[idx]
			if tag == textEntrySpan {
				v.TextSpan(content)
			} else {
				v.TextMultiSpanChunk(content)
			}
		default:
			return fmt.Errorf("traverse: text span: %w: tag %d", ErrBadOpcode, tag)
		}
	}
}

func (t *Traverser) readMasked(v Visitor, op byte) {
	flags := decodeMaskedOpcode(op)
	var bounds *Rect
	if flags.hasBounds {
		r := Rect{Left: t.nextArg(), Top: t.nextArg(), Right: t.nextArg(), Bottom: t.nextArg()}
		bounds = &r
	}
	t.maskDepth++
	v.Masked(bounds, flags.usesLuma)
}
