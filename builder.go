package si

import (
	"fmt"

	"golang.org/x/image/math/f64"
)

// builderOptions configures a Builder. See BuilderOption.
type builderOptions struct {
	bigFloats bool
}

// BuilderOption configures a Builder at construction time.
type BuilderOption func(*builderOptions)

// WithBigFloats forces the Builder's args/transforms arrays to 64-bit
// storage. By default the Builder starts narrow and upgrades to 64-bit
// the first time a value fails to round-trip through float32,
// re-encoding everything written so far.
func WithBigFloats() BuilderOption {
	return func(o *builderOptions) { o.bigFloats = true }
}

type builderState int

const (
	stateStart builderState = iota
	stateVectorOpened
	stateVectorClosed
)

// PathData records a sequence of path-codec calls without immediately
// encoding them, so the Builder can compute a structural dedup key
// before deciding whether to write the path inline or as a
// back-reference.
type PathData struct {
	ops []func(*PathEncoder)
}

// NewPathData returns an empty, buildable path.
func NewPathData() *PathData { return &PathData{} }

func (p *PathData) record(f func(*PathEncoder)) { p.ops = append(p.ops, f) }

// IsEmpty reports whether any drawing command has been recorded yet.
func (p *PathData) IsEmpty() bool { return len(p.ops) == 0 }

func (p *PathData) MoveTo(x, y float64) { p.record(func(e *PathEncoder) { e.MoveTo(x, y) }) }
func (p *PathData) LineTo(x, y float64) { p.record(func(e *PathEncoder) { e.LineTo(x, y) }) }
func (p *PathData) CubicTo(x1, y1, x2, y2, x, y float64) {
	p.record(func(e *PathEncoder) { e.CubicTo(x1, y1, x2, y2, x, y) })
}
func (p *PathData) CubicToShorthand(x2, y2, x, y float64) {
	p.record(func(e *PathEncoder) { e.CubicToShorthand(x2, y2, x, y) })
}
func (p *PathData) QuadTo(x1, y1, x, y float64) {
	p.record(func(e *PathEncoder) { e.QuadTo(x1, y1, x, y) })
}
func (p *PathData) QuadToShorthand(x, y float64) {
	p.record(func(e *PathEncoder) { e.QuadToShorthand(x, y) })
}
func (p *PathData) Close() { p.record(func(e *PathEncoder) { e.Close() }) }
func (p *PathData) Circle(left, top, diameter float64) {
	p.record(func(e *PathEncoder) { e.Circle(left, top, diameter) })
}
func (p *PathData) Ellipse(left, top, width, height float64) {
	p.record(func(e *PathEncoder) { e.Ellipse(left, top, width, height) })
}
func (p *PathData) ArcToPoint(rx, ry, xRotation, endX, endY float64, large, sweepCW bool) {
	p.record(func(e *PathEncoder) { e.ArcToPoint(rx, ry, xRotation, endX, endY, large, sweepCW) })
}

func (p *PathData) encodeInto(bw *ByteWriter, fw *FloatWriter) {
	e := NewPathEncoder(bw, fw)
	for _, op := range p.ops {
		op(e)
	}
	e.End()
}

// Bounds returns the union of this path's control points: exact for
// MoveTo/LineTo/Circle/Ellipse, coarse (control points rather than true
// curve extent) for the cubic/quadratic commands. An arc contributes
// only its end point, so its bulge is not covered. Used by the
// scene resolver's bounding-box computation when no explicit document
// size is given.
func (p *PathData) Bounds() Rect {
	bw := NewByteWriter()
	fw := NewFloatWriter(true)
	p.encodeInto(bw, fw)

	br := NewByteReader(bw.Bytes())
	fr := NewFloatReader64(fw.Float64s())
	v := &pathBoundsVisitor{r: EmptyRect()}
	_, _ = DecodePath(br, fr, 0, v)
	return v.r
}

// pathBoundsVisitor accumulates a coarse bounding rect while replaying
// a decoded path stream.
type pathBoundsVisitor struct{ r Rect }

func (v *pathBoundsVisitor) MoveTo(x, y float64) { v.r = v.r.UnionPoint(x, y) }
func (v *pathBoundsVisitor) LineTo(x, y float64) { v.r = v.r.UnionPoint(x, y) }
func (v *pathBoundsVisitor) CubicTo(x1, y1, x2, y2, x, y float64) {
	v.r = v.r.UnionPoint(x1, y1).UnionPoint(x2, y2).UnionPoint(x, y)
}
func (v *pathBoundsVisitor) CubicToShorthand(x2, y2, x, y float64) {
	v.r = v.r.UnionPoint(x2, y2).UnionPoint(x, y)
}
func (v *pathBoundsVisitor) QuadTo(x1, y1, x, y float64) {
	v.r = v.r.UnionPoint(x1, y1).UnionPoint(x, y)
}
func (v *pathBoundsVisitor) QuadToShorthand(x, y float64) { v.r = v.r.UnionPoint(x, y) }
func (v *pathBoundsVisitor) Close()                       {}
func (v *pathBoundsVisitor) Circle(left, top, diameter float64) {
	v.r = v.r.UnionPoint(left, top).UnionPoint(left+diameter, top+diameter)
}
func (v *pathBoundsVisitor) Ellipse(left, top, w, h float64) {
	v.r = v.r.UnionPoint(left, top).UnionPoint(left+w, top+h)
}
func (v *pathBoundsVisitor) ArcToPoint(rx, ry, xRotation, endX, endY float64, large, sweepCW bool) {
	v.r = v.r.UnionPoint(endX, endY)
}
func (v *pathBoundsVisitor) End() {}

// key renders this path into a scratch buffer and returns a string
// usable as a structural dedup key. Using a full-precision (big-float)
// scratch writer means the key is independent of whatever width the
// real Builder ends up choosing.
func (p *PathData) key() string {
	bw := NewByteWriter()
	fw := NewFloatWriter(true)
	p.encodeInto(bw, fw)
	return string(bw.Bytes()) + "|" + floatsKey(fw.Float64s())
}

// paintKey renders a paint into a scratch buffer for use as a
// structural dedup key, the same technique PathData.key uses.
func paintKey(p Paint) string {
	bw := NewByteWriter()
	fw := NewFloatWriter(true)
	// Errors here can only come from a gradient stop that is itself a
	// gradient, which WritePaint would also reject for real; keying
	// degrades to treating the (invalid) paint as unique rather than
	// panicking, and the real WritePaint call below surfaces the error.
	_ = WritePaint(bw, fw, p)
	return string(bw.Bytes()) + "|" + floatsKey(fw.Float64s())
}

// Builder is the IR writer (spec component 4.4). It accepts scene
// events in left-to-right document order and produces a CompactImage.
// Builder is not safe for concurrent use; each document gets its own
// Builder.
type Builder struct {
	opts  builderOptions
	state builderState

	groupDepth int
	maskDepth  int

	bw *ByteWriter
	fw *FloatWriter
	tw *FloatWriter

	pathTable      *dedupTable[string]
	paintTable     *dedupTable[string]
	transformTable *dedupTable[f64.Aff3]

	strings    *StringTable
	floatLists *FloatListTable
	images     *ImageTable

	numPaths  uint32
	numPaints uint32

	width, height *float64
	tintColor     *uint32
	tintMode      TintMode
}

// NewBuilder creates a Builder ready to receive a Vector event.
func NewBuilder(opts ...BuilderOption) *Builder {
	var o builderOptions
	for _, opt := range opts {
		opt(&o)
	}
	b := &Builder{
		opts:           o,
		bw:             NewByteWriter(),
		fw:             NewFloatWriter(o.bigFloats),
		tw:             NewFloatWriter(o.bigFloats),
		pathTable:      newDedupTable[string](),
		paintTable:     newDedupTable[string](),
		transformTable: newDedupTable[f64.Aff3](),
		strings:        NewStringTable(),
		floatLists:     NewFloatListTable(),
		images:         NewImageTable(),
	}
	return b
}

func (b *Builder) requireState(want builderState, op string) {
	if b.state != want {
		panic(fmt.Sprintf("si: Builder.%s called in state %d, want %d", op, b.state, want))
	}
}

// Vector opens the document. Must be the first event.
func (b *Builder) Vector(width, height *float64, tintColor *uint32, tintMode TintMode) {
	b.requireState(stateStart, "Vector")
	b.width, b.height = width, height
	b.tintColor, b.tintMode = tintColor, tintMode
	b.state = stateVectorOpened
}

// upgradeToBig switches both the args and transforms float writers to
// 64-bit storage. big_floats is one flag shared by both arrays (spec
// §9: "a single generic over the float width; decide once at document
// load"), so an args value that doesn't fit in float32 upgrades the
// transforms array too, even though no transform value triggered it.
func (b *Builder) upgradeToBig() {
	if b.opts.bigFloats {
		return
	}
	b.fw.ToBig()
	b.tw.ToBig()
	b.opts.bigFloats = true
}

// putFloat writes v to b.fw, upgrading to 64-bit storage (both arrays)
// first if v would not survive the current narrow storage.
func (b *Builder) putFloat(v float64) int {
	if !b.opts.bigFloats && !fitsFloat32(v) {
		b.upgradeToBig()
	}
	idx, _ := b.fw.Put(v)
	return idx
}

// fitFloats upgrades to 64-bit storage first if pd or paint carries a
// float that would not survive float32.
func (b *Builder) fitFloats(pd *PathData, paint Paint) {
	if b.opts.bigFloats {
		return
	}
	fw := NewFloatWriter(true)
	pd.encodeInto(NewByteWriter(), fw)
	_ = WritePaint(NewByteWriter(), fw, paint)
	for _, v := range fw.Float64s() {
		if !fitsFloat32(v) {
			b.upgradeToBig()
			return
		}
	}
}

// internTransform returns the index of m in the transform dedup table,
// inserting it if new, and appends its 6 floats to the transforms
// array on first insertion.
func (b *Builder) internTransform(m f64.Aff3) (index uint32, isNew bool) {
	index, isNew = b.transformTable.AddOrGet(m)
	if isNew {
		if !b.opts.bigFloats {
			for _, v := range m {
				if !fitsFloat32(v) {
					b.upgradeToBig()
					break
				}
			}
		}
		b.tw.PutAffine(m)
	}
	return index, isNew
}

// Group pushes a group. transform may be nil (identity).
func (b *Builder) Group(transform *f64.Aff3, groupAlpha *float64, blend BlendMode) {
	if b.state != stateVectorOpened {
		panic("si: Builder.Group called outside an open vector")
	}
	var flags groupFlags
	var transformNumber uint32
	if transform != nil {
		flags.hasTransform = true
		idx, isNew := b.internTransform(*transform)
		transformNumber = idx
		flags.hasTransformNumber = !isNew
	}
	flags.hasGroupAlpha = groupAlpha != nil
	b.bw.WriteU8(encodeGroupOpcode(flags))
	if flags.hasTransform {
		if flags.hasTransformNumber {
			WriteSmallishInt(b.bw, transformNumber)
		}
		// Inline transforms were already appended to tw by
		// internTransform; nothing further to write into the byte
		// stream for that case.
	}
	if flags.hasGroupAlpha {
		b.putFloat(*groupAlpha)
	}
	b.bw.WriteU8(byte(blend))
	b.groupDepth++
}

// EndGroup closes the innermost open group.
func (b *Builder) EndGroup() {
	if b.groupDepth == 0 {
		panic("si: Builder.EndGroup called at depth 0")
	}
	b.bw.WriteU8(opEndGroup)
	b.groupDepth--
}

// Path emits a filled/stroked path. Structurally equal (pathData,
// paint) pairs share one inline encoding (spec invariant 8).
func (b *Builder) Path(pd *PathData, paint Paint) error {
	return b.emitPath(pd, paint)
}

// ClipPath emits a clip path. Clip paths share the same path dedup
// table as Path (a clip and a fill can reference the same geometry).
func (b *Builder) ClipPath(pd *PathData) error {
	if b.state != stateVectorOpened {
		panic("si: Builder.ClipPath called outside an open vector")
	}
	b.fitFloats(pd, Paint{})
	key := pd.key()
	idx, isNew := b.pathTable.AddOrGet(key)
	var flags clipPathFlags
	flags.hasPathNumber = !isNew
	b.bw.WriteU8(encodeClipPathOpcode(flags))
	if flags.hasPathNumber {
		WriteSmallishInt(b.bw, idx)
		return nil
	}
	pd.encodeInto(b.bw, b.fw)
	b.numPaths++
	return nil
}

func (b *Builder) emitPath(pd *PathData, paint Paint) error {
	if b.state != stateVectorOpened {
		panic("si: Builder.Path called outside an open vector")
	}
	b.fitFloats(pd, paint)
	pathKeyStr := pd.key()
	pathIdx, pathIsNew := b.pathTable.AddOrGet(pathKeyStr)

	pKey := paintKey(paint)
	paintIdx, paintIsNew := b.paintTable.AddOrGet(pKey)

	flags := pathFlags{
		hasPathNumber:   !pathIsNew,
		hasPaintNumber:  !paintIsNew,
		fillColorType:   paint.FillColor.Kind,
		strokeColorType: paint.StrokeColor.Kind,
	}
	b.bw.WriteU8(encodePathOpcode(flags))

	if flags.hasPaintNumber {
		WriteSmallishInt(b.bw, paintIdx)
	} else {
		if err := WritePaint(b.bw, b.fw, paint); err != nil {
			return err
		}
		b.numPaints++
	}

	if flags.hasPathNumber {
		WriteSmallishInt(b.bw, pathIdx)
		return nil
	}
	pd.encodeInto(b.bw, b.fw)
	b.numPaths++
	return nil
}

// InternImage canonicalizes img and returns its table index. Call
// Image with the returned number to emit the opcode.
func (b *Builder) InternImage(img ImageData) uint32 {
	return b.images.Intern(img)
}

// Image emits an IMAGE opcode referencing a previously interned image.
func (b *Builder) Image(imageNumber uint32) {
	b.bw.WriteU8(opImage)
	WriteSmallishInt(b.bw, imageNumber)
}

// Text opens a text run at (x, y) with the given paint and attributes.
func (b *Builder) Text(x, y float64, paint Paint, attrs TextAttrs) error {
	if b.state != stateVectorOpened {
		panic("si: Builder.Text called outside an open vector")
	}
	b.fitFloats(NewPathData(), paint)
	pKey := paintKey(paint)
	paintIdx, paintIsNew := b.paintTable.AddOrGet(pKey)

	flags := textFlags{
		hasPaintNumber:  !paintIsNew,
		hasFontFamily:   attrs.FontFamily != "",
		fillColorType:   paint.FillColor.Kind,
		strokeColorType: paint.StrokeColor.Kind,
	}
	b.bw.WriteU8(encodeTextOpcode(flags))
	if flags.hasPaintNumber {
		WriteSmallishInt(b.bw, paintIdx)
	} else {
		if err := WritePaint(b.bw, b.fw, paint); err != nil {
			return err
		}
		b.numPaints++
	}
	if flags.hasFontFamily {
		WriteSmallishInt(b.bw, b.strings.Intern(attrs.FontFamily))
	}
	b.putFloat(x)
	b.putFloat(y)
	b.putFloat(attrs.FontSize)
	var styleByte byte
	if attrs.Bold {
		styleByte |= 1
	}
	if attrs.Italic {
		styleByte |= 2
	}
	b.bw.WriteU8(styleByte)
	return nil
}

// Text span entry tags. A plain smallish-int string index would make a
// span's first entry (string index 0) byte-indistinguishable from
// TextEnd's sentinel, so each entry is tagged before its index.
const (
	textEntryEnd        = 0
	textEntrySpan       = 1
	textEntryMultiSpan  = 2
)

// TextSpan appends a run of text content to the current text opcode.
func (b *Builder) TextSpan(content string) {
	b.bw.WriteU8(textEntrySpan)
	idx := b.strings.Intern(content)
	WriteSmallishInt(b.bw, idx)
}

// TextMultiSpanChunk appends one chunk of a multi-span text run (e.g. a
// styled sub-range within a larger text block).
func (b *Builder) TextMultiSpanChunk(content string) {
	b.bw.WriteU8(textEntryMultiSpan)
	idx := b.strings.Intern(content)
	WriteSmallishInt(b.bw, idx)
}

// TextEnd closes the current text run.
func (b *Builder) TextEnd() {
	b.bw.WriteU8(textEntryEnd)
}

// Masked opens a mask bracket: a child subtree followed by a mask
// subtree, composited per usesLuma.
func (b *Builder) Masked(bounds *Rect, usesLuma bool) {
	if b.state != stateVectorOpened {
		panic("si: Builder.Masked called outside an open vector")
	}
	flags := maskedFlags{hasBounds: bounds != nil, usesLuma: usesLuma}
	b.bw.WriteU8(encodeMaskedOpcode(flags))
	if bounds != nil {
		b.putFloat(bounds.Left)
		b.putFloat(bounds.Top)
		b.putFloat(bounds.Right)
		b.putFloat(bounds.Bottom)
	}
	b.maskDepth++
}

// MaskedChild marks the boundary between a Masked bracket's content
// subtree and its mask subtree.
func (b *Builder) MaskedChild() {
	if b.maskDepth == 0 {
		panic("si: Builder.MaskedChild called outside a Masked bracket")
	}
	b.bw.WriteU8(opMaskedChild)
}

// EndMasked closes a Masked bracket opened by Masked.
func (b *Builder) EndMasked() {
	if b.maskDepth == 0 {
		panic("si: Builder.EndMasked called outside a Masked bracket")
	}
	b.bw.WriteU8(opEndMasked)
	b.maskDepth--
}

// EndVector finalizes the document, freezing the IR. No further events
// are accepted afterward.
func (b *Builder) EndVector() (*CompactImage, error) {
	b.requireState(stateVectorOpened, "EndVector")
	if b.groupDepth != 0 {
		return nil, fmt.Errorf("%w: %d unclosed group(s) at end_vector", ErrUnbalancedGroups, b.groupDepth)
	}
	b.state = stateVectorClosed

	img := &CompactImage{
		Width:      b.width,
		Height:     b.height,
		BigFloats:  b.opts.bigFloats,
		TintColor:  b.tintColor,
		TintMode:   b.tintMode,
		Children:   b.bw.Bytes(),
		Strings:    b.strings.Strings(),
		FloatLists: b.floatLists.Lists(),
		Images:     b.images.Images(),
		NumPaths:   b.numPaths,
		NumPaints:  b.numPaints,
	}
	if b.opts.bigFloats {
		img.Args = b.fw.Float64s()
		img.Transforms = b.tw.Float64s()
	} else {
		img.ArgsFloat32 = b.fw.Float32s()
		img.TransformsFloat32 = b.tw.Float32s()
	}
	return img, nil
}
