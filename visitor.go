package si

import "golang.org/x/image/math/f64"

// TextAttrs carries the minimal text attributes a visitor needs to lay
// out a span: the font family (an opaque string — shaping it is the
// renderer's job), size, and the two boolean style axes this format
// tracks explicitly.
type TextAttrs struct {
	FontFamily string
	FontSize   float64
	Bold       bool
	Italic     bool
}

// PathHandle lets a Visitor walk a path's commands without the
// Traverser exposing its internal reader state directly. On a
// back-reference hit the handle points at the original path's saved
// position; on a miss it points at the freshly written one. Either way
// Walk replays the exact same command sequence.
type PathHandle struct {
	br        *ByteReader
	fr        *FloatReader
	bytePos   int
	argOffset int
}

// Walk decodes this path's commands into v. It does not disturb the
// Traverser's forward reading position: it operates on a position
// snapshot, not the live reader.
func (h PathHandle) Walk(v PathVisitor) error {
	br := NewByteReader(h.br.buf)
	br.Seek(h.bytePos)
	_, err := DecodePath(br, h.fr, h.argOffset, v)
	return err
}

// Visitor receives the sequence of decoded events a Traverser produces,
// in the order spec.md §6.3 defines. A renderer implements every
// method; a bounds-collector can implement only the geometric ones and
// no-op the rest.
type Visitor interface {
	Init(strings []string, floatLists [][]float64, images []ImageData)
	Vector(width, height *float64, tintColor *uint32, tintMode TintMode)
	Group(transform *f64.Aff3, groupAlpha *float64, blend BlendMode)
	EndGroup()
	Path(path PathHandle, paint Paint)
	ClipPath(path PathHandle)
	Image(imageNumber uint32)
	Text(x, y float64, attrs TextAttrs)
	TextSpan(content string)
	TextMultiSpanChunk(content string)
	TextEnd()
	Masked(bounds *Rect, usesLuma bool)
	MaskedChild()
	EndMasked()
	EndVector()
}

// NullVisitor implements Visitor with no-op methods. Embed it to
// implement only the events a particular consumer (e.g. a bounds
// collector) cares about.
type NullVisitor struct{}

func (NullVisitor) Init(strings []string, floatLists [][]float64, images []ImageData) {}
func (NullVisitor) Vector(width, height *float64, tintColor *uint32, tintMode TintMode) {}
func (NullVisitor) Group(transform *f64.Aff3, groupAlpha *float64, blend BlendMode)      {}
func (NullVisitor) EndGroup()                                                           {}
func (NullVisitor) Path(path PathHandle, paint Paint)                                    {}
func (NullVisitor) ClipPath(path PathHandle)                                             {}
func (NullVisitor) Image(imageNumber uint32)                                             {}
func (NullVisitor) Text(x, y float64, attrs TextAttrs)                                   {}
func (NullVisitor) TextSpan(content string)                                              {}
func (NullVisitor) TextMultiSpanChunk(content string)                                    {}
func (NullVisitor) TextEnd()                                                             {}
func (NullVisitor) Masked(bounds *Rect, usesLuma bool)                                   {}
func (NullVisitor) MaskedChild()                                                         {}
func (NullVisitor) EndMasked()                                                           {}
func (NullVisitor) EndVector()                                                           {}
