// Package scene holds the pre-IR scene graph and its resolver: the
// mutable tree a caller's own parser builds (group/use/mask/gradient/
// shape/image nodes with a CSS-like class-based cascade) and the
// depth-first pass that normalizes it into calls against an si.Builder.
package scene

import (
	"golang.org/x/image/math/f64"

	"github.com/DoodleSchrank/jovial-svg"
)

// NodeKind identifies a concrete Node variant for the resolver's
// dispatch switch.
type NodeKind int

const (
	KindGroup NodeKind = iota
	KindUse
	KindMask
	KindGradient
	KindPath
	KindRect
	KindEllipse
	KindPoly
	KindImage
)

// Node is one entity in the raw scene graph, as a caller's own parser
// (XML or otherwise) would construct it. Resolve walks a tree of these
// and drives an si.Builder; Node itself carries no resolution state.
type Node interface {
	Kind() NodeKind
	NodeID() string
	StyleClass() string
}

// Base carries the two attributes every node kind has: an optional id
// (referenced by use/mask/gradient-parent) and a whitespace-separated
// set of style-class tokens.
type Base struct {
	ID    string
	Class string
}

func (b Base) NodeID() string     { return b.ID }
func (b Base) StyleClass() string { return b.Class }

// ColorRefKind selects what a ColorRef points at.
type ColorRefKind uint8

const (
	ColorRefNone ColorRefKind = iota
	ColorRefExplicit
	ColorRefCurrent
	ColorRefGradient
)

// ColorRef is a not-yet-resolved color: either a concrete value or a
// reference to a GradientNode by id, resolved inline when the paint
// that carries it is resolved (spec.md §4.6: "the gradient itself is
// consumed inline as part of any paint that references it").
type ColorRef struct {
	Kind       ColorRefKind
	ARGB       uint32
	GradientID string
}

func SolidRef(argb uint32) *ColorRef       { return &ColorRef{Kind: ColorRefExplicit, ARGB: argb} }
func NoneRef() *ColorRef                   { return &ColorRef{Kind: ColorRefNone} }
func CurrentRef() *ColorRef                { return &ColorRef{Kind: ColorRefCurrent} }
func GradientRef(id string) *ColorRef      { return &ColorRef{Kind: ColorRefGradient, GradientID: id} }

// PaintAttrs is the cascadable paint half of a node's attributes: every
// field is a pointer (or nil slice) so "unset" is distinguishable from
// "explicitly set," which is what the orInherit cascade in stylesheet.go
// and the ancestor-paint cascade in resolver.go both depend on.
type PaintAttrs struct {
	Fill             *ColorRef
	Stroke           *ColorRef
	StrokeWidth      *float64
	StrokeMiterLimit *float64
	StrokeJoin       *si.StrokeJoin
	StrokeCap        *si.StrokeCap
	FillRule         *si.FillType
	DashArray        []float64
	DashOffset       *float64
}

// orInherit returns a copy of p with every field p left nil filled in
// from ancestor. p's own fields always win.
func (p PaintAttrs) orInherit(ancestor PaintAttrs) PaintAttrs {
	out := p
	if out.Fill == nil {
		out.Fill = ancestor.Fill
	}
	if out.Stroke == nil {
		out.Stroke = ancestor.Stroke
	}
	if out.StrokeWidth == nil {
		out.StrokeWidth = ancestor.StrokeWidth
	}
	if out.StrokeMiterLimit == nil {
		out.StrokeMiterLimit = ancestor.StrokeMiterLimit
	}
	if out.StrokeJoin == nil {
		out.StrokeJoin = ancestor.StrokeJoin
	}
	if out.StrokeCap == nil {
		out.StrokeCap = ancestor.StrokeCap
	}
	if out.FillRule == nil {
		out.FillRule = ancestor.FillRule
	}
	if out.DashArray == nil {
		out.DashArray = ancestor.DashArray
	}
	if out.DashOffset == nil {
		out.DashOffset = ancestor.DashOffset
	}
	return out
}

// ShapeAttrs is the non-paint cascadable attribute set shared by group,
// use, and every shape node kind.
type ShapeAttrs struct {
	Transform *f64.Aff3
	Alpha     *float64
	Blend     *si.BlendMode
	Paint     PaintAttrs
	MaskID    string
}

func (a ShapeAttrs) orInherit(ancestor ShapeAttrs) ShapeAttrs {
	out := a
	if out.Transform == nil {
		out.Transform = ancestor.Transform
	}
	if out.Alpha == nil {
		out.Alpha = ancestor.Alpha
	}
	if out.Blend == nil {
		out.Blend = ancestor.Blend
	}
	out.Paint = out.Paint.orInherit(ancestor.Paint)
	if out.MaskID == "" {
		out.MaskID = ancestor.MaskID
	}
	return out
}

// GroupNode is <g>/root/<defs>. Defs marks a node that resolves its
// children (for warning surfacing) but never itself contributes output;
// its children exist to be dereferenced by id from elsewhere in the
// tree.
type GroupNode struct {
	Base
	Defs     bool
	Children []Node
	Attrs    ShapeAttrs
}

func (*GroupNode) Kind() NodeKind { return KindGroup }

// UseNode is <use>: a reference to another node by id, wrapped in its
// own transform/alpha/paint.
type UseNode struct {
	Base
	ChildID string
	Attrs   ShapeAttrs
}

func (*UseNode) Kind() NodeKind { return KindUse }

// MaskNode is <mask>. It is never emitted directly; it is only resolved
// when some other node's MaskID points at it.
type MaskNode struct {
	Base
	Children []Node
	Bounds   *si.Rect // nil: derive from content at materialization time
}

func (*MaskNode) Kind() NodeKind { return KindMask }

// GradientNode is a gradient definition (linear/radial/sweep). It never
// contributes output on its own; a paint's ColorRef dereferences it by
// id. Fields left at their zero value fall back to the node named by
// ParentID (spec.md §4.6: "inherited geometry falls back to parent's").
// The Has* flags distinguish "explicitly zero" from "unset, inherit."
type GradientNode struct {
	Base
	ParentID string

	GradientKind         si.GradientKind
	HasGradientKind      bool
	ObjectBoundingBox    bool
	HasObjectBoundingBox bool
	Spread               si.SpreadMethod
	HasSpread            bool
	Transform            *f64.Aff3
	Stops                []si.GradientStop
	HasStops             bool

	X1, Y1, X2, Y2 float64
	HasLinearGeom  bool

	CX, CY, R, FX, FY float64
	HasRadialGeom     bool

	StartAngle, EndAngle float64
	HasSweepGeom         bool
}

func (*GradientNode) Kind() NodeKind { return KindGradient }

// PathNode carries a caller-built path directly (no path-string
// parsing: that belongs to the XML layer this module doesn't have).
type PathNode struct {
	Base
	Attrs ShapeAttrs
	Path  *si.PathData
}

func (*PathNode) Kind() NodeKind { return KindPath }

// RectNode is <rect>, with optional rounded corners.
type RectNode struct {
	Base
	Attrs              ShapeAttrs
	X, Y, Width, Height float64
	RX, RY             float64
}

func (*RectNode) Kind() NodeKind { return KindRect }

// EllipseNode is <ellipse>/<circle> (RX == RY for a circle).
type EllipseNode struct {
	Base
	Attrs      ShapeAttrs
	CX, CY     float64
	RX, RY     float64
}

func (*EllipseNode) Kind() NodeKind { return KindEllipse }

// PolyNode is <polygon>/<polyline>. Closed distinguishes the two: a
// polygon implicitly closes back to its first point.
type PolyNode struct {
	Base
	Attrs  ShapeAttrs
	Points []float64 // x0,y0,x1,y1,...
	Closed bool
}

func (*PolyNode) Kind() NodeKind { return KindPoly }

// ImageNode is <image>: a placed, already-encoded raster blob. Decoding
// it is out of scope; the bytes pass through to the IR's image table
// untouched.
type ImageNode struct {
	Base
	Attrs               ShapeAttrs
	X, Y, Width, Height float64
	Encoded             []byte
}

func (*ImageNode) Kind() NodeKind { return KindImage }

// Document is the top-level unit Resolve consumes: a root node plus the
// document-level attributes spec.md §4.4's vector event carries.
type Document struct {
	Root          Node
	Width, Height *float64
	TintColor     *uint32
	TintMode      si.TintMode

	// ResolvedBounds is filled in by Resolve (spec.md §4.7/§9: "compute
	// bounds once... cache on the root") and left nil until then.
	ResolvedBounds *si.Rect
}

// IndexByID walks root once and collects every node with a non-empty
// id into a lookup map, the form Resolve's WithIDLookup option expects.
// Supplements spec.md §4.6, which specifies the resolver is handed this
// map without specifying how a caller builds it.
func IndexByID(root Node) map[string]Node {
	out := make(map[string]Node)
	var walk func(Node)
	walk = func(n Node) {
		if n == nil {
			return
		}
		if id := n.NodeID(); id != "" {
			out[id] = n
		}
		switch t := n.(type) {
		case *GroupNode:
			for _, c := range t.Children {
				walk(c)
			}
		case *MaskNode:
			for _, c := range t.Children {
				walk(c)
			}
		}
	}
	walk(root)
	return out
}
