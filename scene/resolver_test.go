package scene

import (
	"testing"

	"golang.org/x/image/math/f64"

	"github.com/DoodleSchrank/jovial-svg"
)

func rectNode(id string, w, h float64) *RectNode {
	return &RectNode{Base: Base{ID: id}, Width: w, Height: h}
}

func TestResolveGroupPrunesEmptyChildren(t *testing.T) {
	g := &GroupNode{Children: []Node{&RectNode{Width: 0, Height: 0}}}
	ctx := &resolveCtx{idLookup: map[string]Node{}, stylesheet: NewStylesheet()}
	if r := resolveNode(g, PaintAttrs{}, nil, ctx); r != nil {
		t.Fatalf("expected a group with only empty children to resolve to nil, got %v", r)
	}
}

func TestResolveGroupPrunesZeroDeterminantTransform(t *testing.T) {
	zero := f64.Aff3{0, 0, 0, 0, 0, 0}
	g := &GroupNode{
		Attrs:    ShapeAttrs{Transform: &zero},
		Children: []Node{rectNode("a", 10, 10)},
	}
	var warned bool
	ctx := &resolveCtx{idLookup: map[string]Node{}, stylesheet: NewStylesheet(), warn: func(Warning) { warned = true }}
	if r := resolveNode(g, PaintAttrs{}, nil, ctx); r != nil {
		t.Fatalf("expected zero-determinant group to be pruned, got %v", r)
	}
	if !warned {
		t.Fatal("expected a warning for the pruned zero-determinant transform")
	}
}

func TestResolveDefsAlwaysNull(t *testing.T) {
	g := &GroupNode{Defs: true, Children: []Node{rectNode("a", 10, 10)}}
	ctx := &resolveCtx{idLookup: map[string]Node{"a": nil}, stylesheet: NewStylesheet()}
	if r := resolveNode(g, PaintAttrs{}, nil, ctx); r != nil {
		t.Fatalf("expected defs node to resolve to nil, got %v", r)
	}
}

func TestResolveUseMissingTargetDegradesToNil(t *testing.T) {
	u := &UseNode{ChildID: "missing"}
	ctx := &resolveCtx{idLookup: map[string]Node{}, stylesheet: NewStylesheet()}
	if r := resolveNode(u, PaintAttrs{}, nil, ctx); r != nil {
		t.Fatalf("expected use of missing id to resolve to nil, got %v", r)
	}
}

func TestResolveUseSelfReferenceDegradesToNil(t *testing.T) {
	u := &UseNode{Base: Base{ID: "a"}, ChildID: "a"}
	ctx := &resolveCtx{idLookup: map[string]Node{"a": u}, stylesheet: NewStylesheet()}
	if r := resolveNode(u, PaintAttrs{}, nil, ctx); r != nil {
		t.Fatalf("expected self-referential use to resolve to nil, got %v", r)
	}
}

func TestResolveUseResolvesTarget(t *testing.T) {
	target := rectNode("target", 10, 10)
	u := &UseNode{ChildID: "target"}
	ctx := &resolveCtx{idLookup: map[string]Node{"target": target}, stylesheet: NewStylesheet()}
	r := resolveNode(u, PaintAttrs{}, nil, ctx)
	g, ok := r.(*resolvedGroup)
	if !ok || len(g.Children) != 1 {
		t.Fatalf("expected use to resolve into a one-child wrapper group, got %#v", r)
	}
}

func TestResolveShapeEmptyGeometryIsNull(t *testing.T) {
	ctx := &resolveCtx{idLookup: map[string]Node{}, stylesheet: NewStylesheet()}
	if r := resolveNode(rectNode("a", 0, 5), PaintAttrs{}, nil, ctx); r != nil {
		t.Fatalf("expected zero-width rect to resolve to nil, got %v", r)
	}
}

func TestResolveImageNonPositiveSizeIsNull(t *testing.T) {
	ctx := &resolveCtx{idLookup: map[string]Node{}, stylesheet: NewStylesheet()}
	img := &ImageNode{Width: 0, Height: 10}
	if r := resolveNode(img, PaintAttrs{}, nil, ctx); r != nil {
		t.Fatalf("expected non-positive image dims to resolve to nil, got %v", r)
	}
}

func TestMaskMaterializationWrapsChild(t *testing.T) {
	mask := &MaskNode{Base: Base{ID: "m"}, Children: []Node{rectNode("mc", 10, 10)}}
	shape := rectNode("s", 10, 10)
	shape.Attrs.MaskID = "m"
	ctx := &resolveCtx{idLookup: map[string]Node{"m": mask}, stylesheet: NewStylesheet()}

	r := resolveNode(shape, PaintAttrs{}, nil, ctx)
	masked, ok := r.(*resolvedMasked)
	if !ok {
		t.Fatalf("expected mask to wrap shape in resolvedMasked, got %#v", r)
	}
	if masked.Child == nil || masked.Mask == nil {
		t.Fatalf("expected both child and mask content populated, got %#v", masked)
	}
}

func TestMaskSelfContainmentIgnored(t *testing.T) {
	mask := &MaskNode{Base: Base{ID: "m"}}
	use := &UseNode{ChildID: "inner"}
	mask.Children = []Node{use}
	inner := rectNode("inner", 10, 10)
	inner.Attrs.MaskID = "m"

	ctx := &resolveCtx{idLookup: map[string]Node{"m": mask, "inner": inner}, stylesheet: NewStylesheet()}
	r := resolveNode(inner, PaintAttrs{}, nil, ctx)
	if _, ok := r.(*resolvedMasked); ok {
		t.Fatal("expected self-containing mask reference to be ignored, not materialized")
	}
}

func TestCanUseLumaFalseForGradientFill(t *testing.T) {
	mask := &MaskNode{Children: []Node{
		&PathNode{Attrs: ShapeAttrs{Paint: PaintAttrs{Fill: GradientRef("g")}}},
	}}
	if CanUseLuma(mask) {
		t.Fatal("expected gradient fill to disqualify luma masking")
	}
}

func TestCanUseLumaTrueForSolidFills(t *testing.T) {
	mask := &MaskNode{Children: []Node{
		&PathNode{Attrs: ShapeAttrs{Paint: PaintAttrs{Fill: SolidRef(0xffffffff)}}},
		&RectNode{Attrs: ShapeAttrs{Paint: PaintAttrs{Fill: SolidRef(0xff000000)}}},
	}}
	if !CanUseLuma(mask) {
		t.Fatal("expected solid opaque fills to allow luma masking")
	}
}

func TestResolveGradientChainInheritsFromParent(t *testing.T) {
	parent := &GradientNode{
		Base:          Base{ID: "p"},
		HasLinearGeom: true, X1: 0, Y1: 0, X2: 10, Y2: 0,
		HasStops: true, Stops: []si.GradientStop{{Offset: 0, Color: si.SolidColor(0xff, 0xff, 0, 0)}},
	}
	child := &GradientNode{
		Base:     Base{ID: "c"},
		ParentID: "p",
	}
	ctx := &resolveCtx{idLookup: map[string]Node{"p": parent, "c": child}, stylesheet: NewStylesheet()}

	g, ok := resolveGradientChain("c", nil, ctx)
	if !ok {
		t.Fatal("expected chain to resolve")
	}
	if g.X2 != 10 {
		t.Fatalf("expected inherited linear geometry, got X2=%v", g.X2)
	}
	if len(g.Stops) != 1 {
		t.Fatalf("expected inherited stops, got %v", g.Stops)
	}
}

func TestResolveGradientChainCyclicDegrades(t *testing.T) {
	a := &GradientNode{Base: Base{ID: "a"}, ParentID: "b"}
	b := &GradientNode{Base: Base{ID: "b"}, ParentID: "a"}
	ctx := &resolveCtx{idLookup: map[string]Node{"a": a, "b": b}, stylesheet: NewStylesheet()}

	// b's parent reference back to a is the one found on the Referrers
	// stack, so it is treated as missing and a still resolves.
	if g, ok := resolveGradientChain("a", nil, ctx); !ok || g == nil {
		t.Fatal("expected cyclic gradient parent chain to resolve with the cyclic reference dropped")
	}
}

func TestValidStopsDropsNestedGradientColor(t *testing.T) {
	stops := []si.GradientStop{
		{Offset: 0, Color: si.SolidColor(0xffffffff)},
		{Offset: 1, Color: si.SIColor{Kind: si.ColorGradient}},
	}
	ctx := &resolveCtx{}
	out := validStops(stops, ctx, "g")
	if len(out) != 1 {
		t.Fatalf("expected nested gradient stop dropped, got %d stops", len(out))
	}
}

func TestRectPathPlainVsRounded(t *testing.T) {
	plain := rectPath(0, 0, 10, 10, 0, 0)
	rounded := rectPath(0, 0, 10, 10, 2, 2)
	if plain.IsEmpty() || rounded.IsEmpty() {
		t.Fatal("expected both rect paths to be non-empty")
	}
}
