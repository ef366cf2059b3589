package scene

import (
	"testing"

	"golang.org/x/image/math/f64"
)

func TestBoundsExplicitSizeWins(t *testing.T) {
	w, h := 200.0, 150.0
	doc := &Document{Root: &GroupNode{}, Width: &w, Height: &h}
	r := Bounds(doc, nil)
	if r.Right != w || r.Bottom != h {
		t.Fatalf("expected explicit size %vx%v, got %+v", w, h, r)
	}
}

func TestBoundsEmptyDocumentFallsBackTo100(t *testing.T) {
	doc := &Document{Root: &GroupNode{}}
	r := Bounds(doc, nil)
	if r.Left != 0 || r.Top != 0 || r.Right != 100 || r.Bottom != 100 {
		t.Fatalf("expected (0,0,100,100) fallback, got %+v", r)
	}
}

func TestBoundsUnionsShapeGeometry(t *testing.T) {
	doc := &Document{Root: &GroupNode{Children: []Node{
		rectNode("a", 10, 10),
		&RectNode{X: 50, Y: 50, Width: 10, Height: 10},
	}}}
	r := Bounds(doc, nil)
	if r.Left != 0 || r.Top != 0 || r.Right != 60 || r.Bottom != 60 {
		t.Fatalf("expected union bounds (0,0,60,60), got %+v", r)
	}
}

func TestBoundsAppliesGroupTransform(t *testing.T) {
	translate := f64.Aff3{1, 0, 100, 0, 1, 0}
	doc := &Document{Root: &GroupNode{
		Attrs:    ShapeAttrs{Transform: &translate},
		Children: []Node{&RectNode{Width: 10, Height: 10}},
	}}
	r := Bounds(doc, nil)
	if r.Left != 100 || r.Right != 110 {
		t.Fatalf("expected translated bounds starting at x=100, got %+v", r)
	}
}

func TestBoundsDefsContributesNothing(t *testing.T) {
	doc := &Document{Root: &GroupNode{Defs: true, Children: []Node{
		&RectNode{Width: 10, Height: 10},
	}}}
	r := Bounds(doc, nil)
	if r.Right != 100 || r.Bottom != 100 {
		t.Fatalf("expected defs content excluded, fell back to default, got %+v", r)
	}
}
