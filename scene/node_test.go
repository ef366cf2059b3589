package scene

import "testing"

func TestPaintAttrsOrInherit(t *testing.T) {
	width := 2.0
	ancestorWidth := 5.0
	ancestorFill := SolidRef(0xff0000ff)

	own := PaintAttrs{StrokeWidth: &width}
	ancestor := PaintAttrs{Fill: ancestorFill, StrokeWidth: &ancestorWidth}

	out := own.orInherit(ancestor)
	if out.StrokeWidth != &width {
		t.Fatalf("own field should win, got %v", out.StrokeWidth)
	}
	if out.Fill != ancestorFill {
		t.Fatalf("unset field should inherit from ancestor, got %v", out.Fill)
	}
}

func TestShapeAttrsOrInheritMaskID(t *testing.T) {
	own := ShapeAttrs{}
	ancestor := ShapeAttrs{MaskID: "m1"}
	out := own.orInherit(ancestor)
	if out.MaskID != "m1" {
		t.Fatalf("expected inherited mask id, got %q", out.MaskID)
	}

	own2 := ShapeAttrs{MaskID: "m2"}
	out2 := own2.orInherit(ancestor)
	if out2.MaskID != "m2" {
		t.Fatalf("own mask id should win, got %q", out2.MaskID)
	}
}

func TestIndexByID(t *testing.T) {
	leaf := &PathNode{Base: Base{ID: "leaf"}}
	mask := &MaskNode{Base: Base{ID: "m"}, Children: []Node{&PathNode{Base: Base{ID: "maskContent"}}}}
	root := &GroupNode{
		Base:     Base{ID: "root"},
		Children: []Node{leaf, mask, &PathNode{}},
	}

	idx := IndexByID(root)
	for _, id := range []string{"root", "leaf", "m", "maskContent"} {
		if _, ok := idx[id]; !ok {
			t.Errorf("expected id %q in index", id)
		}
	}
	if len(idx) != 4 {
		t.Errorf("expected 4 indexed ids (unnamed node excluded), got %d", len(idx))
	}
}
