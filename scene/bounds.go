package scene

import (
	"golang.org/x/image/math/f64"

	"github.com/DoodleSchrank/jovial-svg"
)

var identityAff3 = f64.Aff3{1, 0, 0, 0, 1, 0}

// Bounds computes doc's user-space bounding box. Resolve uses it only to
// fill in a document width/height that was not given; gradient
// coordinates are never resolved against it. An explicit document width/height wins outright; otherwise the box
// is the union of every node's post-transform bounds. Gradients, masks
// referenced only by id, and defs contents contribute nothing: none of
// them render on their own.
func Bounds(doc *Document, idLookup map[string]Node) si.Rect {
	if doc.Width != nil && doc.Height != nil {
		return si.Rect{Left: 0, Top: 0, Right: *doc.Width, Bottom: *doc.Height}
	}

	r := nodeBounds(doc.Root, identityAff3, idLookup, nil)
	if r.IsEmpty() {
		return si.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}
	}
	return r
}

// nodeBounds returns n's bounds in document space, with transform
// already composed down from every ancestor including n's own. refs
// tracks the use chain being walked, as in resolveUse.
func nodeBounds(n Node, transform f64.Aff3, idLookup map[string]Node, refs *Referrers) si.Rect {
	if n == nil {
		return si.EmptyRect()
	}

	switch t := n.(type) {
	case *GroupNode:
		if t.Defs {
			return si.EmptyRect()
		}
		own := composeAff3Ptr(transform, t.Attrs.Transform)
		out := si.EmptyRect()
		for _, c := range t.Children {
			out = out.Union(nodeBounds(c, own, idLookup, refs))
		}
		return out

	case *UseNode:
		target, ok := idLookup[t.ChildID]
		if !ok || t.ChildID == t.ID || refs.Contains("use:"+t.ChildID) {
			return si.EmptyRect()
		}
		own := composeAff3Ptr(transform, t.Attrs.Transform)
		return nodeBounds(target, own, idLookup, refs.Push("use:"+t.ChildID))

	case *MaskNode, *GradientNode:
		// Reference-only: never contribute directly to document bounds.
		return si.EmptyRect()

	case *ImageNode:
		if t.Width <= 0 || t.Height <= 0 {
			return si.EmptyRect()
		}
		own := composeAff3Ptr(transform, t.Attrs.Transform)
		return transformRect(own, t.X, t.Y, t.X+t.Width, t.Y+t.Height)

	case *PathNode, *RectNode, *EllipseNode, *PolyNode:
		pd, attrs := shapeGeometry(n)
		if pd == nil || pd.IsEmpty() {
			return si.EmptyRect()
		}
		own := composeAff3Ptr(transform, attrs.Transform)
		local := pd.Bounds()
		if local.IsEmpty() {
			return si.EmptyRect()
		}
		return transformRect(own, local.Left, local.Top, local.Right, local.Bottom)

	default:
		return si.EmptyRect()
	}
}

func composeAff3Ptr(parent f64.Aff3, child *f64.Aff3) f64.Aff3 {
	if child == nil {
		return parent
	}
	return composeAff3(parent, *child)
}

// composeAff3 returns the affine transform equivalent to applying b
// first, then a: composeAff3(a, b)(p) == a(b(p)).
func composeAff3(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3], a[0]*b[1] + a[1]*b[4], a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3], a[3]*b[1] + a[4]*b[4], a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

// transformRect unions the four transformed corners of the axis-aligned
// rect (left,top)-(right,bottom), since an affine transform can rotate
// or skew a box out of axis alignment.
func transformRect(m f64.Aff3, left, top, right, bottom float64) si.Rect {
	out := si.EmptyRect()
	corners := [4]si.Point{si.Pt(left, top), si.Pt(right, top), si.Pt(right, bottom), si.Pt(left, bottom)}
	for _, c := range corners {
		t := c.Transform(m)
		out = out.UnionPoint(t.X, t.Y)
	}
	return out
}
