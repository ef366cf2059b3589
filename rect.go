package si

import "math"

// Rect is an axis-aligned bounding box in user-space coordinates.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// EmptyRect returns a rect that Union treats as "nothing yet": any rect
// unioned with it yields the other rect unchanged.
func EmptyRect() Rect {
	return Rect{
		Left:   math.Inf(1),
		Top:    math.Inf(1),
		Right:  math.Inf(-1),
		Bottom: math.Inf(-1),
	}
}

// IsEmpty reports whether r is the empty sentinel (no content has been
// unioned into it).
func (r Rect) IsEmpty() bool {
	return r.Left > r.Right || r.Top > r.Bottom
}

// Union returns the smallest rect containing both r and o.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	return Rect{
		Left:   math.Min(r.Left, o.Left),
		Top:    math.Min(r.Top, o.Top),
		Right:  math.Max(r.Right, o.Right),
		Bottom: math.Max(r.Bottom, o.Bottom),
	}
}

// UnionPoint extends r to include (x, y).
func (r Rect) UnionPoint(x, y float64) Rect {
	return r.Union(Rect{Left: x, Top: y, Right: x, Bottom: y})
}

// Width returns the rect's width. Negative if IsEmpty.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the rect's height. Negative if IsEmpty.
func (r Rect) Height() float64 { return r.Bottom - r.Top }
