package scene

import (
	"golang.org/x/image/math/f64"

	"github.com/DoodleSchrank/jovial-svg"
)

// resolved is the normalized, already-pruned render tree the resolver
// produces from a raw Node tree. It exists so group pruning (spec.md
// §4.6: "prune children that resolve to null") can be decided before
// anything is written to the Builder; the IR has no way to retract an
// emitted opcode, so the decision has to be made on a side tree first.
type resolved interface{ isResolved() }

type resolvedGroup struct {
	Transform *f64.Aff3
	Alpha     *float64
	Blend     si.BlendMode
	Children  []resolved
}

func (*resolvedGroup) isResolved() {}

type resolvedMasked struct {
	Bounds   *si.Rect
	UsesLuma bool
	Child    resolved
	Mask     resolved
}

func (*resolvedMasked) isResolved() {}

type resolvedPath struct {
	Path  *si.PathData
	Paint si.Paint
}

func (*resolvedPath) isResolved() {}

type resolvedImage struct {
	Image si.ImageData
}

func (*resolvedImage) isResolved() {}

// wrapIfNeeded wraps child in a synthetic group carrying transform/
// alpha/blend when any of the three is non-default, since the IR has
// no per-shape transform/alpha/blend: those only exist on the GROUP
// opcode. A shape or <use> with its own transform/alpha/blend gets
// promoted into an enclosing group the same way mask materialization
// promotes a masked node's attributes (spec.md §4.6, "Mask
// materialization").
func wrapIfNeeded(transform *f64.Aff3, alpha *float64, blend si.BlendMode, child resolved) resolved {
	if transform == nil && alpha == nil && blend == si.BlendNormal {
		return child
	}
	return &resolvedGroup{Transform: transform, Alpha: alpha, Blend: blend, Children: []resolved{child}}
}

func blendOrDefault(b *si.BlendMode) si.BlendMode {
	if b == nil {
		return si.BlendNormal
	}
	return *b
}

// buildInto drives b through r's events in document order.
func buildInto(b *si.Builder, r resolved) error {
	switch t := r.(type) {
	case nil:
		return nil
	case *resolvedGroup:
		b.Group(t.Transform, t.Alpha, t.Blend)
		for _, c := range t.Children {
			if err := buildInto(b, c); err != nil {
				return err
			}
		}
		b.EndGroup()
	case *resolvedMasked:
		b.Masked(t.Bounds, t.UsesLuma)
		if err := buildInto(b, t.Child); err != nil {
			return err
		}
		b.MaskedChild()
		if err := buildInto(b, t.Mask); err != nil {
			return err
		}
		b.EndMasked()
	case *resolvedPath:
		if err := b.Path(t.Path, t.Paint); err != nil {
			return err
		}
	case *resolvedImage:
		idx := b.InternImage(t.Image)
		b.Image(idx)
	}
	return nil
}
