package scene

import (
	"golang.org/x/image/math/f64"

	"github.com/DoodleSchrank/jovial-svg"
)

// Warning is a non-fatal resolve-time condition: a missing id
// reference, a detected cycle, or a malformed attribute the resolver
// degraded gracefully from rather than failing the whole build.
type Warning struct {
	Message string
	NodeID  string
}

// resolveCtx carries the per-Resolve-call configuration threaded
// through the recursion: the id lookup, the stylesheet, the warning
// sink, and the Builder the document is emitted into.
type resolveCtx struct {
	idLookup   map[string]Node
	stylesheet *Stylesheet
	warn       func(Warning)
	builder    *si.Builder
}

func (c *resolveCtx) warnf(nodeID, msg string) {
	if c.warn != nil {
		c.warn(Warning{Message: msg, NodeID: nodeID})
		return
	}
	si.Logger().Warn(msg, "nodeID", nodeID)
}

func tagName(n Node) string {
	switch n.(type) {
	case *GroupNode:
		return "group"
	case *UseNode:
		return "use"
	case *MaskNode:
		return "mask"
	case *GradientNode:
		return "gradient"
	case *PathNode:
		return "path"
	case *RectNode:
		return "rect"
	case *EllipseNode:
		return "ellipse"
	case *PolyNode:
		return "poly"
	case *ImageNode:
		return "image"
	default:
		return ""
	}
}

// cascadedAttrs applies spec.md §4.6 Pass A to n (the node's own
// attrs win over matching style rules) and returns the attrs ready to
// cascade against the ancestor paint in Pass B.
func cascadedAttrs(n Node, own ShapeAttrs, ctx *resolveCtx) ShapeAttrs {
	style := ctx.stylesheet.Apply(tagName(n), splitClasses(n.StyleClass()))
	return own.orInherit(style)
}

// resolveNode is the Pass B depth-first resolve. ancestorPaint is the
// cascaded paint inherited from enclosing nodes; refs tracks the
// use/mask/gradient-parent chain currently being resolved so cycles are
// caught rather than recursing forever.
func resolveNode(n Node, ancestorPaint PaintAttrs, refs *Referrers, ctx *resolveCtx) resolved {
	if n == nil {
		return nil
	}
	switch t := n.(type) {
	case *GroupNode:
		return resolveGroup(t, ancestorPaint, refs, ctx)
	case *UseNode:
		return resolveUse(t, ancestorPaint, refs, ctx)
	case *MaskNode:
		// A mask encountered directly in the main tree (not via a
		// MaskID reference) contributes nothing of its own; it is only
		// ever meaningful when dereferenced (see maybeWrapMask).
		return nil
	case *GradientNode:
		// Gradients are consumed inline by resolveColor, never emitted.
		return nil
	case *PathNode, *RectNode, *EllipseNode, *PolyNode:
		return resolveShape(n, ancestorPaint, refs, ctx)
	case *ImageNode:
		return resolveImage(t, refs, ctx)
	default:
		return nil
	}
}

func resolveGroup(g *GroupNode, ancestorPaint PaintAttrs, refs *Referrers, ctx *resolveCtx) resolved {
	attrs := cascadedAttrs(g, g.Attrs, ctx)
	cascadedPaint := attrs.Paint.orInherit(ancestorPaint)

	if attrs.Transform != nil && determinant(*attrs.Transform) == 0 {
		ctx.warnf(g.ID, "group transform has zero determinant, pruned")
		return nil
	}

	var children []resolved
	for _, c := range g.Children {
		if r := resolveNode(c, cascadedPaint, refs, ctx); r != nil {
			children = append(children, r)
		}
	}

	if g.Defs {
		// Children were still resolved above (for warning surfacing);
		// a defs node itself is reference-only and returns null.
		return nil
	}
	if len(children) == 0 {
		return nil
	}

	group := &resolvedGroup{Transform: attrs.Transform, Alpha: attrs.Alpha, Blend: blendOrDefault(attrs.Blend), Children: children}
	return maybeWrapMask(group, attrs.MaskID, refs, ctx)
}

func resolveUse(u *UseNode, ancestorPaint PaintAttrs, refs *Referrers, ctx *resolveCtx) resolved {
	if u.ChildID == "" || u.ChildID == u.ID || refs.Contains("use:"+u.ChildID) {
		ctx.warnf(u.ID, "use references missing, self, or cyclic id "+u.ChildID)
		return nil
	}
	target, ok := ctx.idLookup[u.ChildID]
	if !ok {
		ctx.warnf(u.ID, "use target id not found: "+u.ChildID)
		return nil
	}

	attrs := cascadedAttrs(u, u.Attrs, ctx)
	cascadedPaint := attrs.Paint.orInherit(ancestorPaint)

	newRefs := refs.Push("use:" + u.ChildID)
	resolvedTarget := resolveNode(target, cascadedPaint, newRefs, ctx)
	if resolvedTarget == nil {
		return nil
	}

	wrapped := &resolvedGroup{Transform: attrs.Transform, Alpha: attrs.Alpha, Blend: blendOrDefault(attrs.Blend), Children: []resolved{resolvedTarget}}
	return maybeWrapMask(wrapped, attrs.MaskID, refs, ctx)
}

func resolveShape(n Node, ancestorPaint PaintAttrs, refs *Referrers, ctx *resolveCtx) resolved {
	pd, own := shapeGeometry(n)
	if pd == nil || pd.IsEmpty() {
		return nil
	}

	attrs := cascadedAttrs(n, own, ctx)
	cascadedPaint := attrs.Paint.orInherit(ancestorPaint)
	paint := resolvePaint(cascadedPaint, refs, ctx)

	shape := &resolvedPath{Path: pd, Paint: paint}
	wrapped := wrapIfNeeded(attrs.Transform, attrs.Alpha, blendOrDefault(attrs.Blend), shape)
	return maybeWrapMask(wrapped, attrs.MaskID, refs, ctx)
}

func resolveImage(img *ImageNode, refs *Referrers, ctx *resolveCtx) resolved {
	if img.Width <= 0 || img.Height <= 0 {
		return nil
	}
	attrs := cascadedAttrs(img, img.Attrs, ctx)
	r := &resolvedImage{Image: si.ImageData{X: img.X, Y: img.Y, Width: img.Width, Height: img.Height, Encoded: img.Encoded}}
	wrapped := wrapIfNeeded(attrs.Transform, attrs.Alpha, blendOrDefault(attrs.Blend), r)
	return maybeWrapMask(wrapped, attrs.MaskID, refs, ctx)
}

// shapeGeometry converts a shape node's own geometry fields into a
// PathData plus its (pre-cascade) attrs. Returns a nil PathData for a
// node kind with no convertible geometry.
func shapeGeometry(n Node) (*si.PathData, ShapeAttrs) {
	switch t := n.(type) {
	case *PathNode:
		return t.Path, t.Attrs
	case *RectNode:
		if t.Width <= 0 || t.Height <= 0 {
			return nil, t.Attrs
		}
		return rectPath(t.X, t.Y, t.Width, t.Height, t.RX, t.RY), t.Attrs
	case *EllipseNode:
		if t.RX <= 0 || t.RY <= 0 {
			return nil, t.Attrs
		}
		pd := si.NewPathData()
		pd.Ellipse(t.CX-t.RX, t.CY-t.RY, 2*t.RX, 2*t.RY)
		return pd, t.Attrs
	case *PolyNode:
		if len(t.Points) < 4 {
			return nil, t.Attrs
		}
		pd := si.NewPathData()
		pd.MoveTo(t.Points[0], t.Points[1])
		for i := 2; i+1 < len(t.Points); i += 2 {
			pd.LineTo(t.Points[i], t.Points[i+1])
		}
		if t.Closed {
			pd.Close()
		}
		return pd, t.Attrs
	default:
		return nil, ShapeAttrs{}
	}
}

// rectPath builds a (possibly rounded-corner) rectangle path. rx/ry <=
// 0 yields a plain four-sided rectangle.
func rectPath(x, y, w, h, rx, ry float64) *si.PathData {
	pd := si.NewPathData()
	if rx <= 0 || ry <= 0 {
		pd.MoveTo(x, y)
		pd.LineTo(x+w, y)
		pd.LineTo(x+w, y+h)
		pd.LineTo(x, y+h)
		pd.Close()
		return pd
	}
	if rx > w/2 {
		rx = w / 2
	}
	if ry > h/2 {
		ry = h / 2
	}
	pd.MoveTo(x+rx, y)
	pd.LineTo(x+w-rx, y)
	pd.ArcToPoint(rx, ry, 0, x+w, y+ry, false, true)
	pd.LineTo(x+w, y+h-ry)
	pd.ArcToPoint(rx, ry, 0, x+w-rx, y+h, false, true)
	pd.LineTo(x+rx, y+h)
	pd.ArcToPoint(rx, ry, 0, x, y+h-ry, false, true)
	pd.LineTo(x, y+ry)
	pd.ArcToPoint(rx, ry, 0, x+rx, y, false, true)
	pd.Close()
	return pd
}

// maybeWrapMask wraps r in a Masked bracket when maskID is set and
// resolves, per spec.md §4.6 "Mask materialization." A missing or
// cyclic mask reference degrades to leaving r unmasked, with a warning
// — the same missing-reference policy resolveUse applies.
func maybeWrapMask(r resolved, maskID string, refs *Referrers, ctx *resolveCtx) resolved {
	if maskID == "" {
		return r
	}
	node, ok := ctx.idLookup[maskID]
	if !ok {
		ctx.warnf(maskID, "mask target id not found")
		return r
	}
	m, ok := node.(*MaskNode)
	if !ok {
		ctx.warnf(maskID, "mask target is not a mask node")
		return r
	}
	content, usesLuma, ok := resolveMaskContent(m, refs, ctx)
	if !ok {
		return r
	}
	var bounds *si.Rect
	if m.Bounds != nil {
		bounds = m.Bounds
	}
	return &resolvedMasked{Bounds: bounds, UsesLuma: usesLuma, Child: r, Mask: content}
}

// resolveMaskContent resolves a mask node's own subtree under a fresh
// Referrers frame (self-containment is a cycle through "mask:" + id),
// using default (unset) ancestor paint since a mask's content paints
// independently of whatever it's masking.
func resolveMaskContent(m *MaskNode, refs *Referrers, ctx *resolveCtx) (resolved, bool, bool) {
	if refs.Contains("mask:" + m.ID) {
		ctx.warnf(m.ID, "mask is self-contained, ignored")
		return nil, false, false
	}
	newRefs := refs.Push("mask:" + m.ID)
	var children []resolved
	for _, c := range m.Children {
		if r := resolveNode(c, PaintAttrs{}, newRefs, ctx); r != nil {
			children = append(children, r)
		}
	}
	if len(children) == 0 {
		return nil, false, false
	}
	content := &resolvedGroup{Blend: si.BlendNormal, Children: children}
	return content, CanUseLuma(m), true
}

// CanUseLuma decides whether a mask's content can be composited via
// luminance (grayscale-derived alpha) rather than requiring the
// content's own alpha channel directly. spec.md §4.6 names this as a
// hint surfaced on the masked event; supplemented here as its own
// function (spec.md §12) so it is independently testable. A mask uses
// luma when every leaf paint it contains paints an opaque, non-gradient
// solid color: a gradient or partial-alpha fill means the alpha
// channel itself already carries the intended mask shape and luma
// derivation would double-apply it.
func CanUseLuma(m *MaskNode) bool {
	ok := true
	var walk func(Node)
	walk = func(n Node) {
		switch t := n.(type) {
		case *GroupNode:
			for _, c := range t.Children {
				walk(c)
			}
		case *MaskNode:
			for _, c := range t.Children {
				walk(c)
			}
		case *PathNode:
			checkLumaPaint(t.Attrs.Paint, &ok)
		case *RectNode:
			checkLumaPaint(t.Attrs.Paint, &ok)
		case *EllipseNode:
			checkLumaPaint(t.Attrs.Paint, &ok)
		case *PolyNode:
			checkLumaPaint(t.Attrs.Paint, &ok)
		}
	}
	walk(m)
	return ok
}

func checkLumaPaint(p PaintAttrs, ok *bool) {
	for _, c := range []*ColorRef{p.Fill, p.Stroke} {
		if c == nil {
			continue
		}
		if c.Kind == ColorRefGradient || (c.Kind == ColorRefExplicit && c.ARGB>>24 != 0xff) {
			*ok = false
		}
	}
}

// resolvePaint turns cascaded PaintAttrs into a concrete si.Paint,
// dereferencing any gradient color references along the way.
func resolvePaint(p PaintAttrs, refs *Referrers, ctx *resolveCtx) si.Paint {
	out := si.NewPaint()
	if p.Fill != nil {
		out.FillColor = resolveColor(p.Fill, refs, ctx)
	}
	if p.Stroke != nil {
		out.StrokeColor = resolveColor(p.Stroke, refs, ctx)
	}
	if p.StrokeWidth != nil {
		out.StrokeWidth = p.StrokeWidth
	}
	if p.StrokeMiterLimit != nil {
		out.StrokeMiterLimit = p.StrokeMiterLimit
	}
	if p.StrokeJoin != nil {
		out.StrokeJoin = *p.StrokeJoin
	}
	if p.StrokeCap != nil {
		out.StrokeCap = *p.StrokeCap
	}
	if p.FillRule != nil {
		out.FillType = *p.FillRule
	}
	if p.DashArray != nil {
		out.StrokeDashArray = p.DashArray
		if p.DashOffset != nil {
			out.StrokeDashOffset = *p.DashOffset
		}
	}
	return out
}

func resolveColor(ref *ColorRef, refs *Referrers, ctx *resolveCtx) si.SIColor {
	switch ref.Kind {
	case ColorRefNone:
		return si.NoneColor()
	case ColorRefCurrent:
		return si.CurrentColor()
	case ColorRefExplicit:
		return si.SIColor{Kind: si.ColorExplicit, ARGB: ref.ARGB}
	case ColorRefGradient:
		g, ok := resolveGradientChain(ref.GradientID, refs, ctx)
		if !ok {
			return si.NoneColor()
		}
		return si.SIColor{Kind: si.ColorGradient, Gradient: g}
	default:
		return si.NoneColor()
	}
}

// resolveGradientChain walks a gradient's ParentID chain with cycle
// detection, filling in geometry/stops/spread left unset on id from its
// parent (spec.md §4.6: "inherited geometry falls back to parent's").
func resolveGradientChain(id string, refs *Referrers, ctx *resolveCtx) (*si.Gradient, bool) {
	if refs.Contains("gradient:" + id) {
		ctx.warnf(id, "gradient parent chain is cyclic")
		return nil, false
	}
	node, ok := ctx.idLookup[id]
	if !ok {
		ctx.warnf(id, "gradient id not found: "+id)
		return nil, false
	}
	gn, ok := node.(*GradientNode)
	if !ok {
		ctx.warnf(id, "id does not name a gradient")
		return nil, false
	}

	var parent *si.Gradient
	if gn.ParentID != "" {
		newRefs := refs.Push("gradient:" + id)
		parent, _ = resolveGradientChain(gn.ParentID, newRefs, ctx)
	}

	g := &si.Gradient{}
	switch {
	case gn.HasGradientKind:
		g.Kind = gn.GradientKind
	case parent != nil:
		g.Kind = parent.Kind
	}
	switch {
	case gn.HasObjectBoundingBox:
		g.ObjectBoundingBox = gn.ObjectBoundingBox
	case parent != nil:
		g.ObjectBoundingBox = parent.ObjectBoundingBox
	}
	switch {
	case gn.HasSpread:
		g.Spread = gn.Spread
	case parent != nil:
		g.Spread = parent.Spread
	}
	if gn.Transform != nil {
		g.Transform = &si.AffineRef{Inline: aff3ToArray(*gn.Transform)}
	} else if parent != nil {
		g.Transform = parent.Transform
	}
	switch {
	case gn.HasStops:
		g.Stops = validStops(gn.Stops, ctx, id)
	case parent != nil:
		g.Stops = parent.Stops
	}
	switch {
	case gn.HasLinearGeom:
		g.X1, g.Y1, g.X2, g.Y2 = gn.X1, gn.Y1, gn.X2, gn.Y2
	case parent != nil:
		g.X1, g.Y1, g.X2, g.Y2 = parent.X1, parent.Y1, parent.X2, parent.Y2
	}
	switch {
	case gn.HasRadialGeom:
		g.CX, g.CY, g.R, g.FX, g.FY = gn.CX, gn.CY, gn.R, gn.FX, gn.FY
	case parent != nil:
		g.CX, g.CY, g.R, g.FX, g.FY = parent.CX, parent.CY, parent.R, parent.FX, parent.FY
	}
	switch {
	case gn.HasSweepGeom:
		g.StartAngle, g.EndAngle = gn.StartAngle, gn.EndAngle
	case parent != nil:
		g.StartAngle, g.EndAngle = parent.StartAngle, parent.EndAngle
	}
	return g, true
}

// validStops drops any stop whose color is itself a gradient, per the
// invariant si.WriteColor enforces at build time (spec.md §3: "color
// type 3 inside a gradient stop is forbidden").
func validStops(stops []si.GradientStop, ctx *resolveCtx, id string) []si.GradientStop {
	out := make([]si.GradientStop, 0, len(stops))
	for _, s := range stops {
		if s.Color.Kind == si.ColorGradient {
			ctx.warnf(id, "gradient stop color must not itself be a gradient, stop dropped")
			continue
		}
		out = append(out, s)
	}
	return out
}

func aff3ToArray(m f64.Aff3) [6]float64 { return [6]float64(m) }

func determinant(m f64.Aff3) float64 { return m[0]*m[4] - m[1]*m[3] }
