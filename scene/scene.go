package scene

import "github.com/DoodleSchrank/jovial-svg"

// resolveOptions holds the configuration ResolveOption functions set.
type resolveOptions struct {
	idLookup   map[string]Node
	stylesheet *Stylesheet
	warn       func(Warning)
	builder    []si.BuilderOption
}

// ResolveOption configures a Resolve call, mirroring si.BuilderOption's
// functional-option shape (spec.md §10 Configuration).
type ResolveOption func(*resolveOptions)

// WithIDLookup installs the id → node map the resolver dereferences
// use/mask/gradient-parent references against. spec.md §4.6 says the
// resolver is handed this map, not that it builds it; IndexByID builds
// one from a raw tree for callers who don't already have one.
func WithIDLookup(lookup map[string]Node) ResolveOption {
	return func(o *resolveOptions) { o.idLookup = lookup }
}

// WithStylesheet installs the parsed stylesheet Pass A cascades
// against. A nil or omitted stylesheet behaves as an empty one.
func WithStylesheet(s *Stylesheet) ResolveOption {
	return func(o *resolveOptions) { o.stylesheet = s }
}

// WithWarnSink installs the callback that receives non-fatal resolve
// conditions (missing ids, cycles, dropped gradient stops). Distinct
// from si.Logger: warnings are data the caller asked for, not
// incidental diagnostics (spec.md §10).
func WithWarnSink(fn func(Warning)) ResolveOption {
	return func(o *resolveOptions) { o.warn = fn }
}

// WithBuilderOptions forwards options to the underlying si.Builder,
// e.g. si.WithBigFloats().
func WithBuilderOptions(opts ...si.BuilderOption) ResolveOption {
	return func(o *resolveOptions) { o.builder = append(o.builder, opts...) }
}

// Resolve normalizes doc's raw scene graph and drives an si.Builder,
// returning the finished CompactImage. This fuses spec.md §4.6's Pass A
// (stylesheet cascade) and Pass B (depth-first resolve) into a single
// recursive walk: Pass A's per-node cascade only depends on that node
// and its ancestors, already available at the point Pass B visits it,
// so there is no need for two separate tree walks. The "canonicalization
// pre-pass" spec.md §4.6 describes (a dry-run build assigning indices,
// then a real build using them) is likewise folded into one pass here:
// si.Builder's string/image/transform tables already assign sequential
// indices at first use during a normal build, which is exactly what a
// separate dry run would produce, so a second, real build pass re-doing
// that work would be redundant.
//
// Before the build, Resolve computes doc's bounds (spec.md §4.7) and
// caches them on doc.ResolvedBounds, backfilling Width/Height on the
// emitted vector event when the document didn't specify them. This
// runs against the raw node tree rather than the resolved one; for
// this node model the two give the same answer, since defs content,
// bare mask nodes, and gradient nodes already contribute nothing to
// either tree's bounds (see DESIGN.md).
func Resolve(doc *Document, opts ...ResolveOption) (*si.CompactImage, error) {
	var o resolveOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.idLookup == nil {
		o.idLookup = make(map[string]Node)
	}
	if o.stylesheet == nil {
		o.stylesheet = NewStylesheet()
	}

	bounds := Bounds(doc, o.idLookup)
	doc.ResolvedBounds = &bounds

	width, height := doc.Width, doc.Height
	if width == nil {
		w := bounds.Width()
		width = &w
	}
	if height == nil {
		h := bounds.Height()
		height = &h
	}

	b := si.NewBuilder(o.builder...)
	b.Vector(width, height, doc.TintColor, doc.TintMode)

	ctx := &resolveCtx{idLookup: o.idLookup, stylesheet: o.stylesheet, warn: o.warn, builder: b}
	root := resolveNode(doc.Root, PaintAttrs{}, nil, ctx)
	if err := buildInto(b, root); err != nil {
		return nil, err
	}
	return b.EndVector()
}
