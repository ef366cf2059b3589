package si

// TintMode selects how an optional post-composite tint color combines
// with the rendered content, mirroring the handful of blend modes a
// tint realistically needs (full Porter-Duff/advanced-blend coverage
// belongs to the renderer, not this format).
type TintMode uint8

const (
	TintSrcOver TintMode = iota
	TintSrcIn
	TintSrcATop
	TintMultiply
	TintScreen
)

// CompactImage is the decoded, immutable-after-build IR entity (spec's
// "compact image"). It is produced by Builder.EndVector and consumed by
// a Traverser.
type CompactImage struct {
	Width, Height   *float64 // nil if unset
	BigFloats       bool
	TintColor       *uint32 // argb, nil if unset
	TintMode        TintMode
	Children        []byte
	Args            []float64
	Transforms      []float64 // 6 floats per transform
	Strings         []string
	FloatLists      [][]float64
	Images          []ImageData
	NumPaths        uint32
	NumPaints       uint32
	ArgsFloat32     []float32 // populated instead of Args when !BigFloats
	TransformsFloat32 []float32
}

// argsReader returns a FloatReader over the args array at whichever
// width this image was built with.
func (c *CompactImage) argsReader() *FloatReader {
	if c.BigFloats {
		return NewFloatReader64(c.Args)
	}
	return NewFloatReader32(c.ArgsFloat32)
}

func (c *CompactImage) transformsReader() *FloatReader {
	if c.BigFloats {
		return NewFloatReader64(c.Transforms)
	}
	return NewFloatReader32(c.TransformsFloat32)
}

// Stats reports dedup-table diagnostics, mirroring the kind of
// size/capacity accessors a resource-pool-backed encoder exposes so
// callers can tell whether sharing is actually happening.
type Stats struct {
	PathCount      uint32
	PaintCount     uint32
	TransformCount int
	StringCount    int
	FloatListCount int
	ImageCount     int
	ChildBytes     int
	ArgCount       int
}

// Stats computes diagnostic counts over the built image.
func (c *CompactImage) Stats() Stats {
	transformCount := len(c.Transforms) / 6
	if !c.BigFloats {
		transformCount = len(c.TransformsFloat32) / 6
	}
	argCount := len(c.Args)
	if !c.BigFloats {
		argCount = len(c.ArgsFloat32)
	}
	return Stats{
		PathCount:      c.NumPaths,
		PaintCount:     c.NumPaints,
		TransformCount: transformCount,
		StringCount:    len(c.Strings),
		FloatListCount: len(c.FloatLists),
		ImageCount:     len(c.Images),
		ChildBytes:     len(c.Children),
		ArgCount:       argCount,
	}
}
