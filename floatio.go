package si

import (
	"golang.org/x/image/math/f64"
)

// FloatWriter is an append-only sink for the IR's parallel float arrays
// (args and transforms). It can be backed by either float32 or float64
// storage; the width is chosen at construction and a float32-backed
// writer can later be widened in place with ToBig.
type FloatWriter struct {
	big   bool
	f32   []float32
	f64   []float64
}

// NewFloatWriter creates a float sink. If big is false, Put reports via
// its fits result whether each value round-tripped through float32.
func NewFloatWriter(big bool) *FloatWriter {
	w := &FloatWriter{big: big}
	if big {
		w.f64 = make([]float64, 0, 16)
	} else {
		w.f32 = make([]float32, 0, 16)
	}
	return w
}

// Big reports whether this writer is backed by float64 storage.
func (w *FloatWriter) Big() bool { return w.big }

// Len returns the number of floats written so far.
func (w *FloatWriter) Len() int {
	if w.big {
		return len(w.f64)
	}
	return len(w.f32)
}

// Put appends v, returning the index it was written at and whether v
// round-tripped exactly through the writer's current width. When big is
// true the round trip always succeeds. When big is false and v does not
// fit in a float32 without loss, the value is still appended (truncated)
// but fits is false. The Builder does not rely on this result: it checks
// values with fitsFloat32 and widens with ToBig before writing them.
func (w *FloatWriter) Put(v float64) (index int, fits bool) {
	if w.big {
		w.f64 = append(w.f64, v)
		return len(w.f64) - 1, true
	}
	f := float32(v)
	w.f32 = append(w.f32, f)
	return len(w.f32) - 1, float64(f) == v
}

// PutAffine appends a 6-float affine transform and returns the index of
// its first component. The other five occupy the next five indices.
func (w *FloatWriter) PutAffine(m f64.Aff3) (index int, fits bool) {
	fits = true
	index, ok := w.Put(m[0])
	fits = fits && ok
	for _, v := range m[1:] {
		_, ok := w.Put(v)
		fits = fits && ok
	}
	return index, fits
}

// ToBig converts a float32-backed writer to float64 backing in place,
// preserving every value written so far exactly (the upgrade is lossless
// in this direction). Called by the Builder when a value it is about to
// write does not fit in float32 and BigFloats was not already forced.
func (w *FloatWriter) ToBig() {
	if w.big {
		return
	}
	f64s := make([]float64, len(w.f32))
	for i, f := range w.f32 {
		f64s[i] = float64(f)
	}
	w.f64 = f64s
	w.f32 = nil
	w.big = true
}

// Float32s returns the accumulated float32 values. Valid only when
// Big() is false.
func (w *FloatWriter) Float32s() []float32 { return w.f32 }

// Float64s returns the accumulated float64 values. Valid only when
// Big() is true.
func (w *FloatWriter) Float64s() []float64 { return w.f64 }

// FloatReader provides indexed access into a decoded float array, backed
// by either width depending on the envelope's big_floats flag.
type FloatReader struct {
	big bool
	f32 []float32
	f64 []float64
}

// NewFloatReader32 wraps a float32-backed array for reading.
func NewFloatReader32(vals []float32) *FloatReader {
	return &FloatReader{f32: vals}
}

// NewFloatReader64 wraps a float64-backed array for reading.
func NewFloatReader64(vals []float64) *FloatReader {
	return &FloatReader{big: true, f64: vals}
}

// Len returns the number of floats available.
func (r *FloatReader) Len() int {
	if r.big {
		return len(r.f64)
	}
	return len(r.f32)
}

// At returns the value at index i as a float64, regardless of backing
// width.
func (r *FloatReader) At(i int) float64 {
	if r.big {
		return r.f64[i]
	}
	return float64(r.f32[i])
}

// GetAffineAt decodes the 6-float affine transform starting at offset as
// an f64.Aff3, widening from float32 storage if necessary.
func (r *FloatReader) GetAffineAt(offset int) f64.Aff3 {
	var m f64.Aff3
	for i := 0; i < 6; i++ {
		m[i] = r.At(offset + i)
	}
	return m
}

// fitsFloat32 reports whether v can be represented in a float32 without
// loss. Exposed for the Builder's float-array width decision.
func fitsFloat32(v float64) bool {
	return float64(float32(v)) == v
}
