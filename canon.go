package si

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// dedupTable is an insertion-ordered map from a structural key to the
// sequential index it was first seen at. The writer emits the existing
// index on a hit and appends a new one on a miss; this is the shape
// every dedup table in the Builder shares (paths, paints, transforms,
// strings, float-lists, images).
type dedupTable[K comparable] struct {
	index map[K]uint32
	order []K
}

func newDedupTable[K comparable]() *dedupTable[K] {
	return &dedupTable[K]{index: make(map[K]uint32)}
}

// AddOrGet returns the index assigned to key, inserting it at the next
// sequential slot if this is the first time key has been seen.
func (t *dedupTable[K]) AddOrGet(key K) (index uint32, isNew bool) {
	if idx, ok := t.index[key]; ok {
		return idx, false
	}
	idx := uint32(len(t.order))
	t.index[key] = idx
	t.order = append(t.order, key)
	return idx, true
}

// Len returns the number of distinct entries recorded so far.
func (t *dedupTable[K]) Len() int { return len(t.order) }

// Ordered returns the entries in insertion order, i.e. indexable by the
// index AddOrGet returned.
func (t *dedupTable[K]) Ordered() []K { return t.order }

// floatsKey renders a float64 slice into a string usable as a dedup map
// key, keyed by exact bit pattern so NaN/−0 don't silently collide with
// unrelated values.
func floatsKey(vals []float64) string {
	var b strings.Builder
	for i, v := range vals {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(math.Float64bits(v), 16))
	}
	return b.String()
}

// StringTable interns strings by NFC-normalized structural equality, so
// two source spellings of the same string (precomposed vs. combining
// accent sequence) intern to the same slot.
type StringTable struct {
	t *dedupTable[string]
}

func NewStringTable() *StringTable {
	return &StringTable{t: newDedupTable[string]()}
}

// Intern returns the canonical index for s, normalizing first.
func (st *StringTable) Intern(s string) uint32 {
	idx, _ := st.t.AddOrGet(norm.NFC.String(s))
	return idx
}

// Strings returns the interned strings in index order.
func (st *StringTable) Strings() []string { return st.t.Ordered() }

// FloatListTable interns []float64 slices by exact value-sequence
// equality.
type FloatListTable struct {
	t *dedupTable[string]
	// lists holds the actual slices in insertion order, parallel to the
	// dedup table's key order, since the key itself is a lossy string
	// rendering and callers need the original values back.
	lists [][]float64
}

func NewFloatListTable() *FloatListTable {
	return &FloatListTable{t: newDedupTable[string]()}
}

// Intern returns the canonical index for vals.
func (ft *FloatListTable) Intern(vals []float64) uint32 {
	key := floatsKey(vals)
	idx, isNew := ft.t.AddOrGet(key)
	if isNew {
		cp := make([]float64, len(vals))
		copy(cp, vals)
		ft.lists = append(ft.lists, cp)
	}
	return idx
}

// Lists returns the interned float lists in index order.
func (ft *FloatListTable) Lists() [][]float64 { return ft.lists }

// ImageData is a single interned raster image reference: its placement
// rectangle plus opaque encoded bytes (PNG/JPEG/etc — decoding them is
// explicitly out of scope).
type ImageData struct {
	X, Y, Width, Height float64
	Encoded             []byte
}

// ImageTable interns ImageData keyed on the encoded bytes plus the
// placement box (x,y,w,h): two placements of the same source image at
// different boxes are intentionally treated as distinct entries, since
// the box is part of the image opcode's payload, not an independently
// shareable resource.
type ImageTable struct {
	t      *dedupTable[string]
	images []ImageData
}

func NewImageTable() *ImageTable {
	return &ImageTable{t: newDedupTable[string]()}
}

// Intern returns the canonical index for img.
func (it *ImageTable) Intern(img ImageData) uint32 {
	key := imageKey(img)
	idx, isNew := it.t.AddOrGet(key)
	if isNew {
		it.images = append(it.images, img)
	}
	return idx
}

func imageKey(img ImageData) string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(math.Float64bits(img.X), 16))
	b.WriteByte(',')
	b.WriteString(strconv.FormatUint(math.Float64bits(img.Y), 16))
	b.WriteByte(',')
	b.WriteString(strconv.FormatUint(math.Float64bits(img.Width), 16))
	b.WriteByte(',')
	b.WriteString(strconv.FormatUint(math.Float64bits(img.Height), 16))
	b.WriteByte(',')
	b.Write(img.Encoded)
	return b.String()
}

// Images returns the interned images in index order.
func (it *ImageTable) Images() []ImageData { return it.images }
