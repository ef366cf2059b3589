package si

import (
	"bytes"
	"errors"
	"testing"
)

// TestEnvelopeScenarioA round-trips the empty-document scenario
// through Encode/Decode: header flags has_width=has_height=1,
// big_floats=0, has_tint=0, every table zero-count, no children.
func TestEnvelopeScenarioA(t *testing.T) {
	b := NewBuilder()
	width, height := 100.0, 50.0
	b.Vector(&width, &height, nil, TintSrcOver)
	img, err := b.EndVector()
	if err != nil {
		t.Fatalf("EndVector() error = %v", err)
	}

	blob := Encode(img)
	if err := Validate(blob); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(blob) < headerSize {
		t.Fatalf("blob length = %d, want at least %d", len(blob), headerSize)
	}
	flags := blob[7]
	if flags&envFlagHasWidth == 0 || flags&envFlagHasHeight == 0 {
		t.Errorf("flags = %#x, want has_width and has_height set", flags)
	}
	if flags&envFlagBigFloats != 0 {
		t.Errorf("flags = %#x, want big_floats unset", flags)
	}
	if flags&envFlagHasTint != 0 {
		t.Errorf("flags = %#x, want has_tint unset", flags)
	}

	got, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Width == nil || *got.Width != 100 || got.Height == nil || *got.Height != 50 {
		t.Errorf("width/height = %v/%v, want 100/50", got.Width, got.Height)
	}
	if got.NumPaths != 0 || got.NumPaints != 0 {
		t.Errorf("numPaths=%d numPaints=%d, want 0,0", got.NumPaths, got.NumPaints)
	}
	if len(got.Children) != 0 {
		t.Errorf("children length = %d, want 0", len(got.Children))
	}

	rec := &recordingVisitor{}
	if err := NewTraverser(got).Run(rec); err != nil {
		t.Fatalf("Run() on decoded image error = %v", err)
	}
	want := []string{"Init(0,0,0)", "Vector(100,50)", "EndVector()"}
	assertCalls(t, rec.calls, want)
}

// TestEnvelopeScenarioF checks that a version field beyond what this
// build understands is rejected without attempting to parse the body.
func TestEnvelopeScenarioF(t *testing.T) {
	b := NewBuilder()
	b.Vector(nil, nil, nil, TintSrcOver)
	img, err := b.EndVector()
	if err != nil {
		t.Fatalf("EndVector() error = %v", err)
	}
	blob := Encode(img)
	blob[5] = 0x00
	blob[6] = 0x02 // version = 2, beyond CurrentVersion

	if _, err := Decode(blob); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("Decode() error = %v, want ErrUnsupportedVersion", err)
	}
	if err := Validate(blob); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("Validate() error = %v, want ErrUnsupportedVersion", err)
	}
}

// TestEnvelopeBadMagicRejected checks that a corrupted magic number is
// rejected by both Decode and Validate.
func TestEnvelopeBadMagicRejected(t *testing.T) {
	b := NewBuilder()
	b.Vector(nil, nil, nil, TintSrcOver)
	img, _ := b.EndVector()
	blob := Encode(img)
	blob[0] ^= 0xff

	if _, err := Decode(blob); !errors.Is(err, ErrMalformedHeader) {
		t.Errorf("Decode() error = %v, want ErrMalformedHeader", err)
	}
	if err := Validate(blob); !errors.Is(err, ErrMalformedHeader) {
		t.Errorf("Validate() error = %v, want ErrMalformedHeader", err)
	}
}

// TestEnvelopeTruncatedRejected checks that a blob shorter than its
// declared float-array lengths is rejected by Validate without a full
// decode, and by Decode itself.
func TestEnvelopeTruncatedRejected(t *testing.T) {
	b := NewBuilder()
	b.Vector(nil, nil, nil, TintSrcOver)
	paint := NewPaint()
	paint.FillColor = SolidColor(0xff, 0xff, 0, 0)
	if err := b.Path(rectanglePath(), paint); err != nil {
		t.Fatalf("Path() error = %v", err)
	}
	img, err := b.EndVector()
	if err != nil {
		t.Fatalf("EndVector() error = %v", err)
	}
	blob := Encode(img)
	// Cut the blob off partway through the declared float arrays: the
	// header says there are several floats, but only one is actually
	// present.
	truncated := blob[:headerSize+4]

	if err := Validate(truncated); !errors.Is(err, ErrTruncated) {
		t.Errorf("Validate() error = %v, want ErrTruncated", err)
	}
	if _, err := Decode(truncated); err == nil {
		t.Error("Decode() succeeded on truncated blob, want an error")
	}
}

// TestEnvelopeRoundTripWithContent exercises Encode(Decode(x)) ==
// Encode(x) for a document with paths, paint, tables, and a group.
func TestEnvelopeRoundTripWithContent(t *testing.T) {
	b := NewBuilder()
	width, height := 64.0, 64.0
	tint := uint32(0xff112233)
	b.Vector(&width, &height, &tint, TintMultiply)
	b.Group(nil, nil, BlendScreen)

	paint := NewPaint()
	paint.FillColor = SolidColor(0xff, 0x11, 0x22, 0x33)
	fontAttrs := TextAttrs{FontFamily: "Sans", FontSize: 12, Bold: true}
	if err := b.Text(1, 2, paint, fontAttrs); err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	b.TextSpan("hello")
	b.TextEnd()

	if err := b.Path(rectanglePath(), paint); err != nil {
		t.Fatalf("Path() error = %v", err)
	}
	b.EndGroup()

	img, err := b.EndVector()
	if err != nil {
		t.Fatalf("EndVector() error = %v", err)
	}

	blob1 := Encode(img)
	decoded, err := Decode(blob1)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	blob2 := Encode(decoded)
	if !bytes.Equal(blob1, blob2) {
		t.Fatalf("Encode(Decode(x)) != Encode(x):\n  first:  % x\n  second: % x", blob1, blob2)
	}

	if err := NewTraverser(decoded).Run(&recordingVisitor{}); err != nil {
		t.Fatalf("Run() on decoded image error = %v", err)
	}
}
