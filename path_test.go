package si

import (
	"bytes"
	"strconv"
	"testing"
)

// recordingPathVisitor captures every call made to it, for asserting
// that DecodePath reproduces exactly what PathEncoder was given.
type recordingPathVisitor struct {
	calls []string
}

func (r *recordingPathVisitor) MoveTo(x, y float64) {
	r.calls = append(r.calls, sprintfCall("MoveTo", x, y))
}
func (r *recordingPathVisitor) LineTo(x, y float64) {
	r.calls = append(r.calls, sprintfCall("LineTo", x, y))
}
func (r *recordingPathVisitor) CubicTo(x1, y1, x2, y2, x, y float64) {
	r.calls = append(r.calls, sprintfCall("CubicTo", x1, y1, x2, y2, x, y))
}
func (r *recordingPathVisitor) CubicToShorthand(x2, y2, x, y float64) {
	r.calls = append(r.calls, sprintfCall("CubicToShorthand", x2, y2, x, y))
}
func (r *recordingPathVisitor) QuadTo(x1, y1, x, y float64) {
	r.calls = append(r.calls, sprintfCall("QuadTo", x1, y1, x, y))
}
func (r *recordingPathVisitor) QuadToShorthand(x, y float64) {
	r.calls = append(r.calls, sprintfCall("QuadToShorthand", x, y))
}
func (r *recordingPathVisitor) Close() { r.calls = append(r.calls, "Close()") }
func (r *recordingPathVisitor) Circle(left, top, diameter float64) {
	r.calls = append(r.calls, sprintfCall("Circle", left, top, diameter))
}
func (r *recordingPathVisitor) Ellipse(left, top, width, height float64) {
	r.calls = append(r.calls, sprintfCall("Ellipse", left, top, width, height))
}
func (r *recordingPathVisitor) ArcToPoint(rx, ry, xRotation, endX, endY float64, large, sweepCW bool) {
	r.calls = append(r.calls, sprintfCall("ArcToPoint", rx, ry, xRotation, endX, endY, large, sweepCW))
}
func (r *recordingPathVisitor) End() { r.calls = append(r.calls, "End()") }

func sprintfCall(name string, args ...any) string {
	s := name + "("
	for i, a := range args {
		if i > 0 {
			s += ","
		}
		s += formatArg(a)
	}
	return s + ")"
}

func formatArg(a any) string {
	switch v := a.(type) {
	case float64:
		return floatString(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return "?"
	}
}

func floatString(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// TestPathScenarioB reproduces the rectangle path from the spec's
// "one red rectangle" scenario exactly, byte for byte.
func TestPathScenarioB(t *testing.T) {
	bw := NewByteWriter()
	fw := NewFloatWriter(false)
	enc := NewPathEncoder(bw, fw)

	enc.MoveTo(0, 0)
	enc.LineTo(10, 0)
	enc.LineTo(10, 10)
	enc.LineTo(0, 10)
	enc.Close()
	enc.End()

	want := []byte{0x12, 0x22, 0x70}
	if !bytes.Equal(bw.Bytes(), want) {
		t.Fatalf("encoded bytes = % x, want % x", bw.Bytes(), want)
	}
}

// TestPathRoundTrip checks parse(encode(c)) == c for a representative
// command sequence covering every command kind.
func TestPathRoundTrip(t *testing.T) {
	bw := NewByteWriter()
	fw := NewFloatWriter(true)
	enc := NewPathEncoder(bw, fw)

	enc.MoveTo(1, 2)
	enc.LineTo(3, 4)
	enc.CubicTo(5, 6, 7, 8, 9, 10)
	enc.CubicToShorthand(11, 12, 13, 14)
	enc.QuadTo(15, 16, 17, 18)
	enc.QuadToShorthand(19, 20)
	enc.Circle(21, 22, 23)
	enc.Ellipse(24, 25, 26, 27)
	enc.ArcToPoint(5, 5, 0, 28, 29, false, true)
	enc.ArcToPoint(5, 7, 2, 30, 31, true, false)
	enc.Close()
	enc.End()

	br := NewByteReader(bw.Bytes())
	fr := NewFloatReader64(fw.Float64s())
	rec := &recordingPathVisitor{}
	consumed, err := DecodePath(br, fr, 0, rec)
	if err != nil {
		t.Fatalf("DecodePath() error = %v", err)
	}
	if consumed != fr.Len() {
		t.Errorf("consumed %d args, want %d (all of them)", consumed, fr.Len())
	}

	wantCalls := []string{
		"MoveTo(1,2)", "LineTo(3,4)", "CubicTo(5,6,7,8,9,10)",
		"CubicToShorthand(11,12,13,14)", "QuadTo(15,16,17,18)",
		"QuadToShorthand(19,20)", "Circle(21,22,23)", "Ellipse(24,25,26,27)",
		"ArcToPoint(5,5,0,28,29,false,true)", "ArcToPoint(5,7,2,30,31,true,false)",
		"Close()", "End()",
	}
	if len(rec.calls) != len(wantCalls) {
		t.Fatalf("got %d calls, want %d: %v", len(rec.calls), len(wantCalls), rec.calls)
	}
	for i, c := range wantCalls {
		if rec.calls[i] != c {
			t.Errorf("call[%d] = %q, want %q", i, rec.calls[i], c)
		}
	}
}

func TestPathByteCountIsCeilHalfNybbles(t *testing.T) {
	// 5 commands (MoveTo, LineTo x3, Close) + End = 6 commands, each 1
	// nybble (none escape): 6 nybbles -> ceil(6/2) = 3 bytes.
	bw := NewByteWriter()
	fw := NewFloatWriter(false)
	enc := NewPathEncoder(bw, fw)
	enc.MoveTo(0, 0)
	enc.LineTo(1, 0)
	enc.LineTo(1, 1)
	enc.LineTo(0, 1)
	enc.Close()
	enc.End()
	if got, want := bw.Length(), 3; got != want {
		t.Errorf("byte length = %d, want %d", got, want)
	}
}
