package si

import (
	"testing"

	"golang.org/x/image/math/f64"
)

func TestFloatWriterNarrowRoundTrip(t *testing.T) {
	w := NewFloatWriter(false)
	idx, fits := w.Put(1.5)
	if idx != 0 || !fits {
		t.Fatalf("Put(1.5) = %d, %v, want 0, true", idx, fits)
	}
	r := NewFloatReader32(w.Float32s())
	if got := r.At(0); got != 1.5 {
		t.Errorf("At(0) = %v, want 1.5", got)
	}
}

func TestFloatWriterUpgradesOnPrecisionLoss(t *testing.T) {
	w := NewFloatWriter(false)
	const precise = 0.1234567890123456
	_, fits := w.Put(precise)
	if fits {
		t.Fatalf("Put(%v) reported fits=true in float32, want false", precise)
	}
	w.ToBig()
	if !w.Big() {
		t.Fatalf("ToBig() did not switch writer to big mode")
	}
	idx, fits := w.Put(precise)
	if !fits {
		t.Fatalf("Put(%v) after ToBig() reported fits=false, want true", precise)
	}
	r := NewFloatReader64(w.Float64s())
	if got := r.At(idx); got != precise {
		t.Errorf("At(%d) = %v, want %v", idx, got, precise)
	}
}

func TestFloatWriterAffineRoundTrip(t *testing.T) {
	m := f64.Aff3{1, 0, 0, 1, 10, 20}

	t.Run("narrow", func(t *testing.T) {
		w := NewFloatWriter(false)
		idx, fits := w.PutAffine(m)
		if !fits {
			t.Fatalf("PutAffine() reported fits=false for a transform of small integers")
		}
		r := NewFloatReader32(w.Float32s())
		got := r.GetAffineAt(idx)
		if got != m {
			t.Errorf("GetAffineAt(%d) = %v, want %v", idx, got, m)
		}
	})

	t.Run("big", func(t *testing.T) {
		w := NewFloatWriter(true)
		idx, fits := w.PutAffine(m)
		if !fits {
			t.Fatalf("PutAffine() reported fits=false in big mode")
		}
		r := NewFloatReader64(w.Float64s())
		got := r.GetAffineAt(idx)
		if got != m {
			t.Errorf("GetAffineAt(%d) = %v, want %v", idx, got, m)
		}
	})
}

func TestFitsFloat32(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		want bool
	}{
		{"integer", 42.0, true},
		{"half", 0.5, true},
		{"irrational-ish precise", 0.1234567890123456, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fitsFloat32(tt.v); got != tt.want {
				t.Errorf("fitsFloat32(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}
