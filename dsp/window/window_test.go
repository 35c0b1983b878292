package window

import (
	"math"
	"testing"
)

func TestGenerateSymmetricEndpoints(t *testing.T) {
	tests := []struct {
		typ  Type
		edge float64
	}{
		{TypeHann, 0},
		{TypeHamming, 0.08},
		{TypeBlackman, 0},
		{TypeBlackmanHarris, 0.00006},
		{TypeRectangular, 1},
	}
	for _, tc := range tests {
		w := Generate(tc.typ, 65)
		if math.Abs(w[0]-tc.edge) > 1e-9 || math.Abs(w[64]-tc.edge) > 1e-9 {
			t.Fatalf("type %d: edges %v/%v, want %v", tc.typ, w[0], w[64], tc.edge)
		}
		if tc.typ != TypeRectangular && math.Abs(w[32]-1) > 1e-9 {
			t.Fatalf("type %d: centre %v, want 1", tc.typ, w[32])
		}
	}
}

func TestPeriodicForm(t *testing.T) {
	w := Generate(TypeHann, 4, WithPeriodic())
	want := []float64{0, 0.5, 1, 0.5}
	for i := range w {
		if math.Abs(w[i]-want[i]) > 1e-12 {
			t.Fatalf("w[%d] = %v, want %v", i, w[i], want[i])
		}
	}
}

func TestGenerateEdgeLengths(t *testing.T) {
	if Generate(TypeHann, 0) != nil {
		t.Fatal("expected nil for zero length")
	}
	if w := Generate(TypeHann, 1); len(w) != 1 || w[0] != 1 {
		t.Fatalf("length-1 window = %v, want [1]", w)
	}
}

func TestParseType(t *testing.T) {
	got, err := ParseType(" BlackmanHarris ")
	if err != nil || got != TypeBlackmanHarris {
		t.Fatalf("ParseType = %v, %v", got, err)
	}
	if _, err := ParseType("kaiser"); err == nil {
		t.Fatal("expected error for unsupported window")
	}
}

func TestApplyAndCoherentGain(t *testing.T) {
	w := Generate(TypeHann, 1024, WithPeriodic())
	if g := CoherentGain(w); math.Abs(g-0.5) > 1e-12 {
		t.Fatalf("CoherentGain = %v, want 0.5", g)
	}
	buf := make([]float64, len(w))
	for i := range buf {
		buf[i] = 2
	}
	if err := Apply(buf, w); err != nil {
		t.Fatal(err)
	}
	if math.Abs(buf[512]-2) > 1e-12 {
		t.Fatalf("buf[512] = %v, want 2", buf[512])
	}
	if err := Apply(buf[:3], w); err == nil {
		t.Fatal("expected error for length mismatch")
	}
}
