package core

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) <= 1e-12*math.Max(1, math.Abs(b)) }

func TestNoteToHz(t *testing.T) {
	tests := []struct {
		note int
		want float64
	}{
		{note: 69, want: 440},
		{note: 81, want: 880},
		{note: 57, want: 220},
		{note: 60, want: 261.6255653005986},
	}

	for _, tt := range tests {
		if got := NoteToHz(tt.note); !near(got, tt.want) {
			t.Fatalf("NoteToHz(%d) = %v, want %v", tt.note, got, tt.want)
		}
	}
}

func TestCentsToRatio(t *testing.T) {
	if got := CentsToRatio(1200); !near(got, 2) {
		t.Fatalf("CentsToRatio(1200) = %v, want 2", got)
	}
	if got := CentsToRatio(0); got != 1 {
		t.Fatalf("CentsToRatio(0) = %v, want 1", got)
	}
	up := CentsToRatio(7)
	down := CentsToRatio(-7)
	if !near(up*down, 1) {
		t.Fatalf("CentsToRatio(7)*CentsToRatio(-7) = %v, want 1", up*down)
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(1) {
		t.Fatal("IsFinite(1) = false")
	}
	if IsFinite(math.NaN()) || IsFinite(math.Inf(1)) || IsFinite(math.Inf(-1)) {
		t.Fatal("IsFinite accepted a non-finite value")
	}
}

func TestFlushDenormals(t *testing.T) {
	if got := FlushDenormals(1e-35); got != 0 {
		t.Fatalf("FlushDenormals(1e-35) = %v, want 0", got)
	}
	if got := FlushDenormals(0.25); got != 0.25 {
		t.Fatalf("FlushDenormals(0.25) = %v, want 0.25", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		v, lo, hi float64
		want      float64
	}{
		{name: "inside", v: 0.25, lo: -1, hi: 1, want: 0.25},
		{name: "below", v: -3, lo: -1, hi: 1, want: -1},
		{name: "above", v: 1.5, lo: -1, hi: 1, want: 1},
		{name: "on bound", v: 1, lo: -1, hi: 1, want: 1},
		{name: "swapped bounds", v: 5, lo: 2, hi: -2, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
				t.Fatalf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}
