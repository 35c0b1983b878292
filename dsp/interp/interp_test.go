package interp

import "testing"

func TestHermite4IdentityOnLinearRamp(t *testing.T) {
	xm1, x0, x1, x2 := -1.0, 0.0, 1.0, 2.0
	for _, tc := range []struct {
		t float64
		w float64
	}{
		{t: 0.0, w: 0.0},
		{t: 0.25, w: 0.25},
		{t: 0.5, w: 0.5},
		{t: 1.0, w: 1.0},
	} {
		got := Hermite4(tc.t, xm1, x0, x1, x2)
		if diff := got - tc.w; diff < -1e-12 || diff > 1e-12 {
			t.Fatalf("t=%v: got %v want %v", tc.t, got, tc.w)
		}
	}
}

func TestLinear(t *testing.T) {
	if got := Linear(0.25, 2, 4); got != 2.5 {
		t.Fatalf("Linear(0.25, 2, 4) = %v, want 2.5", got)
	}
}

func TestBetween(t *testing.T) {
	tests := []struct {
		name string
		t    float64
		want float64
	}{
		{name: "before", t: 0.5, want: 0},
		{name: "start", t: 1, want: 0},
		{name: "middle", t: 1.5, want: 0.15},
		{name: "end", t: 2, want: 0.3},
		{name: "after", t: 9, want: 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Between(tt.t, 1, 0, 2, 0.3)
			if diff := got - tt.want; diff < -1e-12 || diff > 1e-12 {
				t.Fatalf("Between(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestBetweenZeroSpanIsStep(t *testing.T) {
	if got := Between(1, 1, 0, 1, 0.3); got != 0.3 {
		t.Fatalf("zero span at t1 = %v, want 0.3", got)
	}
	if got := Between(0.99, 1, 0, 1, 0.3); got != 0.3 {
		t.Fatalf("zero span before t1 = %v, want 0.3 (t1 <= t0 always steps)", got)
	}
}
