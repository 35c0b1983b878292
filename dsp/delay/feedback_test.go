package delay

import (
	"testing"

	"github.com/cwbudde/algo-synth/internal/testutil"
)

func TestNewFeedbackValidation(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		seconds  float64
		feedback float64
	}{
		{name: "zero rate", rate: 0, seconds: 0.1, feedback: 0.1},
		{name: "negative time", rate: 48000, seconds: -0.1, feedback: 0.1},
		{name: "time above max", rate: 48000, seconds: 1.5, feedback: 0.1},
		{name: "unity feedback", rate: 48000, seconds: 0.1, feedback: 1},
		{name: "negative feedback", rate: 48000, seconds: 0.1, feedback: -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFeedback(tt.rate, tt.seconds, tt.feedback); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestFeedbackImpulseEchoes(t *testing.T) {
	const rate = 1000.0
	f, err := NewFeedback(rate, 0.01, 0.5)
	if err != nil {
		t.Fatalf("NewFeedback() error = %v", err)
	}
	if f.DelaySamples() != 10 {
		t.Fatalf("DelaySamples() = %d, want 10", f.DelaySamples())
	}

	in := testutil.Impulse(40, 0)
	out := make([]float64, len(in))
	f.ProcessTo(out, in)

	want := map[int]float64{10: 1, 20: 0.5, 30: 0.25}
	for i, v := range out {
		w := want[i]
		if !approxEqual(v, w, 1e-12) {
			t.Fatalf("out[%d] = %v, want %v", i, v, w)
		}
	}
}

func TestFeedbackZeroTimeIsOneSample(t *testing.T) {
	f, err := NewFeedback(48000, 0, 0)
	if err != nil {
		t.Fatalf("NewFeedback() error = %v", err)
	}

	if got := f.ProcessSample(1); got != 0 {
		t.Fatalf("first output = %v, want 0", got)
	}
	if got := f.ProcessSample(0); got != 1 {
		t.Fatalf("second output = %v, want 1", got)
	}
}

func TestFeedbackDecaysToSilence(t *testing.T) {
	f, err := NewFeedback(8000, 0.005, 0.9)
	if err != nil {
		t.Fatalf("NewFeedback() error = %v", err)
	}

	f.ProcessSample(1)
	out := make([]float64, 8000*4)
	f.ProcessTo(out, make([]float64, len(out)))
	testutil.RequireFinite(t, out)

	if tail := testutil.MaxAbs(out[len(out)-400:]); tail > 1e-6 {
		t.Fatalf("tail peak = %v, want decay below 1e-6", tail)
	}
}

func TestFeedbackCapacityFollowsTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    int
	}{
		{seconds: 0, want: 2},
		{seconds: 0.01, want: 512},
		{seconds: 0.3, want: 16384},
		{seconds: MaxTimeSeconds, want: 65536},
	}

	for _, tt := range tests {
		f, err := NewFeedback(48000, tt.seconds, 0)
		if err != nil {
			t.Fatalf("NewFeedback(%v) error = %v", tt.seconds, err)
		}
		if got := f.Capacity(); got != tt.want {
			t.Fatalf("Capacity() at %vs = %d, want %d", tt.seconds, got, tt.want)
		}
	}
}

func TestFeedbackSetTimeGrows(t *testing.T) {
	f, err := NewFeedback(1000, 0.004, 0)
	if err != nil {
		t.Fatalf("NewFeedback() error = %v", err)
	}
	if err := f.SetTime(0.05); err != nil {
		t.Fatalf("SetTime() error = %v", err)
	}
	if f.Capacity() < 51 {
		t.Fatalf("Capacity() = %d, want room for 50 samples", f.Capacity())
	}

	in := testutil.Impulse(60, 0)
	out := make([]float64, len(in))
	f.ProcessTo(out, in)
	for i, v := range out {
		want := 0.0
		if i == 50 {
			want = 1
		}
		if v != want {
			t.Fatalf("out[%d] = %v, want %v", i, v, want)
		}
	}
}
