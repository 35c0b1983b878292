package moog

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-synth/internal/testutil"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for invalid sample rate")
	}
	if _, err := New(48000, WithCutoffHz(24000)); err == nil {
		t.Fatal("expected error for cutoff at Nyquist")
	}
	if _, err := New(48000, WithResonance(5)); err == nil {
		t.Fatal("expected error for resonance out of range")
	}
	if _, err := New(48000, WithDrive(math.NaN())); err == nil {
		t.Fatal("expected error for NaN drive")
	}
}

func TestProcessInPlaceMatchesSample(t *testing.T) {
	for _, drive := range []float64{1, 2.5, 8} {
		opts := []Option{WithCutoffHz(2400), WithResonance(1.1), WithDrive(drive)}
		f1, err := New(48000, opts...)
		if err != nil {
			t.Fatal(err)
		}
		f2, _ := New(48000, opts...)
		if f2.Drive() != drive {
			t.Fatalf("Drive() = %v, want %v", f2.Drive(), drive)
		}

		in := testutil.DeterministicSine(440, 48000, 0.65, 384)
		want := make([]float64, len(in))
		for i, x := range in {
			want[i] = f1.ProcessSample(x)
		}
		got := append([]float64(nil), in...)
		f2.ProcessInPlace(got)
		testutil.RequireSliceNearlyEqual(t, got, want, 0)
		testutil.RequireFinite(t, got)
	}
}

func TestLowpassAttenuatesHighFrequencies(t *testing.T) {
	const sr = 48000.0
	run := func(freq float64) float64 {
		f, err := New(sr, WithCutoffHz(500), WithResonance(0.2))
		if err != nil {
			t.Fatal(err)
		}
		buf := testutil.DeterministicSine(freq, sr, 0.5, 9600)
		f.ProcessInPlace(buf)
		return testutil.RMS(buf[4800:])
	}
	low, high := run(100), run(8000)
	if !(low > 10*high) {
		t.Fatalf("rms 100 Hz = %v, 8 kHz = %v, want strong attenuation", low, high)
	}
}

func TestSetCutoffClamped(t *testing.T) {
	f, _ := New(48000, WithCutoffHz(1000))
	f.SetCutoffClamped(-50)
	if f.CutoffHz() != minCutoffHz {
		t.Fatalf("cutoff = %v, want %v", f.CutoffHz(), minCutoffHz)
	}
	f.SetCutoffClamped(1e6)
	if got, want := f.CutoffHz(), 0.49*48000; got != want {
		t.Fatalf("cutoff = %v, want %v", got, want)
	}
	f.SetCutoffClamped(math.NaN())
	if got, want := f.CutoffHz(), 0.49*48000; got != want {
		t.Fatalf("NaN changed cutoff to %v", got)
	}
	f.SetCutoffClamped(800)
	if f.CutoffHz() != 800 {
		t.Fatalf("cutoff = %v, want 800", f.CutoffHz())
	}
}

func TestNonFiniteInputIsSilenced(t *testing.T) {
	f, _ := New(48000)
	if y := f.ProcessSample(math.Inf(1)); y != 0 {
		t.Fatalf("ProcessSample(Inf) = %v, want 0 from reset state", y)
	}
	f.ProcessSample(0.5)
	f.Reset()
	if y := f.ProcessSample(0); y != 0 {
		t.Fatalf("after Reset = %v, want 0", y)
	}
}

func BenchmarkLadderBlock(b *testing.B) {
	f, _ := New(48000, WithResonance(1.5))
	buf := testutil.DeterministicSine(220, 48000, 0.5, 128)
	for b.Loop() {
		f.ProcessInPlace(buf)
	}
}
