package osc

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-synth/internal/testutil"
)

func TestParseWaveform(t *testing.T) {
	tests := []struct {
		in      string
		want    Waveform
		wantErr bool
	}{
		{"sine", Sine, false},
		{"Triangle", Triangle, false},
		{" square ", Square, false},
		{"sawtooth", Sawtooth, false},
		{"noise", 0, true},
		{"", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseWaveform(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestWaveformTextRoundTrip(t *testing.T) {
	for _, w := range Waveforms() {
		b, err := w.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", w, err)
		}
		var back Waveform
		if err := back.UnmarshalText(b); err != nil || back != w {
			t.Fatalf("UnmarshalText(%q) = %v, %v", b, back, err)
		}
	}
	if _, err := Waveform(9).MarshalText(); err == nil {
		t.Fatal("expected error for invalid waveform")
	}
}

func TestNewValidates(t *testing.T) {
	if _, err := New(Waveform(-1), 48000); err == nil {
		t.Fatal("expected error for invalid waveform")
	}
	if _, err := New(Sine, 0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func fill(o *Oscillator, dst []float64, hz float64) {
	for i := range dst {
		dst[i] = o.Next(hz)
	}
}

func TestOscillatorFrequencyAndRange(t *testing.T) {
	const sr = 48000.0
	for _, w := range Waveforms() {
		t.Run(w.String(), func(t *testing.T) {
			o, err := New(w, sr)
			if err != nil {
				t.Fatal(err)
			}
			out := make([]float64, int(sr))
			fill(o, out, 220)
			testutil.RequireFinite(t, out)
			if peak := testutil.MaxAbs(out); peak > 1.1 || peak < 0.9 {
				t.Fatalf("peak = %v, want ~1", peak)
			}
			if c := testutil.RisingCrossings(out); c < 218 || c > 222 {
				t.Fatalf("rising crossings = %d, want ~220", c)
			}
		})
	}
}

func TestSineMatchesReference(t *testing.T) {
	o, _ := New(Sine, 48000)
	got := make([]float64, 64)
	fill(o, got, 1000)
	want := testutil.DeterministicSine(1000, 48000, 1, 64)
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-9)
}

func TestNegativeFrequencyStaysWrapped(t *testing.T) {
	o, _ := New(Sawtooth, 48000)
	for i := 0; i < 1000; i++ {
		o.Next(-300)
		if p := o.phase; p < 0 || p >= 1 || math.IsNaN(p) {
			t.Fatalf("phase = %v out of [0,1)", p)
		}
	}
}

func BenchmarkSawtooth(b *testing.B) {
	o, _ := New(Sawtooth, 48000)
	dst := make([]float64, 128)
	for b.Loop() {
		fill(o, dst, 440)
	}
}
