package envelope

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-synth/dsp/param"
	"github.com/cwbudde/algo-synth/internal/testutil"
	"github.com/cwbudde/algo-synth/synth"
)

var plants = ADSR{Attack: 0.12, Decay: 0.18, Sustain: 0.7, Release: 0.8}

func TestScheduleReachesPeakAndSustain(t *testing.T) {
	for _, vel := range []float64{1, 0.809, 0.1} {
		g := param.New(0)
		const t0 = 2.0
		e, err := Schedule(g, plants, vel, t0)
		if err != nil {
			t.Fatal(err)
		}
		testutil.RequireNear(t, "at t0", g.ValueAt(t0), 0, 1e-12)
		testutil.RequireNear(t, "peak", g.ValueAt(t0+0.12), 0.3*vel, 1e-12)
		testutil.RequireNear(t, "sustain", g.ValueAt(t0+0.30), 0.21*vel, 1e-12)
		testutil.RequireNear(t, "held", g.ValueAt(t0+5), 0.21*vel, 1e-12)
		testutil.RequireNear(t, "mid attack", g.ValueAt(t0+0.06), 0.15*vel, 1e-12)
		if e.SustainStart() != t0+0.30 {
			t.Fatalf("SustainStart = %v, want %v", e.SustainStart(), t0+0.30)
		}
	}
}

func TestZeroStageTimesAreSteps(t *testing.T) {
	g := param.New(0)
	e, err := Schedule(g, ADSR{Sustain: 0.5}, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := g.ValueAt(1); got != 0.15 {
		t.Fatalf("value at trigger = %v, want sustain 0.15", got)
	}
	end := e.Release(2)
	if end != 2 {
		t.Fatalf("release end = %v, want 2", end)
	}
	if got := g.ValueAt(2); got != 0 {
		t.Fatalf("value after zero release = %v, want 0", got)
	}
}

func TestSustainIsClamped(t *testing.T) {
	g := param.New(0)
	e, _ := Schedule(g, ADSR{Attack: 0.1, Decay: 0.1, Sustain: 3}, 1, 0)
	if e.SustainLevel() != e.Peak() {
		t.Fatalf("sustain level %v, want clamped to peak %v", e.SustainLevel(), e.Peak())
	}
	e2, _ := Schedule(param.New(0), ADSR{Sustain: -1}, 1, 0)
	if e2.SustainLevel() != 0 {
		t.Fatalf("sustain level %v, want 0", e2.SustainLevel())
	}
}

func TestReleaseFromCurrentValue(t *testing.T) {
	g := param.New(0)
	e, _ := Schedule(g, plants, 1, 0)

	// Release halfway through the attack ramp.
	end := e.Release(0.06)
	testutil.RequireNear(t, "release end", end, 0.86, 1e-12)
	testutil.RequireNear(t, "at release", g.ValueAt(0.06), 0.15, 1e-12)
	testutil.RequireNear(t, "mid release", g.ValueAt(0.46), 0.075, 1e-12)
	if g.ValueAt(0.12) >= 0.15 {
		t.Fatalf("attack peak survived the release: %v", g.ValueAt(0.12))
	}

	prev := math.Inf(1)
	for ts := 0.06; ts <= 0.9; ts += 0.01 {
		v := g.ValueAt(ts)
		if v > prev+1e-15 {
			t.Fatalf("release not monotonic at %v: %v > %v", ts, v, prev)
		}
		prev = v
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	g := param.New(0)
	e, _ := Schedule(g, plants, 1, 0)
	first := e.Release(1)
	n := g.Len()
	if again := e.Release(1.5); again != first {
		t.Fatalf("second release end = %v, want %v", again, first)
	}
	if g.Len() != n {
		t.Fatalf("second release scheduled events: %d -> %d", n, g.Len())
	}
	if !e.Released() || e.ReleaseEnd() != first {
		t.Fatalf("Released = %v, ReleaseEnd = %v", e.Released(), e.ReleaseEnd())
	}
}

func TestReleaseBeforeStartMovesToStart(t *testing.T) {
	g := param.New(0)
	e, _ := Schedule(g, plants, 1, 3)
	if end := e.Release(1); end != 3+plants.Release {
		t.Fatalf("release end = %v, want %v", end, 3+plants.Release)
	}
}

func TestHoldDeadline(t *testing.T) {
	e, _ := Schedule(param.New(0), plants, 1, 10)
	testutil.RequireNear(t, "hold deadline", e.HoldDeadline(DefaultHold), 10.7, 1e-12)
	if !math.IsInf(e.ReleaseEnd(), 1) {
		t.Fatalf("ReleaseEnd before release = %v, want +Inf", e.ReleaseEnd())
	}
}

func TestScheduleRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		adsr ADSR
		vel  float64
		t0   float64
	}{
		{"negative attack", ADSR{Attack: -0.1}, 1, 0},
		{"NaN decay", ADSR{Decay: math.NaN()}, 1, 0},
		{"Inf release", ADSR{Release: math.Inf(1)}, 1, 0},
		{"NaN sustain", ADSR{Sustain: math.NaN()}, 1, 0},
		{"negative velocity", plants, -1, 0},
		{"negative start", plants, 1, -2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := param.New(0)
			_, err := Schedule(g, tc.adsr, tc.vel, tc.t0)
			if !errors.Is(err, synth.ErrInvalidParameter) {
				t.Fatalf("err = %v, want ErrInvalidParameter", err)
			}
			if g.Len() != 0 {
				t.Fatalf("rejected envelope scheduled %d events", g.Len())
			}
		})
	}
}
