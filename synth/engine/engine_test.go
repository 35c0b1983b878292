package engine

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-synth/dsp/effects/reverb"
	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/internal/testutil"
	"github.com/cwbudde/algo-synth/synth"
	"github.com/cwbudde/algo-synth/synth/modulation"
	"github.com/cwbudde/algo-synth/synth/params"
	"github.com/cwbudde/algo-synth/synth/pool"
)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(9, 9)))}, opts...)
	e, err := New(opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func step(t *testing.T, e *Engine, msg Message) {
	t.Helper()
	if err := e.Step(msg); err != nil {
		t.Fatalf("Step(%T): %v", msg, err)
	}
}

// advance renders seconds of audio, draining commands before every block,
// and returns the left channel.
func advance(t *testing.T, e *Engine, seconds float64, each func()) []float64 {
	t.Helper()
	block := e.BlockSize()
	buf := make([]float32, 2*block)
	var left []float64
	for range int(math.Ceil(seconds * e.SampleRate() / float64(block))) {
		step(t, e, Tick{})
		e.Render(buf)
		l, _ := testutil.Deinterleave(buf)
		left = append(left, l...)
		if each != nil {
			each()
		}
	}
	return left
}

func TestSequencerPlaysOnTempoGrid(t *testing.T) {
	e := newEngine(t)
	step(t, e, Start{})

	starts := map[uint64]float64{}
	advance(t, e, 4, func() {
		for _, v := range e.Voices() {
			if v.Key == pool.NoKey {
				starts[v.ID] = v.Start
			}
		}
	})
	if len(starts) < 5 {
		t.Fatalf("only %d sequencer voices in 4 s", len(starts))
	}
	period := 60.0 / 90
	for id, s := range starts {
		k := math.Round(s / period)
		if math.Abs(s-k*period) > 1e-9 {
			t.Fatalf("voice %d starts at %v, off the %v s grid", id, s, period)
		}
	}
	if info := e.Info(); info.Untracked > pool.DefaultCeiling {
		t.Fatalf("untracked = %d", info.Untracked)
	}
}

func TestVelocityAndNoteOff(t *testing.T) {
	e := newEngine(t)
	step(t, e, NoteOn{Note: 69, Velocity: 100})
	step(t, e, NoteOn{Note: 60, Velocity: 64})

	var peak float64
	for _, v := range e.Voices() {
		if v.Key == 69 {
			peak = v.Peak
		}
	}
	testutil.RequireNear(t, "velocity gain", peak/0.3, 0.809, 1e-3)

	step(t, e, NoteOff{Note: 69})
	info := e.Info()
	if info.Held != 1 {
		t.Fatalf("held = %d, want only note 60", info.Held)
	}
	for _, v := range e.Voices() {
		if v.Key == 60 && v.Released {
			t.Fatal("note 60 released by note-off of 69")
		}
	}
}

func TestFramesDriveTheEngine(t *testing.T) {
	e := newEngine(t)
	step(t, e, Frame(gomidi.NoteOn(0, 64, 127)))
	step(t, e, Frame(gomidi.ControlChange(0, 70, 127)))
	step(t, e, Frame(gomidi.ControlChange(0, 77, 0)))
	step(t, e, Frame(gomidi.ControlChange(0, 1, 127)))
	step(t, e, Frame([]byte{0x90, 0x40}))

	info := e.Info()
	if info.Held != 1 {
		t.Fatalf("held = %d", info.Held)
	}
	if info.Learned[70] != params.Filter || info.Learned[77] != params.Resonance {
		t.Fatalf("learned = %v", info.Learned)
	}
	if info.Cutoff != 8000 || info.Resonance != 0 {
		t.Fatalf("cutoff %v resonance %v", info.Cutoff, info.Resonance)
	}
	if info.LFO.Bias != 1 || info.LFO.EffectiveDepth() != 9 {
		t.Fatalf("lfo = %+v", info.LFO)
	}

	step(t, e, ControlChange{Controller: 70, Value: 0})
	if got := e.Info().Cutoff; got != 100 {
		t.Fatalf("cutoff = %v, want 100", got)
	}
}

func TestPresetChangeResetsOverrides(t *testing.T) {
	e := newEngine(t)
	sq := osc.Square
	step(t, e, SetWaveform{Waveform: &sq})
	step(t, e, SetParam{Name: params.Resonance, Value: 0.1})
	if info := e.Info(); info.Waveform != osc.Square || !info.Overridden || info.Resonance != 0.1 {
		t.Fatalf("overrides not applied: %+v", info)
	}
	step(t, e, SelectPreset{Name: "mold"})
	info := e.Info()
	if info.Preset != "mold" || info.Waveform != osc.Sawtooth || info.Overridden || info.Resonance != 0.72 || info.Drive != 0.8 {
		t.Fatalf("after preset change: %+v", info)
	}
}

func TestTempoChange(t *testing.T) {
	e := newEngine(t)
	step(t, e, Start{})
	step(t, e, SetParam{Name: params.BPM, Value: 120})
	if bpm := e.Info().BPM; bpm != 120 {
		t.Fatalf("bpm = %v", bpm)
	}
	first := math.Inf(1)
	advance(t, e, 0.6, func() {
		for _, v := range e.Voices() {
			first = math.Min(first, v.Start)
		}
	})
	testutil.RequireNear(t, "first tick", first, 0.5, 1e-9)
}

func TestStop(t *testing.T) {
	e := newEngine(t)
	step(t, e, Start{})
	step(t, e, NoteOn{Note: 72, Velocity: 90})
	advance(t, e, 1, nil)
	step(t, e, Stop{})
	info := e.Info()
	if info.Running || info.Untracked != 0 || info.Held != 0 {
		t.Fatalf("after stop: %+v", info)
	}
	vs := e.Voices()
	if len(vs) != 1 || !vs[0].Released {
		t.Fatalf("held note should ring out released: %+v", vs)
	}
	advance(t, e, 3, nil)
	if n := len(e.Voices()); n != 0 {
		t.Fatalf("%d voices left after release tail", n)
	}
}

func TestRenderOutput(t *testing.T) {
	e := newEngine(t)
	step(t, e, NoteOn{Note: 57, Velocity: 127})
	left := advance(t, e, 0.5, nil)
	testutil.RequireFinite(t, left)
	if testutil.RMS(left) == 0 {
		t.Fatal("silent output with a held note")
	}
	for _, x := range left {
		if math.Abs(x) > 1 {
			t.Fatalf("sample %v exceeds full scale", x)
		}
	}

	step(t, e, SetParam{Name: params.Volume, Value: 0})
	if quiet := advance(t, e, 0.1, nil); testutil.MaxAbs(quiet) != 0 {
		t.Fatal("volume 0 is not silent")
	}
}

func TestSnapshotAndSpectrum(t *testing.T) {
	e := newEngine(t, WithScopeSize(1024), WithReverb(reverb.KindHall))
	step(t, e, SelectPreset{Name: "mushrooms"})
	step(t, e, NoteOn{Note: 69, Velocity: 127})
	advance(t, e, 0.5, nil)

	snap := e.Snapshot(nil)
	if len(snap) != 1024 {
		t.Fatalf("len(snapshot) = %d", len(snap))
	}
	if testutil.RMS(snap) == 0 {
		t.Fatal("snapshot silent")
	}
	snap[0] = 42
	if again := e.Snapshot(nil); again[0] == 42 {
		t.Fatal("snapshot exposes the backing buffer")
	}

	bins, err := e.Spectrum(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(bins) != 1025 {
		t.Fatalf("len(bins) = %d", len(bins))
	}
	best := 0
	for k := 5; k < len(bins); k++ {
		if bins[k] > bins[best] || best < 5 {
			best = k
		}
	}
	if f := e.BinFrequency(best); math.Abs(f-440) > 50 {
		t.Fatalf("spectral peak at %v Hz, want near 440", f)
	}
}

func TestInvalidMessages(t *testing.T) {
	e := newEngine(t)
	bad := osc.Waveform(77)
	for _, msg := range []Message{
		SetParam{Name: "warp", Value: 1},
		SelectPreset{Name: "weeds"},
		SetWaveform{Waveform: &bad},
		SetModDest{Destination: modulation.Destination(5)},
		NoteOn{Note: 200, Velocity: 1},
	} {
		if err := e.Step(msg); !errors.Is(err, synth.ErrInvalidParameter) {
			t.Fatalf("Step(%+v) err = %v", msg, err)
		}
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	e := newEngine(t)
	step(t, e, NoteOn{Note: 60, Velocity: 100})
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if err := e.Step(Tick{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Step after close = %v", err)
	}
	if err := e.Send(Tick{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Send after close = %v", err)
	}
	if n := len(e.Voices()); n != 0 {
		t.Fatalf("%d voices after close", n)
	}
}

func TestRunAppliesSentMessages(t *testing.T) {
	e := newEngine(t, WithTickInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	if err := e.Send(NoteOn{Note: 62, Velocity: 80}); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for e.Info().Held != 1 {
		if time.Now().After(deadline) {
			t.Fatal("Run did not apply the note")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v", err)
	}
}

func TestSendReportsFullInbox(t *testing.T) {
	e := newEngine(t, WithInboxSize(1))
	if err := e.Send(Tick{}); err != nil {
		t.Fatal(err)
	}
	if err := e.Send(Tick{}); !errors.Is(err, ErrInboxFull) {
		t.Fatalf("Send = %v, want ErrInboxFull", err)
	}
}

func TestProcessorOptions(t *testing.T) {
	e := newEngine(t)
	if e.SampleRate() != 48000 || e.BlockSize() != 128 {
		t.Fatalf("defaults = %v Hz / %d frames, want 48000 / 128", e.SampleRate(), e.BlockSize())
	}
	e = newEngine(t, WithSampleRate(44100), WithBlockSize(256))
	if e.SampleRate() != 44100 || e.BlockSize() != 256 {
		t.Fatalf("got %v Hz / %d frames, want 44100 / 256", e.SampleRate(), e.BlockSize())
	}
}

func TestOptionValidation(t *testing.T) {
	for _, opt := range []Option{
		WithSampleRate(100),
		WithBlockSize(1),
		WithCeiling(0),
		WithScopeSize(4096),
		WithMaxHold(0),
		WithChannel(20),
		WithModWheel(200),
		WithPreset("weeds"),
		WithPresets(nil),
	} {
		if _, err := New(opt); err == nil {
			t.Fatal("invalid option accepted")
		}
	}
}

func TestFilterResponseFollowsSurface(t *testing.T) {
	e := newEngine(t)
	freqs := []float64{200, 4000}
	before := e.FilterResponse(nil, freqs)
	step(t, e, SetParam{Name: params.Filter, Value: 8000})
	after := e.FilterResponse(nil, freqs)
	if !(after[1] > before[1]+10) {
		t.Fatalf("4 kHz response %v -> %v dB, want opening cutoff to raise it", before[1], after[1])
	}
}

func BenchmarkStepNoteOn(b *testing.B) {
	newBench := func() *Engine {
		e, err := New(WithRand(rand.New(rand.NewPCG(3, 3))))
		if err != nil {
			b.Fatal(err)
		}
		return e
	}
	e := newBench()
	b.ReportAllocs()
	i := 0
	for b.Loop() {
		if i%128 == 127 {
			b.StopTimer()
			e.Close()
			e = newBench()
			b.StartTimer()
		}
		note := uint8(i % 128)
		if err := e.Step(NoteOn{Note: note, Velocity: 100}); err != nil {
			b.Fatal(err)
		}
		i++
	}
	e.Close()
}
