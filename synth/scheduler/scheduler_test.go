package scheduler

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/cwbudde/algo-synth/synth"
	"github.com/cwbudde/algo-synth/synth/event"
)

func newScheduler(t *testing.T) (*Scheduler, *event.Queue) {
	t.Helper()
	q := event.NewQueue()
	s, err := New(q, rand.New(rand.NewPCG(3, 5)))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetScale([]float64{174, 220, 285, 396, 528, 660}, 0); err != nil {
		t.Fatal(err)
	}
	return s, q
}

func TestTempoStopStart(t *testing.T) {
	for _, bpm := range []float64{40, 90, 120, 240} {
		s, q := newScheduler(t)
		s.Start(0)
		if err := s.SetTempo(bpm, 1); err != nil {
			t.Fatal(err)
		}
		s.Stop()
		if q.Count(event.SchedulerTick) != 0 || s.Pending() {
			t.Fatalf("bpm %v: stopped scheduler still has a tick queued", bpm)
		}
		s.Start(2)
		if s.PeriodMillis() != 60000/bpm {
			t.Fatalf("period = %v, want %v", s.PeriodMillis(), 60000/bpm)
		}
		if n := q.Count(event.SchedulerTick); n != 1 {
			t.Fatalf("bpm %v: %d ticks queued, want 1", bpm, n)
		}
		cmd, _ := q.Peek()
		if math.Abs(cmd.At-(2+60/bpm)) > 1e-12 {
			t.Fatalf("first tick at %v, want %v", cmd.At, 2+60/bpm)
		}
	}
}

func TestAtMostOneTickQueued(t *testing.T) {
	s, q := newScheduler(t)
	s.Start(0)
	s.Start(0.1)
	s.SetTempo(120, 0.2)
	s.SetScale([]float64{432, 639}, 0.3)
	s.SetTempo(60, 0.4)
	if n := q.Count(event.SchedulerTick); n != 1 {
		t.Fatalf("%d ticks queued, want 1", n)
	}
	cmd, _ := q.Peek()
	if math.Abs(cmd.At-1.4) > 1e-12 {
		t.Fatalf("tick at %v, want 1.4", cmd.At)
	}
}

func TestTicksChainFromDeadline(t *testing.T) {
	s, q := newScheduler(t)
	s.Start(0)
	period := 60.0 / DefaultBPM
	scale := s.Scale()

	var played int
	now := 0.0
	for now < 9.9 {
		now += 0.005
		for {
			cmd, ok := q.PopDue(now)
			if !ok {
				break
			}
			freq, ok := s.OnTick(cmd, now)
			if !ok {
				t.Fatalf("tick at %v not played", cmd.At)
			}
			if !slices.Contains(scale, freq) {
				t.Fatalf("played %v, not in scale", freq)
			}
			played++
			next, _ := q.Peek()
			if math.Abs(next.At-(cmd.At+period)) > 1e-9 {
				t.Fatalf("next tick at %v, want %v", next.At, cmd.At+period)
			}
		}
	}
	if played != 14 {
		t.Fatalf("played %d notes in 9.9 s at 90 BPM, want 14", played)
	}
}

func TestStaleTickIgnored(t *testing.T) {
	s, q := newScheduler(t)
	s.Start(0)
	stale, _ := q.Peek()
	s.SetTempo(120, 0.1)
	if _, ok := s.OnTick(stale, 1); ok {
		t.Fatal("tick from before the tempo change was played")
	}
	s.Stop()
	cmd := event.Command{At: 1, Kind: event.SchedulerTick, Generation: stale.Generation + 1}
	if _, ok := s.OnTick(cmd, 1); ok {
		t.Fatal("tick played while stopped")
	}
}

func TestStallRestartsGrid(t *testing.T) {
	s, q := newScheduler(t)
	s.Start(0)
	cmd, _ := q.PopDue(100)
	if _, ok := s.OnTick(cmd, 5); !ok {
		t.Fatal("late tick not played")
	}
	next, _ := q.Peek()
	if next.At <= 5 {
		t.Fatalf("next tick at %v is already overdue", next.At)
	}
}

func TestSetTempoRange(t *testing.T) {
	s, _ := newScheduler(t)
	for _, bpm := range []float64{39, 241, math.NaN()} {
		if err := s.SetTempo(bpm, 0); !errors.Is(err, synth.ErrInvalidParameter) {
			t.Fatalf("SetTempo(%v) err = %v", bpm, err)
		}
	}
	if s.BPM() != DefaultBPM {
		t.Fatalf("BPM = %v after rejected changes", s.BPM())
	}
}
