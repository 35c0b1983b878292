// Package scheduler is the tempo-locked note sequencer. Each tick picks a
// random tone of the active scale. Ticks are queued commands, never timers,
// and at most one is pending at any time.
package scheduler

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/cwbudde/algo-synth/synth"
	"github.com/cwbudde/algo-synth/synth/event"
)

// Tempo limits in beats per minute.
const (
	MinBPM     = 40
	MaxBPM     = 240
	DefaultBPM = 90
)

// Scheduler is not safe for concurrent use; the engine serializes access.
type Scheduler struct {
	queue      *event.Queue
	rng        *rand.Rand
	bpm        float64
	scale      []float64
	running    bool
	pending    event.Handle
	generation uint64
}

// New returns a stopped scheduler at DefaultBPM. A nil rng uses the global
// source.
func New(q *event.Queue, rng *rand.Rand) (*Scheduler, error) {
	if q == nil {
		return nil, fmt.Errorf("scheduler: nil queue")
	}
	return &Scheduler{queue: q, rng: rng, bpm: DefaultBPM}, nil
}

// BPM returns the tempo.
func (s *Scheduler) BPM() float64 { return s.bpm }

// PeriodMillis returns 60000 / bpm.
func (s *Scheduler) PeriodMillis() float64 { return 60000 / s.bpm }

func (s *Scheduler) period() float64 { return 60 / s.bpm }

// Running reports whether ticks are being queued.
func (s *Scheduler) Running() bool { return s.running }

// Scale returns a copy of the active scale.
func (s *Scheduler) Scale() []float64 { return slices.Clone(s.scale) }

// Start begins ticking one period after now. Starting a running scheduler
// restarts its period.
func (s *Scheduler) Start(now float64) {
	s.running = true
	s.rearm(now + s.period())
}

// Stop cancels the pending tick.
func (s *Scheduler) Stop() {
	s.running = false
	s.cancel()
}

// SetTempo changes the tempo and restarts the period from now.
func (s *Scheduler) SetTempo(bpm, now float64) error {
	if math.IsNaN(bpm) || bpm < MinBPM || bpm > MaxBPM {
		return synth.InvalidParam("bpm", bpm, fmt.Sprintf("must be in [%d, %d]", MinBPM, MaxBPM))
	}
	s.bpm = bpm
	if s.running {
		s.rearm(now + s.period())
	}
	return nil
}

// SetScale switches to the tones of a new preset and restarts the period
// from now.
func (s *Scheduler) SetScale(scale []float64, now float64) error {
	if len(scale) == 0 {
		return synth.InvalidParam("scale", scale, "must not be empty")
	}
	s.scale = slices.Clone(scale)
	if s.running {
		s.rearm(now + s.period())
	}
	return nil
}

// Pending reports whether a tick is queued.
func (s *Scheduler) Pending() bool {
	return s.pending != 0 && s.queue.Pending(s.pending)
}

// OnTick consumes a due tick command. It returns the tone to play and
// whether one should be played. The next tick is queued one period after the
// deadline of cmd so the grid does not drift; after a stall longer than a
// period the grid restarts from now.
func (s *Scheduler) OnTick(cmd event.Command, now float64) (float64, bool) {
	if cmd.Kind != event.SchedulerTick || cmd.Generation != s.generation || !s.running {
		return 0, false
	}
	s.pending = 0
	next := cmd.At + s.period()
	if next <= now {
		next = now + s.period()
	}
	s.rearm(next)
	if len(s.scale) == 0 {
		return 0, false
	}
	var i int
	if s.rng != nil {
		i = s.rng.IntN(len(s.scale))
	} else {
		i = rand.IntN(len(s.scale))
	}
	return s.scale[i], true
}

func (s *Scheduler) cancel() {
	if s.pending != 0 {
		s.queue.Cancel(s.pending)
		s.pending = 0
	}
	s.generation++
}

// rearm replaces any pending tick with one at `at`.
func (s *Scheduler) rearm(at float64) {
	s.cancel()
	s.pending = s.queue.Push(event.Command{At: at, Kind: event.SchedulerTick, Generation: s.generation})
}
