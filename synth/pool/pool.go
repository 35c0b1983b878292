// Package pool owns every live voice: the untracked voices started by the
// sequencer, capped with oldest-first stealing, and the voices keyed by a
// held note number.
package pool

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/cwbudde/algo-synth/synth/event"
	"github.com/cwbudde/algo-synth/synth/modulation"
	"github.com/cwbudde/algo-synth/synth/preset"
	"github.com/cwbudde/algo-synth/synth/voice"
)

const (
	// NoKey marks an untracked voice.
	NoKey = -1
	// DefaultCeiling is the most untracked voices alive at once.
	DefaultCeiling = 8
	// Guard delays teardown past the end of a voice.
	Guard = 0.1
)

// NoteKey returns the key for a MIDI note number.
func NoteKey(note uint8) int { return int(note & 0x7f) }

type entry struct {
	v        *voice.Voice
	release  event.Handle
	teardown event.Handle
}

// Option configures a Pool.
type Option func(*Pool) error

// WithCeiling sets the untracked voice limit.
func WithCeiling(n int) Option {
	return func(p *Pool) error {
		if n < 1 {
			return fmt.Errorf("pool: ceiling must be >= 1: %d", n)
		}
		p.ceiling = n
		return nil
	}
}

// WithLogger sets the logger used for voice steals.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) error {
		if l != nil {
			p.log = l
		}
		return nil
	}
}

// Pool is not safe for concurrent use; the engine serializes access.
type Pool struct {
	cfg     voice.Config
	queue   *event.Queue
	ceiling int
	log     *slog.Logger

	nextID uint64
	live   []*entry
	byID   map[uint64]*entry
	keyed  map[int]*entry
}

// New returns a pool that queues release and teardown commands on q.
func New(q *event.Queue, cfg voice.Config, opts ...Option) (*Pool, error) {
	if q == nil {
		return nil, fmt.Errorf("pool: nil queue")
	}
	p := &Pool{
		cfg:     cfg,
		queue:   q,
		ceiling: DefaultCeiling,
		log:     slog.New(slog.DiscardHandler),
		byID:    make(map[uint64]*entry),
		keyed:   make(map[int]*entry),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Ceiling returns the untracked voice limit.
func (p *Pool) Ceiling() int { return p.ceiling }

// Request builds a voice for req and inserts it. The chain is built before
// any existing voice is touched, so a rejected request changes nothing.
func (p *Pool) Request(now float64, req voice.Request, pr preset.Preset, mod modulation.State, key int) (*voice.Voice, error) {
	if key != NoKey {
		key = NoteKey(uint8(key))
	}
	v, err := voice.New(p.nextID+1, key, now, req, pr, mod, p.cfg)
	if err != nil {
		return nil, err
	}
	p.nextID++

	if key == NoKey {
		p.purge(now)
		for p.Untracked() >= p.ceiling {
			oldest := p.oldestUntracked()
			p.log.Info("ResourceCeilingExceeded",
				"voice", oldest.v.ID(), "ceiling", p.ceiling, "started", oldest.v.Start())
			p.terminate(oldest, now)
		}
	} else if prev, ok := p.keyed[key]; ok {
		p.terminate(prev, now)
	}

	e := &entry{v: v}
	e.release = p.queue.Push(event.Command{At: v.HoldDeadline(), Kind: event.Release, VoiceID: v.ID()})
	e.teardown = p.queue.Push(event.Command{At: v.End() + Guard, Kind: event.Teardown, VoiceID: v.ID()})
	p.live = append(p.live, e)
	p.byID[v.ID()] = e
	if key != NoKey {
		p.keyed[key] = e
	}
	return v, nil
}

// Release starts the release of the voice keyed by key. The voice leaves the
// keyed map at once and is torn down after its release tail. Other keys are
// untouched.
func (p *Pool) Release(key int, at float64) bool {
	if key < 0 {
		return false
	}
	e, ok := p.keyed[NoteKey(uint8(key))]
	if !ok {
		return false
	}
	p.release(e, at)
	return true
}

// ReleaseVoice starts the release of the voice with the given ID.
func (p *Pool) ReleaseVoice(id uint64, at float64) bool {
	e, ok := p.byID[id]
	if !ok {
		return false
	}
	p.release(e, at)
	return true
}

func (p *Pool) release(e *entry, at float64) {
	if k := e.v.Key(); k != NoKey && p.keyed[k] == e {
		delete(p.keyed, k)
	}
	if e.v.Released() {
		return
	}
	end := e.v.Release(at)
	p.queue.Cancel(e.release)
	p.queue.Cancel(e.teardown)
	e.teardown = p.queue.Push(event.Command{At: end + Guard, Kind: event.Teardown, VoiceID: e.v.ID()})
}

// Terminate tears the voice down at once. It reports false when the voice is
// already gone.
func (p *Pool) Terminate(id uint64, at float64) bool {
	e, ok := p.byID[id]
	if !ok {
		return false
	}
	p.terminate(e, at)
	return true
}

func (p *Pool) terminate(e *entry, at float64) {
	p.queue.Cancel(e.release)
	p.queue.Cancel(e.teardown)
	e.v.Terminate(at)
	delete(p.byID, e.v.ID())
	if k := e.v.Key(); k != NoKey && p.keyed[k] == e {
		delete(p.keyed, k)
	}
	if i := slices.Index(p.live, e); i >= 0 {
		p.live = slices.Delete(p.live, i, i+1)
	}
}

// Handle applies a due Release or Teardown command. Other kinds and
// commands for voices already gone are ignored.
func (p *Pool) Handle(cmd event.Command) {
	switch cmd.Kind {
	case event.Release:
		if e, ok := p.byID[cmd.VoiceID]; ok {
			e.release = 0
			p.release(e, cmd.At)
		}
	case event.Teardown:
		if e, ok := p.byID[cmd.VoiceID]; ok {
			e.teardown = 0
			p.terminate(e, cmd.At)
		}
	}
}

// StopAll tears down every voice.
func (p *Pool) StopAll(at float64) {
	for len(p.live) > 0 {
		p.terminate(p.live[len(p.live)-1], at)
	}
}

// StopUntracked tears down every untracked voice.
func (p *Pool) StopUntracked(at float64) {
	for _, e := range slices.Clone(p.live) {
		if e.v.Key() == NoKey {
			p.terminate(e, at)
		}
	}
}

// ReleaseKeyed releases every held note.
func (p *Pool) ReleaseKeyed(at float64) {
	for _, e := range slices.Clone(p.live) {
		if e.v.Key() != NoKey {
			p.release(e, at)
		}
	}
}

func (p *Pool) purge(now float64) {
	for _, e := range slices.Clone(p.live) {
		if e.v.Key() == NoKey && e.v.End() <= now {
			p.terminate(e, now)
		}
	}
}

func (p *Pool) oldestUntracked() *entry {
	for _, e := range p.live {
		if e.v.Key() == NoKey {
			return e
		}
	}
	return nil
}

// Live returns the number of voices not yet torn down.
func (p *Pool) Live() int { return len(p.live) }

// Untracked returns the number of live untracked voices.
func (p *Pool) Untracked() int {
	n := 0
	for _, e := range p.live {
		if e.v.Key() == NoKey {
			n++
		}
	}
	return n
}

// Keyed returns the voice currently owning note.
func (p *Pool) Keyed(note uint8) (*voice.Voice, bool) {
	e, ok := p.keyed[NoteKey(note)]
	if !ok {
		return nil, false
	}
	return e.v, true
}

// Held returns the number of notes in the keyed map.
func (p *Pool) Held() int { return len(p.keyed) }

// Voice returns the live voice with the given ID.
func (p *Pool) Voice(id uint64) (*voice.Voice, bool) {
	e, ok := p.byID[id]
	if !ok {
		return nil, false
	}
	return e.v, true
}

// Voices returns the live voices, oldest first.
func (p *Pool) Voices() []*voice.Voice {
	out := make([]*voice.Voice, len(p.live))
	for i, e := range p.live {
		out[i] = e.v
	}
	return out
}

// Render mixes every live voice into the bus and reverb send.
func (p *Pool) Render(busL, busR, sendL, sendR []float64, start float64) {
	for _, e := range p.live {
		e.v.Render(busL, busR, sendL, sendR, start)
	}
}
