// Package engine is the synthesizer instance: it owns the sample clock, the
// voice pool, the sequencer, the controller adapter and the output bus.
//
// All mutations go through Step, usually from Run on the control goroutine.
// Render runs on the audio goroutine. Both hold the engine mutex for one
// message or one render block.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/effects/reverb"
	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/dsp/spectrum"
	"github.com/cwbudde/algo-synth/synth"
	"github.com/cwbudde/algo-synth/synth/control"
	"github.com/cwbudde/algo-synth/synth/envelope"
	"github.com/cwbudde/algo-synth/synth/event"
	"github.com/cwbudde/algo-synth/synth/modulation"
	"github.com/cwbudde/algo-synth/synth/params"
	"github.com/cwbudde/algo-synth/synth/pool"
	"github.com/cwbudde/algo-synth/synth/preset"
	"github.com/cwbudde/algo-synth/synth/scheduler"
	"github.com/cwbudde/algo-synth/synth/voice"
)

// Lookahead is how far ahead of the clock due commands are applied. It is
// shorter than pool.Guard so a teardown never cuts a sounding tail.
const Lookahead = 0.05

var (
	// ErrClosed is returned by Send and Step after Close.
	ErrClosed = errors.New("engine: closed")
	// ErrInboxFull is returned by Send when Run is not keeping up.
	ErrInboxFull = errors.New("engine: inbox full")
)

// Engine is one synthesizer instance.
type Engine struct {
	mu  sync.Mutex
	cfg config
	log *slog.Logger

	frames int64

	queue   *event.Queue
	pool    *pool.Pool
	sched   *scheduler.Scheduler
	adapter *control.Adapter
	surface *params.Surface
	presets *preset.Table

	current  preset.Preset
	waveform *osc.Waveform
	modDest  modulation.Destination
	modBias  float64

	busL, busR, sendL, sendR []float64
	revL, revR               reverb.Processor

	ring     []float64
	ringPos  int
	analyser *spectrum.Analyser

	inbox     chan Message
	done      chan struct{}
	closeOnce sync.Once
	closed    bool
}

// New builds an engine. The sequencer starts stopped.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.presets == nil {
		cfg.presets = preset.Default()
	}
	cfg.proc = core.ApplyProcessorOptions(cfg.procOpts...)
	sr := cfg.proc.SampleRate

	e := &Engine{
		cfg:     cfg,
		log:     cfg.log,
		queue:   event.NewQueue(),
		surface: params.NewSurface(),
		presets: cfg.presets,
		inbox:   make(chan Message, cfg.inbox),
		done:    make(chan struct{}),
	}

	var err error
	vcfg := voice.Config{SampleRate: sr, Rand: cfg.rng, MaxHold: cfg.maxHold}
	if e.pool, err = pool.New(e.queue, vcfg, pool.WithCeiling(cfg.ceiling), pool.WithLogger(cfg.log)); err != nil {
		return nil, err
	}
	if e.sched, err = scheduler.New(e.queue, cfg.rng); err != nil {
		return nil, err
	}
	if e.adapter, err = control.NewAdapter(sink{e},
		control.WithChannel(cfg.channel),
		control.WithModWheel(cfg.modWheel),
		control.WithLogger(cfg.log),
	); err != nil {
		return nil, err
	}
	if e.revL, err = reverb.New(cfg.reverb, sr); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if e.revR, err = reverb.New(cfg.reverb, sr); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if e.analyser, err = spectrum.NewAnalyser(spectrum.DefaultSize, sr); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.ring = make([]float64, spectrum.DefaultSize)

	block := cfg.proc.BlockSize
	e.busL = make([]float64, block)
	e.busR = make([]float64, block)
	e.sendL = make([]float64, block)
	e.sendR = make([]float64, block)

	if err := e.selectPreset(cfg.preset); err != nil {
		return nil, err
	}
	return e, nil
}

// SampleRate returns the output rate in Hz.
func (e *Engine) SampleRate() float64 { return e.cfg.proc.SampleRate }

// BlockSize returns the render quantum in frames.
func (e *Engine) BlockSize() int { return e.cfg.proc.BlockSize }

// Presets returns the preset table.
func (e *Engine) Presets() *preset.Table { return e.presets }

// Now returns the engine clock in seconds.
func (e *Engine) Now() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now()
}

func (e *Engine) now() float64 {
	return float64(e.frames) / e.cfg.proc.SampleRate
}

// Step applies one message after draining every command due by the clock.
func (e *Engine) Step(msg Message) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.drain()
	err := e.apply(msg)
	e.drain()
	return err
}

// Send queues msg for Run without blocking.
func (e *Engine) Send(msg Message) error {
	select {
	case <-e.done:
		return ErrClosed
	default:
	}
	select {
	case e.inbox <- msg:
		return nil
	default:
		return ErrInboxFull
	}
}

// Run applies queued messages and drains due commands until ctx is done or
// the engine is closed.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.done:
			return nil
		case msg := <-e.inbox:
			if err := e.Step(msg); err != nil {
				if errors.Is(err, ErrClosed) {
					return nil
				}
				e.log.Warn("message rejected", "msg", fmt.Sprintf("%T", msg), "err", err)
			}
		case <-ticker.C:
			if err := e.Step(Tick{}); errors.Is(err, ErrClosed) {
				return nil
			}
		}
	}
}

// Close stops the sequencer and tears every voice down. It is idempotent.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.closed = true
		e.sched.Stop()
		e.pool.StopAll(e.now())
		e.queue.Clear()
		close(e.done)
	})
	return nil
}

func (e *Engine) drain() {
	now := e.now()
	for {
		cmd, ok := e.queue.PopDue(now + Lookahead)
		if !ok {
			return
		}
		switch cmd.Kind {
		case event.SchedulerTick:
			freq, ok := e.sched.OnTick(cmd, now)
			if !ok {
				continue
			}
			if _, err := e.sequencerNote(freq, cmd.At); err != nil {
				e.log.Warn("sequencer note rejected", "freq", freq, "err", err)
			}
		default:
			e.pool.Handle(cmd)
		}
	}
}

func (e *Engine) apply(msg Message) error {
	now := e.now()
	switch m := msg.(type) {
	case nil, Tick:
		return nil
	case NoteOn:
		if m.Note > 127 || m.Velocity > 127 {
			return synth.InvalidParam("note", m, "data bytes must be < 128")
		}
		if m.Velocity == 0 {
			e.noteOff(m.Note)
			return nil
		}
		_, err := e.noteOn(m.Note, control.VelocityGain(m.Velocity), float64(m.Velocity)*control.CutoffPerVelocity)
		return err
	case NoteOff:
		e.noteOff(m.Note)
		return nil
	case ControlChange:
		e.adapter.Dispatch(control.Message{Kind: control.ControlChange, Data1: m.Controller & 0x7f, Data2: m.Value & 0x7f})
		return nil
	case Frame:
		e.adapter.Handle(m)
		return nil
	case SetParam:
		return e.setParam(m.Name, m.Value)
	case SelectPreset:
		return e.selectPreset(m.Name)
	case SetWaveform:
		if m.Waveform != nil && !m.Waveform.Valid() {
			return synth.InvalidParam("waveform", *m.Waveform, "unknown waveform")
		}
		if m.Waveform == nil {
			e.waveform = nil
		} else {
			w := *m.Waveform
			e.waveform = &w
		}
		return nil
	case SetModDest:
		if m.Destination < modulation.None || m.Destination > modulation.Pitch {
			return synth.InvalidParam("lfo destination", int(m.Destination), "unknown destination")
		}
		e.modDest = m.Destination
		return nil
	case Start:
		if !e.sched.Running() {
			e.log.Info("sequencer started", "preset", e.current.Name, "bpm", e.sched.BPM())
		}
		e.sched.Start(now)
		return nil
	case Stop:
		e.sched.Stop()
		e.pool.StopUntracked(now)
		e.pool.ReleaseKeyed(now)
		e.log.Info("sequencer stopped")
		return nil
	default:
		return synth.InvalidParam("message", fmt.Sprintf("%T", msg), "unknown message")
	}
}

func (e *Engine) setParam(name params.Name, value float64) error {
	v, err := e.surface.Set(name, value)
	if err != nil {
		return err
	}
	if name == params.BPM {
		if err := e.sched.SetTempo(v, e.now()); err != nil {
			return err
		}
		e.log.Info("tempo changed", "bpm", v)
	}
	return nil
}

func (e *Engine) selectPreset(name string) error {
	p, ok := e.presets.Lookup(name)
	if !ok {
		return synth.InvalidParam("preset", name, "unknown preset")
	}
	if err := e.sched.SetScale(p.Scale, e.now()); err != nil {
		return err
	}
	e.current = p
	e.waveform = nil
	if _, err := e.surface.Set(params.Resonance, p.Resonance); err != nil {
		return err
	}
	if _, err := e.surface.Set(params.Drive, p.Drive); err != nil {
		return err
	}
	e.log.Info("preset selected", "preset", p.Name)
	return nil
}

func (e *Engine) modState() modulation.State {
	return modulation.State{
		Rate:        e.surface.Get(params.LFORate),
		Depth:       e.surface.Get(params.LFOAmount),
		Destination: e.modDest,
		Bias:        e.modBias,
	}
}

// request fills the surface-driven fields shared by every note.
func (e *Engine) request(freq float64) voice.Request {
	resonance := e.surface.Get(params.Resonance)
	drive := e.surface.Get(params.Drive)
	delayTime := e.surface.Get(params.Delay)
	echo := e.surface.Get(params.Echo)
	reverbTime := e.surface.Get(params.Reverb)
	return voice.Request{
		Frequency:    freq,
		Waveform:     e.waveform,
		VelocityGain: 1,
		Cutoff:       e.surface.Get(params.Filter),
		DelayTime:    &delayTime,
		Echo:         &echo,
		ReverbTime:   &reverbTime,
		Resonance:    &resonance,
		Drive:        &drive,
	}
}

func (e *Engine) sequencerNote(freq, at float64) (*voice.Voice, error) {
	req := e.request(freq)
	req.Start = at
	req.Hold = envelope.DefaultHold
	return e.pool.Request(e.now(), req, e.current, e.modState(), pool.NoKey)
}

func (e *Engine) noteOn(note uint8, gain, cutoffOffset float64) (*voice.Voice, error) {
	req := e.request(core.NoteToHz(int(note)))
	req.VelocityGain = gain
	req.CutoffOffset = cutoffOffset
	return e.pool.Request(e.now(), req, e.current, e.modState(), pool.NoteKey(note))
}

func (e *Engine) noteOff(note uint8) {
	e.pool.Release(pool.NoteKey(note), e.now())
}

// sink receives adapter callbacks while the engine mutex is held.
type sink struct{ e *Engine }

func (s sink) NoteOn(note uint8, gain, cutoffOffset float64) {
	if _, err := s.e.noteOn(note, gain, cutoffOffset); err != nil {
		s.e.log.Warn("note rejected", "note", note, "err", err)
	}
}

func (s sink) NoteOff(note uint8) { s.e.noteOff(note) }

func (s sink) ControlChange(name params.Name, value uint8) {
	v, err := s.e.surface.SetFromMIDI(name, value)
	if err != nil {
		s.e.log.Warn("controller rejected", "param", string(name), "err", err)
		return
	}
	if name == params.BPM {
		if err := s.e.sched.SetTempo(v, s.e.now()); err != nil {
			s.e.log.Warn("tempo rejected", "bpm", v, "err", err)
		}
	}
}

func (s sink) ModBias(bias float64) { s.e.modBias = bias }
