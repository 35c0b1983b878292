// Package voice builds and renders the per-note stereo signal chain:
//
//	oscillators -> envelope gain -> pan -> filter -> drive -> taps
//
// The taps run in parallel: the dry signal and a feedback delay go to the
// output bus, and a delayed copy feeds the master reverb send.
package voice

import (
	"math"
	"math/rand/v2"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/delay"
	"github.com/cwbudde/algo-synth/dsp/interp"
	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/dsp/param"
	"github.com/cwbudde/algo-synth/dsp/shaper"
	"github.com/cwbudde/algo-synth/synth"
	"github.com/cwbudde/algo-synth/synth/envelope"
	"github.com/cwbudde/algo-synth/synth/modulation"
	"github.com/cwbudde/algo-synth/synth/preset"
)

const (
	// DefaultMaxHold bounds how long a held note sustains before it is
	// released on its own.
	DefaultMaxHold = 10.0
	// DriftCents is the spread of the random per-oscillator detune.
	DriftCents = 9.0
	// DriftHz is the spread of the slow analog pitch drift.
	DriftHz = 2.0
	// Tail keeps an autonomous voice alive past its release.
	Tail = 0.5
)

// Request describes one note. Pointer fields override the preset when set.
type Request struct {
	Frequency float64
	Waveform  *osc.Waveform
	// VelocityGain scales the envelope peak, in (0, 1].
	VelocityGain float64
	Envelope     *envelope.ADSR
	// Cutoff replaces the preset cutoff when > 0. CutoffOffset is added on
	// top.
	Cutoff       float64
	CutoffOffset float64
	// ModDepth is added to the modulation depth.
	ModDepth float64
	// Start is the trigger time; earlier times start now.
	Start float64
	// Hold > 0 releases the note Hold seconds after the sustain plateau is
	// reached. Zero holds it until Release.
	Hold       float64
	DelayTime  *float64
	Echo       *float64
	ReverbTime *float64
	Resonance  *float64
	Drive      *float64
}

// Config carries engine-wide settings every voice needs.
type Config struct {
	SampleRate float64
	// Rand drives detune drift and random pan. Nil uses the global source.
	Rand *rand.Rand
	// MaxHold bounds held notes; zero means DefaultMaxHold.
	MaxHold float64
}

type unison struct {
	osc      *osc.Oscillator
	freq     float64
	driftHz  float64
	driftEnd float64
}

// Voice is one sounding note.
type Voice struct {
	id  uint64
	key int

	sampleRate float64
	start      float64
	end        float64
	holdUntil  float64
	autonomous bool
	terminated bool

	oscs   []unison
	gain   *param.Param
	env    *envelope.Envelope
	pan    float64
	lfo    *modulation.LFO
	cutoff float64

	filterL, filterR filterStage
	curve            *shaper.Curve
	delayL, delayR   *delay.Feedback
	sendL, sendR     *delay.Feedback

	mono, gainBuf, l, r, tapL, tapR []float64
}

// New validates req against p and builds the chain. A rejected request
// returns a *synth.ParamError and no voice.
func New(id uint64, key int, now float64, req Request, p preset.Preset, mod modulation.State, cfg Config) (*Voice, error) {
	if !(cfg.SampleRate > 0) || math.IsInf(cfg.SampleRate, 0) {
		return nil, synth.InvalidParam("sample rate", cfg.SampleRate, "must be > 0")
	}
	s, err := resolve(req, p)
	if err != nil {
		return nil, err
	}
	mod.Depth += req.ModDepth
	if err := mod.Validate(); err != nil {
		return nil, err
	}

	t0 := math.Max(now, req.Start)
	adsr := s.adsr.Normalized()
	maxHold := cfg.MaxHold
	if maxHold <= 0 {
		maxHold = DefaultMaxHold
	}

	v := &Voice{
		id:         id,
		key:        key,
		sampleRate: cfg.SampleRate,
		start:      t0,
		autonomous: req.Hold > 0,
		gain:       param.New(0),
		cutoff:     s.cutoff,
	}
	if v.autonomous {
		v.holdUntil = t0 + adsr.AttackDecay() + req.Hold
		v.end = math.Max(t0+adsr.AttackDecay()+adsr.Release+Tail, v.holdUntil+adsr.Release)
	} else {
		v.holdUntil = t0 + adsr.AttackDecay() + maxHold
		v.end = v.holdUntil + adsr.Release
	}

	if v.env, err = envelope.Schedule(v.gain, adsr, s.velocity, t0); err != nil {
		return nil, err
	}

	driftEnd := t0 + adsr.AttackDecay() + adsr.Sustain + Tail
	v.oscs = make([]unison, p.Fatness)
	for i := range v.oscs {
		o, err := osc.New(s.wave, cfg.SampleRate)
		if err != nil {
			return nil, synth.InvalidParam("waveform", s.wave, err.Error())
		}
		cents := (randFloat(cfg.Rand) - 0.5) * DriftCents
		if len(p.Detune) > 0 {
			cents += p.Detune[i%len(p.Detune)]
		}
		v.oscs[i] = unison{
			osc:      o,
			freq:     req.Frequency * core.CentsToRatio(cents),
			driftHz:  (randFloat(cfg.Rand) - 0.5) * DriftHz,
			driftEnd: driftEnd,
		}
	}

	v.pan = p.Pan.Value(t0, cfg.Rand)
	if v.lfo, err = modulation.New(mod, t0, v.end); err != nil {
		return nil, err
	}

	if v.filterL, err = newFilterStage(p.Filter, v.cutoff, s.resonance, s.drive, cfg.SampleRate); err != nil {
		return nil, synth.InvalidParam("filter", p.Filter, err.Error())
	}
	v.filterR, _ = newFilterStage(p.Filter, v.cutoff, s.resonance, s.drive, cfg.SampleRate)

	if v.curve, err = shaper.DriveCurve(s.drive); err != nil {
		return nil, synth.InvalidParam("drive", s.drive, err.Error())
	}
	if v.delayL, err = delay.NewFeedback(cfg.SampleRate, s.delayTime, s.echo); err != nil {
		return nil, synth.InvalidParam("delay", s.delayTime, err.Error())
	}
	v.delayR, _ = delay.NewFeedback(cfg.SampleRate, s.delayTime, s.echo)
	if v.sendL, err = delay.NewFeedback(cfg.SampleRate, s.reverbTime, 0); err != nil {
		return nil, synth.InvalidParam("reverb", s.reverbTime, err.Error())
	}
	v.sendR, _ = delay.NewFeedback(cfg.SampleRate, s.reverbTime, 0)
	return v, nil
}

func randFloat(r *rand.Rand) float64 {
	if r != nil {
		return r.Float64()
	}
	return rand.Float64()
}

// ID returns the voice identifier.
func (v *Voice) ID() uint64 { return v.id }

// Key returns the note number the voice is keyed by, or a negative value for
// untracked voices.
func (v *Voice) Key() int { return v.key }

// Start returns the trigger time.
func (v *Voice) Start() float64 { return v.start }

// End returns when the voice falls silent.
func (v *Voice) End() float64 { return v.end }

// HoldDeadline returns when the voice releases on its own.
func (v *Voice) HoldDeadline() float64 { return v.holdUntil }

// Autonomous reports whether the voice was started with a hold time.
func (v *Voice) Autonomous() bool { return v.autonomous }

// Released reports whether the release phase has been scheduled.
func (v *Voice) Released() bool { return v.env.Released() }

// Terminated reports whether the voice has been torn down.
func (v *Voice) Terminated() bool { return v.terminated }

// Pan returns the base stereo position.
func (v *Voice) Pan() float64 { return v.pan }

// Unison returns the number of oscillators.
func (v *Voice) Unison() int { return len(v.oscs) }

// Frequencies returns the detuned oscillator frequencies before drift.
func (v *Voice) Frequencies() []float64 {
	out := make([]float64, len(v.oscs))
	for i, u := range v.oscs {
		out[i] = u.freq
	}
	return out
}

// LFO returns the voice modulator, or nil.
func (v *Voice) LFO() *modulation.LFO { return v.lfo }

// Envelope returns the gain envelope.
func (v *Voice) Envelope() *envelope.Envelope { return v.env }

// GainAt returns the envelope gain at t.
func (v *Voice) GainAt(t float64) float64 { return v.gain.ValueAt(t) }

// Release starts the release phase at the later of at and the trigger time
// and returns the new end time, never earlier than the sustain plateau.
// Releasing twice keeps the first release.
func (v *Voice) Release(at float64) float64 {
	if v.terminated || v.env.Released() {
		return v.end
	}
	v.end = math.Max(v.env.Release(at), v.start+v.env.ADSR().AttackDecay())
	if v.lfo != nil {
		v.lfo.Stop(v.end)
	}
	return v.end
}

// Terminate silences the voice at once. It is idempotent.
func (v *Voice) Terminate(at float64) {
	if v.terminated {
		return
	}
	v.terminated = true
	if at < v.end {
		v.end = math.Max(at, v.start)
	}
	if v.lfo != nil {
		v.lfo.Stop(v.end)
	}
	for i := range v.oscs {
		v.oscs[i].osc.Reset()
	}
	v.gain.CancelAll()
}

// Render adds n = len(busL) frames starting at time start to the output bus
// and the reverb send. Nothing is added before the trigger time or after
// teardown.
func (v *Voice) Render(busL, busR, sendL, sendR []float64, start float64) {
	n := len(busL)
	step := 1 / v.sampleRate
	if v.terminated || n == 0 || start+float64(n)*step <= v.start || start >= v.end {
		return
	}
	v.mono = core.EnsureLen(v.mono, n)
	v.gainBuf = core.EnsureLen(v.gainBuf, n)
	v.l = core.EnsureLen(v.l, n)
	v.r = core.EnsureLen(v.r, n)
	v.tapL = core.EnsureLen(v.tapL, n)
	v.tapR = core.EnsureLen(v.tapR, n)

	dest := modulation.None
	if v.lfo != nil {
		dest = v.lfo.Destination()
	}

	for i := range v.mono {
		t := start + float64(i)*step
		var pitch float64
		if dest == modulation.Pitch {
			pitch = v.lfo.ValueAt(t)
		}
		var sum float64
		for j := range v.oscs {
			u := &v.oscs[j]
			drift := interp.Between(t, v.start, 0, u.driftEnd, u.driftHz)
			sum += u.osc.Next(u.freq + drift + pitch)
		}
		v.mono[i] = sum
	}
	v.gain.Render(v.gainBuf, start, step)
	vecmath.MulBlockInPlace(v.mono, v.gainBuf)

	for i, x := range v.mono {
		p := v.pan
		if dest == modulation.Pan {
			p = math.Max(-1, math.Min(p+v.lfo.ValueAt(start+float64(i)*step), 1))
		}
		theta := (p + 1) / 2 * math.Pi / 2
		v.l[i] = x * math.Cos(theta)
		v.r[i] = x * math.Sin(theta)
	}

	if dest == modulation.Filter {
		hz := v.cutoff + v.lfo.ValueAt(start)
		v.filterL.setCutoff(hz)
		v.filterR.setCutoff(hz)
	}
	v.filterL.process(v.l)
	v.filterR.process(v.r)
	v.curve.ProcessInPlace(v.l)
	v.curve.ProcessInPlace(v.r)

	vecmath.AddBlockInPlace(busL, v.l)
	vecmath.AddBlockInPlace(busR, v.r)
	v.delayL.ProcessTo(v.tapL, v.l)
	v.delayR.ProcessTo(v.tapR, v.r)
	vecmath.AddBlockInPlace(busL, v.tapL)
	vecmath.AddBlockInPlace(busR, v.tapR)
	if sendL != nil && sendR != nil {
		v.sendL.ProcessTo(v.tapL, v.l)
		v.sendR.ProcessTo(v.tapR, v.r)
		vecmath.AddBlockInPlace(sendL, v.tapL)
		vecmath.AddBlockInPlace(sendR, v.tapR)
	}
	v.gain.Prune(start)
}

// Cutoff returns the filter cutoff currently applied to the left channel.
func (v *Voice) Cutoff() float64 { return v.filterL.cutoff() }
