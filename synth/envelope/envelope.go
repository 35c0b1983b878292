// Package envelope schedules linear ADSR gain trajectories on an automation
// timeline. It never computes samples itself: every stage becomes a
// time-stamped set or ramp that the renderer reads later.
package envelope

import (
	"math"

	"github.com/cwbudde/algo-synth/dsp/param"
	"github.com/cwbudde/algo-synth/synth"
)

const (
	// BasePeak is the attack target for a velocity gain of 1.
	BasePeak = 0.3
	// DefaultHold is how long autonomous notes sit at sustain before their
	// release is triggered.
	DefaultHold = 0.4
)

// ADSR holds stage durations in seconds and the sustain ratio.
type ADSR struct {
	Attack  float64 `json:"attack"`
	Decay   float64 `json:"decay"`
	Sustain float64 `json:"sustain"`
	Release float64 `json:"release"`
}

// Validate rejects negative or non-finite stage times and a non-finite
// sustain. Out-of-range sustain is clamped later, not rejected.
func (a ADSR) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"attack", a.Attack},
		{"decay", a.Decay},
		{"release", a.Release},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return synth.InvalidParam(f.name, f.v, "must be finite and >= 0")
		}
	}
	if math.IsNaN(a.Sustain) || math.IsInf(a.Sustain, 0) {
		return synth.InvalidParam("sustain", a.Sustain, "must be finite")
	}
	return nil
}

// Normalized returns a copy with sustain clamped to [0, 1].
func (a ADSR) Normalized() ADSR {
	a.Sustain = math.Max(0, math.Min(a.Sustain, 1))
	return a
}

// AttackDecay returns the time from trigger to the sustain plateau.
func (a ADSR) AttackDecay() float64 {
	return a.Attack + a.Decay
}

// Envelope is one scheduled ADSR bound to a gain timeline.
type Envelope struct {
	gain       *param.Param
	adsr       ADSR
	start      float64
	peak       float64
	released   bool
	releaseEnd float64
}

// Schedule writes attack and decay onto gain starting at t0 and returns the
// envelope handle used to release it. The peak is BasePeak*velocityGain.
func Schedule(gain *param.Param, adsr ADSR, velocityGain, t0 float64) (*Envelope, error) {
	if err := adsr.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(velocityGain) || math.IsInf(velocityGain, 0) || velocityGain < 0 {
		return nil, synth.InvalidParam("velocity gain", velocityGain, "must be finite and >= 0")
	}
	if math.IsNaN(t0) || math.IsInf(t0, 0) || t0 < 0 {
		return nil, synth.InvalidParam("start time", t0, "must be finite and >= 0")
	}

	adsr = adsr.Normalized()
	e := &Envelope{
		gain:  gain,
		adsr:  adsr,
		start: t0,
		peak:  BasePeak * velocityGain,
	}

	gain.CancelScheduledValues(t0)
	if err := gain.SetValueAtTime(0, t0); err != nil {
		return nil, err
	}
	if err := gain.LinearRampToValueAtTime(e.peak, t0+adsr.Attack); err != nil {
		return nil, err
	}
	if err := gain.LinearRampToValueAtTime(e.peak*adsr.Sustain, t0+adsr.AttackDecay()); err != nil {
		return nil, err
	}
	return e, nil
}

// ADSR returns the normalized stage settings.
func (e *Envelope) ADSR() ADSR { return e.adsr }

// Start returns the trigger time.
func (e *Envelope) Start() float64 { return e.start }

// Peak returns the attack target.
func (e *Envelope) Peak() float64 { return e.peak }

// SustainLevel returns the plateau gain.
func (e *Envelope) SustainLevel() float64 { return e.peak * e.adsr.Sustain }

// SustainStart returns t0 + attack + decay.
func (e *Envelope) SustainStart() float64 { return e.start + e.adsr.AttackDecay() }

// HoldDeadline returns when an autonomous note held for hold seconds at
// sustain should be released.
func (e *Envelope) HoldDeadline(hold float64) float64 {
	return e.SustainStart() + math.Max(0, hold)
}

// ValueAt reports the scheduled gain at t.
func (e *Envelope) ValueAt(t float64) float64 { return e.gain.ValueAt(t) }

// Released reports whether Release has run.
func (e *Envelope) Released() bool { return e.released }

// ReleaseEnd returns when the release ramp reaches zero, or +Inf while the
// note is still held.
func (e *Envelope) ReleaseEnd() float64 {
	if !e.released {
		return math.Inf(1)
	}
	return e.releaseEnd
}

// Release starts the release stage at time at: the gain is pinned at its
// current value, later events are cancelled, and a ramp to zero over the
// release time follows. A release earlier than the trigger is moved to the
// trigger. Calling Release again is a no-op that returns the first end time.
func (e *Envelope) Release(at float64) float64 {
	if e.released {
		return e.releaseEnd
	}
	if math.IsNaN(at) || at < e.start {
		at = e.start
	}
	v := e.gain.ValueAt(at)
	e.gain.CancelScheduledValues(at)
	// Both times are finite and non-negative here, so neither call can fail.
	_ = e.gain.SetValueAtTime(v, at)
	_ = e.gain.LinearRampToValueAtTime(0, at+e.adsr.Release)

	e.released = true
	e.releaseEnd = at + e.adsr.Release
	return e.releaseEnd
}
