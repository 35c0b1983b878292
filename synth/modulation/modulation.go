// Package modulation routes one sine LFO per voice to the filter cutoff, the
// pan position or the oscillator pitch.
package modulation

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-synth/synth"
)

// BiasMultiplier scales the expressive bias (mod wheel) into LFO depth.
const BiasMultiplier = 9

// Destination selects what the LFO modulates.
type Destination int

const (
	None Destination = iota
	Filter
	Pan
	Pitch
)

var destinationNames = [...]string{"none", "filter", "pan", "pitch"}

func (d Destination) String() string {
	if d >= None && d <= Pitch {
		return destinationNames[d]
	}
	return fmt.Sprintf("Destination(%d)", int(d))
}

// ParseDestination maps "none", "filter", "pan" or "pitch" to a Destination.
func ParseDestination(name string) (Destination, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range destinationNames {
		if s == n {
			return Destination(i), nil
		}
	}
	return None, fmt.Errorf("modulation: unknown destination %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (d Destination) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Destination) UnmarshalText(b []byte) error {
	v, err := ParseDestination(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// State is the modulation setting read fresh for every new voice.
type State struct {
	Rate        float64     `json:"rate"`
	Depth       float64     `json:"depth"`
	Destination Destination `json:"destination"`
	// Bias in [0, 1] deepens the LFO by Bias*BiasMultiplier.
	Bias float64 `json:"bias"`
}

// EffectiveDepth returns Depth + Bias*BiasMultiplier with Bias clamped.
func (s State) EffectiveDepth() float64 {
	return s.Depth + math.Max(0, math.Min(s.Bias, 1))*BiasMultiplier
}

// Active reports whether a voice built with s needs an LFO.
func (s State) Active() bool {
	return s.Destination != None && s.EffectiveDepth() != 0
}

// Validate rejects settings an LFO cannot be built from.
func (s State) Validate() error {
	if math.IsNaN(s.Rate) || math.IsInf(s.Rate, 0) || s.Rate < 0 {
		return synth.InvalidParam("lfo rate", s.Rate, "must be finite and >= 0")
	}
	if math.IsNaN(s.Depth) || math.IsInf(s.Depth, 0) {
		return synth.InvalidParam("lfo depth", s.Depth, "must be finite")
	}
	if math.IsNaN(s.Bias) {
		return synth.InvalidParam("lfo bias", s.Bias, "must be a number")
	}
	if s.Destination < None || s.Destination > Pitch {
		return synth.InvalidParam("lfo destination", int(s.Destination), "unknown destination")
	}
	return nil
}

// LFO is a sine oscillator that exists only in [start, stop). Its phase is
// zero at start, so the output is a pure function of time.
type LFO struct {
	dest  Destination
	rate  float64
	depth float64
	start float64
	stop  float64
}

// New returns the voice LFO for s, or nil when s is inactive.
func New(s State, start, stop float64) (*LFO, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if !s.Active() {
		return nil, nil
	}
	if !(stop >= start) {
		return nil, synth.InvalidParam("lfo stop", stop, "must not precede start")
	}
	return &LFO{
		dest:  s.Destination,
		rate:  s.Rate,
		depth: s.EffectiveDepth(),
		start: start,
		stop:  stop,
	}, nil
}

// Destination returns the routed target.
func (l *LFO) Destination() Destination { return l.dest }

// Depth returns the peak offset in destination units (Hz for filter and
// pitch, pan units for pan).
func (l *LFO) Depth() float64 { return l.depth }

// StopTime returns when the LFO falls silent.
func (l *LFO) StopTime() float64 { return l.stop }

// Stop moves the stop time earlier. A later time is ignored.
func (l *LFO) Stop(at float64) {
	if at < l.stop {
		l.stop = math.Max(at, l.start)
	}
}

// Running reports whether the LFO produces output at t.
func (l *LFO) Running(t float64) bool {
	return t >= l.start && t < l.stop
}

// ValueAt returns the modulation offset at t, zero outside [start, stop).
func (l *LFO) ValueAt(t float64) float64 {
	if !l.Running(t) {
		return 0
	}
	return l.depth * math.Sin(2*math.Pi*l.rate*(t-l.start))
}

// Render fills dst with offsets sampled at start, start+step, ...
func (l *LFO) Render(dst []float64, start, step float64) {
	for i := range dst {
		dst[i] = l.ValueAt(start + float64(i)*step)
	}
}
