// Package preset holds the named sound descriptions the synthesizer plays.
package preset

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/synth"
	"github.com/cwbudde/algo-synth/synth/envelope"
)

// Values applied when a preset leaves the delay, echo or reverb unset.
const (
	DefaultDelay  = 0.2
	DefaultEcho   = 0.18
	DefaultReverb = 0.3
)

// FilterKind selects the filter topology of a voice.
type FilterKind int

const (
	// Ladder is four cascaded resonant lowpass sections.
	Ladder FilterKind = iota
	// Moog is the nonlinear transistor ladder model.
	Moog
	Lowpass
	Highpass
	Bandpass
	Notch
)

var filterKindNames = [...]string{"ladder", "moog", "lowpass", "highpass", "bandpass", "notch"}

func (k FilterKind) String() string {
	if k.Valid() {
		return filterKindNames[k]
	}
	return fmt.Sprintf("FilterKind(%d)", int(k))
}

// Valid reports whether k names a known topology.
func (k FilterKind) Valid() bool {
	return k >= Ladder && k <= Notch
}

// ParseFilterKind maps a topology name to its FilterKind.
func ParseFilterKind(name string) (FilterKind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range filterKindNames {
		if s == n {
			return FilterKind(i), nil
		}
	}
	return Ladder, fmt.Errorf("preset: unknown filter kind %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (k FilterKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("preset: invalid filter kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *FilterKind) UnmarshalText(b []byte) error {
	v, err := ParseFilterKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Preset is one named sound.
type Preset struct {
	Name      string        `json:"name"`
	Scale     []float64     `json:"scale"`
	Color     string        `json:"color"`
	Waveform  osc.Waveform  `json:"wave"`
	Envelope  envelope.ADSR `json:"envelope"`
	Detune    []float64     `json:"detune"`
	Fatness   int           `json:"fat"`
	Pan       Pan           `json:"pan"`
	Filter    FilterKind    `json:"filterType"`
	Cutoff    float64       `json:"cutoff"`
	Resonance float64       `json:"resonance"`
	Drive     float64       `json:"drive"`
	Delay     float64       `json:"delay"`
	Echo      float64       `json:"echo"`
	Reverb    float64       `json:"reverb"`
	Visual    string        `json:"visual"`
}

// Clone returns a deep copy.
func (p Preset) Clone() Preset {
	p.Scale = append([]float64(nil), p.Scale...)
	p.Detune = append([]float64(nil), p.Detune...)
	return p
}

// RGB parses Color.
func (p Preset) RGB() (colorful.Color, error) {
	c, err := colorful.Hex(p.Color)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("preset %s: color: %w", p.Name, err)
	}
	return c, nil
}

// Validate checks every field a voice is built from.
func (p Preset) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return synth.InvalidParam("preset name", p.Name, "must not be empty")
	}
	if len(p.Scale) == 0 {
		return synth.InvalidParam(p.Name+" scale", p.Scale, "must not be empty")
	}
	for _, f := range p.Scale {
		if !(f > 0) || math.IsInf(f, 0) {
			return synth.InvalidParam(p.Name+" scale", f, "frequencies must be > 0")
		}
	}
	if !p.Waveform.Valid() {
		return synth.InvalidParam(p.Name+" waveform", p.Waveform, "unknown waveform")
	}
	if err := p.Envelope.Validate(); err != nil {
		return err
	}
	if p.Fatness < 1 {
		return synth.InvalidParam(p.Name+" fatness", p.Fatness, "must be >= 1")
	}
	for _, c := range p.Detune {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return synth.InvalidParam(p.Name+" detune", c, "must be finite")
		}
	}
	if err := p.Pan.validate(); err != nil {
		return synth.InvalidParam(p.Name+" pan", p.Pan, err.Error())
	}
	if !p.Filter.Valid() {
		return synth.InvalidParam(p.Name+" filter", int(p.Filter), "unknown filter kind")
	}
	if !(p.Cutoff > 0) || math.IsInf(p.Cutoff, 0) {
		return synth.InvalidParam(p.Name+" cutoff", p.Cutoff, "must be > 0")
	}
	if !inUnit(p.Resonance) {
		return synth.InvalidParam(p.Name+" resonance", p.Resonance, "must be in [0, 1]")
	}
	if !inUnit(p.Drive) {
		return synth.InvalidParam(p.Name+" drive", p.Drive, "must be in [0, 1]")
	}
	if !inUnit(p.Delay) {
		return synth.InvalidParam(p.Name+" delay", p.Delay, "must be in [0, 1]")
	}
	if !(p.Echo >= 0 && p.Echo < 1) {
		return synth.InvalidParam(p.Name+" echo", p.Echo, "must be in [0, 1)")
	}
	if !inUnit(p.Reverb) {
		return synth.InvalidParam(p.Name+" reverb", p.Reverb, "must be in [0, 1]")
	}
	if p.Color != "" {
		if _, err := p.RGB(); err != nil {
			return synth.InvalidParam(p.Name+" color", p.Color, err.Error())
		}
	}
	return nil
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
