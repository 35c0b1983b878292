// Package params defines the named, ranged controls a performer can move and
// the surface that holds their current values.
package params

import (
	"math"

	"github.com/cwbudde/algo-synth/synth"
)

// Name identifies one control.
type Name string

const (
	Filter    Name = "filter"
	Resonance Name = "resonance"
	Drive     Name = "drive"
	Delay     Name = "delay"
	Echo      Name = "echo"
	Reverb    Name = "reverb"
	BPM       Name = "bpm"
	LFORate   Name = "lfoRate"
	LFOAmount Name = "lfoAmt"
	Volume    Name = "volume"
)

// Def describes the range and default of a control.
type Def struct {
	Name    Name
	Min     float64
	Max     float64
	Default float64
	Integer bool
}

// Clamp limits v to the range and rounds integer controls.
func (d Def) Clamp(v float64) float64 {
	v = math.Max(d.Min, math.Min(v, d.Max))
	if d.Integer {
		v = math.Round(v)
	}
	return v
}

// FromMIDI rescales a 7-bit controller value onto the range.
func (d Def) FromMIDI(value uint8) float64 {
	x := math.Min(float64(value), 127) / 127
	return d.Clamp(d.Min + x*(d.Max-d.Min))
}

// defs is the ordered list controllers are learned onto, first come first
// assigned. Resonance and drive defaults are replaced by the active preset.
var defs = []Def{
	{Name: Filter, Min: 100, Max: 8000, Default: 1500},
	{Name: Resonance, Min: 0, Max: 1, Default: 0.5},
	{Name: Drive, Min: 0, Max: 1, Default: 0.5},
	{Name: Delay, Min: 0, Max: 1, Default: 0.2},
	{Name: Echo, Min: 0, Max: 0.95, Default: 0.18},
	{Name: Reverb, Min: 0.01, Max: 1, Default: 0.3},
	{Name: BPM, Min: 40, Max: 240, Default: 90, Integer: true},
	{Name: LFORate, Min: 0.1, Max: 20, Default: 5},
	{Name: LFOAmount, Min: 0, Max: 100, Default: 0},
	{Name: Volume, Min: 0, Max: 100, Default: 50, Integer: true},
}

// Defs returns a copy of the ordered control list.
func Defs() []Def {
	return append([]Def(nil), defs...)
}

// Lookup returns the definition for name.
func Lookup(name Name) (Def, bool) {
	for _, d := range defs {
		if d.Name == name {
			return d, true
		}
	}
	return Def{}, false
}

// Surface holds the current value of every control. The zero value is not
// usable; call NewSurface.
type Surface struct {
	values map[Name]float64
}

// NewSurface returns a surface at the default values.
func NewSurface() *Surface {
	s := &Surface{values: make(map[Name]float64, len(defs))}
	s.Reset()
	return s
}

// Reset restores every default.
func (s *Surface) Reset() {
	for _, d := range defs {
		s.values[d.Name] = d.Default
	}
}

// Get returns the current value of name, or 0 for an unknown control.
func (s *Surface) Get(name Name) float64 {
	return s.values[name]
}

// Set clamps v into the control's range and stores it, returning the stored
// value.
func (s *Surface) Set(name Name, v float64) (float64, error) {
	d, ok := Lookup(name)
	if !ok {
		return 0, synth.InvalidParam("control", string(name), "unknown control")
	}
	if math.IsNaN(v) {
		return 0, synth.InvalidParam(string(name), v, "must be a number")
	}
	v = d.Clamp(v)
	s.values[name] = v
	return v, nil
}

// SetFromMIDI rescales a 0..127 controller value onto name.
func (s *Surface) SetFromMIDI(name Name, value uint8) (float64, error) {
	d, ok := Lookup(name)
	if !ok {
		return 0, synth.InvalidParam("control", string(name), "unknown control")
	}
	v := d.FromMIDI(value)
	s.values[name] = v
	return v, nil
}

// Values returns a copy of every control value.
func (s *Surface) Values() map[Name]float64 {
	out := make(map[Name]float64, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
