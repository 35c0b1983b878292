package engine

import (
	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/synth/modulation"
	"github.com/cwbudde/algo-synth/synth/params"
)

// Message is anything Step accepts.
type Message interface {
	message()
}

// NoteOn starts a held note keyed by Note. Velocity 0 releases it.
type NoteOn struct {
	Note     uint8
	Velocity uint8
}

// NoteOff releases the note keyed by Note only.
type NoteOff struct {
	Note uint8
}

// ControlChange moves the mod wheel or a learned parameter.
type ControlChange struct {
	Controller uint8
	Value      uint8
}

// Frame is a raw 3-byte MIDI frame.
type Frame []byte

// SetParam sets a surface control; values are clamped into range.
type SetParam struct {
	Name  params.Name
	Value float64
}

// SelectPreset switches presets, clearing the waveform override and taking
// resonance and drive from the new preset.
type SelectPreset struct {
	Name string
}

// SetWaveform overrides the preset waveform. A nil Waveform clears the
// override.
type SetWaveform struct {
	Waveform *osc.Waveform
}

// SetModDest routes the LFO of future voices.
type SetModDest struct {
	Destination modulation.Destination
}

// Start runs the sequencer.
type Start struct{}

// Stop halts the sequencer, silences its voices and releases held notes.
type Stop struct{}

// Tick only drains due commands.
type Tick struct{}

func (NoteOn) message()        {}
func (NoteOff) message()       {}
func (ControlChange) message() {}
func (Frame) message()         {}
func (SetParam) message()      {}
func (SelectPreset) message()  {}
func (SetWaveform) message()   {}
func (SetModDest) message()    {}
func (Start) message()         {}
func (Stop) message()          {}
func (Tick) message()          {}
