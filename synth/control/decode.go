// Package control turns raw 3-byte MIDI frames into note and parameter
// actions: note-on/off keyed by note number, a mod wheel for the LFO bias and
// controllers learned onto the parameter surface in first-seen order.
package control

import (
	"fmt"

	"github.com/cwbudde/algo-synth/synth"
)

// Kind classifies a decoded frame.
type Kind int

const (
	// Other is a valid frame with a status the adapter ignores.
	Other Kind = iota
	NoteOn
	NoteOff
	ControlChange
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "note-on"
	case NoteOff:
		return "note-off"
	case ControlChange:
		return "control-change"
	default:
		return "other"
	}
}

// Message is a decoded channel voice frame.
type Message struct {
	Kind    Kind
	Channel uint8
	// Data1 is the note or controller number, Data2 the velocity or value.
	Data1 uint8
	Data2 uint8
}

// Decode parses one frame. A note-on with velocity 0 decodes as note-off.
// Malformed frames return an error wrapping synth.ErrDecodeIgnorable.
func Decode(frame []byte) (Message, error) {
	if len(frame) != 3 {
		return Message{}, fmt.Errorf("control: frame of %d bytes: %w", len(frame), synth.ErrDecodeIgnorable)
	}
	status, d1, d2 := frame[0], frame[1], frame[2]
	if status&0x80 == 0 {
		return Message{}, fmt.Errorf("control: missing status bit in 0x%02x: %w", status, synth.ErrDecodeIgnorable)
	}
	if d1&0x80 != 0 || d2&0x80 != 0 {
		return Message{}, fmt.Errorf("control: data byte out of range: %w", synth.ErrDecodeIgnorable)
	}
	m := Message{Channel: status & 0x0f, Data1: d1, Data2: d2}
	switch status & 0xf0 {
	case 0x90:
		if d2 > 0 {
			m.Kind = NoteOn
		} else {
			m.Kind = NoteOff
		}
	case 0x80:
		m.Kind = NoteOff
	case 0xb0:
		m.Kind = ControlChange
	default:
		m.Kind = Other
	}
	return m, nil
}
