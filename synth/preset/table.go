package preset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/synth/envelope"
)

// DefaultName is the preset selected at startup.
const DefaultName = "plants"

// Table is an ordered, read-only set of presets keyed by name.
type Table struct {
	order   []string
	presets map[string]Preset
}

// NewTable validates presets and builds a table in the given order. A later
// preset replaces an earlier one with the same name in place.
func NewTable(presets ...Preset) (*Table, error) {
	t := &Table{presets: make(map[string]Preset, len(presets))}
	for _, p := range presets {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, ok := t.presets[p.Name]; !ok {
			t.order = append(t.order, p.Name)
		}
		t.presets[p.Name] = p.Clone()
	}
	return t, nil
}

// Lookup returns a deep copy of the named preset.
func (t *Table) Lookup(name string) (Preset, bool) {
	p, ok := t.presets[name]
	if !ok {
		return Preset{}, false
	}
	return p.Clone(), true
}

// Names returns preset names in table order.
func (t *Table) Names() []string {
	return append([]string(nil), t.order...)
}

// Len returns the number of presets.
func (t *Table) Len() int { return len(t.order) }

// All returns deep copies of every preset in table order.
func (t *Table) All() []Preset {
	out := make([]Preset, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.presets[name].Clone())
	}
	return out
}

// Next returns the name following name, wrapping around. An unknown name
// yields the first preset.
func (t *Table) Next(name string, step int) string {
	if len(t.order) == 0 {
		return ""
	}
	for i, n := range t.order {
		if n == name {
			j := (i + step) % len(t.order)
			if j < 0 {
				j += len(t.order)
			}
			return t.order[j]
		}
	}
	return t.order[0]
}

// Merge returns a table holding t followed by other. Presets in other replace
// same-named presets of t.
func (t *Table) Merge(other *Table) *Table {
	out := &Table{presets: make(map[string]Preset, len(t.presets)+len(other.presets))}
	for _, src := range []*Table{t, other} {
		for _, name := range src.order {
			if _, ok := out.presets[name]; !ok {
				out.order = append(out.order, name)
			}
			out.presets[name] = src.presets[name].Clone()
		}
	}
	return out
}

// Decode reads a JSON array of presets. Fields left out take the values a
// hand-written preset would get: fatness 1, no detune, centre pan, ladder
// filter and the default delay, echo and reverb.
func Decode(r io.Reader) (*Table, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("preset: decode: %w", err)
	}
	presets := make([]Preset, 0, len(raw))
	for i, msg := range raw {
		p := Preset{
			Waveform:  osc.Sine,
			Envelope:  envelope.ADSR{Attack: 0.1, Decay: 0.2, Sustain: 0.5, Release: 0.5},
			Detune:    []float64{0},
			Fatness:   1,
			Pan:       Fixed(0),
			Filter:    Ladder,
			Cutoff:    1500,
			Resonance: 0.5,
			Drive:     0.5,
			Delay:     DefaultDelay,
			Echo:      DefaultEcho,
			Reverb:    DefaultReverb,
		}
		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("preset: entry %d: %w", i, err)
		}
		presets = append(presets, p)
	}
	t, err := NewTable(presets...)
	if err != nil {
		return nil, fmt.Errorf("preset: %w", err)
	}
	return t, nil
}

// LoadJSON reads a preset file written as a JSON array.
func LoadJSON(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("preset: open: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes the table as an indented JSON array. Presets with a PanFunc
// pan cannot be encoded.
func (t *Table) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t.All())
}
