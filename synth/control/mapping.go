package control

import "github.com/cwbudde/algo-synth/synth/params"

// Mapping assigns controller numbers to parameters in first-seen order. It
// holds at most one controller per parameter; once every parameter is taken
// further controllers are ignored.
type Mapping struct {
	order    []params.Name
	assigned map[uint8]params.Name
}

// NewMapping returns an empty mapping over the ordered parameter list.
func NewMapping(order []params.Name) *Mapping {
	return &Mapping{
		order:    append([]params.Name(nil), order...),
		assigned: make(map[uint8]params.Name, len(order)),
	}
}

// DefaultOrder lists every surface parameter in learn order.
func DefaultOrder() []params.Name {
	defs := params.Defs()
	out := make([]params.Name, len(defs))
	for i, d := range defs {
		out[i] = d.Name
	}
	return out
}

// Lookup returns the parameter bound to cc.
func (m *Mapping) Lookup(cc uint8) (params.Name, bool) {
	name, ok := m.assigned[cc]
	return name, ok
}

// Learn returns the parameter bound to cc, binding the next free one first
// if needed. It reports false when cc is new and the mapping is full.
func (m *Mapping) Learn(cc uint8) (name params.Name, learned, ok bool) {
	if name, ok := m.assigned[cc]; ok {
		return name, false, true
	}
	if len(m.assigned) >= len(m.order) {
		return "", false, false
	}
	name = m.order[len(m.assigned)]
	m.assigned[cc] = name
	return name, true, true
}

// Len returns the number of bound controllers.
func (m *Mapping) Len() int { return len(m.assigned) }

// Cap returns the number of parameters that can be bound.
func (m *Mapping) Cap() int { return len(m.order) }

// Bindings returns a copy of the controller to parameter map.
func (m *Mapping) Bindings() map[uint8]params.Name {
	out := make(map[uint8]params.Name, len(m.assigned))
	for k, v := range m.assigned {
		out[k] = v
	}
	return out
}
