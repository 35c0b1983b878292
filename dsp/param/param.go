// Package param implements a sample-clock automation timeline: a value that
// is set or ramped linearly at absolute times and sampled by the renderer.
//
// Events are ordered by time. Events that share a time keep their insertion
// order, so a SetValueAtTime followed by a ramp at the same instant behaves
// like a step followed by the ramp.
package param

import (
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-synth/dsp/interp"
)

type eventKind int

const (
	kindSet eventKind = iota
	kindLinearRamp
)

type event struct {
	kind  eventKind
	time  float64
	value float64
}

// Param is a single automatable value.
//
// A Param is not safe for concurrent use; the owner serializes scheduling and
// rendering.
type Param struct {
	defaultValue float64
	events       []event
}

// New returns a Param that reports defaultValue until the first event.
func New(defaultValue float64) *Param {
	return &Param{defaultValue: defaultValue}
}

// SetValueAtTime schedules an instantaneous change to value at time t.
func (p *Param) SetValueAtTime(value, t float64) error {
	if err := validate(value, t); err != nil {
		return err
	}
	p.insert(event{kind: kindSet, time: t, value: value})
	return nil
}

// LinearRampToValueAtTime schedules a linear ramp that starts at the previous
// event and reaches value at time t.
func (p *Param) LinearRampToValueAtTime(value, t float64) error {
	if err := validate(value, t); err != nil {
		return err
	}
	p.insert(event{kind: kindLinearRamp, time: t, value: value})
	return nil
}

// CancelScheduledValues removes every event at or after t.
func (p *Param) CancelScheduledValues(t float64) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time >= t })
	p.events = p.events[:i]
}

// CancelAll removes every event; the param reverts to its default value.
func (p *Param) CancelAll() {
	p.events = p.events[:0]
}

// Len returns the number of scheduled events.
func (p *Param) Len() int { return len(p.events) }

// ValueAt returns the automation value at time t.
func (p *Param) ValueAt(t float64) float64 {
	v, _ := p.valueFrom(0, t)
	return v
}

// Render fills dst with values sampled at start, start+step, ...
// The timeline is walked once, so step must be non-negative.
func (p *Param) Render(dst []float64, start, step float64) {
	idx := 0
	for i := range dst {
		dst[i], idx = p.valueFrom(idx, start+float64(i)*step)
	}
}

// Prune drops events that can no longer influence values at or after t.
// The last event at or before t is kept as the anchor for what follows.
func (p *Param) Prune(t float64) {
	last := -1
	for i, e := range p.events {
		if e.time > t {
			break
		}
		last = i
	}
	if last <= 0 {
		return
	}
	anchor := p.events[last]
	anchor.kind = kindSet
	p.events[0] = anchor
	n := copy(p.events[1:], p.events[last+1:])
	p.events = p.events[:1+n]
}

// valueFrom evaluates the timeline at t starting the event scan at idx,
// which must point at or before the first event later than t. It returns the
// value and the index to resume from for a later t.
func (p *Param) valueFrom(idx int, t float64) (float64, int) {
	value := p.defaultValue
	prevTime := 0.0
	if idx > 0 {
		value = p.events[idx-1].value
		prevTime = p.events[idx-1].time
	}
	for idx < len(p.events) && p.events[idx].time <= t {
		value = p.events[idx].value
		prevTime = p.events[idx].time
		idx++
	}
	if idx < len(p.events) && p.events[idx].kind == kindLinearRamp {
		next := p.events[idx]
		return interp.Between(t, prevTime, value, next.time, next.value), idx
	}
	return value, idx
}

func (p *Param) insert(e event) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > e.time })
	p.events = append(p.events, event{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
}

func validate(value, t float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("param: value must be finite: %v", value)
	}
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		return fmt.Errorf("param: time must be finite and >= 0: %v", t)
	}
	return nil
}
