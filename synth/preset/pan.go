package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// PanKind tags which variant a Pan holds.
type PanKind int

const (
	PanFixed PanKind = iota
	PanRandom
	PanSine
	PanFunc
)

var panKindNames = [...]string{"fixed", "random", "sine", "func"}

func (k PanKind) String() string {
	if k >= PanFixed && k <= PanFunc {
		return panKindNames[k]
	}
	return fmt.Sprintf("PanKind(%d)", int(k))
}

// Pan is the stereo position policy of a preset: a fixed value or a function
// of time evaluated once when a voice starts. Values are clamped to [-1, 1].
type Pan struct {
	kind     PanKind
	value    float64
	periodMs float64
	fn       func(t float64) float64
}

// Fixed places every voice at v.
func Fixed(v float64) Pan {
	return Pan{kind: PanFixed, value: v}
}

// Random places every voice uniformly in [-1, 1].
func Random() Pan {
	return Pan{kind: PanRandom}
}

// Sine sweeps the position as sin(t / period) with t and period in
// milliseconds.
func Sine(periodMs float64) Pan {
	return Pan{kind: PanSine, periodMs: periodMs}
}

// TimeVarying evaluates fn at the voice start time in seconds.
func TimeVarying(fn func(t float64) float64) Pan {
	return Pan{kind: PanFunc, fn: fn}
}

// Kind returns the variant tag.
func (p Pan) Kind() PanKind { return p.kind }

// IsFixed reports whether the position ignores time.
func (p Pan) IsFixed() bool { return p.kind == PanFixed }

// Value returns the position for a voice starting at t seconds. rng is only
// read by the random variant; a nil rng falls back to the global source.
func (p Pan) Value(t float64, rng *rand.Rand) float64 {
	var v float64
	switch p.kind {
	case PanFixed:
		v = p.value
	case PanRandom:
		if rng != nil {
			v = rng.Float64()*2 - 1
		} else {
			v = rand.Float64()*2 - 1
		}
	case PanSine:
		v = math.Sin(t * 1000 / p.periodMs)
	case PanFunc:
		if p.fn != nil {
			v = p.fn(t)
		}
	}
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(v, 1))
}

func (p Pan) validate() error {
	switch p.kind {
	case PanFixed:
		if math.IsNaN(p.value) || p.value < -1 || p.value > 1 {
			return fmt.Errorf("fixed pan %v outside [-1, 1]", p.value)
		}
	case PanSine:
		if !(p.periodMs > 0) || math.IsInf(p.periodMs, 0) {
			return fmt.Errorf("sine pan period %v must be > 0", p.periodMs)
		}
	case PanFunc:
		if p.fn == nil {
			return errors.New("time-varying pan without a function")
		}
	case PanRandom:
	default:
		return fmt.Errorf("unknown pan kind %d", int(p.kind))
	}
	return nil
}

func (p Pan) String() string {
	switch p.kind {
	case PanFixed:
		return fmt.Sprintf("%.2f", p.value)
	case PanSine:
		return fmt.Sprintf("sin(t/%gms)", p.periodMs)
	default:
		return p.kind.String()
	}
}

type panJSON struct {
	Kind     string   `json:"kind"`
	Value    *float64 `json:"value,omitempty"`
	PeriodMs float64  `json:"periodMs,omitempty"`
}

// MarshalJSON encodes every variant except PanFunc.
func (p Pan) MarshalJSON() ([]byte, error) {
	out := panJSON{Kind: p.kind.String()}
	switch p.kind {
	case PanFixed:
		v := p.value
		out.Value = &v
	case PanSine:
		out.PeriodMs = p.periodMs
	case PanRandom:
	default:
		return nil, fmt.Errorf("preset: pan kind %s cannot be encoded", p.kind)
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts a bare number as a fixed pan, or an object with a
// kind of "fixed", "random" or "sine".
func (p *Pan) UnmarshalJSON(b []byte) error {
	var v float64
	if err := json.Unmarshal(b, &v); err == nil {
		*p = Fixed(v)
		return nil
	}
	var in panJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return fmt.Errorf("preset: pan: %w", err)
	}
	switch in.Kind {
	case "fixed", "":
		if in.Value != nil {
			*p = Fixed(*in.Value)
		} else {
			*p = Fixed(0)
		}
	case "random":
		*p = Random()
	case "sine":
		*p = Sine(in.PeriodMs)
	default:
		return fmt.Errorf("preset: unknown pan kind %q", in.Kind)
	}
	return nil
}
