// Package osc provides the periodic oscillators used by synth voices.
//
// Sawtooth and square use PolyBLEP residuals to suppress aliasing at the
// discontinuities; triangle and sine are computed directly.
package osc

import (
	"fmt"
	"math"
	"strings"
)

// Waveform selects the oscillator shape.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Square
	Sawtooth
)

var waveformNames = [...]string{"sine", "triangle", "square", "sawtooth"}

// Waveforms lists every supported shape in cycling order.
func Waveforms() []Waveform {
	return []Waveform{Sine, Triangle, Square, Sawtooth}
}

func (w Waveform) String() string {
	if w.Valid() {
		return waveformNames[w]
	}
	return fmt.Sprintf("Waveform(%d)", int(w))
}

// Valid reports whether w is a known shape.
func (w Waveform) Valid() bool {
	return w >= Sine && w <= Sawtooth
}

// ParseWaveform maps a name such as "sawtooth" to its Waveform.
func ParseWaveform(name string) (Waveform, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range waveformNames {
		if s == n {
			return Waveform(i), nil
		}
	}
	return 0, fmt.Errorf("osc: unknown waveform %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (w Waveform) MarshalText() ([]byte, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("osc: invalid waveform %d", int(w))
	}
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *Waveform) UnmarshalText(b []byte) error {
	v, err := ParseWaveform(string(b))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// Oscillator is a phase accumulator with a fixed waveform. The frequency is
// supplied per sample so it can be modulated.
type Oscillator struct {
	wave       Waveform
	sampleRate float64
	phase      float64
}

// New returns an oscillator starting at phase 0.
func New(wave Waveform, sampleRate float64) (*Oscillator, error) {
	if !wave.Valid() {
		return nil, fmt.Errorf("osc: invalid waveform %d", int(wave))
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("osc: sample rate must be > 0: %v", sampleRate)
	}
	return &Oscillator{wave: wave, sampleRate: sampleRate}, nil
}

// Waveform returns the oscillator shape.
func (o *Oscillator) Waveform() Waveform { return o.wave }

// Reset sets the phase back to 0.
func (o *Oscillator) Reset() { o.phase = 0 }

// Next returns one sample at freqHz and advances the phase.
func (o *Oscillator) Next(freqHz float64) float64 {
	dt := freqHz / o.sampleRate
	p := o.phase
	var y float64
	switch o.wave {
	case Sine:
		y = math.Sin(2 * math.Pi * p)
	case Triangle:
		y = 2 / math.Pi * math.Asin(math.Sin(2*math.Pi*p))
	case Sawtooth:
		y = 2*p - 1
		y -= polyBLEP(p, dt)
	case Square:
		y = 1
		if p >= 0.5 {
			y = -1
		}
		y += polyBLEP(p, dt)
		y -= polyBLEP(wrap(p+0.5), dt)
	}
	o.phase = wrap(p + dt)
	return y
}

func wrap(p float64) float64 {
	return p - math.Floor(p)
}

// polyBLEP returns the band-limited step residual for phase p with
// increment dt.
func polyBLEP(p, dt float64) float64 {
	dt = math.Abs(dt)
	if dt == 0 {
		return 0
	}
	if dt > 0.5 {
		dt = 0.5
	}
	switch {
	case p < dt:
		x := p / dt
		return x + x - x*x - 1
	case p > 1-dt:
		x := (p - 1) / dt
		return x*x + x + x + 1
	default:
		return 0
	}
}
