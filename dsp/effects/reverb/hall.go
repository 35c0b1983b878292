package reverb

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/delay"
)

const (
	hallLines = 8

	defaultHallRT60     = 1.8
	defaultHallDamp     = 0.3
	defaultHallPreDelay = 0.01
	hallModDepthSeconds = 0.002
	hallModRateHz       = 0.1
	hallReferenceRate   = 44100.0
)

var hallDelaySamples = [hallLines]float64{1537, 1753, 1999, 2251, 2473, 2689, 2851, 3067}

// HallOption configures a Hall.
type HallOption func(*Hall) error

// WithRT60 sets the decay time to -60 dB in seconds.
func WithRT60(seconds float64) HallOption {
	return func(h *Hall) error {
		if !(seconds > 0) || math.IsInf(seconds, 0) {
			return fmt.Errorf("reverb: RT60 must be > 0: %f", seconds)
		}
		h.rt60 = seconds
		return nil
	}
}

// WithDamp sets high-frequency damping of the feedback path in [0, 1].
func WithDamp(v float64) HallOption {
	return func(h *Hall) error {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("reverb: damp must be in [0,1]: %f", v)
		}
		h.damp = v
		return nil
	}
}

// WithPreDelay sets the pre-delay in seconds, at most one second.
func WithPreDelay(seconds float64) HallOption {
	return func(h *Hall) error {
		if math.IsNaN(seconds) || seconds < 0 || seconds > 1 {
			return fmt.Errorf("reverb: pre-delay must be in [0,1]: %f", seconds)
		}
		h.preDelay = seconds
		return nil
	}
}

// Hall is a feedback delay network with a Hadamard mixing matrix, one-pole
// damping per line and slow delay modulation.
type Hall struct {
	sampleRate float64
	rt60       float64
	damp       float64
	preDelay   float64

	lfoPhase  float64
	lfoStep   float64
	modDepth  float64
	baseDelay [hallLines]float64
	gain      [hallLines]float64
	lp        [hallLines]float64
	lines     [hallLines]*delay.Line
	pre       *delay.Line
	preSample float64
}

// NewHall builds a hall reverb.
func NewHall(sampleRate float64, opts ...HallOption) (*Hall, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("reverb: sample rate must be > 0: %f", sampleRate)
	}
	h := &Hall{
		sampleRate: sampleRate,
		rt60:       defaultHallRT60,
		damp:       defaultHallDamp,
		preDelay:   defaultHallPreDelay,
	}
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, err
		}
	}

	scale := sampleRate / hallReferenceRate
	h.modDepth = hallModDepthSeconds * sampleRate
	h.lfoStep = 2 * math.Pi * hallModRateHz / sampleRate
	for i := range h.lines {
		h.baseDelay[i] = hallDelaySamples[i] * scale
		line, err := delay.New(int(math.Ceil(h.baseDelay[i]+h.modDepth)) + 4)
		if err != nil {
			return nil, err
		}
		h.lines[i] = line
		h.gain[i] = math.Pow(10, -3*(h.baseDelay[i]/sampleRate)/h.rt60)
	}
	h.preSample = h.preDelay * sampleRate
	pre, err := delay.New(int(math.Ceil(h.preSample)) + 4)
	if err != nil {
		return nil, err
	}
	h.pre = pre
	return h, nil
}

// RT60 returns the decay time in seconds.
func (h *Hall) RT60() float64 { return h.rt60 }

// ProcessSample returns the wet hall signal for one input sample.
func (h *Hall) ProcessSample(input float64) float64 {
	in := input
	if h.preSample >= 1 {
		h.pre.Write(input)
		in = h.pre.ReadFractional(h.preSample)
	}

	var taps [hallLines]float64
	for i := range taps {
		mod := 0.5 * (1 + math.Sin(h.lfoPhase+2*math.Pi*float64(i)/hallLines))
		taps[i] = h.lines[i].ReadFractional(h.baseDelay[i] + h.modDepth*mod)
	}
	h.lfoPhase = math.Mod(h.lfoPhase+h.lfoStep, 2*math.Pi)

	mixed := hadamard8(taps)
	norm := 1 / math.Sqrt(hallLines)
	out := 0.0
	for i := range taps {
		h.lp[i] = mixed[i]*norm*(1-h.damp) + h.lp[i]*h.damp
		h.lines[i].Write(in*norm + h.lp[i]*h.gain[i])
		out += taps[i]
	}
	return out * norm
}

// Reset clears all lines and filter state.
func (h *Hall) Reset() {
	for i := range h.lines {
		h.lines[i].Reset()
		h.lp[i] = 0
	}
	h.pre.Reset()
	h.lfoPhase = 0
}

// hadamard8 applies the unnormalized 8x8 Sylvester-Hadamard matrix with a
// fast Walsh-Hadamard butterfly.
func hadamard8(x [hallLines]float64) [hallLines]float64 {
	for span := 1; span < hallLines; span *= 2 {
		for i := 0; i < hallLines; i += 2 * span {
			for j := i; j < i+span; j++ {
				a, b := x[j], x[j+span]
				x[j], x[j+span] = a+b, a-b
			}
		}
	}
	return x
}
