package spectrum

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-synth/dsp/window"
)

const (
	DefaultSize      = 2048
	DefaultSmoothing = 0.8
	DefaultMinDB     = -100.0
	DefaultMaxDB     = -30.0

	magnitudeFloor = 1e-12
)

// Option configures an Analyser.
type Option func(*config) error

type config struct {
	window    window.Type
	smoothing float64
	minDB     float64
	maxDB     float64
}

// WithWindow selects the analysis window. Default is Blackman-Harris.
func WithWindow(t window.Type) Option {
	return func(c *config) error {
		c.window = t
		return nil
	}
}

// WithSmoothing sets the time constant in [0, 1). Default is 0.8.
func WithSmoothing(s float64) Option {
	return func(c *config) error {
		if math.IsNaN(s) || s < 0 || s >= 1 {
			return fmt.Errorf("spectrum: smoothing must be in [0, 1): %v", s)
		}
		c.smoothing = s
		return nil
	}
}

// WithRange sets the dB range that Bins clamps to.
func WithRange(minDB, maxDB float64) Option {
	return func(c *config) error {
		if !(minDB < maxDB) {
			return fmt.Errorf("spectrum: min dB must be below max dB: %v >= %v", minDB, maxDB)
		}
		c.minDB, c.maxDB = minDB, maxDB
		return nil
	}
}

// Analyser turns frames of the most recent output into smoothed dB bins.
// It is not safe for concurrent use.
type Analyser struct {
	size       int
	sampleRate float64
	cfg        config

	plan       *algofft.Plan[complex128]
	coeffs     []float64
	windowGain float64

	frame    []float64
	in, out  []complex128
	re, im   []float64
	mag      []float64
	smoothed []float64
}

// NewAnalyser builds an analyser for frames of size samples (a power of two
// between 32 and 32768).
func NewAnalyser(size int, sampleRate float64, opts ...Option) (*Analyser, error) {
	if size < 32 || size > 32768 || size&(size-1) != 0 {
		return nil, fmt.Errorf("spectrum: size must be a power of two in [32, 32768]: %d", size)
	}
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("spectrum: sample rate must be > 0: %v", sampleRate)
	}

	cfg := config{
		window:    window.TypeBlackmanHarris,
		smoothing: DefaultSmoothing,
		minDB:     DefaultMinDB,
		maxDB:     DefaultMaxDB,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectrum: fft plan: %w", err)
	}

	coeffs := window.Generate(cfg.window, size, window.WithPeriodic())
	bins := size/2 + 1
	return &Analyser{
		size:       size,
		sampleRate: sampleRate,
		cfg:        cfg,
		plan:       plan,
		coeffs:     coeffs,
		windowGain: math.Max(window.CoherentGain(coeffs), magnitudeFloor),
		frame:      make([]float64, size),
		in:         make([]complex128, size),
		out:        make([]complex128, size),
		re:         make([]float64, bins),
		im:         make([]float64, bins),
		mag:        make([]float64, bins),
		smoothed:   make([]float64, bins),
	}, nil
}

// Size returns the FFT frame length.
func (a *Analyser) Size() int { return a.size }

// NumBins returns size/2 + 1.
func (a *Analyser) NumBins() int { return len(a.smoothed) }

// BinFrequency returns the centre frequency of bin k in Hz.
func (a *Analyser) BinFrequency(k int) float64 {
	return float64(k) * a.sampleRate / float64(a.size)
}

// Update analyses one frame, oldest sample first. Shorter frames are
// zero-padded at the front.
func (a *Analyser) Update(samples []float64) error {
	if len(samples) > a.size {
		samples = samples[len(samples)-a.size:]
	}
	pad := a.size - len(samples)
	clear(a.frame[:pad])
	copy(a.frame[pad:], samples)
	if err := window.Apply(a.frame, a.coeffs); err != nil {
		return err
	}

	for i, x := range a.frame {
		a.in[i] = complex(x, 0)
	}
	if err := a.plan.Forward(a.out, a.in); err != nil {
		return fmt.Errorf("spectrum: forward fft: %w", err)
	}

	for k := range a.re {
		a.re[k] = real(a.out[k])
		a.im[k] = imag(a.out[k])
	}
	vecmath.Magnitude(a.mag, a.re, a.im)

	norm := float64(a.size) * a.windowGain
	last := len(a.mag) - 1
	tau := a.cfg.smoothing
	for k, m := range a.mag {
		m /= norm
		if k > 0 && k < last {
			m *= 2
		}
		a.smoothed[k] = tau*a.smoothed[k] + (1-tau)*m
	}
	return nil
}

// Bins writes the smoothed spectrum in dB, clamped to the configured range,
// into dst and returns it. dst is grown as needed.
func (a *Analyser) Bins(dst []float64) []float64 {
	if cap(dst) < len(a.smoothed) {
		dst = make([]float64, len(a.smoothed))
	}
	dst = dst[:len(a.smoothed)]
	for k, m := range a.smoothed {
		db := magnitudeToDB(math.Max(m, magnitudeFloor))
		dst[k] = math.Max(a.cfg.minDB, math.Min(db, a.cfg.maxDB))
	}
	return dst
}

// Reset clears the smoothing history.
func (a *Analyser) Reset() {
	clear(a.smoothed)
}
