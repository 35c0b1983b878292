package moog

import (
	"fmt"
	"math"
)

const (
	defaultCutoffHz  = 1000.0
	defaultResonance = 0.8
	defaultDrive     = 1.0

	thermalVoltage = 5.0
	minCutoffHz    = 1.0
	// MaxResonance is where the ladder starts to self-oscillate.
	MaxResonance = 4.0
	minDrive     = 0.1
	maxDrive     = 24.0

	stateLimit = 32.0
)

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	cutoffHz  float64
	resonance float64
	drive     float64
}

// WithCutoffHz sets the cutoff. It must be finite, >= 1 Hz and below
// Nyquist.
func WithCutoffHz(hz float64) Option {
	return func(cfg *config) error {
		if !isFinite(hz) || hz < minCutoffHz {
			return fmt.Errorf("moog: cutoff must be finite and >= %g Hz: %v", minCutoffHz, hz)
		}
		cfg.cutoffHz = hz
		return nil
	}
}

// WithResonance sets the feedback amount in [0, MaxResonance].
func WithResonance(r float64) Option {
	return func(cfg *config) error {
		if !isFinite(r) || r < 0 || r > MaxResonance {
			return fmt.Errorf("moog: resonance must be in [0, %g]: %v", MaxResonance, r)
		}
		cfg.resonance = r
		return nil
	}
}

// WithDrive sets the input gain into the tanh stages, in [0.1, 24].
func WithDrive(d float64) Option {
	return func(cfg *config) error {
		if !isFinite(d) || d < minDrive || d > maxDrive {
			return fmt.Errorf("moog: drive must be in [%g, %g]: %v", minDrive, maxDrive, d)
		}
		cfg.drive = d
		return nil
	}
}

// Filter is one channel of the ladder.
type Filter struct {
	sampleRate float64
	cutoffHz   float64
	resonance  float64
	drive      float64

	g, k, shape, makeup float64

	stage    [4]float64
	tanhOut  [3]float64
	lastTail float64
}

// New constructs a ladder filter.
func New(sampleRate float64, opts ...Option) (*Filter, error) {
	if !isFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("moog: sample rate must be > 0 and finite: %v", sampleRate)
	}
	cfg := config{cutoffHz: defaultCutoffHz, resonance: defaultResonance, drive: defaultDrive}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.cutoffHz >= sampleRate/2 {
		return nil, fmt.Errorf("moog: cutoff must be below Nyquist (%g Hz): %v", sampleRate/2, cfg.cutoffHz)
	}
	f := &Filter{
		sampleRate: sampleRate,
		cutoffHz:   cfg.cutoffHz,
		resonance:  cfg.resonance,
		drive:      cfg.drive,
	}
	f.tune()
	return f, nil
}

// CutoffHz returns the current cutoff.
func (f *Filter) CutoffHz() float64 { return f.cutoffHz }

// Resonance returns the feedback amount.
func (f *Filter) Resonance() float64 { return f.resonance }

// Drive returns the input gain.
func (f *Filter) Drive() float64 { return f.drive }

// SetCutoffClamped moves the cutoff, limited to [1 Hz, 0.49*sampleRate].
// NaN is ignored. Coefficients are only recomputed on an actual change.
func (f *Filter) SetCutoffClamped(hz float64) {
	if math.IsNaN(hz) {
		return
	}
	hz = math.Max(minCutoffHz, math.Min(hz, 0.49*f.sampleRate))
	if hz == f.cutoffHz {
		return
	}
	f.cutoffHz = hz
	f.tune()
}

// Reset clears the ladder state.
func (f *Filter) Reset() {
	f.stage = [4]float64{}
	f.tanhOut = [3]float64{}
	f.lastTail = 0
}

// ProcessSample filters one sample. Non-finite input is treated as silence
// and a non-finite result is replaced by zero.
func (f *Filter) ProcessSample(x float64) float64 {
	if !isFinite(x) {
		x = 0
	}
	s := &f.stage
	fb := 0.5 * (s[3] + f.lastTail)
	in := math.Tanh(f.shape * (x - f.k*fb))

	s[0] = clip(s[0] + f.g*(in-math.Tanh(f.shape*s[0])))
	prev := math.Tanh(f.shape * s[1])
	f.tanhOut[0] = math.Tanh(f.shape * s[0])
	s[1] = clip(s[1] + f.g*(f.tanhOut[0]-prev))

	prev = math.Tanh(f.shape * s[2])
	f.tanhOut[1] = math.Tanh(f.shape * s[1])
	s[2] = clip(s[2] + f.g*(f.tanhOut[1]-prev))

	prev = math.Tanh(f.shape * s[3])
	f.tanhOut[2] = math.Tanh(f.shape * s[2])
	s[3] = clip(s[3] + f.g*(f.tanhOut[2]-prev))
	f.lastTail = s[3]

	y := f.makeup * s[3]
	if !isFinite(y) {
		return 0
	}
	return y
}

// ProcessInPlace filters buf in place.
func (f *Filter) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = f.ProcessSample(x)
	}
}

// tune derives the per-sample coefficients using Huovilainen's cutoff and
// resonance corrections.
func (f *Filter) tune() {
	fc := f.cutoffHz / f.sampleRate
	fcr := math.Max(0, 1.8730*fc*fc*fc+0.4955*fc*fc-0.6490*fc+0.9988)
	f.g = 2 * thermalVoltage * (1 - mathExp(-2*math.Pi*fcr*fc))
	f.k = f.resonance * math.Max(0, -3.9364*fc*fc+1.8409*fc+0.9968)
	f.shape = 0.5 * f.drive / thermalVoltage

	amp := math.Pow(10, f.resonance/20)
	f.makeup = amp * amp / (1 + 0.5*f.resonance)
}

func clip(v float64) float64 {
	return math.Max(-stateLimit, math.Min(v, stateLimit))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
