package voice

import (
	"math"

	"github.com/cwbudde/algo-synth/dsp/filter/biquad"
	"github.com/cwbudde/algo-synth/dsp/filter/design"
	"github.com/cwbudde/algo-synth/dsp/filter/moog"
	"github.com/cwbudde/algo-synth/synth/preset"
)

// filterStage is one channel of the voice filter. Cutoff changes are applied
// at block rate.
type filterStage interface {
	setCutoff(hz float64)
	cutoff() float64
	process(buf []float64)
}

type biquadStage struct {
	kind       preset.FilterKind
	q          float64
	sampleRate float64
	hz         float64
	coeffs     []biquad.Coefficients
	chain      *biquad.Chain
}

// resonanceQ maps a 0..1 resonance onto the filter's quality factor. Lowpass
// shapes read it as a peak in dB, band shapes as a linear Q.
func resonanceQ(kind preset.FilterKind, resonance float64) float64 {
	switch kind {
	case preset.Bandpass, preset.Notch:
		return math.Max(0.5, resonance*10)
	default:
		return design.QFromDB(resonance * 10)
	}
}

func newBiquadStage(kind preset.FilterKind, hz, resonance, sampleRate float64) *biquadStage {
	s := &biquadStage{
		kind:       kind,
		q:          resonanceQ(kind, resonance),
		sampleRate: sampleRate,
		hz:         design.ClampFrequency(hz, sampleRate),
	}
	s.coeffs = s.design(s.coeffs)
	s.chain = biquad.NewChain(s.coeffs)
	return s
}

func (s *biquadStage) design(dst []biquad.Coefficients) []biquad.Coefficients {
	switch s.kind {
	case preset.Ladder:
		return design.Ladder(dst, s.hz, s.q, s.sampleRate)
	case preset.Highpass:
		return append(dst[:0], design.Highpass(s.hz, s.q, s.sampleRate))
	case preset.Bandpass:
		return append(dst[:0], design.Bandpass(s.hz, s.q, s.sampleRate))
	case preset.Notch:
		return append(dst[:0], design.Notch(s.hz, s.q, s.sampleRate))
	default:
		return append(dst[:0], design.Lowpass(s.hz, s.q, s.sampleRate))
	}
}

func (s *biquadStage) setCutoff(hz float64) {
	hz = design.ClampFrequency(hz, s.sampleRate)
	if hz == s.hz {
		return
	}
	s.hz = hz
	s.coeffs = s.design(s.coeffs)
	s.chain.UpdateCoefficients(s.coeffs)
}

func (s *biquadStage) cutoff() float64 { return s.hz }

func (s *biquadStage) process(buf []float64) { s.chain.ProcessBlock(buf) }

type moogStage struct {
	f *moog.Filter
}

// newMoogStage maps resonance 0..1 onto the full ladder feedback range and
// drive 0..1 onto an input gain of 1..4.
func newMoogStage(hz, resonance, drive, sampleRate float64) (*moogStage, error) {
	f, err := moog.New(sampleRate,
		moog.WithCutoffHz(design.ClampFrequency(hz, sampleRate)),
		moog.WithResonance(resonance*moog.MaxResonance),
		moog.WithDrive(1+3*drive),
	)
	if err != nil {
		return nil, err
	}
	return &moogStage{f: f}, nil
}

func (s *moogStage) setCutoff(hz float64) { s.f.SetCutoffClamped(hz) }

func (s *moogStage) cutoff() float64 { return s.f.CutoffHz() }

func (s *moogStage) process(buf []float64) { s.f.ProcessInPlace(buf) }

func newFilterStage(kind preset.FilterKind, hz, resonance, drive, sampleRate float64) (filterStage, error) {
	if kind == preset.Moog {
		return newMoogStage(hz, resonance, drive, sampleRate)
	}
	return newBiquadStage(kind, hz, resonance, sampleRate), nil
}

// ResponseDB writes the magnitude response in dB of a filter of the given
// kind at each frequency in freqs. The moog ladder is drawn as its linear
// four-pole equivalent.
func ResponseDB(dst []float64, kind preset.FilterKind, hz, resonance, sampleRate float64, freqs []float64) []float64 {
	if kind == preset.Moog {
		kind = preset.Ladder
	}
	s := newBiquadStage(kind, hz, resonance, sampleRate)
	dst = dst[:0]
	for _, f := range freqs {
		dst = append(dst, s.chain.MagnitudeDB(design.ClampFrequency(f, sampleRate), sampleRate))
	}
	return dst
}
