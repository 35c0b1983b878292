package design

import (
	"math"

	"github.com/cwbudde/algo-synth/dsp/filter/biquad"
)

const defaultQ = 1 / math.Sqrt2

// LadderStages is the number of cascaded lowpass sections in [Ladder].
const LadderStages = 4

// QFromDB converts a resonance peak in dB to a linear quality factor.
func QFromDB(db float64) float64 {
	return math.Pow(10, db/20)
}

// ClampFrequency limits freq to (0, nyquist) so modulated cutoffs always
// produce a valid design.
func ClampFrequency(freq, sampleRate float64) float64 {
	lo := 10.0
	hi := 0.49 * sampleRate
	if math.IsNaN(freq) || freq < lo {
		return lo
	}
	if freq > hi {
		return hi
	}
	return freq
}

// Lowpass designs a second-order lowpass at freq with quality factor q.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * normalizedQ(q))

	b1 := 1 - cw
	return normalizeBiquad(b1/2, b1, b1/2, 1+alpha, -2*cw, 1-alpha)
}

// Highpass designs a second-order highpass at freq with quality factor q.
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * normalizedQ(q))

	b1 := -(1 + cw)
	return normalizeBiquad(-b1/2, b1, -b1/2, 1+alpha, -2*cw, 1-alpha)
}

// Bandpass designs a constant 0 dB peak gain bandpass.
func Bandpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * normalizedQ(q))

	return normalizeBiquad(alpha, 0, -alpha, 1+alpha, -2*cw, 1-alpha)
}

// Notch designs a notch centered at freq.
func Notch(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * normalizedQ(q))

	return normalizeBiquad(1, -2*cw, 1, 1+alpha, -2*cw, 1-alpha)
}

// Ladder fills dst with LadderStages identical lowpass sections and returns
// it, growing dst if needed.
func Ladder(dst []biquad.Coefficients, freq, q, sampleRate float64) []biquad.Coefficients {
	if cap(dst) < LadderStages {
		dst = make([]biquad.Coefficients, LadderStages)
	}
	dst = dst[:LadderStages]
	c := Lowpass(freq, q, sampleRate)
	for i := range dst {
		dst[i] = c
	}
	return dst
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}
	if freq <= 0 || freq >= sampleRate/2 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}
	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return defaultQ
	}
	return q
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.Coefficients{}
	}
	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
