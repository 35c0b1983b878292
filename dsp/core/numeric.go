package core

import "math"

// ReferencePitchHz is the frequency of MIDI note 69 (A4).
const ReferencePitchHz = 440.0

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// IsFinite reports whether x is neither NaN nor Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// FlushDenormals returns 0 for magnitudes below 1e-30 so decaying feedback
// loops reach exact silence.
func FlushDenormals(x float64) float64 {
	if x > -1e-30 && x < 1e-30 {
		return 0
	}
	return x
}

// CentsToRatio converts a pitch offset in cents to a frequency ratio.
func CentsToRatio(cents float64) float64 {
	return math.Exp2(cents / 1200)
}

// NoteToHz converts a MIDI note number to its equal-tempered frequency.
func NoteToHz(note int) float64 {
	return ReferencePitchHz * math.Exp2(float64(note-69)/12)
}
