// Package spectrum provides a real-time magnitude analyser in the style of a
// browser AnalyserNode: windowed forward FFT, per-bin exponential smoothing
// of linear magnitudes, and dB output clamped to a display range.
package spectrum
