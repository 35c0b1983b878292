// Package biquad provides second-order IIR sections and cascades.
//
// A [Section] runs Direct Form II Transposed on one set of [Coefficients].
// A [Chain] cascades sections in series and can swap its coefficients while
// keeping the delay-line state, which is how voice filters follow a
// modulated cutoff without clicks.
//
// Coefficient design lives in dsp/filter/design.
package biquad
