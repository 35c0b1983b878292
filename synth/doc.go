// Package synth holds the error taxonomy shared by the voice engine
// packages under synth/.
//
// The engine itself lives in synth/engine; presets, voices, the voice pool,
// envelopes, modulation, the scheduler and the control-input adapter each
// have their own package.
package synth
