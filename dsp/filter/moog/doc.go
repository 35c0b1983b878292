// Package moog provides the nonlinear four-stage ladder low-pass behind the
// "moog" filter type, tuned after Huovilainen with a half-sample feedback
// estimate.
//
// The cutoff can be moved every block through [Filter.SetCutoffClamped] so a
// voice LFO can sweep it without validation errors.
package moog
