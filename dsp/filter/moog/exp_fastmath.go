//go:build fastmath

package moog

import approx "github.com/meko-christian/algo-approx"

// mathExp uses the algo-approx exponential; the coefficient rebuild runs once
// per control block while the cutoff is modulated.
func mathExp(x float64) float64 {
	return approx.FastExp(x)
}
