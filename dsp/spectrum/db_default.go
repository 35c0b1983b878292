//go:build !fastmath

package spectrum

import "math"

func magnitudeToDB(mag float64) float64 {
	return 20 * math.Log10(mag)
}
