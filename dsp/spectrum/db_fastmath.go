//go:build fastmath

package spectrum

import approx "github.com/meko-christian/algo-approx"

// 20/ln(10)
const dbPerNeper = 8.685889638065036

func magnitudeToDB(mag float64) float64 {
	return dbPerNeper * approx.FastLog(mag)
}
