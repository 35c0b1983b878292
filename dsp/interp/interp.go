package interp

// Linear interpolates from x0 (t=0) to x1 (t=1).
func Linear(t, x0, x1 float64) float64 {
	return x0 + t*(x1-x0)
}

// Between returns the value at time t on the straight line from (t0, v0) to
// (t1, v1). A zero-length span is a step: v1 is returned for any t >= t1.
func Between(t, t0, v0, t1, v1 float64) float64 {
	if t1 <= t0 || t >= t1 {
		return v1
	}
	if t <= t0 {
		return v0
	}
	return Linear((t-t0)/(t1-t0), v0, v1)
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}
