package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// Interleave writes planar left/right buffers as interleaved float32 frames
// into dst, clipping to [-1, 1]. It returns the number of frames written.
func Interleave(dst []float32, left, right []float64) int {
	n := len(dst) / 2
	if len(left) < n {
		n = len(left)
	}
	if len(right) < n {
		n = len(right)
	}

	for i := 0; i < n; i++ {
		dst[2*i] = float32(Clamp(left[i], -1, 1))
		dst[2*i+1] = float32(Clamp(right[i], -1, 1))
	}
	return n
}
