// Package delay provides circular delay lines and the feedback echo used by
// every voice's delay tap and reverb send.
package delay

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/cwbudde/algo-synth/dsp/interp"
)

// Line is a circular delay line holding at least the requested number of
// samples. Its capacity is rounded up to a power of two so reads wrap with a
// mask. Read(1) returns the most recent write.
type Line struct {
	buf  []float64
	mask int
	head int
}

// New returns a line that can delay by up to size samples.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay: size must be > 0: %d", size)
	}
	n := 1 << bits.Len(uint(size-1))
	return &Line{buf: make([]float64, n), mask: n - 1}, nil
}

// Len returns the capacity in samples.
func (d *Line) Len() int { return len(d.buf) }

// Write appends one sample.
func (d *Line) Write(x float64) {
	d.buf[d.head] = x
	d.head = (d.head + 1) & d.mask
}

// Read returns the sample written n writes ago.
func (d *Line) Read(n int) float64 {
	return d.buf[(d.head-n)&d.mask]
}

// ReadFractional reads between samples with cubic Hermite interpolation.
// The delay is limited to [1, Len()-2].
func (d *Line) ReadFractional(delay float64) float64 {
	delay = math.Max(1, math.Min(delay, float64(len(d.buf)-2)))
	p := int(delay)
	t := delay - float64(p)
	return interp.Hermite4(t, d.Read(max(1, p-1)), d.Read(p), d.Read(p+1), d.Read(p+2))
}

// Reset silences the line.
func (d *Line) Reset() {
	clear(d.buf)
	d.head = 0
}
