// Package shaper implements table-driven waveshaping.
package shaper

import (
	"fmt"
	"math"
	"sync"
)

// DefaultCurveSize is the table length used for drive curves.
const DefaultCurveSize = 44100

// maxCachedCurves bounds the DriveCurve cache. Past it the cache is emptied.
const maxCachedCurves = 64

var driveCurves = struct {
	sync.Mutex
	m map[float64]*Curve
}{m: make(map[float64]*Curve)}

// Curve is a transfer function sampled over [-1, 1].
// Inputs outside that range clamp to the end points.
type Curve struct {
	table []float64
}

// NewCurve samples fn at size evenly spaced points across [-1, 1].
func NewCurve(size int, fn func(x float64) float64) (*Curve, error) {
	if size < 2 {
		return nil, fmt.Errorf("shaper: curve size must be >= 2: %d", size)
	}
	if fn == nil {
		return nil, fmt.Errorf("shaper: transfer function is nil")
	}
	table := make([]float64, size)
	for i := range table {
		x := float64(i)*2/float64(size-1) - 1
		table[i] = fn(x)
	}
	return &Curve{table: table}, nil
}

// NewDriveCurve builds the soft-clip curve tanh(k*x)*0.9 + x*0.1 with
// k = drive*70. A drive of 0 yields the line 0.1*x.
func NewDriveCurve(drive float64, size int) (*Curve, error) {
	if math.IsNaN(drive) || math.IsInf(drive, 0) || drive < 0 {
		return nil, fmt.Errorf("shaper: drive must be finite and >= 0: %v", drive)
	}
	k := drive * 70
	return NewCurve(size, func(x float64) float64 {
		return math.Tanh(k*x)*0.9 + x*0.1
	})
}

// DriveCurve returns the shared DefaultCurveSize drive curve for drive,
// building it on first use. Curves are read-only, so voices can share one.
func DriveCurve(drive float64) (*Curve, error) {
	driveCurves.Lock()
	defer driveCurves.Unlock()
	if c, ok := driveCurves.m[drive]; ok {
		return c, nil
	}
	c, err := NewDriveCurve(drive, DefaultCurveSize)
	if err != nil {
		return nil, err
	}
	if len(driveCurves.m) >= maxCachedCurves {
		clear(driveCurves.m)
	}
	driveCurves.m[drive] = c
	return c, nil
}

// Len returns the number of table points.
func (c *Curve) Len() int { return len(c.table) }

// Shape maps x through the curve with linear interpolation between points.
func (c *Curve) Shape(x float64) float64 {
	n := len(c.table)
	pos := (x + 1) * 0.5 * float64(n-1)
	if !(pos > 0) {
		return c.table[0]
	}
	if pos >= float64(n-1) {
		return c.table[n-1]
	}
	i := int(pos)
	frac := pos - float64(i)
	return c.table[i] + frac*(c.table[i+1]-c.table[i])
}

// ProcessInPlace shapes buf sample by sample.
func (c *Curve) ProcessInPlace(buf []float64) {
	for i, v := range buf {
		buf[i] = c.Shape(v)
	}
}
