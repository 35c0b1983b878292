// Package audio plays an engine on the default output device through oto,
// or on a silent real-time clock when built with the headless tag.
package audio

import (
	"encoding/binary"
	"math"
	"sync"
)

// Source renders interleaved stereo float32 frames.
type Source interface {
	Render(dst []float32) int
	SampleRate() float64
}

// Reader adapts a Source to the io.Reader oto pulls little-endian float32
// samples from.
type Reader struct {
	mu     sync.Mutex
	src    Source
	frames []float32
}

// NewReader wraps src.
func NewReader(src Source) *Reader {
	return &Reader{src: src}
}

// Read fills p with whole stereo frames. It never fails; a trailing partial
// frame is zero-filled.
func (r *Reader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(p) / 8
	if cap(r.frames) < 2*n {
		r.frames = make([]float32, 2*n)
	}
	frames := r.frames[:2*n]
	r.src.Render(frames)
	for i, s := range frames {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(s))
	}
	clear(p[8*n:])
	return len(p), nil
}
