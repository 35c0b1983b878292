package engine

import (
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/synth/params"
)

// Render fills dst with interleaved stereo float32 frames and advances the
// clock. It returns the number of frames written; a trailing odd sample is
// left untouched.
func (e *Engine) Render(dst []float32) int {
	frames := len(dst) / 2
	block := e.cfg.proc.BlockSize
	done := 0
	for done < frames {
		n := min(block, frames-done)
		e.renderBlock(dst[2*done:2*(done+n)], n)
		done += n
	}
	return done
}

func (e *Engine) renderBlock(dst []float32, n int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	busL, busR := e.busL[:n], e.busR[:n]
	sendL, sendR := e.sendL[:n], e.sendR[:n]
	core.Zero(busL)
	core.Zero(busR)
	core.Zero(sendL)
	core.Zero(sendR)

	e.pool.Render(busL, busR, sendL, sendR, e.now())

	for i := range sendL {
		sendL[i] = e.revL.ProcessSample(sendL[i])
		sendR[i] = e.revR.ProcessSample(sendR[i])
	}
	vecmath.AddBlockInPlace(busL, sendL)
	vecmath.AddBlockInPlace(busR, sendR)

	gain := e.surface.Get(params.Volume) / 100
	vecmath.ScaleBlock(busL, busL, gain)
	vecmath.ScaleBlock(busR, busR, gain)

	for i := range busL {
		e.ring[e.ringPos] = 0.5 * (busL[i] + busR[i])
		e.ringPos++
		if e.ringPos == len(e.ring) {
			e.ringPos = 0
		}
	}
	core.Interleave(dst, busL, busR)
	e.frames += int64(n)
}

// Snapshot copies the most recent mono output samples, oldest first, into
// dst and returns it. dst is grown to the scope size as needed.
func (e *Engine) Snapshot(dst []float64) []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recent(dst, e.cfg.scopeSize)
}

func (e *Engine) recent(dst []float64, n int) []float64 {
	dst = core.EnsureLen(dst, n)
	start := e.ringPos - n
	if start < 0 {
		start += len(e.ring)
	}
	k := copy(dst, e.ring[start:])
	if k < n {
		copy(dst[k:], e.ring[:n-k])
	}
	return dst
}

// Spectrum analyses the latest output and writes smoothed dB magnitudes,
// one per bin from DC to Nyquist, into dst.
func (e *Engine) Spectrum(dst []float64) ([]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	frame := e.recent(nil, e.analyser.Size())
	if err := e.analyser.Update(frame); err != nil {
		return dst, err
	}
	return e.analyser.Bins(dst), nil
}

// BinFrequency returns the centre frequency of spectrum bin k.
func (e *Engine) BinFrequency(k int) float64 {
	return e.analyser.BinFrequency(k)
}
