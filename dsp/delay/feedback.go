package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
)

const (
	// MaxTimeSeconds bounds every delay and reverb send time.
	MaxTimeSeconds = 1.0
	// MaxFeedback keeps the echo loop below unity gain.
	MaxFeedback = 0.99
)

// Feedback is a delay whose output is fed back into its input:
//
//	w[n] = x[n] + feedback*y[n]
//	y[n] = w[n-D]
//
// With zero feedback it is a plain delay tap. The output is fully wet.
type Feedback struct {
	sampleRate   float64
	seconds      float64
	feedback     float64
	delaySamples int
	line         *Line
}

// NewFeedback creates a feedback delay with the given time and loop gain.
// The buffer holds only the requested time.
func NewFeedback(sampleRate, seconds, feedback float64) (*Feedback, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("delay: sample rate must be > 0: %f", sampleRate)
	}

	f := &Feedback{sampleRate: sampleRate}
	if err := f.SetTime(seconds); err != nil {
		return nil, err
	}
	if err := f.SetFeedback(feedback); err != nil {
		return nil, err
	}
	return f, nil
}

// SetTime sets the delay time in seconds, in [0, MaxTimeSeconds].
// Times shorter than one sample are rounded up to one sample. A time longer
// than the current buffer reallocates it, which clears the loop.
func (f *Feedback) SetTime(seconds float64) error {
	if seconds < 0 || seconds > MaxTimeSeconds || !core.IsFinite(seconds) {
		return fmt.Errorf("delay: time must be in [0, %g]: %f", MaxTimeSeconds, seconds)
	}

	n := max(1, int(math.Round(seconds*f.sampleRate)))
	if f.line == nil || f.line.Len() < n+1 {
		line, err := New(n + 1)
		if err != nil {
			return err
		}
		f.line = line
	}
	f.seconds = seconds
	f.delaySamples = n
	return nil
}

// SetFeedback sets the loop gain in [0, MaxFeedback].
func (f *Feedback) SetFeedback(feedback float64) error {
	if feedback < 0 || feedback > MaxFeedback || !core.IsFinite(feedback) {
		return fmt.Errorf("delay: feedback must be in [0, %g]: %f", MaxFeedback, feedback)
	}

	f.feedback = feedback
	return nil
}

// ProcessSample pushes one input sample and returns the delayed output.
func (f *Feedback) ProcessSample(input float64) float64 {
	y := f.line.Read(f.delaySamples)
	f.line.Write(core.FlushDenormals(input + y*f.feedback))
	return y
}

// ProcessTo writes the delayed signal of src into dst.
func (f *Feedback) ProcessTo(dst, src []float64) {
	for i, x := range src {
		dst[i] = f.ProcessSample(x)
	}
}

// Reset clears the loop.
func (f *Feedback) Reset() { f.line.Reset() }

// Time returns the delay time in seconds.
func (f *Feedback) Time() float64 { return f.seconds }

// Feedback returns the loop gain.
func (f *Feedback) Feedback() float64 { return f.feedback }

// DelaySamples returns the effective delay in whole samples.
func (f *Feedback) DelaySamples() int { return f.delaySamples }

// Capacity returns the buffer length in samples.
func (f *Feedback) Capacity() int { return f.line.Len() }
