package reverb

import (
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/delay"
)

const (
	DefaultEchoSeconds  = 0.4
	DefaultEchoFeedback = 0.4
)

// Echo is a recirculating delay: the output is the delayed signal and the
// line is fed with input plus output times feedback.
type Echo struct {
	fb *delay.Feedback
}

// NewEcho builds an echo with the given delay time and feedback.
func NewEcho(sampleRate, seconds, feedback float64) (*Echo, error) {
	fb, err := delay.NewFeedback(sampleRate, seconds, feedback)
	if err != nil {
		return nil, fmt.Errorf("reverb: echo: %w", err)
	}
	return &Echo{fb: fb}, nil
}

// ProcessSample returns the wet echo for one input sample.
func (e *Echo) ProcessSample(input float64) float64 {
	return e.fb.ProcessSample(input)
}

// Reset clears the delay line.
func (e *Echo) Reset() { e.fb.Reset() }
