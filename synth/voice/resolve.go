package voice

import (
	"math"

	"github.com/cwbudde/algo-synth/dsp/delay"
	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/synth"
	"github.com/cwbudde/algo-synth/synth/envelope"
	"github.com/cwbudde/algo-synth/synth/preset"
)

// settings is a Request merged with its preset.
type settings struct {
	wave       osc.Waveform
	adsr       envelope.ADSR
	velocity   float64
	cutoff     float64
	resonance  float64
	drive      float64
	delayTime  float64
	echo       float64
	reverbTime float64
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// resolve merges req over p and rejects anything the chain cannot be built
// from.
func resolve(req Request, p preset.Preset) (settings, error) {
	if !(req.Frequency > 0) || !finite(req.Frequency) {
		return settings{}, synth.InvalidParam("frequency", req.Frequency, "must be > 0")
	}
	if p.Fatness < 1 {
		return settings{}, synth.InvalidParam("fatness", p.Fatness, "must be >= 1")
	}
	if !p.Filter.Valid() {
		return settings{}, synth.InvalidParam("filter", int(p.Filter), "unknown filter kind")
	}
	if !finite(req.Start) || !finite(req.Hold) || req.Hold < 0 {
		return settings{}, synth.InvalidParam("timing", req.Hold, "start and hold must be finite, hold >= 0")
	}

	s := settings{
		wave:       p.Waveform,
		adsr:       p.Envelope,
		velocity:   req.VelocityGain,
		cutoff:     p.Cutoff,
		resonance:  p.Resonance,
		drive:      p.Drive,
		delayTime:  p.Delay,
		echo:       p.Echo,
		reverbTime: p.Reverb,
	}
	if req.Waveform != nil {
		s.wave = *req.Waveform
	}
	if !s.wave.Valid() {
		return settings{}, synth.InvalidParam("waveform", s.wave, "unknown waveform")
	}
	if req.Envelope != nil {
		s.adsr = *req.Envelope
	}
	if err := s.adsr.Validate(); err != nil {
		return settings{}, err
	}
	if !(s.velocity > 0 && s.velocity <= 1) {
		return settings{}, synth.InvalidParam("velocity gain", s.velocity, "must be in (0, 1]")
	}

	if req.Cutoff > 0 {
		s.cutoff = req.Cutoff
	}
	s.cutoff += req.CutoffOffset
	if !finite(s.cutoff) {
		return settings{}, synth.InvalidParam("cutoff", s.cutoff, "must be finite")
	}
	if !finite(req.ModDepth) {
		return settings{}, synth.InvalidParam("mod depth", req.ModDepth, "must be finite")
	}
	for _, o := range []struct {
		dst *float64
		src *float64
	}{
		{&s.resonance, req.Resonance},
		{&s.drive, req.Drive},
		{&s.delayTime, req.DelayTime},
		{&s.echo, req.Echo},
		{&s.reverbTime, req.ReverbTime},
	} {
		if o.src != nil {
			*o.dst = *o.src
		}
	}

	switch {
	case !(s.resonance >= 0 && s.resonance <= 1):
		return settings{}, synth.InvalidParam("resonance", s.resonance, "must be in [0, 1]")
	case !(s.drive >= 0 && s.drive <= 1):
		return settings{}, synth.InvalidParam("drive", s.drive, "must be in [0, 1]")
	case !(s.delayTime >= 0 && s.delayTime <= delay.MaxTimeSeconds):
		return settings{}, synth.InvalidParam("delay", s.delayTime, "must be in [0, 1]")
	case !(s.echo >= 0 && s.echo < 1):
		return settings{}, synth.InvalidParam("echo", s.echo, "must be in [0, 1)")
	case !(s.reverbTime >= 0 && s.reverbTime <= delay.MaxTimeSeconds):
		return settings{}, synth.InvalidParam("reverb", s.reverbTime, "must be in [0, 1]")
	}
	if s.echo > delay.MaxFeedback {
		s.echo = delay.MaxFeedback
	}
	return s, nil
}
