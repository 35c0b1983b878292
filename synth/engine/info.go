package engine

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/synth/envelope"
	"github.com/cwbudde/algo-synth/synth/modulation"
	"github.com/cwbudde/algo-synth/synth/params"
	"github.com/cwbudde/algo-synth/synth/preset"
	"github.com/cwbudde/algo-synth/synth/voice"
)

// Info is a point-in-time view of the engine for display.
type Info struct {
	Time       float64
	Running    bool
	Preset     string
	Color      string
	Visual     string
	Scale      []float64
	Waveform   osc.Waveform
	Overridden bool
	Envelope   envelope.ADSR
	Detune     []float64
	Fatness    int
	Filter     preset.FilterKind
	Cutoff     float64
	Resonance  float64
	Drive      float64
	Delay      float64
	Echo       float64
	Reverb     float64
	Volume     float64
	BPM        float64
	LFO        modulation.State
	Live       int
	Held       int
	Untracked  int
	Learned    map[uint8]params.Name
}

// ReverbAmount is the displayed reverb level for an echo setting.
func ReverbAmount(echo float64) float64 { return 0.3 + echo*0.5 }

// Info returns the current state.
func (e *Engine) Info() Info {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := e.current
	info := Info{
		Time:      e.now(),
		Running:   e.sched.Running(),
		Preset:    p.Name,
		Color:     p.Color,
		Visual:    p.Visual,
		Scale:     append([]float64(nil), p.Scale...),
		Waveform:  p.Waveform,
		Envelope:  p.Envelope,
		Detune:    append([]float64(nil), p.Detune...),
		Fatness:   p.Fatness,
		Filter:    p.Filter,
		Cutoff:    e.surface.Get(params.Filter),
		Resonance: e.surface.Get(params.Resonance),
		Drive:     e.surface.Get(params.Drive),
		Delay:     e.surface.Get(params.Delay),
		Echo:      e.surface.Get(params.Echo),
		Reverb:    ReverbAmount(e.surface.Get(params.Echo)),
		Volume:    e.surface.Get(params.Volume),
		BPM:       e.sched.BPM(),
		LFO:       e.modState(),
		Live:      e.pool.Live(),
		Held:      e.pool.Held(),
		Untracked: e.pool.Untracked(),
		Learned:   e.adapter.Mapping().Bindings(),
	}
	if e.waveform != nil {
		info.Waveform = *e.waveform
		info.Overridden = true
	}
	return info
}

func joinFloats(vs []float64, format string) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf(format, v)
	}
	return strings.Join(parts, ", ")
}

// String renders the multi-line display text.
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Preset: %s\n", i.Preset)
	fmt.Fprintf(&b, "Scale: %s Hz\n", joinFloats(i.Scale, "%g"))
	fmt.Fprintf(&b, "Wave: %s\n", i.Waveform)
	fmt.Fprintf(&b, "ADSR: %.2f / %.2f / %.2f / %.2f\n",
		i.Envelope.Attack, i.Envelope.Decay, i.Envelope.Sustain, i.Envelope.Release)
	fmt.Fprintf(&b, "Detune: %s cents x%d\n", joinFloats(i.Detune, "%g"), i.Fatness)
	fmt.Fprintf(&b, "Filter: %s %.0f Hz  Res: %.2f  Drive: %.2f\n", i.Filter, i.Cutoff, i.Resonance, i.Drive)
	fmt.Fprintf(&b, "Delay: %.2f s  Echo: %.2f  Reverb: %.2f\n", i.Delay, i.Echo, i.Reverb)
	fmt.Fprintf(&b, "Volume: %.0f  BPM: %.0f\n", i.Volume, i.BPM)
	fmt.Fprintf(&b, "LFO: %s %.1f Hz depth %.1f", i.LFO.Destination, i.LFO.Rate, i.LFO.EffectiveDepth())
	return b.String()
}

// VoiceInfo describes one live voice.
type VoiceInfo struct {
	ID       uint64
	Key      int
	Start    float64
	End      float64
	Peak     float64
	Released bool
}

// Voices lists the live voices, oldest first.
func (e *Engine) Voices() []VoiceInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	vs := e.pool.Voices()
	out := make([]VoiceInfo, len(vs))
	for i, v := range vs {
		out[i] = VoiceInfo{
			ID:       v.ID(),
			Key:      v.Key(),
			Start:    v.Start(),
			End:      v.End(),
			Peak:     v.Envelope().Peak(),
			Released: v.Released(),
		}
	}
	return out
}

// FilterResponse writes the magnitude in dB of the current preset's filter,
// at the surface cutoff and resonance, for each frequency in freqs.
func (e *Engine) FilterResponse(dst, freqs []float64) []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return voice.ResponseDB(dst, e.current.Filter,
		e.surface.Get(params.Filter), e.surface.Get(params.Resonance),
		e.cfg.proc.SampleRate, freqs)
}
