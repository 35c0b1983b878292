package engine

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/effects/reverb"
	"github.com/cwbudde/algo-synth/synth/control"
	"github.com/cwbudde/algo-synth/synth/pool"
	"github.com/cwbudde/algo-synth/synth/preset"
	"github.com/cwbudde/algo-synth/synth/voice"
)

// Scope limits and defaults.
const (
	MinScopeSize     = 1024
	MaxScopeSize     = 2048
	DefaultScopeSize = 2048
	// DefaultInboxSize bounds the messages queued for Run.
	DefaultInboxSize = 256
	// DefaultTickInterval is how often Run drains due commands.
	DefaultTickInterval = 5 * time.Millisecond
)

type config struct {
	proc      core.ProcessorConfig
	procOpts  []core.ProcessorOption
	ceiling   int
	log       *slog.Logger
	rng       *rand.Rand
	scopeSize int
	reverb    reverb.Kind
	maxHold   float64
	presets   *preset.Table
	preset    string
	channel   int
	modWheel  int
	inbox     int
	tick      time.Duration
}

func defaultConfig() config {
	return config{
		ceiling:   pool.DefaultCeiling,
		log:       slog.New(slog.DiscardHandler),
		scopeSize: DefaultScopeSize,
		reverb:    reverb.KindEcho,
		maxHold:   voice.DefaultMaxHold,
		preset:    preset.DefaultName,
		channel:   control.AllChannels,
		modWheel:  control.DefaultModWheel,
		inbox:     DefaultInboxSize,
		tick:      DefaultTickInterval,
	}
}

// Option configures an Engine.
type Option func(*config) error

// WithSampleRate sets the output sample rate in Hz.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *config) error {
		if !(sampleRate >= 8000 && sampleRate <= 384000) {
			return fmt.Errorf("engine: sample rate must be in [8000, 384000]: %f", sampleRate)
		}
		cfg.procOpts = append(cfg.procOpts, core.WithSampleRate(sampleRate))
		return nil
	}
}

// WithBlockSize sets the render quantum in frames.
func WithBlockSize(frames int) Option {
	return func(cfg *config) error {
		if frames < 16 || frames > 8192 {
			return fmt.Errorf("engine: block size must be in [16, 8192]: %d", frames)
		}
		cfg.procOpts = append(cfg.procOpts, core.WithBlockSize(frames))
		return nil
	}
}

// WithCeiling sets the untracked voice limit.
func WithCeiling(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return fmt.Errorf("engine: ceiling must be >= 1: %d", n)
		}
		cfg.ceiling = n
		return nil
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) error {
		if l != nil {
			cfg.log = l
		}
		return nil
	}
}

// WithRand sets the random source for note choice, detune drift and pan.
func WithRand(r *rand.Rand) Option {
	return func(cfg *config) error {
		cfg.rng = r
		return nil
	}
}

// WithScopeSize sets how many recent output samples Snapshot returns.
func WithScopeSize(n int) Option {
	return func(cfg *config) error {
		if n < MinScopeSize || n > MaxScopeSize {
			return fmt.Errorf("engine: scope size must be in [%d, %d]: %d", MinScopeSize, MaxScopeSize, n)
		}
		cfg.scopeSize = n
		return nil
	}
}

// WithReverb selects the master reverb.
func WithReverb(kind reverb.Kind) Option {
	return func(cfg *config) error {
		if kind != reverb.KindEcho && kind != reverb.KindHall {
			return fmt.Errorf("engine: unknown reverb kind %d", int(kind))
		}
		cfg.reverb = kind
		return nil
	}
}

// WithMaxHold bounds how long a held controller note sustains.
func WithMaxHold(seconds float64) Option {
	return func(cfg *config) error {
		if !(seconds > 0) {
			return fmt.Errorf("engine: max hold must be > 0: %f", seconds)
		}
		cfg.maxHold = seconds
		return nil
	}
}

// WithPresets replaces the built-in preset table.
func WithPresets(t *preset.Table) Option {
	return func(cfg *config) error {
		if t == nil || t.Len() == 0 {
			return fmt.Errorf("engine: empty preset table")
		}
		cfg.presets = t
		return nil
	}
}

// WithPreset selects the preset active at startup.
func WithPreset(name string) Option {
	return func(cfg *config) error {
		cfg.preset = name
		return nil
	}
}

// WithChannel restricts controller notes to one channel (-1 for all).
func WithChannel(ch int) Option {
	return func(cfg *config) error {
		if ch < control.AllChannels || ch > 15 {
			return fmt.Errorf("engine: channel must be -1..15: %d", ch)
		}
		cfg.channel = ch
		return nil
	}
}

// WithModWheel sets the mod wheel controller (-1 disables).
func WithModWheel(cc int) Option {
	return func(cfg *config) error {
		if cc < control.NoModWheel || cc > 127 {
			return fmt.Errorf("engine: mod wheel must be -1..127: %d", cc)
		}
		cfg.modWheel = cc
		return nil
	}
}

// WithInboxSize bounds the messages Send can queue ahead of Run.
func WithInboxSize(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return fmt.Errorf("engine: inbox size must be >= 1: %d", n)
		}
		cfg.inbox = n
		return nil
	}
}

// WithTickInterval sets how often Run drains due commands.
func WithTickInterval(d time.Duration) Option {
	return func(cfg *config) error {
		if d <= 0 {
			return fmt.Errorf("engine: tick interval must be > 0: %v", d)
		}
		cfg.tick = d
		return nil
	}
}
