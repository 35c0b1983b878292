// Package config loads the optional JSON settings file the CLI starts from.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-synth/dsp/effects/reverb"
	"github.com/cwbudde/algo-synth/synth/control"
	"github.com/cwbudde/algo-synth/synth/pool"
	"github.com/cwbudde/algo-synth/synth/preset"
	"github.com/cwbudde/algo-synth/synth/scheduler"
)

// AudioConfig holds output device settings.
type AudioConfig struct {
	SampleRate int `json:"sampleRate,omitempty"`
	BlockSize  int `json:"blockSize,omitempty"`
	BufferMs   int `json:"bufferMs,omitempty"`
}

// MIDIConfig holds controller input settings.
type MIDIConfig struct {
	// Port is matched as a case-insensitive substring of the input port name.
	Port     string `json:"port,omitempty"`
	Channel  int    `json:"channel"`
	ModWheel int    `json:"modWheel"`
}

// Config is the settings file.
type Config struct {
	Audio      AudioConfig `json:"audio,omitempty"`
	MIDI       MIDIConfig  `json:"midi,omitempty"`
	Preset     string      `json:"preset,omitempty"`
	BPM        int         `json:"bpm,omitempty"`
	Volume     int         `json:"volume"`
	Reverb     string      `json:"reverb,omitempty"`
	Ceiling    int         `json:"ceiling,omitempty"`
	PresetFile string      `json:"presetFile,omitempty"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate: 48000,
			BlockSize:  128,
			BufferMs:   40,
		},
		MIDI: MIDIConfig{
			Channel:  control.AllChannels,
			ModWheel: control.DefaultModWheel,
		},
		Preset:  preset.DefaultName,
		BPM:     scheduler.DefaultBPM,
		Volume:  50,
		Reverb:  reverb.KindEcho.String(),
		Ceiling: pool.DefaultCeiling,
	}
}

// Dir returns ~/.config/plantasia.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "plantasia"), nil
}

// Path returns the default settings file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads path over the defaults. An empty path means Path(); a missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges the engine would otherwise reject at startup.
func (c *Config) Validate() error {
	switch {
	case c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 384000:
		return fmt.Errorf("audio.sampleRate %d out of range", c.Audio.SampleRate)
	case c.Audio.BlockSize < 16 || c.Audio.BlockSize > 8192:
		return fmt.Errorf("audio.blockSize %d out of range", c.Audio.BlockSize)
	case c.Audio.BufferMs < 1:
		return fmt.Errorf("audio.bufferMs %d must be >= 1", c.Audio.BufferMs)
	case c.MIDI.Channel < control.AllChannels || c.MIDI.Channel > 15:
		return fmt.Errorf("midi.channel %d out of range", c.MIDI.Channel)
	case c.MIDI.ModWheel < control.NoModWheel || c.MIDI.ModWheel > 127:
		return fmt.Errorf("midi.modWheel %d out of range", c.MIDI.ModWheel)
	case c.BPM < scheduler.MinBPM || c.BPM > scheduler.MaxBPM:
		return fmt.Errorf("bpm %d out of range", c.BPM)
	case c.Volume < 0 || c.Volume > 100:
		return fmt.Errorf("volume %d out of range", c.Volume)
	case c.Ceiling < 1:
		return fmt.Errorf("ceiling %d must be >= 1", c.Ceiling)
	}
	if _, err := reverb.ParseKind(c.Reverb); err != nil {
		return err
	}
	return nil
}
