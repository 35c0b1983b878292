package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-synth/dsp/effects/reverb"
	"github.com/cwbudde/algo-synth/internal/audio"
	"github.com/cwbudde/algo-synth/internal/config"
	"github.com/cwbudde/algo-synth/internal/midiin"
	"github.com/cwbudde/algo-synth/internal/tui"
	"github.com/cwbudde/algo-synth/synth/engine"
	"github.com/cwbudde/algo-synth/synth/params"
)

type playFlags struct {
	configPath string
	preset     string
	bpm        int
	noTUI      bool
	midiPort   string
	channel    int
	presets    string
	reverb     string
	logFile    string
	verbose    bool
}

func newPlayCmd() *cobra.Command {
	var f playFlags
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Open the audio device and play",
		Long: `Open the default audio output and the MIDI input, start the tempo
sequencer and show the front panel.

Settings come from ~/.config/plantasia/config.json when present; flags
override them.

Examples:
  plantasia play
  plantasia play --preset cosmicdew --bpm 120 --reverb hall
  plantasia play --no-tui --midi-port nano --channel 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(f.configPath)
			if err != nil {
				return err
			}
			if err := f.apply(cmd, cfg); err != nil {
				return err
			}
			return runPlay(cmd.Context(), cfg, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "settings file (default ~/.config/plantasia/config.json)")
	fl.StringVarP(&f.preset, "preset", "p", "", "start preset")
	fl.IntVar(&f.bpm, "bpm", 0, "sequencer tempo")
	fl.BoolVar(&f.noTUI, "no-tui", false, "run without the front panel, logging to stderr")
	fl.StringVar(&f.midiPort, "midi-port", "", "MIDI input port name or substring")
	fl.IntVar(&f.channel, "channel", 0, "MIDI channel 0-15 for notes, -1 for all")
	fl.StringVar(&f.presets, "presets", "", "JSON preset file merged over the built-ins")
	fl.StringVar(&f.reverb, "reverb", "", "master reverb: echo or hall")
	fl.StringVar(&f.logFile, "log-file", "", "log file used while the front panel runs")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "log at debug level")
	return cmd
}

// apply copies explicitly set flags over the loaded settings.
func (f *playFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fl := cmd.Flags()
	if fl.Changed("preset") {
		cfg.Preset = f.preset
	}
	if fl.Changed("bpm") {
		cfg.BPM = f.bpm
	}
	if fl.Changed("midi-port") {
		cfg.MIDI.Port = f.midiPort
	}
	if fl.Changed("channel") {
		cfg.MIDI.Channel = f.channel
	}
	if fl.Changed("presets") {
		cfg.PresetFile = f.presets
	}
	if fl.Changed("reverb") {
		cfg.Reverb = f.reverb
	}
	return wrap("flags", cfg.Validate())
}

func runPlay(parent context.Context, cfg *config.Config, f playFlags) error {
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	logPath := ""
	if !f.noTUI {
		logPath = f.logFile
		if logPath == "" {
			logPath = defaultLogPath()
		}
	}
	log, closer, err := openLog(logPath, level)
	if err != nil {
		return wrap("open log", err)
	}
	defer closer.Close()

	table, err := loadPresets(cfg.PresetFile)
	if err != nil {
		return err
	}
	kind, err := reverb.ParseKind(cfg.Reverb)
	if err != nil {
		return err
	}

	eng, err := engine.New(
		engine.WithSampleRate(float64(cfg.Audio.SampleRate)),
		engine.WithBlockSize(cfg.Audio.BlockSize),
		engine.WithCeiling(cfg.Ceiling),
		engine.WithLogger(log),
		engine.WithReverb(kind),
		engine.WithPresets(table),
		engine.WithPreset(cfg.Preset),
		engine.WithChannel(cfg.MIDI.Channel),
		engine.WithModWheel(cfg.MIDI.ModWheel),
	)
	if err != nil {
		return err
	}
	defer eng.Close()

	for _, msg := range []engine.Message{
		engine.SetParam{Name: params.BPM, Value: float64(cfg.BPM)},
		engine.SetParam{Name: params.Volume, Value: float64(cfg.Volume)},
	} {
		if err := eng.Step(msg); err != nil {
			return err
		}
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- eng.Run(ctx) }()

	player, err := audio.Open(eng, time.Duration(cfg.Audio.BufferMs)*time.Millisecond)
	if err != nil {
		return err
	}
	defer player.Close()
	player.Start()
	log.Info("audio started", "sampleRate", cfg.Audio.SampleRate, "headless", audio.Headless)

	in, err := midiin.Listen(cfg.MIDI.Port, eng, log)
	switch {
	case err == nil:
		defer in.Close()
	case cfg.MIDI.Port != "":
		return err
	default:
		log.Warn("no MIDI input", "err", err)
	}

	if err := eng.Step(engine.Start{}); err != nil {
		return err
	}

	if f.noTUI {
		fmt.Fprintf(os.Stderr, "playing %s at %d bpm, ctrl+c to quit\n", cfg.Preset, cfg.BPM)
		<-ctx.Done()
	} else if err := tui.Run(eng); err != nil {
		return err
	}
	cancel()

	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, engine.ErrClosed) {
		return wrap("engine", err)
	}
	return nil
}
