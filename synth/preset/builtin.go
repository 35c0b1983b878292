package preset

import (
	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/synth/envelope"
)

func builtin(name string, scale []float64, color string, wave osc.Waveform, visual string,
	adsr envelope.ADSR, detune []float64, fat int, pan Pan, cutoff, res, drive float64,
) Preset {
	return Preset{
		Name:      name,
		Scale:     scale,
		Color:     color,
		Waveform:  wave,
		Envelope:  adsr,
		Detune:    detune,
		Fatness:   fat,
		Pan:       pan,
		Filter:    Ladder,
		Cutoff:    cutoff,
		Resonance: res,
		Drive:     drive,
		Delay:     DefaultDelay,
		Echo:      DefaultEcho,
		Reverb:    DefaultReverb,
		Visual:    visual,
	}
}

func adsr(a, d, s, r float64) envelope.ADSR {
	return envelope.ADSR{Attack: a, Decay: d, Sustain: s, Release: r}
}

// Builtins returns the fourteen stock presets in display order.
func Builtins() []Preset {
	return []Preset{
		builtin("plants", []float64{174, 220, 285, 396, 528, 660}, "#20ff40", osc.Triangle, "classic",
			adsr(0.12, 0.18, 0.7, 0.8), []float64{-7, 0, 7}, 3, Fixed(0), 1800, 0.55, 0.6),
		builtin("mold", []float64{432, 639, 741, 852}, "#b08fff", osc.Sawtooth, "blobs",
			adsr(0.04, 0.17, 0.3, 0.2), []float64{-12, 0, 12}, 4, Random(), 1300, 0.72, 0.8),
		builtin("bacteria", []float64{528, 554, 585, 728, 311}, "#ff6f3c", osc.Square, "dots",
			adsr(0.01, 0.12, 0.4, 0.07), []float64{-16, 0, 16}, 2, Random(), 2100, 0.8, 0.55),
		builtin("mushrooms", []float64{417, 444, 528, 639, 392}, "#ffd700", osc.Sine, "shimmer",
			adsr(0.11, 0.25, 0.4, 1.1), []float64{-6, 0, 6}, 2, Sine(950), 1200, 0.5, 0.5),
		builtin("harmony", []float64{261, 329, 392, 466, 528, 639}, "#00ffff", osc.Triangle, "bars",
			adsr(0.19, 0.22, 0.65, 1.1), []float64{-8, 0, 8}, 3, Fixed(0), 1900, 0.43, 0.6),
		builtin("plantasiaClassic", []float64{174, 220, 261.63, 329.63, 392, 523.25}, "#8fd694", osc.Triangle, "classic",
			adsr(0.23, 0.34, 0.5, 2.1), []float64{-7, 0, 7}, 2, Fixed(0), 1400, 0.7, 0.5),
		builtin("greenhouse", []float64{432, 512, 538, 576, 648}, "#56f28c", osc.Sine, "wobble",
			adsr(0.23, 0.16, 0.8, 1.3), []float64{-8, -2, 10, 13}, 2, Fixed(0), 900, 0.43, 0.7),
		builtin("cosmicdew", []float64{528, 1056, 792, 1584, 2112}, "#a5e6f4", osc.Triangle, "star",
			adsr(0.12, 0.18, 0.4, 1.2), []float64{-24, 0, 11}, 3, Sine(370), 1000, 0.75, 0.5),
		builtin("daybeam", []float64{440, 660, 880, 990, 1320}, "#ffe56c", osc.Sawtooth, "shimmer",
			adsr(0.09, 0.09, 0.2, 0.18), []float64{-4, 0, 4}, 2, Random(), 1600, 0.6, 0.7),
		builtin("spiralback", []float64{321.9, 521.3, 843.2, 987, 1598.3}, "#ffb44f", osc.Triangle, "spiral",
			adsr(0.21, 0.15, 0.5, 0.89), []float64{-13, 0, 8, 21}, 3, Fixed(0), 987, 0.65, 0.44),
		builtin("rockflora", []float64{440, 660, 880, 1350, 1760}, "#9df0ff", osc.Square, "bars",
			adsr(0.03, 0.12, 0.7, 0.13), []float64{-8, 0, 8}, 2, Random(), 1350, 0.85, 0.9),
		builtin("mycomurk", []float64{198, 259, 396, 420, 792}, "#4e3e57", osc.Sawtooth, "blobs",
			adsr(0.22, 0.25, 0.7, 2.1), []float64{-24, 0, 12, 19}, 4, Random(), 420, 0.65, 0.7),
		builtin("microburst", []float64{333, 666, 999, 555, 777}, "#ff9e57", osc.Triangle, "dots",
			adsr(0.01, 0.03, 0.2, 0.07), []float64{-18, 0, 4, 13}, 2, Random(), 1300, 0.4, 0.6),
		builtin("fibonaccishift", []float64{233, 377, 610, 987, 1597}, "#aab6ff", osc.Triangle, "star",
			adsr(0.07, 0.09, 0.5, 0.3), []float64{-21, 0, 5, 13}, 2, Fixed(0), 987, 0.6, 0.6),
	}
}

// Default returns the built-in table.
func Default() *Table {
	t, err := NewTable(Builtins()...)
	if err != nil {
		panic("preset: invalid built-in preset: " + err.Error())
	}
	return t
}
