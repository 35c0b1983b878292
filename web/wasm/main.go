//go:build js && wasm

package main

import (
	"encoding/json"
	"strings"
	"syscall/js"

	"github.com/cwbudde/algo-synth/dsp/effects/reverb"
	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/synth/engine"
	"github.com/cwbudde/algo-synth/synth/modulation"
	"github.com/cwbudde/algo-synth/synth/params"
)

var (
	eng       *engine.Engine
	funcs     []js.Func
	renderBuf []float32
	scopeBuf  []float64
	specBuf   []float64
)

func main() {
	api := js.Global().Get("Object").New()
	api.Set("init", export(func(args []js.Value) any {
		opts := []engine.Option{engine.WithSampleRate(48000)}
		if len(args) > 0 {
			opts[0] = engine.WithSampleRate(args[0].Float())
		}
		if len(args) > 1 && args[1].Type() == js.TypeString {
			kind, err := reverb.ParseKind(args[1].String())
			if err != nil {
				return err.Error()
			}
			opts = append(opts, engine.WithReverb(kind))
		}
		e, err := engine.New(opts...)
		if err != nil {
			return err.Error()
		}
		if eng != nil {
			eng.Close()
		}
		eng = e
		return js.Null()
	}))

	api.Set("start", export(func([]js.Value) any { return step(engine.Start{}) }))
	api.Set("stop", export(func([]js.Value) any { return step(engine.Stop{}) }))

	api.Set("noteOn", export(func(args []js.Value) any {
		if len(args) < 2 {
			return js.Null()
		}
		return step(engine.NoteOn{Note: uint8(args[0].Int()), Velocity: uint8(args[1].Int())})
	}))

	api.Set("noteOff", export(func(args []js.Value) any {
		if len(args) < 1 {
			return js.Null()
		}
		return step(engine.NoteOff{Note: uint8(args[0].Int())})
	}))

	api.Set("midi", export(func(args []js.Value) any {
		if len(args) < 1 {
			return js.Null()
		}
		arr := args[0]
		frame := make(engine.Frame, arr.Length())
		for i := range frame {
			frame[i] = byte(arr.Index(i).Int())
		}
		return step(frame)
	}))

	api.Set("setParam", export(func(args []js.Value) any {
		if len(args) < 2 {
			return js.Null()
		}
		return step(engine.SetParam{Name: params.Name(args[0].String()), Value: args[1].Float()})
	}))

	api.Set("selectPreset", export(func(args []js.Value) any {
		if len(args) < 1 {
			return js.Null()
		}
		return step(engine.SelectPreset{Name: args[0].String()})
	}))

	api.Set("setWaveform", export(func(args []js.Value) any {
		if len(args) < 1 || args[0].IsNull() || args[0].IsUndefined() {
			return step(engine.SetWaveform{})
		}
		w, err := osc.ParseWaveform(args[0].String())
		if err != nil {
			return err.Error()
		}
		return step(engine.SetWaveform{Waveform: &w})
	}))

	api.Set("setModDest", export(func(args []js.Value) any {
		if len(args) < 1 {
			return js.Null()
		}
		d, err := modulation.ParseDestination(args[0].String())
		if err != nil {
			return err.Error()
		}
		return step(engine.SetModDest{Destination: d})
	}))

	api.Set("render", export(func(args []js.Value) any {
		if eng == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}
		n := args[0].Int()
		if cap(renderBuf) < n {
			renderBuf = make([]float32, n)
		}
		buf := renderBuf[:n]
		_ = eng.Step(engine.Tick{})
		eng.Render(buf)
		arr := js.Global().Get("Float32Array").New(n)
		for i := range buf {
			arr.SetIndex(i, buf[i])
		}
		return arr
	}))

	api.Set("snapshot", export(func([]js.Value) any {
		if eng == nil {
			return js.Global().Get("Float32Array").New(0)
		}
		scopeBuf = eng.Snapshot(scopeBuf)
		return float32Array(scopeBuf)
	}))

	api.Set("spectrum", export(func([]js.Value) any {
		if eng == nil {
			return js.Global().Get("Float32Array").New(0)
		}
		var err error
		specBuf, err = eng.Spectrum(specBuf)
		if err != nil {
			return err.Error()
		}
		return float32Array(specBuf)
	}))

	api.Set("responseCurve", export(func(args []js.Value) any {
		if eng == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}
		input := args[0]
		freqs := make([]float64, input.Length())
		for i := range freqs {
			freqs[i] = input.Index(i).Float()
		}
		return float32Array(eng.FilterResponse(nil, freqs))
	}))

	api.Set("info", export(func([]js.Value) any {
		if eng == nil {
			return js.Null()
		}
		b, err := json.Marshal(eng.Info())
		if err != nil {
			return err.Error()
		}
		return string(b)
	}))

	api.Set("infoText", export(func([]js.Value) any {
		if eng == nil {
			return ""
		}
		return eng.Info().String()
	}))

	api.Set("presets", export(func([]js.Value) any {
		if eng == nil {
			return js.Null()
		}
		var b strings.Builder
		if err := eng.Presets().Encode(&b); err != nil {
			return err.Error()
		}
		return b.String()
	}))

	js.Global().Set("Plantasia", api)
	select {}
}

// step applies msg and returns null, or the error text.
func step(msg engine.Message) any {
	if eng == nil {
		return "engine not initialised"
	}
	if err := eng.Step(msg); err != nil {
		return err.Error()
	}
	return js.Null()
}

func float32Array(v []float64) js.Value {
	arr := js.Global().Get("Float32Array").New(len(v))
	for i, x := range v {
		arr.SetIndex(i, x)
	}
	return arr
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}
