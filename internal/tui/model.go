// Package tui is the terminal front panel: preset and tempo keys, a
// QWERTY keyboard, the engine info and a live scope strip.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/synth/engine"
	"github.com/cwbudde/algo-synth/synth/modulation"
	"github.com/cwbudde/algo-synth/synth/params"
	"github.com/cwbudde/algo-synth/synth/preset"
)

const (
	refreshInterval = 50 * time.Millisecond
	// Terminals report no key-up, so a keyboard note is released this long
	// after its last repeat.
	keyHold      = 300 * time.Millisecond
	keyVelocity  = 100
	tempoStep    = 5
	volumeStep   = 5
	defaultWidth = 64
)

// keyboard maps the home row to semitones above the base note.
var keyboard = map[string]uint8{
	"a": 0, "w": 1, "s": 2, "e": 3, "d": 4, "f": 5, "t": 6,
	"g": 7, "y": 8, "h": 9, "u": 10, "j": 11, "k": 12,
}

// Controller is the part of the engine the panel drives.
type Controller interface {
	Send(msg engine.Message) error
	Info() engine.Info
	Snapshot(dst []float64) []float64
	Presets() *preset.Table
}

type refreshMsg time.Time

type releaseMsg struct {
	note uint8
	seq  int
}

// Model is the bubbletea model.
type Model struct {
	ctl    Controller
	info   engine.Info
	scope  []float64
	theme  Theme
	width  int
	base   uint8
	seq    int
	held   map[uint8]int
	status string
}

// New returns a model reading its first state from ctl.
func New(ctl Controller) Model {
	info := ctl.Info()
	return Model{
		ctl:   ctl,
		info:  info,
		theme: NewTheme(info.Color),
		width: defaultWidth,
		base:  60,
		held:  make(map[uint8]int),
	}
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

// Init starts the refresh clock.
func (m Model) Init() tea.Cmd { return refresh() }

func (m *Model) send(msg engine.Message) {
	if err := m.ctl.Send(msg); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
}

// Update handles keys, window size and refresh ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = max(16, msg.Width-4)

	case refreshMsg:
		m.sync()
		return m, refresh()

	case releaseMsg:
		if m.held[msg.note] == msg.seq {
			delete(m.held, msg.note)
			m.send(engine.NoteOff{Note: msg.note})
		}

	case tea.KeyMsg:
		return m.key(msg.String())
	}
	return m, nil
}

func (m *Model) sync() {
	info := m.ctl.Info()
	if info.Color != m.info.Color {
		m.theme = NewTheme(info.Color)
	}
	m.info = info
	m.scope = m.ctl.Snapshot(m.scope)
}

func (m Model) key(k string) (tea.Model, tea.Cmd) {
	if off, ok := keyboard[k]; ok {
		note := m.base + off
		m.seq++
		seq := m.seq
		if _, down := m.held[note]; !down {
			m.send(engine.NoteOn{Note: note, Velocity: keyVelocity})
		}
		m.held[note] = seq
		return m, tea.Tick(keyHold, func(time.Time) tea.Msg { return releaseMsg{note: note, seq: seq} })
	}

	switch k {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ":
		if m.info.Running {
			m.send(engine.Stop{})
		} else {
			m.send(engine.Start{})
		}
	case "right", "left":
		step := 1
		if k == "left" {
			step = -1
		}
		m.send(engine.SelectPreset{Name: m.ctl.Presets().Next(m.info.Preset, step)})
	case "up":
		m.send(engine.SetParam{Name: params.BPM, Value: m.info.BPM + tempoStep})
	case "down":
		m.send(engine.SetParam{Name: params.BPM, Value: m.info.BPM - tempoStep})
	case "+", "=":
		m.send(engine.SetParam{Name: params.Volume, Value: m.info.Volume + volumeStep})
	case "-", "_":
		m.send(engine.SetParam{Name: params.Volume, Value: m.info.Volume - volumeStep})
	case "tab":
		m.send(engine.SetModDest{Destination: (m.info.LFO.Destination + 1) % (modulation.Pitch + 1)})
	case "1", "2", "3", "4":
		w := osc.Waveforms()[k[0]-'1']
		m.send(engine.SetWaveform{Waveform: &w})
	case "0":
		m.send(engine.SetWaveform{})
	case "z":
		if m.base >= 12 {
			m.base -= 12
		}
	case "x":
		if m.base <= 127-24 {
			m.base += 12
		}
	default:
		return m, nil
	}
	m.sync()
	return m, nil
}

const help = "space play/stop  ←/→ preset  ↑/↓ tempo  +/- volume  tab LFO  1-4 wave  0 preset wave  a-k notes  z/x octave  q quit"

// View draws the panel.
func (m Model) View() string {
	state := "stopped"
	if m.info.Running {
		state = "playing"
	}
	title := m.theme.Title.Render(fmt.Sprintf("plantasia · %s · %s", m.info.Preset, state))
	voices := fmt.Sprintf("voices %d (held %d)  octave C%d", m.info.Live, m.info.Held, int(m.base)/12-1)

	var b strings.Builder
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.theme.Panel.Render(m.info.String()),
		Scope(m.scope, m.width, m.theme),
		voices,
		m.theme.Help.Render(help),
	))
	if m.status != "" {
		b.WriteString("\n" + m.theme.Status.Render(m.status))
	}
	b.WriteString("\n")
	return b.String()
}

// Run blocks running the panel on the terminal until the user quits.
func Run(ctl Controller) error {
	_, err := tea.NewProgram(New(ctl), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
