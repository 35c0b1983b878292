package control

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-synth/synth"
	"github.com/cwbudde/algo-synth/synth/params"
)

const (
	// AllChannels disables the channel filter.
	AllChannels = -1
	// DefaultModWheel is the controller that drives the LFO bias.
	DefaultModWheel = 1
	// NoModWheel disables the mod wheel.
	NoModWheel = -1
	// CutoffPerVelocity is the filter offset in Hz per velocity step.
	CutoffPerVelocity = 6.0
)

// VelocityGain maps a 1..127 velocity to an envelope scale in [0.1, 1].
func VelocityGain(velocity uint8) float64 {
	return 0.1 + float64(min(velocity, 127))/127*0.9
}

// Sink receives the actions decoded frames ask for.
type Sink interface {
	NoteOn(note uint8, velocityGain, cutoffOffset float64)
	NoteOff(note uint8)
	ControlChange(name params.Name, value uint8)
	ModBias(bias float64)
}

// Option configures an Adapter.
type Option func(*Adapter) error

// WithChannel restricts note messages to one 0-based channel, or
// AllChannels.
func WithChannel(ch int) Option {
	return func(a *Adapter) error {
		if ch < AllChannels || ch > 15 {
			return fmt.Errorf("control: channel must be -1..15: %d", ch)
		}
		a.channel = ch
		return nil
	}
}

// WithModWheel sets the mod wheel controller number, or NoModWheel.
func WithModWheel(cc int) Option {
	return func(a *Adapter) error {
		if cc < NoModWheel || cc > 127 {
			return fmt.Errorf("control: mod wheel must be -1..127: %d", cc)
		}
		a.modWheel = cc
		return nil
	}
}

// WithMapping shares an existing controller mapping.
func WithMapping(m *Mapping) Option {
	return func(a *Adapter) error {
		if m == nil {
			return fmt.Errorf("control: nil mapping")
		}
		a.mapping = m
		return nil
	}
}

// WithLogger sets the logger for learned controllers and dropped frames.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) error {
		if l != nil {
			a.log = l
		}
		return nil
	}
}

// Adapter decodes frames and forwards them to a Sink.
type Adapter struct {
	sink     Sink
	channel  int
	modWheel int
	mapping  *Mapping
	log      *slog.Logger
}

// NewAdapter returns an adapter listening on every channel with the mod
// wheel on CC 1.
func NewAdapter(sink Sink, opts ...Option) (*Adapter, error) {
	if sink == nil {
		return nil, fmt.Errorf("control: nil sink")
	}
	a := &Adapter{
		sink:     sink,
		channel:  AllChannels,
		modWheel: DefaultModWheel,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	if a.mapping == nil {
		a.mapping = NewMapping(DefaultOrder())
	}
	return a, nil
}

// Mapping returns the learned controller map.
func (a *Adapter) Mapping() *Mapping { return a.mapping }

// Handle decodes frame and forwards it. Ignorable frames are logged at debug
// level and dropped; Handle never fails.
func (a *Adapter) Handle(frame []byte) {
	m, err := Decode(frame)
	if err != nil {
		if errors.Is(err, synth.ErrDecodeIgnorable) {
			a.log.Debug("dropped control frame", "frame", fmt.Sprintf("% x", frame), "err", err)
		}
		return
	}
	a.Dispatch(m)
}

// Dispatch forwards an already decoded message.
func (a *Adapter) Dispatch(m Message) {
	switch m.Kind {
	case NoteOn:
		if !a.accepts(m.Channel) {
			return
		}
		a.sink.NoteOn(m.Data1, VelocityGain(m.Data2), float64(m.Data2)*CutoffPerVelocity)
	case NoteOff:
		if !a.accepts(m.Channel) {
			return
		}
		a.sink.NoteOff(m.Data1)
	case ControlChange:
		if a.modWheel != NoModWheel && int(m.Data1) == a.modWheel {
			a.sink.ModBias(float64(m.Data2) / 127)
			return
		}
		name, learned, ok := a.mapping.Learn(m.Data1)
		if !ok {
			return
		}
		if learned {
			a.log.Info("learned controller", "cc", m.Data1, "param", string(name))
		}
		a.sink.ControlChange(name, m.Data2)
	}
}

func (a *Adapter) accepts(ch uint8) bool {
	return a.channel == AllChannels || int(ch) == a.channel
}
