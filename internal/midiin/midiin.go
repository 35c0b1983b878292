// Package midiin forwards raw frames from a MIDI input port to an engine.
package midiin

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/cwbudde/algo-synth/synth/engine"
)

// ErrNoPort is returned when no input port matches a query.
var ErrNoPort = errors.New("midiin: no matching input port")

// Sender accepts engine messages without blocking.
type Sender interface {
	Send(msg engine.Message) error
}

// Ports lists the names of the available input ports.
func Ports() []string {
	ins := gomidi.GetInPorts()
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names
}

// Match picks the port for query: an exact name wins, then a unique
// case-insensitive substring. An empty query selects the first port.
func Match(names []string, query string) (int, error) {
	if len(names) == 0 {
		return -1, ErrNoPort
	}
	if query == "" {
		return 0, nil
	}
	for i, n := range names {
		if n == query {
			return i, nil
		}
	}
	q := strings.ToLower(query)
	found := -1
	for i, n := range names {
		if !strings.Contains(strings.ToLower(n), q) {
			continue
		}
		if found >= 0 {
			return -1, fmt.Errorf("midiin: %q matches both %q and %q", query, names[found], n)
		}
		found = i
	}
	if found < 0 {
		return -1, fmt.Errorf("%w: %q", ErrNoPort, query)
	}
	return found, nil
}

// Listener is an open input port.
type Listener struct {
	in   drivers.In
	stop func()
}

// Name returns the port name.
func (l *Listener) Name() string { return l.in.String() }

// Close stops listening and closes the port.
func (l *Listener) Close() error {
	if l.stop != nil {
		l.stop()
		l.stop = nil
	}
	return l.in.Close()
}

// Listen opens the port matching query and sends every incoming message to
// s as an engine.Frame.
func Listen(query string, s Sender, log *slog.Logger) (*Listener, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	ins := gomidi.GetInPorts()
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	idx, err := Match(names, query)
	if err != nil {
		return nil, err
	}
	in := ins[idx]
	if err := in.Open(); err != nil {
		return nil, fmt.Errorf("midiin: open %q: %w", in.String(), err)
	}
	stop, err := gomidi.ListenTo(in, Forward(s, log), gomidi.HandleError(func(err error) {
		log.Warn("MIDI listener error", "port", in.String(), "err", err)
	}))
	if err != nil {
		_ = in.Close()
		return nil, fmt.Errorf("midiin: listen %q: %w", in.String(), err)
	}
	log.Info("MIDI input open", "port", in.String())
	return &Listener{in: in, stop: stop}, nil
}

// Forward returns a gomidi receiver that copies each message into a Frame
// and sends it to s. Frames dropped by a full inbox are logged at debug.
func Forward(s Sender, log *slog.Logger) func(gomidi.Message, int32) {
	return func(msg gomidi.Message, _ int32) {
		err := s.Send(engine.Frame(bytes.Clone(msg.Bytes())))
		if err != nil {
			log.Debug("MIDI frame dropped", "msg", msg.String(), "err", err)
		}
	}
}
