package midiin

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-synth/synth/engine"
)

func TestMatch(t *testing.T) {
	names := []string{"Midi Through:0", "Arturia KeyStep 32:0", "nanoKONTROL2:0"}
	tests := []struct {
		query string
		want  int
		err   bool
	}{
		{"", 0, false},
		{"nanoKONTROL2:0", 2, false},
		{"keystep", 1, false},
		{"KONTROL", 2, false},
		{":0", -1, true},
		{"launchpad", -1, true},
	}
	for _, tt := range tests {
		got, err := Match(names, tt.query)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("Match(%q) = %d, %v; want %d, err=%v", tt.query, got, err, tt.want, tt.err)
		}
	}
	if _, err := Match(nil, "x"); !errors.Is(err, ErrNoPort) {
		t.Errorf("empty list: err = %v", err)
	}
	if _, err := Match(names, "launchpad"); !errors.Is(err, ErrNoPort) {
		t.Errorf("no match: err = %v, want ErrNoPort", err)
	}
}

type recorder struct {
	frames []engine.Frame
	err    error
}

func (r *recorder) Send(msg engine.Message) error {
	if f, ok := msg.(engine.Frame); ok {
		r.frames = append(r.frames, f)
	}
	return r.err
}

func TestForwardCopiesFrames(t *testing.T) {
	rec := &recorder{}
	fwd := Forward(rec, slog.New(slog.DiscardHandler))

	msg := gomidi.NoteOn(0, 60, 100)
	fwd(msg, 0)
	msg[1] = 61

	if len(rec.frames) != 1 {
		t.Fatalf("got %d frames", len(rec.frames))
	}
	if want := []byte{0x90, 60, 100}; !bytes.Equal(rec.frames[0], want) {
		t.Fatalf("frame = % x, want % x", []byte(rec.frames[0]), want)
	}

	rec.err = engine.ErrInboxFull
	fwd(gomidi.NoteOff(0, 60), 0)
	if len(rec.frames) != 2 {
		t.Fatal("frame not sent when inbox reports full")
	}
}
