package reverb

import (
	"fmt"
	"strings"
)

// Processor is a mono wet-only reverb.
type Processor interface {
	ProcessSample(input float64) float64
	Reset()
}

// Kind selects a master reverb implementation.
type Kind int

const (
	KindEcho Kind = iota
	KindHall
)

func (k Kind) String() string {
	switch k {
	case KindEcho:
		return "echo"
	case KindHall:
		return "hall"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps "echo" or "hall" to a Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "echo", "":
		return KindEcho, nil
	case "hall":
		return KindHall, nil
	default:
		return 0, fmt.Errorf("reverb: unknown kind %q", name)
	}
}

// New returns the default processor of the given kind.
func New(kind Kind, sampleRate float64) (Processor, error) {
	switch kind {
	case KindEcho:
		return NewEcho(sampleRate, DefaultEchoSeconds, DefaultEchoFeedback)
	case KindHall:
		return NewHall(sampleRate)
	default:
		return nil, fmt.Errorf("reverb: unknown kind %d", int(kind))
	}
}
