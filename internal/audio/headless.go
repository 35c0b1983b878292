//go:build headless

package audio

import (
	"sync"
	"time"
)

// Headless reports whether the package was built without a device backend.
const Headless = true

// Player pulls the Source at real-time pace and discards the samples, so
// the engine clock still advances without a sound device.
type Player struct {
	mu      sync.Mutex
	reader  *Reader
	period  time.Duration
	buf     []byte
	stop    chan struct{}
	done    chan struct{}
	started bool
}

// Open returns a player rendering one buffer per period.
func Open(src Source, buffer time.Duration) (*Player, error) {
	if buffer <= 0 {
		buffer = 10 * time.Millisecond
	}
	frames := max(1, int(src.SampleRate()*buffer.Seconds()))
	return &Player{
		reader: NewReader(src),
		period: buffer,
		buf:    make([]byte, 8*frames),
	}, nil
}

// Start begins the render clock.
func (p *Player) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.loop(p.stop, p.done)
}

func (p *Player) loop(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.reader.Read(p.buf)
		}
	}
}

// Close stops the render clock. It is idempotent.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return nil
	}
	close(p.stop)
	<-p.done
	p.started = false
	return nil
}
