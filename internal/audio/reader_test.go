package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

type rampSource struct{ calls int }

func (s *rampSource) SampleRate() float64 { return 48000 }

func (s *rampSource) Render(dst []float32) int {
	s.calls++
	for i := range dst {
		dst[i] = float32(i) / 8
	}
	return len(dst) / 2
}

func TestReaderEncodesFloat32LE(t *testing.T) {
	src := &rampSource{}
	r := NewReader(src)
	p := make([]byte, 8*4+3)
	for i := range p {
		p[i] = 0xff
	}
	n, err := r.Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("Read = %d, %v", n, err)
	}
	for i := range 8 {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[4*i:]))
		if want := float32(i) / 8; got != want {
			t.Fatalf("sample %d = %v, want %v", i, got, want)
		}
	}
	for _, b := range p[32:] {
		if b != 0 {
			t.Fatal("partial frame not zero-filled")
		}
	}
	if src.calls != 1 {
		t.Fatalf("Render called %d times", src.calls)
	}
}
