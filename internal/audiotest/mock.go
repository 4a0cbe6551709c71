// Package audiotest provides test doubles shared across the engine's
// internal packages: a synthetic decode.Handle and a capturing device.Stream,
// so package tests never need a real audio file or real audio hardware.
package audiotest

import (
	"io"
	"math"
	"sync"
)

// MockHandle is a decode.Handle that generates audio procedurally.
type MockHandle struct {
	sampleRate  int
	channels    int
	totalFrames int64
	generated   int64
	waveform    func(frame int64, channel int) float32
}

func NewMockHandle(sampleRate, channels int, totalFrames int64, waveform func(frame int64, channel int) float32) *MockHandle {
	return &MockHandle{
		sampleRate:  sampleRate,
		channels:    channels,
		totalFrames: totalFrames,
		waveform:    waveform,
	}
}

func NewSilentHandle(sampleRate, channels int, totalFrames int64) *MockHandle {
	return NewMockHandle(sampleRate, channels, totalFrames, func(int64, int) float32 { return 0 })
}

func NewSineHandle(sampleRate, channels int, totalFrames int64, frequency, amplitude float64) *MockHandle {
	return NewMockHandle(sampleRate, channels, totalFrames, func(frame int64, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(amplitude * math.Sin(2*math.Pi*frequency*t))
	})
}

func (m *MockHandle) SampleRate() int   { return m.sampleRate }
func (m *MockHandle) Channels() int     { return m.channels }
func (m *MockHandle) FrameCount() int64 { return m.totalFrames }
func (m *MockHandle) Close() error      { return nil }

// Reset rewinds the generator to frame 0, for reuse across subtests.
func (m *MockHandle) Reset() { m.generated = 0 }

func (m *MockHandle) Read(dst []float32) (int, error) {
	if m.generated >= m.totalFrames {
		return 0, io.EOF
	}

	framesRequested := int64(len(dst) / m.channels)
	framesAvailable := m.totalFrames - m.generated
	framesToWrite := framesRequested
	if framesToWrite > framesAvailable {
		framesToWrite = framesAvailable
	}

	for f := range framesToWrite {
		frame := m.generated + f
		for ch := range m.channels {
			dst[f*int64(m.channels)+int64(ch)] = m.waveform(frame, ch)
		}
	}

	m.generated += framesToWrite
	written := int(framesToWrite)

	if m.generated >= m.totalFrames {
		return written, io.EOF
	}
	return written, nil
}

func (m *MockHandle) Seek(frame int64) error {
	if frame < 0 {
		frame = 0
	}
	if frame > m.totalFrames {
		frame = m.totalFrames
	}
	m.generated = frame
	return nil
}

// CapturingStream is a device.Stream test double that records every block
// it's asked to write, optionally failing on a configured write index.
type CapturingStream struct {
	mu      sync.Mutex
	Written [][]float32
	FailAt  int
	writes  int
	closed  bool
}

func (c *CapturingStream) Write(block []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writes++
	if c.FailAt > 0 && c.writes == c.FailAt {
		return io.ErrClosedPipe
	}

	cp := make([]float32, len(block))
	copy(cp, block)
	c.Written = append(c.Written, cp)
	return nil
}

func (c *CapturingStream) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *CapturingStream) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *CapturingStream) Blocks() [][]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]float32, len(c.Written))
	copy(out, c.Written)
	return out
}
