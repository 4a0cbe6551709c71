//go:build headless

package device

// HeadlessStream discards every block. It satisfies Stream for builds and
// tests that run without real audio hardware (CI, the build tag mirrors the
// teacher's own headless fallback).
type HeadlessStream struct {
	closed bool
}

func NewHeadlessStream(sampleRate int) (*HeadlessStream, error) {
	return &HeadlessStream{}, nil
}

func (s *HeadlessStream) Write(block []float32) error {
	return nil
}

func (s *HeadlessStream) Close() error {
	s.closed = true
	return nil
}
