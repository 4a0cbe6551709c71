// Package mp3 decodes MPEG audio into the engine's decode.Handle contract
// via hajimehoshi/go-mp3. MP3 is a sequential bitstream: seeking backward
// isn't supported, and total frame count isn't known until EOF.
package mp3

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/soundgraph/mixengine/internal/decode"
)

type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type handle struct {
	dec        mp3Reader
	sampleRate int
	channels   int
	buf        []byte
	cursor     int64
	known      int64 // total frames, learned at EOF; decode.UnknownFrameCount until then
}

func (h *handle) SampleRate() int    { return h.sampleRate }
func (h *handle) Channels() int      { return h.channels }
func (h *handle) Close() error       { return nil }
func (h *handle) FrameCount() int64  { return h.known }

func (h *handle) Read(dst []float32) (int, error) {
	bytesNeeded := len(dst) * 2 // int16 mono/stereo interleaved bytes
	if cap(h.buf) < bytesNeeded {
		h.buf = make([]byte, bytesNeeded)
	}
	h.buf = h.buf[:bytesNeeded]

	n, err := h.dec.Read(h.buf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("mp3: read: %w", err)
		}
		if err == io.EOF {
			h.known = h.cursor
		}
		return 0, err
	}

	samples := n / 2
	for i := range samples {
		low := uint16(h.buf[2*i])
		high := uint16(h.buf[2*i+1])
		v := int16(low | (high << 8))
		dst[i] = float32(v) / 32768.0
	}

	frames := samples / h.channels
	h.cursor += int64(frames)

	if err == io.EOF {
		h.known = h.cursor
	}
	return frames, err
}

// Seek only supports moving forward by decoding through and discarding the
// skipped frames — the underlying bitstream reader cannot rewind.
func (h *handle) Seek(frame int64) error {
	if frame < h.cursor {
		return decode.ErrSeekUnsupported
	}
	scratch := make([]float32, 4096*h.channels)
	for h.cursor < frame {
		want := frame - h.cursor
		n := int64(len(scratch) / h.channels)
		if n > want {
			n = want
		}
		_, err := h.Read(scratch[:n*int64(h.channels)])
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("mp3: seeking: %w", err)
		}
	}
	return nil
}

type Decoder struct{}

func (Decoder) Open(r io.Reader) (decode.Handle, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}

	return &handle{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   2,
		buf:        make([]byte, 8192),
		known:      decode.UnknownFrameCount,
	}, nil
}
