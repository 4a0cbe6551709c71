// Package vorbis decodes Ogg Vorbis audio into the engine's decode.Handle
// contract via jfreymuth/oggvorbis. Like MP3, it's a sequential bitstream:
// only forward seeking is supported.
package vorbis

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
	"github.com/soundgraph/mixengine/internal/decode"
)

type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type handle struct {
	dec        oggReader
	sampleRate int
	channels   int
	frameBuf   []float32
	cursor     int64
	known      int64
}

func (h *handle) SampleRate() int   { return h.sampleRate }
func (h *handle) Channels() int     { return h.channels }
func (h *handle) Close() error      { return nil }
func (h *handle) FrameCount() int64 { return h.known }

func (h *handle) Read(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	framesRequested := len(dst) / h.channels
	needed := framesRequested * h.channels
	if cap(h.frameBuf) < needed {
		h.frameBuf = make([]float32, needed)
	}
	h.frameBuf = h.frameBuf[:needed]

	n, err := h.dec.Read(h.frameBuf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("vorbis: read: %w", err)
		}
		if err == io.EOF {
			h.known = h.cursor
		}
		return 0, err
	}

	samplesRead := n * h.channels
	copy(dst, h.frameBuf[:samplesRead])
	h.cursor += int64(n)

	if err == io.EOF {
		h.known = h.cursor
	}
	return n, err
}

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
			return fmt.Errorf("vorbis: seeking: %w", err)
		}
	}
	return nil
}

type Decoder struct{}

func (Decoder) Open(r io.Reader) (decode.Handle, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("vorbis: %w", err)
	}

	return &handle{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
		frameBuf:   make([]float32, 4096),
		known:      decode.UnknownFrameCount,
	}, nil
}
