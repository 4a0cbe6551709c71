// Package wav decodes PCM 16-bit WAV files into the engine's decode.Handle
// contract, and can write interleaved 16-bit WAV of any channel count for
// debugging/export tooling.
package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/soundgraph/mixengine/internal/decode"
)

type handle struct {
	r          io.ReadSeeker
	dataStart  int64
	dataLen    int64
	sampleRate int
	channels   int
	cursor     int64 // frame cursor relative to dataStart
	buf        []byte
}

func (h *handle) SampleRate() int { return h.sampleRate }
func (h *handle) Channels() int   { return h.channels }
func (h *handle) Close() error    { return nil }

func (h *handle) bytesPerFrame() int64 { return int64(h.channels) * 2 }

func (h *handle) FrameCount() int64 {
	return h.dataLen / h.bytesPerFrame()
}

func (h *handle) Read(dst []float32) (int, error) {
	framesWanted := len(dst) / h.channels
	if framesWanted == 0 {
		return 0, nil
	}

	remaining := h.FrameCount() - h.cursor
	if remaining <= 0 {
		return 0, io.EOF
	}
	if int64(framesWanted) > remaining {
		framesWanted = int(remaining)
	}

	bytesNeeded := framesWanted * int(h.bytesPerFrame())
	if cap(h.buf) < bytesNeeded {
		h.buf = make([]byte, bytesNeeded)
	}
	h.buf = h.buf[:bytesNeeded]

	n, err := io.ReadFull(h.r, h.buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return 0, fmt.Errorf("wav: read: %w", err)
	}

	samples := n / 2
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(h.buf[2*i : 2*i+2]))
		dst[i] = float32(v) / 32768.0
	}

	frames := samples / h.channels
	h.cursor += int64(frames)

	if h.cursor >= h.FrameCount() {
		return frames, io.EOF
	}
	return frames, nil
}

func (h *handle) Seek(frame int64) error {
	if frame < 0 {
		frame = 0
	}
	if max := h.FrameCount(); frame > max {
		frame = max
	}
	off := h.dataStart + frame*h.bytesPerFrame()
	if _, err := h.r.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("wav: seek: %w", err)
	}
	h.cursor = frame
	return nil
}

// Decoder decodes canonical 44-byte-header PCM16 WAV files.
type Decoder struct{}

func (Decoder) Open(r io.Reader) (decode.Handle, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("wav: reading into memory: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	header := make([]byte, 44)
	if _, err := io.ReadFull(rs, header); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrNotWavFile
		}
		return nil, fmt.Errorf("wav: %w", err)
	}

	if !bytes.HasPrefix(header[:4], []byte("RIFF")) || !bytes.HasPrefix(header[8:12], []byte("WAVE")) {
		return nil, ErrNotWavFile
	}
	if !bytes.HasPrefix(header[12:16], []byte("fmt ")) {
		return nil, ErrUnsupportedWavLayout
	}

	audioFormat := binary.LittleEndian.Uint16(header[20:22])
	channels := int(binary.LittleEndian.Uint16(header[22:24]))
	sampleRate := int(binary.LittleEndian.Uint32(header[24:28]))
	bitsPerSample := int(binary.LittleEndian.Uint16(header[34:36]))

	if audioFormat != 1 || bitsPerSample != 16 {
		return nil, ErrOnlyPCM16bitSupported
	}
	if !bytes.HasPrefix(header[36:40], []byte("data")) {
		return nil, ErrUnsupportedWavChunks
	}
	dataLen := int64(binary.LittleEndian.Uint32(header[40:44]))

	return &handle{
		r:          rs,
		dataStart:  44,
		dataLen:    dataLen,
		sampleRate: sampleRate,
		channels:   channels,
		buf:        make([]byte, 4096),
	}, nil
}
