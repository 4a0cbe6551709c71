// Package aiff decodes PCM16 AIFF audio into the engine's decode.Handle
// contract via go-audio/aiff. The decoder's PCMBuffer call is sequential, so
// — like the mp3/vorbis decoders — only forward seeking is supported and the
// total frame count is learned at end of stream.
package aiff

import (
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/soundgraph/mixengine/internal/decode"
)

type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type handle struct {
	dec        aiffReader
	sampleRate int
	channels   int
	bitDepth   int
	cursor     int64
	known      int64
	intBuf     *goaudio.IntBuffer
}

func (h *handle) SampleRate() int   { return h.sampleRate }
func (h *handle) Channels() int     { return h.channels }
func (h *handle) Close() error      { return nil }
func (h *handle) FrameCount() int64 { return h.known }

func (h *handle) Read(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if h.intBuf == nil || cap(h.intBuf.Data) < len(dst) {
		h.intBuf = &goaudio.IntBuffer{Data: make([]int, len(dst)), Format: &goaudio.Format{
			NumChannels: h.channels,
			SampleRate:  h.sampleRate,
		}}
	} else {
		h.intBuf.Data = h.intBuf.Data[:len(dst)]
	}

	n, err := h.dec.PCMBuffer(h.intBuf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("aiff: read: %w", err)
		}
		h.known = h.cursor
		return 0, io.EOF
	}

	const maxVal = 32768.0
	for i := range n {
		dst[i] = float32(h.intBuf.Data[i]) / maxVal
	}

	frames := n / h.channels
	h.cursor += int64(frames)

	if n < len(dst) {
		h.known = h.cursor
		return frames, io.EOF
	}
	return frames, nil
}

// Seek only supports moving forward by decoding through and discarding the
// skipped frames, matching the sequential nature of PCMBuffer.
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
			return fmt.Errorf("aiff: seeking: %w", err)
		}
	}
	return nil
}

type Decoder struct{}

func (Decoder) Open(r io.Reader) (decode.Handle, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("aiff: reading into memory: %w", err)
		}
		rs = &readSeeker{data: data}
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	if dec.BitDepth != 16 {
		return nil, ErrOnlyPCM16bitSupported
	}

	format := dec.Format()
	if format == nil {
		return nil, ErrUnsupportedAiffLayout
	}

	return &handle{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		bitDepth:   int(dec.BitDepth),
		known:      decode.UnknownFrameCount,
	}, nil
}

type readSeeker struct {
	data   []byte
	offset int64
}

func (rs *readSeeker) Read(p []byte) (int, error) {
	if rs.offset >= int64(len(rs.data)) {
		return 0, io.EOF
	}
	n := copy(p, rs.data[rs.offset:])
	rs.offset += int64(n)
	return n, nil
}

func (rs *readSeeker) Seek(offset int64, whence int) (int64, error) {
	var newOffset int64
	switch whence {
	case io.SeekStart:
		newOffset = offset
	case io.SeekCurrent:
		newOffset = rs.offset + offset
	case io.SeekEnd:
		newOffset = int64(len(rs.data)) + offset
	default:
		return 0, fmt.Errorf("aiff: invalid whence: %d", whence)
	}
	if newOffset < 0 {
		return 0, fmt.Errorf("aiff: negative seek position")
	}
	rs.offset = newOffset
	return newOffset, nil
}
