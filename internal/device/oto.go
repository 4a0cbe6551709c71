//go:build !headless

package device

import (
	"fmt"
	"io"
	"math"

	"github.com/ebitengine/oto/v3"
	"github.com/soundgraph/mixengine/internal/logging"
)

// OtoStream plays interleaved float32 stereo blocks through the host audio
// device via ebitengine/oto/v3. oto pulls samples through an io.Reader
// callback; Write is bridged onto that pull model with an io.Pipe so the
// mixer's push-style Write can block until oto has consumed the block.
type OtoStream struct {
	ctx    *oto.Context
	player *oto.Player
	pw     *io.PipeWriter
	buf    []byte
}

// NewOtoStream opens the default audio device at sampleRate for stereo
// float32 playback and starts the player. The returned Stream is ready to
// accept Write calls immediately.
func NewOtoStream(sampleRate int) (*OtoStream, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   0,
	})
	if err != nil {
		return nil, fmt.Errorf("device: opening oto context: %w", err)
	}
	<-ready

	pr, pw := io.Pipe()
	player := ctx.NewPlayer(pr)
	player.Play()

	return &OtoStream{ctx: ctx, player: player, pw: pw}, nil
}

// Write blocks until oto's pull callback has consumed the entire block.
func (s *OtoStream) Write(block []float32) error {
	need := len(block) * 4
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	buf := s.buf[:need]

	for i, sample := range block {
		putFloat32LE(buf[i*4:i*4+4], sample)
	}

	_, err := s.pw.Write(buf)
	if err != nil {
		logging.Error("device: oto write failed", "error", err)
		return fmt.Errorf("device: writing block: %w", err)
	}
	return nil
}

func (s *OtoStream) Close() error {
	_ = s.pw.Close()
	s.player.Close()
	return nil
}

func putFloat32LE(dst []byte, f float32) {
	bits := math.Float32bits(f)
	dst[0] = byte(bits)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits >> 16)
	dst[3] = byte(bits >> 24)
}
