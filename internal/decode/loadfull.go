package decode

import (
	"fmt"
	"io"
)

// LoadFull decodes a Handle to completion and returns the full signal as
// channel-major frames: data[c][i] is channel c's sample at frame i.
func LoadFull(h Handle) (data [][]float32, sampleRate int, err error) {
	channels := h.Channels()
	sampleRate = h.SampleRate()

	data = make([][]float32, channels)
	if n := h.FrameCount(); n > 0 {
		for c := range data {
			data[c] = make([]float32, 0, n)
		}
	}

	const chunkFrames = 4096
	buf := make([]float32, chunkFrames*channels)

	for {
		n, rerr := h.Read(buf)
		if n > 0 {
			for f := range n {
				for c := range channels {
					data[c] = append(data[c], buf[f*channels+c])
				}
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, sampleRate, fmt.Errorf("decode: loading full signal: %w", rerr)
		}
	}

	return data, sampleRate, nil
}

// StereoDownmix collapses an arbitrary channel-major frame matrix to at most
// two channels (mono stays mono, everything above stereo is averaged down to
// L/R), the stereo-preserving generalization of a mono-only channel mixer.
func StereoDownmix(data [][]float32) [][]float32 {
	if len(data) <= 2 {
		return data
	}
	frames := len(data[0])
	left := make([]float32, frames)
	right := make([]float32, frames)
	frame := make([]float32, len(data))
	for i := range frames {
		for c, ch := range data {
			frame[c] = ch[i]
		}
		left[i], right[i] = DownmixFrame(frame)
	}
	return [][]float32{left, right}
}

// DownmixFrame collapses one interleaved frame of len(frame) channels to a
// stereo pair using the same half-split averaging rule as StereoDownmix
// (channels [0, half) average into left, [half, n) into right, an odd
// middle channel joins left), so a caller streaming frame-by-frame — like
// internal/source's Streaming.refillLocked — can apply the identical
// downmix contract without allocating a channel-major buffer per block.
// len(frame) <= 2 returns it unchanged (mono duplicates to both channels).
func DownmixFrame(frame []float32) (left, right float32) {
	switch len(frame) {
	case 0:
		return 0, 0
	case 1:
		return frame[0], frame[0]
	case 2:
		return frame[0], frame[1]
	default:
		half := len(frame) / 2
		leftCount := half
		if len(frame)%2 == 1 {
			leftCount++
		}
		rightCount := len(frame) - leftCount
		var l, r float32
		for c, v := range frame {
			if c < leftCount {
				l += v
			} else {
				r += v
			}
		}
		l /= float32(leftCount)
		if rightCount > 0 {
			r /= float32(rightCount)
		} else {
			r = l
		}
		return l, r
	}
}

func scale(dst []float32, f float32) {
	for i := range dst {
		dst[i] *= f
	}
}

// PeakNormalize scans data for the absolute peak sample and, if it exceeds 1.0,
// divides every sample by that peak. Applied once, at load time only — the
// caller must not call this again after playback begins.
func PeakNormalize(data [][]float32) {
	var peak float32
	for _, ch := range data {
		for _, v := range ch {
			if v < 0 {
				v = -v
			}
			if v > peak {
				peak = v
			}
		}
	}
	if peak <= 1.0 || peak == 0 {
		return
	}
	inv := 1 / peak
	for _, ch := range data {
		scale(ch, inv)
	}
}
