package wav

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

func createWAVFile(sampleRate, channels int, samples []int16) []byte {
	buf := new(bytes.Buffer)

	numChannels := uint16(channels)
	byteRate := uint32(sampleRate) * uint32(numChannels) * 2
	blockAlign := numChannels * 2
	dataSize := uint32(len(samples) * 2)
	riffSize := 36 + dataSize

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, riffSize)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, numChannels)
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, byteRate)
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	for _, s := range samples {
		binary.Write(buf, binary.LittleEndian, s)
	}

	return buf.Bytes()
}

func TestDecoder_Open(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rate     int
		channels int
		samples  []int16
	}{
		{"mono", 8000, 1, []int16{0, 100, 200, -100, -200, 0}},
		{"stereo", 44100, 2, []int16{100, -100, 200, -200, 300, -300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data := createWAVFile(tt.rate, tt.channels, tt.samples)
			h, err := Decoder{}.Open(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer h.Close()

			if h.SampleRate() != tt.rate {
				t.Errorf("SampleRate() = %d, want %d", h.SampleRate(), tt.rate)
			}
			if h.Channels() != tt.channels {
				t.Errorf("Channels() = %d, want %d", h.Channels(), tt.channels)
			}

			want := int64(len(tt.samples) / tt.channels)
			if h.FrameCount() != want {
				t.Errorf("FrameCount() = %d, want %d", h.FrameCount(), want)
			}
		})
	}
}

func TestDecoder_ReadToEOF(t *testing.T) {
	t.Parallel()

	samples := []int16{100, -100, 200, -200, 300, -300}
	data := createWAVFile(8000, 2, samples)
	h, err := Decoder{}.Open(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer h.Close()

	buf := make([]float32, 2)
	var got []float32
	for {
		n, rerr := h.Read(buf)
		got = append(got, buf[:n*2]...)
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			t.Fatalf("Read() error = %v", rerr)
		}
	}

	if len(got) != len(samples) {
		t.Fatalf("got %d samples, want %d", len(got), len(samples))
	}
	for i, s := range samples {
		want := float32(s) / 32768.0
		if got[i] != want {
			t.Errorf("sample[%d] = %v, want %v", i, got[i], want)
		}
	}
}

func TestDecoder_SeekClampsToFrameCount(t *testing.T) {
	t.Parallel()

	samples := []int16{1, 2, 3, 4, 5, 6}
	data := createWAVFile(8000, 1, samples)
	h, err := Decoder{}.Open(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer h.Close()

	if err := h.Seek(1000); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}

	buf := make([]float32, 1)
	_, rerr := h.Read(buf)
	if rerr != io.EOF {
		t.Errorf("Read() after out-of-range seek = %v, want io.EOF", rerr)
	}
}

func TestDecoder_RejectsNonWAV(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Open(bytes.NewReader([]byte("not a wav file at all")))
	if err != ErrNotWavFile {
		t.Errorf("Open() error = %v, want ErrNotWavFile", err)
	}
}

func TestDecoder_RoundTripWithWriter(t *testing.T) {
	t.Parallel()

	samples := []int16{10, -10, 20, -20, 30, -30, 40, -40}
	var buf bytes.Buffer
	if err := WritePCM16(&buf, 16000, 2, samples); err != nil {
		t.Fatalf("WritePCM16() error = %v", err)
	}

	h, err := Decoder{}.Open(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer h.Close()

	if h.SampleRate() != 16000 || h.Channels() != 2 {
		t.Fatalf("got rate=%d channels=%d, want 16000/2", h.SampleRate(), h.Channels())
	}
}
