// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
)

// mockMP3Reader serves 16-bit little-endian PCM like gomp3.Decoder. chunk
// limits how many bytes a single Read returns.
type mockMP3Reader struct {
	sampleRate int
	data       []byte
	offset     int
	chunk      int
	err        error
}

func newMockMP3Reader(sampleRate int, samples []int16, chunk int) *mockMP3Reader {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	return &mockMP3Reader{sampleRate: sampleRate, data: data, chunk: chunk}
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }
func (m *mockMP3Reader) Length() int64   { return int64(len(m.data)) }

func (m *mockMP3Reader) Read(buf []byte) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.offset >= len(m.data) {
		return 0, io.EOF
	}

	n := len(buf)
	if m.chunk > 0 && n > m.chunk {
		n = m.chunk
	}
	n = copy(buf[:n], m.data[m.offset:])
	m.offset += n

	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("This is not MP3 data"))); err == nil {
		t.Error("Decode() error = nil, want error for invalid data")
	}
	if _, err := (Decoder{}).Decode(bytes.NewReader(nil)); err == nil {
		t.Error("Decode() error = nil, want error for empty input")
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		chunk int
	}{
		{"whole reads", 0},
		{"odd byte chunks", 3},
		{"single byte chunks", 1},
	}

	samples := []int16{0, 16384, -16384, 32767, -32768, 100}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := &source{dec: newMockMP3Reader(44100, samples, tt.chunk), sampleRate: 44100}

			var got []float32
			dst := make([]float32, 4)
			for {
				n, err := src.ReadSamples(dst)
				got = append(got, dst[:n]...)
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("ReadSamples() error = %v", err)
				}
			}

			if len(got) != len(samples) {
				t.Fatalf("read %d samples, want %d", len(got), len(samples))
			}
			for i, s := range samples {
				want := float32(s) / 32768
				if math.Abs(float64(got[i]-want)) > 1e-6 {
					t.Errorf("sample %d = %v, want %v", i, got[i], want)
				}
			}
		})
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src := &source{dec: newMockMP3Reader(48000, make([]int16, 20), 0), sampleRate: 48000}

	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}
	if src.SampleRate() != 48000 {
		t.Errorf("SampleRate() = %d, want 48000", src.SampleRate())
	}
	if src.Frames() != 10 {
		t.Errorf("Frames() = %d, want 10", src.Frames())
	}
}

func TestSource_ReadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("bad frame header")
	mock := newMockMP3Reader(44100, []int16{1, 2}, 0)
	mock.err = boom
	src := &source{dec: mock, sampleRate: 44100}

	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want %v", err, boom)
	}
}

type closeCounter struct{ closed int }

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestSource_CloseReleasesInput(t *testing.T) {
	t.Parallel()

	c := &closeCounter{}
	src := &source{dec: newMockMP3Reader(44100, nil, 0), closer: c}

	if err := src.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if c.closed != 1 {
		t.Errorf("underlying closer called %d times, want 1", c.closed)
	}
}
