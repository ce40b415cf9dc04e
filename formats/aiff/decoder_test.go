package aiff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	goaudio "github.com/go-audio/audio"
)

type mockAiffReader struct {
	format *goaudio.Format
	data   []int
	offset int
	err    error
}

func (m *mockAiffReader) Format() *goaudio.Format { return m.format }

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.offset >= len(m.data) {
		return 0, nil
	}
	n := copy(buf.Data, m.data[m.offset:])
	m.offset += n
	return n, nil
}

func newMockSource(bitDepth, channels int, data []int) *source {
	return &source{
		dec: &mockAiffReader{
			format: &goaudio.Format{NumChannels: channels, SampleRate: 44100},
			data:   data,
		},
		sampleRate: 44100,
		channels:   channels,
		bitDepth:   bitDepth,
		frames:     int64(len(data) / channels),
	}
}

// aiffHeader builds a FORM/COMM/SSND header for a 44.1 kHz file with
// frames of sample data following it.
func aiffHeader(channels, bitDepth, frames int) []byte {
	dataLen := frames * channels * bitDepth / 8

	var b bytes.Buffer
	b.WriteString("FORM")
	_ = binary.Write(&b, binary.BigEndian, uint32(4+8+18+8+8+dataLen))
	b.WriteString("AIFF")

	b.WriteString("COMM")
	_ = binary.Write(&b, binary.BigEndian, uint32(18))
	_ = binary.Write(&b, binary.BigEndian, uint16(channels))
	_ = binary.Write(&b, binary.BigEndian, uint32(frames))
	_ = binary.Write(&b, binary.BigEndian, uint16(bitDepth))
	// 44100 as an 80-bit IEEE extended float.
	b.Write([]byte{0x40, 0x0E, 0xAC, 0x44, 0, 0, 0, 0, 0, 0})

	b.WriteString("SSND")
	_ = binary.Write(&b, binary.BigEndian, uint32(8+dataLen))
	_ = binary.Write(&b, binary.BigEndian, uint32(0))
	_ = binary.Write(&b, binary.BigEndian, uint32(0))

	return b.Bytes()
}

func TestDecoder_Metadata(t *testing.T) {
	t.Parallel()

	file := aiffHeader(2, 16, 3)
	file = append(file, make([]byte, 3*2*2)...)

	src, err := (Decoder{}).Decode(bytes.NewReader(file))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	defer src.Close()

	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}
	if src.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", src.SampleRate())
	}
	if got := src.(*source).Frames(); got != 3 {
		t.Errorf("Frames() = %d, want 3", got)
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"garbage", []byte("definitely not an aiff file"), ErrNotAiffFile},
		{"empty", nil, ErrNotAiffFile},
		{"12 bit", aiffHeader(1, 12, 0), ErrUnsupportedBitDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := (Decoder{}).Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	src := newMockSource(16, 2, []int{0, 16384, -16384, 32767, -32768, 0})

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

	want := []float32{0, 0.5, -0.5, 32767.0 / 32768, -1, 0}
	if len(got) != len(want) {
		t.Fatalf("read %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSource_BitDepthNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bitDepth int
		value    int
	}{
		{8, 64},
		{16, 16384},
		{24, 4194304},
		{32, 1073741824},
	}

	for _, tt := range tests {
		src := newMockSource(tt.bitDepth, 1, []int{tt.value})
		dst := make([]float32, 1)
		if _, err := src.ReadSamples(dst); err != nil && err != io.EOF {
			t.Fatalf("%d bit: ReadSamples() error = %v", tt.bitDepth, err)
		}
		if dst[0] != 0.5 {
			t.Errorf("%d bit: sample = %v, want 0.5", tt.bitDepth, dst[0])
		}
	}
}

func TestSource_ReadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("truncated chunk")
	src := newMockSource(16, 1, nil)
	src.dec.(*mockAiffReader).err = boom

	if _, err := src.ReadSamples(make([]float32, 8)); !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want %v", err, boom)
	}
}

func TestSource_EmptyBuffer(t *testing.T) {
	t.Parallel()

	src := newMockSource(16, 1, []int{1, 2, 3})
	if n, err := src.ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v; want 0, nil", n, err)
	}
}
