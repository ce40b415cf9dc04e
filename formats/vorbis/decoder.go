package vorbis

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/mixdeck/audio"
)

// oggReader is the subset of oggvorbis.Reader used by source, for testing.
type oggReader interface {
	SampleRate() int
	Channels() int
	Length() int64
	Read([]float32) (int, error)
}

type source struct {
	dec        oggReader
	closer     io.Closer
	sampleRate int
	channels   int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return 4096 }

// Frames returns the stream length in frames, or -1 when the container does
// not carry it.
func (s *source) Frames() int64 {
	n := s.dec.Length()
	if n <= 0 {
		return -1
	}
	return n
}

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// ReadSamples decodes whole frames into dst. Read reports interleaved values,
// so the result never splits a frame as long as dst holds at least one.
func (s *source) ReadSamples(dst []float32) (int, error) {
	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		if len(dst) == 0 {
			return 0, nil
		}
		return 0, audio.ErrInvalidDstSize
	}

	n, err := s.dec.Read(dst[:want])
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w", err)
	}
	if n == 0 && err == nil {
		return 0, io.EOF
	}

	return n, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &source{
		dec:        dec,
		closer:     audio.CloserOf(r),
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}, nil
}
