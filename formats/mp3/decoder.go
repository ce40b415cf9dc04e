// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/mixdeck/audio"
	"github.com/ik5/mixdeck/utils"
)

// go-mp3 always emits 16-bit little-endian stereo.
const (
	channels      = 2
	bytesPerFrame = channels * 2
)

// mp3Reader is the subset of gomp3.Decoder used by source, for testing.
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
	Length() int64
}

type source struct {
	dec        mp3Reader
	closer     io.Closer
	sampleRate int
	buf        []byte
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channels }
func (s *source) BufSize() int    { return cap(s.buf) / 2 }

// Frames is derived from the decoded byte length; -1 when the stream length
// could not be determined.
func (s *source) Frames() int64 {
	length := s.dec.Length()
	if length < 0 {
		return -1
	}
	return length / bytesPerFrame
}

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	// Read until a whole number of samples is available so that a split
	// sample never leaks into the next call.
	n, err := io.ReadAtLeast(s.dec, s.buf, 2)
	if n == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}
	if odd := n % 2; odd != 0 {
		m, rerr := io.ReadFull(s.dec, s.buf[n:n+2-odd])
		n += m
		if rerr != nil {
			err = rerr
		}
	}

	samples := n / 2
	for i := range samples {
		v := int16(uint16(s.buf[2*i]) | uint16(s.buf[2*i+1])<<8)
		dst[i] = utils.PCMToFloat(int(v), 16)
	}

	switch err {
	case nil:
		return samples, nil
	case io.EOF, io.ErrUnexpectedEOF:
		return samples, io.EOF
	default:
		return samples, fmt.Errorf("%w", err)
	}
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &source{
		dec:        dec,
		closer:     audio.CloserOf(r),
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}
