// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"

	"github.com/ik5/mixdeck/effects"
)

// processor is the block interface shared by the algo-dsp effects.
type processor interface {
	ProcessInPlace(buf []float64)
	Reset()
}

// stage runs one processor per channel over an interleaved float32 buffer.
// A trailing partial frame is left untouched.
type stage struct {
	effects.Switch

	channels int
	procs    []processor
	scratch  []float64
}

func newStage(sampleRate float64, channels int, build func() (processor, error)) (*stage, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}

	procs := make([]processor, channels)
	for ch := range procs {
		p, err := build()
		if err != nil {
			return nil, err
		}
		procs[ch] = p
	}

	return &stage{channels: channels, procs: procs}, nil
}

func (s *stage) Process(buf []float32) {
	frames := len(buf) / s.channels
	if frames == 0 {
		return
	}
	if cap(s.scratch) < frames {
		s.scratch = make([]float64, frames)
	}
	scratch := s.scratch[:frames]

	for ch, p := range s.procs {
		for i := range scratch {
			scratch[i] = float64(buf[i*s.channels+ch])
		}
		p.ProcessInPlace(scratch)
		for i, v := range scratch {
			buf[i*s.channels+ch] = float32(v)
		}
	}
}

func (s *stage) Reset() {
	for _, p := range s.procs {
		p.Reset()
	}
}

// Channels reports the interleaved layout the stage was built for.
func (s *stage) Channels() int { return s.channels }
