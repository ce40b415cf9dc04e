// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/effects/pitch"

	"github.com/ik5/mixdeck/utils"
)

// Pitch ratio limits of the underlying time-domain shifter.
const (
	MinPitchRatio = 0.25
	MaxPitchRatio = 4.0
)

// PitchShift transposes every channel by the same ratio without changing
// the block length.
//
// The shifter works on whole blocks, so SetRatio and Process must be called
// from the same goroutine.
type PitchShift struct {
	*stage
	shifters []*pitch.PitchShifter
	ratio    float64
}

func NewPitchShift(sampleRate float64, channels int) (*PitchShift, error) {
	ps := &PitchShift{ratio: 1}

	st, err := newStage(sampleRate, channels, func() (processor, error) {
		s, err := pitch.NewPitchShifter(sampleRate)
		if err != nil {
			return nil, err
		}
		ps.shifters = append(ps.shifters, s)
		return s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("pitch shift: %w", err)
	}
	ps.stage = st

	return ps, nil
}

// SetRatio clamps ratio to [MinPitchRatio, MaxPitchRatio] and applies it to
// every channel.
func (p *PitchShift) SetRatio(ratio float64) error {
	if math.IsNaN(ratio) {
		ratio = 1
	}
	ratio = utils.Clamp(ratio, MinPitchRatio, MaxPitchRatio)
	if ratio == p.ratio {
		return nil
	}

	for _, s := range p.shifters {
		if err := s.SetPitchRatio(ratio); err != nil {
			return fmt.Errorf("pitch shift: %w", err)
		}
	}
	p.ratio = ratio

	return nil
}

func (p *PitchShift) SetSemitones(semitones float64) error {
	return p.SetRatio(utils.SemitonesToRatio(semitones))
}

func (p *PitchShift) Ratio() float64 { return p.ratio }

// Process skips the shifter entirely at unity ratio.
func (p *PitchShift) Process(buf []float32) {
	if p.ratio == 1 {
		return
	}
	p.stage.Process(buf)
}
