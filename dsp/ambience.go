// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"

	dspfx "github.com/cwbudde/algo-dsp/dsp/effects"
)

// Enhancer adds synthesized bass harmonics below Frequency.
type Enhancer struct {
	*stage
}

// NewEnhancer builds a harmonic bass enhancer. amount is the level of the
// synthesized harmonics mixed with the untouched signal, in [0, 1].
func NewEnhancer(sampleRate float64, channels int, frequency, amount float64) (*Enhancer, error) {
	st, err := newStage(sampleRate, channels, func() (processor, error) {
		b, err := dspfx.NewHarmonicBass(sampleRate)
		if err != nil {
			return nil, err
		}
		if err := b.SetFrequency(frequency); err != nil {
			return nil, err
		}
		if err := b.SetHarmonicBassLevel(amount); err != nil {
			return nil, err
		}
		return b, nil
	})
	if err != nil {
		return nil, fmt.Errorf("enhancer: %w", err)
	}

	return &Enhancer{stage: st}, nil
}

// ReverbParams are the Freeverb style controls, each in [0, 1].
type ReverbParams struct {
	Wet      float64
	Dry      float64
	RoomSize float64
	Damp     float64
}

func DefaultReverbParams() ReverbParams {
	return ReverbParams{Wet: 0.25, Dry: 1, RoomSize: 0.6, Damp: 0.4}
}

type Reverb struct {
	*stage
}

// NewReverb builds one reverb tank per channel. The tank sizes are fixed, so
// sampleRate is only validated.
func NewReverb(sampleRate float64, channels int, params ReverbParams) (*Reverb, error) {
	st, err := newStage(sampleRate, channels, func() (processor, error) {
		r := dspfx.NewReverb()
		r.SetWet(params.Wet)
		r.SetDry(params.Dry)
		r.SetRoomSize(params.RoomSize)
		r.SetDamp(params.Damp)
		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("reverb: %w", err)
	}

	return &Reverb{stage: st}, nil
}

// Delay is a feedback echo.
type Delay struct {
	*stage
}

func NewDelay(sampleRate float64, channels int, seconds, feedback, mix float64) (*Delay, error) {
	st, err := newStage(sampleRate, channels, func() (processor, error) {
		d, err := dspfx.NewDelay(sampleRate)
		if err != nil {
			return nil, err
		}
		if err := d.SetTime(seconds); err != nil {
			return nil, err
		}
		if err := d.SetFeedback(feedback); err != nil {
			return nil, err
		}
		if err := d.SetMix(mix); err != nil {
			return nil, err
		}
		return d, nil
	})
	if err != nil {
		return nil, fmt.Errorf("delay: %w", err)
	}

	return &Delay{stage: st}, nil
}
