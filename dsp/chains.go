// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"github.com/ik5/mixdeck/effects"
)

// OutputChain returns a factory for the master bus chain:
// equalizer, dynamic amplifier (off), compressor, enhancer (off), limiter.
func OutputChain(sampleRate float64, channels int) effects.Factory {
	return func() (*effects.Chain, error) {
		eq, err := NewEqualizer(sampleRate, channels, FlatBands()...)
		if err != nil {
			return nil, err
		}

		amp, err := NewDynamicAmp(sampleRate, channels)
		if err != nil {
			return nil, err
		}
		amp.SetEnabled(false)

		comp, err := NewCompressor(sampleRate, channels, CompressorParams{
			ThresholdDB: -18,
			Ratio:       3,
		})
		if err != nil {
			return nil, err
		}

		enh, err := NewEnhancer(sampleRate, channels, 100, 0.3)
		if err != nil {
			return nil, err
		}
		enh.SetEnabled(false)

		lim, err := NewLimiter(sampleRate, channels, -1)
		if err != nil {
			return nil, err
		}

		return effects.NewChain(eq, amp, comp, enh, lim), nil
	}
}

// InputChain returns a factory for the live input chain: rumble filter,
// compressor, reverb (off), delay (off).
func InputChain(sampleRate float64, channels int) effects.Factory {
	return func() (*effects.Chain, error) {
		hp, err := NewEqualizer(sampleRate, channels, Band{Kind: BandHighpass, Freq: 80, Q: 0.707})
		if err != nil {
			return nil, err
		}

		comp, err := NewCompressor(sampleRate, channels, CompressorParams{
			ThresholdDB: -24,
			Ratio:       3,
			AttackMs:    5,
			ReleaseMs:   150,
		})
		if err != nil {
			return nil, err
		}

		rev, err := NewReverb(sampleRate, channels, DefaultReverbParams())
		if err != nil {
			return nil, err
		}
		rev.SetEnabled(false)

		dly, err := NewDelay(sampleRate, channels, 0.3, 0.35, 0.25)
		if err != nil {
			return nil, err
		}
		dly.SetEnabled(false)

		return effects.NewChain(hp, comp, rev, dly), nil
	}
}
