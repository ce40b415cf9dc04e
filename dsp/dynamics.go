// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/effects/dynamics"
)

// CompressorParams configures a Compressor. Zero fields keep the library
// defaults (-20 dB threshold, 4:1, 6 dB knee, 10 ms attack, 100 ms release).
type CompressorParams struct {
	ThresholdDB float64
	Ratio       float64
	KneeDB      float64
	AttackMs    float64
	ReleaseMs   float64
	MakeupDB    float64
	AutoMakeup  bool
}

func (p CompressorParams) apply(c *dynamics.Compressor) error {
	if p.ThresholdDB != 0 {
		if err := c.SetThreshold(p.ThresholdDB); err != nil {
			return err
		}
	}
	if p.Ratio != 0 {
		if err := c.SetRatio(p.Ratio); err != nil {
			return err
		}
	}
	if p.KneeDB != 0 {
		if err := c.SetKnee(p.KneeDB); err != nil {
			return err
		}
	}
	if p.AttackMs != 0 {
		if err := c.SetAttack(p.AttackMs); err != nil {
			return err
		}
	}
	if p.ReleaseMs != 0 {
		if err := c.SetRelease(p.ReleaseMs); err != nil {
			return err
		}
	}
	if err := c.SetAutoMakeup(p.AutoMakeup); err != nil {
		return err
	}
	if !p.AutoMakeup {
		return c.SetMakeupGain(p.MakeupDB)
	}

	return nil
}

// Compressor is a feed-forward soft-knee compressor per channel.
type Compressor struct {
	*stage
}

func NewCompressor(sampleRate float64, channels int, params CompressorParams) (*Compressor, error) {
	st, err := newStage(sampleRate, channels, func() (processor, error) {
		c, err := dynamics.NewCompressor(sampleRate)
		if err != nil {
			return nil, err
		}
		if err := params.apply(c); err != nil {
			return nil, err
		}
		return c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("compressor: %w", err)
	}

	return &Compressor{stage: st}, nil
}

// NewDynamicAmp returns a gentle wide-knee compressor with automatic makeup
// gain, which raises quiet passages toward the threshold.
func NewDynamicAmp(sampleRate float64, channels int) (*Compressor, error) {
	return NewCompressor(sampleRate, channels, CompressorParams{
		ThresholdDB: -30,
		Ratio:       2,
		KneeDB:      12,
		AttackMs:    20,
		ReleaseMs:   400,
		AutoMakeup:  true,
	})
}

// Limiter is a lookahead brick-wall limiter per channel.
type Limiter struct {
	*stage
	thresholdDB float64
}

// NewLimiter builds a limiter with ceiling thresholdDB, in [-24, 0].
func NewLimiter(sampleRate float64, channels int, thresholdDB float64) (*Limiter, error) {
	st, err := newStage(sampleRate, channels, func() (processor, error) {
		l, err := dynamics.NewLookaheadLimiter(sampleRate)
		if err != nil {
			return nil, err
		}
		if err := l.SetThreshold(thresholdDB); err != nil {
			return nil, err
		}
		return l, nil
	})
	if err != nil {
		return nil, fmt.Errorf("limiter: %w", err)
	}

	return &Limiter{stage: st, thresholdDB: thresholdDB}, nil
}

func (l *Limiter) ThresholdDB() float64 { return l.thresholdDB }
