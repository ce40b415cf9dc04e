// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// BandKind selects the filter shape of an equalizer band.
type BandKind int

const (
	BandPeak BandKind = iota
	BandLowShelf
	BandHighShelf
	BandHighpass
	BandLowpass
)

// Band describes one biquad section. GainDB is ignored by pass filters.
type Band struct {
	Kind   BandKind
	Freq   float64
	GainDB float64
	Q      float64
}

func (b Band) coefficients(sampleRate float64) (biquad.Coefficients, error) {
	switch b.Kind {
	case BandPeak:
		return design.Peak(b.Freq, b.GainDB, b.Q, sampleRate), nil
	case BandLowShelf:
		return design.LowShelf(b.Freq, b.GainDB, b.Q, sampleRate), nil
	case BandHighShelf:
		return design.HighShelf(b.Freq, b.GainDB, b.Q, sampleRate), nil
	case BandHighpass:
		return design.Highpass(b.Freq, b.Q, sampleRate), nil
	case BandLowpass:
		return design.Lowpass(b.Freq, b.Q, sampleRate), nil
	default:
		return biquad.Coefficients{}, fmt.Errorf("%w: %d", ErrUnknownBand, b.Kind)
	}
}

// biquadProcessor gives biquad.Chain the processor method set.
type biquadProcessor struct{ *biquad.Chain }

func (b biquadProcessor) ProcessInPlace(buf []float64) { b.ProcessBlock(buf) }

// Equalizer is a cascade of biquad bands applied to every channel.
type Equalizer struct {
	*stage
	bands []Band
}

// FlatBands is a three band layout with every gain at 0 dB.
func FlatBands() []Band {
	return []Band{
		{Kind: BandLowShelf, Freq: 120, Q: 0.707},
		{Kind: BandPeak, Freq: 1000, Q: 1},
		{Kind: BandHighShelf, Freq: 8000, Q: 0.707},
	}
}

func NewEqualizer(sampleRate float64, channels int, bands ...Band) (*Equalizer, error) {
	coeffs := make([]biquad.Coefficients, len(bands))
	for i, b := range bands {
		c, err := b.coefficients(sampleRate)
		if err != nil {
			return nil, err
		}
		coeffs[i] = c
	}

	st, err := newStage(sampleRate, channels, func() (processor, error) {
		return biquadProcessor{biquad.NewChain(coeffs)}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("equalizer: %w", err)
	}

	return &Equalizer{stage: st, bands: append([]Band(nil), bands...)}, nil
}

// Bands returns a copy of the band layout.
func (e *Equalizer) Bands() []Band {
	return append([]Band(nil), e.bands...)
}
