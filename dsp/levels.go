// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	stats "github.com/cwbudde/algo-dsp/stats/time"
)

// PeakMeter measures per-channel peak amplitude of interleaved blocks. It
// reuses one scratch buffer, so a meter must not be shared between
// goroutines.
type PeakMeter struct {
	scratch []float64
}

// Measure returns the peak of the first two channels. Mono input reports the
// same value on both sides.
func (m *PeakMeter) Measure(buf []float32, channels int) (left, right float64) {
	if channels < 1 {
		return 0, 0
	}

	left = m.channelPeak(buf, channels, 0)
	if channels == 1 {
		return left, left
	}

	return left, m.channelPeak(buf, channels, 1)
}

func (m *PeakMeter) channelPeak(buf []float32, channels, ch int) float64 {
	frames := len(buf) / channels
	if cap(m.scratch) < frames {
		m.scratch = make([]float64, frames)
	}
	s := m.scratch[:frames]
	for i := range s {
		s[i] = float64(buf[i*channels+ch])
	}

	return stats.Peak(s)
}
