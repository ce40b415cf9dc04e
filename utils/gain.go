// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SemitonesToRatio converts a pitch offset in semitones to a frequency ratio.
func SemitonesToRatio(semitones float64) float64 {
	return math.Exp2(semitones / 12.0)
}

// TempoToRatio converts a tempo change in percent (0 = unchanged,
// 50 = one and a half times faster, -50 = half speed) to a playback rate.
// The rate never drops below 0.05.
func TempoToRatio(percent float64) float64 {
	return math.Max(1+percent/100.0, 0.05)
}
