// SPDX-License-Identifier: EPL-2.0

package dsp

import "errors"

var (
	// ErrInvalidChannels is returned when a stage is built for fewer than one channel.
	ErrInvalidChannels = errors.New("channel count must be at least 1")

	// ErrInvalidSampleRate is returned for a non-positive sample rate.
	ErrInvalidSampleRate = errors.New("sample rate must be positive")

	// ErrUnknownBand is returned for an equalizer band kind that has no designer.
	ErrUnknownBand = errors.New("unknown equalizer band kind")
)
