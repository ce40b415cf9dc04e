// SPDX-License-Identifier: EPL-2.0

package session

import (
	"time"

	"github.com/ik5/mixdeck/effects"
)

// Engine decodes sources, mixes them and drives the output device.
//
// Play starts or resumes playback. PlayTo does the same while writing the
// mixed, processed output to a PCM file at path. Stop halts playback,
// closes any recording and rewinds. Reset tears down every source and
// reinitializes; it returns only once teardown is complete.
//
// Output and input chains run on the engine's audio goroutine. A nil chain
// removes it.
type Engine interface {
	Initialize() error
	OpenOutputSource(path string) (Handle, error)
	OpenInputDevice(gain float64) (Handle, error)
	CloseSource(h Handle) error

	Play() error
	PlayTo(path string, bitDepth int) error
	Pause() error
	Stop() error
	Seek(pos time.Duration) error

	Position() time.Duration
	Duration(h Handle) time.Duration
	OutputLevels() (left, right float64)
	SetListener(l Listener)

	SetSourcePitch(h Handle, semitones float64) error
	SetSourceTempo(h Handle, percent float64) error
	SetSourceVolume(h Handle, volume float64) error
	SetMasterVolume(volume float64) error
	SetInputGate(enabled bool, volume float64) error

	SetOutputChain(c *effects.Chain)
	SetInputChain(c *effects.Chain)

	Reset() error
	Close() error
}

// Listener receives engine notifications on the engine's goroutine.
type Listener interface {
	StateChanged(s State)
	PositionChanged(pos time.Duration)
}

// Diagnostics is a user-visible log.
type Diagnostics interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string, err error)
	Clear()
}

type nopDiagnostics struct{}

func (nopDiagnostics) Info(string)         {}
func (nopDiagnostics) Warn(string)         {}
func (nopDiagnostics) Error(string, error) {}
func (nopDiagnostics) Clear()              {}
