// SPDX-License-Identifier: EPL-2.0

package session

import (
	"time"

	"github.com/ik5/mixdeck/effects"
)

// Kind is the origin of a source slot.
type Kind int

const (
	OutputFile Kind = iota
	InputDevice
)

func (k Kind) String() string {
	switch k {
	case OutputFile:
		return "output"
	case InputDevice:
		return "input"
	default:
		return "unknown"
	}
}

// State is the playback state of a controller or engine.
type State int32

const (
	Idle State = iota
	Playing
	Paused
	Buffering
	Recording
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Buffering:
		return "buffering"
	case Recording:
		return "recording"
	default:
		return "unknown"
	}
}

// Active reports whether the engine is moving audio in this state.
// Buffering counts as active.
func (s State) Active() bool {
	return s == Playing || s == Buffering || s == Recording
}

// Handle identifies a source opened by an Engine.
type Handle int

// SourceSlot is one managed source.
type SourceSlot struct {
	Kind Kind
	// Index is the ordinal within the slot's kind.
	Index int
	// Path is the file path for OutputFile slots and empty otherwise.
	Path   string
	Handle Handle

	Pitch  float64 // semitones
	Tempo  float64 // percent, 0 is unchanged
	Volume float64 // [0, 1]

	// Chain is set only on an InputDevice slot once monitoring started.
	Chain *effects.Chain
}

// EventKind tells which part of the controller changed.
type EventKind int

const (
	StateChanged EventKind = iota
	PositionChanged
	SourcesChanged
	ParametersChanged
)

func (k EventKind) String() string {
	switch k {
	case StateChanged:
		return "state"
	case PositionChanged:
		return "position"
	case SourcesChanged:
		return "sources"
	case ParametersChanged:
		return "parameters"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers. State and Position are the controller
// values at emission time.
type Event struct {
	Kind     EventKind
	State    State
	Position time.Duration
}
