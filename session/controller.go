// SPDX-License-Identifier: EPL-2.0

package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/mixdeck/effects"
)

const (
	// DefaultRecordBitDepth is the PCM depth used for recordings.
	DefaultRecordBitDepth = 16

	// DefaultInputVolume is the microphone gain applied when none is given.
	DefaultInputVolume = 0.8

	// positionHysteresis is how far the engine clock must run ahead of the
	// published position before a forward update is published.
	positionHysteresis = time.Second
)

// Option configures a Controller.
type Option func(*Controller)

// WithDiagnostics sets the log that receives open failures and warnings.
func WithDiagnostics(d Diagnostics) Option {
	return func(c *Controller) {
		if d != nil {
			c.diag = d
		}
	}
}

// WithOutputChain sets the factory for the output chain. It is called once
// by New and again on every Reset.
func WithOutputChain(f effects.Factory) Option {
	return func(c *Controller) {
		if f != nil {
			c.outputFactory = f
		}
	}
}

// WithInputChain sets the factory for the input chain, built the first time
// input monitoring starts.
func WithInputChain(f effects.Factory) Option {
	return func(c *Controller) {
		if f != nil {
			c.inputFactory = f
		}
	}
}

// WithRecordBitDepth sets the PCM bit depth passed to Engine.PlayTo.
func WithRecordBitDepth(bits int) Option {
	return func(c *Controller) {
		if bits > 0 {
			c.bitDepth = bits
		}
	}
}

func emptyChain() (*effects.Chain, error) { return effects.NewChain(), nil }

// Controller is the session state machine. Create it with New.
type Controller struct {
	// mu serialises control operations. Engine callbacks never take it.
	mu sync.Mutex

	engine        Engine
	diag          Diagnostics
	outputFactory effects.Factory
	inputFactory  effects.Factory
	bitDepth      int

	slots          []*SourceSlot
	outputChain    *effects.Chain
	inputChain     *effects.Chain
	inputAvailable bool

	pitch  float64
	tempo  float64
	volume float64

	saveToFile  bool
	savePath    string
	micEnabled  bool
	inputVolume float64
	recordingTo string

	state         atomic.Int32
	resumeAs      atomic.Int32 // active state Buffering returns to
	stopRequested atomic.Bool
	seeking       atomic.Bool
	position      atomic.Int64
	hasPosition   atomic.Bool
	duration      atomic.Int64

	subMu  sync.RWMutex
	subs   []subscriber
	nextID uint64

	// pending holds events raised while mu is held. They are delivered by
	// unlock so subscribers never run under mu.
	pendMu    sync.Mutex
	deferring bool
	pending   []EventKind
}

// New initializes engine, installs a fresh output chain and returns an idle
// controller. When the engine reports ErrDecoderUnavailable a warning is
// logged once and input sources are disabled; any other initialization
// error is returned.
func New(engine Engine, opts ...Option) (*Controller, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}

	c := &Controller{
		engine:         engine,
		diag:           nopDiagnostics{},
		outputFactory:  emptyChain,
		inputFactory:   emptyChain,
		bitDepth:       DefaultRecordBitDepth,
		inputAvailable: true,
		volume:         1,
		inputVolume:    DefaultInputVolume,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.stopRequested.Store(true)
	c.resumeAs.Store(int32(Playing))

	if err := engine.Initialize(); err != nil {
		if !errors.Is(err, ErrDecoderUnavailable) {
			return nil, fmt.Errorf("initializing engine: %w", err)
		}
		c.inputAvailable = false
		c.diag.Warn("Decoder unavailable, falling back to WAV only playback; input sources are disabled")
	}

	chain, err := c.outputFactory()
	if err != nil {
		return nil, fmt.Errorf("building output chain: %w", err)
	}
	c.outputChain = chain
	engine.SetOutputChain(chain)
	engine.SetListener(engineListener{c})

	if err := engine.SetMasterVolume(c.volume); err != nil {
		c.diag.Warn(fmt.Sprintf("Cannot set master volume: %v", err))
	}

	return c, nil
}

// Close stops playback and releases the engine.
func (c *Controller) Close() error {
	c.Stop()

	c.lock()
	defer c.unlock()

	if err := c.engine.Close(); err != nil {
		return fmt.Errorf("closing engine: %w", err)
	}
	return nil
}

func (c *Controller) State() State { return State(c.state.Load()) }

// StopRequested reports the stop guard: true before the first play, after
// Stop, and after the stream ended on its own.
func (c *Controller) StopRequested() bool { return c.stopRequested.Load() }

// Position is the published position, not the raw engine clock.
func (c *Controller) Position() time.Duration { return time.Duration(c.position.Load()) }

// Duration is the length of the longest loaded file.
func (c *Controller) Duration() time.Duration { return time.Duration(c.duration.Load()) }

// InputAvailable is false when the engine came up without full decoding.
func (c *Controller) InputAvailable() bool {
	c.lock()
	defer c.unlock()
	return c.inputAvailable
}

// OutputLevels passes through the engine's current peak levels.
func (c *Controller) OutputLevels() (left, right float64) {
	return c.engine.OutputLevels()
}

// OutputChain returns the chain currently installed on the engine.
func (c *Controller) OutputChain() *effects.Chain {
	c.lock()
	defer c.unlock()
	return c.outputChain
}

// InputChain returns nil until input monitoring has started once.
func (c *Controller) InputChain() *effects.Chain {
	c.lock()
	defer c.unlock()
	return c.inputChain
}

// Slots returns copies of the slots in add order.
func (c *Controller) Slots() []SourceSlot {
	c.lock()
	defer c.unlock()

	out := make([]SourceSlot, len(c.slots))
	for i, s := range c.slots {
		out[i] = *s
	}
	return out
}

func (c *Controller) setState(s State) {
	if State(c.state.Swap(int32(s))) != s {
		c.emit(StateChanged)
	}
}

func (c *Controller) publishPosition(pos time.Duration) {
	c.position.Store(int64(pos))
	c.hasPosition.Store(true)
	c.emit(PositionChanged)
}

func (c *Controller) outputSlots() int {
	n := 0
	for _, s := range c.slots {
		if s.Kind == OutputFile {
			n++
		}
	}
	return n
}

func (c *Controller) inputSlot() *SourceSlot {
	for _, s := range c.slots {
		if s.Kind == InputDevice {
			return s
		}
	}
	return nil
}

// engineListener keeps the Listener methods off the Controller API.
type engineListener struct{ c *Controller }

func (l engineListener) StateChanged(s State)              { l.c.engineStateChanged(s) }
func (l engineListener) PositionChanged(pos time.Duration) { l.c.reconcile(pos) }
