// SPDX-License-Identifier: EPL-2.0

package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ik5/mixdeck/effects"
)

var errOpen = errors.New("cannot decode")

// fakeEngine records calls and lets tests drive notifications through
// listener.
type fakeEngine struct {
	mu sync.Mutex

	initErr  error
	resetErr error
	inputErr error
	playErr  error

	// onPlay runs inside Play, standing in for an engine that finishes
	// before Play returns.
	onPlay func(Listener)

	durations map[string]time.Duration
	paths     map[Handle]string
	next      Handle

	listener    Listener
	outputChain *effects.Chain
	inputChain  *effects.Chain

	closed       []Handle
	pitch        map[Handle]float64
	tempo        map[Handle]float64
	masterVolume float64
	gateEnabled  bool
	gateVolume   float64
	recordPath   string
	recordDepth  int
	seekedTo     time.Duration

	plays, recordings, pauses, stops, resets, closes int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		durations: make(map[string]time.Duration),
		paths:     make(map[Handle]string),
		pitch:     make(map[Handle]float64),
		tempo:     make(map[Handle]float64),
		next:      1,
	}
}

func (e *fakeEngine) Initialize() error { return e.initErr }

// OpenOutputSource fails for any path containing "bad".
func (e *fakeEngine) OpenOutputSource(path string) (Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if strings.Contains(path, "bad") {
		return 0, errOpen
	}
	h := e.next
	e.next++
	e.paths[h] = path
	return h, nil
}

func (e *fakeEngine) OpenInputDevice(float64) (Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.inputErr != nil {
		return 0, e.inputErr
	}
	h := e.next
	e.next++
	return h, nil
}

func (e *fakeEngine) CloseSource(h Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = append(e.closed, h)
	delete(e.paths, h)
	return nil
}

func (e *fakeEngine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.plays++
	if e.onPlay != nil {
		e.onPlay(e.listener)
	}
	return e.playErr
}

func (e *fakeEngine) PlayTo(path string, bitDepth int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.plays++
	e.recordings++
	e.recordPath, e.recordDepth = path, bitDepth
	return e.playErr
}

func (e *fakeEngine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pauses++
	return nil
}

func (e *fakeEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stops++
	return nil
}

func (e *fakeEngine) Seek(pos time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seekedTo = pos
	return nil
}

func (e *fakeEngine) Position() time.Duration { return 0 }

func (e *fakeEngine) Duration(h Handle) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.durations[e.paths[h]]
}

func (e *fakeEngine) OutputLevels() (float64, float64) { return 0.25, 0.5 }

func (e *fakeEngine) SetListener(l Listener) { e.listener = l }

func (e *fakeEngine) SetSourcePitch(h Handle, semitones float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pitch[h] = semitones
	return nil
}

func (e *fakeEngine) SetSourceTempo(h Handle, percent float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tempo[h] = percent
	return nil
}

func (e *fakeEngine) SetSourceVolume(Handle, float64) error { return nil }

func (e *fakeEngine) SetMasterVolume(v float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.masterVolume = v
	return nil
}

func (e *fakeEngine) SetInputGate(enabled bool, volume float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gateEnabled, e.gateVolume = enabled, volume
	return nil
}

func (e *fakeEngine) SetOutputChain(c *effects.Chain) { e.outputChain = c }
func (e *fakeEngine) SetInputChain(c *effects.Chain)  { e.inputChain = c }

func (e *fakeEngine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.resetErr != nil {
		return e.resetErr
	}
	e.resets++
	e.paths = make(map[Handle]string)
	return nil
}

func (e *fakeEngine) Close() error {
	e.closes++
	return nil
}

type logEntry struct {
	level string
	msg   string
	err   error
}

type fakeDiagnostics struct {
	entries []logEntry
	clears  int
}

func (d *fakeDiagnostics) Info(msg string) { d.entries = append(d.entries, logEntry{"info", msg, nil}) }
func (d *fakeDiagnostics) Warn(msg string) { d.entries = append(d.entries, logEntry{"warn", msg, nil}) }
func (d *fakeDiagnostics) Error(msg string, err error) {
	d.entries = append(d.entries, logEntry{"error", msg, err})
}
func (d *fakeDiagnostics) Clear() { d.entries = nil; d.clears++ }

func (d *fakeDiagnostics) count(level string) int {
	n := 0
	for _, e := range d.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

// delayStage outputs the previous sample, so stale state shows up as a
// non-zero first sample.
type delayStage struct {
	effects.Switch
	last float32
}

func (d *delayStage) Process(buf []float32) {
	for i, v := range buf {
		buf[i], d.last = d.last, v
	}
}

func (d *delayStage) Reset() { d.last = 0 }

// countingFactory builds chains holding one delayStage and counts calls.
type countingFactory struct {
	calls  int
	stages []*delayStage
	err    error
}

func (f *countingFactory) build() (*effects.Chain, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	s := &delayStage{}
	f.stages = append(f.stages, s)
	return effects.NewChain(s), nil
}
