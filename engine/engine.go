// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ik5/mixdeck/audio"
	"github.com/ik5/mixdeck/effects"
	"github.com/ik5/mixdeck/formats/wav"
	"github.com/ik5/mixdeck/session"
)

// DefaultBlockFrames is the pump block size used when none is given.
const DefaultBlockFrames = 1024

// InputOpener opens the capture device delivering samples at or convertible
// to the given layout.
type InputOpener func(sampleRate, channels int) (audio.Source, error)

type Config struct {
	SampleRate  int
	Channels    int
	BlockFrames int

	// Registry resolves decoders by file extension. It must hold at least
	// a WAV decoder.
	Registry *audio.Registry
	Sink     Sink
	Input    InputOpener
	Logger   logrus.FieldLogger
}

type listenerBox struct{ l session.Listener }

// Engine implements session.Engine.
type Engine struct {
	sampleRate  int
	channels    int
	blockFrames int
	registry    *audio.Registry
	sink        Sink
	openInput   InputOpener
	log         logrus.FieldLogger

	// mu guards everything up to cancel. tracks and input are changed only
	// while the pump is stopped.
	mu         sync.Mutex
	tracks     []*track
	input      *inputSource
	nextHandle session.Handle
	recorder   recorder
	recordPath string
	closed     bool
	cancel     context.CancelFunc
	done       chan struct{}

	outChain atomic.Pointer[effects.Chain]
	inChain  atomic.Pointer[effects.Chain]
	listener atomic.Pointer[listenerBox]

	master  atomic.Uint64
	gateOn  atomic.Bool
	gateVol atomic.Uint64
	left    atomic.Uint64
	right   atomic.Uint64

	state    atomic.Int32
	position atomic.Int64 // frames
	seekTo   atomic.Int64 // frames, -1 when none is pending
}

var _ session.Engine = (*Engine)(nil)

func New(cfg Config) (*Engine, error) {
	if cfg.SampleRate <= 0 {
		return nil, audio.ErrInvalidSampleRate
	}
	if cfg.Channels <= 0 {
		return nil, audio.ErrInvalidChannels
	}
	if cfg.Registry == nil {
		return nil, ErrNoDecoders
	}
	if cfg.BlockFrames <= 0 {
		cfg.BlockFrames = DefaultBlockFrames
	}
	if cfg.Sink == nil {
		cfg.Sink = Discard
	}
	if cfg.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		cfg.Logger = l
	}

	e := &Engine{
		sampleRate:  cfg.SampleRate,
		channels:    cfg.Channels,
		blockFrames: cfg.BlockFrames,
		registry:    cfg.Registry,
		sink:        cfg.Sink,
		openInput:   cfg.Input,
		log:         cfg.Logger.WithField("component", "engine"),
		nextHandle:  1,
	}
	storeFloat(&e.master, 1)
	e.seekTo.Store(-1)

	return e, nil
}

// Initialize checks the decoder set. With only the WAV fallback available
// it returns session.ErrDecoderUnavailable and the engine stays usable.
func (e *Engine) Initialize() error {
	if !e.registry.Has("wav") {
		return ErrNoDecoders
	}
	if !e.registry.Has("mp3", "ogg") {
		return fmt.Errorf("%w: only PCM formats can be decoded", session.ErrDecoderUnavailable)
	}

	e.log.WithFields(logrus.Fields{
		"sample_rate": e.sampleRate,
		"channels":    e.channels,
		"formats":     e.registry.Formats(),
	}).Info("engine initialized")

	return nil
}

func (e *Engine) OpenOutputSource(path string) (session.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.mutable(); err != nil {
		return 0, err
	}

	samples, err := e.load(path)
	if err != nil {
		return 0, err
	}

	t, err := newTrack(e.nextHandle, path, samples, e.sampleRate, e.channels)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	t.seek(e.position.Load())
	e.nextHandle++
	e.tracks = append(e.tracks, t)

	e.log.WithFields(logrus.Fields{"path": path, "frames": t.frames}).Debug("source opened")

	return t.handle, nil
}

func (e *Engine) load(path string) ([]float32, error) {
	dec, err := e.registry.Lookup(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	defer func() { _ = src.Close() }()

	samples, err := audio.Collect(src, e.sampleRate, e.channels, e.blockFrames*e.channels)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return samples, nil
}

// OpenInputDevice opens the capture device. gain becomes the gate volume
// until SetInputGate changes it; the gate itself starts closed.
func (e *Engine) OpenInputDevice(gain float64) (session.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.mutable(); err != nil {
		return 0, err
	}
	if e.openInput == nil {
		return 0, ErrNoInputDevice
	}
	if e.input != nil {
		return e.input.handle, nil
	}

	src, err := e.openInput(e.sampleRate, e.channels)
	if err != nil {
		return 0, fmt.Errorf("opening input device: %w", err)
	}
	if src.SampleRate() != e.sampleRate {
		src = audio.NewResampler(src, e.sampleRate)
	}
	if src.Channels() != e.channels {
		src = audio.NewChannelMapper(src, e.channels)
	}

	e.input = &inputSource{handle: e.nextHandle, src: src}
	e.nextHandle++
	storeFloat(&e.gateVol, gain)
	e.gateOn.Store(false)

	e.log.Debug("input device opened")

	return e.input.handle, nil
}

func (e *Engine) CloseSource(h session.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.mutable(); err != nil {
		return err
	}

	if e.input != nil && e.input.handle == h {
		err := e.input.src.Close()
		e.input = nil
		e.gateOn.Store(false)
		return err
	}

	for i, t := range e.tracks {
		if t.handle == h {
			e.tracks = append(e.tracks[:i], e.tracks[i+1:]...)
			return nil
		}
	}

	return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
}

// mutable must be called with mu held.
func (e *Engine) mutable() error {
	if e.closed {
		return ErrClosed
	}
	if e.cancel != nil {
		return ErrBusy
	}
	return nil
}

// Play starts or resumes playback without recording. A recording left open
// by a paused PlayTo is finalised.
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.cancel != nil {
		return nil
	}
	e.closeRecorder()

	e.startPump(session.Playing)

	return nil
}

// PlayTo plays while writing the processed output to a PCM WAV file at
// path. Calling it again with the same path after Pause appends to the open
// file.
func (e *Engine) PlayTo(path string, bitDepth int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.cancel != nil {
		return nil
	}

	if e.recorder == nil || e.recordPath != path {
		e.closeRecorder()

		rec, err := wav.Create(path, e.sampleRate, e.channels, bitDepth)
		if err != nil {
			return fmt.Errorf("recording: %w", err)
		}
		e.recorder, e.recordPath = rec, path
		e.log.WithFields(logrus.Fields{"path": path, "bit_depth": bitDepth}).Info("recording started")
	}

	e.startPump(session.Recording)

	return nil
}

func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.cancel == nil {
		return nil
	}

	e.stopPump()
	e.setLevels(0, 0)
	e.state.Store(int32(session.Paused))
	e.notifyState(session.Paused)

	return nil
}

// Stop halts playback, finalises any recording and rewinds to zero. It may
// be called in any state.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}

	e.stopPump()
	err := e.closeRecorder()
	e.rewind()
	e.setLevels(0, 0)

	wasIdle := session.State(e.state.Swap(int32(session.Idle))) == session.Idle
	if !wasIdle {
		e.notifyPosition(0)
		e.notifyState(session.Idle)
	}

	return err
}

// Seek moves every track to pos. While playing the move happens at the next
// block boundary.
func (e *Engine) Seek(pos time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}

	frame := max(int64(pos)*int64(e.sampleRate)/int64(time.Second), 0)
	if e.cancel != nil {
		e.seekTo.Store(frame)
		e.position.Store(frame)
		return nil
	}
	e.position.Store(frame)

	for _, t := range e.tracks {
		t.seek(frame)
	}

	return nil
}

func (e *Engine) Position() time.Duration {
	return e.framesToDuration(e.position.Load())
}

func (e *Engine) Duration(h session.Handle) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, t := range e.tracks {
		if t.handle == h {
			return e.framesToDuration(t.frames)
		}
	}

	return 0
}

func (e *Engine) framesToDuration(frames int64) time.Duration {
	return time.Duration(frames) * time.Second / time.Duration(e.sampleRate)
}

func (e *Engine) OutputLevels() (left, right float64) {
	return loadFloat(&e.left), loadFloat(&e.right)
}

func (e *Engine) setLevels(left, right float64) {
	storeFloat(&e.left, left)
	storeFloat(&e.right, right)
}

// State returns the engine's own playback state.
func (e *Engine) State() session.State {
	return session.State(e.state.Load())
}

func (e *Engine) SetListener(l session.Listener) {
	if l == nil {
		e.listener.Store(nil)
		return
	}
	e.listener.Store(&listenerBox{l: l})
}

func (e *Engine) notifyState(s session.State) {
	if b := e.listener.Load(); b != nil {
		b.l.StateChanged(s)
	}
}

func (e *Engine) notifyPosition(frames int64) {
	if b := e.listener.Load(); b != nil {
		b.l.PositionChanged(e.framesToDuration(frames))
	}
}

func (e *Engine) findTrack(h session.Handle) (*track, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, t := range e.tracks {
		if t.handle == h {
			return t, nil
		}
	}

	return nil, fmt.Errorf("%w: %d", ErrUnknownHandle, h)
}

func (e *Engine) SetSourcePitch(h session.Handle, semitones float64) error {
	t, err := e.findTrack(h)
	if err != nil {
		return err
	}
	storeFloat(&t.semitones, semitones)
	return nil
}

func (e *Engine) SetSourceTempo(h session.Handle, percent float64) error {
	t, err := e.findTrack(h)
	if err != nil {
		return err
	}
	storeFloat(&t.tempo, percent)
	return nil
}

func (e *Engine) SetSourceVolume(h session.Handle, volume float64) error {
	t, err := e.findTrack(h)
	if err != nil {
		return err
	}
	storeFloat(&t.volume, volume)
	return nil
}

func (e *Engine) SetMasterVolume(volume float64) error {
	storeFloat(&e.master, volume)
	return nil
}

func (e *Engine) SetInputGate(enabled bool, volume float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.input == nil {
		return ErrNoInputDevice
	}
	storeFloat(&e.gateVol, volume)
	e.gateOn.Store(enabled)

	return nil
}

func (e *Engine) SetOutputChain(c *effects.Chain) { e.outChain.Store(c) }
func (e *Engine) SetInputChain(c *effects.Chain)  { e.inChain.Store(c) }

// Reset stops the pump and releases every source. It returns once the pump
// goroutine has exited. Failures closing a recording or the input device
// are logged; the sources are gone either way, so Reset only fails on a
// closed engine.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}

	_ = e.teardown()
	e.log.Debug("engine reset")

	return nil
}

// Close resets the engine and closes the sink. Close is idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}

	err := e.teardown()
	e.closed = true
	if serr := e.sink.Close(); serr != nil && err == nil {
		err = fmt.Errorf("closing sink: %w", serr)
	}

	return err
}

// teardown must be called with mu held.
func (e *Engine) teardown() error {
	e.stopPump()
	err := e.closeRecorder()

	if e.input != nil {
		if cerr := e.input.src.Close(); cerr != nil {
			e.log.WithError(cerr).Error("closing input")
			if err == nil {
				err = fmt.Errorf("closing input: %w", cerr)
			}
		}
		e.input = nil
	}
	e.tracks = nil
	e.gateOn.Store(false)
	e.position.Store(0)
	e.seekTo.Store(-1)
	e.setLevels(0, 0)
	e.state.Store(int32(session.Idle))

	return err
}

// rewind must be called with the pump stopped.
func (e *Engine) rewind() {
	e.seekTo.Store(-1)
	e.position.Store(0)
	for _, t := range e.tracks {
		t.seek(0)
	}
}

// closeRecorder must be called with mu held.
func (e *Engine) closeRecorder() error {
	if e.recorder == nil {
		return nil
	}

	rec, path := e.recorder, e.recordPath
	e.recorder, e.recordPath = nil, ""

	if err := rec.Close(); err != nil {
		e.log.WithError(err).WithField("path", path).Error("finalising recording")
		return fmt.Errorf("recording %s: %w", path, err)
	}
	e.log.WithFields(logrus.Fields{"path": path, "frames": rec.Frames()}).Info("recording saved")

	return nil
}
