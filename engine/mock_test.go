// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ik5/mixdeck/audio"
	"github.com/ik5/mixdeck/effects"
	"github.com/ik5/mixdeck/formats/mp3"
	"github.com/ik5/mixdeck/formats/vorbis"
	"github.com/ik5/mixdeck/formats/wav"
	"github.com/ik5/mixdeck/session"
)

const testRate = 44100

// captureSink keeps a copy of every block. A non-zero delay paces Write so
// that tests can act while the pump is running.
type captureSink struct {
	delay time.Duration

	mu      sync.Mutex
	blocks  int
	samples []float32
	last    []float32
	closed  bool
}

func (s *captureSink) Write(samples []float32) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.blocks++
	s.samples = append(s.samples, samples...)
	s.last = append(s.last[:0], samples...)

	return nil
}

func (s *captureSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

func (s *captureSink) snapshot() (blocks int, samples, last []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.blocks, append([]float32(nil), s.samples...), append([]float32(nil), s.last...)
}

var errDiskFull = errors.New("disk full")

// brokenRecorder accepts samples but fails to finalise.
type brokenRecorder struct {
	frames int64
	closed bool
}

func (r *brokenRecorder) Write(samples []float32) error {
	r.frames += int64(len(samples) / 2)
	return nil
}

func (r *brokenRecorder) Frames() int64 { return r.frames }

func (r *brokenRecorder) Close() error {
	r.closed = true
	return errDiskFull
}

// recordingListener keeps every notification in order.
type recordingListener struct {
	mu        sync.Mutex
	states    []session.State
	positions []time.Duration
	idle      chan struct{}
}

func newRecordingListener() *recordingListener {
	return &recordingListener{idle: make(chan struct{}, 1)}
}

func (l *recordingListener) StateChanged(s session.State) {
	l.mu.Lock()
	l.states = append(l.states, s)
	l.mu.Unlock()

	if s == session.Idle {
		select {
		case l.idle <- struct{}{}:
		default:
		}
	}
}

func (l *recordingListener) PositionChanged(pos time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.positions = append(l.positions, pos)
}

func (l *recordingListener) snapshot() ([]session.State, []time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]session.State(nil), l.states...), append([]time.Duration(nil), l.positions...)
}

func (l *recordingListener) waitIdle(t *testing.T) {
	t.Helper()

	select {
	case <-l.idle:
	case <-time.After(5 * time.Second):
		t.Fatal("engine never went idle")
	}
}

// halfStage halves every sample.
type halfStage struct {
	effects.Switch
}

func (*halfStage) Process(buf []float32) {
	for i := range buf {
		buf[i] *= 0.5
	}
}

func (*halfStage) Reset() {}

func wavRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", wav.Decoder{})
	return r
}

func fullRegistry() *audio.Registry {
	r := wavRegistry()
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	return r
}

// writeClip writes a stereo 16-bit WAV holding frames of value and returns
// its path.
func writeClip(t *testing.T, name string, frames int, value float32) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	rec, err := wav.Create(path, testRate, 2, 16)
	if err != nil {
		t.Fatalf("wav.Create() error = %v", err)
	}

	buf := make([]float32, frames*2)
	for i := range buf {
		buf[i] = value
	}
	if err := rec.Write(buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	return path
}

func newTestEngine(t *testing.T, sink Sink, input InputOpener) (*Engine, *recordingListener) {
	t.Helper()

	e, err := New(Config{
		SampleRate:  testRate,
		Channels:    2,
		BlockFrames: 512,
		Registry:    fullRegistry(),
		Sink:        sink,
		Input:       input,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })

	l := newRecordingListener()
	e.SetListener(l)

	return e, l
}

// eventually polls cond until it holds or a deadline passes.
func eventually(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}
