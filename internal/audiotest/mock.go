// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds deterministic audio sources shared by tests.
package audiotest

import (
	"io"
	"math"
)

// Waveform returns the value of channel ch at frame index frame.
type Waveform func(frame int, ch int) float32

// MockSource generates a fixed number of frames from a Waveform. It
// satisfies audio.Source and audio.Sized without importing audio.
type MockSource struct {
	sampleRate int
	channels   int
	frames     int
	generated  int
	waveform   Waveform

	// ReadErr, when set, is returned by the next ReadSamples call.
	ReadErr error
	Closed  bool
}

func NewMockSource(sampleRate, channels, frames int, waveform Waveform) *MockSource {
	return &MockSource{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		waveform:   waveform,
	}
}

func NewSilentSource(sampleRate, channels, frames int) *MockSource {
	return NewConstantSource(sampleRate, channels, frames, 0)
}

func NewConstantSource(sampleRate, channels, frames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 {
		return value
	})
}

func NewSineSource(sampleRate, channels, frames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(frame int, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewRampSource emits frame/frames on every channel, rising from 0 towards 1.
func NewRampSource(sampleRate, channels, frames int) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(frame int, _ int) float32 {
		return float32(frame) / float32(frames)
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }
func (m *MockSource) Frames() int64   { return int64(m.frames) }

func (m *MockSource) Close() error {
	m.Closed = true
	return nil
}

// Rewind restarts generation from the first frame.
func (m *MockSource) Rewind() {
	m.generated = 0
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.ReadErr != nil {
		return 0, m.ReadErr
	}
	if m.generated >= m.frames {
		return 0, io.EOF
	}

	count := min(len(dst)/m.channels, m.frames-m.generated)
	for f := range count {
		for ch := range m.channels {
			dst[f*m.channels+ch] = m.waveform(m.generated+f, ch)
		}
	}
	m.generated += count

	if m.generated >= m.frames {
		return count * m.channels, io.EOF
	}

	return count * m.channels, nil
}
