// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync/atomic"

	"github.com/ik5/mixdeck/audio"
	"github.com/ik5/mixdeck/dsp"
	"github.com/ik5/mixdeck/session"
	"github.com/ik5/mixdeck/utils"
)

func loadFloat(a *atomic.Uint64) float64     { return math.Float64frombits(a.Load()) }
func storeFloat(a *atomic.Uint64, v float64) { a.Store(math.Float64bits(v)) }

// track is a decoded file. Parameters are written by control calls and read
// by the pump; everything below the cursor belongs to the pump.
type track struct {
	handle   session.Handle
	path     string
	samples  []float32
	frames   int64
	channels int

	semitones atomic.Uint64
	tempo     atomic.Uint64
	volume    atomic.Uint64

	cursor  float64
	done    bool
	shift   *dsp.PitchShift
	scratch []float32
}

func newTrack(h session.Handle, path string, samples []float32, sampleRate, channels int) (*track, error) {
	frames := int64(len(samples) / channels)
	if frames == 0 {
		return nil, ErrEmptySource
	}

	shift, err := dsp.NewPitchShift(float64(sampleRate), channels)
	if err != nil {
		return nil, err
	}

	t := &track{
		handle:   h,
		path:     path,
		samples:  samples,
		frames:   frames,
		channels: channels,
		shift:    shift,
	}
	storeFloat(&t.volume, 1)

	return t, nil
}

// position is the playhead in frames, capped at the clip length.
func (t *track) position() int64 {
	return min(int64(t.cursor), t.frames)
}

func (t *track) seek(frame int64) {
	frame = min(max(frame, 0), t.frames)
	t.cursor = float64(frame)
	t.done = frame >= t.frames
	t.shift.Reset()
}

func (t *track) frame(i int64) []float32 {
	i = min(max(i, 0), t.frames-1)
	return t.samples[i*int64(t.channels) : (i+1)*int64(t.channels)]
}

// render adds the next len(mix) samples of the track to mix.
func (t *track) render(mix []float32) error {
	ch := t.channels
	if cap(t.scratch) < len(mix) {
		t.scratch = make([]float32, len(mix))
	}
	buf := t.scratch[:len(mix)]

	rate := utils.TempoToRatio(loadFloat(&t.tempo))
	frames := len(buf) / ch

	i := 0
	for ; i < frames && !t.done; i++ {
		idx := int64(t.cursor)
		if idx >= t.frames {
			t.done = true
			break
		}
		x := float32(t.cursor - float64(idx))
		utils.InterpolateFrame(buf[i*ch:(i+1)*ch], t.frame(idx-1), t.frame(idx), t.frame(idx+1), t.frame(idx+2), x)
		t.cursor += rate
	}
	clear(buf[i*ch:])
	if t.cursor >= float64(t.frames) {
		t.done = true
	}

	// Varispeed moves the pitch along with the tempo; the shifter takes
	// that back out and applies the requested transposition.
	ratio := utils.SemitonesToRatio(loadFloat(&t.semitones)) / rate
	if err := t.shift.SetRatio(ratio); err != nil {
		return fmt.Errorf("track %d: %w", t.handle, err)
	}
	t.shift.Process(buf)

	vol := float32(loadFloat(&t.volume))
	for j, v := range buf {
		mix[j] += v * vol
	}

	return nil
}

// inputSource is an open capture device. src is read only by the pump.
type inputSource struct {
	handle session.Handle
	src    audio.Source
	eof    bool
}

// read fills dst with whatever the device has, padding with silence.
func (in *inputSource) read(dst []float32) error {
	clear(dst)
	if in.eof {
		return nil
	}

	filled := 0
	for filled < len(dst) {
		n, err := in.src.ReadSamples(dst[filled:])
		filled += n
		if errors.Is(err, io.EOF) {
			in.eof = true
			return nil
		}
		if err != nil {
			in.eof = true
			return fmt.Errorf("reading input: %w", err)
		}
		if n == 0 {
			return nil
		}
	}

	return nil
}
