// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/mixdeck/utils"
)

// Recorder streams interleaved float32 blocks into a PCM WAV file. The RIFF
// sizes are patched on Close, so the destination must be seekable.
type Recorder struct {
	enc      *gowav.Encoder
	closer   io.Closer
	buf      *goaudio.IntBuffer
	channels int
	bitDepth int
	frames   int64
	closed   bool
}

// NewRecorder prepares w for PCM output. bitDepth must be 16, 24 or 32.
func NewRecorder(w io.WriteSeeker, sampleRate, channels, bitDepth int) (*Recorder, error) {
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	format := &goaudio.Format{NumChannels: channels, SampleRate: sampleRate}

	return &Recorder{
		enc:      gowav.NewEncoder(w, sampleRate, bitDepth, channels, formatPCM),
		closer:   closerOf(w),
		buf:      &goaudio.IntBuffer{Format: format, Data: make([]int, 0, 4096), SourceBitDepth: bitDepth},
		channels: channels,
		bitDepth: bitDepth,
	}, nil
}

// Create opens path for writing and returns a Recorder that owns the file.
func Create(path string, sampleRate, channels, bitDepth int) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}

	rec, err := NewRecorder(f, sampleRate, channels, bitDepth)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}

	return rec, nil
}

// Write appends interleaved samples. A trailing partial frame is dropped.
func (r *Recorder) Write(samples []float32) error {
	if r.closed {
		return ErrRecorderClosed
	}

	n := len(samples) - len(samples)%r.channels
	if n == 0 {
		return nil
	}

	if cap(r.buf.Data) < n {
		r.buf.Data = make([]int, n)
	}
	r.buf.Data = r.buf.Data[:n]
	for i, v := range samples[:n] {
		r.buf.Data[i] = utils.FloatToPCM(v, r.bitDepth)
	}

	if err := r.enc.Write(r.buf); err != nil {
		return fmt.Errorf("%w", err)
	}
	r.frames += int64(n / r.channels)

	return nil
}

// Frames returns the number of frames written so far.
func (r *Recorder) Frames() int64 { return r.frames }

// BitDepth returns the PCM sample width.
func (r *Recorder) BitDepth() int { return r.bitDepth }

// Close finalises the WAV header and closes the destination when the
// Recorder owns it. Close is idempotent.
func (r *Recorder) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	if err := r.enc.Close(); err != nil {
		return fmt.Errorf("finalising WAV: %w", err)
	}
	if r.closer != nil {
		if err := r.closer.Close(); err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	return nil
}

func closerOf(w io.Writer) io.Closer {
	if c, ok := w.(io.Closer); ok {
		return c
	}
	return nil
}
