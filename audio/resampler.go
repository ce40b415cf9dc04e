// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/mixdeck/utils"
)

// Resampler streams src at a different sample rate using Catmull-Rom
// interpolation over a four frame window. Channel count is preserved.
type Resampler struct {
	src      Source
	dstRate  int
	step     float64 // source frames advanced per output frame
	channels int

	// hist[1] is the frame at the current integer position, hist[0] the one
	// before it and hist[2], hist[3] the two after.
	hist [4][]float32
	frac float64

	primed bool
	srcEOF bool
	read   int64 // real frames pulled from src
	idx    int64 // source index of hist[1]

	in    []float32
	inPos int
	inLen int
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		step:     float64(src.SampleRate()) / float64(dstRate),
		channels: channels,
		in:       make([]float32, channels*1024),
	}
	for i := range r.hist {
		r.hist[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

// Frames estimates the output length when the source is Sized.
func (r *Resampler) Frames() int64 {
	sized, ok := r.src.(Sized)
	if !ok || sized.Frames() < 0 {
		return -1
	}

	return int64(float64(sized.Frames()) / r.step)
}

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// nextFrame copies the next source frame into dst. It returns false once the
// source is exhausted.
func (r *Resampler) nextFrame(dst []float32) (bool, error) {
	for idle := 0; r.inPos >= r.inLen; idle++ {
		if r.srcEOF || idle >= maxIdleReads {
			r.srcEOF = true
			return false, nil
		}

		n, err := r.src.ReadSamples(r.in)
		r.inPos, r.inLen = 0, n-n%r.channels
		if err == io.EOF {
			r.srcEOF = true
		} else if err != nil {
			return false, fmt.Errorf("%w", err)
		}
	}

	copy(dst, r.in[r.inPos:r.inPos+r.channels])
	r.inPos += r.channels
	r.read++

	return true, nil
}

func (r *Resampler) prime() error {
	r.primed = true

	ok, err := r.nextFrame(r.hist[1])
	if err != nil || !ok {
		return err
	}
	copy(r.hist[0], r.hist[1])

	for i := 2; i < 4; i++ {
		ok, err := r.nextFrame(r.hist[i])
		if err != nil {
			return err
		}
		if !ok {
			copy(r.hist[i], r.hist[i-1])
		}
	}

	return nil
}

func (r *Resampler) advance() error {
	oldest := r.hist[0]
	r.hist[0], r.hist[1], r.hist[2] = r.hist[1], r.hist[2], r.hist[3]
	r.hist[3] = oldest
	r.idx++

	ok, err := r.nextFrame(r.hist[3])
	if err != nil {
		return err
	}
	if !ok {
		copy(r.hist[3], r.hist[2])
	}

	return nil
}

// ReadSamples produces interleaved samples at the destination rate.
// len(dst) must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	frames := len(dst) / r.channels

	for written < frames {
		if r.srcEOF && r.idx >= r.read {
			break
		}

		base := written * r.channels
		utils.InterpolateFrame(dst[base:base+r.channels],
			r.hist[0], r.hist[1], r.hist[2], r.hist[3], float32(r.frac))
		written++

		r.frac += r.step
		for r.frac >= 1 {
			r.frac--
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}
	}

	if written == 0 && len(dst) > 0 {
		return 0, io.EOF
	}

	return written * r.channels, nil
}
