// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// maxIdleReads bounds how many consecutive empty reads are tolerated before a
// source without an explicit io.EOF is considered finished.
const maxIdleReads = 64

// Collect drains src into a single interleaved buffer at the requested
// sample rate and channel count. Sources that implement Sized are
// pre-allocated to their full length.
func Collect(src Source, sampleRate, channels, bufferSize int) ([]float32, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}

	var pipeline Source = src
	if src.SampleRate() != sampleRate {
		pipeline = NewResampler(pipeline, sampleRate)
	}
	if pipeline.Channels() != channels {
		pipeline = NewChannelMapper(pipeline, channels)
	}

	estimate := sampleRate * channels * 2
	if sized, ok := pipeline.(Sized); ok && sized.Frames() > 0 {
		estimate = int(sized.Frames())*channels + channels
	}

	out := make([]float32, 0, estimate)
	bufferSize -= bufferSize % channels
	if bufferSize <= 0 {
		bufferSize = channels * 1024
	}
	buf := make([]float32, bufferSize)
	idle := 0

	for {
		n, err := pipeline.ReadSamples(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("collecting samples: %w", err)
		}
		if n == 0 {
			idle++
			if idle >= maxIdleReads {
				break
			}
			continue
		}
		idle = 0
	}

	return out, nil
}
