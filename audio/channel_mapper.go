// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMapper converts the channel layout of a source. Mono is duplicated
// to every output channel, wider layouts are folded down by averaging the
// channels that share an output slot, and narrower layouts wrap around.
type ChannelMapper struct {
	src      Source
	channels int
	tmp      []float32
}

func NewChannelMapper(src Source, channels int) *ChannelMapper {
	return &ChannelMapper{
		src:      src,
		channels: channels,
		tmp:      make([]float32, 4096),
	}
}

func (m *ChannelMapper) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMapper) Channels() int   { return m.channels }
func (m *ChannelMapper) BufSize() int    { return m.src.BufSize() }

func (m *ChannelMapper) Frames() int64 {
	if sized, ok := m.src.(Sized); ok {
		return sized.Frames()
	}
	return -1
}

func (m *ChannelMapper) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (m *ChannelMapper) ReadSamples(dst []float32) (int, error) {
	if len(dst)%m.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	in := m.src.Channels()
	if in == m.channels {
		return m.src.ReadSamples(dst)
	}

	frames := len(dst) / m.channels
	needed := frames * in
	if cap(m.tmp) < needed {
		m.tmp = make([]float32, needed)
	}
	m.tmp = m.tmp[:needed]

	n, err := m.src.ReadSamples(m.tmp)
	got := n / in

	switch {
	case in == 1:
		for f := range got {
			v := m.tmp[f]
			out := dst[f*m.channels : (f+1)*m.channels]
			for c := range out {
				out[c] = v
			}
		}
	case in > m.channels:
		for f := range got {
			frame := m.tmp[f*in : (f+1)*in]
			out := dst[f*m.channels : (f+1)*m.channels]
			for c := range out {
				var sum float32
				count := 0
				for s := c; s < in; s += m.channels {
					sum += frame[s]
					count++
				}
				out[c] = sum / float32(count)
			}
		}
	default:
		for f := range got {
			frame := m.tmp[f*in : (f+1)*in]
			out := dst[f*m.channels : (f+1)*m.channels]
			for c := range out {
				out[c] = frame[c%in]
			}
		}
	}

	return got * m.channels, err
}
