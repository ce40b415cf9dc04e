// SPDX-License-Identifier: EPL-2.0

// Package audio provides the low-level sample plumbing used by the engine.
//
// This package contains:
//   - Source interface for interleaved float32 audio
//   - Sized for sources that know their length
//   - Registry for decoder lookup by file extension
//   - Resampler for sample rate conversion
//   - ChannelMapper for channel layout conversion
//   - Collect for draining a source into an in-memory clip
//
// # Source Interface
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Decoders, the resampler and the channel mapper all implement Source, so
// they chain:
//
//	var src audio.Source = decoded
//	src = audio.NewResampler(src, 44100)
//	src = audio.NewChannelMapper(src, 2)
//
// # Format Registry
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, err := registry.Lookup("/music/intro.WAV")
//
// Keys are case-insensitive and a leading dot is ignored, so file
// extensions can be registered and looked up directly.
//
// # Sample Format
//
// Samples are float32 in [-1.0, 1.0], interleaved by frame.
//
// # Error Handling
//
// ReadSamples returns io.EOF when the stream is finished. Other errors are
// wrapped with %w so callers can match them with errors.Is.
package audio
