// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes integer PCM WAV files through
// github.com/go-audio/wav.
//
// The Decoder accepts 16, 24 and 32 bit PCM and yields an audio.Source with
// samples normalised to [-1, 1]. It is the fallback format the engine can
// always open.
//
// The Recorder is the streaming counterpart used while a session records:
//
//	rec, err := wav.Create("take.wav", 44100, 2, 16)
//	...
//	rec.Write(block) // interleaved float32
//	...
//	rec.Close()      // patches RIFF sizes
//
// Samples are clamped to [-1, 1] before conversion.
package wav
