// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 files through github.com/hajimehoshi/go-mp3.
//
//	src, err := mp3.Decoder{}.Decode(file)
//
// The resulting audio.Source is always stereo at the file's sample rate,
// reports its length through Frames, and closes the input when closed if
// the input is an io.Closer.
package mp3
