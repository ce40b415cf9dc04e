// Package vorbis decodes Ogg Vorbis files through github.com/jfreymuth/oggvorbis.
//
// Samples are already float32 in [-1, 1] and are passed through interleaved
// with no conversion.
package vorbis
