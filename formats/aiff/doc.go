// Package aiff decodes uncompressed AIFF files through github.com/go-audio/aiff.
//
// 8, 16, 24 and 32 bit signed PCM are supported. Inputs that are not an
// io.ReadSeeker are buffered in memory first.
package aiff
