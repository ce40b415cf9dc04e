// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
)

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Sized is implemented by sources that know their length up front.
type Sized interface {
	// Frames returns the total number of frames, or -1 when unknown.
	Frames() int64
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry maps format keys (file extensions without the dot, lower case)
// to decoders.
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.RWMutex{},
	}
}

// Register adds d under format, replacing any previous decoder.
func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[normalizeFormat(format)] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	d, ok := r.codecs[normalizeFormat(format)]
	return d, ok
}

// Lookup picks the decoder for path by its extension.
func (r *Registry) Lookup(path string) (Decoder, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return nil, ErrUnsupportedFormat
	}

	d, ok := r.Get(ext)
	if !ok {
		return nil, ErrUnsupportedFormat
	}

	return d, nil
}

// Formats returns the number of registered format keys.
func (r *Registry) Formats() int {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return len(r.codecs)
}

// Has reports whether every given format is registered.
func (r *Registry) Has(formats ...string) bool {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	for _, f := range formats {
		if _, ok := r.codecs[normalizeFormat(f)]; !ok {
			return false
		}
	}

	return true
}

func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimPrefix(format, "."))
}

// AsReadSeeker returns r itself when it can seek, otherwise it buffers the
// remaining input in memory.
func AsReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("buffering input: %w", err)
	}

	return bytes.NewReader(data), nil
}

// CloserOf returns r as an io.Closer when it is one, nil otherwise.
func CloserOf(r io.Reader) io.Closer {
	if c, ok := r.(io.Closer); ok {
		return c
	}
	return nil
}
