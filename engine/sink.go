// SPDX-License-Identifier: EPL-2.0

package engine

// Sink receives every rendered block of interleaved float32 samples at the
// engine rate and channel count. Write is called from the pump goroutine
// and may block to pace playback.
type Sink interface {
	Write(samples []float32) error
	Close() error
}

type discard struct{}

func (discard) Write([]float32) error { return nil }
func (discard) Close() error          { return nil }

// Discard drops every block without pacing, so a pump writing to it runs as
// fast as it can render.
var Discard Sink = discard{}
