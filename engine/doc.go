// SPDX-License-Identifier: EPL-2.0

// Package engine is an in-process mixing engine implementing
// session.Engine.
//
// Files are decoded through an audio.Registry and held in memory at the
// engine rate and channel layout. A pump goroutine renders fixed size
// blocks: every track is read at its tempo with cubic interpolation,
// pitch-corrected, scaled by its volume and summed. The optional input
// device runs through the input chain and the gate, then the mix goes
// through the output chain and master volume before reaching the Sink and
// the recording.
//
// When every track has run out the engine rewinds to zero and reports
// Idle; it never announces the end of a stream in any other way.
package engine
