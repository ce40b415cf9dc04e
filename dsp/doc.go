// SPDX-License-Identifier: EPL-2.0

// Package dsp provides effects.Stage implementations backed by
// github.com/cwbudde/algo-dsp.
//
// Each stage owns one algo-dsp processor per channel and converts the
// interleaved float32 block to a float64 scratch buffer and back. The
// scratch buffer grows to the largest block seen and is then reused, so
// steady-state processing does not allocate for the filter, dynamics,
// enhancer, reverb and delay stages. PitchShift allocates inside the
// shifter on every block it actually transposes.
//
// Parameters are fixed at construction apart from the enable switch, which
// is atomic, and PitchShift's ratio. OutputChain and InputChain return
// effects.Factory values that build the default stage layouts with fresh
// state on every call.
package dsp
