// SPDX-License-Identifier: EPL-2.0

// Package effects defines the contract for in-place audio processing stages
// and the ordered Chain that runs them.
//
// A Chain is assembled on the control goroutine and handed to an engine,
// which calls Process from its audio goroutine for every block. Process and
// the enable flags are lock-free and never allocate, so a disabled chain or
// stage costs a single atomic load.
//
//	chain := effects.NewChain(eq, compressor, limiter)
//	chain.Process(block) // block is modified in place
//	chain.SetEnabled(false)
//	chain.Process(block) // block is left untouched
//
// Stages are run in insertion order. Reordering stages changes the result.
package effects
