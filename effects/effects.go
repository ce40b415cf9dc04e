// SPDX-License-Identifier: EPL-2.0

package effects

import "sync/atomic"

// Stage is a single in-place audio processing step.
//
// Process must not change the length of buf and must accept an empty
// buffer. Reset clears internal state such as filter memory or envelopes.
// Enabled is consulted by Chain before every block.
type Stage interface {
	Process(buf []float32)
	Reset()
	Enabled() bool
}

// Switch is an atomic enable flag for Stage implementations to embed.
// The zero value is enabled.
type Switch struct {
	off atomic.Bool
}

func (s *Switch) Enabled() bool      { return !s.off.Load() }
func (s *Switch) SetEnabled(on bool) { s.off.Store(!on) }

// Factory builds a chain of freshly constructed stages.
type Factory func() (*Chain, error)

// Chain runs its stages in insertion order over the same buffer.
//
// AddStage is not safe to call while another goroutine is inside Process.
// SetEnabled and Enabled may be called from any goroutine.
type Chain struct {
	stages   []Stage
	disabled atomic.Bool
}

// NewChain returns an enabled chain holding stages in the given order.
func NewChain(stages ...Stage) *Chain {
	c := &Chain{}
	for _, s := range stages {
		c.AddStage(s)
	}
	return c
}

// AddStage appends stage. The same stage may be added more than once.
func (c *Chain) AddStage(stage Stage) {
	c.stages = append(c.stages, stage)
}

// Process applies every enabled stage to buf. A disabled chain leaves buf
// untouched. A panicking stage is not recovered.
func (c *Chain) Process(buf []float32) {
	if c.disabled.Load() {
		return
	}
	for _, s := range c.stages {
		if s.Enabled() {
			s.Process(buf)
		}
	}
}

// Reset forwards to every stage, enabled or not.
func (c *Chain) Reset() {
	for _, s := range c.stages {
		s.Reset()
	}
}

func (c *Chain) SetEnabled(on bool) { c.disabled.Store(!on) }
func (c *Chain) Enabled() bool      { return !c.disabled.Load() }
func (c *Chain) Len() int           { return len(c.stages) }

// Stages returns a copy of the stage list.
func (c *Chain) Stages() []Stage {
	out := make([]Stage, len(c.stages))
	copy(out, c.stages)
	return out
}
