// SPDX-License-Identifier: EPL-2.0

package session

import "time"

// reconcile decides whether an engine position report becomes the published
// position. It runs on the engine goroutine.
func (c *Controller) reconcile(pos time.Duration) {
	if c.seeking.Load() {
		return
	}

	prev := c.Position()
	first := !c.hasPosition.Load()
	if !first && pos-prev <= positionHysteresis && prev <= pos {
		return
	}

	c.publishPosition(pos)

	// The engine rewinds to zero instead of announcing the end.
	if !first && prev != 0 && pos == 0 && !c.stopRequested.Load() {
		c.endOfStream()
	}
}

func (c *Controller) engineStateChanged(s State) {
	cur := c.State()

	switch s {
	case Buffering:
		if cur == Playing || cur == Recording {
			c.setState(Buffering)
		}
	case Playing, Recording:
		if cur == Buffering {
			c.setState(State(c.resumeAs.Load()))
		}
	case Idle:
		// A clip shorter than the hysteresis never publishes a non-zero
		// position, so the engine going idle is also read as the end.
		if !c.stopRequested.Load() {
			c.endOfStream()
		}
	}
}

func (c *Controller) endOfStream() {
	if c.stopRequested.Swap(true) {
		return
	}
	c.setState(Idle)
}
