// SPDX-License-Identifier: EPL-2.0

package session

type subscriber struct {
	id uint64
	fn func(Event)
}

// Subscribe registers fn for every event and returns a function that
// removes it. Subscribers are called in registration order. fn may run on
// the control goroutine or the engine goroutine. Events raised by a control
// operation are delivered after it releases the controller, so fn may read
// or change the controller.
func (c *Controller) Subscribe(fn func(Event)) (cancel func()) {
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// lock acquires mu. Events raised until the matching unlock are queued.
func (c *Controller) lock() {
	c.mu.Lock()
	c.pendMu.Lock()
	c.deferring = true
	c.pendMu.Unlock()
}

// unlock releases mu and then delivers the queued events in order.
func (c *Controller) unlock() {
	c.pendMu.Lock()
	pending := c.pending
	c.pending = nil
	c.deferring = false
	c.pendMu.Unlock()

	c.mu.Unlock()

	for _, kind := range pending {
		c.deliver(kind)
	}
}

func (c *Controller) emit(kind EventKind) {
	c.pendMu.Lock()
	if c.deferring {
		c.pending = append(c.pending, kind)
		c.pendMu.Unlock()
		return
	}
	c.pendMu.Unlock()

	c.deliver(kind)
}

func (c *Controller) deliver(kind EventKind) {
	c.subMu.RLock()
	subs := c.subs
	c.subMu.RUnlock()

	if len(subs) == 0 {
		return
	}

	ev := Event{Kind: kind, State: c.State(), Position: c.Position()}
	for _, s := range subs {
		s.fn(ev)
	}
}
