// SPDX-License-Identifier: EPL-2.0

package session

import (
	"fmt"
	"time"
)

// PlayPause starts playback from Idle or Paused and pauses it otherwise.
// It does nothing when no source is loaded.
//
// Starting, from Idle or from Paused, records when save-to-file is on and a
// destination is set, and plays otherwise. Changing the save settings while
// paused therefore takes effect on resume.
func (c *Controller) PlayPause() {
	c.lock()
	defer c.unlock()

	if len(c.slots) == 0 {
		return
	}

	switch cur := c.State(); cur {
	case Idle, Paused:
		c.start(cur)
	default:
		if err := c.engine.Pause(); err != nil {
			c.diag.Error("Cannot pause", err)
			return
		}
		c.setState(Paused)
	}
}

func (c *Controller) start(from State) {
	input := c.inputSlot()
	if input != nil && c.micEnabled {
		if err := c.attachInputChain(input); err != nil {
			c.diag.Error("Cannot build input chain", err)
			return
		}
	}

	next := Playing
	if c.saveToFile && c.savePath != "" {
		next = Recording
	}

	// Attaching the chain or toggling the microphone must not replay filter
	// state from an earlier run.
	if c.inputChain != nil {
		c.inputChain.Reset()
	}

	// The guard drops before the engine starts: a clip that ends at once
	// must still be seen as the end of the stream.
	wasStopped, prevResume := c.stopRequested.Load(), c.resumeAs.Load()
	c.stopRequested.Store(false)
	c.resumeAs.Store(int32(next))
	c.setState(next)

	var err error
	if next == Recording {
		err = c.engine.PlayTo(c.savePath, c.bitDepth)
	} else {
		err = c.engine.Play()
	}
	if err != nil {
		c.diag.Error("Cannot start playback", err)
		c.stopRequested.Store(wasStopped)
		c.resumeAs.Store(prevResume)
		c.setState(from)
		return
	}
	// A resumed take appends to the file it was already writing.
	if next == Recording && (from != Paused || c.recordingTo != c.savePath) {
		c.diag.Info(fmt.Sprintf("Recording to %s", c.savePath))
	}
	c.recordingTo = ""
	if next == Recording {
		c.recordingTo = c.savePath
	}

	if input != nil {
		c.applyInputGate()
	}
}

// attachInputChain builds the input chain the first time it is needed and
// hands it to the engine.
func (c *Controller) attachInputChain(slot *SourceSlot) error {
	if c.inputChain == nil {
		chain, err := c.inputFactory()
		if err != nil {
			return err
		}
		c.inputChain = chain
		c.engine.SetInputChain(chain)
	}
	slot.Chain = c.inputChain
	return nil
}

func (c *Controller) applyInputGate() {
	if err := c.engine.SetInputGate(c.micEnabled, c.inputVolume); err != nil {
		c.diag.Warn(fmt.Sprintf("Cannot set input gate: %v", err))
	}
}

// Stop halts the engine unconditionally and sets the stop guard. It is safe
// to call in any state and any number of times.
func (c *Controller) Stop() {
	c.lock()
	defer c.unlock()

	c.stopRequested.Store(true)
	if err := c.engine.Stop(); err != nil {
		c.diag.Warn(fmt.Sprintf("Stopping engine: %v", err))
	}

	c.outputChain.Reset()
	if c.inputChain != nil {
		c.inputChain.Reset()
	}
	c.resumeAs.Store(int32(Playing))
	c.seeking.Store(false)
	c.setState(Idle)

	if c.Position() != 0 {
		c.publishPosition(0)
	}
}

// BeginSeek marks the start of a seek gesture. Engine position reports are
// ignored until Seek is called.
func (c *Controller) BeginSeek() {
	c.seeking.Store(true)
}

// Seek moves playback to pos, clamped to the loaded duration, and ends a
// seek gesture. It requires a loaded file. Effect chains are not reset.
func (c *Controller) Seek(pos time.Duration) bool {
	c.lock()
	defer c.unlock()
	defer c.seeking.Store(false)

	if c.outputSlots() == 0 {
		return false
	}

	pos = max(pos, 0)
	if d := c.Duration(); d > 0 {
		pos = min(pos, d)
	}

	if err := c.engine.Seek(pos); err != nil {
		c.diag.Warn(fmt.Sprintf("Seek failed: %v", err))
		return false
	}

	// The target is published directly so that a seek to the start is not
	// mistaken for the end of the stream.
	c.publishPosition(pos)

	return true
}
