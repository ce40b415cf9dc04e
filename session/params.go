// SPDX-License-Identifier: EPL-2.0

package session

import (
	"fmt"
	"math"

	"github.com/ik5/mixdeck/utils"
)

// SetPitch sets the master pitch in semitones and applies it to every file
// slot. Per-slot values are overwritten.
func (c *Controller) SetPitch(semitones float64) {
	if math.IsNaN(semitones) {
		return
	}

	c.lock()
	defer c.unlock()

	c.pitch = semitones
	c.broadcastPitch()
	c.emit(ParametersChanged)
}

// SetTempo sets the master tempo change in percent and applies it to every
// file slot.
func (c *Controller) SetTempo(percent float64) {
	if math.IsNaN(percent) {
		return
	}

	c.lock()
	defer c.unlock()

	c.tempo = percent
	c.broadcastTempo()
	c.emit(ParametersChanged)
}

// SetVolume sets the master volume, clamped to [0, 1].
func (c *Controller) SetVolume(volume float64) {
	if math.IsNaN(volume) {
		return
	}

	c.lock()
	defer c.unlock()

	c.volume = utils.Clamp(volume, 0, 1)
	if err := c.engine.SetMasterVolume(c.volume); err != nil {
		c.diag.Warn(fmt.Sprintf("Cannot set master volume: %v", err))
	}
	c.emit(ParametersChanged)
}

func (c *Controller) Pitch() float64 {
	c.lock()
	defer c.unlock()
	return c.pitch
}

func (c *Controller) Tempo() float64 {
	c.lock()
	defer c.unlock()
	return c.tempo
}

func (c *Controller) Volume() float64 {
	c.lock()
	defer c.unlock()
	return c.volume
}

// SetSaveToFile toggles recording on the next start or resume. A non-empty
// path replaces the destination; turning the toggle off forgets it.
func (c *Controller) SetSaveToFile(enabled bool, path string) {
	c.lock()
	defer c.unlock()

	c.saveToFile = enabled
	switch {
	case !enabled:
		c.savePath = ""
	case path != "":
		c.savePath = path
	}
	c.emit(ParametersChanged)
}

// SaveToFile returns the toggle and the current destination.
func (c *Controller) SaveToFile() (enabled bool, path string) {
	c.lock()
	defer c.unlock()
	return c.saveToFile, c.savePath
}

// SetMicrophoneEnabled opens or closes the input gate. While playing, the
// change is applied immediately and the input chain is attached on first
// use.
func (c *Controller) SetMicrophoneEnabled(enabled bool) {
	c.lock()
	defer c.unlock()

	c.micEnabled = enabled

	if input := c.inputSlot(); input != nil && c.State().Active() {
		if enabled && c.inputChain == nil {
			if err := c.attachInputChain(input); err != nil {
				c.diag.Error("Cannot build input chain", err)
			}
		}
		c.applyInputGate()
	}
	c.emit(ParametersChanged)
}

func (c *Controller) MicrophoneEnabled() bool {
	c.lock()
	defer c.unlock()
	return c.micEnabled
}

// SetInputVolume sets the microphone gain, clamped to [0, 1].
func (c *Controller) SetInputVolume(volume float64) {
	if math.IsNaN(volume) {
		return
	}

	c.lock()
	defer c.unlock()

	c.inputVolume = utils.Clamp(volume, 0, 1)
	if input := c.inputSlot(); input != nil {
		input.Volume = c.inputVolume
		if c.State().Active() {
			c.applyInputGate()
		}
	}
	c.emit(ParametersChanged)
}

func (c *Controller) InputVolume() float64 {
	c.lock()
	defer c.unlock()
	return c.inputVolume
}

func (c *Controller) broadcastPitch() {
	for _, s := range c.slots {
		if s.Kind != OutputFile {
			continue
		}
		s.Pitch = c.pitch
		if err := c.engine.SetSourcePitch(s.Handle, c.pitch); err != nil {
			c.diag.Warn(fmt.Sprintf("Cannot set pitch on %s: %v", s.Path, err))
		}
	}
}

func (c *Controller) broadcastTempo() {
	for _, s := range c.slots {
		if s.Kind != OutputFile {
			continue
		}
		s.Tempo = c.tempo
		if err := c.engine.SetSourceTempo(s.Handle, c.tempo); err != nil {
			c.diag.Warn(fmt.Sprintf("Cannot set tempo on %s: %v", s.Path, err))
		}
	}
}
