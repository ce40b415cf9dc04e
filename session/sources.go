// SPDX-License-Identifier: EPL-2.0

package session

import (
	"fmt"
	"time"

	"github.com/ik5/mixdeck/utils"
)

// AddOutputSource opens path and appends it as an OutputFile slot. It is a
// no-op returning false unless the controller is stopped. An open failure
// is logged and leaves the controller unchanged.
//
// On success the master pitch and tempo return to neutral on every file
// slot and Duration is refreshed.
func (c *Controller) AddOutputSource(path string) bool {
	c.lock()
	defer c.unlock()

	if !c.stopRequested.Load() {
		return false
	}

	h, err := c.engine.OpenOutputSource(path)
	if err != nil {
		c.diag.Error(fmt.Sprintf("Cannot open %s", path), err)
		return false
	}

	c.slots = append(c.slots, &SourceSlot{
		Kind:   OutputFile,
		Index:  c.outputSlots(),
		Path:   path,
		Handle: h,
		Volume: 1,
	})
	c.diag.Info(fmt.Sprintf("Loaded %s", path))

	c.pitch, c.tempo = 0, 0
	c.broadcastPitch()
	c.broadcastTempo()
	if err := c.engine.SetMasterVolume(c.volume); err != nil {
		c.diag.Warn(fmt.Sprintf("Cannot set master volume: %v", err))
	}
	c.refreshDuration()

	c.emit(SourcesChanged)
	c.emit(ParametersChanged)

	return true
}

// AddInputSource opens the capture device with initialVolume, clamped to
// [0, 1]. It requires the controller to be stopped, input to be available
// and no input slot to exist yet.
func (c *Controller) AddInputSource(initialVolume float64) bool {
	c.lock()
	defer c.unlock()

	if !c.stopRequested.Load() || !c.inputAvailable || c.inputSlot() != nil {
		return false
	}

	vol := utils.Clamp(initialVolume, 0, 1)
	h, err := c.engine.OpenInputDevice(vol)
	if err != nil {
		c.diag.Error("Cannot open input device", err)
		return false
	}

	c.slots = append(c.slots, &SourceSlot{
		Kind:   InputDevice,
		Handle: h,
		Volume: vol,
	})
	c.inputVolume = vol
	c.diag.Info("Input device opened")

	c.emit(SourcesChanged)

	return true
}

// RemoveLastSource closes the most recently added slot of either kind. It
// requires the controller to be stopped.
func (c *Controller) RemoveLastSource() bool {
	c.lock()
	defer c.unlock()

	if !c.stopRequested.Load() || len(c.slots) == 0 {
		return false
	}

	last := c.slots[len(c.slots)-1]
	c.slots[len(c.slots)-1] = nil
	c.slots = c.slots[:len(c.slots)-1]

	if last.Chain != nil {
		last.Chain.Reset()
		last.Chain = nil
	}
	if last.Kind == InputDevice && c.inputChain != nil {
		c.engine.SetInputChain(nil)
		c.inputChain = nil
	}
	c.outputChain.Reset()

	if err := c.engine.CloseSource(last.Handle); err != nil {
		c.diag.Warn(fmt.Sprintf("Closing source: %v", err))
	}
	c.refreshDuration()

	c.emit(SourcesChanged)

	return true
}

// Reset stops playback and asks the engine for a clean reset. Only when the
// engine confirms are the slots cleared, the diagnostic log emptied, pitch,
// tempo and volume restored, and a fresh output chain installed.
// resetGlobalSettings additionally clears the save-to-file destination and
// the microphone gate.
func (c *Controller) Reset(resetGlobalSettings bool) bool {
	c.Stop()

	c.lock()
	defer c.unlock()

	if err := c.engine.Reset(); err != nil {
		c.diag.Error("Engine reset failed", err)
		return false
	}

	for _, s := range c.slots {
		if s.Chain != nil {
			s.Chain.Reset()
		}
	}
	c.slots = nil
	if c.inputChain != nil {
		c.engine.SetInputChain(nil)
		c.inputChain = nil
	}
	c.diag.Clear()

	c.pitch, c.tempo, c.volume = 0, 0, 1
	if err := c.engine.SetMasterVolume(c.volume); err != nil {
		c.diag.Warn(fmt.Sprintf("Cannot set master volume: %v", err))
	}
	if resetGlobalSettings {
		c.saveToFile, c.savePath = false, ""
		c.micEnabled = false
		c.inputVolume = DefaultInputVolume
	}

	ok := true
	chain, err := c.outputFactory()
	if err != nil {
		c.diag.Error("Cannot rebuild output chain", err)
		c.outputChain.Reset()
		ok = false
	} else {
		c.outputChain = chain
		c.engine.SetOutputChain(chain)
	}

	c.resumeAs.Store(int32(Playing))
	c.duration.Store(0)
	c.position.Store(0)
	c.hasPosition.Store(false)
	c.setState(Idle)

	c.emit(SourcesChanged)
	c.emit(ParametersChanged)
	c.emit(PositionChanged)

	return ok
}

func (c *Controller) refreshDuration() {
	var longest time.Duration
	for _, s := range c.slots {
		if s.Kind != OutputFile {
			continue
		}
		longest = max(longest, c.engine.Duration(s.Handle))
	}
	c.duration.Store(int64(longest))
}
