// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"

	"github.com/ik5/mixdeck/dsp"
	"github.com/ik5/mixdeck/session"
)

// startPump must be called with mu held and the pump stopped. The state
// notification goes out before the first block so that it always precedes
// the pump's own notifications.
func (e *Engine) startPump(s session.State) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	e.cancel, e.done = cancel, done
	e.state.Store(int32(s))
	e.notifyState(s)

	go e.run(ctx, done, e.recorder)
}

// stopPump must be called with mu held. It releases mu while waiting for
// the pump goroutine, which may itself need mu to finish.
func (e *Engine) stopPump() {
	if e.cancel == nil {
		return
	}

	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	cancel()

	e.mu.Unlock()
	<-done
	e.mu.Lock()
}

type pumpBuffers struct {
	mix   []float32
	input []float32
	meter dsp.PeakMeter
}

func (e *Engine) run(ctx context.Context, done chan struct{}, rec recorder) {
	defer close(done)

	n := e.blockFrames * e.channels
	bufs := &pumpBuffers{
		mix:   make([]float32, n),
		input: make([]float32, n),
	}
	log := e.log.WithField("state", session.State(e.state.Load()).String())
	sinkFailed := false

	for ctx.Err() == nil {
		finished := e.renderBlock(bufs)

		if err := e.sink.Write(bufs.mix); err != nil && !sinkFailed {
			log.WithError(err).Warn("output sink write failed")
			sinkFailed = true
		}
		if rec != nil {
			if err := rec.Write(bufs.mix); err != nil {
				log.WithError(err).Error("recording write failed")
				rec = nil
			}
		}
		e.notifyPosition(e.position.Load())

		if finished {
			e.finish(ctx)
			return
		}
	}
}

// recorder is the part of wav.Recorder the engine uses.
type recorder interface {
	Write(samples []float32) error
	Frames() int64
	Close() error
}

// renderBlock fills bufs.mix with the next block and reports whether every
// track has run out.
func (e *Engine) renderBlock(bufs *pumpBuffers) bool {
	// Seek publishes seekTo before position, so a target taken here is
	// never older than start. A Seek landing later in the block keeps its
	// target: the position only advances from start.
	start := e.position.Load()
	if frame := e.seekTo.Swap(-1); frame >= 0 {
		for _, t := range e.tracks {
			t.seek(frame)
		}
		start = frame
	}

	mix := bufs.mix
	clear(mix)

	allDone := true
	var pos int64
	for _, t := range e.tracks {
		if err := t.render(mix); err != nil {
			e.log.WithError(err).Warn("pitch correction failed")
		}
		if !t.done {
			allDone = false
		}
		pos = max(pos, t.position())
	}

	// Input alone keeps the pump running until it is stopped.
	finished := allDone && (len(e.tracks) > 0 || e.input == nil)

	if in := e.input; in != nil {
		e.mixInput(in, bufs)
		if len(e.tracks) == 0 {
			pos = start + int64(e.blockFrames)
		}
	}

	if c := e.outChain.Load(); c != nil {
		c.Process(mix)
	}

	master := float32(loadFloat(&e.master))
	if master != 1 {
		for i := range mix {
			mix[i] *= master
		}
	}

	e.setLevels(bufs.meter.Measure(mix, e.channels))
	e.position.CompareAndSwap(start, pos)

	return finished
}

func (e *Engine) mixInput(in *inputSource, bufs *pumpBuffers) {
	if err := in.read(bufs.input); err != nil {
		e.log.WithError(err).Warn("input device stopped")
	}
	if !e.gateOn.Load() {
		return
	}

	if c := e.inChain.Load(); c != nil {
		c.Process(bufs.input)
	}

	vol := float32(loadFloat(&e.gateVol))
	for i, v := range bufs.input {
		bufs.mix[i] += v * vol
	}
}

// finish handles the end of every track: the recording is finalised, the
// engine rewinds and reports position zero followed by Idle.
func (e *Engine) finish(ctx context.Context) {
	e.mu.Lock()
	if ctx.Err() != nil {
		// A control call is already stopping the pump.
		e.mu.Unlock()
		return
	}
	e.cancel()
	e.cancel, e.done = nil, nil

	_ = e.closeRecorder()
	e.rewind()
	e.setLevels(0, 0)
	e.state.Store(int32(session.Idle))
	e.mu.Unlock()

	e.log.Debug("end of stream")
	e.notifyPosition(0)
	e.notifyState(session.Idle)
}
