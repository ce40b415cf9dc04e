// SPDX-License-Identifier: EPL-2.0

// Package session coordinates playback, recording and live effects for a
// small set of audio sources mixed into one output.
//
// A Controller owns the source slots, the output and input effects chains,
// and the play/pause/stop/seek state machine. The audio itself is moved by
// an Engine, which the caller constructs and passes to New:
//
//	ctrl, err := session.New(eng,
//		session.WithDiagnostics(log),
//		session.WithOutputChain(dsp.OutputChain(44100, 2)),
//	)
//	if err != nil {
//		return err
//	}
//	defer ctrl.Close()
//
//	cancel := ctrl.Subscribe(func(ev session.Event) {
//		fmt.Println(ev.Kind, ev.State, ev.Position)
//	})
//	defer cancel()
//
//	ctrl.AddOutputSource("song.mp3")
//	ctrl.PlayPause()
//
// # Guards
//
// Sources can only be added or removed while the controller is stopped.
// Calls made at the wrong time return false and change nothing, so a UI may
// call them freely. Failures to open a resource are reported to the
// Diagnostics sink instead of being returned.
//
// # Position
//
// The engine reports its clock at high frequency. The controller publishes
// a new position only when it jumps more than one second ahead or moves
// backwards, and ignores reports while a seek gesture is in progress. An
// engine clock that falls back to zero while playback is active is read as
// the natural end of the stream.
//
// # Concurrency
//
// Control operations are serialised by the controller. Engine notifications
// arrive on the engine's own goroutine and only touch atomic state, so
// subscribers may be invoked from either goroutine.
package session
