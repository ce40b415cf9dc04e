// SPDX-License-Identifier: EPL-2.0

// Package mixdeck is a multi-source audio session: several files and an
// optional microphone are mixed, processed through effect chains, played
// and optionally recorded to WAV.
//
// # Packages
//
//   - session: the controller state machine over an Engine
//   - engine: an in-process mixing engine with a pluggable Sink
//   - effects and dsp: effect chains and the stages they hold
//   - formats/*: WAV, MP3, Ogg Vorbis and AIFF decoders
//   - meter, diag, config: level polling, the session log and settings
//   - device: speaker output through oto
//
// # Quick Start
//
//	deck, err := mixdeck.Open(config.Load(), mixdeck.Options{Sink: out})
//	if err != nil {
//	    return err
//	}
//	defer deck.Close()
//
//	deck.Session.AddOutputSource("intro.mp3")
//	deck.Session.AddOutputSource("voice.wav")
//	deck.Session.SetSaveToFile(true, "mix.wav")
//	deck.Session.PlayPause()
//
// Subscribe to deck.Session for state and position changes; end of stream
// shows up as a StateChanged event with the controller back in Idle.
package mixdeck
