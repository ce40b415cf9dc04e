// SPDX-License-Identifier: EPL-2.0

package mixdeck

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ik5/mixdeck/audio"
	"github.com/ik5/mixdeck/config"
	"github.com/ik5/mixdeck/diag"
	"github.com/ik5/mixdeck/dsp"
	"github.com/ik5/mixdeck/engine"
	"github.com/ik5/mixdeck/formats/aiff"
	"github.com/ik5/mixdeck/formats/mp3"
	"github.com/ik5/mixdeck/formats/vorbis"
	"github.com/ik5/mixdeck/formats/wav"
	"github.com/ik5/mixdeck/meter"
	"github.com/ik5/mixdeck/session"
)

// NewRegistry returns a registry holding every decoder in formats/.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})

	return reg
}

// Options are the process-level pieces a Deck cannot build itself.
type Options struct {
	// Sink receives the engine output. Nil discards it.
	Sink engine.Sink
	// Input opens the capture device. Nil disables input sources.
	Input engine.InputOpener
	// Logger receives engine and session logs. Nil discards them.
	Logger logrus.FieldLogger
	// Registry overrides NewRegistry.
	Registry *audio.Registry
	// OnLevels is passed to the level monitor.
	OnLevels func(left, right float64)
}

// Deck is a session over the reference engine with its log and level
// monitor.
type Deck struct {
	Engine  *engine.Engine
	Session *session.Controller
	Monitor *meter.Monitor
	Log     *diag.Log
}

// Open validates cfg, builds the engine and the session controller with the
// default output and input chains, and starts level monitoring.
func Open(cfg config.Config, opts Options) (*Deck, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}

	eng, err := engine.New(engine.Config{
		SampleRate:  cfg.SampleRate,
		Channels:    cfg.Channels,
		BlockFrames: cfg.BlockFrames,
		Registry:    opts.Registry,
		Sink:        opts.Sink,
		Input:       opts.Input,
		Logger:      opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	log := diag.New(opts.Logger, cfg.LogCapacity)
	rate := float64(cfg.SampleRate)

	ctrl, err := session.New(eng,
		session.WithDiagnostics(log),
		session.WithOutputChain(dsp.OutputChain(rate, cfg.Channels)),
		session.WithInputChain(dsp.InputChain(rate, cfg.Channels)),
		session.WithRecordBitDepth(cfg.RecordBitDepth),
	)
	if err != nil {
		_ = eng.Close()
		return nil, fmt.Errorf("creating session: %w", err)
	}
	ctrl.SetInputVolume(cfg.InputVolume)

	mon := meter.New(ctrl, cfg.MeterInterval, opts.OnLevels)
	if err := mon.Start(context.Background()); err != nil {
		_ = ctrl.Close()
		return nil, fmt.Errorf("starting level monitor: %w", err)
	}

	return &Deck{
		Engine:  eng,
		Session: ctrl,
		Monitor: mon,
		Log:     log,
	}, nil
}

// Close stops monitoring and playback and releases the engine.
func (d *Deck) Close() error {
	d.Monitor.Stop()

	return d.Session.Close()
}
