// SPDX-License-Identifier: EPL-2.0

// Package device plays engine output on the system speakers through oto.
package device

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/hajimehoshi/oto/v2"
	"github.com/sirupsen/logrus"

	"github.com/ik5/mixdeck/utils"
)

const bitDepth = 16

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("output device closed")

// Output is an engine.Sink backed by an oto player. Write blocks until the
// player has taken the block, which paces the engine in real time.
type Output struct {
	w      io.WriteCloser
	player io.Closer
	log    logrus.FieldLogger

	mu     sync.Mutex
	buf    []byte
	closed bool
}

// Open creates the oto context and starts a player fed by Write. Only one
// Output may exist per process.
func Open(sampleRate, channels int, logger logrus.FieldLogger) (*Output, error) {
	ctx, ready, err := oto.NewContext(sampleRate, channels, oto.FormatSignedInt16LE)
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	pr, pw := io.Pipe()
	player := ctx.NewPlayer(pr)
	player.Play()

	out := newOutput(pw, player, logger)
	out.log.WithFields(logrus.Fields{
		"sample_rate": sampleRate,
		"channels":    channels,
	}).Info("audio device opened")

	return out, nil
}

func newOutput(w io.WriteCloser, player io.Closer, logger logrus.FieldLogger) *Output {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Output{w: w, player: player, log: logger.WithField("component", "device")}
}

func (o *Output) Write(samples []float32) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}

	o.buf = encode(o.buf, samples)
	if _, err := o.w.Write(o.buf); err != nil {
		return fmt.Errorf("writing to audio device: %w", err)
	}

	return nil
}

// Close stops the player. It is idempotent.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true

	werr := o.w.Close()
	perr := o.player.Close()
	if err := errors.Join(werr, perr); err != nil {
		return fmt.Errorf("closing audio device: %w", err)
	}
	o.log.Debug("audio device closed")

	return nil
}

// encode converts samples to signed 16-bit little endian PCM, reusing dst.
func encode(dst []byte, samples []float32) []byte {
	n := len(samples) * 2
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]

	for i, v := range samples {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(int16(utils.FloatToPCM(v, bitDepth))))
	}

	return dst
}
