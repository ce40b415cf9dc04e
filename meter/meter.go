// SPDX-License-Identifier: EPL-2.0

// Package meter polls output levels on a fixed period for display.
package meter

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/mixdeck/utils"
)

// DefaultInterval is the polling period used when none is given.
const DefaultInterval = 50 * time.Millisecond

// ErrRunning is returned by Start on a monitor that is already polling.
var ErrRunning = errors.New("level monitor already running")

// LevelSource reports instantaneous peak levels in [0, 1].
type LevelSource interface {
	OutputLevels() (left, right float64)
}

// Monitor samples a LevelSource every Interval, independent of playback
// state. The latest values are stored atomically and may be read from any
// goroutine.
type Monitor struct {
	src      LevelSource
	interval time.Duration
	onLevels func(left, right float64)

	left  atomic.Uint64
	right atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns a stopped monitor. onLevels, if not nil, is called on the
// monitor goroutine after every sample and must not block.
func New(src LevelSource, interval time.Duration, onLevels func(left, right float64)) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{src: src, interval: interval, onLevels: onLevels}
}

func (m *Monitor) Interval() time.Duration { return m.interval }

// Levels returns the last sampled values, zero before the first sample.
func (m *Monitor) Levels() (left, right float64) {
	return math.Float64frombits(m.left.Load()), math.Float64frombits(m.right.Load())
}

// Sample reads the source once and publishes the result.
func (m *Monitor) Sample() {
	l, r := m.src.OutputLevels()
	l, r = sanitize(l), sanitize(r)

	m.left.Store(math.Float64bits(l))
	m.right.Store(math.Float64bits(r))

	if m.onLevels != nil {
		m.onLevels(l, r)
	}
}

// Start polls until Stop is called or ctx is done.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done != nil {
		return ErrRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel, m.done = cancel, done

	go m.run(ctx, done)

	return nil
}

// Stop ends polling and waits for the goroutine to exit. The last levels
// are kept. Stop on a stopped monitor does nothing.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sample()
		}
	}
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return utils.Clamp(v, 0, 1)
}
