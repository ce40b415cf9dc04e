// SPDX-License-Identifier: EPL-2.0

package meter

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"
)

type fixedSource struct {
	left, right float64
	calls       atomic.Int64
}

func (s *fixedSource) OutputLevels() (float64, float64) {
	s.calls.Add(1)
	return s.left, s.right
}

func TestMonitor_Sample(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		left, right float64
		wantL       float64
		wantR       float64
	}{
		{"in range", 0.25, 0.75, 0.25, 0.75},
		{"clamped", -0.5, 3, 0, 1},
		{"nan is silence", math.NaN(), 0.5, 0, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotL, gotR float64
			m := New(&fixedSource{left: tt.left, right: tt.right}, 0, func(l, r float64) { gotL, gotR = l, r })
			m.Sample()

			l, r := m.Levels()
			if l != tt.wantL || r != tt.wantR {
				t.Errorf("Levels() = %v, %v; want %v, %v", l, r, tt.wantL, tt.wantR)
			}
			if gotL != tt.wantL || gotR != tt.wantR {
				t.Errorf("callback got %v, %v; want %v, %v", gotL, gotR, tt.wantL, tt.wantR)
			}
		})
	}
}

func TestMonitor_ZeroBeforeFirstSample(t *testing.T) {
	t.Parallel()

	m := New(&fixedSource{left: 1, right: 1}, time.Hour, nil)
	if l, r := m.Levels(); l != 0 || r != 0 {
		t.Errorf("Levels() = %v, %v; want 0, 0", l, r)
	}
	if m.Interval() != time.Hour {
		t.Errorf("Interval() = %v, want 1h", m.Interval())
	}
	if New(&fixedSource{}, 0, nil).Interval() != DefaultInterval {
		t.Error("zero interval should fall back to DefaultInterval")
	}
}

func TestMonitor_Polls(t *testing.T) {
	t.Parallel()

	src := &fixedSource{left: 0.5, right: 0.6}
	ticks := make(chan struct{}, 16)
	m := New(src, time.Millisecond, func(float64, float64) {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := m.Start(context.Background()); !errors.Is(err, ErrRunning) {
		t.Errorf("second Start() error = %v, want %v", err, ErrRunning)
	}

	for range 3 {
		select {
		case <-ticks:
		case <-time.After(2 * time.Second):
			t.Fatal("monitor did not tick")
		}
	}

	m.Stop()
	m.Stop()

	after := src.calls.Load()
	time.Sleep(20 * time.Millisecond)
	if src.calls.Load() != after {
		t.Error("monitor kept polling after Stop")
	}
	if l, r := m.Levels(); l != 0.5 || r != 0.6 {
		t.Errorf("Levels() = %v, %v; want last sample kept", l, r)
	}

	// A stopped monitor can be started again.
	if err := m.Start(context.Background()); err != nil {
		t.Errorf("restart error = %v", err)
	}
	m.Stop()
}

func TestMonitor_ContextCancel(t *testing.T) {
	t.Parallel()

	src := &fixedSource{}
	m := New(src, time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()

	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() blocked after context cancel")
	}
}

func TestMonitor_SampleDoesNotAllocate(t *testing.T) {
	m := New(&fixedSource{left: 0.1, right: 0.2}, 0, func(float64, float64) {})

	if allocs := testing.AllocsPerRun(100, m.Sample); allocs != 0 {
		t.Errorf("Sample allocated %v times per run", allocs)
	}
}
