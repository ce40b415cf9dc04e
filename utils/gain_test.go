// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	t.Parallel()

	if got := Clamp(1.5, 0, 1); got != 1 {
		t.Errorf("Clamp(1.5) = %v, want 1", got)
	}
	if got := Clamp(-0.1, 0, 1); got != 0 {
		t.Errorf("Clamp(-0.1) = %v, want 0", got)
	}
	if got := Clamp(0.4, 0, 1); got != 0.4 {
		t.Errorf("Clamp(0.4) = %v, want 0.4", got)
	}
}

func TestSemitonesToRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		semitones float64
		want      float64
	}{
		{0, 1},
		{12, 2},
		{-12, 0.5},
		{7, 1.4983},
	}

	for _, tt := range tests {
		if got := SemitonesToRatio(tt.semitones); math.Abs(got-tt.want) > 0.0001 {
			t.Errorf("SemitonesToRatio(%v) = %v, want %v", tt.semitones, got, tt.want)
		}
	}
}

func TestTempoToRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		percent float64
		want    float64
	}{
		{0, 1},
		{50, 1.5},
		{-50, 0.5},
		{-100, 0.05},
		{-400, 0.05},
	}

	for _, tt := range tests {
		if got := TempoToRatio(tt.percent); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("TempoToRatio(%v) = %v, want %v", tt.percent, got, tt.want)
		}
	}
}
