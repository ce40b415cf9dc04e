// SPDX-License-Identifier: EPL-2.0

package effects

import (
	"slices"
	"testing"
)

func TestChain_OrderMatters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stages func() []Stage
		want   float32
	}{
		{
			name:   "gain then offset",
			stages: func() []Stage { return []Stage{&gainStage{gain: 2}, &offsetStage{offset: 1}} },
			want:   3,
		},
		{
			name:   "offset then gain",
			stages: func() []Stage { return []Stage{&offsetStage{offset: 1}, &gainStage{gain: 2}} },
			want:   4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			chain := NewChain(tt.stages()...)
			buf := []float32{1, 1, 1}
			chain.Process(buf)

			for i, v := range buf {
				if v != tt.want {
					t.Errorf("buf[%d] = %v, want %v", i, v, tt.want)
				}
			}
		})
	}
}

func TestChain_DisabledIsIdentity(t *testing.T) {
	t.Parallel()

	inputs := [][]float32{
		nil,
		{},
		{0.25, -0.5, 1, -1, 0},
	}

	for _, in := range inputs {
		chain := NewChain(&gainStage{gain: 0}, &offsetStage{offset: 3})
		chain.SetEnabled(false)

		buf := slices.Clone(in)
		chain.Process(buf)

		if !slices.Equal(buf, in) {
			t.Errorf("disabled chain changed %v to %v", in, buf)
		}
	}
}

func TestChain_DisabledStageSkipped(t *testing.T) {
	t.Parallel()

	gain := &gainStage{gain: 10}
	gain.SetEnabled(false)
	chain := NewChain(gain, &offsetStage{offset: 0.5})

	buf := []float32{1}
	chain.Process(buf)

	if buf[0] != 1.5 {
		t.Errorf("buf[0] = %v, want 1.5", buf[0])
	}
}

func TestChain_EmptyBuffer(t *testing.T) {
	t.Parallel()

	rec := &recordingStage{}
	chain := NewChain(rec)

	chain.Process(nil)
	chain.Process([]float32{})
	chain.Process(make([]float32, 7))

	if !slices.Equal(rec.lengths, []int{0, 0, 7}) {
		t.Errorf("stage saw lengths %v, want [0 0 7]", rec.lengths)
	}
}

func TestChain_ResetForwardsToAllStages(t *testing.T) {
	t.Parallel()

	a := &gainStage{gain: 1}
	b := &offsetStage{}
	b.SetEnabled(false)
	chain := NewChain(a, b)

	chain.Reset()
	chain.Reset()

	if a.resets != 2 || b.resets != 2 {
		t.Errorf("resets = %d, %d; want 2, 2", a.resets, b.resets)
	}
}

func TestChain_DuplicateStage(t *testing.T) {
	t.Parallel()

	g := &gainStage{gain: 2}
	chain := NewChain(g, g)

	buf := []float32{1}
	chain.Process(buf)

	if buf[0] != 4 {
		t.Errorf("buf[0] = %v, want 4", buf[0])
	}
	if chain.Len() != 2 {
		t.Errorf("Len() = %d, want 2", chain.Len())
	}
}

func TestChain_StagesIsCopy(t *testing.T) {
	t.Parallel()

	chain := NewChain(&gainStage{gain: 1})
	stages := chain.Stages()
	stages[0] = &offsetStage{}

	if _, ok := chain.Stages()[0].(*gainStage); !ok {
		t.Error("modifying Stages() result changed the chain")
	}
}

func TestChain_EnabledToggle(t *testing.T) {
	t.Parallel()

	chain := NewChain()
	if !chain.Enabled() {
		t.Fatal("new chain should be enabled")
	}
	chain.SetEnabled(false)
	if chain.Enabled() {
		t.Error("Enabled() = true after SetEnabled(false)")
	}
	chain.SetEnabled(true)
	if !chain.Enabled() {
		t.Error("Enabled() = false after SetEnabled(true)")
	}
}

func TestChain_PanicPropagates(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("Process() did not propagate the stage panic")
		}
	}()

	NewChain(&panicStage{}).Process([]float32{1})
}

func TestChain_ProcessDoesNotAllocate(t *testing.T) {
	chain := NewChain(&gainStage{gain: 0.5}, &offsetStage{offset: 0.1})
	buf := make([]float32, 1024)

	if allocs := testing.AllocsPerRun(100, func() { chain.Process(buf) }); allocs != 0 {
		t.Errorf("enabled Process allocated %v times per run", allocs)
	}

	chain.SetEnabled(false)
	if allocs := testing.AllocsPerRun(100, func() { chain.Process(buf) }); allocs != 0 {
		t.Errorf("disabled Process allocated %v times per run", allocs)
	}
}

func BenchmarkChain_Process(b *testing.B) {
	chain := NewChain(&gainStage{gain: 0.5}, &offsetStage{offset: 0.1})
	buf := make([]float32, 2048)

	b.ResetTimer()
	for b.Loop() {
		chain.Process(buf)
	}
}
