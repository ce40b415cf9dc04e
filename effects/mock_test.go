// SPDX-License-Identifier: EPL-2.0

package effects

// gainStage multiplies every sample by gain.
type gainStage struct {
	Switch
	gain   float32
	resets int
}

func (g *gainStage) Process(buf []float32) {
	for i := range buf {
		buf[i] *= g.gain
	}
}

func (g *gainStage) Reset() { g.resets++ }

// offsetStage adds offset to every sample.
type offsetStage struct {
	Switch
	offset float32
	resets int
}

func (o *offsetStage) Process(buf []float32) {
	for i := range buf {
		buf[i] += o.offset
	}
}

func (o *offsetStage) Reset() { o.resets++ }

// recordingStage remembers the length of every buffer it saw.
type recordingStage struct {
	Switch
	lengths []int
}

func (r *recordingStage) Process(buf []float32) { r.lengths = append(r.lengths, len(buf)) }
func (r *recordingStage) Reset()                {}

type panicStage struct{ Switch }

func (*panicStage) Process([]float32) { panic("stage failure") }
func (*panicStage) Reset()            {}
