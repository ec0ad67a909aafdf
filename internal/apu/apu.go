// Package apu implements the Game Boy's four-channel sound generator:
// two square channels (one with frequency sweep), a programmable wave
// channel, a noise channel, and the 512 Hz frame sequencer that drives
// their length/envelope/sweep units.
package apu

// AudioSink receives the mixed, pre-panned stereo stream. The core
// drives it synchronously from within RunFrame; implementations must
// not block.
type AudioSink interface {
	PushSample(left, right int16)
}

const (
	masterClock        = 4194304
	frameSequencerRate  = 512
	frameSequencerPeriod = masterClock / frameSequencerRate
)

// APU is the sound unit. It always runs at the base clock rate, even in
// CGB double speed - the caller must not scale Tick's argument.
type APU struct {
	enabled bool

	ch1 square
	ch2 square
	ch3 wave
	ch4 noise

	frameSeqCounter int
	frameSeqStep    uint8

	vinLeft, vinRight       bool
	volumeLeft, volumeRight uint8
	leftEnable, rightEnable [4]bool

	sampleAccumulator int
	samplePeriod      int // masterClock / sampleRate, fixed-point via integer accumulation
	sampleRate        uint32

	sink AudioSink
}

// New returns a powered-off APU that emits samples at sampleRate to
// sink (which may be nil, in which case samples are computed and
// discarded - useful for headless test ROM runs).
func New(sampleRate uint32, sink AudioSink) *APU {
	if sampleRate == 0 {
		sampleRate = 44100
	}
	a := &APU{sampleRate: sampleRate, sink: sink}
	a.ch1.hasSweep = true
	a.ch3.enabled = false
	return a
}

// Tick advances the APU by tCycles T-cycles at the base clock rate.
func (a *APU) Tick(tCycles int) {
	for i := 0; i < tCycles; i++ {
		a.tickOne()
	}
}

func (a *APU) tickOne() {
	if a.enabled {
		a.ch1.step()
		a.ch2.step()
		a.ch3.step()
		a.ch4.step()

		a.frameSeqCounter++
		if a.frameSeqCounter >= frameSequencerPeriod {
			a.frameSeqCounter = 0
			a.stepFrameSequencer()
		}
	}

	a.sampleAccumulator += int(a.sampleRate)
	if a.sampleAccumulator >= masterClock {
		a.sampleAccumulator -= masterClock
		a.emitSample()
	}
}

func (a *APU) stepFrameSequencer() {
	switch a.frameSeqStep {
	case 0, 2, 4, 6:
		a.ch1.clockLength()
		a.ch2.clockLength()
		a.ch3.clockLength()
		a.ch4.clockLength()
		if a.frameSeqStep == 2 || a.frameSeqStep == 6 {
			a.ch1.clockSweep()
		}
	case 7:
		a.ch1.clockEnvelope()
		a.ch2.clockEnvelope()
		a.ch4.clockEnvelope()
	}
	a.frameSeqStep = (a.frameSeqStep + 1) % 8
}

func (a *APU) emitSample() {
	if a.sink == nil {
		return
	}
	var left, right int32
	outs := [4]uint8{a.ch1.output(), a.ch2.output(), a.ch3.output(), a.ch4.output()}
	for i, out := range outs {
		if a.leftEnable[i] {
			left += int32(out)
		}
		if a.rightEnable[i] {
			right += int32(out)
		}
	}
	// each channel contributes 0-15; 4 channels sum to 0-60, scaled by
	// the 0-7 master volume and centered into a signed 16-bit sample.
	left = (left - 30) * int32(a.volumeLeft+1) * 64
	right = (right - 30) * int32(a.volumeRight+1) * 64
	a.sink.PushSample(clampSample(left), clampSample(right))
}

func clampSample(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// SetSink replaces the audio sink that New was given.
func (a *APU) SetSink(sink AudioSink) { a.sink = sink }
