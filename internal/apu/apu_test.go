package apu

import "testing"

type collectingSink struct {
	left, right []int16
}

func (s *collectingSink) PushSample(l, r int16) {
	s.left = append(s.left, l)
	s.right = append(s.right, r)
}

func TestPowerOffSilencesChannels(t *testing.T) {
	sink := &collectingSink{}
	a := New(44100, sink)
	a.Write(AddrNR52, 0x80)
	a.Write(AddrNR12, 0xF0) // max envelope, DAC on
	a.Write(AddrNR14, 0x80) // trigger

	if !a.ch1.enabled {
		t.Fatalf("expected channel 1 to be enabled after trigger")
	}

	a.Write(AddrNR52, 0x00)
	if a.ch1.enabled {
		t.Fatalf("expected channel 1 to be disabled after power-off")
	}
	if a.Read(AddrNR52)&0x80 != 0 {
		t.Fatalf("expected NR52 power bit clear after power-off")
	}
}

func TestRegisterWritesIgnoredWhilePoweredOff(t *testing.T) {
	a := New(44100, nil)
	a.Write(AddrNR11, 0xFF)
	if a.ch1.duty != 0 {
		t.Fatalf("expected writes to be ignored while APU is powered off")
	}
}

func TestWaveRAMWritableWhilePoweredOff(t *testing.T) {
	a := New(44100, nil)
	a.Write(0xFF30, 0xAB)
	if a.Read(0xFF30) != 0xAB {
		t.Fatalf("expected wave RAM access regardless of power state")
	}
}

func TestLengthCounterDisablesChannel(t *testing.T) {
	a := New(44100, nil)
	a.Write(AddrNR52, 0x80)
	a.Write(AddrNR12, 0xF0)
	a.Write(AddrNR11, 0x3F) // length load = 63, one step from max
	a.Write(AddrNR14, 0xC0) // trigger + length enable

	for i := 0; i < 64; i++ {
		a.stepFrameSequencer()
	}
	if a.ch1.enabled {
		t.Fatalf("expected channel to be disabled once its length counter expires")
	}
}

func TestSquareDutyOutputPattern(t *testing.T) {
	c := square{dacOn: true, enabled: true, volume: 15, duty: 2}
	var got [8]uint8
	for i := range got {
		c.dutyStep = uint8(i)
		got[i] = c.output()
	}
	want := [8]uint8{15, 0, 0, 0, 0, 15, 15, 15}
	if got != want {
		t.Fatalf("duty 2 waveform = %v, want %v", got, want)
	}
}

func TestNoiseLFSRWidthMode(t *testing.T) {
	c := noise{dacOn: true, widthMode: true}
	c.trigger()
	for i := 0; i < 100; i++ {
		c.step()
	}
	// bit 6 must always mirror bit 14 in 7-bit mode.
	if (c.lfsr>>6)&1 != (c.lfsr>>14)&1 {
		t.Fatalf("7-bit mode should mirror bit 14 into bit 6")
	}
}
