package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/remind-me-later/gbcore/internal/joypad"
)

// newTestROM builds a minimal, header-valid cartridge image (32KiB,
// ROM ONLY) with program bytes placed at $0100.
func newTestROM(program ...uint8) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[0x0100:], program)
	rom[0x0148] = 0x00 // 32KiB
	rom[0x0149] = 0x00 // no RAM
	var sum uint8
	for i := 0x0134; i <= 0x014C; i++ {
		sum = sum - rom[i] - 1
	}
	rom[0x014D] = sum
	return rom
}

func TestRunFrameReportsLDBBBreakpointOnce(t *testing.T) {
	// LD B,B (breakpoint) then an infinite JR loop in place.
	rom := newTestROM(0x40, 0x18, 0xFE)
	c, err := New(rom)
	require.NoError(t, err)
	c.EnableDebugBreakpoint()

	c.RunFrame()
	require.True(t, c.CheckAndResetLDBBBreakpoint(), "LD B,B must have executed within the first frame")
	require.False(t, c.CheckAndResetLDBBBreakpoint(), "the breakpoint flag must be one-shot")
}

func TestPressReleaseRaisesJoypadInterrupt(t *testing.T) {
	rom := newTestROM(0x00)
	c, err := New(rom)
	require.NoError(t, err)

	require.Zero(t, c.irq.Flag&0x10)
	// the joypad interrupt only fires while the pressed button's row is
	// selected; select the face-key row before pressing.
	c.Write8(0xFF00, 0x10)
	c.Press(joypad.ButtonA)
	require.NotZero(t, c.irq.Flag&0x10)
	c.Release(joypad.ButtonA)
}

func TestOAMDMABlocksNonHRAMReadsFromTheCPU(t *testing.T) {
	rom := newTestROM(0x00)
	c, err := New(rom)
	require.NoError(t, err)

	c.Write8(0xFF46, 0xC0) // arm an OAM-DMA from $C000
	for i := 0; i < 3; i++ {
		c.TickM() // consume the 2 M-cycle startup delay plus one transfer cycle
	}
	require.Equal(t, uint8(0xFF), c.Read8(0x0000), "non-HRAM reads must return 0xFF while OAM-DMA is active")
	require.Equal(t, c.hram[0], c.Read8(0xFF80), "HRAM must remain visible during OAM-DMA")
}

func TestMBC1BankZeroAliasesThroughTheFullBus(t *testing.T) {
	rom := make([]byte, 0x20000) // 128KiB, 8 banks
	for i := 0; i < 8; i++ {
		rom[i*0x4000] = byte(i)
	}
	rom[0x0147] = 0x01 // MBC1
	rom[0x0148] = 0x02 // 128KiB
	rom[0x0149] = 0x00
	var sum uint8
	for i := 0x0134; i <= 0x014C; i++ {
		sum = sum - rom[i] - 1
	}
	rom[0x014D] = sum

	c, err := New(rom)
	require.NoError(t, err)

	c.Write8(0x2000, 0x00)
	require.Equal(t, uint8(1), c.Read8(0x4000))
}
