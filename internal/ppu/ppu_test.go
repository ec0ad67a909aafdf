package ppu

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/remind-me-later/gbcore/internal/interrupt"
)

func newTestPPU() (*PPU, *interrupt.Controller) {
	irq := interrupt.New()
	return New(irq, false), irq
}

func TestModeSequencePerLine(t *testing.T) {
	p, _ := newTestPPU()
	require.Equal(t, ModeOAMScan, p.Mode())

	p.Tick(80)
	require.Equal(t, ModeTransfer, p.Mode())

	for p.Mode() == ModeTransfer {
		p.Tick(1)
	}
	require.Equal(t, ModeHBlank, p.Mode())
}

func TestVBlankEntersAtLine144(t *testing.T) {
	p, irq := newTestPPU()
	for i := 0; i < 144; i++ {
		p.Tick(dotsPerLine)
	}
	require.Equal(t, ModeVBlank, p.Mode())
	require.Equal(t, uint8(144), p.LY)
	require.NotZero(t, irq.Flag&(1<<interrupt.VBlank))
}

func TestFrameCountIncrementsAfterFullFrame(t *testing.T) {
	p, _ := newTestPPU()
	for i := 0; i < 154; i++ {
		p.Tick(dotsPerLine)
	}
	require.Equal(t, uint64(1), p.FrameCount())
	require.Equal(t, uint8(0), p.LY)
}

func TestOAMDMABlocksEverythingExceptHRAM(t *testing.T) {
	var dma DMA
	dma.Write(0xC0)
	require.True(t, dma.IsBlocking(), "DMA must block during its startup delay")

	for i := 0; i < 2; i++ {
		transfer, _, _ := dma.Step()
		require.False(t, transfer, "no byte should transfer during the 2 M-cycle startup window")
	}

	transfer, src, dst := dma.Step()
	require.True(t, transfer)
	require.Equal(t, uint16(0xC000), src)
	require.Equal(t, 0, dst)
	require.True(t, dma.IsBlocking())
}

func TestOAMDMATrailingBlockWindow(t *testing.T) {
	var dma DMA
	dma.Write(0xC0)
	for i := 0; i < 2; i++ {
		dma.Step()
	}
	for i := 0; i < 160; i++ {
		transfer, _, _ := dma.Step()
		require.True(t, transfer)
	}
	// one more Step call must still report blocking before the engine
	// goes idle (the documented 1 M-cycle trailing window).
	require.True(t, dma.IsBlocking())
	dma.Step()
	require.False(t, dma.IsBlocking())
}

func TestLYCCoincidenceFlag(t *testing.T) {
	p, _ := newTestPPU()
	p.LYC = 2
	for i := 0; i < 2; i++ {
		p.Tick(dotsPerLine)
	}
	require.Equal(t, uint8(2), p.LY)
	require.NotZero(t, p.readSTAT()&statLYCEqual)
}

func TestMonoPaletteDecode(t *testing.T) {
	pal := byteToMonoPalette(0xE4) // 11 10 01 00 -> shades 0,1,2,3
	require.Equal(t, monoPalette{0, 1, 2, 3}, pal)
	require.Equal(t, dmgShades[3], pal.rgba(3))
}
