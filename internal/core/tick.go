package core

import (
	"github.com/remind-me-later/gbcore/internal/ppu"
)

// TickM advances every subsystem by one CPU M-cycle, in the order PPU
// (and APU), OAM-DMA, then timer and serial port. The PPU and APU count
// base-clock T-cycles: 4 per CPU M-cycle at normal speed, 2 in CGB double
// speed. The timer and serial port run at the CPU's own rate and always
// get 4 T-cycles per CPU M-cycle.
func (c *Core) TickM() {
	baseCycles := 4
	if c.doubleSpeed {
		baseCycles = 2
	}
	c.tickBaseRate(baseCycles)

	c.stepOAMDMA()

	c.tmr.Tick(4)
	c.sio.Tick(4)
}

// tickSubsystems advances ppu/apu, timer and serial port by one CPU
// M-cycle's worth of T-cycles (scaled as in TickM) without touching the
// CPU's own clock. It is used by the general-purpose HDMA engine to
// account for the CPU-halting cost of a transfer that completes in a
// single core-level call rather than one CPU step at a time.
func (c *Core) tickSubsystems() {
	baseCycles := 4
	if c.doubleSpeed {
		baseCycles = 2
	}
	c.tickBaseRate(baseCycles)

	c.tmr.Tick(4)
	c.sio.Tick(4)
}

// tickBaseRate advances the PPU and APU by tCycles T-cycles (always at
// the base clock, never doubled) and drives the H-blank-paced HDMA
// engine and OAM-DMA byte copies off the PPU's mode transitions.
func (c *Core) tickBaseRate(tCycles int) {
	before := c.ppu.Mode()
	c.ppu.Tick(tCycles)
	c.apu.Tick(tCycles)
	after := c.ppu.Mode()

	if before != ppu.ModeHBlank && after == ppu.ModeHBlank && c.ppu.HDMAUnit.Active() {
		src, dst := c.ppu.HDMAUnit.NextBlock()
		c.copyHDMABlock(src, dst)
	}
}

// stepOAMDMA advances the OAM-DMA engine by one M-cycle, copying one
// byte from the raw memory map (bypassing CPU access blocking) straight
// into OAM when the engine reports a transfer is due.
func (c *Core) stepOAMDMA() {
	transfer, srcAddr, destIdx := c.ppu.DMAUnit.Step()
	if transfer {
		c.ppu.WriteOAMDirect(destIdx, c.hdmaSourceByte(srcAddr))
	}
}

// IME reports whether the interrupt master enable flag is currently set.
func (c *Core) IME() bool { return c.irq.IME }

// SetIME sets the interrupt master enable flag. The CPU calls this with
// the already-resolved value; the one-instruction EI delay is tracked
// entirely within the cpu package.
func (c *Core) SetIME(v bool) { c.irq.IME = v }

// PendingInterrupt reports whether any enabled interrupt is currently
// requested, independent of IME - the condition that wakes HALT.
func (c *Core) PendingInterrupt() bool { return c.irq.HasPending() }

// AckInterrupt returns the vector of the highest-priority pending
// interrupt and clears its IF bit. It must only be called when
// PendingInterrupt reports true.
func (c *Core) AckInterrupt() uint16 {
	k, ok := c.irq.Highest()
	if !ok {
		panic("core: AckInterrupt called with nothing pending")
	}
	c.irq.Clear(k)
	return k.Vector()
}

// DoubleSpeed reports whether the CPU is currently running at double
// speed (CGB only, after a successful speed switch).
func (c *Core) DoubleSpeed() bool { return c.doubleSpeed }

// RequestSpeedSwitch performs the CGB speed switch armed by writing bit
// 0 of KEY1 and then executing STOP. Real hardware stretches this into
// a multi-thousand-cycle stall while the clock divider resyncs; that
// stall is not modeled here since nothing observable depends on its
// exact length once boot-strap code has finished running.
func (c *Core) RequestSpeedSwitch() {
	if !c.model.IsCGB() || c.key1&0x01 == 0 {
		return
	}
	c.doubleSpeed = !c.doubleSpeed
	c.key1 &^= 0x01
}
