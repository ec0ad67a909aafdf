// Package timer provides the Game Boy's DIV/TIMA/TMA/TAC timer unit. TIMA
// increments on a falling edge of a TAC-selected bit of a free-running
// 16-bit internal counter, not on a fixed-period countdown; that is what
// makes the TAC write glitch and the reload delay observable.
package timer

import "github.com/remind-me-later/gbcore/internal/interrupt"

// selectBit maps the low two bits of TAC to the internal-counter bit that
// gates TIMA increments: 4096 Hz, 262144 Hz, 65536 Hz, 16384 Hz.
var selectBit = [4]uint8{9, 3, 5, 7}

// Controller is the timer/divider unit.
type Controller struct {
	counter uint16 // free-running internal divider, high byte is DIV
	tima    uint8
	tma     uint8
	tac     uint8

	// reloading is true during the one M-cycle window after a TIMA
	// overflow in which TIMA reads 0 and has not yet been reloaded
	// from TMA. reloadCountdown counts the remaining T-cycles until
	// the reload actually lands (4 T-cycles = 1 M-cycle after overflow).
	reloading       bool
	reloadCountdown int

	irq *interrupt.Controller
}

// New returns a Controller wired to irq for raising the timer interrupt.
// The internal counter resets to the documented DMG post-boot value.
func New(irq *interrupt.Controller) *Controller {
	return &Controller{counter: 0xABCC, irq: irq}
}

func (c *Controller) enabled() bool {
	return c.tac&0x04 != 0
}

func (c *Controller) selectedBit() uint16 {
	return 1 << selectBit[c.tac&0x03]
}

// timaBitSet returns whether the TAC-selected bit of the internal counter
// is currently set, gated by the timer-enable bit.
func (c *Controller) timaBitSet() bool {
	return c.enabled() && c.counter&c.selectedBit() != 0
}

// Tick advances the internal counter by the given number of T-cycles. The
// timer is one of the two subsystems that runs at CPU rate: it gets 4
// T-cycles per CPU M-cycle at either CGB speed, unlike the PPU and APU
// which always count base-clock T-cycles.
func (c *Controller) Tick(tCycles int) {
	for i := 0; i < tCycles; i++ {
		c.tickOne()
	}
}

func (c *Controller) tickOne() {
	if c.reloading {
		c.reloadCountdown--
		if c.reloadCountdown <= 0 {
			c.reloading = false
			c.tima = c.tma
			c.irq.Request(interrupt.Timer)
		}
	}

	before := c.timaBitSet()
	c.counter++
	after := c.timaBitSet()

	if before && !after {
		c.incrementTIMA()
	}
}

func (c *Controller) incrementTIMA() {
	if c.tima == 0xFF {
		c.tima = 0
		c.reloading = true
		c.reloadCountdown = 4
	} else {
		c.tima++
	}
}

// Read returns the current value of DIV, TIMA, TMA or TAC.
func (c *Controller) Read(address uint16) uint8 {
	switch address & 0xFF {
	case 0x04:
		return uint8(c.counter >> 8)
	case 0x05:
		if c.reloading {
			return 0
		}
		return c.tima
	case 0x06:
		return c.tma
	case 0x07:
		return c.tac | 0xF8
	}
	panic("timer: illegal read address")
}

// Write handles a CPU write to DIV, TIMA, TMA or TAC, including the DIV
// reset-on-write rule, the TIMA-during-reload rule, and the falling-edge
// glitch where disabling TAC (or changing its selected bit) can itself
// cause a spurious TIMA increment.
func (c *Controller) Write(address uint16, value uint8) {
	switch address & 0xFF {
	case 0x04:
		before := c.timaBitSet()
		c.counter = 0
		if before {
			c.incrementTIMA()
		}
	case 0x05:
		if c.reloading {
			// a write to TIMA during the reload window cancels the
			// pending reload; the written value sticks.
			c.reloading = false
		}
		c.tima = value
	case 0x06:
		c.tma = value
		if c.reloading {
			c.tima = value
		}
	case 0x07:
		before := c.timaBitSet()
		c.tac = value & 0x07
		after := c.timaBitSet()
		if before && !after {
			c.incrementTIMA()
		}
	default:
		panic("timer: illegal write address")
	}
}
