// Package serial implements the DMG/CGB link-cable port (SB/SC, $FF01-
// $FF02) as seen with nothing attached: every transfer "completes" after
// the internal clock has shifted 8 bits, with $FF shifted in, which is exactly
// the configuration the Blargg test ROMs use to report PASS/FAIL over
// the serial port with no link partner present.
package serial

import "github.com/remind-me-later/gbcore/internal/interrupt"

const bitPeriod = 512 // T-cycles per shifted bit at the internal 8192 Hz clock

// Controller is the serial transfer unit.
type Controller struct {
	sb uint8 // $FF01 - serial transfer data
	sc uint8 // $FF02 - serial transfer control

	active     bool
	bitsLeft   uint8
	tCycleLeft int

	// Output accumulates every byte shifted out under the internal
	// clock, in order. It is a test/diagnostic surface, not part of
	// the bus-addressable state.
	Output []byte

	irq *interrupt.Controller
}

// New returns an idle Controller wired to irq for the serial interrupt.
func New(irq *interrupt.Controller) *Controller {
	return &Controller{irq: irq}
}

// Read returns SB or SC.
func (c *Controller) Read(address uint16) uint8 {
	switch address & 0xFF {
	case 0x01:
		return c.sb
	case 0x02:
		return c.sc | 0x7E
	}
	panic("serial: illegal read address")
}

// Write stores to SB or SC. Writing SC with bit 7 and bit 0 both set (an
// internal-clock transfer request) arms an 8-bit shift; with no link
// cable modeled, the transfer completes unconditionally after 8 bit
// periods, the byte in SB is appended to Output, and SB then reads $FF.
func (c *Controller) Write(address uint16, value uint8) {
	switch address & 0xFF {
	case 0x01:
		c.sb = value
	case 0x02:
		c.sc = value & 0x83
		if c.sc&0x81 == 0x81 {
			c.active = true
			c.bitsLeft = 8
			c.tCycleLeft = bitPeriod
		} else {
			c.active = false
		}
	default:
		panic("serial: illegal write address")
	}
}

// Tick advances the internal shift clock by tCycles T-cycles.
func (c *Controller) Tick(tCycles int) {
	if !c.active {
		return
	}
	c.tCycleLeft -= tCycles
	for c.tCycleLeft <= 0 && c.active {
		c.bitsLeft--
		if c.bitsLeft == 0 {
			c.Output = append(c.Output, c.sb)
			c.sb = 0xFF // no link partner: shifted-in bits read as 1
			c.sc &^= 0x80
			c.active = false
			c.irq.Request(interrupt.Serial)
		} else {
			c.tCycleLeft += bitPeriod
		}
	}
}
