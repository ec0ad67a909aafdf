package cpu

func (c *CPU) jumpRelative(take bool) {
	offset := int8(c.fetch())
	if !take {
		return
	}
	c.PC = uint16(int32(c.PC) + int32(offset))
	c.tickInternal()
}

func (c *CPU) jumpAbsolute(take bool) {
	lo := c.fetch()
	hi := c.fetch()
	addr := uint16(hi)<<8 | uint16(lo)
	if !take {
		return
	}
	c.PC = addr
	c.tickInternal()
}

func (c *CPU) call(take bool) {
	lo := c.fetch()
	hi := c.fetch()
	addr := uint16(hi)<<8 | uint16(lo)
	if !take {
		return
	}
	c.tickInternal()
	c.SP--
	c.writeByte(c.SP, uint8(c.PC>>8))
	c.SP--
	c.writeByte(c.SP, uint8(c.PC))
	c.PC = addr
}

func (c *CPU) ret() {
	lo := c.readByte(c.SP)
	c.SP++
	hi := c.readByte(c.SP)
	c.SP++
	c.PC = uint16(hi)<<8 | uint16(lo)
	c.tickInternal()
}

func (c *CPU) retConditional(ccIdx uint8) {
	c.tickInternal()
	if !c.condition(ccIdx) {
		return
	}
	c.ret()
}

func (c *CPU) rst(addr uint8) {
	c.tickInternal()
	c.SP--
	c.writeByte(c.SP, uint8(c.PC>>8))
	c.SP--
	c.writeByte(c.SP, uint8(c.PC))
	c.PC = uint16(addr)
}

// halt enters HALT, reproducing the documented halt-bug behavior: with
// IME off and a pending-but-unserviced interrupt, the next opcode fetch
// reads the right byte but PC fails to advance, so the following
// instruction decodes the same byte a second time.
func (c *CPU) halt() {
	switch {
	case c.bus.IME():
		c.mode = modeHalt
	case c.bus.PendingInterrupt():
		c.mode = modeHaltBug
	default:
		c.mode = modeHaltDI
	}
}

// stop enters STOP. On CGB, if KEY1's armed bit is set this instead
// performs (or begins) a double-speed switch; the bus is the owner of
// that state since it also needs to rescale every ticked subsystem.
func (c *CPU) stop() {
	if !c.bus.PendingInterrupt() {
		c.PC++ // STOP is a 2-byte opcode whose second byte is conventionally 0x00
	}
	wasDouble := c.bus.DoubleSpeed()
	c.bus.RequestSpeedSwitch()
	if c.bus.DoubleSpeed() == wasDouble {
		c.mode = modeStop
	}
}

var rp3 = [4]struct {
	get func(*CPU) uint16
	set func(*CPU, uint16)
}{
	{(*CPU).bc, (*CPU).setBC},
	{(*CPU).de, (*CPU).setDE},
	{(*CPU).hl, (*CPU).setHL},
	{(*CPU).af, (*CPU).setAF},
}

func (c *CPU) pushFrom(idx uint8) {
	c.tickInternal()
	v := rp3[idx].get(c)
	c.SP--
	c.writeByte(c.SP, uint8(v>>8))
	c.SP--
	c.writeByte(c.SP, uint8(v))
}

func (c *CPU) popInto(idx uint8) {
	lo := c.readByte(c.SP)
	c.SP++
	hi := c.readByte(c.SP)
	c.SP++
	rp3[idx].set(c, uint16(hi)<<8|uint16(lo))
}
