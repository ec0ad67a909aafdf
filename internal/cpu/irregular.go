package cpu

// irregular flags every opcode that doesn't fit the uniform LD/ALU/INC/
// DEC blocks decode.go handles generically.
var irregular [256]bool

func init() {
	for op := 0; op < 0x40; op++ {
		z := op & 0x07
		if z == 0 || z == 1 || z == 2 || z == 3 || z == 7 {
			irregular[op] = true
		}
	}
	irregular[0x76] = true // HALT, otherwise decodes as LD (HL),(HL)
	for op := 0xC0; op <= 0xFF; op++ {
		irregular[op] = true
	}
}

var rp = [4]func(*CPU) uint16{
	(*CPU).bc, (*CPU).de, (*CPU).hl, func(c *CPU) uint16 { return c.SP },
}
var rpSet = [4]func(*CPU, uint16){
	(*CPU).setBC, (*CPU).setDE, (*CPU).setHL, func(c *CPU, v uint16) { c.SP = v },
}

func (c *CPU) condition(cc uint8) bool {
	switch cc {
	case 0:
		return !c.flag(FlagZero)
	case 1:
		return c.flag(FlagZero)
	case 2:
		return !c.flag(FlagCarry)
	case 3:
		return c.flag(FlagCarry)
	}
	return false
}

// executeIrregular runs every opcode decode.go routes here: the
// control-flow instructions, 16-bit loads/arithmetic, stack ops, and
// the handful of singleton 8-bit oddities (DAA, CPL, SCF, CCF, HALT,
// STOP, EI/DI).
func (c *CPU) executeIrregular(opcode uint8) {
	y := (opcode >> 3) & 0x07
	z := opcode & 0x07

	if opcode < 0x40 {
		c.executeBlock0(opcode, y, z)
		return
	}
	if opcode == 0x76 {
		c.halt()
		return
	}
	c.executeBlock3(opcode, y, z)
}

func (c *CPU) executeBlock0(opcode, y, z uint8) {
	switch z {
	case 0:
		switch y {
		case 0: // NOP
		case 1: // LD (a16),SP
			lo := c.fetch()
			hi := c.fetch()
			addr := uint16(hi)<<8 | uint16(lo)
			c.writeByte(addr, uint8(c.SP))
			c.writeByte(addr+1, uint8(c.SP>>8))
		case 2: // STOP
			c.stop()
		case 3: // JR r8
			c.jumpRelative(true)
		default: // JR cc,r8
			c.jumpRelative(c.condition(y - 4))
		}
	case 1:
		if y%2 == 0 {
			lo := c.fetch()
			hi := c.fetch()
			rpSet[y/2](c, uint16(hi)<<8|uint16(lo))
		} else {
			c.setHL(c.add16(c.hl(), rp[y/2](c)))
			c.tickInternal()
		}
	case 2:
		addr := c.rp2Address(y)
		if y%2 == 0 {
			c.writeByte(addr, c.A)
		} else {
			c.A = c.readByte(addr)
		}
	case 3:
		r := y / 2
		if y%2 == 0 {
			rpSet[r](c, rp[r](c)+1)
		} else {
			rpSet[r](c, rp[r](c)-1)
		}
		c.tickInternal()
	case 7:
		switch y {
		case 0:
			c.A = c.rlc(c.A)
			c.setFlag(FlagZero, false)
		case 1:
			c.A = c.rrc(c.A)
			c.setFlag(FlagZero, false)
		case 2:
			c.A = c.rl(c.A)
			c.setFlag(FlagZero, false)
		case 3:
			c.A = c.rr(c.A)
			c.setFlag(FlagZero, false)
		case 4:
			c.daa()
		case 5:
			c.A = ^c.A
			c.setFlag(FlagSubtract, true)
			c.setFlag(FlagHalfCarry, true)
		case 6:
			c.setFlag(FlagSubtract, false)
			c.setFlag(FlagHalfCarry, false)
			c.setFlag(FlagCarry, true)
		case 7:
			c.setFlag(FlagSubtract, false)
			c.setFlag(FlagHalfCarry, false)
			c.setFlag(FlagCarry, !c.flag(FlagCarry))
		}
	}
}

// rp2Address resolves the (BC)/(DE)/(HL+)/(HL-) operand used by the
// 0x02/0x12/0x22/0x32 and 0x0A/0x1A/0x2A/0x3A opcode families.
func (c *CPU) rp2Address(y uint8) uint16 {
	switch y / 2 {
	case 0:
		return c.bc()
	case 1:
		return c.de()
	case 2:
		addr := c.hl()
		c.setHL(addr + 1)
		return addr
	default:
		addr := c.hl()
		c.setHL(addr - 1)
		return addr
	}
}

func (c *CPU) executeBlock3(opcode, y, z uint8) {
	switch {
	case z == 0 && y < 4: // RET cc
		c.retConditional(y)
	case z == 0 && y == 4: // LDH (a8),A
		addr := 0xFF00 | uint16(c.fetch())
		c.writeByte(addr, c.A)
	case z == 0 && y == 5: // ADD SP,e8
		c.SP = c.addSPSigned(int8(c.fetch()))
		c.tickInternal()
		c.tickInternal()
	case z == 0 && y == 6: // LDH A,(a8)
		addr := 0xFF00 | uint16(c.fetch())
		c.A = c.readByte(addr)
	case z == 0 && y == 7: // LD HL,SP+e8
		c.setHL(c.addSPSigned(int8(c.fetch())))
		c.tickInternal()
	case z == 1 && y%2 == 0: // POP rp3
		c.popInto(y / 2)
	case z == 1 && y == 1: // RET
		c.ret()
	case z == 1 && y == 3: // RETI
		c.bus.SetIME(true)
		c.ret()
	case z == 1 && y == 5: // JP HL
		c.PC = c.hl()
	case z == 1 && y == 7: // LD SP,HL
		c.SP = c.hl()
		c.tickInternal()
	case z == 2 && y < 4: // JP cc,a16
		c.jumpAbsolute(c.condition(y))
	case z == 2 && y == 4: // LD (C),A
		c.writeByte(0xFF00|uint16(c.C), c.A)
	case z == 2 && y == 5: // LD (a16),A
		c.A2orFromA16(true)
	case z == 2 && y == 6: // LD A,(C)
		c.A = c.readByte(0xFF00 | uint16(c.C))
	case z == 2 && y == 7: // LD A,(a16)
		c.A2orFromA16(false)
	case z == 3 && y == 0: // JP a16
		c.jumpAbsolute(true)
	case z == 3 && y == 6: // DI
		c.bus.SetIME(false)
	case z == 3 && y == 7: // EI
		if c.mode == modeNormal {
			c.mode = modeEnableIME
		}
	case z == 4 && y < 4: // CALL cc,a16
		c.call(c.condition(y))
	case z == 5 && y%2 == 0: // PUSH rp3
		c.pushFrom(y / 2)
	case z == 5 && y == 1: // CALL a16
		c.call(true)
	case z == 6: // ALU A,d8
		c.aluApply(y, c.fetch())
	case z == 7: // RST
		c.rst(y * 8)
	default: // D3,DB,DD,E3,E4,EB,EC,ED,F4,FC,FD: no such instruction
		c.illegalOpcode()
	}
}

// illegalOpcode handles execution of one of the eleven opcodes the
// SM83 never decodes ($D3,$DB,$DD,$E3,$E4,$EB,$EC,$ED,$F4,$FC,$FD).
// Real hardware's behavior here is undocumented and varies; this port
// takes the documented-safe choice of stopping the CPU permanently
// rather than guessing at undefined semantics.
func (c *CPU) illegalOpcode() {
	c.mode = modeIllegal
}

func (c *CPU) A2orFromA16(store bool) {
	lo := c.fetch()
	hi := c.fetch()
	addr := uint16(hi)<<8 | uint16(lo)
	if store {
		c.writeByte(addr, c.A)
	} else {
		c.A = c.readByte(addr)
	}
}
