package cpu

// mode tracks the states the Step loop can be in besides plain fetch-
// decode-execute.
type mode uint8

const (
	modeNormal mode = iota
	modeHalt
	modeHaltBug
	modeHaltDI // HALT entered with IME off and no pending interrupt
	modeStop
	modeEnableIME // one instruction after EI, before IME actually takes effect
	modeIllegal   // terminal: an undefined opcode was executed
)

// CPU is the Sharp SM83 core. It owns the register file and drives the
// fetch-decode-execute loop, but holds no state of its own about
// memory, video, audio, or timers - those all live behind Bus.
type CPU struct {
	Registers
	PC, SP uint16

	bus Bus

	mode mode

	// Debug enables the $40 (LD B,B) breakpoint convention used by test
	// ROM harnesses that have no other way to signal completion.
	Debug           bool
	DebugBreakpoint bool

	mCycles int
}

// New returns a CPU wired to bus. Register state starts zeroed; the
// caller is responsible for loading documented post-boot values (via
// LoadPostBootState) when running without a boot ROM.
func New(bus Bus) *CPU {
	return &CPU{bus: bus}
}

// LoadPostBootState sets the register file to the documented values
// left behind by the DMG/CGB boot ROM, for cartridges started without
// one.
func (c *CPU) LoadPostBootState(cgb bool) {
	if cgb {
		c.setAF(0x1180)
		c.setBC(0x0000)
		c.setDE(0xFF56)
		c.setHL(0x000D)
	} else {
		c.setAF(0x01B0)
		c.setBC(0x0013)
		c.setDE(0x00D8)
		c.setHL(0x014D)
	}
	c.SP = 0xFFFE
	c.PC = 0x0100
}

// Step runs exactly one "unit" of CPU activity - one instruction, one
// HALT/STOP idle M-cycle, or one interrupt dispatch - and reports the
// number of M-cycles it consumed.
func (c *CPU) Step() int {
	mCyclesBefore := c.mCycles
	switch c.mode {
	case modeNormal:
		c.execute(c.fetch())
		if c.bus.IME() && c.bus.PendingInterrupt() {
			c.dispatchInterrupt()
		}
	case modeHalt, modeStop:
		c.bus.TickM()
		c.mCycles++
		if c.bus.PendingInterrupt() {
			c.mode = modeNormal
			if c.bus.IME() {
				c.dispatchInterrupt()
			}
		}
	case modeHaltDI:
		c.bus.TickM()
		c.mCycles++
		if c.bus.PendingInterrupt() {
			c.mode = modeNormal
		}
	case modeIllegal:
		// Terminal: the rest of the system keeps running (PPU, APU,
		// timer, DMA) but the CPU never fetches another instruction.
		c.bus.TickM()
		c.mCycles++
	case modeHaltBug:
		c.mode = modeNormal
		opcode := c.fetch()
		c.PC-- // the fetched byte is re-read by the next fetch too
		c.execute(opcode)
		if c.bus.IME() && c.bus.PendingInterrupt() {
			c.dispatchInterrupt()
		}
	case modeEnableIME:
		// IME takes effect only after this instruction retires, not
		// before it runs - so EI; <interruptible op> never services the
		// interrupt inside that one instruction.
		c.mode = modeNormal
		c.execute(c.fetch())
		c.bus.SetIME(true)
		if c.bus.IME() && c.bus.PendingInterrupt() {
			c.dispatchInterrupt()
		}
	}
	return c.mCycles - mCyclesBefore
}

// fetch advances the rest of the system by one M-cycle, then reads the
// byte at PC and advances PC. Ticking before resolving the access is
// required by the fixed per-M-cycle ordering the bus guarantees (PPU,
// then DMA, then timer, then the CPU's own access) - reading the byte
// first would read last cycle's bus state instead of this one's.
func (c *CPU) fetch() uint8 {
	c.tickM()
	v := c.bus.Read8(c.PC)
	c.PC++
	return v
}

func (c *CPU) readByte(addr uint16) uint8 {
	c.tickM()
	return c.bus.Read8(addr)
}

func (c *CPU) writeByte(addr uint16, v uint8) {
	c.tickM()
	c.bus.Write8(addr, v)
}

// tickInternal consumes one M-cycle with no bus access, for
// instructions whose documented timing includes internal-only cycles
// (16-bit INC/DEC, most jumps, ADD SP,e8, ...).
func (c *CPU) tickInternal() { c.tickM() }

func (c *CPU) tickM() {
	c.bus.TickM()
	c.mCycles++
}

func (c *CPU) dispatchInterrupt() {
	if c.mode == modeHalt || c.mode == modeStop {
		c.mode = modeNormal
	}
	c.tickInternal()
	c.tickInternal()
	c.SP--
	c.writeByte(c.SP, uint8(c.PC>>8))
	vector := c.bus.AckInterrupt()
	c.SP--
	c.writeByte(c.SP, uint8(c.PC))
	c.bus.SetIME(false)
	c.PC = vector
	c.tickInternal()
}

// Stopped reports whether the CPU has executed an undefined opcode and
// entered its terminal illegal-instruction state.
func (c *CPU) Stopped() bool { return c.mode == modeIllegal }

// CheckAndResetLDBBBreakpoint reports whether a LD B,B was executed
// since the last call, clearing the latch.
func (c *CPU) CheckAndResetLDBBBreakpoint() bool {
	hit := c.DebugBreakpoint
	c.DebugBreakpoint = false
	return hit
}
