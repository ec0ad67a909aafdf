package cpu

import "testing"

// fakeBus is a minimal Bus good enough to drive the CPU through a short
// program without any of the real subsystems.
type fakeBus struct {
	mem  [0x10000]uint8
	ime  bool
	ie   uint8
	ifr  uint8
	dbl  bool
}

func (b *fakeBus) Read8(addr uint16) uint8        { return b.mem[addr] }
func (b *fakeBus) Write8(addr uint16, v uint8)    { b.mem[addr] = v }
func (b *fakeBus) TickM()                         {}
func (b *fakeBus) IME() bool                      { return b.ime }
func (b *fakeBus) SetIME(v bool)                  { b.ime = v }
func (b *fakeBus) PendingInterrupt() bool         { return b.ie&b.ifr != 0 }
func (b *fakeBus) DoubleSpeed() bool               { return b.dbl }
func (b *fakeBus) RequestSpeedSwitch()            { b.dbl = !b.dbl }
func (b *fakeBus) AckInterrupt() uint16 {
	for i := 0; i < 5; i++ {
		if b.ie&b.ifr&(1<<i) != 0 {
			b.ifr &^= 1 << i
			return 0x40 + uint16(i)*8
		}
	}
	return 0
}

func newTestCPU(program ...uint8) (*CPU, *fakeBus) {
	bus := &fakeBus{}
	copy(bus.mem[0x0100:], program)
	c := New(bus)
	c.PC = 0x0100
	c.SP = 0xFFFE
	return c, bus
}

func TestLDRR(t *testing.T) {
	c, _ := newTestCPU(0x41) // LD B,C
	c.C = 0x42
	cycles := c.Step()
	if c.B != 0x42 {
		t.Fatalf("LD B,C: B = %#x, want 0x42", c.B)
	}
	if cycles != 1 {
		t.Fatalf("LD B,C took %d M-cycles, want 1", cycles)
	}
}

func TestADDAAffectsFlags(t *testing.T) {
	c, _ := newTestCPU(0x87) // ADD A,A
	c.A = 0x80
	c.Step()
	if c.A != 0x00 {
		t.Fatalf("A = %#x, want 0x00", c.A)
	}
	if !c.flag(FlagZero) || !c.flag(FlagCarry) {
		t.Fatalf("F = %#x, want Z and C set", c.F)
	}
}

func TestINCHLTakesThreeCycles(t *testing.T) {
	c, bus := newTestCPU(0x34) // INC (HL)
	c.setHL(0xC000)
	bus.mem[0xC000] = 0x0F
	cycles := c.Step()
	if cycles != 3 {
		t.Fatalf("INC (HL) took %d M-cycles, want 3", cycles)
	}
	if bus.mem[0xC000] != 0x10 {
		t.Fatalf("(HL) = %#x, want 0x10", bus.mem[0xC000])
	}
	if !c.flag(FlagHalfCarry) {
		t.Fatalf("expected half-carry set crossing the nibble boundary")
	}
}

func TestJRTakenVsNotTaken(t *testing.T) {
	c, _ := newTestCPU(0x20, 0x05) // JR NZ,+5
	c.setFlag(FlagZero, false)
	if cycles := c.Step(); cycles != 3 {
		t.Fatalf("taken JR NZ took %d M-cycles, want 3", cycles)
	}
	if c.PC != 0x0107 {
		t.Fatalf("PC = %#x, want 0x0107", c.PC)
	}

	c, _ = newTestCPU(0x20, 0x05)
	c.setFlag(FlagZero, true)
	if cycles := c.Step(); cycles != 2 {
		t.Fatalf("not-taken JR NZ took %d M-cycles, want 2", cycles)
	}
}

func TestCallAndRetRoundTrip(t *testing.T) {
	c, bus := newTestCPU(0xCD, 0x00, 0xC0) // CALL $C000
	bus.mem[0xC000] = 0xC9                 // RET
	startSP := c.SP

	c.Step() // CALL
	if c.PC != 0xC000 {
		t.Fatalf("PC after CALL = %#x, want 0xC000", c.PC)
	}
	if c.SP != startSP-2 {
		t.Fatalf("SP after CALL = %#x, want %#x", c.SP, startSP-2)
	}

	c.Step() // RET
	if c.PC != 0x0103 {
		t.Fatalf("PC after RET = %#x, want 0x0103", c.PC)
	}
	if c.SP != startSP {
		t.Fatalf("SP after RET = %#x, want %#x", c.SP, startSP)
	}
}

func TestHaltWakesOnPendingInterrupt(t *testing.T) {
	c, bus := newTestCPU(0x76, 0x00) // HALT; NOP
	bus.ime = true
	c.Step() // enter HALT
	if c.mode != modeHalt {
		t.Fatalf("expected HALT mode, got %v", c.mode)
	}
	bus.ie, bus.ifr = 0x01, 0x01
	c.Step() // should dispatch the interrupt
	if c.PC != 0x40 {
		t.Fatalf("PC after interrupt dispatch = %#x, want 0x40", c.PC)
	}
}

func TestLDBBSetsDebugBreakpoint(t *testing.T) {
	c, _ := newTestCPU(0x40) // LD B,B
	c.Debug = true
	c.Step()
	if !c.CheckAndResetLDBBBreakpoint() {
		t.Fatalf("expected LD B,B to raise the debug breakpoint")
	}
	if c.CheckAndResetLDBBBreakpoint() {
		t.Fatalf("breakpoint latch should clear after being read")
	}
}

func TestIllegalOpcodeStopsCPUPermanently(t *testing.T) {
	c, _ := newTestCPU(0xD3, 0x00, 0x00) // $D3 is undefined
	c.Step()
	if !c.Stopped() {
		t.Fatalf("expected CPU to enter the illegal-opcode stop state")
	}
	pc := c.PC
	for i := 0; i < 3; i++ {
		c.Step()
	}
	if c.PC != pc {
		t.Fatalf("PC advanced after illegal-opcode stop: %#x -> %#x", pc, c.PC)
	}
	if !c.Stopped() {
		t.Fatalf("CPU should remain stopped")
	}
}

func TestCBBitInstruction(t *testing.T) {
	c, _ := newTestCPU(0xCB, 0x7C) // BIT 7,H
	c.H = 0x80
	cycles := c.Step()
	if cycles != 2 {
		t.Fatalf("BIT 7,H took %d M-cycles, want 2", cycles)
	}
	if c.flag(FlagZero) {
		t.Fatalf("expected Z clear, bit 7 of H is set")
	}
}
