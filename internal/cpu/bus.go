package cpu

// Bus is everything the CPU needs from the rest of the system. The
// core implements it; the cpu package never imports ppu/apu/cartridge
// directly, keeping the dependency graph a strict core -> leaf-package
// tree with no cycle back into the CPU.
type Bus interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, value uint8)

	// TickM advances every ticked subsystem (PPU, APU, timer, serial,
	// OAM-DMA, HDMA) by one M-cycle (4 T-cycles at the base clock,
	// scaled internally for CGB double speed). The CPU calls this once
	// per M-cycle of real time an instruction consumes, including the
	// cycles spent on memory accesses.
	TickM()

	// IME reports and sets the interrupt master enable flip-flop.
	IME() bool
	SetIME(bool)

	// PendingInterrupt reports whether IE&IF has any bit set, and
	// AckInterrupt clears the highest-priority pending bit and returns
	// its vector address.
	PendingInterrupt() bool
	AckInterrupt() uint16

	// DoubleSpeed reports whether CGB double-speed mode is active, and
	// RequestSpeedSwitch arms (or would arm) the KEY1-driven switch
	// that STOP performs when bit 0 of KEY1 is set.
	DoubleSpeed() bool
	RequestSpeedSwitch()
}
