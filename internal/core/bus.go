package core

import "github.com/remind-me-later/gbcore/internal/ppu"

// Read8 performs a CPU-visible read. It applies every access-blocking
// rule real hardware enforces: OAM is invisible during PPU modes 2 and
// 3, VRAM is invisible during mode 3, and the whole bus except HRAM is
// invisible while OAM-DMA is running.
func (c *Core) Read8(addr uint16) uint8 {
	if c.ppu.DMAUnit.IsBlocking() && !(addr >= 0xFF80 && addr <= 0xFFFE) {
		return 0xFF
	}
	return c.rawRead(addr)
}

func (c *Core) rawRead(addr uint16) uint8 {
	switch {
	case addr <= 0x7FFF:
		if !c.bootROMDone && c.inBootROMRange(addr) {
			return c.bootROM[addr]
		}
		return c.cart.Read(addr)
	case addr <= 0x9FFF:
		if c.ppu.Mode() == ppu.ModeTransfer {
			return 0xFF
		}
		return c.ppu.ReadVRAM(addr)
	case addr <= 0xBFFF:
		return c.cart.Read(addr)
	case addr <= 0xCFFF:
		return c.wram[0][addr-0xC000]
	case addr <= 0xDFFF:
		return c.wram[c.effectiveWRAMBank()][addr-0xD000]
	case addr <= 0xEFFF:
		return c.wram[0][addr-0xE000]
	case addr <= 0xFDFF:
		return c.wram[c.effectiveWRAMBank()][addr-0xF000]
	case addr <= 0xFE9F:
		m := c.ppu.Mode()
		if m == ppu.ModeOAMScan || m == ppu.ModeTransfer {
			return 0xFF
		}
		return c.ppu.ReadOAM(addr)
	case addr <= 0xFEFF:
		return 0xFF
	case addr <= 0xFF7F:
		return c.readIO(addr)
	case addr <= 0xFFFE:
		return c.hram[addr-0xFF80]
	default:
		return c.irq.Read(addr)
	}
}

func (c *Core) inBootROMRange(addr uint16) bool {
	if addr < 0x100 {
		return true
	}
	return c.model.IsCGB() && addr >= 0x200 && addr < 0x900 && len(c.bootROM) > 0x200
}

func (c *Core) effectiveWRAMBank() uint8 {
	if !c.model.IsCGB() || c.wramBank == 0 {
		return 1
	}
	return c.wramBank
}

func (c *Core) readIO(addr uint16) uint8 {
	switch {
	case addr == 0xFF00:
		return c.pad.Read()
	case addr == 0xFF01 || addr == 0xFF02:
		return c.sio.Read(addr)
	case addr >= 0xFF04 && addr <= 0xFF07:
		return c.tmr.Read(addr)
	case addr == 0xFF0F:
		return c.irq.Read(addr)
	case addr >= 0xFF10 && addr <= 0xFF3F:
		return c.apu.Read(addr)
	case addr == 0xFF4D:
		if c.model.IsCGB() {
			v := c.key1 & 0x01
			if c.doubleSpeed {
				v |= 0x80
			}
			return v | 0x7E
		}
		return 0xFF
	case addr == 0xFF70:
		if c.model.IsCGB() {
			return c.wramBank | 0xF8
		}
		return 0xFF
	case addr >= 0xFF40 && addr <= 0xFF4B:
		return c.ppu.ReadRegister(addr)
	case addr == 0xFF4F || addr >= 0xFF51 && addr <= 0xFF55 || addr >= 0xFF68 && addr <= 0xFF6B:
		return c.ppu.ReadRegister(addr)
	default:
		c.busLog.Debugf("read from unmapped io register %#04x", addr)
		return 0xFF
	}
}

// Write8 performs a CPU-visible write, applying the same access-
// blocking rules as Read8.
func (c *Core) Write8(addr uint16, value uint8) {
	if c.ppu.DMAUnit.IsBlocking() && !(addr >= 0xFF80 && addr <= 0xFFFE) {
		return
	}
	c.rawWrite(addr, value)
}

func (c *Core) rawWrite(addr uint16, value uint8) {
	switch {
	case addr <= 0x7FFF:
		c.cart.Write(addr, value)
	case addr <= 0x9FFF:
		if c.ppu.Mode() != ppu.ModeTransfer {
			c.ppu.WriteVRAM(addr, value)
		}
	case addr <= 0xBFFF:
		c.cart.Write(addr, value)
	case addr <= 0xCFFF:
		c.wram[0][addr-0xC000] = value
	case addr <= 0xDFFF:
		c.wram[c.effectiveWRAMBank()][addr-0xD000] = value
	case addr <= 0xEFFF:
		c.wram[0][addr-0xE000] = value
	case addr <= 0xFDFF:
		c.wram[c.effectiveWRAMBank()][addr-0xF000] = value
	case addr <= 0xFE9F:
		m := c.ppu.Mode()
		if m != ppu.ModeOAMScan && m != ppu.ModeTransfer {
			c.ppu.WriteOAM(addr, value)
		}
	case addr <= 0xFEFF:
		// unusable
	case addr <= 0xFF7F:
		c.writeIO(addr, value)
	case addr <= 0xFFFE:
		c.hram[addr-0xFF80] = value
	default:
		c.irq.Write(addr, value)
	}
}

func (c *Core) writeIO(addr uint16, value uint8) {
	switch {
	case addr == 0xFF00:
		c.pad.Write(value)
	case addr == 0xFF01 || addr == 0xFF02:
		c.sio.Write(addr, value)
	case addr >= 0xFF04 && addr <= 0xFF07:
		c.tmr.Write(addr, value)
	case addr == 0xFF0F:
		c.irq.Write(addr, value)
	case addr >= 0xFF10 && addr <= 0xFF3F:
		c.apu.Write(addr, value)
	case addr == 0xFF46:
		c.ppu.DMAUnit.Write(value)
	case addr == 0xFF4D:
		if c.model.IsCGB() {
			c.key1 = value & 0x01
		}
	case addr == 0xFF50:
		if value != 0 {
			c.bootROMDone = true
		}
	case addr == 0xFF70:
		if c.model.IsCGB() {
			c.wramBank = value & 0x07
		}
	case addr >= 0xFF40 && addr <= 0xFF4B:
		c.ppu.WriteRegister(addr, value)
	case addr == ppu.AddrHDMA5:
		if c.ppu.HDMAUnit.WriteControl(value) == ppu.HDMAGeneral {
			c.runGeneralPurposeHDMA()
		}
	case addr == 0xFF4F || addr >= 0xFF51 && addr <= 0xFF54 || addr >= 0xFF68 && addr <= 0xFF6B:
		c.ppu.WriteRegister(addr, value)
	default:
		c.busLog.Debugf("write %#02x to unmapped io register %#04x", value, addr)
	}
}

// runGeneralPurposeHDMA executes a just-armed general-purpose transfer
// in one shot: unlike an H-blank transfer it is not paced by the PPU,
// so the core performs every block immediately and accounts the CPU-
// halting cost by ticking the bus directly.
func (c *Core) runGeneralPurposeHDMA() {
	blocks := c.ppu.HDMAUnit.GeneralTransferBlocks()
	for i := 0; i < blocks; i++ {
		src, dst := c.ppu.HDMAUnit.NextBlock()
		c.copyHDMABlock(src, dst)
	}
	mCycles := 8 * blocks
	if c.doubleSpeed {
		mCycles *= 2
	}
	for i := 0; i < mCycles; i++ {
		c.tickSubsystems()
	}
}

func (c *Core) copyHDMABlock(src, dst uint16) {
	for i := uint16(0); i < 16; i++ {
		v := c.hdmaSourceByte(src + i)
		bank := int(c.ppu.ReadRegister(ppu.AddrVBK) & 1)
		c.ppu.WriteVRAMBank(bank, dst+i, v)
	}
}

// hdmaSourceByte reads a byte for the HDMA and OAM-DMA engines,
// bypassing CPU access blocking since both transfers are driven by the
// core itself rather than by the CPU.
func (c *Core) hdmaSourceByte(addr uint16) uint8 {
	switch {
	case addr <= 0x7FFF:
		return c.cart.Read(addr)
	case addr <= 0x9FFF:
		return c.ppu.ReadVRAM(addr)
	case addr <= 0xBFFF:
		return c.cart.Read(addr)
	case addr <= 0xCFFF:
		return c.wram[0][addr-0xC000]
	case addr <= 0xDFFF:
		return c.wram[c.effectiveWRAMBank()][addr-0xD000]
	case addr <= 0xEFFF:
		return c.wram[0][addr-0xE000]
	case addr <= 0xFDFF:
		return c.wram[c.effectiveWRAMBank()][addr-0xF000]
	default:
		return 0xFF
	}
}
