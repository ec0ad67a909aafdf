package cartridge

// mbc3 implements cartridge types $0F-$13: up to 128 ROM banks, up to
// four RAM banks, and (on the RTC-bearing types) the real-time clock
// register file addressed through the RAM-bank-select register.
type mbc3 struct {
	rom []byte
	ram []byte

	romBank uint8 // 7 bits, never stores 0
	ramBank uint8 // 0-3 selects RAM, 8-C selects an RTC register

	ramRTCEnabled bool
	hasRTC        bool
	rtc           rtc

	romBanks int
}

func newMBC3(rom []byte, ramSize int, hasRTC bool) *mbc3 {
	return &mbc3{
		rom:      rom,
		ram:      make([]byte, ramSize),
		romBank:  1,
		hasRTC:   hasRTC,
		romBanks: len(rom) / 0x4000,
	}
}

func (m *mbc3) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		return m.romByte(0, address)
	case address < 0x8000:
		return m.romByte(m.romBank, address-0x4000)
	case address >= 0xA000 && address < 0xC000:
		if !m.ramRTCEnabled {
			return 0xFF
		}
		if m.hasRTC && m.ramBank >= 0x08 && m.ramBank <= 0x0C {
			return m.rtc.latched[m.ramBank-0x08]
		}
		if m.ramBank < 0x04 {
			idx := int(m.ramBank)*0x2000 + int(address-0xA000)
			if idx < len(m.ram) {
				return m.ram[idx]
			}
		}
		return 0xFF
	}
	return 0xFF
}

func (m *mbc3) romByte(bank uint8, offset uint16) uint8 {
	idx := int(bank)*0x4000 + int(offset)
	if idx < len(m.rom) {
		return m.rom[idx]
	}
	return 0xFF
}

func (m *mbc3) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ramRTCEnabled = value&0x0F == 0x0A
	case address < 0x4000:
		value &= 0x7F
		if value == 0 {
			value = 1
		}
		m.romBank = value
	case address < 0x6000:
		m.ramBank = value
	case address < 0x8000:
		if m.hasRTC {
			m.rtc.latch(value)
		}
	case address >= 0xA000 && address < 0xC000:
		if !m.ramRTCEnabled {
			return
		}
		if m.hasRTC && m.ramBank >= 0x08 && m.ramBank <= 0x0C {
			m.rtc.writeRegister(m.ramBank-0x08, value)
			return
		}
		if m.ramBank < 0x04 {
			idx := int(m.ramBank)*0x2000 + int(address-0xA000)
			if idx < len(m.ram) {
				m.ram[idx] = value
			}
		}
	}
}

func (m *mbc3) RAM() []byte { return m.ram }

func (m *mbc3) TickRTC(seconds int) {
	if m.hasRTC {
		m.rtc.tick(seconds)
	}
}

// RTCState returns the current RTC snapshot, or the zero Snapshot if
// this cartridge has no clock.
func (m *mbc3) RTCState() Snapshot {
	if !m.hasRTC {
		return Snapshot{}
	}
	return m.rtc.snapshot()
}

// SetRTCState restores a previously saved RTC snapshot.
func (m *mbc3) SetRTCState(s Snapshot) {
	if m.hasRTC {
		m.rtc.restore(s)
	}
}
