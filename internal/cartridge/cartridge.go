// Package cartridge decodes a Game Boy ROM header and dispatches CPU
// accesses to the appropriate memory bank controller.
package cartridge

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Cartridge wraps a parsed Header and the MBC instance it selected.
type Cartridge struct {
	Header Header
	mbc    MBC

	log *logrus.Entry
}

// New parses rom's header and constructs the matching MBC, seeding it
// with battery bytes if provided. A size mismatch between battery and
// the header's declared RAM size is not an error here - the caller
// decides (see core.ErrPersistenceMismatch) whether to zero-fill instead.
func New(rom []byte, battery []byte) (*Cartridge, error) {
	h, err := Parse(rom)
	if err != nil {
		return nil, err
	}

	var m MBC
	switch h.Kind {
	case KindNone:
		m = newPlainROM(rom, h.RAMSize)
	case KindMBC1:
		m = newMBC1(rom, h.RAMSize)
	case KindMBC3:
		m = newMBC3(rom, h.RAMSize, h.HasRTC)
	case KindMBC5:
		m = newMBC5(rom, h.RAMSize)
	default:
		return nil, fmt.Errorf("%w: kind %d", ErrUnsupportedMapper, h.Kind)
	}

	c := &Cartridge{Header: h, mbc: m}
	if h.HasBattery && len(battery) > 0 {
		copy(m.RAM(), battery)
	}
	return c, nil
}

// Read dispatches a CPU read in $0000-$7FFF or $A000-$BFFF to the MBC.
func (c *Cartridge) Read(address uint16) uint8 { return c.mbc.Read(address) }

// Write dispatches a CPU write to the MBC.
func (c *Cartridge) Write(address uint16, value uint8) { c.mbc.Write(address, value) }

// TickRTC advances the cartridge's real-time clock, if it has one, by
// seconds wall-clock seconds.
func (c *Cartridge) TickRTC(seconds int) { c.mbc.TickRTC(seconds) }

// SaveRAM returns the live battery-backed RAM buffer. The caller must
// copy it before persisting if it intends to keep emulating afterward.
func (c *Cartridge) SaveRAM() []byte { return c.mbc.RAM() }

// RTCState returns the cartridge's RTC snapshot, or the zero Snapshot
// for cartridges without a clock.
func (c *Cartridge) RTCState() Snapshot {
	if m3, ok := c.mbc.(*mbc3); ok {
		return m3.RTCState()
	}
	return Snapshot{}
}

// SetRTCState restores a previously saved RTC snapshot. A non-zero
// snapshot handed to a cartridge with no RTC (header HasRTC false) is
// logged and discarded rather than applied silently.
func (c *Cartridge) SetRTCState(s Snapshot) {
	if m3, ok := c.mbc.(*mbc3); ok && c.Header.HasRTC {
		m3.SetRTCState(s)
		return
	}
	if c.log != nil && s != (Snapshot{}) {
		c.log.Warn("rtc state supplied for a cartridge with no real-time clock, ignoring")
	}
}

// SetLogger attaches entry as this cartridge's diagnostic logger and
// immediately reports any anomaly Parse already recovered from, such as
// the zero-RAM-size-code fallback.
func (c *Cartridge) SetLogger(entry *logrus.Entry) {
	c.log = entry
	if c.log == nil {
		return
	}
	if c.Header.RAMSizeFallback {
		c.log.WithField("type_byte", fmt.Sprintf("%#02x", c.Header.TypeByte)).
			Warn("header declares RAM support with a zero RAM-size code, assuming 8KiB")
	}
}
