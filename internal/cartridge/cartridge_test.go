package cartridge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func makeROM(typeByte uint8, romCode, ramCode uint8, banks int) []byte {
	rom := make([]byte, banks*0x4000)
	if len(rom) < 0x8000 {
		rom = make([]byte, 0x8000)
	}
	rom[0x0147] = typeByte
	rom[0x0148] = romCode
	rom[0x0149] = ramCode
	var sum uint8
	for i := 0x0134; i <= 0x014C; i++ {
		sum = sum - rom[i] - 1
	}
	rom[0x014D] = sum
	return rom
}

func TestMBC1Bank0AliasesToBank1(t *testing.T) {
	rom := makeROM(0x01, 0x02, 0x00, 8) // MBC1, 128KiB, 8 banks
	for i := 0; i < 8; i++ {
		rom[i*0x4000] = byte(i) // bank i's first byte tags it with i
	}
	c, err := New(rom, nil)
	require.NoError(t, err)

	c.Write(0x2000, 0x00) // select bank 0, should alias to bank 1
	require.Equal(t, uint8(1), c.Read(0x4000), "writing 0 to the bank-select register must select bank 1, not 0")
}

func TestMBC1RAMEnableLatch(t *testing.T) {
	rom := makeROM(0x03, 0x00, 0x02, 2) // MBC1+RAM+BATTERY, 8KiB RAM
	c, err := New(rom, nil)
	require.NoError(t, err)

	c.Write(0xA000, 0x42)
	require.Equal(t, uint8(0xFF), c.Read(0xA000), "RAM reads must return 0xFF while disabled")

	c.Write(0x0000, 0x0A)
	c.Write(0xA000, 0x42)
	require.Equal(t, uint8(0x42), c.Read(0xA000))

	c.Write(0x0000, 0x00)
	require.Equal(t, uint8(0xFF), c.Read(0xA000), "disabling RAM must mask reads again")
}

func TestMBC5AllowsBankZero(t *testing.T) {
	rom := makeROM(0x19, 0x02, 0x00, 8)
	rom[0] = 0xAA // bank 0's first byte, read back through the switchable window
	c, err := New(rom, nil)
	require.NoError(t, err)

	c.Write(0x2000, 0x00)
	require.Equal(t, uint8(0xAA), c.Read(0x4000), "MBC5 must allow bank 0 in the switchable slot")
}

func TestMBC3RTCLatchAndAdvance(t *testing.T) {
	rom := makeROM(0x0F, 0x00, 0x00, 2) // MBC3+TIMER+BATTERY
	c, err := New(rom, nil)
	require.NoError(t, err)

	c.Write(0x0000, 0x0A) // enable RAM+RTC
	c.TickRTC(90)         // 1 minute 30 seconds

	c.Write(0x6000, 0x00)
	c.Write(0x6000, 0x01) // latch 0->1 edge

	c.Write(0x4000, 0x08) // select RTC seconds register
	require.Equal(t, uint8(30), c.Read(0xA000))

	c.Write(0x4000, 0x09) // minutes
	require.Equal(t, uint8(1), c.Read(0xA000))
}

func TestHeaderChecksumMismatchIsReportedNotFatal(t *testing.T) {
	rom := makeROM(0x00, 0x00, 0x00, 2)
	rom[0x014D] ^= 0xFF // corrupt the checksum
	h, err := Parse(rom)
	require.NoError(t, err, "a bad header checksum must not fail Parse")
	require.False(t, h.Checksum0K)
}

func TestUnsupportedMapperIsRejected(t *testing.T) {
	rom := makeROM(0xFE, 0x00, 0x00, 2) // not a real cartridge type
	_, err := New(rom, nil)
	require.ErrorIs(t, err, ErrUnsupportedMapper)
}

func TestRTCSnapshotRoundTrip(t *testing.T) {
	s := Snapshot{
		Registers:     [5]uint8{1, 2, 3, 4, 0x80},
		Latched:       [5]uint8{5, 6, 7, 8, 0x40},
		LatchedUnixTS: 0x11223344,
	}
	got := UnmarshalSnapshot(s.Marshal())
	require.Equal(t, s, got)
	require.Len(t, s.Marshal(), 48)
}
