package cartridge

import (
	"errors"
	"fmt"

	"github.com/remind-me-later/gbcore/internal/model"
)

// Kind identifies the MBC variant encoded in the cartridge-type byte.
type Kind uint8

const (
	KindNone Kind = iota
	KindMBC1
	KindMBC3
	KindMBC5
)

// ErrInvalidHeader is returned by Parse when the ROM is too short to hold
// a header or its declared sizes are internally inconsistent. A header
// checksum mismatch is not an error; it only clears ChecksumOK.
var ErrInvalidHeader = errors.New("cartridge: invalid header")

// ErrUnsupportedMapper is returned by Parse when the cartridge-type byte
// names a mapper this core does not implement.
var ErrUnsupportedMapper = errors.New("cartridge: unsupported mapper")

var romSizeBytes = map[uint8]int{
	0x00: 32 * 1024, 0x01: 64 * 1024, 0x02: 128 * 1024, 0x03: 256 * 1024,
	0x04: 512 * 1024, 0x05: 1024 * 1024, 0x06: 2 * 1024 * 1024,
	0x07: 4 * 1024 * 1024, 0x08: 8 * 1024 * 1024,
}

var ramSizeBytes = map[uint8]int{
	0x00: 0, 0x01: 2 * 1024, 0x02: 8 * 1024, 0x03: 32 * 1024,
	0x04: 128 * 1024, 0x05: 64 * 1024,
}

// Header holds the cartridge metadata decoded from $0100-$014F.
type Header struct {
	Title       string
	CGBFlag     uint8 // raw byte at $0143
	TypeByte    uint8
	Kind        Kind
	HasRAM      bool
	HasBattery  bool
	HasRTC      bool
	ROMSize     int
	RAMSize     int
	HeaderCksum uint8
	Checksum0K  bool // computed checksum matches HeaderCksum

	// RAMSizeFallback records that the header declared RAM support with
	// a zero RAM-size code - a homebrew quirk Parse recovers from by
	// assuming the smallest real bank rather than failing.
	RAMSizeFallback bool
}

// PreferredModel returns the model implied by the CGB-support byte: CGB
// for $80/$C0, DMG otherwise. The core's configured model may still
// override this.
func (h Header) PreferredModel() model.Model {
	if h.CGBFlag == 0x80 || h.CGBFlag == 0xC0 {
		return model.CGB
	}
	return model.DMG
}

// Parse decodes the header of rom. It validates the header checksum and
// the cartridge-type byte, but a checksum mismatch is reported via
// Checksum0K rather than failing - per spec, header mismatch does not
// block loading.
func Parse(rom []byte) (Header, error) {
	if len(rom) < 0x150 {
		return Header{}, fmt.Errorf("%w: rom too short (%d bytes)", ErrInvalidHeader, len(rom))
	}

	h := Header{
		CGBFlag:     rom[0x0143],
		TypeByte:    rom[0x0147],
		HeaderCksum: rom[0x014D],
	}

	titleEnd := 0x0143
	if h.CGBFlag != 0x80 && h.CGBFlag != 0xC0 {
		titleEnd = 0x0144
	}
	title := make([]byte, 0, 16)
	for i := 0x0134; i < titleEnd; i++ {
		if rom[i] == 0 {
			break
		}
		title = append(title, rom[i])
	}
	h.Title = string(title)

	var sum uint8
	for i := 0x0134; i <= 0x014C; i++ {
		sum = sum - rom[i] - 1
	}
	h.Checksum0K = sum == h.HeaderCksum

	romCode := rom[0x0148]
	ramCode := rom[0x0149]
	size, ok := romSizeBytes[romCode]
	if !ok {
		return Header{}, fmt.Errorf("%w: unknown rom size code %#02x", ErrInvalidHeader, romCode)
	}
	h.ROMSize = size
	ramSize, ok := ramSizeBytes[ramCode]
	if !ok {
		return Header{}, fmt.Errorf("%w: unknown ram size code %#02x", ErrInvalidHeader, ramCode)
	}
	h.RAMSize = ramSize

	switch h.TypeByte {
	case 0x00, 0x08, 0x09:
		h.Kind = KindNone
		h.HasRAM = h.TypeByte != 0x00
		h.HasBattery = h.TypeByte == 0x09
	case 0x01, 0x02, 0x03:
		h.Kind = KindMBC1
		h.HasRAM = h.TypeByte != 0x01
		h.HasBattery = h.TypeByte == 0x03
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		h.Kind = KindMBC3
		h.HasRAM = h.TypeByte == 0x10 || h.TypeByte == 0x12 || h.TypeByte == 0x13
		h.HasBattery = h.TypeByte == 0x0F || h.TypeByte == 0x10 || h.TypeByte == 0x13
		h.HasRTC = h.TypeByte == 0x0F || h.TypeByte == 0x10
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		h.Kind = KindMBC5
		h.HasRAM = h.TypeByte != 0x19 && h.TypeByte != 0x1C
		h.HasBattery = h.TypeByte == 0x1B || h.TypeByte == 0x1E
	default:
		return Header{}, fmt.Errorf("%w: cartridge type %#02x", ErrUnsupportedMapper, h.TypeByte)
	}

	if h.HasRAM && h.RAMSize == 0 {
		// some homebrew declares RAM support with a zero RAM-size code;
		// treat it as the smallest real bank rather than failing.
		h.RAMSize = 8 * 1024
		h.RAMSizeFallback = true
	}

	return h, nil
}
