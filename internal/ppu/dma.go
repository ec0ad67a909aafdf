package ppu

// DMAState is one of the four states of the OAM-DMA engine.
type DMAState uint8

const (
	DMAInactive DMAState = iota
	DMAStarting
	DMATransferring
	DMAFinishing
)

// DMA is the OAM-DMA engine armed by a write to $FF46. It copies 160
// bytes from $XX00 to OAM, one byte per M-cycle, with a 2 M-cycle
// startup delay before the first byte lands and a 1 M-cycle trailing
// window during which CPU accesses are still blocked after the last
// byte has been written.
type DMA struct {
	state  DMAState
	source uint8 // high byte of the source address, as last written
	delay  int
	offset int // 0-159 while Transferring
}

// Write arms (or re-arms) a transfer from $XX00, where XX = value.
// Writing $FF46 again while a transfer is already in progress restarts
// it from the new source.
func (d *DMA) Write(value uint8) {
	d.source = value
	d.state = DMAStarting
	d.delay = 2
}

// Value returns the byte last written to $FF46.
func (d *DMA) Value() uint8 { return d.source }

// IsBlocking reports whether CPU accesses to every address outside
// $FF80-$FFFE should currently return $FF / be dropped.
func (d *DMA) IsBlocking() bool { return d.state != DMAInactive }

// Step advances the DMA engine by one M-cycle. When it returns
// transfer=true, the caller must read one byte from srcAddr (through the
// raw memory map, bypassing CPU blocking rules) and write it directly to
// OAM byte destIdx.
func (d *DMA) Step() (transfer bool, srcAddr uint16, destIdx int) {
	switch d.state {
	case DMAInactive:
		return false, 0, 0
	case DMAStarting:
		d.delay--
		if d.delay <= 0 {
			d.state = DMATransferring
			d.offset = 0
		}
		return false, 0, 0
	case DMATransferring:
		srcAddr = uint16(d.source)<<8 + uint16(d.offset)
		destIdx = d.offset
		d.offset++
		if d.offset >= 160 {
			d.state = DMAFinishing
		}
		return true, srcAddr, destIdx
	case DMAFinishing:
		d.state = DMAInactive
		return false, 0, 0
	}
	return false, 0, 0
}
