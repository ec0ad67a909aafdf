// Package joypad emulates the Game Boy's active-low button matrix
// register at $FF00.
package joypad

import "github.com/remind-me-later/gbcore/internal/interrupt"

// Button identifies one of the eight physical buttons.
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonRight
	ButtonLeft
	ButtonUp
	ButtonDown
)

const faceMask = ButtonA | ButtonB | ButtonSelect | ButtonStart

// State holds the current button-select lines and pressed-button mask.
type State struct {
	selectBits uint8 // bits 4-5 of $FF00, written by the CPU
	pressed    uint8 // active-high: 1 = currently held down

	irq *interrupt.Controller
}

// New returns a State with no buttons pressed, wired to irq for the
// joypad interrupt.
func New(irq *interrupt.Controller) *State {
	return &State{selectBits: 0x30, irq: irq}
}

// Read returns the current value of $FF00: the upper two bits are
// always set, the select bits read back what was written, and the lower
// nibble reflects whichever button group is currently selected (active
// low), or all-1s if neither group is selected.
func (s *State) Read() uint8 {
	nibble := uint8(0x0F)
	if s.selectBits&0x10 == 0 {
		nibble &= ^(s.directionNibble())
	}
	if s.selectBits&0x20 == 0 {
		nibble &= ^(s.faceNibble())
	}
	return 0xC0 | s.selectBits | nibble
}

func (s *State) faceNibble() uint8 {
	return s.pressed & faceMask
}

func (s *State) directionNibble() uint8 {
	return (s.pressed & ^faceMask) >> 4
}

// Write stores to the select bits of $FF00.
func (s *State) Write(value uint8) {
	s.selectBits = value & 0x30
}

// Press marks button as held. A joypad interrupt fires if the button's
// line is currently selected and this is a 1->0 transition on that line
// (the button was not already held).
func (s *State) Press(button Button) {
	before := s.Read()
	s.pressed |= uint8(button)
	after := s.Read()
	if before&0x0F != 0 && after&0x0F == 0 {
		s.irq.Request(interrupt.Joypad)
	} else {
		// any newly-zeroed bit triggers the interrupt, not just "all
		// zero"; check bit-by-bit for the common one-button case.
		for bit := uint8(1); bit <= 0x08; bit <<= 1 {
			if before&bit != 0 && after&bit == 0 {
				s.irq.Request(interrupt.Joypad)
				break
			}
		}
	}
}

// Release marks button as released.
func (s *State) Release(button Button) {
	s.pressed &^= uint8(button)
}
