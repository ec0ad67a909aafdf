package joypad

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/remind-me-later/gbcore/internal/interrupt"
)

func TestReadReflectsOnlySelectedGroup(t *testing.T) {
	irq := interrupt.New()
	s := New(irq)
	s.Press(ButtonA)
	s.Press(ButtonUp)

	s.Write(0x20) // select direction keys (bit4=0), face keys deselected (bit5=1)
	require.Zero(t, s.Read()&0x04, "Up must read low once direction keys are selected")
	require.NotZero(t, s.Read()&0x08, "Down must read high, it isn't pressed")

	s.Write(0x10) // select face keys
	require.Zero(t, s.Read()&0x01, "A must read low once face keys are selected")
}

func TestPressRaisesInterruptOnFallingEdge(t *testing.T) {
	irq := interrupt.New()
	s := New(irq)
	s.Write(0x10) // select face keys

	require.Zero(t, irq.Flag&(1<<interrupt.Joypad))
	s.Press(ButtonA)
	require.NotZero(t, irq.Flag&(1<<interrupt.Joypad), "pressing a selected button must raise the joypad interrupt")
}

func TestPressOnUnselectedGroupDoesNotInterrupt(t *testing.T) {
	irq := interrupt.New()
	s := New(irq)
	s.Write(0x10) // select face keys only

	s.Press(ButtonUp) // a direction key, not currently selected
	require.Zero(t, irq.Flag&(1<<interrupt.Joypad))
}

func TestReleaseClearsPressedState(t *testing.T) {
	irq := interrupt.New()
	s := New(irq)
	s.Write(0x20)
	s.Press(ButtonLeft)
	s.Release(ButtonLeft)
	require.NotZero(t, s.Read()&0x02, "Left must read high again after release")
}
