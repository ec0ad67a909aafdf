package timer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/remind-me-later/gbcore/internal/interrupt"
)

func newTestTimer() (*Controller, *interrupt.Controller) {
	irq := interrupt.New()
	return New(irq), irq
}

func TestDIVWriteResetsInternalCounter(t *testing.T) {
	tmr, _ := newTestTimer()
	tmr.Tick(1000)
	require.NotZero(t, tmr.Read(0xFF04))

	tmr.Write(0xFF04, 0xFF) // any write resets DIV regardless of value
	require.Zero(t, tmr.Read(0xFF04))
}

func TestTIMAIncrementsOnFallingEdge(t *testing.T) {
	tmr, _ := newTestTimer()
	tmr.Write(0xFF04, 0) // DIV=0, internal counter=0
	tmr.Write(0xFF07, 0x05) // enabled, select bit 3 (262144 Hz)

	require.Zero(t, tmr.Read(0xFF05))
	tmr.Tick(16) // bit 3 of the internal counter sets then falls within 16 T-cycles
	require.Equal(t, uint8(1), tmr.Read(0xFF05))
}

func TestTIMAOverflowReloadsFromTMAAndRaisesInterrupt(t *testing.T) {
	tmr, irq := newTestTimer()
	tmr.Write(0xFF04, 0)
	tmr.Write(0xFF06, 0x7A) // TMA
	tmr.Write(0xFF07, 0x05) // enabled, bit 3 selected
	tmr.Write(0xFF05, 0xFF) // one increment from overflow

	tmr.Tick(16) // one falling edge -> TIMA overflows to 0, reload pending
	require.Zero(t, tmr.Read(0xFF05), "TIMA reads 0 during the one-cycle reload delay")

	tmr.Tick(4) // the reload lands on the next M-cycle
	require.Equal(t, uint8(0x7A), tmr.Read(0xFF05))
	require.NotZero(t, irq.Flag&(1<<interrupt.Timer))
}

func TestTACWriteFallingEdgeGlitch(t *testing.T) {
	tmr, _ := newTestTimer()
	tmr.Write(0xFF04, 0)
	tmr.Write(0xFF07, 0x04) // enabled, bit 9 selected (4096 Hz)
	tmr.Tick(512)           // set bit 9 of the internal counter

	before := tmr.Read(0xFF05)
	tmr.Write(0xFF07, 0x00) // disabling TAC drops the selected bit from 1 to 0
	require.Equal(t, before+1, tmr.Read(0xFF05), "disabling TAC while its bit is set must itself increment TIMA")
}
