package interrupt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHighestPriorityIsLowestBit(t *testing.T) {
	c := New()
	c.Write(EnableAddr, 0x1F)
	c.Request(Joypad)
	c.Request(VBlank)
	c.Request(Timer)

	k, ok := c.Highest()
	require.True(t, ok)
	require.Equal(t, VBlank, k, "VBlank is bit 0 and must win over higher-numbered pending bits")
}

func TestDispatchClearsOnlyTheServicedBit(t *testing.T) {
	c := New()
	c.Write(EnableAddr, 0x1F)
	c.Request(VBlank)
	c.Request(Timer)

	k, ok := c.Highest()
	require.True(t, ok)
	c.Clear(k)

	require.False(t, c.Flag&(1<<VBlank) != 0)
	require.True(t, c.Flag&(1<<Timer) != 0)
}

func TestPendingRequiresBothFlagAndEnable(t *testing.T) {
	c := New()
	c.Request(VBlank)
	require.False(t, c.HasPending(), "a requested-but-not-enabled interrupt must not be pending")

	c.Write(EnableAddr, 1<<VBlank)
	require.True(t, c.HasPending())
}

func TestIFReadBackHasUnusedBitsSetHigh(t *testing.T) {
	c := New()
	require.Equal(t, uint8(0xE0), c.Read(FlagAddr))
}

func TestVectorAddressesAreSpacedByEight(t *testing.T) {
	require.Equal(t, uint16(0x0040), VBlank.Vector())
	require.Equal(t, uint16(0x0048), LCDStat.Vector())
	require.Equal(t, uint16(0x0050), Timer.Vector())
	require.Equal(t, uint16(0x0058), Serial.Vector())
	require.Equal(t, uint16(0x0060), Joypad.Vector())
}
