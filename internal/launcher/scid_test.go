package launcher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocateSCID_WithinRange(t *testing.T) {
	scid, err := AllocateSCID(nil)
	require.NoError(t, err)
	require.LessOrEqual(t, scid, uint32(0x7FFF_FFFF))
}

func TestAllocateSCID_RedrawsOnCollision(t *testing.T) {
	first, err := AllocateSCID(nil)
	require.NoError(t, err)

	seen := map[uint32]bool{first: true}
	taken := func(scid uint32) bool { return seen[scid] }

	second, err := AllocateSCID(taken)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestAllocateSCID_GivesUpEventually(t *testing.T) {
	alwaysTaken := func(uint32) bool { return true }
	_, err := AllocateSCID(alwaysTaken)
	require.Error(t, err)
	require.Contains(t, err.Error(), "scid")
}

func TestSCIDHex_IsEightHexDigits(t *testing.T) {
	require.Equal(t, "00000000", SCIDHex(0))
	require.Equal(t, "0000002a", SCIDHex(42))
	require.Equal(t, "7fffffff", SCIDHex(0x7FFFFFFF))
	require.Len(t, SCIDHex(123456789), 8)
}
