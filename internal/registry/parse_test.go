package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDevicesList_SkipsHeaderAndBlankLines(t *testing.T) {
	out := "List of devices attached\n" +
		"ABC123\tdevice usb:1-1 product:panther model:Pixel_7 device:panther transport_id:4\n" +
		"\n" +
		"192.168.1.5:5555\toffline\n"

	got := parseDevicesList(out)
	require.Len(t, got, 2)

	require.Equal(t, "ABC123", got[0].Serial)
	require.Equal(t, StateDevice, got[0].State)
	require.Equal(t, "Pixel 7", got[0].Model)
	require.Equal(t, "panther", got[0].Product)
	require.Equal(t, "4", got[0].TransportID)

	require.Equal(t, "192.168.1.5:5555", got[1].Serial)
	require.Equal(t, StateOffline, got[1].State)
}

func TestParseDevicesList_UnauthorizedHasNoExtraTokens(t *testing.T) {
	out := "List of devices attached\nXYZ999\tunauthorized\n"
	got := parseDevicesList(out)
	require.Len(t, got, 1)
	require.Equal(t, StateUnauthorized, got[0].State)
	require.Empty(t, got[0].Model)
}

func TestIsWireless(t *testing.T) {
	require.True(t, IsWireless("192.168.1.5:5555"))
	require.True(t, IsWireless("my-device.local:5555"))
	require.False(t, IsWireless("ABC123XYZ"))
}
