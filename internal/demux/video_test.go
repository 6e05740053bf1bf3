package demux

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func videoHandshake(t *testing.T, deviceName string, codec, width, height uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteByte(0) // dummy byte

	name := make([]byte, 64)
	copy(name, deviceName)
	buf.Write(name)

	info := make([]byte, 12)
	binary.BigEndian.PutUint32(info[0:4], codec)
	binary.BigEndian.PutUint32(info[4:8], width)
	binary.BigEndian.PutUint32(info[8:12], height)
	buf.Write(info)
	return buf.Bytes()
}

func videoPacket(pts uint64, payload []byte) []byte {
	header := make([]byte, 12)
	binary.BigEndian.PutUint64(header[0:8], pts)
	binary.BigEndian.PutUint32(header[8:12], uint32(len(payload)))
	return append(header, payload...)
}

func TestVideoFeed_HandshakeThenPackets(t *testing.T) {
	wire := videoHandshake(t, "Pixel 7", CodecH264, 1080, 2400)
	wire = append(wire, videoPacket(0, []byte{0xAA, 0xBB})...)
	wire = append(wire, videoPacket(ConfigPTS, []byte{0xCC})...)

	v := NewVideo()
	events := v.Feed(wire)

	require.Len(t, events, 4)
	require.Equal(t, EventMetadata, events[0].Kind)
	require.Equal(t, "Pixel 7", events[0].Metadata.DeviceName)
	require.Equal(t, CodecH264, events[0].Metadata.CodecID)
	require.Equal(t, uint32(1080), events[0].Metadata.Width)
	require.Equal(t, EventConnected, events[1].Kind)
	require.Equal(t, EventVideoPacket, events[2].Kind)
	require.Equal(t, []byte{0xAA, 0xBB}, events[2].Packet.Payload)
	require.False(t, events[2].Packet.IsConfig)
	require.True(t, events[3].Packet.IsConfig)
}

func TestVideoFeed_DeviceNameShorterThan64(t *testing.T) {
	wire := videoHandshake(t, "X", CodecH264, 1, 1)
	v := NewVideo()
	events := v.Feed(wire)
	require.Equal(t, "X", events[0].Metadata.DeviceName)
}

func TestVideoFeed_ArbitraryChunkingProducesSameEvents(t *testing.T) {
	wire := videoHandshake(t, "Galaxy S23", CodecH265, 1440, 3088)
	wire = append(wire, videoPacket(100, bytes.Repeat([]byte{0x01}, 300))...)
	wire = append(wire, videoPacket(200, []byte{0x02})...)
	wire = append(wire, videoPacket(300, bytes.Repeat([]byte{0x03}, 50))...)

	whole := NewVideo().Feed(wire)

	for _, chunkSize := range []int{1, 2, 3, 7, 16, 64} {
		v := NewVideo()
		var chunked []Event
		for i := 0; i < len(wire); i += chunkSize {
			end := i + chunkSize
			if end > len(wire) {
				end = len(wire)
			}
			chunked = append(chunked, v.Feed(wire[i:end])...)
		}
		require.Equalf(t, whole, chunked, "chunk size %d produced a different event sequence", chunkSize)
	}
}
