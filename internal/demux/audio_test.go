package demux

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func audioPacket(pts uint64, payload []byte) []byte {
	header := make([]byte, 12)
	binary.BigEndian.PutUint64(header[0:8], pts)
	binary.BigEndian.PutUint32(header[8:12], uint32(len(payload)))
	return append(header, payload...)
}

func TestAudioFeed_FindsCodecTagAndStreams(t *testing.T) {
	var wire bytes.Buffer
	wire.WriteString("junk-before-tag-")
	wire.WriteString("raw!") // 3-byte "raw" tag plus a trailing byte the scan consumes as the 4th
	wire.Write(audioPacket(42, []byte{0x9, 0x9, 0x9}))

	a := NewAudio()
	events := a.Feed(wire.Bytes())

	require.Len(t, events, 1)
	require.Equal(t, EventAudioPacket, events[0].Kind)
	require.Equal(t, uint64(42), events[0].Packet.PTS)
	require.Equal(t, []byte{0x9, 0x9, 0x9}, events[0].Packet.Payload)
}

func TestAudioFeed_EmergencyAlignmentAfter256Bytes(t *testing.T) {
	junk := bytes.Repeat([]byte{0xEE}, 300)
	a := NewAudio()
	events := a.Feed(junk)

	require.NotEmpty(t, events)
	require.Equal(t, EventWarning, events[0].Kind)
}

func TestAudioFeed_ArbitraryChunkingProducesSameEvents(t *testing.T) {
	var wire bytes.Buffer
	wire.WriteString("opu!")
	wire.Write(audioPacket(1, bytes.Repeat([]byte{0x7}, 200)))
	wire.Write(audioPacket(2, []byte{0x1}))

	whole := NewAudio().Feed(wire.Bytes())

	for _, chunkSize := range []int{1, 2, 5, 13, 31} {
		a := NewAudio()
		var chunked []Event
		buf := wire.Bytes()
		for i := 0; i < len(buf); i += chunkSize {
			end := i + chunkSize
			if end > len(buf) {
				end = len(buf)
			}
			chunked = append(chunked, a.Feed(buf[i:end])...)
		}
		require.Equal(t, whole, chunked)
	}
}
