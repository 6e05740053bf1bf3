package demux

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func clipboardMsg(text string) []byte {
	msg := make([]byte, 5+len(text))
	msg[0] = controlTagClipboard
	binary.BigEndian.PutUint32(msg[1:5], uint32(len(text)))
	copy(msg[5:], text)
	return msg
}

func clipboardAckMsg(seq uint64) []byte {
	msg := make([]byte, 9)
	msg[0] = controlTagClipboardAck
	binary.BigEndian.PutUint64(msg[1:9], seq)
	return msg
}

func uhidOutputMsg(id uint16, data []byte) []byte {
	msg := make([]byte, 5+len(data))
	msg[0] = controlTagUhidOutput
	binary.BigEndian.PutUint16(msg[1:3], id)
	binary.BigEndian.PutUint16(msg[3:5], uint16(len(data)))
	msg = append(msg[:5], data...)
	return msg
}

func TestControlFeed_ClipboardEmitsEvent(t *testing.T) {
	c := NewControl()
	events := c.Feed(clipboardMsg("hello clipboard"))
	require.Len(t, events, 1)
	require.Equal(t, EventClipboard, events[0].Kind)
	require.Equal(t, "hello clipboard", events[0].Text)
}

func TestControlFeed_AckAndUhidOutputAreSilentlyConsumed(t *testing.T) {
	c := NewControl()
	var wire bytes.Buffer
	wire.Write(clipboardAckMsg(7))
	wire.Write(uhidOutputMsg(1, []byte{0x1, 0x2}))
	wire.Write(clipboardMsg("after"))

	events := c.Feed(wire.Bytes())
	require.Len(t, events, 1)
	require.Equal(t, "after", events[0].Text)
}

func TestControlFeed_UnknownTagDiscardsAndDesyncs(t *testing.T) {
	c := NewControl()
	events := c.Feed([]byte{0x7F, 0x01, 0x02, 0x03})
	require.Empty(t, events)
	require.Equal(t, 0, c.buf.Len())

	// A well-formed message in a later delivery parses cleanly.
	events = c.Feed(clipboardMsg("resynced"))
	require.Len(t, events, 1)
	require.Equal(t, "resynced", events[0].Text)
}

func TestControlFeed_ArbitraryChunkingProducesSameEvents(t *testing.T) {
	var wire bytes.Buffer
	wire.Write(clipboardMsg("first"))
	wire.Write(clipboardAckMsg(3))
	wire.Write(clipboardMsg("second, a bit longer this time"))

	whole := NewControl().Feed(wire.Bytes())

	for _, chunkSize := range []int{1, 2, 4, 9} {
		c := NewControl()
		var chunked []Event
		buf := wire.Bytes()
		for i := 0; i < len(buf); i += chunkSize {
			end := i + chunkSize
			if end > len(buf) {
				end = len(buf)
			}
			chunked = append(chunked, c.Feed(buf[i:end])...)
		}
		require.Equal(t, whole, chunked)
	}
}
