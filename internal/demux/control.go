package demux

import "encoding/binary"

const (
	controlTagClipboard    byte = 0
	controlTagClipboardAck byte = 1
	controlTagUhidOutput   byte = 2
)

// Control is the incremental parser for device->host control replies
// (spec §4.5). Only Clipboard becomes a visible event; ClipboardAck and
// UhidOutput are parsed just far enough to stay in sync with the wire and
// then discarded, matching the supervisor's public event contract (spec
// §4.6), which surfaces clipboard only.
type Control struct {
	buf buffer
}

// NewControl returns a fresh control-reply parser.
func NewControl() *Control { return &Control{} }

func (c *Control) Feed(data []byte) []Event {
	c.buf.write(data)
	var events []Event
	for {
		tagBuf, ok := c.buf.peek(1)
		if !ok {
			return events
		}
		tag := tagBuf[0]

		switch tag {
		case controlTagClipboard:
			header, ok := c.buf.peek(5)
			if !ok {
				return events
			}
			length := int(binary.BigEndian.Uint32(header[1:5]))
			full, ok := c.buf.peek(5 + length)
			if !ok {
				return events
			}
			text := string(full[5 : 5+length])
			c.buf.discard(5 + length)
			events = append(events, Event{Kind: EventClipboard, Text: text})

		case controlTagClipboardAck:
			if !c.haveAndDiscard(9) {
				return events
			}

		case controlTagUhidOutput:
			header, ok := c.buf.peek(5)
			if !ok {
				return events
			}
			dataLen := int(binary.BigEndian.Uint16(header[3:5]))
			if !c.haveAndDiscard(5 + dataLen) {
				return events
			}

		default:
			// Desynchronization: discard everything pending and stop this
			// parse pass. Well-formed replies in later deliveries resume
			// parsing cleanly (spec §4.5, §8).
			c.buf.discard(c.buf.Len())
			return events
		}
	}
}

// haveAndDiscard discards n bytes if available, reporting whether it did.
func (c *Control) haveAndDiscard(n int) bool {
	if _, ok := c.buf.peek(n); !ok {
		return false
	}
	c.buf.discard(n)
	return true
}
