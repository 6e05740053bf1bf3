package demux

import (
	"bytes"
	"encoding/binary"
)

type videoState int

const (
	videoAwaitDummy videoState = iota
	videoAwaitDeviceName
	videoAwaitCodecInfo
	videoStreaming
)

// Video is the incremental parser for the video socket: dummy byte, device
// name, codec info, then a stream of framed packets (spec §4.5).
type Video struct {
	buf        buffer
	state      videoState
	deviceName string
}

// NewVideo returns a fresh video-stream parser.
func NewVideo() *Video { return &Video{} }

// Feed appends newly-read bytes and returns every event that became
// parseable. It never blocks and never loops on insufficient data: when a
// step needs more bytes than are buffered, Feed returns what it has so far
// and waits for the next call.
func (v *Video) Feed(data []byte) []Event {
	v.buf.write(data)
	var events []Event
	for {
		switch v.state {
		case videoAwaitDummy:
			if v.buf.Len() < 1 {
				return events
			}
			v.buf.discard(1)
			v.state = videoAwaitDeviceName

		case videoAwaitDeviceName:
			raw, ok := v.buf.peek(64)
			if !ok {
				return events
			}
			nameEnd := bytes.IndexByte(raw, 0)
			if nameEnd < 0 {
				nameEnd = 64
			}
			v.deviceName = string(raw[:nameEnd])
			v.buf.discard(64)
			v.state = videoAwaitCodecInfo

		case videoAwaitCodecInfo:
			raw, ok := v.buf.peek(12)
			if !ok {
				return events
			}
			md := Metadata{
				DeviceName: v.deviceName,
				CodecID:    binary.BigEndian.Uint32(raw[0:4]),
				Width:      binary.BigEndian.Uint32(raw[4:8]),
				Height:     binary.BigEndian.Uint32(raw[8:12]),
			}
			v.buf.discard(12)
			events = append(events,
				Event{Kind: EventMetadata, Metadata: md},
				Event{Kind: EventConnected},
			)
			v.state = videoStreaming

		case videoStreaming:
			header, ok := v.buf.peek(12)
			if !ok {
				return events
			}
			pts := binary.BigEndian.Uint64(header[0:8])
			size := int(binary.BigEndian.Uint32(header[8:12]))

			full, ok := v.buf.peek(12 + size)
			if !ok {
				return events // retain the header for the next delivery
			}
			payload := append([]byte(nil), full[12:12+size]...)
			v.buf.discard(12 + size)

			events = append(events, Event{
				Kind: EventVideoPacket,
				Packet: FramedPacket{
					PTS:      pts,
					Payload:  payload,
					IsConfig: pts == ConfigPTS,
				},
			})
		}
	}
}
