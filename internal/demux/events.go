// Package demux is the stateful incremental parser for the three scrcpy
// streams: video handshake + framed packets, audio handshake + PTS-tagged
// packets, and control ack/clipboard/HID-output messages (spec §4.5). Each
// stream type gets its own demuxer instance with its own buffer; Feed is
// called with whatever bytes arrived on the socket and returns the events
// that became parseable, regardless of how the caller chunked the delivery.
package demux

// EventKind tags an Event's payload field.
type EventKind int

const (
	EventMetadata EventKind = iota
	EventConnected
	EventVideoPacket
	EventAudioPacket
	EventClipboard
	EventWarning
)

// Metadata is emitted once per session, from the video handshake.
type Metadata struct {
	DeviceName string
	CodecID    uint32
	Width      uint32
	Height     uint32
}

// FramedPacket is a (pts, payload) tuple shared by the video and audio wire
// formats. IsConfig is only meaningful for video.
type FramedPacket struct {
	PTS      uint64
	Payload  []byte
	IsConfig bool
}

// ConfigPTS is the reserved pts value marking a video codec-config packet
// (spec §3).
const ConfigPTS uint64 = 0xFFFF_FFFF_FFFF_FFFF

// Event is the single tagged-variant event type a demuxer's Feed produces.
// Only the field matching Kind is populated.
type Event struct {
	Kind     EventKind
	Metadata Metadata
	Packet   FramedPacket
	Text     string // EventClipboard
	Warning  string // EventWarning
}
