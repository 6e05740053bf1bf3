package session

import "github.com/mirrorhost/scrcpy-engine/internal/demux"

// EventKind tags a Supervisor event. These are the engine's full public
// contract (spec §4.6); there are no string-keyed or dynamically-named
// events.
type EventKind int

const (
	EventConnected EventKind = iota
	EventMetadata
	EventVideo
	EventAudio
	EventClipboard
	EventDisconnected
	EventError
)

// Event is the single tagged-variant event the Supervisor fans out to
// consumers. Only the field matching Kind is populated.
type Event struct {
	Kind      EventKind
	Serial    string
	Metadata  demux.Metadata
	Packet    demux.FramedPacket
	Clipboard string
	Err       error
}
