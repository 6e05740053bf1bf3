package demux

import (
	"bytes"
	"encoding/binary"
)

type audioState int

const (
	audioAwaitCodec audioState = iota
	audioStreaming
)

// preambleSearchLimit is how many leading bytes the signature search
// examines before giving up and emergency-aligning (spec §4.5).
const preambleSearchLimit = 256

// Audio is the incremental parser for the audio socket. Because the exact
// preamble length is server-build-dependent, it locates the start of the
// framed region with a signature search for a known codec tag rather than
// parsing a fixed-size header (spec §4.5).
type Audio struct {
	buf   buffer
	state audioState
}

// NewAudio returns a fresh audio-stream parser.
func NewAudio() *Audio { return &Audio{} }

func (a *Audio) Feed(data []byte) []Event {
	a.buf.write(data)
	var events []Event
	for {
		switch a.state {
		case audioAwaitCodec:
			window := a.buf.peekAvailable()
			limit := len(window)
			if limit > preambleSearchLimit {
				limit = preambleSearchLimit
			}
			if idx, ok := findCodecTag(window, limit); ok {
				if idx+4 > len(window) {
					return events // the tag's 4th byte has not arrived yet
				}
				a.buf.discard(idx + 4)
				a.state = audioStreaming
				continue
			}
			// A tag may start at any offset below the limit, so the search
			// only gives up once the last such 3-byte prefix is fully buffered.
			if len(window) >= preambleSearchLimit+2 {
				events = append(events, Event{
					Kind:    EventWarning,
					Warning: "audio preamble signature not found within 256 bytes; emergency alignment",
				})
				a.buf.discard(preambleSearchLimit)
				a.state = audioStreaming
				continue
			}
			return events // need more bytes before the search can resolve

		case audioStreaming:
			header, ok := a.buf.peek(12)
			if !ok {
				return events
			}
			pts := binary.BigEndian.Uint64(header[0:8])
			size := int(binary.BigEndian.Uint32(header[8:12]))

			full, ok := a.buf.peek(12 + size)
			if !ok {
				return events
			}
			payload := append([]byte(nil), full[12:12+size]...)
			a.buf.discard(12 + size)

			events = append(events, Event{
				Kind:   EventAudioPacket,
				Packet: FramedPacket{PTS: pts, Payload: payload},
			})
		}
	}
}

// findCodecTag scans window[0:limit] for the earliest 3-byte prefix of a
// known codec tag, returning its offset.
func findCodecTag(window []byte, limit int) (int, bool) {
	for i := 0; i+3 <= len(window) && i < limit; i++ {
		for _, tag := range audioCodecTags {
			if bytes.Equal(window[i:i+3], tag) {
				return i, true
			}
		}
	}
	return 0, false
}
