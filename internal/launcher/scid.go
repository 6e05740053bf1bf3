package launcher

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// Taken reports whether a candidate scid collides with a currently-live
// session. The Supervisor provides this as a closure over its live-session
// map so the launcher never needs its own notion of "all sessions".
type Taken func(scid uint32) bool

// AllocateSCID draws a uniformly-random 31-bit session id, redrawing on
// collision with any live session (spec §3 invariant 4, data model §3).
func AllocateSCID(taken Taken) (uint32, error) {
	for attempt := 0; attempt < 64; attempt++ {
		scid, err := randomSCID()
		if err != nil {
			return 0, err
		}
		if taken == nil || !taken(scid) {
			return scid, nil
		}
	}
	return 0, fmt.Errorf("launcher: could not draw a unique scid after 64 attempts")
}

func randomSCID() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	// Mask to 31 bits: scid ∈ [0, 2^31).
	return binary.BigEndian.Uint32(b[:]) & 0x7FFF_FFFF, nil
}

// SCIDHex renders a scid as the 8-hex-digit suffix used in the abstract
// socket name and the server's scid= argument.
func SCIDHex(scid uint32) string {
	return fmt.Sprintf("%08x", scid)
}
