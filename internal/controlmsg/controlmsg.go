// Package controlmsg builds the handful of outbound control messages the
// engine itself needs to originate (clipboard requests, a keyframe-reset
// nudge). Everything else on the control channel is the consumer's concern
// (spec §4.5) — the engine is transparent to outbound bytes beyond writing
// them atomically; this package only covers the convenience helpers
// SPEC_FULL C.1/C.2 add on top of that.
package controlmsg

const (
	// TypeGetClipboard requests the device's current clipboard contents.
	TypeGetClipboard byte = 8
	// TypeResetVideo asks the server to force a fresh keyframe.
	TypeResetVideo byte = 17

	// CopyKeyNone requests the clipboard without a paste-key side effect.
	CopyKeyNone byte = 0
)

// GetClipboard builds a GET_CLIPBOARD request.
func GetClipboard(copyKey byte) []byte {
	return []byte{TypeGetClipboard, copyKey}
}

// ResetVideo builds a RESET_VIDEO request.
func ResetVideo() []byte {
	return []byte{TypeResetVideo}
}
