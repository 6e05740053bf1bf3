// Package errs defines the error taxonomy shared by every layer of the
// session engine (adb transport, launcher, connector, demuxer, supervisor).
// Kinds are classification tags, not distinct Go types, so callers can
// branch on them with a single switch regardless of which layer raised the
// error.
package errs

import (
	"fmt"

	"github.com/haraldrudell/parl/perrors"
)

// Kind classifies an engine error. See spec §7 for the authoritative list.
type Kind int

const (
	AdbMissing Kind = iota
	AdbInvocation
	AdbTimeout
	DeviceUnknown
	ServerStage
	PortForward
	ServerSpawn
	ConnectTimeout
	HandshakeMalformed
	StreamClosed
	NotConnected
)

func (k Kind) String() string {
	switch k {
	case AdbMissing:
		return "AdbMissing"
	case AdbInvocation:
		return "AdbInvocation"
	case AdbTimeout:
		return "AdbTimeout"
	case DeviceUnknown:
		return "DeviceUnknown"
	case ServerStage:
		return "ServerStage"
	case PortForward:
		return "PortForward"
	case ServerSpawn:
		return "ServerSpawn"
	case ConnectTimeout:
		return "ConnectTimeout"
	case HandshakeMalformed:
		return "HandshakeMalformed"
	case StreamClosed:
		return "StreamClosed"
	case NotConnected:
		return "NotConnected"
	default:
		return "Unknown"
	}
}

// Error is the concrete error value carried across component boundaries.
// Serial and Stream are optional context (Stream is one of "video",
// "audio", "control"); Err is the underlying cause, if any.
type Error struct {
	Kind   Kind
	Serial string
	Stream string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Stream != "" && e.Err != nil:
		return fmt.Sprintf("%s[%s/%s]: %v", e.Kind, e.Serial, e.Stream, e.Err)
	case e.Serial != "" && e.Err != nil:
		return fmt.Sprintf("%s[%s]: %v", e.Kind, e.Serial, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a Kind-tagged error, wrapping cause with a stack trace via
// perrors so the originating frame survives as it bubbles up through
// Launcher/Connector/Supervisor wrapping.
func New(kind Kind, serial string, cause error) *Error {
	var wrapped error
	if cause != nil {
		wrapped = perrors.Errorf("%w", cause)
	}
	return &Error{Kind: kind, Serial: serial, Err: wrapped}
}

// NewStream is New with an associated stream name ("video"/"audio"/"control").
func NewStream(kind Kind, serial, stream string, cause error) *Error {
	e := New(kind, serial, cause)
	e.Stream = stream
	return e
}

// Is lets errors.Is(err, errs.AdbMissing) style checks work against a bare
// Kind value by comparing classification rather than identity.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if ae, ok := err.(*Error); ok {
			e = ae
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == kind
}
