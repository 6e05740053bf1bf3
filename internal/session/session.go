package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/mirrorhost/scrcpy-engine/internal/connector"
	"github.com/mirrorhost/scrcpy-engine/internal/demux"
	"github.com/mirrorhost/scrcpy-engine/internal/errs"
	"github.com/mirrorhost/scrcpy-engine/internal/launcher"
)

// Session is the live state for one device: the child shell, the three
// socket handles, and a demuxer per stream (spec §3). It is created by
// Supervisor.Start and destroyed on explicit stop, video-socket close, or
// unrecoverable error.
type Session struct {
	Serial string
	SCID   uint32
	Port   int

	handle  *launcher.Handle
	sockets *connector.Sockets

	videoDemux   *demux.Video
	audioDemux   *demux.Audio
	controlDemux *demux.Control

	controlMu sync.Mutex
	// handshakeDone flips once the video Metadata event has been observed;
	// Send refuses writes before that point (spec §4.5 send/NotConnected).
	handshakeDone atomic.Bool
	// lastControlActivity holds a UnixNano timestamp of the most recent
	// control-socket read, used by the optional heartbeat to tell an
	// actually-idle channel from one that's been replying all along.
	lastControlActivity atomic.Int64
}

// touchControlActivity records that a control-socket read just happened.
func (s *Session) touchControlActivity() {
	s.lastControlActivity.Store(time.Now().UnixNano())
}

// ControlIdleFor reports how long it's been since the last control-socket
// read (or since the session was created, if none has happened yet).
func (s *Session) ControlIdleFor() time.Duration {
	last := s.lastControlActivity.Load()
	if last == 0 {
		return 0
	}
	return time.Since(time.Unix(0, last))
}

// Send writes bytes to the control socket. It fails with NotConnected when
// the handshake hasn't completed or the control socket is absent; outbound
// message construction is the caller's concern (spec §4.5).
func (s *Session) Send(payload []byte) error {
	if !s.handshakeDone.Load() {
		return errs.New(errs.NotConnected, s.Serial, nil)
	}
	if s.sockets == nil || s.sockets.Control == nil {
		return errs.New(errs.NotConnected, s.Serial, nil)
	}
	s.controlMu.Lock()
	defer s.controlMu.Unlock()
	_, err := s.sockets.Control.Write(payload)
	if err != nil {
		return errs.NewStream(errs.StreamClosed, s.Serial, "control", err)
	}
	return nil
}

// HasAudio reports whether the audio socket connected for this session
// (spec §4.4 step 3: audio absence is permanent for the session's
// lifetime).
func (s *Session) HasAudio() bool {
	return s.sockets != nil && s.sockets.Audio != nil
}
