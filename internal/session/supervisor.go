// Package session implements the Session Supervisor (spec §4.6): it
// orchestrates Launcher, Connector and Demuxer for each device, exposes
// start/stop/send, and fans out a single typed event stream to consumers.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mirrorhost/scrcpy-engine/internal/connector"
	"github.com/mirrorhost/scrcpy-engine/internal/controlmsg"
	"github.com/mirrorhost/scrcpy-engine/internal/demux"
	"github.com/mirrorhost/scrcpy-engine/internal/errs"
	"github.com/mirrorhost/scrcpy-engine/internal/launcher"
	"github.com/mirrorhost/scrcpy-engine/internal/logging"
	"github.com/mirrorhost/scrcpy-engine/internal/registry"
)

const readBufSize = 64 * 1024

// handshakeTimeout bounds how long a started session may take to complete
// the video socket's Metadata/Connected handshake (spec §4.5) before
// watchHandshake tears it down as malformed (spec §7 HandshakeMalformed).
// Start itself returns without waiting for the handshake.
const handshakeTimeout = 10 * time.Second

// HeartbeatConfig optionally enables the control-channel liveness probe
// (SPEC_FULL C.2): when no control read has occurred for StaleAfter, the
// Supervisor requests the clipboard as a no-op heartbeat. Disabled by
// default since it is a policy decision, not a protocol requirement.
type HeartbeatConfig struct {
	Enabled    bool
	Tick       time.Duration
	StaleAfter time.Duration
}

func defaultHeartbeat() HeartbeatConfig {
	return HeartbeatConfig{Tick: 5 * time.Second, StaleAfter: 15 * time.Second}
}

// Supervisor enforces "at most one Session per serial" (spec §3 invariant
// 2) and is the sole public entry point for starting, stopping and sending
// on sessions.
type Supervisor struct {
	launcher  *launcher.Launcher
	registry  *registry.Registry
	ports     *portPool
	heartbeat HeartbeatConfig
	log       logging.Tag

	mu          sync.Mutex
	sessions    map[string]*Session
	serialLocks map[string]*sync.Mutex

	events chan Event
}

// New returns a Supervisor driving launches through l.
func New(l *launcher.Launcher) *Supervisor {
	return &Supervisor{
		launcher:    l,
		ports:       newPortPool(),
		heartbeat:   defaultHeartbeat(),
		log:         logging.For("supervisor"),
		sessions:    make(map[string]*Session),
		serialLocks: make(map[string]*sync.Mutex),
		events:      make(chan Event, 256),
	}
}

// WithHeartbeat enables the optional control-channel heartbeat.
func (s *Supervisor) WithHeartbeat(cfg HeartbeatConfig) *Supervisor {
	cfg.Enabled = true
	if cfg.Tick <= 0 {
		cfg.Tick = defaultHeartbeat().Tick
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = defaultHeartbeat().StaleAfter
	}
	s.heartbeat = cfg
	return s
}

// WithRegistry lets Start reject an unseen serial with errs.DeviceUnknown
// (spec §7) instead of discovering the problem only once the Launcher's adb
// invocation fails. Optional: a Supervisor with no registry just defers to
// the Launcher, as before.
func (s *Supervisor) WithRegistry(reg *registry.Registry) *Supervisor {
	s.registry = reg
	return s
}

// Events returns the channel every lifecycle and stream event is published
// on: connected, metadata, video, audio, clipboard, disconnected, error.
func (s *Supervisor) Events() <-chan Event { return s.events }

func (s *Supervisor) lockFor(serial string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.serialLocks[serial]
	if !ok {
		l = &sync.Mutex{}
		s.serialLocks[serial] = l
	}
	return l
}

// Start is idempotent per serial: if a session already exists it returns
// its port without relaunching (spec §4.6, property S4). Concurrent Start
// calls for different serials proceed independently; concurrent calls for
// the same serial serialize on a per-serial lock so only one launch ever
// happens.
func (s *Supervisor) Start(ctx context.Context, serial string, opts launcher.Options) (int, error) {
	lock := s.lockFor(serial)
	lock.Lock()
	defer lock.Unlock()

	if sess, ok := s.get(serial); ok {
		return sess.Port, nil
	}

	if s.registry != nil {
		if _, ok := s.registry.Get(serial); !ok {
			err := errs.New(errs.DeviceUnknown, serial, nil)
			s.publish(Event{Kind: EventError, Serial: serial, Err: err})
			return 0, err
		}
	}

	traceID := uuid.NewString()
	log := logging.For("supervisor:" + serial)
	log.Infof("start trace=%s", traceID)

	taken := func(scid uint32) bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, sess := range s.sessions {
			if sess.SCID == scid {
				return true
			}
		}
		return false
	}

	handle, err := s.launcher.Launch(ctx, serial, opts, s.ports, taken)
	if err != nil {
		s.publish(Event{Kind: EventError, Serial: serial, Err: err})
		return 0, err
	}

	sockets, err := connector.Connect(ctx, handle.Port)
	if err != nil {
		s.launcher.Stop(ctx, handle, s.ports)
		s.publish(Event{Kind: EventError, Serial: serial, Err: err})
		return 0, err
	}

	sess := &Session{
		Serial:       serial,
		SCID:         handle.SCID,
		Port:         handle.Port,
		handle:       handle,
		sockets:      sockets,
		videoDemux:   demux.NewVideo(),
		audioDemux:   demux.NewAudio(),
		controlDemux: demux.NewControl(),
	}
	sess.touchControlActivity() // connect counts as activity; heartbeat measures idle time from here

	s.mu.Lock()
	s.sessions[serial] = sess
	s.mu.Unlock()

	s.wireReaders(ctx, sess)
	go s.watchHandshake(sess)
	if s.heartbeat.Enabled {
		go s.runHeartbeat(ctx, sess)
	}
	go s.watchChildExit(sess)

	return sess.Port, nil
}

// watchHandshake tears a session down as HandshakeMalformed (spec §7) if the
// video socket never produces the Metadata/Connected pair within
// handshakeTimeout: the demuxer itself never errors on short reads (spec
// §4.5 parses incrementally and just waits for more bytes), so a peer that
// never sends a valid dummy-byte/device-name/codec-info preamble would
// otherwise stall the session forever instead of surfacing as an error.
func (s *Supervisor) watchHandshake(sess *Session) {
	timer := time.NewTimer(handshakeTimeout)
	defer timer.Stop()
	select {
	case <-sess.handle.Done():
		return
	case <-timer.C:
	}
	if sess.handshakeDone.Load() {
		return
	}
	s.mu.Lock()
	_, stillLive := s.sessions[sess.Serial]
	if stillLive {
		delete(s.sessions, sess.Serial)
	}
	s.mu.Unlock()
	if !stillLive {
		return
	}
	s.publish(Event{Kind: EventError, Serial: sess.Serial, Err: errs.New(errs.HandshakeMalformed, sess.Serial, nil)})
	s.teardown(context.Background(), sess, true)
}

// Send writes bytes to serial's control socket. It returns false when there
// is no session, the handshake hasn't completed, or the control socket is
// absent — never an error, per spec §4.6.
func (s *Supervisor) Send(serial string, payload []byte) bool {
	sess, ok := s.get(serial)
	if !ok {
		return false
	}
	return sess.Send(payload) == nil
}

// RequestClipboard issues a GET_CLIPBOARD control request (SPEC_FULL C.1),
// a thin convenience over Send.
func (s *Supervisor) RequestClipboard(serial string) bool {
	return s.Send(serial, controlmsg.GetClipboard(controlmsg.CopyKeyNone))
}

// RequestKeyframe issues a RESET_VIDEO control request.
func (s *Supervisor) RequestKeyframe(serial string) bool {
	return s.Send(serial, controlmsg.ResetVideo())
}

// Stop tears down serial's session: Demuxer state is dropped, sockets are
// closed (video first, per spec §5 cancellation ordering), the launcher is
// asked to stop the shell child, and a disconnected event fires. Stop is
// idempotent: a second call on an already-stopped serial is a no-op.
func (s *Supervisor) Stop(ctx context.Context, serial string) {
	lock := s.lockFor(serial)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	sess, ok := s.sessions[serial]
	if ok {
		delete(s.sessions, serial)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	s.teardown(ctx, sess, true)
}

func (s *Supervisor) teardown(ctx context.Context, sess *Session, emitDisconnected bool) {
	if sess.sockets != nil {
		if sess.sockets.Video != nil {
			_ = sess.sockets.Video.Close()
		}
		if sess.sockets.Audio != nil {
			_ = sess.sockets.Audio.Close()
		}
		if sess.sockets.Control != nil {
			_ = sess.sockets.Control.Close()
		}
	}
	s.launcher.Stop(ctx, sess.handle, s.ports)

	if emitDisconnected {
		s.publish(Event{Kind: EventDisconnected, Serial: sess.Serial})
	}
}

func (s *Supervisor) get(serial string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[serial]
	return sess, ok
}

// watchChildExit tears down a session if its shell child exits on its own
// (e.g. the server process crashed) without the consumer ever noticing a
// closed video socket first.
func (s *Supervisor) watchChildExit(sess *Session) {
	<-sess.handle.Done()
	s.mu.Lock()
	_, stillLive := s.sessions[sess.Serial]
	if stillLive {
		delete(s.sessions, sess.Serial)
	}
	s.mu.Unlock()
	if !stillLive {
		return // already torn down via Stop
	}
	s.teardown(context.Background(), sess, true)
}

func (s *Supervisor) wireReaders(ctx context.Context, sess *Session) {
	go s.readVideo(sess)
	if sess.HasAudio() {
		go s.readAudio(sess)
	}
	go s.readControl(sess)
}

func (s *Supervisor) readVideo(sess *Session) {
	buf := make([]byte, readBufSize)
	for {
		n, err := sess.sockets.Video.Read(buf)
		if n > 0 {
			for _, ev := range sess.videoDemux.Feed(buf[:n]) {
				s.handleVideoEvent(sess, ev)
			}
		}
		if err != nil {
			// Video-socket close is always fatal (spec §4.6): tear the
			// session down and notify the consumer.
			s.mu.Lock()
			_, stillLive := s.sessions[sess.Serial]
			if stillLive {
				delete(s.sessions, sess.Serial)
			}
			s.mu.Unlock()
			if stillLive {
				s.teardown(context.Background(), sess, true)
			}
			return
		}
	}
}

func (s *Supervisor) handleVideoEvent(sess *Session, ev demux.Event) {
	switch ev.Kind {
	case demux.EventMetadata:
		s.publish(Event{Kind: EventMetadata, Serial: sess.Serial, Metadata: ev.Metadata})
	case demux.EventConnected:
		sess.handshakeDone.Store(true)
		s.publish(Event{Kind: EventConnected, Serial: sess.Serial})
	case demux.EventVideoPacket:
		s.publish(Event{Kind: EventVideo, Serial: sess.Serial, Packet: ev.Packet})
	}
}

func (s *Supervisor) readAudio(sess *Session) {
	buf := make([]byte, readBufSize)
	for {
		n, err := sess.sockets.Audio.Read(buf)
		if n > 0 {
			for _, ev := range sess.audioDemux.Feed(buf[:n]) {
				switch ev.Kind {
				case demux.EventAudioPacket:
					s.publish(Event{Kind: EventAudio, Serial: sess.Serial, Packet: ev.Packet})
				case demux.EventWarning:
					s.log.Errorf("%s: %s", sess.Serial, ev.Warning)
				}
			}
		}
		if err != nil {
			// Audio-socket close degrades silently: video continues (spec
			// §4.6). No teardown, no event.
			return
		}
	}
}

func (s *Supervisor) readControl(sess *Session) {
	buf := make([]byte, readBufSize)
	for {
		n, err := sess.sockets.Control.Read(buf)
		if n > 0 {
			sess.touchControlActivity()
			for _, ev := range sess.controlDemux.Feed(buf[:n]) {
				if ev.Kind == demux.EventClipboard {
					s.publish(Event{Kind: EventClipboard, Serial: sess.Serial, Clipboard: ev.Text})
				}
			}
		}
		if err != nil {
			// Control-socket close is logged, not fatal (spec §4.6).
			s.log.Errorf("control closed for %s: %v", sess.Serial, err)
			return
		}
	}
}

// runHeartbeat probes the control channel only when it has genuinely gone
// quiet (spec SPEC_FULL C.2): sess.ControlIdleFor is driven by real reads in
// readControl, not by whether a previous heartbeat fired, so a channel that
// keeps replying on its own is left alone.
func (s *Supervisor) runHeartbeat(ctx context.Context, sess *Session) {
	ticker := time.NewTicker(s.heartbeat.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sess.handle.Done():
			return
		case <-ticker.C:
			if sess.ControlIdleFor() > s.heartbeat.StaleAfter {
				if err := sess.Send(controlmsg.GetClipboard(controlmsg.CopyKeyNone)); err != nil {
					return
				}
			}
		}
	}
}

func (s *Supervisor) publish(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.log.Errorf("event channel full, dropping %v for %s", ev.Kind, ev.Serial)
	}
}
