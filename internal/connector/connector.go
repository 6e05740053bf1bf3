// Package connector opens the three TCP sockets a scrcpy server connects
// back through, in the strict order the tunnel-forward protocol requires:
// video, then (optionally) audio, then control (spec §4.4).
package connector

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/mirrorhost/scrcpy-engine/internal/errs"
)

const (
	connectTimeout  = 5 * time.Second
	interSocketWait = 300 * time.Millisecond
)

// Sockets holds the three connected streams for a session. Audio is nil
// when the device declined the audio connection (spec §4.4 step 3) — a
// non-fatal, permanent-for-the-session absence.
type Sockets struct {
	Video   net.Conn
	Audio   net.Conn
	Control net.Conn
}

// Connect dials 127.0.0.1:port for video, waits, attempts audio (best
// effort), waits, then dials control. A failure connecting video or control
// is fatal and rolls back every socket opened so far before returning.
func Connect(ctx context.Context, port int) (*Sockets, error) {
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	video, err := dial(ctx, addr)
	if err != nil {
		return nil, errs.NewStream(errs.ConnectTimeout, "", "video", err)
	}

	time.Sleep(interSocketWait)

	audio, _ := dial(ctx, addr) // failure is not fatal; audio stays nil

	time.Sleep(interSocketWait)

	control, err := dial(ctx, addr)
	if err != nil {
		_ = video.Close()
		if audio != nil {
			_ = audio.Close()
		}
		return nil, errs.NewStream(errs.ConnectTimeout, "", "control", err)
	}

	return &Sockets{Video: video, Audio: audio, Control: control}, nil
}

// Close closes whichever sockets are non-nil, for rollback or teardown.
func (s *Sockets) Close() {
	if s == nil {
		return
	}
	if s.Video != nil {
		_ = s.Video.Close()
	}
	if s.Audio != nil {
		_ = s.Audio.Close()
	}
	if s.Control != nil {
		_ = s.Control.Close()
	}
}

func dial(ctx context.Context, addr string) (net.Conn, error) {
	d := net.Dialer{Timeout: connectTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(true); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	return conn, nil
}
