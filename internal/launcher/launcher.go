// Package launcher stages and launches the on-device scrcpy server process
// for a single device, and supervises the resulting shell child until an
// explicit stop (spec §4.3).
package launcher

import (
	"context"
	"fmt"
	"time"

	"github.com/mirrorhost/scrcpy-engine/internal/adb"
	"github.com/mirrorhost/scrcpy-engine/internal/errs"
	"github.com/mirrorhost/scrcpy-engine/internal/logging"
)

const (
	// DeviceServerPath is the on-device path the server jar is staged to.
	DeviceServerPath = "/data/local/tmp/scrcpy-server.jar"
	// DefaultServerVersion is the opaque host-configured protocol literal
	// that must match the bundled server artifact.
	DefaultServerVersion = "3.3.2"
	// BasePort is the first local TCP port handed out; concurrent sessions
	// count upward from here (spec §3, §6).
	BasePort = 27183

	settleDelay = 1 * time.Second
)

// PortAllocator hands out and reclaims local TCP ports. The Supervisor owns
// the live set; Launcher only asks for a port and returns it on stop.
type PortAllocator interface {
	Allocate() int
	Release(port int)
}

// Handle is a running (or rolled-back) server launch.
type Handle struct {
	Serial string
	SCID   uint32
	Port   int

	child *adb.ChildHandle
}

// Done reports the underlying shell child's exit.
func (h *Handle) Done() <-chan struct{} {
	if h.child == nil {
		ch := make(chan struct{})
		return ch
	}
	return h.child.Done()
}

// Launcher stages and launches scrcpy-server.jar via adb shell.
type Launcher struct {
	transport    *adb.Transport
	artifactPath string // host-side path to scrcpy-server.jar
	log          logging.Tag
}

// New returns a Launcher that stages artifactPath (the host-side build of
// scrcpy-server.jar) onto devices that don't already have it.
func New(transport *adb.Transport, artifactPath string) *Launcher {
	return &Launcher{transport: transport, artifactPath: artifactPath, log: logging.For("launcher")}
}

// Launch implements the six-step procedure of spec §4.3. It never leaves
// partial state: any failure after allocating resources releases them
// before returning.
func (l *Launcher) Launch(ctx context.Context, serial string, opts Options, ports PortAllocator, taken Taken) (*Handle, error) {
	if err := l.stage(ctx, serial); err != nil {
		return nil, err
	}
	l.prepareDevice(ctx, serial)

	scid, err := AllocateSCID(taken)
	if err != nil {
		return nil, errs.New(errs.ServerSpawn, serial, err)
	}
	port := ports.Allocate()

	socketName := "localabstract:scrcpy_" + SCIDHex(scid)
	if err := l.transport.Forward(ctx, serial, port, socketName); err != nil {
		ports.Release(port)
		return nil, err
	}

	child, err := l.transport.SpawnShell(ctx, serial, l.serverArgs(scid, opts)...)
	if err != nil {
		l.transport.Unforward(ctx, serial, port)
		ports.Release(port)
		return nil, errs.New(errs.ServerSpawn, serial, err)
	}

	// Allow the device time to create the abstract socket before the
	// Connector dials (spec §4.3 step 6).
	select {
	case <-time.After(settleDelay):
	case <-child.Done():
		// The shell exited before even settling; surface as a spawn failure.
		l.transport.Unforward(ctx, serial, port)
		ports.Release(port)
		return nil, errs.New(errs.ServerSpawn, serial, child.Wait())
	}

	return &Handle{Serial: serial, SCID: scid, Port: port, child: child}, nil
}

// Stop tears down a launch: SIGTERM to the shell child, remove the forward,
// best-effort pkill on the device, release the port. A nil handle is a
// no-op. Stop does not record that a handle was already stopped: a second
// call on the same handle repeats every step, including the port release.
func (l *Launcher) Stop(ctx context.Context, h *Handle, ports PortAllocator) {
	if h == nil {
		return
	}
	if h.child != nil {
		h.child.Kill()
	}
	l.transport.Unforward(ctx, h.Serial, h.Port)
	if _, err := l.transport.Shell(ctx, h.Serial, "pkill", "-f", "scrcpy-server"); err != nil {
		l.log.Debugf("pkill scrcpy-server on %s: %v", h.Serial, err)
	}
	if ports != nil {
		ports.Release(h.Port)
	}
}

func (l *Launcher) stage(ctx context.Context, serial string) error {
	if _, err := l.transport.Shell(ctx, serial, "ls", "-l", DeviceServerPath); err == nil {
		return nil // already staged
	}
	if err := l.transport.Push(ctx, serial, l.artifactPath, DeviceServerPath); err != nil {
		return errs.New(errs.ServerStage, serial, err)
	}
	return nil
}

func (l *Launcher) prepareDevice(ctx context.Context, serial string) {
	if _, err := l.transport.Shell(ctx, serial, "settings", "put", "secure", "show_ime_with_hard_keyboard", "0"); err != nil {
		l.log.Debugf("prepare %s: show_ime_with_hard_keyboard: %v", serial, err)
	}
}

func (l *Launcher) serverArgs(scid uint32, opts Options) []string {
	return []string{
		"CLASSPATH=" + DeviceServerPath,
		"app_process",
		"/",
		"com.genymobile.scrcpy.Server",
		opts.Version,
		"scid=" + SCIDHex(scid),
		"log_level=info",
		"video=true",
		fmt.Sprintf("audio=%t", opts.Audio),
		"audio_codec=" + opts.AudioCodec,
		"control=true",
		fmt.Sprintf("max_size=%d", opts.MaxSize),
		fmt.Sprintf("max_fps=%d", opts.MaxFPS),
		fmt.Sprintf("video_bit_rate=%d", opts.Bitrate),
		"video_codec=h264",
		"video_encoder=",
		"tunnel_forward=true",
		"send_device_meta=true",
		"send_codec_meta=true",
		"send_frame_meta=true",
		"send_dummy_byte=true",
		"raw_stream=false",
	}
}
