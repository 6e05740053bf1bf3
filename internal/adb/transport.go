// Package adb wraps the subset of Android Debug Bridge interactions the
// session engine depends on: locating the adb binary, running one-shot
// commands with a timeout, spawning long-running shells, pushing files and
// managing port forwards. adb itself is always treated as an opaque child
// process (spec §1) — this package never talks to the ADB wire protocol
// directly.
package adb

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"time"

	"github.com/haraldrudell/parl/perrors"
	"github.com/mirrorhost/scrcpy-engine/internal/errs"
	"github.com/mirrorhost/scrcpy-engine/internal/logging"
)

// execTimeout bounds every one-shot adb invocation (spec §4.1, §5).
const execTimeout = 30 * time.Second

var log = logging.For("adb")

// Transport executes adb commands against a resolved adb binary.
type Transport struct {
	path string
}

// New returns a Transport bound to the given locate() configuration. The
// resolution itself never fails (the PATH fallback is unconditional); a
// missing binary only surfaces later, the first time exec() is actually
// run and the child process fails to start.
func New(cfg LocateConfig) (*Transport, error) {
	path, err := Locate(cfg)
	if err != nil {
		return nil, errs.New(errs.AdbMissing, "", err)
	}
	return &Transport{path: path}, nil
}

// Path returns the resolved adb executable path (may be the bare "adb").
func (t *Transport) Path() string { return t.path }

func (t *Transport) args(serial string, extra ...string) []string {
	args := make([]string, 0, len(extra)+2)
	if serial != "" {
		args = append(args, "-s", serial)
	}
	args = append(args, extra...)
	return args
}

func (t *Transport) run(ctx context.Context, args []string) ([]byte, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, execTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, nil, errs.New(errs.AdbTimeout, "", ctx.Err())
	}
	if err != nil {
		return nil, nil, &errs.Error{
			Kind: errs.AdbInvocation,
			Err:  perrors.Errorf("adb %v: %w: %s", args, err, stderr.String()),
		}
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}

// Exec runs `adb [-s serial] args...` and returns captured stdout as text.
func (t *Transport) Exec(ctx context.Context, serial string, args ...string) (string, error) {
	out, _, err := t.run(ctx, t.args(serial, args...))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ExecBytes is Exec but returns raw stdout, used for binary output such as
// `exec-out screencap -p`.
func (t *Transport) ExecBytes(ctx context.Context, serial string, args ...string) ([]byte, error) {
	out, _, err := t.run(ctx, t.args(serial, args...))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Shell is convenience over Exec for `adb -s serial shell cmd...`.
func (t *Transport) Shell(ctx context.Context, serial string, cmd ...string) (string, error) {
	args := append([]string{"shell"}, cmd...)
	return t.Exec(ctx, serial, args...)
}

// Push uploads a local file to a path on the device.
func (t *Transport) Push(ctx context.Context, serial, local, remote string) error {
	_, err := t.Exec(ctx, serial, "push", local, remote)
	if err != nil {
		return errs.New(errs.ServerStage, serial, err)
	}
	return nil
}

// Forward sets up `adb forward tcp:localPort remoteSpec`.
func (t *Transport) Forward(ctx context.Context, serial string, localPort int, remoteSpec string) error {
	local := tcpSpec(localPort)
	if _, err := t.Exec(ctx, serial, "forward", local, remoteSpec); err != nil {
		return errs.New(errs.PortForward, serial, err)
	}
	return nil
}

// Unforward removes a previously-established forward. Errors are logged,
// not propagated: stop() is best-effort per spec §4.3.
func (t *Transport) Unforward(ctx context.Context, serial string, localPort int) {
	if _, err := t.Exec(ctx, serial, "forward", "--remove", tcpSpec(localPort)); err != nil {
		log.Errorf("forward --remove tcp:%d on %s: %v", localPort, serial, err)
	}
}

// DevicesList returns the raw `adb devices -l` output for the registry to
// parse.
func (t *Transport) DevicesList(ctx context.Context) (string, error) {
	return t.Exec(ctx, "", "devices", "-l")
}

// Screenshot wraps `adb -s serial exec-out screencap -p`, returning a raw
// PNG. This is a one-shot still capture, not continuous video streaming, so
// it doesn't touch the decoding non-goal.
func (t *Transport) Screenshot(ctx context.Context, serial string) ([]byte, error) {
	return t.ExecBytes(ctx, serial, "exec-out", "screencap", "-p")
}

func tcpSpec(port int) string {
	return "tcp:" + strconv.Itoa(port)
}
