package registry

import (
	"context"
	"strings"
)

// wirelessPort is the default scrcpy/adbd TCP/IP listening port.
const wirelessPort = "5555"

// WatchWireless implements the wireless-bootstrap policy described in spec
// §4.2 and SPEC_FULL C.5: on start, and whenever the known-IP list changes
// (as reported by internal/settings' fsnotify-backed watcher), it dials
// `adb connect ip:5555` for every IP not already visible in the registry.
// initialIPs is the list already persisted when the watcher is wired up —
// without dialing it up front, IPs saved before the process started would
// only connect on the next subsequent settings edit. It issues one dial
// attempt per change and never retries — auto-reconnect policy lives above
// this package (spec §9).
func (r *Registry) WatchWireless(ctx context.Context, initialIPs []string, knownIPs <-chan []string) {
	if len(initialIPs) > 0 {
		r.dialMissing(ctx, initialIPs)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ips, ok := <-knownIPs:
			if !ok {
				return
			}
			r.dialMissing(ctx, ips)
		}
	}
}

func (r *Registry) dialMissing(ctx context.Context, ips []string) {
	for _, ip := range ips {
		serial := ip
		if !strings.Contains(serial, ":") {
			serial = ip + ":" + wirelessPort
		}
		if _, ok := r.Get(serial); ok {
			continue
		}
		if _, err := r.transport.Exec(ctx, "", "connect", serial); err != nil {
			r.log.Errorf("connect %s: %v", serial, err)
		}
	}
}
