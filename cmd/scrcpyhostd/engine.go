package main

import (
	"context"
	"fmt"

	"github.com/mirrorhost/scrcpy-engine/internal/adb"
	"github.com/mirrorhost/scrcpy-engine/internal/launcher"
	"github.com/mirrorhost/scrcpy-engine/internal/registry"
	"github.com/mirrorhost/scrcpy-engine/internal/session"
	"github.com/mirrorhost/scrcpy-engine/internal/settings"
)

// engine bundles the components every subcommand needs, built fresh per
// invocation since this binary is a short-lived CLI rather than a daemon
// (the bridge/serve subcommand is the one exception that keeps it running).
type engine struct {
	transport  *adb.Transport
	registry   *registry.Registry
	launcher   *launcher.Launcher
	supervisor *session.Supervisor
	store      *settings.Store
}

func newEngine() (*engine, error) {
	transport, err := adb.New(adb.LocateConfig{ExplicitPath: adbPath})
	if err != nil {
		return nil, fmt.Errorf("locating adb: %w", err)
	}

	store, err := settings.Open(settingsDir + "/settings.yaml")
	if err != nil {
		return nil, fmt.Errorf("opening settings: %w", err)
	}

	reg := registry.New(transport, registry.DefaultPeriod)
	l := launcher.New(transport, serverJar)
	sup := session.New(l).WithRegistry(reg)

	return &engine{
		transport:  transport,
		registry:   reg,
		launcher:   l,
		supervisor: sup,
		store:      store,
	}, nil
}

// runLifecycleGlue implements the Registry→Supervisor arrow: a device only
// drops out of the registry after two consecutive missing polls (a true
// removal, spec §3), as opposed to a transient state change such as
// offline/unauthorized (reported as EventConnected with updated state, left
// alone here). Only that removal tears the session down, satisfying spec §3
// invariant 1.
func (e *engine) runLifecycleGlue(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-e.registry.Events():
			if !ok {
				return
			}
			if ev.Kind == registry.EventDisconnected {
				e.supervisor.Stop(ctx, ev.Serial)
			}
		}
	}
}
