// Package registry implements the device-registry watcher: a periodic
// scanner over `adb devices -l` that diffs against previously-known state
// and emits connect/disconnect events (spec §4.2).
package registry

import (
	"strings"
	"time"
)

// State is one of the four states adb reports for a device.
type State string

const (
	StateDevice       State = "device"
	StateOffline      State = "offline"
	StateUnauthorized State = "unauthorized"
	StateNoPermission State = "no-permissions"
)

// Device is the registry's view of a single attached Android device. It is
// created on first observation, mutated only by the Registry, and destroyed
// when absent from two consecutive polls (spec §3).
type Device struct {
	Serial      string
	State       State
	Model       string
	Product     string
	TransportID string
	FirstSeen   time.Time
	LastSeen    time.Time

	// misses counts consecutive polls this device was absent from; the
	// registry tracks it internally to implement the "destroyed after two
	// consecutive misses" rule (spec §3) and never exposes it.
	misses int
}

// DisplayName joins manufacturer and model the way spec §4.2 step 2
// describes: "<manufacturer> <model>" unless manufacturer is already a
// case-insensitive substring of model.
func DisplayName(manufacturer, model string) string {
	if manufacturer == "" {
		return model
	}
	if model == "" {
		return manufacturer
	}
	if strings.Contains(strings.ToLower(model), strings.ToLower(manufacturer)) {
		return model
	}
	return manufacturer + " " + model
}
