package registry

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mirrorhost/scrcpy-engine/internal/adb"
	"github.com/mirrorhost/scrcpy-engine/internal/logging"
)

// DefaultPeriod is the default time between polls (spec §4.2).
const DefaultPeriod = 2 * time.Second

// EventKind tags a Registry event.
type EventKind int

const (
	EventConnected EventKind = iota
	EventDisconnected
	EventError
)

// Event is emitted on every poll that observes a change.
type Event struct {
	Kind   EventKind
	Serial string
	Device Device // zero value for EventDisconnected/EventError
	Err    error  // set for EventError
}

// Registry polls `adb devices -l` on a timer, coalescing overlapping calls
// into a single in-flight poll (spec §4.2, §5, and the "background scans
// with in-flight coalescing" design note in §9).
type Registry struct {
	transport *adb.Transport
	period    time.Duration
	events    chan Event
	log       logging.Tag

	mu      sync.RWMutex
	devices map[string]*Device

	pollMu   sync.Mutex
	inFlight *pollTicket
}

type pollTicket struct {
	done chan struct{}
	err  error
}

// New returns a Registry. period <= 0 selects DefaultPeriod.
func New(transport *adb.Transport, period time.Duration) *Registry {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Registry{
		transport: transport,
		period:    period,
		events:    make(chan Event, 64),
		devices:   make(map[string]*Device),
		log:       logging.For("registry"),
	}
}

// Events returns the channel on which connect/disconnect/error events are
// published. The channel is never closed by Registry; callers range over it
// for the lifetime of the process.
func (r *Registry) Events() <-chan Event { return r.events }

// Run starts the periodic poll loop and blocks until ctx is done. Each tick
// calls Poll, which is a no-op overlap-wise if a poll from the previous tick
// is still in flight.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.period)
	defer ticker.Stop()
	// Prime the registry so a caller reading List() right after Run starts
	// doesn't race an empty first tick.
	_ = r.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = r.Poll(ctx)
		}
	}
}

// Poll runs one scan/diff pass, or waits for one already in flight to
// finish. It always blocks until a poll has completed (its own, or a
// concurrent caller's), matching spec §4.2's "first call must block"
// requirement for every call, not only the very first one.
func (r *Registry) Poll(ctx context.Context) error {
	r.pollMu.Lock()
	if r.inFlight != nil {
		ticket := r.inFlight
		r.pollMu.Unlock()
		<-ticket.done
		return ticket.err
	}
	ticket := &pollTicket{done: make(chan struct{})}
	r.inFlight = ticket
	r.pollMu.Unlock()

	ticket.err = r.pollOnce(ctx)

	r.pollMu.Lock()
	r.inFlight = nil
	r.pollMu.Unlock()
	close(ticket.done)
	return ticket.err
}

// List returns a snapshot of currently-known devices.
func (r *Registry) List() []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, *d)
	}
	return out
}

// Get returns the current state of a single serial.
func (r *Registry) Get(serial string) (Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.devices[serial]
	if !ok {
		return Device{}, false
	}
	return *d, true
}

func (r *Registry) pollOnce(ctx context.Context) error {
	out, err := r.transport.DevicesList(ctx)
	if err != nil {
		r.emit(Event{Kind: EventError, Err: err})
		return err
	}

	parsed := parseDevicesList(out)
	now := time.Now()
	seen := make(map[string]struct{}, len(parsed))

	for _, pl := range parsed {
		seen[pl.Serial] = struct{}{}

		r.mu.Lock()
		existing, known := r.devices[pl.Serial]
		var changed bool
		if !known {
			d := &Device{
				Serial:      pl.Serial,
				State:       pl.State,
				Model:       pl.Model,
				Product:     pl.Product,
				TransportID: pl.TransportID,
				FirstSeen:   now,
				LastSeen:    now,
			}
			r.devices[pl.Serial] = d
			r.mu.Unlock()

			if pl.State == StateDevice {
				r.enrich(ctx, d)
			}
			r.emit(Event{Kind: EventConnected, Serial: d.Serial, Device: *d})
			continue
		}

		changed = existing.State != pl.State
		existing.State = pl.State
		existing.LastSeen = now
		if pl.Model != "" {
			existing.Model = pl.Model
		}
		if pl.Product != "" {
			existing.Product = pl.Product
		}
		if pl.TransportID != "" {
			existing.TransportID = pl.TransportID
		}
		snapshot := *existing
		r.mu.Unlock()

		if changed {
			r.emit(Event{Kind: EventConnected, Serial: snapshot.Serial, Device: snapshot})
		}
	}

	// Drop anything missing from this poll (spec §4.2 step 3). Spec §3 says a
	// Device is destroyed when absent from two consecutive polls; we track
	// that with a miss counter rather than dropping on the first miss.
	r.mu.Lock()
	var toDrop []string
	for serial, d := range r.devices {
		if _, ok := seen[serial]; ok {
			d.misses = 0
			continue
		}
		d.misses++
		if d.misses >= 2 {
			toDrop = append(toDrop, serial)
		}
	}
	for _, serial := range toDrop {
		delete(r.devices, serial)
	}
	r.mu.Unlock()

	for _, serial := range toDrop {
		r.emit(Event{Kind: EventDisconnected, Serial: serial})
	}

	return nil
}

// Enrich refreshes model/manufacturer for a serial immediately, without
// waiting for the next poll tick (SPEC_FULL C.3) — useful right after a
// connect event when getprop may not have settled on some OEM images yet.
func (r *Registry) Enrich(ctx context.Context, serial string) {
	r.mu.RLock()
	d, ok := r.devices[serial]
	r.mu.RUnlock()
	if !ok {
		return
	}
	r.enrich(ctx, d)
}

func (r *Registry) enrich(ctx context.Context, d *Device) {
	model, err := r.transport.Shell(ctx, d.Serial, "getprop", "ro.product.model")
	if err != nil {
		r.log.Errorf("enrich %s: getprop model: %v", d.Serial, err)
		return
	}
	manufacturer, err := r.transport.Shell(ctx, d.Serial, "getprop", "ro.product.manufacturer")
	if err != nil {
		r.log.Errorf("enrich %s: getprop manufacturer: %v", d.Serial, err)
		return
	}
	model = strings.TrimSpace(model)
	manufacturer = strings.TrimSpace(manufacturer)

	r.mu.Lock()
	d.Model = DisplayName(manufacturer, model)
	r.mu.Unlock()
}

func (r *Registry) emit(ev Event) {
	select {
	case r.events <- ev:
	default:
		r.log.Errorf("event channel full, dropping %v event for %s", ev.Kind, ev.Serial)
	}
}
