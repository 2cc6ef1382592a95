package bus

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

type deviceEntry struct {
	dev    Device
	driver string // bound driver name, "" when unbound
}

// Enumerator is an in-memory bus. It keeps the set of present devices and
// registered drivers, and invokes Attach/Detach as devices and drivers come
// and go. Attach and Detach calls are serialized.
type Enumerator struct {
	drivers *xsync.MapOf[string, Driver]
	devices *xsync.MapOf[string, *deviceEntry]

	// mu serializes attach/detach transitions.
	mu sync.Mutex

	logger *slog.Logger
}

// NewEnumerator creates an empty bus. logger may be nil.
func NewEnumerator(logger *slog.Logger) *Enumerator {
	return &Enumerator{
		drivers: xsync.NewMapOf[string, Driver](),
		devices: xsync.NewMapOf[string, *deviceEntry](),
		logger:  logger,
	}
}

// RegisterDriver adds a driver and probes every unbound matching device.
// Probe failures are logged; the registration itself still succeeds.
func (e *Enumerator) RegisterDriver(ctx context.Context, drv Driver) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, loaded := e.drivers.LoadOrStore(drv.Name(), drv); loaded {
		return fmt.Errorf("%w: %s", ErrDuplicateDriver, drv.Name())
	}
	e.debugLog("driver registered", "driver", drv.Name())

	for _, entry := range e.sortedEntries() {
		if entry.driver != "" || !Match(drv.IDTable(), entry.dev.ID()) {
			continue
		}
		if err := e.attachLocked(ctx, drv, entry); err != nil {
			e.warnLog("probe failed", "driver", drv.Name(), "device", entry.dev.Address(), "error", err)
		}
	}
	return nil
}

// UnregisterDriver detaches every device bound to the driver and removes it.
func (e *Enumerator) UnregisterDriver(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	drv, ok := e.drivers.Load(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDriver, name)
	}

	for _, entry := range e.sortedEntries() {
		if entry.driver == name {
			e.detachLocked(drv, entry)
		}
	}
	e.drivers.Delete(name)
	e.debugLog("driver unregistered", "driver", name)
	return nil
}

// Add plugs a device in and attaches the first matching driver.
// Returns ErrNoDriver if no driver matches; the device stays present.
// An attach failure is returned and the device stays present and unbound.
func (e *Enumerator) Add(ctx context.Context, dev Device) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry := &deviceEntry{dev: dev}
	if _, loaded := e.devices.LoadOrStore(dev.Address(), entry); loaded {
		return fmt.Errorf("%w: %s", ErrDuplicateDevice, dev.Address())
	}
	e.debugLog("device added", "device", dev.Address(), "id", dev.ID())

	drv := e.matchDriver(dev.ID())
	if drv == nil {
		return fmt.Errorf("%w: %s", ErrNoDriver, dev.ID())
	}
	return e.attachLocked(ctx, drv, entry)
}

// Remove unplugs a device, detaching its driver first.
func (e *Enumerator) Remove(address string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.devices.Load(address)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDevice, address)
	}
	if entry.driver != "" {
		if drv, ok := e.drivers.Load(entry.driver); ok {
			e.detachLocked(drv, entry)
		}
	}
	e.devices.Delete(address)
	e.debugLog("device removed", "device", address)
	return nil
}

// Reprobe retries attaching an unbound device.
func (e *Enumerator) Reprobe(ctx context.Context, address string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.devices.Load(address)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDevice, address)
	}
	if entry.driver != "" {
		return fmt.Errorf("%w: %s", ErrAlreadyAttached, address)
	}
	drv := e.matchDriver(entry.dev.ID())
	if drv == nil {
		return fmt.Errorf("%w: %s", ErrNoDriver, entry.dev.ID())
	}
	return e.attachLocked(ctx, drv, entry)
}

// Device returns the device at address.
func (e *Enumerator) Device(address string) (Device, bool) {
	entry, ok := e.devices.Load(address)
	if !ok {
		return nil, false
	}
	return entry.dev, true
}

// Devices returns all present devices ordered by address.
func (e *Enumerator) Devices() []Device {
	entries := e.sortedEntries()
	out := make([]Device, len(entries))
	for i, entry := range entries {
		out[i] = entry.dev
	}
	return out
}

// Bound returns the name of the driver bound to address.
func (e *Enumerator) Bound(address string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.devices.Load(address)
	if !ok || entry.driver == "" {
		return "", false
	}
	return entry.driver, true
}

// DriverCount returns the number of registered drivers.
func (e *Enumerator) DriverCount() int {
	return e.drivers.Size()
}

func (e *Enumerator) attachLocked(ctx context.Context, drv Driver, entry *deviceEntry) error {
	if err := drv.Attach(ctx, entry.dev); err != nil {
		return fmt.Errorf("attach %s to %s: %w", entry.dev.Address(), drv.Name(), err)
	}
	entry.driver = drv.Name()
	e.debugLog("device bound", "device", entry.dev.Address(), "driver", drv.Name())
	return nil
}

func (e *Enumerator) detachLocked(drv Driver, entry *deviceEntry) {
	drv.Detach(entry.dev)
	entry.driver = ""
	e.debugLog("device unbound", "device", entry.dev.Address(), "driver", drv.Name())
}

// matchDriver returns the first matching driver by name order.
func (e *Enumerator) matchDriver(id ID) Driver {
	var names []string
	e.drivers.Range(func(name string, drv Driver) bool {
		if Match(drv.IDTable(), id) {
			names = append(names, name)
		}
		return true
	})
	if len(names) == 0 {
		return nil
	}
	slices.Sort(names)
	drv, _ := e.drivers.Load(names[0])
	return drv
}

func (e *Enumerator) sortedEntries() []*deviceEntry {
	var out []*deviceEntry
	e.devices.Range(func(_ string, entry *deviceEntry) bool {
		out = append(out, entry)
		return true
	})
	slices.SortFunc(out, func(a, b *deviceEntry) int {
		switch {
		case a.dev.Address() < b.dev.Address():
			return -1
		case a.dev.Address() > b.dev.Address():
			return 1
		}
		return 0
	})
	return out
}

func (e *Enumerator) debugLog(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func (e *Enumerator) warnLog(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
