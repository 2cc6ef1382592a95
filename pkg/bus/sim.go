package bus

import (
	"errors"
	"sync"
)

// ErrEnableFailed is returned by a SimDevice told to fail Enable.
var ErrEnableFailed = errors.New("simulated enable failure")

// ErrDisableFailed is returned by a SimDevice told to fail Disable.
var ErrDisableFailed = errors.New("simulated disable failure")

// SimDevice is an in-memory bus device with failure injection.
type SimDevice struct {
	mu sync.Mutex

	id      ID
	address string

	enabled      bool
	enableCalls  int
	disableCalls int

	failEnable  int
	failDisable int
}

// NewSimDevice creates a disabled device.
func NewSimDevice(address string, id ID) *SimDevice {
	return &SimDevice{id: id, address: address}
}

// ID implements Device.
func (d *SimDevice) ID() ID {
	return d.id
}

// Address implements Device.
func (d *SimDevice) Address() string {
	return d.address
}

// Enable implements Device.
func (d *SimDevice) Enable() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.enableCalls++
	if d.failEnable > 0 {
		d.failEnable--
		return ErrEnableFailed
	}
	d.enabled = true
	return nil
}

// Disable implements Device. The device ends up disabled even when a
// failure is reported.
func (d *SimDevice) Disable() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.disableCalls++
	d.enabled = false
	if d.failDisable > 0 {
		d.failDisable--
		return ErrDisableFailed
	}
	return nil
}

// FailEnable makes the next n Enable calls fail.
func (d *SimDevice) FailEnable(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failEnable = n
}

// FailDisable makes the next n Disable calls report failure.
func (d *SimDevice) FailDisable(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failDisable = n
}

// Enabled returns true while the device is enabled.
func (d *SimDevice) Enabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled
}

// EnableCalls returns how many times Enable was called.
func (d *SimDevice) EnableCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enableCalls
}

// DisableCalls returns how many times Disable was called.
func (d *SimDevice) DisableCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disableCalls
}

var _ Device = (*SimDevice)(nil)
