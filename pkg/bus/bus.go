package bus

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Bus errors.
var (
	ErrInvalidID       = errors.New("invalid device id")
	ErrNoDriver        = errors.New("no driver for device")
	ErrAlreadyAttached = errors.New("device already attached")
	ErrNotAttached     = errors.New("device not attached")
	ErrDuplicateDevice = errors.New("device address already present")
	ErrDuplicateDriver = errors.New("driver already registered")
	ErrUnknownDevice   = errors.New("unknown device")
	ErrUnknownDriver   = errors.New("unknown driver")
)

// ID is the vendor/device identity used to match devices to drivers.
type ID struct {
	Vendor uint16 `cbor:"1,keyasint" yaml:"vendor"`
	Device uint16 `cbor:"2,keyasint" yaml:"device"`
}

// String returns the id as "vvvv:dddd" in lowercase hex.
func (id ID) String() string {
	return fmt.Sprintf("%04x:%04x", id.Vendor, id.Device)
}

// ParseID parses "vvvv:dddd" with optional 0x prefixes.
func ParseID(s string) (ID, error) {
	vendor, device, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}

	v, err := parseHex16(vendor)
	if err != nil {
		return ID{}, fmt.Errorf("%w: vendor %q", ErrInvalidID, vendor)
	}
	d, err := parseHex16(device)
	if err != nil {
		return ID{}, fmt.Errorf("%w: device %q", ErrInvalidID, device)
	}
	return ID{Vendor: v, Device: d}, nil
}

func parseHex16(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	n, err := strconv.ParseUint(s, 16, 16)
	return uint16(n), err
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Match returns true if id is listed in table.
func Match(table []ID, id ID) bool {
	return slices.Contains(table, id)
}

// Device is a device handle provided by the bus.
type Device interface {
	// ID returns the vendor/device identity.
	ID() ID

	// Address returns the bus address, unique per attachment point.
	Address() string

	// Enable powers the device and makes it usable.
	Enable() error

	// Disable reverses Enable.
	Disable() error
}

// Driver binds to matching devices.
type Driver interface {
	// Name returns the driver name.
	Name() string

	// IDTable returns the identities the driver handles.
	IDTable() []ID

	// Attach initializes the device. On error the driver must have released
	// everything it acquired.
	Attach(ctx context.Context, dev Device) error

	// Detach tears the device down. It must not fail.
	Detach(dev Device)
}
