package netdev

import (
	"errors"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/wlancore/wlancore-go/pkg/alloc"
)

// ErrInvalidHardwareAddr is returned for a hardware address that is not 48 bits.
var ErrInvalidHardwareAddr = errors.New("hardware address must be 48 bits")

// Flags are interface capability bits.
type Flags uint32

const (
	FlagBroadcast Flags = 1 << iota
	FlagMulticast
)

// String returns the set flags joined by '|'.
func (f Flags) String() string {
	var parts []string
	if f&FlagBroadcast != 0 {
		parts = append(parts, "BROADCAST")
	}
	if f&FlagMulticast != 0 {
		parts = append(parts, "MULTICAST")
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, "|")
}

// OperState is the operational state of an interface.
type OperState uint8

const (
	OperDown OperState = iota
	OperUp
)

// String returns the state name.
func (s OperState) String() string {
	switch s {
	case OperDown:
		return "DOWN"
	case OperUp:
		return "UP"
	default:
		return "UNKNOWN"
	}
}

// WirelessContext is the wireless side an interface is attached to.
type WirelessContext interface {
	// InterfaceType returns the wireless interface type name.
	InterfaceType() string
}

// Stats are interface transmit counters.
type Stats struct {
	TxPackets uint64
	TxBytes   uint64
	TxDropped uint64
}

// Interface is the network interface handle registered with the network
// stack. It starts Down with its transmit queue stopped and no carrier.
type Interface struct {
	mu sync.RWMutex

	name     string
	hwAddr   net.HardwareAddr
	flags    Flags
	state    OperState
	parent   string
	wireless WirelessContext

	carrier      atomic.Bool
	queueStarted atomic.Bool

	txPackets atomic.Uint64
	txBytes   atomic.Uint64
	txDropped atomic.Uint64

	names     *NameAllocator
	allocator alloc.Allocator
	tok       alloc.Token
}

// Alloc creates an interface named from the allocator's template.
// The name is returned to the pool if the allocation fails.
func Alloc(names *NameAllocator, a alloc.Allocator) (*Interface, error) {
	name, err := names.Reserve()
	if err != nil {
		return nil, err
	}

	tok, err := a.Allocate(alloc.KindNetdev)
	if err != nil {
		names.Release(name)
		return nil, err
	}

	return &Interface{
		name:      name,
		names:     names,
		allocator: a,
		tok:       tok,
	}, nil
}

// Release frees the interface and returns its name. Releasing twice is a
// no-op.
func (i *Interface) Release() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.tok.Valid() {
		return nil
	}
	tok := i.tok
	i.tok = alloc.Token{}
	i.wireless = nil
	if i.names != nil {
		i.names.Release(i.name)
	}
	return i.allocator.Free(tok)
}

// Name returns the interface name.
func (i *Interface) Name() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.name
}

// HardwareAddr returns a copy of the hardware address.
func (i *Interface) HardwareAddr() net.HardwareAddr {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return append(net.HardwareAddr(nil), i.hwAddr...)
}

// SetHardwareAddr sets the hardware address. A nil address assigns a
// random locally administered one.
func (i *Interface) SetHardwareAddr(addr net.HardwareAddr) error {
	if addr == nil {
		var err error
		if addr, err = RandomHardwareAddr(); err != nil {
			return err
		}
	}
	if len(addr) != 6 {
		return ErrInvalidHardwareAddr
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.hwAddr = append(net.HardwareAddr(nil), addr...)
	return nil
}

// Flags returns the capability flags.
func (i *Interface) Flags() Flags {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.flags
}

// SetFlags adds flags.
func (i *Interface) SetFlags(f Flags) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.flags |= f
}

// OperState returns the operational state.
func (i *Interface) OperState() OperState {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.state
}

// SetOperState changes the operational state and returns the previous one.
func (i *Interface) SetOperState(s OperState) OperState {
	i.mu.Lock()
	defer i.mu.Unlock()
	old := i.state
	i.state = s
	return old
}

// IsUp returns true while the interface is Up.
func (i *Interface) IsUp() bool {
	return i.OperState() == OperUp
}

// Carrier returns true if the link carrier is present.
func (i *Interface) Carrier() bool {
	return i.carrier.Load()
}

// CarrierOn marks the carrier present. Returns true if it changed.
func (i *Interface) CarrierOn() bool {
	return !i.carrier.Swap(true)
}

// CarrierOff marks the carrier absent. Returns true if it changed.
func (i *Interface) CarrierOff() bool {
	return i.carrier.Swap(false)
}

// StartQueue enables the transmit queue.
func (i *Interface) StartQueue() {
	i.queueStarted.Store(true)
}

// StopQueue disables the transmit queue.
func (i *Interface) StopQueue() {
	i.queueStarted.Store(false)
}

// QueueStarted returns true while the transmit queue is enabled.
func (i *Interface) QueueStarted() bool {
	return i.queueStarted.Load()
}

// SetWirelessContext links the interface to its wireless context.
func (i *Interface) SetWirelessContext(w WirelessContext) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.wireless = w
}

// WirelessContext returns the linked wireless context, or nil.
func (i *Interface) WirelessContext() WirelessContext {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.wireless
}

// SetParent binds the interface to the identity of its bus device.
func (i *Interface) SetParent(parent string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.parent = parent
}

// Parent returns the bus device identity, or "".
func (i *Interface) Parent() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.parent
}

// RecordTx counts a frame handed to the device.
func (i *Interface) RecordTx(n int) {
	i.txPackets.Add(1)
	i.txBytes.Add(uint64(n))
}

// RecordDrop counts a frame dropped before transmission.
func (i *Interface) RecordDrop() {
	i.txDropped.Add(1)
}

// Stats returns a snapshot of the transmit counters.
func (i *Interface) Stats() Stats {
	return Stats{
		TxPackets: i.txPackets.Load(),
		TxBytes:   i.txBytes.Load(),
		TxDropped: i.txDropped.Load(),
	}
}
