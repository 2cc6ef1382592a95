package wireless

import (
	"errors"
	"sync"

	"github.com/wlancore/wlancore-go/pkg/alloc"
	"github.com/wlancore/wlancore-go/pkg/netdev"
)

// ErrNilRegistry is returned when a context is created without a registry.
var ErrNilRegistry = errors.New("wireless device context requires a registry")

// Dev is the wireless device context. It links a Registry to the network
// interface exposed for it. The registry reference is non-owning: the
// session releases the registry after the context.
type Dev struct {
	mu sync.RWMutex

	registry *Registry
	ifType   InterfaceMode
	netdev   *netdev.Interface

	allocator alloc.Allocator
	tok       alloc.Token
}

// NewDev allocates a station-mode context for the registry.
func NewDev(reg *Registry, a alloc.Allocator) (*Dev, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}

	tok, err := a.Allocate(alloc.KindWdev)
	if err != nil {
		return nil, err
	}

	return &Dev{
		registry:  reg,
		ifType:    ModeStation,
		allocator: a,
		tok:       tok,
	}, nil
}

// Registry returns the capability registry the context belongs to.
func (d *Dev) Registry() *Registry {
	return d.registry
}

// IfType returns the interface type.
func (d *Dev) IfType() InterfaceMode {
	return d.ifType
}

// InterfaceType returns the interface type name.
func (d *Dev) InterfaceType() string {
	return d.ifType.String()
}

// BindNetdev records the network interface of the context.
func (d *Dev) BindNetdev(ifc *netdev.Interface) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.netdev = ifc
}

// Netdev returns the bound network interface, or nil.
func (d *Dev) Netdev() *netdev.Interface {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.netdev
}

// Release frees the context. The interface link is dropped but the
// interface itself is not released. Releasing twice is a no-op.
func (d *Dev) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.netdev = nil
	tok := d.tok
	d.tok = alloc.Token{}
	return d.allocator.Free(tok)
}

// Compile-time interface satisfaction check.
var _ netdev.WirelessContext = (*Dev)(nil)
