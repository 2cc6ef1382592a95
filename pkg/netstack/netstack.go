package netstack

import (
	"errors"

	"github.com/wlancore/wlancore-go/pkg/netdev"
)

// Stack errors.
var (
	ErrNotRegistered     = errors.New("interface not registered")
	ErrAlreadyRegistered = errors.New("interface already registered")
	ErrNameInUse         = errors.New("interface name in use")
	ErrRejected          = errors.New("registration rejected")
	ErrNilOps            = errors.New("ops must not be nil")
)

// TxResult is the outcome of a transmit call.
type TxResult uint8

const (
	// TxOK means the frame was consumed.
	TxOK TxResult = iota
	// TxBusy means the device could not take the frame now.
	TxBusy
	// TxDropped means the frame was discarded.
	TxDropped
)

// String returns the result name.
func (r TxResult) String() string {
	switch r {
	case TxOK:
		return "OK"
	case TxBusy:
		return "BUSY"
	case TxDropped:
		return "DROPPED"
	default:
		return "UNKNOWN"
	}
}

// Ops are the operations the network stack invokes on a registered
// interface.
type Ops interface {
	// Open brings the interface up.
	Open(ifc *netdev.Interface) error

	// Stop brings the interface down.
	Stop(ifc *netdev.Interface) error

	// Transmit hands a frame to the device. The device owns the frame
	// from then on and must release it whatever the result.
	Transmit(frame *netdev.Frame, ifc *netdev.Interface) TxResult
}

// Subsystem is the registration contract for network interfaces.
type Subsystem interface {
	Register(ifc *netdev.Interface, ops Ops) error
	Unregister(ifc *netdev.Interface)
}
