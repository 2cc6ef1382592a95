package log

import (
	"time"
)

// Event is one entry of a device lifecycle trace.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the device session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Device is the bus address of the device.
	Device string `cbor:"3,keyasint,omitempty"`

	// Interface is the network interface name, once allocated.
	Interface string `cbor:"4,keyasint,omitempty"`

	// Layer where the event was captured.
	Layer Layer `cbor:"5,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"6,keyasint"`

	// Type-specific payload (one of these will be set).
	Step        *StepEvent        `cbor:"7,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"8,keyasint,omitempty"`
	Dispatch    *DispatchEvent    `cbor:"9,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"10,keyasint,omitempty"`
}

// Layer indicates which component captured the event.
type Layer uint8

const (
	// LayerBus is the bus device (enable/disable).
	LayerBus Layer = 0
	// LayerWireless is the capability registry and wireless context.
	LayerWireless Layer = 1
	// LayerNetdev is the network interface.
	LayerNetdev Layer = 2
	// LayerSession is the device session itself.
	LayerSession Layer = 3
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerBus:
		return "BUS"
	case LayerWireless:
		return "WIRELESS"
	case LayerNetdev:
		return "NETDEV"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryStep is an attach or detach step.
	CategoryStep Category = 0
	// CategoryState is a state change.
	CategoryState Category = 1
	// CategoryDispatch is a dispatcher operation.
	CategoryDispatch Category = 2
	// CategoryError is an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryStep:
		return "STEP"
	case CategoryState:
		return "STATE"
	case CategoryDispatch:
		return "DISPATCH"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Phase tells whether a step acquired or released its resource.
type Phase uint8

const (
	// PhaseAcquire is the attach direction.
	PhaseAcquire Phase = 0
	// PhaseRelease is the unwind/detach direction.
	PhaseRelease Phase = 1
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseAcquire:
		return "ACQUIRE"
	case PhaseRelease:
		return "RELEASE"
	default:
		return "UNKNOWN"
	}
}

// StepEvent captures one lifecycle step.
type StepEvent struct {
	// Step is the step name, e.g. "wiphy-register".
	Step string `cbor:"1,keyasint"`

	// Phase is acquire or release.
	Phase Phase `cbor:"2,keyasint"`

	// OK is false when the step failed.
	OK bool `cbor:"3,keyasint"`

	// Duration of the step, stored as nanoseconds.
	Duration time.Duration `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what changed state.
type StateEntity uint8

const (
	// StateEntitySession is the session lifecycle.
	StateEntitySession StateEntity = 0
	// StateEntityLink is the interface operational state.
	StateEntityLink StateEntity = 1
	// StateEntityCarrier is the link carrier.
	StateEntityCarrier StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntitySession:
		return "SESSION"
	case StateEntityLink:
		return "LINK"
	case StateEntityCarrier:
		return "CARRIER"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures session and interface state transitions.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// DispatchEvent captures a dispatcher operation invoked by a subsystem.
type DispatchEvent struct {
	// Op is the operation name: scan, connect, disconnect, open, stop, transmit.
	Op string `cbor:"1,keyasint"`

	// Result is "ok", a transmit result, or the error text.
	Result string `cbor:"2,keyasint"`

	// Rejected is true when the session was closing and the call was refused.
	Rejected bool `cbor:"3,keyasint,omitempty"`

	// Duration of the call, stored as nanoseconds.
	Duration time.Duration `cbor:"4,keyasint,omitempty"`
}

// ErrorEventData captures an error at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error text.
	Message string `cbor:"2,keyasint"`

	// Step is the lifecycle step that failed (if applicable).
	Step string `cbor:"3,keyasint,omitempty"`

	// Kind is the error classification, e.g. "allocation-failed".
	Kind string `cbor:"4,keyasint,omitempty"`
}

// Session states that end a lifecycle.
const (
	StateDetached = "DETACHED"
	StateFailed   = "FAILED"
)

// Terminal reports whether the event ends a session: a session state
// change to DETACHED or FAILED.
func (e Event) Terminal() bool {
	if e.StateChange == nil || e.StateChange.Entity != StateEntitySession {
		return false
	}
	return e.StateChange.NewState == StateDetached || e.StateChange.NewState == StateFailed
}
