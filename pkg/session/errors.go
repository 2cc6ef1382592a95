package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fctx"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// Attach error taxonomy.
var (
	ErrAllocationFailed   = errors.New("allocation failed")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrBusEnableFailed    = errors.New("bus enable failed")
)

// Session and dispatcher errors.
var (
	ErrSessionClosed = errors.New("session closed")
	ErrInvalidState  = errors.New("invalid session state")
	ErrInvalidConfig = errors.New("invalid session configuration")
	ErrNoInterface   = errors.New("no network interface")
	ErrForeignIfc    = errors.New("interface does not belong to this session")

	ErrScan       = errors.New("scan failed")
	ErrConnect    = errors.New("connect failed")
	ErrDisconnect = errors.New("disconnect failed")
	ErrOpen       = errors.New("open failed")
	ErrStop       = errors.New("stop failed")
)

// Fault tags for attach failures.
const (
	KindAllocationFailed   ftag.Kind = "ALLOCATION_FAILED"
	KindRegistrationFailed ftag.Kind = "REGISTRATION_FAILED"
	KindBusEnableFailed    ftag.Kind = "BUS_ENABLE_FAILED"
)

// AttachError is the terminal error of a failed attach. errors.Is matches
// both Kind and Cause.
type AttachError struct {
	Step  Step
	Kind  error
	Cause error
}

// Error implements error.
func (e *AttachError) Error() string {
	return fmt.Sprintf("attach: %s: %v: %v", e.Step, e.Kind, e.Cause)
}

// Unwrap returns the taxonomy sentinel and the cause.
func (e *AttachError) Unwrap() []error {
	return []error{e.Kind, e.Cause}
}

// classify maps a failed step to its taxonomy sentinel, fault tag and
// user-facing message.
func classify(step Step) (error, ftag.Kind, string) {
	switch step {
	case StepWiphyRegister, StepNetdevRegister:
		return ErrRegistrationFailed, KindRegistrationFailed, "Device registration was rejected"
	case StepBusEnable:
		return ErrBusEnableFailed, KindBusEnableFailed, "Cannot enable the device"
	default:
		return ErrAllocationFailed, KindAllocationFailed, "Cannot allocate device resources"
	}
}

func newAttachError(ctx context.Context, step Step, device, session string, cause error) error {
	kind, tag, msg := classify(step)
	return fault.Wrap(&AttachError{Step: step, Kind: kind, Cause: cause},
		fctx.With(ctx, "step", step.String(), "device", device, "session", session),
		ftag.With(tag),
		fmsg.With(msg),
	)
}

// ErrorKind returns the fault tag of an attach error.
func ErrorKind(err error) ftag.Kind {
	if err == nil {
		return ""
	}
	return ftag.Get(err)
}
