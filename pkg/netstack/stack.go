package netstack

import (
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/wlancore/wlancore-go/internal/gate"
	"github.com/wlancore/wlancore-go/pkg/netdev"
)

type registration struct {
	ifc  *netdev.Interface
	ops  Ops
	gate gate.Gate
}

// Stack is an in-memory network stack. Interfaces are addressed by name.
// Calls into an interface's Ops pass a per-registration gate; Unregister
// waits for in-flight calls.
type Stack struct {
	byName *xsync.MapOf[string, *registration]

	failRegister atomic.Int32

	logger *slog.Logger
}

// NewStack creates an empty stack. logger may be nil.
func NewStack(logger *slog.Logger) *Stack {
	return &Stack{
		byName: xsync.NewMapOf[string, *registration](),
		logger: logger,
	}
}

// FailNextRegister makes the next n Register calls fail with ErrRejected.
func (s *Stack) FailNextRegister(n int) {
	s.failRegister.Store(int32(n))
}

// Register implements Subsystem.
func (s *Stack) Register(ifc *netdev.Interface, ops Ops) error {
	if ops == nil {
		return ErrNilOps
	}
	if s.consumeFailure() {
		return ErrRejected
	}

	name := ifc.Name()
	r := &registration{ifc: ifc, ops: ops}
	if existing, loaded := s.byName.LoadOrStore(name, r); loaded {
		if existing.ifc == ifc {
			return ErrAlreadyRegistered
		}
		return fmt.Errorf("%w: %s", ErrNameInUse, name)
	}

	s.debugLog("netdev registered", "name", name, "addr", ifc.HardwareAddr())
	return nil
}

// Unregister implements Subsystem. It blocks until in-flight calls into
// the interface's Ops have returned.
func (s *Stack) Unregister(ifc *netdev.Interface) {
	name := ifc.Name()
	r, ok := s.byName.Load(name)
	if !ok || r.ifc != ifc {
		return
	}
	r.gate.Close()
	s.byName.Delete(name)
	s.debugLog("netdev unregistered", "name", name)
}

// Registered returns true if an interface with the name is registered.
func (s *Stack) Registered(name string) bool {
	_, ok := s.byName.Load(name)
	return ok
}

// Interface returns the registered interface with the name.
func (s *Stack) Interface(name string) (*netdev.Interface, bool) {
	r, ok := s.byName.Load(name)
	if !ok {
		return nil, false
	}
	return r.ifc, true
}

// Names returns the registered interface names in order.
func (s *Stack) Names() []string {
	var names []string
	s.byName.Range(func(name string, _ *registration) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}

// Open brings the named interface up.
func (s *Stack) Open(name string) error {
	r, err := s.enter(name)
	if err != nil {
		return err
	}
	defer r.gate.Exit()

	return r.ops.Open(r.ifc)
}

// Stop brings the named interface down.
func (s *Stack) Stop(name string) error {
	r, err := s.enter(name)
	if err != nil {
		return err
	}
	defer r.gate.Exit()

	return r.ops.Stop(r.ifc)
}

// Transmit hands frame to the named interface. The stack owns the frame
// on entry: it is released here if the interface is not registered.
func (s *Stack) Transmit(name string, frame *netdev.Frame) (TxResult, error) {
	r, err := s.enter(name)
	if err != nil {
		frame.Release()
		return TxDropped, err
	}
	defer r.gate.Exit()

	return r.ops.Transmit(frame, r.ifc), nil
}

func (s *Stack) enter(name string) (*registration, error) {
	r, ok := s.byName.Load(name)
	if !ok || !r.gate.Enter() {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	return r, nil
}

func (s *Stack) consumeFailure() bool {
	for {
		n := s.failRegister.Load()
		if n <= 0 {
			return false
		}
		if s.failRegister.CompareAndSwap(n, n-1) {
			return true
		}
	}
}

func (s *Stack) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

var _ Subsystem = (*Stack)(nil)
