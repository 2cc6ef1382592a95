package session

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wlancore/wlancore-go/internal/gate"
	"github.com/wlancore/wlancore-go/pkg/bus"
	"github.com/wlancore/wlancore-go/pkg/eventbus"
	"github.com/wlancore/wlancore-go/pkg/log"
	"github.com/wlancore/wlancore-go/pkg/netdev"
	"github.com/wlancore/wlancore-go/pkg/wireless"
)

// State is the lifecycle state of a session.
type State uint8

const (
	StateIdle State = iota
	StateAttaching
	StateActive
	StateDetaching
	StateDetached
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateAttaching:
		return "ATTACHING"
	case StateActive:
		return "ACTIVE"
	case StateDetaching:
		return "DETACHING"
	case StateDetached:
		return "DETACHED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Session owns every resource of one attached device: the capability
// registry, the wireless context, the network interface, the bus enable
// and both subsystem registrations.
//
// Attach and Detach must not run concurrently with each other. Dispatcher
// operations may run concurrently with everything; once Detach starts they
// are rejected with ErrSessionClosed, and Detach waits for those already
// admitted before releasing anything.
type Session struct {
	id  uuid.UUID
	dev bus.Device
	cfg Config

	gate gate.Gate

	// lifecycle serializes Attach and Detach.
	lifecycle sync.Mutex
	acquired  stack

	mu       sync.RWMutex
	state    State
	registry *wireless.Registry
	wdev     *wireless.Dev
	netdev   *netdev.Interface
}

// New creates an idle session for dev.
func New(dev bus.Device, cfg Config) (*Session, error) {
	if dev == nil {
		return nil, fmt.Errorf("%w: nil bus device", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Session{
		id:  uuid.New(),
		dev: dev,
		cfg: cfg,
	}, nil
}

// Attach creates a session for dev and runs the attach sequence.
func Attach(ctx context.Context, dev bus.Device, cfg Config) (*Session, error) {
	s, err := New(dev, cfg)
	if err != nil {
		return nil, err
	}
	if err := s.Attach(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Attach runs the attach sequence. On failure every resource acquired so
// far is released in reverse order and an *AttachError is returned; the
// session is then FAILED and Detach is a no-op.
func (s *Session) Attach(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if st := s.State(); st != StateIdle {
		return fmt.Errorf("%w: attach in state %s", ErrInvalidState, st)
	}
	s.setState(StateAttaching, "")
	s.infoLog("device found", "id", s.dev.ID().String())

	steps := []struct {
		step Step
		run  func() error
	}{
		{StepWiphyAlloc, s.allocWiphy},
		{StepBandAlloc, s.allocBands},
		{StepWiphyRegister, s.registerWiphy},
		{StepWdevAlloc, s.allocWdev},
		{StepNetdevAlloc, s.allocNetdev},
		{StepBusEnable, s.enableBus},
		{StepNetdevRegister, s.registerNetdev},
		{StepBindParent, s.bindParent},
	}

	for _, st := range steps {
		start := time.Now()
		if err := st.run(); err != nil {
			s.traceStep(st.step, log.PhaseAcquire, false, time.Since(start))
			return s.fail(ctx, st.step, err)
		}
		s.traceStep(st.step, log.PhaseAcquire, true, time.Since(start))
		s.infoLog("attach step done", "step", st.step.String())
	}

	s.setState(StateActive, "")
	s.infoLog("interface created", "interface", s.ifName(), "addr", s.netdevRef().HardwareAddr().String())
	s.publish(eventbus.Event{Topic: eventbus.TopicAttached})
	return nil
}

func (s *Session) allocWiphy() error {
	reg, err := wireless.NewRegistry(s.cfg.Capabilities, s.cfg.Allocator)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.registry = reg
	s.mu.Unlock()

	s.acquired.push(StepWiphyAlloc, func() error {
		s.mu.Lock()
		s.registry = nil
		s.mu.Unlock()
		return reg.Release()
	})
	return nil
}

func (s *Session) allocBands() error {
	reg := s.registryRef()
	if err := reg.AddConfiguredBands(); err != nil {
		return err
	}
	s.acquired.push(StepBandAlloc, reg.ReleaseBands)
	return nil
}

func (s *Session) registerWiphy() error {
	reg := s.registryRef()
	if err := s.cfg.Wireless.Register(reg, s); err != nil {
		return err
	}
	s.acquired.push(StepWiphyRegister, func() error {
		s.cfg.Wireless.Unregister(reg)
		return nil
	})
	return nil
}

func (s *Session) allocWdev() error {
	wdev, err := wireless.NewDev(s.registryRef(), s.cfg.Allocator)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.wdev = wdev
	s.mu.Unlock()

	s.acquired.push(StepWdevAlloc, func() error {
		s.mu.Lock()
		s.wdev = nil
		s.mu.Unlock()
		return wdev.Release()
	})
	return nil
}

func (s *Session) allocNetdev() error {
	ifc, err := netdev.Alloc(s.cfg.Names, s.cfg.Allocator)
	if err != nil {
		return err
	}
	if err := ifc.SetHardwareAddr(s.cfg.HardwareAddr); err != nil {
		_ = ifc.Release()
		return err
	}
	ifc.SetFlags(netdev.FlagBroadcast | netdev.FlagMulticast)

	wdev := s.wdevRef()
	ifc.SetWirelessContext(wdev)
	wdev.BindNetdev(ifc)

	s.mu.Lock()
	s.netdev = ifc
	s.mu.Unlock()

	s.acquired.push(StepNetdevAlloc, func() error {
		s.mu.Lock()
		s.netdev = nil
		s.mu.Unlock()
		wdev.BindNetdev(nil)
		return ifc.Release()
	})
	return nil
}

func (s *Session) enableBus() error {
	if err := s.dev.Enable(); err != nil {
		return err
	}
	s.acquired.push(StepBusEnable, s.dev.Disable)
	return nil
}

func (s *Session) registerNetdev() error {
	ifc := s.netdevRef()
	if err := s.cfg.NetStack.Register(ifc, s); err != nil {
		return err
	}
	s.acquired.push(StepNetdevRegister, func() error {
		s.cfg.NetStack.Unregister(ifc)
		s.forceDown(ifc, "unregister")
		return nil
	})
	return nil
}

func (s *Session) bindParent() error {
	s.netdevRef().SetParent(s.dev.Address())
	s.acquired.push(StepBindParent, nil)
	return nil
}

// fail closes the session, unwinds everything acquired in reverse order
// and returns the terminal attach error.
func (s *Session) fail(ctx context.Context, step Step, cause error) error {
	kind, _, _ := classify(step)
	s.errorLog("attach failed", "step", step.String(), "error", cause)
	s.traceError(log.LayerSession, step, kind, cause)

	s.gate.Close()
	for top := s.acquired.top(); top != 0; top = s.acquired.top() {
		s.releaseStep(top)
	}

	s.setState(StateFailed, cause.Error())
	s.publish(eventbus.Event{Topic: eventbus.TopicAttachFailed, Err: cause.Error()})
	return newAttachError(ctx, step, s.dev.Address(), s.id.String(), cause)
}

// Detach tears the session down. It is idempotent, is a no-op after a
// failed attach, and never fails: release errors are logged.
func (s *Session) Detach() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	switch s.State() {
	case StateDetached, StateFailed:
		return
	case StateIdle:
		s.setState(StateDetached, "never attached")
		return
	}

	s.setState(StateDetaching, "")
	s.infoLog("removing interface", "interface", s.ifName())

	// No dispatcher call is admitted from here on; wait for those in flight.
	s.gate.Close()

	for _, step := range DetachOrder() {
		s.releaseStep(step)
	}

	s.setState(StateDetached, "")
	s.publish(eventbus.Event{Topic: eventbus.TopicDetached})
}

func (s *Session) releaseStep(step Step) {
	start := time.Now()
	released, err := s.acquired.pop(step)
	if !released {
		return
	}
	s.traceStep(step, log.PhaseRelease, err == nil, time.Since(start))
	if err != nil {
		s.warnLog("release failed", "step", step.String(), "error", err)
		s.traceError(s.layerOf(step), step, nil, err)
		return
	}
	s.debugLog("released", "step", step.String())
}

func (s *Session) forceDown(ifc *netdev.Interface, reason string) {
	if old := ifc.SetOperState(netdev.OperDown); old == netdev.OperUp {
		s.traceLink(netdev.OperUp, netdev.OperDown, reason)
		s.publish(eventbus.Event{Topic: eventbus.TopicLink, Up: false})
	}
	ifc.StopQueue()
	if ifc.CarrierOff() {
		s.traceCarrier(false, reason)
		s.publish(eventbus.Event{Topic: eventbus.TopicCarrier, Up: false})
	}
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Device returns the bus device.
func (s *Session) Device() bus.Device {
	return s.dev
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Registry returns the capability registry, or nil when not held.
func (s *Session) Registry() *wireless.Registry {
	return s.registryRef()
}

// Wdev returns the wireless context, or nil when not held.
func (s *Session) Wdev() *wireless.Dev {
	return s.wdevRef()
}

// Netdev returns the network interface, or nil when not held.
func (s *Session) Netdev() *netdev.Interface {
	return s.netdevRef()
}

// Held returns the steps currently held, in attach order.
func (s *Session) Held() []Step {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	return s.acquired.held.steps()
}

// Info is a snapshot of a session for reporting.
type Info struct {
	ID           string         `yaml:"id"`
	Device       string         `yaml:"device"`
	DeviceID     string         `yaml:"device_id"`
	State        string         `yaml:"state"`
	Interface    string         `yaml:"interface,omitempty"`
	HardwareAddr string         `yaml:"hw_addr,omitempty"`
	Flags        string         `yaml:"flags,omitempty"`
	OperState    string         `yaml:"oper_state,omitempty"`
	Carrier      bool           `yaml:"carrier"`
	QueueStarted bool           `yaml:"queue_started"`
	Stats        netdev.Stats   `yaml:"stats"`
	Held         []string       `yaml:"held"`
	Capabilities *wireless.Info `yaml:"capabilities,omitempty"`
}

// Info returns a snapshot of the session.
func (s *Session) Info() Info {
	info := Info{
		ID:       s.id.String(),
		Device:   s.dev.Address(),
		DeviceID: s.dev.ID().String(),
		State:    s.State().String(),
	}
	for _, step := range s.Held() {
		info.Held = append(info.Held, step.String())
	}
	if ifc := s.netdevRef(); ifc != nil {
		info.Interface = ifc.Name()
		info.HardwareAddr = ifc.HardwareAddr().String()
		info.Flags = ifc.Flags().String()
		info.OperState = ifc.OperState().String()
		info.Carrier = ifc.Carrier()
		info.QueueStarted = ifc.QueueStarted()
		info.Stats = ifc.Stats()
	}
	if reg := s.registryRef(); reg != nil {
		info.Capabilities = reg.Info()
	}
	return info
}

// HardwareAddr returns the interface address, or nil.
func (s *Session) HardwareAddr() net.HardwareAddr {
	if ifc := s.netdevRef(); ifc != nil {
		return ifc.HardwareAddr()
	}
	return nil
}

func (s *Session) setState(st State, reason string) {
	s.mu.Lock()
	old := s.state
	s.state = st
	s.mu.Unlock()

	s.trace(log.LayerSession, log.CategoryState, func(e *log.Event) {
		e.StateChange = &log.StateChangeEvent{
			Entity:   log.StateEntitySession,
			OldState: old.String(),
			NewState: st.String(),
			Reason:   reason,
		}
	})
}

func (s *Session) registryRef() *wireless.Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry
}

func (s *Session) wdevRef() *wireless.Dev {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wdev
}

func (s *Session) netdevRef() *netdev.Interface {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.netdev
}

func (s *Session) ifName() string {
	if ifc := s.netdevRef(); ifc != nil {
		return ifc.Name()
	}
	return ""
}

func (s *Session) publish(ev eventbus.Event) {
	if s.cfg.Events == nil {
		return
	}
	ev.SessionID = s.id.String()
	ev.Device = s.dev.Address()
	if ev.Interface == "" {
		ev.Interface = s.ifName()
	}
	s.cfg.Events.Publish(ev)
}

func (s *Session) logAttrs(args []any) []any {
	return append([]any{"session", s.id.String(), "device", s.dev.Address()}, args...)
}

func (s *Session) debugLog(msg string, args ...any) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Debug(msg, s.logAttrs(args)...)
	}
}

func (s *Session) infoLog(msg string, args ...any) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Info(msg, s.logAttrs(args)...)
	}
}

func (s *Session) warnLog(msg string, args ...any) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Warn(msg, s.logAttrs(args)...)
	}
}

func (s *Session) errorLog(msg string, args ...any) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Error(msg, s.logAttrs(args)...)
	}
}
