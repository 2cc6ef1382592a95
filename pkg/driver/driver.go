package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/wlancore/wlancore-go/pkg/alloc"
	"github.com/wlancore/wlancore-go/pkg/bus"
	"github.com/wlancore/wlancore-go/pkg/netdev"
	"github.com/wlancore/wlancore-go/pkg/session"
)

// Driver errors.
var (
	ErrAlreadyAttached = errors.New("device already attached")
	ErrNotAttached     = errors.New("device not attached")
	ErrNoIDs           = errors.New("driver has an empty id table")
)

// Default driver identity.
const DefaultName = "mt7921e"

// DefaultIDTable lists the devices the driver binds to by default.
var DefaultIDTable = []bus.ID{
	{Vendor: 0x14C3, Device: 0x7902},
}

// Config configures a Driver.
type Config struct {
	// Name is the driver name. Default: "mt7921e".
	Name string

	// IDTable lists the bus ids the driver binds to.
	IDTable []bus.ID

	// Session is the template for every device session. Names and
	// Allocator are shared across devices; if unset the driver creates
	// them once.
	Session session.Config

	// Logger is the operational logger. If nil, logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns a Config for the default device. The caller must
// still set Session.Wireless and Session.NetStack.
func DefaultConfig() Config {
	return Config{
		Name:    DefaultName,
		IDTable: slices.Clone(DefaultIDTable),
		Session: session.DefaultConfig(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: driver name is required", session.ErrInvalidConfig)
	}
	if len(c.IDTable) == 0 {
		return ErrNoIDs
	}
	return c.Session.Validate()
}

// Driver binds bus devices to device sessions. It keeps one session per
// bus address.
type Driver struct {
	cfg      Config
	sessions *xsync.MapOf[string, *session.Session]
}

// New creates a driver.
func New(cfg Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Session.Names == nil {
		template := cfg.Session.NameTemplate
		if template == "" {
			template = netdev.DefaultNameTemplate
		}
		names, err := netdev.NewNameAllocator(template)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", session.ErrInvalidConfig, err)
		}
		cfg.Session.Names = names
	}
	if cfg.Session.Allocator == nil {
		cfg.Session.Allocator = alloc.NewLedger()
	}
	if cfg.Session.Logger == nil {
		cfg.Session.Logger = cfg.Logger
	}
	return &Driver{
		cfg:      cfg,
		sessions: xsync.NewMapOf[string, *session.Session](),
	}, nil
}

// Name implements bus.Driver.
func (d *Driver) Name() string {
	return d.cfg.Name
}

// IDTable implements bus.Driver.
func (d *Driver) IDTable() []bus.ID {
	return slices.Clone(d.cfg.IDTable)
}

// Allocator returns the allocator shared by all sessions.
func (d *Driver) Allocator() alloc.Allocator {
	return d.cfg.Session.Allocator
}

// Attach implements bus.Driver. It runs the attach sequence for dev and
// keeps the session on success. Nothing is kept on failure.
//
// The address is claimed before the sequence starts, so a concurrent
// Attach for the same device fails without touching the bus device.
func (d *Driver) Attach(ctx context.Context, dev bus.Device) error {
	addr := dev.Address()

	s, err := session.New(dev, d.cfg.Session)
	if err != nil {
		return err
	}
	if _, loaded := d.sessions.LoadOrStore(addr, s); loaded {
		return fmt.Errorf("%w: %s", ErrAlreadyAttached, addr)
	}

	if err := s.Attach(ctx); err != nil {
		d.release(addr, s)
		d.warnLog("attach failed", "device", addr, "error", err)
		return err
	}
	d.infoLog("device attached", "device", addr, "interface", s.Netdev().Name(), "session", s.ID())
	return nil
}

// release drops the claim on addr if it is still held by s.
func (d *Driver) release(addr string, s *session.Session) {
	d.sessions.Compute(addr, func(old *session.Session, loaded bool) (*session.Session, bool) {
		return old, !loaded || old == s
	})
}

// Detach implements bus.Driver. Detaching a device that is not attached
// is a no-op.
func (d *Driver) Detach(dev bus.Device) {
	addr := dev.Address()
	s, ok := d.sessions.LoadAndDelete(addr)
	if !ok {
		d.debugLog("detach of unknown device", "device", addr)
		return
	}
	s.Detach()
	d.infoLog("device detached", "device", addr)
}

// Session returns the session of the device at addr.
func (d *Driver) Session(addr string) (*session.Session, error) {
	s, ok := d.sessions.Load(addr)
	if !ok || !attached(s) {
		return nil, fmt.Errorf("%w: %s", ErrNotAttached, addr)
	}
	return s, nil
}

// SessionByInterface returns the session owning the named interface.
func (d *Driver) SessionByInterface(name string) (*session.Session, error) {
	var found *session.Session
	d.sessions.Range(func(_ string, s *session.Session) bool {
		if ifc := s.Netdev(); ifc != nil && ifc.Name() == name && attached(s) {
			found = s
			return false
		}
		return true
	})
	if found == nil {
		return nil, fmt.Errorf("%w: interface %s", ErrNotAttached, name)
	}
	return found, nil
}

// Sessions returns every attached session ordered by bus address.
// Devices still running their attach sequence are not included.
func (d *Driver) Sessions() []*session.Session {
	var out []*session.Session
	d.sessions.Range(func(_ string, s *session.Session) bool {
		if attached(s) {
			out = append(out, s)
		}
		return true
	})
	slices.SortFunc(out, func(a, b *session.Session) int {
		return strings.Compare(a.Device().Address(), b.Device().Address())
	})
	return out
}

// Close detaches every device, including ones still attaching.
func (d *Driver) Close() {
	var devs []bus.Device
	d.sessions.Range(func(_ string, s *session.Session) bool {
		devs = append(devs, s.Device())
		return true
	})
	for _, dev := range devs {
		d.Detach(dev)
	}
}

// attached reports whether s finished its attach sequence.
func attached(s *session.Session) bool {
	return s.State() == session.StateActive
}

func (d *Driver) debugLog(msg string, args ...any) {
	if d.cfg.Logger != nil {
		d.cfg.Logger.Debug(msg, append([]any{"driver", d.cfg.Name}, args...)...)
	}
}

func (d *Driver) infoLog(msg string, args ...any) {
	if d.cfg.Logger != nil {
		d.cfg.Logger.Info(msg, append([]any{"driver", d.cfg.Name}, args...)...)
	}
}

func (d *Driver) warnLog(msg string, args ...any) {
	if d.cfg.Logger != nil {
		d.cfg.Logger.Warn(msg, append([]any{"driver", d.cfg.Name}, args...)...)
	}
}

// Compile-time interface satisfaction check.
var _ bus.Driver = (*Driver)(nil)
