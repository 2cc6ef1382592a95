package driver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wlancore/wlancore-go/pkg/alloc"
	"github.com/wlancore/wlancore-go/pkg/bus"
	"github.com/wlancore/wlancore-go/pkg/cfg80211"
	"github.com/wlancore/wlancore-go/pkg/netstack"
	"github.com/wlancore/wlancore-go/pkg/session"
)

type fixture struct {
	core   *cfg80211.Core
	stack  *netstack.Stack
	ledger *alloc.Ledger
	drv    *Driver
	enum   *bus.Enumerator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		core:   cfg80211.NewCore(nil),
		stack:  netstack.NewStack(nil),
		ledger: alloc.NewLedger(),
		enum:   bus.NewEnumerator(nil),
	}

	cfg := DefaultConfig()
	cfg.Session.Wireless = f.core
	cfg.Session.NetStack = f.stack
	cfg.Session.Allocator = f.ledger

	drv, err := New(cfg)
	require.NoError(t, err)
	f.drv = drv
	require.NoError(t, f.enum.RegisterDriver(context.Background(), drv))
	return f
}

func TestDriverPlugUnplug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dev := bus.NewSimDevice("0000:03:00.0", DefaultIDTable[0])
	require.NoError(t, f.enum.Add(ctx, dev))

	name, ok := f.enum.Bound(dev.Address())
	require.True(t, ok)
	assert.Equal(t, DefaultName, name)

	s, err := f.drv.Session(dev.Address())
	require.NoError(t, err)
	assert.Equal(t, session.StateActive, s.State())
	assert.True(t, f.stack.Registered("wlan0"))

	byIfc, err := f.drv.SessionByInterface("wlan0")
	require.NoError(t, err)
	assert.Same(t, s, byIfc)

	require.NoError(t, f.enum.Remove(dev.Address()))
	assert.Equal(t, session.StateDetached, s.State())
	_, err = f.drv.Session(dev.Address())
	assert.ErrorIs(t, err, ErrNotAttached)
	assert.Equal(t, 0, f.ledger.Live())
	assert.Equal(t, 0, f.core.Count())
	assert.False(t, dev.Enabled())
}

func TestDriverNamesAreShared(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := bus.NewSimDevice("0000:03:00.0", DefaultIDTable[0])
	b := bus.NewSimDevice("0000:04:00.0", DefaultIDTable[0])
	require.NoError(t, f.enum.Add(ctx, a))
	require.NoError(t, f.enum.Add(ctx, b))

	sessions := f.drv.Sessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, "wlan0", sessions[0].Netdev().Name())
	assert.Equal(t, "wlan1", sessions[1].Netdev().Name())

	f.drv.Close()
	assert.Empty(t, f.drv.Sessions())
	assert.Empty(t, f.stack.Names())
}

func TestDriverAttachFailureKeepsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stack.FailNextRegister(1)

	dev := bus.NewSimDevice("0000:03:00.0", DefaultIDTable[0])
	err := f.enum.Add(ctx, dev)
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrRegistrationFailed)

	_, bound := f.enum.Bound(dev.Address())
	assert.False(t, bound)
	assert.Empty(t, f.drv.Sessions())
	assert.Equal(t, 0, f.ledger.Live())
	assert.False(t, dev.Enabled())

	// A later probe succeeds with a fresh session.
	require.NoError(t, f.enum.Reprobe(ctx, dev.Address()))
	s, err := f.drv.Session(dev.Address())
	require.NoError(t, err)
	assert.Equal(t, "wlan0", s.Netdev().Name())
}

func TestDriverDoubleAttach(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dev := bus.NewSimDevice("0000:03:00.0", DefaultIDTable[0])
	require.NoError(t, f.drv.Attach(ctx, dev))
	assert.ErrorIs(t, f.drv.Attach(ctx, dev), ErrAlreadyAttached)

	f.drv.Detach(dev)
	f.drv.Detach(dev)
	assert.Equal(t, 0, f.ledger.Live())

	require.NoError(t, f.drv.Attach(ctx, dev))
	f.drv.Close()
}

// slowDevice widens the window between claiming a device and finishing
// its attach sequence.
type slowDevice struct {
	*bus.SimDevice
	delay time.Duration
}

func (d slowDevice) Enable() error {
	time.Sleep(d.delay)
	return d.SimDevice.Enable()
}

func TestDriverConcurrentAttachSameDevice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sim := bus.NewSimDevice("0000:03:00.0", DefaultIDTable[0])
	dev := slowDevice{SimDevice: sim, delay: 5 * time.Millisecond}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = f.drv.Attach(ctx, dev)
		}()
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyAttached)
		rejected++
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)

	s, err := f.drv.Session(sim.Address())
	require.NoError(t, err)
	assert.Equal(t, session.StateActive, s.State())
	assert.Equal(t, "wlan0", s.Netdev().Name())
	assert.True(t, sim.Enabled())
	assert.Equal(t, 1, sim.EnableCalls())
	assert.Equal(t, 0, sim.DisableCalls())
	assert.Equal(t, 1, f.ledger.LiveOf(alloc.KindNetdev))

	f.drv.Close()
	assert.False(t, sim.Enabled())
	assert.Equal(t, 0, f.ledger.Live())
}

func TestDriverAttachInProgressIsHidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sim := bus.NewSimDevice("0000:03:00.0", DefaultIDTable[0])
	dev := slowDevice{SimDevice: sim, delay: 20 * time.Millisecond}

	done := make(chan error, 1)
	go func() { done <- f.drv.Attach(ctx, dev) }()

	require.Eventually(t, func() bool {
		return f.ledger.LiveOf(alloc.KindNetdev) == 1
	}, time.Second, time.Millisecond)
	_, err := f.drv.Session(sim.Address())
	assert.ErrorIs(t, err, ErrNotAttached)
	assert.Empty(t, f.drv.Sessions())

	require.NoError(t, <-done)
	_, err = f.drv.Session(sim.Address())
	assert.NoError(t, err)
	f.drv.Close()
}

func TestDriverIgnoresUnknownDevice(t *testing.T) {
	f := newFixture(t)

	dev := bus.NewSimDevice("0000:05:00.0", bus.ID{Vendor: 0x8086, Device: 0x2723})
	err := f.enum.Add(context.Background(), dev)
	assert.ErrorIs(t, err, bus.ErrNoDriver)
	assert.Empty(t, f.drv.Sessions())
}

func TestDriverUnregisterDetachesAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dev := bus.NewSimDevice("0000:03:00.0", DefaultIDTable[0])
	require.NoError(t, f.enum.Add(ctx, dev))
	require.NoError(t, f.enum.UnregisterDriver(DefaultName))

	assert.Empty(t, f.drv.Sessions())
	assert.Equal(t, 0, f.ledger.Live())

	// Device is still present; re-registering probes it again.
	require.NoError(t, f.enum.RegisterDriver(ctx, f.drv))
	_, err := f.drv.Session(dev.Address())
	assert.NoError(t, err)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Session.Wireless = cfg80211.NewCore(nil)
	cfg.Session.NetStack = netstack.NewStack(nil)
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Name = " "
	assert.ErrorIs(t, bad.Validate(), session.ErrInvalidConfig)

	bad = cfg
	bad.IDTable = nil
	assert.ErrorIs(t, bad.Validate(), ErrNoIDs)

	bad = cfg
	bad.Session.Wireless = nil
	_, err := New(bad)
	assert.ErrorIs(t, err, session.ErrInvalidConfig)
}
