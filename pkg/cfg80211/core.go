package cfg80211

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/wlancore/wlancore-go/internal/gate"
	"github.com/wlancore/wlancore-go/pkg/wireless"
)

// ScanSummary describes the last completed scan of a registry.
type ScanSummary struct {
	Completions int
	Aborted     bool
	Results     int
}

type registration struct {
	reg  *wireless.Registry
	ops  Ops
	gate gate.Gate

	mu       sync.Mutex
	bss      map[string]*BSS // keyed by BSSID
	scanning *ScanRequest
	summary  ScanSummary
}

// Core is an in-memory wireless configuration subsystem. It records
// registered devices, drives their Ops, and caches reported scan results.
//
// Calls into a device's Ops are admitted through a per-registration gate;
// Unregister closes the gate and waits for in-flight calls before returning.
type Core struct {
	regs *xsync.MapOf[*wireless.Registry, *registration]

	failRegister atomic.Int32
	onScanDone   func(reg *wireless.Registry, aborted bool)

	logger *slog.Logger
}

// NewCore creates an empty subsystem. logger may be nil.
func NewCore(logger *slog.Logger) *Core {
	return &Core{
		regs:   xsync.NewMapOf[*wireless.Registry, *registration](),
		logger: logger,
	}
}

// OnScanDone sets a hook invoked after every scan completion.
// Must be set before devices register.
func (c *Core) OnScanDone(fn func(reg *wireless.Registry, aborted bool)) {
	c.onScanDone = fn
}

// FailNextRegister makes the next n Register calls fail with ErrRejected.
func (c *Core) FailNextRegister(n int) {
	c.failRegister.Store(int32(n))
}

// Register implements Subsystem. The registry is sealed while registered.
func (c *Core) Register(reg *wireless.Registry, ops Ops) error {
	if ops == nil {
		return ErrNilOps
	}
	if c.consumeFailure() {
		return ErrRejected
	}

	r := &registration{reg: reg, ops: ops, bss: make(map[string]*BSS)}
	if _, loaded := c.regs.LoadOrStore(reg, r); loaded {
		return ErrAlreadyRegistered
	}
	reg.Seal()

	c.debugLog("wiphy registered", "bands", len(reg.Bands()))
	return nil
}

// Unregister implements Subsystem. It blocks until in-flight calls into the
// device's Ops have returned; no call is made afterwards.
func (c *Core) Unregister(reg *wireless.Registry) {
	r, ok := c.regs.Load(reg)
	if !ok {
		return
	}
	r.gate.Close()
	c.regs.Delete(reg)

	r.mu.Lock()
	for key, bss := range r.bss {
		bss.put()
		delete(r.bss, key)
	}
	r.scanning = nil
	r.mu.Unlock()

	reg.Unseal()
	c.debugLog("wiphy unregistered")
}

// Registered returns true if reg is registered.
func (c *Core) Registered(reg *wireless.Registry) bool {
	_, ok := c.regs.Load(reg)
	return ok
}

// Count returns the number of registered devices.
func (c *Core) Count() int {
	return c.regs.Size()
}

// TriggerScan asks the device to scan for ssids.
func (c *Core) TriggerScan(reg *wireless.Registry, ssids ...string) (*ScanRequest, error) {
	r, err := c.enter(reg)
	if err != nil {
		return nil, err
	}
	defer r.gate.Exit()

	if len(ssids) > reg.MaxScanSSIDs() {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManySSIDs, len(ssids), reg.MaxScanSSIDs())
	}

	req := &ScanRequest{SSIDs: slices.Clone(ssids), Registry: reg, Sink: c}

	r.mu.Lock()
	if r.scanning != nil {
		r.mu.Unlock()
		return nil, ErrScanInProgress
	}
	r.scanning = req
	r.mu.Unlock()

	if err := r.ops.Scan(req); err != nil {
		r.mu.Lock()
		if r.scanning == req {
			r.scanning = nil
		}
		r.mu.Unlock()
		return nil, err
	}
	return req, nil
}

// Connect asks the device to associate.
func (c *Core) Connect(reg *wireless.Registry, params ConnectParams) error {
	r, err := c.enter(reg)
	if err != nil {
		return err
	}
	defer r.gate.Exit()

	return r.ops.Connect(params)
}

// Disconnect asks the device to drop its association.
func (c *Core) Disconnect(reg *wireless.Registry, reason uint16) error {
	r, err := c.enter(reg)
	if err != nil {
		return err
	}
	defer r.gate.Exit()

	return r.ops.Disconnect(reason)
}

// InformBSS implements ResultSink. The BSS is cached with one reference
// held by the cache and one returned to the caller. IEs are copied.
func (c *Core) InformBSS(reg *wireless.Registry, info BSSInfo) (*BSS, error) {
	r, ok := c.regs.Load(reg)
	if !ok {
		return nil, ErrNotRegistered
	}

	bss := &BSS{info: info}
	bss.info.BSSID = slices.Clone(info.BSSID)
	bss.info.IEs = slices.Clone(info.IEs)
	bss.refs.Store(1)

	r.mu.Lock()
	defer r.mu.Unlock()

	key := info.BSSID.String()
	if old, exists := r.bss[key]; exists {
		old.put()
	}
	r.bss[key] = bss
	return bss.get(), nil
}

// PutBSS implements ResultSink.
func (c *Core) PutBSS(bss *BSS) {
	if bss != nil {
		bss.put()
	}
}

// ScanDone implements ResultSink. Completion is recorded once per request.
func (c *Core) ScanDone(req *ScanRequest, aborted bool) {
	if req == nil || !req.complete(aborted) {
		return
	}

	if r, ok := c.regs.Load(req.Registry); ok {
		r.mu.Lock()
		if r.scanning == req {
			r.scanning = nil
		}
		r.summary.Completions++
		r.summary.Aborted = aborted
		r.summary.Results = len(r.bss)
		r.mu.Unlock()
	}

	c.debugLog("scan done", "aborted", aborted)
	if c.onScanDone != nil {
		c.onScanDone(req.Registry, aborted)
	}
}

// Results returns the cached BSS entries ordered by BSSID.
func (c *Core) Results(reg *wireless.Registry) []*BSS {
	r, ok := c.regs.Load(reg)
	if !ok {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.bss))
	for k := range r.bss {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]*BSS, len(keys))
	for i, k := range keys {
		out[i] = r.bss[k]
	}
	return out
}

// LastScan returns the summary of completed scans.
func (c *Core) LastScan(reg *wireless.Registry) (ScanSummary, bool) {
	r, ok := c.regs.Load(reg)
	if !ok {
		return ScanSummary{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary, true
}

func (c *Core) enter(reg *wireless.Registry) (*registration, error) {
	r, ok := c.regs.Load(reg)
	if !ok || !r.gate.Enter() {
		return nil, ErrNotRegistered
	}
	return r, nil
}

func (c *Core) consumeFailure() bool {
	for {
		n := c.failRegister.Load()
		if n <= 0 {
			return false
		}
		if c.failRegister.CompareAndSwap(n, n-1) {
			return true
		}
	}
}

func (c *Core) debugLog(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

// Compile-time interface satisfaction checks.
var (
	_ Subsystem  = (*Core)(nil)
	_ ResultSink = (*Core)(nil)
)
