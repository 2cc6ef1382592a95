package cfg80211

import (
	"errors"
	"fmt"
	"net"
	"slices"
	"sync/atomic"

	"github.com/wlancore/wlancore-go/pkg/wireless"
)

// Subsystem errors.
var (
	ErrNotRegistered     = errors.New("capability registry not registered")
	ErrAlreadyRegistered = errors.New("capability registry already registered")
	ErrRejected          = errors.New("registration rejected")
	ErrTooManySSIDs      = errors.New("scan request exceeds max scan SSIDs")
	ErrScanInProgress    = errors.New("scan already in progress")
	ErrNilOps            = errors.New("ops must not be nil")
)

// Capability bits of a BSS.
const (
	CapabilityESS  uint16 = 1 << 0
	CapabilityIBSS uint16 = 1 << 1
)

// FrameType is the management frame a BSS was learned from.
type FrameType uint8

const (
	FrameUnknown FrameType = iota
	FrameBeacon
	FrameProbeResponse
)

// String returns the frame type name.
func (f FrameType) String() string {
	switch f {
	case FrameBeacon:
		return "BEACON"
	case FrameProbeResponse:
		return "PROBE_RESP"
	default:
		return "UNKNOWN"
	}
}

// Ops are the operations the wireless configuration subsystem invokes on a
// registered device.
type Ops interface {
	// Scan starts a scan. Results are reported to req.Sink and completion
	// through req.Sink.ScanDone.
	Scan(req *ScanRequest) error

	// Connect requests association with a network.
	Connect(params ConnectParams) error

	// Disconnect drops the current association.
	Disconnect(reason uint16) error
}

// ResultSink collects scan results and completion.
type ResultSink interface {
	// InformBSS reports a BSS and returns a referenced entry, or nil when
	// the result was not accepted. The caller releases the reference with
	// PutBSS.
	InformBSS(reg *wireless.Registry, info BSSInfo) (*BSS, error)

	// PutBSS releases a reference returned by InformBSS. Nil is ignored.
	PutBSS(bss *BSS)

	// ScanDone signals the end of a scan.
	ScanDone(req *ScanRequest, aborted bool)
}

// Subsystem is the registration contract for capability registries.
type Subsystem interface {
	Register(reg *wireless.Registry, ops Ops) error
	Unregister(reg *wireless.Registry)
}

// ScanRequest describes one scan.
type ScanRequest struct {
	// SSIDs to probe for; empty means a wildcard scan.
	SSIDs []string

	// Registry is the device being scanned with.
	Registry *wireless.Registry

	// Sink receives results and completion.
	Sink ResultSink

	done    atomic.Bool
	aborted atomic.Bool
}

// Completed returns true once ScanDone ran for the request.
func (r *ScanRequest) Completed() bool {
	return r.done.Load()
}

// Aborted returns the flag passed to ScanDone.
func (r *ScanRequest) Aborted() bool {
	return r.aborted.Load()
}

// complete records completion. Returns false if already completed.
func (r *ScanRequest) complete(aborted bool) bool {
	if r.done.Swap(true) {
		return false
	}
	r.aborted.Store(aborted)
	return true
}

// ConnectParams describes a connect request.
type ConnectParams struct {
	SSID    string
	BSSID   net.HardwareAddr
	Channel *wireless.Channel
}

// BSSInfo is what a driver reports about one BSS.
type BSSInfo struct {
	BSSID          net.HardwareAddr
	Channel        *wireless.Channel // nil when not bound to a channel
	Capability     uint16
	BeaconInterval uint16 // in TU
	TSF            uint64
	FrameType      FrameType
	IEs            []byte
	SignalMBM      int32 // dBm * 100
}

// String returns a short description of the BSS.
func (i BSSInfo) String() string {
	ch := "none"
	if i.Channel != nil {
		ch = i.Channel.String()
	}
	sign, mbm := "", int64(i.SignalMBM)
	if mbm < 0 {
		sign, mbm = "-", -mbm
	}
	return fmt.Sprintf("%s channel=%s cap=0x%04x bi=%d signal=%s%d.%02d dBm ies=%d",
		i.BSSID, ch, i.Capability, i.BeaconInterval,
		sign, mbm/100, mbm%100, len(i.IEs))
}

// BSS is a reference-counted entry in the scan result cache.
type BSS struct {
	info BSSInfo
	refs atomic.Int32
}

// Info returns a copy of the BSS description.
func (b *BSS) Info() BSSInfo {
	info := b.info
	info.BSSID = slices.Clone(b.info.BSSID)
	info.IEs = slices.Clone(b.info.IEs)
	return info
}

// Refs returns the current reference count.
func (b *BSS) Refs() int {
	return int(b.refs.Load())
}

func (b *BSS) get() *BSS {
	b.refs.Add(1)
	return b
}

func (b *BSS) put() {
	for {
		n := b.refs.Load()
		if n <= 0 || b.refs.CompareAndSwap(n, n-1) {
			return
		}
	}
}
