package session

import (
	"net"

	"github.com/wlancore/wlancore-go/pkg/alloc"
	"github.com/wlancore/wlancore-go/pkg/cfg80211"
	"github.com/wlancore/wlancore-go/pkg/wireless"
)

// ScanJob is the input of a Scanner.
type ScanJob struct {
	Registry  *wireless.Registry
	Request   *cfg80211.ScanRequest
	Sink      cfg80211.ResultSink
	Allocator alloc.Allocator
}

// Scanner produces scan results. Implementations report results and
// completion through job.Sink and must call ScanDone exactly once unless
// they return an error.
type Scanner interface {
	Scan(job ScanJob) error
}

// Values reported by PlaceholderScanner.
var PlaceholderBSSID = net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}

const (
	PlaceholderIELen          = 100
	PlaceholderBeaconInterval = 100
	PlaceholderSignalMBM      = -7000
)

// PlaceholderScanner reports one fixed BSS without touching the radio.
// It stands in until a real scan backend is wired.
type PlaceholderScanner struct{}

// Scan synthesizes the placeholder BSS, hands it to the sink, releases the
// IE buffer and signals completion. If the IE buffer cannot be allocated
// no result is reported but completion is still signaled.
func (PlaceholderScanner) Scan(job ScanJob) error {
	if tok, err := job.Allocator.Allocate(alloc.KindScanIE); err == nil {
		func() {
			defer func() { _ = job.Allocator.Free(tok) }()

			bss, _ := job.Sink.InformBSS(job.Registry, cfg80211.BSSInfo{
				BSSID:          PlaceholderBSSID,
				Capability:     cfg80211.CapabilityESS,
				BeaconInterval: PlaceholderBeaconInterval,
				TSF:            0,
				FrameType:      cfg80211.FrameProbeResponse,
				IEs:            make([]byte, PlaceholderIELen),
				SignalMBM:      PlaceholderSignalMBM,
			})
			if bss != nil {
				job.Sink.PutBSS(bss)
			}
		}()
	}

	job.Sink.ScanDone(job.Request, false)
	return nil
}

var _ Scanner = PlaceholderScanner{}
