package wireless

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/wlancore/wlancore-go/pkg/alloc"
)

// Registry errors.
var (
	ErrSealed        = errors.New("capability registry is sealed")
	ErrDuplicateBand = errors.New("band already present")
	ErrReleased      = errors.New("capability registry released")
)

// SupportedBand is a band entry together with its channel table.
// The entry and the table are allocated and released as a pair.
type SupportedBand struct {
	band     Band
	channels []Channel

	entryTok alloc.Token
	tableTok alloc.Token
}

// Band returns the band identifier.
func (s *SupportedBand) Band() Band {
	return s.band
}

// NumChannels returns the declared channel count.
func (s *SupportedBand) NumChannels() int {
	return len(s.channels)
}

// Channels returns a copy of the channel table.
func (s *SupportedBand) Channels() []Channel {
	return slices.Clone(s.channels)
}

// Registry describes what a wireless device can do. It is built once while
// attaching a device, sealed when registered with the wireless
// configuration subsystem, and released only by the owning session.
type Registry struct {
	mu sync.RWMutex

	cfg      Config
	modes    map[InterfaceMode]bool
	features FeatureFlag
	bands    map[Band]*SupportedBand

	sealed   bool
	released bool

	allocator alloc.Allocator
	tok       alloc.Token
}

// NewRegistry allocates a registry for the given capability description.
// Bands are not populated; call AddBand for each configured band.
func NewRegistry(cfg Config, a alloc.Allocator) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tok, err := a.Allocate(alloc.KindWiphy)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		cfg:       cfg.clone(),
		modes:     make(map[InterfaceMode]bool, len(cfg.InterfaceModes)),
		bands:     make(map[Band]*SupportedBand, len(cfg.Bands)),
		allocator: a,
		tok:       tok,
	}
	for _, m := range cfg.InterfaceModes {
		r.modes[m] = true
	}
	for _, f := range cfg.Features {
		r.features |= f
	}
	return r, nil
}

// AddBand allocates a band entry and its channel table of n channels.
// Both exist afterwards, or neither does.
func (r *Registry) AddBand(band Band, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.released:
		return ErrReleased
	case r.sealed:
		return ErrSealed
	}
	if _, exists := r.bands[band]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateBand, band)
	}

	channels, err := BuildChannels(band, n)
	if err != nil {
		return err
	}

	entryTok, err := r.allocator.Allocate(alloc.KindBand)
	if err != nil {
		return err
	}
	tableTok, err := r.allocator.Allocate(alloc.KindChannels)
	if err != nil {
		// Do not leave the entry without its table.
		_ = r.allocator.Free(entryTok)
		return err
	}

	r.bands[band] = &SupportedBand{
		band:     band,
		channels: channels,
		entryTok: entryTok,
		tableTok: tableTok,
	}
	return nil
}

// AddConfiguredBands adds every band listed in the registry's Config.
// On failure, bands added by this call are released again.
func (r *Registry) AddConfiguredBands() error {
	var added []Band
	for _, bc := range r.cfg.Bands {
		if err := r.AddBand(bc.Band, bc.Channels); err != nil {
			r.mu.Lock()
			for _, b := range added {
				_ = r.releaseBandLocked(b)
			}
			r.mu.Unlock()
			return err
		}
		added = append(added, bc.Band)
	}
	return nil
}

// ReleaseBands frees every channel table and then its band entry.
// Safe to call when no bands are present.
func (r *Registry) ReleaseBands() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, b := range r.bandsLocked() {
		errs = append(errs, r.releaseBandLocked(b))
	}
	return errors.Join(errs...)
}

func (r *Registry) releaseBandLocked(b Band) error {
	sb, ok := r.bands[b]
	if !ok {
		return nil
	}
	delete(r.bands, b)

	tableErr := r.allocator.Free(sb.tableTok)
	sb.channels = nil
	entryErr := r.allocator.Free(sb.entryTok)
	return errors.Join(tableErr, entryErr)
}

// Release frees the registry. Remaining bands are released first.
// Releasing twice is a no-op.
func (r *Registry) Release() error {
	bandsErr := r.ReleaseBands()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return bandsErr
	}
	r.released = true
	return errors.Join(bandsErr, r.allocator.Free(r.tok))
}

// Seal marks the registry immutable. Called on registration.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Unseal makes the registry mutable again after unregistration.
func (r *Registry) Unseal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = false
}

// Sealed returns true while the registry is registered.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Released returns true once Release has run.
func (r *Registry) Released() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.released
}

// Config returns a copy of the capability description the registry was
// built from.
func (r *Registry) Config() Config {
	return r.cfg.clone()
}

// SupportsMode returns true if the interface mode is supported.
func (r *Registry) SupportsMode(m InterfaceMode) bool {
	return r.modes[m]
}

// MaxScanSSIDs returns the number of SSIDs one scan may target.
func (r *Registry) MaxScanSSIDs() int {
	return r.cfg.MaxScanSSIDs
}

// MaxScanIELen returns the scan metadata budget in bytes.
func (r *Registry) MaxScanIELen() int {
	return r.cfg.MaxScanIELen
}

// SignalType returns the signal reporting unit.
func (r *Registry) SignalType() SignalType {
	return r.cfg.SignalType
}

// HasFeature returns true if the feature flag is set.
func (r *Registry) HasFeature(f FeatureFlag) bool {
	return r.features&f != 0
}

// Band returns the supported band entry, if present.
func (r *Registry) Band(b Band) (*SupportedBand, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sb, ok := r.bands[b]
	return sb, ok
}

// Bands returns the present bands in ascending order.
func (r *Registry) Bands() []Band {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bandsLocked()
}

func (r *Registry) bandsLocked() []Band {
	out := make([]Band, 0, len(r.bands))
	for b := range r.bands {
		out = append(out, b)
	}
	slices.Sort(out)
	return out
}

// Info is a snapshot of a registry for reporting.
type Info struct {
	InterfaceModes []InterfaceMode `cbor:"1,keyasint" yaml:"interface_modes"`
	MaxScanSSIDs   int             `cbor:"2,keyasint" yaml:"max_scan_ssids"`
	MaxScanIELen   int             `cbor:"3,keyasint" yaml:"max_scan_ie_len"`
	SignalType     SignalType      `cbor:"4,keyasint" yaml:"signal_type"`
	Features       []FeatureFlag   `cbor:"5,keyasint,omitempty" yaml:"features,omitempty"`
	Bands          []BandInfo      `cbor:"6,keyasint" yaml:"bands"`
	Sealed         bool            `cbor:"7,keyasint" yaml:"sealed"`
}

// BandInfo is a snapshot of one supported band.
type BandInfo struct {
	Band     Band      `cbor:"1,keyasint" yaml:"band"`
	Channels []Channel `cbor:"2,keyasint" yaml:"channels"`
}

// Info returns a snapshot of the registry.
func (r *Registry) Info() *Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info := &Info{
		InterfaceModes: slices.Clone(r.cfg.InterfaceModes),
		MaxScanSSIDs:   r.cfg.MaxScanSSIDs,
		MaxScanIELen:   r.cfg.MaxScanIELen,
		SignalType:     r.cfg.SignalType,
		Sealed:         r.sealed,
	}
	for _, f := range []FeatureFlag{FeatureRemainOnChannel, FeaturePSOnByDefault, FeatureFourAddr} {
		if r.features&f != 0 {
			info.Features = append(info.Features, f)
		}
	}
	for _, b := range r.bandsLocked() {
		info.Bands = append(info.Bands, BandInfo{
			Band:     b,
			Channels: slices.Clone(r.bands[b].channels),
		})
	}
	return info
}
