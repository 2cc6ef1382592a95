package wireless

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a capability description is unusable.
var ErrInvalidConfig = errors.New("invalid capability configuration")

// InterfaceMode is an interface type the device can operate as.
type InterfaceMode uint8

const (
	ModeStation InterfaceMode = iota + 1
	ModeAP
	ModeAdhoc
	ModeMonitor
)

// String returns the mode name.
func (m InterfaceMode) String() string {
	switch m {
	case ModeStation:
		return "STATION"
	case ModeAP:
		return "AP"
	case ModeAdhoc:
		return "ADHOC"
	case ModeMonitor:
		return "MONITOR"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m InterfaceMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *InterfaceMode) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "STATION", "STA":
		*m = ModeStation
	case "AP":
		*m = ModeAP
	case "ADHOC", "IBSS":
		*m = ModeAdhoc
	case "MONITOR":
		*m = ModeMonitor
	default:
		return fmt.Errorf("%w: unknown interface mode %q", ErrInvalidConfig, text)
	}
	return nil
}

// SignalType is the unit signal strength is reported in.
type SignalType uint8

const (
	SignalNone SignalType = iota
	// SignalMBM reports signal in mBm (dBm * 100).
	SignalMBM
	// SignalUnspec reports signal in an unspecified 0..100 scale.
	SignalUnspec
)

// String returns the signal type name.
func (s SignalType) String() string {
	switch s {
	case SignalNone:
		return "NONE"
	case SignalMBM:
		return "MBM"
	case SignalUnspec:
		return "UNSPEC"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s SignalType) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SignalType) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "NONE", "":
		*s = SignalNone
	case "MBM":
		*s = SignalMBM
	case "UNSPEC":
		*s = SignalUnspec
	default:
		return fmt.Errorf("%w: unknown signal type %q", ErrInvalidConfig, text)
	}
	return nil
}

// FeatureFlag is a device capability flag.
type FeatureFlag uint32

const (
	FeatureRemainOnChannel FeatureFlag = 1 << iota
	FeaturePSOnByDefault
	FeatureFourAddr
)

// String returns the feature name.
func (f FeatureFlag) String() string {
	switch f {
	case FeatureRemainOnChannel:
		return "REMAIN_ON_CHANNEL"
	case FeaturePSOnByDefault:
		return "PS_ON_BY_DEFAULT"
	case FeatureFourAddr:
		return "4ADDR"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f FeatureFlag) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FeatureFlag) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "REMAIN_ON_CHANNEL":
		*f = FeatureRemainOnChannel
	case "PS_ON_BY_DEFAULT":
		*f = FeaturePSOnByDefault
	case "4ADDR", "FOUR_ADDR":
		*f = FeatureFourAddr
	default:
		return fmt.Errorf("%w: unknown feature %q", ErrInvalidConfig, text)
	}
	return nil
}

// BandConfig declares one supported band and its channel count.
type BandConfig struct {
	Band     Band `yaml:"band"`
	Channels int  `yaml:"channels"`
}

// Config is the declared capability set of a device. It is the input to
// NewRegistry and is never modified by it.
type Config struct {
	// InterfaceModes lists the interface types the device supports.
	InterfaceModes []InterfaceMode `yaml:"interface_modes"`

	// MaxScanSSIDs is the number of SSIDs a single scan may target.
	MaxScanSSIDs int `yaml:"max_scan_ssids"`

	// MaxScanIELen is the scan metadata budget in bytes.
	MaxScanIELen int `yaml:"max_scan_ie_len"`

	// SignalType is the unit signal strength is reported in.
	SignalType SignalType `yaml:"signal_type"`

	// Features lists capability flags.
	Features []FeatureFlag `yaml:"features"`

	// Bands lists supported bands with their channel counts.
	Bands []BandConfig `yaml:"bands"`
}

// DefaultConfig returns the compiled-in capability description:
// station mode only, one scan SSID, a 512 byte scan IE budget, mBm signal
// reporting, remain-on-channel, and the fourteen 2.4 GHz channels.
func DefaultConfig() Config {
	return Config{
		InterfaceModes: []InterfaceMode{ModeStation},
		MaxScanSSIDs:   1,
		MaxScanIELen:   512,
		SignalType:     SignalMBM,
		Features:       []FeatureFlag{FeatureRemainOnChannel},
		Bands: []BandConfig{
			{Band: Band2GHz, Channels: 14},
		},
	}
}

// clone returns a copy that shares no slices with c.
func (c Config) clone() Config {
	c.InterfaceModes = slices.Clone(c.InterfaceModes)
	c.Features = slices.Clone(c.Features)
	c.Bands = slices.Clone(c.Bands)
	return c
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if len(c.InterfaceModes) == 0 {
		return fmt.Errorf("%w: no interface modes", ErrInvalidConfig)
	}
	if c.MaxScanSSIDs < 0 {
		return fmt.Errorf("%w: max_scan_ssids must be >= 0", ErrInvalidConfig)
	}
	if c.MaxScanIELen < 0 {
		return fmt.Errorf("%w: max_scan_ie_len must be >= 0", ErrInvalidConfig)
	}

	seen := make(map[Band]bool, len(c.Bands))
	for _, b := range c.Bands {
		if b.Band >= numBands {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrUnknownBand)
		}
		if seen[b.Band] {
			return fmt.Errorf("%w: duplicate band %s", ErrInvalidConfig, b.Band)
		}
		seen[b.Band] = true
		if b.Channels <= 0 || b.Channels > b.Band.MaxChannels() {
			return fmt.Errorf("%w: band %s channel count %d out of range 1..%d",
				ErrInvalidConfig, b.Band, b.Channels, b.Band.MaxChannels())
		}
	}
	return nil
}

// ParseConfig decodes a YAML capability description and validates it.
// Fields absent from the document keep their DefaultConfig values.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML capability description file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read capability config: %w", err)
	}
	return ParseConfig(data)
}
