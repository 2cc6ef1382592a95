package session

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/wlancore/wlancore-go/pkg/alloc"
	"github.com/wlancore/wlancore-go/pkg/cfg80211"
	"github.com/wlancore/wlancore-go/pkg/eventbus"
	"github.com/wlancore/wlancore-go/pkg/log"
	"github.com/wlancore/wlancore-go/pkg/netdev"
	"github.com/wlancore/wlancore-go/pkg/netstack"
	"github.com/wlancore/wlancore-go/pkg/wireless"
)

// Config configures a device session.
type Config struct {
	// Capabilities describes the device. Defaults to wireless.DefaultConfig().
	Capabilities wireless.Config

	// NameTemplate is the interface name template, used when Names is nil.
	// Default: "wlan%d".
	NameTemplate string

	// Names allocates interface names. Share one allocator between sessions
	// so that names stay unique. If nil, a private one is created from
	// NameTemplate.
	Names *netdev.NameAllocator

	// HardwareAddr is the interface address. If nil, a random locally
	// administered address is assigned.
	HardwareAddr net.HardwareAddr

	// Allocator accounts for every allocated resource. If nil, a private
	// ledger is used.
	Allocator alloc.Allocator

	// Wireless is the wireless configuration subsystem. Required.
	Wireless cfg80211.Subsystem

	// NetStack is the network stack. Required.
	NetStack netstack.Subsystem

	// Scanner produces scan results. Default: PlaceholderScanner.
	Scanner Scanner

	// Events receives lifecycle notifications. Optional.
	Events *eventbus.Bus

	// Logger is the operational logger. If nil, logging is disabled.
	Logger *slog.Logger

	// TraceLogger receives lifecycle trace events. If nil, tracing is
	// disabled.
	TraceLogger log.Logger
}

// DefaultConfig returns a Config with the compiled-in capabilities. The
// caller must still set Wireless and NetStack.
func DefaultConfig() Config {
	return Config{
		Capabilities: wireless.DefaultConfig(),
		NameTemplate: netdev.DefaultNameTemplate,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Wireless == nil {
		return fmt.Errorf("%w: wireless subsystem is required", ErrInvalidConfig)
	}
	if c.NetStack == nil {
		return fmt.Errorf("%w: network stack is required", ErrInvalidConfig)
	}
	if c.HardwareAddr != nil && len(c.HardwareAddr) != 6 {
		return fmt.Errorf("%w: hardware address must be 6 bytes", ErrInvalidConfig)
	}
	if err := c.Capabilities.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// withDefaults fills optional fields.
func (c Config) withDefaults() (Config, error) {
	if c.Names == nil {
		template := c.NameTemplate
		if template == "" {
			template = netdev.DefaultNameTemplate
		}
		names, err := netdev.NewNameAllocator(template)
		if err != nil {
			return c, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		c.Names = names
	}
	if c.Allocator == nil {
		c.Allocator = alloc.NewLedger()
	}
	if c.Scanner == nil {
		c.Scanner = PlaceholderScanner{}
	}
	if c.TraceLogger == nil {
		c.TraceLogger = log.NoopLogger{}
	}
	return c, nil
}
