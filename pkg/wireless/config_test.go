package wireless

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []InterfaceMode{ModeStation}, cfg.InterfaceModes)
	assert.Equal(t, 1, cfg.MaxScanSSIDs)
	assert.Equal(t, 512, cfg.MaxScanIELen)
	assert.Equal(t, SignalMBM, cfg.SignalType)
	assert.Equal(t, []FeatureFlag{FeatureRemainOnChannel}, cfg.Features)
	assert.Equal(t, []BandConfig{{Band: Band2GHz, Channels: 14}}, cfg.Bands)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no modes", func(c *Config) { c.InterfaceModes = nil }},
		{"negative ssids", func(c *Config) { c.MaxScanSSIDs = -1 }},
		{"negative ie len", func(c *Config) { c.MaxScanIELen = -1 }},
		{"zero channels", func(c *Config) { c.Bands[0].Channels = 0 }},
		{"too many channels", func(c *Config) { c.Bands[0].Channels = 15 }},
		{"unknown band", func(c *Config) { c.Bands[0].Band = numBands }},
		{"duplicate band", func(c *Config) {
			c.Bands = append(c.Bands, BandConfig{Band: Band2GHz, Channels: 1})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestParseConfig(t *testing.T) {
	doc := []byte(`
interface_modes: [STATION, AP]
max_scan_ssids: 4
signal_type: UNSPEC
features: [REMAIN_ON_CHANNEL, 4ADDR]
bands:
  - band: 2.4GHz
    channels: 13
  - band: 5GHZ
    channels: 165
`)

	cfg, err := ParseConfig(doc)
	require.NoError(t, err)

	assert.Equal(t, []InterfaceMode{ModeStation, ModeAP}, cfg.InterfaceModes)
	assert.Equal(t, 4, cfg.MaxScanSSIDs)
	assert.Equal(t, 512, cfg.MaxScanIELen, "absent fields keep defaults")
	assert.Equal(t, SignalUnspec, cfg.SignalType)
	assert.Equal(t, []FeatureFlag{FeatureRemainOnChannel, FeatureFourAddr}, cfg.Features)
	assert.Equal(t, []BandConfig{
		{Band: Band2GHz, Channels: 13},
		{Band: Band5GHz, Channels: 165},
	}, cfg.Bands)
}

func TestParseConfigErrors(t *testing.T) {
	_, err := ParseConfig([]byte("interface_modes: [WARP]"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = ParseConfig([]byte("bands: [{band: 2GHZ, channels: 99}]"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = ParseConfig([]byte("max_scan_ssids: [1"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caps.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_scan_ie_len: 256\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.MaxScanIELen)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
