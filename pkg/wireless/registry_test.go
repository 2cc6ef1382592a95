package wireless

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wlancore/wlancore-go/pkg/alloc"
	"github.com/wlancore/wlancore-go/pkg/netdev"
)

func TestRegistryLifecycle(t *testing.T) {
	ledger := alloc.NewLedger()

	reg, err := NewRegistry(DefaultConfig(), ledger)
	require.NoError(t, err)
	require.NoError(t, reg.AddConfiguredBands())

	sb, ok := reg.Band(Band2GHz)
	require.True(t, ok)
	assert.Equal(t, 14, sb.NumChannels())
	assert.Len(t, sb.Channels(), 14)
	assert.Equal(t, []Band{Band2GHz}, reg.Bands())

	assert.Equal(t, map[alloc.Kind]int{
		alloc.KindWiphy:    1,
		alloc.KindBand:     1,
		alloc.KindChannels: 1,
	}, ledger.Snapshot())

	assert.True(t, reg.SupportsMode(ModeStation))
	assert.False(t, reg.SupportsMode(ModeAP))
	assert.True(t, reg.HasFeature(FeatureRemainOnChannel))
	assert.False(t, reg.HasFeature(FeatureFourAddr))
	assert.Equal(t, 1, reg.MaxScanSSIDs())
	assert.Equal(t, 512, reg.MaxScanIELen())
	assert.Equal(t, SignalMBM, reg.SignalType())

	require.NoError(t, reg.Release())
	assert.Equal(t, 0, ledger.Live())
	assert.True(t, reg.Released())

	// Second release is a no-op.
	require.NoError(t, reg.Release())
	assert.Equal(t, int64(1), ledger.Freed(alloc.KindWiphy))
}

func TestRegistryAllocationFailure(t *testing.T) {
	ledger := alloc.NewLedger()
	ledger.InjectFailure(alloc.KindWiphy, 1)

	_, err := NewRegistry(DefaultConfig(), ledger)
	assert.ErrorIs(t, err, alloc.ErrExhausted)
	assert.Equal(t, 0, ledger.Live())
}

func TestRegistryBandPairing(t *testing.T) {
	t.Run("table allocation fails", func(t *testing.T) {
		ledger := alloc.NewLedger()
		reg, err := NewRegistry(DefaultConfig(), ledger)
		require.NoError(t, err)

		ledger.InjectFailure(alloc.KindChannels, 1)
		err = reg.AddBand(Band2GHz, 14)
		assert.ErrorIs(t, err, alloc.ErrExhausted)

		_, ok := reg.Band(Band2GHz)
		assert.False(t, ok)
		assert.Equal(t, 0, ledger.LiveOf(alloc.KindBand))
		assert.Equal(t, 0, ledger.LiveOf(alloc.KindChannels))

		require.NoError(t, reg.Release())
		assert.Equal(t, 0, ledger.Live())
	})

	t.Run("entry allocation fails", func(t *testing.T) {
		ledger := alloc.NewLedger()
		reg, err := NewRegistry(DefaultConfig(), ledger)
		require.NoError(t, err)

		ledger.InjectFailure(alloc.KindBand, 1)
		assert.ErrorIs(t, reg.AddBand(Band2GHz, 14), alloc.ErrExhausted)
		assert.Equal(t, 1, ledger.Live())
		require.NoError(t, reg.Release())
	})

	t.Run("second band fails", func(t *testing.T) {
		ledger := alloc.NewLedger()
		cfg := DefaultConfig()
		cfg.Bands = append(cfg.Bands, BandConfig{Band: Band5GHz, Channels: 24})

		reg, err := NewRegistry(cfg, ledger)
		require.NoError(t, err)

		require.NoError(t, reg.AddBand(Band2GHz, 14))
		ledger.InjectFailure(alloc.KindChannels, 1)
		assert.Error(t, reg.AddBand(Band5GHz, 24))
		assert.Equal(t, []Band{Band2GHz}, reg.Bands())

		require.NoError(t, reg.Release())
		assert.Equal(t, 0, ledger.Live())
	})
}

func TestRegistryAddConfiguredBandsRollback(t *testing.T) {
	ledger := alloc.NewLedger()
	cfg := DefaultConfig()
	cfg.Bands = append(cfg.Bands, BandConfig{Band: Band6GHz, Channels: 59})

	reg, err := NewRegistry(cfg, ledger)
	require.NoError(t, err)

	// 2.4 GHz succeeds, the 6 GHz band entry fails.
	reg.allocator = &failAfter{Allocator: ledger, kind: alloc.KindBand, after: 1}

	err = reg.AddConfiguredBands()
	assert.ErrorIs(t, err, alloc.ErrExhausted)
	assert.Empty(t, reg.Bands())
	assert.Equal(t, 0, ledger.LiveOf(alloc.KindBand))
	assert.Equal(t, 0, ledger.LiveOf(alloc.KindChannels))
}

// failAfter lets the first n allocations of kind succeed and fails the rest.
type failAfter struct {
	alloc.Allocator
	kind  alloc.Kind
	after int
	seen  int
}

func (f *failAfter) Allocate(kind alloc.Kind) (alloc.Token, error) {
	if kind == f.kind {
		f.seen++
		if f.seen > f.after {
			return alloc.Token{}, alloc.ErrExhausted
		}
	}
	return f.Allocator.Allocate(kind)
}

func TestRegistrySealed(t *testing.T) {
	reg, err := NewRegistry(DefaultConfig(), alloc.NewLedger())
	require.NoError(t, err)

	reg.Seal()
	assert.True(t, reg.Sealed())
	assert.ErrorIs(t, reg.AddBand(Band5GHz, 10), ErrSealed)

	reg.Unseal()
	assert.NoError(t, reg.AddBand(Band5GHz, 10))
	assert.ErrorIs(t, reg.AddBand(Band5GHz, 10), ErrDuplicateBand)

	require.NoError(t, reg.Release())
	assert.ErrorIs(t, reg.AddBand(Band2GHz, 1), ErrReleased)
}

func TestRegistryInvalidConfig(t *testing.T) {
	ledger := alloc.NewLedger()
	cfg := DefaultConfig()
	cfg.InterfaceModes = nil

	_, err := NewRegistry(cfg, ledger)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, 0, ledger.Live())
}

func TestRegistryInfoCBOR(t *testing.T) {
	reg, err := NewRegistry(DefaultConfig(), alloc.NewLedger())
	require.NoError(t, err)
	require.NoError(t, reg.AddConfiguredBands())
	reg.Seal()

	info := reg.Info()
	assert.True(t, info.Sealed)
	assert.Equal(t, []FeatureFlag{FeatureRemainOnChannel}, info.Features)
	require.Len(t, info.Bands, 1)
	assert.Len(t, info.Bands[0].Channels, 14)

	data, err := cbor.Marshal(info)
	require.NoError(t, err)

	var decoded Info
	require.NoError(t, cbor.Unmarshal(data, &decoded))
	assert.Equal(t, *info, decoded)
}

func TestDevLifecycle(t *testing.T) {
	ledger := alloc.NewLedger()
	reg, err := NewRegistry(DefaultConfig(), ledger)
	require.NoError(t, err)

	_, err = NewDev(nil, ledger)
	assert.ErrorIs(t, err, ErrNilRegistry)

	dev, err := NewDev(reg, ledger)
	require.NoError(t, err)
	assert.Equal(t, ModeStation, dev.IfType())
	assert.Equal(t, "STATION", dev.InterfaceType())
	assert.Same(t, reg, dev.Registry())
	assert.Equal(t, 1, ledger.LiveOf(alloc.KindWdev))

	ifc := &netdev.Interface{}
	dev.BindNetdev(ifc)
	assert.Same(t, ifc, dev.Netdev())

	require.NoError(t, dev.Release())
	assert.Nil(t, dev.Netdev())
	assert.Equal(t, 0, ledger.LiveOf(alloc.KindWdev))
	require.NoError(t, dev.Release())

	require.NoError(t, reg.Release())
	assert.Equal(t, 0, ledger.Live())
}

func TestRegistryConfigIsolated(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Features = append(cfg.Features, FeatureFourAddr)

	a, err := NewRegistry(cfg, alloc.NewLedger())
	require.NoError(t, err)
	b, err := NewRegistry(cfg, alloc.NewLedger())
	require.NoError(t, err)

	// Mutating the caller's description does not reach either registry.
	cfg.InterfaceModes[0] = ModeMonitor
	cfg.Bands[0].Channels = 1
	cfg.Features[0] = FeaturePSOnByDefault

	for _, r := range []*Registry{a, b} {
		got := r.Config()
		assert.Equal(t, ModeStation, got.InterfaceModes[0])
		assert.Equal(t, 14, got.Bands[0].Channels)
		assert.True(t, r.HasFeature(FeatureRemainOnChannel))
	}

	// Nor does mutating what Config returns.
	got := a.Config()
	got.Bands[0].Channels = 2
	got.InterfaceModes[0] = ModeAP
	assert.Equal(t, 14, a.Config().Bands[0].Channels)
	assert.Equal(t, ModeStation, a.Config().InterfaceModes[0])
	assert.Equal(t, ModeStation, b.Config().InterfaceModes[0])

	require.NoError(t, a.Release())
	require.NoError(t, b.Release())
}
