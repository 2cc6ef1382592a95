package wireless

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChannels24GHz(t *testing.T) {
	channels, err := BuildChannels(Band2GHz, 14)
	require.NoError(t, err)
	require.Len(t, channels, 14)

	seen := make(map[int]int)
	for i, ch := range channels {
		idx := i + 1
		assert.Equal(t, idx, ch.HWValue)
		assert.Equal(t, Band2GHz, ch.Band)

		prev, dup := seen[ch.CenterFreq]
		assert.False(t, dup, "channel %d shares %d MHz with channel %d", idx, ch.CenterFreq, prev)
		seen[ch.CenterFreq] = idx

		band, back, err := FrequencyToChannel(ch.CenterFreq)
		require.NoError(t, err)
		assert.Equal(t, Band2GHz, band)
		assert.Equal(t, idx, back)
	}

	assert.Equal(t, 2412, channels[0].CenterFreq)
	assert.Equal(t, 2472, channels[12].CenterFreq)
	assert.Equal(t, 2484, channels[13].CenterFreq)
}

func TestChannelToFrequency(t *testing.T) {
	tests := []struct {
		band Band
		ch   int
		want int
	}{
		{Band2GHz, 1, 2412},
		{Band2GHz, 6, 2437},
		{Band2GHz, 14, 2484},
		{Band5GHz, 36, 5180},
		{Band5GHz, 165, 5825},
		{Band5GHz, 184, 4920},
		{Band6GHz, 1, 5955},
		{Band6GHz, 2, 5935},
		{Band6GHz, 233, 7115},
	}

	for _, tt := range tests {
		t.Run(tt.band.String(), func(t *testing.T) {
			got, err := ChannelToFrequency(tt.band, tt.ch)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			band, ch, err := FrequencyToChannel(got)
			require.NoError(t, err)
			assert.Equal(t, tt.band, band)
			assert.Equal(t, tt.ch, ch)
		})
	}
}

func TestBijectionAllBands(t *testing.T) {
	for _, band := range []Band{Band2GHz, Band5GHz, Band6GHz} {
		channels, err := BuildChannels(band, band.MaxChannels())
		require.NoError(t, err)

		freqs := make(map[int]bool, len(channels))
		for _, ch := range channels {
			assert.False(t, freqs[ch.CenterFreq], "%s: duplicate frequency %d", band, ch.CenterFreq)
			freqs[ch.CenterFreq] = true
		}
	}
}

func TestBuildChannelsInvalid(t *testing.T) {
	_, err := BuildChannels(Band2GHz, 0)
	assert.ErrorIs(t, err, ErrInvalidChannelCount)

	_, err = BuildChannels(Band2GHz, 15)
	assert.ErrorIs(t, err, ErrInvalidChannelCount)

	_, err = BuildChannels(Band(9), 1)
	assert.ErrorIs(t, err, ErrUnknownBand)

	_, err = ChannelToFrequency(Band2GHz, 0)
	assert.ErrorIs(t, err, ErrInvalidChannel)

	_, _, err = FrequencyToChannel(1000)
	assert.ErrorIs(t, err, ErrInvalidFrequency)
}

func TestBandText(t *testing.T) {
	for _, in := range []string{"2ghz", "2.4GHz", "2G"} {
		var b Band
		require.NoError(t, b.UnmarshalText([]byte(in)))
		assert.Equal(t, Band2GHz, b)
	}

	var b Band
	assert.ErrorIs(t, b.UnmarshalText([]byte("60GHZ")), ErrUnknownBand)

	text, err := Band5GHz.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "5GHZ", string(text))

	_, err = Band(7).MarshalText()
	assert.Error(t, err)
}
