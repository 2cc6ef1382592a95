package wireless

import (
	"errors"
	"fmt"
	"strings"
)

// Channel errors.
var (
	ErrInvalidChannel      = errors.New("invalid channel")
	ErrInvalidChannelCount = errors.New("invalid channel count")
	ErrInvalidFrequency    = errors.New("frequency not in any band")
	ErrUnknownBand         = errors.New("unknown band")
)

// Band identifies a frequency band.
type Band uint8

const (
	// Band2GHz is the 2.4 GHz ISM band.
	Band2GHz Band = iota
	// Band5GHz is the 5 GHz band.
	Band5GHz
	// Band6GHz is the 6 GHz band.
	Band6GHz

	numBands
)

// String returns the band name.
func (b Band) String() string {
	switch b {
	case Band2GHz:
		return "2GHZ"
	case Band5GHz:
		return "5GHZ"
	case Band6GHz:
		return "6GHZ"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (b Band) MarshalText() ([]byte, error) {
	if b >= numBands {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBand, b)
	}
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// Accepts "2GHZ", "2.4GHZ", "5GHZ" and "6GHZ" in any case.
func (b *Band) UnmarshalText(text []byte) error {
	switch strings.ToUpper(strings.TrimSpace(string(text))) {
	case "2GHZ", "2.4GHZ", "2G":
		*b = Band2GHz
	case "5GHZ", "5G":
		*b = Band5GHz
	case "6GHZ", "6G":
		*b = Band6GHz
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBand, text)
	}
	return nil
}

// MaxChannels returns the highest channel index usable with BuildChannels
// for the band.
func (b Band) MaxChannels() int {
	switch b {
	case Band2GHz:
		return 14
	case Band5GHz:
		return 196
	case Band6GHz:
		return 233
	default:
		return 0
	}
}

// Channel describes one channel of a supported band.
type Channel struct {
	CenterFreq int  `yaml:"center_freq" cbor:"1,keyasint"`
	HWValue    int  `yaml:"hw_value" cbor:"2,keyasint"`
	Band       Band `yaml:"band" cbor:"3,keyasint"`
}

// String returns a short description of the channel.
func (c Channel) String() string {
	return fmt.Sprintf("%s ch%d (%d MHz)", c.Band, c.HWValue, c.CenterFreq)
}

// ChannelToFrequency returns the center frequency in MHz of a channel.
func ChannelToFrequency(band Band, ch int) (int, error) {
	if ch <= 0 || ch > band.MaxChannels() {
		return 0, fmt.Errorf("%w: %s channel %d", ErrInvalidChannel, band, ch)
	}

	switch band {
	case Band2GHz:
		if ch == 14 {
			return 2484, nil
		}
		return 2407 + ch*5, nil
	case Band5GHz:
		if ch >= 182 {
			return 4000 + ch*5, nil
		}
		return 5000 + ch*5, nil
	case Band6GHz:
		if ch == 2 {
			return 5935, nil
		}
		return 5950 + ch*5, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownBand, band)
}

// FrequencyToChannel returns the band and channel index of a frequency.
// It is the inverse of ChannelToFrequency.
func FrequencyToChannel(freq int) (Band, int, error) {
	switch {
	case freq == 2484:
		return Band2GHz, 14, nil
	case freq >= 2412 && freq <= 2472 && (freq-2407)%5 == 0:
		return Band2GHz, (freq - 2407) / 5, nil
	case freq >= 4910 && freq <= 4980 && freq%5 == 0:
		return Band5GHz, (freq - 4000) / 5, nil
	case freq >= 5005 && freq <= 5905 && freq%5 == 0:
		return Band5GHz, (freq - 5000) / 5, nil
	case freq == 5935:
		return Band6GHz, 2, nil
	case freq >= 5955 && freq <= 7115 && freq%5 == 0 && freq != 5960:
		return Band6GHz, (freq - 5950) / 5, nil
	}
	return 0, 0, fmt.Errorf("%w: %d MHz", ErrInvalidFrequency, freq)
}

// BuildChannels produces the channel table for a band: n descriptors for
// channel indices 1..n, each with its center frequency and a hardware
// value equal to the index. Either the full table is returned or an error.
func BuildChannels(band Band, n int) ([]Channel, error) {
	if band >= numBands {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBand, band)
	}
	if n <= 0 || n > band.MaxChannels() {
		return nil, fmt.Errorf("%w: %s supports 1..%d, got %d",
			ErrInvalidChannelCount, band, band.MaxChannels(), n)
	}

	channels := make([]Channel, n)
	for i := 1; i <= n; i++ {
		freq, err := ChannelToFrequency(band, i)
		if err != nil {
			return nil, err
		}
		channels[i-1] = Channel{
			CenterFreq: freq,
			HWValue:    i,
			Band:       band,
		}
	}
	return channels, nil
}
