// Package wireless holds the capability side of a wireless device.
//
// A Registry is built from an immutable Config and owns one SupportedBand
// per configured band, each with its channel table. Band entries and channel
// tables are allocated and released as a pair. A Dev links the registry to
// the network interface exposed for it.
//
// Channel numbering follows the IEEE 802.11 channel to center frequency
// mapping:
//
//	2.4 GHz: 2407 + 5*ch (channel 14 is 2484)
//	5 GHz:   5000 + 5*ch (4000 + 5*ch for channels 182..196)
//	6 GHz:   5950 + 5*ch (channel 2 is 5935)
package wireless
