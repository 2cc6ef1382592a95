// Package cfg80211 defines the contract between a wireless device and the
// wireless configuration subsystem, and provides Core, an in-memory
// implementation of that subsystem.
//
// A device registers its capability registry together with an Ops
// implementation. The subsystem calls Scan, Connect and Disconnect through
// Ops and receives scan results through ResultSink.
package cfg80211
