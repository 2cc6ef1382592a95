// Package session implements the lifecycle of one attached wireless device.
//
// Attach acquires, in order: the capability registry, its band and channel
// tables, the registration with the wireless configuration subsystem, the
// wireless device context, the network interface, the bus device enable,
// the registration with the network stack, and finally binds the interface
// to its bus device. Each acquired step records its release on a stack; a
// failure at any step releases the held steps in reverse and returns a
// single *AttachError tagged with the failure kind.
//
// Detach closes the session's admission gate, waits for in-flight
// dispatcher calls, and then releases everything:
//
//	unregister interface, free interface, free wireless context,
//	unregister registry, free channel tables, free band entries,
//	free registry, disable bus device
//
// The Session implements cfg80211.Ops (scan, connect, disconnect) and
// netstack.Ops (open, stop, transmit). Scanning is delegated to a Scanner;
// PlaceholderScanner reports a single synthesized BSS.
package session
