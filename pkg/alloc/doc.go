// Package alloc accounts for the resources a wireless device session holds.
//
// Every sub-resource created while attaching a device (capability registry,
// band entries, channel tables, wireless context, network interface, scan
// buffers, frames) is represented by a Token obtained from an Allocator.
// The Ledger implementation keeps an exact count of live tokens so that
// callers can assert that a failed attach or a detach left nothing behind,
// detects double frees, and can be told to fail upcoming allocations to
// exercise error paths.
//
//	ledger := alloc.NewLedger()
//	ledger.InjectFailure(alloc.KindNetdev, 1)
//	// ... attach fails at the netdev step ...
//	if ledger.Live() != 0 { /* leak */ }
package alloc
