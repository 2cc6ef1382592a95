// Package gate provides an admission gate for callbacks into an object that
// is about to be torn down.
//
// Callers wrap every callback in Enter/Exit. Close rejects new callers and
// blocks until all admitted callers have exited, so the owner can free
// resources afterwards knowing no callback still uses them.
package gate

import "sync"

// Gate admits callers until closed. The zero value is open.
type Gate struct {
	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// Enter admits a caller. It returns false once the gate is closed; a caller
// that is admitted must call Exit.
func (g *Gate) Enter() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return false
	}
	g.inflight.Add(1)
	return true
}

// Exit marks an admitted caller as done.
func (g *Gate) Exit() {
	g.inflight.Done()
}

// Close stops admitting callers and waits for admitted ones to exit.
// It returns true on the first call. Close must not be called by an
// admitted caller.
func (g *Gate) Close() bool {
	g.mu.Lock()
	first := !g.closed
	g.closed = true
	g.mu.Unlock()

	g.inflight.Wait()
	return first
}

// Closed returns true once Close has been called.
func (g *Gate) Closed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}
