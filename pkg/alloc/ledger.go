package alloc

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// Ledger errors.
var (
	ErrExhausted  = errors.New("allocation failed: resource exhausted")
	ErrDoubleFree = errors.New("resource freed twice")
)

// Kind identifies the type of resource tracked by a Ledger.
type Kind string

// Resource kinds used by the device lifecycle.
const (
	KindWiphy    Kind = "wiphy"
	KindBand     Kind = "band"
	KindChannels Kind = "channels"
	KindWdev     Kind = "wdev"
	KindNetdev   Kind = "netdev"
	KindScanIE   Kind = "scan-ie"
	KindFrame    Kind = "frame"
)

// Kinds returns all known resource kinds in allocation order.
func Kinds() []Kind {
	return []Kind{KindWiphy, KindBand, KindChannels, KindWdev, KindNetdev, KindScanIE, KindFrame}
}

// Token is the receipt for one allocated resource.
// The zero Token is valid to free and does nothing.
type Token struct {
	id   int64
	kind Kind
}

// Kind returns the resource kind of the token.
func (t Token) Kind() Kind {
	return t.kind
}

// Valid returns true if the token refers to an allocation.
func (t Token) Valid() bool {
	return t.id != 0
}

// String returns a printable form of the token.
func (t Token) String() string {
	if !t.Valid() {
		return "<nil>"
	}
	return fmt.Sprintf("%s#%d", t.kind, t.id)
}

// Allocator hands out and reclaims resource tokens.
// Implementations must be safe for concurrent use.
type Allocator interface {
	// Allocate reserves one resource of the given kind.
	Allocate(kind Kind) (Token, error)

	// Free releases a previously allocated resource.
	// Freeing the zero Token is a no-op.
	Free(tok Token) error
}

// Ledger is an Allocator that keeps an exact account of live resources
// and can be told to fail upcoming allocations.
type Ledger struct {
	nextID atomic.Int64
	live   *xsync.MapOf[int64, Kind]

	allocated *xsync.MapOf[Kind, *xsync.Counter]
	freed     *xsync.MapOf[Kind, *xsync.Counter]

	mu       sync.Mutex
	failures map[Kind]int
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		live:      xsync.NewMapOf[int64, Kind](),
		allocated: xsync.NewMapOf[Kind, *xsync.Counter](),
		freed:     xsync.NewMapOf[Kind, *xsync.Counter](),
		failures:  make(map[Kind]int),
	}
}

// Allocate reserves one resource of the given kind.
// Returns ErrExhausted if a failure was injected for this kind.
func (l *Ledger) Allocate(kind Kind) (Token, error) {
	if l.consumeFailure(kind) {
		return Token{}, fmt.Errorf("%s: %w", kind, ErrExhausted)
	}

	id := l.nextID.Add(1)
	l.live.Store(id, kind)
	l.counter(l.allocated, kind).Inc()

	return Token{id: id, kind: kind}, nil
}

// Free releases a resource. Freeing a token twice returns ErrDoubleFree
// and leaves the ledger unchanged.
func (l *Ledger) Free(tok Token) error {
	if !tok.Valid() {
		return nil
	}

	if _, ok := l.live.LoadAndDelete(tok.id); !ok {
		return fmt.Errorf("%s: %w", tok, ErrDoubleFree)
	}
	l.counter(l.freed, tok.kind).Inc()

	return nil
}

// InjectFailure makes the next n allocations of kind fail.
func (l *Ledger) InjectFailure(kind Kind, n int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 {
		delete(l.failures, kind)
		return
	}
	l.failures[kind] = n
}

// ClearFailures removes all pending injected failures.
func (l *Ledger) ClearFailures() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.failures)
}

// Live returns the number of resources currently allocated.
func (l *Ledger) Live() int {
	return l.live.Size()
}

// LiveOf returns the number of live resources of one kind.
func (l *Ledger) LiveOf(kind Kind) int {
	n := 0
	l.live.Range(func(_ int64, k Kind) bool {
		if k == kind {
			n++
		}
		return true
	})
	return n
}

// Allocated returns the total number of successful allocations of kind.
func (l *Ledger) Allocated(kind Kind) int64 {
	if c, ok := l.allocated.Load(kind); ok {
		return c.Value()
	}
	return 0
}

// Freed returns the total number of frees of kind.
func (l *Ledger) Freed(kind Kind) int64 {
	if c, ok := l.freed.Load(kind); ok {
		return c.Value()
	}
	return 0
}

// Snapshot returns the live count per kind, omitting kinds with none live.
func (l *Ledger) Snapshot() map[Kind]int {
	out := make(map[Kind]int)
	l.live.Range(func(_ int64, k Kind) bool {
		out[k]++
		return true
	})
	return out
}

func (l *Ledger) consumeFailure(kind Kind) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.failures[kind]
	if n == 0 {
		return false
	}
	if n == 1 {
		delete(l.failures, kind)
	} else {
		l.failures[kind] = n - 1
	}
	return true
}

func (l *Ledger) counter(m *xsync.MapOf[Kind, *xsync.Counter], kind Kind) *xsync.Counter {
	c, _ := m.LoadOrStore(kind, xsync.NewCounter())
	return c
}

// Compile-time interface satisfaction check.
var _ Allocator = (*Ledger)(nil)
