package log

import "sync"

// Logger receives lifecycle trace events.
// Pass nil or NoopLogger to disable tracing.
type Logger interface {
	// Log records an event. Implementations must be thread-safe and must
	// not block: events are emitted from attach, detach and dispatcher
	// paths.
	Log(event Event)
}

// NoopLogger discards all events. Usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// MemoryLogger keeps events in memory. Used by the simulator and tests.
// The zero value keeps every event; NewMemoryLogger bounds it to the most
// recent ones.
type MemoryLogger struct {
	mu      sync.Mutex
	limit   int
	events  []Event
	next    int
	dropped int
}

// NewMemoryLogger creates a MemoryLogger that keeps the last limit events.
// A limit <= 0 keeps everything.
func NewMemoryLogger(limit int) *MemoryLogger {
	if limit < 0 {
		limit = 0
	}
	return &MemoryLogger{limit: limit}
}

// Log records the event, overwriting the oldest one when full.
func (m *MemoryLogger) Log(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.limit == 0 || len(m.events) < m.limit {
		m.events = append(m.events, event)
		return
	}
	m.events[m.next] = event
	m.next = (m.next + 1) % m.limit
	m.dropped++
}

// Events returns a copy of the retained events, oldest first.
func (m *MemoryLogger) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Event, 0, len(m.events))
	out = append(out, m.events[m.next:]...)
	return append(out, m.events[:m.next]...)
}

// Dropped returns how many events were overwritten.
func (m *MemoryLogger) Dropped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// Reset drops all recorded events.
func (m *MemoryLogger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
	m.next = 0
	m.dropped = 0
}

// Compile-time interface satisfaction checks.
var (
	_ Logger = NoopLogger{}
	_ Logger = (*MemoryLogger)(nil)
)
