package log

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func stepEvent(session, step string, ok bool) Event {
	return Event{
		Timestamp: time.Now(),
		SessionID: session,
		Device:    "0000:03:00.0",
		Layer:     LayerSession,
		Category:  CategoryStep,
		Step:      &StepEvent{Step: step, Phase: PhaseAcquire, OK: ok, Duration: time.Millisecond},
	}
}

func writeTrace(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test"+FileExtension)

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return path
}

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	defer r.Close()

	var out []Event
	for {
		event, err := r.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		out = append(out, event)
	}
}

func TestEncodeDecodeEvent(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	event := Event{
		Timestamp: ts,
		SessionID: "sess-1",
		Interface: "wlan0",
		Layer:     LayerNetdev,
		Category:  CategoryDispatch,
		Dispatch:  &DispatchEvent{Op: "transmit", Result: "OK", Duration: 42},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(ts) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, ts)
	}
	if decoded.Dispatch == nil || decoded.Dispatch.Op != "transmit" || decoded.Dispatch.Duration != 42 {
		t.Errorf("Dispatch: got %+v", decoded.Dispatch)
	}
	if decoded.Step != nil || decoded.Error != nil {
		t.Error("unexpected payload set")
	}
}

func TestFileLoggerRoundTrip(t *testing.T) {
	path := writeTrace(t, []Event{
		stepEvent("a", "wiphy-alloc", true),
		stepEvent("a", "band-alloc", true),
		stepEvent("b", "wiphy-alloc", false),
	})

	events := readAll(t, mustReader(t, path, Filter{}))
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[1].Step.Step != "band-alloc" {
		t.Errorf("order: got %q at index 1", events[1].Step.Step)
	}
	if events[2].Step.OK {
		t.Error("OK flag lost")
	}
}

func TestFileLoggerAppendsAndIgnoresAfterClose(t *testing.T) {
	path := writeTrace(t, []Event{stepEvent("a", "wiphy-alloc", true)})

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Log(stepEvent("a", "band-alloc", true))
	logger.Close()
	logger.Log(stepEvent("a", "dropped", true))
	if err := logger.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	if n := len(readAll(t, mustReader(t, path, Filter{}))); n != 2 {
		t.Errorf("got %d events, want 2", n)
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.wlog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				logger.Log(stepEvent("c", "transmit", true))
			}
		}()
	}
	wg.Wait()
	logger.Close()

	if n := len(readAll(t, mustReader(t, path, Filter{}))); n != 200 {
		t.Errorf("got %d events, want 200", n)
	}
}

func TestReaderFilter(t *testing.T) {
	errEvent := Event{
		Timestamp: time.Now(),
		SessionID: "a",
		Layer:     LayerBus,
		Category:  CategoryError,
		Error:     &ErrorEventData{Layer: LayerBus, Message: "enable failed", Step: "bus-enable", Kind: "bus-enable-failed"},
	}
	path := writeTrace(t, []Event{
		stepEvent("a", "wiphy-alloc", true),
		stepEvent("b", "wiphy-alloc", true),
		errEvent,
	})

	if n := len(readAll(t, mustReader(t, path, Filter{SessionID: "a"}))); n != 2 {
		t.Errorf("session filter: got %d, want 2", n)
	}

	cat := CategoryError
	got := readAll(t, mustReader(t, path, Filter{Category: &cat}))
	if len(got) != 1 || got[0].Error.Kind != "bus-enable-failed" {
		t.Errorf("category filter: got %+v", got)
	}

	if n := len(readAll(t, mustReader(t, path, Filter{Step: "bus-enable"}))); n != 1 {
		t.Errorf("step filter: got %d, want 1", n)
	}

	layer := LayerWireless
	if n := len(readAll(t, mustReader(t, path, Filter{Layer: &layer}))); n != 0 {
		t.Errorf("layer filter: got %d, want 0", n)
	}

	future := time.Now().Add(time.Hour)
	if n := len(readAll(t, mustReader(t, path, Filter{TimeStart: &future}))); n != 0 {
		t.Errorf("time filter: got %d, want 0", n)
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "nope.wlog")); !os.IsNotExist(err) {
		t.Errorf("got %v, want not-exist error", err)
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	NewSlogAdapter(logger).Log(stepEvent("sess-9", "netdev-register", true))

	out := buf.String()
	for _, want := range []string{"msg=trace", "session=sess-9", "step=netdev-register", "phase=ACQUIRE", "ok=true"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestMultiAndMemoryLogger(t *testing.T) {
	a, b := &MemoryLogger{}, &MemoryLogger{}
	m := NewMultiLogger(a, nil, b, NoopLogger{})

	m.Log(stepEvent("x", "bind-parent", true))

	if len(a.Events()) != 1 || len(b.Events()) != 1 {
		t.Fatalf("fan-out: got %d and %d events", len(a.Events()), len(b.Events()))
	}
	a.Reset()
	if len(a.Events()) != 0 {
		t.Error("Reset kept events")
	}
}

func TestMemoryLoggerBounded(t *testing.T) {
	m := NewMemoryLogger(3)
	for _, step := range []string{"wiphy-alloc", "band-alloc", "wiphy-register", "wdev-alloc", "netdev-alloc"} {
		m.Log(stepEvent("r", step, true))
	}

	events := m.Events()
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i, want := range []string{"wiphy-register", "wdev-alloc", "netdev-alloc"} {
		if events[i].Step.Step != want {
			t.Errorf("events[%d] = %q, want %q", i, events[i].Step.Step, want)
		}
	}
	if m.Dropped() != 2 {
		t.Errorf("Dropped = %d, want 2", m.Dropped())
	}

	m.Reset()
	m.Log(stepEvent("r", "bind-parent", true))
	if n := len(m.Events()); n != 1 || m.Dropped() != 0 {
		t.Errorf("after Reset: %d events, %d dropped", n, m.Dropped())
	}
}

func TestEventTerminal(t *testing.T) {
	state := func(entity StateEntity, to string) Event {
		return Event{Category: CategoryState, StateChange: &StateChangeEvent{Entity: entity, NewState: to}}
	}
	tests := []struct {
		event Event
		want  bool
	}{
		{state(StateEntitySession, StateDetached), true},
		{state(StateEntitySession, StateFailed), true},
		{state(StateEntitySession, "ACTIVE"), false},
		{state(StateEntityLink, StateDetached), false},
		{stepEvent("s", "bus-enable", true), false},
	}
	for i, tt := range tests {
		if got := tt.event.Terminal(); got != tt.want {
			t.Errorf("case %d: Terminal() = %v, want %v", i, got, tt.want)
		}
	}
}

func TestFileLoggerSessionEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "end"+FileExtension)
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	logger.Log(stepEvent("e", "wiphy-alloc", true))
	logger.Log(Event{
		SessionID:   "e",
		Layer:       LayerSession,
		Category:    CategoryState,
		StateChange: &StateChangeEvent{Entity: StateEntitySession, OldState: "DETACHING", NewState: StateDetached},
	})
	if logger.Failed() != 0 {
		t.Errorf("Failed = %d, want 0", logger.Failed())
	}

	// Readable while the logger is still open.
	events := readAll(t, mustReader(t, path, Filter{}))
	if len(events) != 2 || !events[1].Terminal() {
		t.Fatalf("got %d events, last terminal=%v", len(events), len(events) == 2 && events[1].Terminal())
	}
}

func TestFilteredLogger(t *testing.T) {
	mem := &MemoryLogger{}
	quiet := WithoutCategories(mem, CategoryDispatch)

	quiet.Log(stepEvent("f", "wiphy-alloc", true))
	quiet.Log(Event{SessionID: "f", Category: CategoryDispatch, Dispatch: &DispatchEvent{Op: "transmit", Result: "OK"}})
	quiet.Log(Event{SessionID: "f", Category: CategoryError, Error: &ErrorEventData{Message: "boom"}})

	events := mem.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	for _, e := range events {
		if e.Category == CategoryDispatch {
			t.Error("dispatch event passed the filter")
		}
	}

	mem.Reset()
	onlyA := NewFilteredLogger(mem, Filter{SessionID: "a"})
	onlyA.Log(stepEvent("a", "bus-enable", true))
	onlyA.Log(stepEvent("b", "bus-enable", true))
	if n := len(mem.Events()); n != 1 {
		t.Errorf("session filter: got %d events, want 1", n)
	}
}

func TestEnumStrings(t *testing.T) {
	if LayerSession.String() != "SESSION" || Layer(9).String() != "UNKNOWN" {
		t.Error("Layer.String")
	}
	if CategoryDispatch.String() != "DISPATCH" || Category(9).String() != "UNKNOWN" {
		t.Error("Category.String")
	}
	if PhaseRelease.String() != "RELEASE" || StateEntityCarrier.String() != "CARRIER" {
		t.Error("Phase/StateEntity.String")
	}
}

func mustReader(t *testing.T, path string, f Filter) *Reader {
	t.Helper()
	r, err := NewFilteredReader(path, f)
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	return r
}
