package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/wlancore/wlancore-go/pkg/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.in)
		if err != nil {
			t.Errorf("parseLevel(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := parseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestSwitchWriter(t *testing.T) {
	var first, second bytes.Buffer
	w := &switchWriter{w: &first}

	_, _ = w.Write([]byte("a"))
	w.set(&second)
	_, _ = w.Write([]byte("b"))

	if first.String() != "a" || second.String() != "b" {
		t.Errorf("got %q and %q", first.String(), second.String())
	}
}

func TestLoadCapabilities(t *testing.T) {
	saved := config
	defer func() { config = saved }()

	config = Config{Profile: "triband"}
	caps, err := loadCapabilities()
	if err != nil {
		t.Fatalf("loadCapabilities: %v", err)
	}
	if len(caps.Bands) != 3 {
		t.Errorf("triband bands = %d, want 3", len(caps.Bands))
	}

	config = Config{Profile: "nope"}
	if _, err := loadCapabilities(); err == nil {
		t.Error("expected error for unknown profile")
	}

	// -config wins over -profile.
	config = Config{Profile: "triband", ConfigFile: t.TempDir() + "/missing.yaml"}
	if _, err := loadCapabilities(); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestTraceSink(t *testing.T) {
	saved := config
	defer func() { config = saved }()

	dispatch := log.Event{Category: log.CategoryDispatch, Dispatch: &log.DispatchEvent{Op: "transmit"}}
	step := log.Event{Category: log.CategoryStep, Step: &log.StepEvent{Step: "bus-enable"}}

	for _, keep := range []bool{true, false} {
		config.TraceDispatch = keep
		mem := &log.MemoryLogger{}
		sink := traceSink(mem)
		sink.Log(dispatch)
		sink.Log(step)

		want := 1
		if keep {
			want = 2
		}
		if n := len(mem.Events()); n != want {
			t.Errorf("TraceDispatch=%v: got %d events, want %d", keep, n, want)
		}
	}
}
