package interactive

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/wlancore/wlancore-go/pkg/alloc"
	"github.com/wlancore/wlancore-go/pkg/bus"
	"github.com/wlancore/wlancore-go/pkg/cfg80211"
	"github.com/wlancore/wlancore-go/pkg/driver"
	"github.com/wlancore/wlancore-go/pkg/log"
	"github.com/wlancore/wlancore-go/pkg/netstack"
)

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer, Env) {
	t.Helper()

	env := Env{
		Bus:      bus.NewEnumerator(nil),
		Wireless: cfg80211.NewCore(nil),
		NetStack: netstack.NewStack(nil),
		Ledger:   alloc.NewLedger(),
		Trace:    &log.MemoryLogger{},
	}

	cfg := driver.DefaultConfig()
	cfg.Session.Wireless = env.Wireless
	cfg.Session.NetStack = env.NetStack
	cfg.Session.Allocator = env.Ledger
	cfg.Session.TraceLogger = env.Trace

	drv, err := driver.New(cfg)
	if err != nil {
		t.Fatalf("driver.New: %v", err)
	}
	if err := env.Bus.RegisterDriver(context.Background(), drv); err != nil {
		t.Fatalf("RegisterDriver: %v", err)
	}
	env.Driver = drv

	var buf bytes.Buffer
	return NewWithOutput(env, &buf), &buf, env
}

func run(t *testing.T, s *Shell, buf *bytes.Buffer, line string) string {
	t.Helper()
	buf.Reset()
	if s.Exec(context.Background(), line) {
		t.Fatalf("%q unexpectedly requested exit", line)
	}
	return buf.String()
}

func TestShellPlugScanUnplug(t *testing.T) {
	s, buf, env := newTestShell(t)

	out := run(t, s, buf, "plug 0000:03:00.0")
	if !strings.Contains(out, "attached as wlan0") {
		t.Fatalf("unexpected plug output: %q", out)
	}

	out = run(t, s, buf, "list")
	if !strings.Contains(out, "wlan0") || !strings.Contains(out, "ACTIVE") {
		t.Errorf("list missing interface: %q", out)
	}

	out = run(t, s, buf, "scan wlan0")
	if !strings.Contains(out, "completed=true") || !strings.Contains(out, "00:11:22:33:44:55") {
		t.Errorf("unexpected scan output: %q", out)
	}

	out = run(t, s, buf, "info wlan0")
	if !strings.Contains(out, "interface: wlan0") || !strings.Contains(out, "state: ACTIVE") {
		t.Errorf("unexpected info output: %q", out)
	}

	run(t, s, buf, "unplug 0000:03:00.0")
	if env.Ledger.Live() != 0 {
		t.Errorf("resources left after unplug: %v", env.Ledger.Snapshot())
	}
}

func TestShellLinkAndTransmit(t *testing.T) {
	s, buf, _ := newTestShell(t)
	run(t, s, buf, "plug 0000:03:00.0")

	if out := run(t, s, buf, "up wlan0"); !strings.Contains(out, "UP") {
		t.Errorf("unexpected up output: %q", out)
	}
	if out := run(t, s, buf, "connect wlan0 lab"); !strings.Contains(out, "carrier on") {
		t.Errorf("unexpected connect output: %q", out)
	}

	out := run(t, s, buf, "xmit wlan0 3 100")
	if !strings.Contains(out, "ok=3") || !strings.Contains(out, "tx_packets=3 tx_bytes=300") {
		t.Errorf("unexpected xmit output: %q", out)
	}

	run(t, s, buf, "down wlan0")
	out = run(t, s, buf, "xmit wlan0")
	if !strings.Contains(out, "tx_dropped=1") {
		t.Errorf("expected a dropped frame: %q", out)
	}

	if out := run(t, s, buf, "disconnect wlan0"); !strings.Contains(out, "carrier off") {
		t.Errorf("unexpected disconnect output: %q", out)
	}

	out = run(t, s, buf, "ledger")
	if !strings.Contains(out, "frame") {
		t.Errorf("ledger missing frame kind: %q", out)
	}
}

func TestShellFailureInjection(t *testing.T) {
	s, buf, env := newTestShell(t)

	run(t, s, buf, "fail netdev-register")
	out := run(t, s, buf, "plug 0000:03:00.0")
	if !strings.Contains(out, "registration failed") {
		t.Errorf("expected registration failure: %q", out)
	}
	if env.Ledger.Live() != 0 {
		t.Errorf("resources left after failed attach: %v", env.Ledger.Snapshot())
	}

	out = run(t, s, buf, "fail enable 0000:03:00.0")
	if !strings.Contains(out, "Next 1 enable") {
		t.Errorf("unexpected fail output: %q", out)
	}
	out = run(t, s, buf, "reprobe 0000:03:00.0")
	if !strings.Contains(out, "enable") {
		t.Errorf("expected enable failure: %q", out)
	}

	out = run(t, s, buf, "reprobe 0000:03:00.0")
	if !strings.Contains(out, "attached") {
		t.Errorf("expected attach on third probe: %q", out)
	}

	out = run(t, s, buf, "trace 5")
	if strings.Count(out, "\n") != 5 {
		t.Errorf("expected 5 trace lines, got %q", out)
	}

	if out := run(t, s, buf, "fail warp-core"); !strings.Contains(out, "Unknown target") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestShellUsageAndQuit(t *testing.T) {
	s, buf, _ := newTestShell(t)

	if out := run(t, s, buf, "scan"); !strings.Contains(out, "Usage") {
		t.Errorf("expected usage: %q", out)
	}
	if out := run(t, s, buf, "info wlan9"); !strings.Contains(out, "No attached device") {
		t.Errorf("unexpected info output: %q", out)
	}
	if out := run(t, s, buf, "frobnicate"); !strings.Contains(out, "Unknown command") {
		t.Errorf("unexpected output: %q", out)
	}
	if !s.Exec(context.Background(), "quit") {
		t.Error("quit should request exit")
	}
}
