// Command wlan-sim runs the wireless device lifecycle against simulated
// bus devices and in-memory wireless and network subsystems.
//
// Usage:
//
//	wlan-sim [flags]
//
// Flags:
//
//	-config string      Capability description file (YAML)
//	-profile string     Built-in capability profile (default "default")
//	-devices int        Number of simulated devices plugged at start (default 1)
//	-name-template      Interface name template (default "wlan%d")
//	-log-level string   Log level: debug, info, warn, error (default "info")
//	-trace string       Write a lifecycle trace to this file (.wlog)
//	-trace-dispatch     Include dispatcher calls in the trace file (default true)
//	-trace-buffer int   Trace events kept in memory for the shell (default 4096)
//	-interactive        Enable interactive command mode (default true)
//
// Examples:
//
//	# Start with one device and a shell
//	wlan-sim
//
//	# Two tri-band devices, tracing to a file
//	wlan-sim -devices 2 -profile triband -trace sim.wlog
//
//	# Then inspect the trace
//	wlan-log view --category step sim.wlog
//
// Interactive Commands:
//
//	plug/unplug  - Hot-plug simulated devices
//	scan         - Trigger a scan on an interface
//	up/down      - Open or stop an interface
//	xmit         - Transmit frames
//	fail         - Inject allocation, registration or enable failures
//	ledger       - Show live resources
//	quit         - Exit
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/wlancore/wlancore-go/cmd/wlan-sim/interactive"
	"github.com/wlancore/wlancore-go/pkg/alloc"
	"github.com/wlancore/wlancore-go/pkg/bus"
	"github.com/wlancore/wlancore-go/pkg/cfg80211"
	"github.com/wlancore/wlancore-go/pkg/driver"
	"github.com/wlancore/wlancore-go/pkg/eventbus"
	"github.com/wlancore/wlancore-go/pkg/log"
	"github.com/wlancore/wlancore-go/pkg/netdev"
	"github.com/wlancore/wlancore-go/pkg/netstack"
	"github.com/wlancore/wlancore-go/pkg/wireless"
)

// Config holds the simulator configuration.
type Config struct {
	ConfigFile    string
	Profile       string
	Devices       int
	NameTemplate  string
	LogLevel      string
	TraceFile     string
	TraceDispatch bool
	TraceBuffer   int
	Interactive   bool
}

var config Config

func init() {
	flag.StringVar(&config.ConfigFile, "config", "", "Capability description file (YAML)")
	flag.StringVar(&config.Profile, "profile", wireless.DefaultProfile, "Built-in capability profile: default, dualband, triband")
	flag.IntVar(&config.Devices, "devices", 1, "Number of simulated devices plugged at start")
	flag.StringVar(&config.NameTemplate, "name-template", netdev.DefaultNameTemplate, "Interface name template")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&config.TraceFile, "trace", "", "Write a lifecycle trace to this file")
	flag.BoolVar(&config.TraceDispatch, "trace-dispatch", true, "Include dispatcher calls in the trace file")
	flag.IntVar(&config.TraceBuffer, "trace-buffer", defaultTraceBuffer, "Trace events kept in memory for the shell")
	flag.BoolVar(&config.Interactive, "interactive", true, "Enable interactive command mode")
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	level, err := parseLevel(config.LogLevel)
	if err != nil {
		return err
	}
	var logLevel slog.LevelVar
	logLevel.Set(level)
	out := &switchWriter{w: os.Stderr}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: &logLevel}))

	caps, err := loadCapabilities()
	if err != nil {
		return err
	}

	memTrace := log.NewMemoryLogger(config.TraceBuffer)
	traceLogger := log.Logger(memTrace)
	if config.TraceFile != "" {
		fileTrace, err := log.NewFileLogger(config.TraceFile)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		defer func() {
			if n := fileTrace.Failed(); n > 0 {
				logger.Warn("trace events lost", "file", config.TraceFile, "count", n)
			}
			fileTrace.Close()
		}()
		traceLogger = log.NewMultiLogger(memTrace, traceSink(fileTrace))
		logger.Info("tracing", "file", config.TraceFile, "dispatch", config.TraceDispatch)
	}

	events := eventbus.New(eventbus.DefaultCapacity)
	defer events.Close()

	env := interactive.Env{
		Bus:      bus.NewEnumerator(logger),
		Wireless: cfg80211.NewCore(logger),
		NetStack: netstack.NewStack(logger),
		Ledger:   alloc.NewLedger(),
		Trace:    memTrace,
	}

	drvCfg := driver.DefaultConfig()
	drvCfg.Logger = logger
	drvCfg.Session.Capabilities = caps
	drvCfg.Session.NameTemplate = config.NameTemplate
	drvCfg.Session.Wireless = env.Wireless
	drvCfg.Session.NetStack = env.NetStack
	drvCfg.Session.Allocator = env.Ledger
	drvCfg.Session.Events = events
	drvCfg.Session.TraceLogger = traceLogger

	drv, err := driver.New(drvCfg)
	if err != nil {
		return err
	}
	env.Driver = drv

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := env.Bus.RegisterDriver(ctx, drv); err != nil {
		return err
	}

	var shell *interactive.Shell
	if config.Interactive {
		shell, err = interactive.New(env)
		if err != nil {
			return err
		}
		// Route log output through readline to avoid interfering with input.
		out.set(shell.Stdout())
	}

	sub := events.Subscribe()
	go watchEvents(ctx, sub, logger)

	for i := 0; i < config.Devices; i++ {
		dev := bus.NewSimDevice(fmt.Sprintf("0000:%02x:00.0", 3+i), driver.DefaultIDTable[0])
		if err := env.Bus.Add(ctx, dev); err != nil {
			logger.Error("plug failed", "device", dev.Address(), "error", err)
		}
		if shell != nil {
			shell.Track(dev)
		}
	}

	if shell != nil {
		go shell.Run(ctx, cancel)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal", "signal", sig.String())
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := env.Bus.UnregisterDriver(drv.Name()); err != nil {
		logger.Warn("unregister driver", "error", err)
	}
	sub.Close()

	if live := env.Ledger.Live(); live != 0 {
		logger.Warn("resources still allocated", "live", env.Ledger.Snapshot())
	}
	return nil
}

func watchEvents(ctx context.Context, sub *eventbus.Subscription, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			args := []any{"topic", ev.Topic.String(), "device", ev.Device}
			if ev.Interface != "" {
				args = append(args, "interface", ev.Interface)
			}
			switch ev.Topic {
			case eventbus.TopicCarrier, eventbus.TopicLink:
				args = append(args, "up", ev.Up)
			case eventbus.TopicScanDone:
				args = append(args, "aborted", ev.Aborted)
			case eventbus.TopicAttachFailed:
				args = append(args, "error", ev.Err)
			}
			logger.Info("event", args...)
		}
	}
}

// defaultTraceBuffer bounds the in-memory trace of a long-running simulator.
const defaultTraceBuffer = 4096

// traceSink applies -trace-dispatch to the trace file.
func traceSink(file log.Logger) log.Logger {
	if config.TraceDispatch {
		return file
	}
	return log.WithoutCategories(file, log.CategoryDispatch)
}

// loadCapabilities reads -config if given, otherwise the -profile.
func loadCapabilities() (wireless.Config, error) {
	if config.ConfigFile != "" {
		return wireless.LoadConfig(config.ConfigFile)
	}
	return wireless.LoadProfile(config.Profile)
}

// switchWriter lets the log output move to the shell once it exists.
type switchWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *switchWriter) set(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = w
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %s (use: debug, info, warn, error)", s)
	}
}
