// Package interactive provides the interactive command-line interface
// for wlan-sim.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/wlancore/wlancore-go/pkg/alloc"
	"github.com/wlancore/wlancore-go/pkg/bus"
	"github.com/wlancore/wlancore-go/pkg/cfg80211"
	"github.com/wlancore/wlancore-go/pkg/driver"
	"github.com/wlancore/wlancore-go/pkg/log"
	"github.com/wlancore/wlancore-go/pkg/netstack"
)

// Env is the simulated system the shell drives.
type Env struct {
	Bus      *bus.Enumerator
	Driver   *driver.Driver
	Wireless *cfg80211.Core
	NetStack *netstack.Stack
	Ledger   *alloc.Ledger

	// Trace keeps recent trace events for the trace command. Optional.
	Trace *log.MemoryLogger
}

// Shell handles interactive mode for wlan-sim.
type Shell struct {
	env Env
	rl  *readline.Instance
	out io.Writer

	// devices are the simulated devices plugged from the shell, by address.
	devices map[string]*bus.SimDevice
}

// New creates a shell reading from the terminal.
func New(env Env) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "wlan> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	s := newShell(env, rl.Stdout())
	s.rl = rl
	return s, nil
}

// NewWithOutput creates a shell without a terminal. Commands are fed
// through Exec and their output goes to w.
func NewWithOutput(env Env, w io.Writer) *Shell {
	return newShell(env, w)
}

func newShell(env Env, w io.Writer) *Shell {
	return &Shell{
		env:     env,
		out:     w,
		devices: make(map[string]*bus.SimDevice),
	}
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (s *Shell) Stdout() io.Writer {
	if s.rl != nil {
		return s.rl.Stdout()
	}
	return s.out
}

// Track makes a device plugged outside the shell controllable by fail.
func (s *Shell) Track(dev *bus.SimDevice) {
	s.devices[dev.Address()] = dev
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	if s.rl == nil {
		return
	}
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}

		if s.Exec(ctx, line) {
			cancel()
			return
		}
	}
}

// Exec runs one command line. It returns true when the shell should exit.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" || strings.HasPrefix(input, "#") {
		return false
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()

	case "plug", "add":
		s.cmdPlug(ctx, args)

	case "unplug", "remove", "rm":
		s.cmdUnplug(args)

	case "reprobe":
		s.cmdReprobe(ctx, args)

	case "list", "ls":
		s.cmdList()

	case "info", "i":
		s.cmdInfo(args)

	case "scan":
		s.cmdScan(args)

	case "results", "bss":
		s.cmdResults(args)

	case "connect":
		s.cmdConnect(args)

	case "disconnect":
		s.cmdDisconnect(args)

	case "up", "open":
		s.cmdUp(args)

	case "down", "stop":
		s.cmdDown(args)

	case "xmit", "tx":
		s.cmdXmit(args)

	case "fail":
		s.cmdFail(args)

	case "ledger":
		s.cmdLedger()

	case "trace":
		s.cmdTrace(args)

	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return true

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (s *Shell) printHelp() {
	fmt.Fprint(s.out, `
Commands:
  plug <addr> [vendor:device]   Plug a simulated device (default id 14c3:7902)
  unplug <addr>                 Unplug a device
  reprobe <addr>                Retry attaching an unbound device
  list                          List devices and interfaces
  info <ifname|addr>            Show session details
  scan <ifname> [ssid...]       Trigger a scan
  results <ifname>              Show cached scan results
  connect <ifname> <ssid>       Connect (marks carrier present)
  disconnect <ifname> [reason]  Disconnect (marks carrier absent)
  up <ifname>                   Open the interface
  down <ifname>                 Stop the interface
  xmit <ifname> [count] [size]  Transmit frames
  fail <target> [n]             Fail the next n operations of target:
                                  wiphy, band, channels, wdev, netdev,
                                  scan-ie, frame, wiphy-register,
                                  netdev-register, enable <addr>,
                                  disable <addr>
  ledger                        Show live resources
  trace [n]                     Show the last n trace events (default 20)
  help                          Show this help
  quit                          Exit
`)
}
