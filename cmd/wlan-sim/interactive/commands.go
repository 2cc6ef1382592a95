package interactive

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wlancore/wlancore-go/pkg/alloc"
	"github.com/wlancore/wlancore-go/pkg/bus"
	"github.com/wlancore/wlancore-go/pkg/cfg80211"
	"github.com/wlancore/wlancore-go/pkg/driver"
	"github.com/wlancore/wlancore-go/pkg/log"
	"github.com/wlancore/wlancore-go/pkg/netdev"
	"github.com/wlancore/wlancore-go/pkg/netstack"
	"github.com/wlancore/wlancore-go/pkg/session"
)

func (s *Shell) cmdPlug(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: plug <addr> [vendor:device]")
		return
	}

	id := driver.DefaultIDTable[0]
	if len(args) > 1 {
		parsed, err := bus.ParseID(args[1])
		if err != nil {
			fmt.Fprintf(s.out, "Invalid id: %v\n", err)
			return
		}
		id = parsed
	}

	dev := bus.NewSimDevice(args[0], id)
	if err := s.env.Bus.Add(ctx, dev); err != nil {
		fmt.Fprintf(s.out, "Plug %s: %v\n", args[0], err)
		if _, present := s.env.Bus.Device(dev.Address()); present {
			s.devices[dev.Address()] = dev
		}
		return
	}
	s.devices[dev.Address()] = dev

	if sess, err := s.env.Driver.Session(dev.Address()); err == nil {
		fmt.Fprintf(s.out, "%s attached as %s (%s)\n", dev.Address(), sess.Netdev().Name(), sess.HardwareAddr())
	}
}

func (s *Shell) cmdUnplug(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: unplug <addr>")
		return
	}
	if err := s.env.Bus.Remove(args[0]); err != nil {
		fmt.Fprintf(s.out, "Unplug: %v\n", err)
		return
	}
	delete(s.devices, args[0])
	fmt.Fprintf(s.out, "%s removed\n", args[0])
}

func (s *Shell) cmdReprobe(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: reprobe <addr>")
		return
	}
	if err := s.env.Bus.Reprobe(ctx, args[0]); err != nil {
		fmt.Fprintf(s.out, "Reprobe: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "%s attached\n", args[0])
}

func (s *Shell) cmdList() {
	devices := s.env.Bus.Devices()
	if len(devices) == 0 {
		fmt.Fprintln(s.out, "No devices")
		return
	}

	fmt.Fprintf(s.out, "%-14s %-9s %-9s %-6s %-8s %s\n", "ADDRESS", "ID", "DRIVER", "IFACE", "STATE", "LINK")
	for _, dev := range devices {
		drv, bound := s.env.Bus.Bound(dev.Address())
		if !bound {
			drv = "-"
		}
		ifname, state, link := "-", "-", "-"
		if sess, err := s.env.Driver.Session(dev.Address()); err == nil {
			state = sess.State().String()
			if ifc := sess.Netdev(); ifc != nil {
				ifname = ifc.Name()
				link = ifc.OperState().String()
				if ifc.Carrier() {
					link += ",CARRIER"
				}
			}
		}
		fmt.Fprintf(s.out, "%-14s %-9s %-9s %-6s %-8s %s\n", dev.Address(), dev.ID(), drv, ifname, state, link)
	}
}

func (s *Shell) cmdInfo(args []string) {
	sess, ok := s.lookup(args, "info <ifname|addr>")
	if !ok {
		return
	}
	data, err := yaml.Marshal(sess.Info())
	if err != nil {
		fmt.Fprintf(s.out, "Info: %v\n", err)
		return
	}
	fmt.Fprint(s.out, string(data))
}

func (s *Shell) cmdScan(args []string) {
	sess, ok := s.lookup(args, "scan <ifname> [ssid...]")
	if !ok {
		return
	}
	req, err := s.env.Wireless.TriggerScan(sess.Registry(), args[1:]...)
	if err != nil {
		fmt.Fprintf(s.out, "Scan: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Scan done (completed=%t aborted=%t)\n", req.Completed(), req.Aborted())
	s.printResults(sess)
}

func (s *Shell) cmdResults(args []string) {
	sess, ok := s.lookup(args, "results <ifname>")
	if !ok {
		return
	}
	s.printResults(sess)
}

func (s *Shell) printResults(sess *session.Session) {
	results := s.env.Wireless.Results(sess.Registry())
	if len(results) == 0 {
		fmt.Fprintln(s.out, "No scan results")
		return
	}
	for _, bss := range results {
		fmt.Fprintf(s.out, "  %s\n", bss.Info())
	}
}

func (s *Shell) cmdConnect(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: connect <ifname> <ssid>")
		return
	}
	sess, ok := s.lookup(args, "")
	if !ok {
		return
	}
	err := s.env.Wireless.Connect(sess.Registry(), cfg80211.ConnectParams{SSID: args[1]})
	if err != nil {
		fmt.Fprintf(s.out, "Connect: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "%s carrier on\n", sess.Netdev().Name())
}

func (s *Shell) cmdDisconnect(args []string) {
	sess, ok := s.lookup(args, "disconnect <ifname> [reason]")
	if !ok {
		return
	}
	reason := uint64(3)
	if len(args) > 1 {
		r, err := strconv.ParseUint(args[1], 10, 16)
		if err != nil {
			fmt.Fprintf(s.out, "Invalid reason: %s\n", args[1])
			return
		}
		reason = r
	}
	if err := s.env.Wireless.Disconnect(sess.Registry(), uint16(reason)); err != nil {
		fmt.Fprintf(s.out, "Disconnect: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "%s carrier off\n", sess.Netdev().Name())
}

func (s *Shell) cmdUp(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: up <ifname>")
		return
	}
	if err := s.env.NetStack.Open(args[0]); err != nil {
		fmt.Fprintf(s.out, "Up: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "%s is UP\n", args[0])
}

func (s *Shell) cmdDown(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: down <ifname>")
		return
	}
	if err := s.env.NetStack.Stop(args[0]); err != nil {
		fmt.Fprintf(s.out, "Down: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "%s is DOWN\n", args[0])
}

func (s *Shell) cmdXmit(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: xmit <ifname> [count] [size]")
		return
	}
	count, size := 1, 64
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			fmt.Fprintf(s.out, "Invalid count: %s\n", args[1])
			return
		}
		count = n
	}
	if len(args) > 2 {
		n, err := strconv.Atoi(args[2])
		if err != nil || n < 0 {
			fmt.Fprintf(s.out, "Invalid size: %s\n", args[2])
			return
		}
		size = n
	}

	results := make(map[netstack.TxResult]int)
	for i := 0; i < count; i++ {
		frame, err := netdev.NewFrame(make([]byte, size), s.env.Ledger)
		if err != nil {
			fmt.Fprintf(s.out, "Frame allocation failed: %v\n", err)
			break
		}
		res, err := s.env.NetStack.Transmit(args[0], frame)
		if err != nil {
			fmt.Fprintf(s.out, "Xmit: %v\n", err)
			return
		}
		results[res]++
	}

	fmt.Fprintf(s.out, "ok=%d busy=%d dropped=%d\n",
		results[netstack.TxOK], results[netstack.TxBusy], results[netstack.TxDropped])
	if ifc, ok := s.env.NetStack.Interface(args[0]); ok {
		st := ifc.Stats()
		fmt.Fprintf(s.out, "%s tx_packets=%d tx_bytes=%d tx_dropped=%d\n", args[0], st.TxPackets, st.TxBytes, st.TxDropped)
	}
}

func (s *Shell) cmdFail(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: fail <target> [n]")
		return
	}
	target := strings.ToLower(args[0])
	rest := args[1:]

	var dev *bus.SimDevice
	if target == "enable" || target == "disable" {
		if len(rest) < 1 {
			fmt.Fprintf(s.out, "Usage: fail %s <addr> [n]\n", target)
			return
		}
		d, ok := s.devices[rest[0]]
		if !ok {
			fmt.Fprintf(s.out, "Unknown simulated device: %s\n", rest[0])
			return
		}
		dev = d
		rest = rest[1:]
	}

	n := 1
	if len(rest) > 0 {
		v, err := strconv.Atoi(rest[0])
		if err != nil || v < 0 {
			fmt.Fprintf(s.out, "Invalid count: %s\n", rest[0])
			return
		}
		n = v
	}

	switch target {
	case "wiphy-register":
		s.env.Wireless.FailNextRegister(n)
	case "netdev-register":
		s.env.NetStack.FailNextRegister(n)
	case "enable":
		dev.FailEnable(n)
	case "disable":
		dev.FailDisable(n)
	default:
		kind := alloc.Kind(target)
		known := false
		for _, k := range alloc.Kinds() {
			if k == kind {
				known = true
			}
		}
		if !known {
			fmt.Fprintf(s.out, "Unknown target: %s\n", target)
			return
		}
		s.env.Ledger.InjectFailure(kind, n)
	}
	fmt.Fprintf(s.out, "Next %d %s operation(s) will fail\n", n, target)
}

func (s *Shell) cmdLedger() {
	fmt.Fprintf(s.out, "%-10s %6s %9s %6s\n", "KIND", "LIVE", "ALLOCATED", "FREED")
	for _, kind := range alloc.Kinds() {
		fmt.Fprintf(s.out, "%-10s %6d %9d %6d\n", kind,
			s.env.Ledger.LiveOf(kind), s.env.Ledger.Allocated(kind), s.env.Ledger.Freed(kind))
	}
	fmt.Fprintf(s.out, "Total live: %d\n", s.env.Ledger.Live())
}

func (s *Shell) cmdTrace(args []string) {
	if s.env.Trace == nil {
		fmt.Fprintln(s.out, "Tracing is disabled")
		return
	}
	n := 20
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			fmt.Fprintf(s.out, "Invalid count: %s\n", args[0])
			return
		}
		n = v
	}

	events := s.env.Trace.Events()
	if len(events) > n {
		events = events[len(events)-n:]
	}
	for _, e := range events {
		fmt.Fprintf(s.out, "%s %-8s %-8s %s\n",
			e.Timestamp.Format("15:04:05.000000"), e.Layer, e.Category, summarize(e))
	}
	if d := s.env.Trace.Dropped(); d > 0 {
		fmt.Fprintf(s.out, "(%d older events dropped)\n", d)
	}
}

// summarize renders the payload of a trace event on one line.
func summarize(e log.Event) string {
	switch {
	case e.Step != nil:
		result := "ok"
		if !e.Step.OK {
			result = "FAILED"
		}
		return fmt.Sprintf("%s %s %s", e.Step.Phase, e.Step.Step, result)
	case e.StateChange != nil:
		return fmt.Sprintf("%s %s -> %s %s", e.StateChange.Entity, e.StateChange.OldState, e.StateChange.NewState, e.StateChange.Reason)
	case e.Dispatch != nil:
		if e.Dispatch.Rejected {
			return e.Dispatch.Op + " rejected"
		}
		return e.Dispatch.Op + " " + e.Dispatch.Result
	case e.Error != nil:
		return fmt.Sprintf("%s: %s", e.Error.Step, e.Error.Message)
	}
	return ""
}

// lookup resolves args[0] as an interface name or bus address.
func (s *Shell) lookup(args []string, usage string) (*session.Session, bool) {
	if len(args) < 1 {
		fmt.Fprintf(s.out, "Usage: %s\n", usage)
		return nil, false
	}
	if sess, err := s.env.Driver.SessionByInterface(args[0]); err == nil {
		return sess, true
	}
	sess, err := s.env.Driver.Session(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "No attached device or interface: %s\n", args[0])
		return nil, false
	}
	return sess, true
}
