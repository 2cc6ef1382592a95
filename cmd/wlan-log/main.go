// Command wlan-log is a tool for viewing and analyzing device lifecycle
// trace files.
//
// Trace files are written by wlan-sim when run with the -trace flag.
//
// Usage:
//
//	wlan-log <command> [flags] <file.wlog>
//
// Commands:
//
//	view     View trace file in human-readable format
//	export   Export trace file to JSON or CSV format
//	filter   Filter trace file and write to new file
//	stats    Show statistics about the trace file
//
// Examples:
//
//	# View all events
//	wlan-log view sim.wlog
//
//	# View only attach/detach steps
//	wlan-log view --category step sim.wlog
//
//	# Follow one step through attach and unwind
//	wlan-log view --step netdev-register sim.wlog
//
//	# Export to JSONL
//	wlan-log export --format jsonl sim.wlog
//
//	# Keep one device and save to new file
//	wlan-log filter --device 0000:03:00.0 -o dev.wlog sim.wlog
//
//	# Show statistics
//	wlan-log stats sim.wlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/wlancore/wlancore-go/cmd/wlan-log/commands"
)

const usage = `wlan-log - Device Lifecycle Trace Analyzer

Usage:
  wlan-log <command> [flags] <file.wlog>

Commands:
  view     View trace file in human-readable format
  export   Export trace file to JSON or CSV format
  filter   Filter trace file and write to new file
  stats    Show statistics about the trace file

Use "wlan-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func requirePath(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `wlan-log view - View trace file in human-readable format

Usage:
  wlan-log view [flags] <file.wlog>

Flags:
`)
		fs.PrintDefaults()
	}

	layer := fs.String("layer", "", "Filter by layer (bus, wireless, netdev, session)")
	category := fs.String("category", "", "Filter by category (step, state, dispatch, error)")
	sessionID := fs.String("session", "", "Filter by session ID")
	step := fs.String("step", "", "Filter by step name")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	filter := commands.ViewFilter{SessionID: *sessionID, Step: *step}

	if *layer != "" {
		l, err := commands.ParseLayerFlag(*layer)
		if err != nil {
			fatal(err)
		}
		filter.Layer = &l
	}

	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fatal(err)
		}
		filter.Category = &c
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fatal(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `wlan-log export - Export trace file to JSON or CSV format

Usage:
  wlan-log export [flags] <file.wlog>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fatal(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `wlan-log filter - Filter trace file and write to new file

Usage:
  wlan-log filter [flags] <file.wlog>

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output file (required)")
	sessionID := fs.String("session", "", "Filter by session ID")
	device := fs.String("device", "", "Filter by bus address")
	ifname := fs.String("interface", "", "Filter by interface name")
	step := fs.String("step", "", "Filter by step name")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	layer := fs.String("layer", "", "Filter by layer (bus, wireless, netdev, session)")
	category := fs.String("category", "", "Filter by category (step, state, dispatch, error)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	opts := commands.FilterOptions{
		Output:    *output,
		SessionID: *sessionID,
		Device:    *device,
		Interface: *ifname,
		Step:      *step,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Layer:     *layer,
		Category:  *category,
	}

	if err := commands.RunFilter(path, opts); err != nil {
		fatal(err)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `wlan-log stats - Show statistics about the trace file

Usage:
  wlan-log stats <file.wlog>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fatal(err)
	}
}
