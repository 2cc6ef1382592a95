// Package commands implements the wlan-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wlancore/wlancore-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Layer     *log.Layer
	Category  *log.Category
	SessionID string
	Step      string
}

func (f ViewFilter) filter() log.Filter {
	return log.Filter{
		SessionID: f.SessionID,
		Layer:     f.Layer,
		Category:  f.Category,
		Step:      f.Step,
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session] device/interface LAYER Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	where := event.Device
	if event.Interface != "" {
		where += "/" + event.Interface
	}

	var typeLabel string
	switch {
	case event.Step != nil:
		typeLabel = "Step"
	case event.StateChange != nil:
		typeLabel = "State"
	case event.Dispatch != nil:
		typeLabel = "Dispatch"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	fmt.Fprintf(w, "%s [%s] %s %s %s\n", ts, shortenID(event.SessionID), where, event.Layer.String(), typeLabel)

	switch {
	case event.Step != nil:
		formatStepDetails(w, event.Step)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Dispatch != nil:
		formatDispatchDetails(w, event.Dispatch)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenID returns the first 8 characters of a session ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatStepDetails(w io.Writer, step *log.StepEvent) {
	result := "ok"
	if !step.OK {
		result = "FAILED"
	}
	fmt.Fprintf(w, "  %s %s: %s\n", step.Phase.String(), step.Step, result)
	if step.Duration > 0 {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(step.Duration))
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatDispatchDetails(w io.Writer, d *log.DispatchEvent) {
	fmt.Fprintf(w, "  Op: %s\n", d.Op)
	if d.Rejected {
		fmt.Fprintln(w, "  Rejected: session closed")
		return
	}
	fmt.Fprintf(w, "  Result: %s\n", d.Result)
	if d.Duration > 0 {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(d.Duration))
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Step != "" {
		fmt.Fprintf(w, "  Step: %s\n", err.Step)
	}
	if err.Kind != "" {
		fmt.Fprintf(w, "  Kind: %s\n", err.Kind)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseLayerFlag parses a layer string from command-line flag (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	return parseLayer(s)
}

func parseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "bus":
		return log.LayerBus, nil
	case "wireless":
		return log.LayerWireless, nil
	case "netdev":
		return log.LayerNetdev, nil
	case "session":
		return log.LayerSession, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be bus, wireless, netdev, or session)", s)
	}
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	return parseCategory(s)
}

func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "step":
		return log.CategoryStep, nil
	case "state":
		return log.CategoryState, nil
	case "dispatch":
		return log.CategoryDispatch, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be step, state, dispatch, or error)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.filter())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}
