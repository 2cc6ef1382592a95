package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/wlancore/wlancore-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents      int
	EventsByLayer    map[log.Layer]int
	EventsByCategory map[log.Category]int
	Sessions         map[string]*SessionStats
	Errors           int
	Rejected         int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats holds statistics for a single device session.
type SessionStats struct {
	FirstSeen  time.Time
	LastSeen   time.Time
	Events     int
	Device     string
	Interface  string
	FinalState string
	FailedStep string
	Dispatches map[string]int
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:    make(map[log.Layer]int),
		EventsByCategory: make(map[log.Category]int),
		Sessions:         make(map[string]*SessionStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	sess, ok := s.Sessions[event.SessionID]
	if !ok {
		sess = &SessionStats{
			FirstSeen:  event.Timestamp,
			LastSeen:   event.Timestamp,
			Dispatches: make(map[string]int),
		}
		s.Sessions[event.SessionID] = sess
	}
	sess.Events++
	if event.Timestamp.After(sess.LastSeen) {
		sess.LastSeen = event.Timestamp
	}
	if event.Device != "" && sess.Device == "" {
		sess.Device = event.Device
	}
	if event.Interface != "" && sess.Interface == "" {
		sess.Interface = event.Interface
	}

	switch {
	case event.StateChange != nil && event.StateChange.Entity == log.StateEntitySession:
		sess.FinalState = event.StateChange.NewState
	case event.Step != nil && !event.Step.OK && event.Step.Phase == log.PhaseAcquire:
		sess.FailedStep = event.Step.Step
	case event.Dispatch != nil:
		sess.Dispatches[event.Dispatch.Op]++
		if event.Dispatch.Rejected {
			s.Rejected++
		}
	}

	if event.Error != nil {
		s.Errors++
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Device Lifecycle Trace Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerBus, log.LayerWireless, log.LayerNetdev, log.LayerSession} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryStep, log.CategoryState, log.CategoryDispatch, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	if len(stats.Sessions) > 0 {
		type sessInfo struct {
			id    string
			stats *SessionStats
		}
		sessions := make([]sessInfo, 0, len(stats.Sessions))
		for id, ss := range stats.Sessions {
			sessions = append(sessions, sessInfo{id, ss})
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].stats.FirstSeen.Before(sessions[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, s := range sessions {
			duration := s.stats.LastSeen.Sub(s.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenID(s.id), s.stats.Events, duration)
			if s.stats.Device != "" {
				fmt.Fprintf(w, "           Device: %s\n", s.stats.Device)
			}
			if s.stats.Interface != "" {
				fmt.Fprintf(w, "           Interface: %s\n", s.stats.Interface)
			}
			if s.stats.FinalState != "" {
				fmt.Fprintf(w, "           State: %s\n", s.stats.FinalState)
			}
			if s.stats.FailedStep != "" {
				fmt.Fprintf(w, "           Failed step: %s\n", s.stats.FailedStep)
			}
			if len(s.stats.Dispatches) > 0 {
				ops := make([]string, 0, len(s.stats.Dispatches))
				for op := range s.stats.Dispatches {
					ops = append(ops, op)
				}
				sort.Strings(ops)
				fmt.Fprint(w, "           Dispatch:")
				for _, op := range ops {
					fmt.Fprintf(w, " %s=%d", op, s.stats.Dispatches[op])
				}
				fmt.Fprintln(w)
			}
		}
	}

	if stats.Rejected > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Rejected dispatches: %d\n", stats.Rejected)
	}
	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
