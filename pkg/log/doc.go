// Package log provides a machine-readable trace of device lifecycles.
//
// This package defines the Logger interface and Event types for capturing
// attach and detach steps, state changes, dispatcher calls and errors of
// device sessions. It is separate from operational logging (slog): the
// trace is a complete event record for debugging and replay.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	cfg.TraceLogger = log.NewSlogAdapter(slog.Default())
//
//	// For field captures: write to a binary file
//	cfg.TraceLogger, _ = log.NewFileLogger("/var/log/wlan/mt7921e.wlog")
//
//	// Both: use MultiLogger
//	cfg.TraceLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
//   - Step: one attach or detach step (StepEvent)
//   - State: session, link or carrier transitions (StateChangeEvent)
//   - Dispatch: scan/connect/disconnect/open/stop/transmit (DispatchEvent)
//   - Error: failures at any layer (ErrorEventData)
//
// # File Format
//
// Trace files are a stream of CBOR-encoded events with the .wlog
// extension. The wlan-log CLI views and summarizes them.
package log
