package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "trace", Attrs(event)...)
}

// Attrs flattens an event into slog attributes.
func Attrs(event Event) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}
	if event.Device != "" {
		attrs = append(attrs, slog.String("device", event.Device))
	}
	if event.Interface != "" {
		attrs = append(attrs, slog.String("interface", event.Interface))
	}

	switch {
	case event.Step != nil:
		attrs = append(attrs,
			slog.String("step", event.Step.Step),
			slog.String("phase", event.Step.Phase.String()),
			slog.Bool("ok", event.Step.OK),
		)
		if event.Step.Duration > 0 {
			attrs = append(attrs, slog.Duration("duration", event.Step.Duration))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Dispatch != nil:
		attrs = append(attrs,
			slog.String("op", event.Dispatch.Op),
			slog.String("result", event.Dispatch.Result),
		)
		if event.Dispatch.Rejected {
			attrs = append(attrs, slog.Bool("rejected", true))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Step != "" {
			attrs = append(attrs, slog.String("error_step", event.Error.Step))
		}
		if event.Error.Kind != "" {
			attrs = append(attrs, slog.String("error_kind", event.Error.Kind))
		}
	}
	return attrs
}

var _ Logger = (*SlogAdapter)(nil)
