package session

import (
	"time"

	"github.com/wlancore/wlancore-go/pkg/log"
	"github.com/wlancore/wlancore-go/pkg/netdev"
)

func (s *Session) trace(layer log.Layer, cat log.Category, fill func(*log.Event)) {
	e := log.Event{
		Timestamp: time.Now(),
		SessionID: s.id.String(),
		Device:    s.dev.Address(),
		Interface: s.ifName(),
		Layer:     layer,
		Category:  cat,
	}
	fill(&e)
	s.cfg.TraceLogger.Log(e)
}

func (s *Session) layerOf(step Step) log.Layer {
	switch step {
	case StepWiphyAlloc, StepBandAlloc, StepWiphyRegister, StepWdevAlloc:
		return log.LayerWireless
	case StepNetdevAlloc, StepNetdevRegister, StepBindParent:
		return log.LayerNetdev
	case StepBusEnable:
		return log.LayerBus
	}
	return log.LayerSession
}

func (s *Session) traceStep(step Step, phase log.Phase, ok bool, d time.Duration) {
	s.trace(s.layerOf(step), log.CategoryStep, func(e *log.Event) {
		e.Step = &log.StepEvent{Step: step.String(), Phase: phase, OK: ok, Duration: d}
	})
}

func (s *Session) traceError(layer log.Layer, step Step, kind error, err error) {
	s.trace(layer, log.CategoryError, func(e *log.Event) {
		e.Error = &log.ErrorEventData{Layer: layer, Message: err.Error(), Step: step.String()}
		if kind != nil {
			e.Error.Kind = kind.Error()
		}
	})
}

func (s *Session) traceLink(from, to netdev.OperState, reason string) {
	s.trace(log.LayerNetdev, log.CategoryState, func(e *log.Event) {
		e.StateChange = &log.StateChangeEvent{
			Entity:   log.StateEntityLink,
			OldState: from.String(),
			NewState: to.String(),
			Reason:   reason,
		}
	})
}

func (s *Session) traceCarrier(up bool, reason string) {
	old, now := "ON", "OFF"
	if up {
		old, now = now, old
	}
	s.trace(log.LayerNetdev, log.CategoryState, func(e *log.Event) {
		e.StateChange = &log.StateChangeEvent{
			Entity:   log.StateEntityCarrier,
			OldState: old,
			NewState: now,
			Reason:   reason,
		}
	})
}

func (s *Session) traceDispatch(op string, result string, rejected bool, d time.Duration) {
	layer := log.LayerWireless
	switch op {
	case "open", "stop", "transmit":
		layer = log.LayerNetdev
	}
	s.trace(layer, log.CategoryDispatch, func(e *log.Event) {
		e.Dispatch = &log.DispatchEvent{Op: op, Result: result, Rejected: rejected, Duration: d}
	})
}
