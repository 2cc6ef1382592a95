package session

import (
	"fmt"
	"time"

	"github.com/wlancore/wlancore-go/pkg/cfg80211"
	"github.com/wlancore/wlancore-go/pkg/eventbus"
	"github.com/wlancore/wlancore-go/pkg/netdev"
	"github.com/wlancore/wlancore-go/pkg/netstack"
)

// enter admits a dispatcher call. The caller must call s.gate.Exit when
// ok is true.
func (s *Session) enter(op string) bool {
	if s.gate.Enter() {
		return true
	}
	s.traceDispatch(op, ErrSessionClosed.Error(), true, 0)
	s.debugLog("dispatch rejected", "op", op)
	return false
}

func (s *Session) done(op string, start time.Time, err error) error {
	result := "ok"
	if err != nil {
		result = err.Error()
	}
	s.traceDispatch(op, result, false, time.Since(start))
	return err
}

// Scan implements cfg80211.Ops.
func (s *Session) Scan(req *cfg80211.ScanRequest) error {
	if !s.enter("scan") {
		return fmt.Errorf("%w: %w", ErrScan, ErrSessionClosed)
	}
	defer s.gate.Exit()
	start := time.Now()

	if req == nil || req.Sink == nil {
		return s.done("scan", start, fmt.Errorf("%w: request has no result sink", ErrScan))
	}
	reg := s.registryRef()
	if reg == nil {
		return s.done("scan", start, fmt.Errorf("%w: no capability registry", ErrScan))
	}

	err := s.cfg.Scanner.Scan(ScanJob{
		Registry:  reg,
		Request:   req,
		Sink:      &scanSink{ResultSink: req.Sink, s: s},
		Allocator: s.cfg.Allocator,
	})
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrScan, err)
	}
	return s.done("scan", start, err)
}

// scanSink forwards to the subsystem's sink and reports completion on the
// event bus.
type scanSink struct {
	cfg80211.ResultSink
	s *Session
}

func (k *scanSink) ScanDone(req *cfg80211.ScanRequest, aborted bool) {
	k.ResultSink.ScanDone(req, aborted)
	k.s.publish(eventbus.Event{Topic: eventbus.TopicScanDone, Aborted: aborted})
}

// Connect implements cfg80211.Ops. No association is performed: the
// carrier is marked present and the call succeeds.
func (s *Session) Connect(params cfg80211.ConnectParams) error {
	if !s.enter("connect") {
		return fmt.Errorf("%w: %w", ErrConnect, ErrSessionClosed)
	}
	defer s.gate.Exit()
	start := time.Now()

	ifc := s.netdevRef()
	if ifc == nil {
		return s.done("connect", start, fmt.Errorf("%w: %w", ErrConnect, ErrNoInterface))
	}
	if ifc.CarrierOn() {
		s.traceCarrier(true, "connect "+params.SSID)
		s.publish(eventbus.Event{Topic: eventbus.TopicCarrier, Up: true})
	}
	return s.done("connect", start, nil)
}

// Disconnect implements cfg80211.Ops. The carrier is marked absent.
func (s *Session) Disconnect(reason uint16) error {
	if !s.enter("disconnect") {
		return fmt.Errorf("%w: %w", ErrDisconnect, ErrSessionClosed)
	}
	defer s.gate.Exit()
	start := time.Now()

	if ifc := s.netdevRef(); ifc != nil && ifc.CarrierOff() {
		s.traceCarrier(false, fmt.Sprintf("disconnect reason %d", reason))
		s.publish(eventbus.Event{Topic: eventbus.TopicCarrier, Up: false})
	}
	return s.done("disconnect", start, nil)
}

// Open implements netstack.Ops. The interface goes Up with its transmit
// queue started.
func (s *Session) Open(ifc *netdev.Interface) error {
	if !s.enter("open") {
		return fmt.Errorf("%w: %w", ErrOpen, ErrSessionClosed)
	}
	defer s.gate.Exit()
	start := time.Now()

	own, err := s.ownInterface(ifc)
	if err != nil {
		return s.done("open", start, fmt.Errorf("%w: %w", ErrOpen, err))
	}
	if old := own.SetOperState(netdev.OperUp); old != netdev.OperUp {
		s.traceLink(old, netdev.OperUp, "open")
		s.publish(eventbus.Event{Topic: eventbus.TopicLink, Up: true})
	}
	own.StartQueue()
	return s.done("open", start, nil)
}

// Stop implements netstack.Ops. The interface goes Down with its transmit
// queue stopped.
func (s *Session) Stop(ifc *netdev.Interface) error {
	if !s.enter("stop") {
		return fmt.Errorf("%w: %w", ErrStop, ErrSessionClosed)
	}
	defer s.gate.Exit()
	start := time.Now()

	own, err := s.ownInterface(ifc)
	if err != nil {
		return s.done("stop", start, fmt.Errorf("%w: %w", ErrStop, err))
	}
	own.StopQueue()
	if old := own.SetOperState(netdev.OperDown); old != netdev.OperDown {
		s.traceLink(old, netdev.OperDown, "stop")
		s.publish(eventbus.Event{Topic: eventbus.TopicLink, Up: false})
	}
	return s.done("stop", start, nil)
}

// Transmit implements netstack.Ops. The frame is discarded and released
// exactly once on every path. A frame sent while the interface is not Up
// counts as dropped. After Detach started, TxDropped is returned.
func (s *Session) Transmit(frame *netdev.Frame, ifc *netdev.Interface) netstack.TxResult {
	defer frame.Release()

	if !s.enter("transmit") {
		return netstack.TxDropped
	}
	defer s.gate.Exit()
	start := time.Now()

	own, err := s.ownInterface(ifc)
	if err != nil {
		_ = s.done("transmit", start, err)
		return netstack.TxDropped
	}
	if frame == nil {
		_ = s.done("transmit", start, nil)
		return netstack.TxOK
	}

	if own.IsUp() && own.QueueStarted() {
		own.RecordTx(frame.Len())
	} else {
		own.RecordDrop()
	}
	s.traceDispatch("transmit", netstack.TxOK.String(), false, time.Since(start))
	return netstack.TxOK
}

// ownInterface checks that ifc is the session's interface. A nil ifc
// means the session's own.
func (s *Session) ownInterface(ifc *netdev.Interface) (*netdev.Interface, error) {
	own := s.netdevRef()
	if own == nil {
		return nil, ErrNoInterface
	}
	if ifc != nil && ifc != own {
		return nil, ErrForeignIfc
	}
	return own, nil
}

// Compile-time interface satisfaction checks.
var (
	_ cfg80211.Ops = (*Session)(nil)
	_ netstack.Ops = (*Session)(nil)
)
