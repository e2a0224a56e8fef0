package orch

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/chatrelay/internal/core"
	"github.com/dkeye/chatrelay/internal/domain"
	"github.com/dkeye/chatrelay/internal/metrics"
)

type State int32

const (
	Unbound State = iota
	Bound
	Detached
)

func (s State) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case Bound:
		return "bound"
	case Detached:
		return "detached"
	default:
		return "unknown"
	}
}

type EventKind int

const (
	EventAttach EventKind = iota
	EventMessage
	EventDetach
)

// Event is one inbound transport event. Binding is read on EventAttach only,
// Body on EventMessage only.
type Event struct {
	Kind    EventKind
	Binding domain.Binding
	Body    string
}

// Session is the per-connection state machine: Unbound -> Bound -> Detached.
// Handle is meant to be called from a single goroutine (see Run).
type Session struct {
	sid   core.SessionID
	conn  core.SignalConnection
	orch  *Orchestrator
	bind  domain.Binding
	state atomic.Int32
}

func (s *Session) ID() core.SessionID      { return s.sid }
func (s *Session) State() State            { return State(s.state.Load()) }
func (s *Session) Binding() domain.Binding { return s.bind }

// Handle applies one event. The returned error is informational; callers on
// the transport side ignore it.
func (s *Session) Handle(ev Event) error {
	switch ev.Kind {
	case EventAttach:
		return s.attach(ev.Binding)
	case EventMessage:
		return s.message(ev.Body)
	case EventDetach:
		s.detach()
		return nil
	default:
		return nil
	}
}

func (s *Session) attach(b domain.Binding) error {
	switch s.State() {
	case Detached:
		dropped(metrics.ReasonDetached, s.sid, domain.ErrSessionDetached)
		return domain.ErrSessionDetached
	case Bound:
		// the pair is fixed for the connection's lifetime
		return nil
	}
	if _, err := s.orch.Join(s.sid, s.conn, b); err != nil {
		return err
	}
	s.bind = b
	s.state.Store(int32(Bound))
	return nil
}

func (s *Session) message(body string) error {
	switch s.State() {
	case Unbound:
		dropped(metrics.ReasonUnbound, s.sid, domain.ErrUnboundConnection)
		return domain.ErrUnboundConnection
	case Detached:
		dropped(metrics.ReasonDetached, s.sid, domain.ErrSessionDetached)
		return domain.ErrSessionDetached
	}
	return s.orch.Say(s.sid, s.bind, body)
}

func (s *Session) detach() {
	prev := State(s.state.Swap(int32(Detached)))
	if prev == Detached {
		return
	}
	if prev == Bound {
		s.orch.Leave(s.sid)
	}
	s.orch.Close(s.sid)
	log.Info().Str("module", "app.orch").Str("sid", string(s.sid)).Str("from", prev.String()).Msg("session detached")
}

// Run consumes events until a detach arrives, the channel closes or ctx is
// canceled. The session always ends Detached.
func (s *Session) Run(ctx context.Context, events <-chan Event) {
	defer s.detach()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := s.Handle(ev); err != nil {
				log.Debug().Err(err).Str("module", "app.orch").Str("sid", string(s.sid)).Msg("event ignored")
			}
			if ev.Kind == EventDetach {
				return
			}
		}
	}
}
