// Package orch drives room membership and message fan-out for each
// connection. Every failure is handled here: nothing propagates to the
// websocket client, but each drop is logged and counted.
package orch

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/chatrelay/internal/app"
	"github.com/dkeye/chatrelay/internal/core"
	"github.com/dkeye/chatrelay/internal/domain"
	"github.com/dkeye/chatrelay/internal/metrics"
)

type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomRegistry
	Policy   app.Policy
}

// Open registers a freshly established connection and returns its state
// machine in the Unbound state.
func (o *Orchestrator) Open(sid core.SessionID, conn core.SignalConnection, cancel context.CancelFunc) *Session {
	o.Registry.BindSignal(sid, conn, cancel)
	metrics.Connections.Inc()
	return &Session{sid: sid, conn: conn, orch: o}
}

func (o *Orchestrator) applyPolicy(code domain.RoomCode, res core.PublishResult) {
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		action := o.Policy.OnBackPressure(code, slow)
		metrics.FramesDropped.WithLabelValues(action.String()).Inc()
		switch action {
		case app.KickMember:
			log.Warn().Str("module", "app.orch").Str("room", string(code)).Str("sid", string(slow.ID())).Msg("kicking slow member")
			o.Registry.Cancel(slow.ID())
		case app.DropFrame, app.NoAction:
			log.Debug().Str("module", "app.orch").Str("room", string(code)).Str("sid", string(slow.ID())).Msg("frame dropped for slow member")
		}
	}
}

func dropped(reason string, sid core.SessionID, err error) {
	metrics.DroppedEvents.WithLabelValues(reason).Inc()
	log.Debug().Err(err).Str("module", "app.orch").Str("sid", string(sid)).Str("reason", reason).Msg("event dropped")
}
