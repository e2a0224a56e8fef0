package signal

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/chatrelay/internal/app/orch"
	"github.com/dkeye/chatrelay/internal/core"
	"github.com/dkeye/chatrelay/internal/domain"
	"github.com/dkeye/chatrelay/internal/metrics"
)

type inbound struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

type control struct {
	Type string `json:"type"`
}

func (ctl *SignalWSController) writePump(ctx context.Context, sid core.SessionID, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump ping failed")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, sid core.SessionID, c *WsSignalConn, events chan<- orch.Event, b domain.Binding) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		close(events)
	}()

	if !push(ctx, events, orch.Event{Kind: orch.EventAttach, Binding: b}) {
		return
	}

	c.conn.SetReadLimit(ctl.cfg.ReadLimit)
	pongWait := ctl.cfg.PongWait()
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			logReadError(sid, err)
			return
		}
		ev, ok := ctl.decode(sid, c, data)
		if !ok {
			continue
		}
		if !push(ctx, events, ev) {
			return
		}
	}
}

// decode turns a client frame into an engine event. Pings are answered here.
func (ctl *SignalWSController) decode(sid core.SessionID, c *WsSignalConn, data []byte) (orch.Event, bool) {
	var in inbound
	if err := json.Unmarshal(data, &in); err != nil {
		metrics.DroppedEvents.WithLabelValues(metrics.ReasonBadPayload).Inc()
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		return orch.Event{}, false
	}

	switch in.Type {
	case "ping":
		ctl.sendJSON(c, control{Type: "pong"})
		return orch.Event{}, false
	case "", "message":
	default:
		metrics.DroppedEvents.WithLabelValues(metrics.ReasonBadPayload).Inc()
		log.Warn().Str("module", "signal").Str("type", in.Type).Msg("unknown signal")
		return orch.Event{}, false
	}

	if strings.TrimSpace(in.Data) == "" {
		metrics.DroppedEvents.WithLabelValues(metrics.ReasonBadPayload).Inc()
		return orch.Event{}, false
	}
	if !ctl.limiter.Allow(sid) {
		metrics.DroppedEvents.WithLabelValues(metrics.ReasonRateLimited).Inc()
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("rate limit exceeded, discarding message")
		return orch.Event{}, false
	}
	return orch.Event{Kind: orch.EventMessage, Body: in.Data}, true
}

func push(ctx context.Context, events chan<- orch.Event, ev orch.Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func logReadError(sid core.SessionID, err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("message exceeded read limit")
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("client disconnected")
	default:
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
	}
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}
