package signal

import (
	"context"
	"errors"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/chatrelay/internal/app/orch"
	"github.com/dkeye/chatrelay/internal/config"
	"github.com/dkeye/chatrelay/internal/core"
	"github.com/dkeye/chatrelay/internal/domain"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

const eventBuffer = 16

type SignalWSController struct {
	Orch     *orch.Orchestrator
	cfg      *config.Config
	limiter  *RoomRateLimiter
	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, cfg *config.Config) *SignalWSController {
	origins := newOriginPolicy(cfg.AllowedOrigins)
	return &SignalWSController{
		Orch:     o,
		cfg:      cfg,
		limiter:  NewRoomRateLimiter(cfg.RateLimit.Burst, cfg.RateLimit.Interval),
		upgrader: websocket.Upgrader{CheckOrigin: origins.check},
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{conn: ws, send: make(chan core.Frame, buffer)}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
}

// HandleSignal upgrades the request and runs the connection until it
// closes. b is the (room, name) pair the HTTP session carried; an invalid
// pair yields an inert connection.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context, b domain.Binding) {
	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	sid := core.SessionID(uuid.NewString())
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(b.Room)).Msg("new WS connection")

	conn := newWsSignalConn(ws, ctl.cfg.SendBuffer)
	ctx, cancel := context.WithCancel(ctx)
	sess := ctl.Orch.Open(sid, conn, cancel)
	events := make(chan orch.Event, eventBuffer)

	go ctl.writePump(ctx, sid, conn)
	go func() {
		sess.Run(ctx, events)
		cancel()
		conn.Close()
		ctl.limiter.Forget(sid)
	}()
	go ctl.readPump(ctx, sid, conn, events, b)
}
