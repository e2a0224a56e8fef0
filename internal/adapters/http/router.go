package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/pion/randutil"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/chatrelay/internal/adapters/signal"
	"github.com/dkeye/chatrelay/internal/app/orch"
	"github.com/dkeye/chatrelay/internal/config"
)

const (
	sessionCookie = "ChatSession"
	secretRunes   = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

func cookieSecret(cfg *config.Config) []byte {
	if cfg.Secret != "" {
		return []byte(cfg.Secret)
	}
	s, err := randutil.GenerateCryptoRandomString(32, secretRunes)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot generate session secret")
	}
	log.Warn().Str("module", "adapters.http").Msg("no secret configured, sessions will not survive a restart")
	return []byte(s)
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	gin.SetMode(cfg.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(cfg.Mode == "debug"))

	store := cookie.NewStore(cookieSecret(cfg))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   3600 * 24 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionCookie, store))

	h := &handlers{orch: o}
	ctrl := signal.NewSignalWSController(o, cfg)

	r.GET("/healthz", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/rooms", h.listRooms)
	api.POST("/rooms", h.createRoom)
	api.POST("/rooms/:code/join", h.joinRoom)
	api.GET("/room", h.roomSnapshot)
	api.DELETE("/session", h.clearSession)
	api.GET("/ws", func(c *gin.Context) {
		b := bindingOf(sessions.Default(c))
		log.Debug().Str("module", "adapters.http").Str("room", string(b.Room)).Msg("ws endpoint hit")
		ctrl.HandleSignal(ctx, c, b)
	})

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")
	return r
}
