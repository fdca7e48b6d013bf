package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/beamlabs/beamchat-server/internal/auth"
	"github.com/beamlabs/beamchat-server/internal/config"
	"github.com/beamlabs/beamchat-server/internal/core"
	"github.com/beamlabs/beamchat-server/internal/store"
)

// NewServer builds the HTTP server: the WebSocket endpoint plus the
// read-only presence API.
func NewServer(hub *core.Hub, jwtConfig *auth.JWTConfig, st store.Store, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(LoggerMiddleware(logger), gin.Recovery())

	router.GET("/health", healthHandler)

	var users store.UserStore
	if st != nil {
		users = st
	}
	api := NewAPIHandlers(hub, users, logger)
	router.GET("/api/users/online", api.OnlineUsers)
	router.GET("/api/users/:id/last-active", api.LastActive)

	router.GET("/ws", gin.WrapH(NewWSHandler(hub, jwtConfig, cfg.MessageRateLimit, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
