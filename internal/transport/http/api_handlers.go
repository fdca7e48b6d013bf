package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/beamlabs/beamchat-server/internal/core"
	"github.com/beamlabs/beamchat-server/internal/store"
)

// APIHandlers provides the read-only presence endpoints. They only read
// snapshots through the hub; the store is a fallback for users this
// process never saw.
type APIHandlers struct {
	hub   *core.Hub
	users store.UserStore
	log   *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(hub *core.Hub, users store.UserStore, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{hub: hub, users: users, log: logger}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// LastActiveResponse represents the last-active response body.
type LastActiveResponse struct {
	LastActive time.Time `json:"lastActive"`
	IsOnline   *bool     `json:"isOnline,omitempty"`
}

// OnlineUsers returns the current online snapshot.
// GET /api/users/online
func (h *APIHandlers) OnlineUsers(c *gin.Context) {
	users, err := h.hub.OnlineUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if users == nil {
		users = []string{}
	}
	c.JSON(http.StatusOK, users)
}

// LastActive returns a user's last-active timestamp, preferring the
// in-memory value over the persisted one.
// GET /api/users/:id/last-active
func (h *APIHandlers) LastActive(c *gin.Context) {
	userID := c.Param("id")

	lastActive, ok, err := h.hub.LastActive(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if ok {
		c.JSON(http.StatusOK, LastActiveResponse{LastActive: lastActive})
		return
	}

	if h.users == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Str("user_id", userID).Msg("load user last active")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, LastActiveResponse{
		LastActive: user.LastActive,
		IsOnline:   &user.IsOnline,
	})
}
