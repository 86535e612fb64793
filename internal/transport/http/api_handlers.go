package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/roomrelay/roomrelay-server/internal/core"
)

// APIHandlers provides read-only REST snapshots of relay state.
type APIHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(hub *core.Hub, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{hub: hub, log: logger}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListRooms returns the current room snapshot.
// GET /api/rooms
func (h *APIHandlers) ListRooms(c *gin.Context) {
	rooms, err := h.hub.RoomList(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to snapshot rooms")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, roomListPayload(rooms))
}

// ListUsers returns the current connection roster.
// GET /api/users
func (h *APIHandlers) ListUsers(c *gin.Context) {
	users, err := h.hub.Roster(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to snapshot roster")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, rosterPayload(users))
}
