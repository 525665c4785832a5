package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/domain"
)

// UsageLookup returns the current usage of a session, or an error if it does not exist
type UsageLookup func(ctx context.Context, sessionID int64) (*domain.CapacityResult, error)

// ErrorResponder writes an API error for err
type ErrorResponder func(c *gin.Context, err error)

// Handler for WebSocket connections
type Handler struct {
	hub       *Hub
	lookup    UsageLookup
	respondTo ErrorResponder
	logger    zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, lookup UsageLookup, respondTo ErrorResponder, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:       hub,
		lookup:    lookup,
		respondTo: respondTo,
		logger:    logger,
	}
}

// HandleConnection godoc
// @Summary Subscribe to live session availability
// @Description Upgrades to a WebSocket that receives a usage snapshot on connect and after every enrollment change
// @Tags sessions, websocket
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param token query string false "Access token for clients that cannot set headers"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 400 {object} dto.ErrorResponse "Invalid session ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{id}/ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid session ID")
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	userID, _ := c.Get("userID")
	uid, _ := userID.(int64)

	usage, err := h.lookup(c.Request.Context(), sessionID)
	if err != nil {
		h.respondTo(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Int64("sessionID", sessionID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:       h.hub,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		userID:    uid,
		sessionID: sessionID,
		logger:    h.logger,
	}

	// Initial snapshot goes first so the board renders without waiting for a change
	if data, err := json.Marshal(NewUsageMessage(sessionID, *usage)); err == nil {
		client.send <- data
	}

	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
