package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chatrelay/backend/internal/chathub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the HTTP connection and registers a new session
// with the hub. The client reports the last message id it has durably seen
// through the "offset" query parameter; absent or unparsable values mean a
// full replay from the beginning once it joins a room.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	offset := parseOffset(c.Query("offset"))

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	sessionID := uuid.New().String()
	client := chathub.NewWebSocketClient(h.Hub, conn, sessionID, offset, h.log)

	h.Hub.RegisterCh <- client
	client.Run()
}

func parseOffset(raw string) uint {
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}
