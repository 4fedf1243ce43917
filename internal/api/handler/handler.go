package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chatrelay/backend/internal/chathub"
)

// Handler holds the HTTP-facing dependencies.
type Handler struct {
	Hub *chathub.Hub
	log zerolog.Logger
}

func NewHandler(hub *chathub.Hub, log zerolog.Logger) *Handler {
	return &Handler{Hub: hub, log: log.With().Str("component", "handler").Logger()}
}

// Healthz is a liveness probe.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
