package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ServiceHandler answers the endpoints every binary shares.
type ServiceHandler struct {
	name string
	ping func(ctx context.Context) error
}

// NewServiceHandler builds the shared handler; ping may be nil for
// processes without a store.
func NewServiceHandler(name string, ping func(ctx context.Context) error) *ServiceHandler {
	return &ServiceHandler{name: name, ping: ping}
}

func (h *ServiceHandler) Home(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Hello from " + h.name,
		"service": h.name,
	})
}

// Health is liveness only and always 200.
func (h *ServiceHandler) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "healthy", "service": h.name})
}

// Readyz also checks the record store.
func (h *ServiceHandler) Readyz(ctx *gin.Context) {
	if h.ping != nil {
		c, cancel := context.WithTimeout(ctx.Request.Context(), time.Second)
		defer cancel()

		if err := h.ping(c); err != nil {
			slog.WarnContext(ctx.Request.Context(), "readiness check failed", "err", err)
			RespondUnavailable(ctx, "Record store unavailable")
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready", "service": h.name})
}
