package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/middleware"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/service"
)

const keepAliveInterval = 25 * time.Second

// EventsHandler streams store changes to the UI as Server-Sent Events
type EventsHandler struct {
	kitchen   service.IKitchenService
	keepAlive time.Duration
}

func NewEventsHandler(kitchen service.IKitchenService) *EventsHandler {
	return &EventsHandler{kitchen: kitchen, keepAlive: keepAliveInterval}
}

func (h *EventsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/events", h.Stream)
}

// Stream sends one "change" event per write under the caller's paths
func (h *EventsHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	changes, err := h.kitchen.Watch(ctx, middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			c.SSEvent("change", change)
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
		}
		c.Writer.Flush()
	}
}
