package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/pipeline"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/service"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/types"
)

// IngestHandler receives results the workflow engine's flows push back
type IngestHandler struct {
	kitchen service.IKitchenService
}

func NewIngestHandler(kitchen service.IKitchenService) *IngestHandler {
	return &IngestHandler{kitchen: kitchen}
}

func (h *IngestHandler) RegisterRoutes(router *gin.RouterGroup, guard gin.HandlerFunc) {
	router.POST("/ingest/:kind", guard, h.Ingest)
}

func (h *IngestHandler) Ingest(c *gin.Context) {
	kind, err := pipeline.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	var req types.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.kitchen.Ingest(c.Request.Context(), kind, req.UserID, req.Data); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
