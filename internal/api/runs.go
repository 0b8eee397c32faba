package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/middleware"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/service"
)

type RunHandler struct {
	runs service.IRunService
}

func NewRunHandler(runs service.IRunService) *RunHandler {
	return &RunHandler{runs: runs}
}

func (h *RunHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/runs", h.List)
}

// List returns the caller's most recent pipeline runs
func (h *RunHandler) List(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative number"})
			return
		}
		limit = n
	}
	runs, err := h.runs.ListForUser(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, runs)
}
