package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/middleware"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/service"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/types"
)

// PipelineHandler triggers pipeline runs for the signed-in user
type PipelineHandler struct {
	kitchen service.IKitchenService
}

func NewPipelineHandler(kitchen service.IKitchenService) *PipelineHandler {
	return &PipelineHandler{kitchen: kitchen}
}

// RegisterRoutes mounts the trigger routes. limits run before each trigger.
func (h *PipelineHandler) RegisterRoutes(router *gin.RouterGroup, limits ...gin.HandlerFunc) {
	pipelines := router.Group("/pipelines")
	pipelines.Use(limits...)
	{
		pipelines.POST("/inventory", h.Inventory)
		pipelines.POST("/recipes", h.Recipes)
		pipelines.POST("/shopping", h.Shopping)
		pipelines.POST("/main", h.Main)
	}
}

// bindOptional binds a JSON body that may be absent entirely
func bindOptional(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return false
	}
	return true
}

func (h *PipelineHandler) Inventory(c *gin.Context) {
	var req types.FridgeRequest
	if !bindOptional(c, &req) {
		return
	}
	items, err := h.kitchen.AnalyzeFridge(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *PipelineHandler) Recipes(c *gin.Context) {
	var req types.RecipeRequest
	if !bindOptional(c, &req) {
		return
	}
	plan, err := h.kitchen.GenerateRecipes(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *PipelineHandler) Shopping(c *gin.Context) {
	var req types.ShoppingRequest
	if !bindOptional(c, &req) {
		return
	}
	items, err := h.kitchen.BuildShoppingList(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *PipelineHandler) Main(c *gin.Context) {
	var req types.FullRequest
	if !bindOptional(c, &req) {
		return
	}
	result, err := h.kitchen.RunFull(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}
