package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/middleware"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/service"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/types"
)

type ShoppingHandler struct {
	kitchen service.IKitchenService
}

func NewShoppingHandler(kitchen service.IKitchenService) *ShoppingHandler {
	return &ShoppingHandler{kitchen: kitchen}
}

func (h *ShoppingHandler) RegisterRoutes(router *gin.RouterGroup) {
	list := router.Group("/shopping-list")
	{
		list.GET("", h.List)
		list.DELETE("", h.Clear)
		list.PATCH("/:index", h.SetChecked)
	}
}

func (h *ShoppingHandler) List(c *gin.Context) {
	items, err := h.kitchen.ShoppingList(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *ShoppingHandler) Clear(c *gin.Context) {
	if err := h.kitchen.ClearShoppingList(c.Request.Context(), middleware.UserID(c)); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetChecked toggles one item, the only edit the list allows
func (h *ShoppingHandler) SetChecked(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be a number"})
		return
	}
	var req types.ToggleCheckedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	item, err := h.kitchen.SetChecked(c.Request.Context(), middleware.UserID(c), index, *req.Checked)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, item)
}
