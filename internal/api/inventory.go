package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/middleware"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/service"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/types"
)

// InventoryHandler edits the stored inventory directly
type InventoryHandler struct {
	kitchen service.IKitchenService
}

func NewInventoryHandler(kitchen service.IKitchenService) *InventoryHandler {
	return &InventoryHandler{kitchen: kitchen}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	inventory := router.Group("/inventory")
	{
		inventory.GET("", h.List)
		inventory.PUT("", h.Replace)
		inventory.DELETE("", h.Clear)
		inventory.POST("/items", h.Add)
		inventory.PUT("/items/:id", h.Update)
		inventory.DELETE("/items/:id", h.Delete)
	}
}

func (h *InventoryHandler) List(c *gin.Context) {
	items, err := h.kitchen.Inventory(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Replace accepts either a bare array or {"items": [...]}
func (h *InventoryHandler) Replace(c *gin.Context) {
	var body json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	items, err := decodeItems(body)
	if err != nil {
		bindError(c, err)
		return
	}
	saved, err := h.kitchen.ReplaceInventory(c.Request.Context(), middleware.UserID(c), items)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func decodeItems(body json.RawMessage) ([]types.InventoryItem, error) {
	var items []types.InventoryItem
	if err := json.Unmarshal(body, &items); err == nil {
		return items, nil
	}
	var wrapped struct {
		Items []types.InventoryItem `json:"items"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Items == nil {
		return nil, errors.New("expected an array of items or an object with items")
	}
	return wrapped.Items, nil
}

func (h *InventoryHandler) Clear(c *gin.Context) {
	if err := h.kitchen.ClearInventory(c.Request.Context(), middleware.UserID(c)); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InventoryHandler) Add(c *gin.Context) {
	var item types.InventoryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		bindError(c, err)
		return
	}
	added, err := h.kitchen.AddItem(c.Request.Context(), middleware.UserID(c), item)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

func (h *InventoryHandler) Update(c *gin.Context) {
	var item types.InventoryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		bindError(c, err)
		return
	}
	updated, err := h.kitchen.UpdateItem(c.Request.Context(), middleware.UserID(c), c.Param("id"), item)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *InventoryHandler) Delete(c *gin.Context) {
	if err := h.kitchen.DeleteItem(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
