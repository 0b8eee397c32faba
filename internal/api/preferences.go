package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/middleware"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/service"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/types"
)

// ProfileHandler serves the stored cooking preferences and the last plan
type ProfileHandler struct {
	kitchen service.IKitchenService
}

func NewProfileHandler(kitchen service.IKitchenService) *ProfileHandler {
	return &ProfileHandler{kitchen: kitchen}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/preferences", h.GetPreferences)
	router.PUT("/preferences", h.SavePreferences)
	router.GET("/recipes", h.GetRecipes)
}

func (h *ProfileHandler) GetPreferences(c *gin.Context) {
	prefs, err := h.kitchen.Preferences(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *ProfileHandler) SavePreferences(c *gin.Context) {
	var prefs types.UserPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		bindError(c, err)
		return
	}
	saved, err := h.kitchen.SavePreferences(c.Request.Context(), middleware.UserID(c), prefs)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *ProfileHandler) GetRecipes(c *gin.Context) {
	plan, err := h.kitchen.Recipes(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, plan)
}
