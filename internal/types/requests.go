package types

import "encoding/json"

// FridgeRequest represents the request body for the inventory pipeline
type FridgeRequest struct {
	FridgeImage     string `json:"fridgeImage"`
	ManualInventory string `json:"manualInventory"`
}

// RecipeRequest represents the request body for the recipe pipeline.
// Empty fields are filled from the stored preferences and inventory.
type RecipeRequest struct {
	SkillLevel           string          `json:"skillLevel"`
	AvailableTimeMinutes int             `json:"availableTimeMinutes"`
	DietPreferences      []string        `json:"dietPreferences"`
	Allergies            []string        `json:"allergies"`
	Inventory            []InventoryItem `json:"inventory"`
}

// ShoppingRequest represents the request body for the shopping list pipeline
type ShoppingRequest struct {
	RecipeFilter string `json:"recipeFilter"`
}

// FullRequest represents the request body for the main pipeline
type FullRequest struct {
	FridgeRequest
	RecipeRequest
	RunInventory *bool `json:"runInventory"`
	RunRecipes   *bool `json:"runRecipes"`
	RunShopping  *bool `json:"runShopping"`
}

// ToggleCheckedRequest represents the request body for checking off a shopping item
type ToggleCheckedRequest struct {
	Checked *bool `json:"checked" binding:"required"`
}

// IngestRequest represents a result pushed back by the workflow engine
type IngestRequest struct {
	UserID string          `json:"userId" binding:"required"`
	Data   json.RawMessage `json:"data" binding:"required"`
}
