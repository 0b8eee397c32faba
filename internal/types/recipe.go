package types

// Difficulty levels a recipe can carry after normalization
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// InventoryItem represents one thing in the user's fridge
type InventoryItem struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Quantity   string `json:"quantity"`
	Category   string `json:"category,omitempty"`
	ExpiryDate string `json:"expiryDate,omitempty"`
}

// RecipeSuggestion represents a single recipe inside a generated plan
type RecipeSuggestion struct {
	Title                string   `json:"title"`
	Ingredients          []string `json:"ingredients"`
	Steps                []string `json:"steps"`
	Difficulty           string   `json:"difficulty"`
	EstimatedTimeMinutes int      `json:"estimatedTimeMinutes"`
	Category             string   `json:"category,omitempty"`
}

// ShoppingListItem represents an entry of the shopping list.
// Checked is the only field mutated after creation.
type ShoppingListItem struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Quantity  string `json:"quantity,omitempty"`
	Category  string `json:"category,omitempty"`
	Checked   bool   `json:"checked,omitempty"`
	ForRecipe string `json:"forRecipe,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// RecipePlan is the canonical result of the recipe pipeline.
// Recipes and ShoppingList are never nil once normalized.
type RecipePlan struct {
	InventorySummary string             `json:"inventorySummary"`
	Recipes          []RecipeSuggestion `json:"recipes"`
	ShoppingList     []ShoppingListItem `json:"shoppingList"`
}

// FullRun is the canonical result of the main pipeline
type FullRun struct {
	Inventory []InventoryItem `json:"inventory"`
	Plan      RecipePlan      `json:"plan"`
}

// UserPreferences holds the stored cooking profile of a user
type UserPreferences struct {
	SkillLevel           string   `json:"skillLevel"`
	AvailableTimeMinutes int      `json:"availableTimeMinutes"`
	DietPreferences      []string `json:"dietPreferences"`
	Allergies            []string `json:"allergies,omitempty"`
}

// DefaultPreferences returns the profile used when a user never saved one
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		SkillLevel:           DifficultyBeginner,
		AvailableTimeMinutes: 30,
		DietPreferences:      []string{},
	}
}
