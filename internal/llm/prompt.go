package llm

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/types"
)

//go:embed recipe_prompt.tmpl
var recipePrompt string

var recipeTemplate = template.Must(template.New("recipe").Parse(recipePrompt))

// RecipeInput is what the recipe prompt and the placeholder plan are built from
type RecipeInput struct {
	Inventory            []types.InventoryItem
	SkillLevel           string
	AvailableTimeMinutes int
	DietPreferences      []string
	Allergies            []string
}

type promptData struct {
	RecipeInput
	Diet      string
	Allergies string
}

// BuildRecipePrompt renders the recipe generation prompt
func BuildRecipePrompt(in RecipeInput) (string, error) {
	data := promptData{
		RecipeInput: in,
		Diet:        strings.Join(in.DietPreferences, ", "),
		Allergies:   strings.Join(in.Allergies, ", "),
	}
	if data.Diet == "" {
		data.Diet = "none"
	}

	var buf bytes.Buffer
	if err := recipeTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PlaceholderPlan is returned when neither the engine nor an API key is
// configured, so callers always get a usable plan.
func PlaceholderPlan(in RecipeInput) types.RecipePlan {
	names := make([]string, 0, len(in.Inventory))
	for _, item := range in.Inventory {
		names = append(names, item.Name)
	}
	have := strings.Join(names, ", ")
	if have == "" {
		have = "nothing specific logged yet"
	}

	minutes := 20
	if in.AvailableTimeMinutes > 0 && in.AvailableTimeMinutes < minutes {
		minutes = in.AvailableTimeMinutes
	}

	return types.RecipePlan{
		InventorySummary: "You have " + have + ". Configure GOOGLE_GEMINI_API_KEY to get real AI suggestions.",
		Recipes: []types.RecipeSuggestion{{
			Title:       "Placeholder fridge stir-fry (configure the LLM for real suggestions)",
			Ingredients: []string{"Whatever veggies you have", "Oil", "Salt", "Pepper", "Soy sauce (optional)"},
			Steps: []string{
				"Chop any vegetables that look fresh.",
				"Heat oil in a pan.",
				"Stir-fry veggies with salt and pepper for 5-7 minutes.",
				"Finish with soy sauce or any sauce you like.",
			},
			Difficulty:           types.DifficultyBeginner,
			EstimatedTimeMinutes: minutes,
		}},
		ShoppingList: []types.ShoppingListItem{{
			Name:     "Fresh vegetables",
			Quantity: "a few servings",
			Reason:   "Base for quick stir-fry meals",
		}},
	}
}
