package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/config"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/normalize"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/types"
)

// Kind identifies one of the workflows the engine runs
type Kind string

const (
	KindInventory Kind = "inventory"
	KindRecipes   Kind = "recipes"
	KindShopping  Kind = "shopping"
	KindMain      Kind = "main"
)

// Kinds lists every pipeline kind
var Kinds = []Kind{KindInventory, KindRecipes, KindShopping, KindMain}

var flowNames = map[Kind]string{
	KindInventory: "manage-inventory",
	KindRecipes:   "generate-recipes",
	KindShopping:  "create-shopping-list",
	KindMain:      "smart-fridge-main",
}

// ParseKind validates a kind received from outside the process
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := flowNames[k]; !ok {
		return "", fmt.Errorf("unknown pipeline kind %q", s)
	}
	return k, nil
}

// FlowName returns the engine flow id for the kind
func (k Kind) FlowName() string {
	return flowNames[k]
}

// Shape is the record the kind's output normalizes into
func (k Kind) Shape() normalize.Shape {
	switch k {
	case KindInventory:
		return normalize.ShapeInventory
	case KindShopping:
		return normalize.ShapeShopping
	}
	return normalize.ShapePlan
}

func webhookKey(keys config.WebhookKeys, k Kind) string {
	switch k {
	case KindInventory:
		return keys.Inventory
	case KindRecipes:
		return keys.Recipes
	case KindShopping:
		return keys.Shopping
	case KindMain:
		return keys.Main
	}
	return ""
}

// Input defaults applied before a trigger is sent
const (
	defaultSkillLevel    = "beginner"
	defaultAvailableTime = 30
	defaultNone          = "None"
)

// Inputs are the named parameters of a pipeline run. Only UserID is required.
type Inputs struct {
	UserID               string
	FridgeImage          string
	ManualInventory      string
	Inventory            []types.InventoryItem
	SkillLevel           string
	AvailableTimeMinutes int
	DietPreferences      []string
	Allergies            []string
	RecipeFilter         string
	RunInventory         *bool
	RunRecipes           *bool
	RunShopping          *bool
}

// body builds the webhook payload for kind with defaults filled in
func (in Inputs) body(kind Kind) map[string]any {
	skill := in.SkillLevel
	if skill == "" {
		skill = defaultSkillLevel
	}
	minutes := in.AvailableTimeMinutes
	if minutes <= 0 {
		minutes = defaultAvailableTime
	}

	recipeInputs := map[string]any{
		"userId":             in.UserID,
		"skillLevel":         skill,
		"availableTime":      minutes,
		"dietaryRestriction": joinOrNone(in.DietPreferences),
		"allergies":          joinOrNone(in.Allergies),
	}
	if len(in.Inventory) > 0 {
		if b, err := json.Marshal(in.Inventory); err == nil {
			recipeInputs["inventory"] = string(b)
		}
	}

	switch kind {
	case KindInventory:
		return map[string]any{
			"userId":          in.UserID,
			"fridgeImage":     in.FridgeImage,
			"manualInventory": in.ManualInventory,
		}
	case KindRecipes:
		return recipeInputs
	case KindShopping:
		return map[string]any{
			"userId":       in.UserID,
			"recipeFilter": in.RecipeFilter,
		}
	default:
		body := recipeInputs
		body["fridgeImage"] = in.FridgeImage
		body["manualInventory"] = in.ManualInventory
		body["runInventory"] = boolOr(in.RunInventory, true)
		body["runRecipes"] = boolOr(in.RunRecipes, true)
		body["runShopping"] = boolOr(in.RunShopping, true)
		return body
	}
}

func joinOrNone(values []string) string {
	var kept []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return defaultNone
	}
	return strings.Join(kept, ", ")
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
