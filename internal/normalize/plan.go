// Package normalize turns the loosely typed output of the workflow engine and
// the LLM into the canonical records of the kitchen.
//
// Every entry point accepts a decoded JSON value, a JSON string, a string with
// the JSON wrapped in markdown fences or embedded in prose, or plain text.
// Malformed input degrades to a best-effort record. Only a payload with no
// content at all yields a NormalizationError.
package normalize

import (
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/types"
)

const summaryLimit = 500

var planDecoders = []textDecoder{
	decodeJSON,
	decodeFenced,
	embeddedDecoder(planPatterns...),
}

// envelopeKeys hold plan payloads nested by agent steps, most specific first
var envelopeKeys = []string{"finalPlan", "plan", "agentResponse", "text", "result", "output"}

// Plan normalizes raw into a RecipePlan
func Plan(raw any) (types.RecipePlan, error) {
	src := resolve(raw, planDecoders)
	if src.kind == sourceEmpty {
		return types.RecipePlan{}, emptyPayload(ShapePlan)
	}
	return planFromSource(src, 0), nil
}

// Full normalizes the output of the main pipeline. The inventory is only
// filled when the payload carries one.
func Full(raw any) (types.FullRun, error) {
	src := resolve(raw, planDecoders)
	if src.kind == sourceEmpty {
		return types.FullRun{}, emptyPayload(ShapePlan)
	}
	run := types.FullRun{
		Inventory: []types.InventoryItem{},
		Plan:      planFromSource(src, 0),
	}
	if src.kind == sourceObject {
		if v, ok := firstPresent(src.object, "inventory", "items"); ok {
			if items, err := Inventory(v); err == nil {
				run.Inventory = items
			}
		}
	}
	return run, nil
}

func planFromSource(src source, depth int) types.RecipePlan {
	switch src.kind {
	case sourceObject:
		if isPlanShaped(src.object) {
			return planFromObject(src.object)
		}
		if depth < maxDecodeDepth {
			for _, key := range envelopeKeys {
				if v, ok := src.object[key]; ok && v != nil {
					inner := resolve(v, planDecoders)
					if inner.kind != sourceEmpty {
						return planFromSource(inner, depth+1)
					}
				}
			}
		}
		return degradedPlan(stringify(src.object))
	case sourceArray:
		return types.RecipePlan{
			Recipes:      recipes(src.array),
			ShoppingList: []types.ShoppingListItem{},
		}
	default:
		return degradedPlan(src.text)
	}
}

func isPlanShaped(m map[string]any) bool {
	for _, k := range []string{"inventorySummary", "recipes", "shoppingList"} {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func planFromObject(m map[string]any) types.RecipePlan {
	plan := types.RecipePlan{
		InventorySummary: stringify(m["inventorySummary"]),
		Recipes:          []types.RecipeSuggestion{},
		ShoppingList:     []types.ShoppingListItem{},
	}
	if arr, ok := m["recipes"].([]any); ok {
		plan.Recipes = recipes(arr)
	}
	if v, ok := firstPresent(m, "shoppingList", "shopping_list"); ok {
		if arr, ok := v.([]any); ok {
			plan.ShoppingList = shoppingItems(arr)
		}
	}
	return plan
}

func recipes(arr []any) []types.RecipeSuggestion {
	out := make([]types.RecipeSuggestion, 0, len(arr))
	for _, e := range arr {
		switch t := e.(type) {
		case map[string]any:
			out = append(out, recipe(t))
		case string:
			if t == "" {
				continue
			}
			out = append(out, types.RecipeSuggestion{
				Title:                t,
				Ingredients:          []string{},
				Steps:                []string{},
				Difficulty:           types.DifficultyBeginner,
				EstimatedTimeMinutes: defaultRecipeMinutes,
			})
		}
	}
	return out
}

func recipe(m map[string]any) types.RecipeSuggestion {
	r := types.RecipeSuggestion{
		Title:                firstString(m, "title", "name"),
		Ingredients:          stringList(m["ingredients"]),
		Steps:                []string{},
		Difficulty:           Difficulty(stringify(m["difficulty"])),
		EstimatedTimeMinutes: defaultRecipeMinutes,
		Category:             stringify(m["category"]),
	}
	if r.Title == "" {
		r.Title = "Untitled"
	}
	if v, ok := firstPresent(m, "steps", "instructions"); ok {
		r.Steps = stringList(v)
	}
	if v, ok := firstPresent(m, "estimatedTimeMinutes", "time"); ok {
		if n, ok := toInt(v); ok {
			r.EstimatedTimeMinutes = n
		}
	}
	return r
}

func degradedPlan(text string) types.RecipePlan {
	return types.RecipePlan{
		InventorySummary: truncate(text, summaryLimit),
		Recipes:          []types.RecipeSuggestion{},
		ShoppingList:     []types.ShoppingListItem{},
	}
}
