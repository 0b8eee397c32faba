package normalize

import (
	"strings"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/types"
)

// ShoppingList normalizes raw into a list of shopping items. It accepts the
// same dialects as Inventory plus a whole plan, whose shopping list is used.
func ShoppingList(raw any) ([]types.ShoppingListItem, error) {
	src := resolve(raw, listDecoders)
	if src.kind == sourceEmpty {
		return nil, emptyPayload(ShapeShopping)
	}
	return shoppingFromSource(src, 0), nil
}

func shoppingFromSource(src source, depth int) []types.ShoppingListItem {
	switch src.kind {
	case sourceArray:
		return shoppingItems(src.array)
	case sourceText:
		names := splitList(src.text)
		items := make([]types.ShoppingListItem, 0, len(names))
		for _, n := range names {
			items = append(items, types.ShoppingListItem{Name: n})
		}
		return items
	case sourceObject:
		m := src.object
		if v, ok := firstPresent(m, "shoppingList", "shopping_list", "items"); ok && depth < maxDecodeDepth {
			return shoppingFromSource(resolve(v, listDecoders), depth+1)
		}
		if _, ok := m["name"]; ok {
			if item, ok := shoppingItem(m, ""); ok {
				return []types.ShoppingListItem{item}
			}
		}
		if isPlanShaped(m) {
			return []types.ShoppingListItem{}
		}
		return shoppingSnapshot(m)
	}
	return []types.ShoppingListItem{}
}

func shoppingItems(arr []any) []types.ShoppingListItem {
	out := make([]types.ShoppingListItem, 0, len(arr))
	for _, e := range arr {
		switch t := e.(type) {
		case map[string]any:
			if item, ok := shoppingItem(t, ""); ok {
				out = append(out, item)
			}
		default:
			if name := stringify(t); name != "" {
				out = append(out, types.ShoppingListItem{Name: name})
			}
		}
	}
	return out
}

func shoppingSnapshot(m map[string]any) []types.ShoppingListItem {
	out := make([]types.ShoppingListItem, 0, len(m))
	for _, key := range sortedKeys(m) {
		switch t := m[key].(type) {
		case map[string]any:
			if item, ok := shoppingItem(t, key); ok {
				out = append(out, item)
			}
		case string:
			if t != "" {
				out = append(out, types.ShoppingListItem{ID: key, Name: t})
			}
		}
	}
	return out
}

func shoppingItem(m map[string]any, key string) (types.ShoppingListItem, bool) {
	item := types.ShoppingListItem{
		ID:        key,
		Name:      firstString(m, "name", "item", "title"),
		Quantity:  stringify(m["quantity"]),
		Category:  stringify(m["category"]),
		Checked:   toBool(m["checked"]),
		ForRecipe: stringify(m["forRecipe"]),
		Reason:    stringify(m["reason"]),
	}
	if item.ID == "" {
		item.ID = stringify(m["id"])
	}
	if item.ForRecipe == "" {
		item.ForRecipe = strings.Join(stringList(m["forRecipes"]), ", ")
	}
	return item, item.Name != ""
}
