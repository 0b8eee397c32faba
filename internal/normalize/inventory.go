package normalize

import (
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/types"
)

const defaultQuantity = "1"

var listDecoders = []textDecoder{decodeJSON, decodeFenced, embeddedDecoder(listPatterns...)}

// Inventory normalizes raw into a list of inventory items. Free text is split
// on commas and newlines, and a keyed snapshot becomes a list ordered by key
// with the key kept as the item id.
func Inventory(raw any) ([]types.InventoryItem, error) {
	src := resolve(raw, listDecoders)
	if src.kind == sourceEmpty {
		return nil, emptyPayload(ShapeInventory)
	}
	return inventoryFromSource(src, 0), nil
}

// IsFreeText reports whether raw is prose that holds no JSON list or record
func IsFreeText(raw any) bool {
	return resolve(raw, listDecoders).kind == sourceText
}

func inventoryFromSource(src source, depth int) []types.InventoryItem {
	switch src.kind {
	case sourceArray:
		return inventoryItems(src.array)
	case sourceText:
		names := splitList(src.text)
		items := make([]types.InventoryItem, 0, len(names))
		for _, n := range names {
			items = append(items, types.InventoryItem{Name: n, Quantity: defaultQuantity})
		}
		return items
	case sourceObject:
		m := src.object
		if v, ok := firstPresent(m, "items", "inventory"); ok && depth < maxDecodeDepth {
			return inventoryFromSource(resolve(v, listDecoders), depth+1)
		}
		if _, ok := m["name"]; ok {
			if item, ok := inventoryItem(m, ""); ok {
				return []types.InventoryItem{item}
			}
		}
		if isPlanShaped(m) {
			return []types.InventoryItem{}
		}
		return inventorySnapshot(m)
	}
	return []types.InventoryItem{}
}

func inventoryItems(arr []any) []types.InventoryItem {
	out := make([]types.InventoryItem, 0, len(arr))
	for _, e := range arr {
		switch t := e.(type) {
		case map[string]any:
			if item, ok := inventoryItem(t, ""); ok {
				out = append(out, item)
			}
		default:
			if name := stringify(t); name != "" {
				out = append(out, types.InventoryItem{Name: name, Quantity: defaultQuantity})
			}
		}
	}
	return out
}

func inventorySnapshot(m map[string]any) []types.InventoryItem {
	out := make([]types.InventoryItem, 0, len(m))
	for _, key := range sortedKeys(m) {
		switch t := m[key].(type) {
		case map[string]any:
			if item, ok := inventoryItem(t, key); ok {
				out = append(out, item)
			}
		case string:
			if t != "" {
				out = append(out, types.InventoryItem{ID: key, Name: t, Quantity: defaultQuantity})
			}
		}
	}
	return out
}

// inventoryItem coerces one record. A non-empty key overrides the record's id.
func inventoryItem(m map[string]any, key string) (types.InventoryItem, bool) {
	item := types.InventoryItem{
		ID:         key,
		Name:       firstString(m, "name", "item"),
		Quantity:   stringify(m["quantity"]),
		Category:   stringify(m["category"]),
		ExpiryDate: firstString(m, "expiryDate", "expiry_date", "expiry"),
	}
	if item.ID == "" {
		item.ID = stringify(m["id"])
	}
	if item.Quantity == "" {
		item.Quantity = defaultQuantity
	}
	return item, item.Name != ""
}
