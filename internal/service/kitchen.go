package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/normalize"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/pipeline"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/store"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/types"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrInvalidInput = errors.New("invalid input")
)

// maxIngestName caps the item name made from unparseable ingest text
const maxIngestName = 200

// KitchenService runs the pipelines for a user and keeps their results in
// the store, where the UI picks them up.
type KitchenService struct {
	store     store.Gateway
	pipelines Pipelines
	images    ImageUploader
	runs      RunTracker
	logger    *slog.Logger
}

// KitchenOption configures optional collaborators of the KitchenService
type KitchenOption func(*KitchenService)

// WithImageUploader uploads data URL photos before they reach the engine
func WithImageUploader(u ImageUploader) KitchenOption {
	return func(s *KitchenService) { s.images = u }
}

// WithRunTracker records every pipeline run
func WithRunTracker(t RunTracker) KitchenOption {
	return func(s *KitchenService) { s.runs = t }
}

func NewKitchenService(st store.Gateway, pipelines Pipelines, logger *slog.Logger, opts ...KitchenOption) *KitchenService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &KitchenService{store: st, pipelines: pipelines, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeFridge extracts the inventory from a photo and/or free text and
// replaces the stored inventory with it.
func (s *KitchenService) AnalyzeFridge(ctx context.Context, userID string, req types.FridgeRequest) ([]types.InventoryItem, error) {
	image, err := s.uploadImage(ctx, userID, req.FridgeImage)
	if err != nil {
		return nil, err
	}

	var items []types.InventoryItem
	err = s.track(ctx, userID, pipeline.KindInventory, func(ctx context.Context) error {
		var err error
		items, err = s.pipelines.Inventory(ctx, pipeline.Inputs{
			UserID:          userID,
			FridgeImage:     image,
			ManualInventory: req.ManualInventory,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := s.put(ctx, userID, store.SectionInventory, items); err != nil {
		return nil, err
	}
	return items, nil
}

// GenerateRecipes runs the recipe pipeline with the request merged over the
// stored preferences and inventory.
func (s *KitchenService) GenerateRecipes(ctx context.Context, userID string, req types.RecipeRequest) (types.RecipePlan, error) {
	in, err := s.recipeInputs(ctx, userID, req)
	if err != nil {
		return types.RecipePlan{}, err
	}

	var plan types.RecipePlan
	err = s.track(ctx, userID, pipeline.KindRecipes, func(ctx context.Context) error {
		var err error
		plan, err = s.pipelines.Recipes(ctx, in)
		return err
	})
	if err != nil {
		return types.RecipePlan{}, err
	}
	if err := s.put(ctx, userID, store.SectionRecipes, plan); err != nil {
		return types.RecipePlan{}, err
	}
	return plan, nil
}

// BuildShoppingList runs the shopping list pipeline
func (s *KitchenService) BuildShoppingList(ctx context.Context, userID string, req types.ShoppingRequest) ([]types.ShoppingListItem, error) {
	var items []types.ShoppingListItem
	err := s.track(ctx, userID, pipeline.KindShopping, func(ctx context.Context) error {
		var err error
		items, err = s.pipelines.ShoppingList(ctx, pipeline.Inputs{
			UserID:       userID,
			RecipeFilter: req.RecipeFilter,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := s.put(ctx, userID, store.SectionShoppingList, items); err != nil {
		return nil, err
	}
	return items, nil
}

// RunFull runs the combined pipeline and stores every part it produced
func (s *KitchenService) RunFull(ctx context.Context, userID string, req types.FullRequest) (types.FullRun, error) {
	in, err := s.recipeInputs(ctx, userID, req.RecipeRequest)
	if err != nil {
		return types.FullRun{}, err
	}
	if in.FridgeImage, err = s.uploadImage(ctx, userID, req.FridgeImage); err != nil {
		return types.FullRun{}, err
	}
	in.ManualInventory = req.ManualInventory
	in.RunInventory = req.RunInventory
	in.RunRecipes = req.RunRecipes
	in.RunShopping = req.RunShopping

	var result types.FullRun
	err = s.track(ctx, userID, pipeline.KindMain, func(ctx context.Context) error {
		var err error
		result, err = s.pipelines.Full(ctx, in)
		return err
	})
	if err != nil {
		return types.FullRun{}, err
	}
	if err := s.storeFull(ctx, userID, result); err != nil {
		return types.FullRun{}, err
	}
	return result, nil
}

func (s *KitchenService) storeFull(ctx context.Context, userID string, result types.FullRun) error {
	if len(result.Inventory) > 0 {
		if err := s.put(ctx, userID, store.SectionInventory, result.Inventory); err != nil {
			return err
		}
	}
	if err := s.put(ctx, userID, store.SectionRecipes, result.Plan); err != nil {
		return err
	}
	return s.put(ctx, userID, store.SectionShoppingList, result.Plan.ShoppingList)
}

// recipeInputs fills empty request fields from the stored profile
func (s *KitchenService) recipeInputs(ctx context.Context, userID string, req types.RecipeRequest) (pipeline.Inputs, error) {
	prefs, err := s.Preferences(ctx, userID)
	if err != nil {
		return pipeline.Inputs{}, err
	}
	in := pipeline.Inputs{
		UserID:               userID,
		SkillLevel:           prefs.SkillLevel,
		AvailableTimeMinutes: prefs.AvailableTimeMinutes,
		DietPreferences:      prefs.DietPreferences,
		Allergies:            prefs.Allergies,
		Inventory:            req.Inventory,
	}
	if req.SkillLevel != "" {
		in.SkillLevel = normalize.Difficulty(req.SkillLevel)
	}
	if req.AvailableTimeMinutes > 0 {
		in.AvailableTimeMinutes = req.AvailableTimeMinutes
	}
	if len(req.DietPreferences) > 0 {
		in.DietPreferences = req.DietPreferences
	}
	if len(req.Allergies) > 0 {
		in.Allergies = req.Allergies
	}
	if len(in.Inventory) == 0 {
		if in.Inventory, err = s.Inventory(ctx, userID); err != nil {
			return pipeline.Inputs{}, err
		}
	}
	return in, nil
}

func (s *KitchenService) uploadImage(ctx context.Context, userID, image string) (string, error) {
	if image == "" || s.images == nil {
		return image, nil
	}
	return s.images.Upload(ctx, userID, image)
}

// track records fn as one run. fn gets ctx tagged with the run id so the
// execution id lands on this row. Recorder failures are logged, never returned.
func (s *KitchenService) track(ctx context.Context, userID string, kind pipeline.Kind, fn func(ctx context.Context) error) error {
	if s.runs == nil {
		return fn(ctx)
	}
	start := time.Now()
	id, err := s.runs.Start(ctx, userID, kind)
	if err != nil {
		s.logger.Warn("run history unavailable", "user_id", userID, "kind", kind, "error", err)
		return fn(ctx)
	}

	runErr := fn(pipeline.WithRunID(ctx, id.String()))
	// the request may be gone by now, the row should still be closed
	if err := s.runs.Finish(context.WithoutCancel(ctx), id, runErr, time.Since(start)); err != nil {
		s.logger.Warn("failed to close run", "run_id", id, "error", err)
	}
	return runErr
}

// Inventory returns the stored inventory
func (s *KitchenService) Inventory(ctx context.Context, userID string) ([]types.InventoryItem, error) {
	raw, ok, err := s.get(ctx, userID, store.SectionInventory)
	if err != nil || !ok {
		return []types.InventoryItem{}, err
	}
	items, err := normalize.Inventory(raw)
	if err != nil {
		return []types.InventoryItem{}, nil
	}
	return items, nil
}

// ReplaceInventory stores items as the whole inventory
func (s *KitchenService) ReplaceInventory(ctx context.Context, userID string, items []types.InventoryItem) ([]types.InventoryItem, error) {
	cleaned := make([]types.InventoryItem, 0, len(items))
	for _, item := range items {
		item, err := cleanItem(item)
		if err != nil {
			return nil, err
		}
		cleaned = append(cleaned, item)
	}
	if err := s.put(ctx, userID, store.SectionInventory, cleaned); err != nil {
		return nil, err
	}
	return cleaned, nil
}

// AddItem appends item with a fresh id
func (s *KitchenService) AddItem(ctx context.Context, userID string, item types.InventoryItem) (types.InventoryItem, error) {
	item, err := cleanItem(item)
	if err != nil {
		return types.InventoryItem{}, err
	}
	item.ID = uuid.NewString()

	items, err := s.Inventory(ctx, userID)
	if err != nil {
		return types.InventoryItem{}, err
	}
	if err := s.put(ctx, userID, store.SectionInventory, append(items, item)); err != nil {
		return types.InventoryItem{}, err
	}
	return item, nil
}

// UpdateItem replaces the item addressed by ref, keeping its id
func (s *KitchenService) UpdateItem(ctx context.Context, userID, ref string, item types.InventoryItem) (types.InventoryItem, error) {
	item, err := cleanItem(item)
	if err != nil {
		return types.InventoryItem{}, err
	}
	items, err := s.Inventory(ctx, userID)
	if err != nil {
		return types.InventoryItem{}, err
	}
	i, ok := findItem(items, ref)
	if !ok {
		return types.InventoryItem{}, ErrItemNotFound
	}
	item.ID = items[i].ID
	items[i] = item
	if err := s.put(ctx, userID, store.SectionInventory, items); err != nil {
		return types.InventoryItem{}, err
	}
	return item, nil
}

// DeleteItem removes the item addressed by ref
func (s *KitchenService) DeleteItem(ctx context.Context, userID, ref string) error {
	items, err := s.Inventory(ctx, userID)
	if err != nil {
		return err
	}
	i, ok := findItem(items, ref)
	if !ok {
		return ErrItemNotFound
	}
	items = append(items[:i], items[i+1:]...)
	return s.put(ctx, userID, store.SectionInventory, items)
}

// ClearInventory empties the inventory
func (s *KitchenService) ClearInventory(ctx context.Context, userID string) error {
	return s.put(ctx, userID, store.SectionInventory, []types.InventoryItem{})
}

// findItem resolves ref as an item id, then as a list index
func findItem(items []types.InventoryItem, ref string) (int, bool) {
	for i, item := range items {
		if item.ID != "" && item.ID == ref {
			return i, true
		}
	}
	if i, err := strconv.Atoi(ref); err == nil && i >= 0 && i < len(items) {
		return i, true
	}
	return 0, false
}

func cleanItem(item types.InventoryItem) (types.InventoryItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return item, fmt.Errorf("%w: item name is required", ErrInvalidInput)
	}
	item.Quantity = strings.TrimSpace(item.Quantity)
	if item.Quantity == "" {
		item.Quantity = "1"
	}
	item.Category = strings.TrimSpace(item.Category)
	item.ExpiryDate = strings.TrimSpace(item.ExpiryDate)
	return item, nil
}

// Recipes returns the stored plan, normalized again on the way out
func (s *KitchenService) Recipes(ctx context.Context, userID string) (types.RecipePlan, error) {
	empty := types.RecipePlan{Recipes: []types.RecipeSuggestion{}, ShoppingList: []types.ShoppingListItem{}}
	raw, ok, err := s.get(ctx, userID, store.SectionRecipes)
	if err != nil || !ok {
		return empty, err
	}
	plan, err := normalize.Plan(raw)
	if err != nil {
		return empty, nil
	}
	return plan, nil
}

// ShoppingList returns the stored shopping list
func (s *KitchenService) ShoppingList(ctx context.Context, userID string) ([]types.ShoppingListItem, error) {
	raw, ok, err := s.get(ctx, userID, store.SectionShoppingList)
	if err != nil || !ok {
		return []types.ShoppingListItem{}, err
	}
	items, err := normalize.ShoppingList(raw)
	if err != nil {
		return []types.ShoppingListItem{}, nil
	}
	return items, nil
}

// SetChecked flips the checked flag of the item at index
func (s *KitchenService) SetChecked(ctx context.Context, userID string, index int, checked bool) (types.ShoppingListItem, error) {
	items, err := s.ShoppingList(ctx, userID)
	if err != nil {
		return types.ShoppingListItem{}, err
	}
	if index < 0 || index >= len(items) {
		return types.ShoppingListItem{}, ErrItemNotFound
	}
	items[index].Checked = checked
	if err := s.put(ctx, userID, store.SectionShoppingList, items); err != nil {
		return types.ShoppingListItem{}, err
	}
	return items[index], nil
}

// ClearShoppingList empties the shopping list
func (s *KitchenService) ClearShoppingList(ctx context.Context, userID string) error {
	return s.put(ctx, userID, store.SectionShoppingList, []types.ShoppingListItem{})
}

// Preferences returns the stored profile, or the defaults
func (s *KitchenService) Preferences(ctx context.Context, userID string) (types.UserPreferences, error) {
	prefs := types.DefaultPreferences()
	err := s.store.Get(ctx, store.UserPath(userID, store.SectionPreferences), &prefs)
	if errors.Is(err, store.ErrNotFound) {
		return types.DefaultPreferences(), nil
	}
	if err != nil {
		return types.UserPreferences{}, fmt.Errorf("failed to load preferences: %w", err)
	}
	if prefs.DietPreferences == nil {
		prefs.DietPreferences = []string{}
	}
	return prefs, nil
}

// SavePreferences validates and stores prefs
func (s *KitchenService) SavePreferences(ctx context.Context, userID string, prefs types.UserPreferences) (types.UserPreferences, error) {
	skill, ok := normalize.ParseDifficulty(prefs.SkillLevel)
	if !ok {
		return types.UserPreferences{}, fmt.Errorf("%w: unknown skill level %q", ErrInvalidInput, prefs.SkillLevel)
	}
	if prefs.AvailableTimeMinutes <= 0 {
		return types.UserPreferences{}, fmt.Errorf("%w: available time must be positive", ErrInvalidInput)
	}
	prefs.SkillLevel = skill
	prefs.DietPreferences = trimAll(prefs.DietPreferences)
	prefs.Allergies = trimAll(prefs.Allergies)

	if err := s.put(ctx, userID, store.SectionPreferences, prefs); err != nil {
		return types.UserPreferences{}, err
	}
	return prefs, nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Ingest stores a result the workflow engine pushed back for userID
func (s *KitchenService) Ingest(ctx context.Context, kind pipeline.Kind, userID string, data json.RawMessage) error {
	if userID == "" {
		return pipeline.ErrMissingUserID
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		raw = string(data)
	}

	switch kind {
	case pipeline.KindInventory:
		if text, ok := raw.(string); ok && normalize.IsFreeText(text) {
			// a description the engine could not structure is kept whole
			items := []types.InventoryItem{{Name: truncateRunes(strings.TrimSpace(text), maxIngestName), Quantity: "1", Category: "other"}}
			return s.put(ctx, userID, store.SectionInventory, items)
		}
		items, err := normalize.Inventory(raw)
		if err != nil {
			return err
		}
		return s.put(ctx, userID, store.SectionInventory, items)
	case pipeline.KindRecipes:
		plan, err := normalize.Plan(raw)
		if err != nil {
			return err
		}
		return s.put(ctx, userID, store.SectionRecipes, plan)
	case pipeline.KindShopping:
		items, err := normalize.ShoppingList(raw)
		if err != nil {
			return err
		}
		return s.put(ctx, userID, store.SectionShoppingList, items)
	case pipeline.KindMain:
		result, err := normalize.Full(raw)
		if err != nil {
			return err
		}
		return s.storeFull(ctx, userID, result)
	}
	return fmt.Errorf("%w: unknown pipeline kind %q", ErrInvalidInput, kind)
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

// Watch streams store changes for userID until ctx is done
func (s *KitchenService) Watch(ctx context.Context, userID string) (<-chan store.Change, error) {
	return s.store.Watch(ctx, userID)
}

func (s *KitchenService) put(ctx context.Context, userID, section string, v any) error {
	if err := s.store.Set(ctx, store.UserPath(userID, section), v); err != nil {
		return fmt.Errorf("failed to store %s: %w", section, err)
	}
	return nil
}

// get reads a section as untyped JSON. ok is false when nothing is stored.
func (s *KitchenService) get(ctx context.Context, userID, section string) (any, bool, error) {
	var raw any
	err := s.store.Get(ctx, store.UserPath(userID, section), &raw)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load %s: %w", section, err)
	}
	return raw, true, nil
}
