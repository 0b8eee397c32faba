package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/model"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/pipeline"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/store"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/types"
)

// Pipelines is the part of pipeline.Client the kitchen service drives
type Pipelines interface {
	Inventory(ctx context.Context, in pipeline.Inputs) ([]types.InventoryItem, error)
	Recipes(ctx context.Context, in pipeline.Inputs) (types.RecipePlan, error)
	ShoppingList(ctx context.Context, in pipeline.Inputs) ([]types.ShoppingListItem, error)
	Full(ctx context.Context, in pipeline.Inputs) (types.FullRun, error)
}

// ImageUploader turns a fridge photo into a URL the workflow engine can fetch
type ImageUploader interface {
	Upload(ctx context.Context, userID, image string) (string, error)
}

// RunTracker records the lifecycle of pipeline runs
type RunTracker interface {
	Start(ctx context.Context, userID string, kind pipeline.Kind) (uuid.UUID, error)
	Finish(ctx context.Context, id uuid.UUID, runErr error, elapsed time.Duration) error
}

// IKitchenService defines the interface for the user-facing kitchen operations
type IKitchenService interface {
	AnalyzeFridge(ctx context.Context, userID string, req types.FridgeRequest) ([]types.InventoryItem, error)
	GenerateRecipes(ctx context.Context, userID string, req types.RecipeRequest) (types.RecipePlan, error)
	BuildShoppingList(ctx context.Context, userID string, req types.ShoppingRequest) ([]types.ShoppingListItem, error)
	RunFull(ctx context.Context, userID string, req types.FullRequest) (types.FullRun, error)

	Inventory(ctx context.Context, userID string) ([]types.InventoryItem, error)
	ReplaceInventory(ctx context.Context, userID string, items []types.InventoryItem) ([]types.InventoryItem, error)
	AddItem(ctx context.Context, userID string, item types.InventoryItem) (types.InventoryItem, error)
	UpdateItem(ctx context.Context, userID, ref string, item types.InventoryItem) (types.InventoryItem, error)
	DeleteItem(ctx context.Context, userID, ref string) error
	ClearInventory(ctx context.Context, userID string) error

	Recipes(ctx context.Context, userID string) (types.RecipePlan, error)

	ShoppingList(ctx context.Context, userID string) ([]types.ShoppingListItem, error)
	SetChecked(ctx context.Context, userID string, index int, checked bool) (types.ShoppingListItem, error)
	ClearShoppingList(ctx context.Context, userID string) error

	Preferences(ctx context.Context, userID string) (types.UserPreferences, error)
	SavePreferences(ctx context.Context, userID string, prefs types.UserPreferences) (types.UserPreferences, error)

	Ingest(ctx context.Context, kind pipeline.Kind, userID string, data json.RawMessage) error
	Watch(ctx context.Context, userID string) (<-chan store.Change, error)
}

// IRunService defines the interface for reading run history
type IRunService interface {
	ListForUser(ctx context.Context, userID string, limit int) ([]model.PipelineRun, error)
}

// IAuthService defines the interface for token operations
type IAuthService interface {
	GenerateToken(userID string) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}
