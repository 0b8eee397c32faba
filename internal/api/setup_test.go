package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/middleware"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/model"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/pipeline"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/service"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/store"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/types"
)

const (
	testSecret      = "test-secret"
	testIngestToken = "ingest-secret"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubPipelines answers every run with canned results
type stubPipelines struct {
	inventory []types.InventoryItem
	plan      types.RecipePlan
	shopping  []types.ShoppingListItem
	full      types.FullRun
	err       error
}

func (s *stubPipelines) Inventory(context.Context, pipeline.Inputs) ([]types.InventoryItem, error) {
	return s.inventory, s.err
}

func (s *stubPipelines) Recipes(context.Context, pipeline.Inputs) (types.RecipePlan, error) {
	return s.plan, s.err
}

func (s *stubPipelines) ShoppingList(context.Context, pipeline.Inputs) ([]types.ShoppingListItem, error) {
	return s.shopping, s.err
}

func (s *stubPipelines) Full(context.Context, pipeline.Inputs) (types.FullRun, error) {
	return s.full, s.err
}

type testEnv struct {
	router  *gin.Engine
	store   *store.MemoryStore
	kitchen *service.KitchenService
	runs    *service.RunRecorder
	auth    *service.AuthService
}

// setupTestEnv wires every handler over an in-memory store and SQLite run history
func setupTestEnv(t *testing.T, pipelines *stubPipelines) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.PipelineRun{}))

	st := store.NewMemoryStore()
	runs := service.NewRunRecorder(db, nil)
	kitchen := service.NewKitchenService(st, pipelines, nil, service.WithRunTracker(runs))
	auth := service.NewAuthService(testSecret)

	router := gin.New()
	router.Use(middleware.ErrorHandler(nil))
	NewHealthHandler(nil).RegisterRoutes(router)

	v1 := router.Group("/api/v1")
	NewIngestHandler(kitchen).RegisterRoutes(v1, middleware.IngestAuth(testIngestToken))

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(auth))
	NewPipelineHandler(kitchen).RegisterRoutes(protected)
	NewInventoryHandler(kitchen).RegisterRoutes(protected)
	NewShoppingHandler(kitchen).RegisterRoutes(protected)
	NewProfileHandler(kitchen).RegisterRoutes(protected)
	NewRunHandler(runs).RegisterRoutes(protected)
	NewEventsHandler(kitchen).RegisterRoutes(protected)

	return &testEnv{router: router, store: st, kitchen: kitchen, runs: runs, auth: auth}
}

func (e *testEnv) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := e.auth.GenerateToken(userID)
	require.NoError(t, err)
	return token
}

// do sends an authenticated request as userID; an empty userID sends none
func (e *testEnv) do(t *testing.T, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+e.token(t, userID))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) ingest(t *testing.T, kind, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/"+kind, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}
