package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/config"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/types"
)

func TestRESTClientGenerateContent(t *testing.T) {
	t.Run("should post the prompt and return the first candidate", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
			assert.Equal(t, "secret key", r.URL.Query().Get("key"))

			var req generateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Contents, 1)
			assert.Equal(t, "hello", req.Contents[0].Parts[0].Text)

			_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"recipes\":[]}"}]}}]}`))
		}))
		defer server.Close()

		client := NewRESTClient(config.GeminiConfig{APIKey: "secret key", Model: "gemini-test", Endpoint: server.URL + "/"}, server.Client())
		text, err := client.GenerateContent(context.Background(), "hello")

		require.NoError(t, err)
		assert.Equal(t, `{"recipes":[]}`, text)
	})

	t.Run("should return an APIError on bad status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte("quota"))
		}))
		defer server.Close()

		client := NewRESTClient(config.GeminiConfig{APIKey: "k", Endpoint: server.URL}, server.Client())
		_, err := client.GenerateContent(context.Background(), "hello")

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
		assert.Equal(t, "quota", apiErr.Body)
	})

	t.Run("should return empty text when there are no candidates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		}))
		defer server.Close()

		client := NewRESTClient(config.GeminiConfig{APIKey: "k", Endpoint: server.URL}, server.Client())
		text, err := client.GenerateContent(context.Background(), "hello")

		require.NoError(t, err)
		assert.Empty(t, text)
	})
}

func TestNew(t *testing.T) {
	t.Run("should return nil without an API key", func(t *testing.T) {
		gen, err := New(context.Background(), config.GeminiConfig{Transport: "rest"}, nil, nil)
		require.NoError(t, err)
		assert.Nil(t, gen)
	})

	t.Run("should default to the REST transport", func(t *testing.T) {
		gen, err := New(context.Background(), config.GeminiConfig{APIKey: "k"}, nil, nil)
		require.NoError(t, err)
		assert.IsType(t, &restClient{}, gen)
	})
}

func TestBuildRecipePrompt(t *testing.T) {
	t.Run("should list inventory and profile", func(t *testing.T) {
		prompt, err := BuildRecipePrompt(RecipeInput{
			Inventory: []types.InventoryItem{
				{Name: "milk", Quantity: "1"},
				{Name: "eggs", Quantity: "6", ExpiryDate: "2024-06-01"},
			},
			SkillLevel:           "intermediate",
			AvailableTimeMinutes: 45,
			DietPreferences:      []string{"vegetarian", "low-carb"},
			Allergies:            []string{"peanuts"},
		})
		require.NoError(t, err)

		assert.Contains(t, prompt, "one item per line):\nmilk (qty: 1)\neggs (qty: 6, expiry: 2024-06-01)\n")
		assert.Contains(t, prompt, "- Skill level: intermediate")
		assert.Contains(t, prompt, "- Available time in minutes: 45")
		assert.Contains(t, prompt, "- Dietary preferences: vegetarian, low-carb")
		assert.Contains(t, prompt, "- Allergies (never use these): peanuts")
	})

	t.Run("should handle an empty profile", func(t *testing.T) {
		prompt, err := BuildRecipePrompt(RecipeInput{SkillLevel: "beginner", AvailableTimeMinutes: 30})
		require.NoError(t, err)

		assert.Contains(t, prompt, "No items provided.")
		assert.Contains(t, prompt, "- Dietary preferences: none")
		assert.NotContains(t, prompt, "Allergies")
	})
}

func TestPlaceholderPlan(t *testing.T) {
	plan := PlaceholderPlan(RecipeInput{
		Inventory:            []types.InventoryItem{{Name: "milk"}, {Name: "eggs"}},
		AvailableTimeMinutes: 15,
	})

	assert.Equal(t, "You have milk, eggs. Configure GOOGLE_GEMINI_API_KEY to get real AI suggestions.", plan.InventorySummary)
	require.Len(t, plan.Recipes, 1)
	assert.Contains(t, plan.Recipes[0].Title, "Placeholder")
	assert.Equal(t, 15, plan.Recipes[0].EstimatedTimeMinutes)
	require.Len(t, plan.ShoppingList, 1)
	assert.Equal(t, "Fresh vegetables", plan.ShoppingList[0].Name)

	empty := PlaceholderPlan(RecipeInput{})
	assert.Contains(t, empty.InventorySummary, "nothing specific logged yet")
	assert.Equal(t, 20, empty.Recipes[0].EstimatedTimeMinutes)
}
