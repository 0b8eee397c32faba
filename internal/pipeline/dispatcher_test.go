package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/config"
)

func testEngineConfig(baseURL string) config.KestraConfig {
	cfg := config.Default().Kestra
	cfg.BaseURL = baseURL
	return cfg
}

type captured struct {
	mu      sync.Mutex
	req     *http.Request
	payload map[string]any
}

func (c *captured) request() *http.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.req
}

func (c *captured) body() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payload
}

// captureServer records the last request and answers with status and body
func captureServer(t *testing.T, status int, body string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		c.mu.Lock()
		c.req = r.Clone(context.Background())
		c.payload = payload
		c.mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, c
}

func TestDispatcherTrigger(t *testing.T) {
	t.Run("should post defaults to the webhook URL", func(t *testing.T) {
		server, got := captureServer(t, http.StatusOK, `{"id":"exec-1","state":{"current":"CREATED"}}`)
		d := NewDispatcher(testEngineConfig(server.URL), server.Client(), nil)

		result, err := d.Trigger(context.Background(), KindRecipes, Inputs{UserID: "u1"})
		require.NoError(t, err)

		assert.Equal(t, http.MethodPost, got.request().Method)
		assert.Equal(t, "/api/v1/executions/webhook/ai.smartfridge/generate-recipes/recipe-generator-webhook-key-12345", got.request().URL.Path)
		assert.Equal(t, "application/json", got.request().Header.Get("Content-Type"))
		assert.Empty(t, got.request().Header.Get("Authorization"))

		assert.Equal(t, map[string]any{
			"userId":             "u1",
			"skillLevel":         "beginner",
			"availableTime":      30.0,
			"dietaryRestriction": "None",
			"allergies":          "None",
		}, got.body())
		assert.Equal(t, Async{ExecutionID: "exec-1", State: "CREATED"}, result)
	})

	t.Run("should include the tenant segment when configured", func(t *testing.T) {
		server, got := captureServer(t, http.StatusOK, `{}`)
		cfg := testEngineConfig(server.URL)
		cfg.Tenant = "main"

		_, err := NewDispatcher(cfg, server.Client(), nil).Trigger(context.Background(), KindShopping, Inputs{UserID: "u1"})
		require.NoError(t, err)
		assert.Equal(t, "/api/v1/main/executions/webhook/ai.smartfridge/create-shopping-list/shopping-list-webhook-key-12345", got.request().URL.Path)
	})

	t.Run("should prefer bearer over basic auth", func(t *testing.T) {
		server, got := captureServer(t, http.StatusOK, `{}`)
		cfg := testEngineConfig(server.URL)
		cfg.APIToken = "tok"
		cfg.BasicAuth = "YWRtaW46c2VjcmV0"

		_, err := NewDispatcher(cfg, server.Client(), nil).Trigger(context.Background(), KindInventory, Inputs{UserID: "u1"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Bearer tok"}, got.request().Header.Values("Authorization"))
	})

	t.Run("should send basic auth when no token is set", func(t *testing.T) {
		server, got := captureServer(t, http.StatusOK, `{}`)
		cfg := testEngineConfig(server.URL)
		cfg.BasicAuth = "YWRtaW46c2VjcmV0"

		_, err := NewDispatcher(cfg, server.Client(), nil).Trigger(context.Background(), KindInventory, Inputs{UserID: "u1"})
		require.NoError(t, err)
		assert.Equal(t, "Basic YWRtaW46c2VjcmV0", got.request().Header.Get("Authorization"))
	})

	t.Run("should return DispatchError on non-2xx", func(t *testing.T) {
		server, _ := captureServer(t, http.StatusUnauthorized, "bad key")
		d := NewDispatcher(testEngineConfig(server.URL), server.Client(), nil)

		_, err := d.Trigger(context.Background(), KindMain, Inputs{UserID: "u1"})
		var dispatchErr *DispatchError
		require.True(t, errors.As(err, &dispatchErr))
		assert.Equal(t, http.StatusUnauthorized, dispatchErr.StatusCode)
		assert.Equal(t, "bad key", dispatchErr.Body)
		assert.Equal(t, KindMain, dispatchErr.Kind)
	})

	t.Run("should reject a run without user", func(t *testing.T) {
		d := NewDispatcher(testEngineConfig("http://unused"), nil, nil)
		_, err := d.Trigger(context.Background(), KindMain, Inputs{})
		assert.ErrorIs(t, err, ErrMissingUserID)
	})

	t.Run("should report an unconfigured engine", func(t *testing.T) {
		d := NewDispatcher(testEngineConfig(""), nil, nil)
		_, err := d.Trigger(context.Background(), KindInventory, Inputs{UserID: "u1"})
		assert.ErrorIs(t, err, ErrEngineNotConfigured)
	})
}

func TestInputsBody(t *testing.T) {
	yes, no := true, false

	t.Run("should build inventory inputs", func(t *testing.T) {
		body := Inputs{UserID: "u", ManualInventory: "milk"}.body(KindInventory)
		assert.Equal(t, map[string]any{"userId": "u", "fridgeImage": "", "manualInventory": "milk"}, body)
	})

	t.Run("should build main inputs with run flags", func(t *testing.T) {
		body := Inputs{
			UserID:          "u",
			SkillLevel:      "advanced",
			DietPreferences: []string{"vegan", " "},
			RunRecipes:      &no,
			RunShopping:     &yes,
		}.body(KindMain)

		assert.Equal(t, "advanced", body["skillLevel"])
		assert.Equal(t, "vegan", body["dietaryRestriction"])
		assert.Equal(t, true, body["runInventory"])
		assert.Equal(t, false, body["runRecipes"])
		assert.Equal(t, true, body["runShopping"])
		assert.Equal(t, "", body["fridgeImage"])
	})
}

func TestClassifyTrigger(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected TriggerResult
	}{
		{
			name:     "final plan wins over agent text",
			body:     `{"id":"e","state":{"current":"SUCCESS"},"outputs":{"final_output":{"finalPlan":"PLAN"},"agentResponse":"TEXT"}}`,
			expected: Inline{Output: "PLAN"},
		},
		{
			name:     "agent response text",
			body:     `{"outputs":{"format_output":{"agentResponse":"TEXT"}}}`,
			expected: Inline{Output: "TEXT"},
		},
		{
			name:     "recipe agent text",
			body:     `{"id":"e","state":"RUNNING","outputs":{"recipe_agent":{"text":"TEXT"}}}`,
			expected: Inline{Output: "TEXT"},
		},
		{
			name:     "direct plan fields",
			body:     `{"inventorySummary":"S","recipes":[]}`,
			expected: Inline{Output: map[string]any{"inventorySummary": "S", "recipes": []any{}}},
		},
		{
			name:     "execution handle",
			body:     `{"id":"e","state":{"current":"CREATED"},"namespace":"ai.smartfridge"}`,
			expected: Async{ExecutionID: "e", State: "CREATED"},
		},
		{
			name:     "empty agent text is skipped",
			body:     `{"id":"e","state":{"current":"CREATED"},"outputs":{"agentResponse":"  "}}`,
			expected: Async{ExecutionID: "e", State: "CREATED"},
		},
		{
			name:     "bare fallback",
			body:     `{"message":"ok"}`,
			expected: Inline{Output: `{"message":"ok"}`},
		},
		{
			name:     "non JSON body",
			body:     `Recipes: omelette`,
			expected: Inline{Output: `Recipes: omelette`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifyTrigger([]byte(tt.body)))
		})
	}
}
