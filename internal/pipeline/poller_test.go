package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/normalize"
)

// sequenceServer answers status requests with responses in order, repeating the last one
func sequenceServer(t *testing.T, responses ...func(w http.ResponseWriter)) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		if n >= len(responses) {
			n = len(responses) - 1
		}
		responses[n](w)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func state(s string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		_, _ = w.Write([]byte(`{"id":"e","state":{"current":"` + s + `"}}`))
	}
}

func reply(status int, body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func fastPoller(baseURL string, attempts int) *Poller {
	cfg := testEngineConfig(baseURL)
	cfg.PollInterval = time.Millisecond
	cfg.PollMaxAttempts = attempts
	return NewPoller(cfg, nil, nil, nil)
}

func TestPollerPoll(t *testing.T) {
	t.Run("should return the output once the execution succeeds", func(t *testing.T) {
		server, calls := sequenceServer(t,
			state("RUNNING"),
			state("RUNNING"),
			reply(http.StatusOK, `{"state":{"current":"SUCCESS"},"outputs":{"final_output":{"finalPlan":"PLAN"}}}`),
		)

		out, err := fastPoller(server.URL, 10).Poll(context.Background(), KindRecipes, "e")
		require.NoError(t, err)
		assert.Equal(t, "PLAN", out)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("should request the execution status path", func(t *testing.T) {
		var path atomic.Value
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path.Store(r.URL.Path)
			_, _ = w.Write([]byte(`{"state":{"current":"WARNING"},"outputs":{"agentResponse":"ok"}}`))
		}))
		defer server.Close()

		out, err := fastPoller(server.URL, 3).Poll(context.Background(), KindRecipes, "exec-42")
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
		assert.Equal(t, "/api/v1/executions/exec-42", path.Load())
	})

	t.Run("should stop at the first failed state", func(t *testing.T) {
		server, calls := sequenceServer(t, state("RUNNING"), state("FAILED"))

		_, err := fastPoller(server.URL, 10).Poll(context.Background(), KindRecipes, "e")
		var failed *ExecutionFailedError
		require.True(t, errors.As(err, &failed))
		assert.Equal(t, "FAILED", failed.State)
		assert.Equal(t, "e", failed.ExecutionID)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("should treat killed executions as failed", func(t *testing.T) {
		server, _ := sequenceServer(t, state("KILLED"))

		_, err := fastPoller(server.URL, 10).Poll(context.Background(), KindRecipes, "e")
		var failed *ExecutionFailedError
		require.True(t, errors.As(err, &failed))
		assert.Equal(t, "KILLED", failed.State)
	})

	t.Run("should time out after the attempt budget", func(t *testing.T) {
		server, calls := sequenceServer(t, state("RUNNING"))

		_, err := fastPoller(server.URL, 5).Poll(context.Background(), KindRecipes, "e")
		var timeout *TimeoutError
		require.True(t, errors.As(err, &timeout))
		assert.Equal(t, 5, timeout.Attempts)
		assert.Equal(t, int32(5), calls.Load())
	})

	t.Run("should keep polling through transient errors", func(t *testing.T) {
		server, calls := sequenceServer(t,
			reply(http.StatusBadGateway, "upstream"),
			reply(http.StatusOK, "not json"),
			reply(http.StatusOK, `{"state":{"current":"SUCCESS"},"outputs":{"recipe_agent":{"text":"T"}}}`),
		)

		out, err := fastPoller(server.URL, 10).Poll(context.Background(), KindRecipes, "e")
		require.NoError(t, err)
		assert.Equal(t, "T", out)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("should return outputs whole when no known path matches", func(t *testing.T) {
		server, _ := sequenceServer(t, reply(http.StatusOK, `{"state":{"current":"SUCCESS"},"outputs":{"custom":{"x":1}}}`))

		out, err := fastPoller(server.URL, 2).Poll(context.Background(), KindRecipes, "e")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"custom": map[string]any{"x": 1.0}}, out)
	})

	t.Run("should fail normalization when success carries no output", func(t *testing.T) {
		tests := []struct {
			kind     Kind
			expected normalize.Shape
		}{
			{KindInventory, normalize.ShapeInventory},
			{KindRecipes, normalize.ShapePlan},
			{KindShopping, normalize.ShapeShopping},
			{KindMain, normalize.ShapePlan},
		}
		for _, tt := range tests {
			t.Run(string(tt.kind), func(t *testing.T) {
				server, _ := sequenceServer(t, state("SUCCESS"))

				_, err := fastPoller(server.URL, 2).Poll(context.Background(), tt.kind, "e")
				var normErr *normalize.NormalizationError
				require.True(t, errors.As(err, &normErr))
				assert.Equal(t, tt.expected, normErr.Shape)
			})
		}
	})

	t.Run("should stop when the context is canceled", func(t *testing.T) {
		server, _ := sequenceServer(t, state("RUNNING"))
		cfg := testEngineConfig(server.URL)
		cfg.PollInterval = time.Hour
		poller := NewPoller(cfg, nil, nil, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := poller.Poll(ctx, KindRecipes, "e")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
