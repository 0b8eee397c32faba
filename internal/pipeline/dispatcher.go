package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/config"
)

// TriggerResult is either Inline, carrying the output of a run that finished
// within the trigger call, or Async, carrying the execution to poll.
type TriggerResult interface {
	isTriggerResult()
}

// Inline is a trigger response that already holds the raw output
type Inline struct {
	Output any
}

// Async is a trigger response that started an execution in the background
type Async struct {
	ExecutionID string
	State       string
}

func (Inline) isTriggerResult() {}
func (Async) isTriggerResult()  {}

// Dispatcher sends webhook triggers to the workflow engine
type Dispatcher struct {
	cfg    config.KestraConfig
	client *http.Client
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher. A nil client gets one with the configured timeout.
func NewDispatcher(cfg config.KestraConfig, client *http.Client, logger *slog.Logger) *Dispatcher {
	if client == nil {
		client = newHTTPClient(cfg)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{cfg: cfg, client: client, logger: logger}
}

// WebhookURL returns the trigger URL of kind
func (d *Dispatcher) WebhookURL(kind Kind) string {
	return fmt.Sprintf("%s/webhook/%s/%s/%s",
		executionsURL(d.cfg),
		url.PathEscape(d.cfg.Namespace),
		url.PathEscape(kind.FlowName()),
		url.PathEscape(webhookKey(d.cfg.WebhookKeys, kind)),
	)
}

// Trigger starts a run of kind. It never retries.
func (d *Dispatcher) Trigger(ctx context.Context, kind Kind, in Inputs) (TriggerResult, error) {
	if in.UserID == "" {
		return nil, ErrMissingUserID
	}
	if !d.cfg.Configured() || webhookKey(d.cfg.WebhookKeys, kind) == "" {
		return nil, ErrEngineNotConfigured
	}

	payload, err := json.Marshal(in.body(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s inputs: %w", kind, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.WebhookURL(kind), bytes.NewReader(payload))
	if err != nil {
		return nil, &DispatchError{Kind: kind, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	authorize(req, d.cfg)

	d.logger.Info("triggering pipeline", "kind", kind, "flow", kind.FlowName(), "user_id", in.UserID)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &DispatchError{Kind: kind, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &DispatchError{Kind: kind, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		d.logger.Error("pipeline trigger rejected", "kind", kind, "status", resp.StatusCode, "body", string(body))
		return nil, &DispatchError{Kind: kind, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return classifyTrigger(body), nil
}

// classifyTrigger decides between an inline result and an execution handle
func classifyTrigger(body []byte) TriggerResult {
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Inline{Output: string(body)}
	}

	if out, ok := extractOutput(decoded); ok {
		return Inline{Output: out}
	}
	if hasPlanFields(decoded) {
		return Inline{Output: decoded}
	}
	if id, ok := decoded["id"].(string); ok && id != "" {
		if state, ok := decoded["state"]; ok && state != nil {
			return Async{ExecutionID: id, State: currentState(state)}
		}
	}
	return Inline{Output: string(body)}
}

func hasPlanFields(m map[string]any) bool {
	_, summary := m["inventorySummary"]
	_, recipes := m["recipes"]
	if summary && recipes {
		return true
	}
	for _, k := range []string{"inventory", "shoppingList", "shopping_list"} {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// currentState reads either {"state":{"current":"X"}} or {"state":"X"}
func currentState(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case map[string]any:
		if cur, ok := s["current"].(string); ok {
			return cur
		}
	}
	return ""
}
