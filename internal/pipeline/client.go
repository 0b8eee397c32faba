package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/config"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/llm"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/normalize"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/types"
)

// Observer is told which engine execution backs a run. ctx is the caller's
// context, so a run id attached with WithRunID reaches the observer.
type Observer interface {
	ExecutionStarted(ctx context.Context, userID string, kind Kind, executionID string)
}

type runIDKey struct{}

// WithRunID tags ctx with the id of the run record a pipeline call belongs to
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run id set by WithRunID
func RunIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}

// Client is the single entry point the rest of the application uses to run
// pipelines. Each call triggers, waits if needed and normalizes.
type Client struct {
	cfg        config.KestraConfig
	dispatcher *Dispatcher
	poller     *Poller
	generator  llm.TextGenerator
	observer   Observer
	metrics    *Metrics
	locks      *runLocks
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	generator  llm.TextGenerator
	observer   Observer
	metrics    *Metrics
}

// WithHTTPClient sets the client used for engine requests
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithGenerator sets the LLM used by the recipe fallback
func WithGenerator(g llm.TextGenerator) Option {
	return func(o *clientOptions) { o.generator = g }
}

// WithObserver sets the execution observer
func WithObserver(obs Observer) Option {
	return func(o *clientOptions) { o.observer = obs }
}

// WithMetrics sets the metrics sink
func WithMetrics(m *Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// NewClient creates a pipeline Client from the engine configuration
func NewClient(cfg config.KestraConfig, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = newHTTPClient(cfg)
	}
	return &Client{
		cfg:        cfg,
		dispatcher: NewDispatcher(cfg, o.httpClient, logger),
		poller:     NewPoller(cfg, o.httpClient, logger, o.metrics),
		generator:  o.generator,
		observer:   o.observer,
		metrics:    o.metrics,
		locks:      newRunLocks(),
		logger:     logger,
	}
}

// Inventory runs the inventory extraction pipeline
func (c *Client) Inventory(ctx context.Context, in Inputs) ([]types.InventoryItem, error) {
	var items []types.InventoryItem
	err := c.run(ctx, KindInventory, in, func(ctx context.Context) (string, error) {
		raw, err := c.execute(ctx, KindInventory, in)
		if err != nil {
			return "", err
		}
		items, err = normalize.Inventory(raw)
		return outcomeSuccess, err
	})
	return items, err
}

// Recipes runs the recipe pipeline. Without an engine it asks the LLM
// directly, and without an API key it returns a placeholder plan.
func (c *Client) Recipes(ctx context.Context, in Inputs) (types.RecipePlan, error) {
	var plan types.RecipePlan
	err := c.run(ctx, KindRecipes, in, func(ctx context.Context) (string, error) {
		if !c.cfg.Configured() {
			var outcome string
			var err error
			plan, outcome, err = c.directRecipes(ctx, in)
			return outcome, err
		}
		raw, err := c.execute(ctx, KindRecipes, in)
		if err != nil {
			return "", err
		}
		plan, err = normalize.Plan(raw)
		return outcomeSuccess, err
	})
	return plan, err
}

// ShoppingList runs the shopping list pipeline
func (c *Client) ShoppingList(ctx context.Context, in Inputs) ([]types.ShoppingListItem, error) {
	var items []types.ShoppingListItem
	err := c.run(ctx, KindShopping, in, func(ctx context.Context) (string, error) {
		raw, err := c.execute(ctx, KindShopping, in)
		if err != nil {
			return "", err
		}
		items, err = normalize.ShoppingList(raw)
		return outcomeSuccess, err
	})
	return items, err
}

// Full runs the combined pipeline
func (c *Client) Full(ctx context.Context, in Inputs) (types.FullRun, error) {
	var result types.FullRun
	err := c.run(ctx, KindMain, in, func(ctx context.Context) (string, error) {
		raw, err := c.execute(ctx, KindMain, in)
		if err != nil {
			return "", err
		}
		result, err = normalize.Full(raw)
		return outcomeSuccess, err
	})
	return result, err
}

// Await polls an execution of kind started elsewhere and returns its raw output
func (c *Client) Await(ctx context.Context, kind Kind, executionID string) (any, error) {
	if !c.cfg.Configured() {
		return nil, ErrEngineNotConfigured
	}
	return c.poller.Poll(ctx, kind, executionID)
}

const (
	outcomeSuccess     = "success"
	outcomeFallback    = "llm_fallback"
	outcomePlaceholder = "placeholder"
)

// run holds the (user, kind) guard for the duration of fn and records the outcome
func (c *Client) run(ctx context.Context, kind Kind, in Inputs, fn func(context.Context) (string, error)) error {
	if in.UserID == "" {
		return ErrMissingUserID
	}
	release, ok := c.locks.tryLock(lockKey(in.UserID, kind))
	if !ok {
		return ErrRunInProgress
	}
	defer release()

	start := time.Now()
	outcome, err := fn(ctx)
	if err != nil {
		outcome = errorOutcome(err)
		c.logger.Error("pipeline run failed", "kind", kind, "user_id", in.UserID, "outcome", outcome, "error", err)
	} else {
		c.logger.Info("pipeline run finished", "kind", kind, "user_id", in.UserID, "outcome", outcome,
			"elapsed", time.Since(start))
	}
	c.metrics.observeRun(kind, outcome, time.Since(start))
	return err
}

// execute triggers kind and waits for the execution when the engine answers asynchronously
func (c *Client) execute(ctx context.Context, kind Kind, in Inputs) (any, error) {
	result, err := c.dispatcher.Trigger(ctx, kind, in)
	if err != nil {
		return nil, err
	}

	switch r := result.(type) {
	case Inline:
		return r.Output, nil
	case Async:
		c.logger.Info("waiting for execution", "kind", kind, "execution_id", r.ExecutionID, "state", r.State)
		if c.observer != nil {
			c.observer.ExecutionStarted(ctx, in.UserID, kind, r.ExecutionID)
		}
		return c.poller.Poll(ctx, kind, r.ExecutionID)
	}
	return nil, fmt.Errorf("unexpected trigger result %T", result)
}

func (c *Client) directRecipes(ctx context.Context, in Inputs) (types.RecipePlan, string, error) {
	input := llm.RecipeInput{
		Inventory:            in.Inventory,
		SkillLevel:           in.SkillLevel,
		AvailableTimeMinutes: in.AvailableTimeMinutes,
		DietPreferences:      in.DietPreferences,
		Allergies:            in.Allergies,
	}
	if input.SkillLevel == "" {
		input.SkillLevel = defaultSkillLevel
	}
	if input.AvailableTimeMinutes <= 0 {
		input.AvailableTimeMinutes = defaultAvailableTime
	}

	if c.generator == nil {
		c.logger.Warn("no workflow engine or LLM key configured, returning placeholder plan", "user_id", in.UserID)
		return llm.PlaceholderPlan(input), outcomePlaceholder, nil
	}

	prompt, err := llm.BuildRecipePrompt(input)
	if err != nil {
		return types.RecipePlan{}, "", fmt.Errorf("failed to build recipe prompt: %w", err)
	}
	text, err := c.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return types.RecipePlan{}, "", &DispatchError{Kind: KindRecipes, Err: err}
	}
	plan, err := normalize.Plan(text)
	return plan, outcomeFallback, err
}

func errorOutcome(err error) string {
	var (
		dispatchErr *DispatchError
		failedErr   *ExecutionFailedError
		timeoutErr  *TimeoutError
		normErr     *normalize.NormalizationError
	)
	switch {
	case errors.As(err, &dispatchErr):
		return "dispatch_error"
	case errors.As(err, &failedErr):
		return "failed"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &normErr):
		return "normalization_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrEngineNotConfigured):
		return "not_configured"
	}
	return "error"
}
