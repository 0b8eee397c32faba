package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/config"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/normalize"
)

// JobState is the lifecycle state of one execution as seen by the poller
type JobState string

const (
	JobRunning  JobState = "RUNNING"
	JobSuccess  JobState = "SUCCESS"
	JobFailed   JobState = "FAILED"
	JobTimedOut JobState = "TIMED_OUT"
)

// engine states that end an execution
var (
	successStates = map[string]bool{"SUCCESS": true, "WARNING": true}
	failureStates = map[string]bool{"FAILED": true, "KILLED": true, "CANCELLED": true}
)

type executionStatus struct {
	State struct {
		Current string `json:"current"`
	} `json:"state"`
	Outputs map[string]any `json:"outputs"`
}

// Poller waits for an execution to reach a terminal state
type Poller struct {
	cfg         config.KestraConfig
	client      *http.Client
	logger      *slog.Logger
	metrics     *Metrics
	interval    time.Duration
	maxAttempts int
}

// NewPoller creates a Poller using the configured interval and attempt budget
func NewPoller(cfg config.KestraConfig, client *http.Client, logger *slog.Logger, metrics *Metrics) *Poller {
	if client == nil {
		client = newHTTPClient(cfg)
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Poller{
		cfg:         cfg,
		client:      client,
		logger:      logger,
		metrics:     metrics,
		interval:    cfg.PollInterval,
		maxAttempts: cfg.PollMaxAttempts,
	}
	if p.interval <= 0 {
		p.interval = config.DefaultPollInterval
	}
	if p.maxAttempts <= 0 {
		p.maxAttempts = config.DefaultPollMaxAttempts
	}
	return p
}

// Poll checks the execution of kind once per interval until it succeeds,
// fails, the attempt budget runs out or ctx is done. A failed status request
// only costs one attempt.
func (p *Poller) Poll(ctx context.Context, kind Kind, executionID string) (any, error) {
	statusURL := executionsURL(p.cfg) + "/" + url.PathEscape(executionID)
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		status, err := p.fetch(ctx, statusURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger.Warn("execution poll failed", "execution_id", executionID, "attempt", attempt, "error", err)
			timer.Reset(p.interval)
			continue
		}

		state := status.State.Current
		switch {
		case successStates[state]:
			p.metrics.observePolls(attempt)
			return p.output(kind, executionID, status)
		case failureStates[state]:
			p.metrics.observePolls(attempt)
			p.logger.Error("execution failed", "execution_id", executionID, "state", state, "attempt", attempt)
			return nil, &ExecutionFailedError{ExecutionID: executionID, State: state}
		}

		p.logger.Debug("execution still running", "execution_id", executionID, "state", state, "attempt", attempt)
		timer.Reset(p.interval)
	}

	p.metrics.observePolls(p.maxAttempts)
	p.logger.Error("execution timed out", "execution_id", executionID, "attempts", p.maxAttempts)
	return nil, &TimeoutError{ExecutionID: executionID, Attempts: p.maxAttempts}
}

func (p *Poller) fetch(ctx context.Context, statusURL string) (*executionStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return nil, err
	}
	authorize(req, p.cfg)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var status executionStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("failed to decode execution: %w", err)
	}
	return &status, nil
}

// output picks the raw result of a successful execution
func (p *Poller) output(kind Kind, executionID string, status *executionStatus) (any, error) {
	if out, ok := extractOutput(map[string]any{"outputs": status.Outputs}); ok {
		return out, nil
	}
	if len(status.Outputs) > 0 {
		return status.Outputs, nil
	}
	p.logger.Error("execution finished without output", "kind", kind, "execution_id", executionID)
	return nil, &normalize.NormalizationError{
		Shape:  kind.Shape(),
		Reason: fmt.Sprintf("execution %s completed without output", executionID),
	}
}
