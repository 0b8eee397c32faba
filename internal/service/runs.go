package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/model"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/pipeline"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 100
	maxRunError     = 1000
)

// RunRecorder keeps one PipelineRun row per pipeline call
type RunRecorder struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRunRecorder(db *gorm.DB, logger *slog.Logger) *RunRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunRecorder{db: db, logger: logger}
}

// Start opens a RUNNING row
func (r *RunRecorder) Start(ctx context.Context, userID string, kind pipeline.Kind) (uuid.UUID, error) {
	run := model.PipelineRun{
		ID:     uuid.New(),
		UserID: userID,
		Kind:   string(kind),
		State:  model.RunRunning,
	}
	if err := r.db.WithContext(ctx).Create(&run).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to record run start: %w", err)
	}
	return run.ID, nil
}

// Finish closes the row with the state derived from runErr
func (r *RunRecorder) Finish(ctx context.Context, id uuid.UUID, runErr error, elapsed time.Duration) error {
	updates := map[string]any{
		"state":       runState(runErr),
		"duration_ms": elapsed.Milliseconds(),
	}
	if runErr != nil {
		msg := runErr.Error()
		if len(msg) > maxRunError {
			msg = msg[:maxRunError]
		}
		updates["error"] = msg
	}
	err := r.db.WithContext(ctx).Model(&model.PipelineRun{}).Where("id = ?", id).Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to record run end: %w", err)
	}
	return nil
}

// ExecutionStarted attaches the engine execution id to the run named in ctx.
// Without one it picks the newest open run of (userID, kind), so rows left
// RUNNING by an earlier crash keep their own id.
func (r *RunRecorder) ExecutionStarted(ctx context.Context, userID string, kind pipeline.Kind, executionID string) {
	db := r.db.WithContext(ctx)
	runID, err := r.openRun(ctx, userID, kind)
	if err == nil {
		err = db.Model(&model.PipelineRun{}).
			Where("id = ? AND state = ?", runID, model.RunRunning).
			Update("execution_id", executionID).Error
	}
	if err != nil {
		r.logger.Warn("failed to attach execution id", "user_id", userID, "kind", kind,
			"execution_id", executionID, "error", err)
	}
}

func (r *RunRecorder) openRun(ctx context.Context, userID string, kind pipeline.Kind) (uuid.UUID, error) {
	if s, ok := pipeline.RunIDFromContext(ctx); ok {
		id, err := uuid.Parse(s)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid run id %q: %w", s, err)
		}
		return id, nil
	}
	var run model.PipelineRun
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND state = ?", userID, string(kind), model.RunRunning).
		Order("created_at DESC").
		Take(&run).Error
	if err != nil {
		return uuid.Nil, fmt.Errorf("no open run: %w", err)
	}
	return run.ID, nil
}

// ListForUser returns the newest runs first
func (r *RunRecorder) ListForUser(ctx context.Context, userID string, limit int) ([]model.PipelineRun, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}
	if limit > maxRunLimit {
		limit = maxRunLimit
	}
	runs := []model.PipelineRun{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

func runState(err error) string {
	var (
		failedErr  *pipeline.ExecutionFailedError
		timeoutErr *pipeline.TimeoutError
	)
	switch {
	case err == nil:
		return model.RunSuccess
	case errors.As(err, &failedErr):
		return model.RunFailed
	case errors.As(err, &timeoutErr):
		return model.RunTimedOut
	}
	return model.RunError
}
