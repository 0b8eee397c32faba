package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/model"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/pipeline"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/types"
)

func setupRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.PipelineRun{}))
	return db
}

func TestRunRecorder(t *testing.T) {
	ctx := context.Background()

	t.Run("should open and close a run", func(t *testing.T) {
		db := setupRunDB(t)
		rec := NewRunRecorder(db, nil)

		id, err := rec.Start(ctx, "u1", pipeline.KindRecipes)
		require.NoError(t, err)
		rec.ExecutionStarted(ctx, "u1", pipeline.KindRecipes, "exec-1")
		require.NoError(t, rec.Finish(ctx, id, nil, 1500*time.Millisecond))

		var run model.PipelineRun
		require.NoError(t, db.First(&run, "id = ?", id).Error)
		assert.Equal(t, model.RunSuccess, run.State)
		assert.Equal(t, "exec-1", run.ExecutionID)
		assert.Equal(t, int64(1500), run.DurationMS)
		assert.Empty(t, run.Error)
	})

	t.Run("should attach the execution id to the run named in the context", func(t *testing.T) {
		db := setupRunDB(t)
		rec := NewRunRecorder(db, nil)
		stale := model.PipelineRun{
			UserID: "u1", Kind: "recipes", State: model.RunRunning, ExecutionID: "exec-old",
			CreatedAt: time.Now().Add(-time.Hour),
		}
		require.NoError(t, db.Create(&stale).Error)

		id, err := rec.Start(ctx, "u1", pipeline.KindRecipes)
		require.NoError(t, err)
		rec.ExecutionStarted(pipeline.WithRunID(ctx, id.String()), "u1", pipeline.KindRecipes, "exec-new")

		var fresh model.PipelineRun
		require.NoError(t, db.First(&fresh, "id = ?", id).Error)
		assert.Equal(t, "exec-new", fresh.ExecutionID)
		require.NoError(t, db.First(&stale, "id = ?", stale.ID).Error)
		assert.Equal(t, "exec-old", stale.ExecutionID)
	})

	t.Run("should only touch the newest open run without a run id", func(t *testing.T) {
		db := setupRunDB(t)
		rec := NewRunRecorder(db, nil)
		stale := model.PipelineRun{
			UserID: "u1", Kind: "recipes", State: model.RunRunning, ExecutionID: "exec-old",
			CreatedAt: time.Now().Add(-time.Hour),
		}
		require.NoError(t, db.Create(&stale).Error)
		id, err := rec.Start(ctx, "u1", pipeline.KindRecipes)
		require.NoError(t, err)

		rec.ExecutionStarted(ctx, "u1", pipeline.KindRecipes, "exec-new")

		var fresh model.PipelineRun
		require.NoError(t, db.First(&fresh, "id = ?", id).Error)
		assert.Equal(t, "exec-new", fresh.ExecutionID)
		require.NoError(t, db.First(&stale, "id = ?", stale.ID).Error)
		assert.Equal(t, "exec-old", stale.ExecutionID)
	})

	t.Run("should map errors to states", func(t *testing.T) {
		tests := []struct {
			err      error
			expected string
		}{
			{&pipeline.ExecutionFailedError{ExecutionID: "e", State: "KILLED"}, model.RunFailed},
			{&pipeline.TimeoutError{ExecutionID: "e", Attempts: 60}, model.RunTimedOut},
			{pipeline.ErrRunInProgress, model.RunError},
			{errors.New("boom"), model.RunError},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.expected, runState(tt.err))
		}
	})

	t.Run("should list newest first with a capped limit", func(t *testing.T) {
		db := setupRunDB(t)
		rec := NewRunRecorder(db, nil)
		base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		for i, kind := range []string{"inventory", "recipes", "shopping"} {
			require.NoError(t, db.Create(&model.PipelineRun{
				UserID: "u1", Kind: kind, State: model.RunSuccess, CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}).Error)
		}
		require.NoError(t, db.Create(&model.PipelineRun{UserID: "u2", Kind: "main", State: model.RunSuccess}).Error)

		runs, err := rec.ListForUser(ctx, "u1", 2)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, "shopping", runs[0].Kind)
		assert.Equal(t, "recipes", runs[1].Kind)

		runs, err = rec.ListForUser(ctx, "nobody", 0)
		require.NoError(t, err)
		assert.NotNil(t, runs)
		assert.Empty(t, runs)
	})
}

func TestKitchenServiceTracksRuns(t *testing.T) {
	ctx := context.Background()
	db := setupRunDB(t)
	rec := NewRunRecorder(db, nil)
	p := &fakePipelines{err: &pipeline.ExecutionFailedError{ExecutionID: "e", State: "FAILED"}}
	svc, _ := newKitchen(t, p, WithRunTracker(rec))

	_, err := svc.BuildShoppingList(ctx, "u1", types.ShoppingRequest{})
	require.Error(t, err)

	runs, err := rec.ListForUser(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "shopping", runs[0].Kind)
	assert.Equal(t, model.RunFailed, runs[0].State)
	assert.Contains(t, runs[0].Error, "ended in state FAILED")
}

func TestKitchenServiceTagsRunID(t *testing.T) {
	ctx := context.Background()
	db := setupRunDB(t)
	rec := NewRunRecorder(db, nil)
	// dated ahead so the newest-row lookup alone would pick it
	stale := model.PipelineRun{
		UserID: "u1", Kind: "shopping", State: model.RunRunning, ExecutionID: "exec-old",
		CreatedAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(&stale).Error)

	p := &fakePipelines{shopping: []types.ShoppingListItem{{Name: "milk"}}}
	p.onRun = func(ctx context.Context) {
		rec.ExecutionStarted(ctx, "u1", pipeline.KindShopping, "exec-new")
	}
	svc, _ := newKitchen(t, p, WithRunTracker(rec))

	_, err := svc.BuildShoppingList(ctx, "u1", types.ShoppingRequest{})
	require.NoError(t, err)

	runs, err := rec.ListForUser(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	byExecution := map[string]string{}
	for _, r := range runs {
		byExecution[r.ExecutionID] = r.State
	}
	assert.Equal(t, model.RunSuccess, byExecution["exec-new"])
	assert.Equal(t, model.RunRunning, byExecution["exec-old"])
}
