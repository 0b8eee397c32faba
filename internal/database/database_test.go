package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/config"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/model"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/testdb"
)

const migrationsDir = "../../migrations"

func TestOpenSQLite(t *testing.T) {
	cfg := config.Default()
	cfg.SQLitePath = filepath.Join(t.TempDir(), "runs.db")

	db, err := Open(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, RunMigrations(context.Background(), db, migrationsDir, nil))
	assert.NoError(t, HealthCheck(context.Background(), db))

	run := model.PipelineRun{UserID: "u1", Kind: "recipes", State: model.RunRunning}
	require.NoError(t, db.Create(&run).Error)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", run.ID.String())
}

func TestMigrationFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_b.sql", "0001_a.sql", "0001_a_rollback.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}

	files, err := MigrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_a.sql", "0002_b.sql"}, files)
	assert.Equal(t, "0002", migrationVersion("0002_b.sql"))
}

func TestPostgresMigrations(t *testing.T) {
	dsn := testdb.SetupPostgres(t)
	ctx := context.Background()

	db, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	applied, err := ApplyMigrations(ctx, db, migrationsDir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_create_pipeline_runs.sql"}, applied)

	applied, err = ApplyMigrations(ctx, db, migrationsDir, nil)
	require.NoError(t, err)
	assert.Empty(t, applied)

	_, err = db.ExecContext(ctx, "INSERT INTO pipeline_runs (id, user_id, kind, state) VALUES ('6f1c1bd8-3a5e-4d55-9a43-0b7f1f7c8f10', 'u1', 'main', 'RUNNING')")
	require.NoError(t, err)

	name, err := RollbackLast(ctx, db, migrationsDir)
	require.NoError(t, err)
	assert.Equal(t, "0001_create_pipeline_runs.sql", name)

	var exists bool
	require.NoError(t, db.QueryRowContext(ctx, "SELECT to_regclass('public.pipeline_runs') IS NOT NULL").Scan(&exists))
	assert.False(t, exists)
}
