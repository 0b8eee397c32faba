package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Run states. RUNNING rows are open; the others are terminal.
const (
	RunRunning  = "RUNNING"
	RunSuccess  = "SUCCESS"
	RunFailed   = "FAILED"
	RunTimedOut = "TIMED_OUT"
	RunError    = "ERROR"
)

// PipelineRun is the audit record of one pipeline call
type PipelineRun struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string    `gorm:"size:128;not null;index:idx_pipeline_runs_user_created,priority:1" json:"user_id"`
	Kind        string    `gorm:"size:32;not null" json:"kind"`
	State       string    `gorm:"size:16;not null" json:"state"`
	ExecutionID string    `gorm:"size:128" json:"execution_id,omitempty"`
	Error       string    `gorm:"type:text" json:"error,omitempty"`
	DurationMS  int64     `gorm:"column:duration_ms" json:"duration_ms"`
	CreatedAt   time.Time `gorm:"index:idx_pipeline_runs_user_created,priority:2" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (PipelineRun) TableName() string {
	return "pipeline_runs"
}

// BeforeCreate assigns an id when the caller did not
func (r *PipelineRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
