package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CREATE TABLE public.pipeline_runs (
//     id              UUID PRIMARY KEY,
//     started_at      TIMESTAMPTZ NOT NULL,
//     finished_at     TIMESTAMPTZ,
//     status          TEXT NOT NULL,
//     original_count  BIGINT,
//     final_count     BIGINT,
//     removed_count   BIGINT,
//     log             JSONB
// );

const (
	PipelineStatusRunning   = "RUNNING"
	PipelineStatusSucceeded = "SUCCEEDED"
	PipelineStatusFailed    = "FAILED"
)

type PipelineRun struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	StartedAt     time.Time         `gorm:"column:started_at;not null" json:"started_at"`
	FinishedAt    *time.Time        `gorm:"column:finished_at" json:"finished_at"`
	Status        string            `gorm:"column:status;type:text;not null" json:"status"`
	OriginalCount int64             `gorm:"column:original_count" json:"original_count"`
	FinalCount    int64             `gorm:"column:final_count" json:"final_count"`
	RemovedCount  int64             `gorm:"column:removed_count" json:"removed_count"`
	Log           datatypes.JSONMap `gorm:"column:log;type:jsonb" json:"log"`
}

func (PipelineRun) TableName() string {
	return "pipeline_runs"
}
