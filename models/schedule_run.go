package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/emalab/pingflow/utils"
)

// ScheduleRunStatus represents the outcome of a scheduler sweep
type ScheduleRunStatus string

const (
	ScheduleRunStatusRunning   ScheduleRunStatus = "running"
	ScheduleRunStatusSucceeded ScheduleRunStatus = "succeeded"
	ScheduleRunStatusFailed    ScheduleRunStatus = "failed"
)

// ScheduleRun is the checkpoint record for a scheduler job on one calendar
// date. The unique (job_name, run_date) pair is what makes the daily
// materialization sweep idempotent across restarts and instances.
type ScheduleRun struct {
	ID uint `gorm:"primaryKey" json:"id"`

	JobName string    `gorm:"size:100;not null;uniqueIndex:uk_schedule_runs_job_date" json:"job_name"`
	RunDate time.Time `gorm:"type:date;not null;uniqueIndex:uk_schedule_runs_job_date" json:"run_date"`

	RunID        string            `gorm:"size:64;not null" json:"run_id"`
	Status       ScheduleRunStatus `gorm:"size:16;not null;default:'running'" json:"status"`
	PingsCreated int               `gorm:"not null;default:0" json:"pings_created"`
	Error        *string           `gorm:"type:text" json:"error,omitempty"`

	StartedAt  time.Time  `gorm:"not null" json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func (ScheduleRun) TableName() string {
	return "schedule_runs"
}

// BeforeCreate is called before creating a new record
func (r *ScheduleRun) BeforeCreate(tx *gorm.DB) error {
	if r.Status == "" {
		r.Status = ScheduleRunStatusRunning
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = utils.UTCNow()
	}
	return nil
}

// ScheduleRunFilter represents filter criteria for schedule run queries
type ScheduleRunFilter struct {
	ID      *uint
	JobName *string
	RunDate *time.Time
	Status  *ScheduleRunStatus
}
