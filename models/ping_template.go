package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/emalab/pingflow/utils"
)

// PingTemplate defines the message and schedule from which pings are
// materialized for every enrollment of its study.
type PingTemplate struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	StudyID uint `gorm:"not null;index:idx_ping_templates_study_id" json:"study_id"`

	Name string `gorm:"size:255;not null" json:"name"`

	// Message is the body with literal placeholders (<URL>, <PID>, ...).
	Message string `gorm:"type:text;not null" json:"message"`

	// URL is the survey link, itself subject to placeholder substitution.
	URL     *string `gorm:"size:2048" json:"url,omitempty"`
	URLText *string `gorm:"size:255" json:"url_text,omitempty"`

	// ReminderLatency and ExpireLatency offset from the scheduled instant;
	// nil means no reminder / never expires.
	ReminderLatency *Latency `gorm:"type:bigint" json:"reminder_latency,omitempty"`
	ExpireLatency   *Latency `gorm:"type:bigint" json:"expire_latency,omitempty"`

	Schedule Schedule `gorm:"type:jsonb;not null" json:"schedule"`

	CreatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_ping_templates_created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index:idx_ping_templates_deleted_at" json:"-"`

	// Relations
	Study *Study `gorm:"foreignKey:StudyID;references:ID" json:"study,omitempty"`
	Pings []Ping `gorm:"foreignKey:PingTemplateID" json:"pings,omitempty"`
}

func (PingTemplate) TableName() string {
	return "ping_templates"
}

// BeforeCreate is called before creating a new record
func (t *PingTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.Schedule == nil {
		t.Schedule = Schedule{}
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = utils.UTCNow()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (t *PingTemplate) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = utils.UTCNow()
	return nil
}

// PingTemplateFilter represents filter criteria for template queries
type PingTemplateFilter struct {
	ID            *uint
	StudyID       *uint
	Name          *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
