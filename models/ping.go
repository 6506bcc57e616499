package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/emalab/pingflow/utils"
)

// Ping is one concrete scheduled delivery for one enrollment, materialized
// from a template window. The (enrollment_id, ping_template_id, day_num,
// scheduled_ts) tuple is its identity: re-materialization can never mint a
// second row for the same occurrence.
type Ping struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	StudyID        uint `gorm:"not null;index:idx_pings_study_id" json:"study_id"`
	PingTemplateID uint `gorm:"not null;uniqueIndex:uk_pings_identity;index:idx_pings_ping_template_id" json:"ping_template_id"`
	EnrollmentID   uint `gorm:"not null;uniqueIndex:uk_pings_identity;index:idx_pings_enrollment_id" json:"enrollment_id"`

	// DayNum is the window's start day offset from the enrollment start date.
	DayNum int `gorm:"not null;uniqueIndex:uk_pings_identity" json:"day_num"`

	// ScheduledTs is the UTC dispatch instant picked at materialization time.
	// It is authoritative: random placements are never recomputed.
	ScheduledTs time.Time  `gorm:"not null;uniqueIndex:uk_pings_identity;index:idx_pings_scheduled_ts" json:"scheduled_ts"`
	ReminderTs  *time.Time `json:"reminder_ts,omitempty"`
	ExpireTs    *time.Time `gorm:"index:idx_pings_expire_ts" json:"expire_ts,omitempty"`

	PingSent       bool       `gorm:"not null;default:false;index:idx_pings_ping_sent" json:"ping_sent"`
	SentTs         *time.Time `json:"sent_ts,omitempty"`
	ReminderSent   bool       `gorm:"not null;default:false" json:"reminder_sent"`
	ReminderSentTs *time.Time `json:"reminder_sent_ts,omitempty"`

	// ForwardingCode authorizes the participant's click-through redirect.
	ForwardingCode string `gorm:"size:64;not null;uniqueIndex:uk_pings_forwarding_code" json:"-"`

	// Message and URL are copied from the template at materialization; later
	// template edits leave existing pings untouched.
	Message string  `gorm:"type:text;not null" json:"message"`
	URL     *string `gorm:"size:2048" json:"url,omitempty"`

	FirstClickedTs *time.Time `json:"first_clicked_ts,omitempty"`
	LastClickedTs  *time.Time `json:"last_clicked_ts,omitempty"`

	CreatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_pings_created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index:idx_pings_deleted_at" json:"-"`

	// Relations
	Study        *Study        `gorm:"foreignKey:StudyID;references:ID" json:"study,omitempty"`
	PingTemplate *PingTemplate `gorm:"foreignKey:PingTemplateID;references:ID" json:"ping_template,omitempty"`
	Enrollment   *Enrollment   `gorm:"foreignKey:EnrollmentID;references:ID" json:"enrollment,omitempty"`
}

func (Ping) TableName() string {
	return "pings"
}

// BeforeCreate is called before creating a new record
func (p *Ping) BeforeCreate(tx *gorm.DB) error {
	if p.ForwardingCode == "" {
		code, err := utils.GenerateForwardingCode()
		if err != nil {
			return err
		}
		p.ForwardingCode = code
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (p *Ping) BeforeUpdate(tx *gorm.DB) error {
	p.UpdatedAt = utils.UTCNow()
	return nil
}

// IsExpired reports whether the ping's expiry has passed.
func (p *Ping) IsExpired(now time.Time) bool {
	return p.ExpireTs != nil && !now.Before(*p.ExpireTs)
}

// CanSend reports whether the ping may still transition to sent.
func (p *Ping) CanSend(now time.Time) bool {
	return !p.PingSent && !p.IsExpired(now)
}

// CanRemind reports whether the ping may still transition to reminded.
func (p *Ping) CanRemind(now time.Time) bool {
	return p.PingSent && !p.ReminderSent && p.ReminderTs != nil && !p.IsExpired(now)
}

// PingFilter represents filter criteria for ping queries
type PingFilter struct {
	ID              *uint
	StudyID         *uint
	PingTemplateID  *uint
	EnrollmentID    *uint
	DayNum          *int
	PingSent        *bool
	ReminderSent    *bool
	ForwardingCode  *string
	ScheduledAfter  *time.Time
	ScheduledBefore *time.Time
}
