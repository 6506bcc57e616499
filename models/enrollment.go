package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/emalab/pingflow/utils"
)

// Enrollment represents a participant's membership in a study. The tz and
// start_date pair anchors every schedule expansion for the participant.
type Enrollment struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	StudyID uint `gorm:"not null;index:idx_enrollments_study_id" json:"study_id"`

	// StudyPID is the participant label researchers see (never the Telegram identity).
	StudyPID string `gorm:"size:255;not null;index:idx_enrollments_study_pid" json:"study_pid"`

	// TZ is the participant's IANA zone name, e.g. "America/Los_Angeles".
	TZ string `gorm:"size:50;not null" json:"tz"`

	// StartDate is day 0 of the participant's schedule, stored at local midnight.
	StartDate time.Time `gorm:"not null" json:"start_date"`

	Enrolled bool `gorm:"not null;default:true;index:idx_enrollments_enrolled" json:"enrolled"`

	// Telegram linking
	TelegramID               *string    `gorm:"size:100;index:idx_enrollments_telegram_id" json:"telegram_id,omitempty"`
	TelegramLinkCode         *string    `gorm:"size:255;index:idx_enrollments_telegram_link_code" json:"telegram_link_code,omitempty"`
	TelegramLinkCodeExpireTs *time.Time `json:"telegram_link_code_expire_ts,omitempty"`
	TelegramLinkCodeUsed     bool       `gorm:"not null;default:false" json:"telegram_link_code_used"`

	// PRCompleted is the participant's completion proportion; reporting on it
	// lives elsewhere, the value is only carried into message substitution.
	PRCompleted float64 `gorm:"not null;default:0" json:"pr_completed"`

	CreatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_enrollments_created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index:idx_enrollments_deleted_at" json:"-"`

	// Relations
	Study *Study `gorm:"foreignKey:StudyID;references:ID" json:"study,omitempty"`
	Pings []Ping `gorm:"foreignKey:EnrollmentID" json:"pings,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// BeforeCreate is called before creating a new record
func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = utils.UTCNow()
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (e *Enrollment) BeforeUpdate(tx *gorm.DB) error {
	e.UpdatedAt = utils.UTCNow()
	return nil
}

// Location resolves the enrollment's zone name.
func (e *Enrollment) Location() (*time.Location, error) {
	return time.LoadLocation(e.TZ)
}

// LinkCodeRedeemable reports whether the Telegram link code can still be used.
func (e *Enrollment) LinkCodeRedeemable(now time.Time) bool {
	if e.TelegramLinkCode == nil || e.TelegramLinkCodeUsed {
		return false
	}
	if e.TelegramLinkCodeExpireTs != nil && !now.Before(*e.TelegramLinkCodeExpireTs) {
		return false
	}
	return true
}

// IsLinked reports whether a Telegram account has been attached.
func (e *Enrollment) IsLinked() bool {
	return e.TelegramID != nil && *e.TelegramID != ""
}

// EnrollmentFilter represents filter criteria for enrollment queries
type EnrollmentFilter struct {
	ID                   *uint
	StudyID              *uint
	StudyPID             *string
	TelegramID           *string
	TelegramLinkCode     *string
	TelegramLinkCodeUsed *bool
	Enrolled             *bool
	CreatedAfter         *time.Time
	CreatedBefore        *time.Time
}
