package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/emalab/pingflow/utils"
)

// Study represents a research study that participants enroll in.
type Study struct {
	ID uint `gorm:"primaryKey" json:"id"`

	PublicName   string `gorm:"size:255;not null" json:"public_name"`
	InternalName string `gorm:"size:255;not null" json:"internal_name"`

	// Code is the signup code participants present to join the study.
	Code string `gorm:"size:32;not null;uniqueIndex:uk_studies_code" json:"code"`

	// ContactMessage is shown to participants asking who to reach about the study.
	ContactMessage *string `gorm:"type:text" json:"contact_message,omitempty"`

	CreatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_studies_created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index:idx_studies_deleted_at" json:"-"`

	// Relations
	Members       []StudyMember  `gorm:"foreignKey:StudyID" json:"members,omitempty"`
	PingTemplates []PingTemplate `gorm:"foreignKey:StudyID" json:"ping_templates,omitempty"`
	Enrollments   []Enrollment   `gorm:"foreignKey:StudyID" json:"enrollments,omitempty"`
}

func (Study) TableName() string {
	return "studies"
}

// BeforeCreate is called before creating a new record
func (s *Study) BeforeCreate(tx *gorm.DB) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = utils.UTCNow()
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (s *Study) BeforeUpdate(tx *gorm.DB) error {
	s.UpdatedAt = utils.UTCNow()
	return nil
}

// StudyFilter represents filter criteria for study queries
type StudyFilter struct {
	ID            *uint
	Code          *string
	PublicName    *string
	InternalName  *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
