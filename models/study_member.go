package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/emalab/pingflow/utils"
)

// StudyRole names a researcher's privilege level on a study. Lower rank
// means more privilege; developer outranks everything.
type StudyRole string

const (
	RoleDeveloper StudyRole = "developer"
	RoleOwner     StudyRole = "owner"
	RoleEditor    StudyRole = "editor"
	RoleViewer    StudyRole = "viewer"
)

// String returns the string representation of the role
func (r StudyRole) String() string {
	return string(r)
}

// Valid checks if the role is valid
func (r StudyRole) Valid() bool {
	switch r {
	case RoleDeveloper, RoleOwner, RoleEditor, RoleViewer:
		return true
	default:
		return false
	}
}

// Rank returns the privilege rank of the role (lower is more privileged)
func (r StudyRole) Rank() int {
	switch r {
	case RoleDeveloper:
		return 0
	case RoleOwner:
		return 1
	case RoleEditor:
		return 2
	case RoleViewer:
		return 3
	default:
		return int(^uint(0) >> 1)
	}
}

// Allows reports whether a holder of this role may act at the given minimum role
func (r StudyRole) Allows(minimum StudyRole) bool {
	return r.Valid() && r.Rank() <= minimum.Rank()
}

// Scan implements the sql.Scanner interface for StudyRole
func (r *StudyRole) Scan(value any) error {
	if value == nil {
		*r = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*r = StudyRole(v)
	case []byte:
		*r = StudyRole(string(v))
	default:
		return fmt.Errorf("cannot scan %T into StudyRole", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for StudyRole
func (r StudyRole) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid StudyRole: %s", r)
	}
	return string(r), nil
}

// StudyMember grants an account a role on a study.
type StudyMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID uint      `gorm:"not null;uniqueIndex:uk_study_members_account_study;index:idx_study_members_account_id" json:"account_id"`
	StudyID   uint      `gorm:"not null;uniqueIndex:uk_study_members_account_study;index:idx_study_members_study_id" json:"study_id"`
	Role      StudyRole `gorm:"size:32;not null" json:"role"`

	CreatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index:idx_study_members_deleted_at" json:"-"`

	// Relations
	Account *Account `gorm:"foreignKey:AccountID;references:ID" json:"account,omitempty"`
	Study   *Study   `gorm:"foreignKey:StudyID;references:ID" json:"study,omitempty"`
}

func (StudyMember) TableName() string {
	return "study_members"
}

// BeforeCreate is called before creating a new record
func (m *StudyMember) BeforeCreate(tx *gorm.DB) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = utils.UTCNow()
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (m *StudyMember) BeforeUpdate(tx *gorm.DB) error {
	m.UpdatedAt = utils.UTCNow()
	return nil
}

// StudyMemberFilter represents filter criteria for membership queries
type StudyMemberFilter struct {
	ID        *uint
	AccountID *uint
	StudyID   *uint
	Role      *StudyRole
}
