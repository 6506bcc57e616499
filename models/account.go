// Package models contains domain entities and business models for the ping scheduling engine
package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/emalab/pingflow/utils"
)

// Account represents a researcher who administers studies.
type Account struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Email        string `gorm:"size:255;not null;uniqueIndex:uk_accounts_email" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"` // Never serialize password hash

	FirstName   string  `gorm:"size:255;not null" json:"first_name"`
	LastName    string  `gorm:"size:255;not null" json:"last_name"`
	Institution *string `gorm:"size:255" json:"institution,omitempty"`

	CreatedAt   time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_accounts_created_at" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	DeletedAt   gorm.DeletedAt `gorm:"index:idx_accounts_deleted_at" json:"-"`

	// Relations
	Memberships []StudyMember `gorm:"foreignKey:AccountID" json:"memberships,omitempty"`
}

func (Account) TableName() string {
	return "accounts"
}

// BeforeCreate is called before creating a new record
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = utils.UTCNow()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (a *Account) BeforeUpdate(tx *gorm.DB) error {
	a.UpdatedAt = utils.UTCNow()
	return nil
}

// FullName returns the display name of the researcher
func (a *Account) FullName() string {
	return a.FirstName + " " + a.LastName
}

// AccountFilter represents filter criteria for account queries
type AccountFilter struct {
	ID            *uint
	Email         *string
	Institution   *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
