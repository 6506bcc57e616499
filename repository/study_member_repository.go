// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/utils"
	"gorm.io/gorm"
)

// StudyMemberRepositoryImpl implements the StudyMemberRepository interface
type StudyMemberRepositoryImpl struct {
	*BaseRepository[models.StudyMember, models.StudyMemberFilter]
}

// NewStudyMemberRepository creates a new study member repository
func NewStudyMemberRepository(db *gorm.DB) StudyMemberRepository {
	return &StudyMemberRepositoryImpl{
		BaseRepository: NewBaseRepository[models.StudyMember, models.StudyMemberFilter](db),
	}
}

// ByAccountAndStudy retrieves the membership row for an account in a study
func (r *StudyMemberRepositoryImpl) ByAccountAndStudy(ctx context.Context, accountID, studyID uint) (*models.StudyMember, error) {
	filter := models.StudyMemberFilter{AccountID: &accountID, StudyID: &studyID}
	members, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find study member: %w", err)
	}

	if len(members) == 0 {
		return nil, nil
	}

	return members[0], nil
}

// ListByStudy retrieves all members of a study with their accounts preloaded
func (r *StudyMemberRepositoryImpl) ListByStudy(ctx context.Context, studyID uint) ([]*models.StudyMember, error) {
	db := r.getDB(ctx)

	var members []*models.StudyMember
	err := db.Where("study_id = ?", studyID).
		Order("created_at ASC").
		Preload("Account").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list study members: %w", err)
	}

	return members, nil
}

// UpdateRole changes the role of a membership
func (r *StudyMemberRepositoryImpl) UpdateRole(ctx context.Context, id uint, role models.StudyRole) error {
	db := r.getDB(ctx)
	return db.Model(&models.StudyMember{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"role":       role,
			"updated_at": utils.UTCNow(),
		}).Error
}

// Remove soft-deletes a membership
func (r *StudyMemberRepositoryImpl) Remove(ctx context.Context, id uint) error {
	return r.softDeleteByID(ctx, id)
}

// ByFilter retrieves study members based on filter criteria
func (r *StudyMemberRepositoryImpl) ByFilter(ctx context.Context, filter models.StudyMemberFilter, orderBy string, limit, offset int) ([]*models.StudyMember, error) {
	db := r.getDB(ctx)

	var members []*models.StudyMember
	query := r.applyFilter(db, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&members).Error
	if err != nil {
		return nil, err
	}

	return members, nil
}

// Count returns the number of study members matching the filter
func (r *StudyMemberRepositoryImpl) Count(ctx context.Context, filter models.StudyMemberFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.StudyMember{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any study member matching the filter exists
func (r *StudyMemberRepositoryImpl) Exists(ctx context.Context, filter models.StudyMemberFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *StudyMemberRepositoryImpl) applyFilter(db *gorm.DB, filter models.StudyMemberFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.AccountID != nil {
		db = db.Where("account_id = ?", *filter.AccountID)
	}
	if filter.StudyID != nil {
		db = db.Where("study_id = ?", *filter.StudyID)
	}
	if filter.Role != nil {
		db = db.Where("role = ?", *filter.Role)
	}

	return db
}
