// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/utils"
	"gorm.io/gorm"
)

// StudyRepositoryImpl implements the StudyRepository interface
type StudyRepositoryImpl struct {
	*BaseRepository[models.Study, models.StudyFilter]
}

// NewStudyRepository creates a new study repository
func NewStudyRepository(db *gorm.DB) StudyRepository {
	return &StudyRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Study, models.StudyFilter](db),
	}
}

// ByCode retrieves a study by its participant signup code
func (r *StudyRepositoryImpl) ByCode(ctx context.Context, code string) (*models.Study, error) {
	filter := models.StudyFilter{Code: &code}
	studies, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find study by code: %w", err)
	}

	if len(studies) == 0 {
		return nil, nil
	}

	return studies[0], nil
}

// ListByAccount retrieves all studies the account is a member of
func (r *StudyRepositoryImpl) ListByAccount(ctx context.Context, accountID uint) ([]*models.Study, error) {
	db := r.getDB(ctx)

	var studies []*models.Study
	err := db.
		Select("studies.*").
		Joins("JOIN study_members ON study_members.study_id = studies.id AND study_members.deleted_at IS NULL").
		Where("study_members.account_id = ?", accountID).
		Order("studies.created_at DESC").
		Find(&studies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list studies by account: %w", err)
	}

	return studies, nil
}

// Update updates a study
func (r *StudyRepositoryImpl) Update(ctx context.Context, study models.Study) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	study.UpdatedAt = utils.UTCNow()
	err = db.Save(&study).Error
	if err != nil {
		return err
	}

	return nil
}

// SoftDelete marks a study deleted
func (r *StudyRepositoryImpl) SoftDelete(ctx context.Context, id uint) error {
	return r.softDeleteByID(ctx, id)
}

// ByFilter retrieves studies based on filter criteria
func (r *StudyRepositoryImpl) ByFilter(ctx context.Context, filter models.StudyFilter, orderBy string, limit, offset int) ([]*models.Study, error) {
	db := r.getDB(ctx)

	var studies []*models.Study
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

	err := query.Find(&studies).Error
	if err != nil {
		return nil, err
	}

	return studies, nil
}

// Count returns the number of studies matching the filter
func (r *StudyRepositoryImpl) Count(ctx context.Context, filter models.StudyFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.Study{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any study matching the filter exists
func (r *StudyRepositoryImpl) Exists(ctx context.Context, filter models.StudyFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *StudyRepositoryImpl) applyFilter(db *gorm.DB, filter models.StudyFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.Code != nil {
		db = db.Where("code = ?", *filter.Code)
	}
	if filter.PublicName != nil {
		db = db.Where("public_name ILIKE ?", "%"+*filter.PublicName+"%")
	}
	if filter.InternalName != nil {
		db = db.Where("internal_name ILIKE ?", "%"+*filter.InternalName+"%")
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}

	return db
}
