// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/utils"
	"gorm.io/gorm"
)

// PingTemplateRepositoryImpl implements the PingTemplateRepository interface
type PingTemplateRepositoryImpl struct {
	*BaseRepository[models.PingTemplate, models.PingTemplateFilter]
}

// NewPingTemplateRepository creates a new ping template repository
func NewPingTemplateRepository(db *gorm.DB) PingTemplateRepository {
	return &PingTemplateRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PingTemplate, models.PingTemplateFilter](db),
	}
}

// ListByStudy retrieves all non-deleted templates of a study
func (r *PingTemplateRepositoryImpl) ListByStudy(ctx context.Context, studyID uint) ([]*models.PingTemplate, error) {
	filter := models.PingTemplateFilter{StudyID: &studyID}
	templates, err := r.ByFilter(ctx, filter, "created_at ASC", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates by study: %w", err)
	}

	return templates, nil
}

// Update updates a ping template
func (r *PingTemplateRepositoryImpl) Update(ctx context.Context, template models.PingTemplate) error {
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

	template.UpdatedAt = utils.UTCNow()
	err = db.Save(&template).Error
	if err != nil {
		return err
	}

	return nil
}

// SoftDelete marks a template deleted
func (r *PingTemplateRepositoryImpl) SoftDelete(ctx context.Context, id uint) error {
	return r.softDeleteByID(ctx, id)
}

// ByFilter retrieves ping templates based on filter criteria
func (r *PingTemplateRepositoryImpl) ByFilter(ctx context.Context, filter models.PingTemplateFilter, orderBy string, limit, offset int) ([]*models.PingTemplate, error) {
	db := r.getDB(ctx)

	var templates []*models.PingTemplate
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

	err := query.Find(&templates).Error
	if err != nil {
		return nil, err
	}

	return templates, nil
}

// Count returns the number of ping templates matching the filter
func (r *PingTemplateRepositoryImpl) Count(ctx context.Context, filter models.PingTemplateFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.PingTemplate{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any ping template matching the filter exists
func (r *PingTemplateRepositoryImpl) Exists(ctx context.Context, filter models.PingTemplateFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *PingTemplateRepositoryImpl) applyFilter(db *gorm.DB, filter models.PingTemplateFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.StudyID != nil {
		db = db.Where("study_id = ?", *filter.StudyID)
	}
	if filter.Name != nil {
		db = db.Where("name ILIKE ?", "%"+*filter.Name+"%")
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}

	return db
}
