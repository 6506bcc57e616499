// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnrollmentRepositoryImpl implements the EnrollmentRepository interface
type EnrollmentRepositoryImpl struct {
	*BaseRepository[models.Enrollment, models.EnrollmentFilter]
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &EnrollmentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Enrollment, models.EnrollmentFilter](db),
	}
}

// ByID retrieves an enrollment with its study preloaded
func (r *EnrollmentRepositoryImpl) ByID(ctx context.Context, id uint) (*models.Enrollment, error) {
	db := r.getDB(ctx)

	var enrollment models.Enrollment
	err := db.Preload("Study").Last(&enrollment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &enrollment, nil
}

// ByStudyAndPID retrieves an enrollment by its participant label within a study
func (r *EnrollmentRepositoryImpl) ByStudyAndPID(ctx context.Context, studyID uint, studyPID string) (*models.Enrollment, error) {
	filter := models.EnrollmentFilter{StudyID: &studyID, StudyPID: &studyPID}
	enrollments, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find enrollment by pid: %w", err)
	}

	if len(enrollments) == 0 {
		return nil, nil
	}

	return enrollments[0], nil
}

// ByLinkCode retrieves the enrollment holding a Telegram link code, used or not.
// Redeemability is the caller's call; unknown codes come back nil.
func (r *EnrollmentRepositoryImpl) ByLinkCode(ctx context.Context, code string) (*models.Enrollment, error) {
	filter := models.EnrollmentFilter{TelegramLinkCode: &code}
	enrollments, err := r.ByFilter(ctx, filter, "created_at DESC", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find enrollment by link code: %w", err)
	}

	if len(enrollments) == 0 {
		return nil, nil
	}

	return enrollments[0], nil
}

// ListByStudy retrieves enrollments of a study with pagination
func (r *EnrollmentRepositoryImpl) ListByStudy(ctx context.Context, studyID uint, limit, offset int) ([]*models.Enrollment, error) {
	filter := models.EnrollmentFilter{StudyID: &studyID}
	return r.ByFilter(ctx, filter, "created_at DESC", limit, offset)
}

// ListActiveEnrolled retrieves every enrolled, non-deleted enrollment across
// all studies. The daily materialization sweep walks this set.
func (r *EnrollmentRepositoryImpl) ListActiveEnrolled(ctx context.Context) ([]*models.Enrollment, error) {
	db := r.getDB(ctx)

	var enrollments []*models.Enrollment
	err := db.
		Select("enrollments.*").
		Joins("JOIN studies ON studies.id = enrollments.study_id AND studies.deleted_at IS NULL").
		Where("enrollments.enrolled = ?", true).
		Order("enrollments.id ASC").
		Preload("Study").
		Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active enrollments: %w", err)
	}

	return enrollments, nil
}

// LockByID retrieves an enrollment under SELECT ... FOR UPDATE. Callers must
// hold an open transaction (WithTransaction); the lock serializes concurrent
// materialization runs for the same enrollment.
func (r *EnrollmentRepositoryImpl) LockByID(ctx context.Context, id uint) (*models.Enrollment, error) {
	db := r.getDB(ctx)

	var enrollment models.Enrollment
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Last(&enrollment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock enrollment %d: %w", id, err)
	}

	return &enrollment, nil
}

// Update updates an enrollment
func (r *EnrollmentRepositoryImpl) Update(ctx context.Context, enrollment models.Enrollment) error {
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

	enrollment.UpdatedAt = utils.UTCNow()
	err = db.Save(&enrollment).Error
	if err != nil {
		return err
	}

	return nil
}

// LinkTelegram attaches a Telegram account to the enrollment and burns the
// link code in the same statement
func (r *EnrollmentRepositoryImpl) LinkTelegram(ctx context.Context, id uint, telegramID string) error {
	db := r.getDB(ctx)
	return db.Model(&models.Enrollment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"telegram_id":             telegramID,
			"telegram_link_code_used": true,
			"updated_at":              utils.UTCNow(),
		}).Error
}

// UnenrollByTelegramID flips enrolled off for every enrollment linked to the
// Telegram account and reports how many rows changed
func (r *EnrollmentRepositoryImpl) UnenrollByTelegramID(ctx context.Context, telegramID string) (int64, error) {
	db := r.getDB(ctx)
	res := db.Model(&models.Enrollment{}).
		Where("telegram_id = ? AND enrolled = ?", telegramID, true).
		Updates(map[string]any{
			"enrolled":   false,
			"updated_at": utils.UTCNow(),
		})
	if res.Error != nil {
		return 0, res.Error
	}

	return res.RowsAffected, nil
}

// SoftDelete marks an enrollment deleted
func (r *EnrollmentRepositoryImpl) SoftDelete(ctx context.Context, id uint) error {
	return r.softDeleteByID(ctx, id)
}

// ByFilter retrieves enrollments based on filter criteria
func (r *EnrollmentRepositoryImpl) ByFilter(ctx context.Context, filter models.EnrollmentFilter, orderBy string, limit, offset int) ([]*models.Enrollment, error) {
	db := r.getDB(ctx)

	var enrollments []*models.Enrollment
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

	query = query.Preload("Study")

	err := query.Find(&enrollments).Error
	if err != nil {
		return nil, err
	}

	return enrollments, nil
}

// Count returns the number of enrollments matching the filter
func (r *EnrollmentRepositoryImpl) Count(ctx context.Context, filter models.EnrollmentFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.Enrollment{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any enrollment matching the filter exists
func (r *EnrollmentRepositoryImpl) Exists(ctx context.Context, filter models.EnrollmentFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *EnrollmentRepositoryImpl) applyFilter(db *gorm.DB, filter models.EnrollmentFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.StudyID != nil {
		db = db.Where("study_id = ?", *filter.StudyID)
	}
	if filter.StudyPID != nil {
		db = db.Where("study_pid = ?", *filter.StudyPID)
	}
	if filter.TelegramID != nil {
		db = db.Where("telegram_id = ?", *filter.TelegramID)
	}
	if filter.TelegramLinkCode != nil {
		db = db.Where("telegram_link_code = ?", *filter.TelegramLinkCode)
	}
	if filter.TelegramLinkCodeUsed != nil {
		db = db.Where("telegram_link_code_used = ?", *filter.TelegramLinkCodeUsed)
	}
	if filter.Enrolled != nil {
		db = db.Where("enrolled = ?", *filter.Enrolled)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}

	return db
}
