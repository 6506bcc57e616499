// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emalab/pingflow/models"
	"gorm.io/gorm"
)

// ScheduleRunRepositoryImpl implements the ScheduleRunRepository interface
type ScheduleRunRepositoryImpl struct {
	*BaseRepository[models.ScheduleRun, models.ScheduleRunFilter]
}

// NewScheduleRunRepository creates a new schedule run repository
func NewScheduleRunRepository(db *gorm.DB) ScheduleRunRepository {
	return &ScheduleRunRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ScheduleRun, models.ScheduleRunFilter](db),
	}
}

// ByJobAndDate retrieves the checkpoint row for a job on a calendar date
func (r *ScheduleRunRepositoryImpl) ByJobAndDate(ctx context.Context, jobName string, runDate time.Time) (*models.ScheduleRun, error) {
	db := r.getDB(ctx)

	var run models.ScheduleRun
	// run_date is a DATE column; compare on the calendar day, not the instant
	err := db.Where("job_name = ? AND run_date = ?", jobName, runDate.Format("2006-01-02")).
		Last(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find schedule run: %w", err)
	}

	return &run, nil
}

// Update updates a schedule run checkpoint
func (r *ScheduleRunRepositoryImpl) Update(ctx context.Context, run models.ScheduleRun) error {
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

	err = db.Save(&run).Error
	if err != nil {
		return err
	}

	return nil
}

// ByFilter retrieves schedule runs based on filter criteria
func (r *ScheduleRunRepositoryImpl) ByFilter(ctx context.Context, filter models.ScheduleRunFilter, orderBy string, limit, offset int) ([]*models.ScheduleRun, error) {
	db := r.getDB(ctx)

	var runs []*models.ScheduleRun
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

	err := query.Find(&runs).Error
	if err != nil {
		return nil, err
	}

	return runs, nil
}

// Count returns the number of schedule runs matching the filter
func (r *ScheduleRunRepositoryImpl) Count(ctx context.Context, filter models.ScheduleRunFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.ScheduleRun{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any schedule run matching the filter exists
func (r *ScheduleRunRepositoryImpl) Exists(ctx context.Context, filter models.ScheduleRunFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *ScheduleRunRepositoryImpl) applyFilter(db *gorm.DB, filter models.ScheduleRunFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.JobName != nil {
		db = db.Where("job_name = ?", *filter.JobName)
	}
	if filter.RunDate != nil {
		db = db.Where("run_date = ?", filter.RunDate.Format("2006-01-02"))
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}

	return db
}
