// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emalab/pingflow/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PingRepositoryImpl implements the PingRepository interface
type PingRepositoryImpl struct {
	*BaseRepository[models.Ping, models.PingFilter]
}

// NewPingRepository creates a new ping repository
func NewPingRepository(db *gorm.DB) PingRepository {
	return &PingRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Ping, models.PingFilter](db),
	}
}

// ByID retrieves a ping with its enrollment, template, and study preloaded
func (r *PingRepositoryImpl) ByID(ctx context.Context, id uint) (*models.Ping, error) {
	db := r.getDB(ctx)

	var ping models.Ping
	err := db.
		Preload("Enrollment").
		Preload("PingTemplate").
		Preload("Study").
		Last(&ping, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &ping, nil
}

// CreateIgnoreDuplicate inserts a ping unless its identity tuple
// (enrollment_id, ping_template_id, day_num, scheduled_ts) already exists.
// Returns whether a row was actually inserted. A forwarding-code collision is
// NOT absorbed here; it surfaces as a unique-violation error for the caller
// to retry with a fresh code.
func (r *PingRepositoryImpl) CreateIgnoreDuplicate(ctx context.Context, ping *models.Ping) (bool, error) {
	db := r.getDB(ctx)

	res := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "enrollment_id"},
			{Name: "ping_template_id"},
			{Name: "day_num"},
			{Name: "scheduled_ts"},
		},
		DoNothing: true,
	}).Create(ping)
	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

// ListForClaim retrieves every ping ever materialized for an enrollment and
// template, soft-deleted rows included. Recorded instants are authoritative:
// the materializer matches these against expanded windows so an existing ping
// (even an admin-deleted one) keeps its window claimed.
func (r *PingRepositoryImpl) ListForClaim(ctx context.Context, enrollmentID, templateID uint) ([]*models.Ping, error) {
	db := r.getDB(ctx)

	var pings []*models.Ping
	err := db.Unscoped().
		Where("enrollment_id = ? AND ping_template_id = ?", enrollmentID, templateID).
		Order("day_num ASC, scheduled_ts ASC").
		Find(&pings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pings for claim: %w", err)
	}

	return pings, nil
}

// ListDue retrieves unsent pings whose scheduled time has arrived and that
// have not expired, restricted to enrollments that are enrolled and linked to
// a Telegram account, with live templates and studies
func (r *PingRepositoryImpl) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Ping, error) {
	db := r.getDB(ctx)

	var pings []*models.Ping
	query := db.
		Select("pings.*").
		Joins("JOIN enrollments ON enrollments.id = pings.enrollment_id AND enrollments.deleted_at IS NULL").
		Joins("JOIN ping_templates ON ping_templates.id = pings.ping_template_id AND ping_templates.deleted_at IS NULL").
		Joins("JOIN studies ON studies.id = pings.study_id AND studies.deleted_at IS NULL").
		Where("pings.ping_sent = ?", false).
		Where("pings.scheduled_ts <= ?", now).
		Where("pings.expire_ts IS NULL OR pings.expire_ts > ?", now).
		Where("enrollments.enrolled = ?", true).
		Where("enrollments.telegram_id IS NOT NULL").
		Order("pings.scheduled_ts ASC").
		Preload("Enrollment").
		Preload("PingTemplate").
		Preload("Study")
	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&pings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due pings: %w", err)
	}

	return pings, nil
}

// ListDueReminders retrieves sent pings whose reminder time has arrived, that
// have not been reminded, not expired, and that the participant has not
// already clicked through
func (r *PingRepositoryImpl) ListDueReminders(ctx context.Context, now time.Time, limit int) ([]*models.Ping, error) {
	db := r.getDB(ctx)

	var pings []*models.Ping
	query := db.
		Select("pings.*").
		Joins("JOIN enrollments ON enrollments.id = pings.enrollment_id AND enrollments.deleted_at IS NULL").
		Joins("JOIN ping_templates ON ping_templates.id = pings.ping_template_id AND ping_templates.deleted_at IS NULL").
		Joins("JOIN studies ON studies.id = pings.study_id AND studies.deleted_at IS NULL").
		Where("pings.ping_sent = ? AND pings.reminder_sent = ?", true, false).
		Where("pings.reminder_ts IS NOT NULL AND pings.reminder_ts <= ?", now).
		Where("pings.expire_ts IS NULL OR pings.expire_ts > ?", now).
		Where("pings.first_clicked_ts IS NULL").
		Where("enrollments.enrolled = ?", true).
		Where("enrollments.telegram_id IS NOT NULL").
		Order("pings.reminder_ts ASC").
		Preload("Enrollment").
		Preload("PingTemplate").
		Preload("Study")
	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&pings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}

	return pings, nil
}

// ListScheduledBetween retrieves dispatchable pings scheduled inside
// [start, end), for transports that pre-build their day
func (r *PingRepositoryImpl) ListScheduledBetween(ctx context.Context, start, end time.Time) ([]*models.Ping, error) {
	db := r.getDB(ctx)

	var pings []*models.Ping
	err := db.
		Select("pings.*").
		Joins("JOIN enrollments ON enrollments.id = pings.enrollment_id AND enrollments.deleted_at IS NULL").
		Joins("JOIN studies ON studies.id = pings.study_id AND studies.deleted_at IS NULL").
		Where("pings.scheduled_ts >= ? AND pings.scheduled_ts < ?", start, end).
		Where("enrollments.enrolled = ?", true).
		Where("enrollments.telegram_id IS NOT NULL").
		Order("pings.scheduled_ts ASC").
		Preload("Enrollment").
		Preload("PingTemplate").
		Preload("Study").
		Find(&pings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled pings: %w", err)
	}

	return pings, nil
}

// ListByStudy retrieves pings of a study with pagination
func (r *PingRepositoryImpl) ListByStudy(ctx context.Context, studyID uint, limit, offset int) ([]*models.Ping, error) {
	filter := models.PingFilter{StudyID: &studyID}
	return r.ByFilter(ctx, filter, "scheduled_ts DESC", limit, offset)
}

// MarkSent transitions SCHEDULED -> SENT with a single guarded UPDATE.
// Returns false when the guard fails (already sent, expired, deleted, or
// missing): a no-op, not an error. An expired ping can never become SENT.
func (r *PingRepositoryImpl) MarkSent(ctx context.Context, id uint, now time.Time) (bool, error) {
	db := r.getDB(ctx)

	res := db.Model(&models.Ping{}).
		Where("id = ? AND ping_sent = ?", id, false).
		Where("expire_ts IS NULL OR expire_ts > ?", now).
		Updates(map[string]any{
			"ping_sent":  true,
			"sent_ts":    now,
			"updated_at": now,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark ping %d sent: %w", id, res.Error)
	}

	return res.RowsAffected > 0, nil
}

// MarkReminded transitions SENT -> REMINDED with a single guarded UPDATE.
// Same no-op contract as MarkSent; a ping that was never sent, has no
// reminder time, or has expired stays untouched.
func (r *PingRepositoryImpl) MarkReminded(ctx context.Context, id uint, now time.Time) (bool, error) {
	db := r.getDB(ctx)

	res := db.Model(&models.Ping{}).
		Where("id = ? AND ping_sent = ? AND reminder_sent = ?", id, true, false).
		Where("reminder_ts IS NOT NULL").
		Where("expire_ts IS NULL OR expire_ts > ?", now).
		Updates(map[string]any{
			"reminder_sent":    true,
			"reminder_sent_ts": now,
			"updated_at":       now,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark ping %d reminded: %w", id, res.Error)
	}

	return res.RowsAffected > 0, nil
}

// RecordClick stamps a forward-link click: first_clicked_ts only the first
// time, last_clicked_ts every time
func (r *PingRepositoryImpl) RecordClick(ctx context.Context, id uint, at time.Time) error {
	db := r.getDB(ctx)

	return db.Model(&models.Ping{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"first_clicked_ts": gorm.Expr("COALESCE(first_clicked_ts, ?)", at),
			"last_clicked_ts":  at,
			"updated_at":       at,
		}).Error
}

// SoftDelete marks a ping deleted
func (r *PingRepositoryImpl) SoftDelete(ctx context.Context, id uint) error {
	return r.softDeleteByID(ctx, id)
}

// SoftDeleteByEnrollment marks every ping of an enrollment deleted
func (r *PingRepositoryImpl) SoftDeleteByEnrollment(ctx context.Context, enrollmentID uint) error {
	db := r.getDB(ctx)
	return db.Where("enrollment_id = ?", enrollmentID).Delete(&models.Ping{}).Error
}

// SoftDeleteUnsentByTemplate marks the not-yet-sent pings of a template
// deleted. Sent pings stay: they are already part of the study record.
func (r *PingRepositoryImpl) SoftDeleteUnsentByTemplate(ctx context.Context, templateID uint) error {
	db := r.getDB(ctx)
	return db.Where("ping_template_id = ? AND ping_sent = ?", templateID, false).Delete(&models.Ping{}).Error
}

// ByFilter retrieves pings based on filter criteria
func (r *PingRepositoryImpl) ByFilter(ctx context.Context, filter models.PingFilter, orderBy string, limit, offset int) ([]*models.Ping, error) {
	db := r.getDB(ctx)

	var pings []*models.Ping
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

	query = query.Preload("Enrollment").
		Preload("PingTemplate")

	err := query.Find(&pings).Error
	if err != nil {
		return nil, err
	}

	return pings, nil
}

// Count returns the number of pings matching the filter
func (r *PingRepositoryImpl) Count(ctx context.Context, filter models.PingFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.Ping{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any ping matching the filter exists
func (r *PingRepositoryImpl) Exists(ctx context.Context, filter models.PingFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *PingRepositoryImpl) applyFilter(db *gorm.DB, filter models.PingFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.StudyID != nil {
		db = db.Where("study_id = ?", *filter.StudyID)
	}
	if filter.PingTemplateID != nil {
		db = db.Where("ping_template_id = ?", *filter.PingTemplateID)
	}
	if filter.EnrollmentID != nil {
		db = db.Where("enrollment_id = ?", *filter.EnrollmentID)
	}
	if filter.DayNum != nil {
		db = db.Where("day_num = ?", *filter.DayNum)
	}
	if filter.PingSent != nil {
		db = db.Where("ping_sent = ?", *filter.PingSent)
	}
	if filter.ReminderSent != nil {
		db = db.Where("reminder_sent = ?", *filter.ReminderSent)
	}
	if filter.ForwardingCode != nil {
		db = db.Where("forwarding_code = ?", *filter.ForwardingCode)
	}
	if filter.ScheduledAfter != nil {
		db = db.Where("scheduled_ts >= ?", *filter.ScheduledAfter)
	}
	if filter.ScheduledBefore != nil {
		db = db.Where("scheduled_ts < ?", *filter.ScheduledBefore)
	}

	return db
}
