// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/emalab/pingflow/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// AccountRepository defines operations for researcher accounts
type AccountRepository interface {
	Repository[models.Account, models.AccountFilter]
	ByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdateLastLogin(ctx context.Context, accountID uint, at time.Time) error
}

// StudyRepository defines operations for studies
type StudyRepository interface {
	Repository[models.Study, models.StudyFilter]
	ByCode(ctx context.Context, code string) (*models.Study, error)
	ListByAccount(ctx context.Context, accountID uint) ([]*models.Study, error)
	Update(ctx context.Context, study models.Study) error
	SoftDelete(ctx context.Context, id uint) error
}

// StudyMemberRepository defines operations for study memberships
type StudyMemberRepository interface {
	Repository[models.StudyMember, models.StudyMemberFilter]
	ByAccountAndStudy(ctx context.Context, accountID, studyID uint) (*models.StudyMember, error)
	ListByStudy(ctx context.Context, studyID uint) ([]*models.StudyMember, error)
	UpdateRole(ctx context.Context, id uint, role models.StudyRole) error
	Remove(ctx context.Context, id uint) error
}

// PingTemplateRepository defines operations for ping templates
type PingTemplateRepository interface {
	Repository[models.PingTemplate, models.PingTemplateFilter]
	ListByStudy(ctx context.Context, studyID uint) ([]*models.PingTemplate, error)
	Update(ctx context.Context, template models.PingTemplate) error
	SoftDelete(ctx context.Context, id uint) error
}

// EnrollmentRepository defines operations for participant enrollments
type EnrollmentRepository interface {
	Repository[models.Enrollment, models.EnrollmentFilter]
	ByStudyAndPID(ctx context.Context, studyID uint, studyPID string) (*models.Enrollment, error)
	ByLinkCode(ctx context.Context, code string) (*models.Enrollment, error)
	ListByStudy(ctx context.Context, studyID uint, limit, offset int) ([]*models.Enrollment, error)
	ListActiveEnrolled(ctx context.Context) ([]*models.Enrollment, error)
	LockByID(ctx context.Context, id uint) (*models.Enrollment, error)
	Update(ctx context.Context, enrollment models.Enrollment) error
	LinkTelegram(ctx context.Context, id uint, telegramID string) error
	UnenrollByTelegramID(ctx context.Context, telegramID string) (int64, error)
	SoftDelete(ctx context.Context, id uint) error
}

// PingRepository defines operations for materialized pings, including the
// conditional lifecycle transitions
type PingRepository interface {
	Repository[models.Ping, models.PingFilter]
	CreateIgnoreDuplicate(ctx context.Context, ping *models.Ping) (bool, error)
	ListForClaim(ctx context.Context, enrollmentID, templateID uint) ([]*models.Ping, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Ping, error)
	ListDueReminders(ctx context.Context, now time.Time, limit int) ([]*models.Ping, error)
	ListScheduledBetween(ctx context.Context, start, end time.Time) ([]*models.Ping, error)
	ListByStudy(ctx context.Context, studyID uint, limit, offset int) ([]*models.Ping, error)
	MarkSent(ctx context.Context, id uint, now time.Time) (bool, error)
	MarkReminded(ctx context.Context, id uint, now time.Time) (bool, error)
	RecordClick(ctx context.Context, id uint, at time.Time) error
	SoftDelete(ctx context.Context, id uint) error
	SoftDeleteByEnrollment(ctx context.Context, enrollmentID uint) error
	SoftDeleteUnsentByTemplate(ctx context.Context, templateID uint) error
}

// ScheduleRunRepository defines operations for scheduler checkpoint records
type ScheduleRunRepository interface {
	Repository[models.ScheduleRun, models.ScheduleRunFilter]
	ByJobAndDate(ctx context.Context, jobName string, runDate time.Time) (*models.ScheduleRun, error)
	Update(ctx context.Context, run models.ScheduleRun) error
}
