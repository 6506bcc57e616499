// Package businessflow contains the core business logic and use cases for enrollment workflows
package businessflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/emalab/pingflow/app/dto"
	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/repository"
	"github.com/emalab/pingflow/utils"
	"gorm.io/gorm"
)

// startDateLayout is the wire format for enrollment start dates.
const startDateLayout = "2006-01-02"

// EnrollmentFlow handles the researcher-facing enrollment business logic
type EnrollmentFlow interface {
	CreateEnrollment(ctx context.Context, req *dto.CreateEnrollmentRequest, metadata *ClientMetadata) (*dto.CreateEnrollmentResponse, error)
	GetEnrollment(ctx context.Context, req *dto.GetEnrollmentRequest) (*dto.GetEnrollmentResponse, error)
	UpdateEnrollment(ctx context.Context, req *dto.UpdateEnrollmentRequest, metadata *ClientMetadata) (*dto.UpdateEnrollmentResponse, error)
	DeleteEnrollment(ctx context.Context, accountID, studyID, enrollmentID uint, metadata *ClientMetadata) (*dto.DeleteEnrollmentResponse, error)
	ListEnrollments(ctx context.Context, req *dto.ListEnrollmentsRequest) (*dto.ListEnrollmentsResponse, error)
	MaterializeEnrollment(ctx context.Context, accountID, studyID, enrollmentID uint, metadata *ClientMetadata) (*dto.MaterializeEnrollmentResponse, error)
}

// EnrollmentFlowImpl implements the enrollment business flow
type EnrollmentFlowImpl struct {
	studyRepo       repository.StudyRepository
	memberRepo      repository.StudyMemberRepository
	enrollmentRepo  repository.EnrollmentRepository
	pingRepo        repository.PingRepository
	materializeFlow MaterializeFlow
	db              *gorm.DB
}

// NewEnrollmentFlow creates a new enrollment flow instance
func NewEnrollmentFlow(
	studyRepo repository.StudyRepository,
	memberRepo repository.StudyMemberRepository,
	enrollmentRepo repository.EnrollmentRepository,
	pingRepo repository.PingRepository,
	materializeFlow MaterializeFlow,
	db *gorm.DB,
) EnrollmentFlow {
	return &EnrollmentFlowImpl{
		studyRepo:       studyRepo,
		memberRepo:      memberRepo,
		enrollmentRepo:  enrollmentRepo,
		pingRepo:        pingRepo,
		materializeFlow: materializeFlow,
		db:              db,
	}
}

// CreateEnrollment enrolls a participant on behalf of a researcher and
// materializes the study's ping templates against the new enrollment.
// StartDate defaults to today in the participant's zone.
func (s *EnrollmentFlowImpl) CreateEnrollment(ctx context.Context, req *dto.CreateEnrollmentRequest, metadata *ClientMetadata) (*dto.CreateEnrollmentResponse, error) {
	_, _, err := authorizeStudy(ctx, s.studyRepo, s.memberRepo, req.AccountID, req.StudyID, models.RoleEditor)
	if err != nil {
		return nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}

	loc, err := time.LoadLocation(req.TZ)
	if err != nil {
		return nil, NewBusinessError("INVALID_TIMEZONE", "Unknown timezone", fmt.Errorf("%w: %q", ErrInvalidTimezone, req.TZ))
	}

	startDate := utils.TodayIn(req.TZ)
	if req.StartDate != nil {
		startDate, err = time.ParseInLocation(startDateLayout, *req.StartDate, loc)
		if err != nil {
			return nil, NewBusinessError("INVALID_START_DATE", "Start date must be YYYY-MM-DD", fmt.Errorf("%w: %q", ErrInvalidStartDate, *req.StartDate))
		}
	}

	existing, err := s.enrollmentRepo.ByStudyAndPID(ctx, req.StudyID, req.StudyPID)
	if err != nil {
		return nil, NewBusinessError("ENROLLMENT_LOOKUP_FAILED", "Failed to lookup enrollment", err)
	}
	if existing != nil && existing.Enrolled {
		return nil, NewBusinessError("DUPLICATE_STUDY_PID", "An active enrollment with this participant ID already exists", ErrDuplicatePID)
	}

	enrollment := &models.Enrollment{
		StudyID:   req.StudyID,
		StudyPID:  req.StudyPID,
		TZ:        req.TZ,
		StartDate: startDate,
		Enrolled:  true,
	}
	if err := s.enrollmentRepo.Save(ctx, enrollment); err != nil {
		return nil, NewBusinessError("ENROLLMENT_CREATION_FAILED", "Enrollment creation failed", err)
	}

	// Materialization failures are recoverable: the daily sweep and the
	// explicit materialize endpoint both fill missing pings.
	created, err := s.materializeFlow.MaterializeEnrollment(ctx, enrollment.ID)
	if err != nil {
		log.Printf("Warning: enrollment %d created but ping materialization failed: %v", enrollment.ID, err)
		created = 0
	}

	return &dto.CreateEnrollmentResponse{
		Message:      "Enrollment created successfully",
		Enrollment:   toEnrollmentDTO(*enrollment),
		PingsCreated: created,
	}, nil
}

// GetEnrollment retrieves an enrollment of a study the caller belongs to
func (s *EnrollmentFlowImpl) GetEnrollment(ctx context.Context, req *dto.GetEnrollmentRequest) (*dto.GetEnrollmentResponse, error) {
	_, _, err := authorizeStudy(ctx, s.studyRepo, s.memberRepo, req.AccountID, req.StudyID, models.RoleViewer)
	if err != nil {
		return nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}

	enrollment, err := s.enrollmentInStudy(ctx, req.EnrollmentID, req.StudyID)
	if err != nil {
		return nil, NewBusinessError("ENROLLMENT_LOOKUP_FAILED", "Failed to lookup enrollment", err)
	}

	return &dto.GetEnrollmentResponse{Enrollment: toEnrollmentDTO(enrollment)}, nil
}

// UpdateEnrollment updates an enrollment's fields. Pings already materialized
// keep their scheduled instants; tz and start date edits shape future
// materialization only.
func (s *EnrollmentFlowImpl) UpdateEnrollment(ctx context.Context, req *dto.UpdateEnrollmentRequest, metadata *ClientMetadata) (*dto.UpdateEnrollmentResponse, error) {
	_, _, err := authorizeStudy(ctx, s.studyRepo, s.memberRepo, req.AccountID, req.StudyID, models.RoleEditor)
	if err != nil {
		return nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}

	enrollment, err := s.enrollmentInStudy(ctx, req.EnrollmentID, req.StudyID)
	if err != nil {
		return nil, NewBusinessError("ENROLLMENT_LOOKUP_FAILED", "Failed to lookup enrollment", err)
	}

	if req.StudyPID != nil && *req.StudyPID != enrollment.StudyPID {
		existing, err := s.enrollmentRepo.ByStudyAndPID(ctx, req.StudyID, *req.StudyPID)
		if err != nil {
			return nil, NewBusinessError("ENROLLMENT_LOOKUP_FAILED", "Failed to lookup enrollment", err)
		}
		if existing != nil && existing.ID != enrollment.ID && existing.Enrolled {
			return nil, NewBusinessError("DUPLICATE_STUDY_PID", "An active enrollment with this participant ID already exists", ErrDuplicatePID)
		}
		enrollment.StudyPID = *req.StudyPID
	}

	if req.TZ != nil {
		if _, err := time.LoadLocation(*req.TZ); err != nil {
			return nil, NewBusinessError("INVALID_TIMEZONE", "Unknown timezone", fmt.Errorf("%w: %q", ErrInvalidTimezone, *req.TZ))
		}
		enrollment.TZ = *req.TZ
	}

	if req.StartDate != nil {
		loc, err := enrollment.Location()
		if err != nil {
			return nil, NewBusinessError("INVALID_TIMEZONE", "Unknown timezone", fmt.Errorf("%w: %q", ErrInvalidTimezone, enrollment.TZ))
		}
		startDate, err := time.ParseInLocation(startDateLayout, *req.StartDate, loc)
		if err != nil {
			return nil, NewBusinessError("INVALID_START_DATE", "Start date must be YYYY-MM-DD", fmt.Errorf("%w: %q", ErrInvalidStartDate, *req.StartDate))
		}
		enrollment.StartDate = startDate
	}

	if req.Enrolled != nil {
		enrollment.Enrolled = *req.Enrolled
	}
	if req.PRCompleted != nil {
		enrollment.PRCompleted = *req.PRCompleted
	}

	if err := s.enrollmentRepo.Update(ctx, enrollment); err != nil {
		return nil, NewBusinessError("ENROLLMENT_UPDATE_FAILED", "Enrollment update failed", err)
	}

	return &dto.UpdateEnrollmentResponse{
		Message:    "Enrollment updated successfully",
		Enrollment: toEnrollmentDTO(enrollment),
	}, nil
}

// DeleteEnrollment soft-deletes an enrollment and all of its pings
func (s *EnrollmentFlowImpl) DeleteEnrollment(ctx context.Context, accountID, studyID, enrollmentID uint, metadata *ClientMetadata) (*dto.DeleteEnrollmentResponse, error) {
	_, _, err := authorizeStudy(ctx, s.studyRepo, s.memberRepo, accountID, studyID, models.RoleEditor)
	if err != nil {
		return nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}

	if _, err := s.enrollmentInStudy(ctx, enrollmentID, studyID); err != nil {
		return nil, NewBusinessError("ENROLLMENT_LOOKUP_FAILED", "Failed to lookup enrollment", err)
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if err := s.enrollmentRepo.SoftDelete(txCtx, enrollmentID); err != nil {
			return err
		}
		return s.pingRepo.SoftDeleteByEnrollment(txCtx, enrollmentID)
	})
	if err != nil {
		return nil, NewBusinessError("ENROLLMENT_DELETION_FAILED", "Enrollment deletion failed", err)
	}

	return &dto.DeleteEnrollmentResponse{Message: "Enrollment deleted successfully"}, nil
}

// ListEnrollments retrieves a page of a study's enrollments
func (s *EnrollmentFlowImpl) ListEnrollments(ctx context.Context, req *dto.ListEnrollmentsRequest) (*dto.ListEnrollmentsResponse, error) {
	_, _, err := authorizeStudy(ctx, s.studyRepo, s.memberRepo, req.AccountID, req.StudyID, models.RoleViewer)
	if err != nil {
		return nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}

	page := max(1, req.Page)
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	total, err := s.enrollmentRepo.Count(ctx, models.EnrollmentFilter{StudyID: &req.StudyID})
	if err != nil {
		return nil, NewBusinessError("ENROLLMENT_LIST_FAILED", "Failed to list enrollments", err)
	}

	enrollments, err := s.enrollmentRepo.ListByStudy(ctx, req.StudyID, limit, offset)
	if err != nil {
		return nil, NewBusinessError("ENROLLMENT_LIST_FAILED", "Failed to list enrollments", err)
	}

	items := make([]dto.EnrollmentDTO, 0, len(enrollments))
	for _, e := range enrollments {
		items = append(items, toEnrollmentDTO(*e))
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &dto.ListEnrollmentsResponse{
		Message: "Enrollments retrieved successfully",
		Items:   items,
		Pagination: dto.PaginationInfo{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		},
	}, nil
}

// MaterializeEnrollment re-runs ping materialization for one enrollment.
// The run is idempotent; slots that already have a ping are left alone.
func (s *EnrollmentFlowImpl) MaterializeEnrollment(ctx context.Context, accountID, studyID, enrollmentID uint, metadata *ClientMetadata) (*dto.MaterializeEnrollmentResponse, error) {
	_, _, err := authorizeStudy(ctx, s.studyRepo, s.memberRepo, accountID, studyID, models.RoleEditor)
	if err != nil {
		return nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}

	if _, err := s.enrollmentInStudy(ctx, enrollmentID, studyID); err != nil {
		return nil, NewBusinessError("ENROLLMENT_LOOKUP_FAILED", "Failed to lookup enrollment", err)
	}

	created, err := s.materializeFlow.MaterializeEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, NewBusinessError("MATERIALIZATION_FAILED", "Ping materialization failed", err)
	}

	total, err := s.pingRepo.Count(ctx, models.PingFilter{EnrollmentID: &enrollmentID})
	if err != nil {
		return nil, NewBusinessError("PING_COUNT_FAILED", "Failed to count pings", err)
	}

	return &dto.MaterializeEnrollmentResponse{
		Message:      "Enrollment materialized successfully",
		PingsCreated: created,
		TotalPings:   total,
	}, nil
}

// enrollmentInStudy loads an enrollment and confirms it belongs to the study
// the caller was authorized against
func (s *EnrollmentFlowImpl) enrollmentInStudy(ctx context.Context, enrollmentID, studyID uint) (models.Enrollment, error) {
	enrollment, err := getEnrollment(ctx, s.enrollmentRepo, enrollmentID)
	if err != nil {
		return models.Enrollment{}, err
	}
	if enrollment.StudyID != studyID {
		return models.Enrollment{}, ErrEnrollmentNotFound
	}
	return enrollment, nil
}

// toEnrollmentDTO converts an enrollment model to its response shape
func toEnrollmentDTO(enrollment models.Enrollment) dto.EnrollmentDTO {
	return dto.EnrollmentDTO{
		ID:             enrollment.ID,
		StudyID:        enrollment.StudyID,
		StudyPID:       enrollment.StudyPID,
		TZ:             enrollment.TZ,
		StartDate:      enrollment.StartDate.Format(startDateLayout),
		Enrolled:       enrollment.Enrolled,
		TelegramLinked: enrollment.IsLinked(),
		PRCompleted:    enrollment.PRCompleted,
		CreatedAt:      enrollment.CreatedAt,
		UpdatedAt:      utils.ToPtr(enrollment.UpdatedAt),
	}
}
