package businessflow

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/repository"
	"github.com/emalab/pingflow/utils"
)

// forwardingCodeRetries bounds regeneration attempts after a forwarding-code
// uniqueness violation. At 128 bits of entropy one collision is already
// extraordinary.
const forwardingCodeRetries = 3

// MaterializeFlow turns template schedules into concrete ping rows. Safe to
// invoke repeatedly: existing pings claim their windows, only unclaimed
// windows insert, and the identity unique index absorbs concurrent inserts.
type MaterializeFlow interface {
	MaterializeEnrollment(ctx context.Context, enrollmentID uint) (int, error)
	MaterializeStudy(ctx context.Context, studyID uint) (int, error)
	MaterializeActive(ctx context.Context) (int, error)
}

type MaterializeFlowImpl struct {
	enrollmentRepo repository.EnrollmentRepository
	templateRepo   repository.PingTemplateRepository
	pingRepo       repository.PingRepository
	db             *gorm.DB

	// pick places an occurrence inside a non-exact window; nil means
	// uniformly random. Tests inject a deterministic picker.
	pick OccurrencePicker
}

func NewMaterializeFlow(
	enrollmentRepo repository.EnrollmentRepository,
	templateRepo repository.PingTemplateRepository,
	pingRepo repository.PingRepository,
	db *gorm.DB,
	pick OccurrencePicker,
) MaterializeFlow {
	return &MaterializeFlowImpl{
		enrollmentRepo: enrollmentRepo,
		templateRepo:   templateRepo,
		pingRepo:       pingRepo,
		db:             db,
		pick:           pick,
	}
}

// MaterializeEnrollment expands every template of the enrollment's study and
// persists the pings that do not exist yet. Returns how many were created.
func (s *MaterializeFlowImpl) MaterializeEnrollment(ctx context.Context, enrollmentID uint) (int, error) {
	created := 0
	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		enrollment, err := s.enrollmentRepo.LockByID(txCtx, enrollmentID)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return ErrEnrollmentNotFound
		}

		loc, err := enrollment.Location()
		if err != nil {
			return ErrInvalidTimezone
		}

		templates, err := s.templateRepo.ListByStudy(txCtx, enrollment.StudyID)
		if err != nil {
			return err
		}

		for _, template := range templates {
			n, err := s.materializeTemplate(txCtx, enrollment, template, loc)
			if err != nil {
				return err
			}
			created += n
		}
		return nil
	})
	if err != nil {
		return created, NewBusinessError("MATERIALIZE_ENROLLMENT_FAILED", "Failed to materialize pings for enrollment", err)
	}
	return created, nil
}

// MaterializeStudy re-runs materialization for every active enrollment of a
// study, each in its own transaction. A failing enrollment does not stop the
// rest; completed insertions stand and the next run picks up the remainder.
func (s *MaterializeFlowImpl) MaterializeStudy(ctx context.Context, studyID uint) (int, error) {
	filter := models.EnrollmentFilter{
		StudyID:  &studyID,
		Enrolled: utils.ToPtr(true),
	}
	enrollments, err := s.enrollmentRepo.ByFilter(ctx, filter, "id ASC", 0, 0)
	if err != nil {
		return 0, NewBusinessError("MATERIALIZE_STUDY_FAILED", "Failed to list enrollments for materialization", err)
	}
	return s.materializeEach(ctx, enrollments)
}

// MaterializeActive runs the daily sweep over every active enrollment of
// every live study.
func (s *MaterializeFlowImpl) MaterializeActive(ctx context.Context) (int, error) {
	enrollments, err := s.enrollmentRepo.ListActiveEnrolled(ctx)
	if err != nil {
		return 0, NewBusinessError("MATERIALIZE_SWEEP_FAILED", "Failed to list active enrollments", err)
	}
	return s.materializeEach(ctx, enrollments)
}

func (s *MaterializeFlowImpl) materializeEach(ctx context.Context, enrollments []*models.Enrollment) (int, error) {
	created := 0
	var firstErr error
	for _, enrollment := range enrollments {
		n, err := s.MaterializeEnrollment(ctx, enrollment.ID)
		created += n
		if err != nil {
			log.Printf("materialize enrollment %d failed: %v", enrollment.ID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return created, firstErr
}

// materializeTemplate inserts pings for the template windows no existing ping
// claims. The claim scan runs over soft-deleted pings too, so an explicitly
// deleted occurrence stays dead instead of coming back on the next sweep.
func (s *MaterializeFlowImpl) materializeTemplate(ctx context.Context, enrollment *models.Enrollment, template *models.PingTemplate, loc *time.Location) (int, error) {
	occurrences, err := ExpandSchedule(template.Schedule, enrollment.StartDate, loc, template.ReminderLatency, template.ExpireLatency, s.pick)
	if err != nil {
		return 0, err
	}
	if len(occurrences) == 0 {
		return 0, nil
	}

	existing, err := s.pingRepo.ListForClaim(ctx, enrollment.ID, template.ID)
	if err != nil {
		return 0, err
	}

	claimed := make([]bool, len(existing))
	created := 0
	for _, occ := range occurrences {
		if claimOccurrence(existing, claimed, occ) {
			continue
		}

		if occ.Adjusted {
			log.Printf("schedule window crossed a DST transition: enrollment %d template %d day %d resolved to %s",
				enrollment.ID, template.ID, occ.DayNum, occ.ScheduledTs.Format(time.RFC3339))
		}

		ping := &models.Ping{
			StudyID:        enrollment.StudyID,
			PingTemplateID: template.ID,
			EnrollmentID:   enrollment.ID,
			DayNum:         occ.DayNum,
			ScheduledTs:    occ.ScheduledTs,
			ReminderTs:     occ.ReminderTs,
			ExpireTs:       occ.ExpireTs,
			Message:        template.Message,
			URL:            template.URL,
		}
		inserted, err := s.createPing(ctx, ping)
		if err != nil {
			return created, err
		}
		if inserted {
			created++
		}
	}
	return created, nil
}

// claimOccurrence marks the first unclaimed ping whose day and scheduled
// instant fall inside the occurrence window, if any.
func claimOccurrence(existing []*models.Ping, claimed []bool, occ Occurrence) bool {
	for i, ping := range existing {
		if claimed[i] || ping.DayNum != occ.DayNum {
			continue
		}
		ts := ping.ScheduledTs
		if ts.Before(occ.WindowStart) || ts.After(occ.WindowEnd) {
			continue
		}
		claimed[i] = true
		return true
	}
	return false
}

// createPing inserts with insert-or-ignore semantics on the identity tuple.
// A unique violation on the forwarding code regenerates and retries.
func (s *MaterializeFlowImpl) createPing(ctx context.Context, ping *models.Ping) (bool, error) {
	for attempt := 0; ; attempt++ {
		inserted, err := s.pingRepo.CreateIgnoreDuplicate(ctx, ping)
		if err == nil {
			return inserted, nil
		}
		if !isForwardingCodeCollision(err) || attempt >= forwardingCodeRetries {
			return false, err
		}
		code, genErr := utils.GenerateForwardingCode()
		if genErr != nil {
			return false, genErr
		}
		ping.ForwardingCode = code
		log.Printf("forwarding code collision on enrollment %d template %d, regenerating", ping.EnrollmentID, ping.PingTemplateID)
	}
}

func isForwardingCodeCollision(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "uk_pings_forwarding_code"
}
