package businessflow

import (
	"context"

	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/repository"
)

// getStudy loads a study by ID
func getStudy(ctx context.Context, repo repository.StudyRepository, studyID uint) (models.Study, error) {
	study, err := repo.ByID(ctx, studyID)
	if err != nil {
		return models.Study{}, err
	}
	if study == nil {
		return models.Study{}, ErrStudyNotFound
	}
	return *study, nil
}

// getEnrollment loads an enrollment by ID with its study preloaded
func getEnrollment(ctx context.Context, repo repository.EnrollmentRepository, enrollmentID uint) (models.Enrollment, error) {
	enrollment, err := repo.ByID(ctx, enrollmentID)
	if err != nil {
		return models.Enrollment{}, err
	}
	if enrollment == nil {
		return models.Enrollment{}, ErrEnrollmentNotFound
	}
	return *enrollment, nil
}

// getPingTemplate loads a ping template by ID
func getPingTemplate(ctx context.Context, repo repository.PingTemplateRepository, templateID uint) (models.PingTemplate, error) {
	template, err := repo.ByID(ctx, templateID)
	if err != nil {
		return models.PingTemplate{}, err
	}
	if template == nil {
		return models.PingTemplate{}, ErrTemplateNotFound
	}
	return *template, nil
}

// getPing loads a ping by ID with its relations preloaded
func getPing(ctx context.Context, repo repository.PingRepository, pingID uint) (models.Ping, error) {
	ping, err := repo.ByID(ctx, pingID)
	if err != nil {
		return models.Ping{}, err
	}
	if ping == nil {
		return models.Ping{}, ErrPingNotFound
	}
	return *ping, nil
}

// authorizeStudy loads a study and verifies the account holds at least the
// minimum role on it. A missing membership and an insufficient role both come
// back as ErrStudyAccessDenied.
func authorizeStudy(ctx context.Context, studyRepo repository.StudyRepository, memberRepo repository.StudyMemberRepository, accountID, studyID uint, minimum models.StudyRole) (models.Study, models.StudyRole, error) {
	study, err := getStudy(ctx, studyRepo, studyID)
	if err != nil {
		return models.Study{}, "", err
	}

	member, err := memberRepo.ByAccountAndStudy(ctx, accountID, studyID)
	if err != nil {
		return models.Study{}, "", err
	}
	if member == nil || !member.Role.Allows(minimum) {
		return models.Study{}, "", ErrStudyAccessDenied
	}

	return study, member.Role, nil
}
