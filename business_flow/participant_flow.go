// Package businessflow contains the core business logic and use cases for participant workflows
package businessflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/emalab/pingflow/app/dto"
	"github.com/emalab/pingflow/config"
	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/repository"
	"github.com/emalab/pingflow/utils"
)

// ParticipantFlow handles the unauthenticated participant surface: joining a
// study with its signup code and following a ping's forwarding link.
type ParticipantFlow interface {
	Signup(ctx context.Context, req *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error)
	Forward(ctx context.Context, pingID uint, code string, metadata *ClientMetadata) (string, error)
}

// ParticipantFlowImpl implements the participant business flow
type ParticipantFlowImpl struct {
	studyRepo       repository.StudyRepository
	enrollmentRepo  repository.EnrollmentRepository
	pingRepo        repository.PingRepository
	materializeFlow MaterializeFlow
	rc              *redis.Client
	cacheConfig     *config.CacheConfig
	telegramConfig  *config.TelegramConfig
	engineConfig    *config.EngineConfig
	db              *gorm.DB
}

// NewParticipantFlow creates a new participant flow instance
func NewParticipantFlow(
	studyRepo repository.StudyRepository,
	enrollmentRepo repository.EnrollmentRepository,
	pingRepo repository.PingRepository,
	materializeFlow MaterializeFlow,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
	telegramConfig *config.TelegramConfig,
	engineConfig *config.EngineConfig,
	db *gorm.DB,
) ParticipantFlow {
	return &ParticipantFlowImpl{
		studyRepo:       studyRepo,
		enrollmentRepo:  enrollmentRepo,
		pingRepo:        pingRepo,
		materializeFlow: materializeFlow,
		rc:              rc,
		cacheConfig:     cacheConfig,
		telegramConfig:  telegramConfig,
		engineConfig:    engineConfig,
		db:              db,
	}
}

// Signup enrolls a participant into the study behind the signup code, issues
// a Telegram link code, and materializes the study's templates against the
// new enrollment. The start date anchors to today in the participant's zone;
// an omitted zone enrolls in UTC.
func (s *ParticipantFlowImpl) Signup(ctx context.Context, req *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error) {
	study, err := s.studyRepo.ByCode(ctx, req.SignupCode)
	if err != nil {
		return nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}
	if study == nil {
		return nil, NewBusinessError("SIGNUP_CODE_INVALID", "No study with that signup code", ErrSignupCodeInvalid)
	}

	tz := "UTC"
	if req.TZ != nil && *req.TZ != "" {
		tz = *req.TZ
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, NewBusinessError("INVALID_TIMEZONE", "Unknown timezone", fmt.Errorf("%w: %q", ErrInvalidTimezone, tz))
	}

	linkCode, err := s.generateLinkCode(ctx)
	if err != nil {
		return nil, NewBusinessError("LINK_CODE_GENERATION_FAILED", "Failed to generate a link code", err)
	}
	expireTs := utils.UTCNowAdd(utils.TelegramLinkCodeTTL)

	enrollment := &models.Enrollment{
		StudyID:                  study.ID,
		StudyPID:                 req.StudyPID,
		TZ:                       tz,
		StartDate:                utils.TodayIn(tz),
		Enrolled:                 true,
		TelegramLinkCode:         &linkCode,
		TelegramLinkCodeExpireTs: &expireTs,
	}
	if err := s.enrollmentRepo.Save(ctx, enrollment); err != nil {
		return nil, NewBusinessError("ENROLLMENT_CREATION_FAILED", "Enrollment creation failed", err)
	}

	// The cache entry is a fast path for the bot; the table stays the source
	// of truth, so a cache failure is not fatal.
	if s.rc != nil {
		cacheKey := redisKey(*s.cacheConfig, utils.TelegramLinkCodeCacheKeyPrefix+linkCode)
		if err := s.rc.Set(ctx, cacheKey, enrollment.ID, utils.TelegramLinkCodeTTL).Err(); err != nil {
			log.Printf("Warning: failed to cache link code for enrollment %d: %v", enrollment.ID, err)
		}
	}

	created, err := s.materializeFlow.MaterializeEnrollment(ctx, enrollment.ID)
	if err != nil {
		log.Printf("Warning: enrollment %d created but ping materialization failed: %v", enrollment.ID, err)
		created = 0
	}

	return &dto.SignupResponse{
		Message:          "Signed up successfully",
		EnrollmentID:     enrollment.ID,
		StudyID:          study.ID,
		StudyPublicName:  study.PublicName,
		StudyPID:         enrollment.StudyPID,
		TZ:               enrollment.TZ,
		TelegramLinkCode: linkCode,
		LinkCodeExpireTs: expireTs,
		BotName:          s.telegramConfig.BotName,
		PingsCreated:     created,
	}, nil
}

// Forward resolves a ping's forwarding link to its survey URL. The click is
// recorded before the redirect target is handed back, so first_clicked_ts is
// set even when the participant never reaches the survey.
func (s *ParticipantFlowImpl) Forward(ctx context.Context, pingID uint, code string, metadata *ClientMetadata) (string, error) {
	ping, err := getPing(ctx, s.pingRepo, pingID)
	if err != nil {
		return "", NewBusinessError("PING_LOOKUP_FAILED", "Failed to lookup ping", err)
	}

	if code == "" || code != ping.ForwardingCode {
		return "", NewBusinessError("FORWARDING_CODE_MISMATCH", "Forwarding code does not match", ErrForwardingCodeMismatch)
	}

	if ping.URL == nil || *ping.URL == "" {
		return "", NewBusinessError("PING_URL_MISSING", "Ping has no survey URL", ErrPingURLMissing)
	}

	if err := s.pingRepo.RecordClick(ctx, ping.ID, utils.UTCNow()); err != nil {
		return "", NewBusinessError("CLICK_RECORDING_FAILED", "Failed to record click", err)
	}

	mc := NewMessageConstructor(&ping, s.engineConfig.BaseURL, s.engineConfig.DefaultURLText)
	return mc.ConstructSurveyURL(), nil
}

// generateLinkCode draws link codes until one is not held by an enrollment
// that could still redeem it. A used code may be reissued; lookups resolve to
// the newest holder.
func (s *ParticipantFlowImpl) generateLinkCode(ctx context.Context) (string, error) {
	for i := 0; i < codeGenerationRetries; i++ {
		code, err := utils.GenerateNonConfusableCode(utils.TelegramLinkCodeLength)
		if err != nil {
			return "", err
		}

		existing, err := s.enrollmentRepo.ByLinkCode(ctx, code)
		if err != nil {
			return "", err
		}
		if existing == nil || existing.TelegramLinkCodeUsed {
			return code, nil
		}
	}

	return "", fmt.Errorf("exhausted %d attempts to find a free link code", codeGenerationRetries)
}
