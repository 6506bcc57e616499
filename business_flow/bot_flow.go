// Package businessflow contains the core business logic and use cases for the Telegram bot relay
package businessflow

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/emalab/pingflow/app/dto"
	"github.com/emalab/pingflow/config"
	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/repository"
	"github.com/emalab/pingflow/utils"
)

// BotFlow handles the bot relay surface. The relay holds the shared secret
// and speaks for participants' Telegram accounts; enrollments are resolved by
// link code or Telegram ID, never by researcher identity.
type BotFlow interface {
	LinkTelegram(ctx context.Context, req *dto.BotLinkTelegramRequest, metadata *ClientMetadata) (*dto.BotLinkTelegramResponse, error)
	Unenroll(ctx context.Context, req *dto.BotUnenrollRequest, metadata *ClientMetadata) (*dto.BotUnenrollResponse, error)
	ListPings(ctx context.Context, req *dto.BotListPingsRequest) (*dto.BotListPingsResponse, error)
	MarkSent(ctx context.Context, pingID uint, metadata *ClientMetadata) (*dto.BotTransitionResponse, error)
	MarkReminded(ctx context.Context, pingID uint, metadata *ClientMetadata) (*dto.BotTransitionResponse, error)
}

// BotFlowImpl implements the bot relay business flow
type BotFlowImpl struct {
	studyRepo      repository.StudyRepository
	enrollmentRepo repository.EnrollmentRepository
	pingRepo       repository.PingRepository
	rc             *redis.Client
	cacheConfig    *config.CacheConfig
	engineConfig   *config.EngineConfig
	db             *gorm.DB
}

// NewBotFlow creates a new bot relay flow instance
func NewBotFlow(
	studyRepo repository.StudyRepository,
	enrollmentRepo repository.EnrollmentRepository,
	pingRepo repository.PingRepository,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
	engineConfig *config.EngineConfig,
	db *gorm.DB,
) BotFlow {
	return &BotFlowImpl{
		studyRepo:      studyRepo,
		enrollmentRepo: enrollmentRepo,
		pingRepo:       pingRepo,
		rc:             rc,
		cacheConfig:    cacheConfig,
		engineConfig:   engineConfig,
		db:             db,
	}
}

// LinkTelegram redeems a participant's link code and attaches the Telegram
// account to the enrollment. The cache is only a fast path; the enrollment
// row decides whether the code is still redeemable.
func (s *BotFlowImpl) LinkTelegram(ctx context.Context, req *dto.BotLinkTelegramRequest, metadata *ClientMetadata) (*dto.BotLinkTelegramResponse, error) {
	cacheKey := redisKey(*s.cacheConfig, utils.TelegramLinkCodeCacheKeyPrefix+req.TelegramLinkCode)

	var enrollment *models.Enrollment
	if s.rc != nil {
		if id, err := s.rc.Get(ctx, cacheKey).Uint64(); err == nil {
			cached, err := s.enrollmentRepo.ByID(ctx, uint(id))
			if err != nil {
				return nil, NewBusinessError("ENROLLMENT_LOOKUP_FAILED", "Failed to lookup enrollment", err)
			}
			if cached != nil && cached.TelegramLinkCode != nil && *cached.TelegramLinkCode == req.TelegramLinkCode {
				enrollment = cached
			}
		}
	}

	if enrollment == nil {
		found, err := s.enrollmentRepo.ByLinkCode(ctx, req.TelegramLinkCode)
		if err != nil {
			return nil, NewBusinessError("ENROLLMENT_LOOKUP_FAILED", "Failed to lookup enrollment", err)
		}
		enrollment = found
	}

	if enrollment == nil {
		return nil, NewBusinessError("LINK_CODE_INVALID", "No enrollment with that link code", ErrLinkCodeInvalid)
	}
	if enrollment.TelegramLinkCodeUsed {
		return nil, NewBusinessError("LINK_CODE_USED", "Link code has already been used", ErrLinkCodeUsed)
	}
	if enrollment.TelegramLinkCodeExpireTs != nil && !utils.UTCNow().Before(*enrollment.TelegramLinkCodeExpireTs) {
		return nil, NewBusinessError("LINK_CODE_EXPIRED", "Link code has expired", ErrLinkCodeExpired)
	}

	if err := s.enrollmentRepo.LinkTelegram(ctx, enrollment.ID, req.TelegramID); err != nil {
		return nil, NewBusinessError("TELEGRAM_LINK_FAILED", "Failed to link Telegram account", err)
	}

	if s.rc != nil {
		_ = s.rc.Del(ctx, cacheKey).Err()
	}

	study, err := getStudy(ctx, s.studyRepo, enrollment.StudyID)
	if err != nil {
		return nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}

	return &dto.BotLinkTelegramResponse{
		Message:         "Telegram account linked successfully",
		EnrollmentID:    enrollment.ID,
		StudyPublicName: study.PublicName,
		ContactMessage:  study.ContactMessage,
	}, nil
}

// Unenroll turns delivery off for every enrollment linked to the Telegram
// account. Rows and pings stay; nothing is deleted.
func (s *BotFlowImpl) Unenroll(ctx context.Context, req *dto.BotUnenrollRequest, metadata *ClientMetadata) (*dto.BotUnenrollResponse, error) {
	count, err := s.enrollmentRepo.UnenrollByTelegramID(ctx, req.TelegramID)
	if err != nil {
		return nil, NewBusinessError("UNENROLL_FAILED", "Failed to unenroll", err)
	}
	if count == 0 {
		return nil, NewBusinessError("TELEGRAM_NOT_ENROLLED", "No active enrollment for that Telegram account", ErrTelegramNotEnrolled)
	}

	return &dto.BotUnenrollResponse{
		Message:    "Unenrolled successfully",
		Unenrolled: count,
	}, nil
}

// ListPings retrieves dispatchable pings scheduled inside [start, end) with
// their outgoing bodies already constructed, for transports that pre-build
// their day instead of polling.
func (s *BotFlowImpl) ListPings(ctx context.Context, req *dto.BotListPingsRequest) (*dto.BotListPingsResponse, error) {
	pings, err := s.pingRepo.ListScheduledBetween(ctx, req.StartTs, req.EndTs)
	if err != nil {
		return nil, NewBusinessError("PING_LIST_FAILED", "Failed to list pings", err)
	}

	items := make([]dto.BotPingDTO, 0, len(pings))
	for _, ping := range pings {
		items = append(items, s.toBotPingDTO(ping))
	}

	return &dto.BotListPingsResponse{
		Message: "Pings retrieved successfully",
		Items:   items,
	}, nil
}

// MarkSent records that an external transport delivered the ping. A false
// Transitioned means the guard held: already sent, expired, or deleted.
func (s *BotFlowImpl) MarkSent(ctx context.Context, pingID uint, metadata *ClientMetadata) (*dto.BotTransitionResponse, error) {
	ok, err := s.pingRepo.MarkSent(ctx, pingID, utils.UTCNow())
	if err != nil {
		return nil, NewBusinessError("PING_TRANSITION_FAILED", "Failed to mark ping sent", err)
	}

	message := "Ping marked as sent"
	if !ok {
		message = "Ping was not eligible; nothing changed"
	}
	return &dto.BotTransitionResponse{Message: message, Transitioned: ok}, nil
}

// MarkReminded records that an external transport delivered the reminder.
func (s *BotFlowImpl) MarkReminded(ctx context.Context, pingID uint, metadata *ClientMetadata) (*dto.BotTransitionResponse, error) {
	ok, err := s.pingRepo.MarkReminded(ctx, pingID, utils.UTCNow())
	if err != nil {
		return nil, NewBusinessError("PING_TRANSITION_FAILED", "Failed to mark ping reminded", err)
	}

	message := "Reminder marked as sent"
	if !ok {
		message = "Reminder was not eligible; nothing changed"
	}
	return &dto.BotTransitionResponse{Message: message, Transitioned: ok}, nil
}

// toBotPingDTO renders a ping for the relay, message constructed in the
// participant's zone
func (s *BotFlowImpl) toBotPingDTO(ping *models.Ping) dto.BotPingDTO {
	mc := NewMessageConstructor(ping, s.engineConfig.BaseURL, s.engineConfig.DefaultURLText)

	telegramID := ""
	if e := ping.Enrollment; e != nil && e.TelegramID != nil {
		telegramID = *e.TelegramID
	}

	return dto.BotPingDTO{
		ID:           ping.ID,
		TelegramID:   telegramID,
		ScheduledTs:  ping.ScheduledTs,
		ReminderTs:   ping.ReminderTs,
		ExpireTs:     ping.ExpireTs,
		Message:      mc.ConstructMessage(),
		PingSent:     ping.PingSent,
		ReminderSent: ping.ReminderSent,
	}
}
