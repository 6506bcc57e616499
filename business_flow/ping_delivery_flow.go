// Package businessflow contains the core business logic and use cases for ping delivery
package businessflow

import (
	"context"
	"log"

	"github.com/emalab/pingflow/app/services"
	"github.com/emalab/pingflow/config"
	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/repository"
	"github.com/emalab/pingflow/utils"
)

// PingDeliveryFlow pushes due pings and reminders out through the configured
// message sender. Each dispatch sends first and transitions after, so a
// failed transition is a duplicate message at worst, never a silent drop.
// A false transition means another instance won the ping; that dispatch is
// counted as neither sent nor failed.
type PingDeliveryFlow interface {
	DispatchDuePings(ctx context.Context) (sent, failed int, err error)
	DispatchDueReminders(ctx context.Context) (sent, failed int, err error)
}

// PingDeliveryFlowImpl implements the delivery business flow
type PingDeliveryFlowImpl struct {
	pingRepo     repository.PingRepository
	sender       services.MessageSender
	engineConfig *config.EngineConfig
	batchSize    int
}

// NewPingDeliveryFlow creates a new delivery flow instance
func NewPingDeliveryFlow(
	pingRepo repository.PingRepository,
	sender services.MessageSender,
	engineConfig *config.EngineConfig,
	batchSize int,
) PingDeliveryFlow {
	return &PingDeliveryFlowImpl{
		pingRepo:     pingRepo,
		sender:       sender,
		engineConfig: engineConfig,
		batchSize:    batchSize,
	}
}

// DispatchDuePings sends every due ping, up to the batch size. Send failures
// are logged and the ping stays due for the next tick.
func (s *PingDeliveryFlowImpl) DispatchDuePings(ctx context.Context) (int, int, error) {
	pings, err := s.pingRepo.ListDue(ctx, utils.UTCNow(), s.batchSize)
	if err != nil {
		return 0, 0, NewBusinessError("PING_DISPATCH_FAILED", "Failed to list due pings", err)
	}

	sent, failed := 0, 0
	for _, ping := range pings {
		if ctx.Err() != nil {
			return sent, failed, ctx.Err()
		}

		ok, err := s.dispatch(ctx, ping, false)
		if err != nil {
			failed++
			log.Printf("Warning: failed to dispatch ping %d (enrollment %d): %v", ping.ID, ping.EnrollmentID, err)
			continue
		}
		if ok {
			sent++
		}
	}

	return sent, failed, nil
}

// DispatchDueReminders sends the reminder variant for every sent, unclicked,
// unexpired ping whose reminder time has arrived.
func (s *PingDeliveryFlowImpl) DispatchDueReminders(ctx context.Context) (int, int, error) {
	pings, err := s.pingRepo.ListDueReminders(ctx, utils.UTCNow(), s.batchSize)
	if err != nil {
		return 0, 0, NewBusinessError("REMINDER_DISPATCH_FAILED", "Failed to list due reminders", err)
	}

	sent, failed := 0, 0
	for _, ping := range pings {
		if ctx.Err() != nil {
			return sent, failed, ctx.Err()
		}

		ok, err := s.dispatch(ctx, ping, true)
		if err != nil {
			failed++
			log.Printf("Warning: failed to dispatch reminder for ping %d (enrollment %d): %v", ping.ID, ping.EnrollmentID, err)
			continue
		}
		if ok {
			sent++
		}
	}

	return sent, failed, nil
}

// dispatch sends one ping or its reminder and applies the matching
// transition. Returns false with no error when the transition guard held.
func (s *PingDeliveryFlowImpl) dispatch(ctx context.Context, ping *models.Ping, reminder bool) (bool, error) {
	enrollment := ping.Enrollment
	if enrollment == nil || !enrollment.IsLinked() {
		return false, nil
	}

	mc := NewMessageConstructor(ping, s.engineConfig.BaseURL, s.engineConfig.DefaultURLText)

	var text string
	if reminder {
		text = mc.ConstructReminder()
	} else {
		text = mc.ConstructMessage()
	}

	if err := s.sender.SendMessage(ctx, *enrollment.TelegramID, text); err != nil {
		return false, err
	}

	if reminder {
		return s.pingRepo.MarkReminded(ctx, ping.ID, utils.UTCNow())
	}
	return s.pingRepo.MarkSent(ctx, ping.ID, utils.UTCNow())
}
