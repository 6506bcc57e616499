package models_test

import (
	"testing"
	"time"

	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/utils"
	"github.com/stretchr/testify/assert"
)

func TestPingTransitions(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	t.Run("CanSend", func(t *testing.T) {
		fresh := &models.Ping{ScheduledTs: now.Add(-time.Minute)}
		assert.True(t, fresh.CanSend(now))

		sent := &models.Ping{ScheduledTs: now.Add(-time.Minute), PingSent: true}
		assert.False(t, sent.CanSend(now))

		expired := &models.Ping{
			ScheduledTs: now.Add(-2 * time.Hour),
			ExpireTs:    utils.ToPtr(now.Add(-time.Minute)),
		}
		assert.False(t, expired.CanSend(now))

		// Expiry exactly at now counts as expired
		boundary := &models.Ping{
			ScheduledTs: now.Add(-time.Hour),
			ExpireTs:    utils.ToPtr(now),
		}
		assert.False(t, boundary.CanSend(now))
		assert.True(t, boundary.IsExpired(now))
	})

	t.Run("CanRemind", func(t *testing.T) {
		reminderTs := utils.ToPtr(now.Add(-time.Minute))

		ready := &models.Ping{PingSent: true, ReminderTs: reminderTs}
		assert.True(t, ready.CanRemind(now))

		// A reminder never fires before the ping itself was sent
		unsent := &models.Ping{ReminderTs: reminderTs}
		assert.False(t, unsent.CanRemind(now))

		reminded := &models.Ping{PingSent: true, ReminderSent: true, ReminderTs: reminderTs}
		assert.False(t, reminded.CanRemind(now))

		noReminder := &models.Ping{PingSent: true}
		assert.False(t, noReminder.CanRemind(now))

		expired := &models.Ping{
			PingSent:   true,
			ReminderTs: reminderTs,
			ExpireTs:   utils.ToPtr(now.Add(-time.Second)),
		}
		assert.False(t, expired.CanRemind(now))
	})

	t.Run("IsExpired", func(t *testing.T) {
		// No expiry means the ping never expires
		open := &models.Ping{}
		assert.False(t, open.IsExpired(now))

		future := &models.Ping{ExpireTs: utils.ToPtr(now.Add(time.Second))}
		assert.False(t, future.IsExpired(now))
	})
}

func TestEnrollmentLinking(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	t.Run("LinkCodeRedeemable", func(t *testing.T) {
		active := &models.Enrollment{
			TelegramLinkCode:         utils.ToPtr("abc123"),
			TelegramLinkCodeExpireTs: utils.ToPtr(now.Add(time.Hour)),
		}
		assert.True(t, active.LinkCodeRedeemable(now))

		// No expiry on the code means it stays redeemable until used
		noExpiry := &models.Enrollment{TelegramLinkCode: utils.ToPtr("abc123")}
		assert.True(t, noExpiry.LinkCodeRedeemable(now))

		used := &models.Enrollment{
			TelegramLinkCode:     utils.ToPtr("abc123"),
			TelegramLinkCodeUsed: true,
		}
		assert.False(t, used.LinkCodeRedeemable(now))

		expired := &models.Enrollment{
			TelegramLinkCode:         utils.ToPtr("abc123"),
			TelegramLinkCodeExpireTs: utils.ToPtr(now),
		}
		assert.False(t, expired.LinkCodeRedeemable(now))

		missing := &models.Enrollment{}
		assert.False(t, missing.LinkCodeRedeemable(now))
	})

	t.Run("IsLinked", func(t *testing.T) {
		linked := &models.Enrollment{TelegramID: utils.ToPtr("123456789")}
		assert.True(t, linked.IsLinked())

		empty := &models.Enrollment{TelegramID: utils.ToPtr("")}
		assert.False(t, empty.IsLinked())

		unlinked := &models.Enrollment{}
		assert.False(t, unlinked.IsLinked())
	})

	t.Run("Location", func(t *testing.T) {
		e := &models.Enrollment{TZ: "America/New_York"}
		loc, err := e.Location()
		assert.NoError(t, err)
		assert.Equal(t, "America/New_York", loc.String())

		bogus := &models.Enrollment{TZ: "Not/AZone"}
		_, err = bogus.Location()
		assert.Error(t, err)
	})
}
