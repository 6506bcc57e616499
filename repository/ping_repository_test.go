package repository_test

import (
	"testing"
	"time"

	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/repository"
	testingutil "github.com/emalab/pingflow/testing"
	"github.com/emalab/pingflow/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingRepositoryCreateIgnoreDuplicate(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPingRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		account, err := fixtures.CreateTestAccount()
		require.NoError(t, err)
		study, err := fixtures.CreateTestStudy(account.ID)
		require.NoError(t, err)
		template, err := fixtures.CreateTestPingTemplate(study.ID, models.Schedule{})
		require.NoError(t, err)
		enrollment, err := fixtures.CreateTestEnrollment(study.ID, "America/New_York")
		require.NoError(t, err)

		scheduled := time.Date(2024, 6, 10, 16, 0, 0, 0, time.UTC)

		t.Run("FirstInsertCreates", func(t *testing.T) {
			ping := &models.Ping{
				StudyID:        study.ID,
				PingTemplateID: template.ID,
				EnrollmentID:   enrollment.ID,
				DayNum:         0,
				ScheduledTs:    scheduled,
				Message:        "check in",
			}

			inserted, err := repo.CreateIgnoreDuplicate(ctx, ping)
			require.NoError(t, err)
			assert.True(t, inserted)
			assert.NotZero(t, ping.ID)
			// The create hook fills the forwarding code
			assert.NotEmpty(t, ping.ForwardingCode)
		})

		t.Run("SameIdentityIsIgnored", func(t *testing.T) {
			duplicate := &models.Ping{
				StudyID:        study.ID,
				PingTemplateID: template.ID,
				EnrollmentID:   enrollment.ID,
				DayNum:         0,
				ScheduledTs:    scheduled,
				Message:        "check in again",
			}

			inserted, err := repo.CreateIgnoreDuplicate(ctx, duplicate)
			require.NoError(t, err)
			assert.False(t, inserted)

			count, err := repo.Count(ctx, models.PingFilter{EnrollmentID: &enrollment.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		t.Run("DifferentInstantCreates", func(t *testing.T) {
			other := &models.Ping{
				StudyID:        study.ID,
				PingTemplateID: template.ID,
				EnrollmentID:   enrollment.ID,
				DayNum:         0,
				ScheduledTs:    scheduled.Add(time.Hour),
				Message:        "check in",
			}

			inserted, err := repo.CreateIgnoreDuplicate(ctx, other)
			require.NoError(t, err)
			assert.True(t, inserted)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestPingRepositoryListDue(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPingRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		now := utils.UTCNow()

		account, err := fixtures.CreateTestAccount()
		require.NoError(t, err)
		study, err := fixtures.CreateTestStudy(account.ID)
		require.NoError(t, err)
		template, err := fixtures.CreateTestPingTemplate(study.ID, models.Schedule{})
		require.NoError(t, err)
		linked, err := fixtures.CreateLinkedEnrollment(study.ID, "111222333")
		require.NoError(t, err)
		unlinked, err := fixtures.CreateTestEnrollment(study.ID, "America/New_York")
		require.NoError(t, err)

		due, err := fixtures.CreateTestPing(study.ID, template.ID, linked.ID, 0, now.Add(-time.Hour))
		require.NoError(t, err)

		// Not yet due
		_, err = fixtures.CreateTestPing(study.ID, template.ID, linked.ID, 1, now.Add(time.Hour))
		require.NoError(t, err)

		// Due but expired
		expired, err := fixtures.CreateTestPing(study.ID, template.ID, linked.ID, 2, now.Add(-2*time.Hour))
		require.NoError(t, err)
		err = testDB.DB.Model(expired).Update("expire_ts", now.Add(-time.Minute)).Error
		require.NoError(t, err)

		// Due but the enrollment has no Telegram account linked
		_, err = fixtures.CreateTestPing(study.ID, template.ID, unlinked.ID, 0, now.Add(-time.Hour))
		require.NoError(t, err)

		t.Run("OnlyDueDeliverablePings", func(t *testing.T) {
			pings, err := repo.ListDue(ctx, now, 0)
			require.NoError(t, err)
			require.Len(t, pings, 1)
			assert.Equal(t, due.ID, pings[0].ID)

			// Relations needed for message construction come preloaded
			require.NotNil(t, pings[0].Enrollment)
			assert.Equal(t, linked.ID, pings[0].Enrollment.ID)
			require.NotNil(t, pings[0].PingTemplate)
			require.NotNil(t, pings[0].Study)
		})

		t.Run("SentPingsDropOut", func(t *testing.T) {
			ok, err := repo.MarkSent(ctx, due.ID, now)
			require.NoError(t, err)
			require.True(t, ok)

			pings, err := repo.ListDue(ctx, now, 0)
			require.NoError(t, err)
			assert.Empty(t, pings)
		})

		t.Run("UnenrolledParticipantsDropOut", func(t *testing.T) {
			another, err := fixtures.CreateLinkedEnrollment(study.ID, "444555666")
			require.NoError(t, err)
			_, err = fixtures.CreateTestPing(study.ID, template.ID, another.ID, 0, now.Add(-time.Hour))
			require.NoError(t, err)

			pings, err := repo.ListDue(ctx, now, 0)
			require.NoError(t, err)
			require.Len(t, pings, 1)

			err = testDB.DB.Model(another).Update("enrolled", false).Error
			require.NoError(t, err)

			pings, err = repo.ListDue(ctx, now, 0)
			require.NoError(t, err)
			assert.Empty(t, pings)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestPingRepositoryTransitions(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPingRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		now := utils.UTCNow()

		account, err := fixtures.CreateTestAccount()
		require.NoError(t, err)
		study, err := fixtures.CreateTestStudy(account.ID)
		require.NoError(t, err)
		template, err := fixtures.CreateTestPingTemplate(study.ID, models.Schedule{})
		require.NoError(t, err)
		enrollment, err := fixtures.CreateLinkedEnrollment(study.ID, "111222333")
		require.NoError(t, err)

		t.Run("MarkSentOnce", func(t *testing.T) {
			ping, err := fixtures.CreateTestPing(study.ID, template.ID, enrollment.ID, 0, now.Add(-time.Hour))
			require.NoError(t, err)

			ok, err := repo.MarkSent(ctx, ping.ID, now)
			require.NoError(t, err)
			assert.True(t, ok)

			var reloaded models.Ping
			require.NoError(t, testDB.DB.First(&reloaded, ping.ID).Error)
			assert.True(t, reloaded.PingSent)
			require.NotNil(t, reloaded.SentTs)
			assert.WithinDuration(t, now, *reloaded.SentTs, time.Second)

			// A second transition is a no-op, not an error
			ok, err = repo.MarkSent(ctx, ping.ID, now)
			require.NoError(t, err)
			assert.False(t, ok)
		})

		t.Run("MarkSentRefusesExpired", func(t *testing.T) {
			ping, err := fixtures.CreateTestPing(study.ID, template.ID, enrollment.ID, 1, now.Add(-2*time.Hour))
			require.NoError(t, err)
			err = testDB.DB.Model(ping).Update("expire_ts", now.Add(-time.Minute)).Error
			require.NoError(t, err)

			ok, err := repo.MarkSent(ctx, ping.ID, now)
			require.NoError(t, err)
			assert.False(t, ok)

			var reloaded models.Ping
			require.NoError(t, testDB.DB.First(&reloaded, ping.ID).Error)
			assert.False(t, reloaded.PingSent)
		})

		t.Run("MarkRemindedRequiresSent", func(t *testing.T) {
			ping, err := fixtures.CreateTestPing(study.ID, template.ID, enrollment.ID, 2, now.Add(-time.Hour))
			require.NoError(t, err)
			err = testDB.DB.Model(ping).Update("reminder_ts", now.Add(-time.Minute)).Error
			require.NoError(t, err)

			// Unsent pings cannot be reminded
			ok, err := repo.MarkReminded(ctx, ping.ID, now)
			require.NoError(t, err)
			assert.False(t, ok)

			ok, err = repo.MarkSent(ctx, ping.ID, now)
			require.NoError(t, err)
			require.True(t, ok)

			ok, err = repo.MarkReminded(ctx, ping.ID, now)
			require.NoError(t, err)
			assert.True(t, ok)

			var reloaded models.Ping
			require.NoError(t, testDB.DB.First(&reloaded, ping.ID).Error)
			assert.True(t, reloaded.ReminderSent)
			require.NotNil(t, reloaded.ReminderSentTs)

			// Reminding twice is a no-op
			ok, err = repo.MarkReminded(ctx, ping.ID, now)
			require.NoError(t, err)
			assert.False(t, ok)
		})

		t.Run("MissingPingIsNoOp", func(t *testing.T) {
			ok, err := repo.MarkSent(ctx, 999999, now)
			require.NoError(t, err)
			assert.False(t, ok)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestPingRepositoryRecordClick(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPingRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		now := utils.UTCNow()

		account, err := fixtures.CreateTestAccount()
		require.NoError(t, err)
		study, err := fixtures.CreateTestStudy(account.ID)
		require.NoError(t, err)
		template, err := fixtures.CreateTestPingTemplate(study.ID, models.Schedule{})
		require.NoError(t, err)
		enrollment, err := fixtures.CreateLinkedEnrollment(study.ID, "111222333")
		require.NoError(t, err)

		ping, err := fixtures.CreateTestPing(study.ID, template.ID, enrollment.ID, 0, now.Add(-time.Hour))
		require.NoError(t, err)

		first := now.Add(-10 * time.Minute)
		second := now.Add(-5 * time.Minute)

		require.NoError(t, repo.RecordClick(ctx, ping.ID, first))

		var reloaded models.Ping
		require.NoError(t, testDB.DB.First(&reloaded, ping.ID).Error)
		require.NotNil(t, reloaded.FirstClickedTs)
		require.NotNil(t, reloaded.LastClickedTs)
		assert.WithinDuration(t, first, *reloaded.FirstClickedTs, time.Second)
		assert.WithinDuration(t, first, *reloaded.LastClickedTs, time.Second)

		// The first click timestamp survives later clicks
		require.NoError(t, repo.RecordClick(ctx, ping.ID, second))

		require.NoError(t, testDB.DB.First(&reloaded, ping.ID).Error)
		assert.WithinDuration(t, first, *reloaded.FirstClickedTs, time.Second)
		assert.WithinDuration(t, second, *reloaded.LastClickedTs, time.Second)

		return nil
	})
	require.NoError(t, err)
}

func TestPingRepositoryListForClaim(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPingRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		now := utils.UTCNow()

		account, err := fixtures.CreateTestAccount()
		require.NoError(t, err)
		study, err := fixtures.CreateTestStudy(account.ID)
		require.NoError(t, err)
		template, err := fixtures.CreateTestPingTemplate(study.ID, models.Schedule{})
		require.NoError(t, err)
		enrollment, err := fixtures.CreateTestEnrollment(study.ID, "America/New_York")
		require.NoError(t, err)

		dayOne, err := fixtures.CreateTestPing(study.ID, template.ID, enrollment.ID, 1, now.Add(24*time.Hour))
		require.NoError(t, err)
		dayZero, err := fixtures.CreateTestPing(study.ID, template.ID, enrollment.ID, 0, now)
		require.NoError(t, err)

		pings, err := repo.ListForClaim(ctx, enrollment.ID, template.ID)
		require.NoError(t, err)
		require.Len(t, pings, 2)
		assert.Equal(t, dayZero.ID, pings[0].ID)
		assert.Equal(t, dayOne.ID, pings[1].ID)

		// Soft-deleted pings stay visible so their windows remain claimed
		require.NoError(t, repo.SoftDelete(ctx, dayZero.ID))

		pings, err = repo.ListForClaim(ctx, enrollment.ID, template.ID)
		require.NoError(t, err)
		assert.Len(t, pings, 2)

		// Regular filtered reads still hide them
		count, err := repo.Count(ctx, models.PingFilter{EnrollmentID: &enrollment.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		return nil
	})
	require.NoError(t, err)
}

func TestPingRepositoryListDueReminders(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPingRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		now := utils.UTCNow()

		account, err := fixtures.CreateTestAccount()
		require.NoError(t, err)
		study, err := fixtures.CreateTestStudy(account.ID)
		require.NoError(t, err)
		template, err := fixtures.CreateTestPingTemplate(study.ID, models.Schedule{})
		require.NoError(t, err)
		enrollment, err := fixtures.CreateLinkedEnrollment(study.ID, "111222333")
		require.NoError(t, err)

		makeSentPing := func(dayNum int) *models.Ping {
			ping, err := fixtures.CreateTestPing(study.ID, template.ID, enrollment.ID, dayNum, now.Add(-time.Hour))
			require.NoError(t, err)
			err = testDB.DB.Model(ping).Updates(map[string]any{
				"ping_sent":   true,
				"sent_ts":     now.Add(-time.Hour),
				"reminder_ts": now.Add(-time.Minute),
			}).Error
			require.NoError(t, err)
			return ping
		}

		remindable := makeSentPing(0)
		clicked := makeSentPing(1)
		require.NoError(t, repo.RecordClick(ctx, clicked.ID, now.Add(-30*time.Minute)))

		// Sent but the reminder is not due yet
		future, err := fixtures.CreateTestPing(study.ID, template.ID, enrollment.ID, 2, now.Add(-time.Hour))
		require.NoError(t, err)
		err = testDB.DB.Model(future).Updates(map[string]any{
			"ping_sent":   true,
			"sent_ts":     now.Add(-time.Hour),
			"reminder_ts": now.Add(time.Hour),
		}).Error
		require.NoError(t, err)

		pings, err := repo.ListDueReminders(ctx, now, 0)
		require.NoError(t, err)
		require.Len(t, pings, 1)

		// A participant who already clicked through is not nagged again
		assert.Equal(t, remindable.ID, pings[0].ID)

		return nil
	})
	require.NoError(t, err)
}
