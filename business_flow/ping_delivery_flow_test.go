package businessflow_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/emalab/pingflow/app/services"
	businessflow "github.com/emalab/pingflow/business_flow"
	"github.com/emalab/pingflow/config"
	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/repository"
	testingutil "github.com/emalab/pingflow/testing"
	"github.com/emalab/pingflow/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeliveryFlow(testDB *testingutil.TestDB, sender services.MessageSender, batchSize int) businessflow.PingDeliveryFlow {
	return businessflow.NewPingDeliveryFlow(
		repository.NewPingRepository(testDB.DB),
		sender,
		&config.EngineConfig{BaseURL: "https://pings.test", DefaultURLText: ""},
		batchSize,
	)
}

func TestDispatchDuePings(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		pingRepo := repository.NewPingRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		now := utils.UTCNow()

		mock := services.NewMockMessageSender()
		flow := newDeliveryFlow(testDB, mock, 0)

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

		t.Run("SendsAndMarksSent", func(t *testing.T) {
			sent, failed, err := flow.DispatchDuePings(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, sent)
			assert.Equal(t, 0, failed)

			messages := mock.Sent()
			require.Len(t, messages, 1)
			assert.Equal(t, "111222333", messages[0].TelegramID)
			assert.Contains(t, messages[0].Text, "Hello, time for your check-in")

			// The survey link goes through the forwarding route, not the raw URL
			assert.Contains(t, messages[0].Text, "https://pings.test/api/v1/ping/")
			assert.Contains(t, messages[0].Text, "?code=")
			assert.Contains(t, messages[0].Text, ">Open survey</a>")
			assert.NotContains(t, messages[0].Text, "survey.example.com")

			var reloaded models.Ping
			require.NoError(t, testDB.DB.First(&reloaded, ping.ID).Error)
			assert.True(t, reloaded.PingSent)
			require.NotNil(t, reloaded.SentTs)
		})

		t.Run("SecondTickSendsNothing", func(t *testing.T) {
			sent, failed, err := flow.DispatchDuePings(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, sent)
			assert.Equal(t, 0, failed)
			assert.Len(t, mock.Sent(), 1)
		})

		t.Run("FailedSendLeavesPingDue", func(t *testing.T) {
			blocked, err := fixtures.CreateLinkedEnrollment(study.ID, "999000111")
			require.NoError(t, err)
			retryPing, err := fixtures.CreateTestPing(study.ID, template.ID, blocked.ID, 0, now.Add(-time.Hour))
			require.NoError(t, err)

			mock.FailFor["999000111"] = errors.New("bot was blocked by the user")

			sent, failed, err := flow.DispatchDuePings(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, sent)
			assert.Equal(t, 1, failed)

			var reloaded models.Ping
			require.NoError(t, testDB.DB.First(&reloaded, retryPing.ID).Error)
			assert.False(t, reloaded.PingSent)

			// Once the chat accepts messages again the next tick delivers
			delete(mock.FailFor, "999000111")

			sent, failed, err = flow.DispatchDuePings(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, sent)
			assert.Equal(t, 0, failed)

			require.NoError(t, testDB.DB.First(&reloaded, retryPing.ID).Error)
			assert.True(t, reloaded.PingSent)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestDispatchBatchSize(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		now := utils.UTCNow()

		mock := services.NewMockMessageSender()
		flow := newDeliveryFlow(testDB, mock, 2)

		account, err := fixtures.CreateTestAccount()
		require.NoError(t, err)
		study, err := fixtures.CreateTestStudy(account.ID)
		require.NoError(t, err)
		template, err := fixtures.CreateTestPingTemplate(study.ID, models.Schedule{})
		require.NoError(t, err)
		enrollment, err := fixtures.CreateLinkedEnrollment(study.ID, "111222333")
		require.NoError(t, err)

		for day := 0; day < 3; day++ {
			_, err := fixtures.CreateTestPing(study.ID, template.ID, enrollment.ID, day, now.Add(-time.Duration(day+1)*time.Hour))
			require.NoError(t, err)
		}

		// Three due pings drain over two ticks of batch size two
		sent, failed, err := flow.DispatchDuePings(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, sent)
		assert.Equal(t, 0, failed)

		sent, failed, err = flow.DispatchDuePings(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Equal(t, 0, failed)

		assert.Len(t, mock.Sent(), 3)

		return nil
	})
	require.NoError(t, err)
}

func TestDispatchDueReminders(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		pingRepo := repository.NewPingRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		now := utils.UTCNow()

		mock := services.NewMockMessageSender()
		flow := newDeliveryFlow(testDB, mock, 0)

		account, err := fixtures.CreateTestAccount()
		require.NoError(t, err)
		study, err := fixtures.CreateTestStudy(account.ID)
		require.NoError(t, err)
		template, err := fixtures.CreateTestPingTemplate(study.ID, models.Schedule{})
		require.NoError(t, err)
		enrollment, err := fixtures.CreateLinkedEnrollment(study.ID, "111222333")
		require.NoError(t, err)

		ping, err := fixtures.CreateTestPing(study.ID, template.ID, enrollment.ID, 0, now.Add(-2*time.Hour))
		require.NoError(t, err)
		err = testDB.DB.Model(ping).Updates(map[string]any{
			"ping_sent":   true,
			"sent_ts":     now.Add(-2 * time.Hour),
			"reminder_ts": now.Add(-time.Minute),
		}).Error
		require.NoError(t, err)

		// The clicked ping's reminder is suppressed
		clicked, err := fixtures.CreateTestPing(study.ID, template.ID, enrollment.ID, 1, now.Add(-2*time.Hour))
		require.NoError(t, err)
		err = testDB.DB.Model(clicked).Updates(map[string]any{
			"ping_sent":   true,
			"sent_ts":     now.Add(-2 * time.Hour),
			"reminder_ts": now.Add(-time.Minute),
		}).Error
		require.NoError(t, err)
		require.NoError(t, pingRepo.RecordClick(ctx, clicked.ID, now.Add(-time.Hour)))

		sent, failed, err := flow.DispatchDueReminders(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Equal(t, 0, failed)

		messages := mock.Sent()
		require.Len(t, messages, 1)
		assert.True(t, strings.HasPrefix(messages[0].Text, utils.ReminderPrefix))
		assert.Contains(t, messages[0].Text, "Hello, time for your check-in")

		var reloaded models.Ping
		require.NoError(t, testDB.DB.First(&reloaded, ping.ID).Error)
		assert.True(t, reloaded.ReminderSent)
		require.NotNil(t, reloaded.ReminderSentTs)

		// Reminders go out once
		sent, failed, err = flow.DispatchDueReminders(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, sent)
		assert.Equal(t, 0, failed)
		assert.Len(t, mock.Sent(), 1)

		return nil
	})
	require.NoError(t, err)
}
