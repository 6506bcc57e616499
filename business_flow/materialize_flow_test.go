package businessflow_test

import (
	"sync"
	"testing"
	"time"

	businessflow "github.com/emalab/pingflow/business_flow"
	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/repository"
	testingutil "github.com/emalab/pingflow/testing"
	"github.com/emalab/pingflow/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMaterializeFlow(testDB *testingutil.TestDB, pick businessflow.OccurrencePicker) businessflow.MaterializeFlow {
	return businessflow.NewMaterializeFlow(
		repository.NewEnrollmentRepository(testDB.DB),
		repository.NewPingTemplateRepository(testDB.DB),
		repository.NewPingRepository(testDB.DB),
		testDB.DB,
		pick,
	)
}

func TestMaterializeEnrollment(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		pingRepo := repository.NewPingRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		flow := newMaterializeFlow(testDB, nil)

		account, err := fixtures.CreateTestAccount()
		require.NoError(t, err)
		study, err := fixtures.CreateTestStudy(account.ID)
		require.NoError(t, err)
		template, err := fixtures.CreateTestPingTemplate(study.ID, models.Schedule{
			{StartDayNum: 0, StartTime: "09:00", EndDayNum: 0, EndTime: "09:00"},
			{StartDayNum: 1, StartTime: "09:00", EndDayNum: 1, EndTime: "17:00"},
		})
		require.NoError(t, err)
		enrollment, err := fixtures.CreateTestEnrollment(study.ID, "UTC")
		require.NoError(t, err)

		t.Run("FirstRunCreatesEveryWindow", func(t *testing.T) {
			created, err := flow.MaterializeEnrollment(ctx, enrollment.ID)
			require.NoError(t, err)
			assert.Equal(t, 2, created)

			pings, err := pingRepo.ByFilter(ctx, models.PingFilter{EnrollmentID: &enrollment.ID}, "day_num ASC", 0, 0)
			require.NoError(t, err)
			require.Len(t, pings, 2)

			// The exact day-0 window pins to 09:00 on the start date
			assert.Equal(t, 0, pings[0].DayNum)
			assert.WithinDuration(t, enrollment.StartDate.Add(9*time.Hour), pings[0].ScheduledTs, time.Second)

			// The ranged day-1 window lands somewhere inside its bounds
			assert.Equal(t, 1, pings[1].DayNum)
			windowStart := enrollment.StartDate.Add(24*time.Hour + 9*time.Hour)
			windowEnd := enrollment.StartDate.Add(24*time.Hour + 17*time.Hour)
			assert.False(t, pings[1].ScheduledTs.Before(windowStart))
			assert.False(t, pings[1].ScheduledTs.After(windowEnd))

			// Body and survey URL are copied off the template
			assert.Equal(t, template.Message, pings[0].Message)
			require.NotNil(t, pings[0].URL)
			assert.Equal(t, *template.URL, *pings[0].URL)
			assert.NotEmpty(t, pings[0].ForwardingCode)
			assert.NotEqual(t, pings[0].ForwardingCode, pings[1].ForwardingCode)
		})

		t.Run("RerunKeepsRandomPlacement", func(t *testing.T) {
			before, err := pingRepo.ByFilter(ctx, models.PingFilter{EnrollmentID: &enrollment.ID}, "day_num ASC", 0, 0)
			require.NoError(t, err)

			// Re-expansion would pick a fresh random instant, but existing
			// pings claim their windows so nothing moves and nothing inserts.
			created, err := flow.MaterializeEnrollment(ctx, enrollment.ID)
			require.NoError(t, err)
			assert.Equal(t, 0, created)

			after, err := pingRepo.ByFilter(ctx, models.PingFilter{EnrollmentID: &enrollment.ID}, "day_num ASC", 0, 0)
			require.NoError(t, err)
			require.Len(t, after, len(before))
			for i := range before {
				assert.Equal(t, before[i].ID, after[i].ID)
				assert.True(t, before[i].ScheduledTs.Equal(after[i].ScheduledTs))
			}
		})

		t.Run("NewWindowOnlyAddsItself", func(t *testing.T) {
			schedule := append(template.Schedule, models.ScheduleWindow{
				StartDayNum: 2, StartTime: "09:00", EndDayNum: 2, EndTime: "09:00",
			})
			err := testDB.DB.Model(template).Update("schedule", schedule).Error
			require.NoError(t, err)

			created, err := flow.MaterializeEnrollment(ctx, enrollment.ID)
			require.NoError(t, err)
			assert.Equal(t, 1, created)

			count, err := pingRepo.Count(ctx, models.PingFilter{EnrollmentID: &enrollment.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(3), count)
		})

		t.Run("DeletedOccurrenceStaysDead", func(t *testing.T) {
			dayTwo := 2
			pings, err := pingRepo.ByFilter(ctx, models.PingFilter{EnrollmentID: &enrollment.ID, DayNum: &dayTwo}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, pings, 1)

			require.NoError(t, pingRepo.SoftDelete(ctx, pings[0].ID))

			// The deleted row still claims its window on the next sweep
			created, err := flow.MaterializeEnrollment(ctx, enrollment.ID)
			require.NoError(t, err)
			assert.Equal(t, 0, created)

			count, err := pingRepo.Count(ctx, models.PingFilter{EnrollmentID: &enrollment.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)
		})

		t.Run("MissingEnrollment", func(t *testing.T) {
			_, err := flow.MaterializeEnrollment(ctx, 999999)
			assert.Error(t, err)
		})

		t.Run("BadTimezone", func(t *testing.T) {
			broken := &models.Enrollment{
				StudyID:   study.ID,
				StudyPID:  "pid-badzone",
				TZ:        "Not/AZone",
				StartDate: utils.DateOnly(utils.UTCNow()),
				Enrolled:  true,
			}
			require.NoError(t, testDB.DB.Create(broken).Error)

			_, err := flow.MaterializeEnrollment(ctx, broken.ID)
			assert.Error(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestMaterializeLatencies(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		pingRepo := repository.NewPingRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		flow := newMaterializeFlow(testDB, nil)

		account, err := fixtures.CreateTestAccount()
		require.NoError(t, err)
		study, err := fixtures.CreateTestStudy(account.ID)
		require.NoError(t, err)

		reminder := models.Latency(time.Hour)
		expire := models.Latency(24 * time.Hour)
		template := &models.PingTemplate{
			StudyID:         study.ID,
			Name:            "evening-checkin",
			Message:         "How was your day?",
			ReminderLatency: &reminder,
			ExpireLatency:   &expire,
			Schedule: models.Schedule{
				{StartDayNum: 0, StartTime: "20:00", EndDayNum: 0, EndTime: "20:00"},
			},
		}
		require.NoError(t, testDB.DB.Create(template).Error)

		enrollment, err := fixtures.CreateTestEnrollment(study.ID, "UTC")
		require.NoError(t, err)

		created, err := flow.MaterializeEnrollment(ctx, enrollment.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, created)

		pings, err := pingRepo.ByFilter(ctx, models.PingFilter{EnrollmentID: &enrollment.ID}, "", 0, 0)
		require.NoError(t, err)
		require.Len(t, pings, 1)

		// Reminder and expiry are offsets from the scheduled instant
		require.NotNil(t, pings[0].ReminderTs)
		require.NotNil(t, pings[0].ExpireTs)
		assert.WithinDuration(t, pings[0].ScheduledTs.Add(time.Hour), *pings[0].ReminderTs, time.Second)
		assert.WithinDuration(t, pings[0].ScheduledTs.Add(24*time.Hour), *pings[0].ExpireTs, time.Second)

		return nil
	})
	require.NoError(t, err)
}

func TestMaterializeEnrollmentConcurrently(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		pingRepo := repository.NewPingRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		account, err := fixtures.CreateTestAccount()
		require.NoError(t, err)
		study, err := fixtures.CreateTestStudy(account.ID)
		require.NoError(t, err)
		_, err = fixtures.CreateTestPingTemplate(study.ID, models.Schedule{
			{StartDayNum: 0, StartTime: "09:00", EndDayNum: 0, EndTime: "17:00"},
			{StartDayNum: 1, StartTime: "09:00", EndDayNum: 1, EndTime: "17:00"},
			{StartDayNum: 2, StartTime: "09:00", EndDayNum: 2, EndTime: "17:00"},
		})
		require.NoError(t, err)
		enrollment, err := fixtures.CreateTestEnrollment(study.ID, "UTC")
		require.NoError(t, err)

		// Two instances sweeping the same enrollment at once; the row lock
		// and the identity index keep the result exactly one ping per window
		const workers = 2
		createdBy := make([]int, workers)
		errs := make([]error, workers)

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				flow := newMaterializeFlow(testDB, nil)
				createdBy[i], errs[i] = flow.MaterializeEnrollment(ctx, enrollment.ID)
			}(i)
		}
		wg.Wait()

		total := 0
		for i := 0; i < workers; i++ {
			require.NoError(t, errs[i])
			total += createdBy[i]
		}
		assert.Equal(t, 3, total)

		count, err := pingRepo.Count(ctx, models.PingFilter{EnrollmentID: &enrollment.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		return nil
	})
	require.NoError(t, err)
}

func TestMaterializeStudy(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		pingRepo := repository.NewPingRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		flow := newMaterializeFlow(testDB, nil)

		account, err := fixtures.CreateTestAccount()
		require.NoError(t, err)
		study, err := fixtures.CreateTestStudy(account.ID)
		require.NoError(t, err)
		_, err = fixtures.CreateTestPingTemplate(study.ID, models.Schedule{
			{StartDayNum: 0, StartTime: "09:00", EndDayNum: 0, EndTime: "09:00"},
		})
		require.NoError(t, err)

		first, err := fixtures.CreateTestEnrollment(study.ID, "UTC")
		require.NoError(t, err)
		second, err := fixtures.CreateTestEnrollment(study.ID, "America/New_York")
		require.NoError(t, err)

		// Withdrawn participants are skipped by the sweep
		withdrawn, err := fixtures.CreateTestEnrollment(study.ID, "UTC")
		require.NoError(t, err)
		require.NoError(t, testDB.DB.Model(withdrawn).Update("enrolled", false).Error)

		created, err := flow.MaterializeStudy(ctx, study.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, created)

		for _, enrollment := range []*models.Enrollment{first, second} {
			count, err := pingRepo.Count(ctx, models.PingFilter{EnrollmentID: &enrollment.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		}

		count, err := pingRepo.Count(ctx, models.PingFilter{EnrollmentID: &withdrawn.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		return nil
	})
	require.NoError(t, err)
}
