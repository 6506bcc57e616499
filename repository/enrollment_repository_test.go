package repository_test

import (
	"testing"

	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/repository"
	testingutil "github.com/emalab/pingflow/testing"
	"github.com/emalab/pingflow/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollmentRepositoryLookups(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewEnrollmentRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		account, err := fixtures.CreateTestAccount()
		require.NoError(t, err)
		study, err := fixtures.CreateTestStudy(account.ID)
		require.NoError(t, err)
		enrollment, err := fixtures.CreateTestEnrollment(study.ID, "America/New_York")
		require.NoError(t, err)

		t.Run("ByStudyAndPID", func(t *testing.T) {
			found, err := repo.ByStudyAndPID(ctx, study.ID, enrollment.StudyPID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, enrollment.ID, found.ID)

			// The participant label is scoped to its study
			missing, err := repo.ByStudyAndPID(ctx, study.ID+1, enrollment.StudyPID)
			require.NoError(t, err)
			assert.Nil(t, missing)
		})

		t.Run("ByIDPreloadsStudy", func(t *testing.T) {
			found, err := repo.ByID(ctx, enrollment.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			require.NotNil(t, found.Study)
			assert.Equal(t, study.ID, found.Study.ID)
		})

		t.Run("MissingEnrollmentIsNil", func(t *testing.T) {
			found, err := repo.ByID(ctx, 999999)
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestEnrollmentRepositoryTelegramLinking(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewEnrollmentRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		account, err := fixtures.CreateTestAccount()
		require.NoError(t, err)
		study, err := fixtures.CreateTestStudy(account.ID)
		require.NoError(t, err)

		linkCode, err := utils.GenerateNonConfusableCode(utils.TelegramLinkCodeLength)
		require.NoError(t, err)

		enrollment := &models.Enrollment{
			StudyID:                  study.ID,
			StudyPID:                 "pid-linkme",
			TZ:                       "America/New_York",
			StartDate:                utils.DateOnly(utils.UTCNow()),
			Enrolled:                 true,
			TelegramLinkCode:         &linkCode,
			TelegramLinkCodeExpireTs: utils.UTCNowAddPtr(utils.TelegramLinkCodeTTL),
		}
		require.NoError(t, testDB.DB.Create(enrollment).Error)

		t.Run("ByLinkCode", func(t *testing.T) {
			found, err := repo.ByLinkCode(ctx, linkCode)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, enrollment.ID, found.ID)
			assert.True(t, found.LinkCodeRedeemable(utils.UTCNow()))

			unknown, err := repo.ByLinkCode(ctx, "nosuchcode")
			require.NoError(t, err)
			assert.Nil(t, unknown)
		})

		t.Run("LinkTelegramBurnsCode", func(t *testing.T) {
			require.NoError(t, repo.LinkTelegram(ctx, enrollment.ID, "555666777"))

			found, err := repo.ByID(ctx, enrollment.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.True(t, found.IsLinked())
			assert.Equal(t, "555666777", *found.TelegramID)
			assert.True(t, found.TelegramLinkCodeUsed)

			// The code stays findable but is no longer redeemable
			reFound, err := repo.ByLinkCode(ctx, linkCode)
			require.NoError(t, err)
			require.NotNil(t, reFound)
			assert.False(t, reFound.LinkCodeRedeemable(utils.UTCNow()))
		})

		t.Run("UnenrollByTelegramID", func(t *testing.T) {
			// A second study the same participant is linked into
			otherStudy, err := fixtures.CreateTestStudy(account.ID)
			require.NoError(t, err)
			other, err := fixtures.CreateLinkedEnrollment(otherStudy.ID, "555666777")
			require.NoError(t, err)

			changed, err := repo.UnenrollByTelegramID(ctx, "555666777")
			require.NoError(t, err)
			assert.Equal(t, int64(2), changed)

			for _, id := range []uint{enrollment.ID, other.ID} {
				found, err := repo.ByID(ctx, id)
				require.NoError(t, err)
				require.NotNil(t, found)
				assert.False(t, found.Enrolled)
			}

			// Already-withdrawn enrollments do not count again
			changed, err = repo.UnenrollByTelegramID(ctx, "555666777")
			require.NoError(t, err)
			assert.Equal(t, int64(0), changed)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestEnrollmentRepositoryListActiveEnrolled(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewEnrollmentRepository(testDB.DB)
		studyRepo := repository.NewStudyRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		account, err := fixtures.CreateTestAccount()
		require.NoError(t, err)
		study, err := fixtures.CreateTestStudy(account.ID)
		require.NoError(t, err)
		deadStudy, err := fixtures.CreateTestStudy(account.ID)
		require.NoError(t, err)

		active, err := fixtures.CreateTestEnrollment(study.ID, "UTC")
		require.NoError(t, err)

		withdrawn, err := fixtures.CreateTestEnrollment(study.ID, "UTC")
		require.NoError(t, err)
		require.NoError(t, testDB.DB.Model(withdrawn).Update("enrolled", false).Error)

		// Enrollments of a deleted study drop out of the sweep
		_, err = fixtures.CreateTestEnrollment(deadStudy.ID, "UTC")
		require.NoError(t, err)
		require.NoError(t, studyRepo.SoftDelete(ctx, deadStudy.ID))

		enrollments, err := repo.ListActiveEnrolled(ctx)
		require.NoError(t, err)
		require.Len(t, enrollments, 1)
		assert.Equal(t, active.ID, enrollments[0].ID)

		return nil
	})
	require.NoError(t, err)
}
