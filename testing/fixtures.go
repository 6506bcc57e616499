// Package testing provides test utilities and database setup for testing the ping scheduling engine
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/utils"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestAccount creates a researcher account with a hashed password
func (tf *TestFixtures) CreateTestAccount() (*models.Account, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	randomDigits := fmt.Sprintf("%09d", rand.Intn(900000000)+100000000)

	account := &models.Account{
		Email:        fmt.Sprintf("jane.doe.%s@example.com", randomDigits),
		PasswordHash: string(hashedPassword),
		FirstName:    "Jane",
		LastName:     "Doe",
		Institution:  utils.ToPtr("Example University"),
	}

	err = tf.DB.DB.Create(account).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test account: %w", err)
	}

	return account, nil
}

// CreateTestStudy creates a study with a unique signup code and grants the
// given account the owner role on it
func (tf *TestFixtures) CreateTestStudy(ownerID uint) (*models.Study, error) {
	code, err := utils.GenerateNonConfusableCode(utils.StudySignupCodeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signup code: %w", err)
	}

	study := &models.Study{
		PublicName:     "Daily Mood Study",
		InternalName:   fmt.Sprintf("mood-study-%d", rand.Intn(10000000)),
		Code:           code,
		ContactMessage: utils.ToPtr("Contact the study team at study@example.com"),
	}

	err = tf.DB.DB.Create(study).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test study: %w", err)
	}

	if _, err := tf.CreateTestMember(ownerID, study.ID, models.RoleOwner); err != nil {
		return nil, err
	}

	return study, nil
}

// CreateTestMember grants an account a role on a study
func (tf *TestFixtures) CreateTestMember(accountID, studyID uint, role models.StudyRole) (*models.StudyMember, error) {
	member := &models.StudyMember{
		AccountID: accountID,
		StudyID:   studyID,
		Role:      role,
	}

	err := tf.DB.DB.Create(member).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test study member: %w", err)
	}

	return member, nil
}

// CreateTestPingTemplate creates a ping template with the given schedule
func (tf *TestFixtures) CreateTestPingTemplate(studyID uint, schedule models.Schedule) (*models.PingTemplate, error) {
	template := &models.PingTemplate{
		StudyID:  studyID,
		Name:     fmt.Sprintf("morning-checkin-%d", rand.Intn(10000000)),
		Message:  "Day <DAY_NUM> check-in for <STUDY_PUBLIC_NAME>: <URL>",
		URL:      utils.ToPtr("https://survey.example.com?pid=<PID>"),
		URLText:  utils.ToPtr("Open survey"),
		Schedule: schedule,
	}

	err := tf.DB.DB.Create(template).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test ping template: %w", err)
	}

	return template, nil
}

// CreateTestEnrollment enrolls a participant in a study starting today
func (tf *TestFixtures) CreateTestEnrollment(studyID uint, tz string) (*models.Enrollment, error) {
	enrollment := &models.Enrollment{
		StudyID:   studyID,
		StudyPID:  fmt.Sprintf("pid-%07d", rand.Intn(10000000)),
		TZ:        tz,
		StartDate: utils.DateOnly(utils.UTCNow()),
		Enrolled:  true,
	}

	err := tf.DB.DB.Create(enrollment).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test enrollment: %w", err)
	}

	return enrollment, nil
}

// CreateLinkedEnrollment enrolls a participant and binds a Telegram account
// with a consumed link code, the state an enrollment reaches after the bot
// redeems the code
func (tf *TestFixtures) CreateLinkedEnrollment(studyID uint, telegramID string) (*models.Enrollment, error) {
	linkCode, err := utils.GenerateNonConfusableCode(utils.TelegramLinkCodeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate link code: %w", err)
	}

	enrollment := &models.Enrollment{
		StudyID:                  studyID,
		StudyPID:                 fmt.Sprintf("pid-%07d", rand.Intn(10000000)),
		TZ:                       "America/New_York",
		StartDate:                utils.DateOnly(utils.UTCNow()),
		Enrolled:                 true,
		TelegramID:               &telegramID,
		TelegramLinkCode:         &linkCode,
		TelegramLinkCodeExpireTs: utils.ToPtr(utils.UTCNowAdd(utils.TelegramLinkCodeTTL)),
		TelegramLinkCodeUsed:     true,
	}

	err = tf.DB.DB.Create(enrollment).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create linked enrollment: %w", err)
	}

	return enrollment, nil
}

// CreateTestPing materializes a single ping row directly
func (tf *TestFixtures) CreateTestPing(studyID, templateID, enrollmentID uint, dayNum int, scheduledTs time.Time) (*models.Ping, error) {
	forwardingCode, err := utils.GenerateForwardingCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate forwarding code: %w", err)
	}

	ping := &models.Ping{
		StudyID:        studyID,
		PingTemplateID: templateID,
		EnrollmentID:   enrollmentID,
		DayNum:         dayNum,
		ScheduledTs:    scheduledTs,
		ForwardingCode: forwardingCode,
		Message:        "Hello, time for your check-in",
		URL:            utils.ToPtr("https://survey.example.com?pid=pid-0000001"),
	}

	err = tf.DB.DB.Create(ping).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test ping: %w", err)
	}

	return ping, nil
}
