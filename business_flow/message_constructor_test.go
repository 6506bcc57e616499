package businessflow_test

import (
	"fmt"
	"testing"
	"time"

	businessflow "github.com/emalab/pingflow/business_flow"
	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/utils"
	"github.com/stretchr/testify/assert"
)

func newConstructorPing() *models.Ping {
	scheduled := time.Date(2024, 6, 10, 16, 0, 0, 0, time.UTC)
	return &models.Ping{
		ID:             42,
		DayNum:         3,
		ScheduledTs:    scheduled,
		ReminderTs:     utils.ToPtr(scheduled.Add(time.Hour)),
		ExpireTs:       utils.ToPtr(scheduled.Add(24 * time.Hour)),
		ForwardingCode: "fwdcode123",
		Message:        "Day <DAY_NUM> check-in for <STUDY_PUBLIC_NAME>",
		Study: &models.Study{
			ID:             7,
			PublicName:     "Daily Mood Study",
			InternalName:   "mood-study",
			ContactMessage: utils.ToPtr("Contact the study team at study@example.com"),
		},
		PingTemplate: &models.PingTemplate{
			ID:   11,
			Name: "morning-checkin",
		},
		Enrollment: &models.Enrollment{
			ID:          23,
			StudyPID:    "pid-0000023",
			TZ:          "America/New_York",
			PRCompleted: 0.25,
			CreatedAt:   time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC),
		},
	}
}

func TestConstructMessage(t *testing.T) {
	t.Run("PlaceholderSubstitution", func(t *testing.T) {
		ping := newConstructorPing()
		ping.Message = "<PING_ID>|<DAY_NUM>|<PING_TEMPLATE_ID>|<PING_TEMPLATE_NAME>|" +
			"<STUDY_ID>|<STUDY_PUBLIC_NAME>|<STUDY_INTERNAL_NAME>|<STUDY_CONTACT_MSG>|" +
			"<PID>|<ENROLLMENT_ID>|<PR_COMPLETED>"

		mc := businessflow.NewMessageConstructor(ping, "https://pings.example.com", "")
		got := mc.ConstructMessage()

		assert.Equal(t, "42|3|11|morning-checkin|"+
			"7|Daily Mood Study|mood-study|Contact the study team at study@example.com|"+
			"pid-0000023|23|0.25", got)
	})

	t.Run("TimestampsRenderInParticipantZone", func(t *testing.T) {
		ping := newConstructorPing()
		ping.Message = "<SCHEDULED_TIME>"

		mc := businessflow.NewMessageConstructor(ping, "https://pings.example.com", "")

		// 16:00 UTC is noon EDT
		assert.Equal(t, "2024-06-10 12:00:00 PM EDT", mc.ConstructMessage())
	})

	t.Run("MissingValuesRenderEmpty", func(t *testing.T) {
		ping := newConstructorPing()
		ping.ReminderTs = nil
		ping.ExpireTs = nil
		ping.Study.ContactMessage = nil
		ping.Message = "[<REMINDER_TIME>][<EXPIRE_TIME>][<STUDY_CONTACT_MSG>]"

		mc := businessflow.NewMessageConstructor(ping, "https://pings.example.com", "")
		assert.Equal(t, "[][][]", mc.ConstructMessage())
	})

	t.Run("URLPlaceholderBecomesForwardingLink", func(t *testing.T) {
		ping := newConstructorPing()
		ping.URL = utils.ToPtr("https://survey.example.com?pid=<PID>")
		ping.PingTemplate.URLText = utils.ToPtr("Open survey")
		ping.Message = "Time for your check-in: <URL>"

		// The trailing slash on the base URL is dropped
		mc := businessflow.NewMessageConstructor(ping, "https://pings.example.com/", "")
		got := mc.ConstructMessage()

		want := "Time for your check-in: " +
			"<a href='https://pings.example.com/api/v1/ping/42?code=fwdcode123'>Open survey</a>"
		assert.Equal(t, want, got)
	})

	t.Run("LinkAppendedWhenBodyHasNoPlaceholder", func(t *testing.T) {
		ping := newConstructorPing()
		ping.URL = utils.ToPtr("https://survey.example.com")
		ping.Message = "Time for your check-in"

		mc := businessflow.NewMessageConstructor(ping, "https://pings.example.com", "")
		got := mc.ConstructMessage()

		assert.Contains(t, got, "Time for your check-in\n\n<a href=")
		assert.Contains(t, got, utils.DefaultSurveyLinkText)
	})

	t.Run("NoSurveyURLMeansNoLink", func(t *testing.T) {
		ping := newConstructorPing()
		ping.URL = nil
		ping.Message = "Check in now: <URL>"

		mc := businessflow.NewMessageConstructor(ping, "https://pings.example.com", "")
		assert.Equal(t, "Check in now: ", mc.ConstructMessage())
	})

	t.Run("LinkTextPlaceholdersAreSubstituted", func(t *testing.T) {
		ping := newConstructorPing()
		ping.URL = utils.ToPtr("https://survey.example.com")
		ping.PingTemplate.URLText = utils.ToPtr("Day <DAY_NUM> survey")
		ping.Message = "<URL>"

		mc := businessflow.NewMessageConstructor(ping, "https://pings.example.com", "")
		assert.Contains(t, mc.ConstructMessage(), ">Day 3 survey</a>")
	})
}

func TestConstructReminder(t *testing.T) {
	ping := newConstructorPing()
	ping.Message = "Day <DAY_NUM> check-in"

	mc := businessflow.NewMessageConstructor(ping, "https://pings.example.com", "")
	assert.Equal(t, utils.ReminderPrefix+"Day 3 check-in", mc.ConstructReminder())
}

func TestConstructSurveyURL(t *testing.T) {
	t.Run("PlaceholdersInQueryString", func(t *testing.T) {
		ping := newConstructorPing()
		ping.URL = utils.ToPtr("https://survey.example.com?pid=<PID>&ping=<PING_ID>&t=<SCHEDULED_TIME>")

		mc := businessflow.NewMessageConstructor(ping, "https://pings.example.com", "")

		// Timestamps render as RFC 3339 UTC inside URLs, not participant-local
		want := fmt.Sprintf("https://survey.example.com?pid=pid-0000023&ping=42&t=%s",
			ping.ScheduledTs.UTC().Format(time.RFC3339))
		assert.Equal(t, want, mc.ConstructSurveyURL())
	})

	t.Run("EmptyWithoutURL", func(t *testing.T) {
		ping := newConstructorPing()
		ping.URL = nil

		mc := businessflow.NewMessageConstructor(ping, "https://pings.example.com", "")
		assert.Equal(t, "", mc.ConstructSurveyURL())
	})
}

func TestConstructPingLink(t *testing.T) {
	ping := newConstructorPing()
	ping.URL = utils.ToPtr("https://survey.example.com")

	// Without a template override the configured default text is used
	mc := businessflow.NewMessageConstructor(ping, "https://pings.example.com", "Tap here")
	assert.Equal(t,
		"<a href='https://pings.example.com/api/v1/ping/42?code=fwdcode123'>Tap here</a>",
		mc.ConstructPingLink())

	ping.PingTemplate.URLText = utils.ToPtr("Open survey")
	assert.Equal(t,
		"<a href='https://pings.example.com/api/v1/ping/42?code=fwdcode123'>Open survey</a>",
		mc.ConstructPingLink())
}
