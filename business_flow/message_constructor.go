package businessflow

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/utils"
)

// MessageConstructor renders the outgoing text and survey URL for one ping.
// The body and URL are substituted at send time from the copies stored on
// the ping, so template edits never change what an already-materialized ping
// says. Placeholders with no value render as empty strings.
//
// Message placeholders: <PING_ID>, <REMINDER_TIME>, <SCHEDULED_TIME>,
// <EXPIRE_TIME>, <DAY_NUM>, <PING_TEMPLATE_ID>, <PING_TEMPLATE_NAME>,
// <STUDY_ID>, <STUDY_PUBLIC_NAME>, <STUDY_INTERNAL_NAME>,
// <STUDY_CONTACT_MSG>, <PID>, <ENROLLMENT_ID>, <ENROLLMENT_SIGNUP_DATE>,
// <PR_COMPLETED>, <URL>.
type MessageConstructor struct {
	ping           *models.Ping
	baseURL        string
	defaultURLText string
}

// NewMessageConstructor expects a ping with its Enrollment, PingTemplate,
// and Study relations loaded.
func NewMessageConstructor(ping *models.Ping, baseURL, defaultURLText string) *MessageConstructor {
	if defaultURLText == "" {
		defaultURLText = utils.DefaultSurveyLinkText
	}
	return &MessageConstructor{
		ping:           ping,
		baseURL:        strings.TrimRight(baseURL, "/"),
		defaultURLText: defaultURLText,
	}
}

// ConstructPingLink builds the HTML anchor whose href is the forwarding
// route, so a click is recorded before the participant reaches the survey.
func (mc *MessageConstructor) ConstructPingLink() string {
	urlText := mc.defaultURLText
	if t := mc.ping.PingTemplate; t != nil && t.URLText != nil && *t.URLText != "" {
		urlText = *t.URLText
	}
	return fmt.Sprintf("<a href='%s/api/v1/ping/%d?code=%s'>%s</a>",
		mc.baseURL, mc.ping.ID, mc.ping.ForwardingCode, urlText)
}

// ConstructMessage renders the ping body. <URL> becomes the forwarding
// anchor; a body without <URL> but with a survey URL gets the anchor
// appended. The anchor goes in before the placeholder pass, so placeholders
// inside the link text are substituted too.
func (mc *MessageConstructor) ConstructMessage() string {
	message := mc.ping.Message

	link := ""
	if mc.ping.URL != nil && *mc.ping.URL != "" {
		link = mc.ConstructPingLink()
	}
	if strings.Contains(message, "<URL>") {
		message = strings.ReplaceAll(message, "<URL>", link)
	} else if link != "" {
		message += "\n\n" + link
	}

	return strings.NewReplacer(mc.substitutions(mc.participantTs)...).Replace(message)
}

// ConstructReminder renders the reminder variant of the ping body.
func (mc *MessageConstructor) ConstructReminder() string {
	return utils.ReminderPrefix + mc.ConstructMessage()
}

// ConstructSurveyURL substitutes placeholders in the stored survey URL. This
// runs in the forwarding route, at the point the participant clicks, which
// is the first moment <PING_ID> is known to be final. Timestamps render as
// RFC 3339 so they survive inside query strings.
func (mc *MessageConstructor) ConstructSurveyURL() string {
	if mc.ping.URL == nil || *mc.ping.URL == "" {
		return ""
	}
	return strings.NewReplacer(mc.substitutions(mc.machineTs)...).Replace(*mc.ping.URL)
}

// participantTs formats a timestamp for display in the enrollment's zone.
func (mc *MessageConstructor) participantTs(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return ts.In(mc.location()).Format(utils.ParticipantTimestampLayout)
}

// machineTs formats a timestamp for embedding in a URL.
func (mc *MessageConstructor) machineTs(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

func (mc *MessageConstructor) location() *time.Location {
	if e := mc.ping.Enrollment; e != nil {
		if loc, err := e.Location(); err == nil {
			return loc
		}
	}
	return time.UTC
}

func (mc *MessageConstructor) study() *models.Study {
	if mc.ping.Study != nil {
		return mc.ping.Study
	}
	if mc.ping.Enrollment != nil {
		return mc.ping.Enrollment.Study
	}
	return nil
}

// substitutions returns old/new pairs for every placeholder except <URL>,
// which ConstructMessage handles before this pass.
func (mc *MessageConstructor) substitutions(formatTs func(*time.Time) string) []string {
	var (
		templateID, templateName            string
		studyID, publicName, internalName   string
		contactMessage                      string
		pid, enrollmentID, signupTs, prDone string
	)
	if t := mc.ping.PingTemplate; t != nil {
		templateID = strconv.FormatUint(uint64(t.ID), 10)
		templateName = t.Name
	}
	if s := mc.study(); s != nil {
		studyID = strconv.FormatUint(uint64(s.ID), 10)
		publicName = s.PublicName
		internalName = s.InternalName
		if s.ContactMessage != nil {
			contactMessage = *s.ContactMessage
		}
	}
	if e := mc.ping.Enrollment; e != nil {
		pid = e.StudyPID
		enrollmentID = strconv.FormatUint(uint64(e.ID), 10)
		createdAt := e.CreatedAt
		signupTs = formatTs(&createdAt)
		prDone = strconv.FormatFloat(e.PRCompleted, 'g', -1, 64)
	}

	scheduledTs := mc.ping.ScheduledTs
	return []string{
		"<PING_ID>", strconv.FormatUint(uint64(mc.ping.ID), 10),
		"<REMINDER_TIME>", formatTs(mc.ping.ReminderTs),
		"<SCHEDULED_TIME>", formatTs(&scheduledTs),
		"<EXPIRE_TIME>", formatTs(mc.ping.ExpireTs),
		"<DAY_NUM>", strconv.Itoa(mc.ping.DayNum),
		"<PING_TEMPLATE_ID>", templateID,
		"<PING_TEMPLATE_NAME>", templateName,
		"<STUDY_ID>", studyID,
		"<STUDY_PUBLIC_NAME>", publicName,
		"<STUDY_INTERNAL_NAME>", internalName,
		"<STUDY_CONTACT_MSG>", contactMessage,
		"<PID>", pid,
		"<ENROLLMENT_ID>", enrollmentID,
		"<ENROLLMENT_SIGNUP_DATE>", signupTs,
		"<PR_COMPLETED>", prDone,
	}
}
