package dto

import (
	"time"
)

// BotLinkTelegramRequest represents the bot redeeming a participant's link code
type BotLinkTelegramRequest struct {
	TelegramLinkCode string `json:"telegram_link_code" validate:"required,len=6"`
	TelegramID       string `json:"telegram_id" validate:"required,max=100"`
}

// BotLinkTelegramResponse represents the response to a successful link
type BotLinkTelegramResponse struct {
	Message         string  `json:"message"`
	EnrollmentID    uint    `json:"enrollment_id"`
	StudyPublicName string  `json:"study_public_name"`
	ContactMessage  *string `json:"contact_message,omitempty"`
}

// BotUnenrollRequest represents the bot unenrolling a Telegram account from
// every study it is enrolled in
type BotUnenrollRequest struct {
	TelegramID string `json:"telegram_id" validate:"required,max=100"`
}

// BotUnenrollResponse represents the response to an unenroll request
type BotUnenrollResponse struct {
	Message    string `json:"message"`
	Unenrolled int64  `json:"unenrolled"`
}

// BotPingDTO represents a ping the bot relay delivers, message already constructed
type BotPingDTO struct {
	ID           uint       `json:"id"`
	TelegramID   string     `json:"telegram_id"`
	ScheduledTs  time.Time  `json:"scheduled_ts"`
	ReminderTs   *time.Time `json:"reminder_ts,omitempty"`
	ExpireTs     *time.Time `json:"expire_ts,omitempty"`
	Message      string     `json:"message"`
	PingSent     bool       `json:"ping_sent"`
	ReminderSent bool       `json:"reminder_sent"`
}

// BotListPingsRequest represents the bot asking for pings scheduled in [start, end)
type BotListPingsRequest struct {
	StartTs time.Time `json:"start_ts" validate:"required"`
	EndTs   time.Time `json:"end_ts" validate:"required,gtfield=StartTs"`
}

// BotListPingsResponse represents the pings scheduled in the requested window
type BotListPingsResponse struct {
	Message string       `json:"message"`
	Items   []BotPingDTO `json:"items"`
}

// BotTransitionResponse reports whether a sent/reminded transition happened;
// a false Transitioned means the guard (already sent, expired, clicked) held
type BotTransitionResponse struct {
	Message      string `json:"message"`
	Transitioned bool   `json:"transitioned"`
}
