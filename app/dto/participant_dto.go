package dto

import (
	"time"
)

// SignupRequest represents a participant joining a study with its signup code.
// TZ may be omitted; the enrollment starts in UTC until a zone is known.
type SignupRequest struct {
	SignupCode string  `json:"signup_code" validate:"required,max=32"`
	StudyPID   string  `json:"study_pid" validate:"required,max=255"`
	TZ         *string `json:"tz,omitempty" validate:"omitempty,max=50,timezone"`
}

// SignupResponse represents the response to a participant signup. The link
// code is what the participant hands to the Telegram bot.
type SignupResponse struct {
	Message          string    `json:"message"`
	EnrollmentID     uint      `json:"enrollment_id"`
	StudyID          uint      `json:"study_id"`
	StudyPublicName  string    `json:"study_public_name"`
	StudyPID         string    `json:"study_pid"`
	TZ               string    `json:"tz"`
	TelegramLinkCode string    `json:"telegram_link_code"`
	LinkCodeExpireTs time.Time `json:"link_code_expire_ts"`
	BotName          string    `json:"bot_name"`
	PingsCreated     int       `json:"pings_created"`
}
