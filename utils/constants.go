package utils

import (
	"time"
)

// Token time constants
const (
	// AccessTokenTTL is the time-to-live for researcher access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// AccessTokenTTLSeconds is the time-to-live for access tokens in seconds (86400 seconds = 24 hours)
	AccessTokenTTLSeconds = 86400
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Participant linking constants
const (
	// TelegramLinkCodeTTL is how long a Telegram link code stays redeemable (1 day)
	TelegramLinkCodeTTL = 24 * time.Hour

	// TelegramLinkCodeLength is the length of the short code shown to participants
	TelegramLinkCodeLength = 6

	// StudySignupCodeLength is the length of generated study signup codes
	StudySignupCodeLength = 8

	// ForwardingCodeBytes is the entropy of a ping forwarding code (128 bits)
	ForwardingCodeBytes = 16
)

// Messaging constants
const (
	// DefaultSurveyLinkText is the anchor text used when a template has no url_text
	DefaultSurveyLinkText = "Click here to take the survey."

	// ReminderPrefix is prepended to a ping body when sending its reminder
	ReminderPrefix = "Reminder:\n"

	// ParticipantTimestampLayout renders timestamps for participant-facing messages
	ParticipantTimestampLayout = "2006-01-02 03:04:05 PM MST"
)

// Context keys for request-scoped metadata set by the HTTP layer
const (
	RequestIDKey  = "request_id"
	UserAgentKey  = "user_agent"
	IPAddressKey  = "ip_address"
	EndpointKey   = "endpoint"
	TimeoutKey    = "timeout"
	CancelFuncKey = "cancel_func"
)

// Cache keys, namespaced by the configured Redis prefix
const (
	// TelegramLinkCodeCacheKeyPrefix prefixes link-code to enrollment-id cache entries
	TelegramLinkCodeCacheKeyPrefix = "telegram_link_code:"

	// DailySweepLockKey guards the daily materialization sweep across instances
	DailySweepLockKey = "lock:daily_sweep"

	// SendTickLockKey guards the due-ping dispatch tick across instances
	SendTickLockKey = "lock:send_tick"

	// ReminderTickLockKey guards the reminder dispatch tick across instances
	ReminderTickLockKey = "lock:reminder_tick"
)
