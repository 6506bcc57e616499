package dto

import (
	"time"
)

// PingDTO represents a materialized ping in researcher-facing responses
type PingDTO struct {
	ID               uint       `json:"id"`
	StudyID          uint       `json:"study_id"`
	PingTemplateID   uint       `json:"ping_template_id"`
	PingTemplateName string     `json:"ping_template_name,omitempty"`
	EnrollmentID     uint       `json:"enrollment_id"`
	StudyPID         string     `json:"study_pid,omitempty"`
	DayNum           int        `json:"day_num"`
	ScheduledTs      time.Time  `json:"scheduled_ts"`
	ReminderTs       *time.Time `json:"reminder_ts,omitempty"`
	ExpireTs         *time.Time `json:"expire_ts,omitempty"`
	PingSent         bool       `json:"ping_sent"`
	SentTs           *time.Time `json:"sent_ts,omitempty"`
	ReminderSent     bool       `json:"reminder_sent"`
	ReminderSentTs   *time.Time `json:"reminder_sent_ts,omitempty"`
	FirstClickedTs   *time.Time `json:"first_clicked_ts,omitempty"`
	LastClickedTs    *time.Time `json:"last_clicked_ts,omitempty"`
	URL              *string    `json:"url,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// ListPingsRequest represents a paginated list request for a study's pings
type ListPingsRequest struct {
	AccountID      uint  `json:"-"`
	StudyID        uint  `json:"-"`
	Page           int   `json:"page"`
	Limit          int   `json:"limit"`
	EnrollmentID   *uint `json:"enrollment_id,omitempty"`
	PingTemplateID *uint `json:"ping_template_id,omitempty"`
	PingSent       *bool `json:"ping_sent,omitempty"`
}

// ListPingsResponse represents a paginated list of pings
type ListPingsResponse struct {
	Message    string         `json:"message"`
	Items      []PingDTO      `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}

// DeletePingResponse represents the response to delete a single ping
type DeletePingResponse struct {
	Message string `json:"message"`
}

// ExportPingsRequest represents the request to export a study's pings as a spreadsheet
type ExportPingsRequest struct {
	AccountID uint `json:"-"`
	StudyID   uint `json:"-"`
}
