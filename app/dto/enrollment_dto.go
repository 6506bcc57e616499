package dto

import (
	"time"
)

// CreateEnrollmentRequest represents the request to enroll a participant through
// the researcher surface. StartDate defaults to today in the participant's zone.
type CreateEnrollmentRequest struct {
	AccountID uint    `json:"-"`
	StudyID   uint    `json:"-"`
	StudyPID  string  `json:"study_pid" validate:"required,max=255"`
	TZ        string  `json:"tz" validate:"required,max=50,timezone"`
	StartDate *string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// EnrollmentDTO represents an enrollment in responses. The Telegram identity
// itself stays private; only the linked flag is exposed.
type EnrollmentDTO struct {
	ID             uint       `json:"id"`
	StudyID        uint       `json:"study_id"`
	StudyPID       string     `json:"study_pid"`
	TZ             string     `json:"tz"`
	StartDate      string     `json:"start_date"`
	Enrolled       bool       `json:"enrolled"`
	TelegramLinked bool       `json:"telegram_linked"`
	PRCompleted    float64    `json:"pr_completed"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// CreateEnrollmentResponse represents the response to enroll a participant
type CreateEnrollmentResponse struct {
	Message      string        `json:"message"`
	Enrollment   EnrollmentDTO `json:"enrollment"`
	PingsCreated int           `json:"pings_created"`
}

// GetEnrollmentRequest represents the request to get an enrollment
type GetEnrollmentRequest struct {
	AccountID    uint `json:"-"`
	StudyID      uint `json:"-"`
	EnrollmentID uint `json:"-"`
}

// GetEnrollmentResponse represents the response to get an enrollment
type GetEnrollmentResponse struct {
	Enrollment EnrollmentDTO `json:"enrollment"`
}

// UpdateEnrollmentRequest represents the request to update an enrollment.
// None of these fields rewrite pings that were already materialized.
type UpdateEnrollmentRequest struct {
	AccountID    uint     `json:"-"`
	StudyID      uint     `json:"-"`
	EnrollmentID uint     `json:"-"`
	StudyPID     *string  `json:"study_pid,omitempty" validate:"omitempty,max=255"`
	TZ           *string  `json:"tz,omitempty" validate:"omitempty,max=50,timezone"`
	StartDate    *string  `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Enrolled     *bool    `json:"enrolled,omitempty"`
	PRCompleted  *float64 `json:"pr_completed,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// UpdateEnrollmentResponse represents the response to update an enrollment
type UpdateEnrollmentResponse struct {
	Message    string        `json:"message"`
	Enrollment EnrollmentDTO `json:"enrollment"`
}

// DeleteEnrollmentResponse represents the response to delete an enrollment
type DeleteEnrollmentResponse struct {
	Message string `json:"message"`
}

// ListEnrollmentsRequest represents a paginated list request for a study's enrollments
type ListEnrollmentsRequest struct {
	AccountID uint `json:"-"`
	StudyID   uint `json:"-"`
	Page      int  `json:"page"`
	Limit     int  `json:"limit"`
}

// ListEnrollmentsResponse represents a paginated list of enrollments
type ListEnrollmentsResponse struct {
	Message    string          `json:"message"`
	Items      []EnrollmentDTO `json:"items"`
	Pagination PaginationInfo  `json:"pagination"`
}

// MaterializeEnrollmentResponse represents the response to re-run ping
// materialization for one enrollment
type MaterializeEnrollmentResponse struct {
	Message      string `json:"message"`
	PingsCreated int    `json:"pings_created"`
	TotalPings   int64  `json:"total_pings"`
}
