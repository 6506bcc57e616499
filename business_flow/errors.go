// Package businessflow contains the business logic for the application.
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Account and membership errors
	ErrAccountNotFound          = errors.New("account not found")
	ErrStudyNotFound            = errors.New("study not found")
	ErrStudyAccessDenied        = errors.New("study access denied")
	ErrMemberNotFound           = errors.New("study member not found")
	ErrMemberAlreadyExists      = errors.New("account is already a member of this study")
	ErrOwnerRoleChangeForbidden = errors.New("owners cannot change their own role")

	// Template errors
	ErrTemplateNotFound = errors.New("ping template not found")
	ErrScheduleInvalid  = errors.New("schedule is invalid")

	// Enrollment errors
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrDuplicatePID       = errors.New("an active enrollment with this study PID already exists")
	ErrInvalidTimezone    = errors.New("invalid timezone")
	ErrInvalidStartDate   = errors.New("invalid start date")

	// Ping errors
	ErrPingNotFound           = errors.New("ping not found")
	ErrForwardingCodeMismatch = errors.New("forwarding code mismatch")
	ErrPingURLMissing         = errors.New("ping has no URL")

	// Participant and bot errors
	ErrSignupCodeInvalid   = errors.New("invalid signup code")
	ErrLinkCodeInvalid     = errors.New("invalid telegram link code")
	ErrLinkCodeUsed        = errors.New("telegram link code already used")
	ErrLinkCodeExpired     = errors.New("telegram link code expired")
	ErrTelegramNotEnrolled = errors.New("telegram account has no active enrollment")

	// Infrastructure errors
	ErrCacheNotAvailable = errors.New("cache not available")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsAccountNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

func IsStudyNotFound(err error) bool {
	return errors.Is(err, ErrStudyNotFound)
}

func IsStudyAccessDenied(err error) bool {
	return errors.Is(err, ErrStudyAccessDenied)
}

func IsMemberNotFound(err error) bool {
	return errors.Is(err, ErrMemberNotFound)
}

func IsMemberAlreadyExists(err error) bool {
	return errors.Is(err, ErrMemberAlreadyExists)
}

func IsOwnerRoleChangeForbidden(err error) bool {
	return errors.Is(err, ErrOwnerRoleChangeForbidden)
}

func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}

func IsScheduleInvalid(err error) bool {
	return errors.Is(err, ErrScheduleInvalid)
}

func IsEnrollmentNotFound(err error) bool {
	return errors.Is(err, ErrEnrollmentNotFound)
}

func IsDuplicatePID(err error) bool {
	return errors.Is(err, ErrDuplicatePID)
}

func IsInvalidTimezone(err error) bool {
	return errors.Is(err, ErrInvalidTimezone)
}

func IsInvalidStartDate(err error) bool {
	return errors.Is(err, ErrInvalidStartDate)
}

func IsPingNotFound(err error) bool {
	return errors.Is(err, ErrPingNotFound)
}

func IsForwardingCodeMismatch(err error) bool {
	return errors.Is(err, ErrForwardingCodeMismatch)
}

func IsPingURLMissing(err error) bool {
	return errors.Is(err, ErrPingURLMissing)
}

func IsSignupCodeInvalid(err error) bool {
	return errors.Is(err, ErrSignupCodeInvalid)
}

func IsLinkCodeInvalid(err error) bool {
	return errors.Is(err, ErrLinkCodeInvalid)
}

func IsLinkCodeUsed(err error) bool {
	return errors.Is(err, ErrLinkCodeUsed)
}

func IsLinkCodeExpired(err error) bool {
	return errors.Is(err, ErrLinkCodeExpired)
}

func IsTelegramNotEnrolled(err error) bool {
	return errors.Is(err, ErrTelegramNotEnrolled)
}

func IsCacheNotAvailable(err error) bool {
	return errors.Is(err, ErrCacheNotAvailable)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
