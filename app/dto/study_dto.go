package dto

import (
	"time"
)

// CreateStudyRequest represents the request to create a new study
type CreateStudyRequest struct {
	AccountID      uint    `json:"-"`
	PublicName     string  `json:"public_name" validate:"required,max=255"`
	InternalName   string  `json:"internal_name" validate:"required,max=255"`
	ContactMessage *string `json:"contact_message,omitempty" validate:"omitempty,max=2000"`
}

// StudyDTO represents a study in responses; Role is the caller's role on it
type StudyDTO struct {
	ID             uint       `json:"id"`
	PublicName     string     `json:"public_name"`
	InternalName   string     `json:"internal_name"`
	Code           string     `json:"code"`
	ContactMessage *string    `json:"contact_message,omitempty"`
	Role           string     `json:"role"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// CreateStudyResponse represents the response to create a new study
type CreateStudyResponse struct {
	Message string   `json:"message"`
	Study   StudyDTO `json:"study"`
}

// GetStudyRequest represents the request to get an existing study
type GetStudyRequest struct {
	AccountID uint `json:"-"`
	StudyID   uint `json:"-"`
}

// GetStudyResponse represents the response to get an existing study
type GetStudyResponse struct {
	Study StudyDTO `json:"study"`
}

// UpdateStudyRequest represents the request to update an existing study
type UpdateStudyRequest struct {
	AccountID      uint    `json:"-"`
	StudyID        uint    `json:"-"`
	PublicName     *string `json:"public_name,omitempty" validate:"omitempty,max=255"`
	InternalName   *string `json:"internal_name,omitempty" validate:"omitempty,max=255"`
	ContactMessage *string `json:"contact_message,omitempty" validate:"omitempty,max=2000"`
}

// UpdateStudyResponse represents the response to update an existing study
type UpdateStudyResponse struct {
	Message string   `json:"message"`
	Study   StudyDTO `json:"study"`
}

// DeleteStudyResponse represents the response to delete a study
type DeleteStudyResponse struct {
	Message string `json:"message"`
}

// ListStudiesResponse represents the studies the caller belongs to
type ListStudiesResponse struct {
	Message string     `json:"message"`
	Items   []StudyDTO `json:"items"`
}

// AddStudyMemberRequest represents the request to grant an account a role on a study
type AddStudyMemberRequest struct {
	AccountID uint   `json:"-"`
	StudyID   uint   `json:"-"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Role      string `json:"role" validate:"required,oneof=owner editor viewer"`
}

// StudyMemberDTO represents a study membership in responses
type StudyMemberDTO struct {
	AccountID uint      `json:"account_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AddStudyMemberResponse represents the response to add a member to a study
type AddStudyMemberResponse struct {
	Message string         `json:"message"`
	Member  StudyMemberDTO `json:"member"`
}

// ListStudyMembersResponse represents the members of a study
type ListStudyMembersResponse struct {
	Message string           `json:"message"`
	Items   []StudyMemberDTO `json:"items"`
}

// UpdateStudyMemberRoleRequest represents the request to change a member's role
type UpdateStudyMemberRoleRequest struct {
	AccountID       uint   `json:"-"`
	StudyID         uint   `json:"-"`
	MemberAccountID uint   `json:"-"`
	Role            string `json:"role" validate:"required,oneof=owner editor viewer"`
}

// UpdateStudyMemberRoleResponse represents the response to change a member's role
type UpdateStudyMemberRoleResponse struct {
	Message string `json:"message"`
	Role    string `json:"role"`
}

// RemoveStudyMemberRequest represents the request to remove a member from a study
type RemoveStudyMemberRequest struct {
	AccountID       uint `json:"-"`
	StudyID         uint `json:"-"`
	MemberAccountID uint `json:"-"`
}

// RemoveStudyMemberResponse represents the response to remove a member from a study
type RemoveStudyMemberResponse struct {
	Message string `json:"message"`
}
