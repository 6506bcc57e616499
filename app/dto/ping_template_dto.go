package dto

import (
	"time"

	"github.com/emalab/pingflow/models"
)

// CreatePingTemplateRequest represents the request to create a ping template
type CreatePingTemplateRequest struct {
	AccountID       uint            `json:"-"`
	StudyID         uint            `json:"-"`
	Name            string          `json:"name" validate:"required,max=255"`
	Message         string          `json:"message" validate:"required"`
	URL             *string         `json:"url,omitempty" validate:"omitempty,max=2048"`
	URLText         *string         `json:"url_text,omitempty" validate:"omitempty,max=255"`
	ReminderLatency *models.Latency `json:"reminder_latency,omitempty"`
	ExpireLatency   *models.Latency `json:"expire_latency,omitempty"`
	Schedule        models.Schedule `json:"schedule"`
}

// PingTemplateDTO represents a ping template in responses
type PingTemplateDTO struct {
	ID              uint            `json:"id"`
	StudyID         uint            `json:"study_id"`
	Name            string          `json:"name"`
	Message         string          `json:"message"`
	URL             *string         `json:"url,omitempty"`
	URLText         *string         `json:"url_text,omitempty"`
	ReminderLatency *models.Latency `json:"reminder_latency,omitempty"`
	ExpireLatency   *models.Latency `json:"expire_latency,omitempty"`
	Schedule        models.Schedule `json:"schedule"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`
}

// CreatePingTemplateResponse represents the response to create a ping template
type CreatePingTemplateResponse struct {
	Message  string          `json:"message"`
	Template PingTemplateDTO `json:"template"`
}

// GetPingTemplateRequest represents the request to get a ping template
type GetPingTemplateRequest struct {
	AccountID  uint `json:"-"`
	StudyID    uint `json:"-"`
	TemplateID uint `json:"-"`
}

// GetPingTemplateResponse represents the response to get a ping template
type GetPingTemplateResponse struct {
	Template PingTemplateDTO `json:"template"`
}

// UpdatePingTemplateRequest represents the request to update a ping template.
// Schedule edits only affect future materialization; existing pings keep
// their placements.
type UpdatePingTemplateRequest struct {
	AccountID       uint             `json:"-"`
	StudyID         uint             `json:"-"`
	TemplateID      uint             `json:"-"`
	Name            *string          `json:"name,omitempty" validate:"omitempty,max=255"`
	Message         *string          `json:"message,omitempty"`
	URL             *string          `json:"url,omitempty" validate:"omitempty,max=2048"`
	URLText         *string          `json:"url_text,omitempty" validate:"omitempty,max=255"`
	ReminderLatency *models.Latency  `json:"reminder_latency,omitempty"`
	ExpireLatency   *models.Latency  `json:"expire_latency,omitempty"`
	Schedule        *models.Schedule `json:"schedule,omitempty"`
}

// UpdatePingTemplateResponse represents the response to update a ping template
type UpdatePingTemplateResponse struct {
	Message  string          `json:"message"`
	Template PingTemplateDTO `json:"template"`
}

// DeletePingTemplateResponse represents the response to delete a ping template
type DeletePingTemplateResponse struct {
	Message string `json:"message"`
}

// ListPingTemplatesResponse represents the templates of a study
type ListPingTemplatesResponse struct {
	Message string            `json:"message"`
	Items   []PingTemplateDTO `json:"items"`
}
