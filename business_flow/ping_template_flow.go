// Package businessflow contains the core business logic and use cases for ping template workflows
package businessflow

import (
	"context"
	"fmt"

	"github.com/emalab/pingflow/app/dto"
	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/repository"
	"github.com/emalab/pingflow/utils"
	"gorm.io/gorm"
)

// PingTemplateFlow handles the ping template business logic
type PingTemplateFlow interface {
	CreatePingTemplate(ctx context.Context, req *dto.CreatePingTemplateRequest, metadata *ClientMetadata) (*dto.CreatePingTemplateResponse, error)
	GetPingTemplate(ctx context.Context, req *dto.GetPingTemplateRequest) (*dto.GetPingTemplateResponse, error)
	UpdatePingTemplate(ctx context.Context, req *dto.UpdatePingTemplateRequest, metadata *ClientMetadata) (*dto.UpdatePingTemplateResponse, error)
	DeletePingTemplate(ctx context.Context, accountID, studyID, templateID uint, metadata *ClientMetadata) (*dto.DeletePingTemplateResponse, error)
	ListPingTemplates(ctx context.Context, accountID, studyID uint) (*dto.ListPingTemplatesResponse, error)
}

// PingTemplateFlowImpl implements the ping template business flow
type PingTemplateFlowImpl struct {
	studyRepo    repository.StudyRepository
	memberRepo   repository.StudyMemberRepository
	templateRepo repository.PingTemplateRepository
	pingRepo     repository.PingRepository
	db           *gorm.DB
}

// NewPingTemplateFlow creates a new ping template flow instance
func NewPingTemplateFlow(
	studyRepo repository.StudyRepository,
	memberRepo repository.StudyMemberRepository,
	templateRepo repository.PingTemplateRepository,
	pingRepo repository.PingRepository,
	db *gorm.DB,
) PingTemplateFlow {
	return &PingTemplateFlowImpl{
		studyRepo:    studyRepo,
		memberRepo:   memberRepo,
		templateRepo: templateRepo,
		pingRepo:     pingRepo,
		db:           db,
	}
}

// CreatePingTemplate creates a template. Existing enrollments are not
// re-materialized; the template only applies to enrollments created after it.
func (s *PingTemplateFlowImpl) CreatePingTemplate(ctx context.Context, req *dto.CreatePingTemplateRequest, metadata *ClientMetadata) (*dto.CreatePingTemplateResponse, error) {
	_, _, err := authorizeStudy(ctx, s.studyRepo, s.memberRepo, req.AccountID, req.StudyID, models.RoleEditor)
	if err != nil {
		return nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}

	if err := req.Schedule.Validate(); err != nil {
		return nil, NewBusinessError("INVALID_SCHEDULE", "Schedule is invalid", fmt.Errorf("%w: %v", ErrScheduleInvalid, err))
	}

	template := &models.PingTemplate{
		StudyID:         req.StudyID,
		Name:            req.Name,
		Message:         req.Message,
		URL:             req.URL,
		URLText:         req.URLText,
		ReminderLatency: req.ReminderLatency,
		ExpireLatency:   req.ExpireLatency,
		Schedule:        req.Schedule,
	}
	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, NewBusinessError("TEMPLATE_CREATION_FAILED", "Ping template creation failed", err)
	}

	return &dto.CreatePingTemplateResponse{
		Message:  "Ping template created successfully",
		Template: toPingTemplateDTO(*template),
	}, nil
}

// GetPingTemplate retrieves a template of a study the caller belongs to
func (s *PingTemplateFlowImpl) GetPingTemplate(ctx context.Context, req *dto.GetPingTemplateRequest) (*dto.GetPingTemplateResponse, error) {
	_, _, err := authorizeStudy(ctx, s.studyRepo, s.memberRepo, req.AccountID, req.StudyID, models.RoleViewer)
	if err != nil {
		return nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}

	template, err := s.templateInStudy(ctx, req.TemplateID, req.StudyID)
	if err != nil {
		return nil, NewBusinessError("TEMPLATE_LOOKUP_FAILED", "Failed to lookup ping template", err)
	}

	return &dto.GetPingTemplateResponse{Template: toPingTemplateDTO(template)}, nil
}

// UpdatePingTemplate updates a template. Schedule changes only shape future
// materialization; pings already placed keep their scheduled instants.
func (s *PingTemplateFlowImpl) UpdatePingTemplate(ctx context.Context, req *dto.UpdatePingTemplateRequest, metadata *ClientMetadata) (*dto.UpdatePingTemplateResponse, error) {
	_, _, err := authorizeStudy(ctx, s.studyRepo, s.memberRepo, req.AccountID, req.StudyID, models.RoleEditor)
	if err != nil {
		return nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}

	template, err := s.templateInStudy(ctx, req.TemplateID, req.StudyID)
	if err != nil {
		return nil, NewBusinessError("TEMPLATE_LOOKUP_FAILED", "Failed to lookup ping template", err)
	}

	if req.Name != nil {
		template.Name = *req.Name
	}
	if req.Message != nil {
		template.Message = *req.Message
	}
	if req.URL != nil {
		template.URL = req.URL
	}
	if req.URLText != nil {
		template.URLText = req.URLText
	}
	if req.ReminderLatency != nil {
		template.ReminderLatency = req.ReminderLatency
	}
	if req.ExpireLatency != nil {
		template.ExpireLatency = req.ExpireLatency
	}
	if req.Schedule != nil {
		if err := req.Schedule.Validate(); err != nil {
			return nil, NewBusinessError("INVALID_SCHEDULE", "Schedule is invalid", fmt.Errorf("%w: %v", ErrScheduleInvalid, err))
		}
		template.Schedule = *req.Schedule
	}

	if err := s.templateRepo.Update(ctx, template); err != nil {
		return nil, NewBusinessError("TEMPLATE_UPDATE_FAILED", "Ping template update failed", err)
	}

	return &dto.UpdatePingTemplateResponse{
		Message:  "Ping template updated successfully",
		Template: toPingTemplateDTO(template),
	}, nil
}

// DeletePingTemplate soft-deletes a template together with its pings that
// have not been sent yet. Sent pings stay for the study's records.
func (s *PingTemplateFlowImpl) DeletePingTemplate(ctx context.Context, accountID, studyID, templateID uint, metadata *ClientMetadata) (*dto.DeletePingTemplateResponse, error) {
	_, _, err := authorizeStudy(ctx, s.studyRepo, s.memberRepo, accountID, studyID, models.RoleEditor)
	if err != nil {
		return nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}

	if _, err := s.templateInStudy(ctx, templateID, studyID); err != nil {
		return nil, NewBusinessError("TEMPLATE_LOOKUP_FAILED", "Failed to lookup ping template", err)
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if err := s.templateRepo.SoftDelete(txCtx, templateID); err != nil {
			return err
		}
		return s.pingRepo.SoftDeleteUnsentByTemplate(txCtx, templateID)
	})
	if err != nil {
		return nil, NewBusinessError("TEMPLATE_DELETION_FAILED", "Ping template deletion failed", err)
	}

	return &dto.DeletePingTemplateResponse{Message: "Ping template deleted successfully"}, nil
}

// ListPingTemplates retrieves the templates of a study
func (s *PingTemplateFlowImpl) ListPingTemplates(ctx context.Context, accountID, studyID uint) (*dto.ListPingTemplatesResponse, error) {
	_, _, err := authorizeStudy(ctx, s.studyRepo, s.memberRepo, accountID, studyID, models.RoleViewer)
	if err != nil {
		return nil, NewBusinessError("STUDY_LOOKUP_FAILED", "Failed to lookup study", err)
	}

	templates, err := s.templateRepo.ListByStudy(ctx, studyID)
	if err != nil {
		return nil, NewBusinessError("TEMPLATE_LIST_FAILED", "Failed to list ping templates", err)
	}

	items := make([]dto.PingTemplateDTO, 0, len(templates))
	for _, t := range templates {
		items = append(items, toPingTemplateDTO(*t))
	}

	return &dto.ListPingTemplatesResponse{
		Message: "Ping templates retrieved successfully",
		Items:   items,
	}, nil
}

// templateInStudy loads a template and confirms it belongs to the study the
// caller was authorized against. Templates of other studies read as not found.
func (s *PingTemplateFlowImpl) templateInStudy(ctx context.Context, templateID, studyID uint) (models.PingTemplate, error) {
	template, err := getPingTemplate(ctx, s.templateRepo, templateID)
	if err != nil {
		return models.PingTemplate{}, err
	}
	if template.StudyID != studyID {
		return models.PingTemplate{}, ErrTemplateNotFound
	}
	return template, nil
}

// toPingTemplateDTO converts a template model to its response shape
func toPingTemplateDTO(template models.PingTemplate) dto.PingTemplateDTO {
	return dto.PingTemplateDTO{
		ID:              template.ID,
		StudyID:         template.StudyID,
		Name:            template.Name,
		Message:         template.Message,
		URL:             template.URL,
		URLText:         template.URLText,
		ReminderLatency: template.ReminderLatency,
		ExpireLatency:   template.ExpireLatency,
		Schedule:        template.Schedule,
		CreatedAt:       template.CreatedAt,
		UpdatedAt:       utils.ToPtr(template.UpdatedAt),
	}
}
