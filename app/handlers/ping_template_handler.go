// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/emalab/pingflow/app/dto"
	businessflow "github.com/emalab/pingflow/business_flow"
	"github.com/emalab/pingflow/utils"
)

// PingTemplateHandlerInterface defines the contract for ping template handlers
type PingTemplateHandlerInterface interface {
	CreatePingTemplate(c fiber.Ctx) error
	ListPingTemplates(c fiber.Ctx) error
	GetPingTemplate(c fiber.Ctx) error
	UpdatePingTemplate(c fiber.Ctx) error
	DeletePingTemplate(c fiber.Ctx) error
}

// PingTemplateHandler handles ping template HTTP requests
type PingTemplateHandler struct {
	templateFlow businessflow.PingTemplateFlow
	validator    *validator.Validate
}

func (h *PingTemplateHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PingTemplateHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewPingTemplateHandler creates a new ping template handler
func NewPingTemplateHandler(templateFlow businessflow.PingTemplateFlow) PingTemplateHandlerInterface {
	return &PingTemplateHandler{
		templateFlow: templateFlow,
		validator:    validator.New(),
	}
}

// CreatePingTemplate handles ping template creation
// @Summary Create Ping Template
// @Description Create a ping template; enrollments created afterwards materialize pings from it
// @Tags Ping Templates
// @Accept json
// @Produce json
// @Param studyID path int true "Study ID"
// @Param request body dto.CreatePingTemplateRequest true "Template data"
// @Success 201 {object} dto.APIResponse{data=dto.CreatePingTemplateResponse} "Template created successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid schedule"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Editor role required"
// @Failure 404 {object} dto.APIResponse "Study not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies/{studyID}/ping-templates [post]
func (h *PingTemplateHandler) CreatePingTemplate(c fiber.Ctx) error {
	studyID, err := strconv.ParseUint(c.Params("studyID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid study ID", "INVALID_STUDY_ID", nil)
	}

	var req dto.CreatePingTemplateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	accountID, ok := c.Locals("account_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}
	req.AccountID = accountID
	req.StudyID = uint(studyID)

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.templateFlow.CreatePingTemplate(h.createRequestContext(c, "/api/v1/studies/"+c.Params("studyID")+"/ping-templates"), &req, metadata)
	if err != nil {
		if businessflow.IsStudyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Study not found", "STUDY_NOT_FOUND", nil)
		}
		if businessflow.IsStudyAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Editor role required", "STUDY_ACCESS_DENIED", nil)
		}
		if businessflow.IsScheduleInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Schedule is invalid", "INVALID_SCHEDULE", err.Error())
		}

		log.Println("Ping template creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Template creation failed", "TEMPLATE_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// ListPingTemplates handles listing a study's templates
// @Summary List Ping Templates
// @Description List the ping templates of a study
// @Tags Ping Templates
// @Produce json
// @Param studyID path int true "Study ID"
// @Success 200 {object} dto.APIResponse{data=dto.ListPingTemplatesResponse} "Templates retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Not a member of the study"
// @Failure 404 {object} dto.APIResponse "Study not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies/{studyID}/ping-templates [get]
func (h *PingTemplateHandler) ListPingTemplates(c fiber.Ctx) error {
	studyID, err := strconv.ParseUint(c.Params("studyID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid study ID", "INVALID_STUDY_ID", nil)
	}

	accountID, ok := c.Locals("account_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	result, err := h.templateFlow.ListPingTemplates(h.createRequestContext(c, "/api/v1/studies/"+c.Params("studyID")+"/ping-templates"), accountID, uint(studyID))
	if err != nil {
		if businessflow.IsStudyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Study not found", "STUDY_NOT_FOUND", nil)
		}
		if businessflow.IsStudyAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Access to this study is denied", "STUDY_ACCESS_DENIED", nil)
		}

		log.Println("Ping template listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list templates", "TEMPLATE_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// GetPingTemplate handles retrieving one template
// @Summary Get Ping Template
// @Description Retrieve a ping template of a study
// @Tags Ping Templates
// @Produce json
// @Param studyID path int true "Study ID"
// @Param templateID path int true "Template ID"
// @Success 200 {object} dto.APIResponse{data=dto.GetPingTemplateResponse} "Template retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Not a member of the study"
// @Failure 404 {object} dto.APIResponse "Study or template not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies/{studyID}/ping-templates/{templateID} [get]
func (h *PingTemplateHandler) GetPingTemplate(c fiber.Ctx) error {
	studyID, err := strconv.ParseUint(c.Params("studyID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid study ID", "INVALID_STUDY_ID", nil)
	}
	templateID, err := strconv.ParseUint(c.Params("templateID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid template ID", "INVALID_TEMPLATE_ID", nil)
	}

	accountID, ok := c.Locals("account_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	req := dto.GetPingTemplateRequest{
		AccountID:  accountID,
		StudyID:    uint(studyID),
		TemplateID: uint(templateID),
	}

	result, err := h.templateFlow.GetPingTemplate(h.createRequestContext(c, "/api/v1/studies/"+c.Params("studyID")+"/ping-templates/"+c.Params("templateID")), &req)
	if err != nil {
		if businessflow.IsStudyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Study not found", "STUDY_NOT_FOUND", nil)
		}
		if businessflow.IsStudyAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Access to this study is denied", "STUDY_ACCESS_DENIED", nil)
		}
		if businessflow.IsTemplateNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Template not found", "TEMPLATE_NOT_FOUND", nil)
		}

		log.Println("Ping template retrieval failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve template", "TEMPLATE_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Template retrieved successfully", result)
}

// UpdatePingTemplate handles updating a template
// @Summary Update Ping Template
// @Description Update a ping template; schedule edits only shape future materialization
// @Tags Ping Templates
// @Accept json
// @Produce json
// @Param studyID path int true "Study ID"
// @Param templateID path int true "Template ID"
// @Param request body dto.UpdatePingTemplateRequest true "Template update data"
// @Success 200 {object} dto.APIResponse{data=dto.UpdatePingTemplateResponse} "Template updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid schedule"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Editor role required"
// @Failure 404 {object} dto.APIResponse "Study or template not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies/{studyID}/ping-templates/{templateID} [put]
func (h *PingTemplateHandler) UpdatePingTemplate(c fiber.Ctx) error {
	studyID, err := strconv.ParseUint(c.Params("studyID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid study ID", "INVALID_STUDY_ID", nil)
	}
	templateID, err := strconv.ParseUint(c.Params("templateID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid template ID", "INVALID_TEMPLATE_ID", nil)
	}

	var req dto.UpdatePingTemplateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	accountID, ok := c.Locals("account_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}
	req.AccountID = accountID
	req.StudyID = uint(studyID)
	req.TemplateID = uint(templateID)

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.templateFlow.UpdatePingTemplate(h.createRequestContext(c, "/api/v1/studies/"+c.Params("studyID")+"/ping-templates/"+c.Params("templateID")), &req, metadata)
	if err != nil {
		if businessflow.IsStudyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Study not found", "STUDY_NOT_FOUND", nil)
		}
		if businessflow.IsStudyAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Editor role required", "STUDY_ACCESS_DENIED", nil)
		}
		if businessflow.IsTemplateNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Template not found", "TEMPLATE_NOT_FOUND", nil)
		}
		if businessflow.IsScheduleInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Schedule is invalid", "INVALID_SCHEDULE", err.Error())
		}

		log.Println("Ping template update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Template update failed", "TEMPLATE_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// DeletePingTemplate handles deleting a template
// @Summary Delete Ping Template
// @Description Soft-delete a ping template along with its unsent pings
// @Tags Ping Templates
// @Produce json
// @Param studyID path int true "Study ID"
// @Param templateID path int true "Template ID"
// @Success 200 {object} dto.APIResponse{data=dto.DeletePingTemplateResponse} "Template deleted successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Editor role required"
// @Failure 404 {object} dto.APIResponse "Study or template not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies/{studyID}/ping-templates/{templateID} [delete]
func (h *PingTemplateHandler) DeletePingTemplate(c fiber.Ctx) error {
	studyID, err := strconv.ParseUint(c.Params("studyID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid study ID", "INVALID_STUDY_ID", nil)
	}
	templateID, err := strconv.ParseUint(c.Params("templateID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid template ID", "INVALID_TEMPLATE_ID", nil)
	}

	accountID, ok := c.Locals("account_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.templateFlow.DeletePingTemplate(h.createRequestContext(c, "/api/v1/studies/"+c.Params("studyID")+"/ping-templates/"+c.Params("templateID")), accountID, uint(studyID), uint(templateID), metadata)
	if err != nil {
		if businessflow.IsStudyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Study not found", "STUDY_NOT_FOUND", nil)
		}
		if businessflow.IsStudyAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Editor role required", "STUDY_ACCESS_DENIED", nil)
		}
		if businessflow.IsTemplateNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Template not found", "TEMPLATE_NOT_FOUND", nil)
		}

		log.Println("Ping template deletion failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Template deletion failed", "TEMPLATE_DELETION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

func (h *PingTemplateHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *PingTemplateHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
