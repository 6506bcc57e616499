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

// StudyHandlerInterface defines the contract for study handlers
type StudyHandlerInterface interface {
	CreateStudy(c fiber.Ctx) error
	ListStudies(c fiber.Ctx) error
	GetStudy(c fiber.Ctx) error
	UpdateStudy(c fiber.Ctx) error
	DeleteStudy(c fiber.Ctx) error
	AddMember(c fiber.Ctx) error
	ListMembers(c fiber.Ctx) error
	UpdateMemberRole(c fiber.Ctx) error
	RemoveMember(c fiber.Ctx) error
}

// StudyHandler handles study-related HTTP requests
type StudyHandler struct {
	studyFlow businessflow.StudyFlow
	validator *validator.Validate
}

func (h *StudyHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *StudyHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewStudyHandler creates a new study handler
func NewStudyHandler(studyFlow businessflow.StudyFlow) StudyHandlerInterface {
	return &StudyHandler{
		studyFlow: studyFlow,
		validator: validator.New(),
	}
}

// CreateStudy handles study creation
// @Summary Create Study
// @Description Create a new study; the caller becomes its owner
// @Tags Studies
// @Accept json
// @Produce json
// @Param request body dto.CreateStudyRequest true "Study creation data"
// @Success 201 {object} dto.APIResponse{data=dto.CreateStudyResponse} "Study created successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies [post]
func (h *StudyHandler) CreateStudy(c fiber.Ctx) error {
	var req dto.CreateStudyRequest
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

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.studyFlow.CreateStudy(h.createRequestContext(c, "/api/v1/studies"), &req, metadata)
	if err != nil {
		log.Println("Study creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Study creation failed", "STUDY_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// ListStudies handles listing the caller's studies
// @Summary List Studies
// @Description List every study the caller is a member of, with the caller's role
// @Tags Studies
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListStudiesResponse} "Studies retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies [get]
func (h *StudyHandler) ListStudies(c fiber.Ctx) error {
	accountID, ok := c.Locals("account_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	result, err := h.studyFlow.ListStudies(h.createRequestContext(c, "/api/v1/studies"), accountID)
	if err != nil {
		log.Println("Study listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list studies", "STUDY_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// GetStudy handles retrieving one study
// @Summary Get Study
// @Description Retrieve a study the caller is a member of
// @Tags Studies
// @Produce json
// @Param studyID path int true "Study ID"
// @Success 200 {object} dto.APIResponse{data=dto.GetStudyResponse} "Study retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Not a member of the study"
// @Failure 404 {object} dto.APIResponse "Study not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies/{studyID} [get]
func (h *StudyHandler) GetStudy(c fiber.Ctx) error {
	studyID, err := strconv.ParseUint(c.Params("studyID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid study ID", "INVALID_STUDY_ID", nil)
	}

	accountID, ok := c.Locals("account_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	req := dto.GetStudyRequest{
		AccountID: accountID,
		StudyID:   uint(studyID),
	}

	result, err := h.studyFlow.GetStudy(h.createRequestContext(c, "/api/v1/studies/"+c.Params("studyID")), &req)
	if err != nil {
		if businessflow.IsStudyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Study not found", "STUDY_NOT_FOUND", nil)
		}
		if businessflow.IsStudyAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Access to this study is denied", "STUDY_ACCESS_DENIED", nil)
		}

		log.Println("Study retrieval failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve study", "STUDY_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Study retrieved successfully", result)
}

// UpdateStudy handles updating a study
// @Summary Update Study
// @Description Update a study's names and contact message
// @Tags Studies
// @Accept json
// @Produce json
// @Param studyID path int true "Study ID"
// @Param request body dto.UpdateStudyRequest true "Study update data"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateStudyResponse} "Study updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Editor role required"
// @Failure 404 {object} dto.APIResponse "Study not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies/{studyID} [put]
func (h *StudyHandler) UpdateStudy(c fiber.Ctx) error {
	studyID, err := strconv.ParseUint(c.Params("studyID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid study ID", "INVALID_STUDY_ID", nil)
	}

	var req dto.UpdateStudyRequest
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

	result, err := h.studyFlow.UpdateStudy(h.createRequestContext(c, "/api/v1/studies/"+c.Params("studyID")), &req, metadata)
	if err != nil {
		if businessflow.IsStudyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Study not found", "STUDY_NOT_FOUND", nil)
		}
		if businessflow.IsStudyAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Access to this study is denied", "STUDY_ACCESS_DENIED", nil)
		}

		log.Println("Study update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Study update failed", "STUDY_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// DeleteStudy handles deleting a study
// @Summary Delete Study
// @Description Soft-delete a study; its pings stop dispatching immediately
// @Tags Studies
// @Produce json
// @Param studyID path int true "Study ID"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteStudyResponse} "Study deleted successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Owner role required"
// @Failure 404 {object} dto.APIResponse "Study not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies/{studyID} [delete]
func (h *StudyHandler) DeleteStudy(c fiber.Ctx) error {
	studyID, err := strconv.ParseUint(c.Params("studyID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid study ID", "INVALID_STUDY_ID", nil)
	}

	accountID, ok := c.Locals("account_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.studyFlow.DeleteStudy(h.createRequestContext(c, "/api/v1/studies/"+c.Params("studyID")), accountID, uint(studyID), metadata)
	if err != nil {
		if businessflow.IsStudyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Study not found", "STUDY_NOT_FOUND", nil)
		}
		if businessflow.IsStudyAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only an owner can delete a study", "STUDY_ACCESS_DENIED", nil)
		}

		log.Println("Study deletion failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Study deletion failed", "STUDY_DELETION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// AddMember handles granting an account a role on a study
// @Summary Add Study Member
// @Description Grant an existing account a role on the study
// @Tags Study Members
// @Accept json
// @Produce json
// @Param studyID path int true "Study ID"
// @Param request body dto.AddStudyMemberRequest true "Member data"
// @Success 201 {object} dto.APIResponse{data=dto.AddStudyMemberResponse} "Member added successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Owner role required"
// @Failure 404 {object} dto.APIResponse "Study or account not found"
// @Failure 409 {object} dto.APIResponse "Account is already a member"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies/{studyID}/members [post]
func (h *StudyHandler) AddMember(c fiber.Ctx) error {
	studyID, err := strconv.ParseUint(c.Params("studyID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid study ID", "INVALID_STUDY_ID", nil)
	}

	var req dto.AddStudyMemberRequest
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

	result, err := h.studyFlow.AddMember(h.createRequestContext(c, "/api/v1/studies/"+c.Params("studyID")+"/members"), &req, metadata)
	if err != nil {
		if businessflow.IsStudyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Study not found", "STUDY_NOT_FOUND", nil)
		}
		if businessflow.IsStudyAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only an owner can manage members", "STUDY_ACCESS_DENIED", nil)
		}
		if businessflow.IsAccountNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "No account with that email", "ACCOUNT_NOT_FOUND", nil)
		}
		if businessflow.IsMemberAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Account is already a member of this study", "MEMBER_ALREADY_EXISTS", nil)
		}

		log.Println("Member addition failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to add member", "MEMBER_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// ListMembers handles listing a study's members
// @Summary List Study Members
// @Description List the members of a study with their roles
// @Tags Study Members
// @Produce json
// @Param studyID path int true "Study ID"
// @Success 200 {object} dto.APIResponse{data=dto.ListStudyMembersResponse} "Members retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Owner role required"
// @Failure 404 {object} dto.APIResponse "Study not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies/{studyID}/members [get]
func (h *StudyHandler) ListMembers(c fiber.Ctx) error {
	studyID, err := strconv.ParseUint(c.Params("studyID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid study ID", "INVALID_STUDY_ID", nil)
	}

	accountID, ok := c.Locals("account_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	result, err := h.studyFlow.ListMembers(h.createRequestContext(c, "/api/v1/studies/"+c.Params("studyID")+"/members"), accountID, uint(studyID))
	if err != nil {
		if businessflow.IsStudyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Study not found", "STUDY_NOT_FOUND", nil)
		}
		if businessflow.IsStudyAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only an owner can manage members", "STUDY_ACCESS_DENIED", nil)
		}

		log.Println("Member listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list members", "MEMBER_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// UpdateMemberRole handles changing a member's role
// @Summary Update Member Role
// @Description Change a member's role on the study
// @Tags Study Members
// @Accept json
// @Produce json
// @Param studyID path int true "Study ID"
// @Param accountID path int true "Member account ID"
// @Param request body dto.UpdateStudyMemberRoleRequest true "New role"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateStudyMemberRoleResponse} "Member role updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or owner self-change"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Owner role required"
// @Failure 404 {object} dto.APIResponse "Study or member not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies/{studyID}/members/{accountID} [put]
func (h *StudyHandler) UpdateMemberRole(c fiber.Ctx) error {
	studyID, err := strconv.ParseUint(c.Params("studyID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid study ID", "INVALID_STUDY_ID", nil)
	}
	memberAccountID, err := strconv.ParseUint(c.Params("accountID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid account ID", "INVALID_ACCOUNT_ID", nil)
	}

	var req dto.UpdateStudyMemberRoleRequest
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
	req.MemberAccountID = uint(memberAccountID)

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.studyFlow.UpdateMemberRole(h.createRequestContext(c, "/api/v1/studies/"+c.Params("studyID")+"/members/"+c.Params("accountID")), &req, metadata)
	if err != nil {
		if businessflow.IsStudyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Study not found", "STUDY_NOT_FOUND", nil)
		}
		if businessflow.IsStudyAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only an owner can manage members", "STUDY_ACCESS_DENIED", nil)
		}
		if businessflow.IsMemberNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Account is not a member of this study", "MEMBER_NOT_FOUND", nil)
		}
		if businessflow.IsOwnerRoleChangeForbidden(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Owners cannot change their own role", "OWNER_ROLE_CHANGE_FORBIDDEN", nil)
		}

		log.Println("Member role update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update member role", "MEMBER_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// RemoveMember handles removing a member from a study
// @Summary Remove Study Member
// @Description Remove a member from the study
// @Tags Study Members
// @Produce json
// @Param studyID path int true "Study ID"
// @Param accountID path int true "Member account ID"
// @Success 200 {object} dto.APIResponse{data=dto.RemoveStudyMemberResponse} "Member removed successfully"
// @Failure 400 {object} dto.APIResponse "Owner self-removal"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Owner role required"
// @Failure 404 {object} dto.APIResponse "Study or member not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies/{studyID}/members/{accountID} [delete]
func (h *StudyHandler) RemoveMember(c fiber.Ctx) error {
	studyID, err := strconv.ParseUint(c.Params("studyID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid study ID", "INVALID_STUDY_ID", nil)
	}
	memberAccountID, err := strconv.ParseUint(c.Params("accountID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid account ID", "INVALID_ACCOUNT_ID", nil)
	}

	accountID, ok := c.Locals("account_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	req := dto.RemoveStudyMemberRequest{
		AccountID:       accountID,
		StudyID:         uint(studyID),
		MemberAccountID: uint(memberAccountID),
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.studyFlow.RemoveMember(h.createRequestContext(c, "/api/v1/studies/"+c.Params("studyID")+"/members/"+c.Params("accountID")), &req, metadata)
	if err != nil {
		if businessflow.IsStudyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Study not found", "STUDY_NOT_FOUND", nil)
		}
		if businessflow.IsStudyAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only an owner can manage members", "STUDY_ACCESS_DENIED", nil)
		}
		if businessflow.IsMemberNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Account is not a member of this study", "MEMBER_NOT_FOUND", nil)
		}
		if businessflow.IsOwnerRoleChangeForbidden(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Owners cannot remove themselves", "OWNER_ROLE_CHANGE_FORBIDDEN", nil)
		}

		log.Println("Member removal failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove member", "MEMBER_REMOVAL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

func (h *StudyHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *StudyHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
