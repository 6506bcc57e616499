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

// EnrollmentHandlerInterface defines the contract for enrollment handlers
type EnrollmentHandlerInterface interface {
	CreateEnrollment(c fiber.Ctx) error
	ListEnrollments(c fiber.Ctx) error
	GetEnrollment(c fiber.Ctx) error
	UpdateEnrollment(c fiber.Ctx) error
	DeleteEnrollment(c fiber.Ctx) error
	MaterializeEnrollment(c fiber.Ctx) error
}

// EnrollmentHandler handles enrollment HTTP requests
type EnrollmentHandler struct {
	enrollmentFlow businessflow.EnrollmentFlow
	validator      *validator.Validate
}

func (h *EnrollmentHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *EnrollmentHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(enrollmentFlow businessflow.EnrollmentFlow) EnrollmentHandlerInterface {
	return &EnrollmentHandler{
		enrollmentFlow: enrollmentFlow,
		validator:      validator.New(),
	}
}

// CreateEnrollment handles enrolling a participant through the researcher surface
// @Summary Create Enrollment
// @Description Enroll a participant and materialize their ping timeline
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param studyID path int true "Study ID"
// @Param request body dto.CreateEnrollmentRequest true "Enrollment data"
// @Success 201 {object} dto.APIResponse{data=dto.CreateEnrollmentResponse} "Enrollment created successfully"
// @Failure 400 {object} dto.APIResponse "Validation error, unknown timezone or bad start date"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Editor role required"
// @Failure 404 {object} dto.APIResponse "Study not found"
// @Failure 409 {object} dto.APIResponse "Participant ID already enrolled"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies/{studyID}/enrollments [post]
func (h *EnrollmentHandler) CreateEnrollment(c fiber.Ctx) error {
	studyID, err := strconv.ParseUint(c.Params("studyID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid study ID", "INVALID_STUDY_ID", nil)
	}

	var req dto.CreateEnrollmentRequest
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

	result, err := h.enrollmentFlow.CreateEnrollment(h.createRequestContext(c, "/api/v1/studies/"+c.Params("studyID")+"/enrollments"), &req, metadata)
	if err != nil {
		if businessflow.IsStudyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Study not found", "STUDY_NOT_FOUND", nil)
		}
		if businessflow.IsStudyAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Editor role required", "STUDY_ACCESS_DENIED", nil)
		}
		if businessflow.IsInvalidTimezone(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown timezone", "INVALID_TIMEZONE", nil)
		}
		if businessflow.IsInvalidStartDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Start date must be YYYY-MM-DD", "INVALID_START_DATE", nil)
		}
		if businessflow.IsDuplicatePID(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Participant ID is already enrolled in this study", "DUPLICATE_STUDY_PID", nil)
		}

		log.Println("Enrollment creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Enrollment creation failed", "ENROLLMENT_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// ListEnrollments handles listing a study's enrollments
// @Summary List Enrollments
// @Description List the enrollments of a study with pagination
// @Tags Enrollments
// @Produce json
// @Param studyID path int true "Study ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.ListEnrollmentsResponse} "Enrollments retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Not a member of the study"
// @Failure 404 {object} dto.APIResponse "Study not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies/{studyID}/enrollments [get]
func (h *EnrollmentHandler) ListEnrollments(c fiber.Ctx) error {
	studyID, err := strconv.ParseUint(c.Params("studyID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid study ID", "INVALID_STUDY_ID", nil)
	}

	accountID, ok := c.Locals("account_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	page := 1
	if v, err := strconv.Atoi(c.Query("page", "1")); err == nil && v > 0 {
		page = v
	}
	limit := 10
	if v, err := strconv.Atoi(c.Query("limit", "10")); err == nil && v > 0 && v <= 100 {
		limit = v
	}

	req := dto.ListEnrollmentsRequest{
		AccountID: accountID,
		StudyID:   uint(studyID),
		Page:      page,
		Limit:     limit,
	}

	result, err := h.enrollmentFlow.ListEnrollments(h.createRequestContext(c, "/api/v1/studies/"+c.Params("studyID")+"/enrollments"), &req)
	if err != nil {
		if businessflow.IsStudyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Study not found", "STUDY_NOT_FOUND", nil)
		}
		if businessflow.IsStudyAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Access to this study is denied", "STUDY_ACCESS_DENIED", nil)
		}

		log.Println("Enrollment listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list enrollments", "ENROLLMENT_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// GetEnrollment handles retrieving one enrollment
// @Summary Get Enrollment
// @Description Retrieve an enrollment of a study
// @Tags Enrollments
// @Produce json
// @Param studyID path int true "Study ID"
// @Param enrollmentID path int true "Enrollment ID"
// @Success 200 {object} dto.APIResponse{data=dto.GetEnrollmentResponse} "Enrollment retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Not a member of the study"
// @Failure 404 {object} dto.APIResponse "Study or enrollment not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies/{studyID}/enrollments/{enrollmentID} [get]
func (h *EnrollmentHandler) GetEnrollment(c fiber.Ctx) error {
	studyID, err := strconv.ParseUint(c.Params("studyID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid study ID", "INVALID_STUDY_ID", nil)
	}
	enrollmentID, err := strconv.ParseUint(c.Params("enrollmentID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid enrollment ID", "INVALID_ENROLLMENT_ID", nil)
	}

	accountID, ok := c.Locals("account_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	req := dto.GetEnrollmentRequest{
		AccountID:    accountID,
		StudyID:      uint(studyID),
		EnrollmentID: uint(enrollmentID),
	}

	result, err := h.enrollmentFlow.GetEnrollment(h.createRequestContext(c, "/api/v1/studies/"+c.Params("studyID")+"/enrollments/"+c.Params("enrollmentID")), &req)
	if err != nil {
		if businessflow.IsStudyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Study not found", "STUDY_NOT_FOUND", nil)
		}
		if businessflow.IsStudyAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Access to this study is denied", "STUDY_ACCESS_DENIED", nil)
		}
		if businessflow.IsEnrollmentNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Enrollment not found", "ENROLLMENT_NOT_FOUND", nil)
		}

		log.Println("Enrollment retrieval failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve enrollment", "ENROLLMENT_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Enrollment retrieved successfully", result)
}

// UpdateEnrollment handles updating an enrollment
// @Summary Update Enrollment
// @Description Update an enrollment; already materialized pings keep their placements
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param studyID path int true "Study ID"
// @Param enrollmentID path int true "Enrollment ID"
// @Param request body dto.UpdateEnrollmentRequest true "Enrollment update data"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateEnrollmentResponse} "Enrollment updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error, unknown timezone or bad start date"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Editor role required"
// @Failure 404 {object} dto.APIResponse "Study or enrollment not found"
// @Failure 409 {object} dto.APIResponse "Participant ID already enrolled"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies/{studyID}/enrollments/{enrollmentID} [put]
func (h *EnrollmentHandler) UpdateEnrollment(c fiber.Ctx) error {
	studyID, err := strconv.ParseUint(c.Params("studyID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid study ID", "INVALID_STUDY_ID", nil)
	}
	enrollmentID, err := strconv.ParseUint(c.Params("enrollmentID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid enrollment ID", "INVALID_ENROLLMENT_ID", nil)
	}

	var req dto.UpdateEnrollmentRequest
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
	req.EnrollmentID = uint(enrollmentID)

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.enrollmentFlow.UpdateEnrollment(h.createRequestContext(c, "/api/v1/studies/"+c.Params("studyID")+"/enrollments/"+c.Params("enrollmentID")), &req, metadata)
	if err != nil {
		if businessflow.IsStudyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Study not found", "STUDY_NOT_FOUND", nil)
		}
		if businessflow.IsStudyAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Editor role required", "STUDY_ACCESS_DENIED", nil)
		}
		if businessflow.IsEnrollmentNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Enrollment not found", "ENROLLMENT_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidTimezone(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown timezone", "INVALID_TIMEZONE", nil)
		}
		if businessflow.IsInvalidStartDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Start date must be YYYY-MM-DD", "INVALID_START_DATE", nil)
		}
		if businessflow.IsDuplicatePID(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Participant ID is already enrolled in this study", "DUPLICATE_STUDY_PID", nil)
		}

		log.Println("Enrollment update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Enrollment update failed", "ENROLLMENT_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// DeleteEnrollment handles deleting an enrollment
// @Summary Delete Enrollment
// @Description Soft-delete an enrollment along with its pings
// @Tags Enrollments
// @Produce json
// @Param studyID path int true "Study ID"
// @Param enrollmentID path int true "Enrollment ID"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteEnrollmentResponse} "Enrollment deleted successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Editor role required"
// @Failure 404 {object} dto.APIResponse "Study or enrollment not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies/{studyID}/enrollments/{enrollmentID} [delete]
func (h *EnrollmentHandler) DeleteEnrollment(c fiber.Ctx) error {
	studyID, err := strconv.ParseUint(c.Params("studyID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid study ID", "INVALID_STUDY_ID", nil)
	}
	enrollmentID, err := strconv.ParseUint(c.Params("enrollmentID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid enrollment ID", "INVALID_ENROLLMENT_ID", nil)
	}

	accountID, ok := c.Locals("account_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.enrollmentFlow.DeleteEnrollment(h.createRequestContext(c, "/api/v1/studies/"+c.Params("studyID")+"/enrollments/"+c.Params("enrollmentID")), accountID, uint(studyID), uint(enrollmentID), metadata)
	if err != nil {
		if businessflow.IsStudyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Study not found", "STUDY_NOT_FOUND", nil)
		}
		if businessflow.IsStudyAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Editor role required", "STUDY_ACCESS_DENIED", nil)
		}
		if businessflow.IsEnrollmentNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Enrollment not found", "ENROLLMENT_NOT_FOUND", nil)
		}

		log.Println("Enrollment deletion failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Enrollment deletion failed", "ENROLLMENT_DELETION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// MaterializeEnrollment handles re-running ping materialization
// @Summary Materialize Enrollment Pings
// @Description Fill in missing pings for an enrollment; existing pings are left untouched
// @Tags Enrollments
// @Produce json
// @Param studyID path int true "Study ID"
// @Param enrollmentID path int true "Enrollment ID"
// @Success 200 {object} dto.APIResponse{data=dto.MaterializeEnrollmentResponse} "Materialization completed"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Editor role required"
// @Failure 404 {object} dto.APIResponse "Study or enrollment not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies/{studyID}/enrollments/{enrollmentID}/materialize [post]
func (h *EnrollmentHandler) MaterializeEnrollment(c fiber.Ctx) error {
	studyID, err := strconv.ParseUint(c.Params("studyID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid study ID", "INVALID_STUDY_ID", nil)
	}
	enrollmentID, err := strconv.ParseUint(c.Params("enrollmentID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid enrollment ID", "INVALID_ENROLLMENT_ID", nil)
	}

	accountID, ok := c.Locals("account_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.enrollmentFlow.MaterializeEnrollment(h.createRequestContext(c, "/api/v1/studies/"+c.Params("studyID")+"/enrollments/"+c.Params("enrollmentID")+"/materialize"), accountID, uint(studyID), uint(enrollmentID), metadata)
	if err != nil {
		if businessflow.IsStudyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Study not found", "STUDY_NOT_FOUND", nil)
		}
		if businessflow.IsStudyAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Editor role required", "STUDY_ACCESS_DENIED", nil)
		}
		if businessflow.IsEnrollmentNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Enrollment not found", "ENROLLMENT_NOT_FOUND", nil)
		}

		log.Println("Enrollment materialization failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Materialization failed", "MATERIALIZATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

func (h *EnrollmentHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *EnrollmentHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
