// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/emalab/pingflow/app/dto"
	businessflow "github.com/emalab/pingflow/business_flow"
	"github.com/emalab/pingflow/utils"
)

// PingHandlerInterface defines the contract for ping handlers
type PingHandlerInterface interface {
	ListPings(c fiber.Ctx) error
	DeletePing(c fiber.Ctx) error
	ExportPings(c fiber.Ctx) error
}

// PingHandler handles researcher-facing ping HTTP requests
type PingHandler struct {
	pingFlow businessflow.PingFlow
}

func (h *PingHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PingHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewPingHandler creates a new ping handler
func NewPingHandler(pingFlow businessflow.PingFlow) PingHandlerInterface {
	return &PingHandler{pingFlow: pingFlow}
}

// ListPings handles listing a study's pings
// @Summary List Pings
// @Description List the materialized pings of a study with pagination and filters
// @Tags Pings
// @Produce json
// @Param studyID path int true "Study ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param enrollment_id query int false "Filter by enrollment"
// @Param ping_template_id query int false "Filter by template"
// @Param ping_sent query bool false "Filter by sent state"
// @Success 200 {object} dto.APIResponse{data=dto.ListPingsResponse} "Pings retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Not a member of the study"
// @Failure 404 {object} dto.APIResponse "Study not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies/{studyID}/pings [get]
func (h *PingHandler) ListPings(c fiber.Ctx) error {
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

	req := dto.ListPingsRequest{
		AccountID: accountID,
		StudyID:   uint(studyID),
		Page:      page,
		Limit:     limit,
	}
	if raw := c.Query("enrollment_id"); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 32); err == nil {
			id := uint(v)
			req.EnrollmentID = &id
		}
	}
	if raw := c.Query("ping_template_id"); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 32); err == nil {
			id := uint(v)
			req.PingTemplateID = &id
		}
	}
	if raw := c.Query("ping_sent"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			req.PingSent = &v
		}
	}

	result, err := h.pingFlow.ListPings(h.createRequestContext(c, "/api/v1/studies/"+c.Params("studyID")+"/pings"), &req)
	if err != nil {
		if businessflow.IsStudyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Study not found", "STUDY_NOT_FOUND", nil)
		}
		if businessflow.IsStudyAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Access to this study is denied", "STUDY_ACCESS_DENIED", nil)
		}

		log.Println("Ping listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list pings", "PING_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// DeletePing handles deleting a single ping
// @Summary Delete Ping
// @Description Soft-delete one materialized ping
// @Tags Pings
// @Produce json
// @Param studyID path int true "Study ID"
// @Param pingID path int true "Ping ID"
// @Success 200 {object} dto.APIResponse{data=dto.DeletePingResponse} "Ping deleted successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Editor role required"
// @Failure 404 {object} dto.APIResponse "Study or ping not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies/{studyID}/pings/{pingID} [delete]
func (h *PingHandler) DeletePing(c fiber.Ctx) error {
	studyID, err := strconv.ParseUint(c.Params("studyID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid study ID", "INVALID_STUDY_ID", nil)
	}
	pingID, err := strconv.ParseUint(c.Params("pingID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid ping ID", "INVALID_PING_ID", nil)
	}

	accountID, ok := c.Locals("account_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.pingFlow.DeletePing(h.createRequestContext(c, "/api/v1/studies/"+c.Params("studyID")+"/pings/"+c.Params("pingID")), accountID, uint(studyID), uint(pingID), metadata)
	if err != nil {
		if businessflow.IsStudyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Study not found", "STUDY_NOT_FOUND", nil)
		}
		if businessflow.IsStudyAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Editor role required", "STUDY_ACCESS_DENIED", nil)
		}
		if businessflow.IsPingNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Ping not found", "PING_NOT_FOUND", nil)
		}

		log.Println("Ping deletion failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Ping deletion failed", "PING_DELETION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ExportPings handles exporting a study's pings as a spreadsheet
// @Summary Export Pings
// @Description Download every ping of a study as an xlsx file
// @Tags Pings
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param studyID path int true "Study ID"
// @Success 200 {file} binary "Spreadsheet download"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Not a member of the study"
// @Failure 404 {object} dto.APIResponse "Study not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/studies/{studyID}/pings/export [get]
func (h *PingHandler) ExportPings(c fiber.Ctx) error {
	studyID, err := strconv.ParseUint(c.Params("studyID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid study ID", "INVALID_STUDY_ID", nil)
	}

	accountID, ok := c.Locals("account_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	req := dto.ExportPingsRequest{
		AccountID: accountID,
		StudyID:   uint(studyID),
	}

	filename, data, err := h.pingFlow.ExportPings(h.createRequestContext(c, "/api/v1/studies/"+c.Params("studyID")+"/pings/export"), &req)
	if err != nil {
		if businessflow.IsStudyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Study not found", "STUDY_NOT_FOUND", nil)
		}
		if businessflow.IsStudyAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Access to this study is denied", "STUDY_ACCESS_DENIED", nil)
		}

		log.Println("Ping export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Ping export failed", "PING_EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

func (h *PingHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *PingHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
