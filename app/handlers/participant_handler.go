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

// ParticipantHandlerInterface defines the contract for the public participant surface
type ParticipantHandlerInterface interface {
	Signup(c fiber.Ctx) error
	Forward(c fiber.Ctx) error
}

// ParticipantHandler handles unauthenticated participant HTTP requests
type ParticipantHandler struct {
	participantFlow businessflow.ParticipantFlow
	validator       *validator.Validate
}

func (h *ParticipantHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ParticipantHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewParticipantHandler creates a new participant handler
func NewParticipantHandler(participantFlow businessflow.ParticipantFlow) ParticipantHandlerInterface {
	return &ParticipantHandler{
		participantFlow: participantFlow,
		validator:       validator.New(),
	}
}

// Signup handles a participant joining a study with its signup code
// @Summary Participant Signup
// @Description Join a study by signup code; returns the Telegram link code and materializes the ping timeline
// @Tags Participants
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "Signup data"
// @Success 201 {object} dto.APIResponse{data=dto.SignupResponse} "Signup completed successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or unknown timezone"
// @Failure 404 {object} dto.APIResponse "Unknown signup code"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/signup [post]
func (h *ParticipantHandler) Signup(c fiber.Ctx) error {
	var req dto.SignupRequest
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

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.participantFlow.Signup(h.createRequestContext(c, "/api/v1/signup"), &req, metadata)
	if err != nil {
		if businessflow.IsSignupCodeInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Unknown signup code", "SIGNUP_CODE_INVALID", nil)
		}
		if businessflow.IsInvalidTimezone(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown timezone", "INVALID_TIMEZONE", nil)
		}

		log.Println("Participant signup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Signup failed", "SIGNUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// Forward records a click on a ping link and redirects to the survey.
// Errors are plain text; the visitor is a participant following a link
// from Telegram, not an API client.
// @Summary Forward Ping Click
// @Description Record the click and redirect to the ping's survey URL
// @Tags Participants
// @Param pingID path int true "Ping ID"
// @Param code query string true "Forwarding code"
// @Success 302 "Redirect to the survey URL"
// @Failure 400 {string} string "Forwarding code mismatch"
// @Failure 404 {string} string "Unknown ping or no URL"
// @Router /api/v1/ping/{pingID} [get]
func (h *ParticipantHandler) Forward(c fiber.Ctx) error {
	pingID, err := strconv.ParseUint(c.Params("pingID"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("not found")
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	link, err := h.participantFlow.Forward(h.createRequestContext(c, "/api/v1/ping/"+c.Params("pingID")), uint(pingID), c.Query("code"), metadata)
	if err != nil {
		if businessflow.IsPingNotFound(err) {
			return c.Status(fiber.StatusNotFound).SendString("not found")
		}
		if businessflow.IsForwardingCodeMismatch(err) {
			return c.Status(fiber.StatusBadRequest).SendString("bad request")
		}
		if businessflow.IsPingURLMissing(err) {
			return c.Status(fiber.StatusNotFound).SendString("not found")
		}

		log.Println("Ping forward failed", err)
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}

	c.Redirect().Status(fiber.StatusFound).To(link)
	return nil
}

func (h *ParticipantHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 10*time.Second)
}

func (h *ParticipantHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
