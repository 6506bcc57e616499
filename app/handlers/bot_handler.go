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

// BotHandlerInterface defines the contract for the bot relay surface
type BotHandlerInterface interface {
	LinkTelegram(c fiber.Ctx) error
	Unenroll(c fiber.Ctx) error
	ListPings(c fiber.Ctx) error
	MarkSent(c fiber.Ctx) error
	MarkReminded(c fiber.Ctx) error
}

// BotHandler handles requests from an external bot relay authenticated by shared secret
type BotHandler struct {
	botFlow   businessflow.BotFlow
	validator *validator.Validate
}

func (h *BotHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *BotHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewBotHandler creates a new bot handler
func NewBotHandler(botFlow businessflow.BotFlow) BotHandlerInterface {
	return &BotHandler{
		botFlow:   botFlow,
		validator: validator.New(),
	}
}

// LinkTelegram handles the bot redeeming a participant's link code
// @Summary Link Telegram
// @Description Bind a Telegram account to the enrollment holding the link code
// @Tags Bot
// @Accept json
// @Produce json
// @Param request body dto.BotLinkTelegramRequest true "Link data"
// @Success 200 {object} dto.APIResponse{data=dto.BotLinkTelegramResponse} "Telegram linked successfully"
// @Failure 400 {object} dto.APIResponse "Validation error, used or expired code"
// @Failure 401 {object} dto.APIResponse "Bad bot secret"
// @Failure 404 {object} dto.APIResponse "Unknown link code"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/bot/telegram/link [put]
func (h *BotHandler) LinkTelegram(c fiber.Ctx) error {
	var req dto.BotLinkTelegramRequest
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

	result, err := h.botFlow.LinkTelegram(h.createRequestContext(c, "/api/v1/bot/telegram/link"), &req, metadata)
	if err != nil {
		if businessflow.IsLinkCodeInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Unknown link code", "LINK_CODE_INVALID", nil)
		}
		if businessflow.IsLinkCodeUsed(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Link code already used", "LINK_CODE_USED", nil)
		}
		if businessflow.IsLinkCodeExpired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Link code expired", "LINK_CODE_EXPIRED", nil)
		}

		log.Println("Telegram link failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Telegram link failed", "TELEGRAM_LINK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Unenroll handles the bot unenrolling a Telegram account everywhere
// @Summary Unenroll Telegram
// @Description Unenroll every active enrollment bound to the Telegram account
// @Tags Bot
// @Accept json
// @Produce json
// @Param request body dto.BotUnenrollRequest true "Unenroll data"
// @Success 200 {object} dto.APIResponse{data=dto.BotUnenrollResponse} "Unenrolled successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Bad bot secret"
// @Failure 404 {object} dto.APIResponse "No active enrollment"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/bot/telegram/unenroll [put]
func (h *BotHandler) Unenroll(c fiber.Ctx) error {
	var req dto.BotUnenrollRequest
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

	result, err := h.botFlow.Unenroll(h.createRequestContext(c, "/api/v1/bot/telegram/unenroll"), &req, metadata)
	if err != nil {
		if businessflow.IsTelegramNotEnrolled(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Telegram account has no active enrollment", "TELEGRAM_NOT_ENROLLED", nil)
		}

		log.Println("Telegram unenroll failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Unenroll failed", "TELEGRAM_UNENROLL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ListPings handles the bot asking for pings scheduled in a window
// @Summary List Bot Pings
// @Description List pings scheduled in [start_ts, end_ts) with constructed messages
// @Tags Bot
// @Produce json
// @Param start_ts query string true "Window start, RFC 3339"
// @Param end_ts query string true "Window end, RFC 3339"
// @Success 200 {object} dto.APIResponse{data=dto.BotListPingsResponse} "Pings retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Bad time range"
// @Failure 401 {object} dto.APIResponse "Bad bot secret"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/bot/pings [get]
func (h *BotHandler) ListPings(c fiber.Ctx) error {
	startTs, err := time.Parse(time.RFC3339, c.Query("start_ts"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "start_ts must be RFC 3339", "INVALID_TIME_RANGE", nil)
	}
	endTs, err := time.Parse(time.RFC3339, c.Query("end_ts"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "end_ts must be RFC 3339", "INVALID_TIME_RANGE", nil)
	}
	if !endTs.After(startTs) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "end_ts must be after start_ts", "INVALID_TIME_RANGE", nil)
	}

	req := dto.BotListPingsRequest{
		StartTs: startTs,
		EndTs:   endTs,
	}

	result, err := h.botFlow.ListPings(h.createRequestContext(c, "/api/v1/bot/pings"), &req)
	if err != nil {
		log.Println("Bot ping listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list pings", "PING_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// MarkSent handles the bot reporting a ping as delivered
// @Summary Mark Ping Sent
// @Description Transition a ping to sent; a false transition means the guard held
// @Tags Bot
// @Produce json
// @Param pingID path int true "Ping ID"
// @Success 200 {object} dto.APIResponse{data=dto.BotTransitionResponse} "Transition attempted"
// @Failure 400 {object} dto.APIResponse "Invalid ping ID"
// @Failure 401 {object} dto.APIResponse "Bad bot secret"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/bot/pings/{pingID}/sent [put]
func (h *BotHandler) MarkSent(c fiber.Ctx) error {
	pingID, err := strconv.ParseUint(c.Params("pingID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid ping ID", "INVALID_PING_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.botFlow.MarkSent(h.createRequestContext(c, "/api/v1/bot/pings/"+c.Params("pingID")+"/sent"), uint(pingID), metadata)
	if err != nil {
		log.Println("Ping sent transition failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Transition failed", "PING_TRANSITION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// MarkReminded handles the bot reporting a reminder as delivered
// @Summary Mark Reminder Sent
// @Description Transition a ping's reminder to sent; a false transition means the guard held
// @Tags Bot
// @Produce json
// @Param pingID path int true "Ping ID"
// @Success 200 {object} dto.APIResponse{data=dto.BotTransitionResponse} "Transition attempted"
// @Failure 400 {object} dto.APIResponse "Invalid ping ID"
// @Failure 401 {object} dto.APIResponse "Bad bot secret"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/bot/pings/{pingID}/reminded [put]
func (h *BotHandler) MarkReminded(c fiber.Ctx) error {
	pingID, err := strconv.ParseUint(c.Params("pingID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid ping ID", "INVALID_PING_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.botFlow.MarkReminded(h.createRequestContext(c, "/api/v1/bot/pings/"+c.Params("pingID")+"/reminded"), uint(pingID), metadata)
	if err != nil {
		log.Println("Reminder transition failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Transition failed", "PING_TRANSITION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

func (h *BotHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 10*time.Second)
}

func (h *BotHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
