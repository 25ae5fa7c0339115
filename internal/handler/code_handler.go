package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/openedu/school-api/internal/dto"
	"github.com/openedu/school-api/internal/service"
	"github.com/openedu/school-api/internal/utils"
)

// CodeHandler wires redeem code HTTP routes.
type CodeHandler struct {
	service service.CodeService
	logger  zerolog.Logger
}

// NewCodeHandler constructs the handler.
func NewCodeHandler(service service.CodeService, logger zerolog.Logger) *CodeHandler {
	return &CodeHandler{
		service: service,
		logger:  logger.With().Str("component", "code_handler").Logger(),
	}
}

// RegisterStaff attaches the code management endpoints for teachers and admins.
func (h *CodeHandler) RegisterStaff(router fiber.Router) {
	router.Post("/generate", h.generate)
	router.Get("", h.list)
	router.Get("/subject/:subjectId", h.listBySubject)
}

// RegisterStudent attaches the redemption endpoint for students.
func (h *CodeHandler) RegisterStudent(router fiber.Router) {
	router.Post("/redeem", h.redeem)
}

func (h *CodeHandler) generate(c *fiber.Ctx) error {
	var payload dto.CodeGenerateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	codes, err := h.service.Generate(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "codes generated", codes)
}

func (h *CodeHandler) list(c *fiber.Ctx) error {
	codes, err := h.service.List(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "codes retrieved", codes)
}

func (h *CodeHandler) listBySubject(c *fiber.Ctx) error {
	subjectID, err := parseUintParam(c, "subjectId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	codes, err := h.service.ListBySubject(c.Context(), subjectID)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "codes retrieved", codes)
}

func (h *CodeHandler) redeem(c *fiber.Ctx) error {
	var payload dto.CodeRedeemRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Redeem(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "code redeemed", result)
}

func (h *CodeHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrCodeInvalid):
		return utils.SendError(c, fiber.StatusBadRequest, "code is invalid or already used")
	case errors.Is(err, service.ErrInvalidCodeSubject):
		return utils.SendError(c, fiber.StatusConflict, "subject does not exist")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	return h.internalError(c, err)
}

func (h *CodeHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
