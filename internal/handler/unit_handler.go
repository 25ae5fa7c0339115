package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/openedu/school-api/internal/dto"
	"github.com/openedu/school-api/internal/service"
	"github.com/openedu/school-api/internal/utils"
)

// UnitHandler wires curriculum unit HTTP routes.
type UnitHandler struct {
	service service.UnitService
	logger  zerolog.Logger
}

// NewUnitHandler constructs the handler.
func NewUnitHandler(service service.UnitService, logger zerolog.Logger) *UnitHandler {
	return &UnitHandler{
		service: service,
		logger:  logger.With().Str("component", "unit_handler").Logger(),
	}
}

// RegisterRead attaches the read endpoints available to any authenticated user.
func (h *UnitHandler) RegisterRead(router fiber.Router) {
	router.Get("/subject/:subjectId", h.listBySubject)
}

// RegisterWrite attaches the mutation endpoints.
func (h *UnitHandler) RegisterWrite(router fiber.Router) {
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *UnitHandler) create(c *fiber.Ctx) error {
	var payload dto.UnitCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	unit, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "unit created", unit)
}

func (h *UnitHandler) listBySubject(c *fiber.Ctx) error {
	subjectID, err := parseUintParam(c, "subjectId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	units, err := h.service.ListBySubject(c.Context(), subjectID)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "units retrieved", units)
}

func (h *UnitHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.UnitUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	unit, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "unit updated", unit)
}

func (h *UnitHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "unit deleted", fiber.Map{"id": id})
}

func (h *UnitHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrUnitNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "unit not found")
	case errors.Is(err, service.ErrInvalidUnitReference):
		return utils.SendError(c, fiber.StatusConflict, "subject does not exist")
	case errors.Is(err, service.ErrUnitInUse):
		return utils.SendError(c, fiber.StatusConflict, "unit is referenced by existing lessons")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	return h.internalError(c, err)
}

func (h *UnitHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
