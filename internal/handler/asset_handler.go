package handler

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/openedu/school-api/internal/dto"
	"github.com/openedu/school-api/internal/service"
	"github.com/openedu/school-api/internal/utils"
)

// AssetHandler wires content asset HTTP routes. Creation accepts either a
// JSON body referencing an external URL or a multipart form carrying a file.
type AssetHandler struct {
	service service.AssetService
	logger  zerolog.Logger
}

// NewAssetHandler constructs the handler.
func NewAssetHandler(service service.AssetService, logger zerolog.Logger) *AssetHandler {
	return &AssetHandler{
		service: service,
		logger:  logger.With().Str("component", "asset_handler").Logger(),
	}
}

// RegisterRead attaches the read endpoints available to any authenticated user.
func (h *AssetHandler) RegisterRead(router fiber.Router) {
	router.Get("/lesson/:lessonId", h.listByLesson)
}

// RegisterWrite attaches the mutation endpoints.
func (h *AssetHandler) RegisterWrite(router fiber.Router) {
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *AssetHandler) create(c *fiber.Ctx) error {
	var payload dto.AssetCreateRequest

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		lessonID, err := strconv.ParseUint(c.FormValue("lesson_id"), 10, 64)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid lesson_id")
		}
		payload.LessonID = uint(lessonID)
		payload.Type = c.FormValue("type")
		payload.URLOrKey = c.FormValue("url_or_key")
		payload.Title = c.FormValue("title")
		payload.Language = c.FormValue("language")
		if metadata := c.FormValue("metadata"); metadata != "" {
			payload.Metadata = json.RawMessage(metadata)
		}
		if version := c.FormValue("version"); version != "" {
			parsed, err := strconv.Atoi(version)
			if err != nil {
				return utils.SendError(c, fiber.StatusBadRequest, "invalid version")
			}
			payload.Version = parsed
		}
	} else if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	asset, err := h.service.Create(c.Context(), payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "asset created", asset)
}

func (h *AssetHandler) listByLesson(c *fiber.Ctx) error {
	lessonID, err := parseUintParam(c, "lessonId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assets, err := h.service.ListByLesson(c.Context(), lessonID)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "assets retrieved", assets)
}

func (h *AssetHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AssetUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	asset, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "asset updated", asset)
}

func (h *AssetHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "asset deleted", fiber.Map{"id": id})
}

func (h *AssetHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAssetNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "asset not found")
	case errors.Is(err, service.ErrInvalidAssetReference):
		return utils.SendError(c, fiber.StatusConflict, "lesson does not exist")
	case errors.Is(err, service.ErrInvalidAssetType),
		errors.Is(err, service.ErrMissingAssetSource),
		errors.Is(err, service.ErrAssetFileTypeMismatch):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAssetFileTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	return h.internalError(c, err)
}

func (h *AssetHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
