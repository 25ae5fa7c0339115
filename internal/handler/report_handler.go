package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/openedu/school-api/internal/models"
	"github.com/openedu/school-api/internal/service"
	"github.com/openedu/school-api/internal/utils"
)

// ReportHandler wires reporting HTTP routes.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler constructs the handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register attaches report endpoints. Students may only fetch their own
// report; the gradebook view is restricted to staff at the router.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Get("/student/:studentId", h.studentReport)
}

// RegisterStaff attaches the staff-only gradebook endpoint.
func (h *ReportHandler) RegisterStaff(router fiber.Router) {
	router.Get("/class/:classId/subject/:subjectId", h.classSubjectReport)
}

func (h *ReportHandler) studentReport(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if userRoleFromContext(c) == models.RoleStudent && studentID != userIDFromContext(c) {
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	}

	report, err := h.service.StudentReport(c.Context(), studentID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "student report generated", report)
}

func (h *ReportHandler) classSubjectReport(c *fiber.Ctx) error {
	classID, err := parseUintParam(c, "classId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	subjectID, err := parseUintParam(c, "subjectId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	report, err := h.service.ClassSubjectReport(c.Context(), classID, subjectID)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "class subject report generated", report)
}

func (h *ReportHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
