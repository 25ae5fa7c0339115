package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/openedu/school-api/internal/dto"
	"github.com/openedu/school-api/internal/models"
	"github.com/openedu/school-api/internal/repository"
)

var (
	// ErrAssignmentNotFound indicates the requested assignment does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrInvalidAssignmentReference indicates the parent lesson does not exist.
	ErrInvalidAssignmentReference = errors.New("invalid lesson reference")
	// ErrAssignmentInUse indicates the assignment is still referenced by questions or submissions.
	ErrAssignmentInUse = errors.New("assignment is referenced by existing questions or submissions")
)

// AssignmentService exposes assignment use cases.
type AssignmentService interface {
	Create(ctx context.Context, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	ListByLesson(ctx context.Context, lessonID uint) ([]dto.AssignmentResponse, error)
	GetByID(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id uint) error
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	sanitizer   *bluemonday.Policy
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(assignments repository.AssignmentRepository, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		sanitizer:   bluemonday.UGCPolicy(),
	}
}

func (s *assignmentService) Create(ctx context.Context, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	kind := payload.Kind
	if kind == "" {
		kind = models.AssignmentKindAssignment
	}

	dueAt, err := parseDueAt(payload.DueAt)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		LessonID:     payload.LessonID,
		Title:        strings.TrimSpace(payload.Title),
		Instructions: s.sanitizer.Sanitize(payload.Instructions),
		DueAt:        dueAt,
		Kind:         kind,
		Settings:     datatypes.JSON(payload.Settings),
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return dto.AssignmentResponse{}, ErrInvalidAssignmentReference
		}
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("lesson_id", assignment.LessonID).
		Str("kind", assignment.Kind).
		Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) ListByLesson(ctx context.Context, lessonID uint) ([]dto.AssignmentResponse, error) {
	assignments, err := s.assignments.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) GetByID(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if payload.Title != nil {
		assignment.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Instructions != nil {
		assignment.Instructions = s.sanitizer.Sanitize(*payload.Instructions)
	}
	if payload.DueAt != nil {
		dueAt, err := parseDueAt(payload.DueAt)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.DueAt = dueAt
	}
	if payload.Kind != nil {
		assignment.Kind = *payload.Kind
	}
	if payload.Settings != nil {
		assignment.Settings = datatypes.JSON(payload.Settings)
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Delete(ctx context.Context, id uint) error {
	if err := s.assignments.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrAssignmentNotFound
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return ErrAssignmentInUse
		}
		return err
	}

	s.logger.Info().Uint("assignment_id", id).Msg("assignment deleted")
	return nil
}

func parseDueAt(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}

	parsed, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, err
	}

	return &parsed, nil
}
