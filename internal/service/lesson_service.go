package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/openedu/school-api/internal/dto"
	"github.com/openedu/school-api/internal/models"
	"github.com/openedu/school-api/internal/repository"
)

var (
	// ErrLessonNotFound indicates the requested lesson does not exist.
	ErrLessonNotFound = errors.New("lesson not found")
	// ErrInvalidLessonReference indicates the parent unit does not exist.
	ErrInvalidLessonReference = errors.New("invalid unit reference")
	// ErrLessonInUse indicates the lesson is still referenced by assets or assignments.
	ErrLessonInUse = errors.New("lesson is referenced by existing content")
)

// LessonService exposes lesson use cases.
type LessonService interface {
	Create(ctx context.Context, payload dto.LessonCreateRequest) (dto.LessonResponse, error)
	ListByUnit(ctx context.Context, unitID uint) ([]dto.LessonResponse, error)
	Update(ctx context.Context, id uint, payload dto.LessonUpdateRequest) (dto.LessonResponse, error)
	Delete(ctx context.Context, id uint) error
}

type lessonService struct {
	lessons   repository.LessonRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewLessonService builds a new lesson service.
func NewLessonService(lessons repository.LessonRepository, validate *validator.Validate, logger zerolog.Logger) LessonService {
	return &lessonService{
		lessons:   lessons,
		validator: validate,
		logger:    logger.With().Str("component", "lesson_service").Logger(),
	}
}

func (s *lessonService) Create(ctx context.Context, payload dto.LessonCreateRequest) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}

	lesson := models.Lesson{
		UnitID:     payload.UnitID,
		Title:      payload.Title,
		OrderIndex: payload.OrderIndex,
	}

	if err := s.lessons.Create(ctx, &lesson); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return dto.LessonResponse{}, ErrInvalidLessonReference
		}
		return dto.LessonResponse{}, err
	}

	s.logger.Info().Uint("lesson_id", lesson.ID).Uint("unit_id", lesson.UnitID).Msg("lesson created")

	return dto.NewLessonResponse(lesson), nil
}

func (s *lessonService) ListByUnit(ctx context.Context, unitID uint) ([]dto.LessonResponse, error) {
	lessons, err := s.lessons.ListByUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}

	return dto.NewLessonResponseSlice(lessons), nil
}

func (s *lessonService) Update(ctx context.Context, id uint, payload dto.LessonUpdateRequest) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}

	lesson, err := s.lessons.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonResponse{}, ErrLessonNotFound
		}
		return dto.LessonResponse{}, err
	}

	if payload.Title != nil {
		lesson.Title = *payload.Title
	}
	if payload.OrderIndex != nil {
		lesson.OrderIndex = *payload.OrderIndex
	}

	if err := s.lessons.Update(ctx, &lesson); err != nil {
		return dto.LessonResponse{}, err
	}

	return dto.NewLessonResponse(lesson), nil
}

func (s *lessonService) Delete(ctx context.Context, id uint) error {
	if err := s.lessons.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrLessonNotFound
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return ErrLessonInUse
		}
		return err
	}

	s.logger.Info().Uint("lesson_id", id).Msg("lesson deleted")
	return nil
}
