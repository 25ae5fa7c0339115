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
	// ErrClassNotFound indicates the requested class does not exist.
	ErrClassNotFound = errors.New("class not found")
	// ErrClassExists indicates a class with the same name already exists in the grade.
	ErrClassExists = errors.New("class name must be unique within its grade")
	// ErrInvalidClassReference indicates the grade or homeroom teacher does not exist.
	ErrInvalidClassReference = errors.New("invalid grade or teacher reference")
	// ErrClassInUse indicates the class is still referenced by enrollments.
	ErrClassInUse = errors.New("class is referenced by existing enrollments")
)

// ClassService exposes class use cases.
type ClassService interface {
	Create(ctx context.Context, payload dto.ClassCreateRequest) (dto.ClassResponse, error)
	List(ctx context.Context) ([]dto.ClassResponse, error)
	Update(ctx context.Context, id uint, payload dto.ClassUpdateRequest) (dto.ClassResponse, error)
	Delete(ctx context.Context, id uint) error
}

type classService struct {
	classes   repository.ClassRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewClassService builds a new class service.
func NewClassService(classes repository.ClassRepository, validate *validator.Validate, logger zerolog.Logger) ClassService {
	return &classService{
		classes:   classes,
		validator: validate,
		logger:    logger.With().Str("component", "class_service").Logger(),
	}
}

func (s *classService) Create(ctx context.Context, payload dto.ClassCreateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	class := models.Class{
		Name:              payload.Name,
		GradeID:           payload.GradeID,
		HomeroomTeacherID: payload.HomeroomTeacherID,
	}

	if err := s.classes.Create(ctx, &class); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return dto.ClassResponse{}, ErrClassExists
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return dto.ClassResponse{}, ErrInvalidClassReference
		}
		return dto.ClassResponse{}, err
	}

	s.logger.Info().Uint("class_id", class.ID).Str("name", class.Name).Msg("class created")

	return dto.NewClassResponse(class), nil
}

func (s *classService) List(ctx context.Context) ([]dto.ClassResponse, error) {
	classes, err := s.classes.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewClassResponseSlice(classes), nil
}

func (s *classService) Update(ctx context.Context, id uint, payload dto.ClassUpdateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	if payload.Name != nil {
		class.Name = *payload.Name
	}
	if payload.GradeID != nil {
		class.GradeID = *payload.GradeID
	}
	if payload.HomeroomTeacherID != nil {
		class.HomeroomTeacherID = payload.HomeroomTeacherID
	}

	if err := s.classes.Update(ctx, &class); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return dto.ClassResponse{}, ErrClassExists
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return dto.ClassResponse{}, ErrInvalidClassReference
		}
		return dto.ClassResponse{}, err
	}

	return dto.NewClassResponse(class), nil
}

func (s *classService) Delete(ctx context.Context, id uint) error {
	if err := s.classes.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrClassNotFound
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return ErrClassInUse
		}
		return err
	}

	s.logger.Info().Uint("class_id", id).Msg("class deleted")
	return nil
}
