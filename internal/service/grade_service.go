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
	// ErrGradeNotFound indicates the requested grade level does not exist.
	ErrGradeNotFound = errors.New("grade not found")
	// ErrGradeExists indicates a grade level with the same name already exists.
	ErrGradeExists = errors.New("grade name must be unique")
	// ErrGradeInUse indicates the grade level is still referenced by classes.
	ErrGradeInUse = errors.New("grade is referenced by existing classes")
)

// GradeService exposes grade level use cases.
type GradeService interface {
	Create(ctx context.Context, payload dto.GradeCreateRequest) (dto.GradeResponse, error)
	List(ctx context.Context) ([]dto.GradeResponse, error)
	Update(ctx context.Context, id uint, payload dto.GradeUpdateRequest) (dto.GradeResponse, error)
	Delete(ctx context.Context, id uint) error
}

type gradeService struct {
	grades    repository.GradeRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewGradeService builds a new grade service.
func NewGradeService(grades repository.GradeRepository, validate *validator.Validate, logger zerolog.Logger) GradeService {
	return &gradeService{
		grades:    grades,
		validator: validate,
		logger:    logger.With().Str("component", "grade_service").Logger(),
	}
}

func (s *gradeService) Create(ctx context.Context, payload dto.GradeCreateRequest) (dto.GradeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GradeResponse{}, err
	}

	grade := models.Grade{Name: payload.Name}
	if err := s.grades.Create(ctx, &grade); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.GradeResponse{}, ErrGradeExists
		}
		return dto.GradeResponse{}, err
	}

	s.logger.Info().Uint("grade_id", grade.ID).Str("name", grade.Name).Msg("grade created")

	return dto.NewGradeResponse(grade), nil
}

func (s *gradeService) List(ctx context.Context) ([]dto.GradeResponse, error) {
	grades, err := s.grades.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewGradeResponseSlice(grades), nil
}

func (s *gradeService) Update(ctx context.Context, id uint, payload dto.GradeUpdateRequest) (dto.GradeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GradeResponse{}, err
	}

	grade, err := s.grades.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeResponse{}, ErrGradeNotFound
		}
		return dto.GradeResponse{}, err
	}

	grade.Name = payload.Name
	if err := s.grades.Update(ctx, &grade); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.GradeResponse{}, ErrGradeExists
		}
		return dto.GradeResponse{}, err
	}

	return dto.NewGradeResponse(grade), nil
}

func (s *gradeService) Delete(ctx context.Context, id uint) error {
	if err := s.grades.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrGradeNotFound
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return ErrGradeInUse
		}
		return err
	}

	s.logger.Info().Uint("grade_id", id).Msg("grade deleted")
	return nil
}
