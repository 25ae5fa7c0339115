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
	// ErrUnitNotFound indicates the requested unit does not exist.
	ErrUnitNotFound = errors.New("unit not found")
	// ErrInvalidUnitReference indicates the parent subject does not exist.
	ErrInvalidUnitReference = errors.New("invalid subject reference")
	// ErrUnitInUse indicates the unit is still referenced by lessons.
	ErrUnitInUse = errors.New("unit is referenced by existing lessons")
)

// UnitService exposes curriculum unit use cases.
type UnitService interface {
	Create(ctx context.Context, payload dto.UnitCreateRequest) (dto.UnitResponse, error)
	ListBySubject(ctx context.Context, subjectID uint) ([]dto.UnitResponse, error)
	Update(ctx context.Context, id uint, payload dto.UnitUpdateRequest) (dto.UnitResponse, error)
	Delete(ctx context.Context, id uint) error
}

type unitService struct {
	units     repository.UnitRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUnitService builds a new unit service.
func NewUnitService(units repository.UnitRepository, validate *validator.Validate, logger zerolog.Logger) UnitService {
	return &unitService{
		units:     units,
		validator: validate,
		logger:    logger.With().Str("component", "unit_service").Logger(),
	}
}

func (s *unitService) Create(ctx context.Context, payload dto.UnitCreateRequest) (dto.UnitResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UnitResponse{}, err
	}

	unit := models.Unit{
		SubjectID:  payload.SubjectID,
		Title:      payload.Title,
		OrderIndex: payload.OrderIndex,
	}

	if err := s.units.Create(ctx, &unit); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return dto.UnitResponse{}, ErrInvalidUnitReference
		}
		return dto.UnitResponse{}, err
	}

	s.logger.Info().Uint("unit_id", unit.ID).Uint("subject_id", unit.SubjectID).Msg("unit created")

	return dto.NewUnitResponse(unit), nil
}

func (s *unitService) ListBySubject(ctx context.Context, subjectID uint) ([]dto.UnitResponse, error) {
	units, err := s.units.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	return dto.NewUnitResponseSlice(units), nil
}

func (s *unitService) Update(ctx context.Context, id uint, payload dto.UnitUpdateRequest) (dto.UnitResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UnitResponse{}, err
	}

	unit, err := s.units.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UnitResponse{}, ErrUnitNotFound
		}
		return dto.UnitResponse{}, err
	}

	if payload.Title != nil {
		unit.Title = *payload.Title
	}
	if payload.OrderIndex != nil {
		unit.OrderIndex = *payload.OrderIndex
	}

	if err := s.units.Update(ctx, &unit); err != nil {
		return dto.UnitResponse{}, err
	}

	return dto.NewUnitResponse(unit), nil
}

func (s *unitService) Delete(ctx context.Context, id uint) error {
	if err := s.units.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrUnitNotFound
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return ErrUnitInUse
		}
		return err
	}

	s.logger.Info().Uint("unit_id", id).Msg("unit deleted")
	return nil
}
