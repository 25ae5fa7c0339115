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
	// ErrSubjectNotFound indicates the requested subject does not exist.
	ErrSubjectNotFound = errors.New("subject not found")
	// ErrSubjectExists indicates a subject with the same name already exists.
	ErrSubjectExists = errors.New("subject name must be unique")
	// ErrSubjectInUse indicates the subject is still referenced by units or codes.
	ErrSubjectInUse = errors.New("subject is referenced by existing content")
)

// SubjectService exposes subject use cases.
type SubjectService interface {
	Create(ctx context.Context, payload dto.SubjectCreateRequest) (dto.SubjectResponse, error)
	List(ctx context.Context) ([]dto.SubjectResponse, error)
	Update(ctx context.Context, id uint, payload dto.SubjectUpdateRequest) (dto.SubjectResponse, error)
	Delete(ctx context.Context, id uint) error
}

type subjectService struct {
	subjects  repository.SubjectRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSubjectService builds a new subject service.
func NewSubjectService(subjects repository.SubjectRepository, validate *validator.Validate, logger zerolog.Logger) SubjectService {
	return &subjectService{
		subjects:  subjects,
		validator: validate,
		logger:    logger.With().Str("component", "subject_service").Logger(),
	}
}

func (s *subjectService) Create(ctx context.Context, payload dto.SubjectCreateRequest) (dto.SubjectResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubjectResponse{}, err
	}

	subject := models.Subject{Name: payload.Name, Code: payload.Code}
	if err := s.subjects.Create(ctx, &subject); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SubjectResponse{}, ErrSubjectExists
		}
		return dto.SubjectResponse{}, err
	}

	s.logger.Info().Uint("subject_id", subject.ID).Str("name", subject.Name).Msg("subject created")

	return dto.NewSubjectResponse(subject), nil
}

func (s *subjectService) List(ctx context.Context) ([]dto.SubjectResponse, error) {
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewSubjectResponseSlice(subjects), nil
}

func (s *subjectService) Update(ctx context.Context, id uint, payload dto.SubjectUpdateRequest) (dto.SubjectResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubjectResponse{}, err
	}

	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubjectResponse{}, ErrSubjectNotFound
		}
		return dto.SubjectResponse{}, err
	}

	if payload.Name != nil {
		subject.Name = *payload.Name
	}
	if payload.Code != nil {
		subject.Code = *payload.Code
	}

	if err := s.subjects.Update(ctx, &subject); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SubjectResponse{}, ErrSubjectExists
		}
		return dto.SubjectResponse{}, err
	}

	return dto.NewSubjectResponse(subject), nil
}

func (s *subjectService) Delete(ctx context.Context, id uint) error {
	if err := s.subjects.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrSubjectNotFound
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return ErrSubjectInUse
		}
		return err
	}

	s.logger.Info().Uint("subject_id", id).Msg("subject deleted")
	return nil
}
