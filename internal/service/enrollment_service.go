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
	// ErrAlreadyEnrolled indicates the student is already enrolled in the class.
	ErrAlreadyEnrolled = errors.New("user already enrolled in class")
	// ErrEnrollmentNotFound indicates the (user, class) pairing does not exist.
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	// ErrInvalidEnrollmentReference indicates the user or class does not exist.
	ErrInvalidEnrollmentReference = errors.New("invalid user or class reference")
)

// EnrollmentService exposes class enrollment use cases.
type EnrollmentService interface {
	Enroll(ctx context.Context, payload dto.EnrollmentCreateRequest) (dto.EnrollmentResponse, error)
	ListByClass(ctx context.Context, classID uint) ([]dto.EnrollmentResponse, error)
	ListByUser(ctx context.Context, userID uint) ([]dto.EnrollmentResponse, error)
	Unenroll(ctx context.Context, userID, classID uint) error
}

type enrollmentService struct {
	enrollments repository.EnrollmentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewEnrollmentService builds a new enrollment service.
func NewEnrollmentService(enrollments repository.EnrollmentRepository, validate *validator.Validate, logger zerolog.Logger) EnrollmentService {
	return &enrollmentService{
		enrollments: enrollments,
		validator:   validate,
		logger:      logger.With().Str("component", "enrollment_service").Logger(),
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, payload dto.EnrollmentCreateRequest) (dto.EnrollmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	enrollment := models.Enrollment{UserID: payload.UserID, ClassID: payload.ClassID}
	if err := s.enrollments.Create(ctx, &enrollment); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return dto.EnrollmentResponse{}, ErrAlreadyEnrolled
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return dto.EnrollmentResponse{}, ErrInvalidEnrollmentReference
		}
		return dto.EnrollmentResponse{}, err
	}

	s.logger.Info().
		Uint("user_id", payload.UserID).
		Uint("class_id", payload.ClassID).
		Msg("student enrolled")

	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *enrollmentService) ListByClass(ctx context.Context, classID uint) ([]dto.EnrollmentResponse, error) {
	enrollments, err := s.enrollments.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	return dto.NewEnrollmentResponseSlice(enrollments), nil
}

func (s *enrollmentService) ListByUser(ctx context.Context, userID uint) ([]dto.EnrollmentResponse, error) {
	enrollments, err := s.enrollments.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return dto.NewEnrollmentResponseSlice(enrollments), nil
}

func (s *enrollmentService) Unenroll(ctx context.Context, userID, classID uint) error {
	if err := s.enrollments.DeleteByUserAndClass(ctx, userID, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}

	s.logger.Info().
		Uint("user_id", userID).
		Uint("class_id", classID).
		Msg("student unenrolled")

	return nil
}
