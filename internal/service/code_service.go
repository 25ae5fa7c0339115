package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/openedu/school-api/internal/dto"
	"github.com/openedu/school-api/internal/models"
	"github.com/openedu/school-api/internal/observability"
	"github.com/openedu/school-api/internal/repository"
)

const codeLength = 8

var (
	// ErrCodeInvalid indicates the code does not exist or was already redeemed.
	ErrCodeInvalid = errors.New("code is invalid or already used")
	// ErrInvalidCodeSubject indicates the subject the codes are minted for does not exist.
	ErrInvalidCodeSubject = errors.New("invalid subject reference")
)

// CodeService exposes redeem code use cases.
type CodeService interface {
	Generate(ctx context.Context, payload dto.CodeGenerateRequest) ([]dto.CodeResponse, error)
	List(ctx context.Context) ([]dto.CodeResponse, error)
	ListBySubject(ctx context.Context, subjectID uint) ([]dto.CodeResponse, error)
	Redeem(ctx context.Context, studentID uint, payload dto.CodeRedeemRequest) (dto.RedeemResult, error)
}

type codeService struct {
	codes     repository.CodeRepository
	subjects  repository.SubjectRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCodeService builds a new redeem code service.
func NewCodeService(codes repository.CodeRepository, subjects repository.SubjectRepository, validate *validator.Validate, logger zerolog.Logger) CodeService {
	return &codeService{
		codes:     codes,
		subjects:  subjects,
		validator: validate,
		logger:    logger.With().Str("component", "code_service").Logger(),
	}
}

func (s *codeService) Generate(ctx context.Context, payload dto.CodeGenerateRequest) ([]dto.CodeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	if _, err := s.subjects.GetByID(ctx, payload.SubjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCodeSubject
		}
		return nil, err
	}

	batch := make([]models.RedeemCode, 0, payload.Count)
	for i := 0; i < payload.Count; i++ {
		batch = append(batch, models.RedeemCode{
			Code:      newCode(),
			SubjectID: payload.SubjectID,
		})
	}

	if err := s.codes.CreateBatch(ctx, batch); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrInvalidCodeSubject
		}
		return nil, err
	}

	s.logger.Info().
		Uint("subject_id", payload.SubjectID).
		Int("count", len(batch)).
		Msg("redeem codes generated")

	return dto.NewCodeResponseSlice(batch), nil
}

func (s *codeService) List(ctx context.Context) ([]dto.CodeResponse, error) {
	codes, err := s.codes.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewCodeResponseSlice(codes), nil
}

func (s *codeService) ListBySubject(ctx context.Context, subjectID uint) ([]dto.CodeResponse, error) {
	codes, err := s.codes.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	return dto.NewCodeResponseSlice(codes), nil
}

// Redeem consumes a code on behalf of the authenticated student and records a
// subject enrollment. A used or unknown code fails with the same error so the
// caller cannot probe which codes exist.
func (s *codeService) Redeem(ctx context.Context, studentID uint, payload dto.CodeRedeemRequest) (dto.RedeemResult, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RedeemResult{}, err
	}

	normalized := strings.ToUpper(strings.TrimSpace(payload.Code))

	code, err := s.codes.GetUnusedByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RedeemResult{}, ErrCodeInvalid
		}
		return dto.RedeemResult{}, err
	}

	code.RedeemedByID = &studentID
	enrollment := models.SubjectEnrollment{
		StudentID: studentID,
		SubjectID: code.SubjectID,
		Method:    "CODE",
		Code:      code.Code,
	}

	if err := s.codes.Redeem(ctx, &code, &enrollment); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RedeemResult{}, ErrCodeInvalid
		}
		return dto.RedeemResult{}, err
	}

	subject, err := s.subjects.GetByID(ctx, code.SubjectID)
	if err != nil {
		return dto.RedeemResult{}, err
	}

	observability.CodesRedeemed().Inc()
	s.logger.Info().
		Uint("student_id", studentID).
		Uint("subject_id", code.SubjectID).
		Msg("code redeemed")

	return dto.RedeemResult{
		SubjectID: code.SubjectID,
		Subject:   dto.NewSubjectResponse(subject),
	}, nil
}

// newCode derives an 8 character uppercase code from a fresh UUID.
func newCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[:codeLength]
}
