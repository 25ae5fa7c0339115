package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/openedu/school-api/internal/dto"
	"github.com/openedu/school-api/internal/models"
	"github.com/openedu/school-api/internal/repository"
)

var (
	// ErrQuestionNotFound indicates the requested question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidQuestionReference indicates the parent assignment does not exist.
	ErrInvalidQuestionReference = errors.New("invalid assignment reference")
	// ErrInvalidQuestionShape indicates the options or answer key do not match the question type.
	ErrInvalidQuestionShape = errors.New("options or answer key do not match the question type")
)

// Question payload schemas, keyed by question type. MCQ questions carry at
// least two options and an answer key indexing into them; true/false questions
// carry a boolean answer key; short answer questions carry free text.
var questionSchemas = map[string]struct {
	options   *jsonschema.Schema
	answerKey *jsonschema.Schema
}{
	models.QuestionTypeMCQ: {
		options: jsonschema.MustCompileString("mcq_options.json", `{
			"type": "array",
			"items": {"type": "string", "minLength": 1},
			"minItems": 2
		}`),
		answerKey: jsonschema.MustCompileString("mcq_answer_key.json", `{
			"type": "integer",
			"minimum": 0
		}`),
	},
	models.QuestionTypeTrueFalse: {
		answerKey: jsonschema.MustCompileString("true_false_answer_key.json", `{
			"type": "boolean"
		}`),
	},
	models.QuestionTypeShort: {
		answerKey: jsonschema.MustCompileString("short_answer_key.json", `{
			"type": "string"
		}`),
	},
}

// QuestionService exposes question use cases.
type QuestionService interface {
	Create(ctx context.Context, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]dto.QuestionResponse, error)
	Update(ctx context.Context, id uint, payload dto.QuestionUpdateRequest) (dto.QuestionResponse, error)
	Delete(ctx context.Context, id uint) error
}

type questionService struct {
	questions repository.QuestionRepository
	validator *validator.Validate
	logger    zerolog.Logger
	sanitizer *bluemonday.Policy
}

// NewQuestionService builds a new question service.
func NewQuestionService(questions repository.QuestionRepository, validate *validator.Validate, logger zerolog.Logger) QuestionService {
	return &questionService{
		questions: questions,
		validator: validate,
		logger:    logger.With().Str("component", "question_service").Logger(),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

func (s *questionService) Create(ctx context.Context, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	if err := validateQuestionShape(payload.Type, payload.Options, payload.AnswerKey); err != nil {
		return dto.QuestionResponse{}, err
	}

	points := 1
	if payload.Points != nil {
		points = *payload.Points
	}
	language := payload.Language
	if language == "" {
		language = "en"
	}

	question := models.Question{
		AssignmentID: payload.AssignmentID,
		Type:         payload.Type,
		Prompt:       s.sanitizer.Sanitize(strings.TrimSpace(payload.Prompt)),
		Options:      datatypes.JSON(payload.Options),
		AnswerKey:    datatypes.JSON(payload.AnswerKey),
		Points:       points,
		Language:     language,
	}

	if err := s.questions.Create(ctx, &question); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return dto.QuestionResponse{}, ErrInvalidQuestionReference
		}
		return dto.QuestionResponse{}, err
	}

	s.logger.Info().
		Uint("question_id", question.ID).
		Uint("assignment_id", question.AssignmentID).
		Str("type", question.Type).
		Msg("question created")

	return dto.NewQuestionResponse(question), nil
}

func (s *questionService) ListByAssignment(ctx context.Context, assignmentID uint) ([]dto.QuestionResponse, error) {
	questions, err := s.questions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	return dto.NewQuestionResponseSlice(questions), nil
}

func (s *questionService) Update(ctx context.Context, id uint, payload dto.QuestionUpdateRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrQuestionNotFound
		}
		return dto.QuestionResponse{}, err
	}

	if payload.Prompt != nil {
		question.Prompt = s.sanitizer.Sanitize(strings.TrimSpace(*payload.Prompt))
	}
	if payload.Options != nil {
		question.Options = datatypes.JSON(payload.Options)
	}
	if payload.AnswerKey != nil {
		question.AnswerKey = datatypes.JSON(payload.AnswerKey)
	}
	if payload.Points != nil {
		question.Points = *payload.Points
	}
	if payload.Language != nil {
		question.Language = *payload.Language
	}

	if err := validateQuestionShape(question.Type, json.RawMessage(question.Options), json.RawMessage(question.AnswerKey)); err != nil {
		return dto.QuestionResponse{}, err
	}

	if err := s.questions.Update(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	return dto.NewQuestionResponse(question), nil
}

func (s *questionService) Delete(ctx context.Context, id uint) error {
	if err := s.questions.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}

	s.logger.Info().Uint("question_id", id).Msg("question deleted")
	return nil
}

func validateQuestionShape(questionType string, options, answerKey json.RawMessage) error {
	schemas, ok := questionSchemas[questionType]
	if !ok {
		return ErrInvalidQuestionShape
	}

	if schemas.options != nil {
		if len(options) == 0 {
			return fmt.Errorf("%s questions require options: %w", questionType, ErrInvalidQuestionShape)
		}
		if err := validateAgainst(schemas.options, options); err != nil {
			return fmt.Errorf("invalid options: %w", ErrInvalidQuestionShape)
		}
	} else if len(options) > 0 {
		return fmt.Errorf("%s questions do not take options: %w", questionType, ErrInvalidQuestionShape)
	}

	if len(answerKey) > 0 && schemas.answerKey != nil {
		if err := validateAgainst(schemas.answerKey, answerKey); err != nil {
			return fmt.Errorf("invalid answer key: %w", ErrInvalidQuestionShape)
		}
	}

	return nil
}

func validateAgainst(schema *jsonschema.Schema, raw json.RawMessage) error {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return err
	}
	return schema.Validate(value)
}
