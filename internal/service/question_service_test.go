package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/openedu/school-api/internal/dto"
	"github.com/openedu/school-api/internal/models"
)

type fakeQuestionRepo struct {
	questions map[uint]models.Question
	nextID    uint
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{questions: map[uint]models.Question{}, nextID: 1}
}

func (f *fakeQuestionRepo) ListByAssignment(_ context.Context, assignmentID uint) ([]models.Question, error) {
	var out []models.Question
	for _, question := range f.questions {
		if question.AssignmentID == assignmentID {
			out = append(out, question)
		}
	}
	return out, nil
}

func (f *fakeQuestionRepo) GetByID(_ context.Context, id uint) (models.Question, error) {
	question, ok := f.questions[id]
	if !ok {
		return models.Question{}, gorm.ErrRecordNotFound
	}
	return question, nil
}

func (f *fakeQuestionRepo) Create(_ context.Context, question *models.Question) error {
	question.ID = f.nextID
	f.nextID++
	f.questions[question.ID] = *question
	return nil
}

func (f *fakeQuestionRepo) Update(_ context.Context, question *models.Question) error {
	f.questions[question.ID] = *question
	return nil
}

func (f *fakeQuestionRepo) Delete(_ context.Context, id uint) error {
	if _, ok := f.questions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.questions, id)
	return nil
}

func newQuestionFixture() QuestionService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewQuestionService(newFakeQuestionRepo(), validate, zerolog.Nop())
}

func TestQuestionServiceCreateMCQ(t *testing.T) {
	svc := newQuestionFixture()

	response, err := svc.Create(context.Background(), dto.QuestionCreateRequest{
		AssignmentID: 1,
		Type:         models.QuestionTypeMCQ,
		Prompt:       "What is 2 + 2?",
		Options:      json.RawMessage(`["3", "4", "5"]`),
		AnswerKey:    json.RawMessage(`1`),
	})
	require.NoError(t, err)
	require.Equal(t, models.QuestionTypeMCQ, response.Type)
	require.Equal(t, 1, response.Points)
	require.Equal(t, "en", response.Language)
}

func TestQuestionServiceCreateRejectsBadShapes(t *testing.T) {
	svc := newQuestionFixture()
	ctx := context.Background()

	tests := []struct {
		name    string
		payload dto.QuestionCreateRequest
	}{
		{
			"mcq without options",
			dto.QuestionCreateRequest{
				AssignmentID: 1,
				Type:         models.QuestionTypeMCQ,
				Prompt:       "Pick one",
				AnswerKey:    json.RawMessage(`0`),
			},
		},
		{
			"mcq with a single option",
			dto.QuestionCreateRequest{
				AssignmentID: 1,
				Type:         models.QuestionTypeMCQ,
				Prompt:       "Pick one",
				Options:      json.RawMessage(`["only"]`),
			},
		},
		{
			"mcq with non-integer answer key",
			dto.QuestionCreateRequest{
				AssignmentID: 1,
				Type:         models.QuestionTypeMCQ,
				Prompt:       "Pick one",
				Options:      json.RawMessage(`["a", "b"]`),
				AnswerKey:    json.RawMessage(`"a"`),
			},
		},
		{
			"true/false with string answer key",
			dto.QuestionCreateRequest{
				AssignmentID: 1,
				Type:         models.QuestionTypeTrueFalse,
				Prompt:       "The sky is green",
				AnswerKey:    json.RawMessage(`"false"`),
			},
		},
		{
			"short answer with options",
			dto.QuestionCreateRequest{
				AssignmentID: 1,
				Type:         models.QuestionTypeShort,
				Prompt:       "Explain",
				Options:      json.RawMessage(`["a", "b"]`),
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.payload)
			require.ErrorIs(t, err, ErrInvalidQuestionShape)
		})
	}
}

func TestQuestionServiceCreateTrueFalse(t *testing.T) {
	svc := newQuestionFixture()

	response, err := svc.Create(context.Background(), dto.QuestionCreateRequest{
		AssignmentID: 1,
		Type:         models.QuestionTypeTrueFalse,
		Prompt:       "Water boils at 100C at sea level",
		AnswerKey:    json.RawMessage(`true`),
	})
	require.NoError(t, err)
	require.Equal(t, models.QuestionTypeTrueFalse, response.Type)
	require.Empty(t, response.Options)
}

func TestQuestionServiceCreateSanitizesPrompt(t *testing.T) {
	svc := newQuestionFixture()

	response, err := svc.Create(context.Background(), dto.QuestionCreateRequest{
		AssignmentID: 1,
		Type:         models.QuestionTypeShort,
		Prompt:       `Describe <script>alert("x")</script> photosynthesis`,
	})
	require.NoError(t, err)
	require.NotContains(t, response.Prompt, "<script>")
	require.Contains(t, response.Prompt, "photosynthesis")
}

func TestQuestionServiceUpdateRevalidatesShape(t *testing.T) {
	svc := newQuestionFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.QuestionCreateRequest{
		AssignmentID: 1,
		Type:         models.QuestionTypeMCQ,
		Prompt:       "Pick one",
		Options:      json.RawMessage(`["a", "b"]`),
		AnswerKey:    json.RawMessage(`0`),
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, dto.QuestionUpdateRequest{
		Options: json.RawMessage(`["only"]`),
	})
	require.ErrorIs(t, err, ErrInvalidQuestionShape)

	points := 5
	updated, err := svc.Update(ctx, created.ID, dto.QuestionUpdateRequest{Points: &points})
	require.NoError(t, err)
	require.Equal(t, 5, updated.Points)
}

func TestQuestionServiceDeleteMissing(t *testing.T) {
	svc := newQuestionFixture()

	err := svc.Delete(context.Background(), 404)
	require.ErrorIs(t, err, ErrQuestionNotFound)
}
