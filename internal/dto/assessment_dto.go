package dto

import (
	"encoding/json"
	"time"

	"github.com/openedu/school-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating an assignment under a lesson.
type AssignmentCreateRequest struct {
	LessonID     uint            `json:"lesson_id" validate:"required"`
	Title        string          `json:"title" validate:"required,min=1"`
	Instructions string          `json:"instructions"`
	DueAt        *string         `json:"due_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Kind         string          `json:"kind" validate:"omitempty,oneof=ASSIGNMENT QUIZ"`
	Settings     json.RawMessage `json:"settings"`
}

// AssignmentUpdateRequest describes the payload for updating an assignment.
type AssignmentUpdateRequest struct {
	Title        *string         `json:"title" validate:"omitempty,min=1"`
	Instructions *string         `json:"instructions"`
	DueAt        *string         `json:"due_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Kind         *string         `json:"kind" validate:"omitempty,oneof=ASSIGNMENT QUIZ"`
	Settings     json.RawMessage `json:"settings"`
}

// AssignmentResponse is the serialized representation of an assignment.
type AssignmentResponse struct {
	ID           uint            `json:"id"`
	LessonID     uint            `json:"lesson_id"`
	Title        string          `json:"title"`
	Instructions string          `json:"instructions"`
	DueAt        *time.Time      `json:"due_at"`
	Kind         string          `json:"kind"`
	Settings     json.RawMessage `json:"settings,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:           model.ID,
		LessonID:     model.LessonID,
		Title:        model.Title,
		Instructions: model.Instructions,
		DueAt:        model.DueAt,
		Kind:         model.Kind,
		Settings:     json.RawMessage(model.Settings),
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}

// QuestionCreateRequest describes the payload for adding a question to an assignment.
type QuestionCreateRequest struct {
	AssignmentID uint            `json:"assignment_id" validate:"required"`
	Type         string          `json:"type" validate:"required,oneof=MCQ SHORT TRUE_FALSE"`
	Prompt       string          `json:"prompt" validate:"required,min=1"`
	Options      json.RawMessage `json:"options"`
	AnswerKey    json.RawMessage `json:"answer_key"`
	Points       *int            `json:"points" validate:"omitempty,gte=1"`
	Language     string          `json:"language" validate:"omitempty,bcp47_language_tag"`
}

// QuestionUpdateRequest describes the payload for updating a question.
type QuestionUpdateRequest struct {
	Prompt    *string         `json:"prompt" validate:"omitempty,min=1"`
	Options   json.RawMessage `json:"options"`
	AnswerKey json.RawMessage `json:"answer_key"`
	Points    *int            `json:"points" validate:"omitempty,gte=1"`
	Language  *string         `json:"language" validate:"omitempty,bcp47_language_tag"`
}

// QuestionResponse is the serialized representation of a question.
type QuestionResponse struct {
	ID           uint            `json:"id"`
	AssignmentID uint            `json:"assignment_id"`
	Type         string          `json:"type"`
	Prompt       string          `json:"prompt"`
	Options      json.RawMessage `json:"options,omitempty"`
	AnswerKey    json.RawMessage `json:"answer_key,omitempty"`
	Points       int             `json:"points"`
	Language     string          `json:"language"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewQuestionResponse converts a model into a DTO.
func NewQuestionResponse(model models.Question) QuestionResponse {
	return QuestionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		Type:         model.Type,
		Prompt:       model.Prompt,
		Options:      json.RawMessage(model.Options),
		AnswerKey:    json.RawMessage(model.AnswerKey),
		Points:       model.Points,
		Language:     model.Language,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewQuestionResponseSlice converts a slice of models into DTOs.
func NewQuestionResponseSlice(questions []models.Question) []QuestionResponse {
	responses := make([]QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, NewQuestionResponse(question))
	}

	return responses
}

// SubmissionCreateRequest describes the payload for submitting answers to an
// assignment. The student identity always comes from the token, never the body.
type SubmissionCreateRequest struct {
	AssignmentID uint            `json:"assignment_id" validate:"required"`
	Responses    json.RawMessage `json:"responses"`
}

// GradeSubmissionRequest describes the payload for grading a submission.
type GradeSubmissionRequest struct {
	Score  *float64        `json:"score" validate:"required,gte=0"`
	Rubric json.RawMessage `json:"rubric"`
}

// GradeItemResponse is the serialized representation of a graded outcome.
type GradeItemResponse struct {
	ID           uint            `json:"id"`
	SubmissionID uint            `json:"submission_id"`
	Score        float64         `json:"score"`
	Rubric       json.RawMessage `json:"rubric,omitempty"`
	GradedByID   uint            `json:"graded_by_id"`
	GradedAt     time.Time       `json:"graded_at"`
}

// NewGradeItemResponse converts a model into a DTO.
func NewGradeItemResponse(model models.GradeItem) GradeItemResponse {
	return GradeItemResponse{
		ID:           model.ID,
		SubmissionID: model.SubmissionID,
		Score:        model.Score,
		Rubric:       json.RawMessage(model.Rubric),
		GradedByID:   model.GradedByID,
		GradedAt:     model.GradedAt,
	}
}

// SubmissionResponse is the serialized representation of a submission.
type SubmissionResponse struct {
	ID           uint               `json:"id"`
	AssignmentID uint               `json:"assignment_id"`
	StudentID    uint               `json:"student_id"`
	Responses    json.RawMessage    `json:"responses,omitempty"`
	Status       string             `json:"status"`
	SubmittedAt  time.Time          `json:"submitted_at"`
	GradeItem    *GradeItemResponse `json:"grade_item,omitempty"`
}

// NewSubmissionResponse converts a model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		Responses:    json.RawMessage(model.Responses),
		Status:       model.Status,
		SubmittedAt:  model.SubmittedAt,
	}

	if model.GradeItem != nil {
		gradeItem := NewGradeItemResponse(*model.GradeItem)
		response.GradeItem = &gradeItem
	}

	return response
}

// NewSubmissionResponseSlice converts a slice of models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
