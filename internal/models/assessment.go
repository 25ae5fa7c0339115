package models

import (
	"time"

	"gorm.io/datatypes"
)

// Assignment kinds.
const (
	AssignmentKindAssignment = "ASSIGNMENT"
	AssignmentKindQuiz       = "QUIZ"
)

// Question types.
const (
	QuestionTypeMCQ       = "MCQ"
	QuestionTypeShort     = "SHORT"
	QuestionTypeTrueFalse = "TRUE_FALSE"
)

// Submission statuses. A submission counts as graded once a GradeItem exists.
const (
	SubmissionStatusSubmitted = "SUBMITTED"
)

// IsValidAssignmentKind reports whether the given string is a known assignment kind.
func IsValidAssignmentKind(kind string) bool {
	return kind == AssignmentKindAssignment || kind == AssignmentKindQuiz
}

// IsValidQuestionType reports whether the given string is a known question type.
func IsValidQuestionType(questionType string) bool {
	switch questionType {
	case QuestionTypeMCQ, QuestionTypeShort, QuestionTypeTrueFalse:
		return true
	}
	return false
}

// Assignment is an assessable task attached to a lesson.
type Assignment struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	LessonID     uint           `gorm:"not null;index" json:"lesson_id"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	Instructions string         `gorm:"type:text" json:"instructions"`
	DueAt        *time.Time     `json:"due_at"`
	Kind         string         `gorm:"size:16;not null;default:ASSIGNMENT" json:"kind"`
	Settings     datatypes.JSON `gorm:"type:json" json:"settings,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Lesson       Lesson         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"lesson,omitempty"`
}

// Question belongs to an assignment. Options and AnswerKey shapes depend on
// the question type and are validated at the service layer.
type Question struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	AssignmentID uint           `gorm:"not null;index" json:"assignment_id"`
	Type         string         `gorm:"size:16;not null" json:"type"`
	Prompt       string         `gorm:"type:text;not null" json:"prompt"`
	Options      datatypes.JSON `gorm:"type:json" json:"options,omitempty"`
	AnswerKey    datatypes.JSON `gorm:"type:json" json:"answer_key,omitempty"`
	Points       int            `gorm:"not null;default:1" json:"points"`
	Language     string         `gorm:"size:8;not null;default:en" json:"language"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Assignment   Assignment     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"assignment,omitempty"`
}

// Submission records a student's answers for an assignment. A student may
// submit at most once per assignment.
type Submission struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	AssignmentID uint           `gorm:"not null;uniqueIndex:idx_submissions_assignment_student" json:"assignment_id"`
	StudentID    uint           `gorm:"not null;uniqueIndex:idx_submissions_assignment_student" json:"student_id"`
	Responses    datatypes.JSON `gorm:"type:json" json:"responses,omitempty"`
	Status       string         `gorm:"size:16;not null;default:SUBMITTED" json:"status"`
	SubmittedAt  time.Time      `gorm:"not null" json:"submitted_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Assignment   Assignment     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"assignment,omitempty"`
	Student      User           `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"student,omitempty"`
	GradeItem    *GradeItem     `json:"grade_item,omitempty"`
}

// IsGraded reports whether a grade has been recorded for the submission.
func (s Submission) IsGraded() bool {
	return s.GradeItem != nil
}

// GradeItem is the graded outcome attached 1:1 to a submission. Regrading
// overwrites the existing row.
type GradeItem struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	SubmissionID uint           `gorm:"not null;uniqueIndex" json:"submission_id"`
	Score        float64        `gorm:"not null" json:"score"`
	Rubric       datatypes.JSON `gorm:"type:json" json:"rubric,omitempty"`
	GradedByID   uint           `gorm:"not null" json:"graded_by_id"`
	GradedAt     time.Time      `gorm:"not null" json:"graded_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	GradedBy     User           `gorm:"foreignKey:GradedByID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"graded_by,omitempty"`
}
