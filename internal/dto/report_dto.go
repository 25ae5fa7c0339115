package dto

import (
	"time"

	"github.com/openedu/school-api/internal/models"
)

// StudentRef is the minimal student projection embedded in report rows.
type StudentRef struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AssignmentRef identifies an assignment inside a report.
type AssignmentRef struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

// StudentReportEntry is one submission row in a student report.
type StudentReportEntry struct {
	SubmissionID    uint               `json:"submission_id"`
	AssignmentID    uint               `json:"assignment_id"`
	AssignmentTitle string             `json:"assignment_title"`
	Status          string             `json:"status"`
	SubmittedAt     time.Time          `json:"submitted_at"`
	GradeItem       *GradeItemResponse `json:"grade_item,omitempty"`
}

// StudentReportResponse aggregates a student's submissions with their grades.
type StudentReportResponse struct {
	Student     UserResponse         `json:"student"`
	Submissions []StudentReportEntry `json:"submissions"`
}

// ReportSubmission is one submission row in a class-subject report.
type ReportSubmission struct {
	SubmissionID uint               `json:"submission_id"`
	AssignmentID uint               `json:"assignment_id"`
	Student      StudentRef         `json:"student"`
	Status       string             `json:"status"`
	SubmittedAt  time.Time          `json:"submitted_at"`
	GradeItem    *GradeItemResponse `json:"grade_item,omitempty"`
}

// ClassSubjectReportResponse is the raw material for a gradebook grid. The
// caller pivots it into per-student-per-assignment cells.
type ClassSubjectReportResponse struct {
	Assignments []AssignmentRef    `json:"assignments"`
	Submissions []ReportSubmission `json:"submissions"`
}

// NewStudentReportEntry builds a report row from a submission preloaded with
// its assignment and grade item.
func NewStudentReportEntry(model models.Submission) StudentReportEntry {
	entry := StudentReportEntry{
		SubmissionID:    model.ID,
		AssignmentID:    model.AssignmentID,
		AssignmentTitle: model.Assignment.Title,
		Status:          model.Status,
		SubmittedAt:     model.SubmittedAt,
	}

	if model.GradeItem != nil {
		gradeItem := NewGradeItemResponse(*model.GradeItem)
		entry.GradeItem = &gradeItem
	}

	return entry
}

// NewReportSubmission builds a class-subject report row from a submission
// preloaded with its student and grade item.
func NewReportSubmission(model models.Submission) ReportSubmission {
	row := ReportSubmission{
		SubmissionID: model.ID,
		AssignmentID: model.AssignmentID,
		Student: StudentRef{
			ID:        model.Student.ID,
			FirstName: model.Student.FirstName,
			LastName:  model.Student.LastName,
		},
		Status:      model.Status,
		SubmittedAt: model.SubmittedAt,
	}

	if model.GradeItem != nil {
		gradeItem := NewGradeItemResponse(*model.GradeItem)
		row.GradeItem = &gradeItem
	}

	return row
}
