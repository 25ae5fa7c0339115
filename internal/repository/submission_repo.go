package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/openedu/school-api/internal/models"
)

// SubmissionRepository defines persistence operations for submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Submission, error)
	// ListByStudent returns the student's submissions newest first, with the
	// parent assignment and grade item attached.
	ListByStudent(ctx context.Context, studentID uint) ([]models.Submission, error)
	// ListByAssignmentsAndStudents returns submissions matching both id sets,
	// with grade item and student attached. Empty sets yield no rows.
	ListByAssignmentsAndStudents(ctx context.Context, assignmentIDs, studentIDs []uint) ([]models.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates a GORM-backed repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Preload("GradeItem").
		Preload("Assignment").
		First(&submission, id).Error
	if err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Preload("GradeItem").
		Preload("Student").
		Where("assignment_id = ?", assignmentID).
		Order("submitted_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Preload("GradeItem").
		Preload("Assignment").
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByAssignmentsAndStudents(ctx context.Context, assignmentIDs, studentIDs []uint) ([]models.Submission, error) {
	if len(assignmentIDs) == 0 || len(studentIDs) == 0 {
		return []models.Submission{}, nil
	}

	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Preload("GradeItem").
		Preload("Student").
		Where("assignment_id IN ? AND student_id IN ?", assignmentIDs, studentIDs).
		Order("submitted_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}

	return submissions, nil
}
