package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/openedu/school-api/internal/models"
)

// EnrollmentRepository defines persistence operations for class enrollments.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	ListByClass(ctx context.Context, classID uint) ([]models.Enrollment, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Enrollment, error)
	StudentIDsByClass(ctx context.Context, classID uint) ([]uint, error)
	DeleteByUserAndClass(ctx context.Context, userID, classID uint) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository instantiates a GORM-backed repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepository) ListByClass(ctx context.Context, classID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("class_id = ?", classID).
		Order("id ASC").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *enrollmentRepository) ListByUser(ctx context.Context, userID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Class").
		Preload("Class.Grade").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *enrollmentRepository) StudentIDsByClass(ctx context.Context, classID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("class_id = ?", classID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *enrollmentRepository) DeleteByUserAndClass(ctx context.Context, userID, classID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND class_id = ?", userID, classID).
		Delete(&models.Enrollment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
