package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/openedu/school-api/internal/models"
)

// GradeItemRepository defines persistence operations for graded outcomes.
type GradeItemRepository interface {
	GetBySubmission(ctx context.Context, submissionID uint) (models.GradeItem, error)
	Create(ctx context.Context, item *models.GradeItem) error
	Update(ctx context.Context, item *models.GradeItem) error
}

type gradeItemRepository struct {
	db *gorm.DB
}

// NewGradeItemRepository instantiates a GORM-backed repository.
func NewGradeItemRepository(db *gorm.DB) GradeItemRepository {
	return &gradeItemRepository{db: db}
}

func (r *gradeItemRepository) GetBySubmission(ctx context.Context, submissionID uint) (models.GradeItem, error) {
	var item models.GradeItem
	if err := r.db.WithContext(ctx).First(&item, "submission_id = ?", submissionID).Error; err != nil {
		return models.GradeItem{}, err
	}

	return item, nil
}

func (r *gradeItemRepository) Create(ctx context.Context, item *models.GradeItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *gradeItemRepository) Update(ctx context.Context, item *models.GradeItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}
