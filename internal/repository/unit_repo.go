package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/openedu/school-api/internal/models"
)

// UnitRepository defines persistence operations for units.
type UnitRepository interface {
	ListBySubject(ctx context.Context, subjectID uint) ([]models.Unit, error)
	GetByID(ctx context.Context, id uint) (models.Unit, error)
	Create(ctx context.Context, unit *models.Unit) error
	Update(ctx context.Context, unit *models.Unit) error
	Delete(ctx context.Context, id uint) error
}

type unitRepository struct {
	db *gorm.DB
}

// NewUnitRepository instantiates a GORM-backed repository.
func NewUnitRepository(db *gorm.DB) UnitRepository {
	return &unitRepository{db: db}
}

func (r *unitRepository) ListBySubject(ctx context.Context, subjectID uint) ([]models.Unit, error) {
	var units []models.Unit
	err := r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("order_index ASC, id ASC").
		Find(&units).Error
	if err != nil {
		return nil, err
	}

	return units, nil
}

func (r *unitRepository) GetByID(ctx context.Context, id uint) (models.Unit, error) {
	var unit models.Unit
	if err := r.db.WithContext(ctx).First(&unit, id).Error; err != nil {
		return models.Unit{}, err
	}

	return unit, nil
}

func (r *unitRepository) Create(ctx context.Context, unit *models.Unit) error {
	return r.db.WithContext(ctx).Create(unit).Error
}

func (r *unitRepository) Update(ctx context.Context, unit *models.Unit) error {
	return r.db.WithContext(ctx).Save(unit).Error
}

func (r *unitRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Unit{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
