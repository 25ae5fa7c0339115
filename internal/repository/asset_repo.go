package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/openedu/school-api/internal/models"
)

// AssetRepository defines persistence operations for content assets.
type AssetRepository interface {
	ListByLesson(ctx context.Context, lessonID uint) ([]models.ContentAsset, error)
	GetByID(ctx context.Context, id uint) (models.ContentAsset, error)
	Create(ctx context.Context, asset *models.ContentAsset) error
	Update(ctx context.Context, asset *models.ContentAsset) error
	Delete(ctx context.Context, id uint) error
}

type assetRepository struct {
	db *gorm.DB
}

// NewAssetRepository instantiates a GORM-backed repository.
func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) ListByLesson(ctx context.Context, lessonID uint) ([]models.ContentAsset, error) {
	var assets []models.ContentAsset
	err := r.db.WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Order("id ASC").
		Find(&assets).Error
	if err != nil {
		return nil, err
	}

	return assets, nil
}

func (r *assetRepository) GetByID(ctx context.Context, id uint) (models.ContentAsset, error) {
	var asset models.ContentAsset
	if err := r.db.WithContext(ctx).First(&asset, id).Error; err != nil {
		return models.ContentAsset{}, err
	}

	return asset, nil
}

func (r *assetRepository) Create(ctx context.Context, asset *models.ContentAsset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *assetRepository) Update(ctx context.Context, asset *models.ContentAsset) error {
	return r.db.WithContext(ctx).Save(asset).Error
}

func (r *assetRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.ContentAsset{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
