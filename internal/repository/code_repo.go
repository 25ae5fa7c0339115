package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/openedu/school-api/internal/models"
)

// CodeRepository defines persistence operations for redeem codes.
type CodeRepository interface {
	CreateBatch(ctx context.Context, codes []models.RedeemCode) error
	List(ctx context.Context) ([]models.RedeemCode, error)
	ListBySubject(ctx context.Context, subjectID uint) ([]models.RedeemCode, error)
	GetUnusedByCode(ctx context.Context, code string) (models.RedeemCode, error)
	// Redeem marks the code used and records the subject enrollment in a
	// single transaction.
	Redeem(ctx context.Context, code *models.RedeemCode, enrollment *models.SubjectEnrollment) error
}

type codeRepository struct {
	db *gorm.DB
}

// NewCodeRepository instantiates a GORM-backed repository.
func NewCodeRepository(db *gorm.DB) CodeRepository {
	return &codeRepository{db: db}
}

func (r *codeRepository) CreateBatch(ctx context.Context, codes []models.RedeemCode) error {
	if len(codes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&codes).Error
}

func (r *codeRepository) List(ctx context.Context) ([]models.RedeemCode, error) {
	var codes []models.RedeemCode
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&codes).Error; err != nil {
		return nil, err
	}

	return codes, nil
}

func (r *codeRepository) ListBySubject(ctx context.Context, subjectID uint) ([]models.RedeemCode, error) {
	var codes []models.RedeemCode
	err := r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("id ASC").
		Find(&codes).Error
	if err != nil {
		return nil, err
	}

	return codes, nil
}

func (r *codeRepository) GetUnusedByCode(ctx context.Context, code string) (models.RedeemCode, error) {
	var redeemCode models.RedeemCode
	err := r.db.WithContext(ctx).
		First(&redeemCode, "code = ? AND used = ?", code, false).Error
	if err != nil {
		return models.RedeemCode{}, err
	}

	return redeemCode, nil
}

func (r *codeRepository) Redeem(ctx context.Context, code *models.RedeemCode, enrollment *models.SubjectEnrollment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Guard against a concurrent redemption of the same code.
		result := tx.Model(&models.RedeemCode{}).
			Where("id = ? AND used = ?", code.ID, false).
			Updates(map[string]interface{}{
				"used":           true,
				"redeemed_by_id": code.RedeemedByID,
				"redeemed_at":    time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Create(enrollment).Error
	})
}
