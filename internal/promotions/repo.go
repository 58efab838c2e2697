package promotions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orbit-delivery/orbit-backend/pkg/db/models"
)

// Repository handles promotion persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindActiveCode(ctx context.Context, code string) (*models.PromoCode, error)
	CountRedemptions(ctx context.Context, promoCodeID uuid.UUID) (int64, error)
	RedemptionExists(ctx context.Context, promoCodeID, userID uuid.UUID) (bool, error)
	CreateRedemption(ctx context.Context, redemption *models.PromotionRedemption) error
	CountOrdersByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a promotions repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindActiveCode loads an active promo code with its promotion. Missing or
// inactive codes return nil.
func (r *repository) FindActiveCode(ctx context.Context, code string) (*models.PromoCode, error) {
	if code == "" {
		return nil, nil
	}
	var promoCode models.PromoCode
	if err := r.db.WithContext(ctx).
		Preload("Promotion").
		Where("code = ? AND is_active", code).
		First(&promoCode).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &promoCode, nil
}

func (r *repository) CountRedemptions(ctx context.Context, promoCodeID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PromotionRedemption{}).
		Where("promo_code_id = ?", promoCodeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) RedemptionExists(ctx context.Context, promoCodeID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PromotionRedemption{}).
		Where("promo_code_id = ? AND user_id = ?", promoCodeID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) CreateRedemption(ctx context.Context, redemption *models.PromotionRedemption) error {
	return r.db.WithContext(ctx).Create(redemption).Error
}

func (r *repository) CountOrdersByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
